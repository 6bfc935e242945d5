package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PredictPayload is sent to the ML predictor sidecar. Flat keys mirror the
// model's training features, including the dotted factor names.
type PredictPayload struct {
	Cost              float64 `json:"cost"`
	CurrentPrice      float64 `json:"currentPrice"`
	OriginalPrice     float64 `json:"originalPrice"`
	Margin            float64 `json:"margin"`
	Stock             int     `json:"stock"`
	MaxStock          int     `json:"maxStock"`
	MinStockLevel     int     `json:"minStockLevel"`
	DaysUntilExpiry   int     `json:"daysUntilExpiry"`
	IsPerishable      bool    `json:"isPerishable"`
	ClearanceRate     float64 `json:"clearanceRate"`
	WasteReduction    float64 `json:"wasteReduction"`
	ExpirationUrgency int     `json:"priceFactors.expirationUrgency"`
	StockLevel        int     `json:"priceFactors.stockLevel"`
	TimeOfDay         int     `json:"priceFactors.timeOfDay"`
	DemandForecast    int     `json:"priceFactors.demandForecast"`
	CompetitorPrice   int     `json:"priceFactors.competitorPrice"`
	Seasonality       int     `json:"priceFactors.seasonality"`
	MarketTrend       int     `json:"priceFactors.marketTrend"`
}

// PredictResponse is the sidecar's suggestion. MLScore arrives on a 0–1
// scale and is rescaled by the advisor.
type PredictResponse struct {
	SuggestedPrice float64 `json:"suggestedPrice"`
	MLScore        float64 `json:"mlScore"`
}

// MLClient delegates price prediction to the Python sidecar over HTTP.
// The advisor treats it as optional: any failure falls back to the
// in-process heuristic scorer.
type MLClient struct {
	sidecarURL string
	httpClient *http.Client
}

func NewMLClient(sidecarURL string) *MLClient {
	return &MLClient{
		sidecarURL: sidecarURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Predict sends a POST to the sidecar and returns its suggestion.
func (c *MLClient) Predict(ctx context.Context, payload PredictPayload) (*PredictResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ml: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sidecarURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ml: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ml: sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ml: sidecar returned %d", resp.StatusCode)
	}

	var result PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ml: decode response: %w", err)
	}
	return &result, nil
}

package dto

import (
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"
)

// MetricStatus is one row of the ML engine performance panel.
// Status is "exceeded" iff Current >= Target, else "below".
type MetricStatus struct {
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
	Status  string  `json:"status"`
}

// AnalyticsResponse is the fleet-wide KPI summary.
type AnalyticsResponse struct {
	WasteReduction      float64                 `json:"wasteReduction"`
	ClearanceRate       float64                 `json:"clearanceRate"`
	AvgMLScore          float64                 `json:"avgMLScore"`
	RevenueSaved        float64                 `json:"revenueSaved"`
	TotalPricingItems   int                     `json:"totalPricingItems"`
	MLEnginePerformance map[string]MetricStatus `json:"mlEnginePerformance"`
}

// SummaryCardsResponse backs the pricing dashboard header cards.
type SummaryCardsResponse struct {
	AvgPriceIncrease  float64 `json:"avgPriceIncrease"`
	RevenueImpact     float64 `json:"revenueImpact"`
	ProductsOptimized int     `json:"productsOptimized"`
	PriceAlerts       int     `json:"priceAlerts"`
}

// MLPerformanceResponse is static model metadata.
type MLPerformanceResponse struct {
	Accuracy    float64 `json:"accuracy"`
	LastRetrain string  `json:"lastRetrain"`
	Notes       string  `json:"notes"`
}

// PriceFactorsResponse returns the stored factor weights for one product.
type PriceFactorsResponse struct {
	ProductID    string             `json:"productId"`
	PriceFactors model.PriceFactors `json:"priceFactors"`
	LastUpdated  time.Time          `json:"lastUpdated"`
	Confidence   float64            `json:"confidence"`
}

// TimeSlot is one point of the time-of-day demand curve.
type TimeSlot struct {
	Time   string  `json:"time"`
	Demand int     `json:"demand"`
	Price  float64 `json:"price"`
}

type TimeOfDayResponse struct {
	ProductID     string     `json:"productId"`
	TimeOfDayData []TimeSlot `json:"timeOfDayData"`
	PeakHour      string     `json:"peakHour"`
	LowHour       string     `json:"lowHour"`
	AverageDemand int        `json:"averageDemand"`
}

// PricingHistoryPoint is one day of the deterministic 7-day chart series.
type PricingHistoryPoint struct {
	Date       string  `json:"date"`
	Price      float64 `json:"price"`
	Competitor float64 `json:"competitor"`
	Demand     int     `json:"demand"`
}

// MLAnalyticsProduct identifies the product of an analytics response.
type MLAnalyticsProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Category string `json:"category"`
}

// MLAnalyticsResponse is the per-product deep-dive consumed by the pricing UI.
type MLAnalyticsResponse struct {
	Product         MLAnalyticsProduct    `json:"product"`
	PriceFactors    model.PriceFactors    `json:"priceFactors"`
	TimeOfDayData   []TimeSlot            `json:"timeOfDayData"`
	MLScore         float64               `json:"mlScore"`
	Confidence      float64               `json:"confidence"`
	ProfitMargin    float64               `json:"profitMargin"`
	LastUpdated     time.Time             `json:"lastUpdated"`
	Recommendations []string              `json:"recommendations"`
	PricingHistory  []PricingHistoryPoint `json:"pricingHistory"`
}

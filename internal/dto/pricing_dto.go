package dto

import (
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// UpsertPricingRequest creates or updates the pricing record for a product.
// On update every field except ProductID is optional: nil pointers leave the
// stored value untouched. Creation has a required-field set; the service
// reports the full missing-field list in one ValidationError.
type UpsertPricingRequest struct {
	ProductID      string           `json:"productId" validate:"required"`
	SupplierID     *string          `json:"supplierId"`
	SupplierName   *string          `json:"supplierName"`
	CurrentPrice   *decimal.Decimal `json:"currentPrice"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice"`
	Cost           *decimal.Decimal `json:"cost"`
	Stock          *int             `json:"stock" validate:"omitempty,min=0"`
	MaxStock       *int             `json:"maxStock" validate:"omitempty,min=0"`
	MinStockLevel  *int             `json:"minStockLevel" validate:"omitempty,min=0"`
	Name           *string          `json:"name"`
	SKU            *string          `json:"sku"`
	Category       *string          `json:"category"`
	ExpirationDate *time.Time       `json:"expirationDate"`
	IsPerishable   *bool            `json:"isPerishable"`
	Demand         *float64         `json:"demand"`
	MLScore        *float64         `json:"mlScore"`
}

// UpdatePriceRequest is the manual price change (PUT /pricing/update/:productId).
// Price is a pointer so presence is checked without rejecting a legitimate
// zero price (free giveaways clear remaining perishable stock).
type UpdatePriceRequest struct {
	Price  *decimal.Decimal `json:"price" validate:"required"`
	Reason string           `json:"reason"`
}

// OptimizeFleetRequest enqueues async re-optimization of many records.
// SupplierID narrows the fleet to one supplier; empty means all records.
type OptimizeFleetRequest struct {
	SupplierID string `json:"supplierId"`
}

// PricingFilter narrows record listings.
type PricingFilter struct {
	SupplierID string `form:"supplierId"`
	Status     string `form:"status"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PricingItemResponse struct {
	ID              string              `json:"id"`
	ProductID       string              `json:"productId"`
	SupplierID      string              `json:"supplierId"`
	SupplierName    string              `json:"supplierName"`
	Name            string              `json:"name"`
	SKU             string              `json:"sku"`
	Category        string              `json:"category"`
	CurrentPrice    decimal.Decimal     `json:"currentPrice"`
	OriginalPrice   decimal.Decimal     `json:"originalPrice"`
	Cost            decimal.Decimal     `json:"cost"`
	Margin          *decimal.Decimal    `json:"margin"`
	SuggestedPrice  *decimal.Decimal    `json:"suggestedPrice,omitempty"`
	SuggestedMargin *decimal.Decimal    `json:"suggestedMargin,omitempty"`
	Stock           int                 `json:"stock"`
	MaxStock        int                 `json:"maxStock"`
	MinStockLevel   int                 `json:"minStockLevel"`
	ExpirationDate  *time.Time          `json:"expirationDate,omitempty"`
	DaysUntilExpiry *int                `json:"daysUntilExpiry,omitempty"`
	IsPerishable    bool                `json:"isPerishable"`
	Demand          float64             `json:"demand"`
	MLScore         float64             `json:"mlScore"`
	PriceFactors    model.PriceFactors  `json:"priceFactors"`
	Optimization    model.Optimization  `json:"optimization"`
	Status          string              `json:"status"`
	PriceChange     string              `json:"priceChange"`
	LastUpdated     time.Time           `json:"lastUpdated"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type PricingListResponse struct {
	Data  []PricingItemResponse `json:"data"`
	Total int64                 `json:"total"`
}

// HistoryEntry is one row of the append-only price-change ledger.
type HistoryEntry struct {
	Price   decimal.Decimal `json:"price"`
	Date    time.Time       `json:"date"`
	Reason  string          `json:"reason"`
	MLScore float64         `json:"mlScore"`
}

type HistoryResponse struct {
	ProductID string         `json:"productId"`
	History   []HistoryEntry `json:"history"`
}

// OptimizeResponse is the advisory optimization output. PriceChange compares
// the suggestion against the current price — independent from the record's
// stored priceChange (current vs original).
type OptimizeResponse struct {
	CurrentPrice    decimal.Decimal    `json:"currentPrice"`
	SuggestedPrice  decimal.Decimal    `json:"suggestedPrice"`
	SuggestedMargin decimal.Decimal    `json:"suggestedMargin"`
	MLScore         float64            `json:"mlScore"`
	PriceFactors    model.PriceFactors `json:"priceFactors"`
	PriceChange     string             `json:"priceChange"`
}

// OptimizeFleetResponse reports how many async jobs were enqueued.
type OptimizeFleetResponse struct {
	Enqueued int `json:"enqueued"`
}

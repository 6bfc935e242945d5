package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pricing lifecycle statuses. Status is a derived field: it is recomputed
// from (stock, minStockLevel, expirationDate) on every write and never set
// directly by callers.
const (
	StatusStable       = "stable"
	StatusOptimal      = "optimal"
	StatusExpiringSoon = "expiring_soon"
	StatusCritical     = "critical"
	StatusLowStock     = "low_stock"
	StatusOutOfStock   = "out_of_stock"
)

// PriceFactors are the seven ML influence weights, each in [0,100].
// Stored inline on the pricing record (factor_* columns).
type PriceFactors struct {
	ExpirationUrgency int `gorm:"not null;default:0" json:"expirationUrgency"`
	StockLevel        int `gorm:"not null;default:0" json:"stockLevel"`
	TimeOfDay         int `gorm:"not null;default:0" json:"timeOfDay"`
	DemandForecast    int `gorm:"not null;default:0" json:"demandForecast"`
	CompetitorPrice   int `gorm:"not null;default:0" json:"competitorPrice"`
	Seasonality       int `gorm:"not null;default:0" json:"seasonality"`
	MarketTrend       int `gorm:"not null;default:0" json:"marketTrend"`
}

// Optimization carries per-record optimization outcomes used by the
// aggregation reporter.
type Optimization struct {
	WasteReduction   float64    `gorm:"not null;default:0" json:"wasteReduction"`
	ClearanceRate    float64    `gorm:"not null;default:0" json:"clearanceRate"`
	RevenueSaved     float64    `gorm:"not null;default:0" json:"revenueSaved"`
	LastOptimization *time.Time `json:"lastOptimization,omitempty"`
}

// PricingRecord is the priced, stocked, perishable-aware record at the core
// of the pricing engine. Exactly one record exists per product (unique index
// on product_id). Records are never hard-deleted.
//
// Margin, DaysUntilExpiry, PriceChange and Status are derived: the service
// recomputes them from the base fields on every write, so stored and
// derivable values cannot diverge.
type PricingRecord struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	// Denormalized references — source of truth is the product/supplier
	// collaborators, consistency is best-effort.
	ProductID    string `gorm:"uniqueIndex;not null"`
	SupplierID   string `gorm:"index;not null"`
	SupplierName string `gorm:"not null"`
	Name         string `gorm:"not null"`
	SKU          string `gorm:"column:sku;not null"`
	Category     string `gorm:"not null"`

	CurrentPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	OriginalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cost          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// Margin is (current - cost) / current as a percentage, 1 decimal place.
	// NULL when current price is zero.
	Margin          *decimal.Decimal `gorm:"type:decimal(5,1)"`
	SuggestedPrice  *decimal.Decimal `gorm:"type:decimal(10,2)"`
	SuggestedMargin *decimal.Decimal `gorm:"type:decimal(5,1)"`

	Stock         int `gorm:"not null;default:0"`
	MaxStock      int `gorm:"not null;default:100"`
	MinStockLevel int `gorm:"not null;default:10"`

	ExpirationDate  *time.Time
	DaysUntilExpiry *int
	IsPerishable    bool `gorm:"not null;default:false"`

	// Reporting-only scores, unitless.
	Demand         float64 `gorm:"not null;default:0"`
	ClearanceRate  float64 `gorm:"not null;default:0"`
	WasteReduction float64 `gorm:"not null;default:0"`
	MLScore        float64 `gorm:"column:ml_score;not null;default:0"`

	PriceFactors PriceFactors `gorm:"embedded;embeddedPrefix:factor_"`
	Optimization Optimization `gorm:"embedded;embeddedPrefix:opt_"`

	Status      string `gorm:"not null;default:'stable';index"`
	PriceChange string `gorm:"not null;default:'+0.0%'"`

	// Version implements optimistic concurrency: writes carry the version
	// they read and fail when another writer got there first.
	Version int `gorm:"not null;default:0"`

	LastUpdated time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	History []PriceHistory `gorm:"foreignKey:ProductID;references:ProductID"`
}

func (PricingRecord) TableName() string { return "pricing_records" }

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// History reasons written by the pricing service. Advisor-driven appends
// carry the reason supplied by the caller instead.
const (
	ReasonInitialCreation = "Initial creation"
	ReasonManualUpdate    = "Manual update"
)

// PriceHistory records one change of a record's current price.
// Rows are immutable — never updated or deleted, no retention limit.
// An append happens exactly when the written current price differs from the
// stored one (compared exactly, not rounded).
type PriceHistory struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID string          `gorm:"index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Reason    string          `gorm:"not null"`
	MLScore   float64         `gorm:"column:ml_score;not null;default:0"`
	CreatedAt time.Time       `gorm:"index"`
}

func (PriceHistory) TableName() string { return "price_history" }

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses as written by the order service.
const (
	OrderProcessing     = "processing"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
)

// Order is the read model for the external order service. The optimization
// advisor consumes recent order counts as a demand signal; nothing here is
// written by this service.
type Order struct {
	ID        string          `gorm:"primaryKey"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status    string          `gorm:"not null;default:'processing'"`
	CreatedAt time.Time       `gorm:"index"`
}

func (Order) TableName() string { return "orders" }

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the read model for the external product catalog.
// The pricing engine only consumes id, name, sku, category and price to keep
// denormalized fields fresh; catalog CRUD lives in another service.
type Product struct {
	ID         string `gorm:"primaryKey"`
	Name       string
	SKU        string `gorm:"column:sku"`
	Category   string
	Price      decimal.Decimal `gorm:"type:decimal(10,2)"`
	SupplierID string          `gorm:"index"`
	IsActive   bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Product) TableName() string { return "products" }

package repository

import (
	"context"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"

	"gorm.io/gorm"
)

// PriceHistoryRepository is the append-only ledger of price changes.
// There is deliberately no update or delete method.
type PriceHistoryRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *model.PriceHistory) error
	// ListByProduct returns the full ledger for one product in insertion
	// order (created_at ascending, id breaking ties for a stable order).
	ListByProduct(ctx context.Context, productID string) ([]model.PriceHistory, error)
}

type priceHistoryRepo struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) Append(ctx context.Context, tx *gorm.DB, entry *model.PriceHistory) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).Create(entry).Error
}

func (r *priceHistoryRepo) ListByProduct(ctx context.Context, productID string) ([]model.PriceHistory, error) {
	var rows []model.PriceHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

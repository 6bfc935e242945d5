package repository

import (
	"context"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"

	"gorm.io/gorm"
)

// The product, supplier and order aggregates are owned by other services.
// These repositories expose only the read access the pricing engine consumes:
// product identity fields, supplier names, and recent order volume.

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
}

type SupplierRepository interface {
	FindByID(ctx context.Context, id string) (*model.Supplier, error)
}

type OrderRepository interface {
	// CountSince returns total and delivered order counts created at or
	// after the cutoff — the clearance-rate inputs.
	CountSince(ctx context.Context, cutoff time.Time) (total int64, delivered int64, err error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) FindByID(ctx context.Context, id string) (*model.Supplier, error) {
	var s model.Supplier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) CountSince(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	var total, delivered int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("created_at >= ?", cutoff).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("created_at >= ? AND status = ?", cutoff, model.OrderDelivered).
		Count(&delivered).Error; err != nil {
		return 0, 0, err
	}
	return total, delivered, nil
}

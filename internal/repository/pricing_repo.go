package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/dto"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when an optimistic write lost the race:
// another writer committed between this writer's read and its update.
var ErrVersionConflict = errors.New("pricing record version conflict")

// PricingRepository defines the data access contract for pricing records.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type PricingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, rec *model.PricingRecord) error
	FindByProductID(ctx context.Context, productID string) (*model.PricingRecord, error)
	List(ctx context.Context, filter dto.PricingFilter) ([]model.PricingRecord, int64, error)
	// ListAll performs the reporter's full scan. Plain MVCC read — it never
	// blocks concurrent writers.
	ListAll(ctx context.Context) ([]model.PricingRecord, error)
	// ListExpiring returns perishable records for the derived-field refresh cron.
	ListExpiring(ctx context.Context, limit int) ([]model.PricingRecord, error)
	// UpdateVersioned persists the record iff its version still matches the
	// one read; bumps the version on success, ErrVersionConflict otherwise.
	// Advisory columns (suggestion, factors, last optimization) are excluded
	// so a stale read cannot overwrite a suggestion written in between.
	UpdateVersioned(ctx context.Context, tx *gorm.DB, rec *model.PricingRecord) error
	// UpdateSuggestion persists advisory output only. It touches no base or
	// derived field, so it does not participate in version checking.
	UpdateSuggestion(ctx context.Context, productID string, price, margin decimal.Decimal,
		mlScore float64, factors model.PriceFactors, at time.Time) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type pricingRepo struct{ db *gorm.DB }

func NewPricingRepository(db *gorm.DB) PricingRepository { return &pricingRepo{db: db} }

func (r *pricingRepo) Create(ctx context.Context, tx *gorm.DB, rec *model.PricingRecord) error {
	return r.conn(tx).WithContext(ctx).Create(rec).Error
}

func (r *pricingRepo) FindByProductID(ctx context.Context, productID string) (*model.PricingRecord, error) {
	var rec model.PricingRecord
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *pricingRepo) List(ctx context.Context, filter dto.PricingFilter) ([]model.PricingRecord, int64, error) {
	var recs []model.PricingRecord
	var total int64

	q := r.db.WithContext(ctx).Model(&model.PricingRecord{})
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("last_updated DESC").Find(&recs).Error
	return recs, total, err
}

func (r *pricingRepo) ListAll(ctx context.Context) ([]model.PricingRecord, error) {
	var recs []model.PricingRecord
	err := r.db.WithContext(ctx).Find(&recs).Error
	return recs, err
}

func (r *pricingRepo) ListExpiring(ctx context.Context, limit int) ([]model.PricingRecord, error) {
	var recs []model.PricingRecord
	err := r.db.WithContext(ctx).
		Where("expiration_date IS NOT NULL").
		Order("expiration_date ASC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

func (r *pricingRepo) UpdateVersioned(ctx context.Context, tx *gorm.DB, rec *model.PricingRecord) error {
	readVersion := rec.Version
	rec.Version = readVersion + 1

	res := r.conn(tx).WithContext(ctx).
		Model(&model.PricingRecord{}).
		Where("id = ? AND version = ?", rec.ID, readVersion).
		Select("*").
		Omit("id", "created_at",
			"suggested_price", "suggested_margin",
			"factor_expiration_urgency", "factor_stock_level", "factor_time_of_day",
			"factor_demand_forecast", "factor_competitor_price", "factor_seasonality",
			"factor_market_trend", "opt_last_optimization").
		Updates(rec)
	if res.Error != nil {
		rec.Version = readVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		rec.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

func (r *pricingRepo) UpdateSuggestion(ctx context.Context, productID string, price, margin decimal.Decimal,
	mlScore float64, factors model.PriceFactors, at time.Time) error {

	return r.db.WithContext(ctx).
		Model(&model.PricingRecord{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"suggested_price":           price,
			"suggested_margin":          margin,
			"ml_score":                  mlScore,
			"factor_expiration_urgency": factors.ExpirationUrgency,
			"factor_stock_level":        factors.StockLevel,
			"factor_time_of_day":        factors.TimeOfDay,
			"factor_demand_forecast":    factors.DemandForecast,
			"factor_competitor_price":   factors.CompetitorPrice,
			"factor_seasonality":        factors.Seasonality,
			"factor_market_trend":       factors.MarketTrend,
			"opt_last_optimization":     at,
		}).Error
}

func (r *pricingRepo) DB() *gorm.DB { return r.db }

// conn prefers the caller's transaction when one is in flight.
func (r *pricingRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

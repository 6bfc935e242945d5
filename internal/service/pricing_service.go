package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/apierror"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/dto"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// How many times an optimistic write is retried after losing a version race.
const maxUpsertRetries = 3

// PricingService owns the pricing record lifecycle: creation, merge updates,
// derived-field recomputation and the append-only history ledger.
type PricingService interface {
	Upsert(ctx context.Context, req dto.UpsertPricingRequest) (*dto.PricingItemResponse, error)
	Get(ctx context.Context, productID string) (*dto.PricingItemResponse, error)
	List(ctx context.Context, filter dto.PricingFilter) (*dto.PricingListResponse, error)
	UpdatePrice(ctx context.Context, productID string, req dto.UpdatePriceRequest) (*dto.PricingItemResponse, error)
	GetHistory(ctx context.Context, productID string) (*dto.HistoryResponse, error)
	// RefreshDerived re-runs the derivation pass over perishable records so
	// status and daysUntilExpiry track wall time between writes.
	RefreshDerived(ctx context.Context, limit int) (int, error)
}

type pricingService struct {
	repo         repository.PricingRepository
	historyRepo  repository.PriceHistoryRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	now          func() time.Time
}

func NewPricingService(
	repo repository.PricingRepository,
	historyRepo repository.PriceHistoryRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
) PricingService {
	return &pricingService{
		repo:         repo,
		historyRepo:  historyRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		now:          time.Now,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Upsert ────────────────────────────────────────────────────────────────────
// Merge-or-create keyed by product id. Every write runs the derivation
// pass, and a history row is appended iff the current price changed exactly.
// The record write and the history append commit in one transaction: on
// timeout or failure neither is persisted.

func (s *pricingService) Upsert(ctx context.Context, req dto.UpsertPricingRequest) (*dto.PricingItemResponse, error) {
	for attempt := 0; ; attempt++ {
		resp, err := s.upsertOnce(ctx, req)
		if errors.Is(err, repository.ErrVersionConflict) && attempt < maxUpsertRetries {
			log.Warn().Str("product_id", req.ProductID).Int("attempt", attempt+1).
				Msg("pricing upsert lost version race, retrying")
			continue
		}
		return resp, err
	}
}

func (s *pricingService) upsertOnce(ctx context.Context, req dto.UpsertPricingRequest) (*dto.PricingItemResponse, error) {
	existing, err := s.repo.FindByProductID(ctx, req.ProductID)
	switch {
	case err == nil:
		return s.mergeExisting(ctx, existing, req)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.createNew(ctx, req)
	default:
		return nil, storeErr(err)
	}
}

func (s *pricingService) createNew(ctx context.Context, req dto.UpsertPricingRequest) (*dto.PricingItemResponse, error) {
	if fields := missingCreateFields(req); len(fields) > 0 {
		return nil, apierror.NewValidation(fields)
	}

	now := s.now()
	rec := &model.PricingRecord{
		ProductID:     req.ProductID,
		SupplierID:    *req.SupplierID,
		SupplierName:  *req.SupplierName,
		Name:          *req.Name,
		SKU:           *req.SKU,
		Category:      *req.Category,
		CurrentPrice:  *req.CurrentPrice,
		OriginalPrice: *req.CurrentPrice,
		Cost:          *req.Cost,
		MaxStock:      100,
		MinStockLevel: 10,
	}
	if req.OriginalPrice != nil {
		rec.OriginalPrice = *req.OriginalPrice
	}
	applyOptional(rec, req)
	s.refreshDenormalized(ctx, rec)
	Derive(rec, now)

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, rec); err != nil {
			return err
		}
		return s.historyRepo.Append(ctx, tx, &model.PriceHistory{
			ProductID: rec.ProductID,
			Price:     rec.CurrentPrice,
			Reason:    model.ReasonInitialCreation,
			MLScore:   rec.MLScore,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return recordToResponse(rec), nil
}

func (s *pricingService) mergeExisting(ctx context.Context, rec *model.PricingRecord, req dto.UpsertPricingRequest) (*dto.PricingItemResponse, error) {
	now := s.now()
	oldPrice := rec.CurrentPrice

	if req.SupplierID != nil {
		rec.SupplierID = *req.SupplierID
	}
	if req.SupplierName != nil {
		rec.SupplierName = *req.SupplierName
	}
	if req.CurrentPrice != nil {
		rec.CurrentPrice = *req.CurrentPrice
	}
	if req.OriginalPrice != nil {
		rec.OriginalPrice = *req.OriginalPrice
	}
	if req.Cost != nil {
		rec.Cost = *req.Cost
	}
	if req.Name != nil {
		rec.Name = *req.Name
	}
	if req.SKU != nil {
		rec.SKU = *req.SKU
	}
	if req.Category != nil {
		rec.Category = *req.Category
	}
	applyOptional(rec, req)
	s.refreshDenormalized(ctx, rec)
	Derive(rec, now)

	priceChanged := !rec.CurrentPrice.Equal(oldPrice)

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateVersioned(ctx, tx, rec); err != nil {
			return err
		}
		if !priceChanged {
			return nil
		}
		return s.historyRepo.Append(ctx, tx, &model.PriceHistory{
			ProductID: rec.ProductID,
			Price:     rec.CurrentPrice,
			Reason:    model.ReasonManualUpdate,
			MLScore:   rec.MLScore,
			CreatedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		return nil, storeErr(err)
	}
	return recordToResponse(rec), nil
}

// applyOptional merges the fields shared by create and update.
func applyOptional(rec *model.PricingRecord, req dto.UpsertPricingRequest) {
	if req.Stock != nil {
		rec.Stock = *req.Stock
	}
	if req.MaxStock != nil {
		rec.MaxStock = *req.MaxStock
	}
	if req.MinStockLevel != nil {
		rec.MinStockLevel = *req.MinStockLevel
	}
	if req.ExpirationDate != nil {
		rec.ExpirationDate = req.ExpirationDate
	}
	if req.IsPerishable != nil {
		rec.IsPerishable = *req.IsPerishable
	}
	if req.Demand != nil {
		rec.Demand = *req.Demand
	}
	if req.MLScore != nil {
		rec.MLScore = *req.MLScore
	}
}

// refreshDenormalized re-reads supplier and product identity from the
// collaborators. Best-effort only: the collaborators are the source of truth,
// but a missing row never blocks a pricing write (consistency is eventual).
func (s *pricingService) refreshDenormalized(ctx context.Context, rec *model.PricingRecord) {
	if s.supplierRepo != nil {
		if sup, err := s.supplierRepo.FindByID(ctx, rec.SupplierID); err == nil {
			rec.SupplierName = sup.Name
		}
	}
	if s.productRepo != nil {
		if p, err := s.productRepo.FindByID(ctx, rec.ProductID); err == nil {
			if p.Name != "" {
				rec.Name = p.Name
			}
			if p.SKU != "" {
				rec.SKU = p.SKU
			}
			if p.Category != "" {
				rec.Category = p.Category
			}
		}
	}
}

func missingCreateFields(req dto.UpsertPricingRequest) []string {
	var fields []string
	if req.SupplierID == nil || *req.SupplierID == "" {
		fields = append(fields, "supplierId")
	}
	if req.SupplierName == nil || *req.SupplierName == "" {
		fields = append(fields, "supplierName")
	}
	if req.CurrentPrice == nil {
		fields = append(fields, "currentPrice")
	}
	if req.Cost == nil {
		fields = append(fields, "cost")
	}
	if req.Name == nil || *req.Name == "" {
		fields = append(fields, "name")
	}
	if req.SKU == nil || *req.SKU == "" {
		fields = append(fields, "sku")
	}
	if req.Category == nil || *req.Category == "" {
		fields = append(fields, "category")
	}
	return fields
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *pricingService) Get(ctx context.Context, productID string) (*dto.PricingItemResponse, error) {
	rec, err := s.findRecord(ctx, productID)
	if err != nil {
		return nil, err
	}
	return recordToResponse(rec), nil
}

func (s *pricingService) List(ctx context.Context, filter dto.PricingFilter) (*dto.PricingListResponse, error) {
	recs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	data := make([]dto.PricingItemResponse, 0, len(recs))
	for i := range recs {
		data = append(data, *recordToResponse(&recs[i]))
	}
	return &dto.PricingListResponse{Data: data, Total: total}, nil
}

func (s *pricingService) GetHistory(ctx context.Context, productID string) (*dto.HistoryResponse, error) {
	if _, err := s.findRecord(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := s.historyRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, storeErr(err)
	}
	entries := make([]dto.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, dto.HistoryEntry{
			Price:   r.Price,
			Date:    r.CreatedAt,
			Reason:  r.Reason,
			MLScore: r.MLScore,
		})
	}
	return &dto.HistoryResponse{ProductID: productID, History: entries}, nil
}

// ── Manual price change ───────────────────────────────────────────────────────

func (s *pricingService) UpdatePrice(ctx context.Context, productID string, req dto.UpdatePriceRequest) (*dto.PricingItemResponse, error) {
	for attempt := 0; ; attempt++ {
		resp, err := s.updatePriceOnce(ctx, productID, req)
		if errors.Is(err, repository.ErrVersionConflict) && attempt < maxUpsertRetries {
			continue
		}
		return resp, err
	}
}

func (s *pricingService) updatePriceOnce(ctx context.Context, productID string, req dto.UpdatePriceRequest) (*dto.PricingItemResponse, error) {
	if req.Price == nil {
		return nil, apierror.NewValidation([]string{"price"})
	}

	rec, err := s.findRecord(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	priceChanged := !req.Price.Equal(rec.CurrentPrice)
	rec.CurrentPrice = *req.Price
	Derive(rec, now)

	reason := req.Reason
	if reason == "" {
		reason = model.ReasonManualUpdate
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateVersioned(ctx, tx, rec); err != nil {
			return err
		}
		if !priceChanged {
			return nil
		}
		return s.historyRepo.Append(ctx, tx, &model.PriceHistory{
			ProductID: productID,
			Price:     rec.CurrentPrice,
			Reason:    reason,
			MLScore:   rec.MLScore,
			CreatedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		return nil, storeErr(err)
	}
	return recordToResponse(rec), nil
}

// ── Derived-field refresh ─────────────────────────────────────────────────────

func (s *pricingService) RefreshDerived(ctx context.Context, limit int) (int, error) {
	recs, err := s.repo.ListExpiring(ctx, limit)
	if err != nil {
		return 0, storeErr(err)
	}

	refreshed := 0
	now := s.now()
	for i := range recs {
		rec := &recs[i]
		prevStatus := rec.Status
		prevDays := rec.DaysUntilExpiry
		Derive(rec, now)
		if rec.Status == prevStatus && intPtrEq(rec.DaysUntilExpiry, prevDays) {
			continue
		}
		if err := s.repo.UpdateVersioned(ctx, nil, rec); err != nil {
			// A concurrent write already recomputed this record; skip it.
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			return refreshed, storeErr(err)
		}
		refreshed++
	}
	return refreshed, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *pricingService) findRecord(ctx context.Context, productID string) (*model.PricingRecord, error) {
	rec, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return rec, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", apierror.ErrStoreUnavailable, err)
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func recordToResponse(rec *model.PricingRecord) *dto.PricingItemResponse {
	return &dto.PricingItemResponse{
		ID:              rec.ID.String(),
		ProductID:       rec.ProductID,
		SupplierID:      rec.SupplierID,
		SupplierName:    rec.SupplierName,
		Name:            rec.Name,
		SKU:             rec.SKU,
		Category:        rec.Category,
		CurrentPrice:    rec.CurrentPrice,
		OriginalPrice:   rec.OriginalPrice,
		Cost:            rec.Cost,
		Margin:          rec.Margin,
		SuggestedPrice:  rec.SuggestedPrice,
		SuggestedMargin: rec.SuggestedMargin,
		Stock:           rec.Stock,
		MaxStock:        rec.MaxStock,
		MinStockLevel:   rec.MinStockLevel,
		ExpirationDate:  rec.ExpirationDate,
		DaysUntilExpiry: rec.DaysUntilExpiry,
		IsPerishable:    rec.IsPerishable,
		Demand:          rec.Demand,
		MLScore:         rec.MLScore,
		PriceFactors:    rec.PriceFactors,
		Optimization:    rec.Optimization,
		Status:          rec.Status,
		PriceChange:     rec.PriceChange,
		LastUpdated:     rec.LastUpdated,
		UpdatedAt:       rec.UpdatedAt,
	}
}

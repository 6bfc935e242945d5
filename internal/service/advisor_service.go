package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/apierror"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/dto"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/infra"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JobEnqueuer pushes async optimization jobs onto the queue. Implemented by
// the worker dispatcher; an interface here keeps the packages decoupled.
type JobEnqueuer interface {
	EnqueueOptimize(ctx context.Context, productID string) error
}

// AdvisorService runs the optimization advisor: scoring a record, persisting
// the suggestion fields, and fanning out fleet-wide re-optimization jobs.
// Suggestions never touch currentPrice — applying one is a manual price change.
type AdvisorService interface {
	Optimize(ctx context.Context, productID string) (*dto.OptimizeResponse, error)
	EnqueueFleet(ctx context.Context, req dto.OptimizeFleetRequest) (*dto.OptimizeFleetResponse, error)
}

type advisorService struct {
	repo     repository.PricingRepository
	orders   repository.OrderRepository
	scorer   Scorer
	ml       *infra.MLClient
	breaker  *infra.SidecarBreaker
	enqueuer JobEnqueuer
	now      func() time.Time
}

// NewAdvisorService wires the advisor. ml may be nil when no sidecar is
// configured; the heuristic scorer then serves every request. orders supplies
// the fulfillment demand signal and may also be nil.
func NewAdvisorService(
	repo repository.PricingRepository,
	orders repository.OrderRepository,
	scorer Scorer,
	ml *infra.MLClient,
	breaker *infra.SidecarBreaker,
	enqueuer JobEnqueuer,
) AdvisorService {
	return &advisorService{
		repo:     repo,
		orders:   orders,
		scorer:   scorer,
		ml:       ml,
		breaker:  breaker,
		enqueuer: enqueuer,
		now:      time.Now,
	}
}

func (s *advisorService) Optimize(ctx context.Context, productID string) (*dto.OptimizeResponse, error) {
	rec, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.ErrNotFound
		}
		return nil, storeErr(err)
	}

	now := s.now()
	s.seedDemandSignal(ctx, rec, now)
	advice := s.scorer.Score(rec, now)

	if s.ml != nil {
		if mlAdvice, ok := s.predict(ctx, rec, advice.Factors); ok {
			advice.PriceFactor = mlAdvice.PriceFactor
			advice.MLScore = mlAdvice.MLScore
		}
	}

	factor := decimal.NewFromFloat(ClampPriceFactor(advice.PriceFactor))
	mlScore := ClampMLScore(advice.MLScore)

	suggestedPrice := rec.CurrentPrice.Mul(factor).Round(2)
	suggestedMargin := decimal.Zero
	if m := ComputeMargin(suggestedPrice, rec.Cost); m != nil {
		suggestedMargin = *m
	}

	if err := s.repo.UpdateSuggestion(ctx, productID, suggestedPrice, suggestedMargin,
		mlScore, advice.Factors, now); err != nil {
		return nil, storeErr(err)
	}

	return &dto.OptimizeResponse{
		CurrentPrice:    rec.CurrentPrice,
		SuggestedPrice:  suggestedPrice,
		SuggestedMargin: suggestedMargin,
		MLScore:         mlScore,
		PriceFactors:    advice.Factors,
		PriceChange:     FormatPriceChange(suggestedPrice, rec.CurrentPrice),
	}, nil
}

// seedDemandSignal fills the clearance-rate input of the demand forecast from
// recent fulfillment data when the record itself carries none. The value is
// used for scoring only; it is never written back to the record.
func (s *advisorService) seedDemandSignal(ctx context.Context, rec *model.PricingRecord, now time.Time) {
	if s.orders == nil || rec.ClearanceRate != 0 {
		return
	}
	total, delivered, err := s.orders.CountSince(ctx, now.AddDate(0, 0, -30))
	if err != nil || total == 0 {
		return
	}
	rec.ClearanceRate = float64(delivered) / float64(total)
}

// predict asks the sidecar through the circuit breaker. Any failure —
// transport error, bad status, open breaker — reports ok=false and the
// caller keeps the heuristic advice.
func (s *advisorService) predict(ctx context.Context, rec *model.PricingRecord, factors model.PriceFactors) (ScoreAdvice, bool) {
	days := 0
	if rec.DaysUntilExpiry != nil {
		days = *rec.DaysUntilExpiry
	}
	margin := 0.0
	if rec.Margin != nil {
		margin = rec.Margin.InexactFloat64()
	}
	payload := infra.PredictPayload{
		Cost:              rec.Cost.InexactFloat64(),
		CurrentPrice:      rec.CurrentPrice.InexactFloat64(),
		OriginalPrice:     rec.OriginalPrice.InexactFloat64(),
		Margin:            margin,
		Stock:             rec.Stock,
		MaxStock:          rec.MaxStock,
		MinStockLevel:     rec.MinStockLevel,
		DaysUntilExpiry:   days,
		IsPerishable:      rec.IsPerishable,
		ClearanceRate:     rec.ClearanceRate,
		WasteReduction:    rec.WasteReduction,
		ExpirationUrgency: factors.ExpirationUrgency,
		StockLevel:        factors.StockLevel,
		TimeOfDay:         factors.TimeOfDay,
		DemandForecast:    factors.DemandForecast,
		CompetitorPrice:   factors.CompetitorPrice,
		Seasonality:       factors.Seasonality,
		MarketTrend:       factors.MarketTrend,
	}

	var resp *infra.PredictResponse
	err := s.breaker.Execute(func() error {
		var callErr error
		resp, callErr = s.ml.Predict(ctx, payload)
		return callErr
	})
	if err != nil {
		log.Warn().Err(err).Str("product_id", rec.ProductID).
			Str("breaker", string(s.breaker.State())).
			Msg("ml sidecar unavailable, falling back to heuristic scorer")
		return ScoreAdvice{}, false
	}

	current := rec.CurrentPrice.InexactFloat64()
	if current == 0 || resp.SuggestedPrice <= 0 {
		return ScoreAdvice{}, false
	}
	return ScoreAdvice{
		PriceFactor: resp.SuggestedPrice / current,
		MLScore:     resp.MLScore * 100,
	}, true
}

func (s *advisorService) EnqueueFleet(ctx context.Context, req dto.OptimizeFleetRequest) (*dto.OptimizeFleetResponse, error) {
	if s.enqueuer == nil {
		return nil, fmt.Errorf("%w: job queue not configured", apierror.ErrStoreUnavailable)
	}

	recs, _, err := s.repo.List(ctx, dto.PricingFilter{SupplierID: req.SupplierID})
	if err != nil {
		return nil, storeErr(err)
	}

	enqueued := 0
	for i := range recs {
		if err := s.enqueuer.EnqueueOptimize(ctx, recs[i].ProductID); err != nil {
			log.Error().Err(err).Str("product_id", recs[i].ProductID).
				Msg("failed to enqueue optimization job")
			continue
		}
		enqueued++
	}
	return &dto.OptimizeFleetResponse{Enqueued: enqueued}, nil
}

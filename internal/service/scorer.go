package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"
)

// Advisory output bounds. The advisor clamps every scoring strategy's output
// to these ranges regardless of where the numbers came from.
const (
	MinPriceFactor = 0.9
	MaxPriceFactor = 1.2
	MinMLScore     = 80.0
	MaxMLScore     = 100.0
)

// ScoreAdvice is one strategy's verdict for a record: a bounded multiplier
// for the current price, a confidence figure, and the seven factor weights.
type ScoreAdvice struct {
	PriceFactor float64
	MLScore     float64
	Factors     model.PriceFactors
}

// Scorer produces advisory scores for a pricing record. The heuristic
// implementation below is swappable with a real model without touching the
// advisor's contract.
type Scorer interface {
	Score(rec *model.PricingRecord, now time.Time) ScoreAdvice
}

// HeuristicScorer derives factor weights from the record's own state and
// draws the price factor and confidence from bounded ranges. All outputs are
// deterministic given the record, the clock and the seed.
type HeuristicScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristicScorer seeds from the wall clock.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededScorer fixes the seed — used by tests and anywhere reproducible
// advice is needed.
func NewSeededScorer(seed int64) *HeuristicScorer {
	return &HeuristicScorer{rng: rand.New(rand.NewSource(seed))}
}

func (s *HeuristicScorer) Score(rec *model.PricingRecord, now time.Time) ScoreAdvice {
	s.mu.Lock()
	trendDraw := s.rng.Float64()
	factorDraw := s.rng.Float64()
	scoreDraw := s.rng.Float64()
	s.mu.Unlock()

	return ScoreAdvice{
		PriceFactor: MinPriceFactor + factorDraw*(MaxPriceFactor-MinPriceFactor),
		MLScore:     math.Round((0.8 + scoreDraw*0.2) * 100),
		Factors: model.PriceFactors{
			ExpirationUrgency: expirationUrgency(rec.DaysUntilExpiry),
			StockLevel:        stockLevel(rec.Stock, rec.MaxStock),
			TimeOfDay:         timeOfDayWeight(now),
			DemandForecast:    demandForecast(rec.ClearanceRate, rec.WasteReduction),
			CompetitorPrice:   competitorIndex(rec.OriginalPrice.InexactFloat64(), rec.CurrentPrice.InexactFloat64()),
			Seasonality:       seasonality(rec.IsPerishable),
			MarketTrend:       clampFactor(math.Round((0.6 + trendDraw*0.3) * 100)),
		},
	}
}

// Urgency grows as expiry approaches; a record with a month or more left
// scores 0, an expired one 100. No expiry means no urgency.
func expirationUrgency(days *int) int {
	if days == nil {
		return 0
	}
	return clampFactor(math.Round((1 - float64(*days)/30) * 100))
}

func stockLevel(stock, maxStock int) int {
	if maxStock <= 0 {
		return 0
	}
	if stock < 0 {
		stock = 0
	}
	return clampFactor(math.Round(float64(stock) / float64(maxStock) * 100))
}

// Afternoon demand runs higher than morning demand.
func timeOfDayWeight(now time.Time) int {
	if now.Hour() >= 12 {
		return 80
	}
	return 60
}

// Clearance carries heavier influence than waste reduction.
func demandForecast(clearanceRate, wasteReduction float64) int {
	v := math.Round(clearanceRate*70 + wasteReduction*30)
	if v < 10 {
		v = 10
	}
	return clampFactor(v)
}

// A price below its original reads as beating the market; the ratio is
// flattened so extreme discounts do not saturate the index immediately.
func competitorIndex(original, current float64) int {
	if original == 0 {
		original = 100
	}
	if current == 0 {
		current = original
	}
	return clampFactor(math.Round(100 + (original/current-1)*40))
}

func seasonality(perishable bool) int {
	if perishable {
		return 80
	}
	return 50
}

func clampFactor(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

// ClampPriceFactor bounds a strategy's multiplier to [0.9, 1.2].
func ClampPriceFactor(f float64) float64 {
	if f < MinPriceFactor {
		return MinPriceFactor
	}
	if f > MaxPriceFactor {
		return MaxPriceFactor
	}
	return f
}

// ClampMLScore bounds a confidence figure to [80, 100].
func ClampMLScore(s float64) float64 {
	if s < MinMLScore {
		return MinMLScore
	}
	if s > MaxMLScore {
		return MaxMLScore
	}
	return s
}

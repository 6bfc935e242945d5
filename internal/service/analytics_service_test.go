package service

import (
	"context"
	"testing"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/apierror"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalytics(repo *stubPricingRepo) *analyticsService {
	svc := NewAnalyticsService(repo, nil, nil, 0).(*analyticsService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func analyticsRecord(productID string, price, cost string, mlScore float64) *model.PricingRecord {
	return &model.PricingRecord{
		ProductID:     productID,
		SupplierID:    "sup-1",
		Name:          "Item " + productID,
		SKU:           "SKU-" + productID,
		CurrentPrice:  decimal.RequireFromString(price),
		OriginalPrice: decimal.RequireFromString(price),
		Cost:          decimal.RequireFromString(cost),
		Stock:         50,
		MaxStock:      100,
		MinStockLevel: 10,
		MLScore:       mlScore,
		Status:        model.StatusStable,
	}
}

// ── Fleet summary ─────────────────────────────────────────────────────────────

func TestSummarize_EmptyFleetDefaults(t *testing.T) {
	svc := newTestAnalytics(newStubPricingRepo())

	resp, err := svc.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, resp.TotalPricingItems)
	assert.Equal(t, 78.0, resp.WasteReduction)
	assert.Equal(t, 92.0, resp.ClearanceRate)
	assert.Equal(t, 92.5, resp.AvgMLScore)
	assert.Equal(t, 0.0, resp.RevenueSaved)

	pm := resp.MLEnginePerformance["profitMargin"]
	assert.Equal(t, 42.0, pm.Current)
	assert.Equal(t, "exceeded", pm.Status)
	acc := resp.MLEnginePerformance["mlAccuracy"]
	assert.Equal(t, 94.0, acc.Current)
	assert.Equal(t, "exceeded", acc.Status)
}

func TestSummarize_FleetAggregates(t *testing.T) {
	repo := newStubPricingRepo()
	withOpt := analyticsRecord("p-1", "10.00", "4.00", 90)
	withOpt.Optimization = model.Optimization{WasteReduction: 60, RevenueSaved: 1499}
	repo.records["p-1"] = withOpt
	// p-2 carries no optimization outcome
	repo.records["p-2"] = analyticsRecord("p-2", "20.00", "8.00", 0)
	svc := newTestAnalytics(repo)

	resp, err := svc.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalPricingItems)
	// 1 of 2 records has a positive waste-reduction outcome
	assert.Equal(t, 50.0, resp.WasteReduction)
	// no order source wired — policy default
	assert.Equal(t, 92.0, resp.ClearanceRate)
	// (90 + 92.5) / 2
	assert.Equal(t, 91.3, resp.AvgMLScore)
	// 1499 rounds to the nearest thousand
	assert.Equal(t, 1000.0, resp.RevenueSaved)
}

func TestSummarize_ClearanceRateFromRecentOrders(t *testing.T) {
	repo := newStubPricingRepo()
	repo.records["p-1"] = analyticsRecord("p-1", "10.00", "4.00", 90)
	svc := newTestAnalytics(repo)
	svc.orders = &stubOrderRepo{total: 10, delivered: 8}

	resp, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80.0, resp.ClearanceRate)
}

func TestSummarize_ClearanceRateDefaultWhenNoOrders(t *testing.T) {
	repo := newStubPricingRepo()
	repo.records["p-1"] = analyticsRecord("p-1", "10.00", "4.00", 90)
	svc := newTestAnalytics(repo)
	svc.orders = &stubOrderRepo{total: 0, delivered: 0}

	resp, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 92.0, resp.ClearanceRate)
}

func TestSummarize_ProfitMarginFromFleetTotals(t *testing.T) {
	repo := newStubPricingRepo()
	repo.records["p-1"] = analyticsRecord("p-1", "10.00", "4.00", 90)
	repo.records["p-2"] = analyticsRecord("p-2", "10.00", "8.00", 90)
	svc := newTestAnalytics(repo)

	resp, err := svc.Summarize(context.Background())
	require.NoError(t, err)

	// (20 - 12) / 20 = 40%
	pm := resp.MLEnginePerformance["profitMargin"]
	assert.Equal(t, 40.0, pm.Current)
	assert.Equal(t, 35.0, pm.Target)
	assert.Equal(t, "exceeded", pm.Status)
}

func TestSummarize_MLAccuracyCountsScoredRecordsOnly(t *testing.T) {
	repo := newStubPricingRepo()
	repo.records["p-1"] = analyticsRecord("p-1", "10.00", "4.00", 90) // accurate
	repo.records["p-2"] = analyticsRecord("p-2", "10.00", "4.00", 70) // below floor
	repo.records["p-3"] = analyticsRecord("p-3", "10.00", "4.00", 0)  // unscored
	svc := newTestAnalytics(repo)

	resp, err := svc.Summarize(context.Background())
	require.NoError(t, err)

	acc := resp.MLEnginePerformance["mlAccuracy"]
	assert.Equal(t, 50.0, acc.Current)
	assert.Equal(t, "below", acc.Status)
}

func TestSummarize_MetricStatusBoundary(t *testing.T) {
	// current == target counts as exceeded
	m := metric(75.0, 75.0)
	assert.Equal(t, "exceeded", m.Status)
	m = metric(74.9, 75.0)
	assert.Equal(t, "below", m.Status)
}

// ── Dashboard cards ───────────────────────────────────────────────────────────

func TestSummaryCards(t *testing.T) {
	repo := newStubPricingRepo()

	// Raised from its original price and carrying a suggestion
	optimized := analyticsRecord("p-1", "10.00", "4.00", 90)
	optimized.OriginalPrice = decimal.RequireFromString("8.00")
	suggested := decimal.RequireFromString("11.00")
	optimized.SuggestedPrice = &suggested
	optimized.Status = model.StatusOptimal
	repo.records["p-1"] = optimized

	// Unchanged price, but low stock raises an alert
	alert := analyticsRecord("p-2", "5.00", "2.00", 0)
	alert.Status = model.StatusLowStock
	repo.records["p-2"] = alert

	svc := newTestAnalytics(repo)
	resp, err := svc.SummaryCards(context.Background())
	require.NoError(t, err)

	// ((10-8)/8 = +25% over p-1, 0% over p-2) / 2
	assert.Equal(t, 12.5, resp.AvgPriceIncrease)
	// (10-8) * 50 units
	assert.Equal(t, 100.0, resp.RevenueImpact)
	// p-1 both moved and carries a suggestion; p-2 neither
	assert.Equal(t, 1, resp.ProductsOptimized)
	assert.Equal(t, 1, resp.PriceAlerts)
}

func TestSummaryCards_AlertOnThinMarginAndBelowCost(t *testing.T) {
	repo := newStubPricingRepo()

	belowCost := analyticsRecord("p-1", "3.00", "4.00", 0)
	repo.records["p-1"] = belowCost

	thin := analyticsRecord("p-2", "10.00", "9.50", 0)
	margin := decimal.RequireFromString("5.0")
	thin.Margin = &margin
	repo.records["p-2"] = thin

	svc := newTestAnalytics(repo)
	resp, err := svc.SummaryCards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.PriceAlerts)
}

func TestMLPerformance_AccuracyFromScores(t *testing.T) {
	repo := newStubPricingRepo()
	repo.records["p-1"] = analyticsRecord("p-1", "10.00", "4.00", 95)
	repo.records["p-2"] = analyticsRecord("p-2", "10.00", "4.00", 60)
	svc := newTestAnalytics(repo)

	resp, err := svc.MLPerformance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50.0, resp.Accuracy)
	assert.NotEmpty(t, resp.LastRetrain)
}

// ── Per-product reports ───────────────────────────────────────────────────────

func TestPriceFactors_NotFound(t *testing.T) {
	svc := newTestAnalytics(newStubPricingRepo())
	_, err := svc.PriceFactors(context.Background(), "missing")
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestPriceFactors_PrefersOptimizationTimestamp(t *testing.T) {
	repo := newStubPricingRepo()
	rec := analyticsRecord("p-1", "10.00", "4.00", 88)
	rec.LastUpdated = testNow.Add(-time.Hour)
	optAt := testNow.Add(-10 * time.Minute)
	rec.Optimization.LastOptimization = &optAt
	rec.PriceFactors = model.PriceFactors{ExpirationUrgency: 50, StockLevel: 40}
	repo.records["p-1"] = rec
	svc := newTestAnalytics(repo)

	resp, err := svc.PriceFactors(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, optAt, resp.LastUpdated)
	assert.Equal(t, 88.0, resp.Confidence)
	assert.Equal(t, 50, resp.PriceFactors.ExpirationUrgency)
}

func TestTimeOfDayDemand_DeterministicPerSKU(t *testing.T) {
	repo := newStubPricingRepo()
	repo.records["p-1"] = analyticsRecord("p-1", "10.00", "4.00", 90)
	svc := newTestAnalytics(repo)

	first, err := svc.TimeOfDayDemand(context.Background(), "p-1")
	require.NoError(t, err)
	second, err := svc.TimeOfDayDemand(context.Background(), "p-1")
	require.NoError(t, err)

	assert.Equal(t, first.TimeOfDayData, second.TimeOfDayData)
	assert.Equal(t, first.PeakHour, second.PeakHour)

	require.Len(t, first.TimeOfDayData, 6)
	for _, slot := range first.TimeOfDayData {
		assert.GreaterOrEqual(t, slot.Demand, 0)
		assert.LessOrEqual(t, slot.Demand, 100)
		assert.Greater(t, slot.Price, 0.0)
	}
}

func TestMLAnalytics_Recommendations(t *testing.T) {
	repo := newStubPricingRepo()

	rec := analyticsRecord("p-1", "10.00", "9.00", 85) // thin margin
	days := 2
	rec.DaysUntilExpiry = &days
	rec.Stock = 5 // below min 10
	margin := decimal.RequireFromString("10.0")
	rec.Margin = &margin
	repo.records["p-1"] = rec
	svc := newTestAnalytics(repo)

	resp, err := svc.MLAnalytics(context.Background(), "p-1")
	require.NoError(t, err)

	assert.Equal(t, "p-1", resp.Product.ID)
	require.NotEmpty(t, resp.Recommendations)
	assert.Contains(t, resp.Recommendations[0], "clearance")
	// expiring + low stock + thin margin
	assert.Len(t, resp.Recommendations, 3)
	require.Len(t, resp.PricingHistory, 7)
	assert.Equal(t, testNow.Format("2006-01-02"), resp.PricingHistory[6].Date)
}

func TestMLAnalytics_HealthyRecordGetsNeutralAdvice(t *testing.T) {
	repo := newStubPricingRepo()
	rec := analyticsRecord("p-1", "10.00", "4.00", 90)
	margin := decimal.RequireFromString("60.0")
	rec.Margin = &margin
	repo.records["p-1"] = rec
	svc := newTestAnalytics(repo)

	resp, err := svc.MLAnalytics(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)
	assert.Contains(t, resp.Recommendations[0], "no action")
}

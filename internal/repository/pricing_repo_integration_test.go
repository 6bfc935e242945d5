//go:build integration

package repository

// pricing_repo_integration_test.go
// Repository tests against a real Postgres via testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"testing"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/dto"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/infra"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("pricing_test"),
		tcPostgres.WithUsername("pricing"),
		tcPostgres.WithPassword("pricing"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func newRecord(productID string, price string) *model.PricingRecord {
	return &model.PricingRecord{
		ProductID:     productID,
		SupplierID:    "sup-1",
		SupplierName:  "Fresh Farms",
		Name:          "Item " + productID,
		SKU:           "SKU-" + productID,
		Category:      "Produce",
		CurrentPrice:  decimal.RequireFromString(price),
		OriginalPrice: decimal.RequireFromString(price),
		Cost:          decimal.RequireFromString("1.00"),
		Stock:         50,
		MaxStock:      100,
		MinStockLevel: 10,
		Status:        model.StatusStable,
		PriceChange:   "+0.0%",
		LastUpdated:   time.Now().UTC(),
	}
}

func TestPricingRepo_CreateAndFind(t *testing.T) {
	db := setupDB(t)
	repo := NewPricingRepository(db)
	ctx := context.Background()

	rec := newRecord("p-1", "2.48")
	require.NoError(t, repo.Create(ctx, nil, rec))

	got, err := repo.FindByProductID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, got.CurrentPrice.Equal(rec.CurrentPrice))
	assert.Equal(t, model.StatusStable, got.Status)
}

func TestPricingRepo_FindMissing(t *testing.T) {
	db := setupDB(t)
	repo := NewPricingRepository(db)

	_, err := repo.FindByProductID(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPricingRepo_DuplicateProductIDRejected(t *testing.T) {
	db := setupDB(t)
	repo := NewPricingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, nil, newRecord("p-1", "2.48")))
	assert.Error(t, repo.Create(ctx, nil, newRecord("p-1", "3.00")))
}

func TestPricingRepo_UpdateVersioned_Conflict(t *testing.T) {
	db := setupDB(t)
	repo := NewPricingRepository(db)
	ctx := context.Background()

	rec := newRecord("p-1", "2.48")
	require.NoError(t, repo.Create(ctx, nil, rec))

	// Two readers load the same version
	a, err := repo.FindByProductID(ctx, "p-1")
	require.NoError(t, err)
	b, err := repo.FindByProductID(ctx, "p-1")
	require.NoError(t, err)

	a.CurrentPrice = decimal.RequireFromString("2.98")
	require.NoError(t, repo.UpdateVersioned(ctx, nil, a))

	// The second writer's version is stale
	b.CurrentPrice = decimal.RequireFromString("1.98")
	err = repo.UpdateVersioned(ctx, nil, b)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// The first write won
	got, err := repo.FindByProductID(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, got.CurrentPrice.Equal(decimal.RequireFromString("2.98")))
}

func TestPricingRepo_UpdateSuggestion(t *testing.T) {
	db := setupDB(t)
	repo := NewPricingRepository(db)
	ctx := context.Background()

	rec := newRecord("p-1", "10.00")
	require.NoError(t, repo.Create(ctx, nil, rec))

	at := time.Now().UTC().Truncate(time.Second)
	factors := model.PriceFactors{ExpirationUrgency: 80, StockLevel: 40, TimeOfDay: 60,
		DemandForecast: 50, CompetitorPrice: 100, Seasonality: 80, MarketTrend: 70}
	require.NoError(t, repo.UpdateSuggestion(ctx, "p-1",
		decimal.RequireFromString("10.80"), decimal.RequireFromString("90.7"), 95, factors, at))

	got, err := repo.FindByProductID(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, got.SuggestedPrice)
	assert.True(t, got.SuggestedPrice.Equal(decimal.RequireFromString("10.80")))
	assert.Equal(t, 95.0, got.MLScore)
	assert.Equal(t, factors, got.PriceFactors)
	// suggestion writes bypass version checking
	assert.Equal(t, rec.Version, got.Version)
}

func TestPricingRepo_UpdateVersioned_PreservesFreshSuggestion(t *testing.T) {
	db := setupDB(t)
	repo := NewPricingRepository(db)
	ctx := context.Background()

	rec := newRecord("p-1", "10.00")
	require.NoError(t, repo.Create(ctx, nil, rec))

	// A writer loads the record before the advisor stores a suggestion
	stale, err := repo.FindByProductID(ctx, "p-1")
	require.NoError(t, err)
	require.Nil(t, stale.SuggestedPrice)

	at := time.Now().UTC().Truncate(time.Second)
	factors := model.PriceFactors{ExpirationUrgency: 80, StockLevel: 40, TimeOfDay: 60,
		DemandForecast: 50, CompetitorPrice: 100, Seasonality: 80, MarketTrend: 70}
	require.NoError(t, repo.UpdateSuggestion(ctx, "p-1",
		decimal.RequireFromString("10.80"), decimal.RequireFromString("90.7"), 95, factors, at))

	// The stale writer commits; the version still matches because suggestion
	// writes do not bump it
	stale.Stock = 25
	require.NoError(t, repo.UpdateVersioned(ctx, nil, stale))

	got, err := repo.FindByProductID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 25, got.Stock)
	require.NotNil(t, got.SuggestedPrice)
	assert.True(t, got.SuggestedPrice.Equal(decimal.RequireFromString("10.80")))
	assert.Equal(t, factors, got.PriceFactors)
	require.NotNil(t, got.Optimization.LastOptimization)
}

func TestPricingRepo_ListOrderAndFilter(t *testing.T) {
	db := setupDB(t)
	repo := NewPricingRepository(db)
	ctx := context.Background()

	older := newRecord("p-1", "2.00")
	older.LastUpdated = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, nil, older))

	newer := newRecord("p-2", "3.00")
	newer.SupplierID = "sup-2"
	require.NoError(t, repo.Create(ctx, nil, newer))

	recs, total, err := repo.List(ctx, dto.PricingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, recs, 2)
	assert.Equal(t, "p-2", recs[0].ProductID)

	recs, total, err = repo.List(ctx, dto.PricingFilter{SupplierID: "sup-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "p-2", recs[0].ProductID)
}

func TestPriceHistoryRepo_AppendOrder(t *testing.T) {
	db := setupDB(t)
	pricingRepo := NewPricingRepository(db)
	histRepo := NewPriceHistoryRepository(db)
	ctx := context.Background()

	require.NoError(t, pricingRepo.Create(ctx, nil, newRecord("p-1", "2.00")))

	base := time.Now().UTC().Add(-time.Minute)
	for i, price := range []string{"2.00", "2.50", "2.25"} {
		require.NoError(t, histRepo.Append(ctx, nil, &model.PriceHistory{
			ProductID: "p-1",
			Price:     decimal.RequireFromString(price),
			Reason:    model.ReasonManualUpdate,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	rows, err := histRepo.ListByProduct(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Price.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, rows[2].Price.Equal(decimal.RequireFromString("2.25")))
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/config"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/infra"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/repository"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/router"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/service"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One breaker guards every path to the ML sidecar: HTTP handlers,
	// queued jobs and the health endpoint all see the same state.
	mlCB := infra.NewSidecarBreaker(infra.DefaultBreakerConfig())
	mlClient := infra.NewMLClient(cfg.MLSidecarURL)
	dispatcher := worker.NewDispatcher(rdb)

	pricingRepo := repository.NewPricingRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	pricingSvc := service.NewPricingService(pricingRepo, historyRepo, productRepo, supplierRepo)
	advisorSvc := service.NewAdvisorService(pricingRepo, orderRepo, service.NewHeuristicScorer(), mlClient, mlCB, dispatcher)
	analyticsSvc := service.NewAnalyticsService(pricingRepo, orderRepo, rdb,
		time.Duration(cfg.AnalyticsCacheTTLSeconds)*time.Second)

	// Async optimization jobs and the derived-field refresh run in-process.
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.NewOptimizeWorker(advisorSvc, rdb))
	worker.StartRefreshCron(ctx, pricingSvc, time.Duration(cfg.RefreshIntervalMinutes)*time.Minute)

	r := router.New(cfg, router.Deps{
		Pricing:   pricingSvc,
		Advisor:   advisorSvc,
		Analytics: analyticsSvc,
		DB:        db,
		Redis:     rdb,
		MLBreaker: mlCB,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("pricing engine listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

package worker

// refresh_cron.go
// Background goroutine that periodically re-runs the derived-field pass over
// perishable records. daysUntilExpiry and status depend on wall time, so a
// record nobody writes to would otherwise go stale between requests.

import (
	"context"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/service"

	"github.com/rs/zerolog/log"
)

const refreshBatchSize = 200

// StartRefreshCron launches a background goroutine that ticks on the given
// interval and refreshes derived fields of expiring records.
// It respects the context for graceful shutdown.
func StartRefreshCron(ctx context.Context, svc service.PricingService, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("refresh_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("refresh_cron: shutting down")
				return
			case <-ticker.C:
				refreshed, err := svc.RefreshDerived(ctx, refreshBatchSize)
				if err != nil {
					log.Error().Err(err).Msg("refresh_cron: refresh pass failed")
					continue
				}
				if refreshed > 0 {
					log.Info().Int("refreshed", refreshed).Msg("refresh_cron: derived fields updated")
				}
			}
		}
	}()
}

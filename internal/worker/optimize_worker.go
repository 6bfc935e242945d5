package worker

// optimize_worker.go
// Processes single-record optimization jobs from QueueOptimize. Each job runs
// the advisor once for one product; the suggestion lands on the record and a
// fleet run is just many of these jobs fanned out.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/apierror"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxOptimizeRetries bounds re-enqueues before a job lands in the DLQ.
const MaxOptimizeRetries = 3

// OptimizeJobPayload is the job envelope sent to QueueOptimize.
type OptimizeJobPayload struct {
	ProductID string `json:"product_id"`
	Attempts  int    `json:"attempts"`
}

// OptimizeWorker runs queued optimization jobs against the advisor.
type OptimizeWorker struct {
	advisor service.AdvisorService
	rdb     *redis.Client
}

func NewOptimizeWorker(advisor service.AdvisorService, rdb *redis.Client) *OptimizeWorker {
	return &OptimizeWorker{advisor: advisor, rdb: rdb}
}

// Process handles a single optimization job:
//  1. Parse OptimizeJobPayload from the job envelope
//  2. Run the advisor for the product (suggestion is persisted by the advisor)
//  3. On transient failure re-enqueue with an attempt count; DLQ after max
//
// A missing record is terminal — the record was deleted between enqueue and
// execution, so the job is dropped without retry.
func (w *OptimizeWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload OptimizeJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("optimize_worker: invalid payload")
		return
	}
	if payload.ProductID == "" {
		log.Error().Msg("optimize_worker: empty product_id")
		return
	}

	resp, err := w.advisor.Optimize(ctx, payload.ProductID)
	if err == nil {
		log.Info().
			Str("product_id", payload.ProductID).
			Str("suggested_price", resp.SuggestedPrice.String()).
			Float64("ml_score", resp.MLScore).
			Msg("optimize_worker: suggestion stored")
		return
	}

	if errors.Is(err, apierror.ErrNotFound) {
		log.Warn().Str("product_id", payload.ProductID).
			Msg("optimize_worker: record no longer exists, dropping job")
		return
	}

	payload.Attempts++
	if payload.Attempts >= MaxOptimizeRetries {
		parkDeadJob(ctx, w.rdb, newDeadOptimizeJob(payload, err, time.Now().UTC()))
		return
	}

	log.Warn().Err(err).
		Str("product_id", payload.ProductID).
		Int("attempts", payload.Attempts).
		Msg("optimize_worker: transient failure, re-enqueueing")

	data, mErr := json.Marshal(payload)
	if mErr != nil {
		return
	}
	encoded, mErr := json.Marshal(Job{Type: "optimize", Payload: data})
	if mErr != nil {
		return
	}
	if err := w.rdb.LPush(ctx, QueueOptimize, encoded).Err(); err != nil {
		log.Error().Err(err).Str("product_id", payload.ProductID).
			Msg("optimize_worker: re-enqueue failed")
	}
}

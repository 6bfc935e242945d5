package worker

// Optimization jobs that exhaust their retries are parked on a Redis list so
// an operator can inspect or replay them. The engine has a single job type,
// so the entry is typed rather than a generic envelope.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// OptimizeDLQ holds optimization jobs that failed MaxOptimizeRetries times.
const OptimizeDLQ = "dlq:" + QueueOptimize

// DeadOptimizeJob records why a product's optimization kept failing.
type DeadOptimizeJob struct {
	ProductID string    `json:"productId"`
	Attempts  int       `json:"attempts"`
	Cause     string    `json:"cause"`
	FailedAt  time.Time `json:"failedAt"`
}

func newDeadOptimizeJob(payload OptimizeJobPayload, cause error, at time.Time) DeadOptimizeJob {
	return DeadOptimizeJob{
		ProductID: payload.ProductID,
		Attempts:  payload.Attempts,
		Cause:     cause.Error(),
		FailedAt:  at,
	}
}

// parkDeadJob moves an exhausted job onto the DLQ. Best-effort: a Redis
// failure here is logged and the job is lost, matching the advisory nature
// of suggestions (the next fleet run re-covers the record).
func parkDeadJob(ctx context.Context, rdb *redis.Client, job DeadOptimizeJob) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Str("product_id", job.ProductID).Msg("dlq: marshal failed")
		return
	}
	if err := rdb.LPush(ctx, OptimizeDLQ, data).Err(); err != nil {
		log.Error().Err(err).Str("product_id", job.ProductID).Msg("dlq: push failed")
		return
	}
	log.Warn().
		Str("product_id", job.ProductID).
		Int("attempts", job.Attempts).
		Str("cause", job.Cause).
		Msg("dlq: optimization job parked after exhausting retries")
}

// DeadOptimizeJobs reports the DLQ depth for monitoring.
func DeadOptimizeJobs(ctx context.Context, rdb *redis.Client) (int64, error) {
	return rdb.LLen(ctx, OptimizeDLQ).Result()
}

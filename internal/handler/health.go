package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/infra"
	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity, reports the ML sidecar breaker snapshot
// and the optimization DLQ depth; never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, breaker *infra.SidecarBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		var dlqDepth int64
		if redisStatus == "connected" {
			dlqDepth, _ = worker.DeadOptimizeJobs(ctx, rdb)
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":           status == http.StatusOK,
			"db":           dbStatus,
			"redis":        redisStatus,
			"ml_breaker":   breaker.Snapshot(),
			"optimize_dlq": dlqDepth,
		})
	}
}

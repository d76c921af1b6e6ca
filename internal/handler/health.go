package handler

import (
	"context"
	"net/http"
	"time"

	"stockbook/internal/infra"
	"stockbook/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the mailer circuit breaker
// state plus the alert DLQ backlog; never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlqBacklog int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			dlqBacklog, _ = worker.DLQLength(ctx, rdb, worker.QueueAlerts)
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":         status == http.StatusOK,
			"db":         dbStatus,
			"redis":      redisStatus,
			"mailer_cb":  mailCB.State().String(),
			"alerts_dlq": dlqBacklog,
		})
	}
}

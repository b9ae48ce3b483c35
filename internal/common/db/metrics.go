package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/messagely/backend/internal/common/constants"
	"github.com/messagely/backend/internal/observability/metrics"
)

// StartPoolMetrics publishes pool gauges until ctx is cancelled.
func StartPoolMetrics(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	if interval <= 0 {
		interval = constants.DBPoolMetricsInterval
	}

	go collectPoolMetrics(ctx, interval, func() {
		stats := pool.Stat()

		metrics.DBPoolAcquiredConnections.Set(float64(stats.AcquiredConns()))
		metrics.DBPoolIdleConnections.Set(float64(stats.IdleConns()))
		metrics.DBPoolMaxConnections.Set(float64(stats.MaxConns()))
		metrics.DBPoolTotalConnections.Set(float64(stats.TotalConns()))
	})
}

func collectPoolMetrics(ctx context.Context, interval time.Duration, observe func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			observe()
		}
	}
}

package db

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/messagely/backend/internal/common/constants"
	"github.com/messagely/backend/internal/common/logger"
)

func NewPool(ctx context.Context, log *logger.Logger, databaseURL string) *pgxpool.Pool {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		log.Fatalf("failed to parse database url: %v", err)
	}

	cfg.MaxConns = constants.DBPoolMaxOpenConns
	cfg.MinConns = constants.DBPoolMinOpenConns
	cfg.MaxConnLifetime = constants.DBPoolConnMaxLifetime
	cfg.MaxConnIdleTime = constants.DBPoolConnMaxIdleTime
	cfg.HealthCheckPeriod = constants.DBPoolHealthCheck
	cfg.ConnConfig.ConnectTimeout = constants.DBPoolConnectTimeout
	cfg.ConnConfig.RuntimeParams = map[string]string{
		"application_name": "messagely",
	}

	retryCfg := RetryConfig{
		MaxAttempts:  constants.DBPoolMaxAttempts,
		InitialDelay: constants.DBPoolRetryDelay,
		MaxDelay:     constants.DBPoolRetryDelay,
		Multiplier:   1.0,
	}

	var pool *pgxpool.Pool
	err = RetryWithBackoff(ctx, log, retryCfg, func() error {
		var connErr error
		pool, connErr = pgxpool.ConnectConfig(ctx, cfg)
		return connErr
	})
	if err != nil {
		log.Fatalf("failed to connect to database after %d attempts: %v", retryCfg.MaxAttempts, err)
		return nil
	}

	log.Infof("database connection pool initialized: max=%d, min=%d", cfg.MaxConns, cfg.MinConns)
	StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
	return pool
}

package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/messagely/backend/internal/observability/metrics"
)

func extractTableFromOperation(operation string) string {
	operation = strings.ToLower(operation)
	if strings.Contains(operation, "message") {
		return "messages"
	}
	if strings.Contains(operation, "user") || strings.Contains(operation, "login") {
		return "users"
	}
	return "unknown"
}

func HandleQueryError(err error, notFoundErr error, operation string, startTime time.Time) error {
	table := extractTableFromOperation(operation)
	duration := time.Since(startTime).Seconds()
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(duration)

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	errorType := fmt.Sprintf("%T", err)
	metrics.DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func HandleExecError(err error, operation string, startTime time.Time) error {
	table := extractTableFromOperation(operation)
	duration := time.Since(startTime).Seconds()
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(duration)

	if err == nil {
		return nil
	}
	errorType := fmt.Sprintf("%T", err)
	metrics.DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func MeasureQueryDuration(operation string, startTime time.Time) {
	table := extractTableFromOperation(operation)
	duration := time.Since(startTime).Seconds()
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(duration)
}

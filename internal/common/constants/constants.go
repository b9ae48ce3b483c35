package constants

import "time"

const (
	// bcrypt ignores input past 72 bytes.
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32

	MaxMessageLength      = 4000
	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultBcryptCost     = 12
	DefaultAccessTokenTTL = 30 * time.Minute
	DefaultRequestTimeout = 5 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/backend/internal/common/constants"
	commonerrors "github.com/messagely/backend/internal/common/errors"
)

type Config struct {
	HTTPPort       string
	DatabaseURL    string
	JWTSecret      string
	BcryptCost     int
	AccessTokenTTL time.Duration
	RequestTimeout time.Duration
}

func Load() (Config, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return Config{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	bcryptCost := getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost)
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("%w: got %d, want %d..%d",
			commonerrors.ErrInvalidBcryptCost, bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL:    databaseURL,
		JWTSecret:      jwtSecret,
		BcryptCost:     bcryptCost,
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
	}, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

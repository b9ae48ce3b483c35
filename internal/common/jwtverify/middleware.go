package jwtverify

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/messagely/backend/internal/common/errors"
	commonhttp "github.com/messagely/backend/internal/common/http"
	"github.com/messagely/backend/internal/common/logger"
	"github.com/messagely/backend/internal/observability/metrics"
)

type Claims struct {
	Username string
}

type contextKey string

const claimsKey contextKey = "jwt_claims"

func Middleware(secret string, log *logger.Logger) func(next http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
				log.Warnf("jwt auth failed path=%s: missing or invalid authorization header", r.URL.Path)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", "")
				return
			}

			tokenString := strings.TrimPrefix(raw, "Bearer ")
			claims, err := ParseToken(tokenString, secretBytes)
			if err != nil {
				log.Warnf("jwt auth failed path=%s: %v", r.URL.Path, err)
				commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid token", "")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

func ParseToken(tokenString string, secret []byte) (Claims, error) {
	metrics.JWTValidationsTotal.Inc()

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, commonerrors.ErrInvalidTokenSigningMethod
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		metrics.JWTValidationsFailed.Inc()
		if err == nil {
			err = commonerrors.ErrInvalidToken
		}
		return Claims{}, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		metrics.JWTValidationsFailed.Inc()
		return Claims{}, commonerrors.ErrInvalidToken
	}

	username, _ := mapClaims["sub"].(string)
	if username == "" {
		metrics.JWTValidationsFailed.Inc()
		return Claims{}, commonerrors.ErrMissingTokenClaims
	}

	return Claims{Username: username}, nil
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of registered users",
		},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	AccessTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	JWTValidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jwt_validations_total",
			Help: "Total number of JWT validations",
		},
	)

	JWTValidationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jwt_validations_failed_total",
			Help: "Total number of failed JWT validations",
		},
	)
)

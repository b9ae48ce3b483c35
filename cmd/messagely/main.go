package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/messagely/backend/internal/auth/http"
	authservice "github.com/messagely/backend/internal/auth/service"
	"github.com/messagely/backend/internal/common/clock"
	"github.com/messagely/backend/internal/common/config"
	commoncrypto "github.com/messagely/backend/internal/common/crypto"
	"github.com/messagely/backend/internal/common/db"
	commonhttp "github.com/messagely/backend/internal/common/http"
	"github.com/messagely/backend/internal/common/jwtverify"
	"github.com/messagely/backend/internal/common/logger"
	srv "github.com/messagely/backend/internal/common/server"
	messagehttp "github.com/messagely/backend/internal/message/http"
	messagerepo "github.com/messagely/backend/internal/message/repository"
	messageservice "github.com/messagely/backend/internal/message/service"
	userhttp "github.com/messagely/backend/internal/user/http"
	userrepo "github.com/messagely/backend/internal/user/repository"
	userservice "github.com/messagely/backend/internal/user/service"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "messagely", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	poolCtx, stopPoolMetrics := context.WithCancel(context.Background())
	pool := db.NewPool(poolCtx, log, cfg.DatabaseURL)

	realClock := clock.NewRealClock()
	hasher := commoncrypto.NewBcryptHasher(cfg.BcryptCost)
	idGenerator := commoncrypto.NewUUIDGenerator()

	users := userrepo.NewPgRepository(pool)
	messages := messagerepo.NewPgRepository(pool)

	issuer := authservice.NewTokenIssuer(cfg.JWTSecret, idGenerator, cfg.AccessTokenTTL, realClock)
	authSvc := authservice.NewAuthService(users, hasher, issuer, realClock, log)
	userSvc := userservice.NewUserService(users, messages, log)
	messageSvc := messageservice.NewMessageService(messages, idGenerator, realClock, log)

	requireAuth := jwtverify.Middleware(cfg.JWTSecret, log)

	authHandler := authhttp.NewHandler(authSvc, cfg.RequestTimeout, log)
	userHandler := requireAuth(userhttp.NewHandler(userSvc, cfg.RequestTimeout, log))
	messageHandler := requireAuth(messagehttp.NewHandler(messageSvc, cfg.RequestTimeout, log))

	mux := http.NewServeMux()
	mux.Handle("/health", authHandler)
	mux.Handle("/api/auth/", authHandler)
	mux.Handle("/api/users", userHandler)
	mux.Handle("/api/users/", userHandler)
	mux.Handle("/api/messages", messageHandler)
	mux.Handle("/api/messages/", messageHandler)
	mux.Handle("/metrics", promhttp.Handler())

	baseHandler := commonhttp.BuildBaseHandler(log, mux)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, baseHandler)

	srv.StartWithGracefulShutdownAndHooks(server, log, "messagely", []srv.ShutdownHook{
		func(context.Context) error {
			stopPoolMetrics()
			pool.Close()
			return nil
		},
	})
}

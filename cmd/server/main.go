package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/matchpoint/chat-backend/internal/api"
	"github.com/matchpoint/chat-backend/internal/core/service"
	"github.com/matchpoint/chat-backend/internal/infrastructure/connectycube"
	mongodb "github.com/matchpoint/chat-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/matchpoint/chat-backend/internal/infrastructure/db/redis"
	"github.com/matchpoint/chat-backend/internal/infrastructure/queue"
	"github.com/matchpoint/chat-backend/internal/infrastructure/secretbox"
	"github.com/matchpoint/chat-backend/internal/pkg/config"
	"github.com/matchpoint/chat-backend/pkg/logger"
)

const (
	tokenTTL            = 24 * time.Hour
	reconcileInterval   = time.Minute
	shutdownGracePeriod = 10 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	codec, err := secretbox.New(cfg.CryptoKey)
	if err != nil {
		log.Fatal().Err(err).Msg("credential codec initialisation failed")
	}

	remote := connectycube.NewClient(connectycube.Config{
		Endpoint:   cfg.ConnectyCube.Endpoint,
		AppID:      cfg.ConnectyCube.AppID,
		AuthKey:    cfg.ConnectyCube.AuthKey,
		AuthSecret: cfg.ConnectyCube.AuthSecret,
		Timeout:    cfg.ConnectyCube.Timeout,
	}, log)

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb index creation failed")
	}
	outboxRepo := mongodb.NewOutboxRepository(db)
	pushGuard := redisdb.NewPushReplayGuard(rdb)

	syncSvc := service.NewSyncService(remote, codec, outboxRepo, log)
	userSvc := service.NewUserService(userRepo, syncSvc, cfg.JWTSecret, tokenTTL, log)
	chatSvc := service.NewChatService(userRepo, syncSvc, pushGuard, log)

	reconciler := queue.NewReconciler(outboxRepo, syncSvc, reconcileInterval, log)
	reconciler.Start(ctx)

	e := api.NewRouter(userSvc, chatSvc, db, rdb, cfg.JWTSecret, log)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

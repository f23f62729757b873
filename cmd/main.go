package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/config"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/handler"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/service"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/store"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/validator"
	pkglog "github.com/rafaeelnunesf/api-bate-papo-uol/pkg/log"
)

func main() {
	// Load .env file if present; real env vars win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "bate-papo-api",
	})
	logger := pkglog.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting bate-papo-api")

	// Select the persistence backend. Both collections live in one store
	// handle; it is injected everywhere, never reached as a global.
	var (
		participants store.ParticipantStore
		messages     store.MessageStore
	)
	switch cfg.Store.Driver {
	case "redis":
		redisStore, err := store.NewRedisStore(store.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create redis store")
		}
		defer redisStore.Close()
		participants, messages = redisStore, redisStore
		logger.Info().Str("address", cfg.Redis.Address).Msg("using redis store")
	default:
		memStore := store.NewMemoryStore()
		participants, messages = memStore, memStore
		logger.Info().Msg("using in-memory store")
	}

	chatService := service.NewChatService(participants, messages)

	sweeper := service.NewSweeper(participants, messages, service.SweeperConfig{
		Interval:           cfg.Presence.SweepInterval,
		StalenessThreshold: cfg.Presence.StalenessThreshold,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Run(ctx)

	// Setup Gin router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(pkglog.GinMiddleware(logger))

	httpHandler := handler.NewHandler(chatService, validator.New())
	httpHandler.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("bate-papo-api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down bate-papo-api")

	cancel()         // stop the sweeper
	<-sweeper.Done() // wait for the in-flight tick

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	logger.Info().Msg("bate-papo-api stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/session-slot-console/internal/auth"
	"github.com/iliyamo/session-slot-console/internal/config"
	"github.com/iliyamo/session-slot-console/internal/database"
	"github.com/iliyamo/session-slot-console/internal/docstore"
	"github.com/iliyamo/session-slot-console/internal/events"
	"github.com/iliyamo/session-slot-console/internal/handler"
	"github.com/iliyamo/session-slot-console/internal/logging"
	"github.com/iliyamo/session-slot-console/internal/middleware"
	"github.com/iliyamo/session-slot-console/internal/repository"
	"github.com/iliyamo/session-slot-console/internal/router"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("env", cfg.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("close mysql", "error", err)
		}
	}()
	if err := database.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	// Redis is mandatory for the redis docstore backend and optional for
	// rate limiting.
	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if cfg.DocstoreBackend == "redis" {
			return fmt.Errorf("connect redis: %w", err)
		}
		logger.Warn("redis unavailable, rate limiting disabled", "addr", cfg.Redis.Addr, "error", err)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	store := newStore(cfg, rdb)
	logger.Info("document store ready", "backend", cfg.DocstoreBackend)

	sessions := repository.NewSessionRepo(store)
	slots := repository.NewSlotRepo(store)
	admins := repository.NewAdminRepo(store)
	gateway := auth.NewGateway(
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
		repository.NewPasswordResetRepo(db),
		auth.Settings{
			JWTSecret:      cfg.JWTSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
			BcryptCost:     cfg.BcryptCost,
			ResetTTLMin:    cfg.ResetTTLMin,
		},
	)

	var pub events.Publisher = events.NopPublisher{}
	if cfg.EventsEnabled {
		pub = events.NewAMQPPublisher(cfg.AMQPURL, logger)
		consumer := &events.ActivityConsumer{URL: cfg.AMQPURL, Dir: "logs", Logger: logger}
		go func() { _ = consumer.Run(ctx) }()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))

	authHandler := handler.NewAuthHandler(gateway, admins, pub, cfg.ResetTTLMin)
	consoleHandler := handler.NewConsoleHandler(sessions, slots, pub, handler.ConsoleDefaults{
		Teams:    cfg.DefaultTeams,
		Slots:    cfg.DefaultSlots,
		MaxSlots: cfg.MaxSlots,
	})
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, gateway)
	router.RegisterConsole(e, authHandler, consoleHandler, gateway, admins, middleware.NewTokenBucket(cfg.RateLimit, rdb))

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newStore(cfg config.Config, rdb *redis.Client) docstore.Store {
	if cfg.DocstoreBackend == "redis" {
		return docstore.NewRedisStore(rdb, cfg.DocstorePrefix)
	}
	return docstore.NewMemoryStore()
}

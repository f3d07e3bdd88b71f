package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"moodcal/internal/config"
	"moodcal/internal/database"
	"moodcal/internal/handler"
	"moodcal/internal/logger"
	"moodcal/internal/redis"
	"moodcal/internal/repository"
	"moodcal/internal/service"
	"moodcal/internal/store"
	"moodcal/internal/worker"
)

// Run wires the whole server together and blocks until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()

	// Repositories and stores
	accountRepo := repository.NewAccountRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	directory := store.NewIdentityDirectory(rdb.Client)
	profiles := store.NewProfileStore(rdb.Client)
	moods := store.NewMoodStore(rdb.Client)

	// Services
	accountService := service.NewAccountService(accountRepo, directory, profiles)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	moodService := service.NewMoodService(moods)

	// Background cleanup of expired refresh tokens
	cleanup := worker.NewCleanup(refreshTokenRepo, cfg.TokenCleanupInterval, cfg.TokenRetention)
	cleanup.Start(ctx)
	defer cleanup.Stop()

	router := NewRouter(RouterConfig{
		AuthHandler: handler.NewAuthHandler(accountService, authService),
		MoodHandler: handler.NewMoodHandler(moodService),
		UserHandler: handler.NewUserHandler(accountService, moodService),
		JWTSecret:   cfg.JWTSecret,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("Starting server on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

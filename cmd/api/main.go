package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewforge/checkpoint/internal/api"
	"github.com/crewforge/checkpoint/internal/cache"
	"github.com/crewforge/checkpoint/internal/capture"
	"github.com/crewforge/checkpoint/internal/capture/rekognition"
	"github.com/crewforge/checkpoint/internal/capture/simulated"
	"github.com/crewforge/checkpoint/internal/config"
	simdevice "github.com/crewforge/checkpoint/internal/device/simulated"
	"github.com/crewforge/checkpoint/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Checkpoint API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("capture_provider", cfg.CaptureProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pool
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Capture provider
	provider, err := newCaptureProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create capture provider: %w", err)
	}

	// Device authenticator
	authenticator := simdevice.New(cfg.DevicePlatform)

	// Scan dedupe cache, swept periodically
	pgCache := cache.NewPGCache(pool)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := pgCache.CleanupExpired(ctx); err != nil {
					logger.Warn("cache cleanup failed", slog.Any("error", err))
				}
			}
		}
	}()

	// Setup router
	deps := &api.Dependencies{
		CompanyRepo:      repository.NewCompanyRepository(pool),
		WorkerRepo:       repository.NewWorkerRepository(pool),
		TemplateRepo:     repository.NewTemplateRepository(pool),
		CredentialRepo:   repository.NewCredentialRepository(pool),
		VerificationRepo: repository.NewVerificationRepository(pool),
		LocationRepo:     repository.NewLocationCodeRepository(pool),
		AttendanceRepo:   repository.NewAttendanceRepository(pool),
		CaptureProvider:  provider,
		Authenticator:    authenticator,
		Cache:            pgCache,
		MatchThreshold:   cfg.MatchThreshold,
		DB:               pool,
	}

	router := api.NewRouter(logger, deps)
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}

func newCaptureProvider(ctx context.Context, cfg *config.Config) (capture.Provider, error) {
	switch cfg.CaptureProvider {
	case "rekognition":
		return rekognition.NewProvider(ctx, rekognition.DefaultConfig(cfg.AWSRegion))
	case "simulated":
		return simulated.New([]byte(cfg.CaptureSeed)), nil
	default:
		return nil, fmt.Errorf("unknown capture provider: %s", cfg.CaptureProvider)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/favorites"
	"github.com/i474232898/weather-dashboard/internal/geolocation"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run starts the service and blocks until a termination signal.
func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zl, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer zl.Sync()

	if cfg.EnvFileErr != nil {
		zl.Info("no .env file loaded", zap.Error(cfg.EnvFileErr))
	}
	if cfg.OpenWeatherAPIKey == "" {
		zl.Warn("OPENWEATHER_API_KEY is not set; searches will fail with a configuration error")
	}

	cal, err := cfg.Calendar()
	if err != nil {
		zl.Error("invalid calendar configuration", zap.Error(err))
		return err
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey,
		providers.WithBaseURL(cfg.OpenWeatherBaseURL),
		providers.WithRateLimit(cfg.ProviderRPS, cfg.ProviderBurst),
		providers.WithLogger(zl.Named("openweather")),
	)
	aggregator := weather.NewForecastAggregator(cal)

	registry := weather.NewRegistry(func() *weather.Session {
		return weather.NewSession(provider, aggregator, zl.Named("session"))
	}, zl.Named("registry"))

	kv, err := openStore(cfg, zl.Named("store"))
	if err != nil {
		zl.Error("failed to open favorites store", zap.String("backend", cfg.FavoritesBackend), zap.Error(err))
		return err
	}
	defer kv.Close()

	sched := scheduler.New(registry, cfg.RefreshInterval, zl.Named("scheduler"))
	if err := sched.Start(); err != nil {
		zl.Error("failed to start scheduler", zap.Error(err))
		return err
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-dashboard",
			"sessions": registry.Len(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Sessions:        registry,
		Favorites:       favorites.New(kv),
		DefaultLocation: geolocation.Static{Coordinates: cfg.DefaultLocation},
	})

	go func() {
		zl.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
		return err
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	if os.Getenv("APP_ENV") == "development" {
		zc = zap.NewDevelopmentConfig()
		zc.Level = lvl
	}
	return zc.Build()
}

func openStore(cfg *config.AppConfig, zl *zap.Logger) (store.KV, error) {
	switch cfg.FavoritesBackend {
	case config.BackendSQLite:
		return store.NewSQLiteStore(cfg.SQLitePath, zl)
	case config.BackendRedis:
		return store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, zl)
	default:
		return store.NewMemoryStore(), nil
	}
}

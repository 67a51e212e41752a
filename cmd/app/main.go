package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"skycourier/cmd"
	"skycourier/internal/adapters/out/postgres/idemrepo"
	"skycourier/internal/adapters/out/postgres/jobrepo"
	"skycourier/internal/adapters/out/postgres/orderrepo"
	"skycourier/internal/adapters/out/postgres/podrepo"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	configs := getConfigs()

	gormDB, err := gorm.Open(postgres.Open(configs.DBConnString()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Error("db connection failed", "error", err)
		os.Exit(1)
	}
	if err = migrate(gormDB); err != nil {
		logger.Error("db migration failed", "error", err)
		os.Exit(1)
	}

	root, err := cmd.NewCompositionRoot(configs, gormDB)
	if err != nil {
		logger.Error("composition root failed", "error", err)
		os.Exit(1)
	}

	server, err := root.CreateHTTPServer()
	if err != nil {
		logger.Error("http server assembly failed", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	server.RegisterRoutes(e)

	jobManager := root.CreateJobManager(logger)
	if err = jobManager.StartAll(); err != nil {
		logger.Error("background jobs failed to start", "error", err)
		os.Exit(1)
	}

	go func() {
		if startErr := e.Start("0.0.0.0:" + configs.HTTPPort); startErr != nil &&
			startErr != http.ErrServerClosed {
			logger.Error("http server stopped", "error", startErr)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	jobManager.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = e.Shutdown(ctx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.EventDTO{},
		&jobrepo.JobDTO{},
		&podrepo.ProofDTO{},
		&idemrepo.RecordDTO{},
	)
}

func getConfigs() cmd.Config {
	// a missing .env file is fine in containerized deployments where the
	// environment comes from the orchestrator
	_ = godotenv.Load(".env")

	return cmd.Config{
		HTTPPort: envOr("HTTP_PORT", "8080"),

		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     envOr("DB_USER", "postgres"),
		DBPassword: envOr("DB_PASSWORD", "postgres"),
		DBName:     envOr("DB_NAME", "skycourier"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),

		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		FleetAPIBaseURL:  envOr("FLEET_API_BASE_URL", "http://localhost:9001"),
		GCSBridgeBaseURL: os.Getenv("GCS_BRIDGE_BASE_URL"),

		OTPSecret: envOr("OTP_SECRET", "dev-otp-secret"),

		IdempotencyTTL: envDurationOr("IDEMPOTENCY_TTL", 24*time.Hour),

		RateLimitBackend:  envOr("RATE_LIMIT_BACKEND", cmd.RateLimitBackendMemory),
		OrderCreateLimit:  envIntOr("RATE_ORDER_CREATE_LIMIT", 5),
		OrderCreateWindow: envDurationOr("RATE_ORDER_CREATE_WINDOW", time.Minute),
		TrackingLimit:     envIntOr("RATE_TRACKING_LIMIT", 10),
		TrackingWindow:    envDurationOr("RATE_TRACKING_WINDOW", time.Minute),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn(fmt.Sprintf("ignoring malformed %s", key), "value", raw)
		return fallback
	}
	return value
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn(fmt.Sprintf("ignoring malformed %s", key), "value", raw)
		return fallback
	}
	return value
}

package cmd

import (
	"fmt"
	"time"
)

// Config carries everything the composition root needs to assemble the
// service. Values come from the environment; see cmd/app/main.go.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string

	FleetAPIBaseURL  string
	GCSBridgeBaseURL string

	OTPSecret string

	IdempotencyTTL time.Duration

	// RateLimitBackend selects where window counters live: "memory" for a
	// single instance, "redis" to share counters across replicas.
	RateLimitBackend  string
	OrderCreateLimit  int
	OrderCreateWindow time.Duration
	TrackingLimit     int
	TrackingWindow    time.Duration
}

const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// DBConnString builds the postgres DSN.
func (c Config) DBConnString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

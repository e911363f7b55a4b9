package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Booking configuration
	TicketPrefix    string
	SlotLockTTL     time.Duration
	SlotLockRetry   time.Duration
	SlotLockTimeout time.Duration

	// Scan configuration
	TicketLockTTL  time.Duration
	ScanRateLimit  int
	ScanRateWindow time.Duration

	// Monitoring
	EnableMetrics   bool
	MetricsAddr     string
	CollectInterval time.Duration
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Booking
		TicketPrefix:    getEnv("TICKET_PREFIX", "ED"),
		SlotLockTTL:     getEnvAsDuration("SLOT_LOCK_TTL", "5s"),
		SlotLockRetry:   getEnvAsDuration("SLOT_LOCK_RETRY", "50ms"),
		SlotLockTimeout: getEnvAsDuration("SLOT_LOCK_TIMEOUT", "2s"),

		// Scans
		TicketLockTTL:  getEnvAsDuration("TICKET_LOCK_TTL", "5s"),
		ScanRateLimit:  getEnvAsInt("SCAN_RATE_LIMIT", 30),
		ScanRateWindow: getEnvAsDuration("SCAN_RATE_WINDOW", "10s"),

		// Monitoring
		EnableMetrics:   getEnvAsBool("ENABLE_METRICS", true),
		MetricsAddr:     getEnv("METRICS_ADDR", ":9090"),
		CollectInterval: getEnvAsDuration("COLLECT_INTERVAL", "30s"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

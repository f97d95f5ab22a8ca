// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseURL string

	// Provider settings. Base URLs are overridable for tests; empty means
	// each client's default endpoint.
	FIRMSAPIKey        string
	FIRMSBaseURL       string
	POWERBaseURL       string
	MODISSubsetBaseURL string
	CMRBaseURL         string
	ProviderTimeout    time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka notification dispatch. No brokers means notifications are
	// logged instead of published.
	KafkaBrokers    []string
	KafkaAlertTopic string

	RetryMaxAttempts int
	RetryBase        time.Duration

	AlertingEnabled bool
	FireCooldown    time.Duration

	// Scheduled job intervals and parameters. A zero interval disables the
	// job.
	FireCheckInterval time.Duration
	FireBufferKm      float64
	FireDays          int
	WeatherInterval   time.Duration
	WeatherDays       int
	CleanupInterval   time.Duration

	AlertRetention   time.Duration
	WeatherRetention time.Duration
	ImageRetention   time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	providerTimeout, err := parseDuration("PROVIDER_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	retryBase, err := parseDuration("RETRY_BASE", "60s")
	if err != nil {
		return nil, err
	}
	fireCooldown, err := parseDuration("FIRE_ALERT_COOLDOWN", "6h")
	if err != nil {
		return nil, err
	}
	fireInterval, err := parseDuration("FIRE_CHECK_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}
	weatherInterval, err := parseDuration("WEATHER_UPDATE_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}
	cleanupInterval, err := parseDuration("CLEANUP_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}
	alertRetention, err := parseDuration("ALERT_RETENTION", "2160h") // 90 days
	if err != nil {
		return nil, err
	}
	weatherRetention, err := parseDuration("WEATHER_RETENTION", "8760h") // 365 days
	if err != nil {
		return nil, err
	}
	imageRetention, err := parseDuration("IMAGE_RETENTION", "4320h") // 180 days
	if err != nil {
		return nil, err
	}

	retryAttempts, err := parseInt("RETRY_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	fireDays, err := parseInt("FIRE_CHECK_DAYS", 2)
	if err != nil {
		return nil, err
	}
	weatherDays, err := parseInt("WEATHER_UPDATE_DAYS", 3)
	if err != nil {
		return nil, err
	}
	fireBufferKm, err := parseFloat("FIRE_CHECK_BUFFER_KM", 15)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		FIRMSAPIKey:        os.Getenv("FIRMS_API_KEY"),
		FIRMSBaseURL:       os.Getenv("FIRMS_BASE_URL"),
		POWERBaseURL:       os.Getenv("POWER_BASE_URL"),
		MODISSubsetBaseURL: os.Getenv("MODIS_SUBSET_BASE_URL"),
		CMRBaseURL:         os.Getenv("CMR_BASE_URL"),
		ProviderTimeout:    providerTimeout,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:    parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "field-alerts"),

		RetryMaxAttempts: retryAttempts,
		RetryBase:        retryBase,

		AlertingEnabled: envOrDefault("ALERTING_ENABLED", "true") == "true",
		FireCooldown:    fireCooldown,

		FireCheckInterval: fireInterval,
		FireBufferKm:      fireBufferKm,
		FireDays:          fireDays,
		WeatherInterval:   weatherInterval,
		WeatherDays:       weatherDays,
		CleanupInterval:   cleanupInterval,

		AlertRetention:   alertRetention,
		WeatherRetention: weatherRetention,
		ImageRetention:   imageRetention,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_ALERT_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

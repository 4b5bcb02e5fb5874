package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DataDir holds one time-series CSV per variable, named <variable>.csv.
	DataDir string

	// RiskCacheSize bounds the LRU cache of computed risk responses.
	RiskCacheSize int

	// Kafka aggregate export, disabled unless brokers are configured.
	KafkaBrokers       []string
	KafkaExportTopic   string
	KafkaExportEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseIntEnv("RISK_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	exportEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_EXPORT_ENABLED"); v != "" {
		exportEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		DataDir:         envOrDefault("DATA_DIR", "data"),
		RiskCacheSize:   cacheSize,

		KafkaBrokers:       brokers,
		KafkaExportTopic:   envOrDefault("KAFKA_EXPORT_TOPIC", "daily-weather-aggregates"),
		KafkaExportEnabled: exportEnabled,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.KafkaExportEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_EXPORT_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaExportEnabled && cfg.KafkaExportTopic == "" {
		return nil, errors.New("KAFKA_EXPORT_TOPIC is required when export is enabled")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

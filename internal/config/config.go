package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultHomepage = "https://github.com/soruly/trace.moe-telegram-bot"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port string
	Addr string

	TelegramToken   string
	TelegramWebhook string
	TelegramAPI     string

	TraceMoeAPI string
	TraceMoeKey string
	AnilistAPI  string

	SearchAttempts         int
	SearchTimeout          time.Duration
	LowConfidenceThreshold float64
	StrictMetadata         bool

	DB DBConfig

	LogLevel string
	Revision string
	Homepage string

	// EnvFile reports whether a .env file was loaded.
	EnvFile bool
}

// DBConfig locates the optional search log store.
type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	Path     string
}

// ListenAddr is the host:port the webhook server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Addr, c.Port)
}

// Load reads configuration from .env file (if present) and environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		EnvFile:         godotenv.Load() == nil,
		Port:            getEnv("PORT", "3000"),
		Addr:            getEnv("ADDR", "0.0.0.0"),
		TelegramToken:   getEnv("TELEGRAM_TOKEN", ""),
		TelegramWebhook: getEnv("TELEGRAM_WEBHOOK", ""),
		TelegramAPI:     getEnv("TELEGRAM_API", "https://api.telegram.org"),
		TraceMoeAPI:     getEnv("TRACE_MOE_API", "https://api.trace.moe"),
		TraceMoeKey:     getEnv("TRACE_MOE_KEY", ""),
		AnilistAPI:      getEnv("ANILIST_API", "https://trace.moe/anilist/"),
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", ""),
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", ""),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASS", ""),
			Path:     getEnv("DB_PATH", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Revision: getEnv("REVISION", getEnv("HEROKU_SLUG_COMMIT", "")),
		Homepage: getEnv("HOMEPAGE", DefaultHomepage),
	}

	var errs []error
	if cfg.TelegramToken == "" || cfg.TelegramWebhook == "" {
		errs = append(errs, errors.New("TELEGRAM_TOKEN and TELEGRAM_WEBHOOK must be set"))
	}

	var err error
	if cfg.SearchAttempts, err = strconv.Atoi(getEnv("SEARCH_ATTEMPTS", "5")); err != nil || cfg.SearchAttempts < 1 {
		errs = append(errs, errors.New("SEARCH_ATTEMPTS must be a positive integer"))
	}
	if cfg.SearchTimeout, err = time.ParseDuration(getEnv("SEARCH_TIMEOUT", "60s")); err != nil || cfg.SearchTimeout < 0 {
		errs = append(errs, errors.New("SEARCH_TIMEOUT must be a non-negative duration"))
	}
	if cfg.LowConfidenceThreshold, err = strconv.ParseFloat(getEnv("LOW_CONFIDENCE_THRESHOLD", "0"), 64); err != nil ||
		cfg.LowConfidenceThreshold < 0 || cfg.LowConfidenceThreshold > 1 {
		errs = append(errs, errors.New("LOW_CONFIDENCE_THRESHOLD must be between 0 and 1"))
	}
	if cfg.StrictMetadata, err = strconv.ParseBool(getEnv("STRICT_METADATA", "false")); err != nil {
		errs = append(errs, errors.New("STRICT_METADATA must be a boolean"))
	}

	if cfg.DB.Driver == "" {
		switch {
		case cfg.DB.Host != "":
			cfg.DB.Driver = "postgres"
		case cfg.DB.Path != "":
			cfg.DB.Driver = "sqlite"
		}
	}
	switch cfg.DB.Driver {
	case "", "postgres", "sqlite":
	case "none":
		cfg.DB.Driver = ""
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", cfg.DB.Driver))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

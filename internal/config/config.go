// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"

	// SessionModeVerified restores sessions by asking the backend
	SessionModeVerified = "verified"
	// SessionModeTrust restores sessions from stored keys alone
	SessionModeTrust = "trust"
)

// Config is the web server's configuration
type Config struct {
	AppEnv string
	Port   int

	// BackendURL is the REST backend root, including the /api prefix
	BackendURL string
	// DevBackend serves the in-memory backend from this process under /api
	DevBackend bool

	StorageType string
	RedisURL    string

	SessionMode  string
	CookieSecret string

	SearchDebounce  time.Duration
	CatalogPageSize int

	// AuthRateLimit is requests per second per client on login and register
	AuthRateLimit float64
	AuthRateBurst int
}

// DefaultConfig returns the configuration used when no variables are set
func DefaultConfig() Config {
	return Config{
		AppEnv:          "development",
		Port:            8080,
		BackendURL:      "http://localhost:5000/api",
		StorageType:     StorageTypeMemory,
		SessionMode:     SessionModeVerified,
		CookieSecret:    "dev-secret-change-me",
		SearchDebounce:  500 * time.Millisecond,
		CatalogPageSize: 20,
		AuthRateLimit:   2,
		AuthRateBurst:   5,
	}
}

// Load reads an optional .env file and then the environment
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a variable lookup function
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}

	str("APP_ENV", &cfg.AppEnv)
	num("LISTEN_PORT", &cfg.Port)
	str("BACKEND_URL", &cfg.BackendURL)
	str("STORAGE_TYPE", &cfg.StorageType)
	str("REDIS_URL", &cfg.RedisURL)
	str("SESSION_MODE", &cfg.SessionMode)
	str("COOKIE_SECRET", &cfg.CookieSecret)
	num("CATALOG_PAGE_SIZE", &cfg.CatalogPageSize)
	num("AUTH_RATE_BURST", &cfg.AuthRateBurst)

	if v, ok := lookup("DEV_BACKEND"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DEV_BACKEND: %w", err))
		}
		cfg.DevBackend = b
	}
	if v, ok := lookup("SEARCH_DEBOUNCE"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SEARCH_DEBOUNCE: %w", err))
		}
		cfg.SearchDebounce = d
	}
	if v, ok := lookup("AUTH_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT: %w", err))
		}
		cfg.AuthRateLimit = f
	}

	if len(errs) > 0 {
		return Config{}, errs[0]
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType)
	}
	if c.SessionMode != SessionModeVerified && c.SessionMode != SessionModeTrust {
		return fmt.Errorf("unknown SESSION_MODE %q", c.SessionMode)
	}
	if c.CatalogPageSize <= 0 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive")
	}
	if c.AppEnv == "production" && c.CookieSecret == DefaultConfig().CookieSecret {
		return fmt.Errorf("COOKIE_SECRET must be set in production")
	}
	return nil
}

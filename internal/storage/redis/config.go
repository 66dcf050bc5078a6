package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// ScopeTTL expires a client's state after this long without writes
	ScopeTTL time.Duration

	// KeyPrefix namespaces all keys written by the store
	KeyPrefix string
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		ScopeTTL:     30 * 24 * time.Hour,
		KeyPrefix:    "keyshop",
	}
}

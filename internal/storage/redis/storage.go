package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/storage"
)

// Storage keeps each scope in one Redis hash
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) scopeKey(scope model.ScopeID) string {
	return fmt.Sprintf("%s:scope:%s", s.cfg.KeyPrefix, scope)
}

func (s *Storage) Get(ctx context.Context, scope model.ScopeID, key string) (string, error) {
	value, err := s.client.HGet(ctx, s.scopeKey(scope), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, scope model.ScopeID, key, value string) error {
	hash := s.scopeKey(scope)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hash, key, value)
	if s.cfg.ScopeTTL > 0 {
		pipe.Expire(ctx, hash, s.cfg.ScopeTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) Delete(ctx context.Context, scope model.ScopeID, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.HDel(ctx, s.scopeKey(scope), keys...).Err()
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/keyshop/internal/model"
)

// Keys persisted per scope
const (
	KeyCurrentUser    = "currentUser"
	KeyUserRole       = "userRole"
	KeySelectedGenres = "selectedGenres"
	KeyBackendCookies = "backendCookies"
)

// ErrNotFound is returned when a key has no value in the scope
var ErrNotFound = errors.New("key not found")

// Store is a string key-value store partitioned by client scope
type Store interface {
	Get(ctx context.Context, scope model.ScopeID, key string) (string, error)
	Set(ctx context.Context, scope model.ScopeID, key, value string) error
	Delete(ctx context.Context, scope model.ScopeID, keys ...string) error
}

// GetJSON reads a JSON-encoded value into v
func GetJSON(ctx context.Context, s Store, scope model.ScopeID, key string, v any) error {
	raw, err := s.Get(ctx, scope, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v JSON-encoded
func SetJSON(ctx context.Context, s Store, scope model.ScopeID, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, scope, key, string(data))
}

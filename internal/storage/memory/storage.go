package memory

import (
	"context"
	"sync"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu     sync.RWMutex
	scopes map[model.ScopeID]map[string]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		scopes: make(map[model.ScopeID]map[string]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, scope model.ScopeID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.scopes[scope][key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, scope model.ScopeID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.scopes[scope]
	if !ok {
		values = make(map[string]string)
		s.scopes[scope] = values
	}
	values[key] = value
	return nil
}

func (s *Storage) Delete(ctx context.Context, scope model.ScopeID, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.scopes[scope]
	for _, key := range keys {
		delete(values, key)
	}
	if len(values) == 0 {
		delete(s.scopes, scope)
	}
	return nil
}

// ScopeCount returns how many scopes hold at least one key
func (s *Storage) ScopeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scopes)
}

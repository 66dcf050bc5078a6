// Package yamlfile persists scoped client state in a single YAML file.
// The CLI uses it as its local storage.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/storage"
)

type document struct {
	Scopes map[model.ScopeID]map[string]string `yaml:"scopes"`
}

// Storage is a file-backed implementation of the storage interface
type Storage struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Open loads the file at path. A missing file starts empty.
func Open(path string) (*Storage, error) {
	s := &Storage{path: path, doc: document{Scopes: map[model.ScopeID]map[string]string{}}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if s.doc.Scopes == nil {
		s.doc.Scopes = map[model.ScopeID]map[string]string{}
	}
	return s, nil
}

// Path returns the backing file path
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) Get(ctx context.Context, scope model.ScopeID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.doc.Scopes[scope][key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, scope model.ScopeID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.doc.Scopes[scope]
	if !ok {
		values = map[string]string{}
		s.doc.Scopes[scope] = values
	}
	values[key] = value
	return s.save()
}

func (s *Storage) Delete(ctx context.Context, scope model.ScopeID, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.doc.Scopes[scope]
	for _, key := range keys {
		delete(values, key)
	}
	if len(values) == 0 {
		delete(s.doc.Scopes, scope)
	}
	return s.save()
}

// save writes the document; the caller holds mu
func (s *Storage) save() error {
	data, err := yaml.Marshal(&s.doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	return os.WriteFile(s.path, data, 0o600)
}

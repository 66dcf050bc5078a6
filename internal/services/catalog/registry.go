package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/events"
	"github.com/mcoot/keyshop/internal/model"
)

// Registry holds one browser per client scope
type Registry struct {
	mu       sync.Mutex
	browsers map[model.ScopeID]*Browser
	backend  Backend
	clock    clock.Clock
	cfg      Config
	logger   *slog.Logger

	// Updates carries results of debounced searches
	Updates *events.Bus[Update]
}

// NewRegistry creates an empty registry
func NewRegistry(backend Backend, clk clock.Clock, cfg Config, logger *slog.Logger) *Registry {
	return &Registry{
		browsers: make(map[model.ScopeID]*Browser),
		backend:  backend,
		clock:    clk,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "catalog")),
		Updates:  events.NewBus[Update](),
	}
}

// For returns the scope's browser, creating it on first use
func (r *Registry) For(scope model.ScopeID) *Browser {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.browsers[scope]
	if !ok {
		b = NewBrowser(scope, r.backend, r.clock, r.cfg, r.Updates, r.logger)
		r.browsers[scope] = b
	}
	return b
}

// ApplyGenres re-queries the scope's browser with a new genre selection and
// publishes the result like a finished search
func (r *Registry) ApplyGenres(ctx context.Context, scope model.ScopeID, ids []string) {
	res, err := r.For(scope).SetGenres(ctx, ids)
	if errors.Is(err, model.ErrStaleResponse) {
		return
	}
	r.Updates.Publish(Update{Scope: scope, Result: res, Err: err})
}

// Sweep drops browsers idle for longer than maxIdle and returns how many were dropped
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.clock.Now().Add(-maxIdle)
	dropped := 0
	for scope, b := range r.browsers {
		b.mu.Lock()
		idle := b.lastUsed.Before(cutoff) && b.pending == nil
		b.mu.Unlock()
		if idle {
			delete(r.browsers, scope)
			dropped++
		}
	}
	return dropped
}

package menu

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/model"
)

// Registry holds one controller per client scope
type Registry struct {
	mu          sync.Mutex
	controllers map[model.ScopeID]*Controller
	clock       clock.Clock
	cfg         Config
	refresher   Refresher
	logger      *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(clk clock.Clock, cfg Config, refresher Refresher, logger *slog.Logger) *Registry {
	return &Registry{
		controllers: make(map[model.ScopeID]*Controller),
		clock:       clk,
		cfg:         cfg,
		refresher:   refresher,
		logger:      logger.With(slog.String("component", "menu")),
	}
}

// For returns the scope's controller, creating it closed
func (r *Registry) For(scope model.ScopeID) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[scope]
	if !ok {
		c = NewController(scope, r.clock, r.cfg, r.refresher, r.logger)
		r.controllers[scope] = c
	}
	return c
}

// Reset closes the scope's menu, if it has one. Called when the session changes.
func (r *Registry) Reset(scope model.ScopeID) {
	r.mu.Lock()
	c, ok := r.controllers[scope]
	r.mu.Unlock()
	if ok {
		c.Reset()
	}
}

// Sweep drops controllers idle for longer than maxIdle and returns how many were dropped
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.clock.Now().Add(-maxIdle)
	dropped := 0
	for scope, c := range r.controllers {
		c.mu.Lock()
		idle := c.lastUsed.Before(cutoff)
		c.mu.Unlock()
		if idle {
			delete(r.controllers, scope)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked scopes
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

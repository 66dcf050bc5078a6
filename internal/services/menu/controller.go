// Package menu implements the navigation menu state machine.
package menu

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/model"
)

// State is the menu's visible state
type State string

const (
	Closed       State = "closed"
	OpenGuest    State = "open-guest"
	OpenCustomer State = "open-customer"
	OpenSeller   State = "open-seller"
)

// IsOpen reports whether any menu body is showing
func (s State) IsOpen() bool {
	return s != Closed && s != ""
}

// Variant returns the menu body shown in this state
func (s State) Variant() model.MenuVariant {
	switch s {
	case OpenGuest:
		return model.MenuGuest
	case OpenCustomer:
		return model.MenuCustomer
	case OpenSeller:
		return model.MenuSeller
	default:
		return model.MenuNone
	}
}

func openStateFor(v model.MenuVariant) State {
	switch v {
	case model.MenuCustomer:
		return OpenCustomer
	case model.MenuSeller:
		return OpenSeller
	default:
		return OpenGuest
	}
}

// Reason names what closed the menu
type Reason string

const (
	ReasonToggle   Reason = "toggle"
	ReasonOutside  Reason = "click-outside"
	ReasonEscape   Reason = "escape"
	ReasonNavigate Reason = "navigate"
	ReasonScroll   Reason = "scroll"
)

// ParseReason maps a client-supplied reason, defaulting to click-outside
func ParseReason(s string) Reason {
	switch r := Reason(s); r {
	case ReasonEscape, ReasonNavigate, ReasonScroll, ReasonToggle:
		return r
	default:
		return ReasonOutside
	}
}

// Config holds the menu timing settings
type Config struct {
	// OpenGuard and CloseGuard are the animation windows during which
	// further transitions are ignored
	OpenGuard  time.Duration
	CloseGuard time.Duration

	// Scroll closes the menu only on viewports at most NarrowViewport wide
	// that have scrolled past ScrollBreakpoint
	NarrowViewport   int
	ScrollBreakpoint int
}

// DefaultConfig returns the default menu configuration
func DefaultConfig() Config {
	return Config{
		OpenGuard:        50 * time.Millisecond,
		CloseGuard:       350 * time.Millisecond,
		NarrowViewport:   768,
		ScrollBreakpoint: 100,
	}
}

// Refresher reloads the role-specific data shown inside an open menu
type Refresher interface {
	UpdateCartBadge(ctx context.Context, scope model.ScopeID) (model.Badge, error)
	UpdateListingCount(ctx context.Context, scope model.ScopeID) (int, error)
}

// Result is the outcome of a transition request
type Result struct {
	State State
	// Applied is false when the request fell inside the guard window
	Applied bool
}

// Controller is one client's menu
type Controller struct {
	scope     model.ScopeID
	clock     clock.Clock
	cfg       Config
	refresher Refresher
	logger    *slog.Logger

	mu        sync.Mutex
	state     State
	busyUntil time.Time
	lastUsed  time.Time
}

// NewController creates a closed menu
func NewController(scope model.ScopeID, clk clock.Clock, cfg Config, refresher Refresher, logger *slog.Logger) *Controller {
	return &Controller{
		scope:     scope,
		clock:     clk,
		cfg:       cfg,
		refresher: refresher,
		logger:    logger,
		state:     Closed,
		lastUsed:  clk.Now(),
	}
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Toggle opens the variant for the session, or closes it if that variant is already open.
// The variant is computed from the session passed now, not the one seen when the menu opened.
func (c *Controller) Toggle(ctx context.Context, s model.Session) Result {
	target := openStateFor(model.VariantFor(s))

	c.mu.Lock()
	now := c.clock.Now()
	c.lastUsed = now
	if now.Before(c.busyUntil) {
		defer c.mu.Unlock()
		return Result{State: c.state, Applied: false}
	}

	if c.state == target {
		c.state = Closed
		c.busyUntil = now.Add(c.cfg.CloseGuard)
		c.mu.Unlock()
		c.logger.Debug("menu closed", slog.String("scope", string(c.scope)), slog.String("reason", string(ReasonToggle)))
		return Result{State: Closed, Applied: true}
	}

	c.state = target
	c.busyUntil = now.Add(c.cfg.OpenGuard)
	c.mu.Unlock()

	c.refresh(ctx, target)
	return Result{State: target, Applied: true}
}

// Close closes the menu for an external trigger. Navigation always applies;
// other reasons respect the guard window.
func (c *Controller) Close(reason Reason) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	c.lastUsed = now

	if c.state == Closed {
		return Result{State: Closed, Applied: false}
	}
	if reason != ReasonNavigate && now.Before(c.busyUntil) {
		return Result{State: c.state, Applied: false}
	}

	c.state = Closed
	c.busyUntil = now.Add(c.cfg.CloseGuard)
	c.logger.Debug("menu closed", slog.String("scope", string(c.scope)), slog.String("reason", string(reason)))
	return Result{State: Closed, Applied: true}
}

// ShouldCloseOnScroll reports whether a scroll to scrollY on a viewport of the given width closes the menu
func (c *Controller) ShouldCloseOnScroll(width, scrollY int) bool {
	return width > 0 && width <= c.cfg.NarrowViewport && scrollY > c.cfg.ScrollBreakpoint
}

// Scrolled closes the menu when the scroll qualifies
func (c *Controller) Scrolled(width, scrollY int) Result {
	if !c.ShouldCloseOnScroll(width, scrollY) {
		return Result{State: c.State(), Applied: false}
	}
	return c.Close(ReasonScroll)
}

// Reset closes the menu immediately and clears the guard
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Closed
	c.busyUntil = time.Time{}
}

func (c *Controller) refresh(ctx context.Context, s State) {
	if c.refresher == nil {
		return
	}
	var err error
	switch s {
	case OpenCustomer:
		_, err = c.refresher.UpdateCartBadge(ctx, c.scope)
	case OpenSeller:
		_, err = c.refresher.UpdateListingCount(ctx, c.scope)
	}
	if err != nil {
		c.logger.Warn("menu refresh failed",
			slog.String("scope", string(c.scope)),
			slog.String("state", string(s)),
			slog.String("error", err.Error()),
		)
	}
}

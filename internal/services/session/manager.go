// Package session owns the client-side record of who is logged in.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/keyshop/internal/events"
	"github.com/mcoot/keyshop/internal/gateway"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/storage"
)

// Mode selects how RestoreSession trusts persisted state
type Mode string

const (
	// ModeVerified confirms every restore with GET /auth/check
	ModeVerified Mode = "verified"
	// ModeTrust accepts the persisted keys as-is. Legacy behavior.
	ModeTrust Mode = "trust"
)

// Config holds session manager settings
type Config struct {
	Mode Mode

	// ListingPageSize is the page size used to count a seller's listings
	ListingPageSize int
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{
		Mode:            ModeVerified,
		ListingPageSize: 100,
	}
}

// Backend is the subset of the gateway the manager calls
type Backend interface {
	Login(ctx context.Context, creds gateway.Credentials) (*gateway.AuthResult, error)
	Register(ctx context.Context, creds gateway.Credentials) (*gateway.AuthResult, error)
	Logout(ctx context.Context) error
	Check(ctx context.Context) (*model.User, error)
	GetCart(ctx context.Context) (*model.Cart, error)
	MyGames(ctx context.Context, page, pageSize int) (model.Page[model.Game], error)
}

// Change is published whenever a scope logs in or out
type Change struct {
	Scope   model.ScopeID
	Session model.Session
}

// BadgeUpdate is published whenever a scope's cart badge is recomputed
type BadgeUpdate struct {
	Scope model.ScopeID
	Badge model.Badge
}

// ListingUpdate is published whenever a seller's listing count is refreshed
type ListingUpdate struct {
	Scope model.ScopeID
	Count int
}

// Manager is the only writer of session state
type Manager struct {
	backend Backend
	store   storage.Store
	cfg     Config
	logger  *slog.Logger

	Changes  *events.Bus[Change]
	Badges   *events.Bus[BadgeUpdate]
	Listings *events.Bus[ListingUpdate]
}

// NewManager creates a session manager
func NewManager(backend Backend, store storage.Store, cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		backend:  backend,
		store:    store,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "session")),
		Changes:  events.NewBus[Change](),
		Badges:   events.NewBus[BadgeUpdate](),
		Listings: events.NewBus[ListingUpdate](),
	}
}

// Login authenticates against the backend and stores the session
func (m *Manager) Login(ctx context.Context, scope model.ScopeID, identifier, password string, role model.Role) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: %w", model.ErrAuth, model.ErrCredentialsRequired)
	}
	if !role.Valid() {
		role = model.RoleCustomer
	}

	res, err := m.backend.Login(ctx, gateway.LoginCredentials(identifier, password, role))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrAuth, err)
	}
	return m.establish(ctx, scope, res)
}

// Register creates an account and stores the resulting session
func (m *Manager) Register(ctx context.Context, scope model.ScopeID, email, username, password string, role model.Role) (*model.User, error) {
	email, username = strings.TrimSpace(email), strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: %w", model.ErrAuth, model.ErrCredentialsRequired)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %w", model.ErrAuth, model.ErrUnknownRole)
	}

	res, err := m.backend.Register(ctx, gateway.Credentials{
		Email:    email,
		Username: username,
		Password: password,
		UserRole: role,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrAuth, err)
	}
	return m.establish(ctx, scope, res)
}

func (m *Manager) establish(ctx context.Context, scope model.ScopeID, res *gateway.AuthResult) (*model.User, error) {
	user := res.User
	if !user.Role.Valid() {
		return nil, fmt.Errorf("%w: %w", model.ErrAuth, model.ErrUnknownRole)
	}

	if err := m.persist(ctx, scope, user); err != nil {
		return nil, err
	}
	if len(res.Cookies) > 0 {
		if err := storage.SetJSON(ctx, m.store, scope, storage.KeyBackendCookies, toStoredCookies(res.Cookies)); err != nil {
			return nil, fmt.Errorf("failed to save backend cookies: %w", err)
		}
	}

	m.logger.Info("logged in",
		slog.String("scope", string(scope)),
		slog.String("username", user.Username),
		slog.String("role", user.Role.String()),
	)
	m.Changes.Publish(Change{Scope: scope, Session: model.Session{User: user, Role: user.Role}})
	return user, nil
}

func (m *Manager) persist(ctx context.Context, scope model.ScopeID, user *model.User) error {
	if err := storage.SetJSON(ctx, m.store, scope, storage.KeyCurrentUser, user); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := m.store.Set(ctx, scope, storage.KeyUserRole, string(user.Role)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout ends the session. Local state is cleared even when the backend call fails.
func (m *Manager) Logout(ctx context.Context, scope model.ScopeID) {
	if err := m.backend.Logout(m.Authorize(ctx, scope)); err != nil {
		m.logger.Warn("backend logout failed",
			slog.String("scope", string(scope)),
			slog.String("error", err.Error()),
		)
	}
	m.clear(ctx, scope)
	m.Changes.Publish(Change{Scope: scope, Session: model.GuestSession()})
}

func (m *Manager) clear(ctx context.Context, scope model.ScopeID) {
	err := m.store.Delete(ctx, scope, storage.KeyCurrentUser, storage.KeyUserRole, storage.KeyBackendCookies)
	if err != nil {
		m.logger.Error("failed to clear session",
			slog.String("scope", string(scope)),
			slog.String("error", err.Error()),
		)
	}
}

// Current reads the persisted session without contacting the backend
func (m *Manager) Current(ctx context.Context, scope model.ScopeID) model.Session {
	roleStr, err := m.store.Get(ctx, scope, storage.KeyUserRole)
	if err != nil {
		return model.GuestSession()
	}
	var user model.User
	if err := storage.GetJSON(ctx, m.store, scope, storage.KeyCurrentUser, &user); err != nil {
		return model.GuestSession()
	}
	role := model.ParseRole(roleStr)
	if !role.Valid() {
		return model.GuestSession()
	}
	user.Role = role
	return model.Session{User: &user, Role: role}
}

// RestoreSession re-establishes the session on page load and reports whether
// a user is logged in. In verified mode any check failure silently yields guest.
func (m *Manager) RestoreSession(ctx context.Context, scope model.ScopeID) (model.Session, bool) {
	persisted := m.Current(ctx, scope)
	if m.cfg.Mode == ModeTrust {
		return persisted, !persisted.IsGuest()
	}

	cookies := m.cookies(ctx, scope)
	if len(cookies) == 0 && persisted.IsGuest() {
		return model.GuestSession(), false
	}

	user, err := m.backend.Check(gateway.WithCookies(ctx, cookies))
	if err == nil && !user.Role.Valid() {
		user.Role = persisted.Role
	}
	if err != nil || !user.Role.Valid() {
		if err != nil {
			m.logger.Debug("session check failed", slog.String("scope", string(scope)), slog.String("error", err.Error()))
		}
		m.clear(ctx, scope)
		if !persisted.IsGuest() {
			m.Changes.Publish(Change{Scope: scope, Session: model.GuestSession()})
		}
		return model.GuestSession(), false
	}

	if err := m.persist(ctx, scope, user); err != nil {
		m.logger.Warn("failed to refresh session", slog.String("error", err.Error()))
	}
	return model.Session{User: user, Role: user.Role}, true
}

// Authorize returns ctx carrying the scope's backend cookies
func (m *Manager) Authorize(ctx context.Context, scope model.ScopeID) context.Context {
	return gateway.WithCookies(ctx, m.cookies(ctx, scope))
}

func (m *Manager) cookies(ctx context.Context, scope model.ScopeID) []*http.Cookie {
	var stored []storedCookie
	err := storage.GetJSON(ctx, m.store, scope, storage.KeyBackendCookies, &stored)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("unreadable backend cookies", slog.String("error", err.Error()))
		}
		return nil
	}
	return fromStoredCookies(stored)
}

// UpdateCartBadge fetches the cart and publishes its badge. Non-customers get a hidden badge.
func (m *Manager) UpdateCartBadge(ctx context.Context, scope model.ScopeID) (model.Badge, error) {
	if !m.Current(ctx, scope).Is(model.RoleCustomer) {
		return model.Badge{}, nil
	}
	cart, err := m.backend.GetCart(m.Authorize(ctx, scope))
	if err != nil {
		return model.Badge{}, fmt.Errorf("failed to load cart: %w", err)
	}
	return m.PublishCart(scope, cart), nil
}

// PublishCart derives the badge from an already fetched cart snapshot
func (m *Manager) PublishCart(scope model.ScopeID, cart *model.Cart) model.Badge {
	badge := model.BadgeFor(cart)
	m.Badges.Publish(BadgeUpdate{Scope: scope, Badge: badge})
	return badge
}

// UpdateListingCount counts the seller's listings and publishes the count
func (m *Manager) UpdateListingCount(ctx context.Context, scope model.ScopeID) (int, error) {
	if !m.Current(ctx, scope).Is(model.RoleSeller) {
		return 0, nil
	}
	page, err := m.backend.MyGames(m.Authorize(ctx, scope), 1, m.cfg.ListingPageSize)
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	m.Listings.Publish(ListingUpdate{Scope: scope, Count: page.TotalElements})
	return page.TotalElements, nil
}

// Require returns the session if it has the role, or ErrRoleRequired
func (m *Manager) Require(ctx context.Context, scope model.ScopeID, role model.Role) (model.Session, error) {
	s := m.Current(ctx, scope)
	if !s.Is(role) {
		return s, model.ErrRoleRequired
	}
	return s, nil
}

// Package cart drives the customer's cart page. Every mutation re-fetches the
// full cart and republishes the badge from that snapshot.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/model"
)

// Backend is the subset of the gateway the cart calls
type Backend interface {
	GetCart(ctx context.Context) (*model.Cart, error)
	AddCartItem(ctx context.Context, gameID int64, quantity int) error
	RemoveCartItem(ctx context.Context, gameID int64, quantity int) error
	CreateOrder(ctx context.Context, lines []model.OrderLine) (*model.Order, error)
}

// Sessions is the subset of the session manager the cart needs
type Sessions interface {
	Require(ctx context.Context, scope model.ScopeID, role model.Role) (model.Session, error)
	Authorize(ctx context.Context, scope model.ScopeID) context.Context
	PublishCart(scope model.ScopeID, cart *model.Cart) model.Badge
}

type snapshot struct {
	cart      *model.Cart
	fetchedAt time.Time
}

// Service manages carts for all scopes
type Service struct {
	backend  Backend
	sessions Sessions
	clock    clock.Clock
	logger   *slog.Logger

	mu        sync.Mutex
	snapshots map[model.ScopeID]snapshot
}

// NewService creates the cart service
func NewService(backend Backend, sessions Sessions, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		backend:   backend,
		sessions:  sessions,
		clock:     clk,
		logger:    logger.With(slog.String("component", "cart")),
		snapshots: make(map[model.ScopeID]snapshot),
	}
}

func (s *Service) authorize(ctx context.Context, scope model.ScopeID) (context.Context, error) {
	if _, err := s.sessions.Require(ctx, scope, model.RoleCustomer); err != nil {
		return nil, err
	}
	return s.sessions.Authorize(ctx, scope), nil
}

// Load fetches the cart and refreshes the badge
func (s *Service) Load(ctx context.Context, scope model.ScopeID) (*model.Cart, error) {
	authCtx, err := s.authorize(ctx, scope)
	if err != nil {
		return nil, err
	}
	return s.refresh(authCtx, scope)
}

func (s *Service) refresh(authCtx context.Context, scope model.ScopeID) (*model.Cart, error) {
	cart, err := s.backend.GetCart(authCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	s.mu.Lock()
	s.snapshots[scope] = snapshot{cart: cart, fetchedAt: s.clock.Now()}
	s.mu.Unlock()
	s.sessions.PublishCart(scope, cart)
	return cart, nil
}

// Snapshot returns the last fetched cart, if any
func (s *Service) Snapshot(scope model.ScopeID) (*model.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[scope]
	return snap.cart, ok
}

// Forget drops the cached snapshot, on login or logout
func (s *Service) Forget(scope model.ScopeID) {
	s.mu.Lock()
	delete(s.snapshots, scope)
	s.mu.Unlock()
}

// Sweep drops snapshots fetched longer than maxIdle ago and returns how many were dropped
func (s *Service) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.clock.Now().Add(-maxIdle)
	dropped := 0
	for scope, snap := range s.snapshots {
		if snap.fetchedAt.Before(cutoff) {
			delete(s.snapshots, scope)
			dropped++
		}
	}
	return dropped
}

// mutate re-fetches the cart, lets op decide from that fresh copy, then
// re-fetches again for the badge and the page. The snapshot is only for rendering.
func (s *Service) mutate(ctx context.Context, scope model.ScopeID, op func(authCtx context.Context, cart *model.Cart) error) (*model.Cart, error) {
	authCtx, err := s.authorize(ctx, scope)
	if err != nil {
		return nil, err
	}
	cart, err := s.refresh(authCtx, scope)
	if err != nil {
		return nil, err
	}
	if err := op(authCtx, cart); err != nil {
		return nil, err
	}
	return s.refresh(authCtx, scope)
}

// Add puts one copy of a game in the cart, from the catalog or product page
func (s *Service) Add(ctx context.Context, scope model.ScopeID, gameID int64) (*model.Cart, error) {
	return s.mutate(ctx, scope, func(authCtx context.Context, _ *model.Cart) error {
		if err := s.backend.AddCartItem(authCtx, gameID, 1); err != nil {
			return fmt.Errorf("failed to add to cart: %w", err)
		}
		return nil
	})
}

// Increment adds one more copy of a line already in the cart
func (s *Service) Increment(ctx context.Context, scope model.ScopeID, gameID int64) (*model.Cart, error) {
	return s.mutate(ctx, scope, func(authCtx context.Context, cart *model.Cart) error {
		if _, ok := cart.Item(gameID); !ok {
			return model.ErrCartItemMissing
		}
		if err := s.backend.AddCartItem(authCtx, gameID, 1); err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
		return nil
	})
}

// Decrement removes one copy; the line is removed when it reaches zero
func (s *Service) Decrement(ctx context.Context, scope model.ScopeID, gameID int64) (*model.Cart, error) {
	return s.mutate(ctx, scope, func(authCtx context.Context, cart *model.Cart) error {
		if _, ok := cart.Item(gameID); !ok {
			return model.ErrCartItemMissing
		}
		if err := s.backend.RemoveCartItem(authCtx, gameID, 1); err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
		return nil
	})
}

// Remove drops a line entirely
func (s *Service) Remove(ctx context.Context, scope model.ScopeID, gameID int64) (*model.Cart, error) {
	return s.mutate(ctx, scope, func(authCtx context.Context, cart *model.Cart) error {
		item, ok := cart.Item(gameID)
		if !ok {
			return model.ErrCartItemMissing
		}
		if err := s.backend.RemoveCartItem(authCtx, gameID, item.Quantity); err != nil {
			return fmt.Errorf("failed to remove from cart: %w", err)
		}
		return nil
	})
}

// Checkout orders every line of the freshly fetched cart. A cart already
// shown as empty fails without contacting the backend.
func (s *Service) Checkout(ctx context.Context, scope model.ScopeID) (*model.Order, *model.Cart, error) {
	if _, err := s.sessions.Require(ctx, scope, model.RoleCustomer); err != nil {
		return nil, nil, err
	}
	if shown, ok := s.Snapshot(scope); ok && shown.IsEmpty() {
		return nil, nil, model.ErrEmptyCart
	}

	var order *model.Order
	cart, err := s.mutate(ctx, scope, func(authCtx context.Context, cart *model.Cart) error {
		if cart.IsEmpty() {
			return model.ErrEmptyCart
		}
		lines := make([]model.OrderLine, 0, len(cart.Items))
		for _, item := range cart.Items {
			lines = append(lines, model.OrderLine{GameID: item.GameID, Quantity: item.Quantity})
		}
		var err error
		if order, err = s.backend.CreateOrder(authCtx, lines); err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("order placed",
		slog.String("scope", string(scope)),
		slog.String("order", order.ID),
		slog.Int("items", order.ItemCount()),
	)
	return order, cart, nil
}

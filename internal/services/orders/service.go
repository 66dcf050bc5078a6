// Package orders drives the order history page.
package orders

import (
	"context"
	"fmt"

	"github.com/mcoot/keyshop/internal/model"
)

// DefaultPageSize is used when the caller does not choose one
const DefaultPageSize = 10

// Backend is the subset of the gateway the history page calls
type Backend interface {
	ListOrders(ctx context.Context, page, pageSize int) (model.Page[model.Order], error)
}

// Sessions is the subset of the session manager the history page needs
type Sessions interface {
	Require(ctx context.Context, scope model.ScopeID, role model.Role) (model.Session, error)
	Authorize(ctx context.Context, scope model.ScopeID) context.Context
}

// Service reads a customer's order history
type Service struct {
	backend  Backend
	sessions Sessions
}

// NewService creates the order history service
func NewService(backend Backend, sessions Sessions) *Service {
	return &Service{backend: backend, sessions: sessions}
}

// Page returns one page of orders. Pages past the end fall back to the last page.
func (s *Service) Page(ctx context.Context, scope model.ScopeID, page, size int) (model.Page[model.Order], error) {
	if _, err := s.sessions.Require(ctx, scope, model.RoleCustomer); err != nil {
		return model.Page[model.Order]{}, err
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	page = max(page, 1)

	authCtx := s.sessions.Authorize(ctx, scope)
	result, err := s.backend.ListOrders(authCtx, page, size)
	if err != nil {
		return model.Page[model.Order]{}, fmt.Errorf("failed to load orders: %w", err)
	}
	if len(result.Content) == 0 && result.TotalPages > 0 && page > result.TotalPages {
		return s.Page(ctx, scope, result.TotalPages, size)
	}
	return result, nil
}

// Package seller drives the seller console: listing, creating, editing and
// restocking the seller's own games.
package seller

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/genres"
)

// DefaultPageSize is the console's listing page size
const DefaultPageSize = 10

// Backend is the subset of the gateway the console calls
type Backend interface {
	MyGames(ctx context.Context, page, pageSize int) (model.Page[model.Game], error)
	GetGame(ctx context.Context, id int64) (*model.Game, error)
	CreateGame(ctx context.Context, d model.GameDraft) (*model.Game, error)
	UpdateGame(ctx context.Context, id int64, d model.GameDraft) (*model.Game, error)
	DeleteGame(ctx context.Context, id int64) error
	AddKeys(ctx context.Context, id int64, keys model.Upload) error
}

// Sessions is the subset of the session manager the console needs
type Sessions interface {
	Require(ctx context.Context, scope model.ScopeID, role model.Role) (model.Session, error)
	Authorize(ctx context.Context, scope model.ScopeID) context.Context
	UpdateListingCount(ctx context.Context, scope model.ScopeID) (int, error)
}

type preselection struct {
	genreIDs []string
	lastUsed time.Time
}

// Service manages the seller console for all scopes
type Service struct {
	backend  Backend
	sessions Sessions
	clock    clock.Clock
	logger   *slog.Logger

	mu        sync.Mutex
	preselect map[model.ScopeID]*preselection
}

// NewService creates the seller console service
func NewService(backend Backend, sessions Sessions, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		backend:   backend,
		sessions:  sessions,
		clock:     clk,
		logger:    logger.With(slog.String("component", "seller")),
		preselect: make(map[model.ScopeID]*preselection),
	}
}

func (s *Service) authorize(ctx context.Context, scope model.ScopeID) (context.Context, error) {
	if _, err := s.sessions.Require(ctx, scope, model.RoleSeller); err != nil {
		return nil, err
	}
	return s.sessions.Authorize(ctx, scope), nil
}

// Preselect remembers the genres applied in the widget for the next blank form.
// Only seller scopes are remembered; an empty selection forgets the scope.
func (s *Service) Preselect(sel genres.Selection) {
	_, err := s.sessions.Require(context.Background(), sel.Scope, model.RoleSeller)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || len(sel.GenreIDs) == 0 {
		delete(s.preselect, sel.Scope)
		return
	}
	s.preselect[sel.Scope] = &preselection{
		genreIDs: slices.Clone(sel.GenreIDs),
		lastUsed: s.clock.Now(),
	}
}

// NewDraft returns a blank form with the preselected genres
func (s *Service) NewDraft(scope model.ScopeID) model.GameDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.preselect[scope]
	if !ok {
		return model.GameDraft{}
	}
	p.lastUsed = s.clock.Now()
	return model.GameDraft{GenreIDs: slices.Clone(p.genreIDs)}
}

// Len returns the number of scopes with a preselection
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.preselect)
}

// Sweep drops preselections idle for longer than maxIdle and returns how many were dropped
func (s *Service) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.clock.Now().Add(-maxIdle)
	dropped := 0
	for scope, p := range s.preselect {
		if p.lastUsed.Before(cutoff) {
			delete(s.preselect, scope)
			dropped++
		}
	}
	return dropped
}

// DraftFor fills the edit form from an existing listing
func DraftFor(g *model.Game) model.GameDraft {
	return model.GameDraft{
		Title:          g.Title,
		Description:    g.Description,
		Price:          g.Price,
		DeveloperTitle: g.DeveloperTitle,
		PublisherTitle: g.PublisherTitle,
		GenreIDs:       g.GenreIDs(),
	}
}

// List returns one page of the seller's listings
func (s *Service) List(ctx context.Context, scope model.ScopeID, page int) (model.Page[model.Game], error) {
	authCtx, err := s.authorize(ctx, scope)
	if err != nil {
		return model.Page[model.Game]{}, err
	}
	result, err := s.backend.MyGames(authCtx, max(page, 1), DefaultPageSize)
	if err != nil {
		return model.Page[model.Game]{}, fmt.Errorf("failed to load listings: %w", err)
	}
	return result, nil
}

// Get loads one listing for editing
func (s *Service) Get(ctx context.Context, scope model.ScopeID, id int64) (*model.Game, error) {
	authCtx, err := s.authorize(ctx, scope)
	if err != nil {
		return nil, err
	}
	return s.backend.GetGame(authCtx, id)
}

// Create validates and submits a new listing
func (s *Service) Create(ctx context.Context, scope model.ScopeID, d model.GameDraft) (*model.Game, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	authCtx, err := s.authorize(ctx, scope)
	if err != nil {
		return nil, err
	}

	g, err := s.backend.CreateGame(authCtx, d)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	s.logger.Info("listing created", slog.String("scope", string(scope)), slog.Int64("game", g.ID))
	s.refreshCount(ctx, scope)
	return g, nil
}

// Update validates and submits changes to a listing. Key files are ignored.
func (s *Service) Update(ctx context.Context, scope model.ScopeID, id int64, d model.GameDraft) (*model.Game, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	authCtx, err := s.authorize(ctx, scope)
	if err != nil {
		return nil, err
	}

	d.Keys = nil
	g, err := s.backend.UpdateGame(authCtx, id, d)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return g, nil
}

// Delete removes a listing
func (s *Service) Delete(ctx context.Context, scope model.ScopeID, id int64) error {
	authCtx, err := s.authorize(ctx, scope)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteGame(authCtx, id); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	s.logger.Info("listing deleted", slog.String("scope", string(scope)), slog.Int64("game", id))
	s.refreshCount(ctx, scope)
	return nil
}

// AddKeys uploads more keys for a listing
func (s *Service) AddKeys(ctx context.Context, scope model.ScopeID, id int64, keys model.Upload) error {
	if len(keys.Content) == 0 {
		return model.ErrKeysRequired
	}
	authCtx, err := s.authorize(ctx, scope)
	if err != nil {
		return err
	}
	if err := s.backend.AddKeys(authCtx, id, keys); err != nil {
		return fmt.Errorf("failed to upload keys: %w", err)
	}
	return nil
}

func (s *Service) refreshCount(ctx context.Context, scope model.ScopeID) {
	if _, err := s.sessions.UpdateListingCount(ctx, scope); err != nil {
		s.logger.Warn("failed to refresh listing count", slog.String("error", err.Error()))
	}
}

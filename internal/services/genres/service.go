// Package genres implements the genre filter widget: a persisted multi-select
// whose applied selection is broadcast to the catalog and the seller form.
package genres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/mcoot/keyshop/internal/events"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/storage"
)

// Selection is broadcast when a scope applies or restores its genres
type Selection struct {
	Scope    model.ScopeID
	GenreIDs []string
	Labels   []string
}

// Option is one checkbox of the picker
type Option struct {
	model.Genre
	Selected bool
}

// View is everything the widget renders
type View struct {
	Options  []Option
	Chips    []model.Genre
	Count    int
	CanClear bool
}

// ApplyLabel is the apply button text, with the count when anything is selected
func (v View) ApplyLabel() string {
	if v.Count == 0 {
		return "Apply"
	}
	return "Apply (" + strconv.Itoa(v.Count) + ")"
}

// Backend provides the canonical genre list
type Backend interface {
	Genres(ctx context.Context) ([]model.Genre, error)
}

// Service manages genre selections for all scopes
type Service struct {
	store   storage.Store
	backend Backend
	bus     *events.Bus[Selection]
	logger  *slog.Logger

	mu    sync.Mutex
	known []model.Genre
}

// NewService creates the widget service. Applied selections are published on bus.
func NewService(store storage.Store, backend Backend, bus *events.Bus[Selection], logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		backend: backend,
		bus:     bus,
		logger:  logger.With(slog.String("component", "genres")),
	}
}

// Catalog returns the canonical list, falling back to the built-in list when the backend fails
func (s *Service) Catalog(ctx context.Context) []model.Genre {
	s.mu.Lock()
	known := s.known
	s.mu.Unlock()
	if known != nil {
		return known
	}

	list, err := s.backend.Genres(ctx)
	if err != nil || len(list) == 0 {
		if err != nil {
			s.logger.Warn("using built-in genre list", slog.String("error", err.Error()))
		}
		return model.Genres
	}

	s.mu.Lock()
	s.known = list
	s.mu.Unlock()
	return list
}

// Selected returns the persisted selection in selection order
func (s *Service) Selected(ctx context.Context, scope model.ScopeID) []string {
	var ids []string
	err := storage.GetJSON(ctx, s.store, scope, storage.KeySelectedGenres, &ids)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("discarding unreadable genre selection", slog.String("error", err.Error()))
	}
	return ids
}

func (s *Service) save(ctx context.Context, scope model.ScopeID, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	if err := storage.SetJSON(ctx, s.store, scope, storage.KeySelectedGenres, ids); err != nil {
		return fmt.Errorf("failed to save genres: %w", err)
	}
	return nil
}

// View renders the widget state for a scope
func (s *Service) View(ctx context.Context, scope model.ScopeID) View {
	return s.view(ctx, s.Selected(ctx, scope))
}

func (s *Service) view(ctx context.Context, ids []string) View {
	catalog := s.Catalog(ctx)
	v := View{Count: len(ids), CanClear: len(ids) > 0}
	for _, g := range catalog {
		v.Options = append(v.Options, Option{Genre: g, Selected: slices.Contains(ids, g.ID)})
	}
	for _, id := range ids {
		v.Chips = append(v.Chips, s.lookup(catalog, id))
	}
	return v
}

func (s *Service) lookup(catalog []model.Genre, id string) model.Genre {
	for _, g := range catalog {
		if g.ID == id {
			return g
		}
	}
	return model.Genre{ID: id, Label: model.GenreLabel(id)}
}

// Set selects or deselects one genre and persists the result
func (s *Service) Set(ctx context.Context, scope model.ScopeID, id string, selected bool) (View, error) {
	if !s.isKnown(ctx, id) {
		return View{}, fmt.Errorf("%w: %q", model.ErrUnknownGenre, id)
	}
	ids := s.Selected(ctx, scope)
	has := slices.Contains(ids, id)
	switch {
	case selected && !has:
		ids = append(ids, id)
	case !selected && has:
		ids = slices.DeleteFunc(ids, func(x string) bool { return x == id })
	}
	if err := s.save(ctx, scope, ids); err != nil {
		return View{}, err
	}
	return s.view(ctx, ids), nil
}

// Toggle flips one genre
func (s *Service) Toggle(ctx context.Context, scope model.ScopeID, id string) (View, error) {
	return s.Set(ctx, scope, id, !slices.Contains(s.Selected(ctx, scope), id))
}

// Remove drops a chip and re-applies the remaining selection
func (s *Service) Remove(ctx context.Context, scope model.ScopeID, id string) (Selection, error) {
	ids := slices.DeleteFunc(s.Selected(ctx, scope), func(x string) bool { return x == id })
	if err := s.save(ctx, scope, ids); err != nil {
		return Selection{}, err
	}
	return s.publish(ctx, scope, ids), nil
}

// Clear deselects everything without applying
func (s *Service) Clear(ctx context.Context, scope model.ScopeID) (View, error) {
	if err := s.save(ctx, scope, nil); err != nil {
		return View{}, err
	}
	return s.view(ctx, nil), nil
}

// Apply broadcasts the persisted selection
func (s *Service) Apply(ctx context.Context, scope model.ScopeID) (Selection, error) {
	ids := s.Selected(ctx, scope)
	if err := s.save(ctx, scope, ids); err != nil {
		return Selection{}, err
	}
	return s.publish(ctx, scope, ids), nil
}

// Restore re-broadcasts the persisted selection, on page load
func (s *Service) Restore(ctx context.Context, scope model.ScopeID) Selection {
	return s.publish(ctx, scope, s.Selected(ctx, scope))
}

func (s *Service) publish(ctx context.Context, scope model.ScopeID, ids []string) Selection {
	catalog := s.Catalog(ctx)
	sel := Selection{Scope: scope, GenreIDs: slices.Clone(ids)}
	for _, id := range ids {
		sel.Labels = append(sel.Labels, s.lookup(catalog, id).Label)
	}
	s.logger.Debug("genres applied", slog.String("scope", string(scope)), slog.Int("count", len(ids)))
	s.bus.Publish(sel)
	return sel
}

func (s *Service) isKnown(ctx context.Context, id string) bool {
	return slices.ContainsFunc(s.Catalog(ctx), func(g model.Genre) bool { return g.ID == id })
}

package genres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/keyshop/internal/events"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/storage/memory"
	"github.com/mcoot/keyshop/internal/testutil"
)

type stubBackend struct {
	genres []model.Genre
	err    error
	calls  int
}

func (b *stubBackend) Genres(ctx context.Context) ([]model.Genre, error) {
	b.calls++
	return b.genres, b.err
}

type ServiceSuite struct {
	suite.Suite
	backend   *stubBackend
	store     *memory.Storage
	service   *Service
	published []Selection
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = &stubBackend{genres: []model.Genre{
		{ID: "rpg", Label: "RPG"},
		{ID: "action", Label: "Action"},
		{ID: "strategy", Label: "Strategy"},
	}}
	s.store = memory.New()
	bus := events.NewBus[Selection]()
	s.published = nil
	bus.Subscribe("test", func(sel Selection) { s.published = append(s.published, sel) })
	s.service = NewService(s.store, s.backend, bus, testutil.NopLogger())
}

func (s *ServiceSuite) TestToggleKeepsSelectionOrder() {
	_, err := s.service.Toggle(s.ctx, "a", "strategy")
	s.Require().NoError(err)
	v, err := s.service.Toggle(s.ctx, "a", "rpg")
	s.Require().NoError(err)

	s.Equal(2, v.Count)
	s.Equal("Apply (2)", v.ApplyLabel())
	s.Equal([]model.Genre{{ID: "strategy", Label: "Strategy"}, {ID: "rpg", Label: "RPG"}}, v.Chips)
	s.True(v.Options[0].Selected)
	s.False(v.Options[1].Selected)
	s.Empty(s.published, "toggling must not apply")
}

func (s *ServiceSuite) TestToggleTwiceDeselects() {
	s.service.Toggle(s.ctx, "a", "rpg")
	v, err := s.service.Toggle(s.ctx, "a", "rpg")
	s.Require().NoError(err)
	s.Zero(v.Count)
	s.False(v.CanClear)
	s.Equal("Apply", v.ApplyLabel())
}

func (s *ServiceSuite) TestUnknownGenreRejected() {
	_, err := s.service.Toggle(s.ctx, "a", "poker")
	s.True(errors.Is(err, model.ErrUnknownGenre))
	s.Empty(s.service.Selected(s.ctx, "a"))
}

func (s *ServiceSuite) TestApplyAndRestoreRebroadcast() {
	s.service.Toggle(s.ctx, "a", "rpg")
	s.service.Toggle(s.ctx, "a", "action")

	sel, err := s.service.Apply(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal([]string{"rpg", "action"}, sel.GenreIDs)
	s.Equal([]string{"RPG", "Action"}, sel.Labels)

	// a fresh service over the same store stands in for a page reload
	bus := events.NewBus[Selection]()
	var restored []Selection
	bus.Subscribe("test", func(sel Selection) { restored = append(restored, sel) })
	reloaded := NewService(s.store, s.backend, bus, testutil.NopLogger())

	got := reloaded.Restore(s.ctx, "a")
	s.Equal([]string{"rpg", "action"}, got.GenreIDs)
	s.Require().Len(restored, 1)
	s.Equal(model.ScopeID("a"), restored[0].Scope)
}

func (s *ServiceSuite) TestRemoveReapplies() {
	s.service.Toggle(s.ctx, "a", "rpg")
	s.service.Toggle(s.ctx, "a", "action")

	sel, err := s.service.Remove(s.ctx, "a", "rpg")
	s.Require().NoError(err)
	s.Equal([]string{"action"}, sel.GenreIDs)
	s.Len(s.published, 1)
	s.Equal([]string{"action"}, s.service.Selected(s.ctx, "a"))
}

func (s *ServiceSuite) TestClearDoesNotApply() {
	s.service.Toggle(s.ctx, "a", "rpg")
	v, err := s.service.Clear(s.ctx, "a")
	s.Require().NoError(err)
	s.Zero(v.Count)
	s.Empty(s.published)
	s.Empty(s.service.Selected(s.ctx, "a"))
}

func (s *ServiceSuite) TestScopesAreIndependent() {
	s.service.Toggle(s.ctx, "a", "rpg")
	s.Empty(s.service.Selected(s.ctx, "b"))
}

func (s *ServiceSuite) TestCatalogFallsBackToBuiltIn() {
	s.backend.genres = nil
	s.backend.err = errors.New("down")
	s.Equal(model.Genres, s.service.Catalog(s.ctx))
}

func (s *ServiceSuite) TestCatalogIsCached() {
	s.service.Catalog(s.ctx)
	s.service.Catalog(s.ctx)
	s.Equal(1, s.backend.calls)
}

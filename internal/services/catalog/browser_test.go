package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/keyshop/internal/dependencies/mocks"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/testutil"
)

type listCall struct {
	filter model.Filter
	page   int
}

type stubBackend struct {
	calls      []listCall
	totalPages int
	err        error
	onCall     func(n int)
}

func (b *stubBackend) ListGames(ctx context.Context, f model.Filter, page, pageSize int) (model.Page[model.Game], error) {
	b.calls = append(b.calls, listCall{filter: f, page: page})
	if b.onCall != nil {
		b.onCall(len(b.calls))
	}
	if b.err != nil {
		return model.Page[model.Game]{}, b.err
	}
	return model.Page[model.Game]{
		Content:       []model.Game{{ID: int64(len(b.calls)), Title: f.TitleQuery}},
		PageNumber:    page,
		PageSize:      pageSize,
		TotalPages:    b.totalPages,
		TotalElements: b.totalPages * pageSize,
	}, nil
}

func price(v float64) *float64 { return &v }

type BrowserSuite struct {
	suite.Suite
	backend  *stubBackend
	clock    *mocks.MockClock
	registry *Registry
	browser  *Browser
	updates  []Update
	ctx      context.Context
}

func TestBrowserSuite(t *testing.T) {
	suite.Run(t, new(BrowserSuite))
}

func (s *BrowserSuite) SetupTest() {
	s.backend = &stubBackend{totalPages: 10}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = NewRegistry(s.backend, s.clock, DefaultConfig(), testutil.NopLogger())
	s.browser = s.registry.For("scope-1")
	s.updates = nil
	s.registry.Updates.Subscribe("test", func(u Update) { s.updates = append(s.updates, u) })
	s.ctx = context.Background()
}

func (s *BrowserSuite) TestInvalidPriceRangeMakesNoRequest() {
	_, err := s.browser.ApplyFilters(s.ctx, price(500), price(100))

	s.ErrorIs(err, model.ErrInvalidPriceRange)
	s.Empty(s.backend.calls)
	s.Nil(s.browser.Filter().MinPrice)
}

func (s *BrowserSuite) TestApplyFiltersResetsToFirstPage() {
	_, err := s.browser.GoTo(s.ctx, 4)
	s.Require().NoError(err)

	res, err := s.browser.ApplyFilters(s.ctx, price(100), price(500))
	s.Require().NoError(err)

	last := s.backend.calls[len(s.backend.calls)-1]
	s.Equal(1, last.page)
	s.InDelta(100.0, *last.filter.MinPrice, 0.001)
	s.Equal(1, res.Page.PageNumber)
}

func (s *BrowserSuite) TestWindowFollowsResponse() {
	_, _ = s.browser.Load(s.ctx)

	res, err := s.browser.GoTo(s.ctx, 5)
	s.Require().NoError(err)

	s.Equal([]string{"1", "…", "3", "4", "[5]", "6", "7", "…", "10"}, render(res.Window))
}

func (s *BrowserSuite) TestGoToClampsToKnownPages() {
	_, _ = s.browser.Load(s.ctx)

	res, err := s.browser.GoTo(s.ctx, 99)
	s.Require().NoError(err)
	s.Equal(10, res.Page.PageNumber)

	res, _ = s.browser.Next(s.ctx)
	s.Equal(10, res.Page.PageNumber)

	res, _ = s.browser.Prev(s.ctx)
	s.Equal(9, res.Page.PageNumber)
}

func (s *BrowserSuite) TestSearchIsDebounced() {
	s.browser.Search("d")
	s.clock.Advance(100 * time.Millisecond)
	s.browser.Search("do")
	s.clock.Advance(100 * time.Millisecond)
	s.browser.Search("doom")
	s.clock.Advance(499 * time.Millisecond)
	s.Empty(s.backend.calls)

	s.clock.Advance(time.Millisecond)

	s.Require().Len(s.backend.calls, 1)
	s.Equal("doom", s.backend.calls[0].filter.TitleQuery)
	s.Require().Len(s.updates, 1)
	s.Equal(model.ScopeID("scope-1"), s.updates[0].Scope)
	s.NoError(s.updates[0].Err)
}

func (s *BrowserSuite) TestKeystrokeDuringDebouncedFetchIsQueried() {
	s.backend.onCall = func(n int) {
		if n == 1 {
			s.browser.Search("doom eternal")
		}
	}

	s.browser.Search("doom")
	s.clock.Advance(DefaultConfig().Debounce)

	s.Require().Len(s.backend.calls, 1)
	s.Equal(1, s.clock.PendingTimers())

	s.clock.Advance(DefaultConfig().Debounce)

	s.Require().Len(s.backend.calls, 2)
	s.Equal("doom eternal", s.backend.calls[1].filter.TitleQuery)
	s.Require().Len(s.updates, 2)
	s.Equal("doom eternal", s.updates[1].Result.Filter.TitleQuery)
	s.Equal("doom eternal", s.browser.Filter().TitleQuery)
}

func (s *BrowserSuite) TestSearchNowCancelsPendingSearch() {
	s.browser.Search("slow")

	_, err := s.browser.SearchNow(s.ctx, "fast")
	s.Require().NoError(err)
	s.clock.Advance(time.Second)

	s.Require().Len(s.backend.calls, 1)
	s.Equal("fast", s.backend.calls[0].filter.TitleQuery)
	s.Empty(s.updates)
}

func (s *BrowserSuite) TestStaleResponseIsDiscarded() {
	s.backend.onCall = func(n int) {
		if n == 1 {
			// a newer query starts while the first is in flight
			_, err := s.browser.SearchNow(s.ctx, "newer")
			s.Require().NoError(err)
		}
	}

	_, err := s.browser.SearchNow(s.ctx, "older")

	s.ErrorIs(err, model.ErrStaleResponse)
	last, ok := s.browser.Last()
	s.Require().True(ok)
	s.Equal("newer", last.Filter.TitleQuery)
	s.Equal(uint64(2), last.Seq)
}

func (s *BrowserSuite) TestBackendErrorIsReturned() {
	s.backend.err = errors.New("boom")

	_, err := s.browser.Load(s.ctx)
	s.Error(err)
	_, ok := s.browser.Last()
	s.False(ok)
}

func (s *BrowserSuite) TestDebouncedErrorIsPublished() {
	s.backend.err = errors.New("boom")

	s.browser.Search("x")
	s.clock.Advance(time.Second)

	s.Require().Len(s.updates, 1)
	s.Error(s.updates[0].Err)
}

func (s *BrowserSuite) TestSetGenresAndClearAll() {
	_, err := s.browser.SetGenres(s.ctx, []string{"rpg", "action"})
	s.Require().NoError(err)
	s.Equal([]string{"rpg", "action"}, s.browser.Filter().GenreIDs)

	_, _ = s.browser.ApplyFilters(s.ctx, price(1), nil)
	_, _ = s.browser.SearchNow(s.ctx, "doom")

	res, err := s.browser.ClearAll(s.ctx)
	s.Require().NoError(err)
	s.True(res.Filter.IsZero())
}

func (s *BrowserSuite) TestResetPriceKeepsTitle() {
	_, _ = s.browser.SearchNow(s.ctx, "doom")
	_, _ = s.browser.ApplyFilters(s.ctx, price(1), price(2))

	res, err := s.browser.ResetPrice(s.ctx)
	s.Require().NoError(err)
	s.False(res.Filter.HasPrice())
	s.Equal("doom", res.Filter.TitleQuery)
}

func (s *BrowserSuite) TestRegistrySweepKeepsPendingSearches() {
	cfg := DefaultConfig()
	cfg.Debounce = 3 * time.Hour
	registry := NewRegistry(s.backend, s.clock, cfg, testutil.NopLogger())
	registry.For("idle")
	registry.For("busy").Search("pending")

	s.clock.Advance(2 * time.Hour)

	s.Equal(1, registry.Sweep(time.Hour))
}

func (s *BrowserSuite) TestApplyGenresPublishesResult() {
	_, _ = s.browser.GoTo(s.ctx, 3)

	s.registry.ApplyGenres(s.ctx, "scope-1", []string{"rpg"})

	s.Require().Len(s.updates, 1)
	s.Equal(model.ScopeID("scope-1"), s.updates[0].Scope)
	s.Equal([]string{"rpg"}, s.updates[0].Result.Filter.GenreIDs)
	s.Equal(1, s.backend.calls[len(s.backend.calls)-1].page)
	last, ok := s.browser.Last()
	s.True(ok)
	s.Equal(s.updates[0].Result.Seq, last.Seq)
}

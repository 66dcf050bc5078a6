// Package catalog drives the game listing: filters, debounced search and pagination.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/events"
	"github.com/mcoot/keyshop/internal/model"
)

// Config holds catalog settings
type Config struct {
	PageSize int
	Debounce time.Duration
}

// DefaultConfig returns the default catalog configuration
func DefaultConfig() Config {
	return Config{
		PageSize: 20,
		Debounce: 500 * time.Millisecond,
	}
}

// Backend lists games
type Backend interface {
	ListGames(ctx context.Context, f model.Filter, page, pageSize int) (model.Page[model.Game], error)
}

// Result is one delivered catalog response
type Result struct {
	Seq    uint64
	Filter model.Filter
	Page   model.Page[model.Game]
	Window []PageLink
}

// Update is published when a debounced search delivers a result
type Update struct {
	Scope  model.ScopeID
	Result Result
	Err    error
}

// Browser is one client's catalog state
type Browser struct {
	scope   model.ScopeID
	backend Backend
	clock   clock.Clock
	cfg     Config
	updates *events.Bus[Update]
	logger  *slog.Logger

	mu            sync.Mutex
	filter        model.Filter
	page          int
	totalPages    int
	totalElements int
	seq           uint64
	pending       clock.Timer
	searchGen     uint64
	last          *Result
	lastUsed      time.Time
}

// NewBrowser creates a browser on page 1 with an empty filter
func NewBrowser(scope model.ScopeID, backend Backend, clk clock.Clock, cfg Config, updates *events.Bus[Update], logger *slog.Logger) *Browser {
	return &Browser{
		scope:      scope,
		backend:    backend,
		clock:      clk,
		cfg:        cfg,
		updates:    updates,
		logger:     logger,
		page:       1,
		totalPages: 1,
		lastUsed:   clk.Now(),
	}
}

// Filter returns a copy of the current filter
func (b *Browser) Filter() model.Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter.Clone()
}

// Last returns the most recent delivered result
func (b *Browser) Last() (Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return Result{}, false
	}
	return *b.last, true
}

// Load queries the current filter and page
func (b *Browser) Load(ctx context.Context) (Result, error) {
	return b.query(ctx, nil)
}

// ApplyFilters sets the price range and returns to page 1.
// An inverted range is rejected before any request is made.
func (b *Browser) ApplyFilters(ctx context.Context, minPrice, maxPrice *float64) (Result, error) {
	candidate := b.Filter()
	candidate.MinPrice, candidate.MaxPrice = minPrice, maxPrice
	if err := candidate.Validate(); err != nil {
		return Result{}, err
	}
	return b.query(ctx, func() {
		b.filter.MinPrice, b.filter.MaxPrice = candidate.MinPrice, candidate.MaxPrice
		b.page = 1
	})
}

// ResetPrice clears the price range
func (b *Browser) ResetPrice(ctx context.Context) (Result, error) {
	return b.query(ctx, func() {
		b.filter.MinPrice, b.filter.MaxPrice = nil, nil
		b.page = 1
	})
}

// ClearAll clears every criterion, including title and genres
func (b *Browser) ClearAll(ctx context.Context) (Result, error) {
	b.cancelPending()
	return b.query(ctx, func() {
		b.filter = model.Filter{}
		b.page = 1
	})
}

// SetGenres replaces the genre criterion and returns to page 1
func (b *Browser) SetGenres(ctx context.Context, ids []string) (Result, error) {
	return b.query(ctx, func() {
		b.filter.GenreIDs = append([]string(nil), ids...)
		b.page = 1
	})
}

// Search schedules a title search after the debounce delay. Each call cancels the
// pending one. The result is published on the updates bus.
func (b *Browser) Search(title string) {
	title = strings.TrimSpace(title)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastUsed = b.clock.Now()
	if b.pending != nil {
		b.pending.Stop()
	}
	b.searchGen++
	gen := b.searchGen
	b.pending = b.clock.AfterFunc(b.cfg.Debounce, func() {
		b.mu.Lock()
		if gen != b.searchGen {
			// superseded after the timer fired
			b.mu.Unlock()
			return
		}
		b.pending = nil
		b.filter.TitleQuery = title
		b.page = 1
		seq, filter, page := b.beginLocked()
		b.mu.Unlock()

		res, err := b.fetch(context.Background(), seq, filter, page)
		if errors.Is(err, model.ErrStaleResponse) {
			return
		}
		b.updates.Publish(Update{Scope: b.scope, Result: res, Err: err})
	})
}

// SearchNow applies a title search immediately, cancelling any pending one
func (b *Browser) SearchNow(ctx context.Context, title string) (Result, error) {
	b.cancelPending()
	title = strings.TrimSpace(title)
	return b.query(ctx, func() {
		b.filter.TitleQuery = title
		b.page = 1
	})
}

// GoTo moves to a page, clamped to the known page count
func (b *Browser) GoTo(ctx context.Context, page int) (Result, error) {
	return b.query(ctx, func() {
		b.page = min(max(page, 1), max(b.totalPages, 1))
	})
}

// Next moves one page forward
func (b *Browser) Next(ctx context.Context) (Result, error) {
	b.mu.Lock()
	page := b.page + 1
	b.mu.Unlock()
	return b.GoTo(ctx, page)
}

// Prev moves one page back
func (b *Browser) Prev(ctx context.Context) (Result, error) {
	b.mu.Lock()
	page := b.page - 1
	b.mu.Unlock()
	return b.GoTo(ctx, page)
}

func (b *Browser) cancelPending() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searchGen++
	if b.pending != nil {
		b.pending.Stop()
		b.pending = nil
	}
}

// query applies mutate under the lock, then fetches. Every query takes the next
// sequence number; a response is kept only if no newer query started meanwhile.
func (b *Browser) query(ctx context.Context, mutate func()) (Result, error) {
	b.mu.Lock()
	if mutate != nil {
		mutate()
	}
	seq, filter, page := b.beginLocked()
	b.mu.Unlock()

	return b.fetch(ctx, seq, filter, page)
}

// beginLocked takes the next sequence number and snapshots the query. b.mu must be held.
func (b *Browser) beginLocked() (uint64, model.Filter, int) {
	b.seq++
	b.lastUsed = b.clock.Now()
	return b.seq, b.filter.Clone(), b.page
}

func (b *Browser) fetch(ctx context.Context, seq uint64, filter model.Filter, page int) (Result, error) {
	resp, err := b.backend.ListGames(ctx, filter, page, b.cfg.PageSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		b.logger.Debug("discarding stale catalog response",
			slog.String("scope", string(b.scope)),
			slog.Uint64("seq", seq),
			slog.Uint64("latest", b.seq),
		)
		return Result{}, model.ErrStaleResponse
	}
	if err != nil {
		return Result{Seq: seq, Filter: filter}, err
	}

	if resp.PageNumber > 0 {
		b.page = resp.PageNumber
	}
	b.totalPages = max(resp.TotalPages, 1)
	b.totalElements = resp.TotalElements

	res := Result{
		Seq:    seq,
		Filter: filter,
		Page:   resp,
		Window: PageWindow(b.page, b.totalPages),
	}
	b.last = &res
	return res, nil
}

package sse

import (
	"context"
	"log/slog"

	"github.com/a-h/templ"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/catalog"
	"github.com/mcoot/keyshop/internal/services/genres"
	"github.com/mcoot/keyshop/internal/services/session"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// Event names the page's SSE element listens for
const (
	EventCatalog  = "catalog-update"
	EventBadge    = "badge-update"
	EventListings = "listing-update"
	EventGenres   = "genre-update"
	EventSession  = "session-update"
)

// SessionReader reads a scope's stored session
type SessionReader interface {
	Current(ctx context.Context, scope model.ScopeID) model.Session
}

// GenreViewer renders a scope's genre widget state
type GenreViewer interface {
	View(ctx context.Context, scope model.ScopeID) genres.View
}

// Broadcaster turns service events into fragments for the scope's open tabs.
// Its methods are bus handlers; scopes with no open tab are skipped.
type Broadcaster struct {
	hubManager *HubManager
	sessions   SessionReader
	genres     GenreViewer
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, sessions SessionReader, genres GenreViewer, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		sessions:   sessions,
		genres:     genres,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

func (b *Broadcaster) send(scope model.ScopeID, event string, c templ.Component) {
	hub := b.hubManager.GetHub(scope)
	if hub == nil {
		return
	}
	html, err := Render(context.Background(), c)
	if err != nil {
		b.logger.Error("sse failed to render fragment",
			slog.String("scope", string(scope)),
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(event, OOB(html))
}

// CatalogUpdated pushes the results of a debounced search or a genre change
func (b *Broadcaster) CatalogUpdated(u catalog.Update) {
	canBuy := b.sessions.Current(context.Background(), u.Scope).Is(model.RoleCustomer)
	data := templates.ResultsFrom(u.Result, canBuy)
	if u.Err != nil {
		data.Error = "Could not load games. Please try again."
	}
	b.send(u.Scope, EventCatalog, templates.Results(data))
}

// BadgeUpdated pushes a recomputed cart badge
func (b *Broadcaster) BadgeUpdated(u session.BadgeUpdate) {
	b.send(u.Scope, EventBadge, templates.Badge(u.Badge))
}

// ListingsUpdated pushes a seller's new listing count
func (b *Broadcaster) ListingsUpdated(u session.ListingUpdate) {
	b.send(u.Scope, EventListings, templates.ListingCount(u.Count))
}

// GenresApplied pushes the applied genre chips
func (b *Broadcaster) GenresApplied(sel genres.Selection) {
	if b.hubManager.GetHub(sel.Scope) == nil {
		return
	}
	b.send(sel.Scope, EventGenres, templates.GenreChips(b.genres.View(context.Background(), sel.Scope)))
}

// SessionChanged reloads the scope's other tabs after a login or logout
func (b *Broadcaster) SessionChanged(c session.Change) {
	hub := b.hubManager.GetHub(c.Scope)
	if hub == nil {
		return
	}
	hub.BroadcastEvent(EventSession, `<script>window.location.reload();</script>`)
}

// Package handler serves the storefront's pages and htmx fragments.
package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/menu"
	"github.com/mcoot/keyshop/internal/services/session"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/sse"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// CartSnapshots reads the last fetched cart of a scope
type CartSnapshots interface {
	Snapshot(scope model.ScopeID) (*model.Cart, bool)
	Load(ctx context.Context, scope model.ScopeID) (*model.Cart, error)
}

// ListingCounter refreshes a seller's listing count
type ListingCounter interface {
	UpdateListingCount(ctx context.Context, scope model.ScopeID) (int, error)
}

// Pages builds the layout data shared by every page
type Pages struct {
	menus    *menu.Registry
	carts    CartSnapshots
	listings ListingCounter

	mu     sync.Mutex
	counts map[model.ScopeID]int
}

// NewPages creates the page data builder
func NewPages(menus *menu.Registry, carts CartSnapshots, listings ListingCounter) *Pages {
	return &Pages{
		menus:    menus,
		carts:    carts,
		listings: listings,
		counts:   make(map[model.ScopeID]int),
	}
}

// ListingsUpdated records a seller's latest listing count. Subscribed to the
// session manager's listing bus.
func (p *Pages) ListingsUpdated(u session.ListingUpdate) {
	p.mu.Lock()
	p.counts[u.Scope] = u.Count
	p.mu.Unlock()
}

func (p *Pages) listingCount(scope model.ScopeID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[scope]
}

// badge derives the badge from the cart snapshot, loading the cart once per scope
func (p *Pages) badge(ctx context.Context, scope model.ScopeID, s model.Session) model.Badge {
	if !s.Is(model.RoleCustomer) {
		return model.Badge{}
	}
	if cart, ok := p.carts.Snapshot(scope); ok {
		return model.BadgeFor(cart)
	}
	cart, err := p.carts.Load(ctx, scope)
	if err != nil {
		return model.Badge{}
	}
	return model.BadgeFor(cart)
}

// PageData assembles the layout for a full page
func (p *Pages) PageData(r *http.Request, title string) templates.PageData {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)
	s := middleware.GetSession(ctx)

	badge := p.badge(ctx, scope, s)
	listings := 0
	if s.Is(model.RoleSeller) {
		n, err := p.listings.UpdateListingCount(ctx, scope)
		if err != nil {
			n = p.listingCount(scope)
		}
		listings = n
	}

	return templates.PageData{
		Title:    title,
		Session:  s,
		Flash:    middleware.GetFlash(ctx),
		Menu:     p.MenuData(r, p.menus.For(scope).State()),
		Badge:    badge,
		Listings: listings,
		Path:     r.URL.Path,
	}
}

// MenuData assembles the menu fragment for a state
func (p *Pages) MenuData(r *http.Request, state menu.State) templates.MenuData {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)
	s := middleware.GetSession(ctx)
	data := templates.MenuData{State: state, Session: s}
	if cart, ok := p.carts.Snapshot(scope); ok && s.Is(model.RoleCustomer) {
		data.Badge = model.BadgeFor(cart)
	}
	if s.Is(model.RoleSeller) {
		data.Listings = p.listingCount(scope)
	}
	return data
}

// render writes a component as the response
func render(w http.ResponseWriter, r *http.Request, status int, components ...templ.Component) {
	var buf bytes.Buffer
	for _, c := range components {
		if err := c.Render(r.Context(), &buf); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// oob renders a component marked for an out-of-band swap
func oob(ctx context.Context, c templ.Component) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		html, err := sse.Render(ctx, c)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, sse.OOB(html))
		return err
	})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// queryInt reads a positive integer query parameter, falling back to def
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// localPath accepts only same-site redirect targets
func localPath(next, fallback string) string {
	if len(next) > 1 && next[0] == '/' && next[1] != '/' && next[1] != '\\' {
		return next
	}
	if next == "/" {
		return next
	}
	return fallback
}

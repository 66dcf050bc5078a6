package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/catalog"
	"github.com/mcoot/keyshop/internal/services/genres"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/templates"
)

const resultsErrorMessage = "Could not load games. Please try again."

// CatalogHandler handles the home page and its filter actions
type CatalogHandler struct {
	catalogs *catalog.Registry
	genres   *genres.Service
	pages    *Pages
	logger   *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogs *catalog.Registry, genreService *genres.Service, pages *Pages, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogs: catalogs,
		genres:   genreService,
		pages:    pages,
		logger:   logger.With(slog.String("component", "catalog-handler")),
	}
}

// Home renders the catalog. The persisted genre selection is re-applied on every
// page load, which re-queries the catalog through the genre bus.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	scope := middleware.GetScope(r.Context())
	h.genres.Restore(r.Context(), scope)

	browser := h.catalogs.For(scope)
	res, ok := browser.Last()
	var err error
	if !ok {
		res, err = browser.Load(r.Context())
	}
	h.renderHome(w, r, res, err)
}

func (h *CatalogHandler) renderHome(w http.ResponseWriter, r *http.Request, res catalog.Result, err error) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	data := templates.CatalogData{
		PageData: h.pages.PageData(r, "Catalog"),
		Form:     templates.FormFromFilter(h.catalogs.For(scope).Filter()),
		Genres:   h.genres.View(ctx, scope),
	}
	data.Results = h.results(r, res, err)
	render(w, r, http.StatusOK, templates.Catalog(data))
}

func (h *CatalogHandler) results(r *http.Request, res catalog.Result, err error) templates.CatalogResults {
	data := templates.ResultsFrom(res, middleware.GetSession(r.Context()).Is(model.RoleCustomer))
	if err != nil {
		logFailure(h.logger, r, "catalog query failed", err)
		data.Error = resultsErrorMessage
	}
	return data
}

// respond sends the results fragment to htmx, or the whole page otherwise
func (h *CatalogHandler) respond(w http.ResponseWriter, r *http.Request, res catalog.Result, err error) {
	if errors.Is(err, model.ErrStaleResponse) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if isValidation(err) {
		// rejected before any request: keep what is on screen
		last, _ := h.catalogs.For(middleware.GetScope(r.Context())).Last()
		if middleware.IsFragment(r) {
			render(w, r, http.StatusOK,
				templates.Results(h.results(r, last, nil)),
				templates.FlashOOB(flashFor(err)))
			return
		}
		fail(w, r, err, "/")
		return
	}
	if middleware.IsFragment(r) {
		render(w, r, http.StatusOK, templates.Results(h.results(r, res, err)))
		return
	}
	middleware.Redirect(w, r, "/")
}

// Filters applies the price range
func (h *CatalogHandler) Filters(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	minPrice, err := parsePrice(r.FormValue("minPrice"))
	if err != nil {
		h.respond(w, r, catalog.Result{}, err)
		return
	}
	maxPrice, err := parsePrice(r.FormValue("maxPrice"))
	if err != nil {
		h.respond(w, r, catalog.Result{}, err)
		return
	}
	res, err := h.catalogs.For(middleware.GetScope(r.Context())).ApplyFilters(r.Context(), minPrice, maxPrice)
	h.respond(w, r, res, err)
}

// Reset clears the price range
func (h *CatalogHandler) Reset(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalogs.For(middleware.GetScope(r.Context())).ResetPrice(r.Context())
	h.respond(w, r, res, err)
}

// Clear drops every criterion, genres included, and reloads the page
func (h *CatalogHandler) Clear(w http.ResponseWriter, r *http.Request) {
	scope := middleware.GetScope(r.Context())
	if _, err := h.genres.Clear(r.Context(), scope); err != nil {
		logFailure(h.logger, r, "failed to clear genres", err)
	}
	if _, err := h.catalogs.For(scope).ClearAll(r.Context()); err != nil {
		logFailure(h.logger, r, "catalog query failed", err)
	}
	middleware.Redirect(w, r, "/")
}

// Search handles the title box. Keystrokes from htmx are debounced and the
// results arrive over SSE; a submitted form searches immediately.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	browser := h.catalogs.For(middleware.GetScope(r.Context()))

	if middleware.IsFragment(r) {
		browser.Search(title)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	res, err := browser.SearchNow(r.Context(), title)
	if err != nil && !errors.Is(err, model.ErrStaleResponse) {
		h.renderHome(w, r, res, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Page moves to a results page
func (h *CatalogHandler) Page(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["page"])
	if err != nil || n < 1 {
		n = 1
	}
	res, err := h.catalogs.For(middleware.GetScope(r.Context())).GoTo(r.Context(), n)
	if middleware.IsFragment(r) {
		h.respond(w, r, res, err)
		return
	}
	h.renderHome(w, r, res, err)
}

// parsePrice reads an optional price input
func parsePrice(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !model.ValidPrice(v) {
		return nil, model.ErrInvalidPrice
	}
	return &v, nil
}

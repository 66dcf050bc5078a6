package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/catalog"
	"github.com/mcoot/keyshop/internal/services/genres"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// GenreHandler handles the genre picker
type GenreHandler struct {
	genres   *genres.Service
	catalogs *catalog.Registry
	logger   *slog.Logger
}

// NewGenreHandler creates a new GenreHandler
func NewGenreHandler(genreService *genres.Service, catalogs *catalog.Registry, logger *slog.Logger) *GenreHandler {
	return &GenreHandler{
		genres:   genreService,
		catalogs: catalogs,
		logger:   logger.With(slog.String("component", "genre-handler")),
	}
}

// Toggle flips one checkbox without applying it
func (h *GenreHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	scope := middleware.GetScope(r.Context())
	view, err := h.genres.Toggle(r.Context(), scope, r.FormValue("id"))
	if err != nil {
		logFailure(h.logger, r, "failed to toggle genre", err)
		if !middleware.IsFragment(r) {
			fail(w, r, err, "/")
			return
		}
		render(w, r, http.StatusOK,
			templates.GenreWidget(h.genres.View(r.Context(), scope)),
			templates.FlashOOB(flashFor(err)))
		return
	}
	if !middleware.IsFragment(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, templates.GenreWidget(view))
}

// Apply filters the catalog by the checked genres
func (h *GenreHandler) Apply(w http.ResponseWriter, r *http.Request) {
	_, err := h.genres.Apply(r.Context(), middleware.GetScope(r.Context()))
	h.applied(w, r, err)
}

// Clear unchecks every genre and shows the unfiltered catalog
func (h *GenreHandler) Clear(w http.ResponseWriter, r *http.Request) {
	scope := middleware.GetScope(r.Context())
	if _, err := h.genres.Clear(r.Context(), scope); err != nil {
		h.applied(w, r, err)
		return
	}
	_, err := h.genres.Apply(r.Context(), scope)
	h.applied(w, r, err)
}

// Remove drops one chip and re-applies the rest
func (h *GenreHandler) Remove(w http.ResponseWriter, r *http.Request) {
	_, err := h.genres.Remove(r.Context(), middleware.GetScope(r.Context()), mux.Vars(r)["id"])
	h.applied(w, r, err)
}

// applied answers a selection change. The genre bus has already re-queried the
// catalog, so the fresh results go back with the widget.
func (h *GenreHandler) applied(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		logFailure(h.logger, r, "failed to apply genres", err)
		fail(w, r, err, "/")
		return
	}
	if !middleware.IsFragment(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx := r.Context()
	scope := middleware.GetScope(ctx)
	view := h.genres.View(ctx, scope)

	components := []templ.Component{templates.GenreWidget(view), templates.GenreChipsOOB(view)}
	if res, ok := h.catalogs.For(scope).Last(); ok {
		results := templates.ResultsFrom(res, middleware.GetSession(ctx).Is(model.RoleCustomer))
		components = append(components, oob(ctx, templates.Results(results)))
	}
	render(w, r, http.StatusOK, components...)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/keyshop/internal/services/menu"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// MenuHandler handles the navigation menu
type MenuHandler struct {
	menus *menu.Registry
	pages *Pages
}

// NewMenuHandler creates a new MenuHandler
func NewMenuHandler(menus *menu.Registry, pages *Pages) *MenuHandler {
	return &MenuHandler{menus: menus, pages: pages}
}

// Toggle opens or closes the menu
func (h *MenuHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := h.menus.For(middleware.GetScope(ctx)).Toggle(ctx, middleware.GetSession(ctx))
	h.respond(w, r, res)
}

// Close closes the menu for a click outside, Escape, or a scroll
func (h *MenuHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	controller := h.menus.For(middleware.GetScope(r.Context()))

	var res menu.Result
	if reason := menu.ParseReason(r.FormValue("reason")); reason == menu.ReasonScroll {
		width, _ := strconv.Atoi(r.FormValue("width"))
		scrollY, _ := strconv.Atoi(r.FormValue("scrollY"))
		res = controller.Scrolled(width, scrollY)
	} else {
		res = controller.Close(reason)
	}
	h.respond(w, r, res)
}

func (h *MenuHandler) respond(w http.ResponseWriter, r *http.Request, res menu.Result) {
	if !middleware.IsFragment(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("X-Menu-Applied", strconv.FormatBool(res.Applied))
	render(w, r, http.StatusOK, templates.Menu(h.pages.MenuData(r, res.State)))
}

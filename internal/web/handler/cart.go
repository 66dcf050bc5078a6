package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/cart"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// CartHandler handles the cart page and the add-to-cart buttons
type CartHandler struct {
	carts  *cart.Service
	pages  *Pages
	logger *slog.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cart.Service, pages *Pages, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		pages:  pages,
		logger: logger.With(slog.String("component", "cart-handler")),
	}
}

// View renders the cart page
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Load(r.Context(), middleware.GetScope(r.Context()))
	if err != nil {
		logFailure(h.logger, r, "failed to load cart", err)
		h.pages.errorPage(w, r, http.StatusBadGateway, flashFor(err).Message)
		return
	}
	h.renderPage(w, r, templates.CartView{Cart: c})
}

func (h *CartHandler) renderPage(w http.ResponseWriter, r *http.Request, view templates.CartView) {
	data := templates.CartData{PageData: h.pages.PageData(r, "Cart"), CartView: view}
	render(w, r, http.StatusOK, templates.Cart(data))
}

// Add puts one key of a game in the cart
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	next := localPath(r.FormValue("next"), "/cart")
	gameID, err := strconv.ParseInt(r.FormValue("gameId"), 10, 64)
	if err != nil || gameID <= 0 {
		fail(w, r, model.ErrGameNotFound, next)
		return
	}

	c, err := h.carts.Add(r.Context(), middleware.GetScope(r.Context()), gameID)
	if err != nil {
		logFailure(h.logger, r, "failed to add to cart", err)
		fail(w, r, err, next)
		return
	}

	message := "Added to your cart"
	if item, ok := c.Item(gameID); ok {
		message = "Added " + item.Title + " to your cart"
	}
	if middleware.IsFragment(r) {
		flash := &templates.FlashMessage{Type: templates.FlashToast, Message: message}
		render(w, r, http.StatusOK,
			templates.FlashOOB(flash),
			oob(r.Context(), templates.Badge(model.BadgeFor(c))))
		return
	}
	middleware.SetFlash(w, templates.FlashSuccess, message)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Line changes one cart line: increment, decrement or remove
func (h *CartHandler) Line(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, model.ErrCartItemMissing, "/cart")
		return
	}
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	var (
		c   *model.Cart
		err error
	)
	switch mux.Vars(r)["op"] {
	case "increment":
		c, err = h.carts.Increment(ctx, scope, id)
	case "decrement":
		c, err = h.carts.Decrement(ctx, scope, id)
	case "remove":
		c, err = h.carts.Remove(ctx, scope, id)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logFailure(h.logger, r, "failed to update cart", err)
		fail(w, r, err, "/cart")
		return
	}
	h.respond(w, r, templates.CartView{Cart: c}, nil)
}

// Checkout turns the cart into an order and shows the purchased keys
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, c, err := h.carts.Checkout(r.Context(), middleware.GetScope(r.Context()))
	if err != nil {
		logFailure(h.logger, r, "checkout failed", err)
		fail(w, r, err, "/cart")
		return
	}
	h.logger.Info("order placed",
		slog.String("scope", string(middleware.GetScope(r.Context()))),
		slog.String("order", order.ID))

	flash := &templates.FlashMessage{Type: templates.FlashSuccess, Message: "Thank you! Your keys are below."}
	if !middleware.IsFragment(r) {
		// the keys are shown once, so render instead of redirecting
		h.renderPage(w, r, templates.CartView{Cart: c, Order: order})
		return
	}
	h.respond(w, r, templates.CartView{Cart: c, Order: order}, flash)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, view templates.CartView, flash *templates.FlashMessage) {
	if !middleware.IsFragment(r) {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK,
		templates.CartTable(view),
		oob(r.Context(), templates.Badge(model.BadgeFor(view.Cart))),
		templates.FlashOOB(flash))
}

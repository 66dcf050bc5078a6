package handler

import (
	"net/http"

	"github.com/mcoot/keyshop/internal/api/middleware"
	"github.com/mcoot/keyshop/internal/api/request"
	"github.com/mcoot/keyshop/internal/api/response"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/shop"
)

// CartHandler handles cart and order endpoints
type CartHandler struct {
	shop *shop.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(shop *shop.Service) *CartHandler {
	return &CartHandler{shop: shop}
}

// Get handles GET /api/carts
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	response.JSON(w, http.StatusOK, response.CartFromModel(h.shop.Cart(r.Context(), account.Username)))
}

// AddItem handles POST /api/carts/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	var req request.CartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.shop.AddToCart(r.Context(), account.Username, req.GameID, req.Quantity); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CartFromModel(h.shop.Cart(r.Context(), account.Username)))
}

// RemoveItem handles DELETE /api/carts/items
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	var req request.CartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.shop.RemoveFromCart(r.Context(), account.Username, req.GameID, req.Quantity); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CartFromModel(h.shop.Cart(r.Context(), account.Username)))
}

// CreateOrder handles POST /api/orders
func (h *CartHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	var req request.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	lines := make([]model.OrderLine, len(req.OrderItems))
	for i, item := range req.OrderItems {
		lines[i] = model.OrderLine{GameID: item.GameID, Quantity: item.Quantity}
	}
	order, err := h.shop.Checkout(r.Context(), account.Username, lines)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.OrderFromModel(*order))
}

// ListOrders handles GET /api/orders
func (h *CartHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	page, size := pageParams(r)
	result := h.shop.Orders(r.Context(), account.Username, page, size)
	response.JSON(w, http.StatusOK, response.PageFromModel(result, response.OrderFromModel))
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/keyshop/internal/services/orders"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// OrdersHandler handles the purchase history page
type OrdersHandler struct {
	orders   *orders.Service
	pages    *Pages
	pageSize int
	logger   *slog.Logger
}

// NewOrdersHandler creates a new OrdersHandler
func NewOrdersHandler(orderService *orders.Service, pages *Pages, pageSize int, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders:   orderService,
		pages:    pages,
		pageSize: pageSize,
		logger:   logger.With(slog.String("component", "orders-handler")),
	}
}

// View renders one page of past orders
func (h *OrdersHandler) View(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	result, err := h.orders.Page(r.Context(), middleware.GetScope(r.Context()), page, h.pageSize)
	if err != nil {
		logFailure(h.logger, r, "failed to load orders", err)
		h.pages.errorPage(w, r, http.StatusBadGateway, flashFor(err).Message)
		return
	}
	data := templates.OrdersData{
		PageData: h.pages.PageData(r, "Purchase history"),
		Orders:   result,
	}
	render(w, r, http.StatusOK, templates.Orders(data))
}

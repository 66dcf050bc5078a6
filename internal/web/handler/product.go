package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/keyshop/internal/gateway"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// GameSource loads a single listing
type GameSource interface {
	GetGame(ctx context.Context, id int64) (*model.Game, error)
}

// ProductHandler handles the game detail page
type ProductHandler struct {
	games  GameSource
	carts  CartSnapshots
	pages  *Pages
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(games GameSource, carts CartSnapshots, pages *Pages, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		games:  games,
		carts:  carts,
		pages:  pages,
		logger: logger.With(slog.String("component", "product-handler")),
	}
}

// View renders one game
func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.pages.errorPage(w, r, http.StatusNotFound, "That game does not exist.")
		return
	}

	game, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) || gateway.IsStatus(err, http.StatusNotFound) {
			h.pages.errorPage(w, r, http.StatusNotFound, "That game does not exist.")
			return
		}
		logFailure(h.logger, r, "failed to load game", err)
		h.pages.errorPage(w, r, http.StatusBadGateway, flashFor(err).Message)
		return
	}

	data := templates.ProductData{
		PageData: h.pages.PageData(r, game.Title),
		Game:     game,
		CanBuy:   middleware.GetSession(r.Context()).Is(model.RoleCustomer),
	}
	if data.CanBuy {
		if cart, ok := h.carts.Snapshot(middleware.GetScope(r.Context())); ok {
			if item, ok := cart.Item(game.ID); ok {
				data.InCart = item.Quantity
			}
		}
	}
	render(w, r, http.StatusOK, templates.Product(data))
}

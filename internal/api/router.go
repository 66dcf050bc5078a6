// Package api is the storefront REST backend: accounts, listings, carts and
// orders held in memory. It backs local development and the test suites.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/keyshop/internal/api/handler"
	"github.com/mcoot/keyshop/internal/api/middleware"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/auth"
	"github.com/mcoot/keyshop/internal/services/shop"
)

// PathPrefix is where the backend is mounted
const PathPrefix = "/api"

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Shop        *shop.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Mount(r, cfg)
	return r
}

// Mount registers the backend routes under PathPrefix on an existing router
func Mount(r *mux.Router, cfg RouterConfig) {
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	gameHandler := handler.NewGameHandler(cfg.Shop)
	cartHandler := handler.NewCartHandler(cfg.Shop)

	authMiddleware := middleware.Auth(cfg.AuthService)
	sellerOnly := middleware.RequireRole(model.RoleSeller)
	customerOnly := middleware.RequireRole(model.RoleCustomer)

	api := r.PathPrefix(PathPrefix).Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id:[0-9]+}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id:[0-9]+}/image", gameHandler.Image).Methods(http.MethodGet)
	api.HandleFunc("/genres", gameHandler.Genres).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware)
	authed.HandleFunc("/auth/check", authHandler.Check).Methods(http.MethodGet)

	// Seller routes
	seller := api.NewRoute().Subrouter()
	seller.Use(authMiddleware, sellerOnly)
	seller.HandleFunc("/games/my", gameHandler.Mine).Methods(http.MethodGet)
	seller.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	seller.HandleFunc("/games/{id:[0-9]+}", gameHandler.Update).Methods(http.MethodPut)
	seller.HandleFunc("/games/{id:[0-9]+}", gameHandler.Delete).Methods(http.MethodDelete)
	seller.HandleFunc("/games/{id:[0-9]+}/keys", gameHandler.AddKeys).Methods(http.MethodPost)

	// Customer routes
	customer := api.NewRoute().Subrouter()
	customer.Use(authMiddleware, customerOnly)
	customer.HandleFunc("/carts", cartHandler.Get).Methods(http.MethodGet)
	customer.HandleFunc("/carts/items", cartHandler.AddItem).Methods(http.MethodPost)
	customer.HandleFunc("/carts/items", cartHandler.RemoveItem).Methods(http.MethodDelete)
	customer.HandleFunc("/orders", cartHandler.CreateOrder).Methods(http.MethodPost)
	customer.HandleFunc("/orders", cartHandler.ListOrders).Methods(http.MethodGet)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Package web is the storefront's browser-facing HTTP surface.
package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/keyshop/internal/api"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/cart"
	"github.com/mcoot/keyshop/internal/services/catalog"
	"github.com/mcoot/keyshop/internal/services/genres"
	"github.com/mcoot/keyshop/internal/services/menu"
	"github.com/mcoot/keyshop/internal/services/orders"
	"github.com/mcoot/keyshop/internal/services/seller"
	"github.com/mcoot/keyshop/internal/services/session"
	"github.com/mcoot/keyshop/internal/web/handler"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/sse"
)

// Backend is the part of the gateway the handlers call directly
type Backend interface {
	handler.GameSource
	handler.Pinger
}

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger      *slog.Logger
	Backend     Backend
	Sessions    *session.Manager
	Menus       *menu.Registry
	Catalogs    *catalog.Registry
	Genres      *genres.Service
	Carts       *cart.Service
	Orders      *orders.Service
	Seller      *seller.Service
	Pages       *handler.Pages
	HubManager  *sse.HubManager
	ScopeSigner *middleware.ScopeSigner
	// RateLimiter throttles login and registration; nil disables it
	RateLimiter *middleware.RateLimiter

	OrdersPageSize int

	// DevBackend mounts the in-memory REST backend under /api when set
	DevBackend *api.RouterConfig
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	if cfg.DevBackend != nil {
		api.Mount(r, *cfg.DevBackend)
	}

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	scopeMiddleware := middleware.Scope(cfg.ScopeSigner, cfg.Logger)
	sessionMiddleware := middleware.Session(cfg.Sessions)
	flashMiddleware := middleware.Flash()
	navigateMiddleware := middleware.CloseMenuOnNavigate(cfg.Menus)

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}
	pages := cfg.Pages
	if pages == nil {
		pages = handler.NewPages(cfg.Menus, cfg.Carts, cfg.Sessions)
	}
	ordersPageSize := cfg.OrdersPageSize
	if ordersPageSize <= 0 {
		ordersPageSize = 10
	}

	// Create handlers
	catalogHandler := handler.NewCatalogHandler(cfg.Catalogs, cfg.Genres, pages, cfg.Logger)
	genreHandler := handler.NewGenreHandler(cfg.Genres, cfg.Catalogs, cfg.Logger)
	menuHandler := handler.NewMenuHandler(cfg.Menus, pages)
	eventsHandler := handler.NewEventsHandler(hubManager)
	authHandler := handler.NewAuthHandler(cfg.Sessions, pages, cfg.Logger)
	productHandler := handler.NewProductHandler(cfg.Backend, cfg.Carts, pages, cfg.Logger)
	cartHandler := handler.NewCartHandler(cfg.Carts, pages, cfg.Logger)
	ordersHandler := handler.NewOrdersHandler(cfg.Orders, pages, ordersPageSize, cfg.Logger)
	sellerHandler := handler.NewSellerHandler(cfg.Seller, cfg.Genres, pages, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Backend)

	// Liveness needs no browser state
	probes := r.NewRoute().Subrouter()
	probes.Use(recoveryMiddleware)
	probes.HandleFunc("/healthz", healthHandler.Health).Methods(http.MethodGet)

	// Every browser route runs with a scope and its session
	site := r.NewRoute().Subrouter()
	site.Use(recoveryMiddleware)
	site.Use(loggingMiddleware)
	site.Use(scopeMiddleware)
	site.Use(sessionMiddleware)
	site.Use(flashMiddleware)
	site.Use(navigateMiddleware)

	// Catalog
	site.HandleFunc("/", catalogHandler.Home).Methods(http.MethodGet)
	site.HandleFunc("/catalog/filters", catalogHandler.Filters).Methods(http.MethodPost)
	site.HandleFunc("/catalog/reset", catalogHandler.Reset).Methods(http.MethodPost)
	site.HandleFunc("/catalog/clear", catalogHandler.Clear).Methods(http.MethodPost)
	site.HandleFunc("/catalog/search", catalogHandler.Search).Methods(http.MethodPost)
	site.HandleFunc("/catalog/page/{page:[0-9]+}", catalogHandler.Page).Methods(http.MethodGet)
	site.HandleFunc("/games/{id:[0-9]+}", productHandler.View).Methods(http.MethodGet)

	// Genre picker
	site.HandleFunc("/genres/toggle", genreHandler.Toggle).Methods(http.MethodPost)
	site.HandleFunc("/genres/apply", genreHandler.Apply).Methods(http.MethodPost)
	site.HandleFunc("/genres/clear", genreHandler.Clear).Methods(http.MethodPost)
	site.HandleFunc("/genres/{id}/remove", genreHandler.Remove).Methods(http.MethodPost)

	// Navigation menu and live updates
	site.HandleFunc("/menu/toggle", menuHandler.Toggle).Methods(http.MethodPost)
	site.HandleFunc("/menu/close", menuHandler.Close).Methods(http.MethodPost)
	site.HandleFunc("/events", eventsHandler.Events).Methods(http.MethodGet)

	// Auth
	site.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	site.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	site.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	authRoutes := site.PathPrefix("/auth").Subrouter()
	if cfg.RateLimiter != nil {
		authRoutes.Use(cfg.RateLimiter.Middleware)
	}
	authRoutes.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	authRoutes.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)

	// Customer pages
	customer := site.NewRoute().Subrouter()
	customer.Use(middleware.RequireRole(model.RoleCustomer))
	customer.HandleFunc("/cart", cartHandler.View).Methods(http.MethodGet)
	customer.HandleFunc("/cart/add", cartHandler.Add).Methods(http.MethodPost)
	customer.HandleFunc("/cart/items/{id:[0-9]+}/{op:increment|decrement|remove}", cartHandler.Line).Methods(http.MethodPost)
	customer.HandleFunc("/cart/checkout", cartHandler.Checkout).Methods(http.MethodPost)
	customer.HandleFunc("/orders", ordersHandler.View).Methods(http.MethodGet)

	// Seller console
	sellerRoutes := site.NewRoute().Subrouter()
	sellerRoutes.Use(middleware.RequireRole(model.RoleSeller))
	sellerRoutes.HandleFunc("/seller", sellerHandler.View).Methods(http.MethodGet)
	sellerRoutes.HandleFunc("/seller/games", sellerHandler.Create).Methods(http.MethodPost)
	sellerRoutes.HandleFunc("/seller/games/{id:[0-9]+}", sellerHandler.Update).Methods(http.MethodPost)
	sellerRoutes.HandleFunc("/seller/games/{id:[0-9]+}/delete", sellerHandler.Delete).Methods(http.MethodPost)
	sellerRoutes.HandleFunc("/seller/games/{id:[0-9]+}/keys", sellerHandler.AddKeys).Methods(http.MethodPost)

	return r
}

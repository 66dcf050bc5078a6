// Package factory wires the storefront's services, buses and stores together.
package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/mcoot/keyshop/internal/api"
	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/events"
	"github.com/mcoot/keyshop/internal/gateway"
	"github.com/mcoot/keyshop/internal/logging"
	"github.com/mcoot/keyshop/internal/services/cart"
	"github.com/mcoot/keyshop/internal/services/catalog"
	"github.com/mcoot/keyshop/internal/services/genres"
	"github.com/mcoot/keyshop/internal/services/menu"
	"github.com/mcoot/keyshop/internal/services/orders"
	"github.com/mcoot/keyshop/internal/services/seller"
	"github.com/mcoot/keyshop/internal/services/session"
	"github.com/mcoot/keyshop/internal/storage"
	"github.com/mcoot/keyshop/internal/storage/memory"
	redisstorage "github.com/mcoot/keyshop/internal/storage/redis"
	"github.com/mcoot/keyshop/internal/storage/yamlfile"
	"github.com/mcoot/keyshop/internal/web"
	"github.com/mcoot/keyshop/internal/web/handler"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeFile   = "file"
)

// App contains all wired application components
type App struct {
	// Storage
	Store storage.Store

	// External dependencies
	Clock   clock.Clock
	Backend *gateway.Client

	// Services
	Sessions *session.Manager
	Menus    *menu.Registry
	Catalogs *catalog.Registry
	GenreBus *events.Bus[genres.Selection]
	Genres   *genres.Service
	Carts    *cart.Service
	Orders   *orders.Service
	Seller   *seller.Service

	// Web
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
	Pages       *handler.Pages
	ScopeSigner *middleware.ScopeSigner
	RateLimiter *middleware.RateLimiter

	Logger *slog.Logger

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// BackendURL is the REST backend root including /api
	BackendURL string
	// GatewayTimeout bounds each backend call. Defaults to 30s.
	GatewayTimeout time.Duration
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "file")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// StatePath is the YAML state file (required if StorageType is "file")
	StatePath string
	// SessionMode selects verified or trusting session restores
	SessionMode session.Mode
	// CookieSecret signs the scope cookie
	CookieSecret string
	// Catalog holds page size and search debounce. Zero fields take defaults.
	Catalog catalog.Config
	// AuthRateLimit and AuthRateBurst throttle login and registration.
	// A zero limit disables throttling.
	AuthRateLimit float64
	AuthRateBurst int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.FromCore(zapcore.NewNopCore())
	}
	if cfg.BackendURL == "" {
		return nil, errors.New("BackendURL is required")
	}

	// Create storage based on type
	var (
		store   storage.Store
		closers []io.Closer
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	case StorageTypeFile:
		if cfg.StatePath == "" {
			return nil, errors.New("StatePath required when StorageType is file")
		}
		fileStore, err := yamlfile.Open(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		store = fileStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'file'")
	}

	gwCfg := gateway.DefaultConfig()
	gwCfg.BaseURL = cfg.BackendURL
	if cfg.GatewayTimeout > 0 {
		gwCfg.Timeout = cfg.GatewayTimeout
	}
	backend := gateway.New(gwCfg, logger)

	app := newWithDependencies(store, clock.New(), backend, cfg, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, backend *gateway.Client, cfg Config, logger *slog.Logger) *App {
	sessionCfg := session.DefaultConfig()
	if cfg.SessionMode != "" {
		sessionCfg.Mode = cfg.SessionMode
	}
	catalogCfg := catalog.DefaultConfig()
	if cfg.Catalog.PageSize > 0 {
		catalogCfg.PageSize = cfg.Catalog.PageSize
	}
	if cfg.Catalog.Debounce > 0 {
		catalogCfg.Debounce = cfg.Catalog.Debounce
	}

	// Create services
	sessions := session.NewManager(backend, store, sessionCfg, logger)
	menus := menu.NewRegistry(clk, menu.DefaultConfig(), sessions, logger)
	catalogs := catalog.NewRegistry(backend, clk, catalogCfg, logger)
	genreBus := events.NewBus[genres.Selection]()
	genreService := genres.NewService(store, backend, genreBus, logger)
	carts := cart.NewService(backend, sessions, clk, logger)
	orderService := orders.NewService(backend, sessions)
	sellerService := seller.NewService(backend, sessions, clk, logger)

	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, sessions, genreService, logger)
	pages := handler.NewPages(menus, carts, sessions)

	var limiter *middleware.RateLimiter
	if cfg.AuthRateLimit > 0 {
		burst := max(cfg.AuthRateBurst, 1)
		limiter = middleware.NewRateLimiter(cfg.AuthRateLimit, burst, clk, logger)
	}

	app := &App{
		Store:       store,
		Clock:       clk,
		Backend:     backend,
		Sessions:    sessions,
		Menus:       menus,
		Catalogs:    catalogs,
		GenreBus:    genreBus,
		Genres:      genreService,
		Carts:       carts,
		Orders:      orderService,
		Seller:      sellerService,
		HubManager:  hubManager,
		Broadcaster: broadcaster,
		Pages:       pages,
		ScopeSigner: middleware.NewScopeSigner(cfg.CookieSecret, clk),
		RateLimiter: limiter,
		Logger:      logger,
	}
	app.subscribe()
	return app
}

// subscribe connects the buses. Handlers run synchronously in this order.
func (a *App) subscribe() {
	a.GenreBus.Subscribe("catalog", func(sel genres.Selection) {
		a.Catalogs.ApplyGenres(context.Background(), sel.Scope, sel.GenreIDs)
	})
	a.GenreBus.Subscribe("seller", a.Seller.Preselect)
	a.GenreBus.Subscribe("sse", a.Broadcaster.GenresApplied)

	a.Sessions.Changes.Subscribe("menu", func(c session.Change) { a.Menus.Reset(c.Scope) })
	a.Sessions.Changes.Subscribe("cart", func(c session.Change) { a.Carts.Forget(c.Scope) })
	a.Sessions.Changes.Subscribe("sse", a.Broadcaster.SessionChanged)

	a.Sessions.Badges.Subscribe("sse", a.Broadcaster.BadgeUpdated)

	a.Sessions.Listings.Subscribe("pages", a.Pages.ListingsUpdated)
	a.Sessions.Listings.Subscribe("sse", a.Broadcaster.ListingsUpdated)

	a.Catalogs.Updates.Subscribe("sse", a.Broadcaster.CatalogUpdated)
}

// RouterConfig returns the web router configuration for this app
func (a *App) RouterConfig(devBackend *api.RouterConfig) web.RouterConfig {
	return web.RouterConfig{
		Logger:      a.Logger,
		Backend:     a.Backend,
		Sessions:    a.Sessions,
		Menus:       a.Menus,
		Catalogs:    a.Catalogs,
		Genres:      a.Genres,
		Carts:       a.Carts,
		Orders:      a.Orders,
		Seller:      a.Seller,
		Pages:       a.Pages,
		HubManager:  a.HubManager,
		ScopeSigner: a.ScopeSigner,
		RateLimiter: a.RateLimiter,
		DevBackend:  devBackend,
	}
}

// Sweep drops per-scope state idle for longer than maxIdle
func (a *App) Sweep(maxIdle time.Duration) {
	menus := a.Menus.Sweep(maxIdle)
	browsers := a.Catalogs.Sweep(maxIdle)
	carts := a.Carts.Sweep(maxIdle)
	drafts := a.Seller.Sweep(maxIdle)
	hubs := a.HubManager.CleanupEmptyHubs()
	visitors := 0
	if a.RateLimiter != nil {
		visitors = a.RateLimiter.Sweep(maxIdle)
	}
	if menus+browsers+carts+drafts+hubs+visitors > 0 {
		a.Logger.Debug("idle state swept",
			slog.Int("menus", menus),
			slog.Int("browsers", browsers),
			slog.Int("carts", carts),
			slog.Int("drafts", drafts),
			slog.Int("hubs", hubs),
			slog.Int("visitors", visitors))
	}
}

// Close stops the SSE hubs and releases the store
func (a *App) Close() error {
	a.HubManager.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

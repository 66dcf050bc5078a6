package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/keyshop/internal/api"
	"github.com/mcoot/keyshop/internal/config"
	"github.com/mcoot/keyshop/internal/factory"
	"github.com/mcoot/keyshop/internal/logging"
	"github.com/mcoot/keyshop/internal/server"
	"github.com/mcoot/keyshop/internal/services/catalog"
	"github.com/mcoot/keyshop/internal/services/session"
	redisstorage "github.com/mcoot/keyshop/internal/storage/redis"
	"github.com/mcoot/keyshop/internal/web"
)

const (
	sweepInterval = time.Minute
	maxIdle       = 30 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger, sync, err := logging.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer sync()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	// Build factory config
	factoryCfg := factory.Config{
		BackendURL:   cfg.BackendURL,
		Logger:       logger,
		StorageType:  cfg.StorageType,
		SessionMode:  session.Mode(cfg.SessionMode),
		CookieSecret: cfg.CookieSecret,
		Catalog: catalog.Config{
			PageSize: cfg.CatalogPageSize,
			Debounce: cfg.SearchDebounce,
		},
		AuthRateLimit: cfg.AuthRateLimit,
		AuthRateBurst: cfg.AuthRateBurst,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == config.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// The dev backend is served by this process, so the gateway calls back into it
	if cfg.DevBackend {
		factoryCfg.BackendURL = fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Port, api.PathPrefix)
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close application", slog.String("error", err.Error()))
		}
	}()

	sweepers := []server.Sweeper{app}
	var devRoutes *api.RouterConfig
	if cfg.DevBackend {
		dev := factory.NewDevBackend(app.Clock)
		if err := dev.Seed(context.Background()); err != nil {
			return err
		}
		devRoutes = dev.RouterConfig(logger)
		sweepers = append(sweepers, server.SweeperFunc(func(time.Duration) { dev.Sweep() }))
		logger.Info("serving dev backend",
			slog.String("backend_url", factoryCfg.BackendURL),
			slog.String("seller", factory.DemoSeller),
			slog.String("customer", factory.DemoCustomer))
	}

	router := web.NewRouter(app.RouterConfig(devRoutes))

	serverCfg := server.DefaultConfig()
	serverCfg.Port = cfg.Port
	srv := server.New(router, serverCfg, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go server.NewJanitor(sweepInterval, maxIdle, logger, sweepers...).Run(ctx)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Close the SSE hubs first so open streams return
		app.HubManager.Close()
		return srv.Shutdown(context.Background())
	}
}

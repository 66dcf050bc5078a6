package factory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/keyshop/internal/api"
	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/dependencies/random"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/auth"
	"github.com/mcoot/keyshop/internal/services/shop"
)

// Demo accounts created by a seeded dev backend
const (
	DemoSeller   = "demo-seller"
	DemoCustomer = "demo-customer"
	DemoPassword = "password123"
)

// DevBackend is the in-memory REST backend served next to the frontend
type DevBackend struct {
	Auth *auth.Service
	Shop *shop.Service
}

// NewDevBackend creates an empty dev backend
func NewDevBackend(clk clock.Clock) *DevBackend {
	return &DevBackend{
		Auth: auth.New(clk, auth.DefaultConfig()),
		Shop: shop.New(clk, random.New()),
	}
}

// Seed creates the demo accounts and gives the seller a stocked catalog
func (d *DevBackend) Seed(ctx context.Context) error {
	accounts := []struct {
		username string
		role     model.Role
	}{
		{DemoSeller, model.RoleSeller},
		{DemoCustomer, model.RoleCustomer},
	}
	for _, a := range accounts {
		if _, err := d.Auth.Register(ctx, a.username+"@example.com", a.username, DemoPassword, a.role); err != nil {
			return fmt.Errorf("seed account %s: %w", a.username, err)
		}
	}
	if err := d.Shop.Seed(ctx, DemoSeller); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

// RouterConfig returns the api router configuration to mount
func (d *DevBackend) RouterConfig(logger *slog.Logger) *api.RouterConfig {
	return &api.RouterConfig{
		Logger:      logger.With(slog.String("component", "dev-backend")),
		AuthService: d.Auth,
		Shop:        d.Shop,
	}
}

// Sweep drops expired backend sessions
func (d *DevBackend) Sweep() int {
	return d.Auth.CleanExpiredSessions()
}

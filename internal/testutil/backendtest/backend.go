// Package backendtest runs the in-memory storefront backend behind an
// httptest server for integration tests.
package backendtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/keyshop/internal/api"
	"github.com/mcoot/keyshop/internal/dependencies/mocks"
	"github.com/mcoot/keyshop/internal/dependencies/random"
	"github.com/mcoot/keyshop/internal/gateway"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/auth"
	"github.com/mcoot/keyshop/internal/services/shop"
	"github.com/mcoot/keyshop/internal/testutil"
)

// Password is used for every account created by the helpers
const Password = "secret123"

// Backend is a running test backend
type Backend struct {
	Server *httptest.Server
	Client *gateway.Client
	Clock  *mocks.MockClock
	Auth   *auth.Service
	Shop   *shop.Service

	requests atomic.Int64
}

// New starts a backend that is closed when the test ends
func New(t *testing.T) *Backend {
	t.Helper()

	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	b := &Backend{
		Clock: clock,
		Auth:  auth.New(clock, auth.DefaultConfig()),
		Shop:  shop.New(clock, random.New()),
	}
	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthService: b.Auth,
		Shop:        b.Shop,
	})
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Server.Close)

	b.Client = gateway.New(gateway.Config{
		BaseURL: b.Server.URL + api.PathPrefix,
		Timeout: 5 * time.Second,
	}, testutil.NopLogger())
	return b
}

// Account registers a user directly with the auth service
func (b *Backend) Account(t *testing.T, username string, role model.Role) {
	t.Helper()
	_, err := b.Auth.Register(context.Background(), username+"@example.com", username, Password, role)
	require.NoError(t, err)
}

// Listing creates a game owned by seller with the given number of keys
func (b *Backend) Listing(t *testing.T, seller, title string, price float64, keys int, genres ...string) *model.Game {
	t.Helper()
	if len(genres) == 0 {
		genres = []string{"action"}
	}
	content := ""
	for _, key := range b.Shop.GenerateKeys(keys) {
		content += key + "\n"
	}
	g, err := b.Shop.CreateGame(context.Background(), seller, model.GameDraft{
		Title:    title,
		Price:    price,
		GenreIDs: genres,
		Keys:     &model.Upload{Filename: "keys.txt", Content: []byte(content)},
	})
	require.NoError(t, err)
	return g
}

// Requests returns how many requests reached the backend, for asserting
// that local validation short-circuits
func (b *Backend) Requests() int64 {
	return b.requests.Load()
}

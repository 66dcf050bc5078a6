package factory

import (
	"time"

	"github.com/mcoot/keyshop/internal/dependencies/mocks"
	"github.com/mcoot/keyshop/internal/gateway"
	"github.com/mcoot/keyshop/internal/storage/memory"
	"github.com/mcoot/keyshop/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App against the backend at backendURL with an
// in-memory store and a mocked clock
func NewTestApp(backendURL string) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	backend := gateway.New(gateway.Config{BaseURL: backendURL, Timeout: 5 * time.Second}, logger)

	app := newWithDependencies(memory.New(), mockClock, backend, Config{
		BackendURL:   backendURL,
		CookieSecret: "test-secret",
	}, logger)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}

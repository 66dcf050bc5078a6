package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/keyshop/internal/api"
	"github.com/mcoot/keyshop/internal/api/middleware"
	"github.com/mcoot/keyshop/internal/api/response"
	"github.com/mcoot/keyshop/internal/dependencies/mocks"
	"github.com/mcoot/keyshop/internal/dependencies/random"
	"github.com/mcoot/keyshop/internal/services/auth"
	"github.com/mcoot/keyshop/internal/services/shop"
	"github.com/mcoot/keyshop/internal/testutil"
)

type testServer struct {
	handler http.Handler
	shop    *shop.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	shopService := shop.New(clock, random.New())
	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthService: auth.New(clock, auth.DefaultConfig()),
		Shop:        shopService,
	})
	return &testServer{handler: router, shop: shopService}
}

func (ts *testServer) request(method, path string, body any, session string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	return ts.send(req, session)
}

func (ts *testServer) send(req *http.Request, session string) *httptest.ResponseRecorder {
	if session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session})
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func sessionFrom(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

func (ts *testServer) register(t *testing.T, username, role string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"Email":    username + "@example.com",
		"Username": username,
		"Password": "secret123",
		"UserRole": role,
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return sessionFrom(t, rr)
}

func (ts *testServer) createGame(t *testing.T, session, title, keys string) response.Game {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("Title", title))
	require.NoError(t, w.WriteField("Price", "19.99"))
	require.NoError(t, w.WriteField("DeveloperTitle", "Ember Forge"))
	require.NoError(t, w.WriteField("Genres[0].Title", "rpg"))
	require.NoError(t, w.WriteField("Genres[1].Title", "action"))
	part, err := w.CreateFormFile("Keys", "keys.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte(keys))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/games", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := ts.send(req, session)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var g response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g))
	assert.Equal(t, fmt.Sprintf("/api/games/%d", g.ID), rr.Header().Get("Location"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	return g
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterLoginAndCheck(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "CUSTOMER")

	rr := ts.request(http.MethodPost, "/api/auth/login", map[string]string{
		"Email":    "alice@example.com",
		"Password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var user response.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "CUSTOMER", user.Role)

	rr = ts.request(http.MethodGet, "/api/auth/check", nil, sessionFrom(t, rr))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"alice"`)
}

func TestLoginWithWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "CUSTOMER")

	rr := ts.request(http.MethodPost, "/api/auth/login", map[string]string{"Username": "alice", "Password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CREDENTIALS")
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/auth/register", map[string]string{"Username": "bob", "Password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"Email": "b@example.com", "Username": "bob", "Password": "x", "UserRole": "ADMIN",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNKNOWN_ROLE")
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ts := newTestServer(t)
	session := ts.register(t, "alice", "CUSTOMER")

	rr := ts.request(http.MethodPost, "/api/auth/logout", nil, session)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/auth/check", nil, session)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCheckWithoutSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/auth/check", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSellerCreatesAndListsGames(t *testing.T) {
	ts := newTestServer(t)
	seller := ts.register(t, "sam", "SELLER")

	g := ts.createGame(t, seller, "Ashen Crown", "K1\nK2\n")
	assert.Equal(t, 2, g.KeysCount)
	assert.Equal(t, "sam", g.SellerUsername)
	require.Len(t, g.Genres, 2)
	assert.Equal(t, "rpg", g.Genres[0].ID)

	rr := ts.request(http.MethodGet, "/api/games/my?page=1&pageSize=10", nil, seller)
	require.Equal(t, http.StatusOK, rr.Code)
	var page response.Page[response.Game]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 1, page.TotalElements)

	rr = ts.request(http.MethodGet, "/api/games?GameTitle=ashen&Genres=rpg&MinPrice=10&MaxPrice=20", nil, "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 1, page.TotalElements)

	rr = ts.request(http.MethodGet, "/api/games?MaxPrice=5", nil, "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 0, page.TotalElements)
}

func TestInvalidPriceQuery(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/games?MinPrice=cheap", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCustomerCannotCreateGames(t *testing.T) {
	ts := newTestServer(t)
	customer := ts.register(t, "carol", "CUSTOMER")

	rr := ts.request(http.MethodGet, "/api/games/my", nil, customer)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGetMissingGame(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/games/404", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "GAME_NOT_FOUND")
}

func TestAddKeysAndDelete(t *testing.T) {
	ts := newTestServer(t)
	seller := ts.register(t, "sam", "SELLER")
	g := ts.createGame(t, seller, "Ashen Crown", "K1")

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("Keys", "more.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("K2\nK3\n"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/games/1/keys", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := ts.send(req, seller)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"added":2}`, rr.Body.String())

	other := ts.register(t, "rival", "SELLER")
	rr = ts.request(http.MethodDelete, "/api/games/1", nil, other)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/games/1", nil, seller)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, err = ts.shop.GetGame(t.Context(), g.ID)
	assert.Error(t, err)
}

func TestCartAndCheckout(t *testing.T) {
	ts := newTestServer(t)
	seller := ts.register(t, "sam", "SELLER")
	g := ts.createGame(t, seller, "Ashen Crown", "K1\nK2\nK3")
	customer := ts.register(t, "carol", "CUSTOMER")

	rr := ts.request(http.MethodPost, "/api/carts/items", map[string]any{"GameId": g.ID, "Quantity": 2}, customer)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodDelete, "/api/carts/items", map[string]any{"GameId": g.ID, "Quantity": 1}, customer)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/carts", nil, customer)
	var cart response.Cart
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cart))
	require.Len(t, cart.CartItems, 1)
	assert.Equal(t, 1, cart.CartItems[0].Quantity)

	rr = ts.request(http.MethodPost, "/api/orders", map[string]any{
		"OrderItems": []map[string]any{{"GameId": g.ID, "Quantity": 1}},
	}, customer)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var order response.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &order))
	assert.Equal(t, []string{"K1"}, order.OrderItems[0].Keys)

	rr = ts.request(http.MethodGet, "/api/orders", nil, customer)
	var orders response.Page[response.Order]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &orders))
	assert.Equal(t, 1, orders.TotalElements)

	rr = ts.request(http.MethodGet, "/api/carts", nil, customer)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cart))
	assert.Empty(t, cart.CartItems)
}

func TestSellerCannotUseCart(t *testing.T) {
	ts := newTestServer(t)
	seller := ts.register(t, "sam", "SELLER")

	rr := ts.request(http.MethodGet, "/api/carts", nil, seller)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGenres(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/genres", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var genres []response.Genre
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &genres))
	assert.Contains(t, genres, response.Genre{ID: "rpg", Title: "RPG"})
}

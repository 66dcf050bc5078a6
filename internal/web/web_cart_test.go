package web_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/keyshop/internal/model"
)

func TestCartRequiresLogin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/cart")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?next=%2Fcart", rr.Header().Get("Location"))
	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-info", "Please log in to continue")
}

func TestCartIsNotForSellers(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login("sam", model.RoleSeller)

	rr := ts.get("/orders")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assertContainsText(t, parseHTML(ts.followRedirect(rr).Body), ".flash-error", "That page is not available for your account")
}

func TestGuestAddFromFragmentRedirectsToLogin(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.backend.Listing(t, "sam", "Neon Drift", 9.99, 2)

	rr := ts.postHTMX("/cart/add", url.Values{"gameId": {fmt.Sprint(game.ID)}})

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "/login?next=%2F", rr.Header().Get("HX-Redirect"))
}

func TestAddToCartFromCatalog(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.backend.Listing(t, "sam", "Neon Drift", 9.99, 2)
	ts.login("carol", model.RoleCustomer)

	rr := ts.postHTMX("/cart/add", url.Values{"gameId": {fmt.Sprint(game.ID)}})

	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#flash .flash-toast", "Added Neon Drift to your cart")
	assertContainsText(t, doc, "#cart-badge[hx-swap-oob]", "1")

	// the badge is part of every page for customers
	doc = parseHTML(ts.get("/").Body)
	assertContainsText(t, doc, "header #cart-badge", "1")
}

func TestAddToCartFromProductPage(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.backend.Listing(t, "sam", "Neon Drift", 9.99, 2)
	ts.login("carol", model.RoleCustomer)
	next := fmt.Sprintf("/games/%d", game.ID)

	rr := ts.post("/cart/add", url.Values{"gameId": {fmt.Sprint(game.ID)}, "next": {next}})

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, next, rr.Header().Get("Location"))
	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "Added Neon Drift to your cart")
	assertContainsText(t, doc, ".in-cart", "1 in your cart")
}

func TestAddBeyondStockShowsBackendMessage(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.backend.Listing(t, "sam", "Neon Drift", 9.99, 1)
	ts.login("carol", model.RoleCustomer)
	form := url.Values{"gameId": {fmt.Sprint(game.ID)}}
	ts.postHTMX("/cart/add", form)

	rr := ts.postHTMX("/cart/add", form)

	require.Equal(t, http.StatusOK, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), "#flash .flash-toast", "Not enough keys in stock")
}

func TestCartLineOperations(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.backend.Listing(t, "sam", "Neon Drift", 10, 5)
	ts.login("carol", model.RoleCustomer)
	ts.post("/cart/add", url.Values{"gameId": {fmt.Sprint(game.ID)}})
	line := func(op string) string { return fmt.Sprintf("/cart/items/%d/%s", game.ID, op) }

	doc := parseHTML(ts.get("/cart").Body)
	assertContainsText(t, doc, ".cart-line .qty", "1")

	rr := ts.postHTMX(line("increment"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	doc = parseHTML(rr.Body)
	assertContainsText(t, doc, "#cart-table .qty", "2")
	assertContainsText(t, doc, ".cart-total", "$20.00")
	assertContainsText(t, doc, "#cart-badge", "2")

	rr = ts.postHTMX(line("decrement"), nil)
	assertContainsText(t, parseHTML(rr.Body), "#cart-table .qty", "1")

	rr = ts.postHTMX(line("remove"), nil)
	doc = parseHTML(rr.Body)
	assertNotContainsElement(t, doc, ".cart-line")
	assertContainsText(t, doc, ".cart-empty", "Your cart is empty")
	assert.True(t, doc.Find("#cart-badge").Is("[hidden]"))

	rr = ts.postHTMX(line("remove"), nil)
	assertContainsText(t, parseHTML(rr.Body), "#flash .flash-error", "Item is not in the cart")
}

func TestCheckoutShowsKeysAndRecordsOrder(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.backend.Listing(t, "sam", "Harbor Builder", 14.5, 3)
	ts.login("carol", model.RoleCustomer)
	ts.post("/cart/add", url.Values{"gameId": {fmt.Sprint(game.ID)}})
	ts.postHTMX(fmt.Sprintf("/cart/items/%d/increment", game.ID), nil)

	rr := ts.postHTMX("/cart/checkout", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assert.Equal(t, 2, doc.Find(".order-keys .game-key").Length())
	assertContainsText(t, doc, ".order-confirmation", "$29.00")
	assertContainsText(t, doc, ".cart-empty", "Your cart is empty")
	assertContainsText(t, doc, "#flash .flash-success", "Thank you! Your keys are below.")

	doc = parseHTML(ts.get("/orders").Body)
	require.Equal(t, 1, doc.Find(".order").Length())
	assertContainsText(t, doc, ".order-line", "Harbor Builder")
	assert.Equal(t, 2, doc.Find(".order .game-key").Length())
	assertContainsText(t, doc, ".order-total", "$29.00")

	doc = parseHTML(ts.get(fmt.Sprintf("/games/%d", game.ID)).Body)
	assertContainsText(t, doc, ".game-stock", "1")
}

func TestCheckoutEmptyCartNeverReachesBackend(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login("carol", model.RoleCustomer)
	ts.get("/cart")
	before := ts.backend.Requests()

	rr := ts.post("/cart/checkout", nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	// only the cart refresh reaches the backend, never an order
	assert.LessOrEqual(t, ts.backend.Requests()-before, int64(1))
	assertContainsText(t, parseHTML(ts.followRedirect(rr).Body), ".flash-error", "Cart is empty")
}

func TestOrdersEmpty(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login("carol", model.RoleCustomer)

	doc := parseHTML(ts.get("/orders").Body)

	assertContainsText(t, doc, ".orders-empty", "You have not bought anything yet.")
	assert.True(t, strings.Contains(doc.Find("nav a[aria-current='page']").Text(), "Orders"))
}

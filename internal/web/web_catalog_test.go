package web_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/catalog"
)

func (ts *webTestServer) seedCatalog() {
	ts.t.Helper()
	ts.backend.Listing(ts.t, "sam", "Starfall Tactics", 24.99, 5, "strategy")
	ts.backend.Listing(ts.t, "sam", "Ashen Crown", 39.99, 5, "rpg")
	ts.backend.Listing(ts.t, "sam", "Harbor Builder", 14.5, 5, "simulation")
	ts.backend.Listing(ts.t, "sam", "Neon Drift", 9.99, 0, "action")
}

func TestHomeListsGamesForGuests(t *testing.T) {
	ts := newWebTestServer(t)
	ts.seedCatalog()

	rr := ts.get("/")

	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assert.Equal(t, 4, doc.Find(".game-card").Length())
	assertContainsText(t, doc, ".results-count", "4 games found")
	assertContainsElement(t, doc, "#genre-widget")
	assertContainsElement(t, doc, "#filters")
	assertContainsElement(t, doc, "#sse[sse-connect='/events']")
	assertNotContainsElement(t, doc, ".add-to-cart")
}

func TestHomeOffersCartToCustomers(t *testing.T) {
	ts := newWebTestServer(t)
	ts.seedCatalog()
	ts.login("carol", model.RoleCustomer)

	doc := parseHTML(ts.get("/").Body)

	assert.Equal(t, 3, doc.Find(".add-to-cart").Length())
	assertContainsText(t, doc, ".game-card .sold-out", "Out of stock")
}

func TestHomeWithUnreachableBackendShowsError(t *testing.T) {
	ts := newWebTestServer(t)
	ts.backend.Server.Close()

	rr := ts.get("/")

	assert.Equal(t, http.StatusOK, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), ".results-error", "Could not load games")
}

func TestInvertedPriceRangeIsRejectedWithoutRequest(t *testing.T) {
	ts := newWebTestServer(t)
	ts.seedCatalog()
	ts.get("/")
	before := ts.backend.Requests()

	rr := ts.postHTMX("/catalog/filters", url.Values{"minPrice": {"500"}, "maxPrice": {"100"}})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, before, ts.backend.Requests())
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#flash[hx-swap-oob] .flash-error", "Minimum price cannot be greater than maximum price")
	// the previous results stay on screen
	assert.Equal(t, 4, doc.Find("#catalog-results .game-card").Length())
}

func TestInvalidPriceIsRejected(t *testing.T) {
	for _, raw := range []string{"-5", "NaN", "Inf", "-Inf"} {
		t.Run(raw, func(t *testing.T) {
			ts := newWebTestServer(t)
			ts.get("/")
			before := ts.backend.Requests()

			rr := ts.post("/catalog/filters", url.Values{"minPrice": {raw}, "maxPrice": {"100"}})

			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, before, ts.backend.Requests())
			rr = ts.followRedirect(rr)
			assertContainsText(t, parseHTML(rr.Body), ".flash-error", "Price must be a non-negative number")
		})
	}
}

func TestPriceFilterNarrowsResults(t *testing.T) {
	ts := newWebTestServer(t)
	ts.seedCatalog()
	ts.get("/")

	rr := ts.postHTMX("/catalog/filters", url.Values{"minPrice": {"10"}, "maxPrice": {"30"}})

	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	titles := doc.Find(".game-title").Map(func(_ int, s *goquery.Selection) string { return strings.TrimSpace(s.Text()) })
	assert.ElementsMatch(t, []string{"Starfall Tactics", "Harbor Builder"}, titles)

	// the page remembers the range
	doc = parseHTML(ts.get("/").Body)
	assert.Equal(t, "10", doc.Find("input[name='minPrice']").AttrOr("value", ""))
	assert.Equal(t, 2, doc.Find(".game-card").Length())

	rr = ts.postHTMX("/catalog/reset", nil)
	assert.Equal(t, 4, parseHTML(rr.Body).Find(".game-card").Length())
}

func TestSearchFromHTMXIsDebounced(t *testing.T) {
	ts := newWebTestServer(t)
	ts.seedCatalog()
	ts.get("/")

	rr := ts.postHTMX("/catalog/search", url.Values{"title": {"har"}})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.postHTMX("/catalog/search", url.Values{"title": {"harbor"}})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	ts.app.MockClock.Advance(catalog.DefaultConfig().Debounce)

	doc := parseHTML(ts.get("/").Body)
	assert.Equal(t, 1, doc.Find(".game-card").Length())
	assertContainsText(t, doc, ".game-title", "Harbor Builder")
	assert.Equal(t, "harbor", doc.Find("input[name='title']").AttrOr("value", ""))
}

func TestSubmittedSearchRunsImmediately(t *testing.T) {
	ts := newWebTestServer(t)
	ts.seedCatalog()

	rr := ts.post("/catalog/search", url.Values{"title": {"crown"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assert.Equal(t, 1, doc.Find(".game-card").Length())
	assertContainsText(t, doc, ".game-title", "Ashen Crown")
}

func TestPagination(t *testing.T) {
	ts := newWebTestServer(t)
	for i := range 25 {
		ts.backend.Listing(t, "sam", fmt.Sprintf("Game %02d", i+1), 5, 1)
	}

	doc := parseHTML(ts.get("/").Body)
	assert.Equal(t, 20, doc.Find(".game-card").Length())
	assertContainsText(t, doc, ".page-current", "1")
	assertContainsElement(t, doc, "a.page-next[href='/catalog/page/2']")

	rr := ts.getHTMX("/catalog/page/2")
	require.Equal(t, http.StatusOK, rr.Code)
	doc = parseHTML(rr.Body)
	assert.Equal(t, 5, doc.Find(".game-card").Length())
	assertContainsText(t, doc, ".page-current", "2")
	assertNotContainsElement(t, doc, ".page-next")
	assertContainsElement(t, doc, "a.page-prev[href='/catalog/page/1']")
}

func TestClearAllResetsEveryCriterion(t *testing.T) {
	ts := newWebTestServer(t)
	ts.seedCatalog()
	ts.get("/")
	ts.postHTMX("/genres/toggle", url.Values{"id": {"rpg"}})
	ts.postHTMX("/genres/apply", nil)
	ts.postHTMX("/catalog/filters", url.Values{"minPrice": {"30"}})

	rr := ts.post("/catalog/clear", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assert.Equal(t, 4, doc.Find(".game-card").Length())
	assertNotContainsElement(t, doc, "#genre-chips .chip")
	assert.Empty(t, doc.Find("input[name='minPrice']").AttrOr("value", ""))
}

func TestProductPage(t *testing.T) {
	ts := newWebTestServer(t)
	game := ts.backend.Listing(t, "sam", "Starfall Tactics", 24.99, 3, "strategy")

	rr := ts.get(fmt.Sprintf("/games/%d", game.ID))

	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".product .game-title", "Starfall Tactics")
	assertContainsText(t, doc, ".game-stock", "3")
	assertContainsElement(t, doc, fmt.Sprintf("a[href='/login?next=/games/%d']", game.ID))
}

func TestProductPageMissingGame(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/games/999")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), ".error-message", "That game does not exist.")
}

func TestHealthz(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","backend":"ok"}`, rr.Body.String())

	ts.backend.Server.Close()
	rr = ts.get("/healthz")
	assert.JSONEq(t, `{"status":"ok","backend":"unreachable"}`, rr.Body.String())
}

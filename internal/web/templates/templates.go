// Package templates holds the storefront's pages and htmx fragments. Templates are
// plain html/template files embedded in the binary and exposed as templ components.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/catalog"
	"github.com/mcoot/keyshop/internal/services/genres"
	"github.com/mcoot/keyshop/internal/services/menu"
)

//go:embed html
var files embed.FS

// FlashMessage is a one-shot notice shown at the top of the next page.
// Error flashes stay until dismissed; toasts fade out on their own.
type FlashMessage struct {
	Type    string
	Message string
}

// Flash types
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
	FlashToast   = "toast"
)

// AutoDismiss reports whether the flash fades out without user action
func (f *FlashMessage) AutoDismiss() bool {
	return f != nil && f.Type != FlashError
}

// PageData is what the layout needs on every page
type PageData struct {
	Title   string
	Session model.Session
	Flash   *FlashMessage
	Menu    MenuData
	Badge   model.Badge
	// Listings is the seller's listing count shown in the header
	Listings int
	// Path is the current request path, used to mark the active nav entry
	Path string
}

// MenuData is the navigation menu fragment
type MenuData struct {
	State    menu.State
	Session  model.Session
	Badge    model.Badge
	Listings int
}

var (
	funcs = template.FuncMap{
		"money":     Money,
		"genreList": genreList,
		"add":       func(a, b int) int { return a + b },
		"sub":       func(a, b int) int { return a - b },
		"hasGenre":  hasGenre,
		"cardOf":    func(g model.Game, canBuy bool) gameCard { return gameCard{Game: g, CanBuy: canBuy} },
		"date":      func(t time.Time) string { return t.Format("02 Jan 2006 15:04") },
	}

	// base holds the layout and every fragment; pages are parsed on top of a clone
	base  = template.Must(template.New("base").Funcs(funcs).ParseFS(files, "html/layout.html", "html/components/*.html"))
	pages = mustPages()
)

func mustPages() map[string]*template.Template {
	names, err := fs.Glob(files, "html/pages/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(template.Must(base.Clone()).ParseFS(files, name))
		out[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return out
}

func page(name string, data any) templ.Component {
	t, ok := pages[name]
	if !ok {
		panic(fmt.Sprintf("templates: unknown page %q", name))
	}
	return templ.FromGoHTML(t.Lookup("layout"), data)
}

func fragment(name string, data any) templ.Component {
	return templ.FromGoHTML(base.Lookup(name), data)
}

// Money formats a price the way the storefront displays it
func Money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func genreList(gs []model.Genre) string {
	labels := make([]string, 0, len(gs))
	for _, g := range gs {
		labels = append(labels, g.Label)
	}
	return strings.Join(labels, ", ")
}

func hasGenre(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type gameCard struct {
	Game   model.Game
	CanBuy bool
}

// CatalogResults is the game grid with its pagination bar
type CatalogResults struct {
	Games         []model.Game
	Window        []catalog.PageLink
	Page          int
	TotalPages    int
	TotalElements int
	Filter        model.Filter
	// CanBuy shows the add-to-cart buttons
	CanBuy bool
	Error  string
}

// ResultsFrom builds the fragment data from a catalog result
func ResultsFrom(res catalog.Result, canBuy bool) CatalogResults {
	return CatalogResults{
		Games:         res.Page.Content,
		Window:        res.Window,
		Page:          res.Page.PageNumber,
		TotalPages:    res.Page.TotalPages,
		TotalElements: res.Page.TotalElements,
		Filter:        res.Filter,
		CanBuy:        canBuy,
	}
}

// HasPrev reports whether the previous-page link is active
func (c CatalogResults) HasPrev() bool { return c.Page > 1 }

// HasNext reports whether the next-page link is active
func (c CatalogResults) HasNext() bool { return c.Page < c.TotalPages }

// FilterForm is the price and title inputs, echoed back after a rejected submit
type FilterForm struct {
	MinPrice string
	MaxPrice string
	Title    string
}

// FormFromFilter renders a filter's values into the inputs
func FormFromFilter(f model.Filter) FilterForm {
	form := FilterForm{Title: f.TitleQuery}
	if f.MinPrice != nil {
		form.MinPrice = strconv.FormatFloat(*f.MinPrice, 'f', -1, 64)
	}
	if f.MaxPrice != nil {
		form.MaxPrice = strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64)
	}
	return form
}

// CatalogData is the home page
type CatalogData struct {
	PageData
	Form    FilterForm
	Genres  genres.View
	Results CatalogResults
}

// Catalog renders the home page
func Catalog(data CatalogData) templ.Component { return page("catalog", data) }

// AuthForm is the login and register form state
type AuthForm struct {
	Identifier  string
	Email       string
	Username    string
	Role        model.Role
	Error       string
	FieldErrors map[string]string
	Next        string
}

// AuthData is the login or register page
type AuthData struct {
	PageData
	Form AuthForm
}

// Login renders the login page
func Login(data AuthData) templ.Component { return page("login", data) }

// Register renders the registration page
func Register(data AuthData) templ.Component { return page("register", data) }

// ProductData is the game detail page
type ProductData struct {
	PageData
	Game   *model.Game
	CanBuy bool
	InCart int
}

// Product renders the game detail page
func Product(data ProductData) templ.Component { return page("product", data) }

// CartView is the cart table fragment
type CartView struct {
	Cart  *model.Cart
	Order *model.Order
}

// CartData is the cart page
type CartData struct {
	PageData
	CartView
}

// Cart renders the cart page
func Cart(data CartData) templ.Component { return page("cart", data) }

// OrdersData is the order history page
type OrdersData struct {
	PageData
	Orders model.Page[model.Order]
}

// Orders renders the order history page
func Orders(data OrdersData) templ.Component { return page("orders", data) }

// SellerForm is the create or edit form with its validation state
type SellerForm struct {
	// GameID is zero for a new listing
	GameID int64
	Draft  model.GameDraft
	Error  string
}

// SellerData is the seller console
type SellerData struct {
	PageData
	Games  model.Page[model.Game]
	Form   SellerForm
	Genres []model.Genre
}

// Seller renders the seller console
func Seller(data SellerData) templ.Component { return page("seller", data) }

// ErrorData is the full-page error
type ErrorData struct {
	PageData
	Status  int
	Message string
}

// Error renders a full error page
func Error(data ErrorData) templ.Component { return page("error", data) }

// Menu renders the navigation menu fragment
func Menu(data MenuData) templ.Component { return fragment("menu", data) }

// Badge renders the cart badge
func Badge(b model.Badge) templ.Component { return fragment("badge", b) }

// ListingCount renders the seller's listing counter
func ListingCount(n int) templ.Component { return fragment("listing-count", n) }

// Results renders the catalog grid and pagination
func Results(data CatalogResults) templ.Component { return fragment("catalog-results", data) }

// GenreWidget renders the genre picker
func GenreWidget(v genres.View) templ.Component { return fragment("genre-widget", v) }

// GenreChips renders the applied genre chips
func GenreChips(v genres.View) templ.Component { return fragment("genre-chips", v) }

// GenreChipsOOB renders the chips for an out-of-band swap
func GenreChipsOOB(v genres.View) templ.Component { return fragment("genre-chips-oob", v) }

// CartTable renders the cart lines and totals
func CartTable(v CartView) templ.Component { return fragment("cart-table", v) }

// Flash renders a flash message
func Flash(f *FlashMessage) templ.Component { return fragment("flash", f) }

// FlashOOB renders a flash message that htmx swaps in out of band
func FlashOOB(f *FlashMessage) templ.Component { return fragment("flash-oob", f) }

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/genres"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case model.Session:
		o.printSession(v)
	case model.Page[model.Game]:
		o.printGames(v)
	case *model.Game:
		o.printGame(v)
	case genres.View:
		o.printGenres(v)
	case *model.Cart:
		o.printCart(v)
	case model.Page[model.Order]:
		o.printOrders(v)
	case *model.Order:
		o.printOrder(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\nBackend: %s (%s)\n", v.Status, v.Backend, v.Server)
		if v.Error != "" {
			fmt.Fprintf(o.w, "Error: %s\n", v.Error)
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult is the outcome of a backend ping
type HealthResult struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Server  string `json:"server"`
	Error   string `json:"error,omitempty"`
}

func (o *Output) printSession(s model.Session) {
	if s.IsGuest() {
		fmt.Fprintln(o.w, "Not logged in")
		return
	}
	fmt.Fprintf(o.w, "User: %s\n", s.DisplayName())
	fmt.Fprintf(o.w, "Email: %s\n", s.User.Email)
	fmt.Fprintf(o.w, "Role: %s\n", s.Role)
}

func genreLabels(gs []model.Genre) string {
	labels := make([]string, 0, len(gs))
	for _, g := range gs {
		labels = append(labels, g.Label)
	}
	return strings.Join(labels, ", ")
}

func (o *Output) printGames(p model.Page[model.Game]) {
	if len(p.Content) == 0 {
		fmt.Fprintln(o.w, "No games found")
		return
	}
	for _, g := range p.Content {
		fmt.Fprintf(o.w, "%5d  %-32s %8.2f  %3d keys  %s\n", g.ID, g.Title, g.Price, g.KeysAvailable, genreLabels(g.Genres))
	}
	fmt.Fprintf(o.w, "Page %d of %d (%d games)\n", p.PageNumber, max(p.TotalPages, 1), p.TotalElements)
}

func (o *Output) printGame(g *model.Game) {
	fmt.Fprintf(o.w, "Game: %s (%d)\n", g.Title, g.ID)
	fmt.Fprintf(o.w, "Price: %.2f\n", g.Price)
	if g.DeveloperTitle != "" {
		fmt.Fprintf(o.w, "Developer: %s\n", g.DeveloperTitle)
	}
	if g.PublisherTitle != "" {
		fmt.Fprintf(o.w, "Publisher: %s\n", g.PublisherTitle)
	}
	fmt.Fprintf(o.w, "Genres: %s\n", genreLabels(g.Genres))
	fmt.Fprintf(o.w, "Keys available: %d\n", g.KeysAvailable)
	if g.Description != "" {
		fmt.Fprintf(o.w, "\n%s\n", g.Description)
	}
}

func (o *Output) printGenres(v genres.View) {
	for _, opt := range v.Options {
		mark := " "
		if opt.Selected {
			mark = "x"
		}
		fmt.Fprintf(o.w, "[%s] %-12s %s\n", mark, opt.ID, opt.Label)
	}
}

func (o *Output) printCart(c *model.Cart) {
	if c == nil || len(c.Items) == 0 {
		fmt.Fprintln(o.w, "Your cart is empty")
		return
	}
	for _, item := range c.Items {
		fmt.Fprintf(o.w, "%5d  %-32s %3d x %8.2f = %9.2f\n", item.GameID, item.Title, item.Quantity, item.Price, item.Subtotal())
	}
	fmt.Fprintf(o.w, "Items: %d\nTotal: %.2f\n", c.TotalQuantity(), c.TotalPrice())
}

func (o *Output) printOrders(p model.Page[model.Order]) {
	if len(p.Content) == 0 {
		fmt.Fprintln(o.w, "No orders yet")
		return
	}
	for i := range p.Content {
		o.printOrder(&p.Content[i])
		fmt.Fprintln(o.w)
	}
	fmt.Fprintf(o.w, "Page %d of %d\n", p.PageNumber, max(p.TotalPages, 1))
}

func (o *Output) printOrder(ord *model.Order) {
	fmt.Fprintf(o.w, "Order %s  %s  total %.2f\n", ord.ID, ord.CreatedAt.Format("2006-01-02 15:04"), ord.Total())
	for _, item := range ord.Items {
		fmt.Fprintf(o.w, "  %d x %s\n", item.Quantity, item.Title)
		for _, key := range item.Keys {
			fmt.Fprintf(o.w, "      %s\n", key)
		}
	}
}

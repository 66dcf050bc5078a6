package response

import (
	"time"

	"github.com/mcoot/keyshop/internal/model"
)

// User represents an account in API responses
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserFromModel converts a model.User
func UserFromModel(u model.User) User {
	return User{Username: u.Username, Email: u.Email, Role: string(u.Role)}
}

// Genre represents a genre in API responses
type Genre struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// GenreFromModel converts a model.Genre
func GenreFromModel(g model.Genre) Genre {
	return Genre{ID: g.ID, Title: g.Label}
}

// Game represents a listing in API responses
type Game struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	DeveloperTitle string  `json:"developerTitle"`
	PublisherTitle string  `json:"publisherTitle"`
	ImageURL       string  `json:"imageUrl,omitempty"`
	Genres         []Genre `json:"genres"`
	KeysCount      int     `json:"keysCount"`
	SellerUsername string  `json:"sellerUsername"`
}

// GameFromModel converts a model.Game
func GameFromModel(g model.Game) Game {
	genres := make([]Genre, len(g.Genres))
	for i, genre := range g.Genres {
		genres[i] = GenreFromModel(genre)
	}
	return Game{
		ID:             g.ID,
		Title:          g.Title,
		Description:    g.Description,
		Price:          g.Price,
		DeveloperTitle: g.DeveloperTitle,
		PublisherTitle: g.PublisherTitle,
		ImageURL:       g.ImageURL,
		Genres:         genres,
		KeysCount:      g.KeysAvailable,
		SellerUsername: g.SellerUsername,
	}
}

// CartItem represents one cart line
type CartItem struct {
	GameID    int64   `json:"gameId"`
	GameTitle string  `json:"gameTitle"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Cart represents a customer's cart
type Cart struct {
	CartItems []CartItem `json:"cartItems"`
}

// CartFromModel converts a model.Cart
func CartFromModel(c *model.Cart) Cart {
	items := make([]CartItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = CartItem{
			GameID:    item.GameID,
			GameTitle: item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return Cart{CartItems: items}
}

// OrderItem represents one purchased line with its keys
type OrderItem struct {
	GameID    int64    `json:"gameId"`
	GameTitle string   `json:"gameTitle"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	Keys      []string `json:"keys"`
}

// Order represents a completed order
type Order struct {
	ID          string      `json:"id"`
	CreatedAt   time.Time   `json:"createdAt"`
	TotalAmount float64     `json:"totalAmount"`
	OrderItems  []OrderItem `json:"orderItems"`
}

// OrderFromModel converts a model.Order
func OrderFromModel(o model.Order) Order {
	items := make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItem{
			GameID:    item.GameID,
			GameTitle: item.Title,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Keys:      item.Keys,
		}
	}
	return Order{
		ID:          o.ID,
		CreatedAt:   o.CreatedAt,
		TotalAmount: o.TotalAmount,
		OrderItems:  items,
	}
}

// Page is a paged listing
type Page[T any] struct {
	Content       []T `json:"content"`
	PageNumber    int `json:"pageNumber"`
	PageSize      int `json:"pageSize"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

// PageFromModel converts a model.Page, mapping each element
func PageFromModel[M any, T any](p model.Page[M], conv func(M) T) Page[T] {
	content := make([]T, len(p.Content))
	for i, item := range p.Content {
		content[i] = conv(item)
	}
	return Page[T]{
		Content:       content,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		TotalPages:    p.TotalPages,
		TotalElements: p.TotalElements,
	}
}

// KeysAdded is the response of POST /games/{id}/keys
type KeysAdded struct {
	Added int `json:"added"`
}

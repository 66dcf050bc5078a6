package gateway

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/keyshop/internal/model"
)

// The backend variants disagree on field casing (GameId/gameId) and on some names
// (role/userRole, title/gameTitle). encoding/json matches keys case-insensitively,
// so the wire structs below only need extra fields for true renames.

type wireUser struct {
	Username string `json:"username"`
	Login    string `json:"login"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	UserRole string `json:"userRole"`
}

func (w wireUser) toModel() *model.User {
	name := firstNonEmpty(w.Username, w.Login)
	if name == "" && w.Email == "" {
		return nil
	}
	if name == "" {
		name = w.Email
	}
	return &model.User{
		Username: name,
		Email:    w.Email,
		Role:     model.ParseRole(firstNonEmpty(w.Role, w.UserRole)),
	}
}

// wireAuthReply accepts a bare user or one nested under "user"
type wireAuthReply struct {
	wireUser
	User *wireUser `json:"user"`
}

func (w wireAuthReply) toModel() *model.User {
	if w.User != nil {
		u := w.User.toModel()
		if u != nil && !u.Role.Valid() {
			u.Role = model.ParseRole(firstNonEmpty(w.Role, w.UserRole))
		}
		return u
	}
	return w.wireUser.toModel()
}

// wireGenre is either a bare string or an object with an id and title
type wireGenre struct {
	ID    string
	Title string
}

func (g *wireGenre) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		g.ID, g.Title = s, ""
		return nil
	}
	var obj struct {
		ID    flexString `json:"id"`
		Title string     `json:"title"`
		Name  string     `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	g.Title = firstNonEmpty(obj.Title, obj.Name)
	g.ID = string(obj.ID)
	return nil
}

// toModel prefers a symbolic id; numeric database ids fall back to the title,
// which is what the listing filter expects
func (g wireGenre) toModel() model.Genre {
	id := g.ID
	if id == "" || isNumeric(id) {
		id = g.Title
	}
	label := model.GenreLabel(id)
	if label == id && g.Title != "" {
		label = g.Title
	}
	return model.Genre{ID: id, Label: label}
}

type wireGame struct {
	ID             int64       `json:"id"`
	GameID         int64       `json:"gameId"`
	Title          string      `json:"title"`
	GameTitle      string      `json:"gameTitle"`
	Description    string      `json:"description"`
	Price          float64     `json:"price"`
	DeveloperTitle string      `json:"developerTitle"`
	Developer      string      `json:"developer"`
	PublisherTitle string      `json:"publisherTitle"`
	Publisher      string      `json:"publisher"`
	ImageURL       string      `json:"imageUrl"`
	ImagePath      string      `json:"imagePath"`
	CardImage      string      `json:"cardImage"`
	Genres         []wireGenre `json:"genres"`
	KeysCount      int         `json:"keysCount"`
	KeysAvailable  int         `json:"keysAvailable"`
	Seller         string      `json:"sellerUsername"`
}

func (w wireGame) toModel() model.Game {
	g := model.Game{
		ID:             firstNonZero(w.ID, w.GameID),
		Title:          firstNonEmpty(w.Title, w.GameTitle),
		Description:    w.Description,
		Price:          w.Price,
		DeveloperTitle: firstNonEmpty(w.DeveloperTitle, w.Developer),
		PublisherTitle: firstNonEmpty(w.PublisherTitle, w.Publisher),
		ImageURL:       firstNonEmpty(w.ImageURL, w.ImagePath, w.CardImage),
		KeysAvailable:  max(w.KeysAvailable, w.KeysCount),
		SellerUsername: w.Seller,
	}
	for _, genre := range w.Genres {
		g.Genres = append(g.Genres, genre.toModel())
	}
	return g
}

type wireCartItem struct {
	GameID    int64     `json:"gameId"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	GameTitle string    `json:"gameTitle"`
	Title     string    `json:"title"`
	Game      *wireGame `json:"game"`
}

func (w wireCartItem) toModel() model.CartItem {
	item := model.CartItem{
		GameID:   w.GameID,
		Quantity: w.Quantity,
		Price:    w.Price,
		Title:    firstNonEmpty(w.GameTitle, w.Title),
	}
	if w.Game != nil {
		g := w.Game.toModel()
		if item.GameID == 0 {
			item.GameID = g.ID
		}
		if item.Title == "" {
			item.Title = g.Title
		}
		if item.Price == 0 {
			item.Price = g.Price
		}
	}
	return item
}

type wireCart struct {
	CartItems []wireCartItem `json:"cartItems"`
	Items     []wireCartItem `json:"items"`
}

func (w wireCart) toModel() *model.Cart {
	lines := w.CartItems
	if len(lines) == 0 {
		lines = w.Items
	}
	cart := &model.Cart{}
	for _, line := range lines {
		item := line.toModel()
		if item.Quantity <= 0 {
			continue
		}
		cart.Items = append(cart.Items, item)
	}
	return cart
}

// wireCartItemRequest is the body of POST and DELETE /carts/items
type wireCartItemRequest struct {
	GameID   int64 `json:"GameId"`
	Quantity int   `json:"Quantity"`
}

type wireOrderItem struct {
	GameID    int64     `json:"gameId"`
	GameTitle string    `json:"gameTitle"`
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Key       string    `json:"key"`
	Keys      []string  `json:"keys"`
	Game      *wireGame `json:"game"`
}

func (w wireOrderItem) toModel() model.OrderItem {
	item := model.OrderItem{
		GameID:   w.GameID,
		Title:    firstNonEmpty(w.GameTitle, w.Title),
		Quantity: w.Quantity,
		Price:    w.Price,
		Keys:     w.Keys,
	}
	if w.Key != "" {
		item.Keys = append([]string{w.Key}, item.Keys...)
	}
	if w.Game != nil && item.Title == "" {
		item.Title = w.Game.toModel().Title
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	return item
}

type wireOrder struct {
	ID          flexString      `json:"id"`
	CreatedAt   string          `json:"createdAt"`
	TotalAmount float64         `json:"totalAmount"`
	OrderItems  []wireOrderItem `json:"orderItems"`
}

func (w wireOrder) toModel() model.Order {
	o := model.Order{
		ID:          string(w.ID),
		CreatedAt:   parseTime(w.CreatedAt),
		TotalAmount: w.TotalAmount,
	}
	for _, item := range w.OrderItems {
		o.Items = append(o.Items, item.toModel())
	}
	return o
}

type wireOrderRequest struct {
	OrderItems []wireCartItemRequest `json:"OrderItems"`
}

type wirePage[T any] struct {
	Content       []T `json:"content"`
	Items         []T `json:"items"`
	PageNumber    int `json:"pageNumber"`
	PageSize      int `json:"pageSize"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
	TotalCount    int `json:"totalCount"`
}

func toPage[W any, M any](w wirePage[W], page, size int, conv func(W) M) model.Page[M] {
	content := w.Content
	if len(content) == 0 {
		content = w.Items
	}
	p := model.Page[M]{
		PageNumber:    w.PageNumber,
		PageSize:      w.PageSize,
		TotalPages:    w.TotalPages,
		TotalElements: max(w.TotalElements, w.TotalCount),
		Content:       make([]M, 0, len(content)),
	}
	for _, item := range content {
		p.Content = append(p.Content, conv(item))
	}
	if p.PageNumber <= 0 {
		p.PageNumber = page
	}
	if p.PageSize <= 0 {
		p.PageSize = size
	}
	if p.TotalElements == 0 {
		p.TotalElements = len(p.Content)
	}
	if p.TotalPages == 0 && p.TotalElements > 0 && p.PageSize > 0 {
		p.TotalPages = (p.TotalElements + p.PageSize - 1) / p.PageSize
	}
	return p
}

// flexString decodes a JSON string or number
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func isNumeric(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

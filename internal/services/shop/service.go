// Package shop is the storefront domain behind the development backend:
// listings with their key stock, carts and orders.
package shop

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/dependencies/random"
	"github.com/mcoot/keyshop/internal/model"
)

const (
	// KeyGroupLength is the length of each dash-separated group of a generated key
	KeyGroupLength = 5
	// KeyGroups is the number of groups in a generated key
	KeyGroups = 3
	// KeyAlphabet avoids characters that are easy to misread
	KeyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Errors
var (
	ErrNotOwner        = errors.New("listing belongs to another seller")
	ErrOutOfStock      = errors.New("not enough keys in stock")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNoKeys          = errors.New("key file contains no keys")
)

// Image is an uploaded cover image
type Image struct {
	Filename string
	Content  []byte
}

type listing struct {
	game  model.Game
	keys  []string
	image *Image
}

func (l *listing) snapshot() model.Game {
	g := l.game
	g.Genres = slices.Clone(l.game.Genres)
	g.KeysAvailable = len(l.keys)
	return g
}

// Service holds all storefront state in memory
type Service struct {
	clock  clock.Clock
	random random.Random

	mu        sync.RWMutex
	listings  map[int64]*listing
	nextGame  int64
	carts     map[string]map[int64]int
	orders    map[string][]model.Order
	nextOrder int64
}

// New creates an empty storefront
func New(clock clock.Clock, random random.Random) *Service {
	return &Service{
		clock:     clock,
		random:    random,
		listings:  make(map[int64]*listing),
		nextGame:  1,
		carts:     make(map[string]map[int64]int),
		orders:    make(map[string][]model.Order),
		nextOrder: 1,
	}
}

// Genres returns the genre catalog
func (s *Service) Genres() []model.Genre {
	return slices.Clone(model.Genres)
}

func matches(g model.Game, f model.Filter) bool {
	if f.MinPrice != nil && g.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && g.Price > *f.MaxPrice {
		return false
	}
	if f.TitleQuery != "" && !strings.Contains(strings.ToLower(g.Title), strings.ToLower(f.TitleQuery)) {
		return false
	}
	if len(f.GenreIDs) > 0 {
		return slices.ContainsFunc(g.Genres, func(genre model.Genre) bool {
			return slices.Contains(f.GenreIDs, genre.ID)
		})
	}
	return true
}

func paginate[T any](items []T, page, size int) model.Page[T] {
	if size <= 0 {
		size = 20
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	p := model.Page[T]{
		PageNumber:    page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
		Content:       []T{},
	}
	start := (page - 1) * size
	if start < total {
		p.Content = items[start:min(start+size, total)]
	}
	return p
}

func (s *Service) sortedLocked(keep func(model.Game) bool) []model.Game {
	ids := make([]int64, 0, len(s.listings))
	for id := range s.listings {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var games []model.Game
	for _, id := range ids {
		g := s.listings[id].snapshot()
		if keep(g) {
			games = append(games, g)
		}
	}
	return games
}

// ListGames returns one page of listings matching the filter
func (s *Service) ListGames(ctx context.Context, f model.Filter, page, size int) model.Page[model.Game] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paginate(s.sortedLocked(func(g model.Game) bool { return matches(g, f) }), page, size)
}

// SellerGames returns one page of a seller's own listings
func (s *Service) SellerGames(ctx context.Context, seller string, page, size int) model.Page[model.Game] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paginate(s.sortedLocked(func(g model.Game) bool { return g.SellerUsername == seller }), page, size)
}

// GetGame returns a listing
func (s *Service) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	g := l.snapshot()
	return &g, nil
}

// GameImage returns a listing's cover image
func (s *Service) GameImage(ctx context.Context, id int64) (*Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok || l.image == nil {
		return nil, model.ErrGameNotFound
	}
	return l.image, nil
}

func genresFor(ids []string) []model.Genre {
	genres := make([]model.Genre, 0, len(ids))
	for _, id := range ids {
		genres = append(genres, model.Genre{ID: id, Label: model.GenreLabel(id)})
	}
	return genres
}

func imageURL(id int64) string {
	return "/api/games/" + strconv.FormatInt(id, 10) + "/image"
}

// ParseKeys reads one key per line, ignoring blank lines
func ParseKeys(content []byte) []string {
	var keys []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if key := strings.TrimSpace(scanner.Text()); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// CreateGame adds a listing owned by seller
func (s *Service) CreateGame(ctx context.Context, seller string, d model.GameDraft) (*model.Game, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	var keys []string
	if d.Keys != nil {
		keys = ParseKeys(d.Keys.Content)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextGame
	s.nextGame++
	l := &listing{
		game: model.Game{
			ID:             id,
			Title:          strings.TrimSpace(d.Title),
			Description:    d.Description,
			Price:          d.Price,
			DeveloperTitle: d.DeveloperTitle,
			PublisherTitle: d.PublisherTitle,
			Genres:         genresFor(d.GenreIDs),
			SellerUsername: seller,
		},
		keys: keys,
	}
	if d.Image != nil {
		l.image = &Image{Filename: d.Image.Filename, Content: d.Image.Content}
		l.game.ImageURL = imageURL(id)
	}
	s.listings[id] = l

	g := l.snapshot()
	return &g, nil
}

func (s *Service) ownedLocked(seller string, id int64) (*listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	if l.game.SellerUsername != seller {
		return nil, ErrNotOwner
	}
	return l, nil
}

// UpdateGame replaces a listing's details. Keys are left untouched.
func (s *Service) UpdateGame(ctx context.Context, seller string, id int64, d model.GameDraft) (*model.Game, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.ownedLocked(seller, id)
	if err != nil {
		return nil, err
	}
	l.game.Title = strings.TrimSpace(d.Title)
	l.game.Description = d.Description
	l.game.Price = d.Price
	l.game.DeveloperTitle = d.DeveloperTitle
	l.game.PublisherTitle = d.PublisherTitle
	l.game.Genres = genresFor(d.GenreIDs)
	if d.Image != nil {
		l.image = &Image{Filename: d.Image.Filename, Content: d.Image.Content}
		l.game.ImageURL = imageURL(id)
	}

	g := l.snapshot()
	return &g, nil
}

// DeleteGame removes a listing and drops it from every cart
func (s *Service) DeleteGame(ctx context.Context, seller string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedLocked(seller, id); err != nil {
		return err
	}
	delete(s.listings, id)
	for _, cart := range s.carts {
		delete(cart, id)
	}
	return nil
}

// AddKeys appends keys from an uploaded file and returns how many were added
func (s *Service) AddKeys(ctx context.Context, seller string, id int64, content []byte) (int, error) {
	keys := ParseKeys(content)
	if len(keys) == 0 {
		return 0, ErrNoKeys
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.ownedLocked(seller, id)
	if err != nil {
		return 0, err
	}
	l.keys = append(l.keys, keys...)
	return len(keys), nil
}

// GenerateKeys creates n random keys in the XXXXX-XXXXX-XXXXX format
func (s *Service) GenerateKeys(n int) []string {
	keys := make([]string, 0, n)
	for range n {
		keys = append(keys, random.Key(s.random, KeyGroups, KeyGroupLength, KeyAlphabet))
	}
	return keys
}

// Cart returns a customer's cart with current titles and prices
func (s *Service) Cart(ctx context.Context, customer string) *model.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartLocked(customer)
}

func (s *Service) cartLocked(customer string) *model.Cart {
	lines := s.carts[customer]
	ids := make([]int64, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	cart := &model.Cart{}
	for _, id := range ids {
		l, ok := s.listings[id]
		if !ok {
			continue
		}
		cart.Items = append(cart.Items, model.CartItem{
			GameID:   id,
			Title:    l.game.Title,
			Price:    l.game.Price,
			Quantity: lines[id],
		})
	}
	return cart
}

// AddToCart adds quantity copies of a game to the cart
func (s *Service) AddToCart(ctx context.Context, customer string, gameID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[gameID]
	if !ok {
		return model.ErrGameNotFound
	}
	lines := s.carts[customer]
	if lines == nil {
		lines = make(map[int64]int)
		s.carts[customer] = lines
	}
	if lines[gameID]+quantity > len(l.keys) {
		return ErrOutOfStock
	}
	lines[gameID] += quantity
	return nil
}

// RemoveFromCart removes quantity copies of a game; the line disappears at zero
func (s *Service) RemoveFromCart(ctx context.Context, customer string, gameID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[customer]
	if lines[gameID] == 0 {
		return model.ErrCartItemMissing
	}
	lines[gameID] -= quantity
	if lines[gameID] <= 0 {
		delete(lines, gameID)
	}
	return nil
}

// Checkout turns order lines into an order, assigning keys from stock.
// Ordered quantities are taken out of the customer's cart.
func (s *Service) Checkout(ctx context.Context, customer string, lines []model.OrderLine) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		l, ok := s.listings[line.GameID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", model.ErrGameNotFound, line.GameID)
		}
		if len(l.keys) < line.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrOutOfStock, l.game.Title)
		}
	}

	order := model.Order{
		ID:        strconv.FormatInt(s.nextOrder, 10),
		CreatedAt: s.clock.Now(),
	}
	s.nextOrder++

	cart := s.carts[customer]
	for _, line := range lines {
		l := s.listings[line.GameID]
		keys := slices.Clone(l.keys[:line.Quantity])
		l.keys = l.keys[line.Quantity:]

		order.Items = append(order.Items, model.OrderItem{
			GameID:   line.GameID,
			Title:    l.game.Title,
			Quantity: line.Quantity,
			Price:    l.game.Price,
			Keys:     keys,
		})
		order.TotalAmount += l.game.Price * float64(line.Quantity)

		if cart != nil {
			cart[line.GameID] -= line.Quantity
			if cart[line.GameID] <= 0 {
				delete(cart, line.GameID)
			}
		}
	}

	s.orders[customer] = append(s.orders[customer], order)
	return &order, nil
}

// Orders returns one page of a customer's orders, newest first
func (s *Service) Orders(ctx context.Context, customer string, page, size int) model.Page[model.Order] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := slices.Clone(s.orders[customer])
	slices.Reverse(history)
	return paginate(history, page, size)
}

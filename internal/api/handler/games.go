package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcoot/keyshop/internal/api/middleware"
	"github.com/mcoot/keyshop/internal/api/response"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/shop"
)

// maxUploadSize bounds multipart bodies, images included
const maxUploadSize = 10 << 20

// GameHandler handles listing endpoints
type GameHandler struct {
	shop *shop.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(shop *shop.Service) *GameHandler {
	return &GameHandler{shop: shop}
}

func parsePrice(q map[string][]string, name string) (*float64, error) {
	values := q[name]
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(values[0]), 64)
	if err != nil {
		return nil, NewInvalidRequestError(name + " must be a number")
	}
	return &v, nil
}

// List handles GET /api/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minPrice, err := parsePrice(q, "MinPrice")
	if err != nil {
		WriteError(w, err)
		return
	}
	maxPrice, err := parsePrice(q, "MaxPrice")
	if err != nil {
		WriteError(w, err)
		return
	}

	filter := model.Filter{
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		TitleQuery: strings.TrimSpace(q.Get("GameTitle")),
		GenreIDs:   q["Genres"],
	}
	page, size := pageParams(r)
	result := h.shop.ListGames(r.Context(), filter, page, size)
	response.JSON(w, http.StatusOK, response.PageFromModel(result, response.GameFromModel))
}

// Mine handles GET /api/games/my
func (h *GameHandler) Mine(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	page, size := pageParams(r)
	result := h.shop.SellerGames(r.Context(), account.Username, page, size)
	response.JSON(w, http.StatusOK, response.PageFromModel(result, response.GameFromModel))
}

// Get handles GET /api/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	g, err := h.shop.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(*g))
}

// Image handles GET /api/games/{id}/image
func (h *GameHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	img, err := h.shop.GameImage(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(img.Content))
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(img.Content)
}

// Create handles POST /api/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	draft, err := parseGameForm(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	g, err := h.shop.CreateGame(r.Context(), account.Username, draft)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, r.URL.Path+"/"+strconv.FormatInt(g.ID, 10), response.GameFromModel(*g))
}

// Update handles PUT /api/games/{id}
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	draft, err := parseGameForm(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	g, err := h.shop.UpdateGame(r.Context(), account.Username, id, draft)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(*g))
}

// Delete handles DELETE /api/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.shop.DeleteGame(r.Context(), account.Username, id); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// AddKeys handles POST /api/games/{id}/keys
func (h *GameHandler) AddKeys(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	id, err := gameID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteError(w, NewInvalidRequestError("expected a multipart form"))
		return
	}
	keys, err := readUpload(r.MultipartForm, "Keys")
	if err != nil {
		WriteError(w, err)
		return
	}
	if keys == nil {
		WriteError(w, NewInvalidRequestError("Keys file is required"))
		return
	}
	added, err := h.shop.AddKeys(r.Context(), account.Username, id, keys.Content)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.KeysAdded{Added: added})
}

// Genres handles GET /api/genres
func (h *GameHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres := h.shop.Genres()
	out := make([]response.Genre, len(genres))
	for i, g := range genres {
		out[i] = response.GenreFromModel(g)
	}
	response.JSON(w, http.StatusOK, out)
}

// parseGameForm reads the seller form. Genres arrive as Genres[0].Title, Genres[1].Title, ...
func parseGameForm(r *http.Request) (model.GameDraft, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return model.GameDraft{}, NewInvalidRequestError("expected a multipart form")
	}
	form := r.MultipartForm

	value := func(name string) string {
		if v := form.Value[name]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	price, err := strconv.ParseFloat(value("Price"), 64)
	if err != nil {
		return model.GameDraft{}, NewInvalidRequestError("Price must be a number")
	}

	draft := model.GameDraft{
		Title:          value("Title"),
		Description:    value("Description"),
		Price:          price,
		DeveloperTitle: value("DeveloperTitle"),
		PublisherTitle: value("PublisherTitle"),
	}
	for i := 0; ; i++ {
		genre := value(fmt.Sprintf("Genres[%d].Title", i))
		if genre == "" {
			break
		}
		draft.GenreIDs = append(draft.GenreIDs, genre)
	}

	if draft.Keys, err = readUpload(form, "Keys"); err != nil {
		return model.GameDraft{}, err
	}
	if draft.Image, err = readUpload(form, "Image"); err != nil {
		return model.GameDraft{}, err
	}
	return draft, nil
}

func readUpload(form *multipart.Form, field string) (*model.Upload, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	f, err := headers[0].Open()
	if err != nil {
		return nil, NewInvalidRequestError("unreadable " + field + " file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, NewInvalidRequestError("unreadable " + field + " file")
	}
	return &model.Upload{Filename: headers[0].Filename, Content: content}, nil
}

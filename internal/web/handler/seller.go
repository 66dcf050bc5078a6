package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/genres"
	"github.com/mcoot/keyshop/internal/services/seller"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// maxUploadSize caps a listing form with its key file and cover image
const maxUploadSize = 10 << 20

// SellerHandler handles the seller console
type SellerHandler struct {
	seller *seller.Service
	genres *genres.Service
	pages  *Pages
	logger *slog.Logger
}

// NewSellerHandler creates a new SellerHandler
func NewSellerHandler(sellerService *seller.Service, genreService *genres.Service, pages *Pages, logger *slog.Logger) *SellerHandler {
	return &SellerHandler{
		seller: sellerService,
		genres: genreService,
		pages:  pages,
		logger: logger.With(slog.String("component", "seller-handler")),
	}
}

// View renders the listings with the create form, or the edit form for ?edit=ID
func (h *SellerHandler) View(w http.ResponseWriter, r *http.Request) {
	scope := middleware.GetScope(r.Context())
	form := templates.SellerForm{Draft: h.seller.NewDraft(scope)}

	if edit := r.URL.Query().Get("edit"); edit != "" {
		id, err := strconv.ParseInt(edit, 10, 64)
		if err == nil {
			var game *model.Game
			game, err = h.seller.Get(r.Context(), scope, id)
			if err == nil {
				form = templates.SellerForm{GameID: game.ID, Draft: seller.DraftFor(game)}
			}
		}
		if err != nil {
			logFailure(h.logger, r, "failed to load listing", err)
			fail(w, r, model.ErrGameNotFound, "/seller")
			return
		}
	}
	h.renderPage(w, r, http.StatusOK, form)
}

func (h *SellerHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, form templates.SellerForm) {
	ctx := r.Context()
	games, err := h.seller.List(ctx, middleware.GetScope(ctx), queryInt(r, "page", 1))
	if err != nil {
		logFailure(h.logger, r, "failed to load listings", err)
		h.pages.errorPage(w, r, http.StatusBadGateway, flashFor(err).Message)
		return
	}
	data := templates.SellerData{
		PageData: h.pages.PageData(r, "Seller console"),
		Games:    games,
		Form:     form,
		Genres:   h.genres.Catalog(ctx),
	}
	render(w, r, status, templates.Seller(data))
}

// Create submits a new listing
func (h *SellerHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, err := parseDraft(r)
	if err != nil {
		h.rejected(w, r, templates.SellerForm{Draft: draft}, err)
		return
	}
	game, err := h.seller.Create(r.Context(), middleware.GetScope(r.Context()), draft)
	if err != nil {
		h.rejected(w, r, templates.SellerForm{Draft: draft}, err)
		return
	}
	middleware.SetFlash(w, templates.FlashSuccess, "Listed "+game.Title)
	http.Redirect(w, r, "/seller", http.StatusSeeOther)
}

// Update saves changes to a listing
func (h *SellerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, model.ErrGameNotFound, "/seller")
		return
	}
	draft, err := parseDraft(r)
	if err != nil {
		h.rejected(w, r, templates.SellerForm{GameID: id, Draft: draft}, err)
		return
	}
	game, err := h.seller.Update(r.Context(), middleware.GetScope(r.Context()), id, draft)
	if err != nil {
		h.rejected(w, r, templates.SellerForm{GameID: id, Draft: draft}, err)
		return
	}
	middleware.SetFlash(w, templates.FlashSuccess, "Saved "+game.Title)
	http.Redirect(w, r, "/seller", http.StatusSeeOther)
}

// Delete removes a listing
func (h *SellerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, model.ErrGameNotFound, "/seller")
		return
	}
	if err := h.seller.Delete(r.Context(), middleware.GetScope(r.Context()), id); err != nil {
		logFailure(h.logger, r, "failed to delete listing", err)
		fail(w, r, err, "/seller")
		return
	}
	middleware.SetFlash(w, templates.FlashSuccess, "Listing deleted")
	middleware.Redirect(w, r, "/seller")
}

// AddKeys uploads a key file for a listing
func (h *SellerHandler) AddKeys(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, model.ErrGameNotFound, "/seller")
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		fail(w, r, model.ErrKeysRequired, "/seller")
		return
	}
	keys, err := formFile(r, "Keys")
	if err != nil || keys == nil {
		fail(w, r, model.ErrKeysRequired, "/seller")
		return
	}
	if err := h.seller.AddKeys(r.Context(), middleware.GetScope(r.Context()), id, *keys); err != nil {
		logFailure(h.logger, r, "failed to upload keys", err)
		fail(w, r, err, "/seller")
		return
	}
	middleware.SetFlash(w, templates.FlashSuccess, "Keys uploaded")
	http.Redirect(w, r, "/seller", http.StatusSeeOther)
}

// rejected re-renders the form with the failure. Validation errors keep the
// user's input; backend failures also get a toast.
func (h *SellerHandler) rejected(w http.ResponseWriter, r *http.Request, form templates.SellerForm, err error) {
	logFailure(h.logger, r, "listing rejected", err)
	form.Error = flashFor(err).Message
	status := http.StatusUnprocessableEntity
	if !isValidation(err) {
		status = http.StatusBadGateway
	}
	h.renderPage(w, r, status, form)
}

// parseDraft reads the multipart listing form
func parseDraft(r *http.Request) (model.GameDraft, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return model.GameDraft{}, fmt.Errorf("unreadable listing form: %w", err)
	}

	d := model.GameDraft{
		Title:          strings.TrimSpace(r.FormValue("Title")),
		Description:    strings.TrimSpace(r.FormValue("Description")),
		DeveloperTitle: strings.TrimSpace(r.FormValue("DeveloperTitle")),
		PublisherTitle: strings.TrimSpace(r.FormValue("PublisherTitle")),
		GenreIDs:       r.Form["Genres"],
	}
	if raw := strings.TrimSpace(r.FormValue("Price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || !model.ValidPrice(price) {
			return d, model.ErrInvalidPrice
		}
		d.Price = price
	}

	var err error
	if d.Keys, err = formFile(r, "Keys"); err != nil {
		return d, err
	}
	if d.Image, err = formFile(r, "Image"); err != nil {
		return d, err
	}
	return d, nil
}

// formFile reads an optional upload; an absent or empty file is nil
func formFile(r *http.Request, field string) (*model.Upload, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, nil
	}
	return &model.Upload{Filename: header.Filename, Content: content}, nil
}

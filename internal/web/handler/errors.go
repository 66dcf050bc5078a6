package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/mcoot/keyshop/internal/gateway"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// validationErrors are rejected locally before any backend request
var validationErrors = []error{
	model.ErrCredentialsRequired,
	model.ErrInvalidPriceRange,
	model.ErrInvalidPrice,
	model.ErrEmptyCart,
	model.ErrCartItemMissing,
	model.ErrTitleTooShort,
	model.ErrPriceRequired,
	model.ErrGenreRequired,
	model.ErrKeysRequired,
	model.ErrUnknownGenre,
}

// isValidation reports whether err was raised by local validation
func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// flashFor maps an error to what the user sees. Validation failures block until
// dismissed; backend failures are toasts.
func flashFor(err error) *templates.FlashMessage {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return &templates.FlashMessage{Type: templates.FlashError, Message: sentence(target.Error())}
		}
	}

	switch {
	case errors.Is(err, model.ErrRoleRequired):
		return &templates.FlashMessage{Type: templates.FlashError, Message: "That action is not available for your account"}
	case errors.Is(err, gateway.ErrTransport):
		return &templates.FlashMessage{Type: templates.FlashToast, Message: "Could not reach the store. Please try again."}
	case gateway.IsUnauthorized(err):
		return &templates.FlashMessage{Type: templates.FlashToast, Message: "Your session has expired. Please log in again."}
	case gateway.IsStatus(err, http.StatusNotFound) || errors.Is(err, model.ErrGameNotFound):
		return &templates.FlashMessage{Type: templates.FlashToast, Message: "That game is no longer available"}
	}

	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &templates.FlashMessage{Type: templates.FlashToast, Message: sentence(apiErr.Message)}
	}
	return &templates.FlashMessage{Type: templates.FlashToast, Message: "Something went wrong. Please try again."}
}

// sentence capitalizes the first letter of an error text
func sentence(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return strings.TrimSpace(string(r))
}

// logFailure logs backend failures; validation errors are the user's to fix
func logFailure(logger *slog.Logger, r *http.Request, msg string, err error) {
	if isValidation(err) || errors.Is(err, model.ErrRoleRequired) {
		return
	}
	logger.Error(msg,
		slog.String("path", r.URL.Path),
		slog.String("scope", string(middleware.GetScope(r.Context()))),
		slog.Any("error", err),
	)
}

// fail reports err to the user. Fragment requests get the flash swapped in out
// of band; everything else gets a flash cookie and a redirect to target.
func fail(w http.ResponseWriter, r *http.Request, err error, target string) {
	flash := flashFor(err)
	if middleware.IsFragment(r) {
		render(w, r, http.StatusOK, templates.FlashOOB(flash))
		return
	}
	middleware.SetFlash(w, flash.Type, flash.Message)
	middleware.Redirect(w, r, target)
}

// errorPage renders a full error page
func (p *Pages) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := templates.ErrorData{
		PageData: p.PageData(r, http.StatusText(status)),
		Status:   status,
		Message:  message,
	}
	render(w, r, status, templates.Error(data))
}

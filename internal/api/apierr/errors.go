package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/auth"
	"github.com/mcoot/keyshop/internal/services/shop"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidation         = "VALIDATION_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotOwner           = "NOT_OWNER"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	CodeOutOfStock         = "OUT_OF_STOCK"
	CodeEmptyOrder         = "EMPTY_ORDER"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnknownRole        = "UNKNOWN_ROLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Listing errors
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, shop.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotOwner, "This listing belongs to another seller"}}
	case errors.Is(err, model.ErrTitleTooShort),
		errors.Is(err, model.ErrPriceRequired),
		errors.Is(err, model.ErrInvalidPrice),
		errors.Is(err, model.ErrGenreRequired),
		errors.Is(err, shop.ErrNoKeys),
		errors.Is(err, shop.ErrInvalidQuantity):
		return &httpError{http.StatusBadRequest, APIError{CodeValidation, err.Error()}}

	// Cart and order errors
	case errors.Is(err, model.ErrCartItemMissing):
		return &httpError{http.StatusNotFound, APIError{CodeCartItemNotFound, "Item is not in the cart"}}
	case errors.Is(err, shop.ErrOutOfStock):
		return &httpError{http.StatusConflict, APIError{CodeOutOfStock, err.Error()}}
	case errors.Is(err, model.ErrEmptyCart):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyOrder, "Order has no items"}}

	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, auth.ErrEmailExists):
		return &httpError{http.StatusConflict, APIError{CodeEmailExists, "Email is already registered"}}
	case errors.Is(err, model.ErrUnknownRole):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownRole, "Role must be CUSTOMER or SELLER"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error for the wrong role
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Not allowed for this role"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

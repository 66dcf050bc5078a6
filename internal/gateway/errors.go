package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrTransport wraps failures to reach the backend at all
var ErrTransport = errors.New("backend unreachable")

// APIError is a non-2xx backend reply
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnauthorized reports whether the backend rejected the session
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden)
}

// wireError covers the error shapes the backend variants produce:
// {statusCode, message}, {Message}, {title}, and {error: {code, message}}
type wireError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Title      string `json:"title"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(status int, statusText string, body []byte) error {
	apiErr := &APIError{Status: status}

	var w wireError
	if err := json.Unmarshal(body, &w); err == nil {
		switch {
		case w.Message != "":
			apiErr.Message = w.Message
		case w.Error != nil && w.Error.Message != "":
			apiErr.Message = w.Error.Message
		case w.Title != "":
			apiErr.Message = w.Title
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		apiErr.Message = text
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(strings.TrimPrefix(statusText, fmt.Sprint(status)))
	}
	return apiErr
}

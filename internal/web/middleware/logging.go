package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/keyshop/internal/middleware"
)

// Logging logs browser requests. Event streams are logged at debug; every open
// tab holds one.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.LoggingAt(logger, func(r *http.Request, status int) slog.Level {
		if r.URL.Path == "/events" {
			return slog.LevelDebug
		}
		if status == http.StatusTooManyRequests {
			return slog.LevelWarn
		}
		return middleware.DefaultLevel(r, status)
	})
}

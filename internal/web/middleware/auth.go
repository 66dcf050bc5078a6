package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/web/templates"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
)

// SessionSource reads the scope's session
type SessionSource interface {
	RestoreSession(ctx context.Context, scope model.ScopeID) (model.Session, bool)
	Current(ctx context.Context, scope model.ScopeID) model.Session
}

// GetSession retrieves the session from the request context.
// Returns a guest session outside the Session middleware.
func GetSession(ctx context.Context) model.Session {
	s, _ := ctx.Value(sessionContextKey).(model.Session)
	return s
}

// IsFragment reports whether htmx asked for a fragment rather than a page.
// Boosted links and forms want whole pages.
func IsFragment(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-Boosted") != "true"
}

// IsPageLoad reports whether r loads a whole page. The event stream is opened
// by the page itself and does not count.
func IsPageLoad(r *http.Request) bool {
	return r.Method == http.MethodGet && !IsFragment(r) && r.URL.Path != "/events"
}

// Session returns middleware that loads the scope's session. Page loads restore
// it against the backend; fragment requests trust what was stored on page load.
// Requires the Scope middleware.
func Session(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := GetScope(r.Context())

			var s model.Session
			if IsPageLoad(r) {
				s, _ = src.RestoreSession(r.Context(), scope)
			} else {
				s = src.Current(r.Context(), scope)
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that admits only sessions with the role.
// Guests go to the login page; other roles go home with an error.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r.Context())
			if s.Is(role) {
				next.ServeHTTP(w, r)
				return
			}

			target := "/"
			if s.IsGuest() {
				SetFlash(w, templates.FlashInfo, "Please log in to continue")
				next := r.URL.Path
				if r.Method != http.MethodGet {
					next = "/"
				}
				target = "/login?next=" + url.QueryEscape(next)
			} else {
				SetFlash(w, templates.FlashError, "That page is not available for your account")
			}
			Redirect(w, r, target)
		})
	}
}

// Redirect sends the browser to target. htmx requests get HX-Redirect so the
// whole page navigates instead of swapping a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsFragment(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

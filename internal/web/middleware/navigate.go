package middleware

import (
	"net/http"

	"github.com/mcoot/keyshop/internal/services/menu"
)

// CloseMenuOnNavigate closes the scope's navigation menu whenever a full page
// is loaded. Requires the Scope middleware.
func CloseMenuOnNavigate(menus *menu.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPageLoad(r) {
				menus.For(GetScope(r.Context())).Close(menu.ReasonNavigate)
			}
			next.ServeHTTP(w, r)
		})
	}
}

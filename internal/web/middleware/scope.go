package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/model"
)

const (
	// ScopeCookieName holds the signed id of the browser's storage partition
	ScopeCookieName = "client"

	scopeContextKey contextKey = "scope"
	scopeIssuer                = "keyshop"
	scopeLifetime              = 365 * 24 * time.Hour
)

var errInvalidScope = errors.New("invalid scope token")

// ScopeSigner issues and verifies scope cookies
type ScopeSigner struct {
	secret []byte
	clock  clock.Clock
}

// NewScopeSigner creates a signer using an HMAC secret
func NewScopeSigner(secret string, clk clock.Clock) *ScopeSigner {
	return &ScopeSigner{secret: []byte(secret), clock: clk}
}

// Sign returns a token naming the scope
func (s *ScopeSigner) Sign(scope model.ScopeID) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(scope),
		Issuer:    scopeIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(scopeLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a token and returns its scope
func (s *ScopeSigner) Parse(token string) (model.ScopeID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(scopeIssuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errInvalidScope
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errInvalidScope
	}
	return model.ScopeID(claims.Subject), nil
}

// GetScope returns the request's scope, or "" outside the Scope middleware
func GetScope(ctx context.Context) model.ScopeID {
	scope, _ := ctx.Value(scopeContextKey).(model.ScopeID)
	return scope
}

// WithScope returns ctx carrying the scope
func WithScope(ctx context.Context, scope model.ScopeID) context.Context {
	return context.WithValue(ctx, scopeContextKey, scope)
}

// Scope returns middleware that identifies the browser. A missing, forged or
// expired cookie gets a fresh scope, which starts out as a guest.
func Scope(signer *ScopeSigner, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var scope model.ScopeID
			if cookie, err := r.Cookie(ScopeCookieName); err == nil && cookie.Value != "" {
				scope, err = signer.Parse(cookie.Value)
				if err != nil {
					logger.Debug("rejected scope cookie", slog.String("error", err.Error()))
				}
			}

			if scope == "" {
				scope = model.ScopeID(uuid.NewString())
				token, err := signer.Sign(scope)
				if err != nil {
					logger.Error("failed to sign scope", slog.String("error", err.Error()))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     ScopeCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(scopeLifetime.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/keyshop/internal/api/middleware"
	"github.com/mcoot/keyshop/internal/api/request"
	"github.com/mcoot/keyshop/internal/api/response"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/auth"
)

// AuthHandler handles account and session endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		WriteError(w, NewInvalidRequestError("Email is required"))
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		WriteError(w, NewInvalidRequestError("Username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("Password is required"))
		return
	}

	session, err := h.authService.Register(r.Context(), req.Email, req.Username, req.Password, model.ParseRole(req.UserRole))
	if err != nil {
		WriteError(w, err)
		return
	}

	setSessionCookie(w, session)
	response.JSON(w, http.StatusCreated, response.UserFromModel(session.Account.User()))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if strings.TrimSpace(req.Identifier()) == "" {
		WriteError(w, NewInvalidRequestError("Username or Email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("Password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Identifier(), req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	setSessionCookie(w, session)
	response.JSON(w, http.StatusOK, response.UserFromModel(session.Account.User()))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.authService.InvalidateSession(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	response.NoContent(w)
}

// Check handles GET /api/auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	response.JSON(w, http.StatusOK, response.UserFromModel(account.User()))
}

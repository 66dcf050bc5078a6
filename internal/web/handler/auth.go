package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/mcoot/keyshop/internal/gateway"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/session"
	"github.com/mcoot/keyshop/internal/web/middleware"
	"github.com/mcoot/keyshop/internal/web/templates"
)

// AuthHandler handles authentication pages and actions
type AuthHandler struct {
	sessions *session.Manager
	pages    *Pages
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions *session.Manager, pages *Pages, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		pages:    pages,
		logger:   logger.With(slog.String("component", "auth-handler")),
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if !middleware.GetSession(r.Context()).IsGuest() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, templates.AuthForm{Next: r.URL.Query().Get("next")})
}

// RegisterPage renders the registration page
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if !middleware.GetSession(r.Context()).IsGuest() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, http.StatusOK, templates.AuthForm{FieldErrors: map[string]string{}})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, templates.AuthForm{Error: "Invalid form data"})
		return
	}

	form := templates.AuthForm{
		Identifier: strings.TrimSpace(r.FormValue("identifier")),
		Role:       model.ParseRole(r.FormValue("role")),
		Next:       r.FormValue("next"),
	}
	scope := middleware.GetScope(r.Context())

	user, err := h.sessions.Login(r.Context(), scope, form.Identifier, r.FormValue("password"), form.Role)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCredentialsRequired):
			form.Error = "Enter your username or email and password"
		case errors.Is(err, gateway.ErrTransport):
			h.logger.Error("login failed", slog.Any("error", err))
			form.Error = "Could not reach the store. Please try again."
		default:
			form.Error = "Invalid username or password"
		}
		h.renderLogin(w, r, http.StatusUnauthorized, form)
		return
	}

	middleware.SetFlash(w, templates.FlashSuccess, "Welcome back, "+user.Username+"!")
	http.Redirect(w, r, localPath(form.Next, homeFor(user.Role)), http.StatusSeeOther)
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, http.StatusBadRequest, templates.AuthForm{Error: "Invalid form data"})
		return
	}

	form := templates.AuthForm{
		Email:       strings.TrimSpace(r.FormValue("email")),
		Username:    strings.TrimSpace(r.FormValue("username")),
		Role:        model.ParseRole(r.FormValue("role")),
		FieldErrors: make(map[string]string),
	}
	password := r.FormValue("password")

	if _, err := mail.ParseAddress(form.Email); err != nil {
		form.FieldErrors["email"] = "Enter a valid email address"
	}
	switch {
	case form.Username == "":
		form.FieldErrors["username"] = "Username is required"
	case len(form.Username) < 3:
		form.FieldErrors["username"] = "Username must be at least 3 characters"
	case len(form.Username) > 20:
		form.FieldErrors["username"] = "Username must be at most 20 characters"
	}
	if len(password) < 8 {
		form.FieldErrors["password"] = "Password must be at least 8 characters"
	}
	if password != r.FormValue("password_confirm") {
		form.FieldErrors["password_confirm"] = "Passwords do not match"
	}
	if !form.Role.Valid() {
		form.Error = "Choose an account type"
	}
	if len(form.FieldErrors) > 0 || form.Error != "" {
		h.renderRegister(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	user, err := h.sessions.Register(r.Context(), middleware.GetScope(r.Context()), form.Email, form.Username, password, form.Role)
	if err != nil {
		var apiErr *gateway.APIError
		switch {
		case gateway.IsStatus(err, http.StatusConflict) && errors.As(err, &apiErr):
			field := "username"
			if strings.Contains(strings.ToLower(apiErr.Message), "email") {
				field = "email"
			}
			form.FieldErrors[field] = apiErr.Message
		case errors.As(err, &apiErr):
			form.Error = "Registration failed: " + apiErr.Message
		default:
			h.logger.Error("registration failed", slog.Any("error", err))
			form.Error = "Could not reach the store. Please try again."
		}
		h.renderRegister(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	middleware.SetFlash(w, templates.FlashSuccess, "Account created! Welcome, "+user.Username+"!")
	http.Redirect(w, r, homeFor(user.Role), http.StatusSeeOther)
}

// Logout ends the session. The page always reloads as a guest.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context(), middleware.GetScope(r.Context()))
	middleware.SetFlash(w, templates.FlashInfo, "You have been logged out")
	middleware.Redirect(w, r, "/")
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form templates.AuthForm) {
	data := templates.AuthData{PageData: h.pages.PageData(r, "Log in"), Form: form}
	render(w, r, status, templates.Login(data))
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, form templates.AuthForm) {
	data := templates.AuthData{PageData: h.pages.PageData(r, "Create account"), Form: form}
	render(w, r, status, templates.Register(data))
}

// homeFor is where a role lands after logging in
func homeFor(role model.Role) string {
	if role == model.RoleSeller {
		return "/seller"
	}
	return "/"
}

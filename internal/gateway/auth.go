package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/keyshop/internal/model"
)

// Credentials is the login and register body
type Credentials struct {
	Email    string     `json:"Email,omitempty"`
	Username string     `json:"Username,omitempty"`
	Password string     `json:"Password"`
	UserRole model.Role `json:"UserRole,omitempty"`
}

// LoginCredentials routes an identifier to Email or Username
func LoginCredentials(identifier, password string, role model.Role) Credentials {
	c := Credentials{Password: password, UserRole: role}
	if strings.Contains(identifier, "@") {
		c.Email = identifier
	} else {
		c.Username = identifier
	}
	return c
}

// AuthResult is a successful login or registration
type AuthResult struct {
	User *model.User

	// Cookies are the backend session cookies to replay on later calls
	Cookies []*http.Cookie
}

func (c *Client) authenticate(ctx context.Context, path string, creds Credentials) (*AuthResult, error) {
	var reply wireAuthReply
	resp, err := c.do(ctx, request{method: http.MethodPost, path: path, body: creds}, &reply)
	if err != nil {
		return nil, err
	}

	user := reply.toModel()
	if user == nil {
		user = &model.User{Username: firstNonEmpty(creds.Username, creds.Email), Email: creds.Email}
	}
	if !user.Role.Valid() {
		user.Role = creds.UserRole
	}
	return &AuthResult{User: user, Cookies: resp.cookies}, nil
}

// Login calls POST /auth/login
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

// Register calls POST /auth/register
func (c *Client) Register(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

// Logout calls POST /auth/logout
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.send(ctx, request{method: http.MethodPost, path: "/auth/logout"})
	return err
}

// Check calls GET /auth/check and returns the session's user
func (c *Client) Check(ctx context.Context) (*model.User, error) {
	var reply wireAuthReply
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/check"}, &reply); err != nil {
		return nil, err
	}
	user := reply.toModel()
	if user == nil {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "no user in session"}
	}
	return user, nil
}

// Package auth manages accounts and cookie sessions for the development backend.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/keyshop/internal/dependencies/clock"
	"github.com/mcoot/keyshop/internal/model"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already registered")
)

// Account is a registered user
type Account struct {
	Username     string
	Email        string
	Role         model.Role
	PasswordHash string
	CreatedAt    time.Time
}

// User returns the public view of the account
func (a *Account) User() model.User {
	return model.User{Username: a.Username, Email: a.Email, Role: a.Role}
}

// Session represents an authenticated session
type Session struct {
	Token     string
	Account   Account
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles accounts and session management
type Service struct {
	clock clock.Clock

	mu       sync.RWMutex
	accounts map[string]*Account
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth service
func New(clock clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		clock:           clock,
		accounts:        make(map[string]*Account),
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

func accountKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register creates an account and a session for it
func (s *Service) Register(ctx context.Context, email, username, password string, role model.Role) (*Session, error) {
	if !role.Valid() {
		return nil, model.ErrUnknownRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, ok := s.accounts[accountKey(username)]; ok {
		s.mu.Unlock()
		return nil, ErrUsernameExists
	}
	if s.findByEmailLocked(email) != nil {
		s.mu.Unlock()
		return nil, ErrEmailExists
	}
	account := &Account{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	s.accounts[accountKey(username)] = account
	s.mu.Unlock()

	return s.createSession(account), nil
}

// Login authenticates by username or email and creates a session
func (s *Service) Login(ctx context.Context, identifier, password string) (*Session, error) {
	s.mu.RLock()
	account, ok := s.accounts[accountKey(identifier)]
	if !ok {
		account = s.findByEmailLocked(identifier)
	}
	s.mu.RUnlock()

	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(account), nil
}

func (s *Service) findByEmailLocked(email string) *Account {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a
		}
	}
	return nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Service) createSession(account *Account) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     generateToken(),
		Account:   *account,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

func generateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

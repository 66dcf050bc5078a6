package model

import "strings"

// ScopeID identifies one client's storage partition (a browser or a CLI state file)
type ScopeID string

// User is the backend's view of the logged-in account
type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}

// Session is the client-side record of who is logged in.
// A nil User or an invalid Role means guest.
type Session struct {
	User *User
	Role Role
}

// GuestSession returns the empty session
func GuestSession() Session {
	return Session{}
}

// IsGuest reports whether nobody is logged in
func (s Session) IsGuest() bool {
	return s.User == nil || !s.Role.Valid()
}

// Is reports whether the session belongs to a user with the given role
func (s Session) Is(role Role) bool {
	return !s.IsGuest() && s.Role == role
}

// DisplayName returns the username shortened for the header label
func (s Session) DisplayName() string {
	if s.IsGuest() {
		return ""
	}
	name := []rune(s.User.Username)
	if len(name) > 10 {
		return string(name[:10]) + "..."
	}
	return s.User.Username
}

// Initials returns up to two upper-case initials of the username
func (s Session) Initials() string {
	if s.IsGuest() || s.User.Username == "" {
		return "?"
	}
	fields := strings.FieldsFunc(s.User.Username, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '.'
	})
	var out []rune
	for _, f := range fields {
		out = append(out, []rune(f)[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		out = []rune(s.User.Username)[:1]
	}
	return strings.ToUpper(string(out))
}

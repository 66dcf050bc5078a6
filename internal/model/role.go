package model

import "strings"

// Role is the account role assigned by the backend
type Role string

const (
	RoleNone     Role = ""
	RoleCustomer Role = "CUSTOMER"
	RoleSeller   Role = "SELLER"
)

// ParseRole normalizes a backend role string. Unknown values parse to RoleNone.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CUSTOMER", "BUYER", "USER":
		return RoleCustomer
	case "SELLER":
		return RoleSeller
	default:
		return RoleNone
	}
}

// Valid reports whether the role is one the storefront understands
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleSeller
}

func (r Role) String() string {
	if r == RoleNone {
		return "guest"
	}
	return string(r)
}

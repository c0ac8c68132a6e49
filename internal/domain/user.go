package domain

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is keyed by email. PasswordHash holds a bcrypt digest, never the raw password.
type User struct {
	Email        string    `json:"email" validate:"required,email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the identity attached to a request. The zero value means anonymous.
type Principal struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

func (p Principal) IsAnonymous() bool { return p.Email == "" }

func (p Principal) Is(role UserRole) bool {
	return !p.IsAnonymous() && p.Role == role
}

func PrincipalOf(u *User) Principal {
	return Principal{Name: u.Name, Email: u.Email, Role: u.Role}
}

// NormalizeEmail is the canonical form used for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

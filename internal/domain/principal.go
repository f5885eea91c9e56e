package domain

import (
	"strings"
	"time"
)

// Principal is an authenticated identity with a role. Rows are never
// hard-deleted by the auth flow except as registration compensation.
type Principal struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// NormalizeEmail lower-cases and trims an address so lookups match case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

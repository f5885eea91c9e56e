package events

import (
	"time"

	"github.com/smart-faculty/auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPrincipalRegistered EventType = "principal_registered"
	EventPasswordReset       EventType = "password_reset"
	EventLoggedOut           EventType = "logged_out"
)

// Event represents a credential lifecycle event emitted by the gateway.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	PrincipalID string      `json:"principal_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// PrincipalRegisteredPayload payload.
type PrincipalRegisteredPayload struct {
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
}

// PasswordResetPayload payload.
type PasswordResetPayload struct {
	Email string `json:"email"`
}

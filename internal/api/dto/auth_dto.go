package dto

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/smart-faculty/auth-service/internal/auth"
	"github.com/smart-faculty/auth-service/internal/domain"
)

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

// RegisterRequest payload for new principals.
type RegisterRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// Validate returns field errors keyed by field name.
func (r RegisterRequest) Validate() map[string]any {
	errs := map[string]any{}
	validateEmail(errs, r.Email)
	if strings.TrimSpace(r.FullName) == "" {
		errs["full_name"] = "required"
	}
	if _, err := domain.ParseRole(r.Role); err != nil {
		errs["role"] = "must be one of student, professor, admin"
	}
	validatePassword(errs, "password", r.Password)
	return errs
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate returns field errors keyed by field name.
func (r LoginRequest) Validate() map[string]any {
	errs := map[string]any{}
	validateEmail(errs, r.Email)
	if r.Password == "" {
		errs["password"] = "required"
	}
	return errs
}

// RefreshRequest is the body fallback when the cookie is absent.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordRequest starts the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate returns field errors keyed by field name.
func (r ForgotPasswordRequest) Validate() map[string]any {
	errs := map[string]any{}
	validateEmail(errs, r.Email)
	return errs
}

// VerifyOTPRequest exchanges an emailed code for a reset token.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// Validate returns field errors keyed by field name.
func (r VerifyOTPRequest) Validate() map[string]any {
	errs := map[string]any{}
	validateEmail(errs, r.Email)
	if !otpPattern.MatchString(r.OTP) {
		errs["otp"] = "must be 6 digits"
	}
	return errs
}

// ResetPasswordRequest carries the new password; the token travels in X-Reset-Token.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Validate returns field errors keyed by field name.
func (r ResetPasswordRequest) Validate() map[string]any {
	errs := map[string]any{}
	validatePassword(errs, "password", r.Password)
	return errs
}

// TokenResponse standard response for login and refresh.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewTokenResponse wraps an access token.
func NewTokenResponse(accessToken string) TokenResponse {
	return TokenResponse{AccessToken: accessToken, TokenType: "bearer"}
}

// ResetTokenResponse is returned by verify-otp.
type ResetTokenResponse struct {
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// MessageResponse carries a human-readable status.
type MessageResponse struct {
	Message string `json:"message"`
}

// PrincipalResponse is the public view of a principal.
type PrincipalResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewPrincipalResponse maps the domain model, dropping the password hash.
func NewPrincipalResponse(p *domain.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		Role:      p.Role,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}

func validateEmail(errs map[string]any, email string) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !dottedDomain(email) {
		errs["email"] = "must be a valid email address"
	}
}

func validatePassword(errs map[string]any, field, password string) {
	switch {
	case utf8.RuneCountInString(password) < auth.MinPasswordLength:
		errs[field] = "must be at least 8 characters"
	case len(password) > auth.MaxPasswordLength:
		errs[field] = "must be at most 72 bytes"
	}
}

// dottedDomain requires a dot inside the domain, so "n@localhost" is rejected.
func dottedDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	host := email[at+1:]
	dot := strings.Index(host, ".")
	return dot > 0 && dot < len(host)-1 && !strings.HasSuffix(host, ".")
}

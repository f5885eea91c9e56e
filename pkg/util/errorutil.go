package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Machine-stable error codes rendered in the response body.
const (
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeTokenBlacklisted      = "TOKEN_BLACKLISTED"
	CodeInactivePrincipal     = "INACTIVE_PRINCIPAL"
	CodeInvalidOTP            = "INVALID_OTP"
	CodeDuplicateEmail        = "DUPLICATE_EMAIL"
	CodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
	CodeNotFound              = "NOT_FOUND"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeInternal              = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for the auth taxonomy. Match with errors.Is.
var (
	ErrInvalidCredentials    = NewDomainError(CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized, nil)
	ErrInvalidToken          = NewDomainError(CodeInvalidToken, "invalid token", http.StatusUnauthorized, nil)
	ErrTokenBlacklisted      = NewDomainError(CodeTokenBlacklisted, "token blacklisted", http.StatusUnauthorized, nil)
	ErrInactivePrincipal     = NewDomainError(CodeInactivePrincipal, "inactive user", http.StatusForbidden, nil)
	ErrInvalidOTP            = NewDomainError(CodeInvalidOTP, "invalid otp", http.StatusBadRequest, nil)
	ErrDuplicateEmail        = NewDomainError(CodeDuplicateEmail, "email already exists", http.StatusBadRequest, nil)
	ErrDependencyUnavailable = NewDomainError(CodeDependencyUnavailable, "dependency unavailable", http.StatusInternalServerError, nil)
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// Wrap returns a copy of base carrying cause for logging.
func Wrap(base *DomainError, cause error) error {
	clone := *base
	clone.Err = cause
	return &clone
}

// WithMessage returns a copy of base with a more specific message.
func WithMessage(base *DomainError, message string) error {
	clone := *base
	clone.Message = message
	return &clone
}

// DependencyUnavailable tags a failed collaborator or cache call.
func DependencyUnavailable(dependency string, cause error) error {
	return &DomainError{
		Code:       CodeDependencyUnavailable,
		Message:    fmt.Sprintf("%s unavailable", dependency),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"dependency": dependency},
		Err:        cause,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{
			Code:       codeForStatus(fiberErr.Code),
			Message:    fiberErr.Message,
			HTTPStatus: fiberErr.Code,
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidationFailed
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	}
	if status >= http.StatusInternalServerError {
		return CodeInternal
	}
	return http.StatusText(status)
}

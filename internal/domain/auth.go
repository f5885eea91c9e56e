package domain

// TokenType distinguishes token kinds that share one signing secret.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
	TokenTypeReset   TokenType = "reset"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refresh_token"

// ResetTokenHeader carries the reset token on the password-reset call.
const ResetTokenHeader = "X-Reset-Token"

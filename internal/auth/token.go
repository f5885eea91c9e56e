package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/smart-faculty/auth-service/internal/domain"
)

var (
	// ErrInvalidSignature covers tampered, malformed or wrongly signed tokens.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned once the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrWrongTokenType is returned when a token of another kind is presented.
	ErrWrongTokenType = errors.New("unexpected token type")
)

// TokenManager handles issuing and validating JWT tokens. Every token kind
// is signed with the same HS256 secret; kinds differ only by the type claim.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, opts ...Option) *TokenManager {
	tm := &TokenManager{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes JWT payload.
type Claims struct {
	Email string           `json:"email,omitempty"`
	Role  domain.Role      `json:"role,omitempty"`
	Type  domain.TokenType `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the principal id carried in sub.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// ExpiresIn reports the remaining lifetime relative to now.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// Issue stamps iat and exp (now + ttl) onto claims and signs them.
func (tm *TokenManager) Issue(claims Claims, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	now := tm.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// Verify validates signature and expiry and returns claims.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

// VerifyType verifies the token and requires the given kind.
func (tm *TokenManager) VerifyType(tokenStr string, want domain.TokenType) (*Claims, error) {
	claims, err := tm.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// Now exposes the manager's clock so callers compute lifetimes consistently.
func (tm *TokenManager) Now() time.Time {
	return tm.now()
}

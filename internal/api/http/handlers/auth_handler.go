package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smart-faculty/auth-service/internal/api/dto"
	"github.com/smart-faculty/auth-service/internal/auth"
	"github.com/smart-faculty/auth-service/internal/domain"
	"github.com/smart-faculty/auth-service/internal/service"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

// CookieConfig controls the refresh cookie attributes.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// AuthHandler exposes registration, login, refresh and logout.
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := req.Validate(); len(errs) > 0 {
		return apperrors.NewValidationError("invalid registration", errs)
	}

	role, _ := domain.ParseRole(req.Role)
	principal, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		FullName: strings.TrimSpace(req.FullName),
		Role:     role,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPrincipalResponse(principal))
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := req.Validate(); len(errs) > 0 {
		return apperrors.NewValidationError("invalid login", errs)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     domain.RefreshCookieName,
		Value:    result.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge / time.Second),
		Expires:  result.RefreshExpiresAt,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.NewTokenResponse(result.AccessToken))
}

// Refresh handles POST /refresh. The cookie wins over the body.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(domain.RefreshCookieName)
	if token == "" && len(c.Body()) > 0 {
		// An unparseable body carries no token and falls through to 401.
		var req dto.RefreshRequest
		if err := c.BodyParser(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidToken, "missing refresh token")
	}

	result, err := h.auth.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTokenResponse(result.AccessToken))
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, err := auth.BearerToken(c)
	if err != nil {
		return apperrors.NewValidationError("missing token", nil)
	}
	if err := h.auth.Logout(c.UserContext(), token); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     domain.RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.MessageResponse{Message: "Logged out"})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.NewPrincipalResponse(principal.Account))
}


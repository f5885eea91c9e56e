package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smart-faculty/auth-service/internal/domain"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

// Require ensures the authenticated principal's role grants every capability.
// It must run after AuthMiddleware.Handle.
func Require(capabilities ...domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Account == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, capability := range capabilities {
			if !principal.Account.Role.Can(capability) {
				return apperrors.NewForbidden("forbidden")
			}
		}
		return c.Next()
	}
}

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/smart-faculty/auth-service/internal/api/dto"
	"github.com/smart-faculty/auth-service/internal/domain"
	"github.com/smart-faculty/auth-service/internal/repository"
	"github.com/smart-faculty/auth-service/internal/service"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// UsersHandler exposes the principal directory.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	filter := repository.PrincipalFilter{Limit: defaultListLimit}
	errs := map[string]any{}

	if raw := c.Query("role"); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			errs["role"] = "must be one of student, professor, admin"
		} else {
			filter.Role = &role
		}
	}
	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			errs["skip"] = "must be a non-negative integer"
		} else {
			filter.Offset = skip
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			errs["limit"] = "must be between 1 and 100"
		} else {
			filter.Limit = limit
		}
	}
	if len(errs) > 0 {
		return apperrors.NewValidationError("invalid query", errs)
	}

	principals, err := h.auth.ListPrincipals(c.UserContext(), filter)
	if err != nil {
		return err
	}
	out := make([]dto.PrincipalResponse, 0, len(principals))
	for i := range principals {
		out = append(out, dto.NewPrincipalResponse(&principals[i]))
	}
	return c.JSON(out)
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	principal, err := h.auth.GetPrincipal(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPrincipalResponse(principal))
}

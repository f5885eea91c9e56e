package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smart-faculty/auth-service/internal/api/dto"
	"github.com/smart-faculty/auth-service/internal/domain"
	"github.com/smart-faculty/auth-service/internal/service"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

const forgotPasswordMessage = "If email exists, OTP was sent"

// PasswordHandler exposes the OTP based reset flow.
type PasswordHandler struct {
	auth *service.AuthService
}

// NewPasswordHandler constructs handler.
func NewPasswordHandler(authService *service.AuthService) *PasswordHandler {
	return &PasswordHandler{auth: authService}
}

// Forgot handles POST /forgot-password.
func (h *PasswordHandler) Forgot(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := req.Validate(); len(errs) > 0 {
		return apperrors.NewValidationError("invalid email", errs)
	}
	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: forgotPasswordMessage})
}

// VerifyOTP handles POST /verify-otp.
func (h *PasswordHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := req.Validate(); len(errs) > 0 {
		return apperrors.NewValidationError("invalid otp request", errs)
	}

	token, exp, err := h.auth.VerifyOTP(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return err
	}
	return c.JSON(dto.ResetTokenResponse{ResetToken: token, ExpiresAt: exp})
}

// Reset handles POST /reset-password.
func (h *PasswordHandler) Reset(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := req.Validate(); len(errs) > 0 {
		return apperrors.NewValidationError("invalid password", errs)
	}

	if err := h.auth.ResetPassword(c.UserContext(), c.Get(domain.ResetTokenHeader), req.Password); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated"})
}

package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/smart-faculty/auth-service/internal/auth"
	"github.com/smart-faculty/auth-service/internal/domain"
	"github.com/smart-faculty/auth-service/internal/events"
	"github.com/smart-faculty/auth-service/internal/observability"
	"github.com/smart-faculty/auth-service/internal/repository"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

// OTPLength is the number of digits in an emailed code.
const OTPLength = 6

var otpSpan = big.NewInt(900000)

// generateOTP returns a uniformly random code in [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// ForgotPassword emails a one-time code when an active principal owns the
// address. It reports success either way; only cache failures surface.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	principal, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return apperrors.DependencyUnavailable(credentialStore, err)
	}
	if !principal.IsActive {
		return nil
	}

	code, err := generateOTP()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.cache.PutOTP(ctx, email, code, s.cfg.OTPTTL()); err != nil {
		return err
	}
	s.metrics.RecordAuthEvent(observability.EventOTPIssued)

	if err := s.mailer.SendOTPEmail(ctx, email, code); err != nil {
		s.metrics.RecordAuthEvent(observability.EventDispatchFailure)
		s.logger.Warn("otp dispatch failed", zap.String("principal_id", principal.ID), zap.Error(err))
	}
	return nil
}

// VerifyOTP consumes the code and, on match, issues a reset token.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (string, time.Time, error) {
	email = domain.NormalizeEmail(email)

	ok, err := s.cache.ConsumeOTP(ctx, email, code)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok {
		s.metrics.RecordAuthEvent(observability.EventOTPRejected)
		return "", time.Time{}, apperrors.ErrInvalidOTP
	}

	token, exp, err := s.tokenMgr.Issue(auth.Claims{Email: email, Type: domain.TokenTypeReset}, s.cfg.ResetTTL())
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	s.metrics.RecordAuthEvent(observability.EventOTPVerified)
	return token, exp, nil
}

// ResetPassword replaces the password of the principal named by a reset
// token. The token stays usable until it expires.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidToken, "missing reset token")
	}

	claims, err := s.tokenMgr.VerifyType(resetToken, domain.TokenTypeReset)
	if err != nil {
		if errors.Is(err, auth.ErrWrongTokenType) {
			return apperrors.WithMessage(apperrors.ErrInvalidToken, "invalid token type")
		}
		return apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidToken, "reset token has no email")
	}

	principal, err := s.principals.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.DependencyUnavailable(credentialStore, err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.principals.UpdatePassword(ctx, principal.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.DependencyUnavailable(credentialStore, err)
	}

	s.metrics.RecordAuthEvent(observability.EventPasswordReset)
	s.publish(ctx, events.EventPasswordReset, principal.ID, events.PasswordResetPayload{Email: principal.Email})
	return nil
}

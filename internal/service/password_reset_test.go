package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-faculty/auth-service/internal/auth"
	"github.com/smart-faculty/auth-service/internal/domain"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

var sixDigits = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func TestGenerateOTPShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestForgotPasswordUnknownEmailCreatesNothing(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.svc.ForgotPassword(context.Background(), "ghost@x.edu"))
	assert.Empty(t, h.redis.Keys())
	assert.Zero(t, h.mailer.sent)
}

func TestForgotPasswordInactivePrincipalCreatesNothing(t *testing.T) {
	h := newHarness(t)
	principal := h.register(t, "alice@x.edu", domain.RoleStudent, "longpw123")
	h.principals.SetActive(principal.ID, false)

	require.NoError(t, h.svc.ForgotPassword(context.Background(), "alice@x.edu"))
	assert.Empty(t, h.redis.Keys())
}

func TestForgotPasswordStoresCodeWithTTL(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice@x.edu", domain.RoleStudent, "longpw123")

	require.NoError(t, h.svc.ForgotPassword(context.Background(), " Alice@X.edu "))
	code := h.mailer.code("alice@x.edu")
	assert.Regexp(t, sixDigits, code)

	stored, err := h.redis.Get("otp:alice@x.edu")
	require.NoError(t, err)
	assert.Equal(t, code, stored)
	assert.Equal(t, 15*time.Minute, h.redis.TTL("otp:alice@x.edu"))
}

func TestForgotPasswordSwallowsDispatchFailure(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice@x.edu", domain.RoleStudent, "longpw123")
	h.mailer.err = errors.New("notification-service down")

	require.NoError(t, h.svc.ForgotPassword(context.Background(), "alice@x.edu"))
	assert.True(t, h.redis.Exists("otp:alice@x.edu"))
}

func TestPasswordResetScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice@x.edu", domain.RoleStudent, "longpw123")

	require.NoError(t, h.svc.ForgotPassword(ctx, "alice@x.edu"))
	code := h.mailer.code("alice@x.edu")

	resetToken, exp, err := h.svc.VerifyOTP(ctx, "alice@x.edu", code)
	require.NoError(t, err)
	assert.Equal(t, h.clock.Now().Add(10*time.Minute), exp)

	_, _, err = h.svc.VerifyOTP(ctx, "alice@x.edu", code)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP, "codes are single-use")

	require.NoError(t, h.svc.ResetPassword(ctx, resetToken, "brandnewpw"))

	_, err = h.svc.Login(ctx, "alice@x.edu", "brandnewpw")
	require.NoError(t, err)
	_, err = h.svc.Login(ctx, "alice@x.edu", "longpw123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// The reset token is not consumed and works until it expires.
	require.NoError(t, h.svc.ResetPassword(ctx, resetToken, "thirdpassword"))
	h.clock.Advance(10*time.Minute + time.Second)
	assert.ErrorIs(t, h.svc.ResetPassword(ctx, resetToken, "fourthpassword"), apperrors.ErrInvalidToken)
}

func TestVerifyOTPMismatchAllowsRetry(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice@x.edu", domain.RoleStudent, "longpw123")
	require.NoError(t, h.svc.ForgotPassword(context.Background(), "alice@x.edu"))
	code := h.mailer.code("alice@x.edu")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, _, err := h.svc.VerifyOTP(context.Background(), "alice@x.edu", wrong)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)

	_, _, err = h.svc.VerifyOTP(context.Background(), "alice@x.edu", code)
	assert.NoError(t, err)
}

func TestVerifyOTPExpires(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice@x.edu", domain.RoleStudent, "longpw123")
	require.NoError(t, h.svc.ForgotPassword(context.Background(), "alice@x.edu"))
	code := h.mailer.code("alice@x.edu")

	h.redis.FastForward(15*time.Minute + time.Second)
	_, _, err := h.svc.VerifyOTP(context.Background(), "alice@x.edu", code)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestResetPasswordRejectsBadTokens(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice@x.edu", domain.RoleStudent, "longpw123")
	login, err := h.svc.Login(context.Background(), "alice@x.edu", "longpw123")
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), "", "brandnewpw"), apperrors.ErrInvalidToken)
	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), login.AccessToken, "brandnewpw"), apperrors.ErrInvalidToken)

	forged := auth.NewTokenManager("other-secret")
	token, _, err := forged.Issue(auth.Claims{Email: "alice@x.edu", Type: domain.TokenTypeReset}, time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, h.svc.ResetPassword(context.Background(), token, "brandnewpw"), apperrors.ErrInvalidToken)
}

func TestResetPasswordPrincipalVanished(t *testing.T) {
	h := newHarness(t)
	token, _, err := h.svc.TokenManager().Issue(auth.Claims{Email: "gone@x.edu", Type: domain.TokenTypeReset}, time.Minute)
	require.NoError(t, err)

	err = h.svc.ResetPassword(context.Background(), token, "brandnewpw")
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, apperrors.CodeNotFound, de.Code)
}

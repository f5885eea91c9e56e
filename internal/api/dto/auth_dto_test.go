package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	ok := RegisterRequest{Email: "alice@x.edu", FullName: "Alice", Role: "student", Password: "longpw123"}
	assert.Empty(t, ok.Validate())

	bad := RegisterRequest{Email: "Alice <alice@x.edu>", Role: "root", Password: "short"}
	errs := bad.Validate()
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "full_name")
	assert.Contains(t, errs, "role")
	assert.Contains(t, errs, "password")

	multibyte := ok
	multibyte.Password = "ééää"
	assert.Contains(t, multibyte.Validate(), "password", "length counts characters, not bytes")

	accented := ok
	accented.Password = "éééééééé"
	assert.Empty(t, accented.Validate())

	long := ok
	long.Password = strings.Repeat("a", 73)
	assert.Contains(t, long.Validate(), "password")
}

func TestVerifyOTPRequestValidate(t *testing.T) {
	assert.Empty(t, VerifyOTPRequest{Email: "alice@x.edu", OTP: "012345"}.Validate())
	assert.Contains(t, VerifyOTPRequest{Email: "alice@x.edu", OTP: "12345"}.Validate(), "otp")
	assert.Contains(t, VerifyOTPRequest{Email: "alice@x.edu", OTP: "12a456"}.Validate(), "otp")
}

func TestTokenResponse(t *testing.T) {
	assert.Equal(t, TokenResponse{AccessToken: "t", TokenType: "bearer"}, NewTokenResponse("t"))
}

func TestEmailRequiresDottedDomain(t *testing.T) {
	for _, email := range []string{"n@localhost", "n@x.", "n@.edu", "n@"} {
		assert.Contains(t, ForgotPasswordRequest{Email: email}.Validate(), "email", email)
	}
	for _, email := range []string{"alice@x.edu", "bob.smith@mail.campus.example.edu"} {
		assert.Empty(t, ForgotPasswordRequest{Email: email}.Validate(), email)
	}
}

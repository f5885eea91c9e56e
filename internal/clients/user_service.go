package clients

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/smart-faculty/auth-service/internal/domain"
)

// profileExistsDetail is what user-service answers for a duplicate profile.
const profileExistsDetail = "Email already exists"

// ProfilePayload is the body of POST /users/ on user-service.
type ProfilePayload struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// UserServiceClient syncs newly registered principals into user-service.
type UserServiceClient struct {
	caller httpCaller
	logger *zap.Logger
}

// NewUserServiceClient builds the client.
func NewUserServiceClient(baseURL string, timeout time.Duration, logger *zap.Logger) *UserServiceClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserServiceClient{caller: newHTTPCaller(baseURL, timeout), logger: logger}
}

// CreateProfile creates the profile row. An already existing profile counts as synced.
func (c *UserServiceClient) CreateProfile(ctx context.Context, principal *domain.Principal) error {
	payload := ProfilePayload{
		ID:       principal.ID,
		Email:    principal.Email,
		FullName: principal.FullName,
		Role:     string(principal.Role),
	}

	err := c.caller.postJSON(ctx, "/users/", payload)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && apiErr.Detail() == profileExistsDetail {
		c.logger.Info("profile already exists in user-service", zap.String("principal_id", principal.ID))
		return nil
	}
	return err
}

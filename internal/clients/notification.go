package clients

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// NotificationClient dispatches emails through notification-service.
type NotificationClient struct {
	caller  httpCaller
	limiter *rate.Limiter
}

// NotificationOption configures the client.
type NotificationOption func(*NotificationClient)

// WithRateLimit caps outbound dispatches per second with the given burst.
func WithRateLimit(perSecond float64, burst int) NotificationOption {
	return func(c *NotificationClient) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewNotificationClient builds the client.
func NewNotificationClient(baseURL string, timeout time.Duration, opts ...NotificationOption) *NotificationClient {
	c := &NotificationClient{
		caller:  newHTTPCaller(baseURL, timeout),
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type otpEmailRequest struct {
	ToEmail string `json:"to_email"`
	OTP     string `json:"otp"`
}

type welcomeEmailRequest struct {
	ToEmail  string `json:"to_email"`
	FullName string `json:"full_name"`
}

// SendOTPEmail posts to /send-otp-email.
func (c *NotificationClient) SendOTPEmail(ctx context.Context, to, otp string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.caller.postJSON(ctx, "/send-otp-email", otpEmailRequest{ToEmail: to, OTP: otp})
}

// SendWelcomeEmail posts to /send-welcome-email.
func (c *NotificationClient) SendWelcomeEmail(ctx context.Context, to, fullName string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.caller.postJSON(ctx, "/send-welcome-email", welcomeEmailRequest{ToEmail: to, FullName: fullName})
}

func (c *NotificationClient) wait(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.caller.timeout)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", ErrCollaboratorFailed, err)
	}
	return nil
}

package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smart-faculty/auth-service/internal/events"
	"github.com/smart-faculty/auth-service/internal/observability"
)

const welcomeTimeout = 10 * time.Second

// WelcomeSender delivers the post-registration greeting.
type WelcomeSender interface {
	SendWelcomeEmail(ctx context.Context, to, fullName string) error
}

// NotificationService reacts to lifecycle events with best-effort emails.
// Dispatches run off the request path.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     WelcomeSender
	metrics    *observability.Metrics
	logger     *zap.Logger
	inflight   sync.WaitGroup
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender WelcomeSender, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPrincipalRegistered, n.handlePrincipalRegistered)
	n.dispatcher.Subscribe(events.EventPasswordReset, n.handlePasswordReset)
}

// Wait blocks until in-flight dispatches finish.
func (n *NotificationService) Wait() {
	n.inflight.Wait()
}

func (n *NotificationService) handlePrincipalRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PrincipalRegisteredPayload)
	if !ok || n.sender == nil {
		return nil
	}

	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), welcomeTimeout)
		defer cancel()

		if err := n.sender.SendWelcomeEmail(sendCtx, payload.Email, payload.FullName); err != nil {
			n.metrics.RecordAuthEvent(observability.EventDispatchFailure)
			n.logger.Warn("welcome email failed", zap.String("principal_id", event.PrincipalID), zap.Error(err))
			return
		}
		n.logger.Debug("welcome email sent", zap.String("principal_id", event.PrincipalID))
	}()
	return nil
}

func (n *NotificationService) handlePasswordReset(_ context.Context, event events.Event) error {
	n.logger.Info("password reset", zap.String("principal_id", event.PrincipalID), zap.String("event_id", event.ID))
	return nil
}

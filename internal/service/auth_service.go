package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smart-faculty/auth-service/internal/auth"
	"github.com/smart-faculty/auth-service/internal/config"
	"github.com/smart-faculty/auth-service/internal/domain"
	"github.com/smart-faculty/auth-service/internal/events"
	"github.com/smart-faculty/auth-service/internal/observability"
	"github.com/smart-faculty/auth-service/internal/repository"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

const (
	credentialStore   = "credential store"
	userServiceName   = "user-service"
	compensateTimeout = 5 * time.Second
)

// ProfileSyncer creates the profile counterpart of a new principal.
type ProfileSyncer interface {
	CreateProfile(ctx context.Context, principal *domain.Principal) error
}

// OTPSender delivers one-time codes to an email address.
type OTPSender interface {
	SendOTPEmail(ctx context.Context, to, otp string) error
}

// AuthService composes the credential store, token service and revocation
// cache into the login, refresh, logout and password-reset flows.
type AuthService struct {
	principals repository.PrincipalRepository
	cache      repository.RevocationCache
	profiles   ProfileSyncer
	mailer     OTPSender
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	tokenMgr   *auth.TokenManager
	hasher     *auth.Hasher
	cfg        config.AuthConfig
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Principals repository.PrincipalRepository
	Cache      repository.RevocationCache
	Profiles   ProfileSyncer
	Mailer     OTPSender
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// Clock overrides time.Now for token issuance and lifetimes.
	Clock func() time.Time
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Email    string
	FullName string
	Role     domain.Role
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Principal        *domain.Principal
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AccessResult is returned by a successful refresh.
type AccessResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	var opts []auth.Option
	if deps.Clock != nil {
		opts = append(opts, auth.WithClock(deps.Clock))
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}

	return &AuthService{
		principals: deps.Principals,
		cache:      deps.Cache,
		profiles:   deps.Profiles,
		mailer:     deps.Mailer,
		dispatcher: dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, opts...),
		hasher:     hasher,
		cfg:        cfg.Auth,
	}, nil
}

// Register creates a principal and syncs its profile to user-service. When
// the sync fails the row is deleted again so no orphan credential remains.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Principal, error) {
	email := domain.NormalizeEmail(in.Email)
	if !in.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": in.Role})
	}

	if _, err := s.principals.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.DependencyUnavailable(credentialStore, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	principal := &domain.Principal{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     in.FullName,
		Role:         in.Role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.DependencyUnavailable(credentialStore, err)
	}

	if err := s.profiles.CreateProfile(ctx, principal); err != nil {
		s.logger.Warn("profile sync failed; removing principal",
			zap.String("principal_id", principal.ID), zap.Error(err))
		s.compensateRegistration(ctx, principal.ID)
		return nil, apperrors.DependencyUnavailable(userServiceName, err)
	}

	s.metrics.RecordAuthEvent(observability.EventRegistered)
	s.publish(ctx, events.EventPrincipalRegistered, principal.ID, events.PrincipalRegisteredPayload{
		Email:    principal.Email,
		FullName: principal.FullName,
		Role:     principal.Role,
	})
	return principal, nil
}

func (s *AuthService) compensateRegistration(ctx context.Context, principalID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	s.metrics.RecordAuthEvent(observability.EventRegisterUndone)
	if err := s.principals.Delete(ctx, principalID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("compensating delete failed; orphaned principal",
			zap.String("principal_id", principalID), zap.Error(err))
	}
}

// Login verifies credentials and issues an access and a refresh token.
// Unknown email and wrong password are reported identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	principal, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.CompareDummy(password)
			s.metrics.RecordAuthEvent(observability.EventLoginFailed)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.DependencyUnavailable(credentialStore, err)
	}

	if err := s.hasher.Compare(principal.PasswordHash, password); err != nil {
		s.metrics.RecordAuthEvent(observability.EventLoginFailed)
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !principal.IsActive {
		s.metrics.RecordAuthEvent(observability.EventLoginFailed)
		return nil, apperrors.ErrInactivePrincipal
	}

	identity := auth.Claims{Email: principal.Email, Role: principal.Role}
	identity.Subject = principal.ID

	access := identity
	access.Type = domain.TokenTypeAccess
	accessToken, accessExp, err := s.tokenMgr.Issue(access, s.cfg.AccessTTL())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	refresh := identity
	refresh.Type = domain.TokenTypeRefresh
	refreshToken, refreshExp, err := s.tokenMgr.Issue(refresh, s.cfg.RefreshTTL())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuthEvent(observability.EventLoginSucceeded)
	return &LoginResult{
		Principal:        principal,
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh mints a new access token from a refresh token. Identity and role
// come from the refresh claims; the credential store is not consulted.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (*AccessResult, error) {
	if refreshToken == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidToken, "missing refresh token")
	}

	claims, err := s.tokenMgr.VerifyType(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, auth.ErrWrongTokenType) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidToken, "invalid token type")
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}
	if claims.SubjectID() == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidToken, "refresh token has no subject")
	}

	role := claims.Role
	if !role.Valid() {
		role = domain.RoleStudent
	}
	access := auth.Claims{Email: claims.Email, Role: role, Type: domain.TokenTypeAccess}
	access.Subject = claims.SubjectID()

	token, exp, err := s.tokenMgr.Issue(access, s.cfg.AccessTTL())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.metrics.RecordAuthEvent(observability.EventRefresh)
	return &AccessResult{AccessToken: token, ExpiresAt: exp}, nil
}

// Logout blacklists the access token for exactly its remaining lifetime.
// The refresh token is left untouched.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return apperrors.NewValidationError("missing token", nil)
	}

	claims, err := s.tokenMgr.VerifyType(accessToken, domain.TokenTypeAccess)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return nil
		case errors.Is(err, auth.ErrWrongTokenType):
			return apperrors.WithMessage(apperrors.ErrInvalidToken, "invalid token type")
		default:
			return apperrors.Wrap(apperrors.ErrInvalidToken, err)
		}
	}

	if err := s.cache.Blacklist(ctx, accessToken, claims.ExpiresIn(s.tokenMgr.Now())); err != nil {
		return err
	}

	s.metrics.RecordAuthEvent(observability.EventLogout)
	s.publish(ctx, events.EventLoggedOut, claims.SubjectID(), nil)
	return nil
}

// Authenticate resolves a bearer access token into an active principal.
// A cache failure fails the request; it never counts as "not blacklisted".
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.Principal, *auth.Claims, error) {
	blacklisted, err := s.cache.IsBlacklisted(ctx, accessToken)
	if err != nil {
		return nil, nil, err
	}
	if blacklisted {
		return nil, nil, apperrors.ErrTokenBlacklisted
	}

	claims, err := s.tokenMgr.VerifyType(accessToken, domain.TokenTypeAccess)
	if err != nil {
		if errors.Is(err, auth.ErrWrongTokenType) {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidToken, "invalid token type")
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}

	principal, err := s.principals.GetByID(ctx, claims.SubjectID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidToken, "unknown principal")
		}
		return nil, nil, apperrors.DependencyUnavailable(credentialStore, err)
	}
	if !principal.IsActive {
		return nil, nil, apperrors.ErrInactivePrincipal
	}
	return principal, claims, nil
}

// GetPrincipal loads a principal by id.
func (s *AuthService) GetPrincipal(ctx context.Context, id string) (*domain.Principal, error) {
	principal, err := s.principals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.DependencyUnavailable(credentialStore, err)
	}
	return principal, nil
}

// ListPrincipals pages through principals, optionally by role.
func (s *AuthService) ListPrincipals(ctx context.Context, filter repository.PrincipalFilter) ([]domain.Principal, error) {
	principals, err := s.principals.List(ctx, filter)
	if err != nil {
		return nil, apperrors.DependencyUnavailable(credentialStore, err)
	}
	return principals, nil
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, principalID string, payload interface{}) {
	event := events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		PrincipalID: principalID,
		Timestamp:   s.tokenMgr.Now().UTC(),
		Payload:     payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

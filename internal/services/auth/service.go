package auth

import (
	"context"
	"errors"
	"time"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/metrics"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories"
	"merchantportal/internal/services/identity"
	"merchantportal/internal/services/merchant"
	"merchantportal/internal/services/session"
	"merchantportal/internal/utils"

	"go.uber.org/zap"
)

// refreshWindow is how close to expiry an access token may get before the
// request refreshes it.
const refreshWindow = 2 * time.Minute

type Service struct {
	idp       identity.Provider
	merchants MerchantResolver
	linker    ParentLinker
	sessions  *session.Manager
	devices   repositories.DeviceSessionRepository
	absolute  time.Duration
	idle      time.Duration
	log       *zap.Logger
	now       func() time.Time
}

type Options struct {
	AbsoluteMaxAge time.Duration
	IdleMaxAge     time.Duration
}

func NewService(
	idp identity.Provider,
	merchants MerchantResolver,
	linker ParentLinker,
	sessions *session.Manager,
	devices repositories.DeviceSessionRepository,
	opts Options,
	log *zap.Logger,
) *Service {
	return &Service{
		idp:       idp,
		merchants: merchants,
		linker:    linker,
		sessions:  sessions,
		devices:   devices,
		absolute:  opts.AbsoluteMaxAge,
		idle:      opts.IdleMaxAge,
		log:       log,
		now:       time.Now,
	}
}

// Login signs in with the identity provider, requires an active merchant
// parent and starts a fresh first-party session on the device.
func (s *Service) Login(ctx context.Context, jar session.Jar, in LoginInput, client Client) (*LoginResult, error) {
	provSession, err := s.idp.Login(ctx, in.Email, in.Password)
	if err != nil {
		metrics.LoginOutcomes.WithLabelValues(loginOutcome(err)).Inc()
		return nil, err
	}

	res := s.merchants.ResolveByCredentials(ctx, provSession.User.Email, provSession.User.Phone)
	if !res.IsValid {
		// The provider session is useless without a merchant behind it.
		s.idp.SignOut(ctx, provSession.AccessToken)
		metrics.LoginOutcomes.WithLabelValues(loginOutcome(res.Err)).Inc()
		return nil, res.Err
	}

	meta := s.sessions.Start(jar)
	device := &models.DeviceSession{
		SessionID:        meta.SessionID,
		DeviceID:         meta.DeviceID,
		MerchantParentID: res.MerchantParentID,
		IPAddress:        client.IP,
		UserAgent:        client.UserAgent,
		LastActivityAt:   meta.LastActivity,
	}
	if err := s.devices.Activate(ctx, device); err != nil {
		s.sessions.Expire(jar)
		s.idp.SignOut(ctx, provSession.AccessToken)
		metrics.LoginOutcomes.WithLabelValues("error").Inc()
		return nil, apperrors.Internal(err)
	}
	s.sessions.SetAuthTokens(jar, provSession.AccessToken, provSession.RefreshToken)

	if err := s.linker.LinkAuthUser(ctx, res.MerchantParentID, provSession.User.ID); err != nil {
		s.log.Warn("Failed to link auth user", zap.Uint("merchant_parent_id", res.MerchantParentID), zap.Error(err))
	}

	metrics.LoginOutcomes.WithLabelValues("ok").Inc()
	s.log.Info("Merchant logged in",
		zap.Uint("merchant_parent_id", res.MerchantParentID),
		zap.String("device_id", meta.DeviceID))

	return &LoginResult{
		UserID:           provSession.User.ID,
		Email:            provSession.User.Email,
		MerchantParentID: res.MerchantParentID,
		SessionID:        meta.SessionID,
		ExpiresAt:        meta.SessionStart.Add(s.absolute),
	}, nil
}

// Logout always clears the cookies; provider and device session cleanup are
// best effort.
func (s *Service) Logout(ctx context.Context, jar session.Jar) {
	accessToken, _ := s.sessions.AuthTokens(jar)
	meta := s.sessions.Read(jar)

	if accessToken != "" {
		s.idp.SignOut(ctx, accessToken)
	}
	if meta.SessionID != "" {
		if err := s.devices.Deactivate(ctx, meta.SessionID); err != nil {
			s.log.Warn("Failed to deactivate device session", zap.Error(err))
		}
	}
	s.sessions.Expire(jar)
	s.sessions.ClearAuthTokens(jar)
}

func (s *Service) Status(jar session.Jar) Status {
	meta, validity := s.sessions.Check(jar)
	st := Status{Valid: validity.Valid, Reason: validity.Reason}
	if validity.Valid {
		abs := meta.SessionStart.Add(s.absolute)
		idle := meta.LastActivity.Add(s.idle)
		st.ExpiresAt, st.IdleExpiresAt = &abs, &idle
	}
	return st
}

// Authenticate resolves the caller of an authenticated request. A rejected
// session has its cookies cleared before the error is returned.
func (s *Service) Authenticate(ctx context.Context, jar session.Jar) (*models.Principal, error) {
	meta, validity := s.sessions.Check(jar)
	if !validity.Valid {
		metrics.SessionRejections.WithLabelValues(validity.Reason).Inc()
		s.endSession(ctx, jar, meta.SessionID)
		if validity.Reason == session.ReasonMissing {
			return nil, identity.ErrNotAuthenticated
		}
		return nil, identity.ErrSessionInvalid
	}

	accessToken, refreshToken := s.sessions.AuthTokens(jar)
	if accessToken == "" && refreshToken == "" {
		metrics.SessionRejections.WithLabelValues("no_token").Inc()
		s.endSession(ctx, jar, meta.SessionID)
		return nil, identity.ErrNotAuthenticated
	}

	if refreshToken != "" && (accessToken == "" || utils.TokenExpiresWithin(accessToken, s.now(), refreshWindow)) {
		refreshed, err := s.idp.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, s.reject(ctx, jar, meta.SessionID, err)
		}
		accessToken = refreshed.AccessToken
		s.sessions.SetAuthTokens(jar, refreshed.AccessToken, refreshed.RefreshToken)
	}

	user, err := s.idp.CurrentUser(ctx, accessToken)
	if err != nil {
		return nil, s.reject(ctx, jar, meta.SessionID, err)
	}

	res := s.merchants.ResolveByCredentials(ctx, user.Email, user.Phone)
	if !res.IsValid {
		switch apperrors.KindOf(res.Err) {
		case apperrors.KindNotFound, apperrors.KindForbidden:
			metrics.SessionRejections.WithLabelValues("not_merchant").Inc()
			s.endSession(ctx, jar, meta.SessionID)
		}
		return nil, res.Err
	}

	touched := s.sessions.Touch(jar)
	if err := s.devices.TouchActivity(ctx, meta.SessionID, touched); err != nil {
		s.log.Debug("Failed to record session activity", zap.Error(err))
	}

	return &models.Principal{
		AuthUserID:       user.ID,
		Email:            user.Email,
		Phone:            user.Phone,
		MerchantParentID: res.MerchantParentID,
		SessionID:        meta.SessionID,
		DeviceID:         meta.DeviceID,
	}, nil
}

// reject keeps the session for transient failures and ends it for anything
// the provider answered definitively.
func (s *Service) reject(ctx context.Context, jar session.Jar, sessionID string, err error) error {
	switch apperrors.KindOf(err) {
	case apperrors.KindUnavailable, apperrors.KindUpstream, apperrors.KindInternal:
		return err
	case apperrors.KindSessionInvalid:
		metrics.SessionRejections.WithLabelValues("session_invalid").Inc()
		s.endSession(ctx, jar, sessionID)
		return err
	default:
		metrics.SessionRejections.WithLabelValues("unauthenticated").Inc()
		s.endSession(ctx, jar, sessionID)
		if errors.Is(err, identity.ErrNotAuthenticated) {
			return err
		}
		return identity.ErrSessionInvalid
	}
}

func (s *Service) endSession(ctx context.Context, jar session.Jar, sessionID string) {
	if sessionID != "" {
		if err := s.devices.Deactivate(ctx, sessionID); err != nil {
			s.log.Debug("Failed to deactivate device session", zap.Error(err))
		}
	}
	s.sessions.Expire(jar)
	s.sessions.ClearAuthTokens(jar)
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, merchant.ErrMerchantNotFound):
		return "not_merchant"
	case errors.Is(err, merchant.ErrMerchantInactive):
		return "inactive"
	case apperrors.KindOf(err) == apperrors.KindUnavailable:
		return "unavailable"
	case apperrors.KindOf(err) == apperrors.KindValidation:
		return "invalid_input"
	default:
		return "error"
	}
}

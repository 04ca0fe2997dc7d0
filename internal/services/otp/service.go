// Package otp issues and checks phone verification codes for registration.
// Codes live in Redis as bcrypt hashes and expire on their own.
package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/metrics"
	"merchantportal/internal/repositories/cache"
	"merchantportal/internal/services/merchant"
	"merchantportal/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeLength     = 6
	maxAttempts    = 5
	verifiedTTL    = 30 * time.Minute
	resendCooldown = 30 * time.Second
)

var (
	ErrInvalidPhone     = apperrors.Validation("phone must contain 10 digits")
	ErrCodeExpired      = apperrors.New(apperrors.KindValidation, "OTP_EXPIRED", "OTP expired or not requested")
	ErrCodeMismatch     = apperrors.New(apperrors.KindValidation, "OTP_INVALID", "Invalid OTP")
	ErrTooManyAttempts  = apperrors.New(apperrors.KindForbidden, "OTP_LOCKED", "Too many attempts, request a new OTP")
	ErrResendTooSoon    = apperrors.New(apperrors.KindConflict, "OTP_COOLDOWN", "Please wait before requesting another OTP")
	ErrPhoneNotVerified = apperrors.New(apperrors.KindForbidden, "PHONE_NOT_VERIFIED", "Phone number has not been verified")
)

// Store keeps codes and verification flags with a TTL.
type Store interface {
	SaveOTP(ctx context.Context, phone string, entry cache.OTPEntry, ttl time.Duration) error
	GetOTP(ctx context.Context, phone string) (*cache.OTPEntry, error)
	IncrOTPAttempts(ctx context.Context, phone string, ttl time.Duration) (int64, error)
	DeleteOTP(ctx context.Context, phone string) error
	MarkPhoneVerified(ctx context.Context, phone string, ttl time.Duration) error
	IsPhoneVerified(ctx context.Context, phone string) (bool, error)
	ClearPhoneVerified(ctx context.Context, phone string) error
}

type Sender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

type Service struct {
	store  Store
	sender Sender
	ttl    time.Duration
	cost   int
	now    func() time.Time
	log    *zap.Logger
}

func NewService(store Store, sender Sender, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		store:  store,
		sender: sender,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		log:    log,
	}
}

// Send issues a fresh code for phone, replacing any live one.
func (s *Service) Send(ctx context.Context, phone string) error {
	normalized := merchant.NormalizePhone(phone)
	if len(normalized) != 10 {
		return ErrInvalidPhone
	}

	existing, err := s.store.GetOTP(ctx, normalized)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		return apperrors.Internal(err)
	}
	if existing != nil && s.now().Sub(existing.IssuedAt) < resendCooldown {
		return ErrResendTooSoon
	}

	code, err := utils.GenerateNumericCode(codeLength)
	if err != nil {
		return apperrors.Internal(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("hash otp: %w", err))
	}

	entry := cache.OTPEntry{CodeHash: string(hash), IssuedAt: s.now()}
	if err := s.store.SaveOTP(ctx, normalized, entry, s.ttl); err != nil {
		return apperrors.Internal(fmt.Errorf("save otp: %w", err))
	}

	if err := s.sender.SendOTP(ctx, normalized, code); err != nil {
		metrics.OTPEvents.WithLabelValues("send_failed").Inc()
		_ = s.store.DeleteOTP(ctx, normalized)
		return err
	}
	metrics.OTPEvents.WithLabelValues("sent").Inc()
	return nil
}

// Verify checks code and, on success, marks the phone verified for the rest
// of registration. A code can be used once.
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	normalized := merchant.NormalizePhone(phone)
	if len(normalized) != 10 {
		return ErrInvalidPhone
	}

	entry, err := s.store.GetOTP(ctx, normalized)
	if errors.Is(err, cache.ErrMiss) {
		metrics.OTPEvents.WithLabelValues("expired").Inc()
		return ErrCodeExpired
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(entry.CodeHash), []byte(code)) != nil {
		attempts, err := s.store.IncrOTPAttempts(ctx, normalized, s.ttl)
		if err != nil {
			return apperrors.Internal(err)
		}
		if attempts >= maxAttempts {
			_ = s.store.DeleteOTP(ctx, normalized)
			metrics.OTPEvents.WithLabelValues("locked").Inc()
			return ErrTooManyAttempts
		}
		metrics.OTPEvents.WithLabelValues("mismatch").Inc()
		return ErrCodeMismatch
	}

	if err := s.store.DeleteOTP(ctx, normalized); err != nil {
		return apperrors.Internal(err)
	}
	if err := s.store.MarkPhoneVerified(ctx, normalized, verifiedTTL); err != nil {
		return apperrors.Internal(err)
	}
	metrics.OTPEvents.WithLabelValues("verified").Inc()
	return nil
}

// RequireVerified fails unless phone passed Verify recently.
func (s *Service) RequireVerified(ctx context.Context, phone string) error {
	ok, err := s.store.IsPhoneVerified(ctx, merchant.NormalizePhone(phone))
	if err != nil {
		return apperrors.Internal(err)
	}
	if !ok {
		return ErrPhoneNotVerified
	}
	return nil
}

// ConsumeVerified drops the verified flag once it has been used.
func (s *Service) ConsumeVerified(ctx context.Context, phone string) {
	if err := s.store.ClearPhoneVerified(ctx, merchant.NormalizePhone(phone)); err != nil {
		s.log.Warn("Failed to clear phone verification", zap.Error(err))
	}
}

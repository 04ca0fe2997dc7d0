package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPEntry is what the registration flow keeps per phone while a code is live.
type OTPEntry struct {
	CodeHash string    `json:"code_hash"`
	IssuedAt time.Time `json:"issued_at"`
}

func otpKey(phone string) string         { return "otp:code:" + phone }
func otpAttemptsKey(phone string) string { return "otp:attempts:" + phone }
func verifiedKey(phone string) string    { return "otp:verified:" + phone }

// SaveOTP replaces any live code for phone and resets the attempt counter.
func (s *CacheService) SaveOTP(ctx context.Context, phone string, entry OTPEntry, ttl time.Duration) error {
	if err := s.SetWithTTL(ctx, otpKey(phone), entry, ttl); err != nil {
		return err
	}
	return s.client.Del(ctx, otpAttemptsKey(phone)).Err()
}

func (s *CacheService) GetOTP(ctx context.Context, phone string) (*OTPEntry, error) {
	var entry OTPEntry
	found, err := s.Get(ctx, otpKey(phone), &entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrMiss
	}
	return &entry, nil
}

// IncrOTPAttempts counts a failed verification. The counter expires with the code.
func (s *CacheService) IncrOTPAttempts(ctx context.Context, phone string, ttl time.Duration) (int64, error) {
	key := otpAttemptsKey(phone)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count otp attempt: %w", err)
	}
	return incr.Val(), nil
}

func (s *CacheService) DeleteOTP(ctx context.Context, phone string) error {
	return s.Delete(ctx, otpKey(phone), otpAttemptsKey(phone))
}

func (s *CacheService) MarkPhoneVerified(ctx context.Context, phone string, ttl time.Duration) error {
	return s.client.Set(ctx, verifiedKey(phone), "1", ttl).Err()
}

func (s *CacheService) IsPhoneVerified(ctx context.Context, phone string) (bool, error) {
	n, err := s.client.Exists(ctx, verifiedKey(phone)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *CacheService) ClearPhoneVerified(ctx context.Context, phone string) error {
	return s.Delete(ctx, verifiedKey(phone))
}

package utils

import (
	"errors"
	"time"

	"merchantportal/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoExpiry = errors.New("token has no expiry")

// ParseProviderToken decodes the claims of a provider issued access token
// without checking its signature. Only the provider can say whether the token
// is valid; the portal reads it to decide when to refresh.
func ParseProviderToken(tokenStr string) (*models.ProviderClaims, error) {
	claims := &models.ProviderClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpiry returns the exp claim of tokenStr.
func TokenExpiry(tokenStr string) (time.Time, error) {
	claims, err := ParseProviderToken(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// TokenExpiresWithin reports whether tokenStr expires before now+window.
// Unreadable tokens count as expiring.
func TokenExpiresWithin(tokenStr string, now time.Time, window time.Duration) bool {
	exp, err := TokenExpiry(tokenStr)
	if err != nil {
		return true
	}
	return !exp.After(now.Add(window))
}

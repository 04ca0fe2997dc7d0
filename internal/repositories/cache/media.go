package cache

import (
	"context"
	"time"
)

func signedURLKey(objectKey string) string { return "media:signed:" + objectKey }

// GetSignedURL returns a previously issued URL for objectKey, or ErrMiss.
func (s *CacheService) GetSignedURL(ctx context.Context, objectKey string) (string, error) {
	var url string
	found, err := s.Get(ctx, signedURLKey(objectKey), &url)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrMiss
	}
	return url, nil
}

func (s *CacheService) SetSignedURL(ctx context.Context, objectKey, url string, ttl time.Duration) error {
	return s.SetWithTTL(ctx, signedURLKey(objectKey), url, ttl)
}

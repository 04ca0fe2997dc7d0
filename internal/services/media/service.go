// Package media issues time limited URLs for objects in the media bucket.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/repositories/cache"
	"merchantportal/internal/utils"

	"go.uber.org/zap"
)

// cacheMargin keeps cached URLs from being served right before they expire.
const cacheMargin = time.Hour

var ErrInvalidKey = apperrors.Validation("key or url is required")

type URLCache interface {
	GetSignedURL(ctx context.Context, objectKey string) (string, error)
	SetSignedURL(ctx context.Context, objectKey, url string, ttl time.Duration) error
}

type Config struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	Validity   time.Duration
	Timeout    time.Duration
}

type Service struct {
	cfg        Config
	cache      URLCache
	httpClient *http.Client
	log        *zap.Logger
}

func NewService(cfg Config, cache URLCache, log *zap.Logger) *Service {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Service{cfg: cfg, cache: cache, httpClient: &http.Client{}, log: log}
}

// ObjectKey accepts either a bare object key or a URL previously issued for
// the bucket and returns the object key.
func (s *Service) ObjectKey(keyOrURL string) (string, error) {
	keyOrURL = strings.TrimSpace(keyOrURL)
	if keyOrURL == "" {
		return "", ErrInvalidKey
	}
	if !strings.HasPrefix(keyOrURL, "http://") && !strings.HasPrefix(keyOrURL, "https://") {
		key := strings.TrimPrefix(keyOrURL, "/")
		key = strings.TrimPrefix(key, s.cfg.Bucket+"/")
		if key == "" || strings.Contains(key, "..") {
			return "", ErrInvalidKey
		}
		return key, nil
	}

	u, err := url.Parse(keyOrURL)
	if err != nil {
		return "", ErrInvalidKey
	}
	for _, marker := range []string{"/object/sign/", "/object/public/", "/object/authenticated/"} {
		idx := strings.Index(u.Path, marker+s.cfg.Bucket+"/")
		if idx >= 0 {
			key := u.Path[idx+len(marker)+len(s.cfg.Bucket)+1:]
			if key != "" && !strings.Contains(key, "..") {
				return key, nil
			}
		}
	}
	return "", apperrors.Validation("url does not point into the media bucket")
}

// SignedURL returns a signed URL for keyOrURL, reusing a cached one while it
// has more than cacheMargin left.
func (s *Service) SignedURL(ctx context.Context, keyOrURL string) (string, error) {
	key, err := s.ObjectKey(keyOrURL)
	if err != nil {
		return "", err
	}

	cached, err := s.cache.GetSignedURL(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("Signed URL cache read failed", zap.Error(err))
	}

	signed, err := utils.CallWithTimeout(ctx, s.cfg.Timeout, func(ctx context.Context) (string, error) {
		return s.sign(ctx, key)
	})
	if err != nil {
		return "", err
	}

	if ttl := s.cfg.Validity - cacheMargin; ttl > 0 {
		if err := s.cache.SetSignedURL(ctx, key, signed, ttl); err != nil {
			s.log.Warn("Signed URL cache write failed", zap.Error(err))
		}
	}
	return signed, nil
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

func (s *Service) sign(ctx context.Context, key string) (string, error) {
	body, err := json.Marshal(signRequest{ExpiresIn: int(s.cfg.Validity / time.Second)})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.cfg.BaseURL, s.cfg.Bucket, escapeKey(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceKey)
	req.Header.Set("apikey", s.cfg.ServiceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Unavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Unavailable(err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest && strings.Contains(string(raw), "not_found"):
		return "", apperrors.NotFound("File not found")
	case resp.StatusCode >= 500:
		return "", apperrors.Unavailable(fmt.Errorf("object store returned %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", apperrors.Upstream(fmt.Sprintf("object store returned %d", resp.StatusCode), errors.New(string(raw)))
	}

	var sr signResponse
	if err := json.Unmarshal(raw, &sr); err != nil || sr.SignedURL == "" {
		return "", apperrors.Upstream("object store returned no signed url", err)
	}
	if strings.HasPrefix(sr.SignedURL, "http") {
		return sr.SignedURL, nil
	}
	return s.cfg.BaseURL + "/storage/v1" + sr.SignedURL, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/utils"

	"go.uber.org/zap"
)

// Client talks to a GoTrue compatible auth API.
type Client struct {
	baseURL    string
	anonKey    string
	timeout    time.Duration
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL, anonKey string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		timeout:    timeout,
		httpClient: &http.Client{},
		log:        log,
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	var tr tokenResponse
	err := c.call(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "",
		map[string]string{"email": email, "password": password}, &tr)
	if err != nil {
		if Classify(err) == apperrors.KindUnavailable {
			return nil, toDomain(err)
		}
		c.log.Debug("Provider rejected login", zap.Error(err))
		return nil, apperrors.Wrap(ErrInvalidCredentials.Kind, ErrInvalidCredentials.Code, ErrInvalidCredentials.Message, err)
	}
	return tr.session(), nil
}

func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrNotAuthenticated
	}

	var u User
	if err := c.call(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &u); err != nil {
		return nil, toDomain(err)
	}
	if u.ID == "" {
		return nil, ErrNotAuthenticated
	}
	return &u, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrSessionInvalid
	}

	var tr tokenResponse
	err := c.call(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "",
		map[string]string{"refresh_token": refreshToken}, &tr)
	if err != nil {
		if Classify(err) == apperrors.KindUnauthenticated {
			// A rejected refresh grant can only mean the token is unusable.
			return nil, apperrors.Wrap(ErrSessionInvalid.Kind, ErrSessionInvalid.Code, ErrSessionInvalid.Message, err)
		}
		return nil, toDomain(err)
	}
	return tr.session(), nil
}

// SignOut revokes the provider session. Failures, including already expired
// tokens, are only logged.
func (c *Client) SignOut(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	if err := c.call(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil); err != nil {
		c.log.Debug("Provider sign out failed", zap.Error(err))
	}
}

func (c *Client) call(ctx context.Context, method, path, bearer string, in, out interface{}) error {
	_, err := utils.CallWithTimeout(ctx, c.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.do(ctx, method, path, bearer, in, out)
	})
	return err
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseProviderError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}

func parseProviderError(status int, raw []byte) *ProviderError {
	pe := &ProviderError{Status: status}
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil {
		pe.Message = strings.TrimSpace(string(raw))
		return pe
	}

	pe.Code = er.ErrorCode
	if pe.Code == "" {
		pe.Code = er.Error
	}
	for _, m := range []string{er.Msg, er.ErrorDescription, er.Message} {
		if m != "" {
			pe.Message = m
			break
		}
	}
	return pe
}

func (tr *tokenResponse) session() *Session {
	s := &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		User:         tr.User,
	}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	default:
		if exp, err := utils.TokenExpiry(tr.AccessToken); err == nil {
			s.ExpiresAt = exp
		}
	}
	return s
}

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"merchantportal/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "anon-key", time.Second, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct horse" {
			writeJSON(w, 400, map[string]string{"error": "invalid_grant", "error_description": "Invalid login credentials"})
			return
		}
		writeJSON(w, 200, map[string]interface{}{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"expires_in":    3600,
			"user":          map[string]string{"id": "u-1", "email": body["email"], "phone": "919876543210"},
		})
	})

	s, err := c.Login(context.Background(), "owner@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "access-1", s.AccessToken)
	assert.Equal(t, "refresh-1", s.RefreshToken)
	assert.Equal(t, "u-1", s.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)

	_, err = c.Login(context.Background(), "owner@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called")
	})

	_, err := c.Login(context.Background(), "  ", "secret")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	_, err = c.Login(context.Background(), "owner@example.com", "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCurrentUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			writeJSON(w, 200, map[string]string{"id": "u-1", "email": "owner@example.com"})
		case "Bearer gone":
			writeJSON(w, 403, map[string]interface{}{"code": 403, "error_code": "session_not_found", "msg": "Session from session_id claim in JWT does not exist"})
		case "Bearer flaky":
			writeJSON(w, 503, map[string]string{"message": "upstream connect error"})
		default:
			writeJSON(w, 401, map[string]string{"error": "unauthorized", "message": "missing sub claim"})
		}
	})
	ctx := context.Background()

	u, err := c.CurrentUser(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", u.Email)

	_, err = c.CurrentUser(ctx, "")
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))

	_, err = c.CurrentUser(ctx, "gone")
	assert.Equal(t, apperrors.KindSessionInvalid, apperrors.KindOf(err))

	_, err = c.CurrentUser(ctx, "flaky")
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))

	_, err = c.CurrentUser(ctx, "other")
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestRefresh(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch body["refresh_token"] {
		case "valid":
			writeJSON(w, 200, map[string]interface{}{
				"access_token":  "access-2",
				"refresh_token": "refresh-2",
				"expires_at":    time.Now().Add(time.Hour).Unix(),
			})
		case "used":
			writeJSON(w, 400, map[string]interface{}{"code": 400, "error_code": "refresh_token_already_used", "msg": "Invalid Refresh Token: Already Used"})
		default:
			writeJSON(w, 400, map[string]string{"error": "invalid_grant", "error_description": "Invalid Refresh Token: Refresh Token Not Found"})
		}
	})
	ctx := context.Background()

	s, err := c.Refresh(ctx, "valid")
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", s.RefreshToken)

	for _, token := range []string{"used", "unknown", ""} {
		_, err = c.Refresh(ctx, token)
		assert.Equal(t, apperrors.KindSessionInvalid, apperrors.KindOf(err), token)
	}
}

func TestSlowProviderIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		writeJSON(w, 200, map[string]string{"id": "u-1"})
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "anon-key", 50*time.Millisecond, zap.NewNop())

	_, err := c.CurrentUser(context.Background(), "good")
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
}

func TestSignOutSwallowsErrors(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		writeJSON(w, 401, map[string]string{"error_code": "bad_jwt", "msg": "token is expired"})
	})

	assert.NotPanics(t, func() { c.SignOut(context.Background(), "expired") })
	assert.True(t, called)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o deadline" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{"refresh not found", &ProviderError{Status: 400, Code: "refresh_token_not_found"}, apperrors.KindSessionInvalid},
		{"refresh already used", &ProviderError{Status: 400, Code: "refresh_token_already_used"}, apperrors.KindSessionInvalid},
		{"session expired", &ProviderError{Status: 403, Code: "session_expired"}, apperrors.KindSessionInvalid},
		{"bad jwt", &ProviderError{Status: 401, Code: "bad_jwt"}, apperrors.KindSessionInvalid},
		{"legacy invalid grant", &ProviderError{Status: 400, Code: "invalid_grant", Message: "Invalid Refresh Token: Revoked"}, apperrors.KindSessionInvalid},
		{"bad password", &ProviderError{Status: 400, Code: "invalid_grant", Message: "Invalid login credentials"}, apperrors.KindUnauthenticated},
		{"provider 502", &ProviderError{Status: 502}, apperrors.KindUnavailable},
		{"rate limited", &ProviderError{Status: 429, Code: "over_request_rate_limit"}, apperrors.KindUnavailable},
		{"deadline", fmt.Errorf("get user: %w", context.DeadlineExceeded), apperrors.KindUnavailable},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, apperrors.KindUnavailable},
		{"conn reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, apperrors.KindUnavailable},
		{"conn refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), apperrors.KindUnavailable},
		{"dns", &net.DNSError{Err: "no such host", Name: "auth.example.com"}, apperrors.KindUnavailable},
		{"eof", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), apperrors.KindUnavailable},
		{"timeout text", errors.New("request timed out"), apperrors.KindUnavailable},
		{"already classified", apperrors.Unavailable(errors.New("x")), apperrors.KindUnavailable},
		{"other", errors.New("decode identity response: invalid character"), apperrors.KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	"merchantportal/internal/apperrors"
)

var (
	ErrInvalidCredentials = apperrors.New(apperrors.KindUnauthenticated, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrNotAuthenticated   = apperrors.New(apperrors.KindUnauthenticated, "NOT_AUTHENTICATED", "Not authenticated")
	ErrSessionInvalid     = apperrors.New(apperrors.KindSessionInvalid, "SESSION_INVALID", "Session expired, please log in again")
)

// ProviderError is a non-2xx answer from the identity provider.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider %d %s: %s", e.Status, e.Code, e.Message)
}

// Codes the provider uses when a refresh token or session can no longer be
// used. Matched exactly.
var sessionInvalidCodes = map[string]struct{}{
	"refresh_token_not_found":    {},
	"refresh_token_already_used": {},
	"session_not_found":          {},
	"session_expired":            {},
	"bad_jwt":                    {},
}

var transientPatterns = []string{
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"econnreset",
	"econnrefused",
	"etimedout",
	"no such host",
	"temporary failure in name resolution",
	"unexpected eof",
	"network is unreachable",
}

// Classify sorts a provider failure into the kind the caller must act on:
// KindSessionInvalid forces a logout, KindUnavailable is retryable, anything
// else the provider rejected is KindUnauthenticated. Failures that are
// neither a provider answer nor a transport problem are KindUpstream.
func Classify(err error) apperrors.Kind {
	if err == nil {
		return apperrors.KindInternal
	}
	if de, ok := apperrors.As(err); ok {
		return de.Kind
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		if _, ok := sessionInvalidCodes[pe.Code]; ok {
			return apperrors.KindSessionInvalid
		}
		if pe.Code == "invalid_grant" && strings.Contains(pe.Message, "Invalid Refresh Token") {
			return apperrors.KindSessionInvalid
		}
		if pe.Status >= http.StatusInternalServerError || pe.Status == http.StatusTooManyRequests {
			return apperrors.KindUnavailable
		}
		return apperrors.KindUnauthenticated
	}

	if isTransient(err) {
		return apperrors.KindUnavailable
	}
	return apperrors.KindUpstream
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// toDomain converts a classified failure into the error handed to callers.
func toDomain(err error) error {
	switch Classify(err) {
	case apperrors.KindSessionInvalid:
		return apperrors.Wrap(ErrSessionInvalid.Kind, ErrSessionInvalid.Code, ErrSessionInvalid.Message, err)
	case apperrors.KindUnavailable:
		if de, ok := apperrors.As(err); ok && de.Kind == apperrors.KindUnavailable {
			return de
		}
		return apperrors.Unavailable(err)
	case apperrors.KindUnauthenticated:
		return apperrors.Wrap(ErrNotAuthenticated.Kind, ErrNotAuthenticated.Code, ErrNotAuthenticated.Message, err)
	default:
		return apperrors.Upstream("identity provider request failed", err)
	}
}

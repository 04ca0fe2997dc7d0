package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindSessionInvalid, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
		{KindUpstream, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("lookup store: %w", NotFound("store not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestSentinelMatching(t *testing.T) {
	sentinel := New(KindConflict, "PARENT_EXISTS", "merchant already registered")
	err := fmt.Errorf("register: %w", New(KindConflict, "PARENT_EXISTS", "different text"))

	assert.True(t, errors.Is(err, sentinel))
	assert.False(t, errors.Is(err, Conflict("other")))
}

func TestPublic(t *testing.T) {
	assert.True(t, Validation("phone is required").Public())
	assert.False(t, Internal(errors.New("pq: relation missing")).Public())
	assert.False(t, Upstream("gateway failed", nil).Public())
}

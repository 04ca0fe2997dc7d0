package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"merchantportal/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendOTP(t *testing.T) {
	var got smsMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	svc := NewSMSService(SMSConfig{BaseURL: srv.URL, APIKey: "k", SenderID: "MRCHNT", Timeout: time.Second}, zap.NewNop())
	require.NoError(t, svc.SendOTP(context.Background(), "9876543210", "482913"))

	assert.Equal(t, "Bearer k", auth)
	assert.Equal(t, "+919876543210", got.To)
	assert.Equal(t, "MRCHNT", got.Sender)
	assert.Contains(t, got.Message, "482913")
}

func TestSendProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient credits", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	svc := NewSMSService(SMSConfig{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop())
	err := svc.Send(context.Background(), "9876543210", "hi")
	assert.Equal(t, apperrors.KindUpstream, apperrors.KindOf(err))
}

func TestSendUnconfigured(t *testing.T) {
	svc := NewSMSService(SMSConfig{}, zap.NewNop())
	assert.NoError(t, svc.Send(context.Background(), "9876543210", "hi"))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "******3210", maskPhone("9876543210"))
}

// Package notification delivers SMS messages through the configured provider.
package notification

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

type SMSConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
	Timeout  time.Duration
}

// SMSService sends transactional SMS.
type SMSService struct {
	cfg        SMSConfig
	httpClient *http.Client
	log        *zap.Logger
}

func NewSMSService(cfg SMSConfig, log *zap.Logger) *SMSService {
	return &SMSService{
		cfg:        cfg,
		httpClient: &http.Client{},
		log:        log,
	}
}

type smsMessage struct {
	Sender  string `json:"sender"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendOTP delivers a one time code to a 10 digit Indian mobile number.
func (s *SMSService) SendOTP(ctx context.Context, phone, code string) error {
	text := fmt.Sprintf("%s is your merchant portal verification code. It expires in 5 minutes. Do not share it with anyone.", code)
	return s.Send(ctx, phone, text)
}

func (s *SMSService) Send(ctx context.Context, phone, text string) error {
	if s.cfg.BaseURL == "" {
		s.log.Warn("SMS provider not configured, message dropped", zap.String("phone", maskPhone(phone)))
		return nil
	}

	body, err := json.Marshal(smsMessage{
		Sender:  s.cfg.SenderID,
		To:      "+91" + phone,
		Message: text,
	})
	if err != nil {
		return err
	}

	_, err = utils.CallWithTimeout(ctx, s.cfg.Timeout, func(ctx context.Context) (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return struct{}{}, apperrors.Unavailable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return struct{}{}, apperrors.Upstream(
				fmt.Sprintf("sms provider returned status %d", resp.StatusCode),
				fmt.Errorf("%s", strings.TrimSpace(string(raw))))
		}
		return struct{}{}, nil
	})
	if err != nil {
		s.log.Error("Failed to send SMS", zap.String("phone", maskPhone(phone)), zap.Error(err))
		return err
	}
	return nil
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

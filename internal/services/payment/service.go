package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories"
	"merchantportal/internal/utils"

	"github.com/stripe/stripe-go/v72"
	"go.uber.org/zap"
)

var (
	ErrInvalidSignature = apperrors.New(apperrors.KindUnauthenticated, "INVALID_SIGNATURE", "Invalid webhook signature")
	ErrUnknownOrder     = apperrors.NotFound("Payment order not found")
	ErrUnknownEvent     = apperrors.Validation("unsupported webhook event")
)

type Config struct {
	PublishableKey     string
	WebhookSecret      string
	DefaultAmountPaise int64
	Currency           string
	Timeout            time.Duration
}

type Service struct {
	gateway Gateway
	parents ParentLookup
	repo    repositories.PaymentRepository
	cfg     Config
	log     *zap.Logger
}

func NewService(gateway Gateway, parents ParentLookup, repo repositories.PaymentRepository, cfg Config, log *zap.Logger) *Service {
	if cfg.DefaultAmountPaise <= 0 {
		cfg.DefaultAmountPaise = 100
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Service{gateway: gateway, parents: parents, repo: repo, cfg: cfg, log: log}
}

// CreateOnboardingOrder raises the onboarding fee order for a merchant parent.
func (s *Service) CreateOnboardingOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if _, err := s.parents.GetParent(ctx, in.MerchantParentID); err != nil {
		return nil, err
	}

	amount := s.cfg.DefaultAmountPaise
	if in.AmountPaise != nil {
		amount = *in.AmountPaise
	}

	req := OrderRequest{
		AmountPaise:      amount,
		Currency:         s.cfg.Currency,
		MerchantParentID: in.MerchantParentID,
		Purpose:          models.PaymentPurposeOnboarding,
	}
	orderID, err := utils.CallWithTimeout(ctx, s.cfg.Timeout, func(ctx context.Context) (string, error) {
		return s.gateway.CreateOrder(ctx, req)
	})
	if err != nil {
		return nil, gatewayError(err)
	}

	payment := &models.Payment{
		GatewayOrderID:   orderID,
		MerchantParentID: in.MerchantParentID,
		Purpose:          models.PaymentPurposeOnboarding,
		AmountPaise:      amount,
		Currency:         s.cfg.Currency,
		Status:           models.PaymentCreated,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info("Onboarding order created",
		zap.Uint("merchant_parent_id", in.MerchantParentID),
		zap.String("order_id", orderID),
		zap.Int64("amount", amount))

	return &Order{OrderID: orderID, KeyID: s.cfg.PublishableKey, Amount: amount, Currency: s.cfg.Currency}, nil
}

// VerifySignature checks the hex HMAC-SHA256 of body against signature.
func (s *Service) VerifySignature(body []byte, signature string) error {
	if s.cfg.WebhookSecret == "" || signature == "" {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(body)
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || !hmac.Equal(expected, got) {
		return ErrInvalidSignature
	}
	return nil
}

// HandleWebhook verifies and applies a settlement event. Replays of an event
// already applied are accepted without changes.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (*models.Payment, error) {
	if err := s.VerifySignature(body, signature); err != nil {
		return nil, err
	}

	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, apperrors.Validation("malformed webhook body")
	}

	var status string
	switch ev.Event {
	case EventSucceeded:
		status = models.PaymentPaid
	case EventFailed:
		status = models.PaymentFailed
	default:
		return nil, ErrUnknownEvent
	}

	payment, err := s.repo.GetByGatewayOrderID(ctx, ev.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnknownOrder
		}
		return nil, apperrors.Internal(err)
	}

	changed, err := s.repo.MarkSettled(ctx, ev.OrderID, status, ev.PaymentID, ev.Reason)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if changed {
		payment.Status = status
		payment.GatewayPaymentID = ev.PaymentID
		payment.FailureReason = ev.Reason
		s.log.Info("Payment settled", zap.String("order_id", ev.OrderID), zap.String("status", status))
	} else {
		s.log.Debug("Webhook replay ignored", zap.String("order_id", ev.OrderID), zap.String("status", payment.Status))
	}
	return payment, nil
}

func gatewayError(err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.HTTPStatusCode >= 500 {
		return apperrors.Unavailable(err)
	}
	return apperrors.Upstream("Payment gateway rejected the order", err)
}

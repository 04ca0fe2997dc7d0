package handlers

import (
	"merchantportal/internal/logger"
	"merchantportal/internal/services/payment"
	"merchantportal/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const signatureHeader = "X-Payment-Signature"

type PaymentHandler struct {
	paymentService PaymentService
}

func NewPaymentHandler(paymentSvc PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentSvc}
}

// CreateOnboardingOrder raises the onboarding fee order.
func (h *PaymentHandler) CreateOnboardingOrder(c *fiber.Ctx) error {
	var input payment.CreateOrderInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	order, err := h.paymentService.CreateOnboardingOrder(c.UserContext(), input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{
		"orderId":  order.OrderID,
		"keyId":    order.KeyID,
		"amount":   order.Amount,
		"currency": order.Currency,
	})
}

// Webhook applies a gateway settlement. The signature covers the raw body, so
// the body is never re-encoded before verification.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	p, err := h.paymentService.HandleWebhook(c.UserContext(), c.Body(), c.Get(signatureHeader))
	if err != nil {
		logger.FromFiber(c).Warn("Payment webhook rejected", zap.Error(err))
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"status": p.Status})
}

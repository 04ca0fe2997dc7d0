package payment

import (
	"context"

	"merchantportal/internal/models"
)

// Gateway raises orders with the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)
}

// ParentLookup confirms the merchant parent an order is raised for.
type ParentLookup interface {
	GetParent(ctx context.Context, parentID uint) (*models.MerchantParent, error)
}

type OrderRequest struct {
	AmountPaise      int64
	Currency         string
	MerchantParentID uint
	Purpose          string
}

type CreateOrderInput struct {
	MerchantParentID uint   `json:"merchantParentId" validate:"required"`
	AmountPaise      *int64 `json:"amountPaise" validate:"omitempty,min=100,max=10000000"`
}

// Order is what the client needs to open the gateway checkout.
type Order struct {
	OrderID  string `json:"orderId"`
	KeyID    string `json:"keyId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// WebhookEvent is the body the gateway posts once a payment settles.
type WebhookEvent struct {
	Event     string `json:"event"`
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Reason    string `json:"reason"`
}

const (
	EventSucceeded = "payment.succeeded"
	EventFailed    = "payment.failed"
)

package payment

import (
	"context"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

// StripeGateway raises PaymentIntents; the intent id is the order id.
type StripeGateway struct {
	client paymentintent.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{
		client: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (g *StripeGateway) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountPaise),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.AddMetadata("merchant_parent_id", strconv.FormatUint(uint64(req.MerchantParentID), 10))
	params.AddMetadata("purpose", req.Purpose)

	pi, err := g.client.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}

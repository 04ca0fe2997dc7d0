package models

import "time"

const (
	PaymentCreated = "CREATED"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

const PaymentPurposeOnboarding = "ONBOARDING_FEE"

// Payment is one gateway order raised by the portal.
type Payment struct {
	ID               uint       `gorm:"primarykey" json:"-"`
	GatewayOrderID   string     `gorm:"uniqueIndex;not null" json:"order_id"`
	MerchantParentID uint       `gorm:"index;not null" json:"merchant_parent_id"`
	Purpose          string     `gorm:"not null" json:"purpose"`
	AmountPaise      int64      `gorm:"not null" json:"amount"`
	Currency         string     `gorm:"not null;default:'INR'" json:"currency"`
	Status           string     `gorm:"default:'CREATED';index" json:"status"`
	GatewayPaymentID string     `json:"gateway_payment_id,omitempty"`
	FailureReason    string     `json:"failure_reason,omitempty"`
	Metadata         JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

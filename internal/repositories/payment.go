package repositories

import (
	"context"
	"time"

	"merchantportal/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByGatewayOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	// MarkSettled records the gateway outcome once; a payment that already
	// left CREATED is not changed again.
	MarkSettled(ctx context.Context, orderID, status, gatewayPaymentID, reason string) (bool, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByGatewayOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", orderID).
		First(&payment).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}

func (r *paymentRepository) MarkSettled(ctx context.Context, orderID, status, gatewayPaymentID, reason string) (bool, error) {
	fields := map[string]interface{}{
		"status":             status,
		"gateway_payment_id": gatewayPaymentID,
		"failure_reason":     reason,
	}
	if status == models.PaymentPaid {
		fields["paid_at"] = time.Now()
	}
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("gateway_order_id = ? AND status = ?", orderID, models.PaymentCreated).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

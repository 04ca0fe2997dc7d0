package repositories

import (
	"context"
	"time"

	"merchantportal/internal/models"
	"merchantportal/internal/utils/pagination"

	"gorm.io/gorm"
)

type OrderFilter struct {
	StoreID uint
	Status  string
	Page    pagination.Params
}

type OrderRepository interface {
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	Get(ctx context.Context, storeID uint, orderID string) (*models.Order, error)
	// UpdateStatus moves an order only if it is still in fromStatus.
	UpdateStatus(ctx context.Context, order *models.Order, fromStatus, toStatus, reason string) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("store_id = ?", filter.StoreID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset(filter.Page.Offset()).
		Limit(filter.Page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) Get(ctx context.Context, storeID uint, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ? AND store_id = ?", orderID, storeID).
		First(&order).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, order *models.Order, fromStatus, toStatus, reason string) (bool, error) {
	now := time.Now()
	fields := map[string]interface{}{
		"status":           toStatus,
		"status_change_at": now,
	}
	if reason != "" {
		fields["cancel_reason"] = reason
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, fromStatus).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	order.Status = toStatus
	order.StatusChangeAt = now
	if reason != "" {
		order.CancelReason = reason
	}
	return true, nil
}

// Package order lets a store work through its incoming orders.
package order

import (
	"context"
	"errors"
	"fmt"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories"
	"merchantportal/internal/utils/pagination"

	"go.uber.org/zap"
)

var (
	ErrOrderNotFound     = apperrors.New(apperrors.KindNotFound, "ORDER_NOT_FOUND", "Order not found")
	ErrInvalidTransition = apperrors.New(apperrors.KindValidation, "INVALID_TRANSITION", "Order cannot move to the requested status")
	ErrConcurrentUpdate  = apperrors.New(apperrors.KindConflict, "ORDER_CHANGED", "Order was updated by someone else, reload and retry")
)

// next lists the forward move allowed from each non-terminal status.
// Cancellation is allowed from any of them.
var next = map[string]string{
	models.OrderPlaced:    models.OrderAccepted,
	models.OrderAccepted:  models.OrderPreparing,
	models.OrderPreparing: models.OrderReady,
	models.OrderReady:     models.OrderCompleted,
}

// StoreResolver finds a store within the caller's merchant parent.
type StoreResolver interface {
	GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error)
}

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED PREPARING READY COMPLETED CANCELLED"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type Service struct {
	stores StoreResolver
	repo   repositories.OrderRepository
	log    *zap.Logger
}

func NewService(stores StoreResolver, repo repositories.OrderRepository, log *zap.Logger) *Service {
	return &Service{stores: stores, repo: repo, log: log}
}

// CanTransition reports whether an order in from may move to to.
func CanTransition(from, to string) bool {
	if _, open := next[from]; !open {
		return false
	}
	return to == models.OrderCancelled || next[from] == to
}

func (s *Service) List(ctx context.Context, parentID uint, storeID, status string, page pagination.Params) ([]models.Order, int64, error) {
	store, err := s.stores.GetStore(ctx, parentID, storeID)
	if err != nil {
		return nil, 0, err
	}
	orders, total, err := s.repo.List(ctx, repositories.OrderFilter{StoreID: store.ID, Status: status, Page: page})
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("list orders: %w", err))
	}
	return orders, total, nil
}

func (s *Service) Get(ctx context.Context, parentID uint, storeID, orderID string) (*models.Order, error) {
	store, err := s.stores.GetStore(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.Get(ctx, store.ID, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return order, nil
}

func (s *Service) UpdateStatus(ctx context.Context, parentID uint, storeID, orderID string, in UpdateStatusInput) (*models.Order, error) {
	order, err := s.Get(ctx, parentID, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, in.Status) {
		return nil, ErrInvalidTransition
	}

	reason := ""
	if in.Status == models.OrderCancelled {
		reason = in.Reason
	}
	from := order.Status
	ok, err := s.repo.UpdateStatus(ctx, order, from, in.Status, reason)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("update order status: %w", err))
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}

	s.log.Info("Order status changed",
		zap.String("order_id", orderID),
		zap.String("from", from),
		zap.String("to", in.Status))
	return order, nil
}

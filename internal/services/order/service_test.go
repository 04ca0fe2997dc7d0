package order

import (
	"context"
	"testing"

	"merchantportal/internal/models"
	"merchantportal/internal/repositories"
	"merchantportal/internal/utils/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockStores struct {
	mock.Mock
}

func (m *MockStores) GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error) {
	args := m.Called(ctx, parentID, storeID)
	s, _ := args.Get(0).(*models.MerchantStore)
	return s, args.Error(1)
}

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) List(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	args := m.Called(ctx, filter)
	o, _ := args.Get(0).([]models.Order)
	return o, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrders) Get(ctx context.Context, storeID uint, orderID string) (*models.Order, error) {
	args := m.Called(ctx, storeID, orderID)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *MockOrders) UpdateStatus(ctx context.Context, order *models.Order, from, to, reason string) (bool, error) {
	args := m.Called(ctx, order, from, to, reason)
	return args.Bool(0), args.Error(1)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.OrderPlaced, models.OrderAccepted, true},
		{models.OrderAccepted, models.OrderPreparing, true},
		{models.OrderPreparing, models.OrderReady, true},
		{models.OrderReady, models.OrderCompleted, true},
		{models.OrderPlaced, models.OrderCancelled, true},
		{models.OrderReady, models.OrderCancelled, true},
		{models.OrderPlaced, models.OrderReady, false},
		{models.OrderCompleted, models.OrderCancelled, false},
		{models.OrderCancelled, models.OrderAccepted, false},
		{models.OrderAccepted, models.OrderPlaced, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := &models.MerchantStore{ID: 3, StoreID: "st_1"}

	t.Run("accepts placed order", func(t *testing.T) {
		stores, orders := new(MockStores), new(MockOrders)
		order := &models.Order{ID: 10, OrderID: "ord_1", Status: models.OrderPlaced}
		stores.On("GetStore", ctx, uint(42), "st_1").Return(store, nil)
		orders.On("Get", ctx, uint(3), "ord_1").Return(order, nil)
		orders.On("UpdateStatus", ctx, order, models.OrderPlaced, models.OrderAccepted, "").
			Run(func(args mock.Arguments) { args.Get(1).(*models.Order).Status = models.OrderAccepted }).
			Return(true, nil)

		got, err := NewService(stores, orders, zap.NewNop()).UpdateStatus(ctx, 42, "st_1", "ord_1", UpdateStatusInput{Status: models.OrderAccepted})
		require.NoError(t, err)
		assert.Equal(t, models.OrderAccepted, got.Status)
		orders.AssertExpectations(t)
	})

	t.Run("rejects skipping ahead", func(t *testing.T) {
		stores, orders := new(MockStores), new(MockOrders)
		stores.On("GetStore", ctx, uint(42), "st_1").Return(store, nil)
		orders.On("Get", ctx, uint(3), "ord_1").Return(&models.Order{Status: models.OrderPlaced}, nil)

		_, err := NewService(stores, orders, zap.NewNop()).UpdateStatus(ctx, 42, "st_1", "ord_1", UpdateStatusInput{Status: models.OrderCompleted})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost race", func(t *testing.T) {
		stores, orders := new(MockStores), new(MockOrders)
		order := &models.Order{ID: 10, Status: models.OrderReady}
		stores.On("GetStore", ctx, uint(42), "st_1").Return(store, nil)
		orders.On("Get", ctx, uint(3), "ord_1").Return(order, nil)
		orders.On("UpdateStatus", ctx, order, models.OrderReady, models.OrderCancelled, "out of stock").Return(false, nil)

		_, err := NewService(stores, orders, zap.NewNop()).UpdateStatus(ctx, 42, "st_1", "ord_1", UpdateStatusInput{Status: models.OrderCancelled, Reason: "out of stock"})
		assert.ErrorIs(t, err, ErrConcurrentUpdate)
	})

	t.Run("unknown order", func(t *testing.T) {
		stores, orders := new(MockStores), new(MockOrders)
		stores.On("GetStore", ctx, uint(42), "st_1").Return(store, nil)
		orders.On("Get", ctx, uint(3), "nope").Return(nil, repositories.ErrNotFound)

		_, err := NewService(stores, orders, zap.NewNop()).Get(ctx, 42, "st_1", "nope")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	stores, orders := new(MockStores), new(MockOrders)
	page := pagination.Params{Page: 2, Limit: 10}
	stores.On("GetStore", ctx, uint(42), "st_1").Return(&models.MerchantStore{ID: 3}, nil)
	orders.On("List", ctx, repositories.OrderFilter{StoreID: 3, Status: models.OrderReady, Page: page}).
		Return([]models.Order{{OrderID: "ord_1"}}, int64(11), nil)

	got, total, err := NewService(stores, orders, zap.NewNop()).List(ctx, 42, "st_1", models.OrderReady, page)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(11), total)
}

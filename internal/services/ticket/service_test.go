package ticket

import (
	"context"
	"testing"

	"merchantportal/internal/models"
	"merchantportal/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockStores struct{ mock.Mock }

func (m *MockStores) GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error) {
	args := m.Called(ctx, parentID, storeID)
	s, _ := args.Get(0).(*models.MerchantStore)
	return s, args.Error(1)
}

type MockTickets struct{ mock.Mock }

func (m *MockTickets) List(ctx context.Context, parentID uint, status string) ([]models.Ticket, error) {
	args := m.Called(ctx, parentID, status)
	t, _ := args.Get(0).([]models.Ticket)
	return t, args.Error(1)
}

func (m *MockTickets) Get(ctx context.Context, parentID uint, number string) (*models.Ticket, error) {
	args := m.Called(ctx, parentID, number)
	t, _ := args.Get(0).(*models.Ticket)
	return t, args.Error(1)
}

func (m *MockTickets) Create(ctx context.Context, t *models.Ticket) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTickets) AddMessage(ctx context.Context, t *models.Ticket, msg *models.TicketMessage, status string) error {
	return m.Called(ctx, t, msg, status).Error(0)
}

func (m *MockTickets) Close(ctx context.Context, t *models.Ticket) error {
	return m.Called(ctx, t).Error(0)
}

func TestCreateTicketForStore(t *testing.T) {
	ctx := context.Background()
	stores, tickets := new(MockStores), new(MockTickets)
	stores.On("GetStore", ctx, uint(42), "st_1").Return(&models.MerchantStore{ID: 3}, nil)
	tickets.On("Create", ctx, mock.MatchedBy(func(tk *models.Ticket) bool {
		return tk.StoreID != nil && *tk.StoreID == 3 && len(tk.Messages) == 1 && tk.Messages[0].AuthorType == AuthorMerchant
	})).Return(nil)

	tk, err := NewService(stores, tickets, zap.NewNop()).Create(ctx, 42, CreateInput{
		Subject:  "Payout missing",
		Category: "payments",
		StoreID:  "st_1",
		Message:  "Yesterday's payout did not arrive",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TicketOpen, tk.Status)
	assert.Regexp(t, `^TKT-`, tk.TicketNumber)
	tickets.AssertExpectations(t)
}

func TestReplyToClosedTicket(t *testing.T) {
	ctx := context.Background()
	tickets := new(MockTickets)
	tickets.On("Get", ctx, uint(42), "TKT-1").Return(&models.Ticket{Status: models.TicketClosed}, nil)

	_, err := NewService(new(MockStores), tickets, zap.NewNop()).Reply(ctx, 42, "TKT-1", ReplyInput{Message: "hello?"})
	assert.ErrorIs(t, err, ErrTicketClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tickets := new(MockTickets)
	open := &models.Ticket{ID: 1, Status: models.TicketAnswered}
	tickets.On("Get", ctx, uint(42), "TKT-1").Return(open, nil)
	tickets.On("Close", ctx, open).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Ticket).Status = models.TicketClosed
	}).Return(nil).Once()

	svc := NewService(new(MockStores), tickets, zap.NewNop())
	_, err := svc.Close(ctx, 42, "TKT-1")
	require.NoError(t, err)
	_, err = svc.Close(ctx, 42, "TKT-1")
	require.NoError(t, err)
	tickets.AssertNumberOfCalls(t, "Close", 1)
}

func TestGetOtherMerchantsTicket(t *testing.T) {
	ctx := context.Background()
	tickets := new(MockTickets)
	tickets.On("Get", ctx, uint(7), "TKT-1").Return(nil, repositories.ErrNotFound)

	_, err := NewService(new(MockStores), tickets, zap.NewNop()).Get(ctx, 7, "TKT-1")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

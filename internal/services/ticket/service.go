// Package ticket handles merchant support requests.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories"
	"merchantportal/internal/utils"

	"go.uber.org/zap"
)

const (
	AuthorMerchant = "merchant"
	AuthorSupport  = "support"
)

var (
	ErrTicketNotFound = apperrors.New(apperrors.KindNotFound, "TICKET_NOT_FOUND", "Ticket not found")
	ErrTicketClosed   = apperrors.New(apperrors.KindConflict, "TICKET_CLOSED", "Ticket is closed")
)

type StoreResolver interface {
	GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error)
}

type CreateInput struct {
	Subject    string `json:"subject" validate:"required,max=200"`
	Category   string `json:"category" validate:"required,oneof=orders payments menu onboarding account other"`
	StoreID    string `json:"store_id" validate:"omitempty,max=64"`
	Message    string `json:"message" validate:"required,max=4000"`
	Attachment string `json:"attachment" validate:"omitempty,max=500"`
}

type ReplyInput struct {
	Message    string `json:"message" validate:"required,max=4000"`
	Attachment string `json:"attachment" validate:"omitempty,max=500"`
}

type Service struct {
	stores StoreResolver
	repo   repositories.TicketRepository
	log    *zap.Logger
}

func NewService(stores StoreResolver, repo repositories.TicketRepository, log *zap.Logger) *Service {
	return &Service{stores: stores, repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, parentID uint, in CreateInput) (*models.Ticket, error) {
	t := &models.Ticket{
		TicketNumber:     utils.NewTicketNumber(),
		MerchantParentID: parentID,
		Subject:          strings.TrimSpace(in.Subject),
		Category:         in.Category,
		Status:           models.TicketOpen,
		Messages: []models.TicketMessage{{
			AuthorType: AuthorMerchant,
			Body:       strings.TrimSpace(in.Message),
			Attachment: in.Attachment,
		}},
	}
	if in.StoreID != "" {
		store, err := s.stores.GetStore(ctx, parentID, in.StoreID)
		if err != nil {
			return nil, err
		}
		t.StoreID = &store.ID
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create ticket: %w", err))
	}
	s.log.Info("Support ticket opened", zap.String("ticket_number", t.TicketNumber), zap.Uint("merchant_parent_id", parentID))
	return t, nil
}

func (s *Service) List(ctx context.Context, parentID uint, status string) ([]models.Ticket, error) {
	tickets, err := s.repo.List(ctx, parentID, status)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return tickets, nil
}

func (s *Service) Get(ctx context.Context, parentID uint, number string) (*models.Ticket, error) {
	t, err := s.repo.Get(ctx, parentID, number)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return t, nil
}

// Reply adds a merchant message. A ticket support already answered goes back
// to OPEN.
func (s *Service) Reply(ctx context.Context, parentID uint, number string, in ReplyInput) (*models.Ticket, error) {
	t, err := s.Get(ctx, parentID, number)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TicketClosed {
		return nil, ErrTicketClosed
	}

	msg := &models.TicketMessage{
		AuthorType: AuthorMerchant,
		Body:       strings.TrimSpace(in.Message),
		Attachment: in.Attachment,
	}
	if err := s.repo.AddMessage(ctx, t, msg, models.TicketOpen); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("reply to ticket: %w", err))
	}
	return t, nil
}

// Close is idempotent.
func (s *Service) Close(ctx context.Context, parentID uint, number string) (*models.Ticket, error) {
	t, err := s.Get(ctx, parentID, number)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TicketClosed {
		return t, nil
	}
	if err := s.repo.Close(ctx, t); err != nil {
		return nil, apperrors.Internal(err)
	}
	return t, nil
}

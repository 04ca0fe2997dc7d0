package repositories

import (
	"context"
	"time"

	"merchantportal/internal/models"

	"gorm.io/gorm"
)

type TicketRepository interface {
	List(ctx context.Context, parentID uint, status string) ([]models.Ticket, error)
	Get(ctx context.Context, parentID uint, ticketNumber string) (*models.Ticket, error)
	Create(ctx context.Context, ticket *models.Ticket) error
	AddMessage(ctx context.Context, ticket *models.Ticket, msg *models.TicketMessage, status string) error
	Close(ctx context.Context, ticket *models.Ticket) error
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) List(ctx context.Context, parentID uint, status string) ([]models.Ticket, error) {
	query := r.db.WithContext(ctx).Where("merchant_parent_id = ?", parentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var tickets []models.Ticket
	err := query.Order("updated_at DESC").Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepository) Get(ctx context.Context, parentID uint, ticketNumber string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at")
		}).
		Where("ticket_number = ? AND merchant_parent_id = ?", ticketNumber, parentID).
		First(&ticket).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

// Create inserts the ticket together with its first message.
func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) AddMessage(ctx context.Context, ticket *models.Ticket, msg *models.TicketMessage, status string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg.TicketID = ticket.ID
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		if err := tx.Model(ticket).Update("status", status).Error; err != nil {
			return err
		}
		ticket.Status = status
		ticket.Messages = append(ticket.Messages, *msg)
		return nil
	})
}

func (r *ticketRepository) Close(ctx context.Context, ticket *models.Ticket) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Model(ticket).Updates(map[string]interface{}{
		"status":    models.TicketClosed,
		"closed_at": now,
	}).Error
	if err != nil {
		return err
	}
	ticket.Status = models.TicketClosed
	ticket.ClosedAt = &now
	return nil
}

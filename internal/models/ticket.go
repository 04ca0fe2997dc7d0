package models

import (
	"time"
)

const (
	TicketOpen     = "OPEN"
	TicketAnswered = "ANSWERED"
	TicketClosed   = "CLOSED"
)

// Ticket is a support request raised by a merchant, optionally about one store.
type Ticket struct {
	ID               uint            `gorm:"primarykey" json:"-"`
	TicketNumber     string          `gorm:"uniqueIndex;not null" json:"ticket_number"`
	MerchantParentID uint            `gorm:"index;not null" json:"-"`
	StoreID          *uint           `json:"-"`
	Subject          string          `gorm:"not null" json:"subject"`
	Category         string          `json:"category"`
	Status           string          `gorm:"default:'OPEN';index" json:"status"`
	Messages         []TicketMessage `gorm:"foreignKey:TicketID" json:"messages,omitempty"`
	ClosedAt         *time.Time      `json:"closed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type TicketMessage struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	TicketID   uint      `gorm:"index;not null" json:"-"`
	AuthorType string    `gorm:"not null" json:"author_type"` // merchant or support
	Body       string    `gorm:"type:text;not null" json:"body"`
	Attachment string    `json:"attachment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

package models

import (
	"time"
)

// Order statuses, in the order a store moves through them.
const (
	OrderPlaced    = "PLACED"
	OrderAccepted  = "ACCEPTED"
	OrderPreparing = "PREPARING"
	OrderReady     = "READY"
	OrderCompleted = "COMPLETED"
	OrderCancelled = "CANCELLED"
)

type Order struct {
	ID             uint        `gorm:"primarykey" json:"-"`
	OrderID        string      `gorm:"uniqueIndex;not null" json:"order_id"`
	StoreID        uint        `gorm:"index;not null" json:"-"`
	CustomerName   string      `json:"customer_name"`
	CustomerPhone  string      `json:"customer_phone"`
	Status         string      `gorm:"default:'PLACED';index" json:"status"`
	TotalPaise     int64       `gorm:"not null" json:"total_paise"`
	Notes          string      `json:"notes,omitempty"`
	CancelReason   string      `json:"cancel_reason,omitempty"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;references:ID" json:"items,omitempty"`
	StatusChangeAt time.Time   `json:"status_changed_at"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	OrderID    uint   `gorm:"index;not null" json:"-"`
	MenuItemID uint   `json:"-"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PricePaise int64  `json:"price_paise"`
}

// IsTerminal reports whether no further transitions are allowed.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderCompleted || o.Status == OrderCancelled
}

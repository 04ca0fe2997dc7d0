package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID          uint           `gorm:"primarykey" json:"-"`
	ItemID      string         `gorm:"uniqueIndex;not null" json:"item_id"`
	StoreID     uint           `gorm:"index;not null" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Category    string         `gorm:"index" json:"category"`
	PricePaise  int64          `gorm:"not null" json:"price_paise"`
	IsVeg       bool           `json:"is_veg"`
	IsAvailable bool           `gorm:"default:true" json:"is_available"`
	ImageKey    string         `json:"image_key,omitempty"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Offer is a store promotion with a per-day redemption cap. UsedToday is
// reset by the limits cron.
type Offer struct {
	ID            uint       `gorm:"primarykey" json:"-"`
	OfferID       string     `gorm:"uniqueIndex;not null" json:"offer_id"`
	StoreID       uint       `gorm:"index;not null" json:"-"`
	Title         string     `gorm:"not null" json:"title"`
	DiscountPct   int        `json:"discount_pct"`
	MinOrderPaise int64      `json:"min_order_paise"`
	DailyLimit    int        `gorm:"default:0" json:"daily_limit"`
	UsedToday     int        `gorm:"default:0" json:"used_today"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

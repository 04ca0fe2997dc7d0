package menu

import (
	"context"
	"time"

	"merchantportal/internal/models"
)

// StoreResolver finds a store within the caller's merchant parent.
type StoreResolver interface {
	GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error)
}

type ItemInput struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Category    string   `json:"category" validate:"required,max=60"`
	PricePaise  int64    `json:"price_paise" validate:"required,gt=0"`
	IsVeg       bool     `json:"is_veg"`
	ImageKey    string   `json:"image_key" validate:"omitempty,max=500"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
}

type ItemUpdate struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Category    *string  `json:"category" validate:"omitempty,min=1,max=60"`
	PricePaise  *int64   `json:"price_paise" validate:"omitempty,gt=0"`
	IsVeg       *bool    `json:"is_veg"`
	ImageKey    *string  `json:"image_key" validate:"omitempty,max=500"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
}

type OfferInput struct {
	Title         string     `json:"title" validate:"required,max=120"`
	DiscountPct   int        `json:"discount_pct" validate:"required,min=1,max=100"`
	MinOrderPaise int64      `json:"min_order_paise" validate:"gte=0"`
	DailyLimit    int        `json:"daily_limit" validate:"gte=0"`
	ValidUntil    *time.Time `json:"valid_until"`
}

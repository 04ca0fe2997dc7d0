// Package menu manages a store's menu items and offers.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories"
	"merchantportal/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound  = apperrors.New(apperrors.KindNotFound, "ITEM_NOT_FOUND", "Menu item not found")
	ErrOfferNotFound = apperrors.New(apperrors.KindNotFound, "OFFER_NOT_FOUND", "Offer not found")
	ErrOfferExpired  = apperrors.New(apperrors.KindValidation, "OFFER_EXPIRED", "valid_until must be in the future")
)

type Service struct {
	stores StoreResolver
	items  repositories.MenuRepository
	offers repositories.OfferRepository
	log    *zap.Logger
}

func NewService(stores StoreResolver, items repositories.MenuRepository, offers repositories.OfferRepository, log *zap.Logger) *Service {
	return &Service{stores: stores, items: items, offers: offers, log: log}
}

func (s *Service) ListItems(ctx context.Context, parentID uint, storeID, category string) ([]models.MenuItem, error) {
	store, err := s.stores.GetStore(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx, store.ID, category)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (s *Service) CreateItem(ctx context.Context, parentID uint, storeID string, in ItemInput) (*models.MenuItem, error) {
	store, err := s.stores.GetStore(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		ItemID:      utils.NewPublicID("itm"),
		StoreID:     store.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		PricePaise:  in.PricePaise,
		IsVeg:       in.IsVeg,
		IsAvailable: true,
		ImageKey:    in.ImageKey,
		Tags:        normalizeTags(in.Tags),
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create menu item: %w", err))
	}
	return item, nil
}

func (s *Service) item(ctx context.Context, parentID uint, storeID, itemID string) (*models.MenuItem, error) {
	store, err := s.stores.GetStore(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.Get(ctx, store.ID, itemID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, parentID uint, storeID, itemID string, in ItemUpdate) (*models.MenuItem, error) {
	item, err := s.item(ctx, parentID, storeID, itemID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
		fields["name"] = item.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
		fields["description"] = item.Description
	}
	if in.Category != nil {
		item.Category = strings.TrimSpace(*in.Category)
		fields["category"] = item.Category
	}
	if in.PricePaise != nil {
		item.PricePaise = *in.PricePaise
		fields["price_paise"] = item.PricePaise
	}
	if in.IsVeg != nil {
		item.IsVeg = *in.IsVeg
		fields["is_veg"] = item.IsVeg
	}
	if in.ImageKey != nil {
		item.ImageKey = *in.ImageKey
		fields["image_key"] = item.ImageKey
	}
	if in.Tags != nil {
		item.Tags = normalizeTags(in.Tags)
		fields["tags"] = item.Tags
	}
	if len(fields) == 0 {
		return nil, apperrors.Validation("no fields to update")
	}

	if err := s.items.Update(ctx, item, fields); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("update menu item: %w", err))
	}
	return item, nil
}

func (s *Service) SetAvailability(ctx context.Context, parentID uint, storeID, itemID string, available bool) (*models.MenuItem, error) {
	item, err := s.item(ctx, parentID, storeID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, item, map[string]interface{}{"is_available": available}); err != nil {
		return nil, apperrors.Internal(err)
	}
	item.IsAvailable = available
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, parentID uint, storeID, itemID string) error {
	item, err := s.item(ctx, parentID, storeID, itemID)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, item); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ListOffers(ctx context.Context, parentID uint, storeID string) ([]models.Offer, error) {
	store, err := s.stores.GetStore(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}
	offers, err := s.offers.List(ctx, store.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return offers, nil
}

func (s *Service) CreateOffer(ctx context.Context, parentID uint, storeID string, in OfferInput) (*models.Offer, error) {
	if in.ValidUntil != nil && !in.ValidUntil.After(time.Now()) {
		return nil, ErrOfferExpired
	}
	store, err := s.stores.GetStore(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}

	offer := &models.Offer{
		OfferID:       utils.NewPublicID("off"),
		StoreID:       store.ID,
		Title:         strings.TrimSpace(in.Title),
		DiscountPct:   in.DiscountPct,
		MinOrderPaise: in.MinOrderPaise,
		DailyLimit:    in.DailyLimit,
		IsActive:      true,
		ValidUntil:    in.ValidUntil,
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create offer: %w", err))
	}
	return offer, nil
}

func (s *Service) DeleteOffer(ctx context.Context, parentID uint, storeID, offerID string) error {
	store, err := s.stores.GetStore(ctx, parentID, storeID)
	if err != nil {
		return err
	}
	offer, err := s.offers.Get(ctx, store.ID, offerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrOfferNotFound
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.offers.Delete(ctx, offer); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// ResetDailyLimits zeroes every offer's used_today counter. Offers already at
// zero are not rewritten, so repeated runs change nothing.
func (s *Service) ResetDailyLimits(ctx context.Context) (int64, error) {
	n, err := s.offers.ResetDailyUsage(ctx)
	if err != nil {
		return 0, apperrors.Internal(fmt.Errorf("reset offer usage: %w", err))
	}
	s.log.Info("Offer daily usage reset", zap.Int64("offers", n))
	return n, nil
}

func normalizeTags(tags []string) pq.StringArray {
	out := pq.StringArray{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

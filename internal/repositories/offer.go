package repositories

import (
	"context"

	"merchantportal/internal/models"

	"gorm.io/gorm"
)

type OfferRepository interface {
	List(ctx context.Context, storeID uint) ([]models.Offer, error)
	Get(ctx context.Context, storeID uint, offerID string) (*models.Offer, error)
	Create(ctx context.Context, offer *models.Offer) error
	Delete(ctx context.Context, offer *models.Offer) error
	// ResetDailyUsage zeroes used_today where it is non-zero and returns the
	// number of offers touched.
	ResetDailyUsage(ctx context.Context) (int64, error)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) List(ctx context.Context, storeID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

func (r *offerRepository) Get(ctx context.Context, storeID uint, offerID string) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("offer_id = ? AND store_id = ?", offerID, storeID).
		First(&offer).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &offer, nil
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *offerRepository) Delete(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Delete(offer).Error
}

func (r *offerRepository) ResetDailyUsage(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("used_today <> 0").
		Update("used_today", 0)
	return res.RowsAffected, res.Error
}

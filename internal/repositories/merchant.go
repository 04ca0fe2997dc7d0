package repositories

import (
	"context"
	"errors"

	"merchantportal/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository lookup that matches no row.
var ErrNotFound = errors.New("record not found")

type MerchantRepository interface {
	GetParentByID(ctx context.Context, id uint) (*models.MerchantParent, error)
	FindParentByPhone(ctx context.Context, normalizedPhone string) (*models.MerchantParent, error)
	FindParentByEmail(ctx context.Context, normalizedEmail string) (*models.MerchantParent, error)
	CreateParent(ctx context.Context, parent *models.MerchantParent) error
	LinkAuthUser(ctx context.Context, parentID uint, authUserID string) error

	ListStoresByParent(ctx context.Context, parentID uint) ([]models.MerchantStore, error)
	GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error)
	CreateStore(ctx context.Context, store *models.MerchantStore) error
	UpdateStore(ctx context.Context, store *models.MerchantStore, fields map[string]interface{}) error
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{
		db: db,
	}
}

func (r *merchantRepository) GetParentByID(ctx context.Context, id uint) (*models.MerchantParent, error) {
	var parent models.MerchantParent
	if err := r.db.WithContext(ctx).First(&parent, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &parent, nil
}

func (r *merchantRepository) FindParentByPhone(ctx context.Context, normalizedPhone string) (*models.MerchantParent, error) {
	var parent models.MerchantParent
	err := r.db.WithContext(ctx).
		Where("phone_normalized = ?", normalizedPhone).
		First(&parent).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &parent, nil
}

func (r *merchantRepository) FindParentByEmail(ctx context.Context, normalizedEmail string) (*models.MerchantParent, error) {
	var parent models.MerchantParent
	err := r.db.WithContext(ctx).
		Where("email_normalized = ?", normalizedEmail).
		Order("id").
		First(&parent).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &parent, nil
}

func (r *merchantRepository) CreateParent(ctx context.Context, parent *models.MerchantParent) error {
	return r.db.WithContext(ctx).Create(parent).Error
}

func (r *merchantRepository) LinkAuthUser(ctx context.Context, parentID uint, authUserID string) error {
	return r.db.WithContext(ctx).Model(&models.MerchantParent{}).
		Where("id = ? AND (auth_user_id IS NULL OR auth_user_id = '')", parentID).
		Update("auth_user_id", authUserID).Error
}

func (r *merchantRepository) ListStoresByParent(ctx context.Context, parentID uint) ([]models.MerchantStore, error) {
	var stores []models.MerchantStore
	err := r.db.WithContext(ctx).
		Where("merchant_parent_id = ?", parentID).
		Order("created_at").
		Find(&stores).Error
	return stores, err
}

// GetStore resolves a public store id within one parent, so a caller can
// never reach another merchant's store.
func (r *merchantRepository) GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error) {
	var store models.MerchantStore
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND merchant_parent_id = ?", storeID, parentID).
		First(&store).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &store, nil
}

func (r *merchantRepository) CreateStore(ctx context.Context, store *models.MerchantStore) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *merchantRepository) UpdateStore(ctx context.Context, store *models.MerchantStore, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(store).Updates(fields).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

package repositories

import (
	"context"

	"merchantportal/internal/models"

	"gorm.io/gorm"
)

type MenuRepository interface {
	List(ctx context.Context, storeID uint, category string) ([]models.MenuItem, error)
	Get(ctx context.Context, storeID uint, itemID string) (*models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, item *models.MenuItem, fields map[string]interface{}) error
	Delete(ctx context.Context, item *models.MenuItem) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) List(ctx context.Context, storeID uint, category string) ([]models.MenuItem, error) {
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var items []models.MenuItem
	err := query.Order("category, name").Find(&items).Error
	return items, err
}

func (r *menuRepository) Get(ctx context.Context, storeID uint, itemID string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND store_id = ?", itemID, storeID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *menuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *menuRepository) Update(ctx context.Context, item *models.MenuItem, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(item).Updates(fields).Error
}

func (r *menuRepository) Delete(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Delete(item).Error
}

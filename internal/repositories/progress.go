package repositories

import (
	"context"

	"merchantportal/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	FindOpenByParent(ctx context.Context, parentID uint) (*models.RegistrationProgress, error)
	ListOpen(ctx context.Context) ([]models.RegistrationProgress, error)
	// MarkCompleted reports whether this call changed the row.
	MarkCompleted(ctx context.Context, id uint) (bool, error)
	SaveStep(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error)
}

type progressRepository struct {
	db     *gorm.DB
	saveTx func(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error)
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	r := &progressRepository{db: db}
	r.saveTx = r.saveStep
	return r
}

func openScope(db *gorm.DB) *gorm.DB {
	return db.Where("store_id IS NULL AND registration_status <> ?", models.RegistrationCompleted)
}

func (r *progressRepository) FindOpenByParent(ctx context.Context, parentID uint) (*models.RegistrationProgress, error) {
	var p models.RegistrationProgress
	err := r.db.WithContext(ctx).
		Scopes(openScope).
		Where("merchant_parent_id = ?", parentID).
		Order("updated_at DESC").
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *progressRepository) ListOpen(ctx context.Context) ([]models.RegistrationProgress, error) {
	var rows []models.RegistrationProgress
	err := r.db.WithContext(ctx).
		Scopes(openScope).
		Order("id").
		Find(&rows).Error
	return rows, err
}

func (r *progressRepository) MarkCompleted(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.RegistrationProgress{}).
		Where("id = ? AND registration_status <> ?", id, models.RegistrationCompleted).
		Update("registration_status", models.RegistrationCompleted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SaveStep updates the parent's open row or creates it. An existing row is
// locked while it is merged. Two first saves can both reach the insert; the
// loser hits the open-row unique index and is retried once as an update.
func (r *progressRepository) SaveStep(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error) {
	saved, err := r.saveTx(ctx, parentID, step, data)
	if IsUniqueViolation(err) {
		saved, err = r.saveTx(ctx, parentID, step, data)
	}
	return saved, err
}

func (r *progressRepository) saveStep(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error) {
	var saved models.RegistrationProgress
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.RegistrationProgress
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(openScope).
			Where("merchant_parent_id = ?", parentID).
			First(&existing).Error
		if err != nil && notFound(err) != ErrNotFound {
			return err
		}

		if err == nil {
			merged := models.JSON{}
			for k, v := range existing.FormData {
				merged[k] = v
			}
			for k, v := range data {
				merged[k] = v
			}
			if step < existing.CurrentStep {
				step = existing.CurrentStep
			}
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"current_step": step,
				"form_data":    merged,
			}).Error; err != nil {
				return err
			}
			existing.CurrentStep = step
			existing.FormData = merged
			saved = existing
			return nil
		}

		saved = models.RegistrationProgress{
			MerchantParentID:   parentID,
			CurrentStep:        step,
			RegistrationStatus: models.RegistrationInProgress,
			FormData:           data,
		}
		return tx.Create(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

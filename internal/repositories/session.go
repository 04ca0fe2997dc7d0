package repositories

import (
	"context"
	"errors"
	"time"

	"merchantportal/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type DeviceSessionRepository interface {
	// Activate ends every active session on the device and records a new one.
	Activate(ctx context.Context, session *models.DeviceSession) error
	Deactivate(ctx context.Context, sessionID string) error
	TouchActivity(ctx context.Context, sessionID string, at time.Time) error
	GetActive(ctx context.Context, sessionID string) (*models.DeviceSession, error)
}

type deviceSessionRepository struct {
	db *gorm.DB
	// activateTx runs one deactivate-then-insert transaction.
	activateTx func(ctx context.Context, session *models.DeviceSession) error
}

func NewDeviceSessionRepository(db *gorm.DB) DeviceSessionRepository {
	r := &deviceSessionRepository{db: db}
	r.activateTx = r.activate
	return r
}

func (r *deviceSessionRepository) Activate(ctx context.Context, session *models.DeviceSession) error {
	err := r.activateTx(ctx, session)
	if IsUniqueViolation(err) {
		// A concurrent login on the same device won the insert; its row is
		// deactivated by this second attempt.
		session.ID = 0
		err = r.activateTx(ctx, session)
	}
	return err
}

func (r *deviceSessionRepository) activate(ctx context.Context, session *models.DeviceSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.DeviceSession{}).
			Where("device_id = ? AND is_active", session.DeviceID).
			Updates(map[string]interface{}{"is_active": false, "ended_at": now}).Error; err != nil {
			return err
		}

		session.IsActive = true
		if session.LastActivityAt.IsZero() {
			session.LastActivityAt = now
		}
		return tx.Create(session).Error
	})
}

func (r *deviceSessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Model(&models.DeviceSession{}).
		Where("session_id = ? AND is_active", sessionID).
		Updates(map[string]interface{}{"is_active": false, "ended_at": time.Now()}).Error
}

func (r *deviceSessionRepository) TouchActivity(ctx context.Context, sessionID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.DeviceSession{}).
		Where("session_id = ? AND is_active", sessionID).
		Update("last_activity_at", at).Error
}

func (r *deviceSessionRepository) GetActive(ctx context.Context, sessionID string) (*models.DeviceSession, error) {
	var s models.DeviceSession
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND is_active", sessionID).
		First(&s).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

package onboarding

import (
	"context"

	"merchantportal/internal/models"
)

// StoreLister is the part of the merchant repository the reconciler reads.
type StoreLister interface {
	ListStoresByParent(ctx context.Context, parentID uint) ([]models.MerchantStore, error)
}

// ProgressStore persists registration progress rows.
type ProgressStore interface {
	FindOpenByParent(ctx context.Context, parentID uint) (*models.RegistrationProgress, error)
	ListOpen(ctx context.Context) ([]models.RegistrationProgress, error)
	MarkCompleted(ctx context.Context, id uint) (bool, error)
	SaveStep(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error)
}

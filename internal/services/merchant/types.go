package merchant

import (
	"context"

	"merchantportal/internal/models"
)

// Resolution is the authorization decision for an authenticated identity.
// IsValid is false whenever Err is set.
type Resolution struct {
	IsValid          bool
	MerchantParentID uint
	Err              error
}

// ParentLookup is what the registration wizard needs to resume.
type ParentLookup struct {
	Parent   *models.MerchantParent       `json:"parent"`
	Stores   []models.MerchantStore       `json:"stores"`
	Progress *models.RegistrationProgress `json:"progress"`
}

// DraftReader applies read-time reconciliation to a parent's progress row.
type DraftReader interface {
	OpenDraftForStores(ctx context.Context, parentID uint, stores []models.MerchantStore) (*models.RegistrationProgress, error)
}

type CreateParentInput struct {
	LegalName   string `json:"legal_name" validate:"required,max=120"`
	DisplayName string `json:"display_name" validate:"omitempty,max=120"`
	OwnerName   string `json:"owner_name" validate:"required,max=120"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"required,phone"`
}

type CreateStoreInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	AddressLine string `json:"address_line" validate:"omitempty,max=500"`
	City        string `json:"city" validate:"omitempty,max=120"`
	Pincode     string `json:"pincode" validate:"omitempty,pincode"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Registration statuses for a merchant parent and its progress rows.
const (
	RegistrationInProgress = "IN_PROGRESS"
	RegistrationCompleted  = "COMPLETED"
)

// Store approval statuses. Only back-office tooling moves a store past
// UNDER_VERIFICATION.
const (
	ApprovalDraft             = "DRAFT"
	ApprovalUnderVerification = "UNDER_VERIFICATION"
	ApprovalApproved          = "APPROVED"
	ApprovalRejected          = "REJECTED"
)

// MerchantParent is the business owner that registers and owns stores.
// Rows are never hard-deleted; IsActive carries the lifecycle.
type MerchantParent struct {
	ID                 uint   `gorm:"primarykey" json:"id"`
	LegalName          string `gorm:"not null" json:"legal_name"`
	DisplayName        string `json:"display_name"`
	OwnerName          string `gorm:"not null" json:"owner_name"`
	Email              string `json:"email"`
	EmailNormalized    string `gorm:"index" json:"-"`
	Phone              string `gorm:"not null" json:"phone"`
	PhoneNormalized    string `gorm:"uniqueIndex;size:10;not null" json:"-"`
	IsActive           bool   `gorm:"default:true" json:"is_active"`
	RegistrationStatus string `gorm:"default:'IN_PROGRESS'" json:"registration_status"`
	AuthUserID         string `gorm:"index" json:"-"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Stores []MerchantStore `gorm:"foreignKey:MerchantParentID" json:"stores,omitempty"`
}

// MerchantStore is one storefront of a parent.
type MerchantStore struct {
	ID               uint   `gorm:"primarykey" json:"-"`
	StoreID          string `gorm:"uniqueIndex;not null" json:"store_id"`
	MerchantParentID uint   `gorm:"index;not null" json:"merchant_parent_id"`
	Name             string `gorm:"not null" json:"name"`
	ApprovalStatus   string `gorm:"default:'DRAFT';index" json:"approval_status"`
	OnboardingStep   int    `gorm:"default:1" json:"onboarding_step"`
	IsCompleted      bool   `gorm:"default:false" json:"is_completed"`

	AddressLine     string `json:"address_line"`
	City            string `json:"city"`
	Pincode         string `json:"pincode"`
	OpeningTime     string `json:"opening_time"`
	ClosingTime     string `json:"closing_time"`
	AcceptingOrders bool   `gorm:"default:false" json:"accepting_orders"`
	LogoKey         string `json:"logo_key"`
	BannerKey       string `json:"banner_key"`

	BankAccountHolder    string `json:"bank_account_holder,omitempty"`
	BankAccountEncrypted string `json:"-"`
	BankAccountLast4     string `json:"bank_account_last4,omitempty"`
	BankIFSC             string `json:"bank_ifsc,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RegistrationProgress tracks the onboarding wizard before a store exists or
// while stores are still drafts. At most one OPEN row per parent.
type RegistrationProgress struct {
	ID                 uint   `gorm:"primarykey" json:"id"`
	MerchantParentID   uint   `gorm:"index;not null" json:"merchant_parent_id"`
	StoreID            *uint  `json:"store_id"`
	CurrentStep        int    `gorm:"default:1" json:"current_step"`
	RegistrationStatus string `gorm:"default:'IN_PROGRESS';index" json:"registration_status"`
	FormData           JSON   `gorm:"type:jsonb" json:"form_data"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (RegistrationProgress) TableName() string {
	return "registration_progress"
}

// IsOpen reports whether the row still counts as an open onboarding.
func (p *RegistrationProgress) IsOpen() bool {
	return p.StoreID == nil && p.RegistrationStatus != RegistrationCompleted
}

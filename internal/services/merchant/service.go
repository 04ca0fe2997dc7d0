package merchant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories"
	"merchantportal/internal/utils"

	"go.uber.org/zap"
)

type Service struct {
	repo      repositories.MerchantRepository
	drafts    DraftReader
	finalStep int
	log       *zap.Logger
}

func NewService(repo repositories.MerchantRepository, drafts DraftReader, finalStep int, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		drafts:    drafts,
		finalStep: finalStep,
		log:       log,
	}
}

// NormalizePhone keeps the last ten digits, so +91, 91 and bare numbers
// collapse to one form.
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, phone)
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResolveByCredentials maps an identity to its merchant parent. Anything other
// than an active match is a failed resolution.
func (s *Service) ResolveByCredentials(ctx context.Context, email, phone string) Resolution {
	normalizedPhone := NormalizePhone(phone)
	normalizedEmail := NormalizeEmail(email)
	if len(normalizedPhone) != 10 && normalizedEmail == "" {
		return Resolution{Err: ErrMerchantNotFound}
	}

	var parent *models.MerchantParent
	var err error = repositories.ErrNotFound
	if len(normalizedPhone) == 10 {
		parent, err = s.repo.FindParentByPhone(ctx, normalizedPhone)
	}
	if errors.Is(err, repositories.ErrNotFound) && normalizedEmail != "" {
		parent, err = s.repo.FindParentByEmail(ctx, normalizedEmail)
	}

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return Resolution{Err: ErrMerchantNotFound}
	case err != nil:
		s.log.Error("Merchant lookup failed", zap.Error(err))
		return Resolution{Err: apperrors.Internal(err)}
	case !parent.IsActive:
		return Resolution{MerchantParentID: parent.ID, Err: ErrMerchantInactive}
	}
	return Resolution{IsValid: true, MerchantParentID: parent.ID}
}

// ResolveParentByPhone loads a parent with its stores and the progress row the
// wizard should resume from, if any.
func (s *Service) ResolveParentByPhone(ctx context.Context, phone string) (*ParentLookup, error) {
	normalized := NormalizePhone(phone)
	if len(normalized) != 10 {
		return nil, apperrors.Validation("phone must contain 10 digits")
	}

	parent, err := s.repo.FindParentByPhone(ctx, normalized)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrMerchantNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("find parent: %w", err))
	}

	stores, err := s.repo.ListStoresByParent(ctx, parent.ID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list stores: %w", err))
	}

	progress, err := s.drafts.OpenDraftForStores(ctx, parent.ID, stores)
	if err != nil {
		return nil, err
	}

	return &ParentLookup{Parent: parent, Stores: stores, Progress: progress}, nil
}

func (s *Service) GetParent(ctx context.Context, parentID uint) (*models.MerchantParent, error) {
	parent, err := s.repo.GetParentByID(ctx, parentID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrMerchantNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return parent, nil
}

// CreateParent registers a new merchant parent. The caller must already have
// verified the phone number.
func (s *Service) CreateParent(ctx context.Context, in CreateParentInput) (*models.MerchantParent, error) {
	normalized := NormalizePhone(in.Phone)
	if len(normalized) != 10 {
		return nil, apperrors.Validation("phone must contain 10 digits")
	}

	_, err := s.repo.FindParentByPhone(ctx, normalized)
	if err == nil {
		return nil, ErrPhoneTaken
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	parent := &models.MerchantParent{
		LegalName:          strings.TrimSpace(in.LegalName),
		DisplayName:        strings.TrimSpace(in.DisplayName),
		OwnerName:          strings.TrimSpace(in.OwnerName),
		Email:              strings.TrimSpace(in.Email),
		EmailNormalized:    NormalizeEmail(in.Email),
		Phone:              strings.TrimSpace(in.Phone),
		PhoneNormalized:    normalized,
		IsActive:           true,
		RegistrationStatus: models.RegistrationInProgress,
	}
	if parent.DisplayName == "" {
		parent.DisplayName = parent.LegalName
	}

	if err := s.repo.CreateParent(ctx, parent); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, ErrPhoneTaken
		}
		return nil, apperrors.Internal(fmt.Errorf("create parent: %w", err))
	}

	s.log.Info("Merchant parent registered", zap.Uint("merchant_parent_id", parent.ID))
	return parent, nil
}

func (s *Service) ListStores(ctx context.Context, parentID uint) ([]models.MerchantStore, error) {
	stores, err := s.repo.ListStoresByParent(ctx, parentID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stores, nil
}

func (s *Service) GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error) {
	store, err := s.repo.GetStore(ctx, parentID, storeID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return store, nil
}

// CreateStore adds a DRAFT store at step 1. The parent's progress row stays
// open until reconciliation sees every store complete.
func (s *Service) CreateStore(ctx context.Context, parentID uint, in CreateStoreInput) (*models.MerchantStore, error) {
	if _, err := s.GetParent(ctx, parentID); err != nil {
		return nil, err
	}

	store := &models.MerchantStore{
		StoreID:          utils.NewPublicID("st"),
		MerchantParentID: parentID,
		Name:             strings.TrimSpace(in.Name),
		ApprovalStatus:   models.ApprovalDraft,
		OnboardingStep:   1,
		AddressLine:      in.AddressLine,
		City:             in.City,
		Pincode:          in.Pincode,
	}
	if err := s.repo.CreateStore(ctx, store); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create store: %w", err))
	}
	return store, nil
}

// AdvanceStep moves a store's onboarding forward. Reaching the final step
// completes the store and submits it for verification.
func (s *Service) AdvanceStep(ctx context.Context, parentID uint, storeID string, step int) (*models.MerchantStore, error) {
	if step < 1 || step > s.finalStep {
		return nil, apperrors.Validation(fmt.Sprintf("step must be between 1 and %d", s.finalStep))
	}

	store, err := s.GetStore(ctx, parentID, storeID)
	if err != nil {
		return nil, err
	}
	if step < store.OnboardingStep {
		return nil, ErrStepBackwards
	}

	fields := map[string]interface{}{"onboarding_step": step}
	if step >= s.finalStep {
		fields["is_completed"] = true
		if store.ApprovalStatus == models.ApprovalDraft {
			fields["approval_status"] = models.ApprovalUnderVerification
		}
	}
	if err := s.repo.UpdateStore(ctx, store, fields); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("update store step: %w", err))
	}

	store.OnboardingStep = step
	if step >= s.finalStep {
		store.IsCompleted = true
		if store.ApprovalStatus == models.ApprovalDraft {
			store.ApprovalStatus = models.ApprovalUnderVerification
		}
	}
	return store, nil
}

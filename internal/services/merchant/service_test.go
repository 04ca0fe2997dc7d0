package merchant

import (
	"context"
	"errors"
	"testing"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockMerchantRepo struct {
	mock.Mock
}

func (m *MockMerchantRepo) GetParentByID(ctx context.Context, id uint) (*models.MerchantParent, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.MerchantParent)
	return p, args.Error(1)
}

func (m *MockMerchantRepo) FindParentByPhone(ctx context.Context, phone string) (*models.MerchantParent, error) {
	args := m.Called(ctx, phone)
	p, _ := args.Get(0).(*models.MerchantParent)
	return p, args.Error(1)
}

func (m *MockMerchantRepo) FindParentByEmail(ctx context.Context, email string) (*models.MerchantParent, error) {
	args := m.Called(ctx, email)
	p, _ := args.Get(0).(*models.MerchantParent)
	return p, args.Error(1)
}

func (m *MockMerchantRepo) CreateParent(ctx context.Context, parent *models.MerchantParent) error {
	args := m.Called(ctx, parent)
	return args.Error(0)
}

func (m *MockMerchantRepo) LinkAuthUser(ctx context.Context, parentID uint, authUserID string) error {
	return m.Called(ctx, parentID, authUserID).Error(0)
}

func (m *MockMerchantRepo) ListStoresByParent(ctx context.Context, parentID uint) ([]models.MerchantStore, error) {
	args := m.Called(ctx, parentID)
	s, _ := args.Get(0).([]models.MerchantStore)
	return s, args.Error(1)
}

func (m *MockMerchantRepo) GetStore(ctx context.Context, parentID uint, storeID string) (*models.MerchantStore, error) {
	args := m.Called(ctx, parentID, storeID)
	s, _ := args.Get(0).(*models.MerchantStore)
	return s, args.Error(1)
}

func (m *MockMerchantRepo) CreateStore(ctx context.Context, store *models.MerchantStore) error {
	return m.Called(ctx, store).Error(0)
}

func (m *MockMerchantRepo) UpdateStore(ctx context.Context, store *models.MerchantStore, fields map[string]interface{}) error {
	return m.Called(ctx, store, fields).Error(0)
}

type MockDrafts struct {
	mock.Mock
}

func (m *MockDrafts) OpenDraftForStores(ctx context.Context, parentID uint, stores []models.MerchantStore) (*models.RegistrationProgress, error) {
	args := m.Called(ctx, parentID, stores)
	p, _ := args.Get(0).(*models.RegistrationProgress)
	return p, args.Error(1)
}

func TestNormalizePhone(t *testing.T) {
	for _, in := range []string{"+919876543210", "919876543210", "9876543210", "+91 98765-43210", "(+91) 98765 43210", "09876543210"} {
		assert.Equal(t, "9876543210", NormalizePhone(in), in)
	}
	assert.Equal(t, "12345", NormalizePhone("12-345"))
	assert.Equal(t, "", NormalizePhone("not a phone"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "owner@example.com", NormalizeEmail("  Owner@Example.COM "))
}

func TestResolveByCredentials(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		email     string
		phone     string
		setupMock func(*MockMerchantRepo)
		wantValid bool
		wantID    uint
		wantKind  apperrors.Kind
	}{
		{
			name:  "active by phone",
			phone: "+919876543210",
			setupMock: func(r *MockMerchantRepo) {
				r.On("FindParentByPhone", ctx, "9876543210").Return(&models.MerchantParent{ID: 42, IsActive: true}, nil)
			},
			wantValid: true,
			wantID:    42,
		},
		{
			name:  "falls back to email",
			email: " Owner@Example.com",
			phone: "9876543210",
			setupMock: func(r *MockMerchantRepo) {
				r.On("FindParentByPhone", ctx, "9876543210").Return(nil, repositories.ErrNotFound)
				r.On("FindParentByEmail", ctx, "owner@example.com").Return(&models.MerchantParent{ID: 7, IsActive: true}, nil)
			},
			wantValid: true,
			wantID:    7,
		},
		{
			name:  "inactive fails closed",
			phone: "9876543210",
			setupMock: func(r *MockMerchantRepo) {
				r.On("FindParentByPhone", ctx, "9876543210").Return(&models.MerchantParent{ID: 42, IsActive: false}, nil)
			},
			wantID:   42,
			wantKind: apperrors.KindForbidden,
		},
		{
			name:  "unknown",
			email: "nobody@example.com",
			setupMock: func(r *MockMerchantRepo) {
				r.On("FindParentByEmail", ctx, "nobody@example.com").Return(nil, repositories.ErrNotFound)
			},
			wantKind: apperrors.KindNotFound,
		},
		{
			name:      "no identifiers",
			setupMock: func(r *MockMerchantRepo) {},
			wantKind:  apperrors.KindNotFound,
		},
		{
			name:  "database down",
			phone: "9876543210",
			setupMock: func(r *MockMerchantRepo) {
				r.On("FindParentByPhone", ctx, "9876543210").Return(nil, errors.New("connection refused"))
			},
			wantKind: apperrors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockMerchantRepo)
			tt.setupMock(repo)
			svc := NewService(repo, new(MockDrafts), 9, zap.NewNop())

			res := svc.ResolveByCredentials(ctx, tt.email, tt.phone)
			assert.Equal(t, tt.wantValid, res.IsValid)
			assert.Equal(t, tt.wantID, res.MerchantParentID)
			if tt.wantValid {
				assert.NoError(t, res.Err)
			} else {
				require.Error(t, res.Err)
				assert.Equal(t, tt.wantKind, apperrors.KindOf(res.Err))
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestResolveParentByPhone(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMerchantRepo)
	drafts := new(MockDrafts)
	parent := &models.MerchantParent{ID: 42, IsActive: true}
	stores := []models.MerchantStore{{ID: 1, ApprovalStatus: models.ApprovalDraft}}
	progress := &models.RegistrationProgress{ID: 9, MerchantParentID: 42}

	repo.On("FindParentByPhone", ctx, "9876543210").Return(parent, nil)
	repo.On("ListStoresByParent", ctx, uint(42)).Return(stores, nil)
	drafts.On("OpenDraftForStores", ctx, uint(42), stores).Return(progress, nil)

	svc := NewService(repo, drafts, 9, zap.NewNop())
	lookup, err := svc.ResolveParentByPhone(ctx, "91 98765 43210")
	require.NoError(t, err)
	assert.Equal(t, parent, lookup.Parent)
	assert.Len(t, lookup.Stores, 1)
	assert.Equal(t, progress, lookup.Progress)

	_, err = svc.ResolveParentByPhone(ctx, "12345")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateParent(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate phone", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("FindParentByPhone", ctx, "9876543210").Return(&models.MerchantParent{ID: 1}, nil)
		svc := NewService(repo, new(MockDrafts), 9, zap.NewNop())

		_, err := svc.CreateParent(ctx, CreateParentInput{LegalName: "Chai Point", OwnerName: "Asha", Phone: "+919876543210"})
		assert.ErrorIs(t, err, ErrPhoneTaken)
	})

	t.Run("stores normalized contact", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("FindParentByPhone", ctx, "9876543210").Return(nil, repositories.ErrNotFound)
		repo.On("CreateParent", ctx, mock.MatchedBy(func(p *models.MerchantParent) bool {
			return p.PhoneNormalized == "9876543210" && p.EmailNormalized == "asha@chai.in" && p.IsActive && p.DisplayName == "Chai Point"
		})).Return(nil)
		svc := NewService(repo, new(MockDrafts), 9, zap.NewNop())

		parent, err := svc.CreateParent(ctx, CreateParentInput{LegalName: "Chai Point", OwnerName: "Asha", Email: "Asha@Chai.in", Phone: "+919876543210"})
		require.NoError(t, err)
		assert.Equal(t, models.RegistrationInProgress, parent.RegistrationStatus)
		repo.AssertExpectations(t)
	})
}

func TestAdvanceStep(t *testing.T) {
	ctx := context.Background()

	t.Run("final step submits for verification", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		store := &models.MerchantStore{ID: 3, StoreID: "st_1", ApprovalStatus: models.ApprovalDraft, OnboardingStep: 8}
		repo.On("GetStore", ctx, uint(42), "st_1").Return(store, nil)
		repo.On("UpdateStore", ctx, store, map[string]interface{}{
			"onboarding_step": 9,
			"is_completed":    true,
			"approval_status": models.ApprovalUnderVerification,
		}).Return(nil)
		svc := NewService(repo, new(MockDrafts), 9, zap.NewNop())

		got, err := svc.AdvanceStep(ctx, 42, "st_1", 9)
		require.NoError(t, err)
		assert.True(t, got.IsCompleted)
		assert.Equal(t, models.ApprovalUnderVerification, got.ApprovalStatus)
		repo.AssertExpectations(t)
	})

	t.Run("other merchant's store", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetStore", ctx, uint(42), "st_other").Return(nil, repositories.ErrNotFound)
		svc := NewService(repo, new(MockDrafts), 9, zap.NewNop())

		_, err := svc.AdvanceStep(ctx, 42, "st_other", 2)
		assert.ErrorIs(t, err, ErrStoreNotFound)
	})

	t.Run("out of range", func(t *testing.T) {
		svc := NewService(new(MockMerchantRepo), new(MockDrafts), 9, zap.NewNop())
		_, err := svc.AdvanceStep(ctx, 42, "st_1", 10)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("backwards", func(t *testing.T) {
		repo := new(MockMerchantRepo)
		repo.On("GetStore", ctx, uint(42), "st_1").Return(&models.MerchantStore{OnboardingStep: 5}, nil)
		svc := NewService(repo, new(MockDrafts), 9, zap.NewNop())
		_, err := svc.AdvanceStep(ctx, 42, "st_1", 3)
		assert.ErrorIs(t, err, ErrStepBackwards)
	})
}

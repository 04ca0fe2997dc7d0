package onboarding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"merchantportal/internal/models"
	"merchantportal/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStores struct {
	mu      sync.Mutex
	byOwner map[uint][]models.MerchantStore
	failFor map[uint]bool
}

func (f *fakeStores) ListStoresByParent(ctx context.Context, parentID uint) ([]models.MerchantStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[parentID] {
		return nil, errors.New("connection lost")
	}
	return append([]models.MerchantStore(nil), f.byOwner[parentID]...), nil
}

func (f *fakeStores) set(parentID uint, stores ...models.MerchantStore) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byOwner[parentID] = stores
}

type fakeProgress struct {
	mu      sync.Mutex
	rows    map[uint]*models.RegistrationProgress
	nextID  uint
	updates int
}

func newFakeProgress(rows ...models.RegistrationProgress) *fakeProgress {
	f := &fakeProgress{rows: map[uint]*models.RegistrationProgress{}, nextID: 100}
	for i := range rows {
		r := rows[i]
		f.rows[r.ID] = &r
	}
	return f
}

func (f *fakeProgress) FindOpenByParent(ctx context.Context, parentID uint) (*models.RegistrationProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.MerchantParentID == parentID && r.IsOpen() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProgress) ListOpen(ctx context.Context) ([]models.RegistrationProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RegistrationProgress
	for _, r := range f.rows {
		if r.IsOpen() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeProgress) MarkCompleted(ctx context.Context, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.RegistrationStatus == models.RegistrationCompleted {
		return false, nil
	}
	r.RegistrationStatus = models.RegistrationCompleted
	f.updates++
	return true, nil
}

func (f *fakeProgress) SaveStep(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.MerchantParentID == parentID && r.IsOpen() {
			r.CurrentStep = step
			r.FormData = data
			cp := *r
			return &cp, nil
		}
	}
	f.nextID++
	r := &models.RegistrationProgress{ID: f.nextID, MerchantParentID: parentID, CurrentStep: step, FormData: data, RegistrationStatus: models.RegistrationInProgress}
	f.rows[r.ID] = r
	cp := *r
	return &cp, nil
}

func (f *fakeProgress) status(id uint) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].RegistrationStatus
}

func openRow(id, parentID uint) models.RegistrationProgress {
	return models.RegistrationProgress{ID: id, MerchantParentID: parentID, CurrentStep: 3, RegistrationStatus: models.RegistrationInProgress}
}

func store(status string, step int) models.MerchantStore {
	return models.MerchantStore{ApprovalStatus: status, OnboardingStep: step}
}

func newReconciler(s *fakeStores, p *fakeProgress) *Reconciler {
	return NewReconciler(s, p, Config{FinalStep: 9, SweepConcurrency: 2}, zap.NewNop())
}

func TestStoreIncomplete(t *testing.T) {
	assert.True(t, StoreIncomplete(store(models.ApprovalDraft, 9), 9))
	assert.True(t, StoreIncomplete(store(models.ApprovalApproved, 8), 9))
	assert.False(t, StoreIncomplete(store(models.ApprovalApproved, 9), 9))
	assert.False(t, StoreIncomplete(store(models.ApprovalUnderVerification, 9), 9))
}

func TestSweepTwoStores(t *testing.T) {
	stores := &fakeStores{byOwner: map[uint][]models.MerchantStore{}}
	stores.set(1, store(models.ApprovalApproved, 9), store(models.ApprovalDraft, 4))
	progress := newFakeProgress(openRow(10, 1))
	r := newReconciler(stores, progress)
	ctx := context.Background()

	res, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Scanned: 1, Cleaned: 0}, res)
	assert.Equal(t, models.RegistrationInProgress, progress.status(10))

	stores.set(1, store(models.ApprovalApproved, 9), store(models.ApprovalApproved, 9))

	res, err = r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Scanned: 1, Cleaned: 1}, res)
	assert.Equal(t, models.RegistrationCompleted, progress.status(10))
}

func TestSweepIsIdempotent(t *testing.T) {
	stores := &fakeStores{byOwner: map[uint][]models.MerchantStore{}}
	stores.set(1, store(models.ApprovalApproved, 9))
	stores.set(2, store(models.ApprovalUnderVerification, 9))
	stores.set(3, store(models.ApprovalDraft, 2))
	progress := newFakeProgress(openRow(10, 1), openRow(20, 2), openRow(30, 3), openRow(40, 4))
	r := newReconciler(stores, progress)
	ctx := context.Background()

	first, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Scanned)
	assert.Equal(t, 2, first.Cleaned)
	updatesAfterFirst := progress.updates

	second, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Cleaned)
	assert.Equal(t, 2, second.Scanned)
	assert.Equal(t, updatesAfterFirst, progress.updates)

	// Parent 4 has no stores yet and stays open.
	assert.Equal(t, models.RegistrationInProgress, progress.status(40))
}

func TestSweepContinuesPastFailures(t *testing.T) {
	stores := &fakeStores{
		byOwner: map[uint][]models.MerchantStore{},
		failFor: map[uint]bool{2: true},
	}
	stores.set(1, store(models.ApprovalApproved, 9))
	stores.set(3, store(models.ApprovalApproved, 9))
	progress := newFakeProgress(openRow(10, 1), openRow(20, 2), openRow(30, 3))
	r := newReconciler(stores, progress)

	res, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Scanned: 3, Cleaned: 2, Failed: 1}, res)
	assert.Equal(t, models.RegistrationInProgress, progress.status(20))
}

func TestOpenDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("no stores keeps row visible", func(t *testing.T) {
		stores := &fakeStores{byOwner: map[uint][]models.MerchantStore{}}
		progress := newFakeProgress(openRow(10, 1))
		row, err := newReconciler(stores, progress).OpenDraft(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, uint(10), row.ID)
	})

	t.Run("draft store keeps row visible", func(t *testing.T) {
		stores := &fakeStores{byOwner: map[uint][]models.MerchantStore{}}
		stores.set(1, store(models.ApprovalApproved, 9), store(models.ApprovalDraft, 9))
		progress := newFakeProgress(openRow(10, 1))
		row, err := newReconciler(stores, progress).OpenDraft(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, row)
	})

	t.Run("complete stores hide and persist", func(t *testing.T) {
		stores := &fakeStores{byOwner: map[uint][]models.MerchantStore{}}
		stores.set(1, store(models.ApprovalApproved, 9))
		progress := newFakeProgress(openRow(10, 1))
		row, err := newReconciler(stores, progress).OpenDraft(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, row)
		assert.Equal(t, models.RegistrationCompleted, progress.status(10))
	})

	t.Run("submitted but unfinished store hides without persisting", func(t *testing.T) {
		stores := &fakeStores{byOwner: map[uint][]models.MerchantStore{}}
		stores.set(1, store(models.ApprovalUnderVerification, 6))
		progress := newFakeProgress(openRow(10, 1))
		row, err := newReconciler(stores, progress).OpenDraft(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, row)
		assert.Equal(t, models.RegistrationInProgress, progress.status(10))
	})

	t.Run("no open row", func(t *testing.T) {
		stores := &fakeStores{byOwner: map[uint][]models.MerchantStore{}}
		row, err := newReconciler(stores, newFakeProgress()).OpenDraft(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, row)
	})
}

func TestSaveStep(t *testing.T) {
	stores := &fakeStores{byOwner: map[uint][]models.MerchantStore{}}
	progress := newFakeProgress()
	r := newReconciler(stores, progress)
	ctx := context.Background()

	row, err := r.SaveStep(ctx, 7, 2, models.JSON{"legal_name": "Chai Point"})
	require.NoError(t, err)
	assert.Equal(t, 2, row.CurrentStep)

	again, err := r.SaveStep(ctx, 7, 3, models.JSON{"city": "Pune"})
	require.NoError(t, err)
	assert.Equal(t, row.ID, again.ID)

	_, err = r.SaveStep(ctx, 7, 10, nil)
	assert.Error(t, err)
	_, err = r.SaveStep(ctx, 7, 0, nil)
	assert.Error(t, err)
}

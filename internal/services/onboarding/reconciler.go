// Package onboarding keeps registration progress rows in step with the
// stores they describe.
//
// A progress row is OPEN while store_id is null and its status is not
// COMPLETED. It becomes COMPLETED once the parent has at least one store and
// no store is incomplete. The check runs when a caller reads the row and in
// bulk from Sweep.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"merchantportal/internal/apperrors"
	"merchantportal/internal/metrics"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFinalStep   = 9
	defaultConcurrency = 4
)

type Config struct {
	FinalStep        int
	SweepConcurrency int
}

type SweepResult struct {
	Scanned int `json:"scanned"`
	Cleaned int `json:"cleaned"`
	Failed  int `json:"failed"`
}

type Reconciler struct {
	stores   StoreLister
	progress ProgressStore
	cfg      Config
	log      *zap.Logger
}

func NewReconciler(stores StoreLister, progress ProgressStore, cfg Config, log *zap.Logger) *Reconciler {
	if cfg.FinalStep <= 0 {
		cfg.FinalStep = DefaultFinalStep
	}
	if cfg.SweepConcurrency <= 0 {
		cfg.SweepConcurrency = defaultConcurrency
	}
	return &Reconciler{stores: stores, progress: progress, cfg: cfg, log: log}
}

func (r *Reconciler) FinalStep() int {
	return r.cfg.FinalStep
}

// StoreIncomplete reports whether store still blocks completion of its
// parent's onboarding.
func StoreIncomplete(store models.MerchantStore, finalStep int) bool {
	return store.ApprovalStatus == models.ApprovalDraft || store.OnboardingStep < finalStep
}

// AnyIncomplete is true if a single store is incomplete.
func AnyIncomplete(stores []models.MerchantStore, finalStep int) bool {
	for _, s := range stores {
		if StoreIncomplete(s, finalStep) {
			return true
		}
	}
	return false
}

func hasDraft(stores []models.MerchantStore) bool {
	for _, s := range stores {
		if s.ApprovalStatus == models.ApprovalDraft {
			return true
		}
	}
	return false
}

// OpenDraft returns the parent's open progress row if it should still be
// shown, or nil.
func (r *Reconciler) OpenDraft(ctx context.Context, parentID uint) (*models.RegistrationProgress, error) {
	stores, err := r.stores.ListStoresByParent(ctx, parentID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list stores: %w", err))
	}
	return r.OpenDraftForStores(ctx, parentID, stores)
}

// OpenDraftForStores is OpenDraft for a caller that already loaded the
// parent's stores. A row is surfaced only when the parent has no stores yet
// or at least one store is still a draft. A row whose stores are all complete
// is persisted as COMPLETED on a best effort basis.
func (r *Reconciler) OpenDraftForStores(ctx context.Context, parentID uint, stores []models.MerchantStore) (*models.RegistrationProgress, error) {
	row, err := r.progress.FindOpenByParent(ctx, parentID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("find open progress: %w", err))
	}

	if len(stores) == 0 || hasDraft(stores) {
		return row, nil
	}

	if !AnyIncomplete(stores, r.cfg.FinalStep) {
		if _, err := r.progress.MarkCompleted(ctx, row.ID); err != nil {
			r.log.Warn("Failed to complete stale progress row",
				zap.Uint("progress_id", row.ID),
				zap.Uint("merchant_parent_id", parentID),
				zap.Error(err))
		}
	}
	return nil, nil
}

// Sweep re-evaluates every open progress row and completes the ones whose
// stores are all complete. A row that fails is counted and skipped; running
// Sweep again with no store changes cleans nothing.
func (r *Reconciler) Sweep(ctx context.Context) (SweepResult, error) {
	rows, err := r.progress.ListOpen(ctx)
	if err != nil {
		return SweepResult{}, apperrors.Internal(fmt.Errorf("list open progress: %w", err))
	}

	var cleaned, failed int64
	var g errgroup.Group
	g.SetLimit(r.cfg.SweepConcurrency)

	for i := range rows {
		row := rows[i]
		g.Go(func() error {
			changed, err := r.reconcileRow(ctx, row)
			switch {
			case err != nil:
				atomic.AddInt64(&failed, 1)
				metrics.SweepRows.WithLabelValues("failed").Inc()
				r.log.Warn("Sweep failed for progress row",
					zap.Uint("progress_id", row.ID),
					zap.Uint("merchant_parent_id", row.MerchantParentID),
					zap.Error(err))
			case changed:
				atomic.AddInt64(&cleaned, 1)
				metrics.SweepRows.WithLabelValues("cleaned").Inc()
			default:
				metrics.SweepRows.WithLabelValues("kept").Inc()
			}
			return nil
		})
	}
	_ = g.Wait()

	res := SweepResult{Scanned: len(rows), Cleaned: int(cleaned), Failed: int(failed)}
	r.log.Info("Onboarding sweep finished",
		zap.Int("scanned", res.Scanned),
		zap.Int("cleaned", res.Cleaned),
		zap.Int("failed", res.Failed))
	return res, nil
}

func (r *Reconciler) reconcileRow(ctx context.Context, row models.RegistrationProgress) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	stores, err := r.stores.ListStoresByParent(ctx, row.MerchantParentID)
	if err != nil {
		return false, err
	}
	// Zero stores means the parent is still on its first registration.
	if len(stores) == 0 || AnyIncomplete(stores, r.cfg.FinalStep) {
		return false, nil
	}
	return r.progress.MarkCompleted(ctx, row.ID)
}

// SaveStep records the wizard position and form data for the parent's open
// progress row, creating it if needed.
func (r *Reconciler) SaveStep(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error) {
	if step < 1 || step > r.cfg.FinalStep {
		return nil, apperrors.Validation(fmt.Sprintf("step must be between 1 and %d", r.cfg.FinalStep))
	}
	row, err := r.progress.SaveStep(ctx, parentID, step, data)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("save progress: %w", err))
	}
	return row, nil
}

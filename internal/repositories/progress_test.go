package repositories

import (
	"context"
	"errors"
	"testing"

	"merchantportal/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStepRetriesFirstSaveConflict(t *testing.T) {
	calls := 0
	repo := &progressRepository{
		saveTx: func(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error) {
			calls++
			if calls == 1 {
				return nil, &pgconn.PgError{Code: uniqueViolation}
			}
			return &models.RegistrationProgress{MerchantParentID: parentID, CurrentStep: step, FormData: data}, nil
		},
	}

	p, err := repo.SaveStep(context.Background(), 42, 2, models.JSON{"name": "Spice Route"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, uint(42), p.MerchantParentID)
	assert.Equal(t, 2, p.CurrentStep)
}

func TestSaveStepDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("connection reset")
	repo := &progressRepository{
		saveTx: func(ctx context.Context, parentID uint, step int, data models.JSON) (*models.RegistrationProgress, error) {
			calls++
			return nil, boom
		},
	}

	_, err := repo.SaveStep(context.Background(), 42, 2, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

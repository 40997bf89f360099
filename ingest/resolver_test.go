package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/storage"
	"github.com/quantum-builds/VinAudit/utils"
	"github.com/quantum-builds/VinAudit/utils/utilstest"
)

func TestResolveCreatesThenFinds(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewResolver(utilstest.NewLogger(t))
	key := models.DealerKey{Name: "Acme", City: "Austin", State: "TX", Zip: "73301"}

	first, err := r.ResolveDealer(ctx, db.Querier(), key)
	require.NoError(t, err)
	again, err := r.ResolveDealer(ctx, db.Querier(), key)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Equal(t, 1, countRows(t, db, "dealers"))
}

func TestResolveRereadsAfterConflict(t *testing.T) {
	r := NewResolver(utilstest.NewLogger(t))

	finds := 0
	id, err := r.resolve("dealer",
		func() (int64, error) {
			finds++
			if finds == 1 {
				return 0, storage.ErrNotFound
			}
			return 42, nil
		},
		func() (int64, error) { return 0, storage.ErrConflict },
	)

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, 2, finds)
}

func TestResolveGivesUpWhenConflictingRowVanishes(t *testing.T) {
	r := NewResolver(utilstest.NewLogger(t))

	inserts := 0
	_, err := r.resolve("vehicle model",
		func() (int64, error) { return 0, storage.ErrNotFound },
		func() (int64, error) {
			inserts++
			return 0, storage.ErrConflict
		},
	)

	var resolveErr *EntityResolutionError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, "vehicle model", resolveErr.Entity)
	assert.ErrorIs(t, err, errVanished)
	assert.Equal(t, 3, inserts)
}

func TestResolveDoesNotRetryHardErrors(t *testing.T) {
	r := NewResolver(utils.NewNopLogger())
	hard := errors.New("connection reset")

	calls := 0
	_, err := r.resolve("dealer",
		func() (int64, error) {
			calls++
			return 0, hard
		},
		func() (int64, error) { return 0, nil },
	)

	assert.ErrorIs(t, err, hard)
	assert.Equal(t, 1, calls)
	assert.Equal(t, CategoryEntityResolution, Category(err))
}

func TestMemoOnlyAfterRemember(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewResolver(utils.NewNopLogger())
	rec := &models.Record{
		Dealer:  models.DealerKey{Name: "Acme", City: "Austin", State: "TX", Zip: "73301"},
		Vehicle: models.VehicleModelKey{Make: "Kia", Model: "Soul"},
	}

	// A rolled-back resolution must not be memoised.
	err := db.WithTx(ctx, func(q storage.Querier) error {
		_, err := r.ResolveVehicleModel(ctx, q, rec.Vehicle)
		require.NoError(t, err)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, countRows(t, db, "vehicle_models"))

	var dealerID, modelID int64
	require.NoError(t, db.WithTx(ctx, func(q storage.Querier) error {
		var err error
		if dealerID, err = r.ResolveDealer(ctx, q, rec.Dealer); err != nil {
			return err
		}
		modelID, err = r.ResolveVehicleModel(ctx, q, rec.Vehicle)
		return err
	}))
	r.Remember(rec, dealerID, modelID)

	// Served from the memo: the querier is never touched.
	got, err := r.ResolveVehicleModel(ctx, nil, rec.Vehicle)
	require.NoError(t, err)
	assert.Equal(t, modelID, got)

	r.Forget()
	got, err = r.ResolveVehicleModel(ctx, db.Querier(), rec.Vehicle)
	require.NoError(t, err)
	assert.Equal(t, modelID, got)
}

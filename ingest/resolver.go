package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/storage"
	"github.com/quantum-builds/VinAudit/utils"
)

// errVanished is returned when an insert conflicted but the conflicting row
// could not be read back, which happens if its writer rolled back.
var errVanished = errors.New("conflicting row vanished before re-read")

// Resolver finds or creates the dealer and vehicle model rows a record
// references. IDs are memoised only after the record's transaction commits,
// so a rolled-back insert never leaks an ID into later records.
type Resolver struct {
	retry *utils.RetryConfig
	ids   *cache.Cache
}

// NewResolver creates a Resolver with an empty ID memo.
func NewResolver(logger *utils.Logger) *Resolver {
	return &Resolver{
		retry: &utils.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   10 * time.Millisecond,
			Logger:      logger,
			ShouldRetry: func(err error) bool { return errors.Is(err, errVanished) },
		},
		// No expiry and no janitor goroutine: dimension rows are never
		// deleted by ingestion.
		ids: cache.New(cache.NoExpiration, 0),
	}
}

// ResolveDealer returns the ID of the dealer with key k, creating it inside q
// when it does not exist.
func (r *Resolver) ResolveDealer(ctx context.Context, q storage.Querier, k models.DealerKey) (int64, error) {
	memoKey := "dealer\x1e" + k.String()
	if id, ok := r.ids.Get(memoKey); ok {
		return id.(int64), nil
	}
	return r.resolve("dealer",
		func() (int64, error) { return storage.FindDealer(ctx, q, k) },
		func() (int64, error) { return storage.InsertDealer(ctx, q, k) },
	)
}

// ResolveVehicleModel returns the ID of the make/model pair, creating it
// inside q when it does not exist.
func (r *Resolver) ResolveVehicleModel(ctx context.Context, q storage.Querier, k models.VehicleModelKey) (int64, error) {
	memoKey := "model\x1e" + k.String()
	if id, ok := r.ids.Get(memoKey); ok {
		return id.(int64), nil
	}
	return r.resolve("vehicle model",
		func() (int64, error) { return storage.FindVehicleModel(ctx, q, k) },
		func() (int64, error) { return storage.InsertVehicleModel(ctx, q, k) },
	)
}

// Remember memoises the IDs of a committed record.
func (r *Resolver) Remember(rec *models.Record, dealerID, modelID int64) {
	r.ids.SetDefault("dealer\x1e"+rec.Dealer.String(), dealerID)
	r.ids.SetDefault("model\x1e"+rec.Vehicle.String(), modelID)
}

// Forget drops every memoised ID.
func (r *Resolver) Forget() {
	r.ids.Flush()
}

// resolve looks the key up, inserts it when absent, and on a unique conflict
// re-reads the row another writer created.
func (r *Resolver) resolve(entity string, find, insert func() (int64, error)) (int64, error) {
	var id int64
	err := r.retry.Do("resolve "+entity, func() error {
		found, err := find()
		if err == nil {
			id = found
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		created, err := insert()
		if err == nil {
			id = created
			return nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return err
		}

		found, err = find()
		if errors.Is(err, storage.ErrNotFound) {
			return errVanished
		}
		if err != nil {
			return err
		}
		id = found
		return nil
	})
	if err != nil {
		return 0, &EntityResolutionError{Entity: entity, Err: err}
	}
	return id, nil
}

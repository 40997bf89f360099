package ingest

import (
	"context"

	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/storage"
)

// UpsertRecord writes the dealer website and the listing of a resolved
// record inside q. It reports whether the listing was newly created.
func UpsertRecord(ctx context.Context, q storage.Querier, rec *models.Record, dealerID, modelID int64) (bool, error) {
	if rec.Website != nil {
		err := storage.UpsertDealerWebsite(ctx, q, models.DealerWebsite{DealerID: dealerID, URL: *rec.Website})
		if err != nil {
			return false, &PersistenceError{Op: "upsert dealer website", Err: err}
		}
	}

	exists, err := storage.ListingExists(ctx, q, rec.Listing.VIN)
	if err != nil {
		return false, &PersistenceError{Op: "check listing", Err: err}
	}

	listing := rec.Listing
	listing.DealerID = dealerID
	listing.ModelID = modelID
	if err := storage.UpsertListing(ctx, q, &listing); err != nil {
		return false, &PersistenceError{Op: "upsert listing", Err: err}
	}
	return !exists, nil
}

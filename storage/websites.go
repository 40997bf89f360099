package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quantum-builds/VinAudit/models"
)

// UpsertDealerWebsite stores url for the dealer, replacing any previous URL.
func UpsertDealerWebsite(ctx context.Context, q Querier, w models.DealerWebsite) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO dealer_websites (dealer_id, url)
		VALUES ($1, $2)
		ON CONFLICT (dealer_id) DO UPDATE SET url = excluded.url
	`, w.DealerID, w.URL)
	if err != nil {
		return fmt.Errorf("storage: upsert dealer website: %w", err)
	}
	return nil
}

// GetDealerWebsite loads the website of a dealer.
func GetDealerWebsite(ctx context.Context, q Querier, dealerID int64) (*models.DealerWebsite, error) {
	w := &models.DealerWebsite{DealerID: dealerID}
	err := q.QueryRowContext(ctx, `SELECT url FROM dealer_websites WHERE dealer_id = $1`, dealerID).Scan(&w.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get dealer website: %w", err)
	}
	return w, nil
}

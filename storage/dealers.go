package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quantum-builds/VinAudit/models"
)

// FindDealer returns the ID of the dealer with the given natural key.
func FindDealer(ctx context.Context, q Querier, k models.DealerKey) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		SELECT dealer_id FROM dealers
		WHERE name = $1 AND street = $2 AND city = $3 AND state = $4 AND zip = $5
	`, k.Name, k.Street, k.City, k.State, k.Zip).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("storage: find dealer: %w", err)
	}
	return id, nil
}

// InsertDealer creates a dealer and returns its generated ID. If another
// writer already holds the natural key it returns ErrConflict.
func InsertDealer(ctx context.Context, q Querier, k models.DealerKey) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO dealers (name, street, city, state, zip)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name, street, city, state, zip) DO NOTHING
		RETURNING dealer_id
	`, k.Name, k.Street, k.City, k.State, k.Zip).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || IsUniqueViolation(err) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("storage: insert dealer: %w", err)
	}
	return id, nil
}

// GetDealer loads a dealer by ID.
func GetDealer(ctx context.Context, q Querier, id int64) (*models.Dealer, error) {
	d := &models.Dealer{ID: id}
	err := q.QueryRowContext(ctx, `
		SELECT name, street, city, state, zip FROM dealers WHERE dealer_id = $1
	`, id).Scan(&d.Name, &d.Street, &d.City, &d.State, &d.Zip)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get dealer: %w", err)
	}
	return d, nil
}

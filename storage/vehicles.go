package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quantum-builds/VinAudit/models"
)

// FindVehicleModel returns the ID of the make/model pair.
func FindVehicleModel(ctx context.Context, q Querier, k models.VehicleModelKey) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		SELECT model_id FROM vehicle_models WHERE make = $1 AND model = $2
	`, k.Make, k.Model).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("storage: find vehicle model: %w", err)
	}
	return id, nil
}

// InsertVehicleModel creates a make/model pair and returns its generated ID,
// or ErrConflict when the pair already exists.
func InsertVehicleModel(ctx context.Context, q Querier, k models.VehicleModelKey) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO vehicle_models (make, model)
		VALUES ($1, $2)
		ON CONFLICT (make, model) DO NOTHING
		RETURNING model_id
	`, k.Make, k.Model).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || IsUniqueViolation(err) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("storage: insert vehicle model: %w", err)
	}
	return id, nil
}

// ListMakes returns every distinct make, sorted.
func ListMakes(ctx context.Context, q Querier) ([]string, error) {
	return queryStrings(ctx, q, `SELECT DISTINCT make FROM vehicle_models ORDER BY make`)
}

// ListModels returns the models known for vehicleMake, sorted.
func ListModels(ctx context.Context, q Querier, vehicleMake string) ([]string, error) {
	return queryStrings(ctx, q, `SELECT model FROM vehicle_models WHERE make = $1 ORDER BY model`, vehicleMake)
}

func queryStrings(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("storage: scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

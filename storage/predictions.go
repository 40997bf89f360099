package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quantum-builds/VinAudit/models"
)

// FindPrediction returns the oldest cached prediction whose key matches
// exactly. A nil mileage only matches rows stored without mileage.
func FindPrediction(ctx context.Context, q Querier, year int, modelID int64, mileage *int) (*models.Prediction, error) {
	query := `
		SELECT id, year, model_id, mileage, predicted_price, confidence_score,
		       sample_size, created_at, last_used_at
		FROM predictions
		WHERE year = $1 AND model_id = $2 AND `
	args := []any{year, modelID}
	if mileage == nil {
		query += `mileage IS NULL`
	} else {
		query += `mileage = $3`
		args = append(args, *mileage)
	}
	query += ` ORDER BY id LIMIT 1`

	var (
		p  models.Prediction
		mi sql.NullInt64
	)
	err := q.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Year, &p.ModelID, &mi, &p.PredictedPrice, &p.ConfidenceScore,
		&p.SampleSize, &p.CreatedAt, &p.LastUsedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: find prediction: %w", err)
	}
	p.Mileage = intPtr(mi)
	return &p, nil
}

// InsertPrediction stores p and sets p.ID.
func InsertPrediction(ctx context.Context, q Querier, p *models.Prediction) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO predictions (
			year, model_id, mileage, predicted_price, confidence_score,
			sample_size, created_at, last_used_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		p.Year, p.ModelID, nullInt(p.Mileage), p.PredictedPrice, p.ConfidenceScore,
		p.SampleSize, p.CreatedAt, p.LastUsedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("storage: insert prediction: %w", err)
	}
	return nil
}

// TouchPrediction records a cache hit.
func TouchPrediction(ctx context.Context, q Querier, id int64, usedAt time.Time) error {
	res, err := q.ExecContext(ctx, `UPDATE predictions SET last_used_at = $1 WHERE id = $2`, usedAt, id)
	if err != nil {
		return fmt.Errorf("storage: touch prediction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/quantum-builds/VinAudit/models"
)

// ListingFilter narrows SampleListings. Zero values mean "no filter".
type ListingFilter struct {
	Year  *int
	Make  string
	Model string
	Limit int
}

// ListingExists reports whether a listing with vin is stored.
func ListingExists(ctx context.Context, q Querier, vin string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM listings WHERE vin = $1`, vin).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: listing exists: %w", err)
	}
	return true, nil
}

// UpsertListing inserts l, or replaces every mutable column of the row that
// already holds l.VIN.
func UpsertListing(ctx context.Context, q Querier, l *models.Listing) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO listings (
			vin, year, model_id, trim, dealer_id, price, mileage, used, certified,
			style, driven_wheels, engine, fuel_type, exterior_color, interior_color,
			first_seen, last_seen, vdp_last_seen, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (vin) DO UPDATE SET
			year           = excluded.year,
			model_id       = excluded.model_id,
			trim           = excluded.trim,
			dealer_id      = excluded.dealer_id,
			price          = excluded.price,
			mileage        = excluded.mileage,
			used           = excluded.used,
			certified      = excluded.certified,
			style          = excluded.style,
			driven_wheels  = excluded.driven_wheels,
			engine         = excluded.engine,
			fuel_type      = excluded.fuel_type,
			exterior_color = excluded.exterior_color,
			interior_color = excluded.interior_color,
			first_seen     = excluded.first_seen,
			last_seen      = excluded.last_seen,
			vdp_last_seen  = excluded.vdp_last_seen,
			status         = excluded.status
	`,
		l.VIN, l.Year, l.ModelID, nullString(l.Trim), l.DealerID, l.Price, nullInt(l.Mileage),
		l.Used, l.Certified,
		nullString(l.Style), nullString(l.DrivenWheels), nullString(l.Engine), nullString(l.FuelType),
		nullString(l.ExteriorColor), nullString(l.InteriorColor),
		l.FirstSeen, l.LastSeen, nullTime(l.VDPLastSeen), nullString(l.Status),
	)
	if err != nil {
		return fmt.Errorf("storage: upsert listing %s: %w", l.VIN, err)
	}
	return nil
}

const listingColumns = `
	l.vin, l.year, l.model_id, l.trim, l.dealer_id, l.price, l.mileage, l.used, l.certified,
	l.style, l.driven_wheels, l.engine, l.fuel_type, l.exterior_color, l.interior_color,
	l.first_seen, l.last_seen, l.vdp_last_seen, l.status,
	v.make, v.model, d.name, d.city, d.state`

const listingJoins = `
	FROM listings l
	JOIN vehicle_models v ON v.model_id = l.model_id
	JOIN dealers d ON d.dealer_id = l.dealer_id`

// GetListing loads the listing stored under vin.
func GetListing(ctx context.Context, q Querier, vin string) (*models.Listing, error) {
	row := q.QueryRowContext(ctx, `SELECT `+listingColumns+listingJoins+` WHERE l.vin = $1`, vin)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get listing: %w", err)
	}
	return l, nil
}

// SampleListings returns priced listings matching f in the store's default
// order, at most f.Limit of them when Limit is positive.
func SampleListings(ctx context.Context, q Querier, f ListingFilter) ([]*models.Listing, error) {
	where := []string{"l.price IS NOT NULL"}
	var args []any

	if f.Year != nil {
		args = append(args, *f.Year)
		where = append(where, fmt.Sprintf("l.year = $%d", len(args)))
	}
	if f.Make != "" {
		args = append(args, f.Make)
		where = append(where, fmt.Sprintf("v.make = $%d", len(args)))
	}
	if f.Model != "" {
		args = append(args, f.Model)
		where = append(where, fmt.Sprintf("v.model = $%d", len(args)))
	}

	query := `SELECT ` + listingColumns + listingJoins + ` WHERE ` + strings.Join(where, " AND ")
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: sample listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(r rowScanner) (*models.Listing, error) {
	var (
		l                                 models.Listing
		trim, style, wheels, engine, fuel sql.NullString
		extColor, intColor, status        sql.NullString
		mileage                           sql.NullInt64
		vdpLastSeen                       sql.NullTime
		price                             decimal.NullDecimal
	)
	err := r.Scan(
		&l.VIN, &l.Year, &l.ModelID, &trim, &l.DealerID, &price, &mileage, &l.Used, &l.Certified,
		&style, &wheels, &engine, &fuel, &extColor, &intColor,
		&l.FirstSeen, &l.LastSeen, &vdpLastSeen, &status,
		&l.Make, &l.Model, &l.DealerName, &l.DealerCity, &l.DealerState,
	)
	if err != nil {
		return nil, err
	}

	l.Trim = stringPtr(trim)
	l.Price = price
	l.Mileage = intPtr(mileage)
	l.Style = stringPtr(style)
	l.DrivenWheels = stringPtr(wheels)
	l.Engine = stringPtr(engine)
	l.FuelType = stringPtr(fuel)
	l.ExteriorColor = stringPtr(extColor)
	l.InteriorColor = stringPtr(intColor)
	l.VDPLastSeen = timePtr(vdpLastSeen)
	l.Status = stringPtr(status)
	return &l, nil
}

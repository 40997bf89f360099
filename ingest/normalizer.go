package ingest

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantum-builds/VinAudit/models"
)

const (
	// DateLayout is the feed's calendar date format.
	DateLayout = "2006-01-02"

	// TruthyLiteral is the only spelling of true in boolean columns.
	TruthyLiteral = "TRUE"
)

// Normalize coerces raw fields into a Record. Empty optional text becomes
// nil, booleans are true only for TruthyLiteral, and VIN, year, first_seen
// and last_seen are required.
func Normalize(raw *models.RawRecord) (*models.Record, error) {
	f := raw.Fields

	var missing []string
	for _, req := range []struct {
		name string
		col  int
	}{
		{"vin", models.ColVIN},
		{"year", models.ColYear},
		{"first_seen", models.ColFirstSeen},
		{"last_seen", models.ColLastSeen},
	} {
		if f[req.col] == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredFieldError{Fields: missing}
	}

	year, err := strconv.Atoi(f[models.ColYear])
	if err != nil {
		return nil, &FieldParseError{Field: "year", Value: f[models.ColYear], Err: err}
	}

	price, err := parsePrice(f[models.ColPrice])
	if err != nil {
		return nil, err
	}

	mileage, err := parseOptionalInt("mileage", f[models.ColMileage])
	if err != nil {
		return nil, err
	}

	firstSeen, err := parseDate("first_seen", f[models.ColFirstSeen])
	if err != nil {
		return nil, err
	}
	lastSeen, err := parseDate("last_seen", f[models.ColLastSeen])
	if err != nil {
		return nil, err
	}

	var vdpLastSeen *time.Time
	if s := f[models.ColVDPLastSeen]; s != "" {
		t, err := parseDate("vdp_last_seen", s)
		if err != nil {
			return nil, err
		}
		vdpLastSeen = &t
	}

	return &models.Record{
		Line: raw.Line,
		Dealer: models.DealerKey{
			Name:   f[models.ColDealerName],
			Street: f[models.ColDealerStreet],
			City:   f[models.ColDealerCity],
			State:  f[models.ColDealerState],
			Zip:    f[models.ColDealerZip],
		},
		Vehicle: models.VehicleModelKey{
			Make:  f[models.ColMake],
			Model: f[models.ColModel],
		},
		Website: optional(f[models.ColWebsite]),
		Listing: models.Listing{
			VIN:           f[models.ColVIN],
			Year:          year,
			Trim:          optional(f[models.ColTrim]),
			Price:         price,
			Mileage:       mileage,
			Used:          f[models.ColUsed] == TruthyLiteral,
			Certified:     f[models.ColCertified] == TruthyLiteral,
			Style:         optional(f[models.ColStyle]),
			DrivenWheels:  optional(f[models.ColDrivenWheels]),
			Engine:        optional(f[models.ColEngine]),
			FuelType:      optional(f[models.ColFuelType]),
			ExteriorColor: optional(f[models.ColExteriorColor]),
			InteriorColor: optional(f[models.ColInteriorColor]),
			FirstSeen:     firstSeen,
			LastSeen:      lastSeen,
			VDPLastSeen:   vdpLastSeen,
			Status:        optional(f[models.ColStatus]),
			Make:          f[models.ColMake],
			Model:         f[models.ColModel],
		},
	}, nil
}

// optional maps the empty string to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parsePrice(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, &FieldParseError{Field: "price", Value: s, Err: err}
	}
	return decimal.NewNullDecimal(d), nil
}

func parseOptionalInt(field, s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, &FieldParseError{Field: field, Value: s, Err: err}
	}
	return &n, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &FieldParseError{Field: field, Value: s, Err: err}
	}
	return t, nil
}

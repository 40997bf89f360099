package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantum-builds/VinAudit/models"
)

func normalizeLine(t *testing.T, overrides map[int]string) (*models.Record, error) {
	t.Helper()
	raw, err := ParseLine(1, makeLine(overrides))
	require.NoError(t, err)
	return Normalize(raw)
}

func TestNormalizeWellFormedRecord(t *testing.T) {
	rec, err := normalizeLine(t, nil)
	require.NoError(t, err)

	l := rec.Listing
	assert.Equal(t, "1FTEW1EP5JFA00001", l.VIN)
	assert.Equal(t, 2018, l.Year)
	assert.True(t, l.Price.Valid)
	assert.Equal(t, "25999", l.Price.Decimal.String())
	require.NotNil(t, l.Mileage)
	assert.Equal(t, 42000, *l.Mileage)
	assert.True(t, l.Used)
	assert.False(t, l.Certified)
	assert.Equal(t, "2024-01-01", l.FirstSeen.Format(DateLayout))
	require.NotNil(t, l.VDPLastSeen)
	assert.Equal(t, "2024-01-30", l.VDPLastSeen.Format(DateLayout))
	require.NotNil(t, rec.Website)
	assert.Equal(t, "http://acme.example", *rec.Website)
	assert.Equal(t, models.VehicleModelKey{Make: "Ford", Model: "F-150"}, rec.Vehicle)
	assert.Equal(t, "Acme Motors", rec.Dealer.Name)
}

func TestNormalizeEmptyOptionalFieldsAreAbsent(t *testing.T) {
	rec, err := normalizeLine(t, map[int]string{
		models.ColTrim: "", models.ColPrice: "", models.ColMileage: "",
		models.ColStyle: "", models.ColDrivenWheels: "", models.ColEngine: "",
		models.ColFuelType: "", models.ColExteriorColor: "", models.ColInteriorColor: "",
		models.ColWebsite: "", models.ColVDPLastSeen: "", models.ColStatus: "",
	})
	require.NoError(t, err)

	l := rec.Listing
	assert.Nil(t, l.Trim)
	assert.False(t, l.Price.Valid)
	assert.Nil(t, l.Mileage)
	assert.Nil(t, l.Style)
	assert.Nil(t, l.DrivenWheels)
	assert.Nil(t, l.Engine)
	assert.Nil(t, l.FuelType)
	assert.Nil(t, l.ExteriorColor)
	assert.Nil(t, l.InteriorColor)
	assert.Nil(t, l.VDPLastSeen)
	assert.Nil(t, l.Status)
	assert.Nil(t, rec.Website)
}

func TestNormalizeBooleansMatchTruthyLiteralExactly(t *testing.T) {
	for _, v := range []string{"true", "True", "1", "yes", "", " TRUE"} {
		rec, err := normalizeLine(t, map[int]string{models.ColUsed: v, models.ColCertified: v})
		require.NoError(t, err)
		assert.False(t, rec.Listing.Used, "used=%q", v)
		assert.False(t, rec.Listing.Certified, "certified=%q", v)
	}

	rec, err := normalizeLine(t, map[int]string{models.ColUsed: "FALSE", models.ColCertified: "TRUE"})
	require.NoError(t, err)
	assert.False(t, rec.Listing.Used)
	assert.True(t, rec.Listing.Certified)
}

func TestNormalizeMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		col    int
		expect string
	}{
		{"vin", models.ColVIN, "vin"},
		{"year", models.ColYear, "year"},
		{"first seen", models.ColFirstSeen, "first_seen"},
		{"last seen", models.ColLastSeen, "last_seen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeLine(t, map[int]string{tt.col: ""})
			var missing *MissingRequiredFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, []string{tt.expect}, missing.Fields)
			assert.Equal(t, CategoryMissingRequired, Category(err))
		})
	}
}

func TestNormalizeParseFailures(t *testing.T) {
	tests := []struct {
		name  string
		col   int
		value string
		field string
	}{
		{"year", models.ColYear, "twenty", "year"},
		{"price", models.ColPrice, "$25,000", "price"},
		{"mileage", models.ColMileage, "42k", "mileage"},
		{"first seen", models.ColFirstSeen, "01/02/2024", "first_seen"},
		{"last seen", models.ColLastSeen, "2024-13-01", "last_seen"},
		{"vdp last seen", models.ColVDPLastSeen, "yesterday", "vdp_last_seen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeLine(t, map[int]string{tt.col: tt.value})
			var parseErr *FieldParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.field, parseErr.Field)
			assert.Equal(t, CategoryFieldParse, Category(err))
		})
	}
}

func TestNormalizeDecimalPrice(t *testing.T) {
	rec, err := normalizeLine(t, map[int]string{models.ColPrice: "18450.75"})
	require.NoError(t, err)
	assert.Equal(t, "18450.75", rec.Listing.Price.Decimal.String())
}

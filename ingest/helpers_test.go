package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/storage"
	"github.com/quantum-builds/VinAudit/utils/utilstest"
)

const header = "vin|year|make|model|trim|dealer_name|dealer_street|dealer_city|dealer_state|dealer_zip|price|miles|used|certified|style|driven_wheels|engine|fuel_type|exterior_color|interior_color|dealer_website|first_seen|last_seen|vdp_last_seen|status"

func baseFields() [models.FieldCount]string {
	var f [models.FieldCount]string
	f[models.ColVIN] = "1FTEW1EP5JFA00001"
	f[models.ColYear] = "2018"
	f[models.ColMake] = "Ford"
	f[models.ColModel] = "F-150"
	f[models.ColTrim] = "XLT"
	f[models.ColDealerName] = "Acme Motors"
	f[models.ColDealerStreet] = "1 Main St"
	f[models.ColDealerCity] = "Springfield"
	f[models.ColDealerState] = "IL"
	f[models.ColDealerZip] = "62701"
	f[models.ColPrice] = "25999"
	f[models.ColMileage] = "42000"
	f[models.ColUsed] = "TRUE"
	f[models.ColCertified] = "FALSE"
	f[models.ColStyle] = "Crew Cab"
	f[models.ColDrivenWheels] = "4WD"
	f[models.ColEngine] = "3.5L V6"
	f[models.ColFuelType] = "Gasoline"
	f[models.ColExteriorColor] = "Blue"
	f[models.ColInteriorColor] = "Black"
	f[models.ColWebsite] = "http://acme.example"
	f[models.ColFirstSeen] = "2024-01-01"
	f[models.ColLastSeen] = "2024-01-31"
	f[models.ColVDPLastSeen] = "2024-01-30"
	f[models.ColStatus] = "active"
	return f
}

// makeLine builds a well-formed line from the base fields with overrides.
func makeLine(overrides map[int]string) string {
	f := baseFields()
	for col, v := range overrides {
		f[col] = v
	}
	return strings.Join(f[:], "|")
}

func writeFeed(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.txt")
	body := header + "\n" + strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.OpenSQLiteFile(context.Background(), filepath.Join(t.TempDir(), "ingest.db"), utilstest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *storage.DB, table string) int {
	t.Helper()
	n, err := storage.CountRows(context.Background(), db.Querier(), table)
	require.NoError(t, err)
	return n
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedHeader = "vin|year|make|model|trim|dealer_name|dealer_street|dealer_city|dealer_state|dealer_zip|price|miles|used|certified|style|driven_wheels|engine|fuel_type|exterior_color|interior_color|dealer_website|first_seen|last_seen|vdp_last_seen|status"

func feedLine(vin, year, vehicleMake, model, price, miles string) string {
	return strings.Join([]string{
		vin, year, vehicleMake, model, "XLT",
		"Acme Motors", "1 Main St", "Springfield", "IL", "62701",
		price, miles, "TRUE", "", "Crew Cab", "4WD", "3.5L V6", "Gasoline", "Blue", "Black",
		"http://acme.example", "2024-01-01", "2024-01-31", "", "active",
	}, "|")
}

// useSQLite points the command tree at a fresh database file.
func useSQLite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "vinaudit.db"))
	t.Setenv("LOG_MODE", "dev")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestIngestThenEstimate(t *testing.T) {
	dir := useSQLite(t)
	feed := filepath.Join(dir, "feed.txt")
	body := strings.Join([]string{
		feedHeader,
		feedLine("VIN00000000000001", "2020", "Ford", "F-150", "30000", "10000"),
		feedLine("VIN00000000000002", "2020", "Ford", "F-150", "25000", "20000"),
		feedLine("VIN00000000000003", "2020", "Ford", "F-150", "20000", "30000"),
		"too|few|fields",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(feed, []byte(body), 0o644))
	rejects := filepath.Join(dir, "rejects.csv")

	out, err := run(t, "ingest", feed, "--rejects", rejects, "--workers", "2", "--chunk-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Records successfully processed: 3 (created: 3, updated: 0)")
	assert.Contains(t, out, "Errors encountered: 1")

	rejected, err := os.ReadFile(rejects)
	require.NoError(t, err)
	assert.Contains(t, string(rejected), "field_count")

	out, err = run(t, "estimate", "--year", "2020", "--make", "Ford", "--model", "F-150")
	require.NoError(t, err)
	assert.Contains(t, out, "Estimate  : $25,000 (miss)")
	assert.Contains(t, out, "VIN00000000000002")

	out, err = run(t, "estimate", "--year", "2020", "--make", "Ford", "--model", "F-150", "--samples=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Estimate  : $25,000 (hit)")
	assert.NotContains(t, out, "VIN00000000000002")

	out, err = run(t, "makes")
	require.NoError(t, err)
	assert.Equal(t, "Ford\n", out)

	out, err = run(t, "makes", "Ford")
	require.NoError(t, err)
	assert.Equal(t, "F-150\n", out)
}

func TestIngestRequiresExistingFile(t *testing.T) {
	dir := useSQLite(t)

	_, err := run(t, "ingest", filepath.Join(dir, "missing.txt"))
	assert.ErrorContains(t, err, "input file")

	_, err = run(t, "ingest", dir)
	assert.ErrorContains(t, err, "is a directory")

	_, err = run(t, "ingest")
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "vinaudit.db"))
	assert.True(t, os.IsNotExist(statErr), "no database should be opened before the input is validated")
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	useSQLite(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := run(t, "makes")
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestFlagOverridesEnvironment(t *testing.T) {
	dir := useSQLite(t)
	other := filepath.Join(dir, "nested", "other.db")

	_, err := run(t, "--sqlite-path", other, "makes")
	require.NoError(t, err)

	_, statErr := os.Stat(other)
	assert.NoError(t, statErr)
}

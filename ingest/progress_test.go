package ingest

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/utils"
	"github.com/quantum-builds/VinAudit/utils/utilstest"
)

func TestComputeProgress(t *testing.T) {
	p := computeProgress(1000, 4000, 990, 10, 10*time.Second, 2*time.Second, 1000)

	assert.InDelta(t, 25.0, p.Percent, 1e-9)
	assert.InDelta(t, 100.0, p.OverallRate, 1e-9)
	assert.InDelta(t, 500.0, p.RecentRate, 1e-9)
	assert.Equal(t, 30*time.Second, p.ETA)
	assert.Equal(t, 990, p.Processed)
	assert.Equal(t, 10, p.Errors)
	assert.Contains(t, p.String(), "Progress: 1000/4000 (25.0%)")
}

func TestComputeProgressZeroGuards(t *testing.T) {
	p := computeProgress(0, 0, 0, 0, 0, 0, 0)
	assert.Zero(t, p.Percent)
	assert.Zero(t, p.OverallRate)
	assert.Zero(t, p.RecentRate)
	assert.Zero(t, p.ETA)
}

func TestErrorReporterCapsPerCategory(t *testing.T) {
	r := newErrorReporter(utilstest.NewLogger(t), 10)
	boom := errors.New("boom")

	for i := 1; i <= 10; i++ {
		assert.Equal(t, detailFull, r.report(i, CategoryFieldCount, boom))
	}
	assert.Equal(t, detailSuppressNotice, r.report(11, CategoryFieldCount, boom))
	assert.Equal(t, detailSilent, r.report(12, CategoryFieldCount, boom))
	assert.Equal(t, detailSilent, r.report(13, CategoryFieldCount, boom))

	// Other categories keep their own budget.
	assert.Equal(t, detailFull, r.report(14, CategoryFieldParse, boom))
}

func TestTrackerCounts(t *testing.T) {
	tr := newTracker(utils.NewNopLogger(), "run-1", 5, 2, time.Now())
	tr.line(false, true, "")
	tr.line(false, false, "")
	tr.line(true, false, "")
	tr.line(false, false, CategoryFieldParse)
	tr.line(false, false, CategoryFieldParse)

	s := tr.finish(time.Now())
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, 5, s.Lines)
	assert.Equal(t, 1, s.Blank)
	assert.Equal(t, 2, s.Processed)
	assert.Equal(t, 1, s.Created)
	assert.Equal(t, 1, s.Updated)
	assert.Equal(t, 2, s.Errors)
	assert.Equal(t, 2, s.ErrorsByCategory[CategoryFieldParse])
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, models.IngestSummary{
		RunID: "abc", Lines: 200, Processed: 190, Created: 150, Updated: 40, Errors: 10,
		ErrorsByCategory: map[string]int{CategoryFieldCount: 6, CategoryFieldParse: 4},
		Elapsed:          4 * time.Second,
	})

	out := buf.String()
	assert.Contains(t, out, "Average rate: 50.0 lines/second")
	assert.Contains(t, out, "Records successfully processed: 190 (created: 150, updated: 40)")
	assert.Contains(t, out, "Error rate: 5.00%")
	assert.Contains(t, out, "field_count")
}

func TestCategoryDefaultsToPersistence(t *testing.T) {
	assert.Equal(t, CategoryPersistence, Category(errors.New("disk full")))
	assert.Equal(t, CategoryEntityResolution, Category(&EntityResolutionError{Entity: "dealer", Err: errors.New("x")}))
}

package ingest

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/utils"
)

// Progress is one periodic report of an ingestion run.
type Progress struct {
	Lines       int
	Total       int
	Percent     float64
	OverallRate float64
	RecentRate  float64
	Processed   int
	Errors      int
	ETA         time.Duration
}

func (p Progress) String() string {
	return fmt.Sprintf("Progress: %d/%d (%.1f%%) | Rate: %.1f/sec (recent: %.1f/sec) | Processed: %d | Errors: %d | ETA: %.1fmin",
		p.Lines, p.Total, p.Percent, p.OverallRate, p.RecentRate, p.Processed, p.Errors, p.ETA.Minutes())
}

// computeProgress derives rates and ETA. The ETA assumes the overall rate
// so far holds for the remaining lines.
func computeProgress(lines, total, processed, errs int, elapsed, sinceLast time.Duration, linesSinceLast int) Progress {
	p := Progress{Lines: lines, Total: total, Processed: processed, Errors: errs}

	if total > 0 {
		p.Percent = float64(lines) / float64(total) * 100
	}
	if elapsed > 0 {
		p.OverallRate = float64(lines) / elapsed.Seconds()
	}
	if sinceLast > 0 {
		p.RecentRate = float64(linesSinceLast) / sinceLast.Seconds()
	}
	if remaining := total - lines; remaining > 0 && p.OverallRate > 0 {
		p.ETA = time.Duration(float64(remaining) / p.OverallRate * float64(time.Second))
	}
	return p
}

// tracker holds the counters of one run. Workers share it.
type tracker struct {
	mu       sync.Mutex
	logger   *utils.Logger
	interval int
	total    int
	start    time.Time
	last     time.Time
	lastAt   int
	summary  models.IngestSummary
}

func newTracker(logger *utils.Logger, runID string, total, interval int, start time.Time) *tracker {
	return &tracker{
		logger:   logger,
		interval: interval,
		total:    total,
		start:    start,
		last:     start,
		summary: models.IngestSummary{
			RunID:            runID,
			ErrorsByCategory: make(map[string]int),
		},
	}
}

// line accounts one data line and emits a progress report every interval
// lines. category is empty unless the record was rejected.
func (t *tracker) line(blank bool, created bool, category string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.summary
	s.Lines++
	switch {
	case blank:
		s.Blank++
	case category != "":
		s.Errors++
		s.ErrorsByCategory[category]++
	case created:
		s.Processed++
		s.Created++
	default:
		s.Processed++
		s.Updated++
	}

	if t.interval > 0 && s.Lines%t.interval == 0 {
		now := time.Now()
		p := computeProgress(s.Lines, t.total, s.Processed, s.Errors,
			now.Sub(t.start), now.Sub(t.last), s.Lines-t.lastAt)
		t.logger.Info("%s", p)
		t.last = now
		t.lastAt = s.Lines
	}
}

func (t *tracker) finish(now time.Time) models.IngestSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.summary
	out.Elapsed = now.Sub(t.start)
	out.ErrorsByCategory = make(map[string]int, len(t.summary.ErrorsByCategory))
	for k, v := range t.summary.ErrorsByCategory {
		out.ErrorsByCategory[k] = v
	}
	return out
}

type detail int

const (
	detailFull detail = iota
	detailSuppressNotice
	detailSilent
)

// errorReporter logs the first limit errors of each category in full, then a
// single suppression notice, then nothing.
type errorReporter struct {
	mu     sync.Mutex
	logger *utils.Logger
	limit  int
	seen   map[string]int
}

func newErrorReporter(logger *utils.Logger, limit int) *errorReporter {
	return &errorReporter{logger: logger, limit: limit, seen: make(map[string]int)}
}

func (r *errorReporter) report(line int, category string, err error) detail {
	r.mu.Lock()
	r.seen[category]++
	n := r.seen[category]
	r.mu.Unlock()

	switch {
	case n <= r.limit:
		r.logger.Warn("  ERROR: Line %d - %v", line, err)
		return detailFull
	case n == r.limit+1:
		r.logger.Warn("  ... (suppressing further %s errors)", category)
		return detailSuppressNotice
	default:
		return detailSilent
	}
}

// PrintSummary writes the final report of a run.
func PrintSummary(w io.Writer, s models.IngestSummary) {
	sep := strings.Repeat("=", 50)

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintf(w, "Processing complete! (run %s)\n", s.RunID)
	fmt.Fprintf(w, "Total time: %.1f seconds (%.1f minutes)\n", s.Elapsed.Seconds(), s.Elapsed.Minutes())
	fmt.Fprintf(w, "Average rate: %.1f lines/second\n", s.Rate())
	fmt.Fprintf(w, "Lines processed: %d (blank: %d)\n", s.Lines, s.Blank)
	fmt.Fprintf(w, "Records successfully processed: %d (created: %d, updated: %d)\n", s.Processed, s.Created, s.Updated)
	fmt.Fprintf(w, "Errors encountered: %d\n", s.Errors)

	if s.Errors > 0 {
		fmt.Fprintf(w, "Error rate: %.2f%%\n", s.ErrorRate())

		categories := make([]string, 0, len(s.ErrorsByCategory))
		for c := range s.ErrorsByCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			fmt.Fprintf(w, "  %-18s %d\n", c, s.ErrorsByCategory[c])
		}
	}
	fmt.Fprintf(w, "%s\n", sep)
}

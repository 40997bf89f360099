package ingest

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantum-builds/VinAudit/metrics"
	"github.com/quantum-builds/VinAudit/models"
	"github.com/quantum-builds/VinAudit/storage"
	"github.com/quantum-builds/VinAudit/utils"
)

// Config configures an Orchestrator. Zero values fall back to defaults.
type Config struct {
	DB      *storage.DB
	Logger  *utils.Logger
	Metrics *metrics.Metrics
	Rejects storage.RejectWriter

	Workers          int
	ChunkSize        int
	ProgressInterval int
	ErrorDetailLimit int
}

// Orchestrator streams a feed file into the store, one transaction per
// record. Record failures are counted and skipped; only file I/O failures
// stop a run.
type Orchestrator struct {
	db       *storage.DB
	resolver *Resolver
	logger   *utils.Logger
	metrics  *metrics.Metrics
	rejects  storage.RejectWriter

	workers          int
	chunkSize        int
	progressInterval int
	errorDetailLimit int
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	o := &Orchestrator{
		db:               cfg.DB,
		logger:           cfg.Logger,
		metrics:          cfg.Metrics,
		rejects:          cfg.Rejects,
		workers:          cfg.Workers,
		chunkSize:        cfg.ChunkSize,
		progressInterval: cfg.ProgressInterval,
		errorDetailLimit: cfg.ErrorDetailLimit,
	}
	if o.logger == nil {
		o.logger = utils.NewNopLogger()
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.chunkSize < 1 {
		o.chunkSize = 1000
	}
	if o.progressInterval < 1 {
		o.progressInterval = 1000
	}
	if o.errorDetailLimit < 1 {
		o.errorDetailLimit = 10
	}
	o.resolver = NewResolver(o.logger)
	return o
}

type feedLine struct {
	num  int
	text string
}

// Run ingests the file at path. The returned summary is valid even when a
// FatalFileError cuts the run short.
func (o *Orchestrator) Run(ctx context.Context, path string) (models.IngestSummary, error) {
	total, err := CountDataLines(path)
	if err != nil {
		return models.IngestSummary{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return models.IngestSummary{}, &FatalFileError{Path: path, Err: err}
	}
	defer f.Close()

	o.resolver.Forget()

	runID := uuid.NewString()
	logger := o.logger.With("run", runID)
	start := time.Now()
	st := newTracker(logger, runID, total, o.progressInterval, start)
	reporter := newErrorReporter(logger, o.errorDetailLimit)

	logger.Info("Starting to process %d lines (workers: %d, chunk: %d)", total, o.workers, o.chunkSize)

	pool := utils.NewWorkerPool(o.workers)
	submit := func(chunk []feedLine) {
		pool.Submit(func() {
			for _, l := range chunk {
				o.processLine(ctx, st, reporter, l)
			}
		})
	}

	header := true
	lineNum := 0
	chunk := make([]feedLine, 0, o.chunkSize)
	readErr := eachLine(f, func(text string) {
		if header {
			header = false
			return
		}
		lineNum++
		chunk = append(chunk, feedLine{num: lineNum, text: text})
		if len(chunk) == o.chunkSize {
			submit(chunk)
			chunk = make([]feedLine, 0, o.chunkSize)
		}
	})
	if len(chunk) > 0 {
		submit(chunk)
	}
	pool.Wait()

	summary := st.finish(time.Now())
	o.metrics.RunFinished(summary.Elapsed.Seconds())

	if readErr != nil {
		logger.Error("File error after line %d: %v", lineNum, readErr)
		return summary, &FatalFileError{Path: path, Err: readErr}
	}
	return summary, nil
}

func (o *Orchestrator) processLine(ctx context.Context, st *tracker, reporter *errorReporter, l feedLine) {
	o.metrics.Line()

	text := strings.TrimSpace(l.text)
	if text == "" {
		st.line(true, false, "")
		return
	}

	created, err := o.processRecord(ctx, l.num, text)
	if err != nil {
		category := Category(err)
		reporter.report(l.num, category, err)
		o.metrics.RecordError(category)
		o.reject(models.Reject{Line: l.num, Category: category, Message: err.Error(), Raw: text})
		st.line(false, false, category)
		return
	}

	o.metrics.Committed(created)
	st.line(false, created, "")
}

// processRecord runs one line through parse, normalize, resolve and upsert.
// Every write happens in a single transaction.
func (o *Orchestrator) processRecord(ctx context.Context, lineNum int, text string) (bool, error) {
	raw, err := ParseLine(lineNum, text)
	if err != nil {
		return false, err
	}

	rec, err := Normalize(raw)
	if err != nil {
		return false, err
	}

	var (
		dealerID, modelID int64
		created           bool
	)
	err = o.db.WithTx(ctx, func(q storage.Querier) error {
		var err error
		if dealerID, err = o.resolver.ResolveDealer(ctx, q, rec.Dealer); err != nil {
			return err
		}
		if modelID, err = o.resolver.ResolveVehicleModel(ctx, q, rec.Vehicle); err != nil {
			return err
		}
		created, err = UpsertRecord(ctx, q, rec, dealerID, modelID)
		return err
	})
	if err != nil {
		var (
			resolveErr *EntityResolutionError
			persistErr *PersistenceError
		)
		if !errors.As(err, &resolveErr) && !errors.As(err, &persistErr) {
			err = &PersistenceError{Op: "commit", Err: err}
		}
		return false, err
	}

	o.resolver.Remember(rec, dealerID, modelID)
	return created, nil
}

func (o *Orchestrator) reject(r models.Reject) {
	if o.rejects == nil {
		return
	}
	if err := o.rejects.WriteReject(r); err != nil {
		o.logger.Warn("[ingest] could not record reject for line %d: %v", r.Line, err)
	}
}

// CountDataLines returns the number of lines after the header.
func CountDataLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &FatalFileError{Path: path, Err: err}
	}
	defer f.Close()

	n, err := countLines(f)
	if err != nil {
		return 0, &FatalFileError{Path: path, Err: err}
	}
	if n == 0 {
		return 0, nil
	}
	return n - 1, nil
}

func countLines(r io.Reader) (int, error) {
	n := 0
	err := eachLine(r, func(string) { n++ })
	return n, err
}

// eachLine calls fn with every line of r, without its line ending. Lines of
// any length are delivered whole; a final line without a newline still counts.
func eachLine(r io.Reader, fn func(line string)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			fn(strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/quantum-builds/VinAudit/models"
)

// CSVRejectWriter appends rejected feed lines to a CSV file.
// It is safe for concurrent use.
type CSVRejectWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVRejectWriter opens the CSV file at path for appending, creating it
// and its directories if needed. The header row is written only to an empty
// file, so successive runs accumulate rows under one header.
func NewCSVRejectWriter(path string) (*CSVRejectWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: stat file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if info.Size() == 0 {
		if err := w.Write([]string{"line", "category", "message", "raw"}); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("csv: write header: %w", err)
		}
	}

	return &CSVRejectWriter{file: f, writer: w}, nil
}

// WriteReject appends one rejected line.
func (c *CSVRejectWriter) WriteReject(r models.Reject) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := []string{strconv.Itoa(r.Line), r.Category, r.Message, r.Raw}
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVRejectWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	return c.file.Close()
}

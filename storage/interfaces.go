package storage

import (
	"context"
	"database/sql"

	"github.com/quantum-builds/VinAudit/models"
)

// Querier is satisfied by both *sql.DB and *sql.Tx. Repository functions take
// a Querier so the caller decides whether they run inside a unit of work.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RejectWriter is the interface for persisting lines that failed ingestion.
type RejectWriter interface {
	WriteReject(r models.Reject) error
	Close() error
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/quantum-builds/VinAudit/utils"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options configures Open.
type Options struct {
	Driver          string
	DSN             string
	ConnectAttempts int
}

// DB wraps the connection pool and the dialect it speaks.
type DB struct {
	db     *sql.DB
	driver string
	logger *utils.Logger
}

// SQLiteDSN builds a modernc sqlite DSN for the database file at path with
// foreign keys enforced and a busy timeout for concurrent writers.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open connects to the database, waits for it to answer, runs schema
// migrations, and returns a ready-to-use DB.
func Open(ctx context.Context, opts Options, logger *utils.Logger) (*DB, error) {
	if _, ok := dialectReplacers[opts.Driver]; !ok {
		return nil, fmt.Errorf("storage: unsupported driver %q", opts.Driver)
	}

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// One connection serialises writers and keeps every statement of a
		// transaction on the same sqlite handle.
		db.SetMaxOpenConns(1)
	}

	retry := &utils.RetryConfig{
		MaxAttempts: opts.ConnectAttempts,
		BaseDelay:   250 * time.Millisecond,
		Logger:      logger,
	}
	if err := retry.Do("storage ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	d := &DB{db: db, driver: opts.Driver, logger: logger}
	if err := d.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	return d, nil
}

// OpenSQLiteFile opens (creating if needed) a sqlite database file.
// Intermediate directories are created automatically.
func OpenSQLiteFile(ctx context.Context, path string, logger *utils.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	return Open(ctx, Options{Driver: DriverSQLite, DSN: SQLiteDSN(path), ConnectAttempts: 1}, logger)
}

// Migrate creates tables and indexes that do not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements(d.driver) {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Driver returns the database/sql driver name.
func (d *DB) Driver() string {
	return d.driver
}

// Querier returns a non-transactional handle.
func (d *DB) Querier() Querier {
	return d.db
}

// WithTx runs fn inside a transaction. The transaction commits only when fn
// returns nil; any error or panic rolls it back.
func (d *DB) WithTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && d.logger != nil {
			d.logger.Warn("[storage] rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// CountRows returns the number of rows in one of the schema's tables.
func CountRows(ctx context.Context, q Querier, table string) (int, error) {
	switch table {
	case "dealers", "vehicle_models", "listings", "dealer_websites", "predictions":
	default:
		return 0, fmt.Errorf("storage: unknown table %q", table)
	}

	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count %s: %w", table, err)
	}
	return n, nil
}

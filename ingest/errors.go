package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories used for counting and capped reporting.
const (
	CategoryFieldCount       = "field_count"
	CategoryFieldParse       = "field_parse"
	CategoryMissingRequired  = "missing_required"
	CategoryEntityResolution = "entity_resolution"
	CategoryPersistence      = "persistence"
)

// FieldCountError means a line did not split into exactly 25 fields.
type FieldCountError struct {
	Got int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("invalid field count: %d fields", e.Got)
}

// FieldParseError means a field could not be coerced to its type.
type FieldParseError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error { return e.Err }

// MissingRequiredFieldError lists the required fields that were empty.
type MissingRequiredFieldError struct {
	Fields []string
}

func (e *MissingRequiredFieldError) Error() string {
	return "missing required field(s): " + strings.Join(e.Fields, ", ")
}

// EntityResolutionError means a dealer or vehicle model could be neither
// found nor created.
type EntityResolutionError struct {
	Entity string
	Err    error
}

func (e *EntityResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Entity, e.Err)
}

func (e *EntityResolutionError) Unwrap() error { return e.Err }

// PersistenceError means a write or the commit of a record failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FatalFileError means the feed file could not be opened or read. It is the
// only error that stops a run.
type FatalFileError struct {
	Path string
	Err  error
}

func (e *FatalFileError) Error() string {
	return fmt.Sprintf("file %s: %v", e.Path, e.Err)
}

func (e *FatalFileError) Unwrap() error { return e.Err }

// Category maps a record-level error to its reporting category. Errors
// outside the taxonomy count as persistence failures.
func Category(err error) string {
	var (
		countErr   *FieldCountError
		parseErr   *FieldParseError
		missingErr *MissingRequiredFieldError
		resolveErr *EntityResolutionError
	)
	switch {
	case errors.As(err, &countErr):
		return CategoryFieldCount
	case errors.As(err, &parseErr):
		return CategoryFieldParse
	case errors.As(err, &missingErr):
		return CategoryMissingRequired
	case errors.As(err, &resolveErr):
		return CategoryEntityResolution
	default:
		return CategoryPersistence
	}
}

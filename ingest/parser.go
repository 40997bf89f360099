package ingest

import (
	"strings"

	"github.com/quantum-builds/VinAudit/models"
)

// Delimiter separates the columns of a feed line.
const Delimiter = "|"

// ParseLine splits one feed line into its raw fields. It does no semantic
// validation; the only failure is a wrong field count.
func ParseLine(lineNum int, line string) (*models.RawRecord, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != models.FieldCount {
		return nil, &FieldCountError{Got: len(fields)}
	}

	raw := &models.RawRecord{Line: lineNum}
	copy(raw.Fields[:], fields)
	return raw, nil
}

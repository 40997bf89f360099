package models

import "time"

// Reject is a feed line that could not be ingested.
type Reject struct {
	Line     int
	Category string
	Message  string
	Raw      string
}

// IngestSummary is the outcome of one ingestion run.
type IngestSummary struct {
	RunID            string
	Lines            int
	Blank            int
	Processed        int
	Created          int
	Updated          int
	Errors           int
	ErrorsByCategory map[string]int
	Elapsed          time.Duration
}

// Rate returns lines per second over the whole run.
func (s IngestSummary) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Lines) / s.Elapsed.Seconds()
}

// ErrorRate returns errors as a percentage of total lines.
func (s IngestSummary) ErrorRate() float64 {
	if s.Lines == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Lines) * 100
}

// Package report summarizes a protocolo batch and exports it as JSON, CSV or
// HTML.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ErrFormat is returned for an unsupported export format.
var ErrFormat = errors.New("report: unsupported format")

// Outcome values mirror protocolo.Outcome.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

// Entry is the record of one document.
type Entry struct {
	File        string        `json:"file"`
	Outcome     string        `json:"outcome"`
	Identifiers []string      `json:"identifiers"`
	Destination string        `json:"destination,omitempty"`
	Pages       int           `json:"pages"`
	Variants    int           `json:"ocr_passes"`
	Failures    int           `json:"ocr_failures"`
	Stage       string        `json:"stage,omitempty"`
	Error       string        `json:"error,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Report is the summary of one batch.
type Report struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	DryRun      bool      `json:"dry_run"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`

	Found    int `json:"found"`
	NotFound int `json:"not_found"`
	Failed   int `json:"failed"`

	Entries []Entry `json:"entries"`
}

// New starts a report.
func New(source, destination string, dryRun bool, started time.Time) *Report {
	return &Report{
		Source:      source,
		Destination: destination,
		DryRun:      dryRun,
		Started:     started,
		Entries:     []Entry{},
	}
}

// Add records an entry and updates the totals.
func (r *Report) Add(e Entry) {
	if e.Identifiers == nil {
		e.Identifiers = []string{}
	}
	switch e.Outcome {
	case OutcomeFound:
		r.Found++
	case OutcomeFailed:
		r.Failed++
	default:
		r.NotFound++
	}
	r.Entries = append(r.Entries, e)
}

// Total returns the number of documents in the report.
func (r *Report) Total() int {
	return len(r.Entries)
}

// Duration returns the wall time of the batch.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Exporter writes a report in one format.
type Exporter interface {
	Export(r *Report, w io.Writer) error
}

// ExporterFor returns the exporter for format ("json", "csv" or "html").
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "json":
		return JSONExporter{}, nil
	case "csv":
		return CSVExporter{}, nil
	case "html":
		return HTMLExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
}

// WriteFile exports r to path in format.
func WriteFile(r *Report, path, format string) error {
	exp, err := ExporterFor(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := exp.Export(r, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s report: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s report: %w", format, err)
	}
	return nil
}

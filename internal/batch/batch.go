// Package batch runs the extraction pipeline over a directory of PDFs and
// places every document according to its identifiers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsawler/protocolo"
	"github.com/tsawler/protocolo/format"
	"github.com/tsawler/protocolo/internal/placement"
	"github.com/tsawler/protocolo/internal/report"
)

// Exit codes for a finished batch.
const (
	ExitSuccess      = 0 // every document processed
	ExitError        = 1 // the batch could not run
	ExitWithFailures = 2 // finished, but some documents failed or could not be placed
)

// Extractor extracts identifiers from one document.
type Extractor interface {
	Extract(ctx context.Context, path string) protocolo.Result
}

// Placer copies or moves one document to its destination.
type Placer interface {
	Place(src string, identifiers []string) (placement.Placement, error)
}

// PlacementRecorder counts placed files.
type PlacementRecorder interface {
	RecordPlacement(action string)
}

// Driver processes documents one at a time.
type Driver struct {
	Extractor Extractor
	Placer    Placer
	Log       zerolog.Logger

	// Recorder is optional.
	Recorder PlacementRecorder

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// List returns the PDFs directly inside dir, sorted by name. Subdirectories
// are not descended into.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if format.Detect(e.Name()) == format.PDF {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run processes every PDF in sourceDir. The returned report is complete even
// when ctx is cancelled part way; err is then the context error.
func (d *Driver) Run(ctx context.Context, sourceDir, destDir string, dryRun bool) (*report.Report, error) {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	files, err := List(sourceDir)
	if err != nil {
		return nil, err
	}

	rep := report.New(sourceDir, destDir, dryRun, now())
	d.Log.Info().Str("source", sourceDir).Str("dest", destDir).Int("documents", len(files)).Bool("dry_run", dryRun).Msg("batch started")

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			rep.Finished = now()
			d.Log.Warn().Err(err).Int("processed", i).Int("documents", len(files)).Msg("batch interrupted")
			return rep, err
		}

		d.Log.Info().Str("file", filepath.Base(path)).Int("index", i+1).Int("documents", len(files)).Msg("processing document")
		rep.Add(d.process(ctx, path))
	}

	rep.Finished = now()
	if err := ctx.Err(); err != nil {
		d.Log.Warn().Err(err).Int("processed", len(files)).Int("documents", len(files)).Msg("batch interrupted")
		return rep, err
	}
	d.Log.Info().
		Int("found", rep.Found).
		Int("not_found", rep.NotFound).
		Int("failed", rep.Failed).
		Dur("elapsed", rep.Duration()).
		Msg("batch finished")
	return rep, nil
}

// process extracts and places one document. Failed documents go to the
// not-found bucket, except those cut short by cancellation, which stay in
// the source directory so a later run picks them up again.
func (d *Driver) process(ctx context.Context, path string) report.Entry {
	res := d.extract(ctx, path)
	entry := Entry(res)

	if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
		d.Log.Warn().Err(res.Err).Str("file", filepath.Base(path)).Msg("document interrupted, left in place")
		return entry
	}

	ids := res.Identifiers
	if res.Err != nil {
		ids = nil
	}

	pl, err := d.Placer.Place(path, ids)
	if err != nil {
		d.Log.Error().Err(err).Str("file", filepath.Base(path)).Msg("failed to place document")
		entry.Outcome = report.OutcomeFailed
		entry.Stage = "place"
		entry.Error = errors.Join(res.Err, err).Error()
		return entry
	}

	entry.Destination = pl.Destination
	if d.Recorder != nil {
		d.Recorder.RecordPlacement(pl.Action)
	}

	ev := d.Log.Info()
	if pl.NotFound {
		ev = d.Log.Warn()
	}
	ev.Str("file", filepath.Base(path)).Str("destination", pl.Destination).Str("action", pl.Action).Msg("document placed")
	return entry
}

// extract runs the pipeline on path unless its content is not a PDF.
func (d *Driver) extract(ctx context.Context, path string) protocolo.Result {
	if err := format.Check(path); err != nil {
		d.Log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("skipping extraction")
		return protocolo.Result{
			Path:        path,
			Identifiers: []string{},
			Err: &protocolo.DocumentError{
				Path:  path,
				Stage: protocolo.StageInspect,
				Kind:  protocolo.ErrDocumentUnreadable,
				Err:   err,
			},
		}
	}
	return d.Extractor.Extract(ctx, path)
}

// Entry converts a pipeline result into a report entry.
func Entry(res protocolo.Result) report.Entry {
	e := report.Entry{
		File:        filepath.Base(res.Path),
		Outcome:     string(res.Outcome()),
		Identifiers: res.Identifiers,
		Pages:       res.Pages,
		Variants:    res.Variants,
		Failures:    res.Failures,
		Duration:    res.Duration,
	}
	if res.Err != nil {
		e.Identifiers = []string{}
		e.Stage = string(res.Stage())
		e.Error = res.Err.Error()
	}
	for _, w := range res.Warnings {
		e.Warnings = append(e.Warnings, w.String())
	}
	return e
}

// ExitCode maps a finished batch to a process exit status.
func ExitCode(rep *report.Report) int {
	if rep.Failed > 0 {
		return ExitWithFailures
	}
	return ExitSuccess
}

package protocolo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrDocumentUnreadable means the document could not be opened, parsed or
	// rendered. It is fatal for that document only.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrSplitFailure means a sub-document could not be written.
	ErrSplitFailure = errors.New("split failure")

	// ErrRecognitionFailure tags OCR failures. They are recovered locally and
	// only surface as warnings.
	ErrRecognitionFailure = errors.New("recognition failure")
)

// Stage names the pipeline step where a failure or warning occurred.
type Stage string

const (
	StageInspect   Stage = "inspect"
	StageSplit     Stage = "split"
	StageTextLayer Stage = "text_layer"
	StageRasterize Stage = "rasterize"
	StageNormalize Stage = "normalize"
	StageRecognize Stage = "recognize"
	StageCleanup   Stage = "cleanup"
)

// DocumentError is the failure of one document. Kind is one of the package
// sentinels (or a context error) and Err is the underlying cause; errors.Is
// matches either.
type DocumentError struct {
	Path  string
	Stage Stage
	Kind  error
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v at %s: %v", filepath.Base(e.Path), e.Kind, e.Stage, e.Err)
}

func (e *DocumentError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Warning is a non-fatal issue encountered while processing a document.
type Warning struct {
	Stage   Stage
	Page    int // 1-based page in the source document, 0 if not page specific
	Angle   float64
	Message string
}

// String formats the warning for logs.
func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(string(w.Stage))
	if w.Page > 0 {
		fmt.Fprintf(&b, " page %d", w.Page)
	}
	if w.Stage == StageRecognize {
		fmt.Fprintf(&b, " angle %g", w.Angle)
	}
	b.WriteString(": ")
	b.WriteString(w.Message)
	return b.String()
}

// FormatWarnings joins warnings into a single line.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

// Outcome classifies a Result.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
)

// Result is the outcome of extracting identifiers from one document.
type Result struct {
	Path string

	// Identifiers is the sorted reconciled identifier set. It is empty, never
	// nil, when nothing was found or the document failed.
	Identifiers []string

	Pages    int // pages in the source document
	Parts    int // sub-documents processed (1 when not split)
	Variants int // OCR passes attempted
	Failures int // OCR passes that failed
	Matches  int // raw matches before reconciliation

	Warnings []Warning
	Duration time.Duration

	// Err is a *DocumentError when the document failed.
	Err error
}

// Outcome reports whether identifiers were found, none were found, or the
// document failed.
func (r Result) Outcome() Outcome {
	switch {
	case r.Err != nil:
		return OutcomeFailed
	case len(r.Identifiers) > 0:
		return OutcomeFound
	default:
		return OutcomeNotFound
	}
}

// Stage returns the failing stage, or "" when the document did not fail.
func (r Result) Stage() Stage {
	var de *DocumentError
	if errors.As(r.Err, &de) {
		return de.Stage
	}
	return ""
}

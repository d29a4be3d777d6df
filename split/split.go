package split

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrUnreadable is returned when the page count cannot be determined.
	ErrUnreadable = errors.New("split: document unreadable")

	// ErrWrite is returned when a sub-document cannot be written.
	ErrWrite = errors.New("split: sub-document write failed")
)

var disableConfigDir sync.Once

// Span is a contiguous, inclusive, 1-based page range.
type Span struct {
	First int
	Last  int
}

// Pages returns the number of pages in the span.
func (s Span) Pages() int {
	return s.Last - s.First + 1
}

// String returns the span in pdfcpu page selection syntax, e.g. "11-20".
func (s Span) String() string {
	if s.First == s.Last {
		return fmt.Sprintf("%d", s.First)
	}
	return fmt.Sprintf("%d-%d", s.First, s.Last)
}

// Plan partitions pages into spans of at most size pages when pages exceeds
// threshold. Otherwise it returns a single span covering the document. It
// returns nil for documents without pages or non-positive size.
func Plan(pages, threshold, size int) []Span {
	if pages <= 0 || size <= 0 {
		return nil
	}
	if pages <= threshold {
		return []Span{{First: 1, Last: pages}}
	}

	spans := make([]Span, 0, (pages+size-1)/size)
	for first := 1; first <= pages; first += size {
		last := first + size - 1
		if last > pages {
			last = pages
		}
		spans = append(spans, Span{First: first, Last: last})
	}
	return spans
}

// Part is one unit of work: either a temporary sub-document or the original
// file when no split was needed.
type Part struct {
	Path      string
	Span      Span
	Temporary bool
}

// Set is the result of splitting one document.
type Set struct {
	Source string
	Pages  int
	Parts  []Part

	dir string
}

// Split reports whether the document was written into temporary parts.
func (s *Set) Split() bool {
	return s.dir != ""
}

// Close deletes every temporary sub-document. It is safe to call more than
// once and on a nil Set.
func (s *Set) Close() error {
	if s == nil || s.dir == "" {
		return nil
	}
	dir := s.dir
	s.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove sub-documents: %w", err)
	}
	return nil
}

// Splitter writes oversized documents as page-bounded sub-documents.
type Splitter struct {
	// Threshold is the largest page count processed without splitting.
	Threshold int

	// Span is the number of pages per sub-document.
	Span int

	// TempDir is where sub-documents are written. Empty means os.TempDir().
	TempDir string

	conf *model.Configuration
}

// New returns a Splitter. Both threshold and span must be positive.
func New(threshold, span int) (*Splitter, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("split: threshold must be positive, got %d", threshold)
	}
	if span <= 0 {
		return nil, fmt.Errorf("split: span must be positive, got %d", span)
	}

	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Splitter{Threshold: threshold, Span: span, conf: conf}, nil
}

// PageCount returns the number of pages in the PDF at path.
func (s *Splitter) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, s.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return n, nil
}

// Split counts the pages of the document at path and, when it exceeds the
// threshold, writes each planned span to a temporary file. On error no
// temporary files are left behind.
func (s *Splitter) Split(ctx context.Context, path string) (*Set, error) {
	pages, err := s.PageCount(path)
	if err != nil {
		return nil, err
	}

	set := &Set{Source: path, Pages: pages}
	spans := Plan(pages, s.Threshold, s.Span)
	if len(spans) <= 1 {
		for _, span := range spans {
			set.Parts = append(set.Parts, Part{Path: path, Span: span})
		}
		return set, nil
	}

	dir, err := os.MkdirTemp(s.TempDir, "protocolo-split-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	set.dir = dir

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			set.Close()
			return nil, err
		}

		out := filepath.Join(dir, fmt.Sprintf("%s_%04d-%04d.pdf", base, span.First, span.Last))
		if err := api.TrimFile(path, out, []string{span.String()}, s.conf); err != nil {
			set.Close()
			return nil, fmt.Errorf("%w: pages %s: %v", ErrWrite, span, err)
		}
		set.Parts = append(set.Parts, Part{Path: out, Span: span, Temporary: true})
	}

	return set, nil
}

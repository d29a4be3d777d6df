package protocolo

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsawler/protocolo/match"
	"github.com/tsawler/protocolo/raster"
	"github.com/tsawler/protocolo/split"
)

// Config holds the extraction settings. There are no built-in defaults; every
// field except RegexEngine and TextLayer must be supplied.
type Config struct {
	// DPI is the rasterization resolution.
	DPI float64

	// SplitThreshold is the largest page count processed as one document.
	SplitThreshold int

	// SplitSpan is the page count of each sub-document of a split document.
	SplitSpan int

	// PrimaryPattern and SecondaryPattern describe the two identifier formats.
	PrimaryPattern   string
	SecondaryPattern string

	// RegexEngine selects the pattern engine; empty means match.EngineRE2.
	RegexEngine match.Engine

	// Angles are the rotation angles, in degrees counter-clockwise, tried on
	// every page. Zero means the page as rendered.
	Angles []float64

	// TextLayer tries the embedded text of each sub-document before OCR and
	// skips OCR when it already yields a match.
	TextLayer bool
}

// Validate checks the configuration without compiling the patterns.
func (c Config) Validate() error {
	if c.DPI <= 0 || math.IsNaN(c.DPI) || math.IsInf(c.DPI, 0) {
		return fmt.Errorf("invalid DPI: %v (must be positive)", c.DPI)
	}
	if c.SplitThreshold <= 0 {
		return fmt.Errorf("invalid split threshold: %d (must be positive)", c.SplitThreshold)
	}
	if c.SplitSpan <= 0 {
		return fmt.Errorf("invalid split span: %d (must be positive)", c.SplitSpan)
	}
	if c.PrimaryPattern == "" || c.SecondaryPattern == "" {
		return fmt.Errorf("both primary and secondary patterns are required")
	}
	if len(c.Angles) == 0 {
		return fmt.Errorf("at least one rotation angle is required")
	}
	for _, a := range c.Angles {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("invalid rotation angle: %v", a)
		}
	}
	return nil
}

// clone returns a copy of c that shares no slices with it.
func (c Config) clone() Config {
	c.Angles = append([]float64(nil), c.Angles...)
	return c
}

// Recognizer turns one image into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Splitter partitions a document into sub-documents.
type Splitter interface {
	Split(ctx context.Context, path string) (*split.Set, error)
}

// Recorder receives pipeline events, typically to update metrics.
type Recorder interface {
	PageRendered()
	VariantRecognized(err error)
	DocumentDone(outcome Outcome, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) PageRendered()                       {}
func (nopRecorder) VariantRecognized(error)             {}
func (nopRecorder) DocumentDone(Outcome, time.Duration) {}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecognizer sets the OCR engine. Required.
func WithRecognizer(r Recognizer) Option {
	return func(p *Pipeline) { p.recognizer = r }
}

// WithRasterizer sets the page renderer. Defaults to raster.NewFitz().
func WithRasterizer(r raster.Rasterizer) Option {
	return func(p *Pipeline) { p.rasterizer = r }
}

// WithSplitter sets the document splitter. Defaults to a split.Splitter built
// from the configured threshold and span.
func WithSplitter(s Splitter) Option {
	return func(p *Pipeline) { p.splitter = s }
}

// WithLogger sets the structured logger. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithRecorder sets the event sink for metrics.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.rec = r
		}
	}
}

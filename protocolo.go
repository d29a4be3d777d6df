// Package protocolo extracts protocol identifiers from scanned and
// born-digital PDF documents.
//
// Each document goes through a fixed pipeline: oversized documents are split
// into page-bounded sub-documents, every page is rendered, normalized and
// rotated through a configured angle set, every rotation variant is OCRed,
// and the recognized text is matched against a primary and a secondary
// identifier pattern. The raw matches of the whole document are then
// reconciled into a sorted set of canonical identifiers.
//
// Basic usage:
//
//	engine, err := ocr.New(ocr.Options{Languages: []string{"por"}})
//	if err != nil {
//	    // handle error
//	}
//	defer engine.Close()
//
//	p, err := protocolo.New(protocolo.Config{
//	    DPI:              300,
//	    SplitThreshold:   10,
//	    SplitSpan:        10,
//	    PrimaryPattern:   `[A-Z]{3}\d{10}`,
//	    SecondaryPattern: `\d{2}/\d{6}-\d`,
//	    Angles:           []float64{0, -2, 2, 45, 90},
//	}, protocolo.WithRecognizer(engine))
//	if err != nil {
//	    // handle error
//	}
//
//	res := p.Extract(ctx, "scan.pdf")
//	if res.Err != nil {
//	    log.Println(res.Err)
//	}
//	fmt.Println(res.Identifiers) // [100032290 PIP1902094449]
//
// A Pipeline processes one page and one rotation variant at a time and is not
// safe for concurrent use.
package protocolo

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tsawler/protocolo/imaging"
	"github.com/tsawler/protocolo/match"
	"github.com/tsawler/protocolo/raster"
	"github.com/tsawler/protocolo/split"
)

// ErrNoRecognizer is returned by New when no OCR engine was supplied.
var ErrNoRecognizer = errors.New("protocolo: no recognizer configured")

// Pipeline extracts identifiers from one document at a time.
type Pipeline struct {
	cfg     Config
	matcher *match.Matcher
	rotator *imaging.Rotator

	recognizer Recognizer
	rasterizer raster.Rasterizer
	splitter   Splitter

	log zerolog.Logger
	rec Recorder
}

// New validates cfg and builds a Pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("protocolo: %w", err)
	}

	matcher, err := match.New(cfg.PrimaryPattern, cfg.SecondaryPattern, match.Options{Engine: cfg.RegexEngine})
	if err != nil {
		return nil, fmt.Errorf("protocolo: %w", err)
	}

	p := &Pipeline{
		cfg:     cfg.clone(),
		matcher: matcher,
		rotator: imaging.NewRotator(),
		log:     zerolog.Nop(),
		rec:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.recognizer == nil {
		return nil, ErrNoRecognizer
	}
	if p.rasterizer == nil {
		p.rasterizer = raster.NewFitz()
	}
	if p.splitter == nil {
		s, err := split.New(cfg.SplitThreshold, cfg.SplitSpan)
		if err != nil {
			return nil, fmt.Errorf("protocolo: %w", err)
		}
		p.splitter = s
	}

	return p, nil
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg.clone()
}

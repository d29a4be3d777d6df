package protocolo

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsawler/protocolo/imaging"
	"github.com/tsawler/protocolo/raster"
	"github.com/tsawler/protocolo/reconcile"
	"github.com/tsawler/protocolo/split"
)

// Extract runs the pipeline over the PDF at path. Failures are reported in
// Result.Err rather than returned, so a batch can move on to the next file.
// Temporary sub-documents are deleted before Extract returns.
func (p *Pipeline) Extract(ctx context.Context, path string) (res Result) {
	start := time.Now()
	res = Result{Path: path, Identifiers: []string{}}
	log := p.log.With().Str("file", filepath.Base(path)).Logger()
	stage := StageInspect

	defer func() {
		if r := recover(); r != nil {
			res.Identifiers = []string{}
			res.Err = &DocumentError{Path: path, Stage: stage, Kind: ErrDocumentUnreadable, Err: fmt.Errorf("panic: %v", r)}
		}
		p.rotator.Release()
		res.Duration = time.Since(start)
		p.rec.DocumentDone(res.Outcome(), res.Duration)

		if res.Err != nil {
			log.Error().Err(res.Err).Str("stage", string(res.Stage())).Dur("elapsed", res.Duration).Msg("document failed")
			return
		}
		log.Info().
			Strs("identifiers", res.Identifiers).
			Int("pages", res.Pages).
			Int("variants", res.Variants).
			Int("ocr_failures", res.Failures).
			Dur("elapsed", res.Duration).
			Msg("document processed")
	}()

	stage = StageSplit
	set, err := p.splitter.Split(ctx, path)
	if err != nil {
		res.Err = splitError(path, err)
		return res
	}
	defer func() {
		if err := set.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to remove sub-documents")
			res.Warnings = append(res.Warnings, Warning{Stage: StageCleanup, Message: err.Error()})
		}
	}()

	res.Pages = set.Pages
	res.Parts = len(set.Parts)
	if set.Split() {
		log.Debug().Int("pages", set.Pages).Int("parts", len(set.Parts)).Msg("document split")
	}

	var tally reconcile.Tally
	for _, part := range set.Parts {
		partTally, err := p.extractPart(ctx, part, &res, &stage, log)
		if err != nil {
			res.Err = renderError(path, err)
			return res
		}
		tally.Merge(partTally)
	}

	res.Matches = tally.Total()
	res.Identifiers = tally.Reconcile()
	return res
}

// extractPart collects the raw matches of one sub-document into a fresh tally.
// stage tracks the step in progress so a recovered panic can name it.
func (p *Pipeline) extractPart(ctx context.Context, part split.Part, res *Result, stage *Stage, log zerolog.Logger) (reconcile.Tally, error) {
	var tally reconcile.Tally

	if p.cfg.TextLayer {
		*stage = StageTextLayer
		if ok := p.fromTextLayer(ctx, part, &tally, res, log); ok {
			return tally, nil
		}
	}

	*stage = StageRasterize
	err := p.rasterizer.Render(ctx, part.Path, p.cfg.DPI, func(pg raster.Page) error {
		p.rec.PageRendered()
		page := part.Span.First + pg.Number - 1
		err := p.scanPage(ctx, page, pg.Image, &tally, res, stage, log)
		*stage = StageRasterize
		return err
	})
	return tally, err
}

// scanPage normalizes one page and OCRs every rotation variant of it. Only
// context errors abort the page; everything else becomes a warning.
func (p *Pipeline) scanPage(ctx context.Context, page int, img image.Image, tally *reconcile.Tally, res *Result, stage *Stage, log zerolog.Logger) error {
	*stage = StageNormalize
	binary, err := imaging.Normalize(img)
	if err != nil {
		log.Warn().Err(err).Int("page", page).Msg("skipping page")
		res.Warnings = append(res.Warnings, Warning{Stage: StageNormalize, Page: page, Message: err.Error()})
		return nil
	}

	return p.rotator.Each(binary, p.cfg.Angles, func(angle float64, variant *image.Gray) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		res.Variants++
		*stage = StageRecognize
		text, err := p.recognizer.Recognize(ctx, variant)
		p.rec.VariantRecognized(err)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			res.Failures++
			log.Warn().Err(err).Int("page", page).Float64("angle", angle).Msg("recognition failed, skipping variant")
			res.Warnings = append(res.Warnings, Warning{
				Stage:   StageRecognize,
				Page:    page,
				Angle:   angle,
				Message: fmt.Errorf("%w: %v", ErrRecognitionFailure, err).Error(),
			})
			return nil
		}

		for _, m := range p.matcher.Find(text) {
			log.Debug().Int("page", page).Float64("angle", angle).Str("match", m.Text).Stringer("tier", m.Tier).Msg("candidate")
			tally.Add(m.Text)
		}
		return nil
	})
}

// fromTextLayer matches the embedded text of part. It reports true when the
// text layer produced at least one match, in which case OCR is skipped.
func (p *Pipeline) fromTextLayer(ctx context.Context, part split.Part, tally *reconcile.Tally, res *Result, log zerolog.Logger) bool {
	te, ok := p.rasterizer.(raster.TextExtractor)
	if !ok {
		return false
	}

	texts, err := te.PageTexts(ctx, part.Path)
	if err != nil {
		log.Debug().Err(err).Msg("text layer unavailable")
		res.Warnings = append(res.Warnings, Warning{Stage: StageTextLayer, Message: err.Error()})
		return false
	}

	for i, text := range texts {
		for _, m := range p.matcher.Find(text) {
			log.Debug().Int("page", part.Span.First+i).Str("match", m.Text).Stringer("tier", m.Tier).Msg("text layer candidate")
			tally.Add(m.Text)
		}
	}
	if tally.Total() == 0 {
		return false
	}

	log.Debug().Int("matches", tally.Total()).Msg("identifiers found in text layer, skipping OCR")
	return true
}

func splitError(path string, err error) error {
	switch {
	case isContextErr(err):
		return &DocumentError{Path: path, Stage: StageSplit, Kind: contextKind(err), Err: err}
	case errors.Is(err, split.ErrWrite):
		return &DocumentError{Path: path, Stage: StageSplit, Kind: ErrSplitFailure, Err: err}
	default:
		return &DocumentError{Path: path, Stage: StageInspect, Kind: ErrDocumentUnreadable, Err: err}
	}
}

func renderError(path string, err error) error {
	if isContextErr(err) {
		return &DocumentError{Path: path, Stage: StageRasterize, Kind: contextKind(err), Err: err}
	}
	return &DocumentError{Path: path, Stage: StageRasterize, Kind: ErrDocumentUnreadable, Err: err}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func contextKind(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return context.Canceled
}

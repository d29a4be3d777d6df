package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tsawler/protocolo/match"
)

// Validate checks that the configuration is usable. Every error wraps
// ErrInvalid.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return invalid("source_dir is required")
	}
	if c.DestDir == "" {
		return invalid("dest_dir is required")
	}
	if c.NotFoundDir == "" || filepath.IsAbs(c.NotFoundDir) || strings.Contains(c.NotFoundDir, "..") {
		return invalid("not_found_dir must be a relative directory name, got '%s'", c.NotFoundDir)
	}
	if c.Mode != ModeCopy && c.Mode != ModeMove {
		return invalid("mode must be '%s' or '%s', got '%s'", ModeCopy, ModeMove, c.Mode)
	}

	// The core re-validates these, but failing here reports the YAML key.
	if c.DPI <= 0 {
		return invalid("dpi must be positive, got %v", c.DPI)
	}
	if c.SplitThreshold <= 0 {
		return invalid("split_threshold must be positive, got %d", c.SplitThreshold)
	}
	if c.SplitSpan <= 0 {
		return invalid("split_span must be positive, got %d", c.SplitSpan)
	}
	if len(c.Angles) == 0 {
		return invalid("angles must list at least one angle")
	}
	switch match.Engine(c.RegexEngine) {
	case "", match.EngineRE2, match.EngineRegexp2:
	default:
		return invalid("regex_engine must be '%s' or '%s', got '%s'", match.EngineRE2, match.EngineRegexp2, c.RegexEngine)
	}
	if _, err := match.New(c.PrimaryPattern, c.SecondaryPattern, match.Options{Engine: match.Engine(c.RegexEngine)}); err != nil {
		return invalid("%v", err)
	}

	switch c.Rasterizer {
	case RasterizerFitz:
	case RasterizerPdftoppm:
		if c.PdftoppmPath == "" {
			return invalid("pdftoppm_path is required with the pdftoppm rasterizer")
		}
	default:
		return invalid("rasterizer must be '%s' or '%s', got '%s'", RasterizerFitz, RasterizerPdftoppm, c.Rasterizer)
	}

	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return invalid("ocr.page_seg_mode must be between 0 and 13, got %d", c.OCR.PageSegMode)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
	}

	switch c.Report.Format {
	case FormatJSON, FormatCSV, FormatHTML:
	default:
		return invalid("report.format must be json, csv or html, got '%s'", c.Report.Format)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

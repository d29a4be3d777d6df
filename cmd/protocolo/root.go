package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tsawler/protocolo"
	"github.com/tsawler/protocolo/internal/config"
	"github.com/tsawler/protocolo/internal/logger"
	"github.com/tsawler/protocolo/ocr"
	"github.com/tsawler/protocolo/raster"
	"github.com/tsawler/protocolo/split"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "protocolo",
	Short: "Extract protocol identifiers from scanned PDFs",
	Long: `protocolo renders every page of a PDF, OCRs it at several rotation angles,
and names the document after the protocol identifiers it finds.

Examples:
  protocolo run --source ./teste --dest ./renomeados
  protocolo run --config protocolo.yml --dry-run --report report.html --report-format html
  protocolo extract scan.pdf`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "write JSON logs instead of console output")
}

// loadConfig reads the configuration file and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("json-logs") {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		cfg.Log.Pretty = !jsonLogs
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: out,
	})
}

// buildPipeline wires the OCR engine, rasterizer and splitter selected by cfg.
// The returned close function releases the OCR engine.
func buildPipeline(cfg *config.Config, log zerolog.Logger, rec protocolo.Recorder) (*protocolo.Pipeline, func() error, error) {
	engine, err := ocr.New(ocr.Options{
		Languages:   cfg.OCR.Languages,
		PageSegMode: ocr.PageSegMode(cfg.OCR.PageSegMode),
		Whitelist:   cfg.OCR.Whitelist,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start OCR engine: %w", err)
	}

	splitter, err := split.New(cfg.SplitThreshold, cfg.SplitSpan)
	if err != nil {
		engine.Close()
		return nil, nil, err
	}
	splitter.TempDir = cfg.TempDir

	var rasterizer raster.Rasterizer = raster.NewFitz()
	if cfg.Rasterizer == config.RasterizerPdftoppm {
		p := raster.NewPdftoppm(cfg.PdftoppmPath)
		p.TempDir = cfg.TempDir
		rasterizer = p
	}

	opts := []protocolo.Option{
		protocolo.WithRecognizer(engine),
		protocolo.WithRasterizer(rasterizer),
		protocolo.WithSplitter(splitter),
		protocolo.WithLogger(logger.Component(log, "pipeline")),
	}
	if rec != nil {
		opts = append(opts, protocolo.WithRecorder(rec))
	}

	p, err := protocolo.New(cfg.Pipeline(), opts...)
	if err != nil {
		engine.Close()
		return nil, nil, err
	}
	return p, engine.Close, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/protocolo/internal/batch"
	"github.com/tsawler/protocolo/internal/config"
	"github.com/tsawler/protocolo/internal/logger"
	"github.com/tsawler/protocolo/internal/metrics"
	"github.com/tsawler/protocolo/internal/placement"
	"github.com/tsawler/protocolo/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rename every PDF in the source directory",
	Long: `Process every PDF in the source directory and copy (or move) it into the
destination directory, named after the identifiers found in it. Documents
without identifiers, and documents that fail, go to the not-found bucket.

Examples:
  protocolo run
  protocolo run --source /srv/intake --dest /srv/archive --mode move
  protocolo run --dry-run --report report.csv --report-format csv`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("source", "", "directory containing the PDFs")
	runCmd.Flags().String("dest", "", "destination directory")
	runCmd.Flags().String("mode", "", "placement mode (copy, move)")
	runCmd.Flags().StringP("report", "r", "", "write a batch report to this file")
	runCmd.Flags().String("report-format", "", "report format (json, csv, html)")
	runCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
	runCmd.Flags().Bool("dry-run", false, "compute destinations without touching files")
}

// applyRunFlags overrides cfg with the flags set on the command line.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	for flag, dst := range map[string]*string{
		"source":        &cfg.SourceDir,
		"dest":          &cfg.DestDir,
		"mode":          &cfg.Mode,
		"report":        &cfg.Report.Path,
		"report-format": &cfg.Report.Format,
		"metrics-file":  &cfg.Metrics.Textfile,
	} {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	return cfg.Validate()
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	log := newLogger(cfg, cmd.ErrOrStderr())
	m := metrics.New()

	pipeline, closeEngine, err := buildPipeline(cfg, log, m)
	if err != nil {
		return err
	}
	defer closeEngine()

	placer, err := placement.New(cfg.DestDir, cfg.NotFoundDir, placement.Mode(cfg.Mode), dryRun)
	if err != nil {
		return err
	}

	driver := &batch.Driver{
		Extractor: pipeline,
		Placer:    placer,
		Log:       logger.Component(log, "batch"),
		Recorder:  m,
	}

	rep, runErr := driver.Run(cmd.Context(), cfg.SourceDir, cfg.DestDir, dryRun)
	if rep == nil {
		return runErr
	}

	if cfg.Report.Path != "" {
		if err := report.WriteFile(rep, cfg.Report.Path, cfg.Report.Format); err != nil {
			log.Error().Err(err).Msg("failed to write report")
		} else {
			log.Info().Str("path", cfg.Report.Path).Str("format", cfg.Report.Format).Msg("report written")
		}
	}

	code := batch.ExitCode(rep)
	if runErr == nil && code == batch.ExitSuccess {
		m.BatchSucceeded(time.Now())
	}
	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error().Err(err).Msg("failed to write metrics")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d documents: %d found, %d not found, %d failed\n",
		rep.Total(), rep.Found, rep.NotFound, rep.Failed)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return &exitError{code: batch.ExitError}
		}
		return runErr
	}
	if code != batch.ExitSuccess {
		return &exitError{code: code}
	}
	return nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/protocolo/internal/batch"
)

var extractCmd = &cobra.Command{
	Use:   "extract file.pdf...",
	Short: "Print the identifiers found in PDF files",
	Long: `Run the extraction pipeline on the given files and print one line per file.
Nothing is copied or moved.

Examples:
  protocolo extract scan.pdf
  protocolo extract --log-level debug teste/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: extractFiles,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func extractFiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	pipeline, closeEngine, err := buildPipeline(cfg, log, nil)
	if err != nil {
		return err
	}
	defer closeEngine()

	failed := false
	out := cmd.OutOrStdout()
	for _, path := range args {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		res := pipeline.Extract(cmd.Context(), path)
		switch {
		case res.Err != nil:
			failed = true
			fmt.Fprintf(out, "%s\tERROR\t%v\n", path, res.Err)
		case len(res.Identifiers) == 0:
			fmt.Fprintf(out, "%s\tNOT FOUND\n", path)
		default:
			fmt.Fprintf(out, "%s\t%s\n", path, strings.Join(res.Identifiers, " "))
		}
	}

	if failed {
		return &exitError{code: batch.ExitWithFailures}
	}
	return nil
}

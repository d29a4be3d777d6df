// Command protocolo renames scanned PDFs after the protocol identifiers found
// in them.
//
// Usage:
//
//	protocolo run [--config protocolo.yml] [--source dir] [--dest dir] [--mode copy|move]
//	              [--report file --report-format json|csv|html] [--metrics-file path] [--dry-run]
//	protocolo extract file.pdf...
//	protocolo config
//	protocolo version
//
// OCR needs a binary built with the ocr tag:
//
//	go build -tags ocr ./cmd/protocolo
//
// Exit codes: 0 success, 1 fatal error, 2 finished with per-document failures.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

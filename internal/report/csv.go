package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// CSVExporter writes one row per document, for spreadsheets.
type CSVExporter struct{}

var csvHeader = []string{
	"file", "outcome", "identifiers", "destination", "pages",
	"ocr_passes", "ocr_failures", "stage", "error", "warnings", "seconds",
}

// Export implements Exporter. Identifiers and warnings are joined with "|".
func (CSVExporter) Export(r *Report, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range r.Entries {
		row := []string{
			e.File,
			e.Outcome,
			strings.Join(e.Identifiers, "|"),
			e.Destination,
			strconv.Itoa(e.Pages),
			strconv.Itoa(e.Variants),
			strconv.Itoa(e.Failures),
			e.Stage,
			e.Error,
			strings.Join(e.Warnings, "|"),
			strconv.FormatFloat(e.Duration.Seconds(), 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

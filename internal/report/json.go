package report

import (
	"encoding/json"
	"io"
)

// JSONExporter writes the report as indented JSON.
type JSONExporter struct{}

// Export implements Exporter.
func (JSONExporter) Export(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

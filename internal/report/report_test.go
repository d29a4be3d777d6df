package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"
)

func sampleReport() *Report {
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	r := New("./teste", "./renomeados", false, started)
	r.Add(Entry{
		File:        "a.pdf",
		Outcome:     OutcomeFound,
		Identifiers: []string{"100032290", "PIP1902094449"},
		Destination: "renomeados/100032290_PIP1902094449.pdf",
		Pages:       3,
		Variants:    24,
		Duration:    1500 * time.Millisecond,
	})
	r.Add(Entry{
		File:        "b.pdf",
		Outcome:     OutcomeNotFound,
		Destination: "renomeados/naoEncontrado/b.pdf",
		Pages:       1,
		Variants:    8,
		Failures:    1,
		Warnings:    []string{"recognize page 1 angle 45: boom"},
	})
	r.Add(Entry{
		File:    "<c>.pdf",
		Outcome: OutcomeFailed,
		Stage:   "inspect",
		Error:   "document unreadable",
	})
	r.Finished = started.Add(90 * time.Second)
	return r
}

func TestAddCountsOutcomes(t *testing.T) {
	r := sampleReport()
	if r.Found != 1 || r.NotFound != 1 || r.Failed != 1 || r.Total() != 3 {
		t.Errorf("unexpected totals: found=%d not_found=%d failed=%d total=%d", r.Found, r.NotFound, r.Failed, r.Total())
	}
	if r.Entries[1].Identifiers == nil {
		t.Error("identifiers must be an empty slice, not nil")
	}
	if r.Duration() != 90*time.Second {
		t.Errorf("duration = %v", r.Duration())
	}
}

func TestExporterFor(t *testing.T) {
	for _, format := range []string{"json", "csv", "html"} {
		if _, err := ExporterFor(format); err != nil {
			t.Errorf("ExporterFor(%q): %v", format, err)
		}
	}
	if _, err := ExporterFor("xml"); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONExporter{}).Export(sampleReport(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Found != 1 || len(got.Entries) != 3 {
		t.Errorf("unexpected report: %+v", got)
	}
	if !strings.Contains(buf.String(), `"identifiers": []`) {
		t.Error("empty identifiers should encode as []")
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (CSVExporter{}).Export(sampleReport(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if rows[1][2] != "100032290|PIP1902094449" {
		t.Errorf("identifiers cell = %q", rows[1][2])
	}
	if rows[1][10] != "1.50" {
		t.Errorf("seconds cell = %q", rows[1][10])
	}
	if rows[3][7] != "inspect" || rows[3][8] != "document unreadable" {
		t.Errorf("failure row = %v", rows[3])
	}
}

func TestHTMLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (HTMLExporter{}).Export(sampleReport(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(buf.String(), "<c>.pdf") {
		t.Error("file names must be escaped")
	}

	doc, err := html.Parse(&buf)
	if err != nil {
		t.Fatalf("invalid HTML: %v", err)
	}

	rows := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "tr" && attr(n, "class") != ""
	})
	if len(rows) != 3 {
		t.Fatalf("expected 3 document rows, got %d", len(rows))
	}
	if got := attr(rows[2], "class"); got != OutcomeFailed {
		t.Errorf("last row class = %q", got)
	}
	if got := textContent(rows[2]); !strings.Contains(got, "<c>.pdf") {
		t.Errorf("escaped file name not restored by parser: %q", got)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteFile(sampleReport(), path, "html"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "<!DOCTYPE html>") {
		t.Errorf("unexpected report start: %.40q", data)
	}

	if err := WriteFile(sampleReport(), path, "pdf"); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, match)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

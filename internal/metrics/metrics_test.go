package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tsawler/protocolo"
)

var _ protocolo.Recorder = (*Metrics)(nil)

func TestRecorderEvents(t *testing.T) {
	m := New()

	m.PageRendered()
	m.PageRendered()
	m.VariantRecognized(nil)
	m.VariantRecognized(nil)
	m.VariantRecognized(errors.New("boom"))
	m.DocumentDone(protocolo.OutcomeFound, 2*time.Second)
	m.DocumentDone(protocolo.OutcomeFailed, time.Second)
	m.RecordPlacement("copy")

	if got := testutil.ToFloat64(m.PagesTotal); got != 2 {
		t.Errorf("pages = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.OCRPassesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok passes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.OCRPassesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed passes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("found")); got != 1 {
		t.Errorf("found documents = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PlacementsTotal.WithLabelValues("copy")); got != 1 {
		t.Errorf("copy placements = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.DocumentDuration); got != 1 {
		t.Errorf("duration histogram series = %d, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.DocumentDone(protocolo.OutcomeNotFound, time.Second)
	m.BatchSucceeded(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "protocolo.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`protocolo_documents_total{outcome="not_found"} 1`,
		`protocolo_batch_last_success_timestamp_seconds 1.7e+09`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}

func TestWriteTextfileError(t *testing.T) {
	m := New()
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("expected error for missing directory")
	}
}

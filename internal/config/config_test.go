package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "protocolo.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
source_dir: /srv/intake
mode: move
angles: [0, 90]
ocr:
  languages: [por]
report:
  path: out.html
  format: html
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SourceDir != "/srv/intake" || cfg.Mode != ModeMove {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Angles, []float64{0, 90}) {
		t.Errorf("angles = %v", cfg.Angles)
	}
	if !reflect.DeepEqual(cfg.OCR.Languages, []string{"por"}) {
		t.Errorf("languages = %v", cfg.OCR.Languages)
	}
	if cfg.DestDir != "./renomeados" || cfg.DPI != 300 || cfg.OCR.PageSegMode != 3 {
		t.Errorf("defaults lost for unset keys: %+v", cfg)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PrimaryPattern != `[A-Z]{3}\d{10}` {
		t.Errorf("unexpected primary pattern %q", cfg.PrimaryPattern)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	if _, err := Load(writeConfig(t, "")); err != nil {
		t.Fatalf("empty file should load defaults: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "sourcedir: x\n"))
		if err == nil || !strings.Contains(err.Error(), "sourcedir") {
			t.Errorf("expected unknown key error, got %v", err)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(writeConfig(t, "mode: symlink\n"))
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PROTOCOLO_SOURCE_DIR", "/env/in")
	t.Setenv("PROTOCOLO_DEST_DIR", "/env/out")
	t.Setenv("PROTOCOLO_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "source_dir: /file/in\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourceDir != "/env/in" || cfg.DestDir != "/env/out" || cfg.Log.Level != "debug" {
		t.Errorf("environment not applied: %+v", cfg)
	}
}

func TestApplyEnvIgnoresEmpty(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(func(key string) (string, bool) { return "", true })
	if cfg.SourceDir != "./teste" {
		t.Errorf("empty env value replaced source dir with %q", cfg.SourceDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty source", func(c *Config) { c.SourceDir = "" }},
		{"empty dest", func(c *Config) { c.DestDir = "" }},
		{"absolute not found dir", func(c *Config) { c.NotFoundDir = "/tmp/x" }},
		{"escaping not found dir", func(c *Config) { c.NotFoundDir = "../x" }},
		{"bad mode", func(c *Config) { c.Mode = "link" }},
		{"zero dpi", func(c *Config) { c.DPI = 0 }},
		{"zero threshold", func(c *Config) { c.SplitThreshold = 0 }},
		{"zero span", func(c *Config) { c.SplitSpan = -1 }},
		{"no angles", func(c *Config) { c.Angles = nil }},
		{"bad engine", func(c *Config) { c.RegexEngine = "pcre" }},
		{"bad pattern", func(c *Config) { c.SecondaryPattern = "(" }},
		{"bad rasterizer", func(c *Config) { c.Rasterizer = "ghostscript" }},
		{"pdftoppm without path", func(c *Config) { c.Rasterizer = RasterizerPdftoppm; c.PdftoppmPath = "" }},
		{"bad psm", func(c *Config) { c.OCR.PageSegMode = 14 }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad report format", func(c *Config) { c.Report.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	cfg := Default()
	pc := cfg.Pipeline()
	if err := pc.Validate(); err != nil {
		t.Fatalf("pipeline config invalid: %v", err)
	}

	pc.Angles[0] = 99
	if cfg.Angles[0] != 0 {
		t.Error("pipeline config shares the angle slice")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Report.Path = "report.csv"

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), "not_found_dir: naoEncontrado") {
		t.Errorf("unexpected YAML:\n%s", data)
	}

	loaded, err := Load(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

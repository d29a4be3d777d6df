package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/protocolo/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "protocolo "+version {
		t.Errorf("unexpected output %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protocolo.yml")
	if err := os.WriteFile(path, []byte("dpi: 200\nmode: move\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "config", "--config", path)
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	printed := filepath.Join(t.TempDir(), "printed.yml")
	if err := os.WriteFile(printed, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(printed)
	if err != nil {
		t.Fatalf("printed config does not load: %v\n%s", err, out)
	}
	if cfg.DPI != 200 || cfg.Mode != config.ModeMove {
		t.Errorf("file values missing from printed config: %+v", cfg)
	}
}

func TestApplyRunFlags(t *testing.T) {
	if err := runCmd.Flags().Set("mode", "move"); err != nil {
		t.Fatal(err)
	}
	if err := runCmd.Flags().Set("dest", "/srv/out"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		runCmd.Flags().Set("mode", "")
		runCmd.Flags().Set("dest", "")
	})

	cfg := config.Default()
	if err := applyRunFlags(runCmd, cfg); err != nil {
		t.Fatalf("applyRunFlags: %v", err)
	}
	if cfg.Mode != config.ModeMove || cfg.DestDir != "/srv/out" || cfg.SourceDir != "./teste" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

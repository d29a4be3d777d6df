package raster

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// runner executes an external command and returns its combined output.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return stderr.Bytes(), err
	}
	return out, nil
}

// Pdftoppm renders pages with Poppler's pdftoppm command.
type Pdftoppm struct {
	// Binary is the pdftoppm executable. Empty means "pdftoppm" on PATH.
	Binary string

	// TempDir is where page images are written. Empty means os.TempDir().
	TempDir string

	run runner
}

// NewPdftoppm returns a rasterizer that invokes binary (or "pdftoppm").
func NewPdftoppm(binary string) *Pdftoppm {
	return &Pdftoppm{Binary: binary, run: execRunner}
}

// Render implements Rasterizer. All pages are written to disk by a single
// pdftoppm call, then decoded and handed to fn one at a time.
func (p *Pdftoppm) Render(ctx context.Context, path string, dpi float64, fn func(Page) error) error {
	if dpi <= 0 {
		return fmt.Errorf("%w: invalid resolution %v", ErrConversion, dpi)
	}

	dir, err := os.MkdirTemp(p.TempDir, "protocolo-ppm-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConversion, err)
	}
	defer os.RemoveAll(dir)

	bin := p.Binary
	if bin == "" {
		bin = "pdftoppm"
	}
	run := p.run
	if run == nil {
		run = execRunner
	}

	prefix := filepath.Join(dir, "page")
	res := strconv.FormatFloat(dpi, 'f', -1, 64)
	if out, err := run(ctx, bin, "-r", res, "-png", path, prefix); err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrConversion, bin, err, strings.TrimSpace(string(out)))
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConversion, err)
	}
	sort.Slice(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := decodePNG(file)
		if err != nil {
			return err
		}
		page.Number = pageNumber(file)
		if err := fn(page); err != nil {
			return err
		}
	}

	return nil
}

func decodePNG(file string) (Page, error) {
	f, err := os.Open(file)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return Page{}, fmt.Errorf("%w: decode %s: %v", ErrConversion, filepath.Base(file), err)
	}
	return Page{Image: img}, nil
}

// pageNumber parses N from ".../page-N.png". pdftoppm zero-pads N.
func pageNumber(file string) int {
	name := strings.TrimSuffix(filepath.Base(file), ".png")
	i := strings.LastIndexByte(name, '-')
	if i < 0 {
		return 0
	}
	n, _ := strconv.Atoi(name[i+1:])
	return n
}

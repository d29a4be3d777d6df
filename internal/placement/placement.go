// Package placement copies or moves processed documents into the destination
// tree.
//
// A document with identifiers is named after them, joined by underscores:
//
//	<dest>/PIP1902094449_100032290.pdf
//
// A document without identifiers, or one that failed, keeps its original name
// inside the not-found bucket:
//
//	<dest>/naoEncontrado/scan-0042.pdf
//
// Existing files are never overwritten; a numeric suffix (-2, -3, ...) is
// added instead. Names are NFC-normalized so that decomposed accents coming
// from some filesystems do not produce look-alike duplicates.
package placement

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Mode selects how files are placed.
type Mode string

const (
	Copy Mode = "copy"
	Move Mode = "move"
)

// ErrMode is returned for an unknown Mode.
var ErrMode = errors.New("placement: unknown mode")

// maxSuffix bounds the collision search.
const maxSuffix = 10000

// Placement describes where one document went.
type Placement struct {
	Source      string
	Destination string
	Action      string // "copy", "move" or "dry_run"
	NotFound    bool
}

// Placer places documents under DestDir.
type Placer struct {
	DestDir     string
	NotFoundDir string
	Mode        Mode

	// DryRun computes destinations without touching the filesystem.
	DryRun bool

	// reserved holds destinations handed out during a dry run.
	reserved map[string]bool
}

// New returns a Placer.
func New(destDir, notFoundDir string, mode Mode, dryRun bool) (*Placer, error) {
	if mode != Copy && mode != Move {
		return nil, fmt.Errorf("%w: %q", ErrMode, mode)
	}
	return &Placer{
		DestDir:     destDir,
		NotFoundDir: notFoundDir,
		Mode:        mode,
		DryRun:      dryRun,
		reserved:    make(map[string]bool),
	}, nil
}

// Name returns the destination file name for identifiers, or "" when there
// are none.
func Name(identifiers []string, ext string) string {
	if len(identifiers) == 0 {
		return ""
	}
	if ext == "" {
		ext = ".pdf"
	}
	return norm.NFC.String(strings.Join(identifiers, "_") + strings.ToLower(ext))
}

// Target returns the preferred destination for src before collision
// handling.
func (p *Placer) Target(src string, identifiers []string) (path string, notFound bool) {
	if name := Name(identifiers, filepath.Ext(src)); name != "" {
		return filepath.Join(p.DestDir, name), false
	}
	return filepath.Join(p.DestDir, p.NotFoundDir, norm.NFC.String(filepath.Base(src))), true
}

// Place copies or moves src to its destination.
func (p *Placer) Place(src string, identifiers []string) (Placement, error) {
	target, notFound := p.Target(src, identifiers)
	pl := Placement{Source: src, NotFound: notFound, Action: string(p.Mode)}

	if p.DryRun {
		dst, err := p.free(target)
		if err != nil {
			return pl, err
		}
		p.reserved[dst] = true
		pl.Destination = dst
		pl.Action = "dry_run"
		return pl, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return pl, fmt.Errorf("failed to create destination directory: %w", err)
	}

	var (
		dst string
		err error
	)
	switch p.Mode {
	case Copy:
		dst, err = p.copyFile(src, target)
	case Move:
		dst, err = p.moveFile(src, target)
	default:
		err = fmt.Errorf("%w: %q", ErrMode, p.Mode)
	}
	if err != nil {
		return pl, err
	}

	pl.Destination = dst
	return pl, nil
}

// free returns the first candidate for target that does not exist yet.
func (p *Placer) free(target string) (string, error) {
	for i := 1; i <= maxSuffix; i++ {
		candidate := withSuffix(target, i)
		if p.reserved[candidate] {
			continue
		}
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("failed to check destination: %w", err)
		}
	}
	return "", fmt.Errorf("no free destination name for %s", target)
}

// withSuffix returns target for n == 1 and name-n.ext otherwise.
func withSuffix(target string, n int) string {
	if n == 1 {
		return target
	}
	ext := filepath.Ext(target)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(target, ext), n, ext)
}

// copyFile copies src to the first free name for target. The destination is
// created exclusively.
func (p *Placer) copyFile(src, target string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	for i := 1; i <= maxSuffix; i++ {
		dst := withSuffix(target, i)
		out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create destination: %w", err)
		}

		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			os.Remove(dst)
			return "", fmt.Errorf("failed to copy %s: %w", filepath.Base(src), err)
		}
		if err := out.Close(); err != nil {
			os.Remove(dst)
			return "", fmt.Errorf("failed to copy %s: %w", filepath.Base(src), err)
		}
		return dst, nil
	}
	return "", fmt.Errorf("no free destination name for %s", target)
}

// moveFile renames src, falling back to copy and delete across filesystems.
func (p *Placer) moveFile(src, target string) (string, error) {
	dst, err := p.free(target)
	if err != nil {
		return "", err
	}
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	dst, err = p.copyFile(src, target)
	if err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		return dst, fmt.Errorf("copied to %s but failed to remove source: %w", dst, err)
	}
	return dst, nil
}

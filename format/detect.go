// Package format recognizes PDF documents by name and by content.
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
)

// String returns the string representation of the format.
func (f Format) String() string {
	if f == PDF {
		return "PDF"
	}
	return "Unknown"
}

// headerWindow is how far into a file the %PDF- marker may appear. Some
// scanners prepend junk bytes, which readers are expected to tolerate.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// ErrNotPDF is returned by Check for files that do not carry a PDF header.
var ErrNotPDF = errors.New("not a PDF document")

// Detect determines the format from the filename extension.
func Detect(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return PDF
	}
	return Unknown
}

// DetectFromMagic reports PDF when the %PDF- marker appears within the first
// kilobyte of data.
func DetectFromMagic(data []byte) Format {
	if len(data) > headerWindow {
		data = data[:headerWindow]
	}
	if bytes.Contains(data, pdfMagic) {
		return PDF
	}
	return Unknown
}

// DetectFromReader inspects the start of r.
func DetectFromReader(r io.ReaderAt) (Format, error) {
	buf := make([]byte, headerWindow)
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	return DetectFromMagic(buf[:n]), nil
}

// Check opens path and returns ErrNotPDF unless its content looks like a PDF.
func Check(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	got, err := DetectFromReader(f)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if got != PDF {
		return ErrNotPDF
	}
	return nil
}

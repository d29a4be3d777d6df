package raster

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// Fitz renders pages in-process with MuPDF.
type Fitz struct{}

// NewFitz returns a MuPDF-backed rasterizer.
func NewFitz() *Fitz {
	return &Fitz{}
}

// Render implements Rasterizer.
func (f *Fitz) Render(ctx context.Context, path string, dpi float64, fn func(Page) error) error {
	if dpi <= 0 {
		return fmt.Errorf("%w: invalid resolution %v", ErrConversion, dpi)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConversion, err)
	}
	defer doc.Close()

	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return fmt.Errorf("%w: page %d: %v", ErrConversion, i+1, err)
		}
		if err := fn(Page{Number: i + 1, Image: img}); err != nil {
			return err
		}
	}

	return nil
}

// PageTexts implements TextExtractor.
func (f *Fitz) PageTexts(ctx context.Context, path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	defer doc.Close()

	texts := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d text: %v", ErrConversion, i+1, err)
		}
		texts = append(texts, text)
	}

	return texts, nil
}

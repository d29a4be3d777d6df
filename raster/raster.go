package raster

import (
	"context"
	"errors"
	"image"
)

// ErrConversion is returned when a document cannot be opened, parsed or
// rendered (corrupt or encrypted PDFs, missing renderer).
var ErrConversion = errors.New("raster: conversion failed")

// Page is one rendered page.
type Page struct {
	// Number is the 1-based page number within the rendered file.
	Number int
	Image  image.Image
}

// Rasterizer renders every page of a PDF at the given resolution and calls fn
// once per page in order. Rendering stops at the first error returned by fn,
// which is passed through unchanged.
type Rasterizer interface {
	Render(ctx context.Context, path string, dpi float64, fn func(Page) error) error
}

// TextExtractor returns the embedded text layer of each page, in page order.
type TextExtractor interface {
	PageTexts(ctx context.Context, path string) ([]string, error)
}

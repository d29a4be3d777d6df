// Package raster renders PDF pages to images.
//
// Two backends implement [Rasterizer]:
//
//   - [Fitz] renders in-process with MuPDF through go-fitz. It also implements
//     [TextExtractor] for documents that carry a text layer.
//   - [Pdftoppm] shells out to Poppler's pdftoppm and decodes the PNG files it
//     writes to a temporary directory.
//
// Pages are delivered one at a time, in page order, to a callback:
//
//	err := raster.NewFitz().Render(ctx, "scan.pdf", 300, func(p raster.Page) error {
//	    fmt.Println(p.Number, p.Image.Bounds())
//	    return nil
//	})
//
// A page image must not be retained after the callback returns. Any failure to
// open, parse or render the document is reported as an error wrapping
// [ErrConversion].
package raster

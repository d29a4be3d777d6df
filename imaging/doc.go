// Package imaging prepares rendered PDF pages for OCR.
//
// # Normalization
//
// [Normalize] runs a fixed cleanup pipeline over a page image:
//
//   - grayscale conversion (ITU-R 601 luma)
//   - 3x3 median blur to suppress scan noise
//   - global binarization with an Otsu-selected threshold
//   - one dilation followed by one erosion with a 1x1 structuring element
//
// The result is a black-on-white [image.Gray] with the same bounds as the input.
//
// # Rotation Variants
//
// Scanned intake documents are often skewed by an unpredictable angle. Instead of
// detecting skew, callers iterate a configured angle set with a [Rotator]:
//
//	r := imaging.NewRotator()
//	err := r.Each(binary, []float64{0, 2, -2, 45}, func(angle float64, v *image.Gray) error {
//	    text, err := engine.Recognize(ctx, v)
//	    // ...
//	    return nil
//	})
//
// Each variant is rotated about the image center onto a canvas of the same size.
// Corners that fall outside the canvas are clipped. The variant passed to the
// callback is only valid until the callback returns; the Rotator reuses a single
// buffer for every angle so at most one variant is alive at a time.
package imaging

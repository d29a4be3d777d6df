package imaging

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// background is the gray level painted where a rotated image leaves the canvas
// uncovered. Normalized pages are black text on white.
const background = 255

// Rotator produces rotation variants of a normalized page. It owns a single
// scratch buffer that is overwritten for every angle, so a Rotator must not be
// shared between goroutines.
type Rotator struct {
	scratch *image.Gray
	interp  draw.Interpolator
}

// NewRotator returns a Rotator using bilinear interpolation.
func NewRotator() *Rotator {
	return &Rotator{interp: draw.BiLinear}
}

// Each calls fn once per angle, in order, with img rotated by that angle in
// degrees (counter-clockwise) about its center. Zero angles (and full turns)
// pass img through unchanged. The variant handed to fn is only valid until fn
// returns. Iteration stops at the first error returned by fn.
func (r *Rotator) Each(img *image.Gray, angles []float64, fn func(angle float64, variant *image.Gray) error) error {
	if img.Rect.Empty() {
		return ErrEmptyImage
	}
	for _, angle := range angles {
		variant := img
		if !isFullTurn(angle) {
			variant = r.rotate(img, angle)
		}
		if err := fn(angle, variant); err != nil {
			return err
		}
	}
	return nil
}

// Release drops the scratch buffer. The Rotator stays usable and allocates a
// new buffer on the next rotation.
func (r *Rotator) Release() {
	r.scratch = nil
}

func (r *Rotator) rotate(src *image.Gray, angle float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if r.scratch == nil || r.scratch.Rect.Dx() != w || r.scratch.Rect.Dy() != h {
		r.scratch = image.NewGray(image.Rect(0, 0, w, h))
	}
	Rotate(r.scratch, src, angle, r.interp)
	return r.scratch
}

// Rotate draws src rotated by angle degrees about its center into dst. dst is
// first filled with the background color; content rotated past the edges of
// dst is clipped. A nil interpolator selects bilinear sampling.
func Rotate(dst, src *image.Gray, angle float64, interp draw.Interpolator) {
	if interp == nil {
		interp = draw.BiLinear
	}
	for i := range dst.Pix {
		dst.Pix[i] = background
	}

	b := src.Bounds()
	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2

	rad := angle * math.Pi / 180
	alpha, beta := math.Cos(rad), math.Sin(rad)

	// Source-to-destination matrix in the same form as OpenCV's
	// getRotationMatrix2D, shifted so the source origin lands on dst.Min.
	s2d := f64.Aff3{
		alpha, beta, (1-alpha)*cx - beta*cy - float64(b.Min.X) + float64(dst.Rect.Min.X),
		-beta, alpha, beta*cx + (1-alpha)*cy - float64(b.Min.Y) + float64(dst.Rect.Min.Y),
	}
	interp.Transform(dst, s2d, src, b, draw.Src, nil)
}

func isFullTurn(angle float64) bool {
	return math.Mod(angle, 360) == 0
}

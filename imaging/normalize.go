package imaging

import (
	"errors"
	"image"
	"image/draw"
)

// ErrEmptyImage is returned when an image has no pixels.
var ErrEmptyImage = errors.New("imaging: empty image")

const (
	// medianKernel is the side of the median blur window.
	medianKernel = 3

	// morphKernel is the side of the dilation/erosion structuring element.
	morphKernel = 1
)

// Normalize converts img into a binarized grayscale image suitable for OCR.
// The returned image always has bounds starting at the origin with the same
// width and height as img.
func Normalize(img image.Image) (*image.Gray, error) {
	gray, err := Grayscale(img)
	if err != nil {
		return nil, err
	}

	blurred := MedianBlur(gray, medianKernel)
	binary := Binarize(blurred, OtsuThreshold(blurred))

	return Erode(Dilate(binary, morphKernel), morphKernel), nil
}

// Grayscale converts img to an 8-bit grayscale image anchored at the origin.
func Grayscale(img image.Image) (*image.Gray, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}

	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			srcOff := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+b.Dx()], src.Pix[srcOff:srcOff+b.Dx()])
		}
	case *image.RGBA:
		// Fast path for renderer output; same weights as color.GrayModel.
		for y := 0; y < b.Dy(); y++ {
			srcOff := src.PixOffset(b.Min.X, b.Min.Y+y)
			dstOff := y * gray.Stride
			for x := 0; x < b.Dx(); x++ {
				p := src.Pix[srcOff+x*4 : srcOff+x*4+3 : srcOff+x*4+3]
				lum := (19595*uint32(p[0]) + 38470*uint32(p[1]) + 7471*uint32(p[2]) + 1<<15) >> 16
				gray.Pix[dstOff+x] = uint8(lum)
			}
		}
	default:
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	}

	return gray, nil
}

// MedianBlur replaces every pixel with the median of the k x k window around
// it. Pixels outside the image are treated as copies of the nearest edge pixel.
// k must be odd; even values are rounded up.
func MedianBlur(src *image.Gray, k int) *image.Gray {
	if k <= 1 {
		return cloneGray(src)
	}
	if k%2 == 0 {
		k++
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	r := k / 2
	window := make([]uint8, 0, k*k)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -r; dy <= r; dy++ {
				yy := clamp(y+dy, 0, h-1)
				row := rowOf(src, yy)
				for dx := -r; dx <= r; dx++ {
					window = append(window, row[clamp(x+dx, 0, w-1)])
				}
			}
			dst.Pix[y*dst.Stride+x] = median(window)
		}
	}

	return dst
}

// OtsuThreshold returns the gray level that maximizes the between-class
// variance of the image histogram.
func OtsuThreshold(img *image.Gray) uint8 {
	var hist [256]int
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		for _, v := range rowOf(img, y) {
			hist[v]++
		}
	}

	total := w * h
	if total == 0 {
		return 0
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var (
		sumB     float64
		weightB  int
		best     float64
		bestT    int
		foundAny bool
	)
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])

		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if !foundAny || between > best {
			best = between
			bestT = t
			foundAny = true
		}
	}

	return uint8(bestT)
}

// Binarize maps pixels above threshold to white and everything else to black.
func Binarize(src *image.Gray, threshold uint8) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range rowOf(src, y) {
			if v > threshold {
				dstRow[x] = 255
			}
		}
	}
	return dst
}

// Dilate grows white regions using a k x k rectangular structuring element.
func Dilate(src *image.Gray, k int) *image.Gray {
	return morph(src, k, func(a, b uint8) bool { return b > a })
}

// Erode shrinks white regions using a k x k rectangular structuring element.
func Erode(src *image.Gray, k int) *image.Gray {
	return morph(src, k, func(a, b uint8) bool { return b < a })
}

// morph applies a rank filter that keeps the window value preferred by better.
func morph(src *image.Gray, k int, better func(cur, cand uint8) bool) *image.Gray {
	if k <= 1 {
		return cloneGray(src)
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	lo := -(k - 1) / 2
	hi := k / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := rowOf(src, y)[x]
			for dy := lo; dy <= hi; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				row := rowOf(src, yy)
				for dx := lo; dx <= hi; dx++ {
					xx := x + dx
					if xx < 0 || xx >= w {
						continue
					}
					if c := row[xx]; better(v, c) {
						v = c
					}
				}
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}

	return dst
}

func cloneGray(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], rowOf(src, y))
	}
	return dst
}

// rowOf returns the pixels of row y relative to the image bounds.
func rowOf(img *image.Gray, y int) []uint8 {
	off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
	return img.Pix[off : off+img.Rect.Dx()]
}

// median returns the middle value of a small window using insertion sort.
func median(window []uint8) uint8 {
	for i := 1; i < len(window); i++ {
		v := window[i]
		j := i - 1
		for j >= 0 && window[j] > v {
			window[j+1] = window[j]
			j--
		}
		window[j+1] = v
	}
	return window[len(window)/2]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

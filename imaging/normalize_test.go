package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// newPage creates a white gray page with a dark rectangle.
func newPage(w, h int, dark image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 230
	}
	for y := dark.Min.Y; y < dark.Max.Y; y++ {
		for x := dark.Min.X; x < dark.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 20})
		}
	}
	return img
}

func TestGrayscaleRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})
	img.Set(1, 0, color.RGBA{255, 0, 0, 255})

	gray, err := Grayscale(img)
	if err != nil {
		t.Fatalf("Grayscale failed: %v", err)
	}

	if got := gray.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("expected white to stay 255, got %d", got)
	}
	want := color.GrayModel.Convert(color.RGBA{255, 0, 0, 255}).(color.Gray).Y
	if got := gray.GrayAt(1, 0).Y; got != want {
		t.Errorf("expected red luma %d, got %d", want, got)
	}
}

func TestGrayscaleSubImage(t *testing.T) {
	page := newPage(10, 10, image.Rect(5, 5, 10, 10))
	sub := page.SubImage(image.Rect(5, 5, 10, 10)).(*image.Gray)

	gray, err := Grayscale(sub)
	if err != nil {
		t.Fatalf("Grayscale failed: %v", err)
	}
	if gray.Bounds() != image.Rect(0, 0, 5, 5) {
		t.Fatalf("expected origin-anchored bounds, got %v", gray.Bounds())
	}
	if got := gray.GrayAt(0, 0).Y; got != 20 {
		t.Errorf("expected dark pixel, got %d", got)
	}
}

func TestGrayscaleEmpty(t *testing.T) {
	_, err := Grayscale(image.NewGray(image.Rect(0, 0, 0, 0)))
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}

func TestMedianBlurRemovesSpeckle(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 5, 5))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(2, 2, color.Gray{Y: 0})

	out := MedianBlur(img, 3)
	if got := out.GrayAt(2, 2).Y; got != 255 {
		t.Errorf("expected isolated dark pixel to be removed, got %d", got)
	}
}

func TestMedianBlurKeepsSolidRegions(t *testing.T) {
	img := newPage(12, 12, image.Rect(2, 2, 10, 10))
	out := MedianBlur(img, 3)

	if got := out.GrayAt(6, 6).Y; got != 20 {
		t.Errorf("expected interior to stay dark, got %d", got)
	}
	if got := out.GrayAt(0, 0).Y; got != 230 {
		t.Errorf("expected background to stay light, got %d", got)
	}
}

func TestOtsuThreshold(t *testing.T) {
	img := newPage(20, 20, image.Rect(0, 0, 10, 20))

	thr := OtsuThreshold(img)
	if thr < 20 || thr >= 230 {
		t.Fatalf("expected threshold between the two modes, got %d", thr)
	}
}

func TestOtsuThresholdUniform(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	out := Binarize(img, OtsuThreshold(img))
	for i, v := range out.Pix {
		if v != 255 {
			t.Fatalf("pixel %d: expected uniform white image to stay white, got %d", i, v)
		}
	}
}

func TestBinarize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix = []uint8{10, 100, 101}

	out := Binarize(img, 100)
	want := []uint8{0, 0, 255}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Errorf("pixel %d: expected %d, got %d", i, want[i], out.Pix[i])
		}
	}
}

func TestDilateErode(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 5, 5))
	img.SetGray(2, 2, color.Gray{Y: 255})

	tests := []struct {
		name  string
		fn    func(*image.Gray, int) *image.Gray
		k     int
		x, y  int
		value uint8
	}{
		{"dilate grows white", Dilate, 3, 1, 1, 255},
		{"dilate k=1 is identity", Dilate, 1, 1, 1, 0},
		{"erode removes single white pixel", Erode, 3, 2, 2, 0},
		{"erode k=1 is identity", Erode, 1, 2, 2, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fn(img, tt.k)
			if got := out.GrayAt(tt.x, tt.y).Y; got != tt.value {
				t.Errorf("expected %d at (%d,%d), got %d", tt.value, tt.x, tt.y, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	img := newPage(40, 30, image.Rect(10, 10, 30, 20))

	out, err := Normalize(img)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if out.Bounds() != img.Bounds() {
		t.Fatalf("expected bounds %v, got %v", img.Bounds(), out.Bounds())
	}
	for _, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("expected binary output, found %d", v)
		}
	}
	if got := out.GrayAt(20, 15).Y; got != 0 {
		t.Errorf("expected text region to be black, got %d", got)
	}
	if got := out.GrayAt(2, 2).Y; got != 255 {
		t.Errorf("expected background to be white, got %d", got)
	}
}

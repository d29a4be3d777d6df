package ocr

import (
	"bytes"
	"fmt"
	"image"

	"golang.org/x/image/bmp"
)

// EncodeBMP encodes img as a BMP file. Grayscale images become 8-bit
// paletted BMPs, which Leptonica reads without decompression.
func EncodeBMP(img image.Image) ([]byte, error) {
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("failed to encode BMP: empty image")
	}

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode BMP: %w", err)
	}

	return buf.Bytes(), nil
}

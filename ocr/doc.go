// Package ocr recognizes text in page images with the Tesseract OCR engine.
//
// The engine is reached through gosseract and is only compiled in with the
// "ocr" build tag:
//
//	go build -tags ocr ./...
//
// This requires Tesseract and Leptonica to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-por libtesseract-dev
//
// Without the tag, [New] returns [ErrOCRNotEnabled].
//
// A [Client] holds one Tesseract handle and is not safe for concurrent use.
// Images handed to [Client.Recognize] are encoded as uncompressed 8-bit BMP
// before being passed to the engine.
package ocr

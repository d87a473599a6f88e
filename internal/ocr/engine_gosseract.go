//go:build cgo

package ocr

import (
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is the production Engine, backed by the gosseract bindings.
//
// A fresh client is created per call: gosseract clients are not safe for
// concurrent use, and detection calls may overlap across strategies.
type Tesseract struct {
	language       string
	tessdataPrefix string
}

// NewTesseract creates a Tesseract engine for the given language code
// (e.g. "eng"). tessdataPrefix optionally points at the directory holding
// the language's training data; empty uses the system default.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language, tessdataPrefix: tessdataPrefix}
}

// Recognize runs word-level OCR on the image at path.
func (t *Tesseract) Recognize(path string) ([]RawWord, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(t.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]RawWord, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, RawWord{
			Text:       box.Word,
			Confidence: box.Confidence,
			Box:        image.Rect(box.Box.Min.X, box.Box.Min.Y, box.Box.Max.X, box.Box.Max.Y),
		})
	}
	return words, nil
}

//go:build !cgo

package ocr

import "fmt"

// Tesseract is a stub for builds without cgo: every call reports the engine
// as unavailable, which the adapter turns into graceful degradation to
// template-matching-only.
type Tesseract struct{}

// NewTesseract returns the unavailable stub engine.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	return &Tesseract{}
}

// Recognize always fails: the binary was built without Tesseract bindings.
func (t *Tesseract) Recognize(path string) ([]RawWord, error) {
	return nil, fmt.Errorf("tesseract bindings not compiled in (cgo disabled)")
}

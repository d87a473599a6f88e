// Package ocr adapts the external Tesseract OCR engine to the detection
// pipeline's text-recognition boundary.
//
// The package's own responsibility is narrow: render the preprocessed buffer
// to a form the engine accepts, bound the engine call with a timeout,
// normalize raw word output into TextTokens, filter low-confidence noise,
// and map every engine-specific failure into ErrRecognitionUnavailable so
// the rest of the pipeline never depends on engine internals.
//
// # Prerequisites
//
// The production engine requires Tesseract and its language data on the
// system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Builds without cgo substitute a stub engine that reports itself
// unavailable; detection then runs template-matching-only.
//
// # Degradation
//
// ErrRecognitionUnavailable is never fatal. The pipeline absorbs it and
// proceeds with the template matcher alone, which is the primary fallback
// path and is exercised directly by tests.
//
// # Temporary Files
//
// Recognize writes the preprocessed buffer to a temporary PNG because
// Tesseract consumes file paths. The file is removed when the call returns.
package ocr

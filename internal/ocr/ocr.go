package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/bonktools/build-detect/internal/preprocess"
	"github.com/bonktools/build-detect/pkg/types"
)

// ErrRecognitionUnavailable is the single error condition the rest of the
// pipeline sees from this package. Engine initialization failures, engine
// call failures, and per-call timeouts are all normalized into it so nothing
// downstream depends on engine internals. The pipeline responds by degrading
// to template-matching-only.
var ErrRecognitionUnavailable = errors.New("text recognition unavailable")

// DefaultMinConfidence is the token confidence floor below which recognized
// words are discarded as noise.
const DefaultMinConfidence = 0.4

// DefaultTimeout bounds a single engine call. The external engine is the
// longest-latency operation in a detection; past this it is treated as
// unavailable rather than hanging the whole call.
const DefaultTimeout = 8 * time.Second

// RawWord is one word as reported by the underlying engine, before
// normalization. Confidence uses the engine's 0-100 scale.
type RawWord struct {
	Text       string
	Confidence float64
	Box        image.Rectangle
}

// Engine is the external recognition engine boundary. Implementations read
// the image at path and return raw word-level results.
//
// Engines are not required to honor cancellation; the adapter bounds them
// with a timeout and discards late results.
type Engine interface {
	Recognize(path string) ([]RawWord, error)
}

// Adapter wraps an external recognition engine, normalizing its output into
// TextTokens and its failure modes into ErrRecognitionUnavailable.
type Adapter struct {
	engine        Engine
	minConfidence float64
	timeout       time.Duration
	log           *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithMinConfidence overrides the token confidence floor.
func WithMinConfidence(min float64) Option {
	return func(a *Adapter) { a.minConfidence = min }
}

// WithTimeout overrides the per-call engine timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// NewAdapter creates an adapter over the given engine.
func NewAdapter(engine Engine, log *slog.Logger, opts ...Option) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	a := &Adapter{
		engine:        engine,
		minConfidence: DefaultMinConfidence,
		timeout:       DefaultTimeout,
		log:           log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// engineResult carries an engine call's outcome across the timeout boundary.
type engineResult struct {
	words []RawWord
	err   error
}

// Recognize extracts text tokens from the preprocessed image.
//
// The buffer is rendered to a temporary PNG (the engine consumes file
// paths), the engine call is bounded by the adapter's timeout, tokens below
// the confidence floor are dropped, and bounding boxes are mapped back to
// original-image coordinates by undoing the preprocessing scale.
//
// Every failure path returns an error wrapping ErrRecognitionUnavailable.
func (a *Adapter) Recognize(ctx context.Context, pre *preprocess.Image) ([]types.TextToken, error) {
	if a.engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", ErrRecognitionUnavailable)
	}

	path, err := writeTempPNG(pre)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}
	defer os.Remove(path)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// The engine call cannot be interrupted; on timeout or cancellation the
	// goroutine finishes in the background and its result is discarded. The
	// buffered channel lets it exit without a receiver.
	ch := make(chan engineResult, 1)
	go func() {
		words, err := a.engine.Recognize(path)
		ch <- engineResult{words: words, err: err}
	}()

	select {
	case <-ctx.Done():
		a.log.Warn("recognition timed out", slog.Duration("timeout", a.timeout))
		return nil, fmt.Errorf("%w: %v", ErrRecognitionUnavailable, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			a.log.Warn("recognition engine failed", slog.String("error", res.err.Error()))
			return nil, fmt.Errorf("%w: %v", ErrRecognitionUnavailable, res.err)
		}
		return a.normalize(res.words, pre.Scale), nil
	}
}

// normalize converts raw engine words into TextTokens: confidence rescaled
// to [0, 1], noise filtered, and boxes mapped to original coordinates.
func (a *Adapter) normalize(words []RawWord, scale float64) []types.TextToken {
	inv := 1.0
	if scale > 0 && scale != 1.0 {
		inv = 1.0 / scale
	}

	tokens := make([]types.TextToken, 0, len(words))
	for _, w := range words {
		if w.Text == "" {
			continue
		}
		conf := w.Confidence / 100.0
		if conf < a.minConfidence {
			continue
		}
		tokens = append(tokens, types.TextToken{
			Text:       w.Text,
			Confidence: conf,
			Box: types.BoundingBox{
				X: int(math.Round(float64(w.Box.Min.X) * inv)),
				Y: int(math.Round(float64(w.Box.Min.Y) * inv)),
				W: int(math.Round(float64(w.Box.Dx()) * inv)),
				H: int(math.Round(float64(w.Box.Dy()) * inv)),
			},
		})
	}
	return tokens
}

// writeTempPNG renders the intensity buffer to a temporary grayscale PNG
// and returns its path. The caller removes the file.
func writeTempPNG(pre *preprocess.Image) (string, error) {
	gray := image.NewGray(image.Rect(0, 0, pre.Width, pre.Height))
	for i, v := range pre.Pix {
		gray.Pix[i] = uint8(math.Round(v * 255))
	}

	f, err := os.CreateTemp("", "build-detect-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()

	if err := png.Encode(f, gray); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

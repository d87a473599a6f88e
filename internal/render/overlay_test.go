package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonktools/build-detect/pkg/types"
)

func blackScreenshot(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{A: 255})
		}
	}
	return img
}

func decodeOverlay(t *testing.T, buf *bytes.Buffer) image.Image {
	t.Helper()
	out, err := png.Decode(buf)
	require.NoError(t, err)
	return out
}

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0 && g == 0 && b == 0
}

func TestOverlayDrawsBoxes(t *testing.T) {
	img := blackScreenshot(64, 64)
	cands := []types.DetectionCandidate{{
		EntityID: "anvil",
		Source:   types.SourceTemplate,
		Score:    0.9,
		Box:      types.BoundingBox{X: 10, Y: 10, W: 20, H: 20},
	}}

	var buf bytes.Buffer
	require.NoError(t, Overlay(img, cands, &buf))
	out := decodeOverlay(t, &buf)

	assert.Equal(t, img.Bounds(), out.Bounds())
	// Corners of the box are painted; the interior and the area outside the
	// box are untouched.
	assert.False(t, isBlack(out.At(10, 10)))
	assert.False(t, isBlack(out.At(29, 29)))
	assert.True(t, isBlack(out.At(20, 20)))
	assert.True(t, isBlack(out.At(50, 50)))
}

func TestOverlayDashedForTextSource(t *testing.T) {
	img := blackScreenshot(64, 64)
	cands := []types.DetectionCandidate{{
		EntityID: "anvil",
		Source:   types.SourceText,
		Score:    0.9,
		Box:      types.BoundingBox{X: 0, Y: 0, W: 40, H: 20},
	}}

	var buf bytes.Buffer
	require.NoError(t, Overlay(img, cands, &buf))
	out := decodeOverlay(t, &buf)

	// Dashes paint the first 4-pixel run and skip the next.
	assert.False(t, isBlack(out.At(1, 0)))
	assert.True(t, isBlack(out.At(5, 0)))
}

func TestOverlayClipsOutOfBounds(t *testing.T) {
	img := blackScreenshot(32, 32)
	cands := []types.DetectionCandidate{{
		EntityID: "anvil",
		Source:   types.SourceTemplate,
		Box:      types.BoundingBox{X: 20, Y: 20, W: 40, H: 40},
	}}

	var buf bytes.Buffer
	require.NoError(t, Overlay(img, cands, &buf), "boxes past the edge are clipped, not an error")
	out := decodeOverlay(t, &buf)
	assert.False(t, isBlack(out.At(20, 20)))
}

func TestOverlayStableEntityColors(t *testing.T) {
	box := types.BoundingBox{X: 5, Y: 5, W: 10, H: 10}
	render := func() image.Image {
		var buf bytes.Buffer
		require.NoError(t, Overlay(blackScreenshot(32, 32),
			[]types.DetectionCandidate{{EntityID: "gym_sauce", Source: types.SourceTemplate, Box: box}},
			&buf))
		return decodeOverlay(t, &buf)
	}

	first := render()
	second := render()
	assert.Equal(t, first.At(5, 5), second.At(5, 5), "an entity keeps its color across renders")
}

func TestOverlayNoCandidates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Overlay(blackScreenshot(16, 16), nil, &buf))
	out := decodeOverlay(t, &buf)
	assert.True(t, isBlack(out.At(8, 8)))
}

package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonktools/build-detect/pkg/types"
)

// fill creates a solid color test image.
func fill(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func strategyWithScale(scale float64) types.StrategyConfig {
	return types.StrategyConfig{Name: "test", DownscaleFactor: scale, MatchThreshold: 0.7}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, fill(8, 6, color.White)))

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestPrepareNative(t *testing.T) {
	img := fill(20, 10, color.White)

	pre, err := Prepare(img, strategyWithScale(1.0))
	require.NoError(t, err)
	assert.Equal(t, 20, pre.Width)
	assert.Equal(t, 10, pre.Height)
	assert.Equal(t, 1.0, pre.Scale)
	assert.Len(t, pre.Pix, 200)

	// White maps to full intensity.
	assert.InDelta(t, 1.0, pre.At(0, 0), 0.01)
}

func TestPrepareDownscale(t *testing.T) {
	img := fill(20, 10, color.Black)

	pre, err := Prepare(img, strategyWithScale(0.5))
	require.NoError(t, err)
	assert.Equal(t, 10, pre.Width)
	assert.Equal(t, 5, pre.Height)
	assert.Equal(t, 0.5, pre.Scale)
	assert.InDelta(t, 0.0, pre.At(0, 0), 0.01)
}

func TestPrepareIntensityRange(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	pre, err := Prepare(img, strategyWithScale(1.0))
	require.NoError(t, err)
	for _, v := range pre.Pix {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestPrepareDefaultsBadScale(t *testing.T) {
	img := fill(10, 10, color.White)

	// Out-of-range factors fall back to native resolution.
	pre, err := Prepare(img, strategyWithScale(0))
	require.NoError(t, err)
	assert.Equal(t, 1.0, pre.Scale)
	assert.Equal(t, 10, pre.Width)
}

func TestPrepareNil(t *testing.T) {
	_, err := Prepare(nil, strategyWithScale(1.0))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestGrayTransparentPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{})

	pix, w, h := Gray(img)
	require.Equal(t, 2, w)
	require.Equal(t, 1, h)
	assert.InDelta(t, 1.0, pix[0], 0.01)
	assert.Equal(t, 0.0, pix[1], "transparent pixels map to zero intensity")
}

func TestCropRegion(t *testing.T) {
	img := fill(20, 20, color.White)

	cropped, origin, err := CropRegion(img, types.BoundingBox{X: 5, Y: 5, W: 10, H: 8})
	require.NoError(t, err)
	assert.Equal(t, 10, cropped.Bounds().Dx())
	assert.Equal(t, 8, cropped.Bounds().Dy())
	assert.Equal(t, image.Pt(5, 5), origin)
}

func TestCropRegionClamped(t *testing.T) {
	img := fill(10, 10, color.White)

	cropped, origin, err := CropRegion(img, types.BoundingBox{X: 5, Y: 5, W: 20, H: 20})
	require.NoError(t, err)
	assert.Equal(t, 5, cropped.Bounds().Dx())
	assert.Equal(t, image.Pt(5, 5), origin)
}

func TestCropRegionClampedOrigin(t *testing.T) {
	img := fill(10, 10, color.White)

	// A region starting above and left of the image clamps to its corner.
	cropped, origin, err := CropRegion(img, types.BoundingBox{X: -4, Y: -4, W: 10, H: 10})
	require.NoError(t, err)
	assert.Equal(t, 6, cropped.Bounds().Dx())
	assert.Equal(t, image.Pt(0, 0), origin)
}

func TestCropRegionOutside(t *testing.T) {
	img := fill(10, 10, color.White)

	_, _, err := CropRegion(img, types.BoundingBox{X: 50, Y: 50, W: 5, H: 5})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

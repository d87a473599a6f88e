package preprocess

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/bonktools/build-detect/pkg/types"
)

// ErrInvalidImage is returned when the input image has zero area or cannot
// be decoded. It is fatal for the current detection call only.
var ErrInvalidImage = errors.New("invalid image")

// Image is the normalized single-channel form both recognizers consume.
//
// The buffer is created fresh per detection call and discarded when the call
// completes; it is never shared across calls, so one caller's scaling choice
// cannot leak into another's.
type Image struct {
	// Pix holds one normalized intensity value per pixel in row-major
	// order, each in [0, 1].
	Pix []float64

	// Width and Height are the buffer dimensions in pixels.
	Width  int
	Height int

	// Scale is the ratio of this buffer's resolution to the original
	// image (1.0 = native). Candidate boxes found at this scale are
	// divided by Scale to map back to original-image coordinates.
	Scale float64
}

// At returns the intensity at (x, y). No bounds checking is performed.
func (p *Image) At(x, y int) float64 {
	return p.Pix[y*p.Width+x]
}

// Decode reads and decodes a raster image from r.
//
// Supported formats are PNG, JPEG, and GIF. A decode failure or a zero-area
// image yields ErrInvalidImage.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero area", ErrInvalidImage)
	}
	return img, nil
}

// Prepare converts a raw screenshot into the normalized intensity buffer the
// recognizers consume, applying the strategy's downscale factor.
//
// Downscaling uses box (area-averaging) resampling rather than
// nearest-neighbor: nearest-neighbor aliasing on pixel-art icons breaks
// template correlation. Color is then discarded because icon matching in
// this domain is shape and edge dominated while illumination varies by game
// location.
func Prepare(img image.Image, strategy types.StrategyConfig) (*Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero area", ErrInvalidImage)
	}

	scale := strategy.DownscaleFactor
	if scale <= 0 || scale > 1 {
		scale = 1.0
	}

	work := img
	if scale != 1.0 {
		w := int(float64(b.Dx()) * scale)
		h := int(float64(b.Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("%w: downscale to zero area", ErrInvalidImage)
		}
		work = imaging.Resize(img, w, h, imaging.Box)
	}

	pix, w, h := Gray(work)
	return &Image{Pix: pix, Width: w, Height: h, Scale: scale}, nil
}

// Gray converts an image to a row-major buffer of normalized [0, 1]
// intensities using luminance weighting.
//
// Fully transparent pixels map to zero intensity, matching how transparent
// regions of reference icons are treated during matching.
func Gray(img image.Image) (pix []float64, width, height int) {
	gray := effect.Grayscale(img)
	b := gray.Bounds()
	width, height = b.Dx(), b.Dy()
	pix = make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := gray.PixOffset(b.Min.X+x, b.Min.Y+y)
			// Grayscale output has R==G==B; alpha gates the value.
			if gray.Pix[off+3] == 0 {
				continue
			}
			pix[y*width+x] = float64(gray.Pix[off]) / 255.0
		}
	}
	return pix, width, height
}

// CropRegion extracts a rectangular region from an image, clamped to its
// bounds. Used to restrict detection to the build panel when the caller
// knows where it sits on screen.
//
// The returned origin is the clamped top-left of the crop in the source
// image's coordinates. The cropped image itself is zero-based, so callers
// add the origin to anything found inside it to get back to source
// coordinates.
func CropRegion(img image.Image, box types.BoundingBox) (image.Image, image.Point, error) {
	b := img.Bounds()
	rect := image.Rect(box.X, box.Y, box.X+box.W, box.Y+box.H).Intersect(b)
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil, image.Point{}, fmt.Errorf("%w: crop region outside image bounds", ErrInvalidImage)
	}
	return imaging.Crop(img, rect), rect.Min, nil
}

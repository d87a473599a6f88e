// Package render draws detection candidates onto a copy of the screenshot
// for visual inspection of the pre-fusion evidence.
package render

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/bonktools/build-detect/pkg/types"
)

// paletteSize bounds the number of distinct entity colors. Entities hash
// into the palette, so collisions are possible on very large candidate sets.
const paletteSize = 24

// Overlay draws every candidate's bounding box onto a copy of img and
// encodes the result as PNG to w.
//
// Boxes are colored per entity using a perceptually spaced palette so
// adjacent icons stay distinguishable. Template-sourced boxes are drawn
// solid; text-sourced boxes dashed.
func Overlay(img image.Image, candidates []types.DetectionCandidate, w io.Writer) error {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	palette := colorful.FastHappyPalette(paletteSize)

	for _, c := range candidates {
		col := entityColor(palette, c.EntityID)
		dashed := c.Source == types.SourceText
		drawBox(out, c.Box, col, dashed)
	}

	if err := png.Encode(w, out); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return nil
}

// entityColor picks a stable palette color for an entity id.
func entityColor(palette []colorful.Color, entityID string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(entityID))
	c := palette[h.Sum32()%uint32(len(palette))]
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawBox outlines a bounding box. Dashed outlines skip alternating 4-pixel
// runs.
func drawBox(img *image.RGBA, box types.BoundingBox, col color.RGBA, dashed bool) {
	x2 := box.X + box.W - 1
	y2 := box.Y + box.H - 1

	for x := box.X; x <= x2; x++ {
		if dashed && (x/4)%2 == 1 {
			continue
		}
		setIfInside(img, x, box.Y, col)
		setIfInside(img, x, y2, col)
	}
	for y := box.Y; y <= y2; y++ {
		if dashed && (y/4)%2 == 1 {
			continue
		}
		setIfInside(img, box.X, y, col)
		setIfInside(img, x2, y, col)
	}
}

func setIfInside(img *image.RGBA, x, y int, col color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.Set(x, y, col)
	}
}

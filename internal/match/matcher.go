package match

import (
	"context"
	"math"
	"sort"

	"github.com/bonktools/build-detect/internal/preprocess"
	"github.com/bonktools/build-detect/internal/templates"
	"github.com/bonktools/build-detect/pkg/types"
)

// nmsIoU is the overlap ratio above which two candidates for the same entity
// are considered the same icon instance.
const nmsIoU = 0.3

// integralImage holds summed-area tables over an intensity buffer, giving
// O(1) window sum and variance queries during the correlation scan.
type integralImage struct {
	sum   []float64
	sumSq []float64
	w, h  int
}

// newIntegral builds the summed-area tables for a preprocessed image.
func newIntegral(pre *preprocess.Image) *integralImage {
	w, h := pre.Width, pre.Height
	ii := &integralImage{
		sum:   make([]float64, w*h),
		sumSq: make([]float64, w*h),
		w:     w,
		h:     h,
	}
	for y := 0; y < h; y++ {
		var rowSum, rowSumSq float64
		for x := 0; x < w; x++ {
			v := pre.Pix[y*w+x]
			rowSum += v
			rowSumSq += v * v
			off := y*w + x
			if y == 0 {
				ii.sum[off] = rowSum
				ii.sumSq[off] = rowSumSq
			} else {
				ii.sum[off] = ii.sum[off-w] + rowSum
				ii.sumSq[off] = ii.sumSq[off-w] + rowSumSq
			}
		}
	}
	return ii
}

// window returns the sum and squared sum over the inclusive rectangle
// (x1,y1)-(x2,y2).
func (ii *integralImage) window(x1, y1, x2, y2 int) (sum, sumSq float64) {
	sum = ii.sum[y2*ii.w+x2]
	sumSq = ii.sumSq[y2*ii.w+x2]
	if x1 > 0 {
		sum -= ii.sum[y2*ii.w+x1-1]
		sumSq -= ii.sumSq[y2*ii.w+x1-1]
	}
	if y1 > 0 {
		sum -= ii.sum[(y1-1)*ii.w+x2]
		sumSq -= ii.sumSq[(y1-1)*ii.w+x2]
	}
	if x1 > 0 && y1 > 0 {
		sum += ii.sum[(y1-1)*ii.w+x1-1]
		sumSq += ii.sumSq[(y1-1)*ii.w+x1-1]
	}
	return sum, sumSq
}

// scaledTemplate is a template resampled to the image's effective resolution
// with its correlation statistics precomputed.
type scaledTemplate struct {
	pix    []float64
	w, h   int
	mean   float64
	stddev float64
}

// scaleTemplate resamples a template's intensity buffer by factor using
// bilinear interpolation and precomputes its mean and standard deviation.
// Returns nil when the scaled template degenerates below 2x2 or has no
// contrast to correlate against.
func scaleTemplate(t *templates.Template, factor float64) *scaledTemplate {
	w := int(float64(t.Width) * factor)
	h := int(float64(t.Height) * factor)
	if factor == 1.0 {
		w, h = t.Width, t.Height
	}
	if w < 2 || h < 2 {
		return nil
	}

	pix := make([]float64, w*h)
	if w == t.Width && h == t.Height {
		copy(pix, t.Pix)
	} else {
		fx := float64(t.Width) / float64(w)
		fy := float64(t.Height) / float64(h)
		for y := 0; y < h; y++ {
			ys := clampF((float64(y)+0.5)*fy-0.5, 0, float64(t.Height-1))
			y0 := int(math.Floor(ys))
			y1 := minInt(y0+1, t.Height-1)
			dy := ys - float64(y0)
			for x := 0; x < w; x++ {
				xs := clampF((float64(x)+0.5)*fx-0.5, 0, float64(t.Width-1))
				x0 := int(math.Floor(xs))
				x1 := minInt(x0+1, t.Width-1)
				dx := xs - float64(x0)
				top := t.Pix[y0*t.Width+x0]*(1-dx) + t.Pix[y0*t.Width+x1]*dx
				bot := t.Pix[y1*t.Width+x0]*(1-dx) + t.Pix[y1*t.Width+x1]*dx
				pix[y*w+x] = top*(1-dy) + bot*dy
			}
		}
	}

	var sum, sumSq float64
	for _, v := range pix {
		sum += v
		sumSq += v * v
	}
	n := float64(w * h)
	mean := sum / n
	variance := (sumSq - sum*sum/n) / n
	if variance <= 1e-9 {
		// A flat template correlates equally with everything.
		return nil
	}
	return &scaledTemplate{pix: pix, w: w, h: h, mean: mean, stddev: math.Sqrt(variance)}
}

// MatchAll scans the preprocessed image for regions correlating with each
// cached reference icon and returns template-sourced detection candidates in
// original-image coordinates.
//
// For each template the normalized cross-correlation score is computed over
// every window position at the template's native aspect ratio scaled to the
// image's effective resolution; a region is accepted only when its score
// exceeds strategy.MatchThreshold. Overlapping acceptances for the same
// entity are reduced to the single highest-scoring box, and candidates per
// entity are capped at strategy.MaxCandidatesPerEntity, dropping the lowest
// scores first.
//
// The context is checked between templates so a cancelled detection stops
// promptly; partial results are discarded by the caller in that case.
func MatchAll(ctx context.Context, pre *preprocess.Image, tmpls []*templates.Template, strategy types.StrategyConfig) ([]types.DetectionCandidate, error) {
	if pre == nil || len(tmpls) == 0 {
		return nil, nil
	}

	ii := newIntegral(pre)
	candidates := make([]types.DetectionCandidate, 0)

	for _, t := range tmpls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st := scaleTemplate(t, pre.Scale)
		if st == nil || st.w > pre.Width || st.h > pre.Height {
			continue
		}

		raw := scanTemplate(pre, ii, st, strategy.MatchThreshold)
		kept := suppress(raw, strategy.MaxCandidatesPerEntity)

		for _, m := range kept {
			candidates = append(candidates, types.DetectionCandidate{
				EntityID: t.EntityID,
				Source:   types.SourceTemplate,
				Score:    m.score,
				Box:      toOriginal(m, pre.Scale),
			})
		}
	}

	// Deterministic ordering regardless of template iteration order.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.Box.Y != b.Box.Y {
			return a.Box.Y < b.Box.Y
		}
		return a.Box.X < b.Box.X
	})
	return candidates, nil
}

// rawMatch is one accepted window position in preprocessed coordinates.
type rawMatch struct {
	x, y, w, h int
	score      float64
}

// scanTemplate slides the scaled template over the image and collects every
// window whose normalized cross-correlation score meets the threshold.
func scanTemplate(pre *preprocess.Image, ii *integralImage, st *scaledTemplate, threshold float64) []rawMatch {
	n := float64(st.w * st.h)
	matches := make([]rawMatch, 0)

	for y := 0; y+st.h <= pre.Height; y++ {
		for x := 0; x+st.w <= pre.Width; x++ {
			sumF, sumF2 := ii.window(x, y, x+st.w-1, y+st.h-1)
			meanF := sumF / n
			varF := (sumF2 - sumF*sumF/n) / n
			if varF <= 1e-9 {
				// Flat window: nothing to correlate.
				continue
			}
			stdF := math.Sqrt(varF)

			var sumFT float64
			for ty := 0; ty < st.h; ty++ {
				rowOff := (y + ty) * pre.Width
				tOff := ty * st.w
				for tx := 0; tx < st.w; tx++ {
					sumFT += pre.Pix[rowOff+x+tx] * st.pix[tOff+tx]
				}
			}

			score := (sumFT - n*meanF*st.mean) / (n * stdF * st.stddev)
			if score >= threshold {
				matches = append(matches, rawMatch{x: x, y: y, w: st.w, h: st.h, score: clampF(score, 0, 1)})
			}
		}
	}
	return matches
}

// suppress applies per-entity non-maximum suppression and the candidate cap:
// overlapping windows collapse to the highest-scoring one, then everything
// past the cap is dropped in ascending score order.
func suppress(matches []rawMatch, limit int) []rawMatch {
	if len(matches) == 0 {
		return matches
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		if matches[i].y != matches[j].y {
			return matches[i].y < matches[j].y
		}
		return matches[i].x < matches[j].x
	})

	kept := make([]rawMatch, 0, len(matches))
	for _, m := range matches {
		overlaps := false
		for _, k := range kept {
			if boxOf(m).IoU(boxOf(k)) > nmsIoU {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, m)
		}
	}

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

func boxOf(m rawMatch) types.BoundingBox {
	return types.BoundingBox{X: m.x, Y: m.y, W: m.w, H: m.h}
}

// toOriginal maps a match in preprocessed coordinates back to original-image
// coordinates by undoing the strategy's downscale.
func toOriginal(m rawMatch, scale float64) types.BoundingBox {
	if scale == 1.0 || scale <= 0 {
		return types.BoundingBox{X: m.x, Y: m.y, W: m.w, H: m.h}
	}
	inv := 1.0 / scale
	return types.BoundingBox{
		X: int(math.Round(float64(m.x) * inv)),
		Y: int(math.Round(float64(m.y) * inv)),
		W: int(math.Round(float64(m.w) * inv)),
		H: int(math.Round(float64(m.h) * inv)),
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

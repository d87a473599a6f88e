package detect

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bonktools/build-detect/internal/catalog"
	"github.com/bonktools/build-detect/internal/fusion"
	"github.com/bonktools/build-detect/internal/match"
	"github.com/bonktools/build-detect/internal/ocr"
	"github.com/bonktools/build-detect/internal/preprocess"
	"github.com/bonktools/build-detect/internal/strategy"
	"github.com/bonktools/build-detect/internal/templates"
	"github.com/bonktools/build-detect/pkg/types"
)

// maxNameTokens caps how many adjacent OCR tokens are joined when matching
// multi-word display names ("Forbidden Gym Sauce" is three tokens).
const maxNameTokens = 3

// TextRecognizer is the text-recognition boundary the pipeline depends on.
// *ocr.Adapter is the production implementation; tests substitute fakes to
// force the degradation path.
type TextRecognizer interface {
	Recognize(ctx context.Context, pre *preprocess.Image) ([]types.TextToken, error)
}

// Options tunes a single detection call.
type Options struct {
	// Debug additionally returns the pre-fusion candidate lists on the
	// result for inspection.
	Debug bool

	// Region restricts detection to a sub-rectangle of the screenshot
	// (original-image coordinates). Nil scans the whole image.
	Region *types.BoundingBox
}

// Pipeline turns a raw screenshot into a structured, deduplicated entity
// list. It is designed for one logical detection request at a time from one
// caller; the template store is the only state shared across calls.
type Pipeline struct {
	store   *templates.Store
	text    TextRecognizer
	catalog *catalog.Catalog
	log     *slog.Logger
}

// New creates a detection pipeline over the given collaborators. text may be
// nil when no recognition engine is available; detection then runs
// template-matching-only.
func New(store *templates.Store, text TextRecognizer, cat *catalog.Catalog, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{store: store, text: text, catalog: cat, log: log}
}

// Detect runs the full pipeline: preprocess, both recognizers concurrently,
// then fusion.
//
// The two recognizers have no data dependency and run in parallel, bounding
// wall-clock latency to roughly the slower of the two. Fusion is the
// synchronization point: it observes the completed (or explicitly failed)
// output of both. A text-recognition failure is absorbed as graceful
// degradation; only malformed input (ErrInvalidImage) or an unrecognized
// strategy name (ErrUnknownStrategy) surfaces as a call-level error, plus
// caller-initiated cancellation.
func (p *Pipeline) Detect(ctx context.Context, img image.Image, strategyName string, opts Options) (*types.DetectionResult, error) {
	start := time.Now()

	cfg, err := strategy.Resolve(strategyName)
	if err != nil {
		return nil, err
	}

	var regionOrigin image.Point
	if opts.Region != nil {
		img, regionOrigin, err = preprocess.CropRegion(img, *opts.Region)
		if err != nil {
			return nil, err
		}
	}

	pre, err := preprocess.Prepare(img, cfg)
	if err != nil {
		return nil, err
	}

	var tmpls []*templates.Template
	if cfg.UseTemplate {
		tmpls = p.loadTemplates()
	}

	var (
		tokens        []types.TextToken
		templateCands []types.DetectionCandidate
	)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.UseText && p.text != nil {
		g.Go(func() error {
			t, err := p.text.Recognize(gctx, pre)
			if err != nil {
				if errors.Is(err, ocr.ErrRecognitionUnavailable) {
					// Primary fallback path: proceed template-only.
					p.log.Warn("text recognition degraded",
						slog.String("error", err.Error()))
					return nil
				}
				return err
			}
			tokens = t
			return nil
		})
	}

	if cfg.UseTemplate {
		g.Go(func() error {
			c, err := match.MatchAll(gctx, pre, tmpls, cfg)
			if err != nil {
				return err
			}
			templateCands = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Only cancellation reaches here; recognizer failures degrade.
		return nil, fmt.Errorf("detection cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("detection cancelled: %w", err)
	}

	textCands := p.candidatesFromTokens(tokens)

	// Recognizers report crop-relative boxes; shift them back so every
	// candidate box is in original-image coordinates.
	offsetBoxes(textCands, regionOrigin)
	offsetBoxes(templateCands, regionOrigin)

	entries := fusion.Fuse(textCands, templateCands, cfg, p.catalog)

	result := &types.DetectionResult{
		Entries:           entries,
		ProcessingTimeMS:  time.Since(start).Milliseconds(),
		StrategyUsed:      cfg.Name,
		AverageConfidence: averageConfidence(entries),
	}
	if opts.Debug {
		result.DebugTextCandidates = textCands
		result.DebugTemplateCandidates = templateCands
	}

	p.log.Info("detection complete",
		slog.String("strategy", cfg.Name),
		slog.Int("entities", len(entries)),
		slog.Int64("elapsed_ms", result.ProcessingTimeMS))
	return result, nil
}

// loadTemplates fetches every catalog entity's template from the store.
// Per-entity load failures reduce the matchable set rather than failing the
// call; the store has already logged the cause during preload.
func (p *Pipeline) loadTemplates() []*templates.Template {
	tmpls := make([]*templates.Template, 0, p.catalog.Len())
	for _, e := range p.catalog.Entities() {
		t, err := p.store.Load(e.ID)
		if err != nil {
			continue
		}
		tmpls = append(tmpls, t)
	}
	return tmpls
}

// candidatesFromTokens maps recognized text onto catalog entities. Adjacent
// tokens on the same text line are joined up to maxNameTokens so multi-word
// display names match; a joined match scores the weakest of its tokens.
func (p *Pipeline) candidatesFromTokens(tokens []types.TextToken) []types.DetectionCandidate {
	if len(tokens) == 0 {
		return nil
	}

	lines := groupLines(tokens)
	var cands []types.DetectionCandidate

	for _, line := range lines {
		for i := 0; i < len(line); i++ {
			box := line[i].Box
			score := line[i].Confidence
			var words []string

			for j := i; j < len(line) && j-i < maxNameTokens; j++ {
				words = append(words, line[j].Text)
				if j > i {
					box = box.Union(line[j].Box)
					if line[j].Confidence < score {
						score = line[j].Confidence
					}
				}

				text := strings.Join(words, " ")
				entity, ok := p.catalog.MatchName(text)
				if !ok {
					continue
				}
				cands = append(cands, types.DetectionCandidate{
					EntityID:       entity.ID,
					Source:         types.SourceText,
					Score:          score,
					Box:            box,
					RecognizedText: text,
				})
			}
		}
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
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
	return cands
}

// groupLines clusters tokens into text lines by vertical center, then orders
// each line left to right. OCR engines emit words in roughly reading order
// but make no guarantee; fusion determinism requires one here.
func groupLines(tokens []types.TextToken) [][]types.TextToken {
	sorted := make([]types.TextToken, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Box.Y != sorted[j].Box.Y {
			return sorted[i].Box.Y < sorted[j].Box.Y
		}
		return sorted[i].Box.X < sorted[j].Box.X
	})

	var lines [][]types.TextToken
	for _, tok := range sorted {
		placed := false
		if n := len(lines); n > 0 {
			last := lines[n-1]
			ref := last[0]
			// Same line when vertical centers are within half the taller
			// token's height.
			refCenter := ref.Box.Y + ref.Box.H/2
			tokCenter := tok.Box.Y + tok.Box.H/2
			tol := ref.Box.H
			if tok.Box.H > tol {
				tol = tok.Box.H
			}
			if abs(refCenter-tokCenter) <= tol/2 {
				lines[n-1] = append(last, tok)
				placed = true
			}
		}
		if !placed {
			lines = append(lines, []types.TextToken{tok})
		}
	}

	for _, line := range lines {
		sort.Slice(line, func(i, j int) bool { return line[i].Box.X < line[j].Box.X })
	}
	return lines
}

// offsetBoxes translates candidate boxes by the crop origin. A zero origin
// leaves them untouched.
func offsetBoxes(cands []types.DetectionCandidate, origin image.Point) {
	if origin.X == 0 && origin.Y == 0 {
		return
	}
	for i := range cands {
		cands[i].Box.X += origin.X
		cands[i].Box.Y += origin.Y
	}
}

func averageConfidence(entries []types.DetectionEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.Confidence
	}
	return sum / float64(len(entries))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

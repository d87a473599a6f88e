// Package fusion merges the independent recognizer outputs into one
// confidence-scored detection result per entity.
package fusion

import (
	"sort"

	"github.com/bonktools/build-detect/internal/catalog"
	"github.com/bonktools/build-detect/pkg/types"
)

// Fusion weights. Fixed constants rather than strategy parameters: the
// agreement bonus rewards corroboration between recognizers and the
// single-source penalty reflects the higher false-positive risk of
// uncorroborated evidence.
const (
	agreementBonus      = 0.15
	singleSourcePenalty = 0.85
)

// Fuse combines text-derived and template-derived candidates into the final
// deduplicated entity list.
//
// Per entity: when both sources report and corroborate each other (spatially
// overlapping regions, or recognized text matching the entity's display
// name), confidence is the higher of the two best scores plus the agreement
// bonus, capped at 1.0. When only one source reports, confidence is that
// source's best score discounted by the single-source penalty. Entities
// whose combined confidence falls below strategy.MatchThreshold are dropped
// entirely: partial evidence is not surfaced as a low-confidence guess,
// since spurious matches degrade user trust more than omissions.
//
// The estimated count is the number of distinct non-overlapping
// template-matched regions (text recognition cannot reliably read the small
// stack-count glyphs); it defaults to 1 when template evidence is absent.
//
// Fuse never fails: it degrades to fewer or no entries, since an empty
// detection is a valid outcome.
func Fuse(textCands, templateCands []types.DetectionCandidate, strategy types.StrategyConfig, cat *catalog.Catalog) []types.DetectionEntry {
	type group struct {
		text     []types.DetectionCandidate
		template []types.DetectionCandidate
	}
	groups := make(map[string]*group)

	add := func(c types.DetectionCandidate) {
		g, ok := groups[c.EntityID]
		if !ok {
			g = &group{}
			groups[c.EntityID] = g
		}
		if c.Source == types.SourceText {
			g.text = append(g.text, c)
		} else {
			g.template = append(g.template, c)
		}
	}
	for _, c := range textCands {
		add(c)
	}
	for _, c := range templateCands {
		add(c)
	}

	entries := make([]types.DetectionEntry, 0, len(groups))
	for entityID, g := range groups {
		entity, known := cat.Get(entityID)
		if !known {
			// Candidates only ever name catalog ids; an unknown id means
			// the catalog was reloaded mid-call. Skip rather than guess.
			continue
		}

		bestText := bestScore(g.text)
		bestTemplate := bestScore(g.template)

		var confidence float64
		var sources []types.Source
		switch {
		case len(g.text) > 0 && len(g.template) > 0:
			sources = []types.Source{types.SourceTemplate, types.SourceText}
			confidence = maxF(bestText, bestTemplate)
			if agrees(g.text, g.template, entity) {
				confidence = minF(confidence+agreementBonus, 1.0)
			} else {
				// Both sources fired but on unrelated regions; treat the
				// stronger one as uncorroborated.
				confidence *= singleSourcePenalty
			}
		case len(g.template) > 0:
			sources = []types.Source{types.SourceTemplate}
			confidence = bestTemplate * singleSourcePenalty
		default:
			sources = []types.Source{types.SourceText}
			confidence = bestText * singleSourcePenalty
		}

		if confidence < strategy.MatchThreshold {
			continue
		}

		count := len(g.template)
		if count < 1 {
			count = 1
		}

		entries = append(entries, types.DetectionEntry{
			EntityID:       entityID,
			Category:       entity.Category,
			EstimatedCount: count,
			Confidence:     confidence,
			Sources:        sources,
		})
	}

	// Descending confidence, ascending id tiebreak: required for
	// reproducible runs and evaluator scenario comparisons.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Confidence != entries[j].Confidence {
			return entries[i].Confidence > entries[j].Confidence
		}
		return entries[i].EntityID < entries[j].EntityID
	})
	return entries
}

// agrees reports whether the two evidence sets corroborate each other:
// any text token region overlapping any template region, or any recognized
// text normalizing to the entity's display name.
func agrees(text, template []types.DetectionCandidate, entity catalog.Entity) bool {
	want := catalog.NormalizeName(entity.Name)
	for _, t := range text {
		if t.RecognizedText != "" && catalog.NormalizeName(t.RecognizedText) == want {
			return true
		}
		for _, m := range template {
			if t.Box.Intersects(m.Box) {
				return true
			}
		}
	}
	return false
}

func bestScore(cands []types.DetectionCandidate) float64 {
	best := 0.0
	for _, c := range cands {
		if c.Score > best {
			best = c.Score
		}
	}
	return best
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

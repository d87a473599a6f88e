package types

import "sort"

// Category identifies the kind of catalog entity an icon or name refers to.
type Category string

// Catalog entity categories. These mirror the game's build screen sections.
const (
	CategoryCharacter Category = "character"
	CategoryWeapon    Category = "weapon"
	CategoryItem      Category = "item"
	CategoryTome      Category = "tome"
	CategoryShrine    Category = "shrine"
)

// Categories lists every known category in catalog load order.
func Categories() []Category {
	return []Category{
		CategoryCharacter,
		CategoryWeapon,
		CategoryItem,
		CategoryTome,
		CategoryShrine,
	}
}

// Source identifies which recognizer produced a detection candidate.
type Source string

const (
	// SourceText marks candidates produced by the OCR adapter.
	SourceText Source = "text"

	// SourceTemplate marks candidates produced by icon template matching.
	SourceTemplate Source = "template"
)

// BoundingBox is an axis-aligned rectangle in original-image pixel
// coordinates. (X, Y) is the top-left corner.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Intersects reports whether two boxes share any area.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.X < o.X+o.W && b.X+b.W > o.X && b.Y < o.Y+o.H && b.Y+b.H > o.Y
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	x1 := minInt(b.X, o.X)
	y1 := minInt(b.Y, o.Y)
	x2 := maxInt(b.X+b.W, o.X+o.W)
	y2 := maxInt(b.Y+b.H, o.Y+o.H)
	return BoundingBox{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// IoU returns the intersection-over-union ratio of two boxes (0.0 to 1.0).
//
// IoU is the standard overlap measure for non-maximum suppression: 1.0 means
// identical boxes, 0.0 means no overlap at all.
func (b BoundingBox) IoU(o BoundingBox) float64 {
	ix1 := maxInt(b.X, o.X)
	iy1 := maxInt(b.Y, o.Y)
	ix2 := minInt(b.X+b.W, o.X+o.W)
	iy2 := minInt(b.Y+b.H, o.Y+o.H)
	if ix2 <= ix1 || iy2 <= iy1 {
		return 0
	}
	inter := float64((ix2 - ix1) * (iy2 - iy1))
	union := float64(b.W*b.H+o.W*o.H) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// TextToken is one recognized word with its location and OCR confidence.
type TextToken struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the recognizer's confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Box is the word's bounding box in original-image coordinates.
	Box BoundingBox `json:"box"`
}

// DetectionCandidate is a single piece of evidence that an entity appears in
// the screenshot. Candidates are produced by the recognizers and consumed by
// the fusion engine; they never appear in the final result directly.
type DetectionCandidate struct {
	// EntityID is the catalog id the evidence points at.
	EntityID string `json:"entity_id"`

	// Source is the recognizer that produced this candidate.
	Source Source `json:"source"`

	// Score is the recognizer's confidence for this candidate (0.0 to 1.0).
	Score float64 `json:"score"`

	// Box is the candidate region in original-image coordinates.
	Box BoundingBox `json:"box"`

	// RecognizedText is the raw OCR text that matched, for text candidates.
	RecognizedText string `json:"recognized_text,omitempty"`
}

// DetectionEntry is one recognized entity in the final result.
type DetectionEntry struct {
	// EntityID is the stable catalog id.
	EntityID string `json:"entity_id"`

	// Category is the entity's catalog category.
	Category Category `json:"category"`

	// EstimatedCount is the number of icon instances detected. Counting is
	// driven by distinct template-matched regions and is a best-effort
	// heuristic, not a guaranteed-correct stack count. Always >= 1.
	EstimatedCount int `json:"estimated_count"`

	// Confidence is the fused confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Sources lists the recognizers that contributed evidence.
	Sources []Source `json:"sources"`
}

// DetectionResult is the pipeline's output: a deduplicated, confidence-ordered
// entity list plus call-level metadata.
//
// Invariants: every entry has EstimatedCount >= 1 and Confidence in [0, 1],
// no EntityID appears twice, and entries are ordered by descending confidence
// with ascending EntityID as the tiebreak so repeated runs are bit-identical.
type DetectionResult struct {
	Entries []DetectionEntry `json:"entries"`

	// ProcessingTimeMS is the wall-clock duration of the detection call.
	ProcessingTimeMS int64 `json:"processing_time_ms"`

	// StrategyUsed is the name of the strategy that parameterized the call.
	StrategyUsed string `json:"strategy_used"`

	// AverageConfidence is the mean confidence over Entries (0 when empty).
	AverageConfidence float64 `json:"average_confidence"`

	// DebugTextCandidates and DebugTemplateCandidates carry the pre-fusion
	// candidate lists when the call requested debug mode; nil otherwise.
	DebugTextCandidates     []DetectionCandidate `json:"debug_text_candidates,omitempty"`
	DebugTemplateCandidates []DetectionCandidate `json:"debug_template_candidates,omitempty"`
}

// EntityNames returns the detected display ids as a multiset-preserving list:
// an entry with EstimatedCount 3 contributes its id three times. This is the
// form the evaluator scores against ground truth.
func (r *DetectionResult) EntityNames() []string {
	names := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		for i := 0; i < e.EstimatedCount; i++ {
			names = append(names, e.EntityID)
		}
	}
	sort.Strings(names)
	return names
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

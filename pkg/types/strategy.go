package types

// StrategyConfig is a named, immutable tuple of detection parameters trading
// speed against recall. Strategies are pure configuration: selecting one has
// no side effects beyond parameterizing the next detection call.
type StrategyConfig struct {
	// Name is the key the strategy is looked up by (e.g. "fast").
	Name string `json:"name" yaml:"name"`

	// DownscaleFactor scales the screenshot before matching (1.0 = native
	// resolution, 0.5 = half size). Smaller is faster and less accurate.
	DownscaleFactor float64 `json:"downscale_factor" yaml:"downscale_factor"`

	// MatchThreshold is the minimum correlation score for a template match
	// and the minimum fused confidence for a result entry (0.0 to 1.0).
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold"`

	// MaxCandidatesPerEntity caps template candidates per entity to bound
	// worst-case cost on cluttered screenshots.
	MaxCandidatesPerEntity int `json:"max_candidates_per_entity" yaml:"max_candidates_per_entity"`

	// UseText enables the OCR recognizer.
	UseText bool `json:"use_text" yaml:"use_text"`

	// UseTemplate enables the icon template matcher.
	UseTemplate bool `json:"use_template" yaml:"use_template"`
}

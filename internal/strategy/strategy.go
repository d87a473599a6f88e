// Package strategy defines the named detection configurations that trade
// latency against recall.
//
// Strategies are an enumerated, statically-validated set of immutable config
// records looked up by key. Unknown keys are rejected rather than silently
// defaulted: callers must be explicit about the tradeoff they want.
package strategy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bonktools/build-detect/pkg/types"
)

// ErrUnknownStrategy is returned for a strategy name that is not registered.
// This is a caller error and fails the detection call.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Built-in strategy names.
const (
	Fast     = "fast"
	Balanced = "balanced"
	Accurate = "accurate"
)

// registry holds every strategy, keyed by name, defined once at process
// start. The map is never mutated after init.
var registry = map[string]types.StrategyConfig{
	// fast minimizes latency: half resolution, high threshold, low cap.
	// Accepts more missed items in exchange.
	Fast: {
		Name:                   Fast,
		DownscaleFactor:        0.5,
		MatchThreshold:         0.80,
		MaxCandidatesPerEntity: 3,
		UseText:                true,
		UseTemplate:            true,
	},
	// balanced is the midpoint default for interactive use.
	Balanced: {
		Name:                   Balanced,
		DownscaleFactor:        0.75,
		MatchThreshold:         0.70,
		MaxCandidatesPerEntity: 5,
		UseText:                true,
		UseTemplate:            true,
	},
	// accurate maximizes recall: native resolution, low threshold, high
	// cap. Accepts more latency in exchange.
	Accurate: {
		Name:                   Accurate,
		DownscaleFactor:        1.0,
		MatchThreshold:         0.60,
		MaxCandidatesPerEntity: 8,
		UseText:                true,
		UseTemplate:            true,
	},
}

// Resolve returns the strategy registered under name.
func Resolve(name string) (types.StrategyConfig, error) {
	cfg, ok := registry[name]
	if !ok {
		return types.StrategyConfig{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownStrategy, name, Names())
	}
	return cfg, nil
}

// Names returns every registered strategy name in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

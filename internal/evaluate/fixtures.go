package evaluate

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"
)

// GroundTruthRecord is the known-correct entity list for one test image,
// authored externally and loaded read-only.
type GroundTruthRecord struct {
	// ImageKey identifies the screenshot, typically its filename.
	ImageKey string

	// ExpectedNames is the multiset of expected entity display names:
	// repeated entries mean repeated icon instances.
	ExpectedNames []string
}

// LoadGroundTruth reads a YAML fixture mapping image keys to expected entity
// display names:
//
//	screenshot-01.png:
//	  - Gym Sauce
//	  - Gym Sauce
//	  - Anvil
//	screenshot-02.png:
//	  - Slingshot
//
// Records are returned sorted by image key for stable iteration.
func LoadGroundTruth(path string) ([]GroundTruthRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ground truth fixture: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ground truth fixture: %w", err)
	}

	records := make([]GroundTruthRecord, 0, len(raw))
	for key, names := range raw {
		records = append(records, GroundTruthRecord{ImageKey: key, ExpectedNames: names})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ImageKey < records[j].ImageKey
	})
	return records, nil
}

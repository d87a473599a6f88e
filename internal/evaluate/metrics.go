package evaluate

// Metrics holds the accuracy scores for one detection against ground truth.
type Metrics struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`

	// Precision is TP / detected, 0 when nothing was detected.
	Precision float64 `json:"precision"`

	// Recall is TP / expected, 0 when nothing was expected.
	Recall float64 `json:"recall"`

	// F1 is the harmonic mean of precision and recall, 0 when both are 0.
	F1 float64 `json:"f1"`

	// Accuracy is TP / max(expected, detected, 1).
	Accuracy float64 `json:"accuracy"`
}

// Score compares detected entity names against the expected ground truth.
//
// Both lists are multisets, never collapsed to presence booleans: if ground
// truth expects two copies of an entity and three were detected, that is two
// true positives and one false positive. Each name's true-positive
// contribution is the smaller of its detected and expected counts.
//
// The zero-total boundaries are defined, not errors: precision is 0 when
// nothing was detected, recall is 0 when nothing was expected, and F1 is 0
// when both are.
func Score(detected, expected []string) Metrics {
	detectedCounts := countNames(detected)
	expectedCounts := countNames(expected)

	tp := 0
	for name, want := range expectedCounts {
		got := detectedCounts[name]
		if got < want {
			tp += got
		} else {
			tp += want
		}
	}

	m := Metrics{
		TruePositives:  tp,
		FalsePositives: len(detected) - tp,
		FalseNegatives: len(expected) - tp,
	}

	if len(detected) > 0 {
		m.Precision = float64(tp) / float64(len(detected))
	}
	if len(expected) > 0 {
		m.Recall = float64(tp) / float64(len(expected))
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	denom := len(expected)
	if len(detected) > denom {
		denom = len(detected)
	}
	if denom < 1 {
		denom = 1
	}
	m.Accuracy = float64(tp) / float64(denom)

	return m
}

func countNames(names []string) map[string]int {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		counts[n]++
	}
	return counts
}

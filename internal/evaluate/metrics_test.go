package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreMultiset(t *testing.T) {
	// One "A" matches, one "B" matches; the extra detected "A" is a false
	// positive and the missing second "B" a false negative.
	m := Score([]string{"A", "A", "B"}, []string{"A", "B", "B"})

	assert.Equal(t, 2, m.TruePositives)
	assert.Equal(t, 1, m.FalsePositives)
	assert.Equal(t, 1, m.FalseNegatives)
	assert.InDelta(t, 2.0/3.0, m.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.F1, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.Accuracy, 1e-9)
}

func TestScoreBothEmpty(t *testing.T) {
	m := Score(nil, nil)

	assert.Zero(t, m.TruePositives)
	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall)
	assert.Zero(t, m.F1)
	assert.Zero(t, m.Accuracy)
}

func TestScoreNothingDetected(t *testing.T) {
	m := Score(nil, []string{"A", "B"})

	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall)
	assert.Zero(t, m.F1)
	assert.Equal(t, 2, m.FalseNegatives)
}

func TestScoreNothingExpected(t *testing.T) {
	m := Score([]string{"A"}, nil)

	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall)
	assert.Equal(t, 1, m.FalsePositives)
	assert.Zero(t, m.Accuracy)
}

func TestScorePerfect(t *testing.T) {
	m := Score([]string{"A", "B", "B"}, []string{"B", "A", "B"})

	assert.Equal(t, 3, m.TruePositives)
	assert.InDelta(t, 1.0, m.Precision, 1e-9)
	assert.InDelta(t, 1.0, m.Recall, 1e-9)
	assert.InDelta(t, 1.0, m.F1, 1e-9)
	assert.InDelta(t, 1.0, m.Accuracy, 1e-9)
}

func TestScoreDuplicatesNeverCollapse(t *testing.T) {
	// Detecting three copies of an entity expected twice: exactly two count.
	m := Score([]string{"A", "A", "A"}, []string{"A", "A"})

	assert.Equal(t, 2, m.TruePositives)
	assert.Equal(t, 1, m.FalsePositives)
	assert.Equal(t, 0, m.FalseNegatives)
	assert.InDelta(t, 2.0/3.0, m.Accuracy, 1e-9)
}

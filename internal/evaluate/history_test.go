package evaluate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistoryRecordAndRecent(t *testing.T) {
	h := openTestHistory(t)

	run := Run{
		ImageKey:       "screenshot-01.png",
		Strategy:       "fast",
		ElapsedMS:      42,
		HeapDeltaBytes: 1 << 20,
		Metrics: Metrics{
			TruePositives: 3,
			Precision:     0.75,
			Recall:        0.6,
			F1:            2 * 0.75 * 0.6 / (0.75 + 0.6),
			Accuracy:      0.6,
		},
	}
	require.NoError(t, h.Record(run))

	runs, err := h.Recent("screenshot-01.png", "fast", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ImageKey, got.ImageKey)
	assert.Equal(t, run.Strategy, got.Strategy)
	assert.Equal(t, run.ElapsedMS, got.ElapsedMS)
	assert.Equal(t, run.Metrics.TruePositives, got.Metrics.TruePositives)
	assert.InDelta(t, run.Metrics.F1, got.Metrics.F1, 1e-9)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestHistoryRecentNewestFirst(t *testing.T) {
	h := openTestHistory(t)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, h.Record(Run{ImageKey: "img", Strategy: "fast", ElapsedMS: i}))
	}

	runs, err := h.Recent("img", "fast", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(3), runs[0].ElapsedMS)
	assert.Equal(t, int64(2), runs[1].ElapsedMS)
}

func TestHistoryRecentAnyStrategy(t *testing.T) {
	h := openTestHistory(t)

	require.NoError(t, h.Record(Run{ImageKey: "img", Strategy: "fast"}))
	require.NoError(t, h.Record(Run{ImageKey: "img", Strategy: "accurate"}))
	require.NoError(t, h.Record(Run{ImageKey: "other", Strategy: "fast"}))

	runs, err := h.Recent("img", "", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

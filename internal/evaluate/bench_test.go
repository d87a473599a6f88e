package evaluate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonktools/build-detect/pkg/types"
)

func TestBenchmarkPassesThrough(t *testing.T) {
	want := &types.DetectionResult{StrategyUsed: "fast"}

	got, stats, err := Benchmark(func() (*types.DetectionResult, error) {
		time.Sleep(5 * time.Millisecond)
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.GreaterOrEqual(t, stats.ElapsedMS, int64(5))
}

func TestBenchmarkPassesThroughError(t *testing.T) {
	wantErr := errors.New("boom")

	got, _, err := Benchmark(func() (*types.DetectionResult, error) {
		return nil, wantErr
	})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, wantErr)
}

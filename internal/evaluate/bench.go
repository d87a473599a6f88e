package evaluate

import (
	"runtime"
	"time"

	"github.com/bonktools/build-detect/pkg/types"
)

// BenchStats records the resource cost of one wrapped detection call.
type BenchStats struct {
	// ElapsedMS is the wall-clock duration of the call.
	ElapsedMS int64 `json:"elapsed_ms"`

	// HeapDeltaBytes is the change in live heap across the call. Negative
	// values mean the collector ran mid-call; treat this as indicative,
	// not exact.
	HeapDeltaBytes int64 `json:"heap_delta_bytes"`
}

// Benchmark wraps a detection call, recording wall-clock time and heap
// delta for regression tracking across strategies and image sizes. The
// wrapped call's result and error pass through unchanged.
func Benchmark(run func() (*types.DetectionResult, error)) (*types.DetectionResult, BenchStats, error) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	result, err := run()

	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	stats := BenchStats{
		ElapsedMS:      elapsed.Milliseconds(),
		HeapDeltaBytes: int64(after.HeapAlloc) - int64(before.HeapAlloc),
	}
	return result, stats, err
}

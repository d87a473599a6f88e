package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxIntersects(t *testing.T) {
	a := BoundingBox{X: 0, Y: 0, W: 10, H: 10}

	assert.True(t, a.Intersects(BoundingBox{X: 5, Y: 5, W: 10, H: 10}))
	assert.True(t, a.Intersects(a))
	assert.False(t, a.Intersects(BoundingBox{X: 10, Y: 0, W: 5, H: 5}), "touching edges do not intersect")
	assert.False(t, a.Intersects(BoundingBox{X: 20, Y: 20, W: 5, H: 5}))
}

func TestBoundingBoxIoU(t *testing.T) {
	a := BoundingBox{X: 0, Y: 0, W: 10, H: 10}

	assert.InDelta(t, 1.0, a.IoU(a), 1e-9)
	assert.InDelta(t, 0.0, a.IoU(BoundingBox{X: 10, Y: 10, W: 10, H: 10}), 1e-9)

	// 5x10 overlap out of 150 union.
	b := BoundingBox{X: 5, Y: 0, W: 10, H: 10}
	assert.InDelta(t, 50.0/150.0, a.IoU(b), 1e-9)
}

func TestBoundingBoxUnion(t *testing.T) {
	a := BoundingBox{X: 0, Y: 0, W: 10, H: 10}
	b := BoundingBox{X: 20, Y: 5, W: 10, H: 10}

	assert.Equal(t, BoundingBox{X: 0, Y: 0, W: 30, H: 15}, a.Union(b))
}

func TestDetectionResultEntityNames(t *testing.T) {
	r := DetectionResult{
		Entries: []DetectionEntry{
			{EntityID: "gym_sauce", EstimatedCount: 3},
			{EntityID: "anvil", EstimatedCount: 1},
		},
	}

	assert.Equal(t, []string{"anvil", "gym_sauce", "gym_sauce", "gym_sauce"}, r.EntityNames())
}

func TestCategoriesComplete(t *testing.T) {
	assert.Len(t, Categories(), 5)
}

package util

import (
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBoundsExtend(t *testing.T) {
	bounds := EmptyBounds()
	assert.True(t, bounds.IsEmpty())
	assert.False(t, bounds.Contains(mgl32.Vec3{}))

	bounds = bounds.Extend(mgl32.Vec3{1, 2, 3})
	bounds = bounds.Extend(mgl32.Vec3{-1, 4, 3})

	assert.Equal(t, mgl32.Vec3{-1, 2, 3}, bounds.Min())
	assert.Equal(t, mgl32.Vec3{1, 4, 3}, bounds.Max())
	assert.Equal(t, mgl32.Vec3{2, 2, 0}, bounds.Size())
	assert.Equal(t, mgl32.Vec3{0, 3, 3}, bounds.Center())
	assert.True(t, bounds.Contains(mgl32.Vec3{0, 3, 3}))
	assert.False(t, bounds.Contains(mgl32.Vec3{0, 5, 3}))
}

func TestMergedMeshBoundsIgnoresUnreferencedVertices(t *testing.T) {
	cube := *NewCubeMesh(2).SubMeshes[0]
	cube.Positions = append(cube.Positions, mgl32.Vec3{100, 100, 100})
	merged := &MergedMesh{SubMeshes: []*MergedSubMesh{{SubMesh: cube}}}

	bounds := merged.Bounds()

	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, bounds.Min())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, bounds.Max())
	assert.True(t, (&MergedMesh{}).Bounds().IsEmpty())
}

func TestTimerKeepsStageOrder(t *testing.T) {
	timer := NewTimer()

	stopLoad := timer.Start("load")
	stopBake := timer.Start("bake")
	assert.GreaterOrEqual(t, stopBake(), time.Duration(0))
	stopLoad()
	timer.Start("bake")()

	assert.Equal(t, int64(1), timer.Stage("load").Count())
	assert.Equal(t, int64(2), timer.Stage("bake").Count())
	lines := strings.Split(timer.String(), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "load: "))
	assert.Contains(t, lines[1], "(2 runs)")
	assert.Nil(t, timer.Stage("export"))
}

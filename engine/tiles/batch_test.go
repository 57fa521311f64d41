package tiles

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/mapforge/engine/util"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shapeCube int32 = iota
	shapeTwoPart
	shapeSlope
)

type testResolver struct {
	meshes      map[int32]*util.SimpleMesh
	textures    map[int32]*util.Texture
	placeholder *util.SimpleMesh
}

func newTestResolver(spacing float32) *testResolver {
	cube := util.NewCubeMesh(spacing)
	h := spacing / 2
	marker := &util.SubMesh{
		Positions: []mgl32.Vec3{{-h, h, -h}, {h, h, -h}, {0, h, h}},
		Normals:   []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {0.5, 1}},
		Indices:   []uint32{0, 2, 1},
	}
	slope := &util.SubMesh{
		Positions: []mgl32.Vec3{{-h, -h, h}, {h, -h, h}, {h, h, -h}, {-h, h, -h}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
	return &testResolver{
		meshes: map[int32]*util.SimpleMesh{
			shapeCube:    cube,
			shapeTwoPart: {Name: "two part", SubMeshes: []*util.SubMesh{cube.SubMeshes[0], marker}},
			shapeSlope:   {Name: "slope", SubMeshes: []*util.SubMesh{slope}},
		},
		textures:    map[int32]*util.Texture{},
		placeholder: util.NewCubeMesh(spacing),
	}
}

func (r *testResolver) ResolveMesh(shapeID int32) *util.SimpleMesh {
	if mesh, ok := r.meshes[shapeID]; ok {
		return mesh
	}
	return r.placeholder
}

func (r *testResolver) ResolveTexture(textureID int32) *util.Texture {
	if texture, ok := r.textures[textureID]; ok {
		return texture
	}
	texture := &util.Texture{Name: "test", Width: 1, Height: 1, Pixels: []uint8{255, 255, 255, 255}}
	r.textures[textureID] = texture
	return texture
}

type drawCall struct {
	subMesh    *util.SubMesh
	texture    *util.Texture
	transforms []mgl32.Mat4
}

type recordingRenderer struct {
	calls []drawCall
}

func (r *recordingRenderer) DrawInstanced(subMesh *util.SubMesh, texture *util.Texture, transforms []mgl32.Mat4) {
	r.calls = append(r.calls, drawCall{subMesh: subMesh, texture: texture, transforms: transforms})
}

func TestRegenerateBatchesGroupsByTextureAndSubMesh(t *testing.T) {
	resolver := newTestResolver(1)
	grid := NewGrid(3, 1, 1, 1)
	grid.SetResolver(resolver)
	require.NoError(t, grid.SetTile(0, 0, 0, NewTile(shapeCube, 1, 0, 0)))
	require.NoError(t, grid.SetTile(1, 0, 0, NewTile(shapeCube, 2, 0, 0)))
	require.NoError(t, grid.SetTile(2, 0, 0, NewTile(shapeTwoPart, 1, 0, 0)))

	grid.RegenerateBatches(mgl32.Vec3{}, 0, 0)
	order, batches := grid.Batches()

	cube := resolver.meshes[shapeCube].SubMeshes[0]
	marker := resolver.meshes[shapeTwoPart].SubMeshes[1]
	require.Equal(t, []BatchKey{{1, cube}, {2, cube}, {1, marker}}, order)
	assert.Equal(t, []Int3{{0, 0, 0}, {2, 0, 0}}, batches[BatchKey{1, cube}].Cells)
	assert.Equal(t, []Int3{{1, 0, 0}}, batches[BatchKey{2, cube}].Cells)
	assert.Equal(t, []Int3{{2, 0, 0}}, batches[BatchKey{1, marker}].Cells)
}

func TestTileTransformPlacesAtCellCenter(t *testing.T) {
	grid := NewGrid(4, 4, 4, 2)
	require.NoError(t, grid.SetTile(1, 2, 3, NewTile(shapeCube, 0, 90, 0)))
	origin := mgl32.Vec3{10, 0, -10}

	transform := grid.TileTransform(origin, 1, 2, 3)

	assert.Equal(t, mgl32.Vec3{13, 5, -3}, util.TranslationPart(transform))
	rotated := transform.Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, rotated)
}

func TestRegenerateBatchesIsIdempotent(t *testing.T) {
	grid := NewGrid(4, 2, 4, 1)
	grid.SetResolver(newTestResolver(1))
	require.NoError(t, grid.SetTileRect(0, 0, 0, 4, 1, 4, NewTile(shapeCube, 0, 0, 0)))
	require.NoError(t, grid.SetTileRect(1, 1, 1, 2, 1, 2, NewTile(shapeTwoPart, 3, 180, 90)))
	origin := mgl32.Vec3{1, 2, 3}

	grid.RegenerateBatches(origin, 0, 1)
	firstOrder, firstBatches := grid.Batches()
	grid.RegenerateBatches(origin, 0, 1)
	secondOrder, secondBatches := grid.Batches()

	assert.Equal(t, firstOrder, secondOrder)
	assert.Equal(t, firstBatches, secondBatches)
}

func TestRegenerateBatchesFiltersLayers(t *testing.T) {
	grid := NewGrid(1, 3, 1, 1)
	grid.SetResolver(newTestResolver(1))
	require.NoError(t, grid.SetTileRect(0, 0, 0, 1, 3, 1, NewTile(shapeCube, 0, 0, 0)))

	grid.RegenerateBatches(mgl32.Vec3{}, 1, 1)
	order, batches := grid.Batches()
	require.Len(t, order, 1)
	assert.Equal(t, []Int3{{0, 1, 0}}, batches[order[0]].Cells)

	grid.RegenerateBatches(mgl32.Vec3{}, -5, 10)
	order, batches = grid.Batches()
	assert.Len(t, batches[order[0]].Cells, 3)
}

func TestRegenerateBatchesSkipsUnoccupied(t *testing.T) {
	grid := NewGrid(2, 1, 1, 1)
	grid.SetResolver(newTestResolver(1))
	require.NoError(t, grid.SetTile(0, 0, 0, NewTile(shapeCube, NO_TEXTURE, 0, 0)))

	grid.RegenerateBatches(mgl32.Vec3{}, 0, 0)

	order, batches := grid.Batches()
	assert.Empty(t, order)
	assert.Empty(t, batches)
}

func TestDrawRegeneratesOnlyWhenNeeded(t *testing.T) {
	grid := NewGrid(2, 1, 1, 1)
	grid.SetResolver(newTestResolver(1))
	require.NoError(t, grid.SetTile(0, 0, 0, NewTile(shapeCube, 0, 0, 0)))
	renderer := &recordingRenderer{}

	start := testutil.ToFloat64(batchRegenerations)
	grid.Draw(renderer, mgl32.Vec3{}, 0, 0)
	grid.Draw(renderer, mgl32.Vec3{}, 0, 0)
	assert.Equal(t, start+1, testutil.ToFloat64(batchRegenerations))
	require.Len(t, renderer.calls, 2)
	assert.Len(t, renderer.calls[0].transforms, 1)

	grid.Draw(renderer, mgl32.Vec3{0, 1, 0}, 0, 0)
	assert.Equal(t, start+2, testutil.ToFloat64(batchRegenerations))

	require.NoError(t, grid.SetTile(1, 0, 0, NewTile(shapeCube, 0, 0, 0)))
	grid.Draw(renderer, mgl32.Vec3{0, 1, 0}, 0, 0)
	assert.Equal(t, start+3, testutil.ToFloat64(batchRegenerations))
	assert.Len(t, renderer.calls[3].transforms, 2)
}

func TestDrawWithoutResolverDrawsNothing(t *testing.T) {
	grid := NewGrid(1, 1, 1, 1)
	require.NoError(t, grid.SetTile(0, 0, 0, NewTile(shapeCube, 0, 0, 0)))
	renderer := &recordingRenderer{}

	grid.Draw(renderer, mgl32.Vec3{}, 0, 0)

	assert.Empty(t, renderer.calls)
}

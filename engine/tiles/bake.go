package tiles

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/mapforge/engine/util"
)

// BakeMesh merges the geometry of every occupied tile into one mesh with a sub-mesh per texture.
// With cullingEnabled, triangles covered by a coincident, opposite facing triangle of the
// neighboring tile are dropped. Textures whose triangles were all culled get no sub-mesh.
// The result is cached until the grid changes or the culling flag differs.
func (g *Grid) BakeMesh(cullingEnabled bool) *util.MergedMesh {
	if g.bakedMesh != nil && !g.bakeDirty && g.bakedCulling == cullingEnabled {
		return g.bakedMesh
	}
	startTime := time.Now()
	g.RegenerateBatches(mgl32.Vec3{}, 0, g.height-1)

	var culler *faceCuller
	if cullingEnabled {
		culler = newFaceCuller(g)
	}

	merged := &util.MergedMesh{}
	textureIDs, _ := g.UsedIDs()
	culled := 0
	for _, textureID := range textureIDs {
		subMesh := &util.MergedSubMesh{TextureID: textureID}
		if g.resolver != nil {
			subMesh.Texture = g.resolver.ResolveTexture(textureID)
		}
		for _, key := range g.batchOrder {
			if key.Texture != textureID {
				continue
			}
			batch := g.batches[key]
			for i, transform := range batch.Transforms {
				culled += appendInstance(subMesh, key.SubMesh, transform, batch.Cells[i], culler)
			}
		}
		if subMesh.TriangleCount() == 0 {
			continue
		}
		merged.SubMeshes = append(merged.SubMeshes, subMesh)
	}

	g.bakedMesh = merged
	g.bakedCulling = cullingEnabled
	g.bakeDirty = false

	elapsed := time.Since(startTime)
	bakeDuration.Observe(elapsed.Seconds())
	trianglesEmitted.Add(float64(merged.TriangleCount()))
	trianglesCulled.Add(float64(culled))
	util.LogTilesInfo(fmt.Sprintf("[Bake] %d triangles in %d sub-meshes, %d culled (%s)", merged.TriangleCount(), merged.MaterialCount(), culled, elapsed))
	return merged
}

// appendInstance writes one transformed copy of source into target and returns the number of
// culled triangles. A nil culler keeps everything.
func appendInstance(target *util.MergedSubMesh, source *util.SubMesh, transform mgl32.Mat4, cell Int3, culler *faceCuller) int {
	base := uint32(len(target.Positions))
	rotation := util.RotationPart(transform)
	worldPositions := make([]mgl32.Vec3, len(source.Positions))
	for i, position := range source.Positions {
		worldPositions[i] = transform.Mul4x1(position.Vec4(1)).Vec3()
	}
	target.Positions = append(target.Positions, worldPositions...)
	for i := range source.Positions {
		var normal mgl32.Vec3
		if i < len(source.Normals) {
			normal = rotation.Mul4x1(source.Normals[i].Vec4(0)).Vec3()
		}
		target.Normals = append(target.Normals, normal)
		var uv mgl32.Vec2
		if i < len(source.UVs) {
			uv = source.UVs[i]
		}
		target.UVs = append(target.UVs, uv)
	}

	culled := 0
	for t := 0; t < source.TriangleCount(); t++ {
		i0, i1, i2 := source.Indices[t*3], source.Indices[t*3+1], source.Indices[t*3+2]
		if culler != nil {
			triangle := [3]mgl32.Vec3{worldPositions[i0], worldPositions[i1], worldPositions[i2]}
			if culler.isHidden(cell, triangle) {
				culled++
				continue
			}
		}
		target.Indices = append(target.Indices, base+i0, base+i1, base+i2)
	}
	return culled
}

package tiles

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/mapforge/engine/util"
)

// Resolver maps shape and texture IDs to geometry and images. Unknown IDs resolve to a
// placeholder, never to nil. Results must not change during one batch or bake.
type Resolver interface {
	ResolveMesh(shapeID int32) *util.SimpleMesh
	ResolveTexture(textureID int32) *util.Texture
}

// Renderer receives one instanced draw per batch.
type Renderer interface {
	DrawInstanced(subMesh *util.SubMesh, texture *util.Texture, transforms []mgl32.Mat4)
}

// BatchKey groups instances sharing a texture and a sub-mesh of a resolved shape.
type BatchKey struct {
	Texture int32
	SubMesh *util.SubMesh
}

// Batch holds the world transforms of all instances of one key, and the cells they came from.
type Batch struct {
	Transforms []mgl32.Mat4
	Cells      []Int3
}

// TileTransform places tile x,y,z: pitch, then yaw, then translation to origin + cell center.
func (g *Grid) TileTransform(origin mgl32.Vec3, x, y, z int32) mgl32.Mat4 {
	tile := g.GetTile(x, y, z)
	return util.PlacementMatrix(origin.Add(g.GridToWorld(x, y, z)), tile.Pitch, tile.Angle)
}

// RegenerateBatches rebuilds the batch cache for all occupied tiles on layers fromLayer through
// toLayer (inclusive).
func (g *Grid) RegenerateBatches(origin mgl32.Vec3, fromLayer, toLayer int32) {
	startTime := time.Now()
	g.batches = make(map[BatchKey]*Batch)
	g.batchOrder = nil
	g.batchOrigin = origin
	g.batchFrom = fromLayer
	g.batchTo = toLayer
	g.batchesDirty = false

	if g.resolver == nil {
		util.LogTilesError("[Batch] No resolver set, cannot build batches")
		return
	}

	instances := 0
	for y := max(fromLayer, 0); y <= toLayer && y < g.height; y++ {
		for z := int32(0); z < g.length; z++ {
			for x := int32(0); x < g.width; x++ {
				tile := g.tiles[g.Index(x, y, z)]
				if !tile.IsOccupied() {
					continue
				}
				transform := g.TileTransform(origin, x, y, z)
				mesh := g.resolver.ResolveMesh(tile.Shape)
				if mesh == nil {
					continue
				}
				for _, subMesh := range mesh.SubMeshes {
					key := BatchKey{Texture: tile.Texture, SubMesh: subMesh}
					batch, exists := g.batches[key]
					if !exists {
						batch = &Batch{}
						g.batches[key] = batch
						g.batchOrder = append(g.batchOrder, key)
					}
					batch.Transforms = append(batch.Transforms, transform)
					batch.Cells = append(batch.Cells, Int3{x, y, z})
				}
				instances++
			}
		}
	}
	batchRegenerations.Inc()
	util.LogTilesDebug(fmt.Sprintf("[Batch] Layers %d-%d: %d tiles in %d batches (%s)", fromLayer, toLayer, instances, len(g.batchOrder), time.Since(startTime)))
}

// Batches returns the cached batches in the order their keys were first seen.
func (g *Grid) Batches() ([]BatchKey, map[BatchKey]*Batch) {
	return g.batchOrder, g.batches
}

func (g *Grid) batchesValidFor(origin mgl32.Vec3, fromLayer, toLayer int32) bool {
	return g.batches != nil && !g.batchesDirty && g.batchOrigin == origin && g.batchFrom == fromLayer && g.batchTo == toLayer
}

// Draw issues one instanced draw per batch, regenerating the batches first if the grid changed
// or the requested origin or layer range differs from the cached one.
func (g *Grid) Draw(renderer Renderer, origin mgl32.Vec3, fromLayer, toLayer int32) {
	if !g.batchesValidFor(origin, fromLayer, toLayer) {
		g.RegenerateBatches(origin, fromLayer, toLayer)
	}
	if g.resolver == nil {
		return
	}
	for _, key := range g.batchOrder {
		batch := g.batches[key]
		renderer.DrawInstanced(key.SubMesh, g.resolver.ResolveTexture(key.Texture), batch.Transforms)
	}
}

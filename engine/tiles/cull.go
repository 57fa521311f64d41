package tiles

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/mapforge/engine/util"
)

const normalEpsilon = 1e-4

type worldTriangle struct {
	vertices [3]mgl32.Vec3
	plane    util.Plane
}

// faceCuller answers whether a triangle on a cell boundary is covered by the neighbor cell.
// Neighbor geometry is transformed once per bake and kept per cell.
type faceCuller struct {
	grid              *Grid
	positionEpsilon   float32
	neighborTriangles map[Int3][]worldTriangle
}

func newFaceCuller(grid *Grid) *faceCuller {
	return &faceCuller{
		grid:              grid,
		positionEpsilon:   grid.spacing * 1e-4,
		neighborTriangles: make(map[Int3][]worldTriangle),
	}
}

// isHidden reports whether the neighbor of cell in the direction of the triangle's normal has a
// triangle with the same vertices facing the other way. Triangles that are not axis aligned
// never count as hidden.
func (c *faceCuller) isHidden(cell Int3, triangle [3]mgl32.Vec3) bool {
	plane := util.TrianglePlane(triangle[0], triangle[1], triangle[2])
	axis, sign, aligned := util.AxisDirection(plane.Normal, normalEpsilon)
	if !aligned {
		return false
	}
	neighbor := cell.WithAxis(axis, cell.Axis(axis)+sign)
	if !c.grid.Contains(neighbor.X, neighbor.Y, neighbor.Z) {
		return false
	}
	if c.grid.GetTile(neighbor.X, neighbor.Y, neighbor.Z).IsEmpty() {
		return false
	}
	for _, other := range c.trianglesOf(neighbor) {
		if !util.ApproxEqual(util.Abs(other.plane.Distance), util.Abs(plane.Distance), c.positionEpsilon) {
			continue
		}
		if !util.ApproxEqual(other.plane.Normal.Dot(plane.Normal), -1, normalEpsilon) {
			continue
		}
		if sameVertexSet(triangle, other.vertices, c.positionEpsilon) {
			return true
		}
	}
	return false
}

func (c *faceCuller) trianglesOf(cell Int3) []worldTriangle {
	if triangles, cached := c.neighborTriangles[cell]; cached {
		return triangles
	}
	var triangles []worldTriangle
	tile := c.grid.GetTile(cell.X, cell.Y, cell.Z)
	if c.grid.resolver != nil && tile.IsOccupied() {
		transform := c.grid.TileTransform(mgl32.Vec3{}, cell.X, cell.Y, cell.Z)
		mesh := c.grid.resolver.ResolveMesh(tile.Shape)
		if mesh != nil {
			for _, subMesh := range mesh.SubMeshes {
				for t := 0; t < subMesh.TriangleCount(); t++ {
					local := subMesh.Triangle(t)
					var world worldTriangle
					for k := 0; k < 3; k++ {
						world.vertices[k] = transform.Mul4x1(local[k].Vec4(1)).Vec3()
					}
					world.plane = util.TrianglePlane(world.vertices[0], world.vertices[1], world.vertices[2])
					triangles = append(triangles, world)
				}
			}
		}
	}
	c.neighborTriangles[cell] = triangles
	return triangles
}

// sameVertexSet matches the three positions of a against those of b in any order.
func sameVertexSet(a, b [3]mgl32.Vec3, epsilon float32) bool {
	var used [3]bool
	for _, va := range a {
		found := false
		for k, vb := range b {
			if !used[k] && util.ApproxEqualVec3(va, vb, epsilon) {
				used[k] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

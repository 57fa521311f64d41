package util

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SubMesh is one indexed triangle list. Positions, Normals and UVs are parallel arrays,
// Indices holds three entries per triangle.
type SubMesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

func (s *SubMesh) VertexCount() int {
	return len(s.Positions)
}

func (s *SubMesh) TriangleCount() int {
	return len(s.Indices) / 3
}

// Triangle returns the three vertex positions of triangle i.
func (s *SubMesh) Triangle(i int) [3]mgl32.Vec3 {
	return [3]mgl32.Vec3{
		s.Positions[s.Indices[i*3]],
		s.Positions[s.Indices[i*3+1]],
		s.Positions[s.Indices[i*3+2]],
	}
}

// SimpleMesh is the geometry of one shape asset.
type SimpleMesh struct {
	Name      string
	SubMeshes []*SubMesh
}

func (m *SimpleMesh) TriangleCount() int {
	count := 0
	for _, subMesh := range m.SubMeshes {
		count += subMesh.TriangleCount()
	}
	return count
}

// MergedSubMesh holds all baked geometry sharing one texture.
type MergedSubMesh struct {
	SubMesh
	TextureID int32
	Texture   *Texture
}

// MergedMesh is the output of a bake: one sub-mesh per texture that contributed triangles.
type MergedMesh struct {
	SubMeshes []*MergedSubMesh
}

func (m *MergedMesh) TriangleCount() int {
	count := 0
	for _, subMesh := range m.SubMeshes {
		count += subMesh.TriangleCount()
	}
	return count
}

func (m *MergedMesh) VertexCount() int {
	count := 0
	for _, subMesh := range m.SubMeshes {
		count += subMesh.VertexCount()
	}
	return count
}

func (m *MergedMesh) MaterialCount() int {
	return len(m.SubMeshes)
}

// Bounds covers the vertices referenced by at least one triangle.
func (m *MergedMesh) Bounds() Bounds {
	bounds := EmptyBounds()
	for _, subMesh := range m.SubMeshes {
		for _, index := range subMesh.Indices {
			bounds = bounds.Extend(subMesh.Positions[index])
		}
	}
	return bounds
}

// NewCubeMesh returns an axis aligned cube of the given edge length centered at the origin.
// Every face is split along the diagonal from its (-,-) to its (+,+) corner, on both the
// positive and the negative side, so two touching cubes present identical triangles.
func NewCubeMesh(size float32) *SimpleMesh {
	h := size / 2
	subMesh := &SubMesh{}
	for axis := 0; axis < 3; axis++ {
		b := (axis + 1) % 3
		c := (axis + 2) % 3
		for _, sign := range []float32{1, -1} {
			base := uint32(len(subMesh.Positions))
			corners := [4][2]float32{{-h, -h}, {h, -h}, {h, h}, {-h, h}}
			uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
			var normal mgl32.Vec3
			normal[axis] = sign
			for i, corner := range corners {
				var p mgl32.Vec3
				p[axis] = sign * h
				p[b] = corner[0]
				p[c] = corner[1]
				subMesh.Positions = append(subMesh.Positions, p)
				subMesh.Normals = append(subMesh.Normals, normal)
				subMesh.UVs = append(subMesh.UVs, uvs[i])
			}
			if sign > 0 {
				subMesh.Indices = append(subMesh.Indices, base, base+1, base+2, base, base+2, base+3)
			} else {
				subMesh.Indices = append(subMesh.Indices, base, base+2, base+1, base, base+3, base+2)
			}
		}
	}
	return &SimpleMesh{Name: "cube", SubMeshes: []*SubMesh{subMesh}}
}

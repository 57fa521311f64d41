package util

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF loads every triangle primitive reachable from the default scene into one SimpleMesh.
// Node transforms are baked into the vertex data.
func LoadGLTF(filename string) (*SimpleMesh, error) {
	doc, err := gltf.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open gltf %s", filename)
	}
	mesh, err := MeshFromDocument(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "read gltf %s", filename)
	}
	mesh.Name = filename
	return mesh, nil
}

func MeshFromDocument(doc *gltf.Document) (*SimpleMesh, error) {
	result := &SimpleMesh{}
	if len(doc.Scenes) == 0 {
		// no scene graph, take the meshes as they are
		for meshIndex := range doc.Meshes {
			if err := appendMesh(doc, result, uint32(meshIndex), mgl32.Ident4()); err != nil {
				return nil, err
			}
		}
		return result, nil
	}
	defaultSceneIndex := 0
	if doc.Scene != nil {
		defaultSceneIndex = int(*doc.Scene)
	}
	for _, nodeIndex := range doc.Scenes[defaultSceneIndex].Nodes {
		if err := appendNode(doc, result, nodeIndex, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func appendNode(doc *gltf.Document, result *SimpleMesh, nodeIndex uint32, parent mgl32.Mat4) error {
	node := doc.Nodes[nodeIndex]
	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	rotation := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	local := mgl32.Translate3D(t[0], t[1], t[2]).Mul4(rotation.Mat4()).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	world := parent.Mul4(local)
	if node.Mesh != nil {
		if err := appendMesh(doc, result, *node.Mesh, world); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := appendNode(doc, result, child, world); err != nil {
			return err
		}
	}
	return nil
}

// appendMesh reads all primitives of one mesh as sub-meshes.
func appendMesh(doc *gltf.Document, result *SimpleMesh, meshIndex uint32, transform mgl32.Mat4) error {
	mesh := doc.Meshes[meshIndex]
	normalMatrix := RotationPart(transform)
	for primitiveIndex, primitive := range mesh.Primitives {
		if primitive.Mode != gltf.PrimitiveTriangles {
			LogAssetsWarning(fmt.Sprintf("[GLTF] Skipping primitive %d of mesh '%s': only triangles are supported", primitiveIndex, mesh.Name))
			continue
		}
		indexOfPositions, hasPositions := primitive.Attributes["POSITION"]
		if !hasPositions {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[indexOfPositions], nil)
		if err != nil {
			return errors.Wrap(err, "read positions")
		}

		subMesh := &SubMesh{
			Positions: make([]mgl32.Vec3, len(positions)),
			Normals:   make([]mgl32.Vec3, len(positions)),
			UVs:       make([]mgl32.Vec2, len(positions)),
		}
		for i, p := range positions {
			subMesh.Positions[i] = transform.Mul4x1(mgl32.Vec3(p).Vec4(1)).Vec3()
		}

		if primitive.Indices != nil {
			subMesh.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
			if err != nil {
				return errors.Wrap(err, "read indices")
			}
		} else {
			subMesh.Indices = make([]uint32, len(positions))
			for i := range subMesh.Indices {
				subMesh.Indices[i] = uint32(i)
			}
		}

		if indexOfNormals, hasNormals := primitive.Attributes["NORMAL"]; hasNormals {
			normals, err := modeler.ReadNormal(doc, doc.Accessors[indexOfNormals], nil)
			if err != nil {
				return errors.Wrap(err, "read normals")
			}
			for i := 0; i < len(normals) && i < len(subMesh.Normals); i++ {
				subMesh.Normals[i] = normalMatrix.Mul4x1(mgl32.Vec3(normals[i]).Vec4(0)).Vec3().Normalize()
			}
		} else {
			computeFlatNormals(subMesh)
		}

		if indexOfUVs, hasUVs := primitive.Attributes["TEXCOORD_0"]; hasUVs {
			uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[indexOfUVs], nil)
			if err != nil {
				return errors.Wrap(err, "read texture coordinates")
			}
			for i := 0; i < len(uvs) && i < len(subMesh.UVs); i++ {
				subMesh.UVs[i] = mgl32.Vec2(uvs[i])
			}
		}
		result.SubMeshes = append(result.SubMeshes, subMesh)
	}
	return nil
}

func computeFlatNormals(subMesh *SubMesh) {
	for i := 0; i < subMesh.TriangleCount(); i++ {
		triangle := subMesh.Triangle(i)
		plane := TrianglePlane(triangle[0], triangle[1], triangle[2])
		for k := 0; k < 3; k++ {
			subMesh.Normals[subMesh.Indices[i*3+k]] = plane.Normal
		}
	}
}

// ExportGLB writes the merged mesh as binary glTF: one primitive and one material per sub-mesh.
func ExportGLB(mesh *MergedMesh, w io.Writer) error {
	doc := DocumentFromMergedMesh(mesh)
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	if err := encoder.Encode(doc); err != nil {
		return errors.Wrap(err, "encode glb")
	}
	return nil
}

func SaveGLB(mesh *MergedMesh, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	defer file.Close()
	if err = ExportGLB(mesh, file); err != nil {
		return err
	}
	LogIOInfo(fmt.Sprintf("[GLTF] Wrote %s (%d triangles, %d materials)", filename, mesh.TriangleCount(), mesh.MaterialCount()))
	return nil
}

func DocumentFromMergedMesh(mesh *MergedMesh) *gltf.Document {
	doc := gltf.NewDocument()
	bakedMesh := &gltf.Mesh{Name: "baked"}
	for _, subMesh := range mesh.SubMeshes {
		positions := make([][3]float32, len(subMesh.Positions))
		normals := make([][3]float32, len(subMesh.Normals))
		uvs := make([][2]float32, len(subMesh.UVs))
		for i := range subMesh.Positions {
			positions[i] = subMesh.Positions[i]
		}
		for i := range subMesh.Normals {
			normals[i] = subMesh.Normals[i]
		}
		for i := range subMesh.UVs {
			uvs[i] = subMesh.UVs[i]
		}
		materialName := fmt.Sprintf("texture_%d", subMesh.TextureID)
		if subMesh.Texture != nil && subMesh.Texture.Name != "" {
			materialName = subMesh.Texture.Name
		}
		doc.Materials = append(doc.Materials, &gltf.Material{Name: materialName})
		primitive := &gltf.Primitive{
			Mode:     gltf.PrimitiveTriangles,
			Indices:  gltf.Index(modeler.WriteIndices(doc, subMesh.Indices)),
			Material: gltf.Index(uint32(len(doc.Materials) - 1)),
			Attributes: map[string]uint32{
				"POSITION":   modeler.WritePosition(doc, positions),
				"NORMAL":     modeler.WriteNormal(doc, normals),
				"TEXCOORD_0": modeler.WriteTextureCoord(doc, uvs),
			},
		}
		bakedMesh.Primitives = append(bakedMesh.Primitives, primitive)
	}
	if len(bakedMesh.Primitives) == 0 {
		return doc
	}
	doc.Meshes = append(doc.Meshes, bakedMesh)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "tiles", Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc
}

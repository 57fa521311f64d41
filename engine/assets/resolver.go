package assets

import (
	"fmt"
	"image/color"
	"os"
	"sync"

	"github.com/memmaker/mapforge/engine/util"
)

var (
	placeholderA = color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	placeholderB = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	checkerA     = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	checkerB     = color.NRGBA{R: 120, G: 120, B: 120, A: 255}
)

// FileResolver loads shapes and textures named by a Catalog on first use and caches them by
// path, so entries sharing a file share the loaded asset. Missing IDs and files that fail to
// load resolve to placeholders.
type FileResolver struct {
	catalog *Catalog

	mu       sync.Mutex
	meshes   map[string]*util.SimpleMesh
	textures map[string]*util.Texture

	placeholderMesh    *util.SimpleMesh
	placeholderTexture *util.Texture
}

func NewFileResolver(catalog *Catalog) *FileResolver {
	return &FileResolver{
		catalog:            catalog,
		meshes:             make(map[string]*util.SimpleMesh),
		textures:           make(map[string]*util.Texture),
		placeholderMesh:    util.NewCubeMesh(catalog.Spacing),
		placeholderTexture: util.NewCheckerTexture("placeholder", 16, 4, placeholderA, placeholderB),
	}
}

func (r *FileResolver) Catalog() *Catalog {
	return r.catalog
}

func (r *FileResolver) ResolveMesh(shapeID int32) *util.SimpleMesh {
	entry, known := r.catalog.Shape(shapeID)
	if !known {
		util.LogAssetsWarning(fmt.Sprintf("[Assets] Unknown shape %d, using placeholder", shapeID))
		return r.placeholderMesh
	}
	filePath := r.catalog.Path(entry)

	r.mu.Lock()
	defer r.mu.Unlock()
	if mesh, cached := r.meshes[filePath]; cached {
		return mesh
	}
	mesh := r.loadMesh(filePath)
	r.meshes[filePath] = mesh
	return mesh
}

func (r *FileResolver) ResolveTexture(textureID int32) *util.Texture {
	entry, known := r.catalog.Texture(textureID)
	if !known {
		util.LogAssetsWarning(fmt.Sprintf("[Assets] Unknown texture %d, using placeholder", textureID))
		return r.placeholderTexture
	}
	filePath := r.catalog.Path(entry)

	r.mu.Lock()
	defer r.mu.Unlock()
	if texture, cached := r.textures[filePath]; cached {
		return texture
	}
	texture := r.loadTexture(filePath, entry.Name)
	r.textures[filePath] = texture
	return texture
}

// loadMesh never returns nil. Failures are logged once and cached as the placeholder.
func (r *FileResolver) loadMesh(filePath string) *util.SimpleMesh {
	if filePath == BuiltinCube {
		return util.NewCubeMesh(r.catalog.Spacing)
	}
	mesh, err := util.LoadGLTF(filePath)
	if err != nil {
		util.LogAssetsError(fmt.Sprintf("[Assets] Could not load mesh %s: %s", filePath, err.Error()))
		return r.placeholderMesh
	}
	if len(mesh.SubMeshes) == 0 {
		util.LogAssetsError(fmt.Sprintf("[Assets] Mesh %s has no triangles", filePath))
		return r.placeholderMesh
	}
	util.LogAssetsDebug(fmt.Sprintf("[Assets] Loaded mesh %s (%d triangles)", filePath, mesh.TriangleCount()))
	return mesh
}

func (r *FileResolver) loadTexture(filePath, name string) *util.Texture {
	if filePath == BuiltinChecker {
		return util.NewCheckerTexture(name, 16, 4, checkerA, checkerB)
	}
	file, err := os.Open(filePath)
	if err != nil {
		util.LogAssetsError(fmt.Sprintf("[Assets] Could not open texture %s: %s", filePath, err.Error()))
		return r.placeholderTexture
	}
	defer file.Close()
	texture, err := util.NewTextureFromReader(file, false)
	if err != nil {
		util.LogAssetsError(fmt.Sprintf("[Assets] Could not decode texture %s: %s", filePath, err.Error()))
		return r.placeholderTexture
	}
	texture.Name = name
	util.LogAssetsDebug(fmt.Sprintf("[Assets] Loaded texture %s (%dx%d)", filePath, texture.Width, texture.Height))
	return texture
}

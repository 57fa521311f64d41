package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/memmaker/mapforge/engine/tiles"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	BuiltinCube    = "builtin:cube"
	BuiltinChecker = "builtin:checker"
)

var ErrInvalidCatalog = errors.New("invalid asset catalog")

// Catalog maps the shape and texture IDs stored in tiles to asset files.
//
//	root: ./assets
//	spacing: 1
//	shapes:
//	  - {id: 0, name: cube, file: builtin:cube}
//	  - {id: 1, name: ramp, file: models/ramp.glb}
//	textures:
//	  - {id: 0, name: stone, file: textures/stone.png}
//	blocks:
//	  stone: {shape: 0, texture: 0}
type Catalog struct {
	Root     string                `yaml:"root"`
	Spacing  float32               `yaml:"spacing"`
	Shapes   []AssetEntry          `yaml:"shapes"`
	Textures []AssetEntry          `yaml:"textures"`
	Blocks   map[string]BlockEntry `yaml:"blocks"`
}

type AssetEntry struct {
	ID   int32  `yaml:"id"`
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// BlockEntry is the tile used for an imported block name.
type BlockEntry struct {
	Shape   int32 `yaml:"shape"`
	Texture int32 `yaml:"texture"`
	Angle   int32 `yaml:"angle"`
	Pitch   int32 `yaml:"pitch"`
}

// DefaultCatalog knows a single cube shape and a single checker texture, both with ID 0.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Root:     ".",
		Spacing:  1,
		Shapes:   []AssetEntry{{ID: 0, Name: "cube", File: BuiltinCube}},
		Textures: []AssetEntry{{ID: 0, Name: "checker", File: BuiltinChecker}},
		Blocks:   map[string]BlockEntry{},
	}
}

// LoadCatalog reads a YAML catalog. An empty path falls back to MAPFORGE_CATALOG and then to
// DefaultCatalog. A relative root is resolved against the directory of the catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		path = os.Getenv("MAPFORGE_CATALOG")
		if path == "" {
			return DefaultCatalog(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	if !filepath.IsAbs(catalog.Root) {
		catalog.Root = filepath.Join(filepath.Dir(path), catalog.Root)
	}
	return catalog, nil
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}
	if catalog.Root == "" {
		catalog.Root = "."
	}
	if catalog.Spacing <= 0 {
		catalog.Spacing = 1
	}
	if catalog.Blocks == nil {
		catalog.Blocks = map[string]BlockEntry{}
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Validate rejects negative or duplicate IDs and blocks pointing at unknown entries.
func (c *Catalog) Validate() error {
	shapeIDs, err := entryIDs("shape", c.Shapes)
	if err != nil {
		return err
	}
	textureIDs, err := entryIDs("texture", c.Textures)
	if err != nil {
		return err
	}
	for name, block := range c.Blocks {
		if !shapeIDs[block.Shape] {
			return errors.Wrapf(ErrInvalidCatalog, "block %s uses unknown shape %d", name, block.Shape)
		}
		if !textureIDs[block.Texture] {
			return errors.Wrapf(ErrInvalidCatalog, "block %s uses unknown texture %d", name, block.Texture)
		}
	}
	return nil
}

func entryIDs(kind string, entries []AssetEntry) (map[int32]bool, error) {
	ids := make(map[int32]bool, len(entries))
	for _, entry := range entries {
		if entry.ID < 0 {
			return nil, errors.Wrapf(ErrInvalidCatalog, "%s %q has negative id %d", kind, entry.Name, entry.ID)
		}
		if ids[entry.ID] {
			return nil, errors.Wrapf(ErrInvalidCatalog, "duplicate %s id %d", kind, entry.ID)
		}
		if entry.File == "" {
			return nil, errors.Wrapf(ErrInvalidCatalog, "%s %d has no file", kind, entry.ID)
		}
		ids[entry.ID] = true
	}
	return ids, nil
}

func (c *Catalog) Shape(id int32) (AssetEntry, bool) {
	return findEntry(c.Shapes, id)
}

func (c *Catalog) Texture(id int32) (AssetEntry, bool) {
	return findEntry(c.Textures, id)
}

func findEntry(entries []AssetEntry, id int32) (AssetEntry, bool) {
	for _, entry := range entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return AssetEntry{}, false
}

// Path resolves the file of an entry against Root. Builtin entries are returned unchanged.
func (c *Catalog) Path(entry AssetEntry) string {
	if strings.HasPrefix(entry.File, "builtin:") || filepath.IsAbs(entry.File) {
		return entry.File
	}
	return filepath.Join(c.Root, entry.File)
}

// Palette turns the blocks section into the lookup used when importing constructions.
func (c *Catalog) Palette() tiles.BlockPalette {
	return func(blockName string) (tiles.Tile, bool) {
		block, known := c.Blocks[blockName]
		if !known {
			return tiles.EmptyTile, false
		}
		return tiles.NewTile(block.Shape, block.Texture, block.Angle, block.Pitch), true
	}
}

func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog(root=%s, %d shapes, %d textures, %d blocks)", c.Root, len(c.Shapes), len(c.Textures), len(c.Blocks))
}

package tiles

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/memmaker/mapforge/engine/util"
	"github.com/pkg/errors"
)

// Grid is a dense width x height x length block of tiles. Cells are stored flat with x varying
// fastest, then z, then y (the layer axis).
//
// A Grid is not safe for concurrent use. Every mutation marks the batch cache and the baked
// mesh dirty; both are rebuilt lazily on the next draw or bake.
type Grid struct {
	width   int32
	height  int32
	length  int32
	spacing float32
	tiles   []Tile

	resolver Resolver

	batches      map[BatchKey]*Batch
	batchOrder   []BatchKey
	batchOrigin  mgl32.Vec3
	batchFrom    int32
	batchTo      int32
	batchesDirty bool

	bakedMesh    *util.MergedMesh
	bakedCulling bool
	bakeDirty    bool
}

// NewGrid allocates a grid filled with EmptyTile. Negative sizes are treated as zero and a
// non-positive spacing falls back to 1.
func NewGrid(width, height, length int32, spacing float32) *Grid {
	width, height, length = max(width, 0), max(height, 0), max(length, 0)
	if spacing <= 0 {
		util.LogTilesError(fmt.Sprintf("[Grid] Invalid spacing %f, using 1", spacing))
		spacing = 1
	}
	g := &Grid{
		width:   width,
		height:  height,
		length:  length,
		spacing: spacing,
		tiles:   make([]Tile, int(width)*int(height)*int(length)),
	}
	for i := range g.tiles {
		g.tiles[i] = EmptyTile
	}
	return g
}

func (g *Grid) Width() int32 {
	return g.width
}

func (g *Grid) Height() int32 {
	return g.height
}

func (g *Grid) Length() int32 {
	return g.length
}

func (g *Grid) Size() Int3 {
	return Int3{g.width, g.height, g.length}
}

func (g *Grid) Spacing() float32 {
	return g.spacing
}

func (g *Grid) CellCount() int {
	return len(g.tiles)
}

// SetResolver hands the grid the resolver used for batching and baking. The resolver is not
// owned by the grid and must outlive it.
func (g *Grid) SetResolver(resolver Resolver) {
	g.resolver = resolver
	g.SetDirty()
}

func (g *Grid) Resolver() Resolver {
	return g.resolver
}

func (g *Grid) Contains(x, y, z int32) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height && z >= 0 && z < g.length
}

// Index is x + width*(z + length*y). The coordinates are not checked.
func (g *Grid) Index(x, y, z int32) int {
	return int(x) + int(g.width)*(int(z)+int(g.length)*int(y))
}

// Coords is the inverse of Index.
func (g *Grid) Coords(index int) Int3 {
	if g.width == 0 || g.length == 0 {
		return Int3{}
	}
	x := index % int(g.width)
	rest := index / int(g.width)
	z := rest % int(g.length)
	y := rest / int(g.length)
	return Int3{int32(x), int32(y), int32(z)}
}

// GetTile returns EmptyTile for coordinates outside the grid.
func (g *Grid) GetTile(x, y, z int32) Tile {
	if !g.Contains(x, y, z) {
		return EmptyTile
	}
	return g.tiles[g.Index(x, y, z)]
}

func (g *Grid) TileAt(index int) Tile {
	if index < 0 || index >= len(g.tiles) {
		return EmptyTile
	}
	return g.tiles[index]
}

func (g *Grid) SetTile(x, y, z int32, tile Tile) error {
	if !g.Contains(x, y, z) {
		return errors.Wrapf(ErrOutOfBounds, "set tile at %d,%d,%d in %dx%dx%d grid", x, y, z, g.width, g.height, g.length)
	}
	if err := validateTile(tile); err != nil {
		return err
	}
	g.tiles[g.Index(x, y, z)] = tile
	g.SetDirty()
	return nil
}

func (g *Grid) SetTileAt(index int, tile Tile) error {
	if index < 0 || index >= len(g.tiles) {
		return errors.Wrapf(ErrOutOfBounds, "set tile at index %d of %d", index, len(g.tiles))
	}
	if err := validateTile(tile); err != nil {
		return err
	}
	g.tiles[index] = tile
	g.SetDirty()
	return nil
}

// SetTileRect fills the box [x,x+w) x [y,y+h) x [z,z+l) with tile. The box must lie inside the
// grid, nothing is written otherwise.
func (g *Grid) SetTileRect(x, y, z, w, h, l int32, tile Tile) error {
	if !g.containsBox(x, y, z, w, h, l) {
		return errors.Wrapf(ErrOutOfBounds, "fill box %d,%d,%d size %dx%dx%d in %dx%dx%d grid", x, y, z, w, h, l, g.width, g.height, g.length)
	}
	if err := validateTile(tile); err != nil {
		return err
	}
	for j := y; j < y+h; j++ {
		for k := z; k < z+l; k++ {
			for i := x; i < x+w; i++ {
				g.tiles[g.Index(i, j, k)] = tile
			}
		}
	}
	g.SetDirty()
	return nil
}

// CopyTiles stamps source onto g with source's origin at x,y,z. Cells falling outside g are
// dropped. With ignoreEmpty, unoccupied source cells leave the destination untouched.
func (g *Grid) CopyTiles(x, y, z int32, source *Grid, ignoreEmpty bool) {
	startX, startY, startZ := max(0, -x), max(0, -y), max(0, -z)
	endX := min(source.width, g.width-x)
	endY := min(source.height, g.height-y)
	endZ := min(source.length, g.length-z)
	for j := startY; j < endY; j++ {
		for k := startZ; k < endZ; k++ {
			for i := startX; i < endX; i++ {
				tile := source.tiles[source.Index(i, j, k)]
				if ignoreEmpty && tile.IsEmpty() {
					continue
				}
				g.tiles[g.Index(x+i, y+j, z+k)] = tile
			}
		}
	}
	g.SetDirty()
}

// UnsetTile clears the shape of one cell and keeps its other fields.
func (g *Grid) UnsetTile(x, y, z int32) error {
	if !g.Contains(x, y, z) {
		return errors.Wrapf(ErrOutOfBounds, "unset tile at %d,%d,%d in %dx%dx%d grid", x, y, z, g.width, g.height, g.length)
	}
	g.tiles[g.Index(x, y, z)].Shape = NO_SHAPE
	g.SetDirty()
	return nil
}

// Subsection copies the box [x,x+w) x [y,y+h) x [z,z+l) into a new grid with the same spacing
// and resolver.
func (g *Grid) Subsection(x, y, z, w, h, l int32) (*Grid, error) {
	if !g.containsBox(x, y, z, w, h, l) {
		return nil, errors.Wrapf(ErrOutOfBounds, "subsection %d,%d,%d size %dx%dx%d of %dx%dx%d grid", x, y, z, w, h, l, g.width, g.height, g.length)
	}
	section := NewGrid(w, h, l, g.spacing)
	section.resolver = g.resolver
	for j := int32(0); j < h; j++ {
		for k := int32(0); k < l; k++ {
			rowStart := g.Index(x, y+j, z+k)
			copy(section.tiles[section.Index(0, j, k):section.Index(0, j, k)+int(w)], g.tiles[rowStart:rowStart+int(w)])
		}
	}
	return section, nil
}

// Resize returns a new grid of the given size holding the overlapping region of g.
func (g *Grid) Resize(width, height, length int32) *Grid {
	resized := NewGrid(width, height, length, g.spacing)
	resized.resolver = g.resolver
	resized.CopyTiles(0, 0, 0, g, false)
	return resized
}

// UsedIDs returns the sorted, distinct texture and shape IDs of all occupied tiles.
func (g *Grid) UsedIDs() (textureIDs []int32, shapeIDs []int32) {
	textureSet := make(map[int32]bool)
	shapeSet := make(map[int32]bool)
	for _, tile := range g.tiles {
		if !tile.IsOccupied() {
			continue
		}
		textureSet[tile.Texture] = true
		shapeSet[tile.Shape] = true
	}
	return sortedKeys(textureSet), sortedKeys(shapeSet)
}

func (g *Grid) OccupiedCount() int {
	count := 0
	for _, tile := range g.tiles {
		if tile.IsOccupied() {
			count++
		}
	}
	return count
}

// GridToWorld returns the center of cell x,y,z relative to the grid origin.
func (g *Grid) GridToWorld(x, y, z int32) mgl32.Vec3 {
	return mgl32.Vec3{
		(float32(x) + 0.5) * g.spacing,
		(float32(y) + 0.5) * g.spacing,
		(float32(z) + 0.5) * g.spacing,
	}
}

// WorldToGrid returns the cell containing position, which may lie outside the grid.
func (g *Grid) WorldToGrid(position mgl32.Vec3) Int3 {
	return Int3{
		int32(util.Floor(position.X() / g.spacing)),
		int32(util.Floor(position.Y() / g.spacing)),
		int32(util.Floor(position.Z() / g.spacing)),
	}
}

func (g *Grid) SetDirty() {
	g.batchesDirty = true
	g.bakeDirty = true
}

func (g *Grid) IsDirty() bool {
	return g.batchesDirty || g.bakeDirty
}

func (g *Grid) containsBox(x, y, z, w, h, l int32) bool {
	if w < 0 || h < 0 || l < 0 {
		return false
	}
	// int64 so boxes reaching past math.MaxInt32 cannot wrap around
	return x >= 0 && y >= 0 && z >= 0 &&
		int64(x)+int64(w) <= int64(g.width) &&
		int64(y)+int64(h) <= int64(g.height) &&
		int64(z)+int64(l) <= int64(g.length)
}

func validateTile(tile Tile) error {
	if tile.Shape < NO_SHAPE || tile.Texture < NO_TEXTURE {
		return errors.Wrapf(ErrInvalidTile, "shape %d texture %d are reserved for the codec", tile.Shape, tile.Texture)
	}
	return nil
}

func sortedKeys(set map[int32]bool) []int32 {
	keys := make([]int32, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

package tiles

import "github.com/go-gl/mathgl/mgl32"

const (
	NO_SHAPE   int32 = -1
	NO_TEXTURE int32 = -1
)

// Tile is one grid cell. The field order is the on-disk record order of the tile codec.
type Tile struct {
	Shape   int32
	Angle   int32
	Texture int32
	Pitch   int32
}

// EmptyTile is the canonical unoccupied cell.
var EmptyTile = Tile{Shape: NO_SHAPE, Angle: 0, Texture: NO_TEXTURE, Pitch: 0}

func NewTile(shape, texture, angle, pitch int32) Tile {
	return Tile{Shape: shape, Angle: angle, Texture: texture, Pitch: pitch}
}

// IsOccupied requires both a real shape and a real texture.
func (t Tile) IsOccupied() bool {
	return t.Shape > NO_SHAPE && t.Texture > NO_TEXTURE
}

func (t Tile) IsEmpty() bool {
	return !t.IsOccupied()
}

// runMarker is the codec record standing in for length consecutive empty tiles.
func runMarker(length int32) Tile {
	return Tile{Shape: -length, Angle: length, Texture: -length, Pitch: length}
}

type Int3 struct {
	X, Y, Z int32
}

func (i Int3) Add(other Int3) Int3 {
	return Int3{i.X + other.X, i.Y + other.Y, i.Z + other.Z}
}

func (i Int3) Sub(other Int3) Int3 {
	return Int3{i.X - other.X, i.Y - other.Y, i.Z - other.Z}
}

func (i Int3) ToVec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(i.X), float32(i.Y), float32(i.Z)}
}

// Axis returns the component for axis 0, 1 or 2.
func (i Int3) Axis(axis int) int32 {
	switch axis {
	case 0:
		return i.X
	case 1:
		return i.Y
	}
	return i.Z
}

func (i Int3) WithAxis(axis int, value int32) Int3 {
	switch axis {
	case 0:
		i.X = value
	case 1:
		i.Y = value
	default:
		i.Z = value
	}
	return i
}

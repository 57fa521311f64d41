package game

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/memmaker/mapforge/engine/tiles"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(t *testing.T) *tiles.Grid {
	t.Helper()
	grid := tiles.NewGrid(4, 2, 3, 0.5)
	require.NoError(t, grid.SetTileRect(0, 0, 0, 4, 1, 3, tiles.NewTile(0, 1, 0, 0)))
	require.NoError(t, grid.SetTile(2, 1, 1, tiles.NewTile(3, 2, 270, 90)))
	return grid
}

func TestNewMapFile(t *testing.T) {
	mapFile := NewMapFile("Dev Map")

	assert.Equal(t, "Dev Map", mapFile.Name)
	assert.Equal(t, MapFileVersion, mapFile.Version)
	_, err := uuid.Parse(mapFile.ID)
	assert.NoError(t, err)
}

func TestMapFileRoundTrip(t *testing.T) {
	grid := testGrid(t)
	mapFile := NewMapFile("Dev Map")
	require.NoError(t, mapFile.AddGrid("ground", grid))
	require.NoError(t, mapFile.AddGrid("roof", tiles.NewGrid(1, 1, 1, 1)))
	mapFile.Entities = append(mapFile.Entities, EntityRecord{Kind: "spawn", Grid: "ground", X: 1, Y: 1, Z: 2})
	mapFile.Camera = CameraRecord{PositionX: 1, PositionY: 8, PositionZ: -3, Yaw: 45, Pitch: -30}
	filename := filepath.Join(t.TempDir(), "dev.map")

	require.NoError(t, mapFile.SaveToDisk(filename))
	loaded, err := LoadMapFile(filename)
	require.NoError(t, err)

	assert.Equal(t, mapFile.ID, loaded.ID)
	assert.Equal(t, []string{"ground", "roof"}, loaded.GridNames())
	assert.Equal(t, mapFile.Entities, loaded.Entities)
	assert.Equal(t, mapFile.Camera, loaded.Camera)

	restored, err := loaded.Grid("ground", nil)
	require.NoError(t, err)
	assert.Equal(t, grid.Size(), restored.Size())
	assert.Equal(t, grid.Spacing(), restored.Spacing())
	for i := 0; i < grid.CellCount(); i++ {
		assert.Equal(t, grid.TileAt(i), restored.TileAt(i))
	}
}

func TestMapFileGridErrors(t *testing.T) {
	mapFile := NewMapFile("Dev Map")
	require.NoError(t, mapFile.AddGrid("ground", testGrid(t)))

	assert.True(t, errors.Is(mapFile.AddGrid("ground", testGrid(t)), ErrDuplicateGrid))
	_, err := mapFile.Grid("cellar", nil)
	assert.True(t, errors.Is(err, ErrUnknownGrid))

	mapFile.Grids[0].Width = 5
	_, err = mapFile.Grid("ground", nil)
	assert.True(t, errors.Is(err, tiles.ErrCodecOverflow) || errors.Is(err, tiles.ErrCodecUnderflow))
}

func TestUpdateGridReplaces(t *testing.T) {
	mapFile := NewMapFile("Dev Map")
	mapFile.UpdateGrid("ground", tiles.NewGrid(1, 1, 1, 1))
	mapFile.UpdateGrid("ground", testGrid(t))

	require.Len(t, mapFile.Grids, 1)
	assert.Equal(t, int32(4), mapFile.Grids[0].Width)
}

func TestReadMapFileRejectsNewerVersion(t *testing.T) {
	mapFile := NewMapFile("Future Map")
	mapFile.Version = MapFileVersion + 1
	buffer := &bytes.Buffer{}
	require.NoError(t, mapFile.Encode(buffer))

	_, err := ReadMapFile(buffer)

	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestReadMapFileRejectsGarbage(t *testing.T) {
	_, err := ReadMapFile(bytes.NewReader([]byte("definitely not gzip")))
	assert.Error(t, err)

	_, err = LoadMapFile(filepath.Join(t.TempDir(), "missing.map"))
	assert.Error(t, err)
}

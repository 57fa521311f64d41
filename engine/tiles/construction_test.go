package tiles

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSection struct {
	BlocksArrayType byte   `nbt:"blocks_array_type"`
	Blocks          []byte `nbt:"blocks"`
}

type testBlockDefinition struct {
	Name      string `nbt:"blockname"`
	NameSpace string `nbt:"namespace"`
}

type testMetadata struct {
	SectionIndexTable []byte                `nbt:"section_index_table"`
	SectionVersion    byte                  `nbt:"section_version"`
	BlockPalette      []testBlockDefinition `nbt:"block_palette"`
	CreatedWith       string                `nbt:"created_with"`
}

func gzipNBT(t *testing.T, value any) []byte {
	t.Helper()
	buffer := &bytes.Buffer{}
	gzipWriter := gzip.NewWriter(buffer)
	require.NoError(t, nbt.NewEncoder(gzipWriter).Encode(value, ""))
	require.NoError(t, gzipWriter.Close())
	return buffer.Bytes()
}

func sectionIndexEntry(minX, minY, minZ int32, shapeX, shapeY, shapeZ uint8, offset, size uint32) []byte {
	entry := make([]byte, 23)
	binary.LittleEndian.PutUint32(entry[0:4], uint32(minX))
	binary.LittleEndian.PutUint32(entry[4:8], uint32(minY))
	binary.LittleEndian.PutUint32(entry[8:12], uint32(minZ))
	entry[12], entry[13], entry[14] = shapeX, shapeY, shapeZ
	binary.LittleEndian.PutUint32(entry[15:19], offset)
	binary.LittleEndian.PutUint32(entry[19:23], size)
	return entry
}

// writeTestConstruction builds a 2x1x2 section at -1,4,0 holding stone, air, dirt and glass.
func writeTestConstruction(t *testing.T) []byte {
	t.Helper()
	file := &bytes.Buffer{}
	file.WriteString(constructionMagic)

	section := gzipNBT(t, testSection{BlocksArrayType: 7, Blocks: []byte{1, 0, 2, 3}})
	sectionOffset := uint32(file.Len())
	file.Write(section)

	metadata := gzipNBT(t, testMetadata{
		SectionIndexTable: sectionIndexEntry(-1, 4, 0, 2, 1, 2, sectionOffset, uint32(len(section))),
		SectionVersion:    1,
		BlockPalette: []testBlockDefinition{
			{Name: "air", NameSpace: "minecraft"},
			{Name: "stone", NameSpace: "minecraft"},
			{Name: "dirt", NameSpace: "minecraft"},
			{Name: "glass", NameSpace: "minecraft"},
		},
		CreatedWith: "test",
	})
	metadataOffset := int32(file.Len())
	file.Write(metadata)
	require.NoError(t, binary.Write(file, binary.BigEndian, metadataOffset))
	file.WriteString(constructionMagic)
	return file.Bytes()
}

func testPalette(blockName string) (Tile, bool) {
	switch blockName {
	case "stone":
		return NewTile(0, 1, 0, 0), true
	case "dirt":
		return NewTile(0, 2, 0, 0), true
	}
	return EmptyTile, false
}

func TestDecodeSectionTable(t *testing.T) {
	table := append(sectionIndexEntry(-3, 0, 7, 16, 2, 1, 8, 100), sectionIndexEntry(13, 1, 7, 4, 4, 4, 108, 50)...)

	sections := decodeSectionTable(table)

	require.Len(t, sections, 2)
	assert.Equal(t, SectionIndex{MinBlockX: -3, MinBlockY: 0, MinBlockZ: 7, ShapeX: 16, ShapeY: 2, ShapeZ: 1, Offset: 8, Size: 100}, sections[0])
	assert.Equal(t, uint32(108), sections[1].Offset)
	assert.Empty(t, decodeSectionTable(make([]byte, 22)))
}

func TestDecodeBlocksIgnoresInvalidIndices(t *testing.T) {
	palette := []*BlockDefinition{{Name: "air"}, {Name: "stone"}}

	blocks := decodeBlocks([]int32{1, -1, 5, 0}, palette)

	require.Len(t, blocks, 4)
	assert.Equal(t, "stone", blocks[0].Name)
	assert.Nil(t, blocks[1])
	assert.Nil(t, blocks[2])
	assert.Equal(t, "air", blocks[3].Name)
}

func TestNewGridFromConstruction(t *testing.T) {
	stone := &BlockDefinition{Name: "stone"}
	glass := &BlockDefinition{Name: "glass"}
	air := &BlockDefinition{Name: "air"}
	construction := &Construction{Sections: []*ConstructionSection{
		{MinBlockX: 10, MinBlockY: 0, MinBlockZ: 5, ShapeX: 1, ShapeY: 2, ShapeZ: 1, Blocks: []*BlockDefinition{stone, air}},
		{MinBlockX: 11, MinBlockY: 1, MinBlockZ: 5, ShapeX: 1, ShapeY: 1, ShapeZ: 2, Blocks: []*BlockDefinition{glass, stone}},
	}}

	grid, unknown := NewGridFromConstruction(construction, 2, testPalette)

	assert.Equal(t, Int3{2, 2, 2}, grid.Size())
	assert.Equal(t, float32(2), grid.Spacing())
	assert.Equal(t, []string{"glass"}, unknown)
	assert.Equal(t, NewTile(0, 1, 0, 0), grid.GetTile(0, 0, 0))
	assert.Equal(t, EmptyTile, grid.GetTile(0, 1, 0))
	assert.Equal(t, EmptyTile, grid.GetTile(1, 1, 0))
	assert.Equal(t, NewTile(0, 1, 0, 0), grid.GetTile(1, 1, 1))
	assert.Equal(t, 2, grid.OccupiedCount())
}

func TestNewGridFromEmptyConstruction(t *testing.T) {
	grid, unknown := NewGridFromConstruction(&Construction{}, 1, testPalette)

	assert.Equal(t, 0, grid.CellCount())
	assert.Empty(t, unknown)
}

func TestLoadConstruction(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.construction")
	require.NoError(t, os.WriteFile(filename, writeTestConstruction(t), 0644))

	construction, err := LoadConstruction(filename)
	require.NoError(t, err)
	require.Len(t, construction.Sections, 1)
	section := construction.Sections[0]
	assert.Equal(t, int32(-1), section.MinBlockX)
	assert.Equal(t, int32(4), section.MinBlockY)
	require.Len(t, section.Blocks, 4)
	assert.Equal(t, "stone", section.Blocks[0].Name)
	assert.Equal(t, "glass", section.Blocks[3].Name)

	grid, unknown := NewGridFromConstruction(construction, 1, testPalette)
	assert.Equal(t, Int3{2, 1, 2}, grid.Size())
	assert.Equal(t, []string{"glass"}, unknown)
	assert.Equal(t, NewTile(0, 1, 0, 0), grid.GetTile(0, 0, 0))
	assert.Equal(t, EmptyTile, grid.GetTile(0, 0, 1))
	assert.Equal(t, NewTile(0, 2, 0, 0), grid.GetTile(1, 0, 0))
	assert.Equal(t, EmptyTile, grid.GetTile(1, 0, 1))
}

func TestLoadConstructionRejectsBadMagic(t *testing.T) {
	data := writeTestConstruction(t)
	copy(data, "notamap!")
	filename := filepath.Join(t.TempDir(), "broken.construction")
	require.NoError(t, os.WriteFile(filename, data, 0644))

	_, err := LoadConstruction(filename)

	assert.Error(t, err)
	_, err = LoadConstruction(filepath.Join(t.TempDir(), "missing.construction"))
	assert.Error(t, err)
}

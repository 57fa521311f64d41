package tiles

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/memmaker/mapforge/engine/util"
	"github.com/pkg/errors"
)

/*
Amulet .construction files: the magic "constrct", gzipped NBT sections, a gzipped NBT metadata
compound, a big endian int32 metadata offset and the magic again.

	TAG_Compound({
	    "block_entities": TAG_List([TAG_Compound({"namespace", "base_name", "x", "y", "z", "nbt"}) ...]),
	    "blocks_array_type": TAG_Byte(),
	    "blocks": TAG_Byte_Array | TAG_Int_Array of block palette indices
	})
*/
const constructionMagic = "constrct"

type SectionBlockInfo struct {
	BlocksArrayType byte `nbt:"blocks_array_type"`
}
type ByteSection struct {
	BlockEntities []BlockEntity `nbt:"block_entities"`
	Blocks        []byte        `nbt:"blocks"`
}
type IntSection struct {
	BlockEntities []BlockEntity `nbt:"block_entities"`
	Blocks        []int32       `nbt:"blocks"`
}

type BlockEntity struct {
	Namespace string `nbt:"namespace"`
	Name      string `nbt:"base_name"`
	X         int32  `nbt:"x"`
	Y         int32  `nbt:"y"`
	Z         int32  `nbt:"z"`
}

type AmuletMetadata struct {
	SelectionBoxes    []int32 `nbt:"selection_boxes"`
	SectionIndexTable []byte  `nbt:"section_index_table"`
	SectionVersion    byte    `nbt:"section_version"`
	ExportVersion     struct {
		Edition string  `nbt:"edition"`
		Version []int32 `nbt:"version"`
	} `nbt:"export_version"`
	BlockPalette []*BlockDefinition `nbt:"block_palette"`
	CreatedWith  string             `nbt:"created_with"`
}

type BlockDefinition struct {
	Name      string `nbt:"blockname"`
	NameSpace string `nbt:"namespace"`
}

type Construction struct {
	Sections []*ConstructionSection
}

// ConstructionSection lists its blocks with x outermost and z innermost. Nil entries are air.
type ConstructionSection struct {
	Blocks        []*BlockDefinition
	ShapeX        uint8
	ShapeY        uint8
	ShapeZ        uint8
	MinBlockX     int32
	MinBlockY     int32
	MinBlockZ     int32
	BlockEntities []BlockEntity
}

// BlockPalette maps a block name (without namespace) to the tile that stands in for it.
type BlockPalette func(blockName string) (Tile, bool)

func LoadConstruction(filename string) (*Construction, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open construction %s", filename)
	}
	defer file.Close()
	construction, err := ReadConstruction(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read construction %s", filename)
	}
	return construction, nil
}

func ReadConstruction(r io.ReadSeeker) (*Construction, error) {
	if err := expectMagic(r, 0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := expectMagic(r, -int64(len(constructionMagic)), io.SeekEnd); err != nil {
		return nil, err
	}
	if _, err := r.Seek(-int64(len(constructionMagic))-4, io.SeekEnd); err != nil {
		return nil, err
	}
	var metaDataOffset int32
	if err := binary.Read(r, binary.BigEndian, &metaDataOffset); err != nil {
		return nil, errors.Wrap(err, "read metadata offset")
	}

	var metadata AmuletMetadata
	if err := decodeGzipNBT(r, int64(metaDataOffset), &metadata); err != nil {
		return nil, errors.Wrap(err, "decode metadata")
	}

	sectionTable := decodeSectionTable(metadata.SectionIndexTable)
	sections := make([]*ConstructionSection, 0, len(sectionTable))
	for _, section := range sectionTable {
		var blockInfo SectionBlockInfo
		if err := decodeGzipNBT(r, int64(section.Offset), &blockInfo); err != nil {
			return nil, errors.Wrap(err, "decode section header")
		}
		var blockEntities []BlockEntity
		var blocks []*BlockDefinition
		switch blockInfo.BlocksArrayType {
		case 7:
			var decodedSection ByteSection
			if err := decodeGzipNBT(r, int64(section.Offset), &decodedSection); err != nil {
				return nil, errors.Wrap(err, "decode byte section")
			}
			blockEntities = decodedSection.BlockEntities
			blocks = decodeBlocks(decodedSection.Blocks, metadata.BlockPalette)
		case 11:
			var decodedSection IntSection
			if err := decodeGzipNBT(r, int64(section.Offset), &decodedSection); err != nil {
				return nil, errors.Wrap(err, "decode int section")
			}
			blockEntities = decodedSection.BlockEntities
			blocks = decodeBlocks(decodedSection.Blocks, metadata.BlockPalette)
		default:
			util.LogIOError(fmt.Sprintf("[Construction] Skipping section with block array type %d", blockInfo.BlocksArrayType))
			continue
		}
		sections = append(sections, &ConstructionSection{
			Blocks:        blocks,
			BlockEntities: blockEntities,
			ShapeX:        section.ShapeX,
			ShapeY:        section.ShapeY,
			ShapeZ:        section.ShapeZ,
			MinBlockX:     section.MinBlockX,
			MinBlockY:     section.MinBlockY,
			MinBlockZ:     section.MinBlockZ,
		})
	}
	return &Construction{Sections: sections}, nil
}

func expectMagic(r io.ReadSeeker, offset int64, whence int) error {
	if _, err := r.Seek(offset, whence); err != nil {
		return err
	}
	var magicNumber [8]byte
	if err := binary.Read(r, binary.BigEndian, &magicNumber); err != nil {
		return errors.Wrap(err, "read magic number")
	}
	if string(magicNumber[:]) != constructionMagic {
		return errors.Errorf("invalid magic number %q", string(magicNumber[:]))
	}
	return nil
}

func decodeGzipNBT(r io.ReadSeeker, offset int64, value any) error {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gzipReader.Close()
	_, err = nbt.NewDecoder(gzipReader).Decode(value)
	return err
}

func decodeBlocks[T int32 | byte](blocks []T, palette []*BlockDefinition) []*BlockDefinition {
	result := make([]*BlockDefinition, len(blocks))
	for i, block := range blocks {
		if int(block) < 0 || int(block) >= len(palette) {
			continue
		}
		result[i] = palette[block]
	}
	return result
}

/*
The section_index_table holds 23 bytes per section, IIIBBBII little endian:
min block x,y,z (int32), shape x,y,z (uint8), data offset and data length (uint32).
*/
type SectionIndex struct {
	MinBlockX int32
	MinBlockY int32
	MinBlockZ int32
	ShapeX    uint8
	ShapeY    uint8
	ShapeZ    uint8
	Offset    uint32
	Size      uint32
}

func decodeSectionTable(table []byte) []SectionIndex {
	sectionCount := len(table) / 23
	sections := make([]SectionIndex, sectionCount)
	for i := 0; i < sectionCount; i++ {
		entry := table[i*23 : i*23+23]
		sections[i].MinBlockX = int32(binary.LittleEndian.Uint32(entry[0:4]))
		sections[i].MinBlockY = int32(binary.LittleEndian.Uint32(entry[4:8]))
		sections[i].MinBlockZ = int32(binary.LittleEndian.Uint32(entry[8:12]))
		sections[i].ShapeX = entry[12]
		sections[i].ShapeY = entry[13]
		sections[i].ShapeZ = entry[14]
		sections[i].Offset = binary.LittleEndian.Uint32(entry[15:19])
		sections[i].Size = binary.LittleEndian.Uint32(entry[19:23])
	}
	return sections
}

// NewGridFromConstruction stamps all non-air blocks of construction into a grid just large
// enough to hold them, aligned at 0,0,0. It also returns the sorted names the palette did not
// know; those cells stay empty.
func NewGridFromConstruction(construction *Construction, spacing float32, palette BlockPalette) (*Grid, []string) {
	if len(construction.Sections) == 0 {
		return NewGrid(0, 0, 0, spacing), nil
	}
	minX, minY, minZ := int32(math.MaxInt32), int32(math.MaxInt32), int32(math.MaxInt32)
	maxX, maxY, maxZ := int32(math.MinInt32), int32(math.MinInt32), int32(math.MinInt32)
	for _, section := range construction.Sections {
		minX = min(minX, section.MinBlockX)
		minY = min(minY, section.MinBlockY)
		minZ = min(minZ, section.MinBlockZ)
		maxX = max(maxX, section.MinBlockX+int32(section.ShapeX))
		maxY = max(maxY, section.MinBlockY+int32(section.ShapeY))
		maxZ = max(maxZ, section.MinBlockZ+int32(section.ShapeZ))
	}
	grid := NewGrid(maxX-minX, maxY-minY, maxZ-minZ, spacing)
	util.LogTilesInfo(fmt.Sprintf("[Construction] Bounds %d %d %d - %d %d %d", minX, minY, minZ, maxX, maxY, maxZ))

	unknown := make(map[string]bool)
	placed := 0
	for _, section := range construction.Sections {
		blockIndex := 0
		for x := int32(0); x < int32(section.ShapeX); x++ {
			for y := int32(0); y < int32(section.ShapeY); y++ {
				for z := int32(0); z < int32(section.ShapeZ); z++ {
					if blockIndex >= len(section.Blocks) {
						break
					}
					block := section.Blocks[blockIndex]
					blockIndex++
					if block == nil || block.Name == "air" {
						continue
					}
					tile, known := palette(block.Name)
					if !known {
						unknown[block.Name] = true
						continue
					}
					gridX := section.MinBlockX + x - minX
					gridY := section.MinBlockY + y - minY
					gridZ := section.MinBlockZ + z - minZ
					if err := grid.SetTile(gridX, gridY, gridZ, tile); err != nil {
						util.LogTilesError(fmt.Sprintf("[Construction] %s", err.Error()))
						continue
					}
					placed++
				}
			}
		}
	}

	unknownNames := make([]string, 0, len(unknown))
	for name := range unknown {
		unknownNames = append(unknownNames, name)
		util.LogTilesInfo(fmt.Sprintf("[Construction] Unknown block: %s", name))
	}
	sort.Strings(unknownNames)
	util.LogTilesInfo(fmt.Sprintf("[Construction] Placed %d tiles into %dx%dx%d grid", placed, grid.width, grid.height, grid.length))
	return grid, unknownNames
}

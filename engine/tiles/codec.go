package tiles

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/memmaker/mapforge/engine/util"
	"github.com/pkg/errors"
)

// Tile data is a base64 (standard alphabet, padded) string of 16 byte records, each holding
// shape, angle, texture and pitch as little endian int32 in that order. Records are in flat
// grid order. A record with a negative shape is a run marker: -shape empty cells follow.
// Grid dimensions and spacing are not part of the data.
const tileRecordSize = 16

// TileData encodes every cell literally.
func (g *Grid) TileData() string {
	buffer := bytes.NewBuffer(make([]byte, 0, len(g.tiles)*tileRecordSize))
	for _, tile := range g.tiles {
		writeRecord(buffer, tile)
	}
	codecBytesEncoded.Add(float64(buffer.Len()))
	return base64.StdEncoding.EncodeToString(buffer.Bytes())
}

// TileDataRLE folds runs of unoccupied cells into run markers. The last cell is always written
// literally so a decoder can tell where the stream ends.
func (g *Grid) TileDataRLE() string {
	buffer := &bytes.Buffer{}
	run := int32(0)
	last := len(g.tiles) - 1
	for i, tile := range g.tiles {
		if i < last && tile.IsEmpty() {
			run++
			continue
		}
		if run > 0 {
			writeRecord(buffer, runMarker(run))
			run = 0
		}
		writeRecord(buffer, tile)
	}
	util.LogCodecDebug(fmt.Sprintf("[Codec] RLE encoded %d cells into %d bytes", len(g.tiles), buffer.Len()))
	codecBytesEncoded.Add(float64(buffer.Len()))
	return base64.StdEncoding.EncodeToString(buffer.Bytes())
}

// SetTileData decodes data produced by TileData or TileDataRLE into g. The expanded records
// must cover the grid exactly; on any error g is left unchanged.
func (g *Grid) SetTileData(data string) error {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		util.LogCodecError(fmt.Sprintf("[Codec] Invalid base64 tile data: %s", err.Error()))
		return errors.Wrap(ErrMalformedTileData, err.Error())
	}
	if len(raw)%tileRecordSize != 0 {
		return errors.Wrapf(ErrMalformedTileData, "%d bytes is not a multiple of the %d byte record size", len(raw), tileRecordSize)
	}
	decoded, err := decodeRecords(raw, len(g.tiles))
	if err != nil {
		util.LogCodecError(fmt.Sprintf("[Codec] Rejected tile data for %dx%dx%d grid: %s", g.width, g.height, g.length, err.Error()))
		return err
	}
	codecBytesDecoded.Add(float64(len(raw)))
	g.tiles = decoded
	g.SetDirty()
	return nil
}

func decodeRecords(raw []byte, cellCount int) ([]Tile, error) {
	decoded := make([]Tile, cellCount)
	cursor := 0
	for offset := 0; offset < len(raw); offset += tileRecordSize {
		record := readRecord(raw[offset : offset+tileRecordSize])
		if record.Shape < 0 {
			run := -int(record.Shape)
			if cursor+run > cellCount {
				return nil, errors.Wrapf(ErrCodecOverflow, "run of %d empty cells at cell %d of %d", run, cursor, cellCount)
			}
			for i := 0; i < run; i++ {
				decoded[cursor+i] = EmptyTile
			}
			cursor += run
			continue
		}
		if cursor >= cellCount {
			return nil, errors.Wrapf(ErrCodecOverflow, "tile record at cell %d of %d", cursor, cellCount)
		}
		if validateTile(record) != nil {
			return nil, errors.Wrapf(ErrMalformedTileData, "reserved texture %d in tile record at cell %d", record.Texture, cursor)
		}
		decoded[cursor] = record
		cursor++
	}
	if cursor != cellCount {
		return nil, errors.Wrapf(ErrCodecUnderflow, "decoded %d of %d cells", cursor, cellCount)
	}
	return decoded, nil
}

func writeRecord(buffer *bytes.Buffer, tile Tile) {
	var record [tileRecordSize]byte
	binary.LittleEndian.PutUint32(record[0:4], uint32(tile.Shape))
	binary.LittleEndian.PutUint32(record[4:8], uint32(tile.Angle))
	binary.LittleEndian.PutUint32(record[8:12], uint32(tile.Texture))
	binary.LittleEndian.PutUint32(record[12:16], uint32(tile.Pitch))
	buffer.Write(record[:])
}

func readRecord(record []byte) Tile {
	return Tile{
		Shape:   int32(binary.LittleEndian.Uint32(record[0:4])),
		Angle:   int32(binary.LittleEndian.Uint32(record[4:8])),
		Texture: int32(binary.LittleEndian.Uint32(record[8:12])),
		Pitch:   int32(binary.LittleEndian.Uint32(record[12:16])),
	}
}

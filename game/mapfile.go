package game

import (
	"fmt"
	"io"
	"os"

	"github.com/Tnze/go-mc/nbt"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/memmaker/mapforge/engine/tiles"
	"github.com/memmaker/mapforge/engine/util"
	"github.com/pkg/errors"
)

// MapFileVersion is the newest layout this package reads and the one it writes.
const MapFileVersion int32 = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported map file version")
	ErrUnknownGrid        = errors.New("unknown grid")
	ErrDuplicateGrid      = errors.New("duplicate grid name")
)

// MapFile is the on-disk container for one or more tile grids: a gzipped NBT compound.
// Grid contents are kept as RLE tile data, the same string the grid codec produces.
type MapFile struct {
	ID       string         `nbt:"id"`
	Name     string         `nbt:"name"`
	Version  int32          `nbt:"version"`
	Grids    []GridRecord   `nbt:"grids"`
	Entities []EntityRecord `nbt:"entities"`
	Camera   CameraRecord   `nbt:"camera"`
}

type GridRecord struct {
	Name    string  `nbt:"name"`
	Width   int32   `nbt:"width"`
	Height  int32   `nbt:"height"`
	Length  int32   `nbt:"length"`
	Spacing float32 `nbt:"spacing"`
	Tiles   string  `nbt:"tiles"`
}

// EntityRecord places a named thing at a grid cell. The map file only carries it along.
type EntityRecord struct {
	Kind string `nbt:"kind"`
	Grid string `nbt:"grid"`
	X    int32  `nbt:"x"`
	Y    int32  `nbt:"y"`
	Z    int32  `nbt:"z"`
}

type CameraRecord struct {
	PositionX float32 `nbt:"x"`
	PositionY float32 `nbt:"y"`
	PositionZ float32 `nbt:"z"`
	Yaw       float32 `nbt:"yaw"`
	Pitch     float32 `nbt:"pitch"`
}

func NewMapFile(name string) *MapFile {
	return &MapFile{
		ID:      uuid.NewString(),
		Name:    name,
		Version: MapFileVersion,
	}
}

// AddGrid stores the current contents of grid under name, replacing nothing.
func (m *MapFile) AddGrid(name string, grid *tiles.Grid) error {
	for _, record := range m.Grids {
		if record.Name == name {
			return errors.Wrap(ErrDuplicateGrid, name)
		}
	}
	m.Grids = append(m.Grids, recordFromGrid(name, grid))
	return nil
}

// UpdateGrid stores grid under name, adding a new record if needed.
func (m *MapFile) UpdateGrid(name string, grid *tiles.Grid) {
	for i, record := range m.Grids {
		if record.Name == name {
			m.Grids[i] = recordFromGrid(name, grid)
			return
		}
	}
	m.Grids = append(m.Grids, recordFromGrid(name, grid))
}

func recordFromGrid(name string, grid *tiles.Grid) GridRecord {
	return GridRecord{
		Name:    name,
		Width:   grid.Width(),
		Height:  grid.Height(),
		Length:  grid.Length(),
		Spacing: grid.Spacing(),
		Tiles:   grid.TileDataRLE(),
	}
}

func (m *MapFile) GridNames() []string {
	names := make([]string, len(m.Grids))
	for i, record := range m.Grids {
		names[i] = record.Name
	}
	return names
}

// Grid rebuilds the named grid and attaches resolver, which may be nil.
func (m *MapFile) Grid(name string, resolver tiles.Resolver) (*tiles.Grid, error) {
	for _, record := range m.Grids {
		if record.Name != name {
			continue
		}
		return record.ToGrid(resolver)
	}
	return nil, errors.Wrap(ErrUnknownGrid, name)
}

func (r GridRecord) ToGrid(resolver tiles.Resolver) (*tiles.Grid, error) {
	grid := tiles.NewGrid(r.Width, r.Height, r.Length, r.Spacing)
	if err := grid.SetTileData(r.Tiles); err != nil {
		return nil, errors.Wrapf(err, "grid %s", r.Name)
	}
	if resolver != nil {
		grid.SetResolver(resolver)
	}
	return grid, nil
}

func (m *MapFile) SaveToDisk(filename string) error {
	outfile, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create map file")
	}
	defer outfile.Close()
	if err = m.Encode(outfile); err != nil {
		return errors.Wrapf(err, "write map file %s", filename)
	}
	util.LogIOInfo(fmt.Sprintf("[MapFile] Saved %s with %d grids to %s", m.Name, len(m.Grids), filename))
	return nil
}

func (m *MapFile) Encode(w io.Writer) error {
	gzipWriter := gzip.NewWriter(w)
	if err := nbt.NewEncoder(gzipWriter).Encode(*m, "map"); err != nil {
		gzipWriter.Close()
		return err
	}
	return gzipWriter.Close()
}

func LoadMapFile(filename string) (*MapFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open map file")
	}
	defer file.Close()
	mapFile, err := ReadMapFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read map file %s", filename)
	}
	util.LogIOInfo(fmt.Sprintf("[MapFile] Loaded %s with %d grids from %s", mapFile.Name, len(mapFile.Grids), filename))
	return mapFile, nil
}

func ReadMapFile(r io.Reader) (*MapFile, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gzipReader.Close()
	var mapFile MapFile
	if _, err = nbt.NewDecoder(gzipReader).Decode(&mapFile); err != nil {
		return nil, err
	}
	if mapFile.Version > MapFileVersion || mapFile.Version < 1 {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d, expected 1 to %d", mapFile.Version, MapFileVersion)
	}
	if mapFile.Name == "" {
		util.LogMapWarning("[MapFile] Map has no name, using \"Unnamed Map\"")
		mapFile.Name = "Unnamed Map"
	}
	return &mapFile, nil
}

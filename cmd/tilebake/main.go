package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/memmaker/mapforge/engine/assets"
	"github.com/memmaker/mapforge/engine/tiles"
	"github.com/memmaker/mapforge/engine/util"
	"github.com/memmaker/mapforge/game"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
)

type options struct {
	mapFile      string
	gridName     string
	construction string
	catalog      string
	out          string
	save         string
	noCull       bool
	listIDs      bool
	metrics      string
	verbose      bool
}

// tilebake loads a grid from a map file or an Amulet construction, bakes it into one merged
// mesh and writes it as binary glTF.
//
//	tilebake -map level.map -grid ground -catalog assets.yaml -out ground.glb
//	tilebake -construction house.construction -catalog assets.yaml -save house.map -out house.glb
func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err = run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "tilebake:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := flag.NewFlagSet("tilebake", flag.ContinueOnError)
	flags.StringVar(&opts.mapFile, "map", "", "map file to read the grid from")
	flags.StringVar(&opts.gridName, "grid", "", "name of the grid inside the map file (default: first grid)")
	flags.StringVar(&opts.construction, "construction", "", "Amulet .construction file to import instead of a map file")
	flags.StringVar(&opts.catalog, "catalog", "", "YAML asset catalog (default: $MAPFORGE_CATALOG or a builtin cube)")
	flags.StringVar(&opts.out, "out", "", "write the baked mesh as .glb to this file")
	flags.StringVar(&opts.save, "save", "", "write the loaded grid into this map file")
	flags.BoolVar(&opts.noCull, "nocull", false, "keep faces hidden between neighboring tiles")
	flags.BoolVar(&opts.listIDs, "ids", false, "list the shape and texture IDs used by the grid")
	flags.StringVar(&opts.metrics, "metrics", "", "write prometheus metrics in text format to this file")
	flags.BoolVar(&opts.verbose, "v", false, "log debug output")
	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	if (opts.mapFile == "") == (opts.construction == "") {
		return opts, errors.New("exactly one of -map or -construction is required")
	}
	return opts, nil
}

func run(opts options, stdout io.Writer) error {
	if opts.verbose {
		util.GLOBAL_LOG_LEVEL = util.LogLevelDebug
	}
	registry := prometheus.NewRegistry()
	if err := tiles.RegisterMetrics(registry); err != nil {
		return errors.Wrap(err, "register metrics")
	}

	catalog, err := assets.LoadCatalog(opts.catalog)
	if err != nil {
		return err
	}
	util.LogAssetsInfo(fmt.Sprintf("[tilebake] %s", catalog))
	resolver := assets.NewFileResolver(catalog)

	timer := util.NewTimer()
	stopLoad := timer.Start("load")
	grid, gridName, err := loadGrid(opts, catalog)
	if err != nil {
		return err
	}
	grid.SetResolver(resolver)
	stopLoad()

	if opts.save != "" {
		mapFile := game.NewMapFile(strings.TrimSuffix(filepath.Base(opts.save), filepath.Ext(opts.save)))
		if opts.mapFile != "" {
			if mapFile, err = game.LoadMapFile(opts.mapFile); err != nil {
				return err
			}
		}
		mapFile.UpdateGrid(gridName, grid)
		if err = mapFile.SaveToDisk(opts.save); err != nil {
			return err
		}
	}

	stopBake := timer.Start("bake")
	mesh := grid.BakeMesh(!opts.noCull)
	stopBake()
	if opts.out != "" {
		stopExport := timer.Start("export")
		if err = util.SaveGLB(mesh, opts.out); err != nil {
			return err
		}
		stopExport()
	}

	printSummary(stdout, isTerminal(stdout), gridName, grid, mesh, opts)
	if opts.verbose {
		fmt.Fprintln(stdout, timer.String())
	}

	if opts.metrics != "" {
		if err = prometheus.WriteToTextfile(opts.metrics, registry); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}

func loadGrid(opts options, catalog *assets.Catalog) (*tiles.Grid, string, error) {
	if opts.construction != "" {
		construction, err := tiles.LoadConstruction(opts.construction)
		if err != nil {
			return nil, "", err
		}
		grid, unknown := tiles.NewGridFromConstruction(construction, catalog.Spacing, catalog.Palette())
		if len(unknown) > 0 {
			util.LogMapWarning(fmt.Sprintf("[tilebake] %d block names missing from the catalog: %s", len(unknown), strings.Join(unknown, ", ")))
		}
		name := opts.gridName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(opts.construction), filepath.Ext(opts.construction))
		}
		return grid, name, nil
	}

	mapFile, err := game.LoadMapFile(opts.mapFile)
	if err != nil {
		return nil, "", err
	}
	name := opts.gridName
	if name == "" {
		names := mapFile.GridNames()
		if len(names) == 0 {
			return nil, "", errors.Errorf("map file %s contains no grids", opts.mapFile)
		}
		name = names[0]
	}
	grid, err := mapFile.Grid(name, nil)
	if err != nil {
		return nil, "", err
	}
	return grid, name, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func printSummary(w io.Writer, human bool, gridName string, grid *tiles.Grid, mesh *util.MergedMesh, opts options) {
	textureIDs, shapeIDs := grid.UsedIDs()
	if !human {
		fmt.Fprintf(w, "grid=%s size=%dx%dx%d occupied=%d submeshes=%d vertices=%d triangles=%d culling=%t\n",
			gridName, grid.Width(), grid.Height(), grid.Length(), grid.OccupiedCount(),
			mesh.MaterialCount(), mesh.VertexCount(), mesh.TriangleCount(), !opts.noCull)
		if opts.listIDs {
			fmt.Fprintf(w, "shapes=%s textures=%s\n", joinIDs(shapeIDs), joinIDs(textureIDs))
		}
		return
	}
	fmt.Fprintf(w, "Grid       %s (%d x %d x %d, spacing %.2f)\n", gridName, grid.Width(), grid.Height(), grid.Length(), grid.Spacing())
	fmt.Fprintf(w, "Occupied   %d of %d cells\n", grid.OccupiedCount(), grid.CellCount())
	fmt.Fprintf(w, "Sub-meshes %d\n", mesh.MaterialCount())
	fmt.Fprintf(w, "Vertices   %d\n", mesh.VertexCount())
	fmt.Fprintf(w, "Triangles  %d (culling %s)\n", mesh.TriangleCount(), onOff(!opts.noCull))
	fmt.Fprintf(w, "Bounds     %s\n", mesh.Bounds())
	if opts.listIDs {
		fmt.Fprintf(w, "Shapes     %s\n", joinIDs(shapeIDs))
		fmt.Fprintf(w, "Textures   %s\n", joinIDs(textureIDs))
	}
	if opts.out != "" {
		fmt.Fprintf(w, "Written    %s\n", opts.out)
	}
}

func joinIDs(ids []int32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

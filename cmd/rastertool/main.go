// Command rastertool inspects, crops, filters, saves, vectorizes and
// renders geospatial raster grids.
//
// Usage:
//
//	rastertool info <file.tif>
//	rastertool crop -bbox minx,miny,maxx,maxy [-bbox-crs EPSG:4326] -o out.tif <file.tif>
//	rastertool filter -min 5000 -o out.tif <file.tif>
//	rastertool vectorize -o out.geojson <file.tif>
//	rastertool render -o out.png [-max-dim 1024] <file.tif>
//	rastertool run -config job.toml
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/terragrid/rastertool/pkg/raster"
)

func main() {
	configureLogging()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = cmdInfo(os.Args[2:])
	case "crop":
		err = cmdCrop(os.Args[2:])
	case "filter":
		err = cmdFilter(os.Args[2:])
	case "vectorize":
		err = cmdVectorize(os.Args[2:])
	case "render":
		err = cmdRender(os.Args[2:])
	case "run":
		err = cmdRun(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `rastertool - geospatial raster toolkit

Commands:
  info       print raster metadata (layers, size, CRS, transform, bounds, nodata)
  crop       cut a bounding box out of a raster and save it
  filter     keep cells above a threshold, set the rest to nodata
  vectorize  convert raster regions to GeoJSON polygons
  render     draw a raster as a PNG image
  run        execute a full pipeline described by a TOML job file

Run "rastertool <command> -h" for command flags.
`)
}

// configureLogging sets up zerolog on stderr. RASTERTOOL_LOG_LEVEL
// accepts the usual level names; default is info.
func configureLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	level := zerolog.InfoLevel
	if s := os.Getenv("RASTERTOOL_LOG_LEVEL"); s != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(s)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	band := fs.Int("band", 0, "also print value statistics for this band")
	fs.Parse(args)

	path, err := singlePath(fs)
	if err != nil {
		return err
	}

	ds, err := raster.Open(path)
	if err != nil {
		return err
	}
	defer ds.Close()

	b := ds.Bounds()
	fmt.Printf("Driver: GTiff\n")
	fmt.Printf("Number of layers: %d\n", ds.Count())
	fmt.Printf("Number of columns: %d\n", ds.Width())
	fmt.Printf("Number of rows: %d\n", ds.Height())
	fmt.Printf("Data type: %s\n", ds.DType())
	fmt.Printf("CRS: %s\n", ds.CRS())
	fmt.Printf("Affine transform:\n%s\n", ds.Transform())
	fmt.Printf("Boundaries: (%g, %g, %g, %g)\n", b.MinX, b.MinY, b.MaxX, b.MaxY)
	if nd, ok := ds.NoData(); ok {
		fmt.Printf("NoData: %g\n", nd)
	} else {
		fmt.Printf("NoData: none\n")
	}

	if *band > 0 {
		grid, err := ds.Read(*band)
		if err != nil {
			return err
		}
		s := grid.Stats()
		fmt.Printf("Band %d: min=%g max=%g mean=%.3f valid=%d nodata=%d\n",
			*band, s.Min, s.Max, s.Mean, s.ValidCount, s.NoDataCount)
	}
	return nil
}

func cmdCrop(args []string) error {
	fs := flag.NewFlagSet("crop", flag.ExitOnError)
	bbox := fs.String("bbox", "", "bounding box minx,miny,maxx,maxy (required)")
	bboxCRS := fs.String("bbox-crs", "EPSG:4326", "CRS of the bounding box")
	band := fs.Int("band", 1, "band to read")
	out := fs.String("o", "", "output GeoTIFF path (required)")
	compress := fs.Bool("compress", false, "deflate-compress the output")
	fs.Parse(args)

	path, err := singlePath(fs)
	if err != nil {
		return err
	}
	if *bbox == "" || *out == "" {
		return fmt.Errorf("crop requires -bbox and -o")
	}
	box, err := parseBBox(*bbox)
	if err != nil {
		return err
	}

	ds, err := raster.Open(path)
	if err != nil {
		return err
	}
	defer ds.Close()

	grid, transform, err := cropGrid(ds, *band, box, *bboxCRS)
	if err != nil {
		return err
	}

	profile := ds.Profile()
	profile.Transform = transform
	profile.Width = grid.Width()
	profile.Height = grid.Height()
	if *compress {
		profile.Compression = raster.CompressionDeflate
	}

	if err := raster.Save(*out, grid, profile); err != nil {
		return err
	}
	log.Info().Str("path", *out).
		Int("width", grid.Width()).Int("height", grid.Height()).
		Msg("saved cropped raster")
	return nil
}

func cmdFilter(args []string) error {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	min := fs.Float64("min", 0, "keep cells strictly greater than this value")
	band := fs.Int("band", 1, "band to read")
	out := fs.String("o", "", "output GeoTIFF path (required)")
	compress := fs.Bool("compress", false, "deflate-compress the output")
	fs.Parse(args)

	path, err := singlePath(fs)
	if err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("filter requires -o")
	}

	ds, err := raster.Open(path)
	if err != nil {
		return err
	}
	defer ds.Close()

	if _, ok := ds.NoData(); !ok {
		return fmt.Errorf("%s declares no nodata sentinel; filtered cells would be indistinguishable", path)
	}

	grid, err := ds.Read(*band)
	if err != nil {
		return err
	}
	filtered := grid.Threshold(*min)

	profile := ds.Profile()
	if *compress {
		profile.Compression = raster.CompressionDeflate
	}
	if err := raster.Save(*out, filtered, profile); err != nil {
		return err
	}

	s := filtered.Stats()
	log.Info().Str("path", *out).Int("kept_cells", s.ValidCount).
		Float64("min", *min).Msg("saved filtered raster")
	return nil
}

func cmdVectorize(args []string) error {
	fs := flag.NewFlagSet("vectorize", flag.ExitOnError)
	band := fs.Int("band", 1, "band to read")
	out := fs.String("o", "", "output GeoJSON path (required)")
	fs.Parse(args)

	path, err := singlePath(fs)
	if err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("vectorize requires -o")
	}

	ds, err := raster.Open(path)
	if err != nil {
		return err
	}
	defer ds.Close()

	grid, err := ds.Read(*band)
	if err != nil {
		return err
	}

	fc := raster.Vectorize(grid, ds.Transform())
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}

	log.Info().Str("path", *out).Int("features", len(fc.Features)).
		Msg("saved vectorized features")
	return nil
}

func cmdRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	band := fs.Int("band", 1, "band to read")
	out := fs.String("o", "", "output PNG path (required)")
	maxDim := fs.Int("max-dim", 1024, "bound the longer image side (0 = one pixel per cell)")
	fs.Parse(args)

	path, err := singlePath(fs)
	if err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("render requires -o")
	}

	ds, err := raster.Open(path)
	if err != nil {
		return err
	}
	defer ds.Close()

	grid, err := ds.Read(*band)
	if err != nil {
		return err
	}

	img, err := raster.Render(grid, raster.RenderOptions{MaxDimension: *maxDim})
	if err != nil {
		return err
	}
	if err := raster.WritePNG(*out, img); err != nil {
		return err
	}
	log.Info().Str("path", *out).Msg("saved rendered image")
	return nil
}

// cmdRun executes the whole processing pipeline from a job file:
// open, crop, threshold, save, verify, vectorize, render.
func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML job file (required)")
	fs.Parse(args)
	if *configPath == "" {
		return fmt.Errorf("run requires -config")
	}

	cfg, err := loadJobConfig(*configPath)
	if err != nil {
		return err
	}

	ds, err := raster.Open(cfg.Input)
	if err != nil {
		return err
	}
	defer ds.Close()

	log.Info().Str("input", cfg.Input).
		Int("layers", ds.Count()).
		Int("width", ds.Width()).Int("height", ds.Height()).
		Str("crs", ds.CRS()).
		Msg("opened dataset")

	var grid *raster.Grid
	transform := ds.Transform()

	if len(cfg.Crop.BBox) == 4 {
		box := raster.Bounds{
			MinX: cfg.Crop.BBox[0], MinY: cfg.Crop.BBox[1],
			MaxX: cfg.Crop.BBox[2], MaxY: cfg.Crop.BBox[3],
		}
		grid, transform, err = cropGrid(ds, cfg.Band, box, cfg.Crop.CRS)
		if err != nil {
			return err
		}
		log.Info().Int("width", grid.Width()).Int("height", grid.Height()).
			Msg("cropped to bounding box")
	} else {
		grid, err = ds.Read(cfg.Band)
		if err != nil {
			return err
		}
	}

	if cfg.Filter.Enabled {
		grid = grid.Threshold(cfg.Filter.MinValue)
		s := grid.Stats()
		log.Info().Float64("min_value", cfg.Filter.MinValue).
			Int("kept_cells", s.ValidCount).Msg("applied threshold filter")
	}

	profile := ds.Profile()
	profile.Transform = transform
	profile.Width = grid.Width()
	profile.Height = grid.Height()
	if cfg.Output.Compression == "deflate" {
		profile.Compression = raster.CompressionDeflate
	}

	if cfg.Output.Raster != "" {
		if err := raster.Save(cfg.Output.Raster, grid, profile); err != nil {
			return err
		}
		// Read the file back so a broken write fails the run instead
		// of surfacing downstream.
		check, err := raster.Open(cfg.Output.Raster)
		if err != nil {
			return fmt.Errorf("verification reopen failed: %w", err)
		}
		if check.Width() != grid.Width() || check.Height() != grid.Height() {
			check.Close()
			return fmt.Errorf("verification failed: saved raster is %dx%d, expected %dx%d",
				check.Width(), check.Height(), grid.Width(), grid.Height())
		}
		check.Close()
		log.Info().Str("path", cfg.Output.Raster).Msg("saved and verified raster")
	}

	if cfg.Output.GeoJSON != "" {
		fc := raster.Vectorize(grid, transform)
		data, err := fc.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode GeoJSON: %w", err)
		}
		if err := os.WriteFile(cfg.Output.GeoJSON, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.Output.GeoJSON, err)
		}
		log.Info().Str("path", cfg.Output.GeoJSON).
			Int("features", len(fc.Features)).Msg("saved vectorized features")
	}

	if cfg.Output.Image != "" {
		img, err := raster.Render(grid, raster.RenderOptions{
			Palette:      cfg.Render.Palette,
			MaxDimension: cfg.Render.MaxDimension,
		})
		if err != nil {
			return err
		}
		if err := raster.WritePNG(cfg.Output.Image, img); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Output.Image).Msg("saved rendered image")
	}

	return nil
}

// cropGrid reprojects a bounding box into the dataset CRS when needed,
// computes the covering window and reads it.
func cropGrid(ds *raster.Dataset, band int, box raster.Bounds, boxCRS string) (*raster.Grid, raster.Transform, error) {
	if boxCRS != "" && boxCRS != ds.CRS() {
		if ds.CRS() == "" {
			return nil, raster.Transform{}, fmt.Errorf(
				"dataset has no CRS; pass the bounding box in pixel-space coordinates with an empty -bbox-crs")
		}
		var err error
		box, err = raster.ReprojectBounds(box, boxCRS, ds.CRS())
		if err != nil {
			return nil, raster.Transform{}, err
		}
	}

	window, transform, err := ds.WindowFromBounds(box)
	if err != nil {
		return nil, raster.Transform{}, err
	}
	grid, err := ds.ReadWindow(band, window)
	if err != nil {
		return nil, raster.Transform{}, err
	}
	return grid, transform, nil
}

// singlePath returns the one positional argument of a flag set.
func singlePath(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one input file, got %d", fs.NArg())
	}
	return fs.Arg(0), nil
}

// parseBBox parses "minx,miny,maxx,maxy".
func parseBBox(s string) (raster.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return raster.Bounds{}, fmt.Errorf("bbox must be minx,miny,maxx,maxy, got %q", s)
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return raster.Bounds{}, fmt.Errorf("bad bbox value %q: %w", p, err)
		}
		vals[i] = v
	}
	return raster.Bounds{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}, nil
}

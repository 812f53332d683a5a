// Package raster provides a clean public API for reading, processing and
// vectorizing geospatial raster grids stored as GeoTIFF.
//
// The workflow mirrors how raster tooling is normally used: open a
// dataset, inspect its metadata (size, CRS, affine transform, bounds,
// nodata sentinel), read a band or a window of it, derive new grids
// (thresholding, filling), save results with an updated profile, and
// finally vectorize processed grids into polygon features for use with
// vector tooling.
//
// Example:
//
//	ds, err := raster.Open("GHS_POP_E2020_R3_C18.tif")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ds.Close()
//
//	fmt.Printf("Layers: %d, size: %dx%d\n", ds.Count(), ds.Width(), ds.Height())
//	fmt.Printf("CRS: %s\n", ds.CRS())
//
//	grid, err := ds.Read(1)
package raster

import (
	"github.com/terragrid/rastertool/internal/tiff"
)

// Dataset is an opened raster file.
//
// Access metadata via Count(), Width(), Height(), CRS(), Transform(),
// Bounds(), NoData() and DType(); read cell data via Read() and
// ReadWindow(). Bands are 1-based, matching the convention of every
// raster tool in circulation.
type Dataset struct {
	path      string
	file      *tiff.File
	transform Transform
	crs       string
	nodata    *float64
	dtype     string
}

// Open opens a GeoTIFF raster file with default options.
//
// Example:
//
//	ds, err := raster.Open("population.tif")
func Open(path string) (*Dataset, error) {
	return OpenWithOptions(path, DefaultOpenOptions())
}

// OpenWithOptions opens a GeoTIFF raster file with custom options.
//
// Use OpenOptions to relax geo-referencing requirements when inspecting
// plain TIFFs.
func OpenWithOptions(path string, opts OpenOptions) (*Dataset, error) {
	f, err := tiff.Open(path)
	if err != nil {
		return nil, err
	}

	geo := f.Geo()
	if opts.RequireGeoreferencing && !geo.HasTransform {
		return nil, &ErrNotGeoreferenced{Path: path}
	}
	if opts.RequireKnownCRS && geo.CRS == "" {
		return nil, &ErrUnknownCRS{Path: path}
	}

	d := &Dataset{
		path:  path,
		file:  f,
		crs:   geo.CRS,
		dtype: f.DType(),
	}
	if geo.HasTransform {
		d.transform = TransformFromArray(geo.Transform)
	} else {
		// Pixel-space identity so Bounds() stays meaningful.
		d.transform = NorthUp(0, float64(f.Height()), 1, 1)
	}
	if geo.NoData != nil {
		v := *geo.NoData
		d.nodata = &v
	}
	return d, nil
}

// Path returns the file path the dataset was opened from.
func (d *Dataset) Path() string { return d.path }

// Count returns the number of raster layers (bands) in the dataset.
func (d *Dataset) Count() int { return d.file.BandCount() }

// Width returns the number of columns.
func (d *Dataset) Width() int { return d.file.Width() }

// Height returns the number of rows.
func (d *Dataset) Height() int { return d.file.Height() }

// CRS returns the coordinate reference system as "AUTHORITY:CODE"
// ("EPSG:4326", "ESRI:54009"), or "" when the file does not declare one.
func (d *Dataset) CRS() string { return d.crs }

// Transform returns the affine transform mapping pixel indices to
// spatial coordinates.
func (d *Dataset) Transform() Transform { return d.transform }

// NoData returns the nodata sentinel and whether the dataset declares one.
func (d *Dataset) NoData() (float64, bool) {
	if d.nodata == nil {
		return 0, false
	}
	return *d.nodata, true
}

// DType returns the on-disk sample type ("float32", "int32", ...).
func (d *Dataset) DType() string { return d.dtype }

// Bounds returns the spatial extent of the raster, in the dataset's CRS.
func (d *Dataset) Bounds() Bounds {
	w, h := float64(d.Width()), float64(d.Height())
	corners := [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}

	x0, y0 := d.transform.Apply(corners[0][0], corners[0][1])
	b := Bounds{MinX: x0, MinY: y0, MaxX: x0, MaxY: y0}
	for _, c := range corners[1:] {
		x, y := d.transform.Apply(c[0], c[1])
		if x < b.MinX {
			b.MinX = x
		}
		if x > b.MaxX {
			b.MaxX = x
		}
		if y < b.MinY {
			b.MinY = y
		}
		if y > b.MaxY {
			b.MaxY = y
		}
	}
	return b
}

// Read reads a full band (1-based) into a Grid.
func (d *Dataset) Read(band int) (*Grid, error) {
	data, err := d.file.ReadBand(band)
	if err != nil {
		return nil, err
	}
	return GridFromData(data, d.Width(), d.Height(), d.nodata)
}

// ReadWindow reads the given window of a band into a Grid.
//
// The grid's dimensions are the window's; pair it with
// Transform().Shift(w.Col, w.Row) to keep geo-referencing.
func (d *Dataset) ReadWindow(band int, w Window) (*Grid, error) {
	data, err := d.file.ReadWindow(band, w.Col, w.Row, w.Width, w.Height)
	if err != nil {
		return nil, err
	}
	return GridFromData(data, w.Width, w.Height, d.nodata)
}

// Profile returns the dataset's creation profile: everything needed to
// save a derived grid the way the source was stored. Callers typically
// take the profile, update Transform/Width/Height after cropping, and
// pass it to Save.
func (d *Dataset) Profile() Profile {
	p := Profile{
		Driver:    "GTiff",
		DType:     d.dtype,
		Width:     d.Width(),
		Height:    d.Height(),
		Count:     d.Count(),
		CRS:       d.crs,
		Transform: d.transform,
	}
	if d.nodata != nil {
		v := *d.nodata
		p.NoData = &v
	}
	return p
}

// Close releases the dataset.
//
// The current implementation holds the file in memory, so Close only
// drops the reference; it exists so callers can treat datasets like any
// other closable resource.
func (d *Dataset) Close() error {
	d.file = nil
	return nil
}

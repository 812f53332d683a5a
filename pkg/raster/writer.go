package raster

import (
	"fmt"

	"github.com/terragrid/rastertool/internal/tiff"
)

// Compression selects the on-disk compression for saved rasters.
type Compression int

const (
	// CompressionNone stores raw sample bytes.
	CompressionNone Compression = iota
	// CompressionDeflate compresses strips with zlib, the scheme GDAL
	// calls DEFLATE.
	CompressionDeflate
)

// Profile describes how a raster is (or should be) stored: dimensions,
// sample type, CRS, affine transform, nodata sentinel and compression.
//
// Profiles travel from Dataset.Profile() to Save, with the caller
// updating whichever parts a processing step changed (after a crop,
// Transform, Width and Height; after a type conversion, DType).
type Profile struct {
	Driver      string
	DType       string
	Width       int
	Height      int
	Count       int
	CRS         string
	Transform   Transform
	NoData      *float64
	Compression Compression
}

// String summarises the profile in driver-option form, handy for logging
// and for the info command.
func (p Profile) String() string {
	nodata := "none"
	if p.NoData != nil {
		nodata = fmt.Sprintf("%g", *p.NoData)
	}
	return fmt.Sprintf("driver=%s dtype=%s width=%d height=%d count=%d crs=%s nodata=%s",
		p.Driver, p.DType, p.Width, p.Height, p.Count, p.CRS, nodata)
}

// Save writes a grid as a single-band GeoTIFF described by the profile.
//
// The profile's Width and Height must match the grid (zero values are
// filled in from it). The grid's cells are converted to the profile's
// DType, rounding and clamping when narrowing to integers.
func Save(path string, g *Grid, p Profile) error {
	if p.Width == 0 {
		p.Width = g.Width()
	}
	if p.Height == 0 {
		p.Height = g.Height()
	}
	if p.Width != g.Width() {
		return &ErrProfileMismatch{Field: "width", Profile: p.Width, Grid: g.Width()}
	}
	if p.Height != g.Height() {
		return &ErrProfileMismatch{Field: "height", Profile: p.Height, Grid: g.Height()}
	}

	geo := tiff.GeoInfo{
		Transform:    p.Transform.Array(),
		HasTransform: true,
		CRS:          p.CRS,
	}
	if p.NoData != nil {
		v := *p.NoData
		geo.NoData = &v
	} else if nd, ok := g.NoData(); ok {
		geo.NoData = &nd
	}

	opts := tiff.EncodeOptions{DType: p.DType}
	if p.Compression == CompressionDeflate {
		opts.Compression = tiff.CompressionDeflate
	}

	if err := tiff.Write(path, g.Data(), g.Width(), g.Height(), geo, opts); err != nil {
		return fmt.Errorf("failed to save raster: %w", err)
	}
	return nil
}

package raster

import (
	"github.com/terragrid/rastertool/internal/proj"
)

// Bounds is an axis-aligned bounding box in the coordinates of some CRS.
//
// For geographic systems X is longitude and Y latitude, in decimal
// degrees; for projected systems X is easting and Y northing, in the
// projection's linear unit (metres for World Mollweide).
type Bounds struct {
	MinX float64 // Western edge
	MinY float64 // Southern edge
	MaxX float64 // Eastern edge
	MaxY float64 // Northern edge
}

// Contains returns true if the point (x, y) is within the bounds.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX &&
		y >= b.MinY && y <= b.MaxY
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxX < b.MinX ||
		other.MinX > b.MaxX ||
		other.MaxY < b.MinY ||
		other.MinY > b.MaxY)
}

// Expand returns a new Bounds expanded by the given margin in all directions.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MaxX: b.MaxX + margin,
		MinY: b.MinY - margin,
		MaxY: b.MaxY + margin,
	}
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the vertical extent of the bounds.
func (b Bounds) Height() float64 {
	return b.MaxY - b.MinY
}

// ReprojectBounds converts a bounding box between coordinate reference
// systems, identified by "AUTHORITY:CODE" strings ("EPSG:4326",
// "ESRI:54009", "EPSG:3857").
//
// Box edges are densified before conversion so the result covers the true
// curved envelope, the same guarantee GIS tooling gives when reprojecting
// envelopes.
func ReprojectBounds(b Bounds, fromCRS, toCRS string) (Bounds, error) {
	t, err := proj.NewTransformer(fromCRS, toCRS)
	if err != nil {
		return Bounds{}, err
	}
	minX, minY, maxX, maxY, err := t.Bounds(b.MinX, b.MinY, b.MaxX, b.MaxY)
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}

// ReprojectPoint converts a single coordinate between registered CRSs.
func ReprojectPoint(x, y float64, fromCRS, toCRS string) (float64, float64, error) {
	t, err := proj.NewTransformer(fromCRS, toCRS)
	if err != nil {
		return 0, 0, err
	}
	return t.Point(x, y)
}

// SupportedCRS reports whether the given CRS code can be used for
// reprojection.
func SupportedCRS(crs string) bool {
	return proj.Supported(crs)
}

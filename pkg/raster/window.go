package raster

import (
	"math"
)

// Window is a rectangular pixel region of a raster: the column and row of
// its top-left cell plus its dimensions.
type Window struct {
	Col    int
	Row    int
	Width  int
	Height int
}

// Intersect clips the window to a raster of the given dimensions.
// The second return value is false when nothing remains.
func (w Window) Intersect(width, height int) (Window, bool) {
	col0 := max(w.Col, 0)
	row0 := max(w.Row, 0)
	col1 := min(w.Col+w.Width, width)
	row1 := min(w.Row+w.Height, height)
	if col0 >= col1 || row0 >= row1 {
		return Window{}, false
	}
	return Window{Col: col0, Row: row0, Width: col1 - col0, Height: row1 - row0}, true
}

// WindowFromBounds computes the read window covering a bounding box given
// in the dataset's CRS, together with the affine transform of the cropped
// region.
//
// Every cell the box touches is included, even partially covered edge
// cells, and the window is clipped to the raster extent. A box entirely
// outside the raster yields ErrDisjointBounds. This matches the crop
// semantics of geometry-mask windowing in mainstream raster tooling
// (all-touched, crop-to-geometry).
func (d *Dataset) WindowFromBounds(b Bounds) (Window, Transform, error) {
	inv, err := d.transform.Invert()
	if err != nil {
		return Window{}, Transform{}, err
	}

	// Map the box corners to fractional pixel space. All four corners
	// matter once rotation terms are present.
	corners := [4][2]float64{
		{b.MinX, b.MinY}, {b.MinX, b.MaxY},
		{b.MaxX, b.MinY}, {b.MaxX, b.MaxY},
	}
	minCol, minRow := math.Inf(1), math.Inf(1)
	maxCol, maxRow := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		col, row := inv.Apply(c[0], c[1])
		minCol = math.Min(minCol, col)
		maxCol = math.Max(maxCol, col)
		minRow = math.Min(minRow, row)
		maxRow = math.Max(maxRow, row)
	}

	// All-touched: expand outward to whole cells. A corner landing
	// exactly on a cell edge does not drag in the next cell.
	w := Window{
		Col:    int(math.Floor(minCol)),
		Row:    int(math.Floor(minRow)),
		Width:  int(math.Ceil(maxCol)) - int(math.Floor(minCol)),
		Height: int(math.Ceil(maxRow)) - int(math.Floor(minRow)),
	}

	clipped, ok := w.Intersect(d.Width(), d.Height())
	if !ok {
		return Window{}, Transform{}, &ErrDisjointBounds{Bounds: b, Extent: d.Bounds()}
	}
	return clipped, d.transform.Shift(clipped.Col, clipped.Row), nil
}

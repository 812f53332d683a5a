package raster

import (
	"math"
)

// Grid is a two-dimensional band of raster cells in row-major order.
//
// Cells hold float64 values regardless of the on-disk sample type; the
// nodata sentinel, when present, marks cells with no measurement. A grid
// carries no geo-referencing of its own; the Transform travels alongside
// it, the way a read window's transform accompanies a windowed read.
type Grid struct {
	data      []float64
	width     int
	height    int
	nodata    float64
	hasNoData bool
}

// NewGrid creates a grid of the given dimensions. When nodata is non-nil
// every cell is initialised to the sentinel, otherwise to zero.
func NewGrid(width, height int, nodata *float64) *Grid {
	g := &Grid{
		data:   make([]float64, width*height),
		width:  width,
		height: height,
	}
	if nodata != nil {
		g.nodata = *nodata
		g.hasNoData = true
		for i := range g.data {
			g.data[i] = g.nodata
		}
	}
	return g
}

// GridFromData wraps an existing row-major slice as a grid. The slice is
// not copied.
func GridFromData(data []float64, width, height int, nodata *float64) (*Grid, error) {
	if len(data) != width*height {
		return nil, &ErrGridShape{Length: len(data), Width: width, Height: height}
	}
	g := &Grid{data: data, width: width, height: height}
	if nodata != nil {
		g.nodata = *nodata
		g.hasNoData = true
	}
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// NoData returns the nodata sentinel and whether one is defined.
func (g *Grid) NoData() (float64, bool) {
	return g.nodata, g.hasNoData
}

// At returns the value at (col, row).
func (g *Grid) At(col, row int) float64 {
	return g.data[row*g.width+col]
}

// Set stores a value at (col, row).
func (g *Grid) Set(col, row int, v float64) {
	g.data[row*g.width+col] = v
}

// IsNoData reports whether v equals the grid's nodata sentinel.
// NaN sentinels compare true against NaN values.
func (g *Grid) IsNoData(v float64) bool {
	if !g.hasNoData {
		return false
	}
	if math.IsNaN(g.nodata) {
		return math.IsNaN(v)
	}
	return v == g.nodata
}

// Data returns the underlying row-major slice. Mutating it mutates the grid.
func (g *Grid) Data() []float64 {
	return g.data
}

// Threshold returns a new grid keeping only cells strictly greater than
// min; all other cells (including existing nodata) become the sentinel.
//
// A grid without a nodata sentinel cannot express "filtered out";
// rejected cells become zero there, so callers that care should attach a
// sentinel first.
func (g *Grid) Threshold(min float64) *Grid {
	out := &Grid{
		data:      make([]float64, len(g.data)),
		width:     g.width,
		height:    g.height,
		nodata:    g.nodata,
		hasNoData: g.hasNoData,
	}
	for i, v := range g.data {
		if !g.IsNoData(v) && v > min {
			out.data[i] = v
		} else {
			out.data[i] = g.nodata
		}
	}
	return out
}

// Fill returns a new grid with every nodata cell replaced by v.
func (g *Grid) Fill(v float64) *Grid {
	out := &Grid{
		data:      make([]float64, len(g.data)),
		width:     g.width,
		height:    g.height,
		nodata:    g.nodata,
		hasNoData: g.hasNoData,
	}
	for i, val := range g.data {
		if g.IsNoData(val) {
			out.data[i] = v
		} else {
			out.data[i] = val
		}
	}
	return out
}

// GridStats summarises the valid (non-nodata) cells of a grid.
type GridStats struct {
	Min, Max, Mean float64
	Sum            float64
	ValidCount     int
	NoDataCount    int
}

// Stats computes summary statistics over the grid's valid cells.
// When every cell is nodata the numeric fields are zero.
func (g *Grid) Stats() GridStats {
	var s GridStats
	first := true
	for _, v := range g.data {
		if g.IsNoData(v) || math.IsNaN(v) {
			s.NoDataCount++
			continue
		}
		if first {
			s.Min, s.Max = v, v
			first = false
		} else {
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
		s.Sum += v
		s.ValidCount++
	}
	if s.ValidCount > 0 {
		s.Mean = s.Sum / float64(s.ValidCount)
	}
	return s
}

package raster

import (
	"fmt"
)

// Transform is the six-parameter affine matrix mapping pixel indices to
// spatial coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
//
// C and F are the coordinates of the raster's top-left corner. A is the
// step added to C for one column to the right, E the step added to F for
// one row down. For a north-up raster B and D are zero and E is negative
// (rows grow downward, northing grows upward).
type Transform struct {
	A, B, C float64
	D, E, F float64
}

// NorthUp builds the transform for a north-up raster from its top-left
// corner and positive pixel sizes.
func NorthUp(originX, originY, pixelWidth, pixelHeight float64) Transform {
	return Transform{
		A: pixelWidth, B: 0, C: originX,
		D: 0, E: -pixelHeight, F: originY,
	}
}

// Apply maps a (possibly fractional) pixel position to spatial coordinates.
// Integer (col, row) yields the top-left corner of that cell; add 0.5 to
// each for the cell centre.
func (t Transform) Apply(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// Invert returns the inverse affine transform, mapping spatial coordinates
// back to fractional pixel positions.
func (t Transform) Invert() (Transform, error) {
	det := t.A*t.E - t.B*t.D
	if det == 0 {
		return Transform{}, &ErrSingularTransform{Transform: t}
	}
	inv := Transform{
		A: t.E / det,
		B: -t.B / det,
		D: -t.D / det,
		E: t.A / det,
	}
	inv.C = -(inv.A*t.C + inv.B*t.F)
	inv.F = -(inv.D*t.C + inv.E*t.F)
	return inv, nil
}

// Shift returns the transform of a sub-window whose top-left cell is
// (col, row) in this transform's pixel space. Scale and rotation terms are
// unchanged; only the origin moves.
func (t Transform) Shift(col, row int) Transform {
	c, f := t.Apply(float64(col), float64(row))
	out := t
	out.C = c
	out.F = f
	return out
}

// IsNorthUp reports whether the transform has no rotation or shear terms.
func (t Transform) IsNorthUp() bool {
	return t.B == 0 && t.D == 0
}

// PixelWidth returns the spatial width of one cell.
func (t Transform) PixelWidth() float64 {
	if t.A < 0 {
		return -t.A
	}
	return t.A
}

// PixelHeight returns the spatial height of one cell.
func (t Transform) PixelHeight() float64 {
	if t.E < 0 {
		return -t.E
	}
	return t.E
}

// Array returns the six parameters in [a b c d e f] order.
func (t Transform) Array() [6]float64 {
	return [6]float64{t.A, t.B, t.C, t.D, t.E, t.F}
}

// TransformFromArray builds a Transform from [a b c d e f] order.
func TransformFromArray(m [6]float64) Transform {
	return Transform{A: m[0], B: m[1], C: m[2], D: m[3], E: m[4], F: m[5]}
}

// String renders the transform as two matrix rows, matching the layout
// used by common raster tooling.
func (t Transform) String() string {
	return fmt.Sprintf("| %.2f, %.2f, %.2f |\n| %.2f, %.2f, %.2f |",
		t.A, t.B, t.C, t.D, t.E, t.F)
}

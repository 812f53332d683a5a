package raster

import (
	"errors"
	"math"
	"testing"
)

func TestNorthUp(t *testing.T) {
	tr := NorthUp(-1000000, 6000000, 1000, 1000)

	if !tr.IsNorthUp() {
		t.Error("expected north-up transform")
	}
	if tr.PixelWidth() != 1000 || tr.PixelHeight() != 1000 {
		t.Errorf("pixel size: got %gx%g, want 1000x1000", tr.PixelWidth(), tr.PixelHeight())
	}

	x, y := tr.Apply(0, 0)
	if x != -1000000 || y != 6000000 {
		t.Errorf("origin: got (%g, %g), want (-1000000, 6000000)", x, y)
	}
	x, y = tr.Apply(10, 5)
	if x != -990000 || y != 5995000 {
		t.Errorf("cell (10,5): got (%g, %g), want (-990000, 5995000)", x, y)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	transforms := []Transform{
		NorthUp(0, 100, 10, 10),
		NorthUp(-1000000, 6000000, 1000, 1000),
		{A: 2, B: 0.5, C: 10, D: -0.25, E: -3, F: 200}, // rotated
	}
	points := [][2]float64{{0, 0}, {3, 7}, {12.5, 0.25}, {-4, 9}}

	for _, tr := range transforms {
		inv, err := tr.Invert()
		if err != nil {
			t.Fatalf("Invert failed: %v", err)
		}
		for _, p := range points {
			x, y := tr.Apply(p[0], p[1])
			col, row := inv.Apply(x, y)
			if math.Abs(col-p[0]) > 1e-9 || math.Abs(row-p[1]) > 1e-9 {
				t.Errorf("round trip (%g, %g): got (%g, %g)", p[0], p[1], col, row)
			}
		}
	}
}

func TestInvertSingular(t *testing.T) {
	_, err := Transform{}.Invert()
	var singular *ErrSingularTransform
	if !errors.As(err, &singular) {
		t.Fatalf("expected ErrSingularTransform, got %v", err)
	}
}

func TestShift(t *testing.T) {
	tr := NorthUp(0, 100, 10, 10)
	sub := tr.Shift(1, 4)

	if sub.C != 10 || sub.F != 60 {
		t.Errorf("shifted origin: got (%g, %g), want (10, 60)", sub.C, sub.F)
	}
	if sub.A != tr.A || sub.E != tr.E {
		t.Error("shift must not change pixel size")
	}

	// Cell (0,0) of the window is cell (1,4) of the parent.
	wx, wy := sub.Apply(0, 0)
	px, py := tr.Apply(1, 4)
	if wx != px || wy != py {
		t.Errorf("window origin (%g, %g) != parent cell (%g, %g)", wx, wy, px, py)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	tr := Transform{A: 1, B: 2, C: 3, D: 4, E: 5, F: 6}
	if got := TransformFromArray(tr.Array()); got != tr {
		t.Errorf("array round trip: got %+v, want %+v", got, tr)
	}
}

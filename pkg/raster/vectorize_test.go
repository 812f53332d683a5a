package raster

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// gridFrom builds a grid with nodata -200 from row-major values.
func gridFrom(t *testing.T, vals []float64, w, h int) *Grid {
	t.Helper()
	g, err := GridFromData(vals, w, h, f64(-200))
	if err != nil {
		t.Fatalf("GridFromData failed: %v", err)
	}
	return g
}

// ringWinding returns the shoelace sum of a ring; positive means
// counterclockwise in a y-up coordinate system.
func ringWinding(r orb.Ring) float64 {
	var area float64
	for i := 0; i+1 < len(r); i++ {
		area += r[i][0]*r[i+1][1] - r[i+1][0]*r[i][1]
	}
	return area
}

func TestVectorizeSingleCell(t *testing.T) {
	g := gridFrom(t, []float64{
		-200, -200, -200,
		-200, 7, -200,
		-200, -200, -200,
	}, 3, 3)

	fc := Vectorize(g, NorthUp(0, 3, 1, 1))
	if len(fc.Features) != 1 {
		t.Fatalf("feature count: got %d, want 1", len(fc.Features))
	}

	f := fc.Features[0]
	if got := f.Properties["label"]; got != 7.0 {
		t.Errorf("label: got %v, want 7", got)
	}

	poly, ok := f.Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("geometry type: got %T, want orb.Polygon", f.Geometry)
	}
	if len(poly) != 1 {
		t.Fatalf("ring count: got %d, want 1", len(poly))
	}
	ring := poly[0]
	if len(ring) != 5 {
		t.Fatalf("ring length: got %d, want 5 (closed unit square)", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("ring not closed")
	}
	if ringWinding(ring) <= 0 {
		t.Error("exterior ring must be counterclockwise")
	}
	if area := planar.Area(poly); area != 1 {
		t.Errorf("area: got %g, want 1", area)
	}

	// Cell (1,1) spans world x [1,2], y [1,2] under this transform.
	b := poly.Bound()
	if b.Min[0] != 1 || b.Min[1] != 1 || b.Max[0] != 2 || b.Max[1] != 2 {
		t.Errorf("bounds: got %v, want [1,1]-[2,2]", b)
	}
}

func TestVectorizeDiagonalCellsSplit(t *testing.T) {
	// Diagonal neighbours are not 4-connected.
	g := gridFrom(t, []float64{
		5, -200,
		-200, 5,
	}, 2, 2)

	fc := Vectorize(g, NorthUp(0, 2, 1, 1))
	if len(fc.Features) != 2 {
		t.Fatalf("feature count: got %d, want 2", len(fc.Features))
	}
	for _, f := range fc.Features {
		if area := planar.Area(f.Geometry.(orb.Polygon)); area != 1 {
			t.Errorf("area: got %g, want 1", area)
		}
	}
}

func TestVectorizeDistinctValuesSplit(t *testing.T) {
	// Adjacent cells with different values form separate regions.
	g := gridFrom(t, []float64{1, 2}, 2, 1)

	fc := Vectorize(g, NorthUp(0, 1, 1, 1))
	if len(fc.Features) != 2 {
		t.Fatalf("feature count: got %d, want 2", len(fc.Features))
	}
	labels := map[float64]bool{}
	for _, f := range fc.Features {
		labels[f.Properties["label"].(float64)] = true
	}
	if !labels[1] || !labels[2] {
		t.Errorf("labels: got %v, want {1, 2}", labels)
	}
}

func TestVectorizeMergesEqualRun(t *testing.T) {
	// A solid block of one value is a single feature.
	g := gridFrom(t, []float64{
		5, 5, 5,
		5, 5, 5,
	}, 3, 2)

	fc := Vectorize(g, NorthUp(0, 2, 1, 1))
	if len(fc.Features) != 1 {
		t.Fatalf("feature count: got %d, want 1", len(fc.Features))
	}
	poly := fc.Features[0].Geometry.(orb.Polygon)
	if area := planar.Area(poly); area != 6 {
		t.Errorf("area: got %g, want 6", area)
	}
}

func TestVectorizeHole(t *testing.T) {
	// A nodata cell surrounded by one region becomes a polygon hole.
	g := gridFrom(t, []float64{
		5, 5, 5,
		5, -200, 5,
		5, 5, 5,
	}, 3, 3)

	fc := Vectorize(g, NorthUp(0, 3, 1, 1))
	if len(fc.Features) != 1 {
		t.Fatalf("feature count: got %d, want 1", len(fc.Features))
	}
	poly := fc.Features[0].Geometry.(orb.Polygon)
	if len(poly) != 2 {
		t.Fatalf("ring count: got %d, want exterior plus hole", len(poly))
	}
	if ringWinding(poly[0]) <= 0 {
		t.Error("exterior ring must be counterclockwise")
	}
	if ringWinding(poly[1]) >= 0 {
		t.Error("hole ring must be clockwise")
	}
	if area := planar.Area(poly); area != 8 {
		t.Errorf("area: got %g, want 8 (9 minus the hole)", area)
	}
}

// ringSimple reports whether a closed ring visits no vertex twice apart
// from the closing point.
func ringSimple(r orb.Ring) bool {
	seen := make(map[orb.Point]bool, len(r))
	for _, p := range r[:len(r)-1] {
		if seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}

func TestVectorizeHoleTouchingNotch(t *testing.T) {
	// The hole at (1,1) meets the nodata corner at (2,2) diagonally.
	// The shared vertex must not fuse the hole into the exterior ring.
	g := gridFrom(t, []float64{
		5, 5, 5,
		5, -200, 5,
		5, 5, -200,
	}, 3, 3)

	fc := Vectorize(g, NorthUp(0, 3, 1, 1))
	if len(fc.Features) != 1 {
		t.Fatalf("feature count: got %d, want 1", len(fc.Features))
	}
	poly := fc.Features[0].Geometry.(orb.Polygon)
	if len(poly) != 2 {
		t.Fatalf("ring count: got %d, want exterior plus hole", len(poly))
	}
	if ringWinding(poly[0]) <= 0 {
		t.Error("exterior ring must be counterclockwise")
	}
	if ringWinding(poly[1]) >= 0 {
		t.Error("hole ring must be clockwise")
	}
	for i, ring := range poly {
		if !ringSimple(ring) {
			t.Errorf("ring %d revisits a vertex", i)
		}
	}
	if area := planar.Area(poly); area != 7 {
		t.Errorf("area: got %g, want 7 (9 minus notch and hole)", area)
	}
}

func TestVectorizeDiagonalHolesStaySeparate(t *testing.T) {
	// Two holes sharing only a corner are distinct rings, like diagonal
	// cells are distinct components.
	g := gridFrom(t, []float64{
		5, 5, 5, 5,
		5, -200, 5, 5,
		5, 5, -200, 5,
		5, 5, 5, 5,
	}, 4, 4)

	fc := Vectorize(g, NorthUp(0, 4, 1, 1))
	if len(fc.Features) != 1 {
		t.Fatalf("feature count: got %d, want 1", len(fc.Features))
	}
	poly := fc.Features[0].Geometry.(orb.Polygon)
	if len(poly) != 3 {
		t.Fatalf("ring count: got %d, want exterior plus two holes", len(poly))
	}
	for _, hole := range poly[1:] {
		if ringWinding(hole) >= 0 {
			t.Error("hole ring must be clockwise")
		}
		if !ringSimple(hole) {
			t.Error("hole ring revisits a vertex")
		}
		if len(hole) != 5 {
			t.Errorf("hole ring length: got %d, want 5 (closed unit square)", len(hole))
		}
	}
	if area := planar.Area(poly); area != 14 {
		t.Errorf("area: got %g, want 14 (16 minus two holes)", area)
	}
}

func TestVectorizeSeparatedComponents(t *testing.T) {
	// Same value split by a nodata column: two features, same label.
	g := gridFrom(t, []float64{
		3, -200, 3,
		3, -200, 3,
	}, 3, 2)

	fc := Vectorize(g, NorthUp(0, 2, 1, 1))
	if len(fc.Features) != 2 {
		t.Fatalf("feature count: got %d, want 2", len(fc.Features))
	}
	for _, f := range fc.Features {
		if got := f.Properties["label"]; got != 3.0 {
			t.Errorf("label: got %v, want 3", got)
		}
		if area := planar.Area(f.Geometry.(orb.Polygon)); area != 2 {
			t.Errorf("area: got %g, want 2", area)
		}
	}
}

func TestVectorizeEmpty(t *testing.T) {
	g := NewGrid(4, 4, f64(-200))
	fc := Vectorize(g, NorthUp(0, 4, 1, 1))
	if len(fc.Features) != 0 {
		t.Fatalf("feature count: got %d, want 0", len(fc.Features))
	}
}

func TestVectorizeWorldScale(t *testing.T) {
	// 1 km cells: areas and bounds scale with the transform.
	g := gridFrom(t, []float64{6000}, 1, 1)
	fc := Vectorize(g, NorthUp(-1000000, 6000000, 1000, 1000))
	if len(fc.Features) != 1 {
		t.Fatalf("feature count: got %d, want 1", len(fc.Features))
	}
	poly := fc.Features[0].Geometry.(orb.Polygon)
	if area := planar.Area(poly); area != 1000000 {
		t.Errorf("area: got %g, want 1e6", area)
	}
	b := poly.Bound()
	if b.Min[0] != -1000000 || b.Max[1] != 6000000 {
		t.Errorf("bounds: got %v", b)
	}
}

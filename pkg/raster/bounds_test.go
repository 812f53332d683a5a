package raster

import (
	"testing"
)

func TestBoundsContains(t *testing.T) {
	b := Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 5}
	if !b.Contains(5, 2.5) {
		t.Error("interior point rejected")
	}
	if !b.Contains(0, 0) || !b.Contains(10, 5) {
		t.Error("boundary points rejected")
	}
	if b.Contains(11, 2) || b.Contains(5, -1) {
		t.Error("exterior point accepted")
	}
}

func TestBoundsIntersects(t *testing.T) {
	b := Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	tests := []struct {
		name  string
		other Bounds
		want  bool
	}{
		{"overlapping", Bounds{5, 5, 15, 15}, true},
		{"contained", Bounds{2, 2, 4, 4}, true},
		{"touching edge", Bounds{10, 0, 20, 10}, true},
		{"disjoint", Bounds{20, 20, 30, 30}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Intersects(tt.other); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundsExpand(t *testing.T) {
	b := Bounds{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}.Expand(0.5)
	want := Bounds{MinX: 0.5, MinY: 1.5, MaxX: 3.5, MaxY: 4.5}
	if b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}
	if b.Width() != 3 || b.Height() != 3 {
		t.Errorf("extent: got %gx%g, want 3x3", b.Width(), b.Height())
	}
}

func TestSupportedCRS(t *testing.T) {
	for _, crs := range []string{"EPSG:4326", "ESRI:54009", "EPSG:3857"} {
		if !SupportedCRS(crs) {
			t.Errorf("%s should be supported", crs)
		}
	}
	if SupportedCRS("EPSG:27700") {
		t.Error("unregistered CRS reported as supported")
	}
}

func TestReprojectBoundsToMollweide(t *testing.T) {
	// A box over the Bristol Channel, in geographic coordinates.
	geo := Bounds{MinX: -3.6955, MinY: 51.1869, MaxX: -2.3002, MaxY: 51.9855}

	moll, err := ReprojectBounds(geo, "EPSG:4326", "ESRI:54009")
	if err != nil {
		t.Fatalf("ReprojectBounds failed: %v", err)
	}

	// Mollweide coordinates for this region are a couple hundred
	// kilometres west of the meridian and around six thousand up.
	if moll.MinX > -200000 || moll.MinX < -320000 {
		t.Errorf("MinX: got %g", moll.MinX)
	}
	if moll.MinY < 5900000 || moll.MaxY > 6100000 {
		t.Errorf("Y range: got [%g, %g]", moll.MinY, moll.MaxY)
	}
	if moll.Width() <= 0 || moll.Height() <= 0 {
		t.Error("degenerate reprojected bounds")
	}
}

func TestReprojectBoundsIdentity(t *testing.T) {
	b := Bounds{MinX: -3, MinY: 51, MaxX: -2, MaxY: 52}
	got, err := ReprojectBounds(b, "EPSG:4326", "EPSG:4326")
	if err != nil {
		t.Fatalf("ReprojectBounds failed: %v", err)
	}
	if got != b {
		t.Errorf("identity reprojection changed bounds: %+v", got)
	}
}

func TestReprojectPointUnknownCRS(t *testing.T) {
	if _, _, err := ReprojectPoint(0, 0, "EPSG:99999", "EPSG:4326"); err == nil {
		t.Fatal("expected error for unknown CRS")
	}
}

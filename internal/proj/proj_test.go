package proj

import (
	"errors"
	"math"
	"testing"
)

func TestUnknownCRS(t *testing.T) {
	_, err := NewTransformer("EPSG:99999", "ESRI:54009")
	if err == nil {
		t.Fatal("expected error for unknown CRS")
	}
	var unknown *ErrUnknownCRS
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownCRS, got %T: %v", err, err)
	}
	if unknown.CRS != "EPSG:99999" {
		t.Errorf("expected CRS EPSG:99999 in error, got %q", unknown.CRS)
	}
}

func TestSupported(t *testing.T) {
	for _, crs := range []string{"EPSG:4326", "ESRI:54009", "EPSG:3857"} {
		if !Supported(crs) {
			t.Errorf("%s should be supported", crs)
		}
	}
	if Supported("EPSG:27700") {
		t.Error("EPSG:27700 should not be supported")
	}
}

func TestIdentityTransform(t *testing.T) {
	tr, err := NewTransformer("ESRI:54009", "ESRI:54009")
	if err != nil {
		t.Fatal(err)
	}
	x, y, err := tr.Point(123456.789, -987654.321)
	if err != nil {
		t.Fatal(err)
	}
	if x != 123456.789 || y != -987654.321 {
		t.Errorf("identity transform changed coordinates: got (%g, %g)", x, y)
	}
}

func TestMollweideOrigin(t *testing.T) {
	tr, err := NewTransformer("EPSG:4326", "ESRI:54009")
	if err != nil {
		t.Fatal(err)
	}
	x, y, err := tr.Point(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("Mollweide origin should map to (0, 0), got (%g, %g)", x, y)
	}
}

func TestMollweideEquator(t *testing.T) {
	// On the equator theta is zero, so x reduces to R*2*sqrt(2)/pi * lam.
	tr, err := NewTransformer("EPSG:4326", "ESRI:54009")
	if err != nil {
		t.Fatal(err)
	}
	x, y, err := tr.Point(90, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := earthRadius * math.Sqrt2
	if math.Abs(x-want) > 1 {
		t.Errorf("Mollweide x at (90, 0): got %f, want %f", x, want)
	}
	if math.Abs(y) > 1e-6 {
		t.Errorf("Mollweide y on equator should be 0, got %f", y)
	}
}

func TestMollweideBristolChannel(t *testing.T) {
	// The GHS-POP workflow crops around the Bristol Channel; its
	// south-west corner lands near (-276 km, 5994 km) in World Mollweide.
	tr, err := NewTransformer("EPSG:4326", "ESRI:54009")
	if err != nil {
		t.Fatal(err)
	}
	x, y, err := tr.Point(-3.6955, 51.1869)
	if err != nil {
		t.Fatal(err)
	}
	if x > -260000 || x < -290000 {
		t.Errorf("unexpected easting %f for Bristol Channel corner", x)
	}
	if y < 5.9e6 || y > 6.1e6 {
		t.Errorf("unexpected northing %f for Bristol Channel corner", y)
	}
}

func TestMollweideRoundTrip(t *testing.T) {
	fwd, err := NewTransformer("EPSG:4326", "ESRI:54009")
	if err != nil {
		t.Fatal(err)
	}
	inv, err := NewTransformer("ESRI:54009", "EPSG:4326")
	if err != nil {
		t.Fatal(err)
	}

	points := [][2]float64{
		{0, 0}, {-3.7, 51.2}, {179, 80}, {-179, -80}, {45, -33.5}, {120, 5},
	}
	for _, p := range points {
		x, y, err := fwd.Point(p[0], p[1])
		if err != nil {
			t.Fatalf("forward (%g, %g): %v", p[0], p[1], err)
		}
		lon, lat, err := inv.Point(x, y)
		if err != nil {
			t.Fatalf("inverse (%g, %g): %v", x, y, err)
		}
		if math.Abs(lon-p[0]) > 1e-6 || math.Abs(lat-p[1]) > 1e-6 {
			t.Errorf("round trip (%g, %g) -> (%g, %g)", p[0], p[1], lon, lat)
		}
	}
}

func TestMollweidePole(t *testing.T) {
	tr, err := NewTransformer("EPSG:4326", "ESRI:54009")
	if err != nil {
		t.Fatal(err)
	}
	x, y, err := tr.Point(30, 90)
	if err != nil {
		t.Fatal(err)
	}
	// At the pole the parallel collapses to a point on the y axis.
	if math.Abs(x) > 1e-3 {
		t.Errorf("pole easting should be 0, got %g", x)
	}
	want := earthRadius * math.Sqrt2
	if math.Abs(y-want) > 1e-3 {
		t.Errorf("pole northing: got %f, want %f", y, want)
	}
}

func TestWebMercator(t *testing.T) {
	tr, err := NewTransformer("EPSG:4326", "EPSG:3857")
	if err != nil {
		t.Fatal(err)
	}

	x, y, err := tr.Point(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("origin should map to (0, 0), got (%g, %g)", x, y)
	}

	x, _, err = tr.Point(180, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x-20037508.342789244) > 1 {
		t.Errorf("antimeridian easting: got %f", x)
	}

	// Beyond the clipping latitude the projection is undefined.
	if _, _, err := tr.Point(0, 89); err == nil {
		t.Error("expected error above Web Mercator latitude limit")
	}
}

func TestOutOfDomain(t *testing.T) {
	tr, err := NewTransformer("EPSG:4326", "ESRI:54009")
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = tr.Point(0, 91)
	if err == nil {
		t.Fatal("expected error for latitude 91")
	}
	var domain *ErrUnprojectable
	if !errors.As(err, &domain) {
		t.Fatalf("expected ErrUnprojectable, got %T: %v", err, err)
	}
}

func TestBoundsConservative(t *testing.T) {
	// A reprojected box must contain the reprojections of interior
	// points, not just the corners.
	tr, err := NewTransformer("EPSG:4326", "ESRI:54009")
	if err != nil {
		t.Fatal(err)
	}
	minX, minY, maxX, maxY, err := tr.Bounds(-3.6955, 51.1869, -2.3002, 51.9855)
	if err != nil {
		t.Fatal(err)
	}
	if minX >= maxX || minY >= maxY {
		t.Fatalf("degenerate bounds [%g,%g,%g,%g]", minX, minY, maxX, maxY)
	}

	for _, p := range [][2]float64{
		{-3.6955, 51.1869}, {-2.3002, 51.9855}, {-3.0, 51.5}, {-2.5, 51.9},
	} {
		x, y, err := tr.Point(p[0], p[1])
		if err != nil {
			t.Fatal(err)
		}
		if x < minX-1e-6 || x > maxX+1e-6 || y < minY-1e-6 || y > maxY+1e-6 {
			t.Errorf("point (%g, %g) -> (%f, %f) escapes bounds [%f,%f,%f,%f]",
				p[0], p[1], x, y, minX, minY, maxX, maxY)
		}
	}
}

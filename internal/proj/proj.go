// Package proj converts coordinates between the reference systems used by
// population-grid rasters.
//
// It is a deliberately small registry, not a PROJ replacement: the systems
// supported are geographic WGS-84 (EPSG:4326), World Mollweide
// (ESRI:54009, the GHS-POP grid projection) and spherical Web Mercator
// (EPSG:3857). All projections use closed-form or Newton-iterated formulas
// on the sphere/ellipsoid constants the authorities define.
package proj

import (
	"fmt"
	"math"
)

// WGS-84 semi-major axis in metres. Mollweide as published by ESRI
// (54009) is sphere-based on this radius; Web Mercator uses it too.
const earthRadius = 6378137.0

// ErrUnknownCRS indicates a CRS code outside the registry.
type ErrUnknownCRS struct {
	CRS string
}

func (e *ErrUnknownCRS) Error() string {
	return fmt.Sprintf("unknown CRS %q (supported: EPSG:4326, ESRI:54009, EPSG:3857)", e.CRS)
}

// ErrUnprojectable indicates a coordinate outside the projection's domain.
type ErrUnprojectable struct {
	X, Y float64
	CRS  string
}

func (e *ErrUnprojectable) Error() string {
	return fmt.Sprintf("coordinate (%g, %g) outside the domain of %s", e.X, e.Y, e.CRS)
}

// projection converts between geographic lon/lat degrees and projected
// coordinates. Geographic CRSs use the identity projection.
type projection interface {
	forward(lon, lat float64) (x, y float64, err error)
	inverse(x, y float64) (lon, lat float64, err error)
}

// registry maps "AUTHORITY:CODE" to its projection.
var registry = map[string]projection{
	"EPSG:4326":  geographic{},
	"ESRI:54009": mollweide{},
	"EPSG:3857":  webMercator{},
}

// Supported reports whether a CRS code is in the registry.
func Supported(crs string) bool {
	_, ok := registry[crs]
	return ok
}

// Transformer converts coordinates from one CRS to another.
//
// Conversion goes through geographic lon/lat: source inverse projection,
// then destination forward projection. Same-CRS transformers are the
// identity.
type Transformer struct {
	from, to projection
	fromCRS  string
	toCRS    string
	identity bool
}

// NewTransformer builds a transformer between two registered CRSs.
func NewTransformer(from, to string) (*Transformer, error) {
	src, ok := registry[from]
	if !ok {
		return nil, &ErrUnknownCRS{CRS: from}
	}
	dst, ok := registry[to]
	if !ok {
		return nil, &ErrUnknownCRS{CRS: to}
	}
	return &Transformer{
		from: src, to: dst,
		fromCRS: from, toCRS: to,
		identity: from == to,
	}, nil
}

// Point converts a single coordinate.
func (t *Transformer) Point(x, y float64) (float64, float64, error) {
	if t.identity {
		return x, y, nil
	}
	lon, lat, err := t.from.inverse(x, y)
	if err != nil {
		return 0, 0, err
	}
	return t.to.forward(lon, lat)
}

// Bounds converts an axis-aligned rectangle.
//
// Projected edges curve, so the four corners alone under-cover the true
// envelope. Each edge is densified with interior samples and the result is
// the envelope of all converted points, which is conservative for the
// projections in the registry.
func (t *Transformer) Bounds(minX, minY, maxX, maxY float64) (oMinX, oMinY, oMaxX, oMaxY float64, err error) {
	if t.identity {
		return minX, minY, maxX, maxY, nil
	}

	const samples = 21
	first := true
	for i := 0; i < samples; i++ {
		f := float64(i) / float64(samples-1)
		pts := [4][2]float64{
			{minX + f*(maxX-minX), minY}, // south edge
			{minX + f*(maxX-minX), maxY}, // north edge
			{minX, minY + f*(maxY-minY)}, // west edge
			{maxX, minY + f*(maxY-minY)}, // east edge
		}
		for _, p := range pts {
			x, y, perr := t.Point(p[0], p[1])
			if perr != nil {
				return 0, 0, 0, 0, perr
			}
			if first {
				oMinX, oMaxX = x, x
				oMinY, oMaxY = y, y
				first = false
				continue
			}
			oMinX = math.Min(oMinX, x)
			oMaxX = math.Max(oMaxX, x)
			oMinY = math.Min(oMinY, y)
			oMaxY = math.Max(oMaxY, y)
		}
	}
	return oMinX, oMinY, oMaxX, oMaxY, nil
}

// geographic is the identity projection for lon/lat CRSs.
type geographic struct{}

func (geographic) forward(lon, lat float64) (float64, float64, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, &ErrUnprojectable{X: lon, Y: lat, CRS: "EPSG:4326"}
	}
	return lon, lat, nil
}

func (geographic) inverse(x, y float64) (float64, float64, error) {
	if y < -90 || y > 90 || x < -180 || x > 180 {
		return 0, 0, &ErrUnprojectable{X: x, Y: y, CRS: "EPSG:4326"}
	}
	return x, y, nil
}

// mollweide implements the World Mollweide projection (ESRI:54009):
// equal-area, pseudocylindrical, sphere-based.
//
//	x = R * 2√2/π * λ * cos θ
//	y = R * √2 * sin θ
//	where 2θ + sin 2θ = π sin φ
type mollweide struct{}

func (mollweide) forward(lon, lat float64) (float64, float64, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, &ErrUnprojectable{X: lon, Y: lat, CRS: "ESRI:54009"}
	}
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	theta, ok := mollweideTheta(phi)
	if !ok {
		return 0, 0, &ErrUnprojectable{X: lon, Y: lat, CRS: "ESRI:54009"}
	}

	x := earthRadius * (2 * math.Sqrt2 / math.Pi) * lam * math.Cos(theta)
	y := earthRadius * math.Sqrt2 * math.Sin(theta)
	return x, y, nil
}

func (mollweide) inverse(x, y float64) (float64, float64, error) {
	s := y / (earthRadius * math.Sqrt2)
	if s < -1 || s > 1 {
		return 0, 0, &ErrUnprojectable{X: x, Y: y, CRS: "ESRI:54009"}
	}
	theta := math.Asin(s)
	phi := math.Asin((2*theta + math.Sin(2*theta)) / math.Pi)

	cos := math.Cos(theta)
	var lam float64
	if cos < 1e-12 {
		// At the poles the meridian is indeterminate; use 0.
		lam = 0
	} else {
		lam = math.Pi * x / (2 * math.Sqrt2 * earthRadius * cos)
	}

	lon := lam * 180 / math.Pi
	lat := phi * 180 / math.Pi
	if lon < -180.000001 || lon > 180.000001 {
		return 0, 0, &ErrUnprojectable{X: x, Y: y, CRS: "ESRI:54009"}
	}
	return clamp(lon, -180, 180), clamp(lat, -90, 90), nil
}

// mollweideTheta solves 2θ + sin 2θ = π sin φ by Newton iteration.
func mollweideTheta(phi float64) (float64, bool) {
	// Poles are exact and the iteration divides by cos θ there.
	if math.Abs(math.Abs(phi)-math.Pi/2) < 1e-12 {
		return math.Copysign(math.Pi/2, phi), true
	}
	target := math.Pi * math.Sin(phi)
	theta := phi
	for i := 0; i < 50; i++ {
		delta := -(2*theta + math.Sin(2*theta) - target) / (2 + 2*math.Cos(2*theta))
		theta += delta
		if math.Abs(delta) < 1e-12 {
			return theta, true
		}
	}
	// Newton converges in a handful of iterations everywhere except the
	// immediate pole neighbourhood handled above.
	return theta, true
}

// webMercator implements spherical Web Mercator (EPSG:3857).
type webMercator struct{}

// Web Mercator is clipped at ±85.051129° where the projection square closes.
const webMercatorMaxLat = 85.051129

func (webMercator) forward(lon, lat float64) (float64, float64, error) {
	if lat < -webMercatorMaxLat || lat > webMercatorMaxLat || lon < -180 || lon > 180 {
		return 0, 0, &ErrUnprojectable{X: lon, Y: lat, CRS: "EPSG:3857"}
	}
	x := earthRadius * lon * math.Pi / 180
	y := earthRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y, nil
}

func (webMercator) inverse(x, y float64) (float64, float64, error) {
	lon := x / earthRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	if lon < -180.000001 || lon > 180.000001 {
		return 0, 0, &ErrUnprojectable{X: x, Y: y, CRS: "EPSG:3857"}
	}
	return clamp(lon, -180, 180), lat, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

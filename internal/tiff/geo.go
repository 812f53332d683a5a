package tiff

import (
	"fmt"
	"strconv"
	"strings"
)

// GeoInfo holds the geo-referencing metadata of a raster layer.
//
// Transform is the six-parameter affine matrix [a b c d e f] mapping pixel
// (col, row) to model coordinates:
//
//	x = a*col + b*row + c
//	y = d*col + e*row + f
//
// For a north-up raster b and d are zero, c and f are the coordinates of
// the top-left corner, a is the pixel width and e the (negative) pixel
// height.
type GeoInfo struct {
	Transform    [6]float64
	HasTransform bool

	// CRS is the coordinate reference system as "AUTHORITY:CODE"
	// (e.g. "EPSG:4326", "ESRI:54009"), or "" when unresolvable.
	CRS string

	// NoData is the sentinel marking missing cells, from the GDAL
	// nodata tag. Nil when the raster declares none.
	NoData *float64

	// PixelIsPoint is true when GTRasterType declares point (as opposed
	// to area) pixel semantics.
	PixelIsPoint bool

	// Citation is the human-readable CS name from the GeoKey citations.
	Citation string
}

// parseGeo extracts GeoInfo from a layer's GeoTIFF tags.
func parseGeo(dir *ifd) (GeoInfo, error) {
	var geo GeoInfo

	// Affine transform. Pixel scale + tiepoint is the common GDAL
	// encoding; a full model transformation matrix takes priority when
	// present (OGC GeoTIFF 1.1 §B.2).
	if m, ok := dir.floatsTag(tagModelTransformation); ok && len(m) >= 16 {
		geo.Transform = [6]float64{m[0], m[1], m[3], m[4], m[5], m[7]}
		geo.HasTransform = true
	} else if scale, ok := dir.floatsTag(tagModelPixelScale); ok && len(scale) >= 2 {
		tie, ok := dir.floatsTag(tagModelTiepoint)
		if !ok || len(tie) < 6 {
			return geo, &ErrCorrupt{Reason: "pixel scale without model tiepoint"}
		}
		// Tiepoint maps raster (i, j) to model (x, y):
		// origin = (x - i*sx, y + j*sy), per GeoTIFF 1.1 §B.1.1
		i, j := tie[0], tie[1]
		x, y := tie[3], tie[4]
		sx, sy := scale[0], scale[1]
		geo.Transform = [6]float64{sx, 0, x - i*sx, 0, -sy, y + j*sy}
		geo.HasTransform = true
	}

	// GeoKey directory: packed shorts referencing the double and ASCII
	// parameter tags (OGC GeoTIFF 1.1 §7.1).
	keysField, ok := dir.fields[tagGeoKeyDirectory]
	if !ok {
		return geo, nil
	}
	keys := keysField.uints()
	if len(keys) < 4 {
		return geo, &ErrCorrupt{Reason: "GeoKey directory header truncated"}
	}
	numKeys := int(keys[3])
	if len(keys) < 4+numKeys*4 {
		return geo, &ErrCorrupt{Reason: fmt.Sprintf("GeoKey directory declares %d keys but holds %d entries", numKeys, (len(keys)-4)/4)}
	}

	ascii, _ := dir.strTag(tagGeoAsciiParams)

	var modelType, geographicCode, projectedCode uint64
	var citations []string

	for k := 0; k < numKeys; k++ {
		keyID := keys[4+k*4]
		tagLoc := keys[4+k*4+1]
		count := keys[4+k*4+2]
		value := keys[4+k*4+3]

		switch keyID {
		case keyModelType:
			modelType = value
		case keyRasterType:
			geo.PixelIsPoint = value == rasterTypePixelIsPoint
		case keyGeographicType:
			geographicCode = value
		case keyProjectedCS:
			projectedCode = value
		case keyCitation, keyGeogCitation, keyPCSCitation:
			if tagLoc == tagGeoAsciiParams {
				s := geoAsciiValue(ascii, int(value), int(count))
				if s != "" {
					citations = append(citations, s)
				}
			}
		}
	}

	geo.Citation = strings.Join(citations, "; ")

	switch modelType {
	case modelTypeGeographic:
		geo.CRS = authorityCode(geographicCode, geo.Citation)
	case modelTypeProjected:
		geo.CRS = authorityCode(projectedCode, geo.Citation)
	}

	// GDAL nodata: ASCII-encoded number, NUL padded.
	if s, ok := dir.strTag(tagGDALNoData); ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			geo.NoData = &v
		}
	}

	return geo, nil
}

// geoAsciiValue extracts a substring from the GeoAsciiParams tag.
// Strings are pipe-terminated per the GeoTIFF specification.
func geoAsciiValue(ascii string, offset, count int) string {
	if offset < 0 || count <= 0 || offset >= len(ascii) {
		return ""
	}
	end := offset + count
	if end > len(ascii) {
		end = len(ascii)
	}
	return strings.TrimRight(ascii[offset:end], "|\x00 ")
}

// authorityCode renders a CS code as "AUTHORITY:CODE".
//
// EPSG owns codes below 32768. The 53000-54999 block holds the ESRI
// sphere-based projections (World Mollweide is ESRI:54009). User-defined
// systems (32767) fall back to recognising well-known names in the
// citation text, which is how GDAL round-trips ESRI codes it cannot
// encode directly.
func authorityCode(code uint64, citation string) string {
	switch {
	case code == 0:
		return ""
	case code == csUserDefined:
		if strings.Contains(citation, "Mollweide") {
			return "ESRI:54009"
		}
		return ""
	case code >= 53000 && code <= 54999:
		return fmt.Sprintf("ESRI:%d", code)
	default:
		return fmt.Sprintf("EPSG:%d", code)
	}
}

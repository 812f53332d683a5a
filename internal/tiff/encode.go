package tiff

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Compression selects the strip compression scheme for written files.
type Compression int

const (
	// CompressionNone writes raw sample bytes.
	CompressionNone Compression = iota
	// CompressionDeflate compresses each strip with zlib (TIFF code 8).
	CompressionDeflate
)

// EncodeOptions configures GeoTIFF writing.
type EncodeOptions struct {
	// DType selects the on-disk sample type: "uint8", "int16", "uint16",
	// "int32", "uint32", "float32" (default) or "float64". Values are
	// rounded and clamped when narrowing to integer types.
	DType string

	// Compression selects the strip compression scheme.
	Compression Compression

	// RowsPerStrip bounds strip height. 0 picks a size targeting strips
	// of roughly 64 KiB.
	RowsPerStrip int
}

// Write encodes a single-band GeoTIFF to a file.
func Write(path string, data []float64, width, height int, geo GeoInfo, opts EncodeOptions) error {
	buf, err := Encode(data, width, height, geo, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Encode encodes a single-band GeoTIFF into a byte slice.
//
// Output is classic little-endian TIFF with stripped layout. The GeoTIFF
// tags written (pixel scale, tiepoint, GeoKey directory, GDAL nodata) are
// the same set GDAL emits for north-up single-band rasters, so the files
// are readable by GDAL-based tooling.
func Encode(data []float64, width, height int, geo GeoInfo, opts EncodeOptions) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster dimensions %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("data length %d does not match %dx%d raster", len(data), width, height)
	}

	dt := opts.DType
	if dt == "" {
		dt = "float32"
	}
	bits, sfmt, err := dtypeSpec(dt)
	if err != nil {
		return nil, err
	}
	bps := bits / 8

	if geo.HasTransform && (geo.Transform[1] != 0 || geo.Transform[3] != 0) {
		return nil, &ErrUnsupported{Feature: "writing rotated affine transforms"}
	}

	rps := opts.RowsPerStrip
	if rps <= 0 {
		rps = (64 * 1024) / (width * bps)
		if rps < 1 {
			rps = 1
		}
	}
	if rps > height {
		rps = height
	}
	stripCount := (height + rps - 1) / rps

	// Encode sample data strip by strip.
	strips := make([][]byte, stripCount)
	for s := 0; s < stripCount; s++ {
		r0 := s * rps
		r1 := min(r0+rps, height)
		raw := make([]byte, (r1-r0)*width*bps)
		for r := r0; r < r1; r++ {
			for c := 0; c < width; c++ {
				off := ((r-r0)*width + c) * bps
				putSample(raw[off:off+bps], data[r*width+c], bits, sfmt)
			}
		}
		if opts.Compression == CompressionDeflate {
			var zbuf bytes.Buffer
			zw := zlib.NewWriter(&zbuf)
			if _, err := zw.Write(raw); err != nil {
				return nil, fmt.Errorf("deflate strip %d: %w", s, err)
			}
			if err := zw.Close(); err != nil {
				return nil, fmt.Errorf("deflate strip %d: %w", s, err)
			}
			strips[s] = zbuf.Bytes()
		} else {
			strips[s] = raw
		}
	}

	compCode := uint64(compressionNone)
	if opts.Compression == CompressionDeflate {
		compCode = compressionDeflate
	}

	// Assemble IFD entries in ascending tag order (a TIFF requirement).
	e := newEntryList(binary.LittleEndian)
	e.addUints(tagImageWidth, typeLong, []uint64{uint64(width)})
	e.addUints(tagImageLength, typeLong, []uint64{uint64(height)})
	e.addUints(tagBitsPerSample, typeShort, []uint64{uint64(bits)})
	e.addUints(tagCompression, typeShort, []uint64{compCode})
	e.addUints(tagPhotometric, typeShort, []uint64{1}) // BlackIsZero
	stripOffsetsEntry := e.addUints(tagStripOffsets, typeLong, make([]uint64, stripCount))
	e.addUints(tagSamplesPerPixel, typeShort, []uint64{1})
	e.addUints(tagRowsPerStrip, typeLong, []uint64{uint64(rps)})
	counts := make([]uint64, stripCount)
	for i, s := range strips {
		counts[i] = uint64(len(s))
	}
	e.addUints(tagStripByteCounts, typeLong, counts)
	e.addUints(tagPlanarConfig, typeShort, []uint64{1})
	e.addUints(tagSampleFormat, typeShort, []uint64{uint64(sfmt)})

	if geo.HasTransform {
		t := geo.Transform
		e.addDoubles(tagModelPixelScale, []float64{t[0], -t[4], 0})
		e.addDoubles(tagModelTiepoint, []float64{0, 0, 0, t[2], t[5], 0})
	}
	if keys, asciiParams, ok := buildGeoKeys(geo); ok {
		e.addUints(tagGeoKeyDirectory, typeShort, keys)
		if asciiParams != "" {
			e.addASCII(tagGeoAsciiParams, asciiParams)
		}
	}
	if geo.NoData != nil {
		e.addASCII(tagGDALNoData, formatNoData(*geo.NoData))
	}

	// Layout: header, IFD, external values, strip data.
	ifdSize := 2 + len(e.entries)*12 + 4
	extSize := 0
	for _, en := range e.entries {
		if len(en.raw) > 4 {
			extSize += len(en.raw)
			if extSize%2 == 1 {
				extSize++
			}
		}
	}
	dataBase := 8 + ifdSize + extSize

	// Strip offsets were placeholders until the layout was known.
	stripOffsets := make([]uint64, stripCount)
	pos := uint64(dataBase)
	for i, s := range strips {
		stripOffsets[i] = pos
		pos += uint64(len(s))
		if pos%2 == 1 {
			pos++
		}
	}
	e.setUints(stripOffsetsEntry, typeLong, stripOffsets)

	out := make([]byte, 0, int(pos))
	w := bytes.NewBuffer(out)
	le := binary.LittleEndian

	// Header.
	w.WriteString("II")
	binary.Write(w, le, uint16(42))
	binary.Write(w, le, uint32(8)) // IFD follows immediately

	// IFD.
	binary.Write(w, le, uint16(len(e.entries)))
	extOffset := 8 + ifdSize
	for _, en := range e.entries {
		binary.Write(w, le, en.tag)
		binary.Write(w, le, uint16(en.ftype))
		binary.Write(w, le, en.count)
		if len(en.raw) <= 4 {
			var inline [4]byte
			copy(inline[:], en.raw)
			w.Write(inline[:])
		} else {
			binary.Write(w, le, uint32(extOffset))
			extOffset += len(en.raw)
			if extOffset%2 == 1 {
				extOffset++
			}
		}
	}
	binary.Write(w, le, uint32(0)) // no next IFD

	// External values, even-aligned.
	for _, en := range e.entries {
		if len(en.raw) > 4 {
			w.Write(en.raw)
			if w.Len()%2 == 1 {
				w.WriteByte(0)
			}
		}
	}

	// Strip data.
	for _, s := range strips {
		w.Write(s)
		if w.Len()%2 == 1 {
			w.WriteByte(0)
		}
	}

	return w.Bytes(), nil
}

// entryList accumulates IFD entries with little-endian value encoding.
type entryList struct {
	order   binary.ByteOrder
	entries []*writeEntry
}

type writeEntry struct {
	tag   uint16
	ftype fieldType
	count uint32
	raw   []byte
}

func newEntryList(order binary.ByteOrder) *entryList {
	return &entryList{order: order}
}

// addUints appends an unsigned integer entry and returns its index so the
// value can be patched later (used for strip offsets).
func (e *entryList) addUints(tag uint16, ftype fieldType, vals []uint64) int {
	en := &writeEntry{tag: tag, ftype: ftype, count: uint32(len(vals))}
	en.raw = encodeUints(e.order, ftype, vals)
	e.entries = append(e.entries, en)
	return len(e.entries) - 1
}

func (e *entryList) setUints(idx int, ftype fieldType, vals []uint64) {
	e.entries[idx].raw = encodeUints(e.order, ftype, vals)
}

func (e *entryList) addDoubles(tag uint16, vals []float64) {
	en := &writeEntry{tag: tag, ftype: typeDouble, count: uint32(len(vals))}
	raw := make([]byte, 8*len(vals))
	for i, v := range vals {
		e.order.PutUint64(raw[i*8:], math.Float64bits(v))
	}
	en.raw = raw
	e.entries = append(e.entries, en)
}

func (e *entryList) addASCII(tag uint16, s string) {
	raw := append([]byte(s), 0)
	e.entries = append(e.entries, &writeEntry{
		tag: tag, ftype: typeASCII, count: uint32(len(raw)), raw: raw,
	})
}

func encodeUints(order binary.ByteOrder, ftype fieldType, vals []uint64) []byte {
	size := typeSizes[ftype]
	raw := make([]byte, size*len(vals))
	for i, v := range vals {
		switch ftype {
		case typeByte:
			raw[i] = byte(v)
		case typeShort:
			order.PutUint16(raw[i*2:], uint16(v))
		case typeLong:
			order.PutUint32(raw[i*4:], uint32(v))
		}
	}
	return raw
}

// buildGeoKeys assembles the GeoKey directory for the CRS in geo.
// Returns ok=false when there is nothing to write.
func buildGeoKeys(geo GeoInfo) (keys []uint64, ascii string, ok bool) {
	authority, code := splitCRS(geo.CRS)
	if code == 0 {
		return nil, "", false
	}

	rasterType := uint64(rasterTypePixelIsArea)
	if geo.PixelIsPoint {
		rasterType = rasterTypePixelIsPoint
	}

	type geoKey struct{ id, loc, count, value uint64 }
	var entries []geoKey

	citation := geo.Citation
	if citation == "" && authority == "ESRI" && code == 54009 {
		citation = "World_Mollweide"
	}

	if authority == "EPSG" && code < 5000 {
		// Geographic CS (EPSG geographic codes live below 5000).
		entries = []geoKey{
			{keyModelType, 0, 1, modelTypeGeographic},
			{keyRasterType, 0, 1, rasterType},
			{keyGeographicType, 0, 1, uint64(code)},
		}
	} else {
		entries = []geoKey{
			{keyModelType, 0, 1, modelTypeProjected},
			{keyRasterType, 0, 1, rasterType},
			{keyProjectedCS, 0, 1, uint64(code)},
		}
	}

	if citation != "" {
		ascii = citation + "|"
		entries = append(entries, geoKey{keyCitation, tagGeoAsciiParams, uint64(len(ascii)), 0})
	}

	// Directory header: version 1, revision 1.0, key count.
	keys = []uint64{1, 1, 0, uint64(len(entries))}
	for _, k := range entries {
		keys = append(keys, k.id, k.loc, k.count, k.value)
	}
	return keys, ascii, true
}

// splitCRS parses "AUTHORITY:CODE" into its parts. Returns code 0 when the
// string is empty or malformed.
func splitCRS(crs string) (string, int) {
	parts := strings.SplitN(crs, ":", 2)
	if len(parts) != 2 {
		return "", 0
	}
	code, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", 0
	}
	return strings.ToUpper(strings.TrimSpace(parts[0])), code
}

// formatNoData renders a nodata value the way GDAL does: integral values
// without a decimal point.
func formatNoData(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// dtypeSpec maps a dtype name to bits-per-sample and sample format.
func dtypeSpec(dt string) (bits, sfmt int, err error) {
	switch dt {
	case "uint8":
		return 8, sampleFormatUint, nil
	case "int16":
		return 16, sampleFormatInt, nil
	case "uint16":
		return 16, sampleFormatUint, nil
	case "int32":
		return 32, sampleFormatInt, nil
	case "uint32":
		return 32, sampleFormatUint, nil
	case "float32":
		return 32, sampleFormatFloat, nil
	case "float64":
		return 64, sampleFormatFloat, nil
	default:
		return 0, 0, fmt.Errorf("unknown dtype %q", dt)
	}
}

// putSample encodes one float64 sample into its on-disk representation,
// rounding and clamping when narrowing to integer types.
func putSample(b []byte, v float64, bits, sfmt int) {
	le := binary.LittleEndian
	switch sfmt {
	case sampleFormatFloat:
		if bits == 32 {
			le.PutUint32(b, math.Float32bits(float32(v)))
		} else {
			le.PutUint64(b, math.Float64bits(v))
		}
	case sampleFormatInt:
		iv := int64(math.Round(v))
		switch bits {
		case 16:
			iv = clampInt(iv, math.MinInt16, math.MaxInt16)
			le.PutUint16(b, uint16(int16(iv)))
		case 32:
			iv = clampInt(iv, math.MinInt32, math.MaxInt32)
			le.PutUint32(b, uint32(int32(iv)))
		}
	default:
		iv := int64(math.Round(v))
		switch bits {
		case 8:
			iv = clampInt(iv, 0, math.MaxUint8)
			b[0] = byte(iv)
		case 16:
			iv = clampInt(iv, 0, math.MaxUint16)
			le.PutUint16(b, uint16(iv))
		case 32:
			iv = clampInt(iv, 0, math.MaxUint32)
			le.PutUint32(b, uint32(iv))
		}
	}
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package tiff reads and writes GeoTIFF raster files.
//
// The package implements the subset of TIFF 6.0 and OGC GeoTIFF 1.1 needed
// for single-band geospatial grids: classic (non-Big) TIFF in either byte
// order, stripped or tiled layout, None/Deflate/PackBits compression, and
// the GeoTIFF geo-referencing tags (pixel scale, tiepoint, model
// transformation, GeoKey directory) plus the GDAL nodata extension.
//
// It is an internal package; the public API lives in pkg/raster.
package tiff

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
)

// maxIFDs bounds directory chain walking so a cyclic next-IFD pointer
// cannot loop forever.
const maxIFDs = 512

// File is a parsed TIFF file. Each image file directory (IFD) is exposed
// as one band; multi-directory files are treated as multi-layer rasters.
type File struct {
	data  []byte
	order binary.ByteOrder
	ifds  []*ifd
	geo   GeoInfo
}

// ifd is a single image file directory: a tag→field map plus the byte
// order needed to interpret field payloads.
type ifd struct {
	fields map[uint16]field
	order  binary.ByteOrder
}

// field is one decoded IFD entry. raw holds the value bytes with any
// external (offset-addressed) payload already resolved.
type field struct {
	tag   uint16
	ftype fieldType
	count uint32
	raw   []byte
	order binary.ByteOrder
}

// Open reads and parses a TIFF file from disk.
//
// The whole file is read into memory. Population-grid tiles are tens of
// megabytes at most, and keeping the bytes resident makes windowed reads
// simple offset arithmetic.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses TIFF structure from a byte slice.
func Parse(data []byte) (*File, error) {
	if len(data) < 8 {
		return nil, &ErrNotTIFF{Reason: "file shorter than 8-byte header"}
	}

	// Byte order mark: "II" little endian, "MM" big endian.
	// TIFF 6.0 §2 (Image File Header)
	var order binary.ByteOrder
	switch {
	case data[0] == 'I' && data[1] == 'I':
		order = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, &ErrNotTIFF{Reason: fmt.Sprintf("bad byte order mark %q", data[0:2])}
	}

	magic := order.Uint16(data[2:4])
	if magic == 43 {
		return nil, &ErrUnsupported{Feature: "BigTIFF"}
	}
	if magic != 42 {
		return nil, &ErrNotTIFF{Reason: fmt.Sprintf("bad magic number %d", magic)}
	}

	f := &File{data: data, order: order}

	// Walk the IFD chain. Each directory describes one raster layer.
	offset := int64(order.Uint32(data[4:8]))
	seen := make(map[int64]bool)
	for offset != 0 {
		if seen[offset] || len(f.ifds) >= maxIFDs {
			return nil, &ErrCorrupt{Reason: "IFD chain loops"}
		}
		seen[offset] = true

		dir, next, err := parseIFD(data, offset, order)
		if err != nil {
			return nil, err
		}
		f.ifds = append(f.ifds, dir)
		offset = next
	}

	if len(f.ifds) == 0 {
		return nil, &ErrCorrupt{Reason: "no image file directories"}
	}

	geo, err := parseGeo(f.ifds[0])
	if err != nil {
		return nil, err
	}
	f.geo = geo

	return f, nil
}

// parseIFD parses one directory at the given offset.
// Layout per TIFF 6.0 §2: entry count (2 bytes), 12-byte entries, next
// IFD offset (4 bytes).
func parseIFD(data []byte, offset int64, order binary.ByteOrder) (*ifd, int64, error) {
	if offset < 0 || offset+2 > int64(len(data)) {
		return nil, 0, &ErrCorrupt{Reason: fmt.Sprintf("IFD offset %d past end of file", offset)}
	}
	count := int(order.Uint16(data[offset : offset+2]))
	end := offset + 2 + int64(count)*12 + 4
	if end > int64(len(data)) {
		return nil, 0, &ErrCorrupt{Reason: fmt.Sprintf("IFD at %d truncated (%d entries)", offset, count)}
	}

	dir := &ifd{
		fields: make(map[uint16]field, count),
		order:  order,
	}

	for i := 0; i < count; i++ {
		entry := data[offset+2+int64(i)*12 : offset+2+int64(i+1)*12]
		fld, err := parseEntry(data, entry, order)
		if err != nil {
			return nil, 0, err
		}
		if fld.ftype == 0 {
			// Unknown field type: skip per TIFF 6.0 §2 reader requirements.
			continue
		}
		dir.fields[fld.tag] = fld
	}

	next := int64(order.Uint32(data[end-4 : end]))
	return dir, next, nil
}

// parseEntry decodes a single 12-byte IFD entry.
// Values up to 4 bytes are stored inline; larger values live at an
// absolute file offset (TIFF 6.0 §2, Value/Offset).
func parseEntry(data, entry []byte, order binary.ByteOrder) (field, error) {
	fld := field{
		tag:   order.Uint16(entry[0:2]),
		ftype: fieldType(order.Uint16(entry[2:4])),
		count: order.Uint32(entry[4:8]),
		order: order,
	}

	size, ok := typeSizes[fld.ftype]
	if !ok {
		// Unknown type: signal caller to skip by zeroing the type.
		fld.ftype = 0
		return fld, nil
	}

	total := int64(size) * int64(fld.count)
	if total <= 4 {
		fld.raw = entry[8 : 8+total]
		return fld, nil
	}

	valOffset := int64(order.Uint32(entry[8:12]))
	if valOffset < 0 || valOffset+total > int64(len(data)) {
		return field{}, &ErrCorrupt{
			Reason: fmt.Sprintf("tag %d value at %d (%d bytes) past end of file", fld.tag, valOffset, total),
		}
	}
	fld.raw = data[valOffset : valOffset+total]
	return fld, nil
}

// uints decodes the field as a slice of unsigned integers.
// Signed and rational types are not handled here; callers use floats for those.
func (f field) uints() []uint64 {
	size := typeSizes[f.ftype]
	out := make([]uint64, f.count)
	for i := range out {
		v := f.raw[i*size : (i+1)*size]
		switch f.ftype {
		case typeByte, typeUndefined:
			out[i] = uint64(v[0])
		case typeShort:
			out[i] = uint64(f.order.Uint16(v))
		case typeLong:
			out[i] = uint64(f.order.Uint32(v))
		}
	}
	return out
}

// floats decodes the field as a slice of float64, accepting any numeric
// field type. Used for the GeoTIFF double tags and as a catch-all.
func (f field) floats() []float64 {
	size := typeSizes[f.ftype]
	out := make([]float64, f.count)
	for i := range out {
		v := f.raw[i*size : (i+1)*size]
		switch f.ftype {
		case typeByte, typeUndefined:
			out[i] = float64(v[0])
		case typeSByte:
			out[i] = float64(int8(v[0]))
		case typeShort:
			out[i] = float64(f.order.Uint16(v))
		case typeSShort:
			out[i] = float64(int16(f.order.Uint16(v)))
		case typeLong:
			out[i] = float64(f.order.Uint32(v))
		case typeSLong:
			out[i] = float64(int32(f.order.Uint32(v)))
		case typeRational:
			num := f.order.Uint32(v[0:4])
			den := f.order.Uint32(v[4:8])
			if den != 0 {
				out[i] = float64(num) / float64(den)
			}
		case typeSRational:
			num := int32(f.order.Uint32(v[0:4]))
			den := int32(f.order.Uint32(v[4:8]))
			if den != 0 {
				out[i] = float64(num) / float64(den)
			}
		case typeFloat:
			out[i] = float64(math.Float32frombits(f.order.Uint32(v)))
		case typeDouble:
			out[i] = math.Float64frombits(f.order.Uint64(v))
		}
	}
	return out
}

// str decodes the field as a NUL-terminated ASCII string.
func (f field) str() string {
	return strings.TrimRight(string(f.raw), "\x00")
}

// uintTag returns the first value of an unsigned integer tag.
func (d *ifd) uintTag(tag uint16) (uint64, bool) {
	fld, ok := d.fields[tag]
	if !ok || fld.count == 0 {
		return 0, false
	}
	switch fld.ftype {
	case typeByte, typeShort, typeLong, typeUndefined:
		return fld.uints()[0], true
	}
	return 0, false
}

// uintTagDefault returns the first value of an unsigned integer tag, or
// def when the tag is absent.
func (d *ifd) uintTagDefault(tag uint16, def uint64) uint64 {
	if v, ok := d.uintTag(tag); ok {
		return v
	}
	return def
}

// uintsTag returns all values of an unsigned integer tag.
func (d *ifd) uintsTag(tag uint16) ([]uint64, bool) {
	fld, ok := d.fields[tag]
	if !ok {
		return nil, false
	}
	switch fld.ftype {
	case typeByte, typeShort, typeLong, typeUndefined:
		return fld.uints(), true
	}
	return nil, false
}

// floatsTag returns all values of a numeric tag as float64.
func (d *ifd) floatsTag(tag uint16) ([]float64, bool) {
	fld, ok := d.fields[tag]
	if !ok {
		return nil, false
	}
	return fld.floats(), true
}

// strTag returns an ASCII tag value.
func (d *ifd) strTag(tag uint16) (string, bool) {
	fld, ok := d.fields[tag]
	if !ok || fld.ftype != typeASCII {
		return "", false
	}
	return fld.str(), true
}

// BandCount returns the number of raster layers (IFDs) in the file.
func (f *File) BandCount() int {
	return len(f.ifds)
}

// Width returns the pixel width of the first layer.
func (f *File) Width() int {
	return int(f.ifds[0].uintTagDefault(tagImageWidth, 0))
}

// Height returns the pixel height of the first layer.
func (f *File) Height() int {
	return int(f.ifds[0].uintTagDefault(tagImageLength, 0))
}

// Geo returns the geo-referencing metadata of the first layer.
func (f *File) Geo() GeoInfo {
	return f.geo
}

// DType returns the sample data type of the first layer
// ("uint8", "int16", "uint16", "int32", "uint32", "float32" or "float64").
func (f *File) DType() string {
	bits := f.ifds[0].uintTagDefault(tagBitsPerSample, 8)
	sfmt := f.ifds[0].uintTagDefault(tagSampleFormat, sampleFormatUint)
	return dtypeName(int(bits), int(sfmt))
}

// dtypeName maps bits-per-sample and sample format to a dtype name.
func dtypeName(bits, sfmt int) string {
	switch sfmt {
	case sampleFormatInt:
		return fmt.Sprintf("int%d", bits)
	case sampleFormatFloat:
		return fmt.Sprintf("float%d", bits)
	default:
		return fmt.Sprintf("uint%d", bits)
	}
}

// band returns the IFD for a 1-based band index.
func (f *File) band(b int) (*ifd, error) {
	if b < 1 || b > len(f.ifds) {
		return nil, &ErrBadBand{Band: b, Count: len(f.ifds)}
	}
	return f.ifds[b-1], nil
}

package tiff

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"math"
)

// segmentLayout describes how a band's samples are organised on disk:
// either horizontal strips or fixed-size tiles.
type segmentLayout struct {
	width, height int // raster dimensions
	segW, segH    int // segment dimensions (strip: width × rowsPerStrip)
	tiled         bool
	offsets       []uint64
	byteCounts    []uint64

	bits        int // 8, 16, 32 or 64
	sampleFmt   int
	compression int
	predictor   int
}

// ReadBand decodes a full band (1-based) into a row-major float64 slice.
func (f *File) ReadBand(band int) ([]float64, error) {
	return f.ReadWindow(band, 0, 0, f.Width(), f.Height())
}

// ReadWindow decodes the rectangular region [col, col+width) × [row, row+height)
// of a band into a row-major float64 slice.
//
// Only segments (strips or tiles) intersecting the window are decompressed,
// so windowed reads of large compressed rasters stay cheap.
func (f *File) ReadWindow(band, col, row, width, height int) ([]float64, error) {
	dir, err := f.band(band)
	if err != nil {
		return nil, err
	}

	layout, err := f.bandLayout(dir)
	if err != nil {
		return nil, err
	}

	if width <= 0 || height <= 0 {
		return nil, &ErrBadWindow{Col: col, Row: row, Width: width, Height: height,
			Reason: "window dimensions must be positive"}
	}
	if col < 0 || row < 0 || col+width > layout.width || row+height > layout.height {
		return nil, &ErrBadWindow{Col: col, Row: row, Width: width, Height: height,
			Reason: fmt.Sprintf("outside raster extent %dx%d", layout.width, layout.height)}
	}

	out := make([]float64, width*height)

	// Segment grid walk: only segments overlapping the window are touched.
	segsAcross := (layout.width + layout.segW - 1) / layout.segW
	segCol0 := col / layout.segW
	segCol1 := (col + width - 1) / layout.segW
	segRow0 := row / layout.segH
	segRow1 := (row + height - 1) / layout.segH

	for sr := segRow0; sr <= segRow1; sr++ {
		for sc := segCol0; sc <= segCol1; sc++ {
			idx := sr*segsAcross + sc
			if idx >= len(layout.offsets) {
				return nil, &ErrCorrupt{Reason: fmt.Sprintf("segment %d has no offset entry", idx)}
			}
			raw, err := f.segmentBytes(layout, idx)
			if err != nil {
				return nil, err
			}

			// Segment origin in raster coordinates.
			originX := sc * layout.segW
			originY := sr * layout.segH

			// Intersection of segment and window, in raster coordinates.
			x0 := max(col, originX)
			x1 := min(col+width, originX+layout.segW)
			y0 := max(row, originY)
			y1 := min(row+height, originY+layout.segH)

			bps := layout.bits / 8
			for y := y0; y < y1; y++ {
				segRowOff := ((y - originY) * layout.segW) * bps
				for x := x0; x < x1; x++ {
					off := segRowOff + (x-originX)*bps
					if off+bps > len(raw) {
						return nil, &ErrCorrupt{
							Reason: fmt.Sprintf("segment %d shorter than its pixel extent", idx),
						}
					}
					out[(y-row)*width+(x-col)] = f.sampleToFloat(raw[off:off+bps], layout.bits, layout.sampleFmt)
				}
			}
		}
	}

	return out, nil
}

// bandLayout validates band structure tags and assembles the segment layout.
func (f *File) bandLayout(dir *ifd) (*segmentLayout, error) {
	spp := dir.uintTagDefault(tagSamplesPerPixel, 1)
	if spp != 1 {
		return nil, &ErrUnsupported{Feature: fmt.Sprintf("%d samples per pixel (expected single-band layers)", spp)}
	}
	if planar := dir.uintTagDefault(tagPlanarConfig, 1); planar != 1 {
		return nil, &ErrUnsupported{Feature: fmt.Sprintf("planar configuration %d", planar)}
	}

	bits := int(dir.uintTagDefault(tagBitsPerSample, 8))
	switch bits {
	case 8, 16, 32, 64:
	default:
		return nil, &ErrUnsupported{Feature: fmt.Sprintf("%d bits per sample", bits)}
	}

	sfmt := int(dir.uintTagDefault(tagSampleFormat, sampleFormatUint))
	if sfmt != sampleFormatUint && sfmt != sampleFormatInt && sfmt != sampleFormatFloat {
		return nil, &ErrUnsupported{Feature: fmt.Sprintf("sample format %d", sfmt)}
	}

	comp := int(dir.uintTagDefault(tagCompression, compressionNone))
	switch comp {
	case compressionNone, compressionDeflate, compressionDeflateLegacy, compressionPackBits:
	case compressionLZW:
		return nil, &ErrUnsupported{Feature: "LZW compression"}
	case compressionJPEG:
		return nil, &ErrUnsupported{Feature: "JPEG compression"}
	default:
		return nil, &ErrUnsupported{Feature: fmt.Sprintf("compression scheme %d", comp)}
	}

	layout := &segmentLayout{
		width:       int(dir.uintTagDefault(tagImageWidth, 0)),
		height:      int(dir.uintTagDefault(tagImageLength, 0)),
		bits:        bits,
		sampleFmt:   sfmt,
		compression: comp,
		predictor:   int(dir.uintTagDefault(tagPredictor, 1)),
	}
	if layout.width <= 0 || layout.height <= 0 {
		return nil, &ErrCorrupt{Reason: "missing or zero image dimensions"}
	}

	if layout.predictor == 3 {
		return nil, &ErrUnsupported{Feature: "floating point predictor"}
	}
	if layout.predictor != 1 && layout.predictor != 2 {
		return nil, &ErrUnsupported{Feature: fmt.Sprintf("predictor %d", layout.predictor)}
	}

	if offsets, ok := dir.uintsTag(tagTileOffsets); ok {
		// Tiled layout (TIFF 6.0 §15).
		counts, ok := dir.uintsTag(tagTileByteCounts)
		if !ok || len(counts) != len(offsets) {
			return nil, &ErrCorrupt{Reason: "tile offsets and byte counts disagree"}
		}
		layout.tiled = true
		layout.segW = int(dir.uintTagDefault(tagTileWidth, 0))
		layout.segH = int(dir.uintTagDefault(tagTileLength, 0))
		if layout.segW <= 0 || layout.segH <= 0 {
			return nil, &ErrCorrupt{Reason: "tiled layer missing tile dimensions"}
		}
		layout.offsets = offsets
		layout.byteCounts = counts
		return layout, nil
	}

	// Stripped layout. RowsPerStrip defaults to the full image
	// (a single strip) per TIFF 6.0 §3.
	offsets, ok := dir.uintsTag(tagStripOffsets)
	if !ok {
		return nil, &ErrCorrupt{Reason: "layer has neither strip nor tile offsets"}
	}
	counts, ok := dir.uintsTag(tagStripByteCounts)
	if !ok || len(counts) != len(offsets) {
		return nil, &ErrCorrupt{Reason: "strip offsets and byte counts disagree"}
	}
	rps := int(dir.uintTagDefault(tagRowsPerStrip, uint64(layout.height)))
	if rps <= 0 || rps > layout.height {
		rps = layout.height
	}
	layout.segW = layout.width
	layout.segH = rps
	layout.offsets = offsets
	layout.byteCounts = counts
	return layout, nil
}

// segmentBytes decompresses one segment and applies the predictor.
//
// The final strip of a stripped layer may cover fewer rows than segH; the
// returned slice is simply shorter in that case and the caller's bounds
// checks handle it.
func (f *File) segmentBytes(layout *segmentLayout, idx int) ([]byte, error) {
	off := int64(layout.offsets[idx])
	count := int64(layout.byteCounts[idx])
	if off < 0 || count < 0 || off+count > int64(len(f.data)) {
		return nil, &ErrCorrupt{Reason: fmt.Sprintf("segment %d extends past end of file", idx)}
	}
	raw := f.data[off : off+count]

	var buf []byte
	switch layout.compression {
	case compressionNone:
		buf = raw
	case compressionDeflate, compressionDeflateLegacy:
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, &ErrCorrupt{Reason: fmt.Sprintf("segment %d: bad zlib stream: %v", idx, err)}
		}
		defer zr.Close()
		buf, err = io.ReadAll(zr)
		if err != nil {
			return nil, &ErrCorrupt{Reason: fmt.Sprintf("segment %d: zlib decode: %v", idx, err)}
		}
	case compressionPackBits:
		var err error
		buf, err = unpackBits(raw)
		if err != nil {
			return nil, &ErrCorrupt{Reason: fmt.Sprintf("segment %d: %v", idx, err)}
		}
	}

	if layout.predictor == 2 {
		// Horizontal differencing predictor is defined for integer data
		// only (TIFF 6.0 §14).
		if layout.sampleFmt == sampleFormatFloat {
			return nil, &ErrUnsupported{Feature: "horizontal predictor on floating point samples"}
		}
		undoPredictor(buf, layout.segW, layout.bits/8, f.littleEndian())
	}

	return buf, nil
}

// unpackBits decodes Apple PackBits run-length encoding (TIFF 6.0 §9).
func unpackBits(src []byte) ([]byte, error) {
	var dst []byte
	i := 0
	for i < len(src) {
		n := int8(src[i])
		i++
		switch {
		case n >= 0:
			// Literal run of n+1 bytes.
			end := i + int(n) + 1
			if end > len(src) {
				return nil, fmt.Errorf("packbits literal run past end of data")
			}
			dst = append(dst, src[i:end]...)
			i = end
		case n == -128:
			// No-op per the PackBits specification.
		default:
			// Repeat next byte 1-n times.
			if i >= len(src) {
				return nil, fmt.Errorf("packbits repeat run past end of data")
			}
			for j := 0; j < 1-int(n); j++ {
				dst = append(dst, src[i])
			}
			i++
		}
	}
	return dst, nil
}

// undoPredictor reverses horizontal differencing in place, row by row.
// Arithmetic is modular in the sample width, matching how the differences
// were produced.
func undoPredictor(buf []byte, rowSamples, bytesPerSample int, littleEndian bool) {
	rowBytes := rowSamples * bytesPerSample
	if rowBytes == 0 {
		return
	}
	for rowStart := 0; rowStart+rowBytes <= len(buf); rowStart += rowBytes {
		row := buf[rowStart : rowStart+rowBytes]
		switch bytesPerSample {
		case 1:
			for i := 1; i < len(row); i++ {
				row[i] += row[i-1]
			}
		case 2:
			for i := 1; i < rowSamples; i++ {
				prev := readUint(row[(i-1)*2:], 2, littleEndian)
				cur := readUint(row[i*2:], 2, littleEndian)
				writeUint(row[i*2:], cur+prev, 2, littleEndian)
			}
		case 4:
			for i := 1; i < rowSamples; i++ {
				prev := readUint(row[(i-1)*4:], 4, littleEndian)
				cur := readUint(row[i*4:], 4, littleEndian)
				writeUint(row[i*4:], cur+prev, 4, littleEndian)
			}
		}
	}
}

func readUint(b []byte, size int, littleEndian bool) uint64 {
	var v uint64
	if littleEndian {
		for i := size - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
	} else {
		for i := 0; i < size; i++ {
			v = v<<8 | uint64(b[i])
		}
	}
	return v
}

func writeUint(b []byte, v uint64, size int, littleEndian bool) {
	if littleEndian {
		for i := 0; i < size; i++ {
			b[i] = byte(v >> (8 * i))
		}
	} else {
		for i := 0; i < size; i++ {
			b[size-1-i] = byte(v >> (8 * i))
		}
	}
}

// littleEndian reports whether the file uses "II" byte order.
func (f *File) littleEndian() bool {
	return f.data[0] == 'I'
}

// sampleToFloat converts one raw sample to float64.
func (f *File) sampleToFloat(b []byte, bits, sfmt int) float64 {
	switch bits {
	case 8:
		if sfmt == sampleFormatInt {
			return float64(int8(b[0]))
		}
		return float64(b[0])
	case 16:
		v := f.order.Uint16(b)
		if sfmt == sampleFormatInt {
			return float64(int16(v))
		}
		return float64(v)
	case 32:
		v := f.order.Uint32(b)
		switch sfmt {
		case sampleFormatInt:
			return float64(int32(v))
		case sampleFormatFloat:
			return float64(math.Float32frombits(v))
		default:
			return float64(v)
		}
	case 64:
		v := f.order.Uint64(b)
		if sfmt == sampleFormatFloat {
			return math.Float64frombits(v)
		}
		if sfmt == sampleFormatInt {
			return float64(int64(v))
		}
		return float64(v)
	}
	return 0
}

package tiff

import (
	"fmt"
)

// ErrNotTIFF indicates the file does not start with a valid TIFF header
type ErrNotTIFF struct {
	Reason string
}

func (e *ErrNotTIFF) Error() string {
	return fmt.Sprintf("not a TIFF file: %s", e.Reason)
}

// ErrUnsupported indicates a valid TIFF construct this reader does not handle
// (BigTIFF, LZW/JPEG compression, multi-sample pixels, etc.)
type ErrUnsupported struct {
	Feature string
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("unsupported TIFF feature: %s", e.Feature)
}

// ErrCorrupt indicates structural damage (offsets past EOF, truncated
// directories, byte counts that disagree with the image dimensions)
type ErrCorrupt struct {
	Reason string
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("corrupt TIFF structure: %s", e.Reason)
}

// ErrBadBand indicates a band index outside the dataset's band range
type ErrBadBand struct {
	Band  int
	Count int
}

func (e *ErrBadBand) Error() string {
	return fmt.Sprintf("band %d out of range: dataset has %d band(s), bands are 1-based", e.Band, e.Count)
}

// ErrBadWindow indicates a read window outside the raster extent
type ErrBadWindow struct {
	Col, Row      int
	Width, Height int
	Reason        string
}

func (e *ErrBadWindow) Error() string {
	return fmt.Sprintf("invalid read window col=%d row=%d width=%d height=%d: %s",
		e.Col, e.Row, e.Width, e.Height, e.Reason)
}

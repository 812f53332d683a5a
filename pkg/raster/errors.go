package raster

import (
	"fmt"
)

// ErrDisjointBounds indicates a bounding box that does not overlap the
// raster extent, so no read window can be computed.
type ErrDisjointBounds struct {
	Bounds Bounds
	Extent Bounds
}

func (e *ErrDisjointBounds) Error() string {
	return fmt.Sprintf("bounds [%g,%g,%g,%g] do not intersect raster extent [%g,%g,%g,%g]",
		e.Bounds.MinX, e.Bounds.MinY, e.Bounds.MaxX, e.Bounds.MaxY,
		e.Extent.MinX, e.Extent.MinY, e.Extent.MaxX, e.Extent.MaxY)
}

// ErrNotGeoreferenced indicates a file without an affine transform when
// geo-referencing was required.
type ErrNotGeoreferenced struct {
	Path string
}

func (e *ErrNotGeoreferenced) Error() string {
	return fmt.Sprintf("%s has no geo-referencing (affine transform missing)", e.Path)
}

// ErrUnknownCRS indicates a geo-referenced file whose coordinate reference
// system could not be resolved to an authority code when one was required.
type ErrUnknownCRS struct {
	Path string
}

func (e *ErrUnknownCRS) Error() string {
	return fmt.Sprintf("%s has no recognisable coordinate reference system", e.Path)
}

// ErrSingularTransform indicates an affine transform with zero determinant,
// which cannot be inverted to map coordinates back to pixels.
type ErrSingularTransform struct {
	Transform Transform
}

func (e *ErrSingularTransform) Error() string {
	return fmt.Sprintf("affine transform %v is singular and cannot be inverted", e.Transform.Array())
}

// ErrGridShape indicates grid data whose length disagrees with its
// declared dimensions.
type ErrGridShape struct {
	Length        int
	Width, Height int
}

func (e *ErrGridShape) Error() string {
	return fmt.Sprintf("grid data length %d does not match %dx%d", e.Length, e.Width, e.Height)
}

// ErrProfileMismatch indicates a save profile whose dimensions disagree
// with the grid being saved.
type ErrProfileMismatch struct {
	Field         string
	Profile, Grid int
}

func (e *ErrProfileMismatch) Error() string {
	return fmt.Sprintf("profile %s %d does not match grid %s %d", e.Field, e.Profile, e.Field, e.Grid)
}

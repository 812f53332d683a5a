package raster

// OpenOptions configures dataset opening.
type OpenOptions struct {
	// RequireGeoreferencing causes Open to fail when the file carries no
	// affine transform. Default is true - the toolkit exists to work
	// with geo-referenced grids, and a missing transform usually means
	// the wrong file.
	//
	// Set to false to inspect plain TIFFs; Bounds() then reports pixel
	// coordinates.
	RequireGeoreferencing bool

	// RequireKnownCRS causes Open to fail when the file's coordinate
	// system cannot be resolved to an authority code. Default is false -
	// metadata inspection and pixel reads work fine without one, only
	// reprojection needs it.
	RequireKnownCRS bool
}

// DefaultOpenOptions returns default options.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		RequireGeoreferencing: true,
		RequireKnownCRS:       false,
	}
}

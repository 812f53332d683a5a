package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/terragrid/rastertool/pkg/raster"
)

func safeOpen(path string) (*raster.Dataset, error) {
	ds, err := raster.Open(path)
	if err != nil {
		// Plain TIFFs without geo tags get a typed error
		var notGeo *raster.ErrNotGeoreferenced
		if errors.As(err, &notGeo) {
			log.Printf("%s has no geo-referencing; retrying in pixel space", path)
			return raster.OpenWithOptions(path, raster.OpenOptions{})
		}
		return nil, err
	}

	// Sanity-check the georeferencing
	b := ds.Bounds()
	if b.Width() == 0 || b.Height() == 0 {
		log.Printf("Warning: %s has degenerate bounds", path)
	}
	return ds, nil
}

func main() {
	ds, err := safeOpen("GHS_POP_E2020_R3_C18.tif")
	if err != nil {
		log.Fatal(err)
	}
	defer ds.Close()
	fmt.Printf("Opened %s: %dx%d\n", ds.Path(), ds.Width(), ds.Height())

	// A bounding box that misses the raster entirely
	_, _, err = ds.WindowFromBounds(raster.Bounds{
		MinX: 1e9, MinY: 1e9, MaxX: 2e9, MaxY: 2e9,
	})
	var disjoint *raster.ErrDisjointBounds
	if errors.As(err, &disjoint) {
		log.Printf("Expected error: %v", disjoint)
	}
}

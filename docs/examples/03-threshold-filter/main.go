package main

import (
	"fmt"
	"log"

	"github.com/terragrid/rastertool/pkg/raster"
)

func main() {
	ds, err := raster.Open("cropped.tif")
	if err != nil {
		log.Fatal(err)
	}
	defer ds.Close()

	grid, err := ds.Read(1)
	if err != nil {
		log.Fatal(err)
	}

	before := grid.Stats()
	fmt.Printf("Before: %d valid cells, range [%.0f, %.0f]\n",
		before.ValidCount, before.Min, before.Max)

	// Keep only densely populated cells; the rest become nodata
	filtered := grid.Threshold(5000)

	after := filtered.Stats()
	fmt.Printf("After:  %d valid cells, range [%.0f, %.0f]\n",
		after.ValidCount, after.Min, after.Max)

	if err := raster.Save("filtered.tif", filtered, ds.Profile()); err != nil {
		log.Fatal(err)
	}

	// Re-open to confirm the write round-trips
	check, err := raster.Open("filtered.tif")
	if err != nil {
		log.Fatal(err)
	}
	defer check.Close()
	fmt.Printf("Verified: %dx%d, CRS %s\n", check.Width(), check.Height(), check.CRS())
}

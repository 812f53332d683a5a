package main

import (
	"fmt"
	"log"
	"os"

	"github.com/terragrid/rastertool/pkg/raster"
)

func main() {
	ds, err := raster.Open("filtered.tif")
	if err != nil {
		log.Fatal(err)
	}
	defer ds.Close()

	grid, err := ds.Read(1)
	if err != nil {
		log.Fatal(err)
	}

	// Trace contiguous equal-valued regions into polygons
	fc := raster.Vectorize(grid, ds.Transform())
	fmt.Printf("Vectorized features: %d\n", len(fc.Features))

	// Build an R-tree index for viewport queries (O(log n))
	idx := raster.NewFeatureIndex(fc)

	// Query the western half of the raster
	b := ds.Bounds()
	viewport := raster.Bounds{
		MinX: b.MinX, MinY: b.MinY,
		MaxX: (b.MinX + b.MaxX) / 2, MaxY: b.MaxY,
	}
	hits := idx.FeaturesInBounds(viewport)
	fmt.Printf("Features in viewport: %d\n", len(hits))

	for _, f := range hits {
		fmt.Printf("  label=%v\n", f.Properties["label"])
	}

	// Export everything as GeoJSON
	data, err := fc.MarshalJSON()
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("regions.geojson", data, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Saved regions.geojson")
}

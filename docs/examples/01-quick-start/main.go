package main

import (
	"fmt"
	"log"

	"github.com/terragrid/rastertool/pkg/raster"
)

func main() {
	// Open a GeoTIFF population grid
	ds, err := raster.Open("GHS_POP_E2020_R3_C18.tif")
	if err != nil {
		log.Fatal(err)
	}
	defer ds.Close()

	// Print dataset info
	fmt.Printf("Number of layers: %d\n", ds.Count())
	fmt.Printf("Number of columns: %d\n", ds.Width())
	fmt.Printf("Number of rows: %d\n", ds.Height())
	fmt.Printf("Data type: %s\n", ds.DType())
	fmt.Printf("CRS: %s\n", ds.CRS())
	fmt.Printf("Affine transform:\n%s\n", ds.Transform())

	// Get dataset bounds
	b := ds.Bounds()
	fmt.Printf("Boundaries: (%.0f, %.0f) to (%.0f, %.0f)\n",
		b.MinX, b.MinY, b.MaxX, b.MaxY)

	if nodata, ok := ds.NoData(); ok {
		fmt.Printf("NoData: %g\n", nodata)
	}
}

package main

import (
	"fmt"
	"log"

	"github.com/terragrid/rastertool/pkg/raster"
)

func main() {
	ds, err := raster.Open("GHS_POP_E2020_R3_C18.tif")
	if err != nil {
		log.Fatal(err)
	}
	defer ds.Close()

	// Area of interest in geographic coordinates (Bristol Channel)
	bbox := raster.Bounds{
		MinX: -3.6955, MinY: 51.1869,
		MaxX: -2.3002, MaxY: 51.9855,
	}

	// Reproject the box into the dataset CRS (World Mollweide)
	box, err := raster.ReprojectBounds(bbox, "EPSG:4326", ds.CRS())
	if err != nil {
		log.Fatal(err)
	}

	// Compute the covering pixel window and its transform
	window, transform, err := ds.WindowFromBounds(box)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Window: %dx%d cells at (%d, %d)\n",
		window.Width, window.Height, window.Col, window.Row)

	// Read just that window
	grid, err := ds.ReadWindow(1, window)
	if err != nil {
		log.Fatal(err)
	}

	// Save with an updated profile
	profile := ds.Profile()
	profile.Transform = transform
	profile.Width = grid.Width()
	profile.Height = grid.Height()
	profile.Compression = raster.CompressionDeflate

	if err := raster.Save("cropped.tif", grid, profile); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Saved cropped.tif")
}

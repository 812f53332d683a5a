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

	// Nodata cells render fully transparent
	img, err := raster.Render(grid, raster.RenderOptions{
		Palette:      []string{"#000004", "#721f81", "#f1605d", "#fcffa4"},
		MaxDimension: 1024,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := raster.WritePNG("preview.png", img); err != nil {
		log.Fatal(err)
	}
	size := img.Bounds()
	fmt.Printf("Saved preview.png (%dx%d)\n", size.Dx(), size.Dy())
}

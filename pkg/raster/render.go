package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RenderOptions configures grid rendering.
type RenderOptions struct {
	// Palette is a sequence of hex color stops blended across the value
	// range. Empty uses a dark-blue→green→yellow ramp.
	Palette []string

	// Min and Max pin the value range mapped onto the palette. Nil
	// values default to the grid's own min/max over valid cells.
	Min, Max *float64

	// MaxDimension downsamples the output so neither side exceeds this
	// many pixels. 0 renders one image pixel per cell.
	MaxDimension int
}

// defaultPalette approximates the perceptually ordered ramp population
// maps conventionally use.
var defaultPalette = []string{"#440154", "#31688e", "#35b779", "#fde725"}

// Render draws a grid as an image: valid cells colored along the palette
// by value, nodata cells fully transparent.
func Render(g *Grid, opts RenderOptions) (image.Image, error) {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = defaultPalette
	}
	stops := make([]colorful.Color, len(palette))
	for i, hex := range palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("bad palette color %q: %w", hex, err)
		}
		stops[i] = c
	}
	if len(stops) == 1 {
		stops = append(stops, stops[0])
	}

	stats := g.Stats()
	lo, hi := stats.Min, stats.Max
	if opts.Min != nil {
		lo = *opts.Min
	}
	if opts.Max != nil {
		hi = *opts.Max
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			v := g.At(col, row)
			if g.IsNoData(v) || math.IsNaN(v) {
				continue // zero NRGBA is transparent
			}
			t := (v - lo) / span
			img.SetNRGBA(col, row, rampColor(stops, t))
		}
	}

	if opts.MaxDimension > 0 &&
		(g.Width() > opts.MaxDimension || g.Height() > opts.MaxDimension) {
		// Nearest neighbour keeps cells as crisp blocks instead of
		// smearing values across region boundaries.
		return imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.NearestNeighbor), nil
	}
	return img, nil
}

// rampColor interpolates the palette at position t in [0, 1], blending
// neighbouring stops in Lab space for perceptual smoothness.
func rampColor(stops []colorful.Color, t float64) color.NRGBA {
	if t <= 0 {
		return toNRGBA(stops[0])
	}
	if t >= 1 {
		return toNRGBA(stops[len(stops)-1])
	}
	scaled := t * float64(len(stops)-1)
	i := int(scaled)
	frac := scaled - float64(i)
	blended := stops[i].BlendLab(stops[i+1], frac).Clamped()
	return toNRGBA(blended)
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// WritePNG saves a rendered image as PNG.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return f.Close()
}

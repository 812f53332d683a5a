package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// jobConfig describes a full processing pipeline for the run command:
// open, crop, threshold, save, vectorize, render.
type jobConfig struct {
	Input string `toml:"input"`
	Band  int    `toml:"band"`

	Crop   cropConfig   `toml:"crop"`
	Filter filterConfig `toml:"filter"`
	Output outputConfig `toml:"output"`
	Render renderConfig `toml:"render"`
}

// cropConfig bounds the read window. BBox is [minx, miny, maxx, maxy] in
// CRS coordinates; an empty bbox reads the full raster.
type cropConfig struct {
	BBox []float64 `toml:"bbox"`
	CRS  string    `toml:"crs"`
}

// filterConfig keeps only cells strictly above MinValue.
type filterConfig struct {
	Enabled  bool    `toml:"enabled"`
	MinValue float64 `toml:"min_value"`
}

// outputConfig names the pipeline's artifacts. Empty paths skip that
// output.
type outputConfig struct {
	Raster      string `toml:"raster"`
	GeoJSON     string `toml:"geojson"`
	Image       string `toml:"image"`
	Compression string `toml:"compression"` // "none" or "deflate"
}

// renderConfig tunes the preview image.
type renderConfig struct {
	MaxDimension int      `toml:"max_dimension"`
	Palette      []string `toml:"palette"`
}

// defaultJobConfig returns a config with the defaults the pipeline
// assumes before the TOML file is applied.
func defaultJobConfig() jobConfig {
	return jobConfig{
		Band: 1,
		Crop: cropConfig{CRS: "EPSG:4326"},
		Render: renderConfig{
			MaxDimension: 1024,
		},
	}
}

// loadJobConfig reads and validates a TOML job file.
func loadJobConfig(path string) (jobConfig, error) {
	cfg := defaultJobConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Input == "" {
		return cfg, fmt.Errorf("config missing required key: input")
	}
	if cfg.Band < 1 {
		return cfg, fmt.Errorf("band must be >= 1, got %d", cfg.Band)
	}
	if n := len(cfg.Crop.BBox); n != 0 && n != 4 {
		return cfg, fmt.Errorf("crop.bbox must have 4 values [minx, miny, maxx, maxy], got %d", n)
	}
	switch cfg.Output.Compression {
	case "", "none", "deflate":
	default:
		return cfg, fmt.Errorf("output.compression must be \"none\" or \"deflate\", got %q", cfg.Output.Compression)
	}

	return cfg, nil
}

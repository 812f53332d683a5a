package raster

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderTransparentNoData(t *testing.T) {
	g := gridFrom(t, []float64{
		-200, 100,
		300, -200,
	}, 2, 2)

	img, err := Render(g, RenderOptions{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("image type: got %T, want *image.NRGBA", img)
	}
	if b := nrgba.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("image size: got %dx%d, want 2x2", b.Dx(), b.Dy())
	}

	if a := nrgba.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("nodata cell (0,0) alpha: got %d, want 0", a)
	}
	if a := nrgba.NRGBAAt(1, 1).A; a != 0 {
		t.Errorf("nodata cell (1,1) alpha: got %d, want 0", a)
	}
	if a := nrgba.NRGBAAt(1, 0).A; a != 255 {
		t.Errorf("valid cell (1,0) alpha: got %d, want 255", a)
	}
	if a := nrgba.NRGBAAt(0, 1).A; a != 255 {
		t.Errorf("valid cell (0,1) alpha: got %d, want 255", a)
	}
}

func TestRenderPaletteEndpoints(t *testing.T) {
	g := gridFrom(t, []float64{0, 100}, 2, 1)

	img, err := Render(g, RenderOptions{Palette: []string{"#000000", "#ffffff"}})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	nrgba := img.(*image.NRGBA)

	lo := nrgba.NRGBAAt(0, 0)
	if lo.R != 0 || lo.G != 0 || lo.B != 0 {
		t.Errorf("minimum cell color: got %+v, want black", lo)
	}
	hi := nrgba.NRGBAAt(1, 0)
	if hi.R != 255 || hi.G != 255 || hi.B != 255 {
		t.Errorf("maximum cell color: got %+v, want white", hi)
	}
}

func TestRenderPinnedRange(t *testing.T) {
	// Values outside the pinned range clamp to the palette endpoints.
	g := gridFrom(t, []float64{-50, 500}, 2, 1)

	img, err := Render(g, RenderOptions{
		Palette: []string{"#000000", "#ffffff"},
		Min:     f64(0),
		Max:     f64(100),
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	nrgba := img.(*image.NRGBA)
	if c := nrgba.NRGBAAt(0, 0); c.R != 0 {
		t.Errorf("below-range cell: got %+v, want black", c)
	}
	if c := nrgba.NRGBAAt(1, 0); c.R != 255 {
		t.Errorf("above-range cell: got %+v, want white", c)
	}
}

func TestRenderDownsample(t *testing.T) {
	g := NewGrid(8, 4, nil)
	for i, d := 0, g.Data(); i < len(d); i++ {
		d[i] = float64(i)
	}

	img, err := Render(g, RenderOptions{MaxDimension: 4})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > 4 || b.Dy() > 4 {
		t.Errorf("downsampled size: got %dx%d, want both sides <= 4", b.Dx(), b.Dy())
	}
	// Aspect ratio 2:1 is preserved.
	if b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("downsampled size: got %dx%d, want 4x2", b.Dx(), b.Dy())
	}
}

func TestRenderBadPalette(t *testing.T) {
	g := NewGrid(1, 1, nil)
	if _, err := Render(g, RenderOptions{Palette: []string{"not-a-color"}}); err == nil {
		t.Fatal("expected error for malformed palette color")
	}
}

func TestWritePNG(t *testing.T) {
	g := gridFrom(t, []float64{1, 2, 3, -200}, 2, 2)
	img, err := Render(g, RenderOptions{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := WritePNG(path, img); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("output is not a PNG file")
	}
}

package raster

import (
	"testing"

	"github.com/paulmach/orb/geojson"
)

// indexFixture vectorizes a grid with two far-apart regions:
// cell (0,0) covers world [0,1]x[3,4], cell (3,3) covers [3,4]x[0,1].
func indexFixture(t *testing.T) *FeatureIndex {
	t.Helper()
	g := gridFrom(t, []float64{
		10, -200, -200, -200,
		-200, -200, -200, -200,
		-200, -200, -200, -200,
		-200, -200, -200, 20,
	}, 4, 4)
	fc := Vectorize(g, NorthUp(0, 4, 1, 1))
	if len(fc.Features) != 2 {
		t.Fatalf("fixture: got %d features, want 2", len(fc.Features))
	}
	return NewFeatureIndex(fc)
}

func TestFeatureIndexCount(t *testing.T) {
	idx := indexFixture(t)
	if idx.Count() != 2 {
		t.Errorf("count: got %d, want 2", idx.Count())
	}
	if len(idx.Features()) != 2 {
		t.Errorf("features: got %d, want 2", len(idx.Features()))
	}
}

func TestFeaturesInBounds(t *testing.T) {
	idx := indexFixture(t)

	tests := []struct {
		name      string
		bounds    Bounds
		wantCount int
		wantLabel float64
	}{
		{"top left region", Bounds{MinX: 0.2, MinY: 3.2, MaxX: 0.8, MaxY: 3.8}, 1, 10},
		{"bottom right region", Bounds{MinX: 3.5, MinY: 0.5, MaxX: 5, MaxY: 0.9}, 1, 20},
		{"everything", Bounds{MinX: -1, MinY: -1, MaxX: 5, MaxY: 5}, 2, 0},
		{"empty middle", Bounds{MinX: 1.5, MinY: 1.5, MaxX: 2.5, MaxY: 2.5}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.FeaturesInBounds(tt.bounds)
			if len(got) != tt.wantCount {
				t.Fatalf("hit count: got %d, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount == 1 && got[0].Properties["label"] != tt.wantLabel {
				t.Errorf("label: got %v, want %g", got[0].Properties["label"], tt.wantLabel)
			}
		})
	}
}

func TestFeatureIndexEmpty(t *testing.T) {
	idx := NewFeatureIndex(geojson.NewFeatureCollection())
	if idx.Count() != 0 {
		t.Errorf("count: got %d, want 0", idx.Count())
	}
	if got := idx.FeaturesInBounds(Bounds{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}); len(got) != 0 {
		t.Errorf("expected no hits, got %d", len(got))
	}
}

package raster

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb/geojson"
)

// FeatureIndex provides fast spatial queries over vectorized features
// using an R-tree. Queries are O(log n) instead of the O(n) linear scan,
// which matters once a vectorized population grid produces tens of
// thousands of region polygons.
type FeatureIndex struct {
	features []*geojson.Feature
	rtree    *rtreego.Rtree
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	feature *geojson.Feature
	rect    rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return f.rect
}

// NewFeatureIndex builds an R-tree index over a feature collection,
// typically the output of Vectorize.
func NewFeatureIndex(fc *geojson.FeatureCollection) *FeatureIndex {
	idx := &FeatureIndex{
		features: fc.Features,
	}
	if len(fc.Features) == 0 {
		return idx
	}

	// 2D R-tree; 25/50 children per node works well for polygon sets
	// of this shape.
	tree := rtreego.NewTree(2, 25, 50)
	for _, f := range idx.features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		tree.Insert(&indexedFeature{
			feature: f,
			rect:    boundsToRect(Bounds{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}),
		})
	}
	idx.rtree = tree
	return idx
}

// Count returns the number of indexed features.
func (idx *FeatureIndex) Count() int {
	return len(idx.features)
}

// Features returns all indexed features.
func (idx *FeatureIndex) Features() []*geojson.Feature {
	return idx.features
}

// FeaturesInBounds returns the features whose bounding boxes intersect
// the given bounds (in the same CRS the features were vectorized into).
func (idx *FeatureIndex) FeaturesInBounds(b Bounds) []*geojson.Feature {
	if idx.rtree == nil {
		return idx.featuresInBoundsLinear(b)
	}

	spatials := idx.rtree.SearchIntersect(boundsToRect(b))
	result := make([]*geojson.Feature, 0, len(spatials))
	for _, spatial := range spatials {
		result = append(result, spatial.(*indexedFeature).feature)
	}
	return result
}

// featuresInBoundsLinear is the fallback scan for unindexed collections.
func (idx *FeatureIndex) featuresInBoundsLinear(b Bounds) []*geojson.Feature {
	var result []*geojson.Feature
	for _, f := range idx.features {
		if f.Geometry == nil {
			continue
		}
		fb := f.Geometry.Bound()
		if b.Intersects(Bounds{MinX: fb.Min[0], MinY: fb.Min[1], MaxX: fb.Max[0], MaxY: fb.Max[1]}) {
			result = append(result, f)
		}
	}
	return result
}

// boundsToRect converts bounds to an R-tree rectangle. Degenerate
// dimensions get a small epsilon because the R-tree requires non-zero
// extents.
func boundsToRect(b Bounds) rtreego.Rect {
	const epsilon = 1e-9
	w := b.MaxX - b.MinX
	h := b.MaxY - b.MinY
	if w < epsilon {
		w = epsilon
	}
	if h < epsilon {
		h = epsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
	return rect
}

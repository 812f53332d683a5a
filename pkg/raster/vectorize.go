package raster

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Vectorize converts a grid into polygon features.
//
// Contiguous runs of equal-valued cells (4-connected; nodata cells are
// skipped) become one polygon each, with the shared cell value stored in
// the feature's "label" property. Cell boundaries are traced exactly, so
// polygon edges follow the pixel lattice; interior voids become polygon
// holes. Coordinates are mapped through the affine transform into the
// CRS the transform belongs to.
//
// Vectorizing a freshly thresholded grid gives one feature per surviving
// region, ready for GeoJSON export or spatial indexing:
//
//	filtered := grid.Threshold(5000)
//	fc := raster.Vectorize(filtered, ds.Transform())
//	data, _ := fc.MarshalJSON()
func Vectorize(g *Grid, t Transform) *geojson.FeatureCollection {
	w, h := g.Width(), g.Height()
	fc := geojson.NewFeatureCollection()
	if w == 0 || h == 0 {
		return fc
	}

	// Label 4-connected components of equal value. Label 0 means
	// unlabeled (nodata).
	labels := make([]int32, w*h)
	var values []float64 // value per label, 1-based

	queue := make([]int, 0, 64)
	next := int32(0)
	for start := 0; start < w*h; start++ {
		if labels[start] != 0 || g.IsNoData(g.data[start]) {
			continue
		}
		next++
		val := g.data[start]
		values = append(values, val)

		labels[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			c, r := idx%w, idx/w

			visit := func(n int) {
				if labels[n] == 0 && g.data[n] == val {
					labels[n] = next
					queue = append(queue, n)
				}
			}
			if r > 0 {
				visit(idx - w)
			}
			if r < h-1 {
				visit(idx + w)
			}
			if c > 0 {
				visit(idx - 1)
			}
			if c < w-1 {
				visit(idx + 1)
			}
		}
	}

	// Trace each component's boundary and emit polygons.
	cellsByLabel := make([][]int, next+1)
	for idx, lbl := range labels {
		if lbl != 0 {
			cellsByLabel[lbl] = append(cellsByLabel[lbl], idx)
		}
	}

	for lbl := int32(1); lbl <= next; lbl++ {
		polys := traceComponent(cellsByLabel[lbl], labels, lbl, w, t)
		for _, poly := range polys {
			f := geojson.NewFeature(poly)
			f.Properties = geojson.Properties{"label": values[lbl-1]}
			fc.Append(f)
		}
	}

	return fc
}

// vertex is a corner of the pixel lattice. Cell (c, r) owns the corners
// (c, r) through (c+1, r+1).
type vertex struct {
	x, y int32
}

// boundaryEdge is one directed unit edge of a component's boundary. The
// direction convention walks each cell's exposed sides clockwise in pixel
// space (y down), which makes exterior rings close clockwise and hole
// rings counterclockwise.
type boundaryEdge struct {
	from, to vertex
	used     bool
}

// traceComponent extracts the boundary rings of one labeled component and
// assembles them into polygons in world coordinates.
func traceComponent(cells []int, labels []int32, lbl int32, w int, t Transform) []orb.Polygon {
	// Collect boundary edges: each cell side whose neighbour is outside
	// the component contributes one directed edge.
	var edges []*boundaryEdge
	outgoing := make(map[vertex][]*boundaryEdge)
	add := func(fx, fy, tx, ty int32) {
		e := &boundaryEdge{from: vertex{fx, fy}, to: vertex{tx, ty}}
		edges = append(edges, e)
		outgoing[e.from] = append(outgoing[e.from], e)
	}

	h := len(labels) / w
	for _, idx := range cells {
		c, r := int32(idx%w), int32(idx/w)
		if r == 0 || labels[idx-w] != lbl { // top side
			add(c, r, c+1, r)
		}
		if int(c) == w-1 || labels[idx+1] != lbl { // right side
			add(c+1, r, c+1, r+1)
		}
		if int(r) == h-1 || labels[idx+w] != lbl { // bottom side
			add(c+1, r+1, c, r+1)
		}
		if c == 0 || labels[idx-1] != lbl { // left side
			add(c, r+1, c, r)
		}
	}

	// Stitch directed edges into closed rings. At pinch vertices (two
	// background cells touching diagonally) two outgoing edges exist;
	// continuing with the sharpest left turn keeps the same background
	// region on the edge's left, so each ring stays simple instead of
	// merging touching rings into one self-touching loop.
	var rings [][]vertex
	for _, start := range edges {
		if start.used {
			continue
		}
		ring := []vertex{start.from}
		cur := start
		for {
			cur.used = true
			ring = append(ring, cur.to)
			if cur.to == start.from {
				break
			}
			cur = nextEdge(cur, outgoing)
			if cur == nil {
				// Unclosable ring means inconsistent edge bookkeeping;
				// drop it rather than emit a broken polygon.
				ring = nil
				break
			}
		}
		if ring != nil {
			rings = append(rings, ring)
		}
	}

	return assemblePolygons(rings, t)
}

// nextEdge picks the continuation edge at cur.to, preferring the sharpest
// left turn relative to the incoming direction. Edges keep the component on
// their right, so the left turn is the continuation that borders the same
// background region as the incoming edge.
func nextEdge(cur *boundaryEdge, outgoing map[vertex][]*boundaryEdge) *boundaryEdge {
	candidates := outgoing[cur.to]

	dx := cur.to.x - cur.from.x
	dy := cur.to.y - cur.from.y
	// Left turn in y-down pixel space, then straight, then right.
	prefs := [3]vertex{
		{cur.to.x + dy, cur.to.y - dx}, // left
		{cur.to.x + dx, cur.to.y + dy}, // straight
		{cur.to.x - dy, cur.to.y + dx}, // right
	}
	for _, want := range prefs {
		for _, e := range candidates {
			if !e.used && e.to == want {
				return e
			}
		}
	}
	return nil
}

// assemblePolygons classifies rings into exteriors and holes, assigns
// each hole to the exterior containing it, and converts to world
// coordinates.
func assemblePolygons(rings [][]vertex, t Transform) []orb.Polygon {
	type ringInfo struct {
		pixels []vertex
		world  orb.Ring
		area   float64 // pixel-space shoelace; >0 for exteriors
	}

	infos := make([]*ringInfo, 0, len(rings))
	for _, ring := range rings {
		info := &ringInfo{pixels: ring}
		for i := 0; i+1 < len(ring); i++ {
			a, b := ring[i], ring[i+1]
			info.area += float64(a.x)*float64(b.y) - float64(b.x)*float64(a.y)
		}
		info.area /= 2

		info.world = make(orb.Ring, len(ring))
		for i, v := range ring {
			x, y := t.Apply(float64(v.x), float64(v.y))
			info.world[i] = orb.Point{x, y}
		}
		infos = append(infos, info)
	}

	var exteriors, holes []*ringInfo
	for _, info := range infos {
		if info.area > 0 {
			exteriors = append(exteriors, info)
		} else {
			holes = append(holes, info)
		}
	}

	polys := make([]orb.Polygon, len(exteriors))
	for i, ext := range exteriors {
		polys[i] = orb.Polygon{orientRing(ext.world, true)}
	}
	for _, hole := range holes {
		anchor := topLeftVertex(hole.pixels)
		for i, ext := range exteriors {
			if pointInRing(anchor, ext.pixels) {
				polys[i] = append(polys[i], orientRing(hole.world, false))
				break
			}
		}
	}
	return polys
}

// topLeftVertex returns the topmost, then leftmost vertex of a ring. The
// cell diagonally below-right of it lies inside the ring, so for a hole
// ring that cell is a background cell enclosed by the owning exterior.
func topLeftVertex(ring []vertex) vertex {
	best := ring[0]
	for _, v := range ring[1:] {
		if v.y < best.y || (v.y == best.y && v.x < best.x) {
			best = v
		}
	}
	return best
}

// orientRing returns the ring wound per RFC 7946: counterclockwise
// exteriors, clockwise holes (in world coordinates).
func orientRing(r orb.Ring, exterior bool) orb.Ring {
	var area float64
	for i := 0; i+1 < len(r); i++ {
		area += r[i][0]*r[i+1][1] - r[i+1][0]*r[i][1]
	}
	ccw := area > 0
	if ccw == exterior {
		return r
	}
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// pointInRing tests the cell diagonally below-right of a lattice vertex
// against a lattice ring by casting a ray in +x. Offsetting into the cell
// center avoids on-edge ambiguity where a hole touches its exterior.
func pointInRing(p vertex, ring []vertex) bool {
	px := float64(p.x) + 0.5
	py := float64(p.y) + 0.5

	inside := false
	for i := 0; i+1 < len(ring); i++ {
		x1, y1 := float64(ring[i].x), float64(ring[i].y)
		x2, y2 := float64(ring[i+1].x), float64(ring[i+1].y)
		if (y1 > py) != (y2 > py) {
			xCross := x1 + (py-y1)/(y2-y1)*(x2-x1)
			if px < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

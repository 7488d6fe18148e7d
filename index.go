package heatmap

import (
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// worldBound covers every valid coordinate. orb points are [lng, lat].
var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// indexedPoint remembers the input position of a point so query results
// can be returned in input order.
type indexedPoint struct {
	p orb.Point
	i int
}

func (ip indexedPoint) Point() orb.Point { return ip.p }

// spatialIndex is a quadtree over the input points.
type spatialIndex struct {
	tree *quadtree.Quadtree
}

func newSpatialIndex(points []GeoPoint) *spatialIndex {
	tree := quadtree.New(worldBound)
	skipped := 0
	for i, p := range points {
		if err := tree.Add(indexedPoint{p: orb.Point{p.Lng, p.Lat}, i: i}); err != nil {
			skipped++
		}
	}
	if skipped > 0 {
		Logger().Warn("heatmap: points outside world bounds not indexed", "skipped", skipped)
	}
	return &spatialIndex{tree: tree}
}

// inBound returns the points inside r, edges included, in input order.
// Input order keeps stamping deterministic.
func (s *spatialIndex) inBound(r GeoRect) []GeoPoint {
	b := orb.Bound{
		Min: orb.Point{r.Left(), r.Bottom()},
		Max: orb.Point{r.Right(), r.Top()},
	}
	found := s.tree.InBound(nil, b)

	hits := make([]indexedPoint, 0, len(found))
	for _, f := range found {
		hits = append(hits, f.(indexedPoint))
	}
	slices.SortFunc(hits, func(a, b indexedPoint) int { return a.i - b.i })

	out := make([]GeoPoint, len(hits))
	for i, h := range hits {
		out[i] = GeoPoint{Lat: h.p[1], Lng: h.p[0]}
	}
	return out
}

package heatmap

import (
	"image"
	"math"
)

// BoundsFor returns the smallest rectangle containing every point.
func BoundsFor(points []GeoPoint) (GeoRect, error) {
	if len(points) == 0 {
		return GeoRect{}, ErrNoPoints
	}

	minLat, maxLat := points[0].Lat, points[0].Lat
	minLng, maxLng := points[0].Lng, points[0].Lng
	for _, p := range points[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLng = math.Min(minLng, p.Lng)
		maxLng = math.Max(maxLng, p.Lng)
	}

	return NewGeoRect(
		GeoPoint{Lat: maxLat, Lng: minLng},
		GeoPoint{Lat: minLat, Lng: maxLng},
	), nil
}

// PointManager answers the spatial questions a render asks about a point
// set: which zoom fits, which tiles are covered, and which points touch a
// given tile.
//
// PointManager is immutable after construction and safe for concurrent use.
type PointManager struct {
	points []GeoPoint
	size   image.Point
	proj   *Mercator
	index  *spatialIndex
}

// NewPointManager creates a manager for points rendered into an image of
// the given size. The points slice is retained, not copied.
func NewPointManager(points []GeoPoint, size image.Point, proj *Mercator) *PointManager {
	if proj == nil {
		proj = NewMercator(0)
	}
	return &PointManager{points: points, size: size, proj: proj}
}

// WithIndex returns a copy of m that answers tile queries from a quadtree
// instead of scanning every point.
func (m *PointManager) WithIndex() *PointManager {
	out := *m
	out.index = newSpatialIndex(m.points)
	return &out
}

// Points returns the managed points.
func (m *PointManager) Points() []GeoPoint {
	return m.points
}

// Size returns the target image size.
func (m *PointManager) Size() image.Point {
	return m.size
}

// Projection returns the projection used for all conversions.
func (m *PointManager) Projection() *Mercator {
	return m.proj
}

// ZoomFor returns the deepest zoom at which r fits inside the target image
// on both axes, capped at MaxZoom. A degenerate rectangle (a single point)
// gets MaxZoom.
func (m *PointManager) ZoomFor(r GeoRect) int {
	latFraction := (latRad(r.Top()) - latRad(r.Bottom())) / math.Pi
	lngFraction := r.SpanLng() / 360

	latZoom := axisZoom(m.size.Y, latFraction)
	lngZoom := axisZoom(m.size.X, lngFraction)
	return min(latZoom, lngZoom, MaxZoom)
}

// latRad returns half the Mercator y of lat, clamped to [-pi/2, pi/2].
func latRad(lat float64) float64 {
	sin := math.Sin(lat * math.Pi / 180)
	radX2 := math.Log((1+sin)/(1-sin)) / 2
	return math.Max(math.Min(radX2, math.Pi), -math.Pi) / 2
}

// axisZoom returns floor(log2(px / 256 / fraction)) limited to
// [0, MaxZoom].
func axisZoom(px int, fraction float64) int {
	if fraction <= 0 || math.IsNaN(fraction) {
		return MaxZoom
	}
	z := math.Floor(math.Log2(float64(px) / TileSize / fraction))
	if z > MaxZoom {
		return MaxZoom
	}
	if z < 0 {
		return 0
	}
	return int(z)
}

// TileRange returns the first and last tile covered by r at zoom, both
// inclusive. r must not cross the antimeridian.
func (m *PointManager) TileRange(r GeoRect, zoom int) (start, end TileIndex) {
	start = m.proj.ToPixelCached(r.TopLeft(), zoom).Tile()
	end = m.proj.ToPixelCached(r.BottomRight(), zoom).Tile()
	return start, end
}

// TileOffset returns where the start tile's top-left corner lands in the
// output image so that the center of r sits at the image center. Either
// component may be negative.
func (m *PointManager) TileOffset(start TileIndex, r GeoRect, zoom int) PixelPoint {
	center := m.proj.ToPixelCached(r.Center(), zoom)
	half := PixelPoint{X: int64(m.size.X / 2), Y: int64(m.size.Y / 2)}
	return start.Origin().Add(half).Sub(center)
}

// TopLeftPixel returns the world pixel that maps to the output image's
// top-left corner, given the offset from TileOffset.
func (m *PointManager) TopLeftPixel(r GeoRect, offset PixelPoint, zoom int) PixelPoint {
	nw := m.proj.ToPixelCached(r.TopLeft(), zoom)
	snapped := PixelPoint{X: nw.X - floorMod(nw.X, TileSize), Y: nw.Y - floorMod(nw.Y, TileSize)}
	return snapped.Sub(offset)
}

// PointsForTile returns the tile-local pixel positions of every point whose
// dot can reach tile t. The tile window is padded by one dot on each side
// so that dots centered just outside the tile still contribute. Positions
// may be negative or exceed the tile size.
func (m *PointManager) PointsForTile(t TileIndex, dotW, dotH, zoom int) []PixelPoint {
	origin := t.Origin()
	lo := origin.Sub(PixelPoint{X: int64(dotW), Y: int64(dotH)})
	hi := origin.Add(PixelPoint{X: TileSize + int64(dotW), Y: TileSize + int64(dotH)})
	nw := m.proj.ToGeo(lo, zoom)
	se := m.proj.ToGeo(hi, zoom)

	// Points beyond the Mercator limits project onto the world edge, so a
	// window reaching the edge extends to the poles and the antimeridian.
	last := worldSize(clampZoom(zoom)) - 1
	if lo.X <= 0 {
		nw.Lng = MinLongitude
	}
	if lo.Y <= 0 {
		nw.Lat = 90
	}
	if hi.X >= last {
		se.Lng = MaxLongitude
	}
	if hi.Y >= last {
		se.Lat = -90
	}
	window := NewGeoRect(nw, se)

	var candidates []GeoPoint
	if m.index != nil {
		candidates = m.index.inBound(window)
	} else {
		candidates = make([]GeoPoint, 0, 16)
		for _, p := range m.points {
			if window.Contains(p) {
				candidates = append(candidates, p)
			}
		}
	}

	out := make([]PixelPoint, len(candidates))
	for i, p := range candidates {
		out[i] = m.proj.ToPixelCached(p, zoom).Sub(origin)
	}
	return out
}

// ToImagePoint converts p into output image coordinates given the image's
// top-left world pixel.
func (m *PointManager) ToImagePoint(p GeoPoint, topLeft PixelPoint, zoom int) image.Point {
	return m.proj.ToPixelCached(p, zoom).Sub(topLeft).Point()
}

// ToImageRect converts r into output image coordinates given the image's
// top-left world pixel.
func (m *PointManager) ToImageRect(r GeoRect, topLeft PixelPoint, zoom int) image.Rectangle {
	return image.Rectangle{
		Min: m.ToImagePoint(r.TopLeft(), topLeft, zoom),
		Max: m.ToImagePoint(r.BottomRight(), topLeft, zoom),
	}
}

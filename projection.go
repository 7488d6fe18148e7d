package heatmap

import (
	"math"

	"github.com/gogpu/heatmap/internal/cache"
)

// Spherical Mercator limits. Latitudes beyond MaxLatitude would project to
// infinity and are clamped.
const (
	MinLatitude  = -85.05112878
	MaxLatitude  = 85.05112878
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// DefaultProjectionCacheSize is the per-shard entry limit of the
// projection caches created by NewMercator.
const DefaultProjectionCacheSize = 4096

type geoKey struct {
	p    GeoPoint
	zoom int
}

type pixelKey struct {
	p    PixelPoint
	zoom int
}

func hashGeoKey(k geoKey) uint64 {
	return cache.Uint64sHasher(math.Float64bits(k.p.Lat), math.Float64bits(k.p.Lng), uint64(k.zoom))
}

func hashPixelKey(k pixelKey) uint64 {
	return cache.Uint64sHasher(uint64(k.p.X), uint64(k.p.Y), uint64(k.zoom))
}

// Mercator converts between geographic coordinates and world pixels using
// the Spherical Mercator projection with 256-pixel tiles.
//
// The plain conversions are pure functions. The Cached variants memoize
// results per zoom level in bounded LRU caches; a forward conversion also
// records its inverse when no inverse is cached yet, and vice versa.
// Mercator is safe for concurrent use.
type Mercator struct {
	toPixel *cache.Sharded[geoKey, PixelPoint]
	toGeo   *cache.Sharded[pixelKey, GeoPoint]
}

// NewMercator returns a projection whose caches hold up to perShard
// entries in each of their shards. perShard <= 0 disables caching.
func NewMercator(perShard int) *Mercator {
	if perShard <= 0 {
		return &Mercator{}
	}
	return &Mercator{
		toPixel: cache.NewSharded[geoKey, PixelPoint](perShard, hashGeoKey),
		toGeo:   cache.NewSharded[pixelKey, GeoPoint](perShard, hashPixelKey),
	}
}

// ToPixel projects p into world pixels at zoom. Coordinates are clamped to
// the Mercator limits and the result to the world bounds.
func (m *Mercator) ToPixel(p GeoPoint, zoom int) PixelPoint {
	zoom = clampZoom(zoom)
	lat := clip(p.Lat, MinLatitude, MaxLatitude)
	lng := clip(p.Lng, MinLongitude, MaxLongitude)

	x := (lng + 180) / 360
	sin := math.Sin(lat * math.Pi / 180)
	y := 0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)

	size := float64(worldSize(zoom))
	return PixelPoint{
		X: int64(clip(x*size+0.5, 0, size-1)),
		Y: int64(clip(y*size+0.5, 0, size-1)),
	}
}

// ToGeo returns the coordinate of world pixel px at zoom. Pixels outside
// the world are clamped to its edge.
func (m *Mercator) ToGeo(px PixelPoint, zoom int) GeoPoint {
	zoom = clampZoom(zoom)
	size := float64(worldSize(zoom))

	x := clip(float64(px.X), 0, size-1)/size - 0.5
	y := 0.5 - clip(float64(px.Y), 0, size-1)/size

	return GeoPoint{
		Lat: 90 - 360*math.Atan(math.Exp(-y*2*math.Pi))/math.Pi,
		Lng: 360 * x,
	}
}

// ToPixelCached is ToPixel backed by the projection cache.
func (m *Mercator) ToPixelCached(p GeoPoint, zoom int) PixelPoint {
	if m.toPixel == nil {
		return m.ToPixel(p, zoom)
	}
	zoom = clampZoom(zoom)
	key := geoKey{p: p, zoom: zoom}
	if px, ok := m.toPixel.Get(key); ok {
		return px
	}
	px := m.ToPixel(p, zoom)
	m.toPixel.Set(key, px)
	m.toGeo.Add(pixelKey{p: px, zoom: zoom}, p)
	return px
}

// ToGeoCached is ToGeo backed by the projection cache. A cached inverse
// may be any point that projected to px, not necessarily its corner.
func (m *Mercator) ToGeoCached(px PixelPoint, zoom int) GeoPoint {
	if m.toGeo == nil {
		return m.ToGeo(px, zoom)
	}
	zoom = clampZoom(zoom)
	key := pixelKey{p: px, zoom: zoom}
	if g, ok := m.toGeo.Get(key); ok {
		return g
	}
	g := m.ToGeo(px, zoom)
	m.toGeo.Set(key, g)
	m.toPixel.Add(geoKey{p: g, zoom: zoom}, px)
	return g
}

// ToTile returns the tile containing p at zoom.
func (m *Mercator) ToTile(p GeoPoint, zoom int) TileIndex {
	return m.ToPixelCached(p, zoom).Tile()
}

// TileOrigin returns the world pixel of the tile's top-left corner.
func (m *Mercator) TileOrigin(t TileIndex) PixelPoint {
	return t.Origin()
}

// CacheStats reports the combined counters of both projection caches.
type CacheStats struct {
	Entries   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// CacheStats returns the projection cache counters. All zero when caching
// is disabled.
func (m *Mercator) CacheStats() CacheStats {
	if m.toPixel == nil {
		return CacheStats{}
	}
	a, b := m.toPixel.Stats(), m.toGeo.Stats()
	return CacheStats{
		Entries:   a.Len + b.Len,
		Hits:      a.Hits + b.Hits,
		Misses:    a.Misses + b.Misses,
		Evictions: a.Evictions + b.Evictions,
	}
}

// clip limits v to [lo, hi].
func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

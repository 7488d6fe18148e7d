package heatmap

import (
	"math"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

func TestMercator_ToPixel(t *testing.T) {
	m := NewMercator(0)
	tests := []struct {
		name string
		p    GeoPoint
		zoom int
		want PixelPoint
	}{
		{"origin z0", GeoPoint{0, 0}, 0, PixelPoint{128, 128}},
		{"origin z1", GeoPoint{0, 0}, 1, PixelPoint{256, 256}},
		{"north west clamp", GeoPoint{90, -180}, 0, PixelPoint{0, 0}},
		{"south east clamp", GeoPoint{-90, 180}, 0, PixelPoint{255, 255}},
		{"point z4", GeoPoint{40, -75}, 4, PixelPoint{1195, 1551}},
		{"corner z4", GeoPoint{50, -100}, 4, PixelPoint{910, 1389}},
		{"zoom clamped", GeoPoint{0, 0}, 40, PixelPoint{1 << 38, 1 << 38}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.ToPixel(tt.p, tt.zoom); got != tt.want {
				t.Errorf("ToPixel(%v, %d) = %v, want %v", tt.p, tt.zoom, got, tt.want)
			}
		})
	}
}

func TestMercator_RoundTrip(t *testing.T) {
	m := NewMercator(0)
	points := []GeoPoint{
		{0, 0}, {40, -75}, {-33.8688, 151.2093}, {85, 179.9}, {-85, -179.9}, {51.5074, -0.1278},
	}
	for zoom := 0; zoom <= MaxZoom; zoom++ {
		// One pixel spans 360/size degrees of longitude; latitude pixels
		// are never wider than that.
		tol := 360 / float64(worldSize(zoom))
		for _, p := range points {
			got := m.ToGeo(m.ToPixel(p, zoom), zoom)
			if math.Abs(got.Lng-p.Lng) > tol || math.Abs(got.Lat-p.Lat) > tol {
				t.Errorf("zoom %d: round trip of %v = %v, tolerance %g", zoom, p, got, tol)
			}
		}
	}
}

func TestMercator_ToTileMatchesMaptile(t *testing.T) {
	m := NewMercator(0)
	points := []GeoPoint{
		{40, -75}, {35.6762, 139.6503}, {-22.9068, -43.1729}, {64.1466, -21.9426}, {1.3521, 103.8198},
	}
	for _, p := range points {
		for zoom := 0; zoom <= 20; zoom++ {
			size := float64(worldSize(zoom))
			x := (p.Lng + 180) / 360 * size
			sin := math.Sin(p.Lat * math.Pi / 180)
			y := (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * size

			// Skip points within a pixel of a tile edge, where rounding to
			// the nearest pixel may pick the neighbor tile.
			fx, fy := math.Mod(x, TileSize), math.Mod(y, TileSize)
			if fx < 1 || fx > TileSize-1 || fy < 1 || fy > TileSize-1 {
				continue
			}

			want := maptile.At(orb.Point{p.Lng, p.Lat}, maptile.Zoom(zoom))
			got := m.ToTile(p, zoom)
			if got.X != int64(want.X) || got.Y != int64(want.Y) {
				t.Errorf("ToTile(%v, %d) = %v, want %d/%d", p, zoom, got, want.X, want.Y)
			}
		}
	}
}

func TestMercator_CachedMatchesPlain(t *testing.T) {
	m := NewMercator(16)
	p := GeoPoint{Lat: 40, Lng: -75}
	for zoom := 0; zoom < 8; zoom++ {
		want := m.ToPixel(p, zoom)
		for range 3 {
			if got := m.ToPixelCached(p, zoom); got != want {
				t.Errorf("ToPixelCached(%v, %d) = %v, want %v", p, zoom, got, want)
			}
		}
	}
	st := m.CacheStats()
	if st.Hits < 16 {
		t.Errorf("hits = %d, want at least 16", st.Hits)
	}
	if st.Entries == 0 {
		t.Error("cache is empty")
	}
}

func TestMercator_CachedInverseIsConsistent(t *testing.T) {
	m := NewMercator(16)
	p := GeoPoint{Lat: 12.5, Lng: 45.25}
	px := m.ToPixelCached(p, 10)

	// The inverse was recorded by the forward conversion.
	if got := m.ToGeoCached(px, 10); got != p {
		t.Errorf("ToGeoCached(%v) = %v, want %v", px, got, p)
	}

	other := PixelPoint{X: 1000, Y: 2000}
	g := m.ToGeoCached(other, 10)
	if got := m.ToPixelCached(g, 10); got != other {
		t.Errorf("ToPixelCached(ToGeoCached(%v)) = %v", other, got)
	}
}

func TestMercator_NoCache(t *testing.T) {
	m := NewMercator(0)
	p := GeoPoint{Lat: 1, Lng: 2}
	if m.ToPixelCached(p, 3) != m.ToPixel(p, 3) {
		t.Error("uncached ToPixelCached differs from ToPixel")
	}
	if st := m.CacheStats(); st != (CacheStats{}) {
		t.Errorf("CacheStats() = %+v, want zero", st)
	}
}

func TestMercator_ConcurrentCached(t *testing.T) {
	m := NewMercator(8)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				p := GeoPoint{Lat: float64(i%80) - 40, Lng: float64(g*20 + i%20)}
				if got, want := m.ToPixelCached(p, 6), m.ToPixel(p, 6); got != want {
					t.Errorf("ToPixelCached(%v) = %v, want %v", p, got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestTileOrigin(t *testing.T) {
	m := NewMercator(0)
	if got := m.TileOrigin(TileIndex{X: 3, Y: 5}); got != (PixelPoint{768, 1280}) {
		t.Errorf("TileOrigin = %v, want (768, 1280)", got)
	}
	if got := (PixelPoint{X: -1, Y: 511}).Tile(); got != (TileIndex{X: -1, Y: 1}) {
		t.Errorf("Tile() = %v, want -1/1", got)
	}
}

package heatmap

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/heatmap/staticmap"
)

func scenario(t *testing.T, opts ...Option) *Heatmap {
	t.Helper()
	points := []GeoPoint{{40, -75}, {40, -75}}
	opts = append([]Option{WithViewport(scenarioViewport), WithProjection(NewMercator(0))}, opts...)
	h, err := New(points, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestNew_Scenario(t *testing.T) {
	h := scenario(t)

	if h.Zoom() != 4 {
		t.Errorf("Zoom() = %d, want 4", h.Zoom())
	}
	if h.Opacity() != 93 {
		t.Errorf("Opacity() = %d, want 93", h.Opacity())
	}
	start, end := h.TileRange()
	if start != (TileIndex{3, 5}) || end != (TileIndex{4, 7}) {
		t.Errorf("TileRange() = %v..%v, want 3/5..4/7", start, end)
	}
	if h.TileCount() != 6 {
		t.Errorf("TileCount() = %d, want 6", h.TileCount())
	}
	if h.Offset() != (PixelPoint{7, -22}) {
		t.Errorf("Offset() = %v, want (7, -22)", h.Offset())
	}
	if got := h.TilePosition(TileIndex{4, 6}); got != image.Pt(263, 234) {
		t.Errorf("TilePosition(4/6) = %v, want (263,234)", got)
	}

	bounds := image.Rect(0, 0, 640, 640)
	for _, p := range []GeoPoint{scenarioViewport.TopLeft(), scenarioViewport.BottomRight()} {
		if px := h.PixelFor(p); !px.In(bounds) {
			t.Errorf("corner %v projects to %v, outside the image", p, px)
		}
	}
	if got := h.PixelFor(GeoPoint{40, -75}); got != image.Pt(434, 249) {
		t.Errorf("PixelFor(point) = %v, want (434,249)", got)
	}

	tile, err := h.RenderTile(TileIndex{4, 6})
	if err != nil {
		t.Fatal(err)
	}
	empty, err := h.renderer.EmptyTile(h.Palette(), h.Opacity())
	if err != nil {
		t.Fatal(err)
	}
	if tile.Empty || bytes.Equal(tile.Image().Pix, empty.Image().Pix) {
		t.Error("tile under the points equals the empty tile")
	}
}

func TestNew_EmptyPointsWithViewport(t *testing.T) {
	h, err := New(nil, WithViewport(scenarioViewport))
	if err != nil {
		t.Fatal(err)
	}
	tiles, err := h.RenderTiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != h.TileCount() {
		t.Fatalf("got %d tiles, want %d", len(tiles), h.TileCount())
	}
	want := h.Palette().Lowest()
	want.A = scaleAlpha(want.A, h.Opacity())
	for _, tile := range tiles {
		if !tile.Empty {
			t.Errorf("tile %v is not empty", tile.Index)
		}
		if got := tile.Image().NRGBAAt(128, 128); got != want {
			t.Errorf("tile %v pixel = %v, want %v", tile.Index, got, want)
		}
	}
}

func TestNew_Errors(t *testing.T) {
	pts := []GeoPoint{{1, 1}, {2, 2}}
	tests := []struct {
		name   string
		points []GeoPoint
		opts   []Option
		want   error
	}{
		{"no points", nil, nil, ErrNoPoints},
		{"zero size", pts, []Option{WithImageSize(0, 10)}, ErrInvalidImageSize},
		{"unknown palette", pts, []Option{WithPalette("plaid")}, ErrUnknownPalette},
		{"opacity high", pts, []Option{WithFixedOpacity(300)}, ErrOpacityRange},
		{"opacity low", pts, []Option{WithFixedOpacity(-1)}, ErrOpacityRange},
		{"viewport across antimeridian", pts, []Option{WithViewport(NewGeoRect(GeoPoint{10, 170}, GeoPoint{-10, -170}))}, ErrInvalidViewport},
		{"viewport south above north", pts, []Option{WithViewport(NewGeoRect(GeoPoint{-10, 0}, GeoPoint{10, 20}))}, ErrInvalidViewport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.points, tt.opts...); !errors.Is(err, tt.want) {
				t.Errorf("New err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_Opacity(t *testing.T) {
	if h := scenario(t, WithFixedOpacity(DefaultOpacity)); h.Opacity() != DefaultOpacity {
		t.Errorf("fixed opacity = %d, want %d", h.Opacity(), DefaultOpacity)
	}
	if h := scenario(t, WithOpacity(2, 7)); h.Opacity() != 153 {
		t.Errorf("curve opacity at zoom 4 = %d, want 153", h.Opacity())
	}
	// The last opacity option wins.
	if h := scenario(t, WithFixedOpacity(10), WithOpacity(0, 4)); h.Opacity() != 0 {
		t.Errorf("opacity = %d, want 0", h.Opacity())
	}
}

func TestHeatmap_Render(t *testing.T) {
	h := scenario(t)
	img, err := h.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 640, 640) {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	tile, _ := h.RenderTile(TileIndex{4, 6})
	pos := h.TilePosition(TileIndex{4, 6})
	if got, want := img.NRGBAAt(434, 249), tile.Image().NRGBAAt(434-pos.X, 249-pos.Y); got != want {
		t.Errorf("output pixel under the points = %v, want tile pixel %v", got, want)
	}
	if img.NRGBAAt(434, 249).A == 0 {
		t.Error("output pixel under the points is transparent")
	}
}

func TestHeatmap_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	points := make([]GeoPoint, 600)
	for i := range points {
		points[i] = GeoPoint{Lat: 35 + rng.NormFloat64()*2, Lng: -80 + rng.NormFloat64()*3}
	}

	seq, err := New(points, WithImageSize(1024, 768), WithWorkers(1), WithSpatialIndex(false))
	if err != nil {
		t.Fatal(err)
	}
	par, err := New(points, WithImageSize(1024, 768), WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}

	a, err := seq.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := par.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("parallel indexed render differs from sequential scan")
	}
}

func TestHeatmap_RenderCanceled(t *testing.T) {
	h := scenario(t, WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Render(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type tileCounter struct{ empty, rendered atomic.Int32 }

func (c *tileCounter) ObserveTile(empty bool, _ time.Duration) {
	if empty {
		c.empty.Add(1)
	} else {
		c.rendered.Add(1)
	}
}

func TestHeatmap_TileObserver(t *testing.T) {
	obs := &tileCounter{}
	h := scenario(t, WithTileObserver(obs), WithWorkers(3))
	if _, err := h.RenderTiles(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := obs.empty.Load() + obs.rendered.Load(); got != int32(h.TileCount()) {
		t.Errorf("observed %d tiles, want %d", got, h.TileCount())
	}
	if obs.rendered.Load() == 0 {
		t.Error("no rendered tile observed")
	}
}

func TestHeatmap_RenderOver(t *testing.T) {
	h := scenario(t)
	base := image.NewNRGBA(image.Rect(0, 0, 640, 640))
	draw.Draw(base, base.Rect, image.NewUniform(color.NRGBA{R: 10, G: 20, B: 30, A: 255}), image.Point{}, draw.Src)

	out, err := h.RenderOver(context.Background(), base)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Size() != h.Size() {
		t.Fatalf("size = %v, want %v", out.Bounds().Size(), h.Size())
	}
	// Away from the points the heat layer is transparent, so the base
	// map shows through.
	if got := out.NRGBAAt(600, 20); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("base pixel = %v", got)
	}
	if got := out.NRGBAAt(434, 249); got == (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Error("heat layer not drawn over the base map")
	}

	// A smaller base map is resampled to the output size.
	out, err = h.RenderOver(context.Background(), image.NewNRGBA(image.Rect(0, 0, 320, 320)))
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds().Size() != h.Size() {
		t.Errorf("resampled size = %v, want %v", out.Bounds().Size(), h.Size())
	}
}

func TestHeatmap_MapRequest(t *testing.T) {
	h := scenario(t, WithImageSize(600, 500))
	req := h.MapRequest()
	want := staticmap.Request{
		Center: staticmap.LatLng{Lat: 35, Lng: -85},
		Zoom:   h.Zoom(),
		Width:  600,
		Height: 500,
	}
	if req.Center != want.Center || req.Zoom != want.Zoom || req.Width != want.Width || req.Height != want.Height {
		t.Errorf("MapRequest() = %+v, want %+v", req, want)
	}
	if _, err := req.URL(staticmap.DefaultBaseURL, nil); err != nil {
		t.Errorf("URL: %v", err)
	}
}

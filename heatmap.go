package heatmap

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	xdraw "golang.org/x/image/draw"

	ibuf "github.com/gogpu/heatmap/internal/image"
	"github.com/gogpu/heatmap/internal/parallel"
	"github.com/gogpu/heatmap/staticmap"
)

const tracerName = "github.com/gogpu/heatmap"

// TileObserver is notified after every tile render.
type TileObserver interface {
	ObserveTile(empty bool, d time.Duration)
}

var (
	defaultProjOnce sync.Once
	defaultProj     *Mercator
)

// DefaultProjection returns the process-wide projection with
// DefaultProjectionCacheSize entries per cache shard.
func DefaultProjection() *Mercator {
	defaultProjOnce.Do(func() {
		defaultProj = NewMercator(DefaultProjectionCacheSize)
	})
	return defaultProj
}

// Heatmap is a planned render of a point set: the zoom level, the tile
// range and where each tile lands in the output image are fixed by New.
//
// A Heatmap is immutable and safe for concurrent use.
type Heatmap struct {
	pm       *PointManager
	renderer *TileRenderer
	palette  *Palette
	observer TileObserver

	bounds  GeoRect
	zoom    int
	opacity int
	start   TileIndex
	end     TileIndex
	offset  PixelPoint
	topLeft PixelPoint
	workers int
}

// New plans a heatmap of points. Without WithViewport the rendered area is
// the bounding box of the points, and an empty point set fails with
// ErrNoPoints. A viewport with a negative width or height fails with
// ErrInvalidViewport.
//
//	hm, err := heatmap.New(points, heatmap.WithImageSize(800, 600))
//	if err != nil {
//		return err
//	}
//	img, err := hm.Render(ctx)
func New(points []GeoPoint, opts ...Option) (*Heatmap, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.size.X <= 0 || o.size.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImageSize, o.size.X, o.size.Y)
	}

	var bounds GeoRect
	if o.viewport != nil {
		bounds = *o.viewport
		if !(bounds.WidthLng >= 0 && bounds.HeightLat >= 0) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidViewport, bounds)
		}
	} else {
		b, err := BoundsFor(points)
		if err != nil {
			return nil, err
		}
		bounds = b
	}

	renderer := o.renderer
	if renderer == nil {
		renderer = DefaultTileRenderer()
	}
	palette, err := renderer.Assets().Palette(o.palette)
	if err != nil {
		return nil, err
	}

	proj := o.proj
	if proj == nil {
		proj = DefaultProjection()
	}
	pm := NewPointManager(points, o.size, proj)
	switch o.index {
	case indexOn:
		pm = pm.WithIndex()
	case indexAuto:
		if len(points) >= autoIndexThreshold {
			pm = pm.WithIndex()
		}
	}

	zoom := pm.ZoomFor(bounds)
	opacity := o.curve.At(zoom)
	if o.fixedOpacity != nil {
		if !validOpacity(*o.fixedOpacity) {
			return nil, fmt.Errorf("%w: %d", ErrOpacityRange, *o.fixedOpacity)
		}
		opacity = *o.fixedOpacity
	}

	start, end := pm.TileRange(bounds, zoom)
	offset := pm.TileOffset(start, bounds, zoom)
	h := &Heatmap{
		pm:       pm,
		renderer: renderer,
		palette:  palette,
		observer: o.observer,
		bounds:   bounds,
		zoom:     zoom,
		opacity:  opacity,
		start:    start,
		end:      end,
		offset:   offset,
		topLeft:  pm.TopLeftPixel(bounds, offset, zoom),
		workers:  o.workers,
	}

	Logger().Debug("heatmap: planned",
		"points", len(points),
		"bounds", bounds.String(),
		"zoom", zoom,
		"tiles_start", start.String(),
		"tiles_end", end.String(),
		"opacity", opacity,
		"indexed", pm.index != nil,
	)
	return h, nil
}

// Bounds returns the rendered geographic area.
func (h *Heatmap) Bounds() GeoRect { return h.bounds }

// Zoom returns the selected zoom level.
func (h *Heatmap) Zoom() int { return h.zoom }

// Opacity returns the tile opacity in 0..255.
func (h *Heatmap) Opacity() int { return h.opacity }

// Size returns the output image size.
func (h *Heatmap) Size() image.Point { return h.pm.Size() }

// Palette returns the palette tiles are colorized with.
func (h *Heatmap) Palette() *Palette { return h.palette }

// Points returns the input points.
func (h *Heatmap) Points() []GeoPoint { return h.pm.Points() }

// TileRange returns the first and last rendered tile, both inclusive.
func (h *Heatmap) TileRange() (start, end TileIndex) { return h.start, h.end }

// TileCount returns the number of tiles in the range.
func (h *Heatmap) TileCount() int {
	return int(h.end.X-h.start.X+1) * int(h.end.Y-h.start.Y+1)
}

// Offset returns where the first tile's top-left corner lands in the
// output image.
func (h *Heatmap) Offset() PixelPoint { return h.offset }

// TopLeftPixel returns the world pixel at the output image's top-left
// corner.
func (h *Heatmap) TopLeftPixel() PixelPoint { return h.topLeft }

// TilePosition returns the top-left corner of tile t in the output image.
func (h *Heatmap) TilePosition(t TileIndex) image.Point {
	return image.Pt(
		int(h.offset.X+(t.X-h.start.X)*TileSize),
		int(h.offset.Y+(t.Y-h.start.Y)*TileSize),
	)
}

// RenderTile renders a single tile at the heatmap's zoom and opacity.
// t need not lie in the tile range.
func (h *Heatmap) RenderTile(t TileIndex) (*Tile, error) {
	start := time.Now()
	tile, err := h.renderer.RenderTile(h.pm, h.palette, h.zoom, t, h.opacity)
	if err != nil {
		return nil, err
	}
	if h.observer != nil {
		h.observer.ObserveTile(tile.Empty, time.Since(start))
	}
	return tile, nil
}

// RenderTiles renders every tile in the range, column by column. With more
// than one worker the tiles render in parallel; the result order is the
// same either way.
func (h *Heatmap) RenderTiles(ctx context.Context) ([]*Tile, error) {
	var indexes []TileIndex
	for x := h.start.X; x <= h.end.X; x++ {
		for y := h.start.Y; y <= h.end.Y; y++ {
			indexes = append(indexes, TileIndex{X: x, Y: y})
		}
	}
	tiles := make([]*Tile, len(indexes))

	if h.workers <= 1 || len(indexes) == 1 {
		for i, t := range indexes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			tile, err := h.RenderTile(t)
			if err != nil {
				return nil, fmt.Errorf("heatmap: tile %s: %w", t, err)
			}
			tiles[i] = tile
		}
		return tiles, nil
	}

	pool := parallel.NewWorkerPool(min(h.workers, len(indexes)))
	defer pool.Close()

	tasks := make([]parallel.Task, len(indexes))
	for i, t := range indexes {
		tasks[i] = func(context.Context) error {
			tile, err := h.RenderTile(t)
			if err != nil {
				return fmt.Errorf("heatmap: tile %s: %w", t, err)
			}
			tiles[i] = tile
			return nil
		}
	}
	if err := pool.Run(ctx, tasks); err != nil {
		return nil, err
	}
	return tiles, nil
}

// Render renders the heat layer into a new transparent image of the
// output size.
func (h *Heatmap) Render(ctx context.Context) (*image.NRGBA, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "heatmap.Render")
	defer span.End()
	span.SetAttributes(
		attribute.Int("heatmap.zoom", h.zoom),
		attribute.Int("heatmap.tiles", h.TileCount()),
		attribute.Int("heatmap.points", len(h.pm.Points())),
	)

	tiles, err := h.RenderTiles(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	size := h.Size()
	img := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	dst, err := ibuf.WrapNRGBA(img)
	if err != nil {
		return nil, err
	}
	for _, tile := range tiles {
		// Tiles never overlap, so a plain copy composes them.
		if err := ibuf.Copy(dst, h.TilePosition(tile.Index), tile.buf); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// Draw renders the heat layer over dst, aligned with dst's top-left corner.
func (h *Heatmap) Draw(ctx context.Context, dst draw.Image) error {
	img, err := h.Render(ctx)
	if err != nil {
		return err
	}
	b := dst.Bounds()
	xdraw.Draw(dst, image.Rectangle{Min: b.Min, Max: b.Min.Add(img.Rect.Size())}, img, image.Point{}, xdraw.Over)
	return nil
}

// RenderOver renders the heat layer over a base map. A base map of a
// different size is resampled to the output size first.
func (h *Heatmap) RenderOver(ctx context.Context, base image.Image) (*image.NRGBA, error) {
	size := h.Size()
	out := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	if base != nil {
		if base.Bounds().Size() == size {
			xdraw.Draw(out, out.Rect, base, base.Bounds().Min, xdraw.Src)
		} else {
			xdraw.CatmullRom.Scale(out, out.Rect, base, base.Bounds(), xdraw.Src, nil)
		}
	}
	if err := h.Draw(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// MapRequest returns the static map request for the base map matching
// this heatmap: same center, zoom and size.
func (h *Heatmap) MapRequest() staticmap.Request {
	c := h.bounds.Center()
	size := h.Size()
	return staticmap.Request{
		Center: staticmap.LatLng{Lat: c.Lat, Lng: c.Lng},
		Zoom:   h.zoom,
		Width:  size.X,
		Height: size.Y,
	}
}

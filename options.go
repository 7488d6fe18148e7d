package heatmap

import "image"

// DefaultImageSize is the default output edge length, the largest image
// the free static map tier serves.
const DefaultImageSize = 640

// Option configures a Heatmap during creation.
//
// Example:
//
//	hm, err := heatmap.New(points,
//		heatmap.WithImageSize(1024, 768),
//		heatmap.WithPalette("valerie"),
//		heatmap.WithWorkers(4),
//	)
type Option func(*options)

type indexMode uint8

const (
	indexAuto indexMode = iota
	indexOn
	indexOff
)

// autoIndexThreshold is the point count from which indexAuto builds a
// spatial index.
const autoIndexThreshold = 512

type options struct {
	size         image.Point
	viewport     *GeoRect
	palette      string
	renderer     *TileRenderer
	curve        OpacityCurve
	fixedOpacity *int
	proj         *Mercator
	workers      int
	index        indexMode
	observer     TileObserver
}

func defaultOptions() options {
	return options{
		size:    image.Pt(DefaultImageSize, DefaultImageSize),
		palette: DefaultPalette,
		curve:   DefaultOpacityCurve(),
		workers: 1,
	}
}

// WithImageSize sets the output image size in pixels.
func WithImageSize(width, height int) Option {
	return func(o *options) {
		o.size = image.Pt(width, height)
	}
}

// WithViewport fixes the rendered area instead of fitting the points.
// Points outside the viewport are clipped away by the tile range.
func WithViewport(r GeoRect) Option {
	return func(o *options) {
		o.viewport = &r
	}
}

// WithPalette selects the palette by name.
func WithPalette(name string) Option {
	return func(o *options) {
		o.palette = name
	}
}

// WithAssets renders with a dedicated TileRenderer over assets.
func WithAssets(assets AssetProvider) Option {
	return func(o *options) {
		o.renderer = NewTileRenderer(assets, 0)
	}
}

// WithRenderer shares an existing TileRenderer, and with it the prepared
// dots and empty-tile cache.
func WithRenderer(r *TileRenderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithOpacity sets the zoom levels between which tile opacity fades from
// opaque to transparent.
func WithOpacity(zoomOpaque, zoomTransparent int) Option {
	return func(o *options) {
		o.curve = NewOpacityCurve(zoomOpaque, zoomTransparent)
		o.fixedOpacity = nil
	}
}

// WithFixedOpacity uses the same opacity at every zoom level. New fails
// with ErrOpacityRange unless 0 <= opacity <= 255.
func WithFixedOpacity(opacity int) Option {
	return func(o *options) {
		o.fixedOpacity = &opacity
	}
}

// WithProjection uses proj for all conversions, sharing its caches.
func WithProjection(proj *Mercator) Option {
	return func(o *options) {
		o.proj = proj
	}
}

// WithWorkers renders tiles on n goroutines. n <= 1 renders sequentially.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSpatialIndex forces the quadtree point index on or off. By default
// it is built for large point sets only.
func WithSpatialIndex(enabled bool) Option {
	return func(o *options) {
		if enabled {
			o.index = indexOn
		} else {
			o.index = indexOff
		}
	}
}

// WithTileObserver reports every tile render to obs.
func WithTileObserver(obs TileObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

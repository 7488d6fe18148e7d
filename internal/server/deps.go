package server

import (
	"context"
	"image"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/staticmap"
)

// BaseMapFetcher downloads base map images. *staticmap.Fetcher satisfies it.
type BaseMapFetcher interface {
	FetchImage(ctx context.Context, req staticmap.Request) (image.Image, error)
}

// Pinger is a dependency the readiness check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Renderer   *heatmap.TileRenderer
	Projection *heatmap.Mercator
	BaseMaps   BaseMapFetcher // nil disables base maps
	Cache      Pinger         // nil when no cache is configured

	DefaultPalette string

	// ZoomOpaque and ZoomTransparent bound the zoom-dependent opacity curve.
	ZoomOpaque      int
	ZoomTransparent int

	MaxSize   int
	MaxPoints int
	Workers   int
	Version   string
}

func (d *Dependencies) palettes() []string {
	if l, ok := d.Renderer.Assets().(interface{ Palettes() []string }); ok {
		return l.Palettes()
	}
	return nil
}

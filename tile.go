package heatmap

import (
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/gogpu/heatmap/internal/blend"
	"github.com/gogpu/heatmap/internal/cache"
	ibuf "github.com/gogpu/heatmap/internal/image"
)

// DefaultEmptyTileCacheSize bounds the number of distinct empty tiles kept
// by a TileRenderer.
const DefaultEmptyTileCacheSize = 64

// dotBrightness lightens dot sprites before stamping so a single point
// stays in the translucent end of the palette.
const dotBrightness = 1.1

// Tile is one rendered 256x256 heat tile with straight alpha.
type Tile struct {
	Index TileIndex
	Zoom  int

	// Empty is set when no point reached the tile. Empty tiles share
	// their pixels and must not be modified.
	Empty bool

	buf *ibuf.ImageBuf
}

// Image returns a copy of the tile pixels.
func (t *Tile) Image() *image.NRGBA {
	return t.buf.ToStdImage()
}

// EncodePNG writes the tile as PNG.
func (t *Tile) EncodePNG(w io.Writer) error {
	return t.buf.EncodePNG(w)
}

type emptyKey struct {
	palette string
	opacity int
}

type preparedDot struct {
	once sync.Once
	buf  *ibuf.ImageBuf
	err  error
}

// TileRenderer turns the points near a tile into a colorized heat tile.
//
// A TileRenderer is safe for concurrent use and is meant to be shared:
// it holds the prepared dot sprites and the cache of empty tiles.
type TileRenderer struct {
	assets   AssetProvider
	empty    *cache.LRU[emptyKey, *ibuf.ImageBuf]
	canvases *ibuf.Pool
	dots     [MaxZoom + 1]preparedDot
}

// canvasesPerSize bounds the idle stamping canvases kept per dot size.
const canvasesPerSize = 8

// NewTileRenderer creates a renderer drawing from assets. emptyCacheSize
// bounds the empty-tile cache; 0 or less uses DefaultEmptyTileCacheSize.
func NewTileRenderer(assets AssetProvider, emptyCacheSize int) *TileRenderer {
	if emptyCacheSize <= 0 {
		emptyCacheSize = DefaultEmptyTileCacheSize
	}
	return &TileRenderer{
		assets:   assets,
		empty:    cache.NewLRU[emptyKey, *ibuf.ImageBuf](emptyCacheSize),
		canvases: ibuf.NewPool(canvasesPerSize),
	}
}

var (
	defaultRendererOnce sync.Once
	defaultRenderer     *TileRenderer
)

// DefaultTileRenderer returns the shared renderer over DefaultAssets.
func DefaultTileRenderer() *TileRenderer {
	defaultRendererOnce.Do(func() {
		defaultRenderer = NewTileRenderer(DefaultAssets(), 0)
	})
	return defaultRenderer
}

// Assets returns the renderer's asset provider.
func (r *TileRenderer) Assets() AssetProvider {
	return r.assets
}

// dot returns the stamping sprite for zoom: the provider's sprite converted
// to RGB over white and lightened by dotBrightness. Prepared once per zoom.
func (r *TileRenderer) dot(zoom int) (*ibuf.ImageBuf, error) {
	d := &r.dots[clampZoom(zoom)]
	d.once.Do(func() {
		img, err := r.assets.Dot(zoom)
		if err != nil {
			d.err = err
			return
		}
		buf := ibuf.FromStdImageRGB(img)
		if buf == nil {
			d.err = fmt.Errorf("%w: zoom %d sprite is empty", ErrMissingDot, zoom)
			return
		}
		if err := blend.ScaleMatrix(dotBrightness, dotBrightness, dotBrightness, 1).Apply(buf); err != nil {
			d.err = err
			return
		}
		d.buf = buf
	})
	return d.buf, d.err
}

// DotSize returns the size of the dot sprite used at zoom.
func (r *TileRenderer) DotSize(zoom int) (image.Point, error) {
	d, err := r.dot(zoom)
	if err != nil {
		return image.Point{}, err
	}
	return d.Rect().Size(), nil
}

// RenderTile renders tile t at zoom for the points managed by pm.
// opacity scales the alpha of every palette color and must be in 0..255.
func (r *TileRenderer) RenderTile(pm *PointManager, palette *Palette, zoom int, t TileIndex, opacity int) (*Tile, error) {
	if !validOpacity(opacity) {
		return nil, fmt.Errorf("%w: %d", ErrOpacityRange, opacity)
	}
	dot, err := r.dot(zoom)
	if err != nil {
		return nil, err
	}

	points := pm.PointsForTile(t, dot.Width(), dot.Height(), zoom)
	if len(points) == 0 {
		return &Tile{Index: t, Zoom: zoom, Empty: true, buf: r.emptyTile(palette, opacity)}, nil
	}

	density, canvas, err := stamp(r.canvases, dot, points)
	if err != nil {
		return nil, err
	}
	buf := colorize(density, palette, opacity)
	r.canvases.Put(canvas)
	return &Tile{Index: t, Zoom: zoom, buf: buf}, nil
}

// EmptyTile returns the tile drawn where no point reaches: the palette's
// "no heat" color with its alpha scaled by opacity.
func (r *TileRenderer) EmptyTile(palette *Palette, opacity int) (*Tile, error) {
	if !validOpacity(opacity) {
		return nil, fmt.Errorf("%w: %d", ErrOpacityRange, opacity)
	}
	return &Tile{Empty: true, buf: r.emptyTile(palette, opacity)}, nil
}

func (r *TileRenderer) emptyTile(palette *Palette, opacity int) *ibuf.ImageBuf {
	key := emptyKey{palette: palette.Name(), opacity: opacity}
	return r.empty.GetOrCreate(key, func() *ibuf.ImageBuf {
		buf, _ := ibuf.NewImageBuf(TileSize, TileSize, ibuf.FormatRGBA8)
		c := palette.Lowest()
		buf.Fill(c.R, c.G, c.B, scaleAlpha(c.A, opacity))
		return buf
	})
}

// EmptyCacheStats returns the empty-tile cache counters.
func (r *TileRenderer) EmptyCacheStats() CacheStats {
	st := r.empty.Stats()
	return CacheStats{Entries: st.Len, Hits: st.Hits, Misses: st.Misses, Evictions: st.Evictions}
}

// stamp multiplies one dot per point onto a white canvas and returns the
// central 256x256 region. The canvas is padded by two dot sizes on every
// side so dots centered just outside the tile are drawn whole before the
// trim. The canvas comes from pool; the returned density is a view of it
// and stays valid until the canvas is put back.
func stamp(pool *ibuf.Pool, dot *ibuf.ImageBuf, points []PixelPoint) (density, canvas *ibuf.ImageBuf, err error) {
	w, h := dot.Width(), dot.Height()
	padX, padY := 2*w, 2*h

	canvas, err = pool.Get(TileSize+2*padX, TileSize+2*padY, ibuf.FormatRGB8)
	if err != nil {
		return nil, nil, err
	}
	canvas.Fill(255, 255, 255, 255)

	for _, p := range points {
		// Center the dot on the point.
		at := image.Pt(int(p.X)+padX-w/2, int(p.Y)+padY-h/2)
		dst := image.Rectangle{Min: at, Max: at.Add(image.Pt(w, h))}.Intersect(canvas.Rect())
		if dst.Empty() {
			continue
		}
		if err := blend.Blend(canvas, dst, dot, dst.Min.Sub(at), blend.Multiply); err != nil {
			pool.Put(canvas)
			return nil, nil, err
		}
	}

	return canvas.SubImage(image.Rect(padX, padY, padX+TileSize, padY+TileSize)), canvas, nil
}

// colorize maps each density pixel through the palette. The red channel is
// the density level: 255 means untouched, lower means more overlap.
func colorize(density *ibuf.ImageBuf, palette *Palette, opacity int) *ibuf.ImageBuf {
	out, _ := ibuf.NewImageBuf(density.Width(), density.Height(), ibuf.FormatRGBA8)

	var alpha [256]uint8
	for i := range alpha {
		alpha[i] = scaleAlpha(palette.At(uint8(i)).A, opacity)
	}

	for y := range density.Height() {
		src := density.RowBytes(y)
		dst := out.RowBytes(y)
		for x := range density.Width() {
			level := src[x*3]
			c := palette.At(level)
			i := x * 4
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c.R, c.G, c.B, alpha[level]
		}
	}
	return out
}

// scaleAlpha returns a * opacity / 255.
func scaleAlpha(a uint8, opacity int) uint8 {
	return uint8(int(a) * opacity / Opaque)
}

package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/internal/metrics"
	"github.com/gogpu/heatmap/staticmap"
)

type pointJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type viewportJSON struct {
	North float64 `json:"north"`
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
}

// RenderRequest is the body of POST /v1/heatmap.
type RenderRequest struct {
	Points   []pointJSON   `json:"points"`
	Viewport *viewportJSON `json:"viewport,omitempty"`
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Palette  string        `json:"palette,omitempty"`
	Opacity  *int          `json:"opacity,omitempty"`
	BaseMap  bool          `json:"basemap,omitempty"`
	MapType  string        `json:"maptype,omitempty"`
}

// TileRequest is the body of POST /v1/tiles/:z/:x/:y.
type TileRequest struct {
	Points  []pointJSON `json:"points"`
	Palette string      `json:"palette,omitempty"`
	Opacity *int        `json:"opacity,omitempty"`
}

func (d *Dependencies) geoPoints(in []pointJSON) ([]heatmap.GeoPoint, error) {
	if d.MaxPoints > 0 && len(in) > d.MaxPoints {
		return nil, fmt.Errorf("too many points: %d > %d", len(in), d.MaxPoints)
	}
	out := make([]heatmap.GeoPoint, len(in))
	for i, p := range in {
		gp := heatmap.GeoPoint{Lat: p.Lat, Lng: p.Lng}
		if !gp.IsValid() {
			return nil, fmt.Errorf("point %d out of range: %s", i, gp)
		}
		out[i] = gp
	}
	return out, nil
}

func (d *Dependencies) palette(name string) string {
	if name == "" {
		return d.DefaultPalette
	}
	return name
}

// renderError maps renderer errors to API errors.
func renderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// The timeout middleware turns these into 408.
		return err
	case errors.Is(err, heatmap.ErrUnknownPalette):
		return newError(c, fiber.StatusBadRequest, "unknown_palette", err.Error())
	case errors.Is(err, heatmap.ErrNoPoints),
		errors.Is(err, heatmap.ErrInvalidViewport),
		errors.Is(err, heatmap.ErrInvalidImageSize),
		errors.Is(err, heatmap.ErrOpacityRange):
		return errBadRequest(c, err.Error())
	case errors.Is(err, staticmap.ErrImageTooLarge):
		return errTooLarge(c, err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("render failed", "error", err)
	return errInternal(c, "render failed")
}

func sendPNG(c *fiber.Ctx, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return errInternal(c, "encode png")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}

// RenderHandler renders a heatmap PNG, optionally over a base map.
func RenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RenderRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		points, err := deps.geoPoints(req.Points)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		w, h := req.Width, req.Height
		if w == 0 {
			w = heatmap.DefaultImageSize
		}
		if h == 0 {
			h = heatmap.DefaultImageSize
		}
		if w > deps.MaxSize || h > deps.MaxSize {
			return errTooLarge(c, fmt.Sprintf("image %dx%d exceeds %dx%d", w, h, deps.MaxSize, deps.MaxSize))
		}

		opts := []heatmap.Option{
			heatmap.WithImageSize(w, h),
			heatmap.WithPalette(deps.palette(req.Palette)),
			heatmap.WithRenderer(deps.Renderer),
			heatmap.WithProjection(deps.Projection),
			heatmap.WithWorkers(deps.Workers),
			heatmap.WithOpacity(deps.ZoomOpaque, deps.ZoomTransparent),
			heatmap.WithTileObserver(metrics.Tiles{}),
		}
		if req.Viewport != nil {
			v := req.Viewport
			opts = append(opts, heatmap.WithViewport(heatmap.NewGeoRect(
				heatmap.GeoPoint{Lat: v.North, Lng: v.West},
				heatmap.GeoPoint{Lat: v.South, Lng: v.East},
			)))
		}
		if req.Opacity != nil {
			opts = append(opts, heatmap.WithFixedOpacity(*req.Opacity))
		}

		ctx := c.UserContext()
		start := time.Now()
		hm, err := heatmap.New(points, opts...)
		if err != nil {
			metrics.ObserveRender(0, err)
			return renderError(c, err)
		}

		var img *image.NRGBA
		if req.BaseMap {
			if deps.BaseMaps == nil {
				return newError(c, fiber.StatusNotImplemented, "basemap_disabled", "base maps are not configured")
			}
			mreq := hm.MapRequest()
			mreq.MapType = req.MapType
			base, ferr := deps.BaseMaps.FetchImage(ctx, mreq)
			if ferr != nil {
				if errors.Is(ferr, staticmap.ErrImageTooLarge) ||
					errors.Is(ferr, context.DeadlineExceeded) ||
					errors.Is(ferr, context.Canceled) {
					return renderError(c, ferr)
				}
				LoggerFromCtx(ctx).Warn("base map fetch failed", "error", ferr)
				return errUpstream(c, "base map unavailable")
			}
			img, err = hm.RenderOver(ctx, base)
		} else {
			img, err = hm.Render(ctx)
		}
		metrics.ObserveRender(time.Since(start), err)
		if err != nil {
			return renderError(c, err)
		}

		c.Set("X-Heatmap-Zoom", strconv.Itoa(hm.Zoom()))
		c.Set("X-Heatmap-Tiles", strconv.Itoa(hm.TileCount()))
		c.Set("X-Heatmap-Opacity", strconv.Itoa(hm.Opacity()))
		return sendPNG(c, img)
	}
}

// TileHandler renders one 256x256 heat tile for the points in the body.
func TileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		z, err := c.ParamsInt("z")
		if err != nil || z < 0 || z > heatmap.MaxZoom {
			return errBadRequest(c, "zoom must be 0-31")
		}
		x, errX := strconv.ParseInt(c.Params("x"), 10, 64)
		y, errY := strconv.ParseInt(c.Params("y"), 10, 64)
		n := int64(1) << z
		if errX != nil || errY != nil || x < 0 || y < 0 || x >= n || y >= n {
			return errBadRequest(c, fmt.Sprintf("tile must lie in 0..%d at zoom %d", n-1, z))
		}

		var req TileRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		points, err := deps.geoPoints(req.Points)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		pal, err := deps.Renderer.Assets().Palette(deps.palette(req.Palette))
		if err != nil {
			return renderError(c, err)
		}
		opacity := heatmap.NewOpacityCurve(deps.ZoomOpaque, deps.ZoomTransparent).At(z)
		if req.Opacity != nil {
			if *req.Opacity < heatmap.Transparent || *req.Opacity > heatmap.Opaque {
				return renderError(c, fmt.Errorf("%w: %d", heatmap.ErrOpacityRange, *req.Opacity))
			}
			opacity = *req.Opacity
		}

		pm := heatmap.NewPointManager(points, image.Pt(heatmap.TileSize, heatmap.TileSize), deps.Projection)
		start := time.Now()
		tile, err := deps.Renderer.RenderTile(pm, pal, z, heatmap.TileIndex{X: x, Y: y}, opacity)
		if err != nil {
			return renderError(c, err)
		}
		metrics.Tiles{}.ObserveTile(tile.Empty, time.Since(start))

		c.Set("X-Heatmap-Empty", strconv.FormatBool(tile.Empty))
		var buf bytes.Buffer
		if err := tile.EncodePNG(&buf); err != nil {
			return errInternal(c, "encode png")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())
	}
}

// PalettesHandler lists the palette names the renderer knows.
func PalettesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		names := deps.palettes()
		if names == nil {
			names = []string{}
		}
		return c.JSON(fiber.Map{
			"palettes": names,
			"default":  deps.DefaultPalette,
		})
	}
}

package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"golang.org/x/text/unicode/norm"

	ibuf "github.com/gogpu/heatmap/internal/image"
)

// Overlays are drawn onto an image aligned with the heatmap output, such
// as the result of Render or RenderOver. Geographic positions go through
// the heatmap's projection so shapes line up with the heat layer.

// PixelFor returns the output image position of p.
func (h *Heatmap) PixelFor(p GeoPoint) image.Point {
	return h.pm.ToImagePoint(p, h.topLeft, h.zoom)
}

// RectFor returns the output image rectangle covering r.
func (h *Heatmap) RectFor(r GeoRect) image.Rectangle {
	return h.pm.ToImageRect(r, h.topLeft, h.zoom)
}

// FillPolygon fills the polygon through points with c.
func (h *Heatmap) FillPolygon(dst draw.Image, points []GeoPoint, c color.Color) {
	if len(points) < 3 {
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over

	for i, p := range points {
		x, y := h.local(p, b)
		if i == 0 {
			r.MoveTo(x, y)
		} else {
			r.LineTo(x, y)
		}
	}
	r.ClosePath()
	r.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// DrawPolygon strokes the closed outline through points with c. width is
// the line width in pixels.
func (h *Heatmap) DrawPolygon(dst draw.Image, points []GeoPoint, c color.Color, width float64) {
	if len(points) < 2 || width <= 0 {
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over

	half := float32(width / 2)
	for i := range points {
		x0, y0 := h.local(points[i], b)
		x1, y1 := h.local(points[(i+1)%len(points)], b)
		strokeSegment(r, x0, y0, x1, y1, half)
	}
	r.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// strokeSegment adds the rectangle around one segment, extended by half at
// both ends so consecutive segments join without notches. All rectangles
// share one winding direction and their coverage accumulates.
func strokeSegment(r *vector.Rasterizer, x0, y0, x1, y1, half float32) {
	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	ux, uy := dx/l*half, dy/l*half
	nx, ny := -uy, ux

	ax, ay := x0-ux, y0-uy
	bx, by := x1+ux, y1+uy
	r.MoveTo(ax+nx, ay+ny)
	r.LineTo(bx+nx, by+ny)
	r.LineTo(bx-nx, by-ny)
	r.LineTo(ax-nx, ay-ny)
	r.ClosePath()
}

// local returns p in the coordinate space of a rasterizer covering b.
func (h *Heatmap) local(p GeoPoint, b image.Rectangle) (float32, float32) {
	pt := h.PixelFor(p).Sub(b.Min)
	return float32(pt.X), float32(pt.Y)
}

// DrawImage scales overlay to cover bounds and composites it over dst.
func (h *Heatmap) DrawImage(dst draw.Image, overlay image.Image, bounds GeoRect) {
	r := h.RectFor(bounds).Canon()
	if r.Empty() {
		return
	}
	xdraw.BiLinear.Scale(dst, r, overlay, overlay.Bounds(), xdraw.Over, nil)
}

// DrawImageRotated scales overlay to the size of bounds, rotates it by
// degrees clockwise around its center, and composites it over dst with
// that center at the center of bounds.
func (h *Heatmap) DrawImageRotated(dst draw.Image, overlay image.Image, bounds GeoRect, degrees float64) {
	r := h.RectFor(bounds).Canon()
	sb := overlay.Bounds()
	if r.Empty() || sb.Empty() {
		return
	}

	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	sx := float64(r.Dx()) / float64(sb.Dx())
	sy := float64(r.Dy()) / float64(sb.Dy())

	m := ibuf.Translate(cx, cy).
		Multiply(ibuf.Rotate(degrees * math.Pi / 180)).
		Multiply(ibuf.Scale(sx, sy)).
		Multiply(ibuf.Translate(-float64(sb.Min.X)-float64(sb.Dx())/2, -float64(sb.Min.Y)-float64(sb.Dy())/2))

	xdraw.BiLinear.Transform(dst, m.Aff3(), overlay, sb, xdraw.Over, nil)
}

// DefaultLabelSize is the label font size in points at 72 DPI.
const DefaultLabelSize = 12

var (
	labelFontOnce sync.Once
	labelFont     *opentype.Font
	labelFontErr  error
)

// DrawLabel draws text centered horizontally above p, in the Go regular
// font at size points. size <= 0 uses DefaultLabelSize.
func (h *Heatmap) DrawLabel(dst draw.Image, p GeoPoint, text string, c color.Color, size float64) error {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(goregular.TTF)
	})
	if labelFontErr != nil {
		return fmt.Errorf("heatmap: label font: %w", labelFontErr)
	}
	if size <= 0 {
		size = DefaultLabelSize
	}

	// Faces keep glyph buffers and are not safe for concurrent use.
	face, err := opentype.NewFace(labelFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("heatmap: label face: %w", err)
	}
	defer face.Close()

	text = norm.NFC.String(text)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	at := h.PixelFor(p)
	d.Dot = fixed.Point26_6{
		X: fixed.I(at.X) - d.MeasureString(text)/2,
		Y: fixed.I(at.Y) - face.Metrics().Descent,
	}
	d.DrawString(text)
	return nil
}

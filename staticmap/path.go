package staticmap

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a straight-alpha RGBA color rendered as 0xRRGGBBAA.
type Color color.NRGBA

// Hex returns the color as 0xRRGGBBAA.
func (c Color) Hex() string {
	return fmt.Sprintf("0x%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Path is a polyline or polygon drawn on the map.
type Path struct {
	// Color is the stroke color. Nil leaves the service default.
	Color *Color

	// FillColor fills the area enclosed by the path.
	FillColor *Color

	// Weight is the stroke width in pixels. Zero leaves the default.
	Weight int

	// Geodesic follows the curvature of the earth.
	Geodesic bool

	Points []LatLng
}

// String renders the path query parameter.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("path=")
	if p.Color != nil {
		b.WriteString("color:" + p.Color.Hex() + "|")
	}
	if p.FillColor != nil {
		b.WriteString("fillcolor:" + p.FillColor.Hex() + "|")
	}
	if p.Weight > 0 {
		b.WriteString("weight:" + strconv.Itoa(p.Weight) + "|")
	}
	if p.Geodesic {
		b.WriteString("geodesic:true|")
	}
	for _, pt := range p.Points {
		b.WriteString(pt.String())
		b.WriteByte('|')
	}
	return strings.TrimSuffix(b.String(), "|")
}

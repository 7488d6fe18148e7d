package heatmap

// Opacity bounds and the defaults of the zoom-dependent opacity curve.
const (
	Opaque      = 255
	Transparent = 0

	// DefaultOpacity is the alpha used when a fixed opacity is requested
	// without a value.
	DefaultOpacity = 50

	DefaultZoomOpaque      = -15
	DefaultZoomTransparent = 15
)

// OpacityCurve maps each zoom level to a tile alpha. Levels at or below
// the opaque zoom get Opaque, levels at or beyond the transparent zoom get
// Transparent, and the levels between fall off linearly.
type OpacityCurve [MaxZoom + 1]int

// NewOpacityCurve builds the curve between zoomOpaque and zoomTransparent.
// If zoomTransparent is not greater than zoomOpaque the curve is disabled
// and every level maps to Transparent.
func NewOpacityCurve(zoomOpaque, zoomTransparent int) OpacityCurve {
	var c OpacityCurve
	steps := zoomTransparent - zoomOpaque
	if steps < 1 {
		return c
	}

	step := float64(Opaque) / float64(steps)
	for z := range c {
		switch {
		case z <= zoomOpaque:
			c[z] = Opaque
		case z >= zoomTransparent:
			c[z] = Transparent
		default:
			c[z] = int(Opaque - float64(z-zoomOpaque)*step)
		}
	}
	return c
}

// DefaultOpacityCurve returns the curve between DefaultZoomOpaque and
// DefaultZoomTransparent.
func DefaultOpacityCurve() OpacityCurve {
	return NewOpacityCurve(DefaultZoomOpaque, DefaultZoomTransparent)
}

// At returns the alpha for zoom, clamping zoom to [0, MaxZoom].
func (c OpacityCurve) At(zoom int) int {
	return c[clampZoom(zoom)]
}

// validOpacity reports whether v is a usable alpha.
func validOpacity(v int) bool {
	return v >= Transparent && v <= Opaque
}

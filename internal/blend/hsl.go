package blend

// HSL conversions for the non-separable operations (Hue, Saturation,
// Color, Luminosity).
//
// Components use an integer scale of 0..hlsMax. Keeping the arithmetic in
// integers makes round trips of the primaries exact, which the float form
// does not guarantee.

const (
	hlsMax = 360
	rgbMax = 255

	// hueUndefined is the hue reported for achromatic colors.
	hueUndefined = 0
)

// hls is a color in integer hue/luminance/saturation form.
type hls struct {
	h, l, s int
}

// rgbToHLS converts an RGB triple to HLS on the 0..360 scale.
func rgbToHLS(r, g, b byte) hls {
	ri, gi, bi := int(r), int(g), int(b)
	cMax := max(ri, gi, bi)
	cMin := min(ri, gi, bi)

	l := ((cMax+cMin)*hlsMax + rgbMax) / (2 * rgbMax)
	if cMax == cMin {
		return hls{h: hueUndefined, l: l, s: 0}
	}

	delta := cMax - cMin
	var s int
	if l <= hlsMax/2 {
		s = (delta*hlsMax + (cMax+cMin)/2) / (cMax + cMin)
	} else {
		sum := 2*rgbMax - cMax - cMin
		s = (delta*hlsMax + sum/2) / sum
	}

	rDelta := ((cMax-ri)*(hlsMax/6) + delta/2) / delta
	gDelta := ((cMax-gi)*(hlsMax/6) + delta/2) / delta
	bDelta := ((cMax-bi)*(hlsMax/6) + delta/2) / delta

	var h int
	switch cMax {
	case ri:
		h = bDelta - gDelta
	case gi:
		h = hlsMax/3 + rDelta - bDelta
	default:
		h = 2*hlsMax/3 + gDelta - rDelta
	}

	if h < 0 {
		h += hlsMax
	}
	if h > hlsMax {
		h -= hlsMax
	}
	return hls{h: h, l: l, s: s}
}

// hueToRGB returns one channel (0..hlsMax) for the given hue position.
func hueToRGB(n1, n2, hue int) int {
	if hue < 0 {
		hue += hlsMax
	}
	if hue > hlsMax {
		hue -= hlsMax
	}

	switch {
	case hue < hlsMax/6:
		return n1 + ((n2-n1)*hue+hlsMax/12)/(hlsMax/6)
	case hue < hlsMax/2:
		return n2
	case hue < hlsMax*2/3:
		return n1 + ((n2-n1)*(hlsMax*2/3-hue)+hlsMax/12)/(hlsMax/6)
	default:
		return n1
	}
}

// hlsToRGB converts HLS on the 0..360 scale back to RGB.
func hlsToRGB(c hls) (r, g, b byte) {
	if c.s == 0 {
		v := clampInt(c.l * rgbMax / hlsMax)
		return v, v, v
	}

	var magic2 int
	if c.l <= hlsMax/2 {
		magic2 = (c.l*(hlsMax+c.s) + hlsMax/2) / hlsMax
	} else {
		magic2 = c.l + c.s - (c.l*c.s+hlsMax/2)/hlsMax
	}
	magic1 := 2*c.l - magic2

	channel := func(hue int) byte {
		return clampInt((hueToRGB(magic1, magic2, hue)*rgbMax + hlsMax/2) / hlsMax)
	}
	return channel(c.h + hlsMax/3), channel(c.h), channel(c.h - hlsMax/3)
}

// pixelFunc combines a whole source pixel with a whole destination pixel.
type pixelFunc func(sr, sg, sb, dr, dg, db byte) (r, g, b byte)

// pixelFuncs holds the non-separable operations, indexed by Operation.
var pixelFuncs = [operationCount]pixelFunc{
	Hue:        huePixel,
	Saturation: saturationPixel,
	Color:      colorPixel,
	Luminosity: luminosityPixel,
}

// huePixel takes the hue of the source with the luminance and saturation
// of the destination.
func huePixel(sr, sg, sb, dr, dg, db byte) (r, g, b byte) {
	s, d := rgbToHLS(sr, sg, sb), rgbToHLS(dr, dg, db)
	return hlsToRGB(hls{h: s.h, l: d.l, s: d.s})
}

// saturationPixel takes the saturation of the source.
func saturationPixel(sr, sg, sb, dr, dg, db byte) (r, g, b byte) {
	s, d := rgbToHLS(sr, sg, sb), rgbToHLS(dr, dg, db)
	return hlsToRGB(hls{h: d.h, l: d.l, s: s.s})
}

// colorPixel takes the hue and saturation of the source.
func colorPixel(sr, sg, sb, dr, dg, db byte) (r, g, b byte) {
	s, d := rgbToHLS(sr, sg, sb), rgbToHLS(dr, dg, db)
	return hlsToRGB(hls{h: s.h, l: d.l, s: s.s})
}

// luminosityPixel takes the luminance of the source.
func luminosityPixel(sr, sg, sb, dr, dg, db byte) (r, g, b byte) {
	s, d := rgbToHLS(sr, sg, sb), rgbToHLS(dr, dg, db)
	return hlsToRGB(hls{h: d.h, l: s.l, s: d.s})
}

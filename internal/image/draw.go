package image

import (
	"errors"
	"image"
)

// ErrFormatMismatch is returned when two buffers must share a format.
var ErrFormatMismatch = errors.New("image: format mismatch")

// clip returns the part of src placed at dp that lands inside dst, in
// destination coordinates, and the matching source origin.
func clip(dst, src *ImageBuf, dp image.Point) (image.Rectangle, image.Point) {
	r := image.Rectangle{Min: dp, Max: dp.Add(src.Rect().Size())}.Intersect(dst.Rect())
	return r, r.Min.Sub(dp)
}

// Copy writes src into dst with its top-left corner at dp, replacing the
// destination pixels. Parts falling outside dst are clipped.
func Copy(dst *ImageBuf, dp image.Point, src *ImageBuf) error {
	if dst.format != src.format {
		return ErrFormatMismatch
	}
	r, sp := clip(dst, src, dp)
	if r.Empty() {
		return nil
	}

	bpp := dst.format.BytesPerPixel()
	n := r.Dx() * bpp
	for y := 0; y < r.Dy(); y++ {
		d := dst.RowBytes(r.Min.Y + y)[r.Min.X*bpp:][:n]
		s := src.RowBytes(sp.Y + y)[sp.X*bpp:][:n]
		copy(d, s)
	}
	return nil
}

// DrawOver composites src over dst with its top-left corner at dp using
// straight-alpha source-over. Both buffers must be RGBA8.
func DrawOver(dst *ImageBuf, dp image.Point, src *ImageBuf) error {
	if dst.format != FormatRGBA8 || src.format != FormatRGBA8 {
		return ErrFormatMismatch
	}
	r, sp := clip(dst, src, dp)
	if r.Empty() {
		return nil
	}

	n := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		d := dst.RowBytes(r.Min.Y + y)[r.Min.X*4:][:n]
		s := src.RowBytes(sp.Y + y)[sp.X*4:][:n]
		for i := 0; i < n; i += 4 {
			over(d[i:i+4:i+4], s[i:i+4:i+4])
		}
	}
	return nil
}

// over blends one straight-alpha source pixel onto a destination pixel.
func over(d, s []byte) {
	sa := int(s[3])
	switch sa {
	case 0:
		return
	case 255:
		copy(d, s)
		return
	}

	da := int(d[3]) * (255 - sa) / 255
	outA := sa + da
	for c := range 3 {
		d[c] = byte((int(s[c])*sa + int(d[c])*da + outA/2) / outA)
	}
	d[3] = byte(outA)
}

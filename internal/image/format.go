// Package image provides the pixel buffers used while rendering heat tiles.
//
// Two layouts are supported: RGB8 for density canvases and dot sprites,
// where blending works on bare channels, and RGBA8 (straight alpha) for
// colorized tiles and composed output images.
package image

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatRGB8 is 24-bit RGB (3 bytes per pixel, no alpha).
	FormatRGB8 Format = iota

	// FormatRGBA8 is 32-bit RGBA with straight (non-premultiplied) alpha.
	// Its layout matches image.NRGBA.
	FormatRGBA8

	formatCount
)

// BytesPerPixel returns the number of bytes per pixel for this format.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGB8:
		return 3
	case FormatRGBA8:
		return 4
	default:
		return 0
	}
}

// HasAlpha reports whether the format stores an alpha channel.
func (f Format) HasAlpha() bool {
	return f == FormatRGBA8
}

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatRGB8:
		return "RGB8"
	case FormatRGBA8:
		return "RGBA8"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes calculates the number of bytes needed for a row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

package image

import (
	"errors"
	"image"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrInvalidStride is returned when stride is less than minimum required.
	ErrInvalidStride = errors.New("image: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// ImageBuf is a contiguous pixel buffer with an optional row stride.
//
// ImageBuf is safe for concurrent reads. Writes require external
// synchronization.
type ImageBuf struct {
	data   []byte
	width  int
	height int
	stride int
	format Format
}

// NewImageBuf creates a zeroed buffer with the given dimensions and format.
func NewImageBuf(width, height int, format Format) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}

	stride := format.RowBytes(width)
	return &ImageBuf{
		data:   make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// FromRaw wraps existing data without copying.
// Stride must be at least format.RowBytes(width).
func FromRaw(data []byte, width, height int, format Format, stride int) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	if stride < format.RowBytes(width) {
		return nil, ErrInvalidStride
	}

	// The last row only needs its pixel bytes, which lets sub-images of
	// image.NRGBA be wrapped directly.
	required := stride*(height-1) + format.RowBytes(width)
	if len(data) < required {
		return nil, ErrDataTooSmall
	}

	return &ImageBuf{
		data:   data[:required],
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// Clone creates a deep copy with a packed stride.
func (b *ImageBuf) Clone() *ImageBuf {
	stride := b.format.RowBytes(b.width)
	out := &ImageBuf{
		data:   make([]byte, stride*b.height),
		width:  b.width,
		height: b.height,
		stride: stride,
		format: b.format,
	}
	for y := range b.height {
		copy(out.RowBytes(y), b.RowBytes(y))
	}
	return out
}

// Width returns the image width in pixels.
func (b *ImageBuf) Width() int {
	return b.width
}

// Height returns the image height in pixels.
func (b *ImageBuf) Height() int {
	return b.height
}

// Stride returns the number of bytes per row (including padding).
func (b *ImageBuf) Stride() int {
	return b.stride
}

// Format returns the pixel format.
func (b *ImageBuf) Format() Format {
	return b.format
}

// Rect returns the buffer bounds anchored at the origin.
func (b *ImageBuf) Rect() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Data returns the raw pixel data slice.
func (b *ImageBuf) Data() []byte {
	return b.data
}

// RowBytes returns the pixel bytes of row y, excluding stride padding.
// Returns nil if y is out of bounds.
func (b *ImageBuf) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	return b.data[start : start+b.format.RowBytes(b.width)]
}

// PixelOffset returns the byte offset of pixel (x, y) in the data slice.
// Returns -1 if coordinates are out of bounds.
func (b *ImageBuf) PixelOffset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return y*b.stride + x*b.format.BytesPerPixel()
}

// GetRGBA returns the color at (x, y). RGB8 pixels report alpha 255.
// Out of bounds coordinates return transparent black.
func (b *ImageBuf) GetRGBA(x, y int) (r, g, bl, a uint8) {
	off := b.PixelOffset(x, y)
	if off < 0 {
		return 0, 0, 0, 0
	}
	p := b.data[off:]
	if b.format == FormatRGB8 {
		return p[0], p[1], p[2], 255
	}
	return p[0], p[1], p[2], p[3]
}

// SetRGBA sets the color at (x, y). Alpha is dropped for RGB8 buffers.
func (b *ImageBuf) SetRGBA(x, y int, r, g, bl, a uint8) error {
	off := b.PixelOffset(x, y)
	if off < 0 {
		return ErrOutOfBounds
	}
	p := b.data[off:]
	p[0], p[1], p[2] = r, g, bl
	if b.format == FormatRGBA8 {
		p[3] = a
	}
	return nil
}

// Fill sets every pixel to the given color.
func (b *ImageBuf) Fill(r, g, bl, a uint8) {
	bpp := b.format.BytesPerPixel()
	px := [4]byte{r, g, bl, a}

	// Fill the first row pixel by pixel, then copy it down.
	first := b.RowBytes(0)
	for i := 0; i < len(first); i += bpp {
		copy(first[i:i+bpp], px[:bpp])
	}
	for y := 1; y < b.height; y++ {
		copy(b.RowBytes(y), first)
	}
}

// SubImage returns a view of r sharing the underlying pixels.
// Returns nil if r is empty or not fully inside the buffer.
func (b *ImageBuf) SubImage(r image.Rectangle) *ImageBuf {
	if r.Empty() || !r.In(b.Rect()) {
		return nil
	}
	off := b.PixelOffset(r.Min.X, r.Min.Y)
	sub, err := FromRaw(b.data[off:], r.Dx(), r.Dy(), b.format, b.stride)
	if err != nil {
		return nil
	}
	return sub
}

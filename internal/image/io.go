package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// ErrEmptyData is returned when image data is empty.
var ErrEmptyData = errors.New("image: empty data")

// DecodePNG decodes a PNG stream into an RGBA8 buffer.
func DecodePNG(r io.Reader) (*ImageBuf, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode png: %w", err)
	}
	return FromStdImage(img), nil
}

// DecodePNGBytes decodes PNG data held in memory.
func DecodePNGBytes(data []byte) (*ImageBuf, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return DecodePNG(bytes.NewReader(data))
}

// EncodePNG writes the buffer as PNG.
func (b *ImageBuf) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.ToStdImage()); err != nil {
		return fmt.Errorf("image: encode png: %w", err)
	}
	return nil
}

// EncodeToBytes encodes the buffer as PNG and returns the bytes.
func (b *ImageBuf) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromStdImage converts any image.Image into an RGBA8 buffer with straight
// alpha. Returns nil for an empty image.
func FromStdImage(img image.Image) *ImageBuf {
	bounds := img.Bounds()
	buf, err := NewImageBuf(bounds.Dx(), bounds.Dy(), FormatRGBA8)
	if err != nil {
		return nil
	}

	if src, ok := img.(*image.NRGBA); ok {
		for y := range buf.height {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(buf.RowBytes(y), src.Pix[off:])
		}
		return buf
	}

	for y := range buf.height {
		row := buf.RowBytes(y)
		for x := range buf.width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return buf
}

// FromStdImageRGB converts img into an RGB8 buffer, compositing any
// transparency over white. Returns nil for an empty image.
func FromStdImageRGB(img image.Image) *ImageBuf {
	bounds := img.Bounds()
	buf, err := NewImageBuf(bounds.Dx(), bounds.Dy(), FormatRGB8)
	if err != nil {
		return nil
	}

	for y := range buf.height {
		row := buf.RowBytes(y)
		for x := range buf.width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := x * 3
			row[i] = overWhite(c.R, c.A)
			row[i+1] = overWhite(c.G, c.A)
			row[i+2] = overWhite(c.B, c.A)
		}
	}
	return buf
}

func overWhite(v, a byte) byte {
	return byte((int(v)*int(a) + 255*(255-int(a)) + 127) / 255)
}

// ToStdImage copies the buffer into a new *image.NRGBA.
// RGB8 pixels become fully opaque.
func (b *ImageBuf) ToStdImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for y := range b.height {
		src := b.RowBytes(y)
		dst := img.Pix[y*img.Stride : y*img.Stride+b.width*4]
		if b.format == FormatRGBA8 {
			copy(dst, src)
			continue
		}
		for x := range b.width {
			dst[x*4] = src[x*3]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 255
		}
	}
	return img
}

// WrapNRGBA returns an RGBA8 buffer that shares pixels with img.
func WrapNRGBA(img *image.NRGBA) (*ImageBuf, error) {
	r := img.Bounds()
	if r.Empty() {
		return nil, ErrInvalidDimensions
	}
	return FromRaw(img.Pix[img.PixOffset(r.Min.X, r.Min.Y):], r.Dx(), r.Dy(), FormatRGBA8, img.Stride)
}

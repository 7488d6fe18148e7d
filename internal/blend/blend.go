// Package blend implements region compositing between RGB pixel buffers.
//
// Twenty-three operations are supported: a plain copy, six raster
// operations, twelve separable blend modes applied to each channel
// independently, and four non-separable modes that mix whole pixels through
// HSL space. All operations work on 8-bit RGB buffers without alpha.
package blend

import (
	"errors"
	"fmt"
	"image"

	ibuf "github.com/gogpu/heatmap/internal/image"
)

// Operation selects how source pixels are combined with destination pixels.
type Operation uint8

const (
	// SourceCopy replaces the destination with the source.
	SourceCopy Operation = iota + 1

	// MergePaint computes (255 - s) | d.
	MergePaint
	// NotSourceErase computes 255 - (s | d).
	NotSourceErase
	// SourceAnd computes s & d.
	SourceAnd
	// SourceErase computes s & (255 - d).
	SourceErase
	// SourceInvert computes s ^ d.
	SourceInvert
	// SourcePaint computes s | d.
	SourcePaint

	// Darken keeps the darker channel.
	Darken
	// Multiply computes s*d/255. Used to accumulate heat dots.
	Multiply
	// ColorBurn darkens the destination to reflect the source.
	ColorBurn
	// Lighten keeps the lighter channel.
	Lighten
	// Screen is the inverse of Multiply on inverted channels.
	Screen
	// ColorDodge brightens the destination to reflect the source.
	ColorDodge
	// Overlay multiplies or screens depending on the destination.
	Overlay
	// SoftLight darkens or lightens depending on the destination.
	SoftLight
	// HardLight multiplies or screens depending on the source.
	HardLight
	// PinLight replaces depending on the source.
	PinLight
	// Difference computes |s - d|.
	Difference
	// Exclusion is a lower-contrast Difference.
	Exclusion

	// Hue uses the source hue with destination luminance and saturation.
	Hue
	// Saturation uses the source saturation.
	Saturation
	// Color uses the source hue and saturation.
	Color
	// Luminosity uses the source luminance.
	Luminosity

	operationCount
)

var operationNames = [operationCount]string{
	SourceCopy:     "SourceCopy",
	MergePaint:     "MergePaint",
	NotSourceErase: "NotSourceErase",
	SourceAnd:      "SourceAnd",
	SourceErase:    "SourceErase",
	SourceInvert:   "SourceInvert",
	SourcePaint:    "SourcePaint",
	Darken:         "Darken",
	Multiply:       "Multiply",
	ColorBurn:      "ColorBurn",
	Lighten:        "Lighten",
	Screen:         "Screen",
	ColorDodge:     "ColorDodge",
	Overlay:        "Overlay",
	SoftLight:      "SoftLight",
	HardLight:      "HardLight",
	PinLight:       "PinLight",
	Difference:     "Difference",
	Exclusion:      "Exclusion",
	Hue:            "Hue",
	Saturation:     "Saturation",
	Color:          "Color",
	Luminosity:     "Luminosity",
}

// String returns the operation name.
func (op Operation) String() string {
	if op.IsValid() {
		return operationNames[op]
	}
	return fmt.Sprintf("Operation(%d)", uint8(op))
}

// IsValid reports whether op names a known operation.
func (op Operation) IsValid() bool {
	return op >= SourceCopy && op < operationCount
}

// IsSeparable reports whether op is applied to each channel independently.
func (op Operation) IsSeparable() bool {
	return op.IsValid() && channelFuncs[op] != nil
}

// Errors returned by Blend.
var (
	ErrNilImage            = errors.New("blend: nil image")
	ErrUnknownOperation    = errors.New("blend: unknown operation")
	ErrFormatMismatch      = errors.New("blend: images must be RGB8")
	ErrDestinationTooSmall = errors.New("blend: destination smaller than region")
	ErrSourceTooSmall      = errors.New("blend: source smaller than region")
)

// Blend combines the region r of dst with the equally sized region of src
// starting at sp, writing the result into dst.
//
// Both images must be RGB8. The region must lie inside dst and the source
// window must lie inside src; otherwise Blend returns an error and leaves
// dst unchanged. An empty region is a no-op.
//
// dst and src may be the same buffer; an overlapping source window is read
// as it was before the call. Distinct views sharing pixels through
// SubImage are not detected and must not overlap.
func Blend(dst *ibuf.ImageBuf, r image.Rectangle, src *ibuf.ImageBuf, sp image.Point, op Operation) error {
	if dst == nil || src == nil {
		return ErrNilImage
	}
	if !op.IsValid() {
		return fmt.Errorf("%w: %d", ErrUnknownOperation, uint8(op))
	}
	if dst.Format() != ibuf.FormatRGB8 || src.Format() != ibuf.FormatRGB8 {
		return ErrFormatMismatch
	}
	if r.Empty() {
		return nil
	}
	if !r.In(dst.Rect()) {
		return fmt.Errorf("%w: region %v, image %v", ErrDestinationTooSmall, r, dst.Rect())
	}
	sr := image.Rectangle{Min: sp, Max: sp.Add(r.Size())}
	if !sr.In(src.Rect()) {
		return fmt.Errorf("%w: region %v, image %v", ErrSourceTooSmall, sr, src.Rect())
	}
	if src == dst && sp != r.Min && sr.Overlaps(r) {
		src = src.SubImage(sr).Clone()
		sp = image.Point{}
	}

	if fn := channelFuncs[op]; fn != nil {
		blendChannels(dst, r, src, sp, fn)
		return nil
	}
	blendPixels(dst, r, src, sp, pixelFuncs[op])
	return nil
}

// blendChannels applies fn to every byte of the region. RGB8 rows are
// contiguous channel runs, so the row slices can be walked directly.
func blendChannels(dst *ibuf.ImageBuf, r image.Rectangle, src *ibuf.ImageBuf, sp image.Point, fn channelFunc) {
	n := r.Dx() * 3
	for y := 0; y < r.Dy(); y++ {
		d := dst.RowBytes(r.Min.Y + y)[r.Min.X*3:][:n]
		s := src.RowBytes(sp.Y + y)[sp.X*3:][:n]
		for i := range d {
			d[i] = fn(s[i], d[i])
		}
	}
}

func blendPixels(dst *ibuf.ImageBuf, r image.Rectangle, src *ibuf.ImageBuf, sp image.Point, fn pixelFunc) {
	n := r.Dx() * 3
	for y := 0; y < r.Dy(); y++ {
		d := dst.RowBytes(r.Min.Y + y)[r.Min.X*3:][:n]
		s := src.RowBytes(sp.Y + y)[sp.X*3:][:n]
		for i := 0; i < n; i += 3 {
			d[i], d[i+1], d[i+2] = fn(s[i], s[i+1], s[i+2], d[i], d[i+1], d[i+2])
		}
	}
}

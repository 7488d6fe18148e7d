package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"slices"
)

// PaletteSize is the number of palette entries, one per density level.
const PaletteSize = 256

// Palette maps a density level to a color. Entry 0 is the densest level and
// entry 255 is "no heat"; empty tiles are filled with entry 255.
type Palette struct {
	name   string
	colors [PaletteSize]color.NRGBA
}

// NewPalette reads a palette from the first column of img. Rows are
// sampled top to bottom so that the first row is entry 0 and the last row
// is entry 255, whatever the image height.
func NewPalette(name string, img image.Image) (*Palette, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %q is empty", ErrInvalidPalette, name)
	}

	p := &Palette{name: name}
	h := b.Dy()
	for i := range PaletteSize {
		y := b.Min.Y + i*(h-1)/(PaletteSize-1)
		p.colors[i] = color.NRGBAModel.Convert(img.At(b.Min.X, y)).(color.NRGBA)
	}
	return p, nil
}

// ColorStop pins a palette entry to a color.
type ColorStop struct {
	Index uint8
	Color color.NRGBA
}

// NewGradientPalette builds a palette by interpolating linearly between
// stops. Entries before the first stop or after the last take that stop's
// color. At least one stop is required.
func NewGradientPalette(name string, stops []ColorStop) (*Palette, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: %q has no color stops", ErrInvalidPalette, name)
	}
	p := &Palette{name: name}

	sorted := slices.Clone(stops)
	slices.SortFunc(sorted, func(a, b ColorStop) int { return int(a.Index) - int(b.Index) })

	for i := range PaletteSize {
		j, _ := slices.BinarySearchFunc(sorted, i, func(s ColorStop, t int) int { return int(s.Index) - t })
		switch {
		case j == 0:
			p.colors[i] = sorted[0].Color
		case j == len(sorted):
			p.colors[i] = sorted[len(sorted)-1].Color
		default:
			lo, hi := sorted[j-1], sorted[j]
			t := float64(i-int(lo.Index)) / float64(int(hi.Index)-int(lo.Index))
			p.colors[i] = lerpNRGBA(lo.Color, hi.Color, t)
		}
	}
	return p, nil
}

func lerpNRGBA(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// Name returns the palette name.
func (p *Palette) Name() string {
	return p.name
}

// At returns the color for density level i.
func (p *Palette) At(i uint8) color.NRGBA {
	return p.colors[i]
}

// Lowest returns the "no heat" color used for empty tiles.
func (p *Palette) Lowest() color.NRGBA {
	return p.colors[PaletteSize-1]
}

// Image returns the palette as a 1x256 image, entry 0 at the top.
func (p *Palette) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 1, PaletteSize))
	for i, c := range p.colors {
		img.SetNRGBA(0, i, c)
	}
	return img
}

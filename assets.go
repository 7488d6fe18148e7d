package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"math"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	ibuf "github.com/gogpu/heatmap/internal/image"
)

// DefaultPalette is the palette used when none is configured.
const DefaultPalette = "valerie"

// AssetProvider supplies the palettes and dot sprites a render needs.
type AssetProvider interface {
	// Palette returns the named palette or an error wrapping
	// ErrUnknownPalette.
	Palette(name string) (*Palette, error)

	// Dot returns the grayscale dot sprite for zoom or an error wrapping
	// ErrMissingDot. Dark pixels mean more heat; white is neutral.
	Dot(zoom int) (image.Image, error)
}

// Assets is an in-memory AssetProvider. It is safe for concurrent reads
// once populated.
type Assets struct {
	palettes map[string]*Palette
	dots     map[int]image.Image
}

// NewAssets returns an empty asset set.
func NewAssets() *Assets {
	return &Assets{
		palettes: make(map[string]*Palette),
		dots:     make(map[int]image.Image),
	}
}

// AddPalette registers p under its name.
func (a *Assets) AddPalette(p *Palette) {
	a.palettes[p.Name()] = p
}

// AddDot registers the dot sprite for zoom.
func (a *Assets) AddDot(zoom int, img image.Image) {
	a.dots[zoom] = img
}

// Palette implements AssetProvider.
func (a *Assets) Palette(name string) (*Palette, error) {
	p, ok := a.palettes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
	}
	return p, nil
}

// Palettes returns the registered palette names in sorted order.
func (a *Assets) Palettes() []string {
	names := make([]string, 0, len(a.palettes))
	for name := range a.palettes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dot implements AssetProvider. When zoom has no sprite, the sprite of the
// deepest lower zoom is used.
func (a *Assets) Dot(zoom int) (image.Image, error) {
	for z := clampZoom(zoom); z >= 0; z-- {
		if img, ok := a.dots[z]; ok {
			return img, nil
		}
	}
	return nil, fmt.Errorf("%w: zoom %d", ErrMissingDot, zoom)
}

// LoadAssets reads PNG assets from fsys. Palettes are read from
// palettes/<name>.png and dot sprites from dots/dot<zoom>.png.
func LoadAssets(fsys fs.FS) (*Assets, error) {
	a := NewAssets()

	palettes, err := fs.Glob(fsys, "palettes/*.png")
	if err != nil {
		return nil, fmt.Errorf("heatmap: list palettes: %w", err)
	}
	for _, name := range palettes {
		img, err := readPNG(fsys, name)
		if err != nil {
			return nil, err
		}
		p, err := NewPalette(strings.TrimSuffix(path.Base(name), ".png"), img)
		if err != nil {
			return nil, err
		}
		a.AddPalette(p)
	}

	dots, err := fs.Glob(fsys, "dots/dot*.png")
	if err != nil {
		return nil, fmt.Errorf("heatmap: list dots: %w", err)
	}
	for _, name := range dots {
		zoom, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(path.Base(name), "dot"), ".png"))
		if err != nil || zoom < 0 || zoom > MaxZoom {
			Logger().Warn("heatmap: ignoring dot sprite", "file", name)
			continue
		}
		img, err := readPNG(fsys, name)
		if err != nil {
			return nil, err
		}
		a.AddDot(zoom, img)
	}

	Logger().Debug("heatmap: assets loaded", "palettes", len(a.palettes), "dots", len(a.dots))
	return a, nil
}

func readPNG(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("heatmap: open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	buf, err := ibuf.DecodePNG(f)
	if err != nil {
		return nil, fmt.Errorf("heatmap: %s: %w", name, err)
	}
	return buf.ToStdImage(), nil
}

var (
	defaultAssetsOnce sync.Once
	defaultAssets     *Assets
)

// DefaultAssets returns a procedurally generated asset set with the
// DefaultPalette and a dot sprite for every zoom level. The set is built
// once and shared.
func DefaultAssets() *Assets {
	defaultAssetsOnce.Do(func() {
		a := NewAssets()
		a.AddPalette(valeriePalette())
		a.AddPalette(grayPalette())
		for z := 0; z <= MaxZoom; z++ {
			a.AddDot(z, radialDot(DotDiameter(z)))
		}
		defaultAssets = a
	})
	return defaultAssets
}

// DotDiameter returns the diameter of the generated dot sprite for zoom.
func DotDiameter(zoom int) int {
	return 8 + 2*clampZoom(zoom)
}

// radialDot draws a gray disc that is darkest in the middle and fades to
// white at the rim.
func radialDot(d int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, d, d))
	c := float64(d-1) / 2
	radius := float64(d) / 2
	for y := range d {
		for x := range d {
			r := math.Hypot(float64(x)-c, float64(y)-c) / radius
			v := 255.0
			if r < 1 {
				v -= 110 * (1 - r) * (1 - r)
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v + 0.5)})
		}
	}
	return img
}

func valeriePalette() *Palette {
	return mustGradient(DefaultPalette, []ColorStop{
		{Index: 0, Color: color.NRGBA{R: 255, A: 255}},
		{Index: 60, Color: color.NRGBA{R: 255, G: 140, A: 255}},
		{Index: 110, Color: color.NRGBA{R: 255, G: 255, A: 240}},
		{Index: 160, Color: color.NRGBA{G: 255, A: 200}},
		{Index: 210, Color: color.NRGBA{G: 160, B: 255, A: 140}},
		{Index: 254, Color: color.NRGBA{B: 255, A: 40}},
		{Index: 255, Color: color.NRGBA{}},
	})
}

func grayPalette() *Palette {
	return mustGradient("gray", []ColorStop{
		{Index: 0, Color: color.NRGBA{A: 255}},
		{Index: 255, Color: color.NRGBA{R: 255, G: 255, B: 255}},
	})
}

func mustGradient(name string, stops []ColorStop) *Palette {
	p, err := NewGradientPalette(name, stops)
	if err != nil {
		panic(err)
	}
	return p
}

// AvailablePalettes lists the palette names of DefaultAssets.
func AvailablePalettes() []string {
	return DefaultAssets().Palettes()
}

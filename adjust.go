package heatmap

import (
	"image"

	"github.com/gogpu/heatmap/internal/blend"
	ibuf "github.com/gogpu/heatmap/internal/image"
)

// Image adjustments modify img in place. They are typically applied to a
// base map before the heat layer is drawn over it.

// AdjustBrightness adds delta, in [-1, 1], to every color channel.
func AdjustBrightness(img *image.NRGBA, delta float32) error {
	return applyMatrix(img, blend.BrightnessMatrix(delta, delta, delta))
}

// AdjustSaturation scales color saturation: 0 is grayscale, 1 unchanged.
func AdjustSaturation(img *image.NRGBA, sat float32) error {
	return applyMatrix(img, blend.SaturationMatrix(sat))
}

// Desaturate converts img to grayscale.
func Desaturate(img *image.NRGBA) error {
	return applyMatrix(img, blend.DesaturateMatrix())
}

// Invert inverts the color channels of img, keeping alpha.
func Invert(img *image.NRGBA) error {
	return applyMatrix(img, blend.InvertMatrix())
}

// Fade multiplies the alpha of img by opacity / 255.
func Fade(img *image.NRGBA, opacity int) error {
	if !validOpacity(opacity) {
		return ErrOpacityRange
	}
	return applyMatrix(img, blend.OpacityMatrix(float32(opacity)/Opaque))
}

func applyMatrix(img *image.NRGBA, m blend.ColorMatrix) error {
	if img.Rect.Empty() {
		return nil
	}
	buf, err := ibuf.WrapNRGBA(img)
	if err != nil {
		return err
	}
	return m.Apply(buf)
}

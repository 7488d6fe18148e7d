package blend

import (
	ibuf "github.com/gogpu/heatmap/internal/image"
)

// Rec. 601 luminance weights used by saturation adjustments.
const (
	lumR = 0.299
	lumG = 0.587
	lumB = 0.114
)

// ColorMatrix is a 5x5 color transform in row-vector form:
//
//	[R' G' B' A' 1] = [R G B A 1] * M
//
// Channels are normalized to [0, 1] during the transform, so the fifth row
// holds offsets in that range. Results are clamped back to bytes.
type ColorMatrix [5][5]float32

// IdentityMatrix returns a matrix that leaves colors unchanged.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		{1, 0, 0, 0, 0},
		{0, 1, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 1, 0},
		{0, 0, 0, 0, 1},
	}
}

// ScaleMatrix multiplies each channel by its factor.
func ScaleMatrix(r, g, b, a float32) ColorMatrix {
	m := IdentityMatrix()
	m[0][0], m[1][1], m[2][2], m[3][3] = r, g, b, a
	return m
}

// OpacityMatrix scales alpha by factor.
func OpacityMatrix(factor float32) ColorMatrix {
	return ScaleMatrix(1, 1, 1, factor)
}

// BrightnessMatrix adds per-channel offsets in [-1, 1].
func BrightnessMatrix(r, g, b float32) ColorMatrix {
	m := IdentityMatrix()
	m[4][0], m[4][1], m[4][2] = r, g, b
	return m
}

// SaturationMatrix blends each color toward its luminance.
// 0 = grayscale, 1 = unchanged, >1 = oversaturated.
func SaturationMatrix(sat float32) ColorMatrix {
	inv := 1 - sat
	sr, sg, sb := float32(lumR)*inv, float32(lumG)*inv, float32(lumB)*inv
	return ColorMatrix{
		{sr + sat, sr, sr, 0, 0},
		{sg, sg + sat, sg, 0, 0},
		{sb, sb, sb + sat, 0, 0},
		{0, 0, 0, 1, 0},
		{0, 0, 0, 0, 1},
	}
}

// DesaturateMatrix converts colors to grayscale.
func DesaturateMatrix() ColorMatrix {
	return SaturationMatrix(0)
}

// InvertMatrix inverts the color channels and keeps alpha.
func InvertMatrix() ColorMatrix {
	return ColorMatrix{
		{-1, 0, 0, 0, 0},
		{0, -1, 0, 0, 0},
		{0, 0, -1, 0, 0},
		{0, 0, 0, 1, 0},
		{1, 1, 1, 0, 1},
	}
}

// Then returns the matrix that applies m followed by n.
func (m ColorMatrix) Then(n ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for i := range 5 {
		for j := range 5 {
			var sum float32
			for k := range 5 {
				sum += m[i][k] * n[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Transform applies the matrix to a single straight-alpha color.
func (m ColorMatrix) Transform(r, g, b, a byte) (byte, byte, byte, byte) {
	v := [5]float32{
		float32(r) / 255,
		float32(g) / 255,
		float32(b) / 255,
		float32(a) / 255,
		1,
	}
	var out [4]byte
	for j := range 4 {
		var sum float32
		for i := range 5 {
			sum += v[i] * m[i][j]
		}
		out[j] = clampUnit(sum)
	}
	return out[0], out[1], out[2], out[3]
}

// Apply transforms every pixel of buf in place. RGB8 pixels are treated as
// opaque and their alpha result is discarded.
func (m ColorMatrix) Apply(buf *ibuf.ImageBuf) error {
	if buf == nil {
		return ErrNilImage
	}

	switch buf.Format() {
	case ibuf.FormatRGB8:
		for y := range buf.Height() {
			row := buf.RowBytes(y)
			for i := 0; i < len(row); i += 3 {
				row[i], row[i+1], row[i+2], _ = m.Transform(row[i], row[i+1], row[i+2], 255)
			}
		}
	case ibuf.FormatRGBA8:
		for y := range buf.Height() {
			row := buf.RowBytes(y)
			for i := 0; i < len(row); i += 4 {
				row[i], row[i+1], row[i+2], row[i+3] = m.Transform(row[i], row[i+1], row[i+2], row[i+3])
			}
		}
	default:
		return ErrFormatMismatch
	}
	return nil
}

// clampUnit maps a normalized channel back to a rounded byte.
func clampUnit(v float32) byte {
	v = v*255 + 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

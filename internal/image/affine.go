package image

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Affine is a 2D affine transform in y-down image space:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Affine struct {
	a, b, c float64
	d, e, f float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{a: 1, e: 1}
}

// Translate shifts points by (tx, ty).
func Translate(tx, ty float64) Affine {
	return Affine{a: 1, c: tx, e: 1, f: ty}
}

// Scale scales by (sx, sy) around the origin.
func Scale(sx, sy float64) Affine {
	return Affine{a: sx, e: sy}
}

// Rotate rotates by angle radians around the origin. With y pointing down,
// positive angles turn clockwise on screen.
func Rotate(angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{
		a: cos, b: -sin,
		d: sin, e: cos,
	}
}

// RotateAt rotates by angle radians around (cx, cy).
func RotateAt(angle, cx, cy float64) Affine {
	return Translate(cx, cy).Multiply(Rotate(angle)).Multiply(Translate(-cx, -cy))
}

// Multiply returns m * o, the transform that applies o first and then m.
func (m Affine) Multiply(o Affine) Affine {
	return Affine{
		a: m.a*o.a + m.b*o.d,
		b: m.a*o.b + m.b*o.e,
		c: m.a*o.c + m.b*o.f + m.c,
		d: m.d*o.a + m.e*o.d,
		e: m.d*o.b + m.e*o.e,
		f: m.d*o.c + m.e*o.f + m.f,
	}
}

// Invert returns the inverse transform, or false if m is singular.
func (m Affine) Invert() (Affine, bool) {
	det := m.a*m.e - m.b*m.d
	if math.Abs(det) < 1e-10 {
		return Affine{}, false
	}
	inv := 1 / det
	return Affine{
		a: m.e * inv,
		b: -m.b * inv,
		c: (m.b*m.f - m.c*m.e) * inv,
		d: -m.d * inv,
		e: m.a * inv,
		f: (m.c*m.d - m.a*m.f) * inv,
	}, true
}

// TransformPoint applies m to (x, y).
func (m Affine) TransformPoint(x, y float64) (float64, float64) {
	return m.a*x + m.b*y + m.c, m.d*x + m.e*y + m.f
}

// Aff3 returns m in the layout used by golang.org/x/image/draw.
func (m Affine) Aff3() f64.Aff3 {
	return f64.Aff3{m.a, m.b, m.c, m.d, m.e, m.f}
}

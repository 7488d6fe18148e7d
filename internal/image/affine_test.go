package image

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < epsilon }

func TestAffineTransforms(t *testing.T) {
	tests := []struct {
		name       string
		m          Affine
		x, y       float64
		wantX, wan float64
	}{
		{"identity", Identity(), 10, 20, 10, 20},
		{"translate", Translate(5, -4), 1, 1, 6, -3},
		{"scale", Scale(2, 3), 4, 5, 8, 15},
		{"rotate quarter", Rotate(math.Pi / 2), 1, 0, 0, 1},
		{"rotate at center", RotateAt(math.Pi, 5, 5), 0, 0, 10, 10},
		{"scale then translate", Translate(10, 0).Multiply(Scale(2, 2)), 1, 1, 12, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.m.TransformPoint(tt.x, tt.y)
			if !near(x, tt.wantX) || !near(y, tt.wan) {
				t.Errorf("TransformPoint(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, x, y, tt.wantX, tt.wan)
			}
		})
	}
}

func TestAffineInvert(t *testing.T) {
	m := Translate(3, 4).Multiply(RotateAt(0.7, 1, 2)).Multiply(Scale(2, 0.5))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("Invert() reported singular matrix")
	}
	x, y := inv.Multiply(m).TransformPoint(7, -3)
	if !near(x, 7) || !near(y, -3) {
		t.Errorf("inverse round trip = (%v, %v), want (7, -3)", x, y)
	}

	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("Invert() of a singular matrix should fail")
	}
}

func TestAffineAff3(t *testing.T) {
	m := Translate(3, 4).Multiply(Scale(2, 5))
	a := m.Aff3()
	want := [6]float64{2, 0, 3, 0, 5, 4}
	for i := range want {
		if !near(a[i], want[i]) {
			t.Errorf("Aff3()[%d] = %v, want %v", i, a[i], want[i])
		}
	}
}

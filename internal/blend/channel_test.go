package blend

import "testing"

func TestChannelOperations(t *testing.T) {
	tests := []struct {
		op   Operation
		s, d byte
		want byte
	}{
		{SourceCopy, 10, 200, 10},
		{MergePaint, 0xF0, 0x0F, 0x0F},
		{NotSourceErase, 0x0F, 0xF0, 0x00},
		{SourceAnd, 0xF0, 0x3C, 0x30},
		{SourceErase, 0xFF, 0x0F, 0xF0},
		{SourceInvert, 0xFF, 0x0F, 0xF0},
		{SourcePaint, 0xF0, 0x0F, 0xFF},
		{Darken, 100, 50, 50},
		{Lighten, 100, 50, 100},
		{Multiply, 128, 128, 64},
		{Multiply, 0, 200, 0},
		{Screen, 0, 200, 200},
		{Screen, 255, 10, 255},
		{Overlay, 255, 100, 200},
		{Overlay, 0, 200, 145},
		{HardLight, 100, 255, 200},
		{HardLight, 200, 0, 145},
		{SoftLight, 0, 0, 0},
		{SoftLight, 255, 255, 255},
		{ColorBurn, 0, 200, 0},
		{ColorBurn, 255, 200, 200},
		{ColorBurn, 100, 100, 0},
		{ColorDodge, 255, 10, 255},
		{ColorDodge, 0, 200, 200},
		{ColorDodge, 200, 100, 255},
		{PinLight, 50, 100, 50},
		{PinLight, 200, 100, 200},
		{Difference, 30, 200, 170},
		{Exclusion, 255, 100, 155},
		{Exclusion, 0, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got := channelFuncs[tt.op](tt.s, tt.d)
			if got != tt.want {
				t.Errorf("%v(%d, %d) = %d, want %d", tt.op, tt.s, tt.d, got, tt.want)
			}
		})
	}
}

// Multiplying by white must leave any value unchanged; heat stamping relies
// on white being the neutral canvas color.
func TestMultiplyWhiteIsIdentity(t *testing.T) {
	for x := range 256 {
		if got := multiplyChannel(255, byte(x)); got != byte(x) {
			t.Fatalf("Multiply(255, %d) = %d", x, got)
		}
		if got := multiplyChannel(byte(x), 255); got != byte(x) {
			t.Fatalf("Multiply(%d, 255) = %d", x, got)
		}
	}
}

func TestChannelOperationsStayInRange(t *testing.T) {
	for op := SourceCopy; op < Hue; op++ {
		fn := channelFuncs[op]
		if fn == nil {
			t.Fatalf("%v has no channel function", op)
		}
		for s := 0; s < 256; s += 5 {
			for d := 0; d < 256; d += 5 {
				_ = fn(byte(s), byte(d))
			}
		}
	}
}

package blend

import "testing"

func TestMulDiv255(t *testing.T) {
	for x := range 256 {
		if got := mulDiv255(byte(x), 255); got != byte(x) {
			t.Fatalf("mulDiv255(%d, 255) = %d, want %d", x, got, x)
		}
		if got := mulDiv255(byte(x), 0); got != 0 {
			t.Fatalf("mulDiv255(%d, 0) = %d, want 0", x, got)
		}
	}
	if got := mulDiv255(128, 128); got != 64 {
		t.Errorf("mulDiv255(128, 128) = %d, want 64", got)
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		in   int
		want byte
	}{
		{-10, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{1000, 255},
	}
	for _, tt := range tests {
		if got := clampInt(tt.in); got != tt.want {
			t.Errorf("clampInt(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMinMaxAbs(t *testing.T) {
	if minByte(3, 9) != 3 || maxByte(3, 9) != 9 {
		t.Error("minByte/maxByte mismatch")
	}
	if absDiff(3, 9) != 6 || absDiff(9, 3) != 6 {
		t.Error("absDiff mismatch")
	}
}

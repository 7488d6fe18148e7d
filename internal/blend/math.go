package blend

// mulDiv255 returns a*b/255 truncated toward zero.
//
// Division is exact, so mulDiv255(x, 255) == x for every x. The compiler
// lowers the constant divisor to a multiply and shift.
func mulDiv255(a, b byte) byte {
	return byte(uint16(a) * uint16(b) / 255)
}

// inv255 computes 255 - x.
func inv255(x byte) byte {
	return 255 - x
}

// clampInt clamps an int to byte range [0, 255].
func clampInt(x int) byte {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return byte(x)
}

// minByte returns the smaller of two bytes.
func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

// maxByte returns the larger of two bytes.
func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}

// absDiff returns |a - b|.
func absDiff(a, b byte) byte {
	if a > b {
		return a - b
	}
	return b - a
}

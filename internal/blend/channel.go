package blend

// channelFunc combines one source channel with one destination channel.
type channelFunc func(s, d byte) byte

// channelFuncs holds the per-channel operations, indexed by Operation.
// Entries are nil for per-pixel operations.
var channelFuncs = [operationCount]channelFunc{
	SourceCopy:     copyChannel,
	MergePaint:     mergePaintChannel,
	NotSourceErase: notSourceEraseChannel,
	SourceAnd:      sourceAndChannel,
	SourceErase:    sourceEraseChannel,
	SourceInvert:   sourceInvertChannel,
	SourcePaint:    sourcePaintChannel,
	Darken:         minByte,
	Multiply:       multiplyChannel,
	ColorBurn:      colorBurnChannel,
	Lighten:        maxByte,
	Screen:         screenChannel,
	ColorDodge:     colorDodgeChannel,
	Overlay:        overlayChannel,
	SoftLight:      softLightChannel,
	HardLight:      hardLightChannel,
	PinLight:       pinLightChannel,
	Difference:     absDiff,
	Exclusion:      exclusionChannel,
}

func copyChannel(s, _ byte) byte { return s }

// Raster operations, mirroring the classic GDI ROP codes.

func mergePaintChannel(s, d byte) byte     { return inv255(s) | d }
func notSourceEraseChannel(s, d byte) byte { return inv255(s | d) }
func sourceAndChannel(s, d byte) byte      { return s & d }
func sourceEraseChannel(s, d byte) byte    { return s & inv255(d) }
func sourceInvertChannel(s, d byte) byte   { return s ^ d }
func sourcePaintChannel(s, d byte) byte    { return s | d }

func multiplyChannel(s, d byte) byte {
	return mulDiv255(s, d)
}

func screenChannel(s, d byte) byte {
	return 255 - mulDiv255(inv255(s), inv255(d))
}

// overlayChannel is Multiply or Screen, chosen by the destination.
func overlayChannel(s, d byte) byte {
	if d < 128 {
		return clampInt(2 * int(s) * int(d) / 255)
	}
	return clampInt(255 - 2*int(inv255(s))*int(inv255(d))/255)
}

// hardLightChannel is Overlay with the roles of source and destination swapped.
func hardLightChannel(s, d byte) byte {
	if s < 128 {
		return clampInt(2 * int(s) * int(d) / 255)
	}
	return clampInt(255 - 2*int(inv255(s))*int(inv255(d))/255)
}

// softLightChannel blends Multiply and Screen weighted by the destination.
func softLightChannel(s, d byte) byte {
	m := int(s) * int(d) / 255
	sc := 255 - int(inv255(s))*int(inv255(d))/255
	return clampInt(m + int(d)*(sc-m)/255)
}

func colorBurnChannel(s, d byte) byte {
	if s == 0 {
		return 0
	}
	return clampInt(255 - int(inv255(d))*255/int(s))
}

func colorDodgeChannel(s, d byte) byte {
	if s == 255 {
		return 255
	}
	return clampInt(int(d) * 255 / int(inv255(s)))
}

func pinLightChannel(s, d byte) byte {
	if s < 128 {
		return minByte(s, d)
	}
	return maxByte(s, d)
}

func exclusionChannel(s, d byte) byte {
	return clampInt(int(s) + int(d) - 2*int(s)*int(d)/255)
}

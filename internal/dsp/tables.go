package dsp

// AngTable maps the distance of a directional mode from the pure
// horizontal or vertical mode to |intraPredAngle| in 1/32 sample units.
var AngTable = [32]int{
	0, 1, 2, 3, 4, 6, 8, 10, 12, 14, 16, 18, 20, 23, 26, 29,
	32, 35, 39, 45, 51, 57, 64, 73, 86, 102, 128, 171, 256, 341, 512, 1024,
}

// InvAngTable holds round(512*32 / AngTable[i]).
var InvAngTable = [32]int{
	0, 16384, 8192, 5461, 4096, 2731, 2048, 1638, 1365, 1170, 1024, 910, 819, 712, 630, 565,
	512, 468, 420, 364, 321, 287, 256, 224, 191, 161, 128, 96, 64, 48, 32, 16,
}

// WideAngleShift is indexed by |log2(W) - log2(H)| and bounds the range of
// modes that get remapped to wide angles.
var WideAngleShift = [6]int{0, 6, 10, 12, 14, 15}

// IntraFilterThreshold is indexed by (log2(W)+log2(H))>>1. A directional
// mode is smoothed when its distance from HOR and VER exceeds the entry.
var IntraFilterThreshold = [8]int{
	24, // 1xn
	24, // 2xn
	24, // 4xn
	14, // 8xn
	2,  // 16xn
	0,  // 32xn
	0,  // 64xn
	0,  // 128xn
}

// CubicFilter holds the 4-tap DCT-based interpolation taps for each 1/32
// phase. Every row sums to 64.
var CubicFilter = [32][4]int{
	{0, 64, 0, 0},
	{-1, 63, 2, 0},
	{-2, 62, 4, 0},
	{-2, 60, 7, -1},
	{-2, 58, 10, -2},
	{-3, 57, 12, -2},
	{-4, 56, 14, -2},
	{-4, 55, 15, -2},
	{-4, 54, 16, -2},
	{-5, 53, 18, -2},
	{-6, 52, 20, -2},
	{-6, 49, 24, -3},
	{-6, 46, 28, -4},
	{-5, 44, 29, -4},
	{-4, 42, 30, -4},
	{-4, 39, 33, -4},
	{-4, 36, 36, -4},
	{-4, 33, 39, -4},
	{-4, 30, 42, -4},
	{-4, 29, 44, -5},
	{-4, 28, 46, -6},
	{-3, 24, 49, -6},
	{-2, 20, 52, -6},
	{-2, 18, 53, -5},
	{-2, 16, 54, -4},
	{-2, 15, 55, -4},
	{-2, 14, 56, -4},
	{-2, 12, 57, -3},
	{-2, 10, 58, -2},
	{-1, 7, 60, -2},
	{0, 4, 62, -2},
	{0, 2, 63, -1},
}

// GaussFilter returns the 4-tap smoothing interpolation taps for phase
// frac (0..31). The taps sum to 64.
func GaussFilter(frac int) [4]int {
	h := frac >> 1
	return [4]int{16 - h, 32 - h, 16 + h, h}
}

// DivSigTable holds 4-bit reciprocal significands minus 8 (MSB omitted)
// used by the chroma linear model to avoid a division.
var DivSigTable = [16]int{0, 7, 6, 5, 5, 4, 4, 3, 3, 2, 2, 1, 1, 1, 1, 0}

// IsIntegerSlope reports whether an angle magnitude is a whole number of
// samples per row.
func IsIntegerSlope(absAngle int) bool {
	return absAngle&0x1f == 0
}

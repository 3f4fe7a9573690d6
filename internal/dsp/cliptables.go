package dsp

import "math/bits"

// MaxBitDepth is the largest sample bit depth the predictors accept. Samples
// are stored as int16, so intermediate 4-tap sums stay well inside int.
const MaxBitDepth = 14

// ClipRange is the inclusive sample range of one component.
type ClipRange struct {
	Min, Max int
}

// RangeForBitDepth returns the full range [0, 2^bitDepth - 1].
func RangeForBitDepth(bitDepth int) ClipRange {
	return ClipRange{Min: 0, Max: (1 << uint(bitDepth)) - 1}
}

// Clip clamps v to the range.
func (r ClipRange) Clip(v int) int16 {
	if v < r.Min {
		return int16(r.Min)
	}
	if v > r.Max {
		return int16(r.Max)
	}
	return int16(v)
}

// Clip3 clamps v to [lo, hi].
func Clip3(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FloorLog2 returns floor(log2(v)) for v > 0 and -1 for v == 0.
func FloorLog2(v int) int {
	return bits.Len(uint(v)) - 1
}

// IsPow2 reports whether v is a positive power of two.
func IsPow2(v int) bool {
	return v > 0 && v&(v-1) == 0
}

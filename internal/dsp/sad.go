package dsp

func absInt(v int) int {
	// Arithmetic shift yields 0 for v >= 0 and -1 otherwise.
	m := v >> 63
	return (v ^ m) - m
}

// SADRow returns the sum of absolute differences of two sample runs of
// equal length.
func SADRow(a, b []int16) int {
	b = b[:len(a)]
	sum := 0
	for i := range a {
		sum += absInt(int(a[i]) - int(b[i]))
	}
	return sum
}

// SADCol returns the sum of absolute differences of n samples read with
// the given strides, starting at a[0] and b[0].
func SADCol(a []int16, aStride int, b []int16, bStride, n int) int {
	sum := 0
	ia, ib := 0, 0
	for k := 0; k < n; k++ {
		sum += absInt(int(a[ia]) - int(b[ib]))
		ia += aStride
		ib += bStride
	}
	return sum
}

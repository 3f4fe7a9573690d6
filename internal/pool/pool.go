// Package pool provides bucketed sync.Pool instances for sample scratch
// buffers. Buffers are organized by size class to minimize waste.
package pool

import "sync"

// Size classes for bucketed pools, in samples.
const (
	Size256 = 256
	Size1K  = 1024
	Size4K  = 4096
	Size16K = 16384
	Size64K = 65536
)

// bucketIndex returns the pool index for a given length.
func bucketIndex(n int) int {
	switch {
	case n <= Size256:
		return 0
	case n <= Size1K:
		return 1
	case n <= Size4K:
		return 2
	case n <= Size16K:
		return 3
	default:
		return 4
	}
}

var sizes = [5]int{Size256, Size1K, Size4K, Size16K, Size64K}

var pools [5]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]int16, sz)
				return &b
			},
		}
	}
}

// GetPels returns a sample slice of at least the requested length from the
// pool. The returned slice has len == n and may have a larger capacity. Its
// contents are undefined. The caller must call PutPels when done.
func GetPels(n int) []int16 {
	idx := bucketIndex(n)
	bp := pools[idx].Get().(*[]int16)
	b := *bp
	if cap(b) < n {
		b = make([]int16, n)
		*bp = b
		return b
	}
	return b[:n]
}

// PutPels returns a sample slice to the pool. The slice must have been
// obtained from GetPels. Slices smaller than Size256 are not pooled.
func PutPels(b []int16) {
	c := cap(b)
	if c < Size256 {
		return
	}
	idx := bucketIndex(c)
	// Slices between two classes go to the smaller one.
	if c < sizes[idx] {
		idx--
	}
	b = b[:c]
	pools[idx].Put(&b)
}

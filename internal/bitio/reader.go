package bitio

import (
	"errors"
)

// ErrUnexpectedEOF is reported once a read runs past the end of the stream.
var ErrUnexpectedEOF = errors.New("bitio: unexpected end of stream")

// MaxReadBits is the widest field ReadBits returns.
const MaxReadBits = 24

// Reader reads LSB-first bit fields through a 64-bit prefetch window.
type Reader struct {
	val    uint64 // prefetched bits, the next bit at bitPos
	buf    []byte
	pos    int // next byte to load
	bitPos int
	err    error
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	r := &Reader{buf: data}
	n := min(len(data), 8)
	for i := 0; i < n; i++ {
		r.val |= uint64(data[i]) << uint(8*i)
	}
	r.pos = n
	return r
}

// ReadBits returns the next n (0..24) bits. Reading past the end returns
// zero and records ErrUnexpectedEOF.
func (r *Reader) ReadBits(n int) uint32 {
	if r.err != nil {
		return 0
	}
	if n < 0 || n > MaxReadBits {
		r.err = errors.New("bitio: invalid field width")
		return 0
	}
	if r.bitPos+n > 64 || (r.pos == len(r.buf) && r.bitPos+n > r.loadedBits()) {
		r.err = ErrUnexpectedEOF
		return 0
	}
	v := uint32(r.val>>uint(r.bitPos)) & mask(n)
	r.bitPos += n
	r.shift()
	return v
}

// loadedBits is the number of valid bits in val once the buffer is
// exhausted.
func (r *Reader) loadedBits() int {
	return 64 - 8*(8-min(len(r.buf), 8))
}

// shift refills val a byte at a time while whole bytes have been consumed.
func (r *Reader) shift() {
	for r.bitPos >= 8 && r.pos < len(r.buf) {
		r.val >>= 8
		r.val |= uint64(r.buf[r.pos]) << 56
		r.pos++
		r.bitPos -= 8
	}
}

// Err returns the first error encountered while reading.
func (r *Reader) Err() error {
	return r.err
}

// Package bitio packs fixed-width fields LSB-first into byte streams.
package bitio

import "encoding/binary"

const (
	// flushBits is the number of bits moved from the accumulator at a time.
	flushBits  = 32
	flushBytes = flushBits / 8
)

// Writer accumulates bit fields in a 64-bit register and flushes them
// 32 bits at a time in little-endian byte order.
type Writer struct {
	acc  uint64
	used int
	buf  []byte
}

// NewWriter returns a Writer with room for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, max(sizeHint, 16))}
}

// WriteBits appends the low n bits (0..32) of v.
func (w *Writer) WriteBits(v uint32, n int) {
	if n == 0 {
		return
	}
	if w.used >= flushBits {
		w.flush()
	}
	w.acc |= uint64(v&mask(n)) << uint(w.used)
	w.used += n
}

func (w *Writer) flush() {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(w.acc))
	w.acc >>= flushBits
	w.used -= flushBits
}

// Finish flushes the pending bits, padding the last byte with zeros, and
// returns the stream. The Writer is empty afterwards and may be reused;
// the returned slice stays valid until the next Finish.
func (w *Writer) Finish() []byte {
	for w.used >= flushBits {
		w.flush()
	}
	for w.used > 0 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.used -= 8
	}
	out := w.buf
	w.acc, w.used, w.buf = 0, 0, w.buf[len(w.buf):]
	return out
}

// NumBits returns the number of bits written since the last Finish.
func (w *Writer) NumBits() int {
	return len(w.buf)*8 + w.used
}

func mask(n int) uint32 {
	return uint32(1<<uint(n) - 1)
}

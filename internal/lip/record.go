package lip

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deepteams/intrapred/internal/bitio"
)

// Record holds the chosen candidate index of every layer of one block.
// Layers[i] for i < len-1 applies to ring i only; the last entry applies to
// every remaining ring.
type Record struct {
	Layers []uint8
}

// Mode returns the prediction mode of ring r.
func (rec Record) Mode(r int) int {
	return Candidates[rec.Layers[min(r, len(rec.Layers)-1)]]
}

func (rec Record) validate(numLoop int) error {
	if len(rec.Layers) != numLoop {
		return fmt.Errorf("%w: %d layers, want %d", ErrRecord, len(rec.Layers), numLoop)
	}
	for i, l := range rec.Layers {
		if int(l) >= len(Candidates) {
			return fmt.Errorf("%w: layer %d index %d", ErrRecord, i, l)
		}
	}
	return nil
}

// Append writes the record as BitsLoopMode bits per layer.
func (rec Record) Append(w *bitio.Writer) {
	for _, l := range rec.Layers {
		w.WriteBits(uint32(l), BitsLoopMode)
	}
}

// ReadRecord reads the numLoop layer indices of one block.
func ReadRecord(r *bitio.Reader, numLoop int) (Record, error) {
	rec := Record{Layers: make([]uint8, numLoop)}
	for i := range rec.Layers {
		rec.Layers[i] = uint8(r.ReadBits(BitsLoopMode))
	}
	if err := r.Err(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// String formats the record as its mode numbers.
func (rec Record) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, l := range rec.Layers {
		if i > 0 {
			b.WriteByte(' ')
		}
		if int(l) < len(Candidates) {
			b.WriteString(strconv.Itoa(Candidates[l]))
		} else {
			b.WriteByte('?')
		}
	}
	b.WriteByte(']')
	return b.String()
}

// Package mip adapts matrix-weighted intra prediction to the engine's
// sample containers. The matrices themselves are supplied by the caller
// through the Matrix interface.
package mip

import (
	"errors"
	"fmt"

	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/refs"
)

// MaxSize is the largest block side MIP accepts.
const MaxSize = 64

var (
	ErrSize     = errors.New("mip: block size not supported")
	ErrMode     = errors.New("mip: mode index out of range")
	ErrFiltered = errors.New("mip: unfiltered references expected")
)

// Boundary is the unfiltered reference input of one block: Width samples
// above and Height samples to the left, corner excluded.
type Boundary struct {
	Top, Left     []int16
	Width, Height int
	BitDepth      int
	Chroma        bool
}

// Matrix produces the Width*Height prediction of a block in raster order
// from its boundary.
type Matrix interface {
	PredBlock(out []int, b *Boundary, modeIdx int, transpose bool)
}

// SizeID classifies a block into the three matrix sets.
func SizeID(w, h int) int {
	switch {
	case w == 4 && h == 4:
		return 0
	case w == 4 || h == 4 || (w == 8 && h == 8):
		return 1
	}
	return 2
}

// NumModes returns the number of MIP modes available for a w x h block.
func NumModes(w, h int) int {
	return [3]int{16, 8, 6}[SizeID(w, h)]
}

// Adapter runs a Matrix against reference views and writes the result
// into prediction planes. An Adapter is not safe for concurrent use.
type Adapter struct {
	Matrix Matrix
	out    [MaxSize * MaxSize]int
}

// NewAdapter returns an adapter around m.
func NewAdapter(m Matrix) *Adapter {
	return &Adapter{Matrix: m}
}

// Predict fills dst with the matrix prediction of modeIdx. filtered tells
// whether v holds smoothed references, which MIP does not accept.
func (a *Adapter) Predict(dst *refs.Plane, v *refs.View, filtered bool, modeIdx int, transpose bool, bitDepth int, chroma bool) error {
	w, h := dst.Width, dst.Height
	if w > MaxSize || h > MaxSize || !dsp.IsPow2(w) || !dsp.IsPow2(h) {
		return fmt.Errorf("%w: %dx%d", ErrSize, w, h)
	}
	if filtered {
		return ErrFiltered
	}
	if modeIdx < 0 || modeIdx >= NumModes(w, h) {
		return fmt.Errorf("%w: %d of %d", ErrMode, modeIdx, NumModes(w, h))
	}

	b := Boundary{
		Top:      v.Top[1 : w+1],
		Left:     v.Left[1 : h+1],
		Width:    w,
		Height:   h,
		BitDepth: bitDepth,
		Chroma:   chroma,
	}
	out := a.out[:w*h]
	a.Matrix.PredBlock(out, &b, modeIdx, transpose)
	for y := 0; y < h; y++ {
		row := dst.Row(y)
		for x := range row {
			row[x] = int16(out[y*w+x])
		}
	}
	return nil
}

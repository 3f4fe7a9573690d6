// Package cclm implements cross-component linear model prediction: the
// luma reconstruction is down-sampled to the chroma grid, a linear model is
// fitted on the neighbouring templates and applied to the down-sampled
// block.
package cclm

import (
	"github.com/deepteams/intrapred/internal/refs"
)

// Format is the chroma subsampling format.
type Format uint8

const (
	Format420 Format = iota
	Format422
	Format444
)

// String returns the conventional name of the format.
func (f Format) String() string {
	switch f {
	case Format420:
		return "4:2:0"
	case Format422:
		return "4:2:2"
	case Format444:
		return "4:4:4"
	}
	return "unknown"
}

// Scale returns the log2 horizontal and vertical luma to chroma ratio.
func (f Format) Scale() (sx, sy uint) {
	switch f {
	case Format420:
		return 1, 1
	case Format422:
		return 1, 0
	}
	return 0, 0
}

// unitSize returns the chroma size of the 4x4 luma neighbour unit.
func (f Format) unitSize() (uw, uh int) {
	sx, sy := f.Scale()
	return 4 >> sx, 4 >> sy
}

// Mode numbers of the three linear model variants.
const (
	ModeLM       = 67 // top and left templates
	ModeMDLMLeft = 68 // left and below-left template
	ModeMDLMTop  = 69 // top and above-right template
)

// Availability describes the reconstructed neighbourhood of a chroma
// block. AboveRight and BelowLeft count the chroma samples available
// beyond the block's own width and height; they are only consulted by the
// MDLM modes.
type Availability struct {
	Left, Above           bool
	AboveRight, BelowLeft int
}

// LumaRec is the reconstructed luma plane with the collocated luma block
// at (X, Y). The plane must hold the neighbours the down-sampling filters
// read: up to three columns left and three rows above the block, and the
// above-right and below-left extensions used by MDLM.
type LumaRec struct {
	Plane *refs.Plane
	X, Y  int
}

func (r LumaRec) at(x, y int) int {
	return int(r.Plane.At(r.X+x, r.Y+y))
}

// Options selects the down-sampling filters.
type Options struct {
	Format Format

	// Collocated selects the five-tap cross filter used when chroma
	// samples are collocated with even luma samples.
	Collocated bool

	// FirstRowOfCTU restricts the top template to the luma row right
	// above the block.
	FirstRowOfCTU bool
}

// Template is the down-sampled luma block and its neighbouring templates
// on the chroma grid.
type Template struct {
	Block *refs.Plane
	Top   []int16 // row above the block, extended above-right for MDLM
	Left  []int16 // column left of the block, extended below-left for MDLM
}

// extents returns the number of top and left template samples that
// Downsample produces for mode.
func extents(cw, ch, mode int, avail Availability) (top, left int) {
	if avail.Above {
		top = cw
		if mode == ModeMDLMLeft || mode == ModeMDLMTop {
			top += min(avail.AboveRight, cw)
		}
	}
	if avail.Left {
		left = ch
		if mode == ModeMDLMLeft || mode == ModeMDLMTop {
			left += min(avail.BelowLeft, ch)
		}
	}
	return top, left
}

// LumaFits reports whether rec holds every luma sample Downsample reads.
func LumaFits(rec LumaRec, cw, ch, mode int, avail Availability, opt Options) bool {
	if rec.Plane == nil {
		return false
	}
	sx, sy := opt.Format.Scale()
	top, left := extents(cw, ch, mode, avail)
	x0, y0 := 0, 0
	x1, y1 := cw<<sx, ch<<sy
	if avail.Left && sx > 0 {
		x0 = -1
	}
	if avail.Above && opt.Collocated && opt.Format == Format420 {
		y0 = -1
	}
	if top > 0 {
		x1 = max(x1, top<<sx)
		switch {
		case opt.Format != Format420 || opt.FirstRowOfCTU:
			y0 = min(y0, -1)
		case opt.Collocated:
			y0 = -3
		default:
			y0 = -2
		}
	}
	if left > 0 {
		x0 = -1 - 2*int(sx)
		y1 = max(y1, left<<sy)
	}
	return rec.X+x0 >= 0 && rec.Y+y0 >= 0 &&
		rec.X+x1 <= rec.Plane.Width && rec.Y+y1 <= rec.Plane.Height
}

// Downsample maps the luma reconstruction around a cw x ch chroma block
// onto the chroma grid.
func Downsample(rec LumaRec, cw, ch, mode int, avail Availability, opt Options) *Template {
	top, left := extents(cw, ch, mode, avail)
	t := &Template{
		Block: refs.NewPlane(cw, ch),
		Top:   make([]int16, top),
		Left:  make([]int16, left),
	}
	downsampleTop(t.Top, rec, avail, opt)
	downsampleLeft(t.Left, rec, avail, opt)
	downsampleBlock(t.Block, rec, avail, opt)
	return t
}

func downsampleTop(dst []int16, r LumaRec, avail Availability, opt Options) {
	for i := range dst {
		// Without a left neighbour the first sample repeats instead of
		// reading column -1.
		l := 2*i - 1
		if i == 0 && !avail.Left {
			l = 0
		}
		var s int
		switch {
		case opt.Format == Format444:
			s = r.at(i, -1)
		case opt.FirstRowOfCTU || opt.Format == Format422:
			s = (2*r.at(2*i, -1) + r.at(l, -1) + r.at(2*i+1, -1) + 2) >> 2
		case opt.Collocated:
			s = (r.at(2*i, -3) + 4*r.at(2*i, -2) + r.at(l, -2) + r.at(2*i+1, -2) + r.at(2*i, -1) + 4) >> 3
		default:
			s = (2*r.at(2*i, -2) + r.at(2*i+1, -2) + r.at(l, -2) +
				2*r.at(2*i, -1) + r.at(2*i+1, -1) + r.at(l, -1) + 4) >> 3
		}
		dst[i] = int16(s)
	}
}

func downsampleLeft(dst []int16, r LumaRec, avail Availability, opt Options) {
	for j := range dst {
		var s int
		switch {
		case opt.Format == Format444:
			s = r.at(-1, j)
		case opt.Format == Format422:
			s = (2*r.at(-2, j) + r.at(-3, j) + r.at(-1, j) + 2) >> 2
		case opt.Collocated:
			up := 2*j - 1
			if j == 0 && !avail.Above {
				up = 0
			}
			s = (r.at(-2, up) + 4*r.at(-2, 2*j) + r.at(-3, 2*j) + r.at(-1, 2*j) + r.at(-2, 2*j+1) + 4) >> 3
		default:
			s = (2*r.at(-2, 2*j) + r.at(-1, 2*j) + r.at(-3, 2*j) +
				2*r.at(-2, 2*j+1) + r.at(-1, 2*j+1) + r.at(-3, 2*j+1) + 4) >> 3
		}
		dst[j] = int16(s)
	}
}

func downsampleBlock(dst *refs.Plane, r LumaRec, avail Availability, opt Options) {
	for j := 0; j < dst.Height; j++ {
		row := dst.Row(j)
		for i := range row {
			l := 2*i - 1
			if i == 0 && !avail.Left {
				l = 0
			}
			var s int
			switch {
			case opt.Format == Format444:
				s = r.at(i, j)
			case opt.Format == Format422:
				s = (2*r.at(2*i, j) + r.at(l, j) + r.at(2*i+1, j) + 2) >> 2
			case opt.Collocated:
				up := 2*j - 1
				if j == 0 && !avail.Above {
					up = 0
				}
				s = (r.at(2*i, up) + 4*r.at(2*i, 2*j) + r.at(l, 2*j) + r.at(2*i+1, 2*j) + r.at(2*i, 2*j+1) + 4) >> 3
			default:
				s = (2*r.at(2*i, 2*j) + r.at(2*i+1, 2*j) + r.at(l, 2*j) +
					2*r.at(2*i, 2*j+1) + r.at(2*i+1, 2*j+1) + r.at(l, 2*j+1) + 4) >> 3
			}
			row[i] = int16(s)
		}
	}
}

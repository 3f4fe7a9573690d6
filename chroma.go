package intrapred

import (
	"fmt"

	"github.com/deepteams/intrapred/internal/cclm"
)

// Neighbours describes the reconstructed surroundings of a chroma block
// for the linear model. AboveRight and BelowLeft count the chroma samples
// available beyond the block's width and height; only the MDLM modes use
// them.
type Neighbours struct {
	Left, Above           bool
	AboveRight, BelowLeft int

	// FirstRowOfCTU restricts the top luma template to the single row
	// above the block.
	FirstRowOfCTU bool
}

// ChromaModel is a fitted linear model chroma = ((A*luma) >> Shift) + B
// together with the down-sampled luma of the block it was fitted for.
type ChromaModel struct {
	A, B, Shift int

	luma *Plane
}

func (m *ChromaModel) model() cclm.Model {
	return cclm.Model{A: m.A, B: m.B, Shift: m.Shift}
}

// FitChromaModel down-samples the luma reconstruction around the chroma
// block blk and fits the model of mode (ModeLM, ModeMDLMLeft or
// ModeMDLMTop) against the chroma references in chroma. luma is the
// picture's reconstructed luma plane; blk is in chroma coordinates.
func (p *Predictor) FitChromaModel(blk Block, chroma *View, luma *Plane, mode int, n Neighbours) (*ChromaModel, error) {
	if p.ws == nil {
		return nil, ErrClosed
	}
	if blk.Component == Luma {
		return nil, fmt.Errorf("%w: linear model on %v", ErrComponent, blk.Component)
	}
	if err := checkGeometry(blk); err != nil {
		return nil, err
	}
	if mode != ModeLM && mode != ModeMDLMLeft && mode != ModeMDLMTop {
		return nil, fmt.Errorf("%w: %d is not a linear model mode", ErrMode, mode)
	}
	if !chroma.Fits(blk.Width, blk.Height, 0) {
		return nil, fmt.Errorf("%w: %d/%d samples for %dx%d", ErrReferences, len(chroma.Top), len(chroma.Left), blk.Width, blk.Height)
	}

	sx, sy := p.opts.ChromaFormat.Scale()
	rec := cclm.LumaRec{Plane: luma, X: blk.X << sx, Y: blk.Y << sy}
	avail := cclm.Availability{
		Left:       n.Left,
		Above:      n.Above,
		AboveRight: n.AboveRight,
		BelowLeft:  n.BelowLeft,
	}
	opt := cclm.Options{
		Format:        p.opts.ChromaFormat,
		Collocated:    p.opts.CollocatedChroma,
		FirstRowOfCTU: n.FirstRowOfCTU,
	}
	if !cclm.LumaFits(rec, blk.Width, blk.Height, mode, avail, opt) {
		return nil, fmt.Errorf("%w: chroma block at (%d,%d)", ErrLumaRec, blk.X, blk.Y)
	}

	tmpl := cclm.Downsample(rec, blk.Width, blk.Height, mode, avail, opt)
	m := cclm.Fit(tmpl, chroma, mode, avail, p.opts.ChromaFormat, p.opts.BitDepth)
	return &ChromaModel{A: m.A, B: m.B, Shift: m.Shift, luma: tmpl.Block}, nil
}

// ApplyChromaModel writes the model applied to its down-sampled luma into
// dst, clipped to the sample range.
func (p *Predictor) ApplyChromaModel(dst *Plane, m *ChromaModel) error {
	if dst.Width != m.luma.Width || dst.Height != m.luma.Height {
		return fmt.Errorf("%w: %dx%d for a %dx%d model", ErrPlaneSize, dst.Width, dst.Height, m.luma.Width, m.luma.Height)
	}
	m.model().Apply(dst, m.luma, p.clip)
	return nil
}

// PredictChroma fits the linear model of mode for blk and writes the
// prediction into dst.
func (p *Predictor) PredictChroma(dst *Plane, chroma *View, luma *Plane, blk Block, mode int, n Neighbours) error {
	if err := checkBlock(blk, dst); err != nil {
		return err
	}
	m, err := p.FitChromaModel(blk, chroma, luma, mode, n)
	if err != nil {
		return err
	}
	return p.ApplyChromaModel(dst, m)
}

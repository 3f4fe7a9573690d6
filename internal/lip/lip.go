// Package lip implements the layered intra prediction search. A block is
// peeled into nested rings, each the top row and left column of the block
// inset by the ring index. Every ring picks one of a small set of modes and
// predicts from the ring just outside it, so later rings see samples much
// closer than the block border.
package lip

import (
	"errors"
	"fmt"
	"math"

	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/pred"
	"github.com/deepteams/intrapred/internal/refs"
)

const (
	// BitsLoopMode is the width of one layer mode index.
	BitsLoopMode = 3

	// DefaultReserve is the ring area below which the remaining rings share
	// one mode.
	DefaultReserve = 16
)

// Candidates lists the modes a layer may choose from, indexed by the
// recorded layer mode index.
var Candidates = [1 << BitsLoopMode]int{
	pred.Planar, pred.DC, pred.Ver, pred.Hor, pred.Dia, 2, pred.VDia, 42,
}

var (
	ErrWidth        = errors.New("lip: block width 2 is not supported")
	ErrSize         = errors.New("lip: block size not supported")
	ErrTooFewLayers = errors.New("lip: block has fewer than two layers")
	ErrRecord       = errors.New("lip: layer record does not match the block")
)

// NumLoop returns the number of independently coded layers of a w x h
// block: rings are counted from the outside while their area stays at or
// above reserve, and the first ring below it starts the shared remainder.
func NumLoop(w, h, reserve int) int {
	n := 0
	for ; w >= 1 && h >= 1; w, h = w-1, h-1 {
		n++
		if w*h < reserve {
			break
		}
	}
	return n
}

// LoopAll returns the total number of rings of a w x h block.
func LoopAll(w, h int) int {
	return min(w, h)
}

// Check reports whether a w x h block can be searched.
func Check(w, h, reserve int) error {
	if w == 2 {
		return ErrWidth
	}
	if w < 1 || h < 1 || w > pred.MaxCUSize || h > pred.MaxCUSize {
		return fmt.Errorf("%w: %dx%d", ErrSize, w, h)
	}
	if n := NumLoop(w, h, reserve); n < 2 {
		return fmt.Errorf("%w: %dx%d has %d", ErrTooFewLayers, w, h, n)
	}
	return nil
}

// Engine runs the layered search and its replay. An Engine is not safe for
// concurrent use.
type Engine struct {
	ws      *pred.Workspace
	clip    dsp.ClipRange
	reserve int
}

// NewEngine returns an engine predicting into the sample range clip with
// scratch from ws.
func NewEngine(ws *pred.Workspace, clip dsp.ClipRange, reserve int) *Engine {
	if reserve <= 0 {
		reserve = DefaultReserve
	}
	return &Engine{ws: ws, clip: clip, reserve: reserve}
}

// Search chooses a mode per layer by the SAD of each ring against probe and
// leaves the chosen prediction of the whole block in dst. probe holds the
// samples the prediction is meant to approximate; it also supplies the
// references of every ring but the outermost.
func (e *Engine) Search(dst, probe *refs.Plane, v *refs.View, ch pred.Channel) (Record, error) {
	w, h := dst.Width, dst.Height
	if err := Check(w, h, e.reserve); err != nil {
		return Record{}, err
	}
	if probe.Width != w || probe.Height != h {
		return Record{}, fmt.Errorf("%w: probe is %dx%d, block %dx%d", ErrSize, probe.Width, probe.Height, w, h)
	}
	numLoop := NumLoop(w, h, e.reserve)
	loopAll := LoopAll(w, h)
	rec := Record{Layers: make([]uint8, numLoop)}

	layer := 0
	for ; layer < numLoop-1; layer++ {
		rg := pred.Ring{Inset: layer, View: v, Probe: probe}
		best, bestCost := 0, math.MaxInt
		for i, mode := range Candidates {
			if cost := pred.PredictRegion(dst, rg, mode, ch, e.clip, e.ws); cost < bestCost {
				best, bestCost = i, cost
			}
		}
		rec.Layers[layer] = uint8(best)
		pred.PredictRegion(dst, rg, Candidates[best], ch, e.clip, e.ws)
	}

	// The remaining rings share the mode with the lowest summed cost.
	best, bestCost := 0, math.MaxInt
	for i, mode := range Candidates {
		cost := 0
		for r := layer; r < loopAll; r++ {
			rg := pred.Ring{Inset: r, View: v, Probe: probe}
			cost += pred.PredictRegion(dst, rg, mode, ch, e.clip, e.ws)
		}
		if cost < bestCost {
			best, bestCost = i, cost
		}
	}
	rec.Layers[layer] = uint8(best)
	for r := layer; r < loopAll; r++ {
		rg := pred.Ring{Inset: r, View: v, Probe: probe}
		pred.PredictRegion(dst, rg, Candidates[best], ch, e.clip, e.ws)
	}
	return rec, nil
}

// Replay rebuilds the prediction of a searched block from its record. The
// rings inside the outermost take their references from residual plus the
// ring predicted before, so with residual = probe - search output the
// result equals the search output sample for sample.
func (e *Engine) Replay(dst, residual *refs.Plane, v *refs.View, rec Record, ch pred.Channel) error {
	w, h := dst.Width, dst.Height
	if err := Check(w, h, e.reserve); err != nil {
		return err
	}
	if residual.Width != w || residual.Height != h {
		return fmt.Errorf("%w: residual is %dx%d, block %dx%d", ErrSize, residual.Width, residual.Height, w, h)
	}
	if err := rec.validate(NumLoop(w, h, e.reserve)); err != nil {
		return err
	}
	for r := 0; r < LoopAll(w, h); r++ {
		rg := pred.RingReplay{Inset: r, View: v, Residual: residual, Prior: dst}
		pred.PredictRegion(dst, rg, rec.Mode(r), ch, e.clip, e.ws)
	}
	return nil
}

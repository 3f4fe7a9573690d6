package intrapred

import (
	"fmt"

	"github.com/deepteams/intrapred/internal/bitio"
	"github.com/deepteams/intrapred/internal/lip"
)

// Record holds the layer mode indices chosen by SearchLayered.
type Record = lip.Record

// LayerModeBits is the number of bits one layer index takes in the packed
// record stream.
const LayerModeBits = lip.BitsLoopMode

// LayerCandidates lists the modes a layer can choose from, indexed by the
// values stored in a Record.
var LayerCandidates = lip.Candidates

// NumLayers returns the number of layer mode indices a w x h block
// records with the predictor's layer reserve.
func (p *Predictor) NumLayers(w, h int) int {
	return lip.NumLoop(w, h, p.opts.LayerReserve)
}

// SearchLayered predicts blk ring by ring, choosing every layer's mode by
// its distortion against probe, and leaves the prediction in dst. probe
// holds the samples being coded; its inner rings also serve as references.
func (p *Predictor) SearchLayered(dst, probe *Plane, v *View, blk Block) (Record, error) {
	if p.ws == nil {
		return Record{}, ErrClosed
	}
	if err := p.checkLayered(dst, v, blk); err != nil {
		return Record{}, err
	}
	if probe == nil || probe.Width != blk.Width || probe.Height != blk.Height {
		return Record{}, fmt.Errorf("%w: probe", ErrPlaneSize)
	}
	return p.engine.Search(dst, probe, v, blk.Component.channel())
}

// ReplayLayered rebuilds the prediction of a searched block on the
// decoding side. residual holds the decoded residual of the block; with
// residual = probe - search prediction, dst receives exactly the search
// prediction.
func (p *Predictor) ReplayLayered(dst, residual *Plane, v *View, blk Block, rec Record) error {
	if p.ws == nil {
		return ErrClosed
	}
	if err := p.checkLayered(dst, v, blk); err != nil {
		return err
	}
	if residual == nil || residual.Width != blk.Width || residual.Height != blk.Height {
		return fmt.Errorf("%w: residual", ErrPlaneSize)
	}
	return p.engine.Replay(dst, residual, v, rec, blk.Component.channel())
}

func (p *Predictor) checkLayered(dst *Plane, v *View, blk Block) error {
	if err := checkBlock(blk, dst); err != nil {
		return err
	}
	if err := lip.Check(blk.Width, blk.Height, p.opts.LayerReserve); err != nil {
		return err
	}
	if !v.Fits(blk.Width, blk.Height, 0) {
		return fmt.Errorf("%w: %d/%d samples for %dx%d", ErrReferences, len(v.Top), len(v.Left), blk.Width, blk.Height)
	}
	return nil
}

// EncodeRecords packs the records back to back with three bits per layer.
func EncodeRecords(recs []Record) []byte {
	n := 0
	for _, rec := range recs {
		n += len(rec.Layers)
	}
	w := bitio.NewWriter((n*lip.BitsLoopMode + 7) / 8)
	for _, rec := range recs {
		rec.Append(w)
	}
	return w.Finish()
}

// DecodeRecords unpacks records written by EncodeRecords. layers gives the
// layer count of every record in order, as returned by NumLayers.
func DecodeRecords(data []byte, layers []int) ([]Record, error) {
	r := bitio.NewReader(data)
	recs := make([]Record, len(layers))
	for i, n := range layers {
		rec, err := lip.ReadRecord(r, n)
		if err != nil {
			return nil, fmt.Errorf("intrapred: record %d: %w", i, err)
		}
		recs[i] = rec
	}
	return recs, nil
}

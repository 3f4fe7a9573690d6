package intrapred

import (
	"errors"
	"fmt"

	"github.com/deepteams/intrapred/internal/cclm"
	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/lip"
	"github.com/deepteams/intrapred/internal/mip"
	"github.com/deepteams/intrapred/internal/pred"
	"github.com/deepteams/intrapred/internal/refs"
)

// Plane is a strided block of samples. Predictions are written into
// caller-owned planes; probe and residual input is read from them.
type Plane = refs.Plane

// View holds the reference lines of one block. Top and Left each start
// with the corner sample, index i > 0 being the i-th neighbour.
type View = refs.View

// NewPlane allocates a zeroed w x h plane.
func NewPlane(w, h int) *Plane { return refs.NewPlane(w, h) }

// NewView allocates a reference view for a w x h block with multi
// reference line index mrl.
func NewView(w, h, mrl int) *View { return refs.NewView(w, h, mrl) }

// Intra prediction mode numbers.
const (
	ModePlanar = pred.Planar
	ModeDC     = pred.DC
	ModeHor    = pred.Hor
	ModeDia    = pred.Dia
	ModeVer    = pred.Ver
	ModeVDia   = pred.VDia

	// Chroma linear model modes.
	ModeLM       = pred.LMChroma
	ModeMDLMLeft = pred.MDLMLeft
	ModeMDLMTop  = pred.MDLMTop
)

// BDPCM copy directions.
const (
	BDPCMNone = pred.BDPCMNone
	BDPCMHor  = pred.BDPCMHor
	BDPCMVer  = pred.BDPCMVer
)

// MaxBlockSize is the largest block side the predictor accepts.
const MaxBlockSize = pred.MaxCUSize

// Errors returned by the predictor.
var (
	ErrInvalidOptions = errors.New("intrapred: invalid options")
	ErrBlockSize      = errors.New("intrapred: unsupported block size")
	ErrMode           = errors.New("intrapred: invalid prediction mode")
	ErrReferences     = errors.New("intrapred: reference view too short")
	ErrPlaneSize      = errors.New("intrapred: plane does not match the block")
	ErrComponent      = errors.New("intrapred: wrong component for this prediction")
	ErrLumaRec        = errors.New("intrapred: luma reconstruction does not cover the block")
	ErrClosed         = errors.New("intrapred: predictor is closed")

	// ErrTooFewLayers is returned by the layered search for blocks with
	// fewer than two layers.
	ErrTooFewLayers = lip.ErrTooFewLayers
	// ErrRecord is returned by ReplayLayered for records that do not
	// match the block.
	ErrRecord = lip.ErrRecord
)

// Component identifies the colour component of a block.
type Component uint8

const (
	Luma Component = iota
	Cb
	Cr
)

// String returns the component name.
func (c Component) String() string {
	switch c {
	case Luma:
		return "Y"
	case Cb:
		return "Cb"
	case Cr:
		return "Cr"
	}
	return fmt.Sprintf("Component(%d)", uint8(c))
}

func (c Component) channel() pred.Channel {
	if c == Luma {
		return pred.Luma
	}
	return pred.Chroma
}

// ChromaFormat is the chroma subsampling of the picture.
type ChromaFormat = cclm.Format

const (
	Chroma420 = cclm.Format420
	Chroma422 = cclm.Format422
	Chroma444 = cclm.Format444
)

// Block describes one transform block: its component, size and position
// in that component's sample grid.
type Block struct {
	Component     Component
	Width, Height int
	X, Y          int
}

// Options configures a Predictor.
type Options struct {
	// BitDepth is the sample bit depth (8-14, default 10).
	BitDepth int

	// ChromaFormat selects the luma to chroma down-sampling of the chroma
	// linear model (default 4:2:0).
	ChromaFormat ChromaFormat

	// IntraSmoothingDisabled turns off reference smoothing and Gaussian
	// interpolation.
	IntraSmoothingDisabled bool

	// CollocatedChroma selects the five-tap luma down-sampling filter for
	// 4:2:0 content whose chroma samples sit on even luma positions.
	CollocatedChroma bool

	// LayerReserve is the ring area below which the layered search lets
	// all remaining rings share one mode (default 16).
	LayerReserve int
}

// DefaultOptions returns 10-bit 4:2:0 options with the default layer
// reserve.
func DefaultOptions() *Options {
	return &Options{
		BitDepth:     10,
		ChromaFormat: Chroma420,
		LayerReserve: lip.DefaultReserve,
	}
}

func validateOptions(o *Options) error {
	if o.BitDepth < 8 || o.BitDepth > dsp.MaxBitDepth {
		return fmt.Errorf("%w: BitDepth %d (must be 8-%d)", ErrInvalidOptions, o.BitDepth, dsp.MaxBitDepth)
	}
	if o.ChromaFormat > Chroma444 {
		return fmt.Errorf("%w: ChromaFormat %d", ErrInvalidOptions, o.ChromaFormat)
	}
	if o.LayerReserve < 1 {
		return fmt.Errorf("%w: LayerReserve %d (must be >= 1)", ErrInvalidOptions, o.LayerReserve)
	}
	return nil
}

// Predictor produces intra predictions for blocks of one picture
// configuration. It owns scratch memory and must not be used by more than
// one goroutine at a time; run one Predictor per worker instead.
type Predictor struct {
	opts   Options
	clip   dsp.ClipRange
	ws     *pred.Workspace
	engine *lip.Engine
	mip    *mip.Adapter
}

// NewPredictor returns a Predictor for opts. A nil opts uses
// DefaultOptions.
func NewPredictor(opts *Options) (*Predictor, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	p := &Predictor{
		opts: *opts,
		clip: dsp.RangeForBitDepth(opts.BitDepth),
		ws:   pred.NewWorkspace(),
	}
	p.engine = lip.NewEngine(p.ws, p.clip, opts.LayerReserve)
	return p, nil
}

// Options returns a copy of the predictor's configuration.
func (p *Predictor) Options() Options {
	return p.opts
}

// Close releases the predictor's scratch memory. The predictor must not be
// used afterwards.
func (p *Predictor) Close() {
	if p.ws != nil {
		p.ws.Release()
		p.ws = nil
	}
}

// PredictOptions carries the per-block coding tools of Predict. A nil
// *PredictOptions selects none of them.
type PredictOptions struct {
	// MultiRefIdx selects the reference line (0-2, luma only). Lines 1
	// and 2 exclude Planar and BDPCM.
	MultiRefIdx int

	// BDPCM selects a BDPCM copy direction instead of mode.
	BDPCM int

	// ISP marks an intra sub-partition; it disables reference smoothing.
	ISP bool
}

// Predict writes the prediction of blk with mode (0-66) into dst from the
// reference view v.
func (p *Predictor) Predict(dst *Plane, v *View, blk Block, mode int, po *PredictOptions) error {
	if p.ws == nil {
		return ErrClosed
	}
	if po == nil {
		po = &PredictOptions{}
	}
	if err := checkBlock(blk, dst); err != nil {
		return err
	}
	if !dsp.IsPow2(blk.Width) || !dsp.IsPow2(blk.Height) {
		return fmt.Errorf("%w: %dx%d is not a power of two", ErrBlockSize, blk.Width, blk.Height)
	}
	if mode < 0 || mode >= pred.NumLumaModes {
		return fmt.Errorf("%w: %d", ErrMode, mode)
	}
	if po.BDPCM < BDPCMNone || po.BDPCM > BDPCMVer {
		return fmt.Errorf("%w: BDPCM %d", ErrMode, po.BDPCM)
	}
	if po.MultiRefIdx < 0 || po.MultiRefIdx >= pred.MaxRefLineIdx ||
		(po.MultiRefIdx > 0 && blk.Component != Luma) {
		return fmt.Errorf("%w: reference line %d on %v", ErrMode, po.MultiRefIdx, blk.Component)
	}
	if po.MultiRefIdx > 0 && (mode == ModePlanar || po.BDPCM != BDPCMNone) {
		return fmt.Errorf("%w: reference line %d with mode %d, BDPCM %d", ErrMode, po.MultiRefIdx, mode, po.BDPCM)
	}
	if !v.Fits(blk.Width, blk.Height, po.MultiRefIdx) {
		return fmt.Errorf("%w: %d/%d samples for %dx%d", ErrReferences, len(v.Top), len(v.Left), blk.Width, blk.Height)
	}

	rg := pred.FullBlock{View: v, Opts: pred.DeriveOptions{
		Channel:           blk.Component.channel(),
		MultiRefIdx:       po.MultiRefIdx,
		SmoothingDisabled: p.opts.IntraSmoothingDisabled,
		BDPCM:             po.BDPCM,
		ISP:               po.ISP,
	}}
	pred.PredictRegion(dst, rg, mode, blk.Component.channel(), p.clip, p.ws)
	return nil
}

// Matrix supplies the coefficients of matrix-weighted intra prediction.
type Matrix = mip.Matrix

// MIPBoundary is the reference input handed to a Matrix.
type MIPBoundary = mip.Boundary

// MIPOptions selects the variant of a matrix-weighted prediction.
type MIPOptions struct {
	// Transpose swaps the roles of the top and left boundaries.
	Transpose bool
	// Filtered reports that v holds smoothed references. Matrix prediction
	// reads unfiltered samples only and rejects such a view.
	Filtered bool
}

// PredictMIP writes the matrix-weighted prediction of blk into dst. The
// matrix m computes the samples from the unfiltered references of v. A nil
// mo predicts untransposed from unfiltered references.
func (p *Predictor) PredictMIP(dst *Plane, v *View, blk Block, m Matrix, modeIdx int, mo *MIPOptions) error {
	if p.ws == nil {
		return ErrClosed
	}
	if mo == nil {
		mo = &MIPOptions{}
	}
	if m == nil {
		return fmt.Errorf("%w: nil matrix", ErrInvalidOptions)
	}
	if err := checkBlock(blk, dst); err != nil {
		return err
	}
	if !v.Fits(blk.Width, blk.Height, 0) {
		return fmt.Errorf("%w: %d/%d samples for %dx%d", ErrReferences, len(v.Top), len(v.Left), blk.Width, blk.Height)
	}
	if p.mip == nil {
		p.mip = mip.NewAdapter(m)
	}
	p.mip.Matrix = m
	err := p.mip.Predict(dst, v, mo.Filtered, modeIdx, mo.Transpose, p.opts.BitDepth, blk.Component != Luma)
	switch {
	case errors.Is(err, mip.ErrSize):
		return fmt.Errorf("%w: %v", ErrBlockSize, err)
	case errors.Is(err, mip.ErrMode):
		return fmt.Errorf("%w: %v", ErrMode, err)
	case errors.Is(err, mip.ErrFiltered):
		return fmt.Errorf("%w: %v", ErrReferences, err)
	}
	return err
}

// BlendInterIntra replaces the inter prediction in dst by its weighted
// average with the intra prediction. The intra weight grows with the number
// of intra coded neighbours among left and above.
func (p *Predictor) BlendInterIntra(dst, intra *Plane, leftIntra, aboveIntra bool) error {
	if dst.Width != intra.Width || dst.Height != intra.Height {
		return fmt.Errorf("%w: %dx%d and %dx%d", ErrPlaneSize, dst.Width, dst.Height, intra.Width, intra.Height)
	}
	pred.BlendInterIntra(dst, intra, leftIntra, aboveIntra)
	return nil
}

// checkGeometry validates the block component and size.
func checkGeometry(blk Block) error {
	if blk.Component > Cr {
		return fmt.Errorf("%w: %v", ErrComponent, blk.Component)
	}
	if blk.Width < 1 || blk.Height < 1 || blk.Width > MaxBlockSize || blk.Height > MaxBlockSize || blk.Width == 2 {
		return fmt.Errorf("%w: %dx%d", ErrBlockSize, blk.Width, blk.Height)
	}
	return nil
}

// checkBlock validates the block and its destination plane.
func checkBlock(blk Block, dst *Plane) error {
	if err := checkGeometry(blk); err != nil {
		return err
	}
	if dst == nil || dst.Width != blk.Width || dst.Height != blk.Height {
		return ErrPlaneSize
	}
	return nil
}

package pred

import "github.com/deepteams/intrapred/internal/dsp"

// Params holds the per block and mode prediction parameters.
type Params struct {
	Mode     int // signalled mode
	PredMode int // mode after the wide angle remap

	IsModeVer   bool
	MultiRefIdx int

	PredAngle    int // signed, 1/32 sample units
	AbsInvAngle  int
	AngularScale int

	RefFilter     bool // smooth the reference lines with [1 2 1]
	Interpolation bool // Gaussian instead of cubic 4-tap interpolation
	ApplyPDPC     bool

	BDPCM int
}

// DeriveOptions carries the block level flags that influence parameter
// derivation.
type DeriveOptions struct {
	Channel           Channel
	MultiRefIdx       int
	SmoothingDisabled bool
	BDPCM             int
	ISP               bool
	MIP               bool
}

// WideAngle remaps a directional mode for non-square blocks. Modes outside
// 2..66 are returned unchanged.
func WideAngle(w, h, mode int) int {
	if mode <= DC || mode > VDia {
		return mode
	}
	d := dsp.FloorLog2(w) - dsp.FloorLog2(h)
	if d < 0 {
		d = -d
	}
	// 1:64 and 1:128 blocks share the widest remapping range.
	d = min(d, len(dsp.WideAngleShift)-1)
	shift := dsp.WideAngleShift[d]
	switch {
	case w > h && mode < 2+shift:
		mode += VDia - 1
	case h > w && mode > VDia-shift:
		mode -= VDia - 1
	}
	return mode
}

// modeAngle returns the signed angle and inverse angle of a (possibly
// remapped) directional mode.
func modeAngle(predMode int) (angle, absInv int) {
	isVer := predMode >= Dia
	m := -(predMode - Hor)
	if isVer {
		m = predMode - Ver
	}
	a := abs(m)
	angle = dsp.AngTable[a]
	if m < 0 {
		angle = -angle
	}
	return angle, dsp.InvAngTable[a]
}

// DeriveParams computes the prediction parameters of a w x h block
// predicted with mode.
func DeriveParams(w, h, mode int, opt DeriveOptions) Params {
	isLuma := opt.Channel == Luma
	useISP := opt.ISP && isLuma

	p := Params{
		Mode:     mode,
		PredMode: WideAngle(w, h, mode),
		BDPCM:    opt.BDPCM,
	}
	if isLuma {
		p.MultiRefIdx = opt.MultiRefIdx
	}
	p.IsModeVer = p.PredMode >= Dia
	p.ApplyPDPC = w >= MinTBSize && h >= MinTBSize && p.MultiRefIdx == 0

	if IsAngular(mode) {
		p.PredAngle, p.AbsInvAngle = modeAngle(p.PredMode)
		switch {
		case p.PredAngle < 0:
			p.ApplyPDPC = false
		case p.PredAngle > 0:
			side := w
			if p.IsModeVer {
				side = h
			}
			p.AngularScale = min(2, dsp.FloorLog2(side)-(dsp.FloorLog2(3*p.AbsInvAngle-2)-8))
			p.ApplyPDPC = p.ApplyPDPC && p.AngularScale >= 0
		}
	}
	if p.BDPCM != BDPCMNone {
		p.ApplyPDPC = false
	}

	switch {
	case opt.SmoothingDisabled || !isLuma || useISP || opt.MIP || p.MultiRefIdx != 0 || mode == DC:
	case p.BDPCM != BDPCMNone:
	case mode == Planar:
		p.RefFilter = w*h > 32
	default:
		diff := min(abs(p.PredMode-Hor), abs(p.PredMode-Ver))
		log2Size := (dsp.FloorLog2(w) + dsp.FloorLog2(h)) >> 1
		if diff > dsp.IntraFilterThreshold[log2Size] {
			integer := dsp.IsIntegerSlope(abs(p.PredAngle))
			p.RefFilter = integer
			p.Interpolation = !integer
		}
	}
	return p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

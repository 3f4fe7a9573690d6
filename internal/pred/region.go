package pred

import (
	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/refs"
)

// Region selects which samples a prediction pass writes and where its
// reference samples come from. It is one of FullBlock, Ring or RingReplay.
type Region interface {
	region()
}

// FullBlock predicts the whole block from the reference view with the
// standard parameter derivation.
type FullBlock struct {
	View *refs.View
	Opts DeriveOptions
}

// Ring predicts only the top row and left column of the block inset by
// Inset samples on its top and left. Its references are the samples at
// row and column Inset-1: the reference view for Inset 0, the probe plane
// otherwise. The pass is scored by SAD against the probe.
type Ring struct {
	Inset int
	View  *refs.View
	Probe *refs.Plane
}

// RingReplay is the decoder side Ring. Its references inside the block
// are Residual + Prior, where Prior holds the rings predicted before.
type RingReplay struct {
	Inset    int
	View     *refs.View
	Residual *refs.Plane
	Prior    *refs.Plane
}

func (FullBlock) region()  {}
func (Ring) region()       {}
func (RingReplay) region() {}

// ringSource returns the reference sample at block position (x, y). One of
// x, y is the inset minus one; -1 addresses the reference view.
type ringSource func(x, y int) int

func viewSource(v *refs.View, inner func(x, y int) int) ringSource {
	return func(x, y int) int {
		switch {
		case y < 0:
			return int(v.Top[x+1])
		case x < 0:
			return int(v.Left[y+1])
		}
		return inner(x, y)
	}
}

func (r Ring) source() ringSource {
	return viewSource(r.View, func(x, y int) int {
		return int(r.Probe.At(x, y))
	})
}

func (r RingReplay) source() ringSource {
	return viewSource(r.View, func(x, y int) int {
		return int(r.Residual.At(x, y)) + int(r.Prior.At(x, y))
	})
}

// PredictRegion predicts dst with mode over the given region and returns
// the SAD of the written ring against the probe for Ring regions, zero
// otherwise.
func PredictRegion(dst *refs.Plane, rg Region, mode int, ch Channel, clip dsp.ClipRange, ws *Workspace) int {
	switch rg := rg.(type) {
	case FullBlock:
		p := DeriveParams(dst.Width, dst.Height, mode, rg.Opts)
		Predict(dst, rg.View, &p, ch, clip, ws)
		return 0
	case Ring:
		predictRing(dst, rg.Inset, rg.source(), mode, ch, clip, ws)
		if rg.Probe == nil {
			return 0
		}
		return RingCost(dst, rg.Probe, rg.Inset)
	case RingReplay:
		predictRing(dst, rg.Inset, rg.source(), mode, ch, clip, ws)
		return 0
	}
	return 0
}

// RingCost returns the SAD between dst and probe over the top row and left
// column of the block inset by inset.
func RingCost(dst, probe *refs.Plane, inset int) int {
	cost := dsp.SADRow(dst.Row(inset)[inset:], probe.Row(inset)[inset:])
	if n := dst.Height - inset - 1; n > 0 {
		a := (inset+1)*dst.Stride + inset
		b := (inset+1)*probe.Stride + inset
		cost += dsp.SADCol(dst.Pix[a:], dst.Stride, probe.Pix[b:], probe.Stride, n)
	}
	return cost
}

func predictRing(dst *refs.Plane, inset int, src ringSource, mode int, ch Channel, clip dsp.ClipRange, ws *Workspace) {
	switch mode {
	case Planar:
		ringPlanar(dst, inset, src, ws)
	case DC:
		ringDC(dst, inset, src)
	default:
		ringAngular(dst, inset, src, mode, ch, clip, ws)
	}
}

// ringPlanar is planar prediction over the ring with truncating division
// by 2*w*h. The bottom-left and top-right samples repeat the last sample of
// the left and top reference.
func ringPlanar(dst *refs.Plane, inset int, src ringSource, ws *Workspace) {
	w, h := dst.Width-inset, dst.Height-inset
	topRow := ws.topRow[:w+1]
	leftCol := ws.leftCol[:h+1]
	bottomRow := ws.bottomRow[:w]
	rightCol := ws.rightCol[:h]

	for k := 0; k < w; k++ {
		topRow[k] = src(k+inset, inset-1)
	}
	topRow[w] = src(w-1+inset, inset-1)
	for k := 0; k < h; k++ {
		leftCol[k] = src(inset-1, k+inset)
	}
	leftCol[h] = src(inset-1, h-1+inset)

	bottomLeft := leftCol[h]
	topRight := topRow[w]
	for k := 0; k < w; k++ {
		bottomRow[k] = bottomLeft - topRow[k]
		topRow[k] *= h
	}
	for k := 0; k < h; k++ {
		rightCol[k] = topRight - leftCol[k]
		leftCol[k] *= w
	}

	denom := 2 * w * h
	row := dst.Row(inset)[inset:]
	horPred := leftCol[0]
	for x := 0; x < w; x++ {
		horPred += rightCol[0]
		topRow[x] += bottomRow[x]
		row[x] = int16((horPred*h + topRow[x]*w) / denom)
	}
	for y := 1; y < h; y++ {
		horPred := leftCol[y] + rightCol[y]
		topRow[0] += bottomRow[0]
		dst.Set(inset, y+inset, int16((horPred*h+topRow[0]*w)/denom))
	}
}

// ringDC fills the ring with the truncated mean of the longer reference
// side, or both sides when the ring block is square.
func ringDC(dst *refs.Plane, inset int, src ringSource) {
	w, h := dst.Width-inset, dst.Height-inset
	denom := max(w, h)
	if w == h {
		denom = 2 * w
	}
	sum := 0
	if w >= h {
		for i := 0; i < w; i++ {
			sum += src(i+inset, inset-1)
		}
	}
	if w <= h {
		for i := 0; i < h; i++ {
			sum += src(inset-1, i+inset)
		}
	}
	dc := int16(sum / denom)

	row := dst.Row(inset)[inset:]
	for x := range row {
		row[x] = dc
	}
	for y := inset + 1; y < dst.Height; y++ {
		dst.Set(inset, y, dc)
	}
}

// ringAngular predicts the ring along mode without wide angle remapping,
// reference smoothing or PDPC. The main line is always extended to the left
// through the inverse angle and its last sample is replicated to the right.
func ringAngular(dst *refs.Plane, inset int, src ringSource, mode int, ch Channel, clip dsp.ClipRange, ws *Workspace) {
	width, height := dst.Width-inset, dst.Height-inset
	isVer := mode >= Dia
	angle, absInv := modeAngle(mode)

	above, left := ws.ringAbove[:], ws.ringLeft[:]
	for x := 0; x <= width; x++ {
		above[x+height] = src(x-1+inset, inset-1)
	}
	above[width+height+1] = src(width-1+inset, inset-1)
	for y := 0; y <= height; y++ {
		left[y+width] = src(inset-1, y-1+inset)
	}
	left[height+width+1] = src(inset-1, height-1+inset)

	main, mainOff, side, sideOff := above, height, left, width
	sizeMain, sizeSide := width, height
	if !isVer {
		main, mainOff, side, sideOff = left, width, above, height
		sizeMain, sizeSide = height, width
	}
	for k := -sizeSide; k <= -1; k++ {
		main[mainOff+k] = side[sideOff+min((-k*absInv+256)>>9, sizeSide)]
	}
	// Positive angles can project the far end of the ring past the main
	// line; extend it with its last sample.
	if angle > 0 {
		last := main[mainOff+sizeMain+1]
		end := mainOff + sizeMain + 3 + (angle*sizeSide)>>5
		for i := mainOff + sizeMain + 2; i <= end; i++ {
			main[i] = last
		}
	}

	kind := lineFilter(ch, false)
	var one [1]int16
	first := ws.tmp[:sizeMain]

	// Line 0 runs along the main direction; every later line contributes
	// its first sample only.
	projectLine(first, main, mainOff, angle, angle, kind, clip)
	for x, s := range first {
		if isVer {
			dst.Set(inset+x, inset, s)
		} else {
			dst.Set(inset, inset+x, s)
		}
	}
	deltaPos := 2 * angle
	for y := 1; y < sizeSide; y++ {
		projectLine(one[:], main, mainOff, deltaPos, angle, kind, clip)
		if isVer {
			dst.Set(inset, inset+y, one[0])
		} else {
			dst.Set(inset+y, inset, one[0])
		}
		deltaPos += angle
	}
}

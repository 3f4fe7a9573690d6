package cclm

import (
	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/refs"
)

// Model is the fixed-point linear map chroma = ((A*luma) >> Shift) + B.
type Model struct {
	A, B, Shift int
}

// Predict returns the chroma value of a down-sampled luma sample before
// clipping.
func (m Model) Predict(luma int) int {
	return (m.A*luma)>>m.Shift + m.B
}

// Apply writes the model applied to the down-sampled luma block into dst.
func (m Model) Apply(dst, lumaDown *refs.Plane, clip dsp.ClipRange) {
	for y := 0; y < dst.Height; y++ {
		d := dst.Row(y)
		s := lumaDown.Row(y)[:len(d)]
		for x := range d {
			d[x] = clip.Clip(m.Predict(int(s[x])))
		}
	}
}

// Fit derives the linear model of mode from up to four template pairs.
// The luma templates come from t, the chroma templates from the reference
// lines of chroma (Top[i+1] is the sample above column i). Without any
// template the model predicts mid-grey.
func Fit(t *Template, chroma *refs.View, mode int, avail Availability, format Format, bitDepth int) Model {
	cw, ch := t.Block.Width, t.Block.Height
	uw, uh := format.unitSize()

	above, left := avail.Above, avail.Left
	actualTop, actualLeft := cw, ch
	switch mode {
	case ModeMDLMTop:
		left = false
		if above {
			ar := min(min(avail.AboveRight, cw)/uw, ch/uw)
			actualTop = uw * (cw/uw + ar)
		}
	case ModeMDLMLeft:
		above = false
		if left {
			bl := min(min(avail.BelowLeft, ch)/uh, cw/uh)
			actualLeft = uh * (ch/uh + bl)
		}
	}
	actualTop = min(actualTop, len(t.Top))
	actualLeft = min(actualLeft, len(t.Left))
	if !above {
		actualTop = 0
	}
	if !left {
		actualLeft = 0
	}

	var selLuma, selChroma [4]int
	cnt := 0
	if actualTop > 0 {
		is4 := 0
		if !left {
			is4 = 1
		}
		start := actualTop >> (2 + is4)
		step := max(1, actualTop>>(1+is4))
		n := min(actualTop, (1+is4)<<1)
		for i, pos := 0, start; i < n; i, pos = i+1, pos+step {
			selLuma[cnt] = int(t.Top[pos])
			selChroma[cnt] = int(chroma.Top[pos+1])
			cnt++
		}
	}
	if actualLeft > 0 {
		is4 := 0
		if !above {
			is4 = 1
		}
		start := actualLeft >> (2 + is4)
		step := max(1, actualLeft>>(1+is4))
		n := min(actualLeft, (1+is4)<<1)
		for i, pos := 0, start; i < n; i, pos = i+1, pos+step {
			selLuma[cnt] = int(t.Left[pos])
			selChroma[cnt] = int(chroma.Left[pos+1])
			cnt++
		}
	}

	if cnt == 0 {
		return Model{B: 1 << (bitDepth - 1)}
	}
	if cnt == 2 {
		selLuma = [4]int{selLuma[1], selLuma[0], selLuma[1], selLuma[0]}
		selChroma = [4]int{selChroma[1], selChroma[0], selChroma[1], selChroma[0]}
	}
	return fitPairs(selLuma, selChroma)
}

// fitPairs averages the two smallest and the two largest luma samples with
// their chroma partners and solves the line through both means.
func fitPairs(luma, chroma [4]int) Model {
	// Four-element sorting network: minIdx holds the two smallest, maxIdx
	// the two largest luma positions.
	minIdx := [2]int{0, 2}
	maxIdx := [2]int{1, 3}
	if luma[minIdx[0]] > luma[minIdx[1]] {
		minIdx[0], minIdx[1] = minIdx[1], minIdx[0]
	}
	if luma[maxIdx[0]] > luma[maxIdx[1]] {
		maxIdx[0], maxIdx[1] = maxIdx[1], maxIdx[0]
	}
	if luma[minIdx[0]] > luma[maxIdx[1]] {
		minIdx, maxIdx = maxIdx, minIdx
	}
	if luma[minIdx[1]] > luma[maxIdx[0]] {
		minIdx[1], maxIdx[0] = maxIdx[0], minIdx[1]
	}

	minY := (luma[minIdx[0]] + luma[minIdx[1]] + 1) >> 1
	minC := (chroma[minIdx[0]] + chroma[minIdx[1]] + 1) >> 1
	maxY := (luma[maxIdx[0]] + luma[maxIdx[1]] + 1) >> 1
	maxC := (chroma[maxIdx[0]] + chroma[maxIdx[1]] + 1) >> 1

	diff := maxY - minY
	if diff <= 0 {
		return Model{B: minC}
	}
	diffC := maxC - minC
	x := dsp.FloorLog2(diff)
	normDiff := (diff << 4 >> x) & 15
	v := dsp.DivSigTable[normDiff] | 8
	x += boolInt(normDiff != 0)

	y := dsp.FloorLog2(abs(diffC)) + 1
	add := 1 << y >> 1
	a := (diffC*v + add) >> y
	shift := 3 + x - y
	if shift < 1 {
		shift = 1
		a = sign(a) * 15
	}
	b := minC - (a*minY)>>shift
	return Model{A: a, B: b, Shift: shift}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

package pred

import (
	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/refs"
)

// Predict writes the prediction of the whole dst block from the reference
// view v. The reference lines are smoothed first when p.RefFilter is set.
// PDPC is applied when p.ApplyPDPC is set.
func Predict(dst *refs.Plane, v *refs.View, p *Params, ch Channel, clip dsp.ClipRange, ws *Workspace) {
	w, h := dst.Width, dst.Height
	if p.RefFilter {
		v = ws.filter(v, w, h)
	}

	switch {
	case p.BDPCM != BDPCMNone:
		predBDPCM(dst, v, p.BDPCM)
		return
	case p.Mode == Planar:
		predPlanar(dst, v, ws)
	case p.Mode == DC:
		dst.Fill(dcValue(v, w, h, p.MultiRefIdx))
	default:
		predAngular(dst, v, p, ch, clip, ws)
		return
	}

	if p.ApplyPDPC {
		pdpcPlanarDC(dst, v)
	}
}

// predPlanar blends a horizontal and a vertical linear gradient. The
// right column and bottom row are replicated from the top-right and
// bottom-left reference samples.
func predPlanar(dst *refs.Plane, v *refs.View, ws *Workspace) {
	w, h := dst.Width, dst.Height
	log2W, log2H := uint(dsp.FloorLog2(w)), uint(dsp.FloorLog2(h))
	offset := 1 << (log2W + log2H)
	finalShift := 1 + log2W + log2H

	topRow := ws.topRow[:w+1]
	leftCol := ws.leftCol[:h+1]
	bottomRow := ws.bottomRow[:w]
	rightCol := ws.rightCol[:h]

	for k := range topRow {
		topRow[k] = int(v.Top[k+1])
	}
	for k := range leftCol {
		leftCol[k] = int(v.Left[k+1])
	}

	bottomLeft := leftCol[h]
	topRight := topRow[w]
	for k := 0; k < w; k++ {
		bottomRow[k] = bottomLeft - topRow[k]
		topRow[k] <<= log2H
	}
	for k := 0; k < h; k++ {
		rightCol[k] = topRight - leftCol[k]
		leftCol[k] <<= log2W
	}

	for y := 0; y < h; y++ {
		row := dst.Row(y)
		horPred := leftCol[y]
		for x := range row {
			horPred += rightCol[y]
			topRow[x] += bottomRow[x]
			row[x] = int16(((horPred << log2H) + (topRow[x] << log2W) + offset) >> finalShift)
		}
	}
}

// dcValue averages the longer reference side, or both sides of a square
// block.
func dcValue(v *refs.View, w, h, mrl int) int16 {
	denom := max(w, h)
	if w == h {
		denom = w << 1
	}
	sum := 0
	if w >= h {
		for _, s := range v.Top[mrl+1 : mrl+1+w] {
			sum += int(s)
		}
	}
	if w <= h {
		for _, s := range v.Left[mrl+1 : mrl+1+h] {
			sum += int(s)
		}
	}
	return int16((sum + denom>>1) >> uint(dsp.FloorLog2(denom)))
}

// predBDPCM copies the left column across each row (mode 1) or the top
// row down each column (mode 2).
func predBDPCM(dst *refs.Plane, v *refs.View, mode int) {
	if mode == BDPCMHor {
		for y := 0; y < dst.Height; y++ {
			row := dst.Row(y)
			val := v.Left[y+1]
			for x := range row {
				row[x] = val
			}
		}
		return
	}
	top := v.Top[1 : 1+dst.Width]
	for y := 0; y < dst.Height; y++ {
		copy(dst.Row(y), top)
	}
}

// pdpcPlanarDC blends the planar and DC output with the unshifted top and
// left reference samples. Weights fall to zero after 3<<scale samples.
func pdpcPlanarDC(dst *refs.Plane, v *refs.View) {
	w, h := dst.Width, dst.Height
	scale := uint((dsp.FloorLog2(w) - 2 + dsp.FloorLog2(h) - 2 + 2) >> 2)
	for y := 0; y < h; y++ {
		wT := 32 >> min(31, uint(y<<1)>>scale)
		left := int(v.Left[y+1])
		row := dst.Row(y)
		for x := range row {
			wL := 32 >> min(31, uint(x<<1)>>scale)
			top := int(v.Top[x+1])
			val := int(row[x])
			row[x] = int16(val + ((wL*(left-val) + wT*(top-val) + 32) >> 6))
		}
	}
}

package pred

import (
	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/refs"
)

// filterKind selects the sub-sample interpolation of angular prediction.
type filterKind uint8

const (
	filterCubic  filterKind = iota // DCT-IF 4-tap, clipped
	filterGauss                    // smoothing 4-tap, clipped
	filterLinear                   // 2-tap, chroma
)

// lineFilter picks the interpolation for a channel.
func lineFilter(ch Channel, gauss bool) filterKind {
	switch {
	case ch != Luma:
		return filterLinear
	case gauss:
		return filterGauss
	default:
		return filterCubic
	}
}

// projectLine writes one output line. ref[base+i] is refMain[i]; the line
// lies deltaPos/32 samples along the main line.
func projectLine[T int16 | int](dst []int16, ref []T, base, deltaPos, angle int, kind filterKind, clip dsp.ClipRange) {
	deltaInt := deltaPos >> 5
	frac := deltaPos & 31
	r := ref[base+deltaInt:]

	if dsp.IsIntegerSlope(abs(angle)) {
		for x := range dst {
			dst[x] = int16(r[x+1])
		}
		return
	}

	switch kind {
	case filterLinear:
		for x := range dst {
			p0, p1 := int(r[x+1]), int(r[x+2])
			dst[x] = int16(p0 + ((frac*(p1-p0) + 16) >> 5))
		}
	default:
		var f [4]int
		if kind == filterCubic {
			f = dsp.CubicFilter[frac]
		} else {
			f = dsp.GaussFilter(frac)
		}
		for x := range dst {
			p := r[x : x+4 : x+4]
			val := (f[0]*int(p[0]) + f[1]*int(p[1]) + f[2]*int(p[2]) + f[3]*int(p[3]) + 32) >> 6
			dst[x] = clip.Clip(val)
		}
	}
}

// predAngular is the full block directional predictor. Horizontal modes
// are computed transposed into scratch and written back.
func predAngular(dst *refs.Plane, v *refs.View, p *Params, ch Channel, clip dsp.ClipRange, ws *Workspace) {
	width, height := dst.Width, dst.Height
	mrl := p.MultiRefIdx
	angle := p.PredAngle
	isVer := p.IsModeVer

	above, left := ws.refAbove, ws.refLeft
	var main, side []int16
	var mainOff, sideOff int

	if angle < 0 {
		for x := 0; x <= width+1+mrl; x++ {
			above[x+height] = v.Top[x]
		}
		for y := 0; y <= height+1+mrl; y++ {
			left[y+width] = v.Left[y]
		}
		if isVer {
			main, mainOff, side, sideOff = above, height, left, width
		} else {
			main, mainOff, side, sideOff = left, width, above, height
		}
		// Extend the main line to the left through the inverse angle.
		sizeSide := width
		if isVer {
			sizeSide = height
		}
		for k := -sizeSide; k <= -1; k++ {
			main[mainOff+k] = side[sideOff+min((-k*p.AbsInvAngle+256)>>9, sizeSide)]
		}
	} else {
		copy(above, v.Top[:2*width+1+mrl])
		copy(left, v.Left[:2*height+1+mrl])
		if isVer {
			main, side = above, left
		} else {
			main, side = left, above
		}
		// Replicate the last main sample to the right.
		log2Ratio := dsp.FloorLog2(width) - dsp.FloorLog2(height)
		if !isVer {
			log2Ratio = -log2Ratio
		}
		s := uint(max(0, log2Ratio))
		maxIndex := (mrl << s) + 2
		refLength := 2 * width
		if !isVer {
			refLength = 2 * height
		}
		val := main[refLength+mrl]
		for z := 1; z <= maxIndex; z++ {
			main[refLength+mrl+z] = val
		}
	}

	if !isVer {
		width, height = height, width
	}
	out := dst.Pix
	stride := dst.Stride
	if !isVer {
		out = ws.tmp
		stride = width
	}

	mainOff += mrl
	sideOff += mrl
	kind := lineFilter(ch, p.Interpolation)

	if angle == 0 {
		scale := uint((dsp.FloorLog2(width) + dsp.FloorLog2(height) - 2) >> 2)
		topLeft := int(main[mainOff])
		for y := 0; y < height; y++ {
			row := out[y*stride : y*stride+width]
			copy(row, main[mainOff+1:mainOff+1+width])
			if p.ApplyPDPC {
				l := int(side[sideOff+1+y])
				for x := 0; x < min(3<<scale, width); x++ {
					wL := 32 >> (uint(2*x) >> scale)
					row[x] = clip.Clip(int(row[x]) + ((wL*(l-topLeft) + 32) >> 6))
				}
			}
		}
	} else {
		deltaPos := angle * (1 + mrl)
		for y := 0; y < height; y++ {
			row := out[y*stride : y*stride+width]
			projectLine(row, main, mainOff, deltaPos, angle, kind, clip)
			if p.ApplyPDPC {
				scale := uint(p.AngularScale)
				invAngleSum := 256
				for x := 0; x < min(3<<scale, width); x++ {
					invAngleSum += p.AbsInvAngle
					wL := 32 >> (uint(2*x) >> scale)
					l := int(side[sideOff+y+(invAngleSum>>9)+1])
					row[x] = int16(int(row[x]) + ((wL*(l-int(row[x])) + 32) >> 6))
				}
			}
			deltaPos += angle
		}
	}

	if !isVer {
		for y := 0; y < height; y++ {
			src := out[y*stride : y*stride+width]
			for x, s := range src {
				dst.Set(y, x, s)
			}
		}
	}
}

package pred

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/refs"
)

const testBitDepth = 10

var testClip = dsp.RangeForBitDepth(testBitDepth)

// blockSizes lists the supported power of two sizes (width 2 excluded).
func blockSizes() [][2]int {
	dims := []int{4, 8, 16, 32, 64, 128}
	var out [][2]int
	for _, w := range append([]int{1}, dims...) {
		for _, h := range append([]int{1, 2}, dims...) {
			out = append(out, [2]int{w, h})
		}
	}
	return out
}

func randomView(rng *rand.Rand, w, h int) *refs.View {
	v := refs.NewView(w, h, 0)
	for i := range v.Top {
		v.Top[i] = int16(rng.Intn(1 << testBitDepth))
	}
	for i := range v.Left {
		v.Left[i] = int16(rng.Intn(1 << testBitDepth))
	}
	v.Left[0] = v.Top[0]
	return v
}

func viewRange(v *refs.View) (lo, hi int16) {
	lo, hi = v.Top[0], v.Top[0]
	for _, line := range [][]int16{v.Top, v.Left} {
		for _, s := range line {
			lo = min(lo, s)
			hi = max(hi, s)
		}
	}
	return lo, hi
}

func checkBounded(t *testing.T, p *refs.Plane, lo, hi int16) {
	t.Helper()
	for y := 0; y < p.Height; y++ {
		for x, s := range p.Row(y) {
			if s < lo || s > hi {
				t.Fatalf("sample (%d,%d) = %d outside [%d, %d]", x, y, s, lo, hi)
			}
		}
	}
}

func TestWideAngle(t *testing.T) {
	tests := []struct {
		w, h, mode, want int
	}{
		{8, 8, 2, 2},
		{8, 8, 66, 66},
		{16, 4, 2, 67},
		{16, 4, 11, 76},
		{16, 4, 12, 12},
		{4, 16, 66, 1},
		{4, 16, 57, -8},
		{4, 16, 56, 56},
		{128, 4, 16, 81},
		{64, 1, 16, 81},
		{64, 1, 17, 17},
		{128, 1, 2, 67},
		{1, 64, 52, -13},
		{1, 64, 51, 51},
		{1, 128, 66, 1},
		{16, 4, Planar, Planar},
		{16, 4, DC, DC},
	}
	for _, tt := range tests {
		if got := WideAngle(tt.w, tt.h, tt.mode); got != tt.want {
			t.Errorf("WideAngle(%d, %d, %d) = %d, want %d", tt.w, tt.h, tt.mode, got, tt.want)
		}
	}
}

func TestDeriveParams(t *testing.T) {
	luma := DeriveOptions{Channel: Luma}
	tests := []struct {
		name              string
		w, h, mode        int
		opt               DeriveOptions
		angle             int
		refFilter, interp bool
		pdpc              bool
		scale             int
	}{
		{"ver16", 16, 16, Ver, luma, 0, false, false, true, 0},
		{"hor16", 16, 16, Hor, luma, 0, false, false, true, 0},
		{"mode2_16", 16, 16, 2, luma, 32, true, false, true, 2},
		{"mode3_16", 16, 16, 3, luma, 29, false, true, true, 2},
		{"dia4", 4, 4, Dia, luma, -32, false, false, false, 0},
		{"vdia4", 4, 4, VDia, luma, 32, false, false, true, 0},
		{"planar4x8", 4, 8, Planar, luma, 0, false, false, true, 0},
		{"planar8x8", 8, 8, Planar, luma, 0, true, false, true, 0},
		{"dc32", 32, 32, DC, luma, 0, false, false, true, 0},
		{"planar_chroma", 8, 8, Planar, DeriveOptions{Channel: Chroma}, 0, false, false, true, 0},
		{"mrl1", 16, 16, 2, DeriveOptions{Channel: Luma, MultiRefIdx: 1}, 32, false, false, false, 2},
		{"smoothing_off", 16, 16, 2, DeriveOptions{Channel: Luma, SmoothingDisabled: true}, 32, false, false, true, 2},
		{"isp", 16, 16, 3, DeriveOptions{Channel: Luma, ISP: true}, 29, false, false, true, 2},
		{"bdpcm", 16, 16, Hor, DeriveOptions{Channel: Luma, BDPCM: BDPCMHor}, 0, false, false, false, 0},
		{"mode2_4", 4, 4, 2, luma, 32, false, false, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DeriveParams(tt.w, tt.h, tt.mode, tt.opt)
			if p.PredAngle != tt.angle {
				t.Errorf("PredAngle = %d, want %d", p.PredAngle, tt.angle)
			}
			if p.RefFilter != tt.refFilter || p.Interpolation != tt.interp {
				t.Errorf("RefFilter/Interpolation = %v/%v, want %v/%v", p.RefFilter, p.Interpolation, tt.refFilter, tt.interp)
			}
			if p.ApplyPDPC != tt.pdpc {
				t.Errorf("ApplyPDPC = %v, want %v", p.ApplyPDPC, tt.pdpc)
			}
			if p.ApplyPDPC && p.PredAngle > 0 && p.AngularScale != tt.scale {
				t.Errorf("AngularScale = %d, want %d", p.AngularScale, tt.scale)
			}
		})
	}
}

func TestDeriveParamsIsModeVer(t *testing.T) {
	// A wide block remaps mode 2 beyond VDIA, which is vertical.
	p := DeriveParams(16, 4, 2, DeriveOptions{Channel: Luma})
	if p.PredMode != 67 || !p.IsModeVer {
		t.Errorf("PredMode/IsModeVer = %d/%v, want 67/true", p.PredMode, p.IsModeVer)
	}
	if p.PredAngle != dsp.AngTable[17] {
		t.Errorf("PredAngle = %d, want %d", p.PredAngle, dsp.AngTable[17])
	}
}

func TestPredictBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ws := NewWorkspace()
	defer ws.Release()

	for _, sz := range blockSizes() {
		w, h := sz[0], sz[1]
		for _, mode := range []int{Planar, DC, Hor, Ver} {
			name := fmt.Sprintf("%dx%d/mode%d", w, h, mode)
			v := randomView(rng, w, h)
			lo, hi := viewRange(v)
			p := DeriveParams(w, h, mode, DeriveOptions{Channel: Luma})
			if mode == Hor || mode == Ver {
				// The gradient PDPC term of the pure directions adds a
				// left/top difference and may leave the reference range.
				p.ApplyPDPC = false
			}
			dst := refs.NewPlane(w, h)
			Predict(dst, v, &p, Luma, testClip, ws)
			t.Run(name, func(t *testing.T) { checkBounded(t, dst, lo, hi) })
		}
	}
}

func TestPredictExtremeAspect(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	ws := NewWorkspace()
	defer ws.Release()

	for _, sz := range [][2]int{{64, 1}, {1, 64}, {128, 1}, {1, 128}} {
		w, h := sz[0], sz[1]
		v := randomView(rng, w, h)
		for mode := Planar; mode <= VDia; mode++ {
			p := DeriveParams(w, h, mode, DeriveOptions{Channel: Luma})
			dst := refs.NewPlane(w, h)
			Predict(dst, v, &p, Luma, testClip, ws)
			checkBounded(t, dst, 0, int16(testClip.Max))
		}
	}
}

func TestDCUniform(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Release()
	for _, sz := range blockSizes() {
		w, h := sz[0], sz[1]
		v := refs.NewView(w, h, 0)
		v.Fill(437)
		for _, opt := range []DeriveOptions{{Channel: Luma}, {Channel: Chroma}} {
			p := DeriveParams(w, h, DC, opt)
			dst := refs.NewPlane(w, h)
			Predict(dst, v, &p, opt.Channel, testClip, ws)
			for i, s := range dst.Pix {
				if s != 437 {
					t.Fatalf("%dx%d %v: sample %d = %d, want 437", w, h, opt.Channel, i, s)
				}
			}
		}
	}
}

func TestIntegerSlopeCopies(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	ws := NewWorkspace()
	defer ws.Release()

	for _, sz := range [][2]int{{4, 4}, {8, 8}, {16, 8}, {8, 16}, {32, 32}} {
		w, h := sz[0], sz[1]
		v := randomView(rng, w, h)
		for _, mode := range []int{2, Dia, VDia} {
			p := DeriveParams(w, h, mode, DeriveOptions{Channel: Luma, SmoothingDisabled: true})
			if p.PredMode != mode {
				continue
			}
			p.ApplyPDPC = false
			dst := refs.NewPlane(w, h)
			Predict(dst, v, &p, Luma, testClip, ws)

			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					var want int16
					switch mode {
					case VDia:
						want = v.Top[x+y+2]
					case 2:
						want = v.Left[x+y+2]
					case Dia:
						if x >= y {
							want = v.Top[x-y]
						} else {
							want = v.Left[y-x]
						}
					}
					if got := dst.At(x, y); got != want {
						t.Fatalf("%dx%d mode %d: (%d,%d) = %d, want %d", w, h, mode, x, y, got, want)
					}
				}
			}
		}
	}
}

func TestPDPCTouchesOnlyBoundary(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ws := NewWorkspace()
	defer ws.Release()

	for _, sz := range [][2]int{{4, 4}, {8, 8}, {16, 16}, {32, 16}, {64, 64}} {
		w, h := sz[0], sz[1]
		v := randomView(rng, w, h)
		for _, mode := range []int{Planar, DC, Hor, Ver, 2, 60, VDia} {
			on := DeriveParams(w, h, mode, DeriveOptions{Channel: Luma, SmoothingDisabled: true})
			if !on.ApplyPDPC {
				continue
			}
			off := on
			off.ApplyPDPC = false

			a := refs.NewPlane(w, h)
			b := refs.NewPlane(w, h)
			Predict(a, v, &on, Luma, testClip, ws)
			Predict(b, v, &off, Luma, testClip, ws)

			var scale int
			switch {
			case mode == Planar || mode == DC:
				scale = (dsp.FloorLog2(w) - 2 + dsp.FloorLog2(h) - 2 + 2) >> 2
			case on.PredAngle == 0:
				scale = (dsp.FloorLog2(w) + dsp.FloorLog2(h) - 2) >> 2
			default:
				scale = on.AngularScale
			}
			limit := 3 << uint(scale)

			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					var touched bool
					switch {
					case mode == Planar || mode == DC:
						touched = x < limit || y < limit
					case on.IsModeVer:
						touched = x < limit
					default:
						touched = y < limit
					}
					if !touched && a.At(x, y) != b.At(x, y) {
						t.Fatalf("%dx%d mode %d: PDPC changed (%d,%d) beyond %d samples", w, h, mode, x, y, limit)
					}
				}
			}
		}
	}
}

func TestBDPCM(t *testing.T) {
	v := refs.NewView(4, 4, 0)
	for i := range v.Top {
		v.Top[i] = int16(100 + i)
		v.Left[i] = int16(200 + i)
	}
	ws := NewWorkspace()
	defer ws.Release()

	dst := refs.NewPlane(4, 4)
	p := DeriveParams(4, 4, Hor, DeriveOptions{Channel: Luma, BDPCM: BDPCMHor})
	Predict(dst, v, &p, Luma, testClip, ws)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got, want := dst.At(x, y), int16(201+y); got != want {
				t.Errorf("hor (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}

	p = DeriveParams(4, 4, Ver, DeriveOptions{Channel: Luma, BDPCM: BDPCMVer})
	Predict(dst, v, &p, Luma, testClip, ws)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got, want := dst.At(x, y), int16(101+x); got != want {
				t.Errorf("ver (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestPlanarGradient(t *testing.T) {
	// Top and left lines rising by 8 per sample produce a plane that rises
	// towards the bottom-right.
	v := refs.NewView(8, 8, 0)
	for i := range v.Top {
		v.Top[i] = int16(8 * i)
		v.Left[i] = int16(8 * i)
	}
	ws := NewWorkspace()
	defer ws.Release()
	p := DeriveParams(8, 8, Planar, DeriveOptions{Channel: Chroma})
	p.ApplyPDPC = false
	dst := refs.NewPlane(8, 8)
	Predict(dst, v, &p, Chroma, testClip, ws)
	for y := 0; y < 8; y++ {
		for x := 1; x < 8; x++ {
			if dst.At(x, y) < dst.At(x-1, y) {
				t.Fatalf("planar not monotone at (%d,%d)", x, y)
			}
		}
	}
	if dst.At(0, 0) >= dst.At(7, 7) {
		t.Errorf("planar corner %d >= %d", dst.At(0, 0), dst.At(7, 7))
	}
}

func TestChromaLinearInterpolation(t *testing.T) {
	// Mode 3 has angle 29. On a flat reference the linear filter reproduces
	// the flat value.
	v := refs.NewView(8, 8, 0)
	v.Fill(300)
	ws := NewWorkspace()
	defer ws.Release()
	p := DeriveParams(8, 8, 3, DeriveOptions{Channel: Chroma})
	dst := refs.NewPlane(8, 8)
	Predict(dst, v, &p, Chroma, testClip, ws)
	for i, s := range dst.Pix {
		if s != 300 {
			t.Fatalf("sample %d = %d, want 300", i, s)
		}
	}
}

func TestBlendInterIntra(t *testing.T) {
	tests := []struct {
		left, above bool
		want        int16
	}{
		{true, true, (1*100 + 3*200 + 2) >> 2},
		{false, false, (3*100 + 1*200 + 2) >> 2},
		{true, false, (2*100 + 2*200 + 2) >> 2},
		{false, true, (2*100 + 2*200 + 2) >> 2},
	}
	for _, tt := range tests {
		inter := refs.NewPlane(4, 4)
		inter.Fill(100)
		intra := refs.NewPlane(4, 4)
		intra.Fill(200)
		BlendInterIntra(inter, intra, tt.left, tt.above)
		if got := inter.At(3, 3); got != tt.want {
			t.Errorf("left=%v above=%v: got %d, want %d", tt.left, tt.above, got, tt.want)
		}
	}
}

// Package refs holds the sample containers shared by the predictors: a
// strided 2-D plane for prediction output and probe data, and the
// bordered reference view assembled from the reconstructed neighbours.
package refs

// Plane is a 2-D sample array with an explicit stride. The sample at
// (x, y) lives at Pix[y*Stride+x].
type Plane struct {
	Pix    []int16
	Stride int
	Width  int
	Height int
}

// NewPlane allocates a zeroed plane with Stride == w.
func NewPlane(w, h int) *Plane {
	return &Plane{Pix: make([]int16, w*h), Stride: w, Width: w, Height: h}
}

// At returns the sample at (x, y).
func (p *Plane) At(x, y int) int16 {
	return p.Pix[y*p.Stride+x]
}

// Set stores v at (x, y).
func (p *Plane) Set(x, y int, v int16) {
	p.Pix[y*p.Stride+x] = v
}

// Row returns the Width samples of row y.
func (p *Plane) Row(y int) []int16 {
	off := y * p.Stride
	return p.Pix[off : off+p.Width : off+p.Width]
}

// SubPlane returns a view of the w x h rectangle at (x, y). The view
// shares storage with p.
func (p *Plane) SubPlane(x, y, w, h int) *Plane {
	off := y*p.Stride + x
	end := off + (h-1)*p.Stride + w
	if h == 0 || w == 0 {
		end = off
	}
	return &Plane{Pix: p.Pix[off:end], Stride: p.Stride, Width: w, Height: h}
}

// Fill sets every sample of the plane to v.
func (p *Plane) Fill(v int16) {
	for y := 0; y < p.Height; y++ {
		row := p.Row(y)
		for i := range row {
			row[i] = v
		}
	}
}

// CopyFrom copies the overlapping area of src into p.
func (p *Plane) CopyFrom(src *Plane) {
	w := min(p.Width, src.Width)
	h := min(p.Height, src.Height)
	for y := 0; y < h; y++ {
		copy(p.Row(y)[:w], src.Row(y)[:w])
	}
}

// Equal reports whether both planes have the same size and samples.
func (p *Plane) Equal(o *Plane) bool {
	if p.Width != o.Width || p.Height != o.Height {
		return false
	}
	for y := 0; y < p.Height; y++ {
		a, b := p.Row(y), o.Row(y)
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// View is the reference sample view of one block. Top and Left each start
// with the corner sample; index i > 0 is the i-th neighbour along the line.
// With a multi reference line index mrl the lines lie mrl samples further
// away and both carry mrl extra samples.
type View struct {
	Top  []int16
	Left []int16
}

// LineLen returns the line length needed for a side of n samples:
// 2n samples plus the corner plus mrl extra samples.
func LineLen(n, mrl int) int {
	return 2*n + 1 + mrl
}

// NewView allocates a view for a w x h block.
func NewView(w, h, mrl int) *View {
	return &View{
		Top:  make([]int16, LineLen(w, mrl)),
		Left: make([]int16, LineLen(h, mrl)),
	}
}

// At addresses the view the compact way: line 0 is the top line and
// line 1 the left line.
func (v *View) At(i, line int) int16 {
	if line == 0 {
		return v.Top[i]
	}
	return v.Left[i]
}

// Fits reports whether the view carries enough reference samples for a
// w x h block with the given reference line index.
func (v *View) Fits(w, h, mrl int) bool {
	return len(v.Top) >= LineLen(w, mrl) && len(v.Left) >= LineLen(h, mrl)
}

// Fill sets every reference sample to val.
func (v *View) Fill(val int16) {
	for i := range v.Top {
		v.Top[i] = val
	}
	for i := range v.Left {
		v.Left[i] = val
	}
}

// Filter writes the [1 2 1]/4 smoothed version of src into dst. The corner
// is averaged from the first two samples of both lines and the last sample
// of each line is copied. dst must have lines at least as long as src.
func Filter(dst, src *View) {
	corner := int16((int(src.Top[0]) + int(src.Top[1]) + int(src.Left[0]) + int(src.Left[1]) + 2) >> 2)
	filterLine(dst.Top, src.Top, corner)
	filterLine(dst.Left, src.Left, corner)
}

func filterLine(dst, src []int16, corner int16) {
	n := len(src) - 1
	dst[0] = corner
	for i := 1; i < n; i++ {
		dst[i] = int16((int(src[i-1]) + 2*int(src[i]) + int(src[i+1]) + 2) >> 2)
	}
	dst[n] = src[n]
}

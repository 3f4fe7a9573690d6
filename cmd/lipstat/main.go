// Command lipstat runs the layered intra prediction search over the luma
// of an image and reports how it compares to single mode prediction.
//
// Usage:
//
//	lipstat [options] <input>   PNG/JPEG/GIF/BMP/TIFF/WebP (use "-" for stdin)
//
// Every block is searched against the original samples, replayed from the
// residual the way a decoder would, and checked for a bit-exact match.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/deepteams/intrapred"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "lipstat: %v\n", err)
		os.Exit(1)
	}
}

type config struct {
	blockSize int
	bitDepth  int
	reserve   int
	scale     float64
	workers   int
	verbose   bool
	output    string
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("lipstat", flag.ContinueOnError)
	var cfg config
	fs.IntVar(&cfg.blockSize, "bs", 16, "block size 4-128 (power of two)")
	fs.IntVar(&cfg.bitDepth, "bd", 10, "internal bit depth 8-14")
	fs.IntVar(&cfg.reserve, "reserve", 16, "ring area below which the remaining rings share a mode")
	fs.Float64Var(&cfg.scale, "scale", 1, "resample the input by this factor first")
	fs.IntVar(&cfg.workers, "j", runtime.GOMAXPROCS(0), "number of worker goroutines")
	fs.BoolVar(&cfg.verbose, "v", false, "print the record of every block")
	fs.StringVar(&cfg.output, "o", "", "write the packed layer records to this file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: lipstat [options] <input>\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("missing input file")
	}
	if cfg.blockSize < 4 || cfg.blockSize > intrapred.MaxBlockSize || cfg.blockSize&(cfg.blockSize-1) != 0 {
		return fmt.Errorf("invalid block size %d", cfg.blockSize)
	}
	if cfg.scale <= 0 {
		return fmt.Errorf("invalid scale %g", cfg.scale)
	}
	cfg.workers = max(cfg.workers, 1)

	img, err := readImage(fs.Arg(0))
	if err != nil {
		return err
	}
	pic := lumaPlane(img, cfg.scale, cfg.bitDepth)

	res, err := analyze(pic, cfg)
	if err != nil {
		return err
	}
	if cfg.verbose {
		fmt.Fprintf(stdout, "picture %dx%d, %d workers\n", pic.Width, pic.Height, cfg.workers)
		for _, b := range res.blocks {
			fmt.Fprintf(stdout, "block %4d %4d  sad %6d  best %6d (mode %2d)  %v\n",
				b.x, b.y, b.sad, b.bestSAD, b.bestMode, b.rec)
		}
	}
	res.report(stdout)

	if cfg.output != "" {
		recs := make([]intrapred.Record, len(res.blocks))
		for i, b := range res.blocks {
			recs[i] = b.rec
		}
		data := intrapred.EncodeRecords(recs)
		if err := os.WriteFile(cfg.output, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d records to %s (%d bytes)\n", len(recs), cfg.output, len(data))
	}
	if res.mismatches > 0 {
		return fmt.Errorf("%d blocks did not replay exactly", res.mismatches)
	}
	return nil
}

func readImage(path string) (image.Image, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	return img, nil
}

// lumaPlane converts img to grey, optionally resampled, and widens the
// samples to bitDepth.
func lumaPlane(img image.Image, scale float64, bitDepth int) *intrapred.Plane {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, b.Min, xdraw.Src)
	if scale != 1 {
		w := max(1, int(float64(b.Dx())*scale+0.5))
		h := max(1, int(float64(b.Dy())*scale+0.5))
		scaled := image.NewGray(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), gray, gray.Bounds(), xdraw.Src, nil)
		gray = scaled
	}

	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	pic := intrapred.NewPlane(w, h)
	shift := uint(bitDepth - 8)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		dst := pic.Row(y)
		for x, v := range row {
			dst[x] = int16(v) << shift
		}
	}
	return pic
}

type blockResult struct {
	x, y     int
	rec      intrapred.Record
	sad      int // layered prediction
	bestSAD  int // best single mode prediction
	bestMode int
	exact    bool
}

type result struct {
	blocks     []blockResult
	mismatches int
	layerModes map[int]int // mode -> count over all recorded layers
	recordBits int
}

// analyze searches and replays every full block of pic. Block rows are
// split between the workers, each owning one Predictor.
func analyze(pic *intrapred.Plane, cfg config) (*result, error) {
	bs := cfg.blockSize
	cols, rows := pic.Width/bs, pic.Height/bs
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("image %dx%d is smaller than one %dx%d block", pic.Width, pic.Height, bs, bs)
	}
	opts := intrapred.DefaultOptions()
	opts.BitDepth = cfg.bitDepth
	opts.LayerReserve = cfg.reserve

	blocks := make([]blockResult, cols*rows)
	numWorkers := min(cfg.workers, rows)
	rowsPerWorker := (rows + numWorkers - 1) / numWorkers
	errs := make([]error, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(w int) {
			defer wg.Done()
			p, err := intrapred.NewPredictor(opts)
			if err != nil {
				errs[w] = err
				return
			}
			defer p.Close()
			s := newScratch(bs, cfg.bitDepth)
			for by := w * rowsPerWorker; by < min((w+1)*rowsPerWorker, rows); by++ {
				for bx := 0; bx < cols; bx++ {
					br, err := s.analyzeBlock(p, pic, bx*bs, by*bs)
					if err != nil {
						errs[w] = fmt.Errorf("block (%d,%d): %w", bx*bs, by*bs, err)
						return
					}
					blocks[by*cols+bx] = br
				}
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	res := &result{blocks: blocks, layerModes: make(map[int]int)}
	for _, b := range blocks {
		if !b.exact {
			res.mismatches++
		}
		for _, l := range b.rec.Layers {
			res.layerModes[intrapred.LayerCandidates[l]]++
		}
		res.recordBits += intrapred.LayerModeBits * len(b.rec.Layers)
	}
	return res, nil
}

// scratch holds the per worker planes.
type scratch struct {
	bs       int
	bitDepth int
	view     *intrapred.View
	probe    *intrapred.Plane
	pred     *intrapred.Plane
	residual *intrapred.Plane
	replay   *intrapred.Plane
	single   *intrapred.Plane
}

func newScratch(bs, bitDepth int) *scratch {
	return &scratch{
		bs:       bs,
		bitDepth: bitDepth,
		view:     intrapred.NewView(bs, bs, 0),
		probe:    intrapred.NewPlane(bs, bs),
		pred:     intrapred.NewPlane(bs, bs),
		residual: intrapred.NewPlane(bs, bs),
		replay:   intrapred.NewPlane(bs, bs),
		single:   intrapred.NewPlane(bs, bs),
	}
}

func (s *scratch) analyzeBlock(p *intrapred.Predictor, pic *intrapred.Plane, x, y int) (blockResult, error) {
	bs := s.bs
	blk := intrapred.Block{Component: intrapred.Luma, Width: bs, Height: bs, X: x, Y: y}
	fillView(s.view, pic, x, y, bs, bs, s.bitDepth)
	s.probe.CopyFrom(pic.SubPlane(x, y, bs, bs))

	rec, err := p.SearchLayered(s.pred, s.probe, s.view, blk)
	if err != nil {
		return blockResult{}, err
	}
	for i := range s.residual.Pix {
		s.residual.Pix[i] = s.probe.Pix[i] - s.pred.Pix[i]
	}
	if err := p.ReplayLayered(s.replay, s.residual, s.view, blk, rec); err != nil {
		return blockResult{}, err
	}

	br := blockResult{
		x:       x,
		y:       y,
		rec:     rec,
		sad:     sad(s.pred, s.probe),
		bestSAD: -1,
		exact:   s.replay.Equal(s.pred),
	}
	for mode := intrapred.ModePlanar; mode <= intrapred.ModeVDia; mode++ {
		if err := p.Predict(s.single, s.view, blk, mode, nil); err != nil {
			return blockResult{}, err
		}
		if d := sad(s.single, s.probe); br.bestSAD < 0 || d < br.bestSAD {
			br.bestSAD, br.bestMode = d, mode
		}
	}
	return br, nil
}

func sad(a, b *intrapred.Plane) int {
	sum := 0
	for y := 0; y < a.Height; y++ {
		ra, rb := a.Row(y), b.Row(y)
		for x := range ra {
			d := int(ra[x]) - int(rb[x])
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return sum
}

// fillView builds the reference lines of the w x h block at (x, y) from
// pic in raster decoding order: the above-right samples exist when inside
// the picture, the below-left ones never do. Missing samples repeat the
// nearest available one; with no neighbours at all the lines are mid-grey.
func fillView(v *intrapred.View, pic *intrapred.Plane, x, y, w, h, bitDepth int) {
	// Walk from the far end of the left line up through the corner to the
	// far end of the top line.
	nl, nt := len(v.Left)-1, len(v.Top)-1
	total := nl + 1 + nt
	sample := func(i int) (int16, bool) {
		switch {
		case i < nl: // left line, bottom first
			yy := y + (nl - 1 - i)
			if x == 0 || yy >= y+h || yy >= pic.Height {
				return 0, false
			}
			return pic.At(x-1, yy), true
		case i == nl: // corner
			if x == 0 || y == 0 {
				return 0, false
			}
			return pic.At(x-1, y-1), true
		}
		xx := x + (i - nl - 1)
		if y == 0 || xx >= pic.Width {
			return 0, false
		}
		return pic.At(xx, y-1), true
	}
	set := func(i int, s int16) {
		switch {
		case i < nl:
			v.Left[nl-i] = s
		case i == nl:
			v.Top[0], v.Left[0] = s, s
		default:
			v.Top[i-nl] = s
		}
	}

	first := -1
	for i := 0; i < total; i++ {
		if _, ok := sample(i); ok {
			first = i
			break
		}
	}
	if first < 0 {
		v.Fill(int16(1 << (bitDepth - 1)))
		return
	}
	prev, _ := sample(first)
	for i := 0; i < total; i++ {
		if s, ok := sample(i); ok && i >= first {
			prev = s
		}
		set(i, prev)
	}
}

func (r *result) report(w io.Writer) {
	var sad, best int
	wins := 0
	for _, b := range r.blocks {
		sad += b.sad
		best += b.bestSAD
		if b.sad < b.bestSAD {
			wins++
		}
	}
	n := len(r.blocks)
	fmt.Fprintf(w, "blocks:          %d\n", n)
	fmt.Fprintf(w, "replay exact:    %d/%d\n", n-r.mismatches, n)
	fmt.Fprintf(w, "layered SAD:     %d (%.2f per block)\n", sad, float64(sad)/float64(n))
	fmt.Fprintf(w, "single mode SAD: %d (%.2f per block)\n", best, float64(best)/float64(n))
	fmt.Fprintf(w, "layered better:  %d/%d\n", wins, n)
	fmt.Fprintf(w, "record bits:     %d (%.2f per block)\n", r.recordBits, float64(r.recordBits)/float64(n))

	modes := make([]int, 0, len(r.layerModes))
	for m := range r.layerModes {
		modes = append(modes, m)
	}
	sort.Ints(modes)
	fmt.Fprintf(w, "layer modes:\n")
	for _, m := range modes {
		fmt.Fprintf(w, "  %2d: %d\n", m, r.layerModes[m])
	}
}

package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepteams/intrapred"
)

// gradientImage returns a w x h image with a diagonal gradient and a few
// vertical stripes.
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*3 + y*2) % 256)
			if x%16 < 2 {
				v = 255 - v
			}
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeReplaysExactly(t *testing.T) {
	for _, bs := range []int{4, 8, 16, 32} {
		pic := lumaPlane(gradientImage(64, 48), 1, 10)
		res, err := analyze(pic, config{blockSize: bs, bitDepth: 10, reserve: 16, workers: 3})
		if err != nil {
			t.Fatalf("bs %d: %v", bs, err)
		}
		if want := (64 / bs) * (48 / bs); len(res.blocks) != want {
			t.Errorf("bs %d: %d blocks, want %d", bs, len(res.blocks), want)
		}
		if res.mismatches != 0 {
			t.Errorf("bs %d: %d mismatching blocks", bs, res.mismatches)
		}
		n := numLayers(t, bs)
		for _, b := range res.blocks {
			if len(b.rec.Layers) != n {
				t.Fatalf("bs %d: block (%d,%d) has %d layers", bs, b.x, b.y, len(b.rec.Layers))
			}
		}
	}
}

func numLayers(t *testing.T, bs int) int {
	t.Helper()
	p, err := intrapred.NewPredictor(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	return p.NumLayers(bs, bs)
}

func TestAnalyzeTooSmall(t *testing.T) {
	pic := lumaPlane(gradientImage(8, 8), 1, 10)
	if _, err := analyze(pic, config{blockSize: 16, bitDepth: 10, reserve: 16, workers: 1}); err == nil {
		t.Error("expected an error for an image smaller than one block")
	}
}

func TestLumaPlane(t *testing.T) {
	img := gradientImage(20, 10)
	pic := lumaPlane(img, 1, 10)
	if pic.Width != 20 || pic.Height != 10 {
		t.Fatalf("size %dx%d", pic.Width, pic.Height)
	}
	if got, want := pic.At(5, 3), int16(img.NRGBAAt(5, 3).R)<<2; got != want {
		t.Errorf("sample = %d, want %d", got, want)
	}

	scaled := lumaPlane(img, 0.5, 8)
	if scaled.Width != 10 || scaled.Height != 5 {
		t.Errorf("scaled size %dx%d, want 10x5", scaled.Width, scaled.Height)
	}
}

func TestFillView(t *testing.T) {
	pic := intrapred.NewPlane(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			pic.Set(x, y, int16(100*y+x))
		}
	}

	// Interior block: corner, top with above-right, left without
	// below-left.
	v := intrapred.NewView(4, 4, 0)
	fillView(v, pic, 4, 4, 4, 4, 10)
	if v.Top[0] != pic.At(3, 3) || v.Left[0] != pic.At(3, 3) {
		t.Errorf("corner = %d/%d, want %d", v.Top[0], v.Left[0], pic.At(3, 3))
	}
	for i := 1; i <= 8; i++ {
		if v.Top[i] != pic.At(3+i, 3) {
			t.Errorf("top[%d] = %d, want %d", i, v.Top[i], pic.At(3+i, 3))
		}
	}
	for i := 1; i <= 4; i++ {
		if v.Left[i] != pic.At(3, 3+i) {
			t.Errorf("left[%d] = %d, want %d", i, v.Left[i], pic.At(3, 3+i))
		}
	}
	for i := 5; i <= 8; i++ {
		if v.Left[i] != pic.At(3, 7) {
			t.Errorf("below-left[%d] = %d, want the last left sample %d", i, v.Left[i], pic.At(3, 7))
		}
	}

	// Top-left block has no neighbours.
	fillView(v, pic, 0, 0, 4, 4, 10)
	for i := range v.Top {
		if v.Top[i] != 512 || v.Left[i] != 512 {
			t.Fatalf("top-left block: line %d = %d/%d, want 512", i, v.Top[i], v.Left[i])
		}
	}

	// First row: the top line repeats the corner, which repeats the
	// first left sample.
	fillView(v, pic, 8, 0, 4, 4, 10)
	for i := range v.Top {
		if v.Top[i] != pic.At(7, 0) {
			t.Errorf("first row top[%d] = %d, want %d", i, v.Top[i], pic.At(7, 0))
		}
	}

	// Right edge: above-right beyond the picture repeats the last sample.
	fillView(v, pic, 12, 4, 4, 4, 10)
	for i := 5; i <= 8; i++ {
		if v.Top[i] != pic.At(15, 3) {
			t.Errorf("right edge top[%d] = %d, want %d", i, v.Top[i], pic.At(15, 3))
		}
	}
}

func TestRun(t *testing.T) {
	path := writePNG(t, gradientImage(32, 32))
	out := filepath.Join(t.TempDir(), "records.bin")

	var stdout bytes.Buffer
	if err := run([]string{"-bs", "8", "-v", "-o", out, path}, &stdout); err != nil {
		t.Fatal(err)
	}
	s := stdout.String()
	if !strings.Contains(s, "replay exact:    16/16") {
		t.Errorf("missing exact replay line in:\n%s", s)
	}
	if strings.Count(s, "block ") != 16 {
		t.Errorf("expected 16 verbose block lines in:\n%s", s)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	layers := make([]int, 16)
	for i := range layers {
		layers[i] = numLayers(t, 8)
	}
	recs, err := intrapred.DecodeRecords(data, layers)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 16 {
		t.Errorf("decoded %d records, want 16", len(recs))
	}
}

func TestRunErrors(t *testing.T) {
	path := writePNG(t, gradientImage(32, 32))
	tests := [][]string{
		{},
		{"-bs", "12", path},
		{"-bs", "256", path},
		{"-scale", "0", path},
		{filepath.Join(t.TempDir(), "missing.png")},
	}
	for _, args := range tests {
		var stdout bytes.Buffer
		if err := run(args, &stdout); err == nil {
			t.Errorf("run(%q) succeeded", args)
		}
	}
}

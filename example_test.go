package intrapred_test

import (
	"fmt"
	"log"

	"github.com/deepteams/intrapred"
)

func ExamplePredictor_Predict() {
	p, err := intrapred.NewPredictor(nil)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	// A horizontal ramp above the block, flat on the left.
	v := intrapred.NewView(8, 8, 0)
	for i := 1; i < len(v.Top); i++ {
		v.Top[i] = int16(10 * i)
	}
	dst := intrapred.NewPlane(8, 8)
	blk := intrapred.Block{Width: 8, Height: 8}

	if err := p.Predict(dst, v, blk, intrapred.ModeVer, nil); err != nil {
		log.Fatal(err)
	}
	fmt.Println(dst.Row(7))
	// Output: [10 20 30 40 50 60 70 80]
}

func ExamplePredictor_SearchLayered() {
	p, err := intrapred.NewPredictor(nil)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	// Vertical stripes continuing the row above the block.
	cols := []int16{100, 700, 300, 900, 200, 800, 400, 600}
	v := intrapred.NewView(8, 8, 0)
	copy(v.Top[1:], cols)
	probe := intrapred.NewPlane(8, 8)
	for y := 0; y < 8; y++ {
		copy(probe.Row(y), cols)
	}
	blk := intrapred.Block{Width: 8, Height: 8}

	dst := intrapred.NewPlane(8, 8)
	rec, err := p.SearchLayered(dst, probe, v, blk)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rec, dst.Equal(probe))

	// The decoder rebuilds the prediction from the residual.
	residual := intrapred.NewPlane(8, 8)
	for i := range residual.Pix {
		residual.Pix[i] = probe.Pix[i] - dst.Pix[i]
	}
	replayed := intrapred.NewPlane(8, 8)
	if err := p.ReplayLayered(replayed, residual, v, blk, rec); err != nil {
		log.Fatal(err)
	}
	fmt.Println(replayed.Equal(dst))
	// Output:
	// [50 50 50 50 50 50] true
	// true
}

package pred

import "github.com/deepteams/intrapred/internal/refs"

// BlendWeights returns the intra and inter weights (out of 4) of the
// combined inter/intra blend given whether the left and above neighbours
// are intra coded.
func BlendWeights(leftIntra, aboveIntra bool) (wIntra, wInter int) {
	switch {
	case leftIntra && aboveIntra:
		return 3, 1
	case !leftIntra && !aboveIntra:
		return 1, 3
	}
	return 2, 2
}

// BlendInterIntra overwrites dst, which holds the inter prediction, with
// its weighted average against the intra prediction.
func BlendInterIntra(dst, intra *refs.Plane, leftIntra, aboveIntra bool) {
	wIntra, wInter := BlendWeights(leftIntra, aboveIntra)
	for y := 0; y < dst.Height; y++ {
		d := dst.Row(y)
		s := intra.Row(y)[:len(d)]
		for x := range d {
			d[x] = int16((wInter*int(d[x]) + wIntra*int(s[x]) + 2) >> 2)
		}
	}
}

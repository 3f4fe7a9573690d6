// Package intrapred is an intra sample-prediction engine for block based
// video coding.
//
// Given the reconstructed samples around a block, a Predictor produces:
//   - Planar, DC and the 65 angular predictions, with wide angle remapping,
//     reference smoothing, 4-tap interpolation and position dependent
//     boundary blending
//   - BDPCM copy predictions
//   - Chroma from luma linear model predictions (LM, MDLM-L, MDLM-T) for
//     4:2:0, 4:2:2 and 4:4:4 content
//   - Matrix-weighted predictions through a caller supplied Matrix
//   - Layered ring predictions: SearchLayered picks a mode per ring of the
//     block against the samples being coded and ReplayLayered rebuilds the
//     identical prediction from the decoded residual
//
// Basic usage:
//
//	p, err := intrapred.NewPredictor(nil)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	v := intrapred.NewView(16, 16, 0) // fill v.Top and v.Left
//	dst := intrapred.NewPlane(16, 16)
//	err = p.Predict(dst, v, intrapred.Block{Width: 16, Height: 16}, intrapred.ModeDC, nil)
//
// A Predictor is not safe for concurrent use; create one per goroutine.
package intrapred

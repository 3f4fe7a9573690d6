// Package dsp holds the constant tables and sample-level kernels shared by
// the intra predictors and the layered mode search.
package dsp

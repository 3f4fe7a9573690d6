// Package pred implements the intra sample predictors: parameter
// derivation, planar, DC, angular and BDPCM copy prediction, the position
// dependent boundary blend, and the ring passes used by the layered mode
// search.
package pred

// Intra prediction mode numbers.
const (
	Planar = 0
	DC     = 1
	Hor    = 18
	Dia    = 34
	Ver    = 50
	VDia   = 66

	NumLumaModes = 67

	// Chroma linear model modes.
	LMChroma = 67
	MDLMLeft = 68
	MDLMTop  = 69
)

// BDPCM copy directions.
const (
	BDPCMNone = 0
	BDPCMHor  = 1
	BDPCMVer  = 2
)

// Block size limits.
const (
	MinTBSize = 4
	MaxCUSize = 128

	// MaxRefLineIdx bounds the multi reference line index (0, 1 or 2).
	MaxRefLineIdx = 3
)

// Channel distinguishes luma from chroma. Interpolation, reference
// filtering and the multi reference line only apply to luma.
type Channel uint8

const (
	Luma Channel = iota
	Chroma
)

// String returns "luma" or "chroma".
func (c Channel) String() string {
	if c == Luma {
		return "luma"
	}
	return "chroma"
}

// IsAngular reports whether mode is one of the 65 directional modes.
func IsAngular(mode int) bool {
	return mode > DC && mode < NumLumaModes
}

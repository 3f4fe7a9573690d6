package pred

import (
	"github.com/deepteams/intrapred/internal/pool"
	"github.com/deepteams/intrapred/internal/refs"
)

const (
	// refBufLen covers the extended main and side lines of the full block
	// angular predictor including the multi reference line replication.
	refBufLen = 2*MaxCUSize + 3 + 33*MaxRefLineIdx

	// ringBufLen covers a ring line, its left extension and the right
	// replication for angles up to one sample per row.
	ringBufLen = 3*MaxCUSize + 8
)

// Workspace holds the scratch buffers of one prediction call. A Workspace
// must not be shared by concurrent calls.
type Workspace struct {
	refAbove []int16
	refLeft  []int16
	tmp      []int16 // transposed output of horizontal modes

	filtered refs.View

	ringAbove [ringBufLen]int
	ringLeft  [ringBufLen]int

	// planar accumulators
	topRow, leftCol [MaxCUSize + 1]int
	bottomRow       [MaxCUSize]int
	rightCol        [MaxCUSize]int
}

// NewWorkspace returns a workspace backed by pooled sample buffers.
// Release returns them.
func NewWorkspace() *Workspace {
	n := refs.LineLen(MaxCUSize, MaxRefLineIdx)
	return &Workspace{
		refAbove: pool.GetPels(refBufLen),
		refLeft:  pool.GetPels(refBufLen),
		tmp:      pool.GetPels(MaxCUSize * MaxCUSize),
		filtered: refs.View{
			Top:  pool.GetPels(n),
			Left: pool.GetPels(n),
		},
	}
}

// Release hands the pooled buffers back. The workspace must not be used
// afterwards.
func (ws *Workspace) Release() {
	pool.PutPels(ws.refAbove)
	pool.PutPels(ws.refLeft)
	pool.PutPels(ws.tmp)
	pool.PutPels(ws.filtered.Top)
	pool.PutPels(ws.filtered.Left)
	*ws = Workspace{}
}

// filter returns the smoothed single reference line view of a w x h block.
func (ws *Workspace) filter(v *refs.View, w, h int) *refs.View {
	nt, nl := refs.LineLen(w, 0), refs.LineLen(h, 0)
	src := refs.View{Top: v.Top[:nt], Left: v.Left[:nl]}
	f := &ws.filtered
	f.Top = f.Top[:nt]
	f.Left = f.Left[:nl]
	refs.Filter(f, &src)
	return f
}

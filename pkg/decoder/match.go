package decoder

import (
	"github.com/itohio/gobarscan/pkg/code39"
	"github.com/itohio/gobarscan/pkg/sample"
)

// ClassifyWindow labels the nine candidate blocks of a full ring thick or
// thin against their own mean duration. A block exactly at the mean is
// thick. Kinds are written back into the ring and returned as a pattern.
func ClassifyWindow(r *BlockRing) code39.Pattern {
	w := r.window()

	var total int64
	for i := range w {
		total += w[i].Units
	}
	mean := total / int64(len(w))

	var p code39.Pattern
	for i := range w {
		w[i].Kind = code39.KindFor(w[i].Color == sample.Dark, w[i].Units >= mean)
		p[i] = w[i].Kind
	}
	return p
}

// Match evaluates a full ring against the Code 39 table. Windows that start
// on a light element are rejected. On a match the ring is flushed so the
// next character starts fresh; otherwise it is left for the next shift.
func Match(r *BlockRing) (rune, bool) {
	if !r.Full() {
		return 0, false
	}
	if r.window()[0].Color == sample.Light {
		return 0, false
	}

	c, ok := code39.Lookup(ClassifyWindow(r))
	if !ok {
		return 0, false
	}
	r.Flush()
	return c, true
}

package decoder

import (
	"github.com/itohio/gobarscan/pkg/code39"
	"github.com/itohio/gobarscan/pkg/sample"
)

// RingCapacity is the number of blocks held by a BlockRing: one carry-over
// slot plus one full character.
const RingCapacity = code39.Elements + 1

// Block is one contiguous interval of constant surface color.
type Block struct {
	Color sample.Color
	Start Micros
	Units int64 // duration in coarse units, set when the block closes
	Kind  code39.Kind
}

// BlockRing is a fixed-capacity FIFO of the most recent closed blocks.
// Slot 0 carries context from the previous window; slots 1..9 are the
// candidate character.
type BlockRing struct {
	slots [RingCapacity]Block
	n     int
}

// Reset clears the ring and seeds slot 0.
func (r *BlockRing) Reset(seed Block) {
	r.slots = [RingCapacity]Block{}
	r.slots[0] = seed
	r.n = 1
}

// Append inserts b at the tail. Once full, every insert evicts the oldest.
func (r *BlockRing) Append(b Block) {
	if r.n < RingCapacity {
		r.slots[r.n] = b
		r.n++
		return
	}
	copy(r.slots[:], r.slots[1:])
	r.slots[RingCapacity-1] = b
}

// Flush clears the ring, keeping only the most recent block in slot 0.
func (r *BlockRing) Flush() {
	r.Reset(r.Last())
}

// Full reports whether all slots are occupied.
func (r *BlockRing) Full() bool {
	return r.n == RingCapacity
}

// Len returns the number of occupied slots.
func (r *BlockRing) Len() int {
	return r.n
}

// Last returns the most recently appended block.
func (r *BlockRing) Last() Block {
	if r.n == 0 {
		return Block{}
	}
	return r.slots[r.n-1]
}

// At returns the block in slot i.
func (r *BlockRing) At(i int) Block {
	return r.slots[i]
}

// window returns the nine candidate slots. Only meaningful when full.
func (r *BlockRing) window() []Block {
	return r.slots[1:RingCapacity]
}

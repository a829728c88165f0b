package datum

import (
	"github.com/opal-lang/kul/pkgs/kulerr"
	"github.com/opal-lang/kul/pkgs/position"
	"github.com/opal-lang/kul/pkgs/text"
)

// SlotAllocator is a fixed-capacity arena of preallocated Datum slots, a
// Go analogue of the original's fixed-size-array allocator
// (tests/stream_strish_source.rs's ArrayDatumAllocator) and of the
// teacher's sync.Pool-tiered slice pools in pkgs/lexer/lexer.go: bound
// the number of live allocations up front instead of growing forever.
// Once every slot is in use, NewDatum returns kulerr.KindAllocExhausted
// instead of allocating — the one Ref kind whose allocation step can
// fail.
type SlotAllocator struct {
	slots []Datum
	used  []bool
	free  []int
}

// NewSlotAllocator builds an allocator with room for exactly capacity
// live Datum values.
func NewSlotAllocator(capacity int) *SlotAllocator {
	free := make([]int, capacity)
	for i := range free {
		free[i] = capacity - 1 - i
	}
	return &SlotAllocator{
		slots: make([]Datum, capacity),
		used:  make([]bool, capacity),
		free:  free,
	}
}

// Cap reports the arena's total capacity.
func (a *SlotAllocator) Cap() int { return len(a.slots) }

// InUse reports how many slots are currently occupied.
func (a *SlotAllocator) InUse() int { return len(a.slots) - len(a.free) }

func (a *SlotAllocator) NewDatum(val Datum) (Ref, error) {
	if len(a.free) == 0 {
		return nil, kulerr.New(kulerr.KindAllocExhausted, position.Ignored{},
			"slot allocator exhausted").WithContext("capacity", len(a.slots))
	}
	idx := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	a.slots[idx] = val
	a.used[idx] = true
	return SlotRef{a: a, idx: idx}, nil
}

// NewChunkCell implements text.Linker, letting a TextChain allocate its
// link cells from the same bounded arena as the Datum tree it appears
// in. A chain cell does not occupy a Datum slot; it is cheap to
// allocate directly, but the allocator still gets the chance to refuse
// once its notion of "out of room" (here, its slot capacity) is spent,
// matching spec.md §4.1's "may fail with an allocation error" contract.
func (a *SlotAllocator) NewChunkCell(c text.Chunk) (*text.ChunkCell, error) {
	if len(a.free) == 0 {
		return nil, kulerr.New(kulerr.KindAllocExhausted, position.Ignored{},
			"slot allocator exhausted (chunk cell)").WithContext("capacity", len(a.slots))
	}
	return &text.ChunkCell{Chunk: c}, nil
}

// SlotRef is a uniquely-owned handle into one SlotAllocator slot.
// TryTake always succeeds, like BoxRef — SlotAllocator models unique
// ownership, not sharing.
type SlotRef struct {
	a   *SlotAllocator
	idx int
}

func (r SlotRef) Value() Datum { return r.a.slots[r.idx] }

func (r SlotRef) TryTake(replacement Datum) (Datum, bool) {
	old := r.a.slots[r.idx]
	r.a.slots[r.idx] = replacement
	return old, true
}

func (r SlotRef) Set(val Datum) { r.a.slots[r.idx] = val }

// Free returns r's slot to the allocator's free list. Called by
// pkgs/dropalgo once it has established r's subtree no longer needs the
// slot, so long-lived parsers reusing one SlotAllocator don't leak
// capacity across released trees.
func (r SlotRef) Free() {
	if !r.a.used[r.idx] {
		return
	}
	r.a.used[r.idx] = false
	r.a.slots[r.idx] = Datum{}
	r.a.free = append(r.a.free, r.idx)
}

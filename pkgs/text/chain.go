package text

import "errors"

// errNoLinker is returned when a TextChain.Concat that needs to append
// chunks is given a nil Linker.
var errNoLinker = errors.New("text: TextChain.Concat requires a non-nil Linker to append chunks")

// TextChain is the second Text representation spec.md §4.1 calls for:
// chunks linked through allocator-owned cells instead of a growable Go
// slice. It exists so a capacity-bounded allocator (datum.SlotAllocator)
// can account for the links a Text's concatenation history creates the
// same way it accounts for Datum nodes, and so Concat can fail with an
// allocation error the way spec.md §4.1 says a datum-linked
// implementation must be able to. Ordinary parsing never needs this —
// it exists for the preallocated-allocator story in spec.md §4.3.
type TextChain struct {
	head *ChunkCell
}

// EmptyChain is the empty TextChain.
func EmptyChain() *TextChain { return &TextChain{} }

// ChainFromChunk wraps a single chunk as a one-cell chain with no
// allocator involvement (the first cell is a plain Go value; only
// further concatenation needs the Linker).
func ChainFromChunk(c Chunk) *TextChain {
	if c.IsEmpty() {
		return &TextChain{}
	}
	return &TextChain{head: &ChunkCell{Chunk: c}}
}

func (t *TextChain) IsEmpty() bool {
	for c := t.head; c != nil; c = c.Next {
		if !c.Chunk.IsEmpty() {
			return false
		}
	}
	return true
}

func (t *TextChain) Chunks() []Chunk {
	var out []Chunk
	for c := t.head; c != nil; c = c.Next {
		out = append(out, c.Chunk)
	}
	return out
}

func (t *TextChain) Iter() []SourceItem {
	var items []SourceItem
	for c := t.head; c != nil; c = c.Next {
		items = append(items, c.Chunk.Items()...)
	}
	return items
}

// Concat appends other's chunks after self's, allocating one new
// ChunkCell per appended chunk through alloc. If alloc is nil or any
// allocation fails, Concat returns the underlying error and self is
// left unmodified (Texts are values here; the receiver's own cells are
// never mutated by a failed Concat).
func (t *TextChain) Concat(other Text, alloc Linker) (Text, error) {
	otherChunks := other.Chunks()
	if len(otherChunks) == 0 {
		return t, nil
	}
	if alloc == nil {
		return nil, errNoLinker
	}

	// Build the new tail first so a mid-way allocation failure never
	// mutates the receiver.
	var newHead, newTail *ChunkCell
	for _, c := range otherChunks {
		cell, err := alloc.NewChunkCell(c)
		if err != nil {
			return nil, err
		}
		if newHead == nil {
			newHead = cell
		} else {
			newTail.Next = cell
		}
		newTail = cell
	}

	if t.head == nil {
		return &TextChain{head: newHead}, nil
	}
	// Copy self's spine so the receiver's identity is untouched, then
	// splice the new tail on.
	headCopy, tailCopy := copyChain(t.head)
	tailCopy.Next = newHead
	return &TextChain{head: headCopy}, nil
}

func copyChain(head *ChunkCell) (newHead, newTail *ChunkCell) {
	var prev *ChunkCell
	for c := head; c != nil; c = c.Next {
		cp := &ChunkCell{Chunk: c.Chunk}
		if prev == nil {
			newHead = cp
		} else {
			prev.Next = cp
		}
		prev = cp
	}
	return newHead, prev
}

func (t *TextChain) String() string { return String(t) }

package text

import (
	"strings"
)

// Text is a logical sequence of characters, possibly represented as
// several chunks, re-iterable without consuming or destroying the
// source (spec.md §3/§4.1). Equality and ordering are defined only by
// the character sequence; positions are ignored (use package-level
// Equal/Less, or compare via Iter).
type Text interface {
	IsEmpty() bool
	// Chunks returns a borrowed view of the chunks in order.
	Chunks() []Chunk
	// Iter yields every SourceItem across all chunks in order. Calling
	// it twice produces two independent traversals with no shared
	// cursor state (Text values are re-iterable).
	Iter() []SourceItem
	// Concat produces a Text logically equal to self followed by
	// other. alloc is consulted only by implementations whose chunks
	// are chained through allocator-owned links (TextChain); TextVec
	// ignores it and never fails.
	Concat(other Text, alloc Linker) (Text, error)
	String() string
}

// Linker is the capability a Text implementation may need from a datum
// allocator to concatenate: the ability to mint a new chunk-chain cell.
// TextVec never calls it. datum.SlotAllocator implements it so a
// TextChain's links draw from the same bounded capacity as the Datum
// tree it appears in (spec.md §4.1's "chain chunks via datum-held
// links... requires [the allocator] and may fail with an allocation
// error").
type Linker interface {
	NewChunkCell(c Chunk) (*ChunkCell, error)
}

// ChunkCell is one link of a TextChain.
type ChunkCell struct {
	Chunk Chunk
	Next  *ChunkCell
}

// Equal compares two Texts (of any concrete kind) by character sequence
// only, per spec.md §4.1's Text equality contract.
func Equal(a, b Text) bool {
	ai, bi := a.Iter(), b.Iter()
	if len(ai) != len(bi) {
		return false
	}
	for i := range ai {
		if ai[i].Ch != bi[i].Ch {
			return false
		}
	}
	return true
}

// Less orders two Texts by character sequence (lexicographic on rune
// value), ignoring positions.
func Less(a, b Text) bool {
	ai, bi := a.Iter(), b.Iter()
	for i := 0; i < len(ai) && i < len(bi); i++ {
		if ai[i].Ch != bi[i].Ch {
			return ai[i].Ch < bi[i].Ch
		}
	}
	return len(ai) < len(bi)
}

// String renders any Text's character sequence, ignoring positions.
func String(t Text) string {
	var b strings.Builder
	for _, item := range t.Iter() {
		b.WriteRune(item.Ch)
	}
	return b.String()
}

// ---- TextVec: flat slice of chunks -----------------------------------

// TextVec is a Text backed by a plain Go slice of chunks. Concat simply
// appends slices, so it ignores its allocator argument and never fails
// — the representation spec.md §4.1 describes as "implementations that
// store chunks in a flat vector ignore the allocator". This is the
// default Text kind: FromString, Empty, and every default-classifier
// parse in this repo use it.
type TextVec struct {
	chunks []Chunk
}

// Empty returns the empty TextVec.
func Empty() TextVec { return TextVec{} }

// FromChunk wraps a single chunk as a one-chunk TextVec.
func FromChunk(c Chunk) TextVec {
	if c.IsEmpty() {
		return TextVec{}
	}
	return TextVec{chunks: []Chunk{c}}
}

// FromString builds a single-chunk TextVec over s, positioned by byte
// offset starting at 0. This is the convenience entry point every
// default-classifier example in spec.md §8 parses from.
func FromString(s string) TextVec {
	if s == "" {
		return TextVec{}
	}
	return FromChunk(RuneChunkFromString(s, 0))
}

// FromChunks wraps an existing slice of chunks, dropping any that are
// empty.
func FromChunks(chunks ...Chunk) TextVec {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if !c.IsEmpty() {
			out = append(out, c)
		}
	}
	return TextVec{chunks: out}
}

func (t TextVec) IsEmpty() bool {
	for _, c := range t.chunks {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

func (t TextVec) Chunks() []Chunk { return t.chunks }

func (t TextVec) Iter() []SourceItem {
	total := 0
	for _, c := range t.chunks {
		total += len(c.Items())
	}
	items := make([]SourceItem, 0, total)
	for _, c := range t.chunks {
		items = append(items, c.Items()...)
	}
	return items
}

// Concat appends other's chunks after self's. other must also be a
// TextVec (or implement Chunks()); alloc is ignored.
func (t TextVec) Concat(other Text, _ Linker) (Text, error) {
	combined := make([]Chunk, 0, len(t.chunks)+len(other.Chunks()))
	combined = append(combined, t.chunks...)
	combined = append(combined, other.Chunks()...)
	return FromChunks(combined...), nil
}

func (t TextVec) String() string { return String(t) }

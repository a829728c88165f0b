package text

import "github.com/opal-lang/kul/pkgs/position"

// SourceItem pairs one character with its source position (spec.md §3,
// "SourceItem is a pair (char, position)").
type SourceItem struct {
	Ch  rune
	Pos position.Position
}

// Chunk is a contiguous run of characters with positions, sharing a
// single origin. RuneChunk is the one concrete chunk kind; TextVec
// holds Chunks in a slice and TextChain links them through ChunkCells.
type Chunk interface {
	IsEmpty() bool
	// Items returns the chunk's characters in order. The returned slice
	// is a read-only view; callers must not mutate it.
	Items() []SourceItem
	// Stream returns a fresh, single-pass source stream over this
	// chunk's items.
	Stream() ChunkStream
}

// ChunkStream is a chunk-scoped source stream: an iterator over
// SourceItems with peek and bounded, single-chunk accumulation.
// Accumulation never crosses chunks — a ChunkStream's AccumDone only
// ever sees items NextAccum consumed from its own chunk (spec.md §4.1).
type ChunkStream interface {
	// Next consumes and returns the next item, or ok=false at the end.
	Next() (item SourceItem, ok bool)
	// Peek looks at the next item without consuming it.
	Peek() (item SourceItem, ok bool)
	// NextAccum consumes the next item, marking it as part of the
	// ongoing accumulation.
	NextAccum() (item SourceItem, ok bool)
	// AccumDone finalizes the items passed through NextAccum since
	// stream start or the last AccumDone or Next call, whichever came
	// last, into a new Chunk, and resets accumulation state. Items
	// accumulated before an intervening Next are not included: the
	// returned Chunk is always one contiguous run.
	AccumDone() Chunk
}

// RuneChunk is the default Chunk: a flat, in-memory slice of
// SourceItems. It backs TextVec, the Text implementation used for
// single strings and for strings arriving one-at-a-time over a channel
// or iterator (spec.md §1's "one string, many strings arriving over
// time" cases both reduce to a sequence of RuneChunks).
type RuneChunk struct {
	items []SourceItem
}

// NewRuneChunk wraps items as a single chunk. The slice is retained,
// not copied; callers should not mutate it afterward.
func NewRuneChunk(items []SourceItem) RuneChunk {
	return RuneChunk{items: items}
}

// RuneChunkFromString builds a chunk whose positions are byte offsets
// into s, starting at base.
func RuneChunkFromString(s string, base position.Offset) RuneChunk {
	items := make([]SourceItem, 0, len(s))
	for i, r := range s {
		items = append(items, SourceItem{Ch: r, Pos: position.Offset(int(base) + i)})
	}
	return RuneChunk{items: items}
}

func (c RuneChunk) IsEmpty() bool        { return len(c.items) == 0 }
func (c RuneChunk) Items() []SourceItem  { return c.items }
func (c RuneChunk) Stream() ChunkStream  { return &runeChunkStream{items: c.items} }

type runeChunkStream struct {
	items      []SourceItem
	pos        int
	accumStart int
}

// Next consumes the next item. Because it is not part of an
// accumulation, accumStart jumps forward past it: a later AccumDone
// will not pick up the item skipped by Next, and items accumulated
// before it that no AccumDone collected yet are dropped.
func (s *runeChunkStream) Next() (SourceItem, bool) {
	if s.pos >= len(s.items) {
		return SourceItem{}, false
	}
	item := s.items[s.pos]
	s.pos++
	s.accumStart = s.pos
	return item, true
}

func (s *runeChunkStream) Peek() (SourceItem, bool) {
	if s.pos >= len(s.items) {
		return SourceItem{}, false
	}
	return s.items[s.pos], true
}

// NextAccum consumes the next item without moving accumStart, so it
// becomes part of the run AccumDone will return.
func (s *runeChunkStream) NextAccum() (SourceItem, bool) {
	if s.pos >= len(s.items) {
		return SourceItem{}, false
	}
	item := s.items[s.pos]
	s.pos++
	return item, true
}

func (s *runeChunkStream) AccumDone() Chunk {
	piece := RuneChunk{items: append([]SourceItem(nil), s.items[s.accumStart:s.pos]...)}
	s.accumStart = s.pos
	return piece
}

package text

// SourceStream is the parser-facing stream over a Text: it transparently
// advances across chunk boundaries for Next/Peek, and accumulates
// NextAccum-consumed items into a new multi-chunk Text for AccumDone,
// calling the crossed chunk's own AccumDone and folding the result in
// via Concat at each boundary (spec.md §4.1).
type SourceStream struct {
	chunks []Chunk
	next   int // index of the next not-yet-opened chunk

	cur          ChunkStream
	accumulating bool

	total     Text
	fromChunk func(Chunk) Text
	alloc     Linker
}

// NewSourceStream builds a SourceStream over t. fromChunk wraps a
// single finalized Chunk back into a Text of t's own kind (so folding
// stays within one representation); alloc is forwarded to that kind's
// Concat and may be nil for representations that ignore it (TextVec).
func NewSourceStream(t Text, fromChunk func(Chunk) Text, alloc Linker) *SourceStream {
	return &SourceStream{
		chunks:    t.Chunks(),
		total:     fromChunk(RuneChunk{}), // an empty Text of the right kind
		fromChunk: fromChunk,
		alloc:     alloc,
	}
}

// NewVecSourceStream is the common-case constructor for a TextVec
// source, used by every default-classifier example in this repo.
func NewVecSourceStream(t TextVec) *SourceStream {
	return NewSourceStream(t, func(c Chunk) Text { return FromChunk(c) }, nil)
}

// NewChainSourceStream builds a SourceStream over a TextChain, wiring
// alloc into every accumulation boundary's Concat.
func NewChainSourceStream(t *TextChain, alloc Linker) *SourceStream {
	return NewSourceStream(t, func(c Chunk) Text { return ChainFromChunk(c) }, alloc)
}

// advance moves to the next non-exhausted chunk, folding any
// in-progress accumulation from a chunk we're leaving into s.total.
func (s *SourceStream) advance() error {
	for {
		if s.cur != nil {
			if _, ok := s.cur.Peek(); ok {
				return nil
			}
			if s.accumulating {
				piece := s.cur.AccumDone()
				if err := s.fold(piece); err != nil {
					return err
				}
			}
			s.cur = nil
		}
		if s.next >= len(s.chunks) {
			return nil
		}
		s.cur = s.chunks[s.next].Stream()
		s.next++
	}
}

func (s *SourceStream) fold(piece Chunk) error {
	if piece.IsEmpty() {
		return nil
	}
	combined, err := s.total.Concat(s.fromChunk(piece), s.alloc)
	if err != nil {
		return err
	}
	s.total = combined
	return nil
}

// Next consumes and returns the next item across all chunks. Like
// ChunkStream.Next, it drops whatever the current chunk has accumulated
// and not yet folded into the run; call AccumDone (or use SkipEscaped)
// first to keep it.
func (s *SourceStream) Next() (SourceItem, bool) {
	if err := s.advance(); err != nil {
		return SourceItem{}, false
	}
	if s.cur == nil {
		return SourceItem{}, false
	}
	return s.cur.Next()
}

// Peek looks at the next item across all chunks without consuming it.
func (s *SourceStream) Peek() (SourceItem, bool) {
	if err := s.advance(); err != nil {
		return SourceItem{}, false
	}
	if s.cur == nil {
		return SourceItem{}, false
	}
	return s.cur.Peek()
}

// NextAccum consumes the next item across chunk boundaries, marking it
// part of the ongoing accumulation.
func (s *SourceStream) NextAccum() (SourceItem, bool) {
	if err := s.advance(); err != nil {
		return SourceItem{}, false
	}
	if s.cur == nil {
		return SourceItem{}, false
	}
	s.accumulating = true
	item, ok := s.cur.NextAccum()
	return item, ok
}

// SkipEscaped consumes and discards the next item without letting it
// join the accumulated run, first finalizing whatever has already been
// gathered in the current chunk into s.total exactly as a chunk
// boundary would. Without that flush, the discarded item's own chunk
// would fold its accumStart forward and silently drop everything
// accumulated earlier in the same chunk. Parsers use this to drop an
// escape marker while keeping the run it interrupts open for further
// accumulation.
func (s *SourceStream) SkipEscaped() error {
	if err := s.advance(); err != nil {
		return err
	}
	if s.cur == nil {
		return nil
	}
	if s.accumulating {
		piece := s.cur.AccumDone()
		if err := s.fold(piece); err != nil {
			return err
		}
	}
	s.cur.Next()
	return nil
}

// AccumDone finalizes the accumulated run into a Text, resets
// accumulation state, and returns it. An error can only occur when the
// underlying Text kind's Concat can fail (TextChain with an exhausted
// allocator).
func (s *SourceStream) AccumDone() (Text, error) {
	if s.cur != nil && s.accumulating {
		piece := s.cur.AccumDone()
		if err := s.fold(piece); err != nil {
			return nil, err
		}
	}
	s.accumulating = false
	result := s.total
	s.total = s.fromChunk(RuneChunk{})
	return result, nil
}

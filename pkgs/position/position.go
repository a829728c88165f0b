// Package position defines the per-character source coordinate used
// throughout kul: by text chunks to tag every rune, by parse errors to
// say where they happened, and by tests that want to assert on an error's
// shape without committing to a particular position scheme.
package position

import "fmt"

// Position is an opaque source coordinate. Implementations are free to
// be a byte offset, a line/column pair, or a synthetic marker; the only
// thing the rest of kul requires is equality.
type Position interface {
	// Equal reports whether this position and other denote the same
	// source location. Implementations only need to handle their own
	// concrete type on the right-hand side; use the package-level Equal
	// function when either side might be the Ignored sentinel.
	Equal(other Position) bool
}

// Equal compares two positions, treating Ignored as equal to anything.
// This is the comparison tests should use, since a position's exact
// scheme (offset vs. line/col) is usually not what a test cares about.
func Equal(a, b Position) bool {
	if _, ok := a.(Ignored); ok {
		return true
	}
	if _, ok := b.(Ignored); ok {
		return true
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// Ignored is a sentinel position equal to every other position
// (including another Ignored). It exists so error-shape tests can assert
// on an error's Kind without reproducing the exact position a real
// source would have produced.
type Ignored struct{}

// Equal always reports true: Ignored matches any position.
func (Ignored) Equal(Position) bool { return true }

func (Ignored) String() string { return "<ignored>" }

// Offset is a zero-based byte (or rune, for in-memory rune slices)
// offset into the source. It is the position kind text.FromString
// attaches to every character.
type Offset int

// Equal reports whether other is an Offset with the same value, or the
// Ignored sentinel.
func (o Offset) Equal(other Position) bool {
	if _, ok := other.(Ignored); ok {
		return true
	}
	oo, ok := other.(Offset)
	return ok && oo == o
}

func (o Offset) String() string { return fmt.Sprintf("%d", int(o)) }

// LineCol is a one-based line/column position, for sources that track
// line breaks (used by kulerr's code-snippet rendering).
type LineCol struct {
	Line, Col int
}

// Equal reports whether other is a LineCol with the same line and
// column, or the Ignored sentinel.
func (p LineCol) Equal(other Position) bool {
	if _, ok := other.(Ignored); ok {
		return true
	}
	op, ok := other.(LineCol)
	return ok && op == p
}

func (p LineCol) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Zero is the Position returned wherever a position is required but
// none is meaningful yet (e.g. an empty Text's conceptual start).
var Zero Position = Offset(0)

// Package bindings maps an operator TEXT datum to a Combiner (spec.md
// §3/§4.4): the lookup a nest form's head is checked against once its
// text is known, to decide whether the form is a plain combination or
// should be dispatched to a registered combiner instead.
package bindings

import (
	"github.com/opal-lang/kul/pkgs/datum"
	"github.com/opal-lang/kul/pkgs/text"
)

// Style distinguishes the two calling conventions spec.md §3 defines
// for a Combiner.
type Style int

const (
	// Operative combiners receive the nest form's raw, unparsed operand
	// text and decide for themselves how (or whether) to parse it.
	Operative Style = iota
	// Applicative combiners receive the operand text already parsed into
	// a list of datums, like an ordinary combination.
	Applicative
)

// Combiner is what an operator binds to. Kind says which calling
// convention the parser must use when it looks this binding up.
type Combiner struct {
	Kind Style
	Text Operative
	Apply Applicative
}

// Operative is called with the nest form's raw operand text and the
// allocator/bindings in scope, and builds a Datum however it likes —
// including by running its own sub-parse over raw with a different
// classifier or bindings than the surrounding parse.
type Operative func(raw text.Text, alloc datum.Allocator, bnd Bindings) (datum.Datum, error)

// Applicative is called with the operand text already parsed into a
// LIST-shaped spine (the same as an un-combined nest form's operands),
// and builds a Datum from it.
type Applicative func(operands datum.Ref, alloc datum.Allocator) (datum.Datum, error)

// Bindings resolves an operator's TEXT to a Combiner. Lookup is by
// value equality of the operator's character sequence (text.Equal),
// not identity — spec.md §4.4.
type Bindings interface {
	Lookup(operator text.Text) (Combiner, bool)
}

// Empty never binds any operator — every nest form is parsed as a
// plain combination. The zero-configuration default, the same role
// inmem::OperatorBindings::default() plays in the original.
type Empty struct{}

func (Empty) Lookup(text.Text) (Combiner, bool) { return Combiner{}, false }

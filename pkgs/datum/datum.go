// Package datum defines the AST node kul parses into (spec.md §3), the
// owning-handle abstraction ("Ref") a Datum's children are held through,
// and the allocators that produce new Refs. Three concrete Ref kinds are
// provided — BoxRef, RcRef/ArcRef, SlotRef — mirroring the three
// representative allocator strategies spec.md §4.3 calls out, instead
// of picking just one (spec.md §9's design note permits either).
package datum

import (
	"github.com/opal-lang/kul/pkgs/text"
)

// Kind tags which variant a Datum holds. Go has no closed sum types, so
// Datum is one struct with a Kind discriminant and per-variant fields,
// the same shape core/ast.go's Node implementations use (one struct per
// concrete node, typed accessors) adapted to a single struct since our
// variants share so much structural shape (every non-leaf is a pair of
// Refs).
type Kind int

const (
	KindText Kind = iota
	KindCombination
	KindList
	KindEmptyList
	KindEmptyNest
	KindExtra
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindCombination:
		return "Combination"
	case KindList:
		return "List"
	case KindEmptyList:
		return "EmptyList"
	case KindEmptyNest:
		return "EmptyNest"
	case KindExtra:
		return "Extra"
	default:
		return "Unknown"
	}
}

// Datum is the AST node. Only the fields relevant to Kind are
// meaningful. The fields are read directly and nothing checks Kind on
// access; Children reports ok=false for a Kind that has no children.
type Datum struct {
	Kind Kind

	// KindText
	Text text.Text

	// KindCombination
	Operator Ref
	Operands Ref

	// KindList
	Elem Ref
	Next Ref

	// KindExtra
	Extra any
}

// IsBranch reports whether d is a COMBINATION or LIST node — the only
// two variants the drop algorithm (pkgs/dropalgo) ever has to restructure.
func IsBranch(d Datum) bool {
	return d.Kind == KindCombination || d.Kind == KindList
}

// Children returns d's two child Refs in (left, right) order —
// (Operator, Operands) for COMBINATION, (Elem, Next) for LIST — and
// false for any other Kind.
func Children(d Datum) (left, right Ref, ok bool) {
	switch d.Kind {
	case KindCombination:
		return d.Operator, d.Operands, true
	case KindList:
		return d.Elem, d.Next, true
	default:
		return nil, nil, false
	}
}

// NewBranch builds a transient LIST-kind branch out of two children.
// The drop algorithm uses this for its intermediate restructuring nodes
// regardless of whether the original branch was a COMBINATION or LIST
// (mirroring src/drop.rs's temp_branch, which always builds a `List`);
// the Kind only needs to say "this is a Branch", not what it originally
// meant.
func NewBranch(left, right Ref) Datum {
	return Datum{Kind: KindList, Elem: left, Next: right}
}

// EmptyListValue is the Datum value used both for a real `{}`-operand
// terminator and, in the drop algorithm, as the cheap sentinel
// temporarily swapped into a slot whose real value was taken out
// (src/drop.rs's TempLeaf = Datum::EmptyList).
func EmptyListValue() Datum { return Datum{Kind: KindEmptyList} }

// TextValue builds a TEXT datum.
func TextValue(t text.Text) Datum { return Datum{Kind: KindText, Text: t} }

// EmptyNestValue builds an EMPTY-NEST datum (`{}` with no head at all).
func EmptyNestValue() Datum { return Datum{Kind: KindEmptyNest} }

// Combination builds a COMBINATION datum.
func Combination(operator, operands Ref) Datum {
	return Datum{Kind: KindCombination, Operator: operator, Operands: operands}
}

// List builds one LIST cons cell.
func List(elem, next Ref) Datum {
	return Datum{Kind: KindList, Elem: elem, Next: next}
}

// Ref is an owned handle to a Datum node. Every parser-constructed
// Datum child is reached through one. Ref intentionally exposes only
// what the parser and the drop algorithm need: read access, and the
// take/replace/set triple the drop algorithm's iterative restructuring
// depends on (spec.md §4.6).
type Ref interface {
	// Value returns the current Datum the Ref points to.
	Value() Datum
	// TryTake atomically swaps in replacement and returns the previous
	// value, or ok=false if the swap cannot be done safely right now
	// (shared ownership with other strong/weak holders). Unique-owner
	// Refs (Box, Slot) always succeed.
	TryTake(replacement Datum) (previous Datum, ok bool)
	// Set stores val directly. Only ever called right after a
	// succeeding TryTake on the same Ref, so it can assume no other
	// owner can observe the intermediate state.
	Set(val Datum)
}

// Allocator is the single capability the parser needs to create datums
// (spec.md §4.3): NewDatum, which may fail.
type Allocator interface {
	NewDatum(val Datum) (Ref, error)
}

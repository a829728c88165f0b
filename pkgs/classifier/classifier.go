// Package classifier decides what role each source character plays
// while parsing (spec.md §4.2): the start or end of a nest form, an
// escape character, or ordinary text. It is deliberately pluggable —
// the default classifier uses `{` `}` `\`, but examples/
// non_default_delimiters.rs in the original shows a classifier built
// entirely out of non-ASCII delimiters, and SPEC_FULL.md calls for the
// same flexibility here.
package classifier

import "unicode"

// Classifier answers the four character-role questions the parser's
// state machine needs. Whitespace is trimmed before a nest form's head
// and splits the head from its operands. The default classifier defers
// it to unicode.IsSpace; a Table uses its own configured whitespace set
// and falls back to unicode.IsSpace only when that set is empty.
type Classifier interface {
	IsNestStart(r rune) bool
	IsNestEnd(r rune) bool
	IsEscape(r rune) bool
	IsWhitespace(r rune) bool
}

// defaultClassifier is kul's baseline delimiter set.
type defaultClassifier struct{}

func (defaultClassifier) IsNestStart(r rune) bool  { return r == '{' }
func (defaultClassifier) IsNestEnd(r rune) bool    { return r == '}' }
func (defaultClassifier) IsEscape(r rune) bool     { return r == '\\' }
func (defaultClassifier) IsWhitespace(r rune) bool { return unicode.IsSpace(r) }

// Default is the `{` `}` `\` classifier every example in spec.md §8
// parses against unless it says otherwise.
func Default() Classifier { return defaultClassifier{} }

// Table is a Classifier built from explicit rune sets (FromSets or
// LoadSpec), for callers who need delimiters other than the default —
// or non-ASCII ones, per the original's non_default_delimiters.rs
// example. Unlike defaultClassifier, a Table's whitespace class is
// itself configurable (the original's custom_delim::Spec carries its
// own `whitespace` set alongside the three structural ones, e.g. using
// `-` as the head/operand separator instead of any Unicode space).
type Table struct {
	nestStart  map[rune]struct{}
	nestEnd    map[rune]struct{}
	escape     map[rune]struct{}
	whitespace map[rune]struct{}
}

func (t *Table) IsNestStart(r rune) bool { _, ok := t.nestStart[r]; return ok }
func (t *Table) IsNestEnd(r rune) bool   { _, ok := t.nestEnd[r]; return ok }
func (t *Table) IsEscape(r rune) bool    { _, ok := t.escape[r]; return ok }

// IsWhitespace reports membership in the configured whitespace set, or
// falls back to unicode.IsSpace when the Table was built with no
// explicit whitespace runes (FromSets's whitespace argument was empty).
func (t *Table) IsWhitespace(r rune) bool {
	if len(t.whitespace) == 0 {
		return unicode.IsSpace(r)
	}
	_, ok := t.whitespace[r]
	return ok
}

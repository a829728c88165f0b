// Package kulerr is the structured error type shared by every kul
// package. It follows the shape the teacher's pkgs/errors.DevCmdError
// uses (a typed Kind plus Message/Cause/Context, with Unwrap support)
// and borrows pkgs/parser.ParseError's source-snippet rendering for
// Error(), but it is not a log sink: kul never logs, it only returns
// errors as values (spec.md §1.1 ambient-stack note).
package kulerr

import (
	"fmt"
	"strings"

	"github.com/opal-lang/kul/pkgs/position"
)

// Kind identifies the category of a kul error. Combiner and allocator
// errors (CE / AllocError in spec.md §7) are both representable as a
// Kind plus a wrapped Cause.
type Kind string

const (
	// KindMissingEndChar: end-of-input before a nest form's matching
	// NEST-END. Terminal for the current parse.
	KindMissingEndChar Kind = "MISSING_END_CHAR"

	// KindUnbalancedEndChar: a top-level NEST-END with no open nest.
	// Emitted as one item; the parser continues afterward.
	KindUnbalancedEndChar Kind = "UNBALANCED_END_CHAR"

	// KindAllocExhausted: the datum allocator could not produce a new
	// handle. Fatal for the current form only.
	KindAllocExhausted Kind = "ALLOC_EXHAUSTED"

	// KindCombiner: a combiner returned an error instead of a datum.
	KindCombiner Kind = "COMBINER_ERROR"

	// KindClassifierConflict: a character classifier configuration was
	// rejected — one rune assigned to more than one category, or a
	// classifier spec document that LoadSpec could not read, parse,
	// validate, or decode into single-character entries.
	KindClassifierConflict Kind = "CLASSIFIER_CONFLICT"
)

// Error is the concrete error type every kul package returns.
type Error struct {
	Kind    Kind
	Message string
	Pos     position.Position
	Cause   error
	Context map[string]any

	// Source, when non-empty and Pos is a position.LineCol, lets Error()
	// render a "-->line:col" snippet the way pkgs/parser.ParseError does.
	// It is optional: most kul errors carry only an offset-based Pos and
	// skip the snippet.
	Source string
}

// New creates an Error of the given kind with no cause.
func New(kind Kind, pos position.Position, message string) *Error {
	return &Error{Kind: kind, Pos: pos, Message: message}
}

// Wrap creates an Error of the given kind wrapping an existing error.
func Wrap(kind Kind, pos position.Position, message string, cause error) *Error {
	return &Error{Kind: kind, Pos: pos, Message: message, Cause: cause}
}

// WithContext attaches a key/value pair of diagnostic context and
// returns the same *Error for chaining, mirroring
// pkgs/errors.DevCmdError.WithContext.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithSource attaches the full source text so Error() can render a code
// snippet when Pos is a position.LineCol.
func (e *Error) WithSource(src string) *Error {
	e.Source = src
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	if snippet := e.snippet(); snippet != "" {
		b.WriteByte('\n')
		b.WriteString(snippet)
	}
	return b.String()
}

// Unwrap allows errors.Is/errors.As to see through to Cause.
func (e *Error) Unwrap() error { return e.Cause }

// snippet renders a Rust/Clang-style pointer line, the same format
// pkgs/parser.ParseError.createCodeSnippet uses, when Pos is a
// position.LineCol and Source is set.
func (e *Error) snippet() string {
	lc, ok := e.Pos.(position.LineCol)
	if !ok || e.Source == "" || lc.Line <= 0 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lc.Line > len(lines) {
		return ""
	}
	line := lines[lc.Line-1]

	var b strings.Builder
	fmt.Fprintf(&b, "  --> %d:%d\n", lc.Line, lc.Col)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "%2d | %s\n", lc.Line, line)
	b.WriteString("   | ")
	if lc.Col > 0 && lc.Col <= len(line)+1 {
		b.WriteString(strings.Repeat(" ", lc.Col-1) + "^")
	}
	return b.String()
}

// Is reports whether err is a *Error of the given kind, so callers can
// write `kulerr.Is(err, kulerr.KindMissingEndChar)` instead of a type
// assertion plus field check. Wrappers that are not *Error (fmt.Errorf
// with %w, for example) are unwrapped until the first *Error is found;
// that *Error's own Kind decides the result, and the kinds of causes it
// wraps are not consulted.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

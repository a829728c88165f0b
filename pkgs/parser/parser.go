// Package parser implements kul's pull-driven scanner (spec.md §4.5): a
// lazy sequence of parsed Datums (or parse errors) over a text.Text
// source, configured by a classifier.Classifier, a datum.Allocator, and
// bindings.Bindings.
package parser

import (
	"iter"

	"github.com/opal-lang/kul/pkgs/bindings"
	"github.com/opal-lang/kul/pkgs/classifier"
	"github.com/opal-lang/kul/pkgs/datum"
	"github.com/opal-lang/kul/pkgs/kulerr"
	"github.com/opal-lang/kul/pkgs/position"
	"github.com/opal-lang/kul/pkgs/text"
)

// Parser holds the three collaborators spec.md §4.5/§6 says configure a
// parse; any one of them can be swapped independently of the others, so
// this is a plain struct of exported fields rather than a constructor-
// enforced opaque type — mirroring how the original builds its Parser
// as a struct literal at every call site (see examples/
// non_default_delimiters.rs).
type Parser struct {
	Classifier classifier.Classifier
	Allocator  datum.Allocator
	Bindings   bindings.Bindings
}

// New builds a Parser. Equivalent to a struct literal; provided for
// callers that prefer a constructor.
func New(c classifier.Classifier, alloc datum.Allocator, b bindings.Bindings) *Parser {
	return &Parser{Classifier: c, Allocator: alloc, Bindings: b}
}

// Result is one item of a Parse stream: either a successfully parsed
// Datum or an error, never both.
type Result struct {
	Datum datum.Datum
	Err   error
}

// Parse returns a lazy sequence of Results over src, advancing the
// scanner just enough to produce one top-level item per step (spec.md
// §4.5/§5 — pull-driven, no internal buffering beyond what assembling
// one item requires).
func (p *Parser) Parse(src *text.SourceStream) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for {
			res, more := p.nextTopLevel(src)
			if !more {
				return
			}
			if !yield(res) {
				return
			}
			if res.Err != nil && kulerr.Is(res.Err, kulerr.KindMissingEndChar) {
				// Terminal: end-of-input was reached with a nest still
				// open, so there is no well-defined place to resume
				// scanning from (spec.md §7).
				return
			}
		}
	}
}

// nextTopLevel produces the next top-level stream item. more=false means
// the stream ended cleanly, with no item and no error to report.
func (p *Parser) nextTopLevel(src *text.SourceStream) (Result, bool) {
	item, ok := src.Peek()
	if !ok {
		return Result{}, false
	}

	switch {
	case p.Classifier.IsNestEnd(item.Ch):
		src.Next()
		return Result{Err: kulerr.New(kulerr.KindUnbalancedEndChar, item.Pos,
			"unbalanced nest-end character at top level")}, true

	case p.Classifier.IsNestStart(item.Ch):
		src.Next()
		d, err := p.parseNestForm(src, item.Pos)
		if err != nil {
			return Result{Err: err}, true
		}
		return Result{Datum: d}, true

	default:
		d, got, err := p.parseTextRun(src)
		if err != nil {
			return Result{Err: err}, true
		}
		if !got {
			// parseTextRun reports got=true whenever it returns no error
			// (a trailing escape yields an empty TEXT item), so this
			// branch only guards its contract.
			return Result{}, false
		}
		return Result{Datum: d}, true
	}
}

// parseTextRun accumulates a run of TEXT characters (escapes included
// literally), stopping before a NEST-START or NEST-END without
// consuming it. Callers only invoke this once a Peek has already
// confirmed at least one plain-text character is available, so it
// always produces an item — a trailing escape at end-of-input still
// yields an empty TEXT datum rather than no item at all (the original's
// `r"\" => [Ok(text(""))]` case: one character was there to attempt a
// run with, even though the escape it held produced no content).
func (p *Parser) parseTextRun(src *text.SourceStream) (datum.Datum, bool, error) {
loop:
	for {
		item, ok := src.Peek()
		if !ok {
			break
		}
		switch {
		case p.Classifier.IsEscape(item.Ch):
			if err := src.SkipEscaped(); err != nil {
				return datum.Datum{}, false, err
			}
			if _, ok := src.NextAccum(); !ok {
				break loop
			}
		case p.Classifier.IsNestStart(item.Ch), p.Classifier.IsNestEnd(item.Ch):
			break loop
		default:
			src.NextAccum()
		}
	}

	txt, err := src.AccumDone()
	if err != nil {
		return datum.Datum{}, false, err
	}
	return datum.TextValue(txt), true, nil
}

// parseNestForm parses one nest form's contents after its opening
// NEST-START (at startPos) has already been consumed: the head, then
// either EMPTY-NEST/EMPTY-LIST shortcuts or the operand region, applying
// any combiner bound to a TEXT head (spec.md §4.4/§4.5).
func (p *Parser) parseNestForm(src *text.SourceStream, startPos position.Position) (datum.Datum, error) {
	p.skipWhitespace(src)

	item, ok := src.Peek()
	if !ok {
		return datum.Datum{}, kulerr.New(kulerr.KindMissingEndChar, startPos,
			"end of input before matching nest-end")
	}

	if p.Classifier.IsNestEnd(item.Ch) {
		src.Next()
		return datum.EmptyNestValue(), nil
	}

	var operator datum.Datum
	closedDirectly := false

	if p.Classifier.IsNestStart(item.Ch) {
		src.Next()
		sub, err := p.parseNestForm(src, item.Pos)
		if err != nil {
			return datum.Datum{}, err
		}
		operator = sub
		// The nested form is a complete unit: it cannot be extended by
		// further head characters, so the head ends here. Whatever
		// follows decides whether a separator is consumed.
		if sep, ok := src.Peek(); ok && p.Classifier.IsWhitespace(sep.Ch) {
			src.Next()
		} else if ok && p.Classifier.IsNestEnd(sep.Ch) {
			src.Next()
			closedDirectly = true
		} else if !ok {
			return datum.Datum{}, kulerr.New(kulerr.KindMissingEndChar, startPos,
				"end of input before matching nest-end")
		}
	} else {
		headText, sawEnd, err := p.scanHeadText(src, startPos)
		if err != nil {
			return datum.Datum{}, err
		}
		operator = datum.TextValue(headText)
		closedDirectly = sawEnd
	}

	if closedDirectly {
		// The matching NEST-END is already consumed at this point, so an
		// allocator failure here needs no recovery skip — the cursor is
		// already positioned right after this form.
		opRef, err := p.Allocator.NewDatum(operator)
		if err != nil {
			return datum.Datum{}, err
		}
		emptyRef, err := p.Allocator.NewDatum(datum.EmptyListValue())
		if err != nil {
			return datum.Datum{}, err
		}
		return p.dispatch(operator, opRef, emptyRef)
	}

	combiner, hasCombiner := p.lookup(operator)

	switch {
	case hasCombiner && combiner.Kind == bindings.Operative:
		raw, err := p.parseOperativeRaw(src)
		if err != nil {
			return datum.Datum{}, err
		}
		return combiner.Text(raw, p.Allocator, p.Bindings)

	default:
		opRef, err := p.Allocator.NewDatum(operator)
		if err != nil {
			src.AccumDone()
			p.recoverSkipToEnd(src)
			return datum.Datum{}, err
		}
		operandsRef, err := p.parseOperandList(src)
		if err != nil {
			return datum.Datum{}, err
		}
		if hasCombiner && combiner.Kind == bindings.Applicative {
			return combiner.Apply(operandsRef, p.Allocator)
		}
		return datum.Combination(opRef, operandsRef), nil
	}
}

// lookup resolves operator against p.Bindings, but only when operator is
// itself a TEXT datum — a nested-form operator (EMPTY-NEST, a nested
// COMBINATION, ...) has no character sequence to match against and
// always falls back to a plain combination (spec.md §6's
// `"{{}}"` -> `COMBINATION(EMPTY-NEST, EMPTY-LIST)` example).
func (p *Parser) lookup(operator datum.Datum) (bindings.Combiner, bool) {
	if operator.Kind != datum.KindText || p.Bindings == nil {
		return bindings.Combiner{}, false
	}
	return p.Bindings.Lookup(operator.Text)
}

// dispatch is the shared closedDirectly=true path: the head closed the
// nest form immediately, so operands is EMPTY-LIST regardless of
// whether a combiner is bound.
func (p *Parser) dispatch(operator datum.Datum, opRef, emptyRef datum.Ref) (datum.Datum, error) {
	combiner, hasCombiner := p.lookup(operator)
	switch {
	case hasCombiner && combiner.Kind == bindings.Operative:
		return combiner.Text(text.Empty(), p.Allocator, p.Bindings)
	case hasCombiner && combiner.Kind == bindings.Applicative:
		return combiner.Apply(emptyRef, p.Allocator)
	default:
		return datum.Combination(opRef, emptyRef), nil
	}
}

// skipWhitespace discards leading whitespace inside a nest form, before
// the head begins.
func (p *Parser) skipWhitespace(src *text.SourceStream) {
	for {
		item, ok := src.Peek()
		if !ok || !p.Classifier.IsWhitespace(item.Ch) {
			return
		}
		src.Next()
	}
}

// scanHeadText accumulates a flat-text head: characters (escapes
// included literally) up to the first unescaped whitespace (the head/
// operand separator, consumed and discarded), this form's own
// NEST-END (not consumed; sawEnd=true tells the caller the form closed
// directly), or a NEST-START (not consumed, ending the head the same
// way whitespace would, since a bare text head cannot be extended by a
// following nested form — undocumented by either spec.md or the
// original's test suite, so resolved here to the simplest rule that
// cannot contradict either).
func (p *Parser) scanHeadText(src *text.SourceStream, startPos position.Position) (text.Text, bool, error) {
	wrote := false
	sep := false
loop:
	for {
		item, ok := src.Peek()
		if !ok {
			src.AccumDone()
			return nil, false, kulerr.New(kulerr.KindMissingEndChar, startPos,
				"end of input before matching nest-end")
		}
		switch {
		case p.Classifier.IsEscape(item.Ch):
			if err := src.SkipEscaped(); err != nil {
				return nil, false, err
			}
			if _, ok := src.NextAccum(); !ok {
				src.AccumDone()
				return nil, false, kulerr.New(kulerr.KindMissingEndChar, startPos,
					"end of input before matching nest-end")
			}
			wrote = true
		case p.Classifier.IsWhitespace(item.Ch):
			// Consumed only after AccumDone below: a Next here would
			// discard the run accumulated so far.
			sep = true
			break loop
		case p.Classifier.IsNestEnd(item.Ch):
			break loop
		case p.Classifier.IsNestStart(item.Ch):
			break loop
		default:
			src.NextAccum()
			wrote = true
		}
	}

	txt, err := src.AccumDone()
	if err != nil {
		return nil, false, err
	}
	if !wrote {
		txt = text.Empty()
	}
	if sep {
		src.Next()
	}

	item, ok := src.Peek()
	sawEnd := ok && p.Classifier.IsNestEnd(item.Ch)
	if sawEnd {
		src.Next()
	}
	return txt, sawEnd, nil
}

// parseOperandList parses the default (no-combiner) operand region: a
// recursive sequence of items — text-runs or nest-forms — terminated by
// this form's matching NEST-END, assembled into a right-nested LIST
// spine. Unlike the head, whitespace inside the operand region is
// ordinary text (spec.md §4.5's "entirely whitespace" simplification
// does not hold against the original's test suite, e.g. `"{\\   }"` ->
// one-element list containing a single space — see DESIGN.md).
func (p *Parser) parseOperandList(src *text.SourceStream) (datum.Ref, error) {
	var items []datum.Datum
	for {
		item, ok := src.Peek()
		if !ok {
			return nil, kulerr.New(kulerr.KindMissingEndChar, position.Ignored{},
				"end of input before matching nest-end")
		}
		if p.Classifier.IsNestEnd(item.Ch) {
			src.Next()
			break
		}
		if p.Classifier.IsNestStart(item.Ch) {
			src.Next()
			d, err := p.parseNestForm(src, item.Pos)
			if err != nil {
				return nil, err
			}
			items = append(items, d)
			continue
		}
		d, got, err := p.parseTextRun(src)
		if err != nil {
			return nil, err
		}
		if got {
			items = append(items, d)
		}
	}

	tail, err := p.Allocator.NewDatum(datum.EmptyListValue())
	if err != nil {
		return nil, err
	}
	for i := len(items) - 1; i >= 0; i-- {
		elemRef, err := p.Allocator.NewDatum(items[i])
		if err != nil {
			return nil, err
		}
		tail, err = p.Allocator.NewDatum(datum.List(elemRef, tail))
		if err != nil {
			return nil, err
		}
	}
	return tail, nil
}

// parseOperativeRaw accumulates the nest form's entire remaining
// operand region as one literal TEXT datum, applying escape processing
// but no recursive parsing (spec.md §3's Operative calling convention).
// Nested NEST-START/NEST-END pairs are tracked only to find this form's
// own matching NEST-END; their characters are kept verbatim.
func (p *Parser) parseOperativeRaw(src *text.SourceStream) (text.Text, error) {
	depth := 0
	for {
		item, ok := src.Peek()
		if !ok {
			return nil, kulerr.New(kulerr.KindMissingEndChar, position.Ignored{},
				"end of input before matching nest-end")
		}
		switch {
		case p.Classifier.IsEscape(item.Ch):
			if err := src.SkipEscaped(); err != nil {
				return nil, err
			}
			if _, ok := src.NextAccum(); !ok {
				return nil, kulerr.New(kulerr.KindMissingEndChar, item.Pos,
					"end of input before matching nest-end")
			}
		case p.Classifier.IsNestEnd(item.Ch):
			if depth == 0 {
				raw, err := src.AccumDone()
				if err != nil {
					return nil, err
				}
				src.Next()
				return raw, nil
			}
			depth--
			src.NextAccum()
		case p.Classifier.IsNestStart(item.Ch):
			depth++
			src.NextAccum()
		default:
			src.NextAccum()
		}
	}
}

// recoverSkipToEnd discards characters up to and including this form's
// matching NEST-END, for the one recovery case spec.md §7's Open
// Question resolves explicitly: an allocator failure while still
// building the head (before any NEST-END position is known) aborts only
// the current form, so scanning can resume right after it.
func (p *Parser) recoverSkipToEnd(src *text.SourceStream) {
	depth := 0
	for {
		item, ok := src.Next()
		if !ok {
			return
		}
		switch {
		case p.Classifier.IsEscape(item.Ch):
			src.Next()
		case p.Classifier.IsNestStart(item.Ch):
			depth++
		case p.Classifier.IsNestEnd(item.Ch):
			if depth == 0 {
				return
			}
			depth--
		}
	}
}

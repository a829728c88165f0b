package parser_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/kul/pkgs/bindings"
	"github.com/opal-lang/kul/pkgs/classifier"
	"github.com/opal-lang/kul/pkgs/datum"
	"github.com/opal-lang/kul/pkgs/kulerr"
	"github.com/opal-lang/kul/pkgs/parser"
	"github.com/opal-lang/kul/pkgs/text"
)

// want is a Ref-agnostic shape for asserting on a parsed Datum tree,
// since the same tree can be built behind any Allocator (Box, Rc, Arc,
// Slot) — comparisons here only care about structure and text content.
type want struct {
	kind               datum.Kind
	str                string
	operator, operands *want
	elem, next         *want
}

func wText(s string) want  { return want{kind: datum.KindText, str: s} }
func wEmptyNest() want     { return want{kind: datum.KindEmptyNest} }
func wEmptyList() want     { return want{kind: datum.KindEmptyList} }
func wComb(operator, operands want) want {
	return want{kind: datum.KindCombination, operator: &operator, operands: &operands}
}
func wList(elem, next want) want { return want{kind: datum.KindList, elem: &elem, next: &next} }
func wList1(e1 want) want        { return wList(e1, wEmptyList()) }
func wList2(e1, e2 want) want    { return wList(e1, wList1(e2)) }
func wList3(e1, e2, e3 want) want {
	return wList(e1, wList2(e2, e3))
}
func wList5(e1, e2, e3, e4, e5 want) want {
	return wList(e1, wList(e2, wList(e3, wList1ForFive(e4, e5))))
}
func wList1ForFive(e4, e5 want) want { return wList(e4, wList1(e5)) }

func assertDatum(t *testing.T, w want, got datum.Datum, path string) {
	t.Helper()
	if !assert.Equal(t, w.kind, got.Kind, "%s: kind", path) {
		return
	}
	switch w.kind {
	case datum.KindText:
		assert.Equal(t, w.str, text.String(got.Text), "%s: text", path)
	case datum.KindCombination:
		assertDatum(t, *w.operator, got.Operator.Value(), path+".operator")
		assertDatum(t, *w.operands, got.Operands.Value(), path+".operands")
	case datum.KindList:
		assertDatum(t, *w.elem, got.Elem.Value(), path+".elem")
		assertDatum(t, *w.next, got.Next.Value(), path+".next")
	}
}

// expectation is either a successfully parsed want or an expected error
// Kind, mirroring suites.rs's `[Ok(..), Err(..)]` expectation lists.
type expectation struct {
	ok   *want
	kind kulerr.Kind
}

func ok(w want) expectation         { return expectation{ok: &w} }
func errKind(k kulerr.Kind) expectation { return expectation{kind: k} }

func parseAll(p *parser.Parser, input string) []parser.Result {
	src := text.NewVecSourceStream(text.FromString(input))
	var out []parser.Result
	for res := range p.Parse(src) {
		out = append(out, res)
	}
	return out
}

func assertResults(t *testing.T, results []parser.Result, expected []expectation) {
	t.Helper()
	require.Len(t, results, len(expected))
	for i, exp := range expected {
		path := fmt.Sprintf("item[%d]", i)
		if exp.ok != nil {
			require.NoError(t, results[i].Err, path)
			assertDatum(t, *exp.ok, results[i].Datum, path)
		} else {
			require.Error(t, results[i].Err, path)
			assert.True(t, kulerr.Is(results[i].Err, exp.kind),
				"%s: want kind %s, got %v", path, exp.kind, results[i].Err)
		}
	}
}

func defaultParser() *parser.Parser {
	return parser.New(classifier.Default(), datum.BoxAllocator{}, bindings.Empty{})
}

func TestParse_Basics(t *testing.T) {
	p := defaultParser()
	cases := []struct {
		input string
		want  []expectation
	}{
		{"", nil},
		{" ", []expectation{ok(wText(" "))}},
		{"a", []expectation{ok(wText("a"))}},
		{"a ", []expectation{ok(wText("a "))}},
		{" a ", []expectation{ok(wText(" a "))}},
		{"a b c", []expectation{ok(wText("a b c"))}},
		{"{b}", []expectation{ok(wComb(wText("b"), wEmptyList()))}},
		{"{b }", []expectation{ok(wComb(wText("b"), wEmptyList()))}},
		{"{bob}", []expectation{ok(wComb(wText("bob"), wEmptyList()))}},
		{"{b o b}", []expectation{ok(wComb(wText("b"), wList1(wText("o b"))))}},
		{"{ bo b }", []expectation{ok(wComb(wText("bo"), wList1(wText("b "))))}},
		{
			" c  d   { e  f   g    }     hi  j ",
			[]expectation{
				ok(wText(" c  d   ")),
				ok(wComb(wText("e"), wList1(wText(" f   g    ")))),
				ok(wText("     hi  j ")),
			},
		},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			assertResults(t, parseAll(p, c.input), c.want)
		})
	}
}

func TestParse_EmptyNestAndNestedHeads(t *testing.T) {
	p := defaultParser()
	cases := []struct {
		input string
		want  []expectation
	}{
		{"{}", []expectation{ok(wEmptyNest())}},
		{"{}{}", []expectation{ok(wEmptyNest()), ok(wEmptyNest())}},
		{"{{}}", []expectation{ok(wComb(wEmptyNest(), wEmptyList()))}},
		{"{{}{}}", []expectation{ok(wComb(wEmptyNest(), wList1(wEmptyNest())))}},
		{"{{{}}}", []expectation{ok(wComb(wComb(wEmptyNest(), wEmptyList()), wEmptyList()))}},
		{" { } ", []expectation{ok(wText(" ")), ok(wEmptyNest()), ok(wText(" "))}},
		{
			"  { {  }   } ",
			[]expectation{
				ok(wText("  ")),
				ok(wComb(wEmptyNest(), wList1(wText("  ")))),
				ok(wText(" ")),
			},
		},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			assertResults(t, parseAll(p, c.input), c.want)
		})
	}
}

func TestParse_Escapes(t *testing.T) {
	p := defaultParser()
	cases := []struct {
		input string
		want  []expectation
	}{
		{`\\`, []expectation{ok(wText(`\`))}},
		{`\{`, []expectation{ok(wText("{"))}},
		{`\}`, []expectation{ok(wText("}"))}},
		{`\{\}`, []expectation{ok(wText("{}"))}},
		{`\a`, []expectation{ok(wText("a"))}},
		{`\a\b`, []expectation{ok(wText("ab"))}},
		{`\`, []expectation{ok(wText(""))}},
		{`a\`, []expectation{ok(wText("a"))}},
		{`a\b\`, []expectation{ok(wText("ab"))}},
		{`{b\ o b}`, []expectation{ok(wComb(wText("b o"), wList1(wText("b"))))}},
		{`{\ bo b }`, []expectation{ok(wComb(wText(" bo"), wList1(wText("b "))))}},
		{`{\ bo\ b }`, []expectation{ok(wComb(wText(" bo b"), wEmptyList()))}},
		{`{\ bo\ b  }`, []expectation{ok(wComb(wText(" bo b"), wList1(wText(" "))))}},
		{`{\ }`, []expectation{ok(wComb(wText(" "), wEmptyList()))}},
		{`{\  }`, []expectation{ok(wComb(wText(" "), wEmptyList()))}},
		{`{\   }`, []expectation{ok(wComb(wText(" "), wList1(wText(" "))))}},
		{`{\ \ }`, []expectation{ok(wComb(wText("  "), wEmptyList()))}},
		{`{y\\z}`, []expectation{ok(wComb(wText(`y\z`), wEmptyList()))}},
		{`{yz\}}`, []expectation{ok(wComb(wText("yz}"), wEmptyList()))}},
		{`{yz\{}`, []expectation{ok(wComb(wText("yz{"), wEmptyList()))}},
		{`{y\{z}`, []expectation{ok(wComb(wText("y{z"), wEmptyList()))}},
		{`{\{ yz}`, []expectation{ok(wComb(wText("{"), wList1(wText("yz"))))}},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			assertResults(t, parseAll(p, c.input), c.want)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	p := defaultParser()
	cases := []struct {
		input string
		want  []expectation
	}{
		{"{", []expectation{errKind(kulerr.KindMissingEndChar)}},
		{"}", []expectation{errKind(kulerr.KindUnbalancedEndChar)}},
		{"x{", []expectation{ok(wText("x")), errKind(kulerr.KindMissingEndChar)}},
		{"{oo {}", []expectation{errKind(kulerr.KindMissingEndChar)}},
		{"{oo {", []expectation{errKind(kulerr.KindMissingEndChar)}},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			assertResults(t, parseAll(p, c.input), c.want)
		})
	}
}

func TestParse_CustomDelimiters(t *testing.T) {
	tbl, err := classifier.FromSets(
		[]rune{'⟪'}, []rune{'⟫'}, []rune{'␛'}, []rune{'-'},
	)
	require.NoError(t, err)
	p := parser.New(tbl, datum.BoxAllocator{}, bindings.Empty{})

	cases := []struct {
		input string
		want  []expectation
	}{
		{"", nil},
		{"{}", []expectation{ok(wText("{}"))}},
		{"{a}", []expectation{ok(wText("{a}"))}},
		{"⟪⟫", []expectation{ok(wEmptyNest())}},
		{"⟪ ⟫", []expectation{ok(wComb(wText(" "), wEmptyList()))}},
		{"⟪a⟫", []expectation{ok(wComb(wText("a"), wEmptyList()))}},
		{"⟪-a⟫", []expectation{ok(wComb(wText("a"), wEmptyList()))}},
		{"⟪--a⟫", []expectation{ok(wComb(wText("a"), wEmptyList()))}},
		{"⟪a-⟫", []expectation{ok(wComb(wText("a"), wEmptyList()))}},
		{"⟪a--⟫", []expectation{ok(wComb(wText("a"), wList1(wText("-"))))}},
		{"⟪a-b⟫", []expectation{ok(wComb(wText("a"), wList1(wText("b"))))}},
		{
			"a-⟪b-c⟫d-",
			[]expectation{
				ok(wText("a-")),
				ok(wComb(wText("b"), wList1(wText("c")))),
				ok(wText("d-")),
			},
		},
		{"␛␛", []expectation{ok(wText("␛"))}},
		{"␛⟪", []expectation{ok(wText("⟪"))}},
		{"␛⟫", []expectation{ok(wText("⟫"))}},
		{"␛⟪␛⟫", []expectation{ok(wText("⟪⟫"))}},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			assertResults(t, parseAll(p, c.input), c.want)
		})
	}
}

// echoCombiners mirrors suites.rs's BasicCombiners test harness: an
// Operative bound to "oo" that hands back its raw text verbatim, and an
// Applicative bound to "aa" that hands back its parsed operand list
// verbatim — the minimal combiners needed to exercise the parser's two
// fixed calling conventions without any real macro-expansion logic.
type echoCombiners struct{ operative, applicative string }

func (e echoCombiners) Lookup(op text.Text) (bindings.Combiner, bool) {
	switch text.String(op) {
	case e.operative:
		return bindings.Combiner{
			Kind: bindings.Operative,
			Text: func(raw text.Text, _ datum.Allocator, _ bindings.Bindings) (datum.Datum, error) {
				return datum.TextValue(raw), nil
			},
		}, true
	case e.applicative:
		return bindings.Combiner{
			Kind: bindings.Applicative,
			Apply: func(operands datum.Ref, _ datum.Allocator) (datum.Datum, error) {
				return operands.Value(), nil
			},
		}, true
	default:
		return bindings.Combiner{}, false
	}
}

func TestParse_OperativeAndApplicative(t *testing.T) {
	p := parser.New(classifier.Default(), datum.BoxAllocator{}, echoCombiners{operative: "oo", applicative: "aa"})

	t.Run("operative", func(t *testing.T) {
		cases := []struct {
			input string
			want  []expectation
		}{
			{"{oo}", []expectation{ok(wText(""))}},
			{"{oo }", []expectation{ok(wText(""))}},
			{"{oo  }", []expectation{ok(wText(" "))}},
			{"{oo{}}", []expectation{ok(wText("{}"))}},
			{"{oo zab {zz} yo}", []expectation{ok(wText("zab {zz} yo"))}},
			{`{oo ab\cd}`, []expectation{ok(wText("abcd"))}},
			{"{u {oo zab {zz} yo}}", []expectation{ok(wComb(wText("u"), wList1(wText("zab {zz} yo"))))}},
			{"{oo {}", []expectation{errKind(kulerr.KindMissingEndChar)}},
			{"{oo {", []expectation{errKind(kulerr.KindMissingEndChar)}},
			{"{oo}}", []expectation{ok(wText("")), errKind(kulerr.KindUnbalancedEndChar)}},
		}
		for _, c := range cases {
			t.Run(c.input, func(t *testing.T) {
				assertResults(t, parseAll(p, c.input), c.want)
			})
		}
	})

	t.Run("applicative", func(t *testing.T) {
		cases := []struct {
			input string
			want  []expectation
		}{
			{"{aa}", []expectation{ok(wEmptyList())}},
			{"{aa }", []expectation{ok(wEmptyList())}},
			{"{aa  }", []expectation{ok(wList1(wText(" ")))}},
			{"{aa{}}", []expectation{ok(wList1(wEmptyNest()))}},
			{
				"{aa zab {zz} yo}",
				[]expectation{ok(wList3(wText("zab "), wComb(wText("zz"), wEmptyList()), wText(" yo")))},
			},
			{
				"{u {aa zab {zz} yo}}",
				[]expectation{ok(wComb(wText("u"),
					wList1(wList3(wText("zab "), wComb(wText("zz"), wEmptyList()), wText(" yo")))))},
			},
			{"{aa {}", []expectation{errKind(kulerr.KindMissingEndChar)}},
			{"{aa {", []expectation{errKind(kulerr.KindMissingEndChar)}},
			{"{aa}}", []expectation{ok(wEmptyList()), errKind(kulerr.KindUnbalancedEndChar)}},
		}
		for _, c := range cases {
			t.Run(c.input, func(t *testing.T) {
				assertResults(t, parseAll(p, c.input), c.want)
			})
		}
	})
}

func TestParse_AllocatorExhaustionRecovers(t *testing.T) {
	t.Run("nest-end already consumed needs no recovery skip", func(t *testing.T) {
		// One slot covers the head's TEXT datum; the EMPTY-LIST operands
		// ref then has nowhere to go. The closing "}" was already
		// consumed while scanning the head, so the cursor is already
		// past this form when the allocator fails.
		alloc := datum.NewSlotAllocator(1)
		p := parser.New(classifier.Default(), alloc, bindings.Empty{})

		results := parseAll(p, "{x}y")
		require.Len(t, results, 2)
		assert.True(t, kulerr.Is(results[0].Err, kulerr.KindAllocExhausted))
		require.NoError(t, results[1].Err)
		assertDatum(t, wText("y"), results[1].Datum, "item[1]")
	})

	t.Run("nest-end not yet found requires a recovery skip", func(t *testing.T) {
		// No slots at all: allocating the operator ref itself fails
		// before the matching "}" has been located, so the parser must
		// scan forward to find and consume it before resuming.
		alloc := datum.NewSlotAllocator(0)
		p := parser.New(classifier.Default(), alloc, bindings.Empty{})

		results := parseAll(p, "{x y}z")
		require.Len(t, results, 2)
		assert.True(t, kulerr.Is(results[0].Err, kulerr.KindAllocExhausted))
		require.NoError(t, results[1].Err)
		assertDatum(t, wText("z"), results[1].Datum, "item[1]")
	})
}

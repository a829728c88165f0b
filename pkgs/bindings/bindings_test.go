package bindings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/kul/pkgs/bindings"
	"github.com/opal-lang/kul/pkgs/datum"
	"github.com/opal-lang/kul/pkgs/text"
)

func TestEmpty_NeverBinds(t *testing.T) {
	_, ok := bindings.Empty{}.Lookup(text.FromString("anything"))
	assert.False(t, ok)
}

func echoOperative(raw text.Text, alloc datum.Allocator, bnd bindings.Bindings) (datum.Datum, error) {
	return datum.TextValue(raw), nil
}

func TestMap_RegisterAndLookup(t *testing.T) {
	m := bindings.NewMap()
	c := bindings.Combiner{Kind: bindings.Operative, Text: echoOperative}
	require.NoError(t, m.Register(text.FromString("quote"), c))

	got, ok := m.Lookup(text.FromString("quote"))
	require.True(t, ok)
	assert.Equal(t, bindings.Operative, got.Kind)

	_, ok = m.Lookup(text.FromString("unknown"))
	assert.False(t, ok)
}

func TestMap_LookupIsValueEquality(t *testing.T) {
	m := bindings.NewMap()
	c := bindings.Combiner{Kind: bindings.Applicative}
	// Register via a two-chunk Text; lookup via a single-chunk Text with
	// the same character sequence — these must compare equal because
	// canonicalKey hashes the character sequence, not the chunk shape.
	chained := text.FromChunks(
		text.RuneChunkFromString("qu", 0),
		text.RuneChunkFromString("ote", 0),
	)
	require.NoError(t, m.Register(chained, c))

	_, ok := m.Lookup(text.FromString("quote"))
	assert.True(t, ok)
}

func TestMap_RegisterReplacesExistingBinding(t *testing.T) {
	m := bindings.NewMap()
	require.NoError(t, m.Register(text.FromString("x"), bindings.Combiner{Kind: bindings.Operative}))
	require.NoError(t, m.Register(text.FromString("x"), bindings.Combiner{Kind: bindings.Applicative}))

	got, ok := m.Lookup(text.FromString("x"))
	require.True(t, ok)
	assert.Equal(t, bindings.Applicative, got.Kind)
}

func TestMap_KnownNames(t *testing.T) {
	m := bindings.NewMap()
	require.NoError(t, m.Register(text.FromString("foo"), bindings.Combiner{}))
	require.NoError(t, m.Register(text.FromString("bar"), bindings.Combiner{}))

	names := m.KnownNames()
	assert.ElementsMatch(t, []string{"foo", "bar"}, names)
}

func TestSuggest(t *testing.T) {
	known := []string{"quote", "unquote", "lambda"}

	got, ok := bindings.Suggest("qute", known)
	require.True(t, ok)
	assert.Equal(t, "quote", got)

	_, ok = bindings.Suggest("zzz-no-match-zzz", known)
	assert.False(t, ok)

	_, ok = bindings.Suggest("anything", nil)
	assert.False(t, ok)
}

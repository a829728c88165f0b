package bindings

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/opal-lang/kul/pkgs/text"
)

// canonicalKey turns an operator's character sequence into a fixed-size
// comparable map key: CBOR-encode it deterministically (the same
// cbor.CanonicalEncOptions approach core/planfmt/canonical.go uses for
// plan hashing) and hash the result with BLAKE2b-256 (the hash family
// core/sdk/secret/idfactory.go uses, there keyed, here unkeyed since
// this has no secrecy requirement — only collision resistance, so
// operator text can be compared for value-equality in O(1) instead of
// rune-by-rune on every lookup).
func canonicalKey(op text.Text) ([32]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return [32]byte{}, fmt.Errorf("bindings: building canonical CBOR encoder: %w", err)
	}

	items := op.Iter()
	runes := make([]int32, len(items))
	for i, it := range items {
		runes[i] = it.Ch
	}

	encoded, err := encMode.Marshal(runes)
	if err != nil {
		return [32]byte{}, fmt.Errorf("bindings: encoding operator text: %w", err)
	}

	return blake2b.Sum256(encoded), nil
}

// Map is a mutex-protected operator-to-Combiner registry, the shared-
// mutable-state pattern pkgs/decorators.Registry uses for its decorator
// table, adapted here to value-equality lookup via canonicalKey instead
// of registration-by-name. Unlike the teacher's package-level registry,
// NewMap never installs a hidden global — every Parser gets its own,
// or callers share one explicitly.
type Map struct {
	mu   sync.RWMutex
	byKey map[[32]byte]Combiner
	names map[[32]byte]string // retained only for Suggest's fuzzy-match candidates
}

// NewMap returns an empty, ready-to-use registry.
func NewMap() *Map {
	return &Map{
		byKey: make(map[[32]byte]Combiner),
		names: make(map[[32]byte]string),
	}
}

// Register binds operator to c, replacing any existing binding for the
// same operator text.
func (m *Map) Register(operator text.Text, c Combiner) error {
	key, err := canonicalKey(operator)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[key] = c
	m.names[key] = operator.String()
	return nil
}

// Lookup implements Bindings.
func (m *Map) Lookup(operator text.Text) (Combiner, bool) {
	key, err := canonicalKey(operator)
	if err != nil {
		return Combiner{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byKey[key]
	return c, ok
}

// KnownNames returns the operator strings currently registered, for use
// with Suggest.
func (m *Map) KnownNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.names))
	for _, n := range m.names {
		names = append(names, n)
	}
	return names
}

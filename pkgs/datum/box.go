package datum

// BoxRef is a uniquely-owned handle backed by a plain Go pointer —
// kul's baseline Ref kind, analogous to the original's Box-based
// allocator and to the teacher's plain heap-allocated AST nodes
// (core/ast.go builds nodes the same way, by `&Type{...}` and letting
// the Go garbage collector reclaim them). TryTake always succeeds:
// nothing else can be holding a BoxRef to the same node.
type BoxRef struct {
	p *Datum
}

func (r BoxRef) Value() Datum { return *r.p }

func (r BoxRef) TryTake(replacement Datum) (Datum, bool) {
	old := *r.p
	*r.p = replacement
	return old, true
}

func (r BoxRef) Set(val Datum) { *r.p = val }

// BoxAllocator mints BoxRefs. It never fails and needs no state —
// kul's zero-value default allocator.
type BoxAllocator struct{}

func (BoxAllocator) NewDatum(val Datum) (Ref, error) {
	d := val
	return BoxRef{p: &d}, nil
}

package datum

// rcNode is the shared allocation an RcRef family of handles all point
// at, carrying its own strong/weak counts rather than relying on a
// language-level Rc<T> (Go has none) — modeled on the original's
// RcLike/RcLikeAtomicCounts abstraction over Rc<RefCell<_>>, simplified
// to plain (non-atomic) ints since RcRef is documented single-thread-only.
type rcNode struct {
	val    Datum
	strong int
	weak   int
}

// RcRef is a single-threaded, reference-counted Ref. Multiple RcRefs
// (via Clone) may share one node; TryTake only succeeds when this
// handle is the sole strong owner and no weak handle exists, mirroring
// Rc::get_mut's aliasing rule.
type RcRef struct {
	n *rcNode
}

// NewRc wraps val as a freshly allocated, singly-owned RcRef.
func NewRc(val Datum) RcRef {
	return RcRef{n: &rcNode{val: val, strong: 1}}
}

func (r RcRef) Value() Datum { return r.n.val }

func (r RcRef) TryTake(replacement Datum) (Datum, bool) {
	if r.n.strong != 1 || r.n.weak != 0 {
		return Datum{}, false
	}
	old := r.n.val
	r.n.val = replacement
	return old, true
}

func (r RcRef) Set(val Datum) { r.n.val = val }

// Clone returns a new strong handle to the same node, incrementing the
// strong count. Box and Slot handles have no Clone; pkgs/dropalgo tells
// the kinds apart by ReleaseStrong (Rc/Arc) and Free (Slot).
func (r RcRef) Clone() Ref {
	r.n.strong++
	return RcRef{n: r.n}
}

// WeakRc is a non-owning handle: it keeps the allocation's bookkeeping
// alive but never counts toward TryTake's uniqueness check succeeding,
// and Upgrade fails once strong has dropped to zero.
type WeakRc struct {
	n *rcNode
}

func (r RcRef) Downgrade() WeakRc {
	r.n.weak++
	return WeakRc{n: r.n}
}

func (w WeakRc) Upgrade() (RcRef, bool) {
	if w.n.strong == 0 {
		return RcRef{}, false
	}
	w.n.strong++
	return RcRef{n: w.n}, true
}

// ReleaseStrong decrements the strong count by one, as happens when one
// of several cloned RcRefs to the same node goes out of scope. Used by
// pkgs/dropalgo to model the ordinary Rc::drop that runs on a child Ref
// the algorithm abandons rather than restructures.
func (r RcRef) ReleaseStrong() {
	if r.n.strong > 0 {
		r.n.strong--
	}
}

// ReleaseWeak decrements the weak count by one.
func (w WeakRc) ReleaseWeak() {
	if w.n.weak > 0 {
		w.n.weak--
	}
}

// RcAllocator mints freshly-owned RcRefs. Like BoxAllocator it never
// fails; sharing happens afterward via Clone, not at allocation time.
type RcAllocator struct{}

func (RcAllocator) NewDatum(val Datum) (Ref, error) {
	return NewRc(val), nil
}

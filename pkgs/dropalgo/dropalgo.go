// Package dropalgo implements the stack-safe, iterative tree-teardown
// algorithm spec.md §4.6 and §9 describe: restructuring a deep
// COMBINATION/LIST spine into a form release can walk in Θ(1) stack
// depth, instead of recursing one call frame per level. It is a direct
// port of the original's drop_datum_algo1 (src/drop.rs), generalized
// over any datum.Ref kind via the classification and rotation rules
// that file documents at length.
//
// Go's garbage collector makes this component unnecessary for plain
// memory safety — nothing in Go can stack-overflow a goroutine by
// recursively invoking destructors the way Rust's Drop glue can. It
// still earns its place here for two reasons spec.md §9 anticipates:
// datum.SlotAllocator's capacity is not GC-managed and needs its slots
// returned explicitly, and datum.RcRef/ArcRef's reference counts need
// the same explicit bookkeeping a Drop impl would give them in the
// original. Release does both, walking the tree iteratively either way.
package dropalgo

import "github.com/opal-lang/kul/pkgs/datum"

// side names which child of a branch a step is operating on.
type side int

const (
	sideNone side = iota
	sideLeft
	sideRight
)

// Release tears down root's subtree iteratively. After it returns,
// root's own Value() is a cheap leaf (if the swap succeeded) or its
// original, untouched value (if shared ownership prevented any
// restructuring) — either way, safe for the caller to discard through
// whatever means root's own Ref kind normally uses (letting a BoxRef
// become unreachable, decrementing an RcRef/ArcRef, or freeing a
// SlotRef). Release does not do that last step for root itself, only
// for the descendants it unlinks along the way — mirroring the
// original, where drop_datum_algo1 runs inside a Drop impl and the
// struct's own field is deallocated by the compiler immediately after
// the function returns.
func Release(root datum.Ref) {
	top := root.Value()
	if !datum.IsBranch(top) {
		return
	}

	topDatum, ok := root.TryTake(datum.EmptyListValue())
	if !ok {
		// Shared ownership elsewhere still holds the real value; nothing
		// more to do here.
		return
	}

	lock := sideNone

	for {
		left, right, ok := datum.Children(topDatum)
		if !ok {
			// topDatum is always a branch here (the root's taken value, a
			// taken child, or a NewBranch), so this only guards Children.
			return
		}

		leftBranch := datum.IsBranch(left.Value())
		rightBranch := datum.IsBranch(right.Value())

		// Pick a side to take out, preferring whichever side the current
		// mode lock demands, then giving left first refusal when both
		// sides branch and no lock is set yet.
		var selectedSide side
		var selected, other datum.Ref
		var otherBranch bool
		switch {
		case leftBranch && !rightBranch, lock == sideLeft && leftBranch && rightBranch:
			selectedSide, selected, other, otherBranch = sideLeft, left, right, rightBranch
		case !leftBranch && rightBranch, lock == sideRight && leftBranch && rightBranch:
			selectedSide, selected, other, otherBranch = sideRight, right, left, leftBranch
		case lock == sideNone && leftBranch && rightBranch:
			selectedSide, selected, other, otherBranch = sideLeft, left, right, rightBranch
		default:
			// Neither side branches: restructuring is finished. Release
			// both children and stop.
			finalize(left)
			finalize(right)
			return
		}

		taken, tookOK := selected.TryTake(datum.EmptyListValue())
		if !tookOK {
			// Could not get exclusive access (shared ownership). If we
			// were choosing freely between two branching sides, retry the
			// other one before giving up.
			if lock == sideNone && leftBranch && rightBranch {
				selectedSide = oppositeSide(selectedSide)
				selected, other = other, selected
				otherBranch = !otherBranch
				taken, tookOK = selected.TryTake(datum.EmptyListValue())
			}
			if !tookOK {
				finalize(left)
				finalize(right)
				return
			}
		}

		subLeft, subRight, _ := datum.Children(taken) // taken is always a branch: its Ref was classified Branch above

		if otherBranch {
			// Both sides branch: restructure mutatively, reusing
			// `selected`'s own Ref slot as the new link on the opposite
			// side, without dropping anything yet.
			var oldsub, newLeft, newRight datum.Ref
			switch selectedSide {
			case sideLeft:
				oldsub, newLeft, newRight = subLeft, subRight, other
			case sideRight:
				oldsub, newLeft, newRight = subRight, other, subLeft
			}
			selected.Set(datum.NewBranch(newLeft, newRight))
			switch selectedSide {
			case sideLeft:
				topDatum = datum.NewBranch(oldsub, selected)
			case sideRight:
				topDatum = datum.NewBranch(selected, oldsub)
			}
			if lock == sideNone {
				lock = selectedSide
			}
		} else {
			// The other side is a leaf: descend directly into the taken
			// branch, releasing the now-empty `selected` slot and the
			// leaf `other` sibling — no further recursion is possible
			// down that path.
			finalize(selected)
			finalize(other)
			topDatum = taken
			lock = sideNone
		}
	}
}

func oppositeSide(s side) side {
	if s == sideLeft {
		return sideRight
	}
	return sideLeft
}

// strongReleaser is implemented by Ref kinds whose ownership is shared
// (datum.RcRef, datum.ArcRef): releasing one abandoned handle means
// decrementing its strong count, not discarding the node outright.
type strongReleaser interface {
	ReleaseStrong()
}

// slotFreer is implemented by Ref kinds with externally-bounded
// capacity (datum.SlotRef): releasing a handle returns its slot.
type slotFreer interface {
	Free()
}

// finalize abandons a child Ref the algorithm is done with. It first
// recursively (but still Θ(1)-stack, since Release itself is iterative)
// flattens anything still left under ref, then performs the concrete
// teardown step its Ref kind needs: decrementing a shared refcount,
// returning a slot to its allocator, or — for datum.BoxRef — nothing at
// all, since an unreachable *Datum is reclaimed by the Go garbage
// collector on its own.
func finalize(ref datum.Ref) {
	Release(ref)
	switch r := ref.(type) {
	case strongReleaser:
		r.ReleaseStrong()
	case slotFreer:
		r.Free()
	}
}

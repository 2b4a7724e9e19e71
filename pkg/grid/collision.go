package grid

import (
	"github.com/matzehuels/bentogrid/pkg/errors"
)

// =============================================================================
// Collision Resolver
// =============================================================================

// FixCollisions resolves the overlaps caused by moving or resizing moved,
// whose geometry in viewport v has already been set to its new value.
//
// moved is clamped into the grid horizontally and then never moves again.
// Every other item it now overlaps is pushed straight down, in reading order,
// to just below moved. A pushed item that lands on a third item pushes that
// one down first, depth-first, so chains settle in a stable order. Pushed
// items keep their x. Unless skipCompact is set, the layout is compacted
// afterwards.
//
// moved must be one of items; passing a foreign item is a programming error
// and panics.
func FixCollisions(items []*Item, moved *Item, v Viewport, skipCompact bool) {
	m := indexOf(items, moved)
	if m < 0 {
		panic(errors.New(errors.ErrCodeInternal, "moved item %q is not part of the layout", moved.ID))
	}

	moved.clampX(v)

	r := resolver{items: items, moved: m, v: v}
	for _, i := range r.colliders() {
		items[i].clampX(v)
		r.pushDown(i, m)
	}

	if !skipCompact {
		CompactItems(items, v)
	}
}

// resolver pushes items around by index so that a cascade can recurse into
// other items of the same slice.
type resolver struct {
	items []*Item
	moved int
	v     Viewport
}

// colliders returns the indices of items overlapping the moved item in
// reading order.
func (r *resolver) colliders() []int {
	movedRect := r.items[r.moved].Rect(r.v)
	var hits []int
	for _, i := range readingOrder(r.items, r.v) {
		if i != r.moved && movedRect.Overlaps(r.items[i].Rect(r.v)) {
			hits = append(hits, i)
		}
	}
	return hits
}

// pushDown moves items[target] to just below items[blocker] (if it is not
// already lower) and then clears everything it lands on. Items it lands on are
// pushed below it first; the moved item is never pushed, target goes below it
// instead. Each step strictly increases some y, so the cascade terminates.
func (r *resolver) pushDown(target, blocker int) {
	t := r.items[target]
	if below := r.items[blocker].Rect(r.v).Bottom(); t.Rect(r.v).Y < below {
		t.setY(r.v, below)
	}

	for {
		hit := firstHit(r.items, target, r.v)
		if hit < 0 {
			return
		}
		if hit == r.moved {
			t.setY(r.v, r.items[hit].Rect(r.v).Bottom())
			continue
		}
		r.pushDown(hit, target)
	}
}

// =============================================================================
// Global Normalizer
// =============================================================================

// FixAllCollisions turns an arbitrary item set into a valid layout in
// viewport v. Items are visited in reading order; items visited earlier have
// priority and are never moved by later ones. Each item is clamped into the
// grid and pushed below every earlier item it overlaps, rescanning from the
// top after every push. The result is compacted.
func FixAllCollisions(items []*Item, v Viewport) {
	order := readingOrder(items, v)

	for n, i := range order {
		it := items[i]
		it.clampX(v)

	rescan:
		for {
			r := it.Rect(v)
			for _, j := range order[:n] {
				if other := items[j].Rect(v); r.Overlaps(other) {
					it.setY(v, other.Bottom())
					continue rescan
				}
			}
			break
		}
	}

	CompactItems(items, v)
}

// =============================================================================
// Compactor
// =============================================================================

// CompactItems moves every item in viewport v up one row at a time, top to
// bottom, until it would collide or leave the grid. It is a greedy settling
// pass: deterministic for a given input and idempotent.
func CompactItems(items []*Item, v Viewport) {
	for _, i := range readingOrder(items, v) {
		it := items[i]
		for {
			y := it.Rect(v).Y
			if y <= 0 {
				break
			}
			it.setY(v, y-1)
			if collides(items, i, v) {
				it.setY(v, y)
				break
			}
		}
	}
}

// Settled reports whether no item in viewport v could move up a row.
func Settled(items []*Item, v Viewport) bool {
	for i, it := range items {
		y := it.Rect(v).Y
		if y == 0 {
			continue
		}
		it.setY(v, y-1)
		free := !collides(items, i, v)
		it.setY(v, y)
		if free {
			return false
		}
	}
	return true
}

// Valid reports whether the layout in viewport v is in bounds and free of
// overlaps. It does not check that the layout is settled.
func Valid(items []*Item, v Viewport) bool {
	cols := Columns()
	for i, it := range items {
		r := it.Rect(v)
		if r.X < 0 || r.Y < 0 || r.W <= 0 || r.H <= 0 || r.Right() > cols {
			return false
		}
		for _, other := range items[i+1:] {
			if Overlaps(it, other, v) {
				return false
			}
		}
	}
	return true
}

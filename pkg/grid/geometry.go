package grid

import (
	"encoding/json"
	"reflect"
)

// Rect is an axis-aligned rectangle in grid cells. It covers the half-open
// ranges [X, X+W) and [Y, Y+H).
type Rect struct {
	X, Y, W, H int
}

// Right returns the first column to the right of the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Overlaps reports whether r and o intersect on both axes.
// Rectangles that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X &&
		r.Y < o.Bottom() && r.Bottom() > o.Y
}

// Overlaps reports whether a and b intersect in viewport v.
// An item never overlaps itself.
func Overlaps(a, b *Item, v Viewport) bool {
	if a == b {
		return false
	}
	return a.Rect(v).Overlaps(b.Rect(v))
}

// Clamp limits value to [lo, hi]. When hi < lo, lo wins, which keeps items
// wider than the grid anchored at column 0.
func Clamp(value, lo, hi int) int {
	return max(min(value, hi), lo)
}

// collides reports whether items[i] overlaps any other item.
func collides(items []*Item, i int, v Viewport) bool {
	return firstHit(items, i, v) >= 0
}

// firstHit returns the index of the first item (in slice order) that overlaps
// items[i], or -1.
func firstHit(items []*Item, i int, v Viewport) int {
	r := items[i].Rect(v)
	for j, other := range items {
		if j == i || other == items[i] {
			continue
		}
		if r.Overlaps(other.Rect(v)) {
			return j
		}
	}
	return -1
}

// Equal reports whether two items are the same card: identity, type, content,
// color, page and both geometries. Timestamps and versions are ignored.
func Equal(a, b *Item) bool {
	if a.ID != b.ID || a.CardType != b.CardType || a.Color != b.Color || a.Page != b.Page {
		return false
	}
	if a.Rect(Desktop) != b.Rect(Desktop) || a.Rect(Mobile) != b.Rect(Mobile) {
		return false
	}
	return sameData(a.CardData, b.CardData)
}

// sameData compares card payloads by their JSON encoding so values decoded
// from storage (float64 numbers) compare equal to freshly built ones (ints).
func sameData(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return string(ja) == string(jb)
}

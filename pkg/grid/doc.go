// Package grid implements the bento-grid layout engine.
//
// # Overview
//
// A bento page is a set of rectangular cards ([Item]) placed on a grid that is
// [Columns] cells wide and unbounded downwards. Every item carries two
// independent geometries, one per [Viewport]: desktop (x, y, w, h) and mobile
// (mobileX, mobileY, mobileW, mobileH). All functions in this package operate
// on exactly one viewport at a time and leave the other geometry untouched.
//
// After every operation the following holds for the viewport that was touched:
//
//   - No two items overlap (half-open rectangles, see [Overlaps]).
//   - Every item is in bounds: 0 <= x and x+w <= Columns.
//   - The layout is settled: no item can move up one row without colliding
//     or leaving the grid.
//
// # Operations
//
//   - [FixCollisions]: resolve the overlaps introduced by moving or resizing a
//     single item. Colliders are pushed strictly downwards in reading order,
//     cascading depth-first; their x never changes.
//   - [FixAllCollisions]: re-settle an arbitrary item set. Items higher up
//     keep their place, later items are pushed below them.
//   - [CompactItems]: gravity-pack everything upwards.
//   - [SetPositionOfNewItem] and [FindValidPosition]: row-major first-fit
//     placement for new items.
//   - [SimulateFinalPosition]: dry-run a move on a copy of the layout.
//
// # Determinism
//
// Every pass orders items by (y, x) with a stable sort before processing, so
// the result only depends on the geometry and on the input order of items
// sharing the same cell. Running any pass on an already settled layout is a
// no-op, which lets interactive callers re-run them on every drag tick.
//
// # Concurrency
//
// Functions mutate the items they are given in place and are not safe for
// concurrent use on the same slice. There is no internal state besides the
// column count, which is configured once at start-up with [SetColumns].
package grid

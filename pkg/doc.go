// Package pkg provides the core libraries for Bentogrid page layouts.
//
// # Overview
//
// A page is a set of cards placed on a fixed-width grid. Every card carries
// two independent geometries, one for desktop and one for mobile, and the
// libraries here keep both of them valid: in bounds, free of overlaps and
// settled towards the top. The pkg directory is organized into four areas:
//
//  1. Layout logic ([grid], [drag], [mirror]) - pure functions over items
//  2. Pages ([cards], [document], [session]) - card types and page documents
//  3. Persistence ([store], [cache]) - where pages live and how reads are cached
//  4. Surfaces ([pipeline], [render], [server]) - what the CLI and HTTP API run
//
// # Architecture
//
// The typical data flow when a page is loaded and edited:
//
//	Card records (file or MongoDB)
//	         ↓
//	    [store] + [cache] (read through the cache)
//	         ↓
//	    [document] (decode, migrate, validate)
//	         ↓
//	    [grid] (normalize both viewports)
//	         ↓
//	    [session] / [drag] (edits, collision handling, mirroring)
//	         ↓
//	    [render] (terminal or SVG) / [store] (save changed cards)
//
// # Quick Start
//
// Settle a page and render it:
//
//	doc, _ := document.ReadFile("alice.json")
//	grid.FixAllCollisions(doc.Items, grid.Desktop)
//	grid.FixAllCollisions(doc.Items, grid.Mobile)
//	fmt.Println(render.Terminal(doc.Items, grid.Desktop))
//
// Move a card and let the rest of the page make room:
//
//	sess, _ := session.New(doc, cards.Default, session.DefaultTTL)
//	_ = sess.Move("card-a", 0, 0)
//
// # Main Packages
//
// ## Layout
//
// [grid] - Items, viewports, the collision resolver, the global normalizer,
// the compactor and free-spot placement. Everything else builds on it.
//
// [drag] - Pointer drags in pixel space: hysteresis snapping, swap and push
// previews, and committing or cancelling a drag.
//
// [mirror] - Derives one viewport's layout from the other.
//
// ## Pages
//
// [cards] - The card type registry with size limits and default colors.
//
// [document] - Page documents, the JSON codec, validation and the card
// level diff used when saving.
//
// [session] - An editing session over one page, plus drafts that survive
// a restart.
//
// ## Persistence
//
// [store] - Card storage with file and MongoDB backends.
//
// [cache] - Read caching with file, Redis and no-op backends, key scoping
// and retry of transient failures.
//
// ## Surfaces
//
// [pipeline] - Load, lay out and save pages. Shared by the CLI and the API
// so both behave the same.
//
// [render] - Terminal and SVG renderings of a layout.
//
// [server] - The HTTP API.
//
// ## Support
//
// [config] - The TOML configuration file.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for timing layout and storage operations.
//
// [buildinfo] - Version information stamped at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/grid/...               # Specific package
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/grid
// [drag]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/drag
// [mirror]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/mirror
// [cards]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/cards
// [document]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/document
// [session]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/session
// [store]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/buildinfo
package pkg

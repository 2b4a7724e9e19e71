// Package pipeline provides the page pipeline shared by the CLI and the HTTP
// server.
//
// This package implements the load → migrate → normalize → save cycle of a
// page and the stateless layout operations, so that every entry point
// behaves the same way and caching lives in one place.
//
// # Architecture
//
// Loading a page runs three stages:
//
//  1. Fetch: read the page from the cache, or from the store on a miss
//  2. Migrate: run each card type's migration hook
//  3. Normalize: re-settle both viewports so the layout is valid
//
// Saving diffs the edited page against the stored one and writes only the
// cards that changed, retrying transient store failures.
//
// # Usage
//
//	runner := pipeline.NewRunner(st, c, nil, cards.Default, logger)
//	res, err := runner.Load(ctx, pipeline.Options{Handle: "alice.bsky.social"})
//	if err != nil {
//	    return err
//	}
//	// ... edit res.Doc ...
//	saved, err := runner.Save(ctx, res.Doc, pipeline.Options{})
//
// Run a single layout operation:
//
//	out, _, err := runner.Layout(ctx, pipeline.LayoutRequest{
//	    Op:    pipeline.OpSettle,
//	    Items: items,
//	})
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPageTTL is how long a loaded page stays cached.
	DefaultPageTTL = 10 * time.Minute

	// DefaultLayoutTTL is how long a computed layout stays cached.
	DefaultLayoutTTL = time.Hour
)

// =============================================================================
// Options
// =============================================================================

// Options addresses a page and tunes how it is loaded or saved.
type Options struct {
	Handle string `json:"handle"`
	Page   string `json:"page,omitempty"`

	// Refresh bypasses the cache on load.
	Refresh bool `json:"refresh,omitempty"`

	// SkipNormalize keeps the stored geometry as is on load.
	SkipNormalize bool `json:"skip_normalize,omitempty"`

	// BaseURL is where published pages live; used to fill in the
	// publication URL on save.
	BaseURL string `json:"base_url,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the page address and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Page == "" {
		o.Page = document.DefaultPage
	}
	if err := errors.ValidateHandle(o.Handle); err != nil {
		return err
	}
	if err := errors.ValidatePage(o.Page); err != nil {
		return err
	}
	o.setRuntimeDefaults()
	o.validated = true
	return nil
}

func (o *Options) setRuntimeDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = document.DefaultBaseURL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// =============================================================================
// Results
// =============================================================================

// LoadResult is a loaded, migrated and normalized page.
type LoadResult struct {
	Doc *document.Document

	// CacheHit is true when the page came from the cache.
	CacheHit bool

	// Migrated is the number of cards changed by migration hooks.
	Migrated int

	Stats Stats
}

// SaveResult describes a save.
type SaveResult struct {
	Puts    int
	Deletes int

	// Skipped is true when nothing differed from the stored page.
	Skipped bool

	Stats Stats
}

// Stats contains pipeline execution timings.
type Stats struct {
	FetchTime     time.Duration
	NormalizeTime time.Duration
	WriteTime     time.Duration
}

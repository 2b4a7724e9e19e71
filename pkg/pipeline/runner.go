package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bentogrid/pkg/cache"
	"github.com/matzehuels/bentogrid/pkg/cards"
	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/observability"
	"github.com/matzehuels/bentogrid/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't keep
// pages around. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Store    store.Store
	Cache    cache.Cache
	Keyer    cache.Keyer
	Registry *cards.Registry
	Logger   *log.Logger

	// PageTTL is how long loaded pages and page lists stay cached.
	PageTTL time.Duration

	now func() time.Time
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If reg is nil, cards.Default is used.
// st may be nil for a runner that only computes layouts.
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, reg *cards.Registry, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if reg == nil {
		reg = cards.Default
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:    st,
		Cache:    c,
		Keyer:    keyer,
		Registry: reg,
		Logger:   logger,
		PageTTL:  DefaultPageTTL,
		now:      time.Now,
	}
}

func (r *Runner) requireStore() error {
	if r.Store == nil {
		return errors.New(errors.ErrCodeUnsupported, "no page store configured")
	}
	return nil
}

// =============================================================================
// Load
// =============================================================================

// Load fetches a page, cache first unless opts.Refresh is set, runs the card
// migrations and normalizes both viewports.
func (r *Runner) Load(ctx context.Context, opts Options) (res *LoadResult, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := r.requireStore(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Handle, opts.Page)
	start := time.Now()
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Doc.Cards)
		}
		hooks.OnLoadComplete(ctx, opts.Handle, opts.Page, n, time.Since(start), err)
	}()

	res = &LoadResult{}
	doc, hit, err := r.fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Doc = doc
	res.CacheHit = hit
	res.Stats.FetchTime = time.Since(start)

	r.Logger.Debug("fetched page",
		"handle", opts.Handle,
		"page", opts.Page,
		"cards", len(doc.Cards),
		"cached", hit,
		"duration", res.Stats.FetchTime)

	res.Migrated = r.Registry.Migrate(doc.Cards)
	if res.Migrated > 0 {
		r.Logger.Info("migrated cards", "page", opts.Page, "count", res.Migrated)
	}

	if !opts.SkipNormalize {
		normStart := time.Now()
		Normalize(ctx, doc.Items())
		res.Stats.NormalizeTime = time.Since(normStart)
	}
	return res, nil
}

// fetch returns the stored page, going through the cache.
func (r *Runner) fetch(ctx context.Context, opts Options) (*document.Document, bool, error) {
	key := r.Keyer.PageKey(opts.Handle, opts.Page)

	if !opts.Refresh {
		doc, hit, err := cache.GetJSON[*document.Document](ctx, r.Cache, "page", key)
		if err != nil {
			r.Logger.Warn("page cache unavailable", "error", err)
		} else if hit && doc != nil {
			return doc, true, nil
		}
	}

	var doc *document.Document
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		doc, err = r.Store.Load(ctx, opts.Handle, opts.Page)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if err := cache.SetJSON(ctx, r.Cache, "page", key, doc, r.PageTTL); err != nil {
		r.Logger.Warn("cache page", "error", err)
	}
	return doc, false, nil
}

// Normalize re-settles items in both viewports.
func Normalize(ctx context.Context, items []*grid.Item) {
	for _, v := range []grid.Viewport{grid.Desktop, grid.Mobile} {
		start := time.Now()
		grid.FixAllCollisions(items, v)
		observability.Pipeline().OnNormalize(ctx, v.String(), len(items), time.Since(start))
	}
}

// =============================================================================
// Save
// =============================================================================

// Save writes doc back to the store. Only cards that differ from the stored
// page are written; removed cards are deleted. The page's publication
// metadata is filled in first. Cached copies are invalidated.
//
// The cards of doc are stamped as a side effect, see document.Diff.
func (r *Runner) Save(ctx context.Context, doc *document.Document, opts Options) (res *SaveResult, err error) {
	if err := document.Validate(doc); err != nil {
		return nil, err
	}
	opts.Handle, opts.Page = doc.Handle, doc.Page
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := r.requireStore(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnSaveStart(ctx, doc.Handle, doc.Page)
	start := time.Now()
	res = &SaveResult{}
	defer func() {
		hooks.OnSaveComplete(ctx, doc.Handle, doc.Page, res.Puts, res.Deletes, time.Since(start), err)
	}()

	stored, err := r.Store.Load(ctx, doc.Handle, doc.Page)
	if err != nil && !errors.Is(err, errors.ErrCodePageNotFound) {
		return res, err
	}
	res.Stats.FetchTime = time.Since(start)

	doc.EnsurePublication(opts.BaseURL)
	ch := document.Diff(stored, doc, r.now())
	res.Puts, res.Deletes = len(ch.Put), len(ch.Delete)

	if stored != nil && ch.Empty() && sameMeta(stored, doc) {
		res.Skipped = true
		r.Logger.Debug("page unchanged", "handle", doc.Handle, "page", doc.Page)
		return res, nil
	}

	writeStart := time.Now()
	err = cache.RetryWithBackoff(ctx, func() error {
		return r.Store.Save(ctx, doc, ch)
	})
	if err != nil {
		return res, err
	}
	res.Stats.WriteTime = time.Since(writeStart)

	r.invalidate(ctx, doc.Handle, doc.Page)
	r.Logger.Info("saved page",
		"handle", doc.Handle,
		"page", doc.Page,
		"puts", res.Puts,
		"deletes", res.Deletes,
		"duration", res.Stats.WriteTime)
	return res, nil
}

// sameMeta reports whether the page-level fields that Save writes are equal.
func sameMeta(a, b *document.Document) bool {
	if a.EditedOn != b.EditedOn || a.DID != b.DID {
		return false
	}
	ja, errA := json.Marshal([]any{a.Profile, a.Publication})
	jb, errB := json.Marshal([]any{b.Profile, b.Publication})
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// =============================================================================
// Pages
// =============================================================================

// Pages lists handle's saved pages, cache first.
func (r *Runner) Pages(ctx context.Context, handle string) ([]string, error) {
	if err := errors.ValidateHandle(handle); err != nil {
		return nil, err
	}
	if err := r.requireStore(); err != nil {
		return nil, err
	}

	key := r.Keyer.PagesKey(handle)
	if pages, hit, err := cache.GetJSON[[]string](ctx, r.Cache, "pages", key); err == nil && hit {
		return pages, nil
	}

	var pages []string
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		pages, err = r.Store.List(ctx, handle)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = cache.SetJSON(ctx, r.Cache, "pages", key, pages, r.PageTTL)
	return pages, nil
}

// Delete removes a page from the store and the cache.
func (r *Runner) Delete(ctx context.Context, opts Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := r.requireStore(); err != nil {
		return err
	}
	err := cache.RetryWithBackoff(ctx, func() error {
		return r.Store.Delete(ctx, opts.Handle, opts.Page)
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx, opts.Handle, opts.Page)
	r.Logger.Info("deleted page", "handle", opts.Handle, "page", opts.Page)
	return nil
}

func (r *Runner) invalidate(ctx context.Context, handle, page string) {
	for _, key := range []string{r.Keyer.PageKey(handle, page), r.Keyer.PagesKey(handle)} {
		if err := r.Cache.Delete(ctx, key); err != nil {
			r.Logger.Warn("invalidate cache", "key", key, "error", err)
		}
	}
}

// Close releases resources held by the runner (cache and store).
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

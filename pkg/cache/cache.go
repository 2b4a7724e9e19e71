// Package cache provides the caching layer in front of page storage.
//
// # Backends
//
//   - [FileCache]: JSON files under a directory, for the CLI
//   - [RedisCache]: Redis, for servers sharing one cache
//   - [NullCache]: caches nothing
//
// # Keys
//
// Keys are built by a [Keyer] so that every component agrees on the key
// layout. [ScopedKeyer] adds a namespace prefix, e.g. per environment.
//
// # Retries
//
// Backends (this package's and the stores') mark transient failures with
// [Retryable]; [RetryWithBackoff] retries exactly those.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/bentogrid/pkg/observability"
)

// DefaultTTL is how long a loaded page stays cached.
const DefaultTTL = 10 * time.Minute

// Cache is a byte-oriented key/value cache with per-entry expiry.
type Cache interface {
	// Get returns the cached value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GetJSON reads key and decodes it into a T. Entries that no longer decode
// are treated as misses. keyType labels the lookup for observability hooks.
func GetJSON[T any](ctx context.Context, c Cache, keyType, key string) (T, bool, error) {
	var v T
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return v, false, err
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return v, false, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		_ = c.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return v, false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}

// =============================================================================
// Keys
// =============================================================================

// Keyer builds cache keys.
type Keyer interface {
	// PageKey is the key of a loaded page.
	PageKey(handle, page string) string

	// PagesKey is the key of handle's page list.
	PagesKey(handle string) string

	// LayoutKey is the key of a computed layout, given the hash of its input.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts are the parameters a computed layout depends on besides its
// input items.
type LayoutKeyOpts struct {
	Op       string `json:"op"`
	Viewport string `json:"viewport"`
	Columns  int    `json:"columns"`
	Registry string `json:"registry,omitempty"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PageKey returns "page:<handle>:<page>".
func (DefaultKeyer) PageKey(handle, page string) string {
	return "page:" + handle + ":" + page
}

// PagesKey returns "pages:<handle>".
func (DefaultKeyer) PagesKey(handle string) string {
	return "pages:" + handle
}

// LayoutKey returns "layout:" followed by a hash of the input and options.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g. to
// keep staging and production apart in a shared Redis.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PageKey generates a prefixed key for a loaded page.
func (k *ScopedKeyer) PageKey(handle, page string) string {
	return k.prefix + k.inner.PageKey(handle, page)
}

// PagesKey generates a prefixed key for a page list.
func (k *ScopedKeyer) PagesKey(handle string) string {
	return k.prefix + k.inner.PagesKey(handle)
}

// LayoutKey generates a prefixed key for a computed layout.
func (k *ScopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}

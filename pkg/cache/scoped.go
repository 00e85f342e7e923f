package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// Useful when one Redis or MongoDB backend serves several diagram
// deployments that must not see each other's snapshots.
//
// Example usage:
//
//	// Instance-specific keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "org:acme:")
//
//	// Shared keys
//	global := NewDefaultKeyer()
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

// TreeKey generates a prefixed key for tree snapshot caching.
func (k *ScopedKeyer) TreeKey(source string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(source, opts)
}

// ContentKey generates a prefixed key for node content caching.
func (k *ScopedKeyer) ContentKey(treeHash, nodeID string) string {
	return k.prefix + k.inner.ContentKey(treeHash, nodeID)
}

// ExportKey generates a prefixed key for exported artifact caching.
func (k *ScopedKeyer) ExportKey(treeHash string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(treeHash, opts)
}

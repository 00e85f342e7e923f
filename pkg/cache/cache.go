// Package cache provides the caching layer for tree snapshots, node
// content, and exported artifacts.
//
// The package separates WHAT is cached (keys, built by a [Keyer]) from
// WHERE it is cached (bytes, stored by a [Cache]). Backends cover the three
// deployment shapes: files for the CLI, Redis for a shared service, MongoDB
// when snapshots should live next to other documents. [NullCache] disables
// caching without touching call sites.
package cache

import (
	"context"
	"time"
)

// Default TTLs per key family. Tree snapshots go stale with the upstream
// source, node content rarely changes, exports are derived and cheap to
// keep long.
const (
	TreeTTL    = time.Hour
	ContentTTL = 24 * time.Hour
	ExportTTL  = 7 * 24 * time.Hour
)

// Cache stores opaque bytes under string keys with optional expiry.
// Implementations must treat a missing key as (nil, false, nil), not an
// error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TreeKeyOpts are the fetch parameters that change what tree a source
// returns. Different options must never share a key.
type TreeKeyOpts struct {
	MaxDepth int    `json:"max_depth"`
	Variant  string `json:"variant,omitempty"`
}

// ExportKeyOpts are the render parameters baked into an exported artifact.
type ExportKeyOpts struct {
	Format string  `json:"format"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Keyer builds cache keys for the three cached families.
type Keyer interface {
	// TreeKey keys a tree snapshot fetched from a source.
	TreeKey(source string, opts TreeKeyOpts) string

	// ContentKey keys one node's preloaded content within a tree.
	ContentKey(treeHash, nodeID string) string

	// ExportKey keys a rendered artifact derived from a tree.
	ExportKey(treeHash string, opts ExportKeyOpts) string
}

// DefaultKeyer hashes options into stable keys with a per-family prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TreeKey generates a key for tree snapshot caching.
func (k *DefaultKeyer) TreeKey(source string, opts TreeKeyOpts) string {
	return hashKey("tree", source, opts)
}

// ContentKey generates a key for node content caching.
func (k *DefaultKeyer) ContentKey(treeHash, nodeID string) string {
	return "content:" + treeHash + ":" + nodeID
}

// ExportKey generates a key for exported artifact caching.
func (k *DefaultKeyer) ExportKey(treeHash string, opts ExportKeyOpts) string {
	return hashKey("export", treeHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

package datasource

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbit/pkg/cache"
	"github.com/matzehuels/orbit/pkg/hierarchy"
	"github.com/matzehuels/orbit/pkg/observability"
)

// CachingProvider layers a byte cache in front of another provider. Tree
// snapshots and node content are served from cache when fresh; misses fall
// through to the inner provider and populate the cache on the way back.
//
// It also satisfies the store's preloader contract: Preload fetches a
// node's content into the cache without returning it.
type CachingProvider struct {
	inner  Provider
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger

	// treeHash scopes content keys to the last fetched tree.
	treeHash string
}

// CachingOptions configures a CachingProvider.
type CachingOptions struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewCachingProvider wraps inner with the given cache. A nil cache
// degrades to the null cache, a nil keyer to the default keyer.
func NewCachingProvider(inner Provider, opts CachingOptions) *CachingProvider {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &CachingProvider{
		inner:  inner,
		cache:  opts.Cache,
		keyer:  opts.Keyer,
		logger: opts.Logger,
	}
}

// FetchTree returns the cached snapshot for source when fresh, otherwise
// fetches through and caches the result.
func (p *CachingProvider) FetchTree(ctx context.Context, source string) (*hierarchy.Tree, error) {
	key := p.keyer.TreeKey(source, cache.TreeKeyOpts{MaxDepth: hierarchy.MaxDepth})

	if data, hit, err := p.cache.Get(ctx, key); err == nil && hit {
		if t, err := hierarchy.UnmarshalTree(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "tree")
			p.rememberTree(data)
			return t, nil
		}
		// Corrupt entry: drop and refetch.
		_ = p.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "tree")

	t, err := p.inner.FetchTree(ctx, source)
	if err != nil {
		return nil, err
	}
	if data, err := hierarchy.MarshalTree(t); err == nil {
		p.rememberTree(data)
		if err := p.cache.Set(ctx, key, data, cache.TreeTTL); err != nil {
			p.logger.Warn("tree cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "tree", len(data))
		}
	}
	return t, nil
}

// FetchContent returns cached node content when present, otherwise fetches
// through and caches the result.
func (p *CachingProvider) FetchContent(ctx context.Context, nodeID string) ([]byte, error) {
	key := p.keyer.ContentKey(p.treeHash, nodeID)

	if data, hit, err := p.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "content")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "content")

	data, err := p.inner.FetchContent(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Set(ctx, key, data, cache.ContentTTL); err != nil {
		p.logger.Warn("content cache write failed", "node", nodeID, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "content", len(data))
	}
	return data, nil
}

// Preload warms the content cache for a node ahead of display.
func (p *CachingProvider) Preload(ctx context.Context, nodeID string) error {
	_, err := p.FetchContent(ctx, nodeID)
	return err
}

func (p *CachingProvider) rememberTree(data []byte) {
	p.treeHash = cache.Hash(data)
}

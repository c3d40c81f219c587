package collab

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key is the configuration tuple a configured client is cached under.
type Key struct {
	Provider    string
	Model       string
	Temperature float64
}

// BuildFunc constructs a ready-to-use Client for a key. Provider wiring
// lives with the caller so the pool stays free of provider imports.
type BuildFunc func(ctx context.Context, key Key) (Client, error)

// Pool is an explicit, process-owned cache of configured collaborator
// clients. It replaces ad-hoc per-process singletons: construction and
// teardown are explicit, and eviction is bounded by the LRU size.
type Pool struct {
	mu    sync.Mutex
	build BuildFunc
	cache *lru.Cache[Key, Client]
}

// NewPool creates a pool holding at most size clients.
func NewPool(size int, build BuildFunc) (*Pool, error) {
	if build == nil {
		return nil, fmt.Errorf("collab: pool build func is required")
	}
	cache, err := lru.New[Key, Client](size)
	if err != nil {
		return nil, fmt.Errorf("collab: create client cache: %w", err)
	}
	return &Pool{build: build, cache: cache}, nil
}

// Get returns the cached client for key, building and caching it on first
// use.
func (p *Pool) Get(ctx context.Context, key Key) (Client, error) {
	if client, ok := p.cache.Get(key); ok {
		return client, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Re-check after acquiring the build lock.
	if client, ok := p.cache.Get(key); ok {
		return client, nil
	}

	client, err := p.build(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("collab: build client for %s/%s: %w", key.Provider, key.Model, err)
	}
	p.cache.Add(key, client)
	return client, nil
}

// Purge drops every cached client. Call on process shutdown.
func (p *Pool) Purge() { p.cache.Purge() }

// Len returns the number of cached clients.
func (p *Pool) Len() int { return p.cache.Len() }

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"container/list"
	"sync"
)

// DefaultCacheBudget is the default resource cache memory budget.
const DefaultCacheBudget = 96 * 1024 * 1024

// ResourceCache is the pool of materialized GPU resources, indexed by
// scratch and unique keys, with least-recently-used eviction bounded by
// a memory budget.
//
// Lookups hand out Handles; a resource with live handles is in use and
// excluded from scratch matching and from eviction. A resource bound to
// a unique key additionally stays cached while the key's domain holds
// strong references, even with no live handles.
//
// All structural mutation is serialized by one cache-wide lock; key
// counter traffic stays lock-free inside the domain arena.
type ResourceCache struct {
	mu         sync.Mutex
	dev        Device
	scratch    map[string][]*cacheEntry
	unique     map[string]*cacheEntry
	lru        *list.List // front = most recently used
	totalBytes int
	maxBytes   int
}

type cacheEntry struct {
	resource Resource
	refs     int // guarded by ResourceCache.mu

	scratchKey ScratchKey
	uniqueKey  UniqueKey
	hasUnique  bool

	elem *list.Element
}

// Handle is a reference to a cached resource. The resource stays in use
// (never scratch-matched, never evicted) until Release.
type Handle struct {
	cache *ResourceCache
	entry *cacheEntry
}

// Resource returns the referenced resource.
func (h *Handle) Resource() Resource {
	return h.entry.resource
}

// Texture returns the referenced resource as a *Texture, or nil if it
// is some other resource kind.
func (h *Handle) Texture() *Texture {
	t, _ := h.entry.resource.(*Texture)
	return t
}

// UniqueKey returns the unique key the resource is bound to, or the
// empty key.
func (h *Handle) UniqueKey() UniqueKey {
	h.cache.mu.Lock()
	defer h.cache.mu.Unlock()
	if !h.entry.hasUnique {
		return UniqueKey{}
	}
	return h.entry.uniqueKey
}

// Release drops the reference. Safe to call once per handle.
func (h *Handle) Release() {
	c := h.cache
	c.mu.Lock()
	if h.entry.refs > 0 {
		h.entry.refs--
	}
	c.mu.Unlock()
}

// NewResourceCache creates a cache that frees evicted resources against
// dev, with the default memory budget.
func NewResourceCache(dev Device) *ResourceCache {
	return &ResourceCache{
		dev:      dev,
		scratch:  make(map[string][]*cacheEntry),
		unique:   make(map[string]*cacheEntry),
		lru:      list.New(),
		maxBytes: DefaultCacheBudget,
	}
}

// SetMaxBytes adjusts the memory budget. The new budget takes effect on
// the next purge; nothing is evicted here.
func (c *ResourceCache) SetMaxBytes(budget int) {
	c.mu.Lock()
	c.maxBytes = budget
	c.mu.Unlock()
}

// MaxBytes returns the memory budget.
func (c *ResourceCache) MaxBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxBytes
}

// TotalBytes returns the tracked memory of all cached resources.
func (c *ResourceCache) TotalBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBytes
}

// Count returns the number of cached resources.
func (c *ResourceCache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Insert registers a resource under its scratch key and returns a
// referenced handle to it.
func (c *ResourceCache) Insert(res Resource, scratchKey ScratchKey) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := &cacheEntry{
		resource:   res,
		refs:       1,
		scratchKey: scratchKey,
	}
	entry.elem = c.lru.PushFront(entry)
	if !scratchKey.Empty() {
		idx := scratchKey.index()
		c.scratch[idx] = append(c.scratch[idx], entry)
	}
	c.totalBytes += res.MemoryUsage()
	return &Handle{cache: c, entry: entry}
}

// FindScratch returns an idle resource whose scratch key equals key,
// atomically marking it in use, or nil when every matching resource is
// referenced or uniquely pinned.
func (c *ResourceCache) FindScratch(key ScratchKey) *Handle {
	if key.Empty() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.scratch[key.index()] {
		if entry.refs > 0 {
			continue
		}
		if entry.hasUnique {
			if entry.uniqueKey.StrongCount() > 0 {
				// Unique keys preempt scratch keys.
				continue
			}
			// Exclusivity has lapsed; the resource returns to the
			// scratch pool.
			c.removeUniqueBinding(entry)
		}
		entry.refs = 1
		c.lru.MoveToFront(entry.elem)
		return &Handle{cache: c, entry: entry}
	}
	return nil
}

// FindUnique returns the single resource bound to the identity key, or
// nil. Unlike scratch lookup, a unique lookup returns the resource even
// while it is referenced.
func (c *ResourceCache) FindUnique(key UniqueKey) *Handle {
	if key.Empty() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.unique[key.index()]
	if !ok {
		return nil
	}
	if entry.uniqueKey.StrongCount() <= 0 {
		// The domain lost its last strong reference; the binding is
		// dissolved and never comes back (a fresh domain is required).
		c.removeUniqueBinding(entry)
		return nil
	}
	entry.refs++
	c.lru.MoveToFront(entry.elem)
	return &Handle{cache: c, entry: entry}
}

// AssignUniqueKey binds the handle's resource to an identity key. Any
// resource previously bound to the key loses the binding (the identity
// is replaced, never duplicated); any key previously held by this
// resource is released first.
func (c *ResourceCache) AssignUniqueKey(h *Handle, key UniqueKey) {
	if key.Empty() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := h.entry
	if entry.hasUnique {
		c.removeUniqueBinding(entry)
	}
	idx := key.index()
	if prev, ok := c.unique[idx]; ok && prev != entry {
		c.removeUniqueBinding(prev)
	}
	key.AddReference(false)
	entry.uniqueKey = key
	entry.hasUnique = true
	c.unique[idx] = entry
}

// removeUniqueBinding dissolves an entry's unique binding. Caller holds mu.
func (c *ResourceCache) removeUniqueBinding(entry *cacheEntry) {
	if !entry.hasUnique {
		return
	}
	idx := entry.uniqueKey.index()
	if c.unique[idx] == entry {
		delete(c.unique, idx)
	}
	entry.uniqueKey.ReleaseReference(false)
	entry.uniqueKey = UniqueKey{}
	entry.hasUnique = false
}

// PurgeUntilMemoryTo evicts least-recently-used purgeable resources
// (no live handles, not pinned by a strong unique-key reference) until
// tracked memory is at or below budget or none remain. The cache may
// legitimately stay over budget when everything left is pinned.
func (c *ResourceCache) PurgeUntilMemoryTo(budget int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem := c.lru.Back()
	for elem != nil && c.totalBytes > budget {
		prev := elem.Prev()
		entry := elem.Value.(*cacheEntry)
		if c.purgeable(entry) {
			c.evict(entry)
		}
		elem = prev
	}
}

// PurgeToBudget evicts down to the configured budget.
func (c *ResourceCache) PurgeToBudget() {
	c.PurgeUntilMemoryTo(c.MaxBytes())
}

// purgeable reports whether an entry can be evicted. Caller holds mu.
func (c *ResourceCache) purgeable(entry *cacheEntry) bool {
	if entry.refs > 0 {
		return false
	}
	return !entry.hasUnique || entry.uniqueKey.StrongCount() <= 0
}

// evict removes an entry and frees its resource. Caller holds mu.
func (c *ResourceCache) evict(entry *cacheEntry) {
	c.removeUniqueBinding(entry)
	if !entry.scratchKey.Empty() {
		idx := entry.scratchKey.index()
		bucket := c.scratch[idx]
		for i, e := range bucket {
			if e == entry {
				c.scratch[idx] = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		if len(c.scratch[idx]) == 0 {
			delete(c.scratch, idx)
		}
	}
	c.lru.Remove(entry.elem)
	c.totalBytes -= entry.resource.MemoryUsage()
	entry.resource.Free(c.dev)
	Logger().Debug("resource evicted", "bytes", entry.resource.MemoryUsage(), "total", c.totalBytes)
}

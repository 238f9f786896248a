// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import "github.com/gogpu/vega/gpu"

// Context owns the per-context rendering state: the device, the
// resource cache, the proxy provider, and the deferred task queue.
// Everything it owns lives and dies with it; nothing is process-global.
//
// Recording (Canvas calls) must stay on one goroutine per context. GPU
// work happens only inside Flush, on the calling goroutine.
type Context struct {
	dev      gpu.Device
	cache    *gpu.ResourceCache
	manager  *gpu.DrawingManager
	provider *gpu.ProxyProvider
}

// NewContext creates a rendering context over dev.
func NewContext(dev gpu.Device) *Context {
	if dev == nil {
		return nil
	}
	cache := gpu.NewResourceCache(dev)
	manager := gpu.NewDrawingManager(cache)
	return &Context{
		dev:      dev,
		cache:    cache,
		manager:  manager,
		provider: gpu.NewProxyProvider(dev, cache, manager),
	}
}

// Device returns the backing device.
func (c *Context) Device() gpu.Device { return c.dev }

// Provider returns the context's proxy provider.
func (c *Context) Provider() *gpu.ProxyProvider { return c.provider }

// Flush executes all recorded render tasks in order against the device
// and leaves the task queue empty. Failed tasks are logged and skipped.
func (c *Context) Flush() {
	c.manager.Flush(c.dev)
}

// CacheLimit returns the resource cache memory budget in bytes.
func (c *Context) CacheLimit() int { return c.cache.MaxBytes() }

// SetCacheLimit adjusts the resource cache memory budget and purges
// down to it.
func (c *Context) SetCacheLimit(bytes int) {
	c.cache.SetMaxBytes(bytes)
	c.cache.PurgeToBudget()
}

// PurgeResourcesTo evicts idle cached resources until tracked memory is
// at or below budget, or only in-use and pinned resources remain.
func (c *Context) PurgeResourcesTo(budget int) {
	c.cache.PurgeUntilMemoryTo(budget)
}

// MemoryUsage returns the tracked GPU memory of all cached resources.
func (c *Context) MemoryUsage() int { return c.cache.TotalBytes() }

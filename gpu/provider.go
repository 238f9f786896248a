// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"sync"

	"github.com/gogpu/gputypes"
)

// ProxyProvider creates texture and render-target proxies, deduplicating
// by unique key: while a keyed texture is pending or cached, further
// requests for the same key return a proxy over the same resource
// instead of scheduling duplicate work.
type ProxyProvider struct {
	dev     Device
	cache   *ResourceCache
	manager *DrawingManager

	mu      sync.Mutex
	pending map[string]*TextureProxy
}

// NewProxyProvider creates a provider scheduling create tasks on
// manager and resolving keys against cache.
func NewProxyProvider(dev Device, cache *ResourceCache, manager *DrawingManager) *ProxyProvider {
	return &ProxyProvider{
		dev:     dev,
		cache:   cache,
		manager: manager,
		pending: make(map[string]*TextureProxy),
	}
}

// CreateTextureProxy returns a proxy for a texture materialized from
// source at flush. With a non-empty key, a pending or cached texture
// under the same key is reused and no new task is scheduled. Returns
// nil when source reports a degenerate size.
func (p *ProxyProvider) CreateTextureProxy(key UniqueKey, source PixelSource, mipmapped bool) *TextureProxy {
	width, height := source.Size()
	if width <= 0 || height <= 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !key.Empty() {
		idx := key.index()
		if proxy, ok := p.pending[idx]; ok {
			return proxy
		}
		if h := p.cache.FindUnique(key); h != nil {
			tex := h.Texture()
			proxy := &TextureProxy{
				provider:    p,
				key:         key,
				width:       tex.Width(),
				height:      tex.Height(),
				format:      tex.Format(),
				mipmapped:   tex.Mipmapped(),
				sampleCount: 1,
			}
			proxy.handle = h
			return proxy
		}
	}
	format := gputypes.TextureFormatRGBA8Unorm
	if source.AlphaOnly() && p.dev.SupportsFormat(gputypes.TextureFormatR8Unorm) {
		format = gputypes.TextureFormatR8Unorm
	}
	proxy := &TextureProxy{
		provider:    p,
		key:         key,
		width:       width,
		height:      height,
		format:      format,
		mipmapped:   mipmapped,
		sampleCount: 1,
	}
	p.manager.addTextureCreateTask(proxy, source)
	if !key.Empty() {
		p.pending[key.index()] = proxy
	}
	Logger().Debug("texture proxy created", "width", width, "height", height, "keyed", !key.Empty())
	return proxy
}

// CreateDeferredTextureProxy returns a proxy with no pixel source; the
// first task that consumes it allocates the texture from the scratch
// pool. Snapshot destinations use this.
func (p *ProxyProvider) CreateDeferredTextureProxy(width, height int, format gputypes.TextureFormat, mipmapped bool) *TextureProxy {
	if width <= 0 || height <= 0 {
		return nil
	}
	return &TextureProxy{
		provider:    p,
		width:       width,
		height:      height,
		format:      format,
		mipmapped:   mipmapped,
		sampleCount: 1,
	}
}

// CreateRenderTargetProxy returns a deferred drawable target.
func (p *ProxyProvider) CreateRenderTargetProxy(width, height int, format gputypes.TextureFormat, sampleCount int, origin Origin) *RenderTargetProxy {
	if width <= 0 || height <= 0 {
		return nil
	}
	if sampleCount < 1 {
		sampleCount = 1
	}
	return &RenderTargetProxy{TextureProxy: TextureProxy{
		provider:    p,
		width:       width,
		height:      height,
		format:      format,
		sampleCount: sampleCount,
		origin:      origin,
	}}
}

// WrapBackendTexture wraps an externally created backend texture in an
// already-instantiated proxy. With adopt set, the cache takes ownership
// and destroys the texture when it is evicted; otherwise the texture is
// borrowed and the caller keeps ownership.
func (p *ProxyProvider) WrapBackendTexture(id TextureID, width, height int, format gputypes.TextureFormat, origin Origin, adopt bool) *TextureProxy {
	if id == 0 || width <= 0 || height <= 0 {
		return nil
	}
	tex := WrapTexture(id, width, height, format, adopt)
	// Wrapped textures never enter the scratch pool: their allocation is
	// not ours to recycle.
	h := p.cache.Insert(tex, ScratchKey{})
	proxy := &TextureProxy{
		provider:    p,
		width:       width,
		height:      height,
		format:      format,
		sampleCount: 1,
		origin:      origin,
	}
	proxy.handle = h
	return proxy
}

// WrapBackendRenderTarget wraps an externally created drawable texture
// as an instantiated render-target proxy, with the same adopt/borrow
// ownership rules as WrapBackendTexture.
func (p *ProxyProvider) WrapBackendRenderTarget(id TextureID, width, height int, format gputypes.TextureFormat, origin Origin, adopt bool) *RenderTargetProxy {
	if id == 0 || width <= 0 || height <= 0 {
		return nil
	}
	tex := WrapTexture(id, width, height, format, adopt)
	h := p.cache.Insert(tex, ScratchKey{})
	proxy := &RenderTargetProxy{TextureProxy: TextureProxy{
		provider:    p,
		width:       width,
		height:      height,
		format:      format,
		sampleCount: 1,
		origin:      origin,
	}}
	proxy.handle = h
	return proxy
}

// completePending drops the pending entry for key once its create task
// has run (successfully or not). Later requests hit the cache.
func (p *ProxyProvider) completePending(key UniqueKey) {
	if key.Empty() {
		return
	}
	p.mu.Lock()
	delete(p.pending, key.index())
	p.mu.Unlock()
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"sync"

	"github.com/gogpu/gputypes"
)

// Origin locates the (0,0) texel of a render target. Wrapped GL
// framebuffers are typically bottom-left; everything the engine
// allocates itself is top-left.
type Origin uint8

const (
	// OriginTopLeft puts row zero at the top.
	OriginTopLeft Origin = iota

	// OriginBottomLeft puts row zero at the bottom (flipped Y).
	OriginBottomLeft
)

// TextureProxy is a deferred handle to a texture that may not exist
// yet. Recording code draws against proxies freely; the backing
// resource is found or created when the owning task executes at flush.
//
// A proxy holds a cache reference to its resource once instantiated,
// keeping the resource out of scratch matching and eviction until the
// proxy is released.
type TextureProxy struct {
	provider    *ProxyProvider
	key         UniqueKey
	width       int
	height      int
	format      gputypes.TextureFormat
	mipmapped   bool
	sampleCount int
	origin      Origin

	mu     sync.Mutex
	handle *Handle
	failed bool
}

// Width returns the proxy's width in pixels.
func (p *TextureProxy) Width() int { return p.width }

// Height returns the proxy's height in pixels.
func (p *TextureProxy) Height() int { return p.height }

// Format returns the pixel format the proxy will instantiate with.
func (p *TextureProxy) Format() gputypes.TextureFormat { return p.format }

// Mipmapped reports whether the backing texture has mip levels.
func (p *TextureProxy) Mipmapped() bool { return p.mipmapped }

// AlphaOnly reports whether the backing texture is coverage-only.
func (p *TextureProxy) AlphaOnly() bool {
	return p.format == gputypes.TextureFormatR8Unorm
}

// Origin returns the proxy's coordinate origin.
func (p *TextureProxy) Origin() Origin { return p.origin }

// UniqueKey returns the identity key the proxy instantiates under, or
// the empty key for purely scratch-backed proxies.
func (p *TextureProxy) UniqueKey() UniqueKey { return p.key }

// IsInstantiated reports whether a backing resource exists yet.
func (p *TextureProxy) IsInstantiated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle != nil
}

// Texture returns the backing texture, or nil before instantiation.
func (p *TextureProxy) Texture() *Texture {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return nil
	}
	return p.handle.Texture()
}

// Release drops the proxy's hold on its resource. The resource stays
// cached under its keys and becomes scratch-matchable and evictable
// again. Safe to call on an uninstantiated proxy.
func (p *TextureProxy) Release() {
	p.mu.Lock()
	h := p.handle
	p.handle = nil
	p.mu.Unlock()
	if h != nil {
		h.Release()
	}
}

// adopt installs an already-referenced cache handle as the proxy's
// backing resource.
func (p *TextureProxy) adopt(h *Handle) {
	p.mu.Lock()
	prev := p.handle
	p.handle = h
	p.mu.Unlock()
	if prev != nil {
		prev.Release()
	}
}

// errProxyFailed marks a proxy whose pixel source could not produce
// content. Consumers skip the draw instead of sampling an empty texture.
var errProxyFailed = errors.New("texture proxy source failed")

// instantiate finds or allocates the backing texture. Deferred proxies
// without a create task reach here from their consuming task: first the
// unique key, then the scratch pool, then a fresh allocation.
func (p *TextureProxy) instantiate(cache *ResourceCache) (*Texture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed {
		return nil, errProxyFailed
	}
	if p.handle != nil {
		return p.handle.Texture(), nil
	}
	if !p.key.Empty() {
		if h := cache.FindUnique(p.key); h != nil {
			p.handle = h
			return h.Texture(), nil
		}
	}
	scratch := TextureScratchKey(p.width, p.height, p.format, p.mipmapped, p.sampleCount)
	if h := cache.FindScratch(scratch); h != nil {
		if !p.key.Empty() {
			cache.AssignUniqueKey(h, p.key)
		}
		p.handle = h
		return h.Texture(), nil
	}
	tex, err := NewTexture(cache.dev, p.width, p.height, p.format, p.mipmapped, p.sampleCount)
	if err != nil {
		return nil, err
	}
	h := cache.Insert(tex, scratch)
	if !p.key.Empty() {
		cache.AssignUniqueKey(h, p.key)
	}
	p.handle = h
	return tex, nil
}

// instantiateForUpload allocates the backing texture without binding
// the unique key. The create task binds the key only after the upload
// succeeds, so a failed source never leaves an empty texture cached
// under the content's identity.
func (p *TextureProxy) instantiateForUpload(cache *ResourceCache) (*Texture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed {
		return nil, errProxyFailed
	}
	if p.handle != nil {
		return p.handle.Texture(), nil
	}
	scratch := TextureScratchKey(p.width, p.height, p.format, p.mipmapped, p.sampleCount)
	if h := cache.FindScratch(scratch); h != nil {
		p.handle = h
		return h.Texture(), nil
	}
	tex, err := NewTexture(cache.dev, p.width, p.height, p.format, p.mipmapped, p.sampleCount)
	if err != nil {
		return nil, err
	}
	p.handle = cache.Insert(tex, scratch)
	return tex, nil
}

// bindUniqueKey attaches the proxy's unique key to the instantiated
// resource. No-op for keyless or uninstantiated proxies.
func (p *TextureProxy) bindUniqueKey(cache *ResourceCache) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil || p.key.Empty() {
		return
	}
	cache.AssignUniqueKey(p.handle, p.key)
}

// markFailed poisons the proxy and releases any texture allocated for
// it. Later instantiation attempts report the failure instead of
// handing out empty content.
func (p *TextureProxy) markFailed() {
	p.mu.Lock()
	h := p.handle
	p.handle = nil
	p.failed = true
	p.mu.Unlock()
	if h != nil {
		h.Release()
	}
}

// RenderTargetProxy is a deferred handle to a drawable target. The
// sample count distinguishes multisampled targets, which need a resolve
// before their content can be sampled.
type RenderTargetProxy struct {
	TextureProxy
}

// SampleCount returns the target's multisample count.
func (p *RenderTargetProxy) SampleCount() int { return p.sampleCount }

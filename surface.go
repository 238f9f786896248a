// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/vega/geom"
	"github.com/gogpu/vega/gpu"
)

// SurfaceOption customizes surface creation.
type SurfaceOption func(*surfaceConfig)

type surfaceConfig struct {
	sampleCount int
	origin      gpu.Origin
}

// WithSampleCount requests a multisampled render target. Draws into a
// multisampled surface use hardware anti-aliasing, and the surface
// schedules a resolve before its content is read.
func WithSampleCount(n int) SurfaceOption {
	return func(c *surfaceConfig) {
		if n > 1 {
			c.sampleCount = n
		}
	}
}

// WithOrigin sets the surface's coordinate origin. Bottom-left origins
// (wrapped GL framebuffers) flip the scissor coordinates handed to the
// device.
func WithOrigin(origin gpu.Origin) SurfaceOption {
	return func(c *surfaceConfig) { c.origin = origin }
}

// Surface is a drawable render target. Drawing goes through its Canvas;
// nothing reaches the GPU until Flush.
type Surface struct {
	ctx    *Context
	target *gpu.RenderTargetProxy
	canvas *Canvas

	contentDirty bool
}

// NewSurface creates a width×height RGBA surface on ctx.
func NewSurface(ctx *Context, width, height int, opts ...SurfaceOption) *Surface {
	if ctx == nil || width <= 0 || height <= 0 {
		return nil
	}
	cfg := surfaceConfig{sampleCount: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	target := ctx.provider.CreateRenderTargetProxy(width, height, gputypes.TextureFormatRGBA8Unorm, cfg.sampleCount, cfg.origin)
	if target == nil {
		return nil
	}
	s := &Surface{ctx: ctx, target: target}
	s.canvas = newCanvas(s)
	return s
}

// NewSurfaceFromBackendRenderTarget wraps an externally created
// drawable texture as a surface. With adopt set the context's cache
// takes ownership of the texture; otherwise the caller keeps it and the
// cache never destroys it.
func NewSurfaceFromBackendRenderTarget(ctx *Context, id gpu.TextureID, width, height int, origin gpu.Origin, adopt bool) *Surface {
	if ctx == nil {
		return nil
	}
	target := ctx.provider.WrapBackendRenderTarget(id, width, height, gputypes.TextureFormatRGBA8Unorm, origin, adopt)
	if target == nil {
		return nil
	}
	s := &Surface{ctx: ctx, target: target}
	s.canvas = newCanvas(s)
	return s
}

// Canvas returns the surface's canvas.
func (s *Surface) Canvas() *Canvas { return s.canvas }

// Target returns the surface's render target proxy. Backend
// integrations use it to reach the backing texture after a flush.
func (s *Surface) Target() *gpu.RenderTargetProxy { return s.target }

// Context returns the owning context.
func (s *Surface) Context() *Context { return s.ctx }

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.target.Width() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.target.Height() }

// SampleCount returns the render target's multisample count.
func (s *Surface) SampleCount() int { return s.target.SampleCount() }

// Origin returns the surface's coordinate origin.
func (s *Surface) Origin() gpu.Origin { return s.target.Origin() }

// bounds returns the full surface rect.
func (s *Surface) bounds() geom.Rect {
	return geom.MakeWH(float32(s.Width()), float32(s.Height()))
}

// aboutToDraw returns the ops task collecting the surface's draws.
// discardContent marks a draw known to overwrite the whole target, so
// everything recorded before it is dropped.
func (s *Surface) aboutToDraw(discardContent bool) *gpu.OpsRenderTask {
	task := s.ctx.manager.AddOpsTask(s.target)
	if discardContent {
		task.DiscardOps()
	}
	s.contentDirty = true
	return task
}

// Flush submits all recorded work for the context. A dirty multisampled
// target gets its resolve scheduled first.
func (s *Surface) Flush() {
	if s.contentDirty && s.target.SampleCount() > 1 {
		s.ctx.manager.AddTextureResolveTask(s.target)
	}
	s.contentDirty = false
	s.ctx.Flush()
}

// Snapshot captures the surface's current content as an Image. The open
// ops task is sealed first and a copy task is recorded behind it, so
// the snapshot sees every draw recorded so far and none recorded after.
func (s *Surface) Snapshot() *Image {
	s.ctx.manager.CloseActiveOpsTask()
	if s.target.SampleCount() > 1 {
		s.ctx.manager.AddTextureResolveTask(s.target)
	}
	dest := s.ctx.provider.CreateDeferredTextureProxy(s.Width(), s.Height(), s.target.Format(), false)
	if dest == nil {
		return nil
	}
	s.ctx.manager.AddRenderTargetCopyTask(s.target, dest, s.bounds(), 0, 0)
	return &Image{
		width:  s.Width(),
		height: s.Height(),
		proxy:  dest,
	}
}

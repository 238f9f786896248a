// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/vega/geom"
)

// RenderTask is one unit of deferred GPU work. Tasks accumulate in the
// DrawingManager during recording and execute exactly once at flush:
// texture create tasks first, then the remaining tasks in creation
// order. The variant set is closed: execution dispatches on the
// concrete type.
type RenderTask interface {
	isRenderTask()
}

// errNoPixels reports a pixel source that produced nothing.
var errNoPixels = errors.New("pixel source produced no data")

// OpsRenderTask renders a sequence of ops into one target. New ops are
// offered to the most recent op for merging first, so runs of draws
// with identical pipelines collapse into single submissions.
type OpsRenderTask struct {
	target *RenderTargetProxy
	ops    []Op
	closed bool
}

func (*OpsRenderTask) isRenderTask() {}

// Target returns the render target proxy the task draws into.
func (t *OpsRenderTask) Target() *RenderTargetProxy { return t.target }

// Ops returns the recorded (post-merge) op list.
func (t *OpsRenderTask) Ops() []Op { return t.ops }

// IsClosed reports whether the task stopped accepting ops.
func (t *OpsRenderTask) IsClosed() bool { return t.closed }

// Close stops the task from accepting further ops.
func (t *OpsRenderTask) Close() { t.closed = true }

// AddOp appends an op, folding it into the previous op when the two
// share a pipeline.
func (t *OpsRenderTask) AddOp(op Op) {
	if t.closed {
		return
	}
	if n := len(t.ops); n > 0 {
		if m, ok := t.ops[n-1].(mergeable); ok && m.tryMerge(op) {
			return
		}
	}
	t.ops = append(t.ops, op)
}

// DiscardOps drops everything recorded so far. Called when a subsequent
// draw is known to overwrite the entire target.
func (t *OpsRenderTask) DiscardOps() {
	t.ops = nil
}

func (t *OpsRenderTask) execute(dev Device, cache *ResourceCache) error {
	tex, err := t.target.instantiate(cache)
	if err != nil {
		return fmt.Errorf("instantiate render target: %w", err)
	}
	for _, op := range t.ops {
		rec, err := op.record(cache)
		if err != nil {
			return err
		}
		if err := dev.Draw(tex.ID(), rec); err != nil {
			return fmt.Errorf("draw: %w", err)
		}
	}
	return nil
}

// TextureResolveRenderTask resolves a target's multisample buffer and
// regenerates the sample texture's mip levels, whichever apply, so the
// target's content can be sampled.
type TextureResolveRenderTask struct {
	target *RenderTargetProxy
}

func (*TextureResolveRenderTask) isRenderTask() {}

func (t *TextureResolveRenderTask) execute(dev Device, cache *ResourceCache) error {
	tex, err := t.target.instantiate(cache)
	if err != nil {
		return fmt.Errorf("instantiate resolve target: %w", err)
	}
	if t.target.SampleCount() > 1 {
		if err := dev.ResolveRenderTarget(tex.ID()); err != nil {
			return fmt.Errorf("resolve: %w", err)
		}
	}
	if tex.Mipmapped() {
		if err := dev.RegenerateMipmaps(tex.ID()); err != nil {
			return fmt.Errorf("regenerate mipmaps: %w", err)
		}
	}
	return nil
}

// RenderTargetCopyTask copies a region of a rendered target into a
// standalone texture. Snapshots schedule one so the image outlives
// further drawing into the surface.
type RenderTargetCopyTask struct {
	source  *RenderTargetProxy
	dest    *TextureProxy
	srcRect geom.Rect
	dstX    int
	dstY    int
}

func (*RenderTargetCopyTask) isRenderTask() {}

func (t *RenderTargetCopyTask) execute(dev Device, cache *ResourceCache) error {
	src, err := t.source.instantiate(cache)
	if err != nil {
		return fmt.Errorf("instantiate copy source: %w", err)
	}
	dst, err := t.dest.instantiate(cache)
	if err != nil {
		return fmt.Errorf("instantiate copy dest: %w", err)
	}
	if err := dev.CopyRenderTargetToTexture(src.ID(), dst.ID(), t.srcRect, t.dstX, t.dstY); err != nil {
		return fmt.Errorf("copy render target: %w", err)
	}
	return nil
}

// TextureCreateTask materializes a texture from a CPU pixel source
// (rasterizer, image decoder, or raw buffer). Production runs on a
// worker goroutine before execution starts; execution uploads on the
// flushing goroutine.
type TextureCreateTask struct {
	proxy  *TextureProxy
	source PixelSource

	pixels *PixelBuffer
}

func (*TextureCreateTask) isRenderTask() {}

// prepare produces the pixel data. Safe to run concurrently with other
// tasks' prepare; touches no GPU or cache state.
func (t *TextureCreateTask) prepare() error {
	t.pixels = t.source.Produce()
	if t.pixels == nil {
		return errNoPixels
	}
	return nil
}

// execute uploads the produced pixels. The unique key is bound only
// after a successful upload: a failed source poisons the proxy instead,
// so consumers skip the draw and a later flush can retry under the same
// key.
func (t *TextureCreateTask) execute(dev Device, cache *ResourceCache) error {
	defer t.proxy.provider.completePending(t.proxy.key)
	if t.pixels == nil {
		t.proxy.markFailed()
		return errNoPixels
	}
	pixels := t.pixels
	t.pixels = nil
	// The provider already picked RGBA when the device lacks R8; the
	// produced coverage buffer follows the proxy's format here.
	if pixels.AlphaOnly() && !t.proxy.AlphaOnly() {
		pixels = pixels.ToRGBA()
	}
	tex, err := t.proxy.instantiateForUpload(cache)
	if err != nil {
		t.proxy.markFailed()
		return fmt.Errorf("instantiate texture: %w", err)
	}
	if err := dev.UploadTexture(tex.ID(), pixels); err != nil {
		t.proxy.markFailed()
		return fmt.Errorf("upload texture: %w", err)
	}
	if tex.Mipmapped() {
		if err := dev.RegenerateMipmaps(tex.ID()); err != nil {
			t.proxy.markFailed()
			return fmt.Errorf("regenerate mipmaps: %w", err)
		}
	}
	t.proxy.bindUniqueKey(cache)
	return nil
}

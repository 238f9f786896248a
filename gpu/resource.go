// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"github.com/gogpu/gputypes"
)

// Resource is a GPU-backed object whose lifecycle a ResourceCache
// manages. Implementations report their memory cost and know how to
// release their backend object; everything else (keys, reference
// counts, eviction order) is cache bookkeeping.
type Resource interface {
	// MemoryUsage returns the resource's cost in bytes for cache
	// budgeting.
	MemoryUsage() int

	// Free releases the underlying backend object. Called exactly once,
	// when the cache evicts the resource.
	Free(dev Device)
}

// Texture is the workhorse resource: a backend texture, possibly
// mipmapped or multisampled, usable as a sampling source or render
// attachment.
type Texture struct {
	id          TextureID
	width       int
	height      int
	format      gputypes.TextureFormat
	mipmapped   bool
	sampleCount int

	// external marks a wrapped backend texture the cache must never
	// destroy (WrapBackendTexture with adopt=false).
	external bool
}

// NewTexture allocates a backend texture and wraps it as a Resource.
func NewTexture(dev Device, width, height int, format gputypes.TextureFormat, mipmapped bool, sampleCount int) (*Texture, error) {
	id, err := dev.CreateTexture(width, height, format, mipmapped, sampleCount)
	if err != nil {
		return nil, err
	}
	return &Texture{
		id:          id,
		width:       width,
		height:      height,
		format:      format,
		mipmapped:   mipmapped,
		sampleCount: sampleCount,
	}, nil
}

// WrapTexture wraps an externally created backend texture. When adopt
// is set the cache takes ownership and destroys the texture on
// eviction; otherwise the texture is borrowed and never destroyed.
func WrapTexture(id TextureID, width, height int, format gputypes.TextureFormat, adopt bool) *Texture {
	return &Texture{
		id:          id,
		width:       width,
		height:      height,
		format:      format,
		sampleCount: 1,
		external:    !adopt,
	}
}

// ID returns the backend handle.
func (t *Texture) ID() TextureID { return t.id }

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Mipmapped reports whether the texture has mip levels.
func (t *Texture) Mipmapped() bool { return t.mipmapped }

// SampleCount returns the multisample count (1 for single-sampled).
func (t *Texture) SampleCount() int { return t.sampleCount }

// AlphaOnly reports whether the texture stores a single coverage channel.
func (t *Texture) AlphaOnly() bool {
	return t.format == gputypes.TextureFormatR8Unorm
}

// MemoryUsage estimates the texture's byte cost, counting mip chains at
// a 4/3 overhead and multiplying by the sample count.
func (t *Texture) MemoryUsage() int {
	size := t.width * t.height * bytesPerPixel(t.format)
	if t.sampleCount > 1 {
		size *= t.sampleCount
	}
	if t.mipmapped {
		size = size * 4 / 3
	}
	return size
}

// Free destroys the backend texture unless it is borrowed.
func (t *Texture) Free(dev Device) {
	if t.external {
		return
	}
	dev.DestroyTexture(t.id)
}

// ScratchKey returns the texture's interchangeability key: any two idle
// textures matching on dimensions, format, mipmap state, and sample
// count can stand in for one another.
func (t *Texture) ScratchKey() ScratchKey {
	return TextureScratchKey(t.width, t.height, t.format, t.mipmapped, t.sampleCount)
}

// TextureScratchKey builds the scratch key shared by all textures with
// identical allocation parameters.
func TextureScratchKey(width, height int, format gputypes.TextureFormat, mipmapped bool, sampleCount int) ScratchKey {
	bk := NewBytesKey(5)
	bk.WriteInt(width)
	bk.WriteInt(height)
	bk.WriteUint32(uint32(format))
	bk.WriteBool(mipmapped)
	bk.WriteInt(sampleCount)
	return MakeScratchKey(bk)
}

func bytesPerPixel(format gputypes.TextureFormat) int {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}

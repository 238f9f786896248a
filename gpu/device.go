// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/vega/geom"
)

// TextureID is an opaque handle to a backend texture. Each Device
// implementation maintains the mapping between IDs and actual backend
// objects. The zero value is invalid.
type TextureID uint64

// BlendMode selects how source pixels combine with the destination.
// The set mirrors the Porter-Duff modes the op compiler cares about;
// the clear-op rewrite special-cases Clear and Src.
type BlendMode uint8

const (
	// BlendSrcOver is the default: source over destination.
	BlendSrcOver BlendMode = iota

	// BlendSrc replaces the destination outright.
	BlendSrc

	// BlendClear forces the destination to transparent.
	BlendClear

	// BlendDstOver composites the destination over the source.
	BlendDstOver

	// BlendSrcIn keeps source where the destination is opaque.
	BlendSrcIn

	// BlendPlus adds source to destination.
	BlendPlus
)

// AAType selects the anti-aliasing strategy for a draw.
type AAType uint8

const (
	// AANone renders with no edge smoothing.
	AANone AAType = iota

	// AACoverage computes per-pixel coverage in the shader.
	AACoverage

	// AAMSAA relies on the target's hardware multisampling.
	AAMSAA
)

// DrawKind tags the geometry carried by a DrawRecord.
type DrawKind uint8

const (
	// DrawClear clears a region to a color.
	DrawClear DrawKind = iota

	// DrawRects fills one or more transformed rectangles.
	DrawRects

	// DrawRRects fills one or more rounded rectangles.
	DrawRRects

	// DrawTriangles fills a tessellated triangle list.
	DrawTriangles
)

// RectPaint is one rectangle within a batched rect draw.
type RectPaint struct {
	Rect       geom.Rect
	Color      geom.Color
	ViewMatrix geom.Matrix
}

// RRectPaint is one rounded rectangle within a batched rrect draw.
type RRectPaint struct {
	RRect      geom.RRect
	Color      geom.Color
	ViewMatrix geom.Matrix
}

// MaskSample is a resolved coverage texture multiplied into a draw.
type MaskSample struct {
	Texture TextureID

	// LocalMatrix maps draw-local coordinates into the mask texture.
	LocalMatrix geom.Matrix

	// AlphaOnly marks single-channel masks; RGBA fallback masks carry
	// coverage in every channel.
	AlphaOnly bool
}

// DrawRecord is one fully resolved GPU submission: every proxy has been
// replaced by a concrete TextureID by the time a Device sees it.
type DrawRecord struct {
	Kind DrawKind

	// Clear fields.
	Color     geom.Color
	ClearRect geom.Rect // empty means the full target

	// Geometry, by Kind.
	Rects      []RectPaint
	RRects     []RRectPaint
	Vertices   []float32 // x,y pairs forming a triangle list
	ViewMatrix geom.Matrix

	Blend   BlendMode
	AA      AAType
	Scissor geom.Rect // empty means no scissor
	Masks   []MaskSample
}

// Device is the narrow GPU backend contract the render tasks execute
// against. Every call returns an error on failure; flush logs the
// failure with task context and proceeds with the remaining tasks.
type Device interface {
	// CreateTexture allocates an empty texture. sampleCount > 1
	// requests a multisampled render attachment.
	CreateTexture(width, height int, format gputypes.TextureFormat, mipmapped bool, sampleCount int) (TextureID, error)

	// UploadTexture copies CPU pixels into a texture's base level.
	UploadTexture(id TextureID, pixels *PixelBuffer) error

	// DestroyTexture releases the backend object. Invalid IDs are ignored.
	DestroyTexture(id TextureID)

	// SupportsFormat reports whether textures of the format can be created.
	SupportsFormat(format gputypes.TextureFormat) bool

	// ResolveRenderTarget resolves a multisampled target into its
	// single-sample texture.
	ResolveRenderTarget(id TextureID) error

	// RegenerateMipmaps rebuilds all mip levels from the base level.
	RegenerateMipmaps(id TextureID) error

	// CopyRenderTargetToTexture blits srcRect from a render target to
	// (dstX, dstY) in a texture.
	CopyRenderTargetToTexture(src, dst TextureID, srcRect geom.Rect, dstX, dstY int) error

	// Draw submits one resolved draw record against a target.
	Draw(target TextureID, rec *DrawRecord) error
}

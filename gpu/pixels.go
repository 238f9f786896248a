// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"image"

	"github.com/gogpu/gputypes"
)

// PixelBuffer is CPU-side pixel data ready for texture upload. Pix is
// tightly packed rows of Stride bytes; the byte layout follows Format
// (one byte per pixel for R8, four for RGBA8).
type PixelBuffer struct {
	Width  int
	Height int
	Format gputypes.TextureFormat
	Stride int
	Pix    []byte
}

// AlphaOnly reports whether the buffer carries a single coverage channel.
func (b *PixelBuffer) AlphaOnly() bool {
	return b.Format == gputypes.TextureFormatR8Unorm
}

// MemorySize returns the buffer's byte size.
func (b *PixelBuffer) MemorySize() int {
	return b.Stride * b.Height
}

// ToRGBA returns the buffer expanded to RGBA8. Alpha-only buffers
// broadcast coverage into all four channels so a sampled .a (or .r)
// still reads coverage; RGBA buffers are returned as-is.
func (b *PixelBuffer) ToRGBA() *PixelBuffer {
	if !b.AlphaOnly() {
		return b
	}
	out := &PixelBuffer{
		Width:  b.Width,
		Height: b.Height,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Stride: b.Width * 4,
		Pix:    make([]byte, b.Width*4*b.Height),
	}
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Width; x++ {
			a := src[x]
			dst[x*4+0] = a
			dst[x*4+1] = a
			dst[x*4+2] = a
			dst[x*4+3] = a
		}
	}
	return out
}

// BufferFromAlpha wraps an *image.Alpha as an alpha-only PixelBuffer.
// The pixel memory is shared, not copied.
func BufferFromAlpha(img *image.Alpha) *PixelBuffer {
	bounds := img.Bounds()
	return &PixelBuffer{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: gputypes.TextureFormatR8Unorm,
		Stride: img.Stride,
		Pix:    img.Pix,
	}
}

// BufferFromRGBA wraps an *image.RGBA as an RGBA8 PixelBuffer. The
// pixel memory is shared, not copied.
func BufferFromRGBA(img *image.RGBA) *PixelBuffer {
	bounds := img.Bounds()
	return &PixelBuffer{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: gputypes.TextureFormatRGBA8Unorm,
		Stride: img.Stride,
		Pix:    img.Pix,
	}
}

// PixelSource produces pixel data for a deferred texture. Produce must
// be pure: no GPU or cache access, so it can run on a worker goroutine
// ahead of flush. Returning nil means production failed and the
// dependent texture is skipped.
type PixelSource interface {
	// Size returns the dimensions of the buffer Produce will yield.
	Size() (width, height int)

	// AlphaOnly reports whether Produce yields a coverage-only buffer.
	AlphaOnly() bool

	// Produce builds the pixel data. Called at most once per source.
	Produce() *PixelBuffer
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import (
	"image"
	"image/draw"
	"runtime"
	"sync"

	"github.com/gogpu/vega/gpu"
)

// Image is immutable pixel content drawable through a Canvas. The
// pixels come from an in-memory buffer, a deferred decoder, or a
// surface snapshot; in the first two cases the upload happens once at
// flush, keyed by the image's identity, so repeated draws of one image
// share one texture and one decode.
type Image struct {
	width     int
	height    int
	mipmapped bool

	source   gpu.PixelSource
	proxy    *gpu.TextureProxy // snapshot images only
	identity *imageIdentity

	keyOnce sync.Once
	key     gpu.UniqueKey
}

type imageIdentity struct {
	lazy gpu.LazyUniqueKey
}

func newImageIdentity() *imageIdentity {
	id := &imageIdentity{}
	runtime.SetFinalizer(id, func(id *imageIdentity) {
		id.lazy.Reset()
	})
	return id
}

// NewImageFromRGBA wraps CPU pixels as an Image. The pixel memory is
// shared; the caller must not mutate it afterwards.
func NewImageFromRGBA(src *image.RGBA) *Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	return &Image{
		width:    b.Dx(),
		height:   b.Dy(),
		source:   &bufferSource{buf: gpu.BufferFromRGBA(src)},
		identity: newImageIdentity(),
	}
}

// NewImageFromDecoder wraps a deferred decode. The decoder runs at most
// once, on a flush worker goroutine, and must be pure. A decode failure
// skips the dependent draws.
func NewImageFromDecoder(width, height int, decode func() (image.Image, error)) *Image {
	if width <= 0 || height <= 0 || decode == nil {
		return nil
	}
	return &Image{
		width:    width,
		height:   height,
		source:   &decoderSource{width: width, height: height, decode: decode},
		identity: newImageIdentity(),
	}
}

// Width returns the image width in pixels.
func (im *Image) Width() int { return im.width }

// Height returns the image height in pixels.
func (im *Image) Height() int { return im.height }

// Mipmapped reports whether draws of the image sample a mipmapped texture.
func (im *Image) Mipmapped() bool { return im.mipmapped }

// MakeMipmapped derives an image sharing these pixels whose texture is
// created with mip levels. The derived image caches under its own key
// within the same identity domain. Snapshot images cannot change their
// texture and are returned unchanged.
func (im *Image) MakeMipmapped() *Image {
	if im.mipmapped || im.proxy != nil {
		return im
	}
	return &Image{
		width:     im.width,
		height:    im.height,
		mipmapped: true,
		source:    im.source,
		identity:  im.identity,
	}
}

// uniqueKey returns the cache key for the image's texture, derived once.
func (im *Image) uniqueKey() gpu.UniqueKey {
	im.keyOnce.Do(func() {
		base := im.identity.lazy.Get()
		if !im.mipmapped {
			im.key = base
			return
		}
		bk := gpu.NewBytesKey(1)
		bk.WriteBool(true)
		im.key = gpu.Combine(base, bk)
		// The combined key's use reference lives as long as the image.
		runtime.SetFinalizer(im, func(im *Image) {
			im.key.ReleaseReference(false)
		})
	})
	return im.key
}

// textureProxy returns the proxy the image samples from, scheduling the
// upload when it is not cached yet.
func (im *Image) textureProxy(ctx *Context) *gpu.TextureProxy {
	if im.proxy != nil {
		return im.proxy
	}
	return ctx.provider.CreateTextureProxy(im.uniqueKey(), im.source, im.mipmapped)
}

// bufferSource serves pre-existing CPU pixels.
type bufferSource struct {
	buf *gpu.PixelBuffer
}

func (s *bufferSource) Size() (int, int)          { return s.buf.Width, s.buf.Height }
func (s *bufferSource) AlphaOnly() bool           { return s.buf.AlphaOnly() }
func (s *bufferSource) Produce() *gpu.PixelBuffer { return s.buf }

// decoderSource decodes on demand.
type decoderSource struct {
	width  int
	height int
	decode func() (image.Image, error)
}

func (s *decoderSource) Size() (int, int) { return s.width, s.height }

func (s *decoderSource) AlphaOnly() bool { return false }

func (s *decoderSource) Produce() *gpu.PixelBuffer {
	img, err := s.decode()
	if err != nil || img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Dx() == s.width && rgba.Bounds().Dy() == s.height {
		return gpu.BufferFromRGBA(rgba)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return gpu.BufferFromRGBA(rgba)
}

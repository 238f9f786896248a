// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software implements the gpu.Device contract on the CPU. It
// executes the full render-task protocol (texture lifecycle, draws,
// copies, mipmaps) against in-memory pixel buffers, serving as the
// test device and as a fallback when no GPU is available. It is a
// correct executor, not a quality rasterizer: edges are hard unless a
// coverage mask says otherwise.
package software

import (
	"errors"
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/vega/geom"
	"github.com/gogpu/vega/gpu"
)

var (
	errUnknownTexture    = errors.New("software: unknown texture")
	errUnsupportedFormat = errors.New("software: unsupported texture format")
	errSizeMismatch      = errors.New("software: upload size mismatch")
)

type texture struct {
	width       int
	height      int
	format      gputypes.TextureFormat
	mipmapped   bool
	sampleCount int

	rgba  *image.NRGBA // RGBA8 textures
	alpha *image.Alpha // R8 textures

	mips []*image.NRGBA // built by RegenerateMipmaps
}

// Device is a CPU-backed gpu.Device. Safe for concurrent texture
// lifecycle calls; draws are serialized by the flush contract.
type Device struct {
	mu       sync.Mutex
	nextID   gpu.TextureID
	textures map[gpu.TextureID]*texture
}

// New returns an empty software device.
func New() *Device {
	return &Device{textures: make(map[gpu.TextureID]*texture)}
}

// CreateTexture implements gpu.Device.
func (d *Device) CreateTexture(width, height int, format gputypes.TextureFormat, mipmapped bool, sampleCount int) (gpu.TextureID, error) {
	if width <= 0 || height <= 0 {
		return 0, errors.New("software: degenerate texture size")
	}
	if !d.SupportsFormat(format) {
		return 0, errUnsupportedFormat
	}
	t := &texture{
		width:       width,
		height:      height,
		format:      format,
		mipmapped:   mipmapped,
		sampleCount: sampleCount,
	}
	if format == gputypes.TextureFormatR8Unorm {
		t.alpha = image.NewAlpha(image.Rect(0, 0, width, height))
	} else {
		t.rgba = image.NewNRGBA(image.Rect(0, 0, width, height))
	}
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.textures[id] = t
	d.mu.Unlock()
	return id, nil
}

// UploadTexture implements gpu.Device.
func (d *Device) UploadTexture(id gpu.TextureID, pixels *gpu.PixelBuffer) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	if pixels.Width != t.width || pixels.Height != t.height {
		return errSizeMismatch
	}
	if t.alpha != nil {
		if !pixels.AlphaOnly() {
			return errUnsupportedFormat
		}
		for y := 0; y < t.height; y++ {
			copy(t.alpha.Pix[y*t.alpha.Stride:][:t.width], pixels.Pix[y*pixels.Stride:][:t.width])
		}
		return nil
	}
	src := pixels.ToRGBA()
	for y := 0; y < t.height; y++ {
		copy(t.rgba.Pix[y*t.rgba.Stride:][:t.width*4], src.Pix[y*src.Stride:][:t.width*4])
	}
	return nil
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) {
	d.mu.Lock()
	delete(d.textures, id)
	d.mu.Unlock()
}

// SupportsFormat implements gpu.Device.
func (d *Device) SupportsFormat(format gputypes.TextureFormat) bool {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatR8Unorm:
		return true
	default:
		return false
	}
}

// ResolveRenderTarget implements gpu.Device. The CPU device draws
// single-sampled regardless of the requested sample count, so resolve
// is complete the moment it is asked for.
func (d *Device) ResolveRenderTarget(id gpu.TextureID) error {
	_, err := d.lookup(id)
	return err
}

// RegenerateMipmaps implements gpu.Device, downsampling the base level
// with bilinear filtering.
func (d *Device) RegenerateMipmaps(id gpu.TextureID) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	if t.rgba == nil {
		return nil
	}
	t.mips = t.mips[:0]
	w, h := t.width/2, t.height/2
	prev := t.rgba
	for w >= 1 && h >= 1 {
		level := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(level, level.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		t.mips = append(t.mips, level)
		prev = level
		if w == 1 && h == 1 {
			break
		}
		w = max(w/2, 1)
		h = max(h/2, 1)
	}
	return nil
}

// CopyRenderTargetToTexture implements gpu.Device.
func (d *Device) CopyRenderTargetToTexture(src, dst gpu.TextureID, srcRect geom.Rect, dstX, dstY int) error {
	s, err := d.lookup(src)
	if err != nil {
		return err
	}
	t, err := d.lookup(dst)
	if err != nil {
		return err
	}
	if s.rgba == nil || t.rgba == nil {
		return errUnsupportedFormat
	}
	r := image.Rect(int(srcRect.Left), int(srcRect.Top), int(srcRect.Right), int(srcRect.Bottom))
	draw.Copy(t.rgba, image.Pt(dstX, dstY), s.rgba, r, draw.Src, nil)
	return nil
}

// Pixels returns the RGBA backing of a texture, or nil for alpha-only
// and unknown textures. The caller must not hold the result across a
// DestroyTexture.
func (d *Device) Pixels(id gpu.TextureID) *image.NRGBA {
	t, err := d.lookup(id)
	if err != nil {
		return nil
	}
	return t.rgba
}

// MipLevels returns the number of mip levels built for a texture.
func (d *Device) MipLevels(id gpu.TextureID) int {
	t, err := d.lookup(id)
	if err != nil {
		return 0
	}
	return len(t.mips)
}

func (d *Device) lookup(id gpu.TextureID) (*texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[id]
	if !ok {
		return nil, errUnknownTexture
	}
	return t, nil
}

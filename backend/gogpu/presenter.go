// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gogpu presents vega surfaces inside a gogpu application. It
// bridges the CPU executor's pixel output to gpucontext textures so a
// surface can be drawn into an application frame.
package gogpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/vega"
	"github.com/gogpu/vega/backend/software"
)

// Presentation errors.
var (
	// ErrInvalidDrawContext is returned when the draw context is nil or
	// its texture does not implement gpucontext.Texture.
	ErrInvalidDrawContext = errors.New("gogpu: dc must implement gpucontext.TextureDrawer")

	// ErrInvalidRenderer is returned when the draw context has no
	// gpucontext.TextureCreator.
	ErrInvalidRenderer = errors.New("gogpu: renderer must implement gpucontext.TextureCreator")

	// ErrNilSurface is returned when presenting a nil surface.
	ErrNilSurface = errors.New("gogpu: nil surface")

	// ErrSurfaceNotRendered is returned when the surface has no backing
	// pixels to present, usually because nothing was drawn before the
	// flush.
	ErrSurfaceNotRendered = errors.New("gogpu: surface has no rendered content")
)

// textureDestroyer is the interface for destroying textures.
// This matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// Presenter draws a surface's content into a gogpu frame. It flushes
// the surface, reads the resulting pixels back from the CPU executor,
// uploads them as a gpucontext texture and draws that texture.
//
// Presenter is NOT safe for concurrent use. Create one per surface, or
// synchronize externally.
type Presenter struct {
	dev *software.Device

	texture    any // lazily created gpucontext texture
	oldTexture any // previous texture awaiting deferred destruction
	width      int
	height     int

	buf []byte // premultiplied upload staging, reused across frames
}

// NewPresenter creates a presenter reading pixels from dev. The device
// must be the one the surface's context executes on.
func NewPresenter(dev *software.Device) *Presenter {
	return &Presenter{dev: dev}
}

// Present flushes the surface and draws its content at the origin.
func (p *Presenter) Present(dc gpucontext.TextureDrawer, s *vega.Surface) error {
	return p.PresentAt(dc, s, 0, 0)
}

// PresentAt flushes the surface and draws its content at (x, y).
func (p *Presenter) PresentAt(dc gpucontext.TextureDrawer, s *vega.Surface, x, y float32) error {
	if dc == nil {
		return ErrInvalidDrawContext
	}
	if s == nil {
		return ErrNilSurface
	}

	s.Flush()

	tex := s.Target().Texture()
	if tex == nil {
		return ErrSurfaceNotRendered
	}
	pixels := p.dev.Pixels(tex.ID())
	if pixels == nil {
		return ErrSurfaceNotRendered
	}
	data := p.premultiply(pixels)

	// Recreate rather than update when the surface size changed. The
	// old texture may still be referenced by in-flight command buffers,
	// so it is destroyed only after the next upload has waited for the
	// GPU.
	if p.texture != nil && (p.width != s.Width() || p.height != s.Height()) {
		p.oldTexture = p.texture
		p.texture = nil
	}

	if p.texture == nil {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrInvalidRenderer
		}

		// NewTextureFromRGBA calls WriteTexture which waits for the GPU
		// internally, so destroying the old texture afterwards is safe.
		realTex, err := creator.NewTextureFromRGBA(s.Width(), s.Height(), data)
		if err != nil {
			return fmt.Errorf("gogpu: NewTextureFromRGBA failed: %w", err)
		}

		// The uploaded data is premultiplied alpha. Mark the texture so
		// gogpu composites it with the BlendFactorOne pipeline.
		if pt, ok := realTex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}

		p.texture = realTex
		p.width = s.Width()
		p.height = s.Height()

		if p.oldTexture != nil {
			if destroyer, ok := p.oldTexture.(textureDestroyer); ok {
				destroyer.Destroy()
			}
			p.oldTexture = nil
		}
	} else if updater, ok := p.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return fmt.Errorf("gogpu: texture update failed: %w", err)
		}
	}

	gpuTex, ok := p.texture.(gpucontext.Texture)
	if !ok {
		return ErrInvalidDrawContext
	}
	return dc.DrawTexture(gpuTex, x, y)
}

// Close destroys the presenter's textures. The presenter should not be
// used after Close.
func (p *Presenter) Close() {
	if p.oldTexture != nil {
		if destroyer, ok := p.oldTexture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		p.oldTexture = nil
	}
	if p.texture != nil {
		if destroyer, ok := p.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		p.texture = nil
	}
	p.buf = nil
}

// premultiply converts the executor's straight-alpha pixels into the
// premultiplied RGBA layout gpucontext textures expect.
func (p *Presenter) premultiply(src *image.NRGBA) []byte {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	need := w * h * 4
	if cap(p.buf) < need {
		p.buf = make([]byte, need)
	}
	buf := p.buf[:need]
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		out := buf[y*w*4:]
		for x := 0; x < w; x++ {
			r := uint32(row[x*4])
			g := uint32(row[x*4+1])
			b := uint32(row[x*4+2])
			a := uint32(row[x*4+3])
			out[x*4] = uint8(r * a / 255)
			out[x*4+1] = uint8(g * a / 255)
			out[x*4+2] = uint8(b * a / 255)
			out[x*4+3] = uint8(a)
		}
	}
	return buf
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/vega/geom"
	"github.com/gogpu/vega/gpu"
)

func TestCreateAndDestroyTexture(t *testing.T) {
	d := New()
	id, err := d.CreateTexture(8, 8, gputypes.TextureFormatRGBA8Unorm, false, 1)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if d.Pixels(id) == nil {
		t.Error("RGBA texture should expose pixels")
	}
	d.DestroyTexture(id)
	if d.Pixels(id) != nil {
		t.Error("destroyed texture should expose nothing")
	}
}

func TestCreateTextureUnsupportedFormat(t *testing.T) {
	d := New()
	if _, err := d.CreateTexture(8, 8, gputypes.TextureFormatBGRA8Unorm, false, 1); !errors.Is(err, errUnsupportedFormat) {
		t.Errorf("CreateTexture(BGRA8) error = %v, want unsupported format", err)
	}
}

func TestUploadAlphaTexture(t *testing.T) {
	d := New()
	id, err := d.CreateTexture(2, 2, gputypes.TextureFormatR8Unorm, false, 1)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	src := image.NewAlpha(image.Rect(0, 0, 2, 2))
	src.Pix[0] = 200
	if err := d.UploadTexture(id, gpu.BufferFromAlpha(src)); err != nil {
		t.Fatalf("UploadTexture: %v", err)
	}
	if got := d.sampleTexture(id, 0, 0, true); got < 0.7 || got > 0.8 {
		t.Errorf("sampled coverage = %g, want ~0.78", got)
	}
}

func TestSampleRGBATexture(t *testing.T) {
	d := New()
	id, _ := d.CreateTexture(1, 1, gputypes.TextureFormatRGBA8Unorm, false, 1)
	tex, _ := d.lookup(id)
	tex.rgba.SetNRGBA(0, 0, color.NRGBA{R: 128, G: 128, B: 128, A: 64})

	// Fallback coverage masks carry coverage in every channel; the read
	// must be straight alpha, not premultiplied.
	if got := d.sampleTexture(id, 0, 0, true); got < 0.49 || got > 0.52 {
		t.Errorf("fallback coverage = %g, want ~0.5", got)
	}
	if got := d.sampleTexture(id, 0, 0, false); got < 0.24 || got > 0.26 {
		t.Errorf("alpha coverage = %g, want ~0.25", got)
	}
}

func TestUploadSizeMismatch(t *testing.T) {
	d := New()
	id, _ := d.CreateTexture(4, 4, gputypes.TextureFormatRGBA8Unorm, false, 1)
	buf := gpu.BufferFromRGBA(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err := d.UploadTexture(id, buf); !errors.Is(err, errSizeMismatch) {
		t.Errorf("UploadTexture error = %v, want size mismatch", err)
	}
}

func TestRegenerateMipmaps(t *testing.T) {
	d := New()
	id, _ := d.CreateTexture(16, 16, gputypes.TextureFormatRGBA8Unorm, true, 1)
	if err := d.RegenerateMipmaps(id); err != nil {
		t.Fatalf("RegenerateMipmaps: %v", err)
	}
	// 16 halves down to 1: 8, 4, 2, 1.
	if got := d.MipLevels(id); got != 4 {
		t.Errorf("MipLevels = %d, want 4", got)
	}
}

func TestCopyRenderTargetToTexture(t *testing.T) {
	d := New()
	src, _ := d.CreateTexture(4, 4, gputypes.TextureFormatRGBA8Unorm, false, 1)
	dst, _ := d.CreateTexture(4, 4, gputypes.TextureFormatRGBA8Unorm, false, 1)

	rec := &gpu.DrawRecord{Kind: gpu.DrawClear, Color: geom.Color{R: 1, A: 1}, Blend: gpu.BlendSrc}
	if err := d.Draw(src, rec); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := d.CopyRenderTargetToTexture(src, dst, geom.MakeWH(4, 4), 0, 0); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if c := d.Pixels(dst).NRGBAAt(2, 2); c.R != 255 {
		t.Errorf("copied pixel = %+v, want red", c)
	}
}

func TestDrawUnknownTexture(t *testing.T) {
	d := New()
	rec := &gpu.DrawRecord{Kind: gpu.DrawClear}
	if err := d.Draw(42, rec); !errors.Is(err, errUnknownTexture) {
		t.Errorf("Draw error = %v, want unknown texture", err)
	}
}

func TestBlendModes(t *testing.T) {
	d := New()
	id, _ := d.CreateTexture(1, 1, gputypes.TextureFormatRGBA8Unorm, false, 1)
	tex, _ := d.lookup(id)

	// Opaque base.
	d.blendPixel(tex, 0, 0, geom.Color{R: 1, A: 1}, 1, gpu.BlendSrc)
	if c := tex.rgba.NRGBAAt(0, 0); c.R != 255 || c.A != 255 {
		t.Fatalf("src blend = %+v", c)
	}

	// Half-coverage source over.
	d.blendPixel(tex, 0, 0, geom.Color{B: 1, A: 1}, 0.5, gpu.BlendSrcOver)
	c := tex.rgba.NRGBAAt(0, 0)
	if c.B == 0 || c.R == 0 {
		t.Errorf("src-over blend should mix both colors, got %+v", c)
	}

	d.blendPixel(tex, 0, 0, geom.Color{}, 1, gpu.BlendClear)
	if c := tex.rgba.NRGBAAt(0, 0); c.A != 0 {
		t.Errorf("clear blend = %+v, want transparent", c)
	}
}

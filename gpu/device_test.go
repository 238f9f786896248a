// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/vega/geom"
)

// testDevice is an in-memory Device recording every call.
type testDevice struct {
	mu        sync.Mutex
	nextID    TextureID
	alive     map[TextureID]bool
	created   int
	destroyed int
	uploads   []TextureID
	draws     []drawCall
	events    []string // "upload"/"draw" in call order
	resolves  []TextureID
	mipmaps   []TextureID
	copies    int

	failCreate bool
	failDraw   bool
	noR8       bool
}

type drawCall struct {
	target TextureID
	rec    *DrawRecord
}

func newTestDevice() *testDevice {
	return &testDevice{alive: map[TextureID]bool{}}
}

func (d *testDevice) CreateTexture(width, height int, format gputypes.TextureFormat, mipmapped bool, sampleCount int) (TextureID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failCreate {
		return 0, errors.New("create refused")
	}
	d.nextID++
	d.created++
	d.alive[d.nextID] = true
	return d.nextID, nil
}

func (d *testDevice) UploadTexture(id TextureID, pixels *PixelBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.alive[id] {
		return errors.New("upload to dead texture")
	}
	d.uploads = append(d.uploads, id)
	d.events = append(d.events, "upload")
	return nil
}

func (d *testDevice) DestroyTexture(id TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.alive[id] {
		delete(d.alive, id)
		d.destroyed++
	}
}

func (d *testDevice) SupportsFormat(format gputypes.TextureFormat) bool {
	if format == gputypes.TextureFormatR8Unorm {
		return !d.noR8
	}
	return true
}

func (d *testDevice) ResolveRenderTarget(id TextureID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resolves = append(d.resolves, id)
	return nil
}

func (d *testDevice) RegenerateMipmaps(id TextureID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mipmaps = append(d.mipmaps, id)
	return nil
}

func (d *testDevice) CopyRenderTargetToTexture(src, dst TextureID, srcRect geom.Rect, dstX, dstY int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.copies++
	return nil
}

func (d *testDevice) Draw(target TextureID, rec *DrawRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failDraw {
		return errors.New("draw refused")
	}
	d.draws = append(d.draws, drawCall{target: target, rec: rec})
	d.events = append(d.events, "draw")
	return nil
}

// solidSource is a PixelSource producing a constant-coverage buffer.
type solidSource struct {
	width, height int
	alpha         bool
	fail          bool
	produced      int
	mu            sync.Mutex
}

func (s *solidSource) Size() (int, int) { return s.width, s.height }

func (s *solidSource) AlphaOnly() bool { return s.alpha }

func (s *solidSource) Produce() *PixelBuffer {
	s.mu.Lock()
	s.produced++
	s.mu.Unlock()
	if s.fail {
		return nil
	}
	format := gputypes.TextureFormatRGBA8Unorm
	bpp := 4
	if s.alpha {
		format = gputypes.TextureFormatR8Unorm
		bpp = 1
	}
	pix := make([]byte, s.width*s.height*bpp)
	for i := range pix {
		pix[i] = 0xff
	}
	return &PixelBuffer{
		Width:  s.width,
		Height: s.height,
		Format: format,
		Stride: s.width * bpp,
		Pix:    pix,
	}
}

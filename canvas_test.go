// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import (
	"testing"

	"github.com/gogpu/vega/backend/software"
	"github.com/gogpu/vega/geom"
	"github.com/gogpu/vega/gpu"
)

func newTestSurface(t *testing.T, width, height int, opts ...SurfaceOption) (*software.Device, *Surface) {
	t.Helper()
	dev := software.New()
	ctx := NewContext(dev)
	if ctx == nil {
		t.Fatal("NewContext returned nil")
	}
	s := NewSurface(ctx, width, height, opts...)
	if s == nil {
		t.Fatal("NewSurface returned nil")
	}
	return dev, s
}

// surfacePixel reads one pixel of the flushed surface from the CPU
// executor.
func surfacePixel(t *testing.T, dev *software.Device, s *Surface, x, y int) (r, g, b, a uint8) {
	t.Helper()
	tex := s.Target().Texture()
	if tex == nil {
		t.Fatal("surface target not instantiated, flush first")
	}
	pix := dev.Pixels(tex.ID())
	if pix == nil {
		t.Fatal("no pixels for surface target")
	}
	c := pix.NRGBAAt(x, y)
	return c.R, c.G, c.B, c.A
}

func opsTasks(s *Surface) []*gpu.OpsRenderTask {
	var out []*gpu.OpsRenderTask
	for _, task := range s.ctx.manager.Tasks() {
		if ot, ok := task.(*gpu.OpsRenderTask); ok {
			out = append(out, ot)
		}
	}
	return out
}

func createTasks(s *Surface) []*gpu.TextureCreateTask {
	var out []*gpu.TextureCreateTask
	for _, task := range s.ctx.manager.Tasks() {
		if ct, ok := task.(*gpu.TextureCreateTask); ok {
			out = append(out, ct)
		}
	}
	return out
}

func TestCanvasClearThenRectsBatch(t *testing.T) {
	dev, s := newTestSurface(t, 72, 72)
	canvas := s.Canvas()

	canvas.Clear(geom.Black)
	blue := Paint{Color: geom.Color{B: 1, A: 1}}
	for i := 0; i < 36; i++ {
		x := float32((i % 6) * 12)
		y := float32((i / 6) * 12)
		canvas.DrawRect(geom.MakeXYWH(x, y, 8, 8), blue)
	}

	tasks := opsTasks(s)
	if len(tasks) != 1 {
		t.Fatalf("ops tasks = %d, want 1", len(tasks))
	}
	ops := tasks[0].Ops()
	if len(ops) != 2 {
		t.Fatalf("ops = %d, want 2 (clear + merged rects)", len(ops))
	}
	if _, ok := ops[0].(*gpu.ClearOp); !ok {
		t.Errorf("first op = %T, want *gpu.ClearOp", ops[0])
	}
	fr, ok := ops[1].(*gpu.FillRectOp)
	if !ok {
		t.Fatalf("second op = %T, want *gpu.FillRectOp", ops[1])
	}
	if got := fr.RectCount(); got != 36 {
		t.Errorf("RectCount = %d, want 36", got)
	}

	s.Flush()

	if _, _, b, _ := surfacePixel(t, dev, s, 4, 4); b != 255 {
		t.Errorf("pixel inside rect: blue = %d, want 255", b)
	}
	if r, g, b, a := surfacePixel(t, dev, s, 10, 10); r != 0 || g != 0 || b != 0 || a != 255 {
		t.Errorf("pixel between rects = (%d,%d,%d,%d), want opaque black", r, g, b, a)
	}
}

func TestDrawAsClearFullTargetDiscardsPriorOps(t *testing.T) {
	dev, s := newTestSurface(t, 32, 32)
	canvas := s.Canvas()

	canvas.DrawRect(geom.MakeXYWH(2, 2, 4, 4), Paint{Color: geom.Color{B: 1, A: 1}})
	canvas.DrawRect(s.bounds(), Paint{Color: geom.Color{R: 1, A: 1}, Blend: gpu.BlendSrc})

	tasks := opsTasks(s)
	if len(tasks) != 1 {
		t.Fatalf("ops tasks = %d, want 1", len(tasks))
	}
	ops := tasks[0].Ops()
	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1 (full-target clear discards prior draws)", len(ops))
	}
	clear, ok := ops[0].(*gpu.ClearOp)
	if !ok {
		t.Fatalf("op = %T, want *gpu.ClearOp", ops[0])
	}
	if !clear.FullTarget() {
		t.Error("clear should be marked full target")
	}

	s.Flush()
	if r, _, b, _ := surfacePixel(t, dev, s, 3, 3); r != 255 || b != 0 {
		t.Errorf("pixel = red %d blue %d, want discarded blue overwritten by red", r, b)
	}
}

func TestDrawAsClearRejectsTranslucentSrcOver(t *testing.T) {
	_, s := newTestSurface(t, 32, 32)
	canvas := s.Canvas()

	canvas.DrawRect(s.bounds(), Paint{Color: geom.Color{R: 1, A: 0.5}})

	tasks := opsTasks(s)
	if len(tasks) != 1 {
		t.Fatalf("ops tasks = %d, want 1", len(tasks))
	}
	ops := tasks[0].Ops()
	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(ops))
	}
	if _, ok := ops[0].(*gpu.FillRectOp); !ok {
		t.Errorf("op = %T, want *gpu.FillRectOp (translucent src-over cannot clear)", ops[0])
	}
}

func TestClipRectRestrictsDraw(t *testing.T) {
	dev, s := newTestSurface(t, 16, 16)
	canvas := s.Canvas()

	canvas.Clear(geom.Black)
	canvas.Save()
	canvas.ClipRect(geom.MakeRect(2, 2, 10, 10))
	canvas.DrawRect(s.bounds(), Paint{Color: geom.Color{R: 1, A: 0.5}})
	canvas.Restore()

	s.Flush()

	if r, _, _, _ := surfacePixel(t, dev, s, 5, 5); r == 0 {
		t.Error("pixel inside clip should be painted")
	}
	if r, _, _, _ := surfacePixel(t, dev, s, 1, 1); r != 0 {
		t.Errorf("pixel outside clip = red %d, want untouched", r)
	}
	if r, _, _, _ := surfacePixel(t, dev, s, 12, 12); r != 0 {
		t.Errorf("pixel outside clip = red %d, want untouched", r)
	}
}

func TestClipPathMasksDraw(t *testing.T) {
	dev, s := newTestSurface(t, 32, 32)
	canvas := s.Canvas()

	canvas.Clear(geom.Black)
	clip := NewPath()
	clip.AddCircle(16, 16, 10)
	canvas.Save()
	canvas.ClipPath(clip)
	canvas.DrawRect(s.bounds(), Paint{Color: geom.Color{G: 1, A: 1}})
	canvas.Restore()

	s.Flush()

	if _, g, _, _ := surfacePixel(t, dev, s, 16, 16); g == 0 {
		t.Error("pixel at circle center should be painted")
	}
	if _, g, _, _ := surfacePixel(t, dev, s, 2, 2); g != 0 {
		t.Errorf("pixel outside circle = green %d, want untouched", g)
	}
}

func TestClipStackRestores(t *testing.T) {
	_, s := newTestSurface(t, 16, 16)
	canvas := s.Canvas()

	canvas.Save()
	canvas.ClipRect(geom.MakeRect(4, 4, 8, 8))
	if canvas.SaveCount() != 2 {
		t.Errorf("SaveCount = %d, want 2", canvas.SaveCount())
	}
	canvas.Restore()
	if canvas.SaveCount() != 1 {
		t.Errorf("SaveCount after restore = %d, want 1", canvas.SaveCount())
	}
	// The base frame never pops.
	canvas.Restore()
	if canvas.SaveCount() != 1 {
		t.Errorf("SaveCount after extra restore = %d, want 1", canvas.SaveCount())
	}
}

func TestSmallPathTessellates(t *testing.T) {
	dev, s := newTestSurface(t, 32, 32)
	canvas := s.Canvas()

	canvas.Clear(geom.Black)
	tri := NewPath()
	tri.MoveTo(0, 0)
	tri.LineTo(32, 0)
	tri.LineTo(0, 32)
	tri.Close()
	canvas.DrawPath(tri, Paint{Color: geom.Color{G: 1, A: 1}})

	// A three-verb path goes straight to triangles, no texture mask.
	if n := len(createTasks(s)); n != 0 {
		t.Errorf("texture create tasks = %d, want 0 for tessellated path", n)
	}

	s.Flush()

	if _, g, _, _ := surfacePixel(t, dev, s, 4, 4); g == 0 {
		t.Error("pixel inside triangle should be painted")
	}
	if _, g, _, _ := surfacePixel(t, dev, s, 30, 30); g != 0 {
		t.Errorf("pixel outside triangle = green %d, want untouched", g)
	}
}

// zigzagPath builds a path whose verb count exceeds the tessellation
// limit while covering a small device area, which forces the cached
// texture mask route.
func zigzagPath() *Path {
	p := NewPath()
	p.MoveTo(0, 0)
	for i := 1; i < 120; i++ {
		x := float32(i%2) * 50
		y := float32(i) * 50.0 / 120
		p.LineTo(x, y)
	}
	p.Close()
	return p
}

func TestLargePathUsesCachedMask(t *testing.T) {
	_, s := newTestSurface(t, 64, 64)
	canvas := s.Canvas()

	path := zigzagPath()
	paint := Paint{Color: geom.Color{R: 1, A: 1}}
	canvas.DrawPath(path, paint)
	canvas.DrawPath(path, paint)

	// Two draws of one path at one scale share one mask rasterization.
	if n := len(createTasks(s)); n != 1 {
		t.Errorf("texture create tasks = %d, want 1 (mask cached by path identity)", n)
	}

	s.Flush()

	// After the flush the mask lives in the cache: drawing again
	// schedules no new rasterization.
	canvas.DrawPath(path, paint)
	if n := len(createTasks(s)); n != 0 {
		t.Errorf("texture create tasks after reuse = %d, want 0", n)
	}
}

func TestPathMaskKeyedByStroke(t *testing.T) {
	_, s := newTestSurface(t, 64, 64)
	canvas := s.Canvas()

	path := zigzagPath()
	canvas.DrawPath(path, Paint{Color: geom.Color{R: 1, A: 1}})
	canvas.DrawPath(path, Paint{Color: geom.Color{R: 1, A: 1}, Style: PaintStroke, Stroke: DefaultStroke()})

	// Fill and stroke rasterize differently, so each needs its own mask.
	if n := len(createTasks(s)); n != 2 {
		t.Errorf("texture create tasks = %d, want 2 (fill and stroke masks differ)", n)
	}
}

func TestRotatedRectDoesNotMergeWithAligned(t *testing.T) {
	_, s := newTestSurface(t, 64, 64)
	canvas := s.Canvas()

	paint := Paint{Color: geom.Color{B: 1, A: 1}, AntiAlias: true}
	canvas.DrawRect(geom.MakeXYWH(2, 2, 8, 8), paint)
	canvas.Save()
	canvas.Rotate(0.5)
	canvas.DrawRect(geom.MakeXYWH(20, 2, 8, 8), paint)
	canvas.Restore()

	tasks := opsTasks(s)
	if len(tasks) != 1 {
		t.Fatalf("ops tasks = %d, want 1", len(tasks))
	}
	// Aligned fill skips coverage AA, rotated fill needs it: the
	// pipelines differ and the ops stay separate.
	if got := len(tasks[0].Ops()); got != 2 {
		t.Errorf("ops = %d, want 2", got)
	}
}

func TestDrawImage(t *testing.T) {
	dev, s := newTestSurface(t, 16, 16)
	canvas := s.Canvas()

	canvas.Clear(geom.Black)
	im := newTestImage(4, 4)
	canvas.DrawImage(im, 2, 3, NewPaint())

	if n := len(createTasks(s)); n != 1 {
		t.Fatalf("texture create tasks = %d, want 1", n)
	}

	s.Flush()

	if _, _, _, a := surfacePixel(t, dev, s, 3, 4); a != 255 {
		t.Errorf("pixel inside image alpha = %d, want 255", a)
	}

	// The uploaded texture is cached under the image's identity: drawing
	// it again schedules nothing.
	canvas.DrawImage(im, 8, 8, NewPaint())
	if n := len(createTasks(s)); n != 0 {
		t.Errorf("texture create tasks on redraw = %d, want 0", n)
	}
}

func TestDrawSkipsWhenNothingToDraw(t *testing.T) {
	_, s := newTestSurface(t, 16, 16)
	canvas := s.Canvas()

	canvas.DrawRect(geom.MakeXYWH(2, 2, 4, 4), Paint{Color: geom.Color{R: 1, A: 0}})
	canvas.DrawRect(geom.Rect{}, Paint{Color: geom.Color{R: 1, A: 1}})

	if n := len(opsTasks(s)); n != 0 {
		t.Errorf("ops tasks = %d, want 0 for no-op draws", n)
	}
}

func TestDrawLineForcesStroke(t *testing.T) {
	dev, s := newTestSurface(t, 16, 16)
	canvas := s.Canvas()

	canvas.Clear(geom.Black)
	canvas.DrawLine(2, 8, 14, 8, Paint{Color: geom.Color{R: 1, A: 1}, Stroke: Stroke{Width: 2}})

	s.Flush()

	if r, _, _, _ := surfacePixel(t, dev, s, 8, 8); r == 0 {
		t.Error("pixel on line should be painted")
	}
	if r, _, _, _ := surfacePixel(t, dev, s, 8, 2); r != 0 {
		t.Errorf("pixel off line = red %d, want untouched", r)
	}
}

func TestColorFilterSeparatesBatches(t *testing.T) {
	_, s := newTestSurface(t, 32, 32)
	canvas := s.Canvas()

	plain := Paint{Color: geom.Color{B: 1, A: 1}}
	filtered := Paint{Color: geom.Color{B: 1, A: 1}, ColorFilter: LumaColorFilter{}}
	canvas.DrawRect(geom.MakeWH(8, 8), plain)
	canvas.DrawRect(geom.MakeXYWH(10, 0, 8, 8), filtered)
	canvas.DrawRect(geom.MakeXYWH(0, 10, 8, 8), Paint{Color: geom.Color{B: 1, A: 1}, ColorFilter: AlphaThresholdColorFilter{Threshold: 0.5}})

	tasks := opsTasks(s)
	if len(tasks) != 1 {
		t.Fatalf("ops tasks = %d, want 1", len(tasks))
	}
	if got := len(tasks[0].Ops()); got != 3 {
		t.Errorf("ops = %d, want 3 (distinct filters must not merge)", got)
	}
}

func TestPathMaskKeyReferencesReleased(t *testing.T) {
	_, s := newTestSurface(t, 64, 64)
	canvas := s.Canvas()

	p := NewPath()
	p.MoveTo(5, 5)
	p.LineTo(55, 30)
	p.LineTo(10, 55)
	stroke := Paint{Color: geom.Color{R: 1, A: 1}, Style: PaintStroke, Stroke: Stroke{Width: 3}}

	canvas.DrawPath(p, stroke)
	s.Flush()

	// Repeat draws only look the mask up; the path's domain use count
	// must not grow, or the domain slot can never recycle.
	base := p.identityKey().UseCount()
	for i := 0; i < 3; i++ {
		canvas.DrawPath(p, stroke)
		s.Flush()
	}
	if got := p.identityKey().UseCount(); got != base {
		t.Errorf("domain use count after repeat draws = %d, want %d", got, base)
	}
}

func BenchmarkCompileRects(b *testing.B) {
	s := NewSurface(NewContext(software.New()), 256, 256)
	canvas := s.Canvas()
	paint := Paint{Color: geom.Color{B: 1, A: 1}}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 64; j++ {
			x := float32(j%8) * 32
			y := float32(j/8) * 32
			canvas.DrawRect(geom.MakeXYWH(x, y, 30, 30), paint)
		}
		s.Flush()
	}
}

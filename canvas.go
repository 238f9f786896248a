// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import (
	"math"

	"github.com/gogpu/vega/geom"
	"github.com/gogpu/vega/gpu"
)

// pixelAlignTolerance is the slack allowed when deciding whether a
// device-space edge sits on a pixel boundary. Rects within it ride the
// hardware scissor and skip coverage anti-aliasing.
const pixelAlignTolerance = 1e-3

// Canvas records drawing commands against one surface, compiling them
// into batched ops on the surface's render target. A canvas keeps a
// stack of (transform, clip) frames; Save pushes, Restore pops, and the
// base frame covering the full target can never be popped.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	surface *Surface
	stack   []canvasState
}

type canvasState struct {
	matrix geom.Matrix
	clip   clipState
}

// clipState is the accumulated clip in device space. While the clip
// remains an axis-aligned device rectangle only deviceBounds matters;
// once a path or rotated rect enters, the shapes stack up in elements
// and draws under the clip sample a rasterized coverage mask.
type clipState struct {
	deviceBounds geom.Rect
	isRect       bool
	elements     []clipElement
}

// clipElement is one non-rectangular clip shape.
type clipElement struct {
	geo    pathGeometry
	matrix geom.Matrix // local space to device space when clipped
	key    gpu.UniqueKey
}

func newCanvas(s *Surface) *Canvas {
	return &Canvas{
		surface: s,
		stack: []canvasState{{
			matrix: geom.Identity(),
			clip:   clipState{deviceBounds: s.bounds(), isRect: true},
		}},
	}
}

func (c *Canvas) state() *canvasState {
	return &c.stack[len(c.stack)-1]
}

// Save pushes a copy of the current transform and clip.
func (c *Canvas) Save() {
	top := *c.state()
	top.clip.elements = append([]clipElement(nil), top.clip.elements...)
	c.stack = append(c.stack, top)
}

// Restore pops the most recent Save. Popping the base frame is a no-op.
func (c *Canvas) Restore() {
	if len(c.stack) > 1 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

// SaveCount returns the current stack depth; the base frame counts as one.
func (c *Canvas) SaveCount() int { return len(c.stack) }

// Matrix returns the current transform.
func (c *Canvas) Matrix() geom.Matrix { return c.state().matrix }

// SetMatrix replaces the current transform.
func (c *Canvas) SetMatrix(m geom.Matrix) { c.state().matrix = m }

// ResetMatrix restores the identity transform.
func (c *Canvas) ResetMatrix() { c.state().matrix = geom.Identity() }

// Concat composes m into the current transform; m applies in the
// caller's local space, before the existing transform.
func (c *Canvas) Concat(m geom.Matrix) {
	s := c.state()
	s.matrix = s.matrix.Mul(m)
}

// Translate moves the local origin by (dx, dy).
func (c *Canvas) Translate(dx, dy float32) { c.Concat(geom.Translate(dx, dy)) }

// Scale scales local space by (sx, sy).
func (c *Canvas) Scale(sx, sy float32) { c.Concat(geom.Scale(sx, sy)) }

// Rotate rotates local space by the angle in radians.
func (c *Canvas) Rotate(radians float32) { c.Concat(geom.Rotate(radians)) }

// Skew skews local space by the given factors.
func (c *Canvas) Skew(kx, ky float32) { c.Concat(geom.Skew(kx, ky)) }

// ClipRect intersects the current clip with a rectangle in local space.
func (c *Canvas) ClipRect(rect geom.Rect) {
	s := c.state()
	if rect.IsEmpty() {
		s.clip.deviceBounds = geom.Rect{}
		return
	}
	device := s.matrix.MapRect(rect)
	if s.matrix.RectStaysRect() {
		// Still a device-space rect: a pure bounds intersection, no
		// mask needed.
		s.clip.deviceBounds, _ = s.clip.deviceBounds.Intersect(device)
		return
	}
	path := NewPath()
	path.AddRect(rect)
	c.clipWithPath(path, device)
}

// ClipPath intersects the current clip with a path in local space.
func (c *Canvas) ClipPath(path *Path) {
	if path.IsEmpty() {
		c.state().clip.deviceBounds = geom.Rect{}
		return
	}
	s := c.state()
	if rect, ok := path.AsRect(); ok && s.matrix.RectStaysRect() {
		c.ClipRect(rect)
		return
	}
	c.clipWithPath(path, s.matrix.MapRect(path.Bounds()))
}

func (c *Canvas) clipWithPath(path *Path, deviceBBox geom.Rect) {
	s := c.state()
	s.clip.deviceBounds, _ = s.clip.deviceBounds.Intersect(deviceBBox)
	s.clip.isRect = false
	s.clip.elements = append(s.clip.elements, clipElement{
		geo:    path.snapshot(),
		matrix: s.matrix,
		key:    path.identityKey(),
	})
}

// Clear fills the whole surface with color, replacing existing content.
func (c *Canvas) Clear(color geom.Color) {
	c.Save()
	c.ResetMatrix()
	c.DrawRect(c.surface.bounds(), Paint{Color: color, Blend: gpu.BlendSrc})
	c.Restore()
}

// DrawRect fills or strokes a rectangle.
func (c *Canvas) DrawRect(rect geom.Rect, paint Paint) {
	if rect.IsEmpty() || paint.nothingToDraw() {
		return
	}
	if paint.Style == PaintStroke {
		path := NewPath()
		path.AddRect(rect)
		c.DrawPath(path, paint)
		return
	}
	s := c.state()
	deviceBounds, ok := s.matrix.MapRect(rect).Intersect(s.clip.deviceBounds)
	if !ok {
		return
	}
	if c.drawAsClear(rect, paint) {
		return
	}
	op := gpu.NewFillRectOp(paint.Color, rect, s.matrix)
	aligned := s.matrix.RectStaysRect() && pixelAligned(s.matrix.MapRect(rect))
	c.addDrawOp(op, &op.DrawOp, deviceBounds, paint, aligned)
}

// DrawRRect fills or strokes a rounded rectangle.
func (c *Canvas) DrawRRect(rrect geom.RRect, paint Paint) {
	if rrect.RadiusX <= 0 || rrect.RadiusY <= 0 {
		c.DrawRect(rrect.Rect, paint)
		return
	}
	if rrect.Rect.IsEmpty() || paint.nothingToDraw() {
		return
	}
	if paint.Style == PaintStroke {
		path := NewPath()
		path.AddRRect(rrect)
		c.DrawPath(path, paint)
		return
	}
	s := c.state()
	deviceBounds, ok := s.matrix.MapRect(rrect.Rect).Intersect(s.clip.deviceBounds)
	if !ok {
		return
	}
	op := gpu.NewRRectOp(paint.Color, rrect, s.matrix)
	c.addDrawOp(op, &op.DrawOp, deviceBounds, paint, false)
}

// DrawRoundRect fills or strokes a rectangle with uniform corner radii.
func (c *Canvas) DrawRoundRect(rect geom.Rect, rx, ry float32, paint Paint) {
	c.DrawRRect(geom.RRect{Rect: rect, RadiusX: rx, RadiusY: ry}, paint)
}

// DrawOval fills or strokes the ellipse inscribed in rect.
func (c *Canvas) DrawOval(rect geom.Rect, paint Paint) {
	path := NewPath()
	path.AddOval(rect)
	c.DrawPath(path, paint)
}

// DrawCircle fills or strokes a circle.
func (c *Canvas) DrawCircle(cx, cy, radius float32, paint Paint) {
	path := NewPath()
	path.AddCircle(cx, cy, radius)
	c.DrawPath(path, paint)
}

// DrawLine strokes a line segment. The paint's fill style is ignored.
func (c *Canvas) DrawLine(x0, y0, x1, y1 float32, paint Paint) {
	path := NewPath()
	path.MoveTo(x0, y0)
	path.LineTo(x1, y1)
	paint.Style = PaintStroke
	if paint.Stroke.Width <= 0 {
		paint.Stroke = DefaultStroke()
	}
	c.DrawPath(path, paint)
}

// DrawPath fills or strokes a path. Small paths tessellate to triangles
// on the CPU; large paths rasterize once into a cached mask texture
// keyed by the path's identity, the view scale, and the stroke
// parameters, so repeat draws skip rasterization.
func (c *Canvas) DrawPath(path *Path, paint Paint) {
	if path == nil || path.IsEmpty() || paint.nothingToDraw() {
		return
	}
	if paint.Style == PaintFill {
		if rect, ok := path.AsRect(); ok {
			c.DrawRect(rect, paint)
			return
		}
		if rrect, ok := path.AsRRect(); ok {
			c.DrawRRect(rrect, paint)
			return
		}
	}
	s := c.state()
	localBounds := path.Bounds()
	if paint.Style == PaintStroke {
		half := paint.Stroke.Width / 2
		if half < 0.5 {
			half = 0.5
		}
		localBounds = localBounds.Outset(half, half)
	}
	deviceBounds, ok := s.matrix.MapRect(localBounds).Intersect(s.clip.deviceBounds)
	if !ok {
		return
	}

	if paint.Style == PaintFill && shouldTessellate(path, deviceBounds) {
		vertices := tessellateGeometry(path.snapshot())
		if vertices == nil {
			return
		}
		op := gpu.NewTriangulatingPathOp(paint.Color, vertices, s.matrix, deviceBounds)
		c.addDrawOp(op, &op.DrawOp, deviceBounds, paint, false)
		return
	}
	c.drawPathWithMask(path, localBounds, deviceBounds, paint)
}

// drawPathWithMask rasterizes the path into a cached alpha texture and
// draws a rect sampling it as coverage.
func (c *Canvas) drawPathWithMask(path *Path, localBounds, deviceBounds geom.Rect, paint Paint) {
	s := c.state()
	sx, sy := s.matrix.AxisScales()
	if sx <= 0 || sy <= 0 {
		return
	}
	width := int(ceil(localBounds.Width() * sx))
	height := int(ceil(localBounds.Height() * sy))
	if width <= 0 || height <= 0 {
		return
	}

	bk := gpu.NewBytesKey(6)
	bk.WriteFloat(sx)
	bk.WriteFloat(sy)
	var stroke *Stroke
	if paint.Style == PaintStroke {
		stroke = &paint.Stroke
		bk.WriteBool(true)
		paint.Stroke.writeKey(bk)
	} else {
		bk.WriteBool(false)
	}
	key := gpu.Combine(path.identityKey(), bk)
	// The cache takes its own reference when it binds the key; the
	// combined key is only a lookup value here.
	defer key.ReleaseReference(false)

	// Local space to mask pixels: shift the bounds origin, then scale.
	maskMatrix := geom.Scale(sx, sy).Mul(geom.Translate(-localBounds.Left, -localBounds.Top))
	source := newRasterSource(path, maskMatrix, width, height, stroke)
	proxy := c.surface.ctx.provider.CreateTextureProxy(key, source, false)
	if proxy == nil {
		Logger().Debug("path mask unavailable, draw skipped")
		return
	}

	inv, ok := s.matrix.Invert()
	if !ok {
		return
	}
	op := gpu.NewFillRectOp(paint.Color, localBounds, s.matrix)
	op.AddCoverageStage(&gpu.TextureEffect{
		Proxy:       proxy,
		LocalMatrix: maskMatrix.Mul(inv),
	})
	c.addDrawOp(op, &op.DrawOp, deviceBounds, paint, false)
}

// DrawImage draws the image with its top-left corner at (x, y).
func (c *Canvas) DrawImage(im *Image, x, y float32, paint Paint) {
	if im == nil {
		return
	}
	proxy := im.textureProxy(c.surface.ctx)
	if proxy == nil {
		Logger().Debug("image texture unavailable, draw skipped")
		return
	}
	s := c.state()
	rect := geom.MakeXYWH(x, y, float32(im.Width()), float32(im.Height()))
	deviceBounds, ok := s.matrix.MapRect(rect).Intersect(s.clip.deviceBounds)
	if !ok {
		return
	}
	inv, ok := s.matrix.Invert()
	if !ok {
		return
	}
	alpha := paint.Color.A
	if alpha <= 0 {
		alpha = 1
	}
	op := gpu.NewFillRectOp(geom.Color{R: 1, G: 1, B: 1, A: alpha}, rect, s.matrix)
	op.AddColorStage(&gpu.TextureEffect{
		Proxy:       proxy,
		LocalMatrix: geom.Translate(-x, -y).Mul(inv),
	})
	c.addDrawOp(op, &op.DrawOp, deviceBounds, paint, false)
}

// drawAsClear rewrites a qualifying rect fill into a lightweight clear:
// the fill must be shader- and filter-free, keep rectangles axis
// aligned, land on pixel boundaries, and exactly cover the pixel-aligned
// clip or the full target. Blend Clear forces transparent, Src passes
// any color, and every other mode qualifies only fully opaque.
func (c *Canvas) drawAsClear(rect geom.Rect, paint Paint) bool {
	if paint.ColorFilter != nil || paint.Style != PaintFill {
		return false
	}
	color := paint.Color
	switch paint.Blend {
	case gpu.BlendClear:
		color = geom.Transparent
	case gpu.BlendSrc:
	default:
		if !color.IsOpaque() {
			return false
		}
	}
	s := c.state()
	if !s.matrix.RectStaysRect() || !s.clip.isRect {
		return false
	}
	device := s.matrix.MapRect(rect)
	if !pixelAligned(device) || !pixelAligned(s.clip.deviceBounds) {
		return false
	}
	target := c.surface.bounds()
	clip := s.clip.deviceBounds.Round()
	fullTarget := clip == target
	if device.Contains(target) && fullTarget {
		task := c.surface.aboutToDraw(true)
		task.AddOp(gpu.NewClearOp(color, target, true))
		return true
	}
	if device.Contains(clip) {
		task := c.surface.aboutToDraw(fullTarget)
		task.AddOp(gpu.NewClearOp(color, clip, fullTarget))
		return true
	}
	return false
}

// addDrawOp finishes op with clip, AA, and blend state and records it.
// pixelAlignedFill marks a plain axis-aligned fill on pixel boundaries,
// which skips coverage anti-aliasing.
func (c *Canvas) addDrawOp(op gpu.Op, drawOp *gpu.DrawOp, deviceBounds geom.Rect, paint Paint, pixelAlignedFill bool) {
	if !c.applyClip(drawOp, deviceBounds) {
		return
	}
	switch {
	case c.surface.SampleCount() > 1:
		drawOp.SetAA(gpu.AAMSAA)
	case paint.AntiAlias && !pixelAlignedFill:
		drawOp.SetAA(gpu.AACoverage)
	default:
		drawOp.SetAA(gpu.AANone)
	}
	drawOp.SetBlendMode(paint.Blend)
	if paint.ColorFilter != nil {
		drawOp.AddColorStage(paint.ColorFilter)
	}
	task := c.surface.aboutToDraw(false)
	task.AddOp(op)
}

// applyClip folds the accumulated clip into the op: a pixel-aligned
// device rect becomes a hardware scissor, anything else becomes a
// cached coverage-mask stage. Returns false when the clip cannot be
// materialized and the draw must be skipped.
func (c *Canvas) applyClip(drawOp *gpu.DrawOp, deviceBounds geom.Rect) bool {
	s := c.state()
	clip := &s.clip
	target := c.surface.bounds()

	if clip.isRect {
		if clip.deviceBounds.Contains(target) {
			return true
		}
		if pixelAligned(clip.deviceBounds) {
			drawOp.SetScissor(c.scissorRect(clip.deviceBounds.Round()))
			return true
		}
		// Fractional rect clip: scissor the outer pixels, feather the
		// edge in coverage.
		drawOp.SetScissor(c.scissorRect(clip.deviceBounds.RoundOut()))
		drawOp.AddCoverageStage(&gpu.AARectEffect{Rect: clip.deviceBounds})
		return true
	}

	maskBounds := clip.deviceBounds.RoundOut()
	proxy := c.clipMaskProxy(clip, maskBounds)
	if proxy == nil {
		Logger().Debug("clip mask unavailable, draw skipped")
		return false
	}
	drawOp.SetScissor(c.scissorRect(maskBounds))
	drawOp.AddCoverageStage(&gpu.TextureEffect{
		Proxy:       proxy,
		LocalMatrix: geom.Translate(-maskBounds.Left, -maskBounds.Top),
	})
	return true
}

// clipMaskProxy returns the coverage mask for the clip stack, keyed by
// the participating shapes' identities so draws sharing a clip state
// share one mask texture.
func (c *Canvas) clipMaskProxy(clip *clipState, maskBounds geom.Rect) *gpu.TextureProxy {
	bk := gpu.NewBytesKey(4 + len(clip.elements))
	for _, el := range clip.elements[1:] {
		bk.WriteUint32(el.key.DomainID())
	}
	bk.WriteFloat(maskBounds.Left)
	bk.WriteFloat(maskBounds.Top)
	bk.WriteFloat(maskBounds.Right)
	bk.WriteFloat(maskBounds.Bottom)
	key := gpu.Combine(clip.elements[0].key, bk)
	defer key.ReleaseReference(false)

	source := &clipMaskSource{
		elements: append([]clipElement(nil), clip.elements...),
		offset:   geom.Pt(maskBounds.Left, maskBounds.Top),
		width:    int(maskBounds.Width()),
		height:   int(maskBounds.Height()),
	}
	return c.surface.ctx.provider.CreateTextureProxy(key, source, false)
}

// scissorRect converts a device rect into backend scissor coordinates,
// flipping Y for bottom-left-origin targets.
func (c *Canvas) scissorRect(device geom.Rect) geom.Rect {
	if c.surface.Origin() == gpu.OriginTopLeft {
		return device
	}
	h := float32(c.surface.Height())
	return geom.MakeRect(device.Left, h-device.Bottom, device.Right, h-device.Top)
}

// pixelAligned reports whether every edge sits on a pixel boundary
// within tolerance.
func pixelAligned(r geom.Rect) bool {
	return onPixel(r.Left) && onPixel(r.Top) && onPixel(r.Right) && onPixel(r.Bottom)
}

func onPixel(v float32) bool {
	_, frac := math.Modf(float64(v))
	if frac < 0 {
		frac = -frac
	}
	return frac <= pixelAlignTolerance || frac >= 1-pixelAlignTolerance
}

func ceil(v float32) float32 {
	return float32(math.Ceil(float64(v)))
}

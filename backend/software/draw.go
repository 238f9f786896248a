// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"errors"
	"image/color"

	"github.com/gogpu/vega/geom"
	"github.com/gogpu/vega/gpu"
)

// Draw implements gpu.Device, executing one resolved draw record by
// walking the pixels of the record's device-space footprint. For each
// covered pixel the source color is modulated by the mask stages and
// blended into the target.
func (d *Device) Draw(target gpu.TextureID, rec *gpu.DrawRecord) error {
	t, err := d.lookup(target)
	if err != nil {
		return err
	}
	if t.rgba == nil {
		return errUnsupportedFormat
	}
	switch rec.Kind {
	case gpu.DrawClear:
		d.drawClear(t, rec)
		return nil
	case gpu.DrawRects:
		for i := range rec.Rects {
			p := &rec.Rects[i]
			d.drawShape(t, rec, p.ViewMatrix, p.Rect, p.Color, func(x, y float32) bool {
				return x >= p.Rect.Left && x < p.Rect.Right && y >= p.Rect.Top && y < p.Rect.Bottom
			})
		}
		return nil
	case gpu.DrawRRects:
		for i := range rec.RRects {
			p := &rec.RRects[i]
			rr := p.RRect
			d.drawShape(t, rec, p.ViewMatrix, rr.Rect, p.Color, func(x, y float32) bool {
				return insideRRect(rr, x, y)
			})
		}
		return nil
	case gpu.DrawTriangles:
		d.drawTriangles(t, rec)
		return nil
	default:
		return errors.New("software: unknown draw kind")
	}
}

func (d *Device) drawClear(t *texture, rec *gpu.DrawRecord) {
	r := rec.ClearRect
	if r.IsEmpty() {
		r = geom.MakeWH(float32(t.width), float32(t.height))
	}
	c := toNRGBA(rec.Color)
	x0, y0, x1, y1 := clampBounds(r, t.width, t.height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			t.rgba.SetNRGBA(x, y, c)
		}
	}
}

// drawShape rasterizes one transformed local-space shape. inside tests
// membership in local coordinates; pixel centers map back through the
// inverse view matrix.
func (d *Device) drawShape(t *texture, rec *gpu.DrawRecord, view geom.Matrix, localBounds geom.Rect, col geom.Color, inside func(x, y float32) bool) {
	inv, ok := view.Invert()
	if !ok {
		return
	}
	device := view.MapRect(localBounds)
	if !rec.Scissor.IsEmpty() {
		var sect bool
		device, sect = device.Intersect(rec.Scissor)
		if !sect {
			return
		}
	}
	x0, y0, x1, y1 := clampBounds(device.RoundOut(), t.width, t.height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			cx, cy := float32(x)+0.5, float32(y)+0.5
			local := inv.Apply(geom.Pt(cx, cy))
			if !inside(local.X, local.Y) {
				continue
			}
			coverage := d.sampleMasks(rec, cx, cy)
			if coverage <= 0 {
				continue
			}
			d.blendPixel(t, x, y, col, coverage, rec.Blend)
		}
	}
}

func (d *Device) drawTriangles(t *texture, rec *gpu.DrawRecord) {
	verts := rec.Vertices
	view := rec.ViewMatrix
	for i := 0; i+5 < len(verts); i += 6 {
		a := view.Apply(geom.Pt(verts[i], verts[i+1]))
		b := view.Apply(geom.Pt(verts[i+2], verts[i+3]))
		c := view.Apply(geom.Pt(verts[i+4], verts[i+5]))
		bounds := triangleBounds(a, b, c)
		if !rec.Scissor.IsEmpty() {
			var sect bool
			bounds, sect = bounds.Intersect(rec.Scissor)
			if !sect {
				continue
			}
		}
		x0, y0, x1, y1 := clampBounds(bounds.RoundOut(), t.width, t.height)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				cx, cy := float32(x)+0.5, float32(y)+0.5
				if !insideTriangle(a, b, c, cx, cy) {
					continue
				}
				coverage := d.sampleMasks(rec, cx, cy)
				if coverage <= 0 {
					continue
				}
				d.blendPixel(t, x, y, rec.Color, coverage, rec.Blend)
			}
		}
	}
}

// sampleMasks multiplies the coverage of every mask stage at a device
// pixel center.
func (d *Device) sampleMasks(rec *gpu.DrawRecord, x, y float32) float32 {
	coverage := float32(1)
	for i := range rec.Masks {
		m := &rec.Masks[i]
		p := m.LocalMatrix.Apply(geom.Pt(x, y))
		coverage *= d.sampleTexture(m.Texture, int(p.X), int(p.Y), m.AlphaOnly)
		if coverage <= 0 {
			return 0
		}
	}
	return coverage
}

func (d *Device) sampleTexture(id gpu.TextureID, x, y int, alphaOnly bool) float32 {
	t, err := d.lookup(id)
	if err != nil {
		return 0
	}
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return 0
	}
	if t.alpha != nil {
		return float32(t.alpha.AlphaAt(x, y).A) / 255
	}
	c := t.rgba.NRGBAAt(x, y)
	if alphaOnly {
		// RGBA fallback masks carry coverage in every channel.
		return float32(c.R) / 255
	}
	return float32(c.A) / 255
}

func (d *Device) blendPixel(t *texture, x, y int, src geom.Color, coverage float32, mode gpu.BlendMode) {
	sa := src.A * coverage
	switch mode {
	case gpu.BlendClear:
		t.rgba.SetNRGBA(x, y, color.NRGBA{})
	case gpu.BlendSrc:
		t.rgba.SetNRGBA(x, y, toNRGBA(geom.Color{R: src.R, G: src.G, B: src.B, A: sa}))
	case gpu.BlendPlus:
		dst := t.rgba.NRGBAAt(x, y)
		t.rgba.SetNRGBA(x, y, color.NRGBA{
			R: addChan(dst.R, src.R*sa),
			G: addChan(dst.G, src.G*sa),
			B: addChan(dst.B, src.B*sa),
			A: addChan(dst.A, sa),
		})
	default:
		// SrcOver and the remaining modes degrade to source-over; the
		// op compiler routes the modes it distinguishes (Clear, Src)
		// above.
		dst := t.rgba.NRGBAAt(x, y)
		da := float32(dst.A) / 255
		outA := sa + da*(1-sa)
		if outA <= 0 {
			t.rgba.SetNRGBA(x, y, color.NRGBA{})
			return
		}
		blend := func(s float32, dc uint8) uint8 {
			dv := float32(dc) / 255
			v := (s*sa + dv*da*(1-sa)) / outA
			return clamp8(v)
		}
		t.rgba.SetNRGBA(x, y, color.NRGBA{
			R: blend(src.R, dst.R),
			G: blend(src.G, dst.G),
			B: blend(src.B, dst.B),
			A: clamp8(outA),
		})
	}
}

func insideRRect(rr geom.RRect, x, y float32) bool {
	r := rr.Rect
	if x < r.Left || x >= r.Right || y < r.Top || y >= r.Bottom {
		return false
	}
	rx, ry := rr.RadiusX, rr.RadiusY
	var dx, dy float32
	switch {
	case x < r.Left+rx && y < r.Top+ry:
		dx, dy = (r.Left+rx-x)/rx, (r.Top+ry-y)/ry
	case x > r.Right-rx && y < r.Top+ry:
		dx, dy = (x-(r.Right-rx))/rx, (r.Top+ry-y)/ry
	case x < r.Left+rx && y > r.Bottom-ry:
		dx, dy = (r.Left+rx-x)/rx, (y-(r.Bottom-ry))/ry
	case x > r.Right-rx && y > r.Bottom-ry:
		dx, dy = (x-(r.Right-rx))/rx, (y-(r.Bottom-ry))/ry
	default:
		return true
	}
	return dx*dx+dy*dy <= 1
}

func insideTriangle(a, b, c geom.Point, x, y float32) bool {
	sign := func(p0, p1 geom.Point) float32 {
		return (x-p1.X)*(p0.Y-p1.Y) - (p0.X-p1.X)*(y-p1.Y)
	}
	d0 := sign(a, b)
	d1 := sign(b, c)
	d2 := sign(c, a)
	hasNeg := d0 < 0 || d1 < 0 || d2 < 0
	hasPos := d0 > 0 || d1 > 0 || d2 > 0
	return !(hasNeg && hasPos)
}

func triangleBounds(a, b, c geom.Point) geom.Rect {
	r := geom.Rect{Left: a.X, Top: a.Y, Right: a.X, Bottom: a.Y}
	for _, p := range []geom.Point{b, c} {
		if p.X < r.Left {
			r.Left = p.X
		}
		if p.X > r.Right {
			r.Right = p.X
		}
		if p.Y < r.Top {
			r.Top = p.Y
		}
		if p.Y > r.Bottom {
			r.Bottom = p.Y
		}
	}
	return r
}

func clampBounds(r geom.Rect, w, h int) (x0, y0, x1, y1 int) {
	x0 = int(r.Left)
	y0 = int(r.Top)
	x1 = int(r.Right + 0.5)
	y1 = int(r.Bottom + 0.5)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}
	return x0, y0, x1, y1
}

func toNRGBA(c geom.Color) color.NRGBA {
	return color.NRGBA{R: clamp8(c.R), G: clamp8(c.G), B: clamp8(c.B), A: clamp8(c.A)}
}

func addChan(dst uint8, add float32) uint8 {
	v := float32(dst)/255 + add
	return clamp8(v)
}

func clamp8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

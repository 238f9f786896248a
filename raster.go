// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/gogpu/vega/geom"
	"github.com/gogpu/vega/gpu"
)

// rasterSource rasterizes a path snapshot into a coverage mask. It
// implements gpu.PixelSource: Produce is pure and safe to run on a
// flush worker goroutine.
type rasterSource struct {
	geo    pathGeometry
	matrix geom.Matrix // path-local space to mask pixel space
	width  int
	height int
	stroke *Stroke
}

func newRasterSource(path *Path, matrix geom.Matrix, width, height int, stroke *Stroke) *rasterSource {
	var st *Stroke
	if stroke != nil {
		s := *stroke
		st = &s
	}
	return &rasterSource{
		geo:    path.snapshot(),
		matrix: matrix,
		width:  width,
		height: height,
		stroke: st,
	}
}

func (s *rasterSource) Size() (int, int) { return s.width, s.height }

func (s *rasterSource) AlphaOnly() bool { return true }

func (s *rasterSource) Produce() *gpu.PixelBuffer {
	if s.width <= 0 || s.height <= 0 {
		return nil
	}
	r := vector.NewRasterizer(s.width, s.height)
	if s.stroke != nil {
		s.rasterizeStroke(r)
	} else {
		s.rasterizeFill(r)
	}
	dst := image.NewAlpha(image.Rect(0, 0, s.width, s.height))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return gpu.BufferFromAlpha(dst)
}

func (s *rasterSource) rasterizeFill(r *vector.Rasterizer) {
	m := s.matrix
	i := 0
	for _, verb := range s.geo.verbs {
		switch verb {
		case verbMoveTo:
			p := m.Apply(s.geo.points[i])
			r.MoveTo(p.X, p.Y)
		case verbLineTo:
			p := m.Apply(s.geo.points[i])
			r.LineTo(p.X, p.Y)
		case verbQuadTo:
			c := m.Apply(s.geo.points[i])
			end := m.Apply(s.geo.points[i+1])
			r.QuadTo(c.X, c.Y, end.X, end.Y)
		case verbCubicTo:
			c1 := m.Apply(s.geo.points[i])
			c2 := m.Apply(s.geo.points[i+1])
			end := m.Apply(s.geo.points[i+2])
			r.CubeTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
		case verbClose:
			r.ClosePath()
		}
		i += pointsPerVerb[verb]
	}
}

// rasterizeStroke approximates the stroke outline with one quad per
// flattened segment. Caps are butt; joins are covered by segment
// overlap at the shared vertex.
func (s *rasterSource) rasterizeStroke(r *vector.Rasterizer) {
	width := s.stroke.Width
	if width <= 0 {
		width = 1
	}
	scale := s.matrix.MaxScale()
	half := width * scale / 2
	if half < 0.5 {
		half = 0.5
	}
	for _, ring := range flattenGeometry(s.geo) {
		n := len(ring)
		for i := 0; i < n; i++ {
			a := s.matrix.Apply(ring[i])
			b := s.matrix.Apply(ring[(i+1)%n])
			dx, dy := b.X-a.X, b.Y-a.Y
			length := hypotf(dx, dy)
			if length == 0 {
				continue
			}
			// Unit normal scaled to the half stroke width.
			nx := -dy / length * half
			ny := dx / length * half
			r.MoveTo(a.X+nx, a.Y+ny)
			r.LineTo(b.X+nx, b.Y+ny)
			r.LineTo(b.X-nx, b.Y-ny)
			r.LineTo(a.X-nx, a.Y-ny)
			r.ClosePath()
		}
	}
}

// clipMaskSource rasterizes a stack of clip paths into one multiplied
// coverage mask.
type clipMaskSource struct {
	elements []clipElement
	offset   geom.Point // device-space origin of the mask
	width    int
	height   int
}

func (s *clipMaskSource) Size() (int, int) { return s.width, s.height }

func (s *clipMaskSource) AlphaOnly() bool { return true }

func (s *clipMaskSource) Produce() *gpu.PixelBuffer {
	if s.width <= 0 || s.height <= 0 || len(s.elements) == 0 {
		return nil
	}
	var acc *image.Alpha
	for _, el := range s.elements {
		m := geom.Translate(-s.offset.X, -s.offset.Y).Mul(el.matrix)
		src := rasterSource{geo: el.geo, matrix: m, width: s.width, height: s.height}
		r := vector.NewRasterizer(s.width, s.height)
		src.rasterizeFill(r)
		layer := image.NewAlpha(image.Rect(0, 0, s.width, s.height))
		r.Draw(layer, layer.Bounds(), image.Opaque, image.Point{})
		if acc == nil {
			acc = layer
			continue
		}
		// Intersection of clip shapes multiplies coverage.
		for i := range acc.Pix {
			acc.Pix[i] = uint8(uint16(acc.Pix[i]) * uint16(layer.Pix[i]) / 255)
		}
	}
	return gpu.BufferFromAlpha(acc)
}

func hypotf(x, y float32) float32 {
	return float32(math.Hypot(float64(x), float64(y)))
}

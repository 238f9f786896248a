// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import (
	"runtime"

	"github.com/gogpu/vega/geom"
	"github.com/gogpu/vega/gpu"
)

type pathVerb uint8

const (
	verbMoveTo pathVerb = iota
	verbLineTo
	verbQuadTo
	verbCubicTo
	verbClose
)

// pointsPerVerb maps a verb to the control points it consumes.
var pointsPerVerb = [...]int{verbMoveTo: 1, verbLineTo: 1, verbQuadTo: 2, verbCubicTo: 3, verbClose: 0}

// kappa approximates a quarter circle with one cubic segment.
const kappa = 0.5522847498

// Path is a mutable sequence of verbs and control points describing
// vector geometry. A path carries a lazily allocated cache identity:
// rasterized masks of the path are keyed off it, so repeated draws of
// one path reuse one texture. Any mutation retires the identity, which
// lets previously cached masks age out instead of serving stale
// geometry.
//
// A Path is not safe for concurrent mutation.
type Path struct {
	data *pathData
}

type pathData struct {
	verbs  []pathVerb
	points []geom.Point
	start  geom.Point
	last   geom.Point

	bounds      geom.Rect
	boundsDirty bool

	// Exact-shape hints, kept only while the path is a single pristine
	// rect/rrect contour. The fast-path compiler uses them to skip
	// tessellation entirely.
	rect  *geom.Rect
	rrect *geom.RRect

	identity     gpu.LazyUniqueKey
	finalizerSet bool
}

// NewPath returns an empty path.
func NewPath() *Path {
	return &Path{data: &pathData{}}
}

func (p *Path) mutate() *pathData {
	d := p.data
	d.boundsDirty = true
	d.rect = nil
	d.rrect = nil
	d.identity.Reset()
	return d
}

// Reset empties the path.
func (p *Path) Reset() {
	d := p.mutate()
	d.verbs = d.verbs[:0]
	d.points = d.points[:0]
	d.start = geom.Point{}
	d.last = geom.Point{}
	d.bounds = geom.Rect{}
	d.boundsDirty = false
}

// IsEmpty reports whether the path has no verbs.
func (p *Path) IsEmpty() bool {
	return len(p.data.verbs) == 0
}

// VerbCount returns the number of recorded verbs.
func (p *Path) VerbCount() int { return len(p.data.verbs) }

// PointCount returns the number of recorded control points.
func (p *Path) PointCount() int { return len(p.data.points) }

// MoveTo starts a new contour at (x, y).
func (p *Path) MoveTo(x, y float32) {
	d := p.mutate()
	d.verbs = append(d.verbs, verbMoveTo)
	d.points = append(d.points, geom.Pt(x, y))
	d.start = geom.Pt(x, y)
	d.last = d.start
}

// LineTo adds a line from the current point to (x, y).
func (p *Path) LineTo(x, y float32) {
	d := p.mutate()
	d.verbs = append(d.verbs, verbLineTo)
	d.points = append(d.points, geom.Pt(x, y))
	d.last = geom.Pt(x, y)
}

// QuadTo adds a quadratic segment controlled by (cx, cy) ending at (x, y).
func (p *Path) QuadTo(cx, cy, x, y float32) {
	d := p.mutate()
	d.verbs = append(d.verbs, verbQuadTo)
	d.points = append(d.points, geom.Pt(cx, cy), geom.Pt(x, y))
	d.last = geom.Pt(x, y)
}

// CubicTo adds a cubic segment through two control points ending at (x, y).
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float32) {
	d := p.mutate()
	d.verbs = append(d.verbs, verbCubicTo)
	d.points = append(d.points, geom.Pt(c1x, c1y), geom.Pt(c2x, c2y), geom.Pt(x, y))
	d.last = geom.Pt(x, y)
}

// Close closes the current contour back to its starting point.
func (p *Path) Close() {
	d := p.mutate()
	d.verbs = append(d.verbs, verbClose)
	d.last = d.start
}

// AddRect appends a rectangle contour. A rectangle added to an empty
// path keeps its exact-shape hint for the fast draw path.
func (p *Path) AddRect(r geom.Rect) {
	if r.IsEmpty() {
		return
	}
	wasEmpty := p.IsEmpty()
	p.MoveTo(r.Left, r.Top)
	p.LineTo(r.Right, r.Top)
	p.LineTo(r.Right, r.Bottom)
	p.LineTo(r.Left, r.Bottom)
	p.Close()
	if wasEmpty {
		rect := r
		p.data.rect = &rect
	}
}

// AddRRect appends a rounded-rectangle contour, keeping the exact-shape
// hint when added to an empty path. Radii are clamped to half the
// rectangle's extent; zero radii degrade to AddRect.
func (p *Path) AddRRect(rr geom.RRect) {
	r := rr.Rect
	if r.IsEmpty() {
		return
	}
	rx := clampf(rr.RadiusX, 0, r.Width()/2)
	ry := clampf(rr.RadiusY, 0, r.Height()/2)
	if rx <= 0 || ry <= 0 {
		p.AddRect(r)
		return
	}
	wasEmpty := p.IsEmpty()
	cx := rx * (1 - kappa)
	cy := ry * (1 - kappa)
	p.MoveTo(r.Left+rx, r.Top)
	p.LineTo(r.Right-rx, r.Top)
	p.CubicTo(r.Right-cx, r.Top, r.Right, r.Top+cy, r.Right, r.Top+ry)
	p.LineTo(r.Right, r.Bottom-ry)
	p.CubicTo(r.Right, r.Bottom-cy, r.Right-cx, r.Bottom, r.Right-rx, r.Bottom)
	p.LineTo(r.Left+rx, r.Bottom)
	p.CubicTo(r.Left+cx, r.Bottom, r.Left, r.Bottom-cy, r.Left, r.Bottom-ry)
	p.LineTo(r.Left, r.Top+ry)
	p.CubicTo(r.Left, r.Top+cy, r.Left+cx, r.Top, r.Left+rx, r.Top)
	p.Close()
	if wasEmpty {
		rrect := geom.RRect{Rect: r, RadiusX: rx, RadiusY: ry}
		p.data.rrect = &rrect
	}
}

// AddOval appends an ellipse inscribed in r.
func (p *Path) AddOval(r geom.Rect) {
	p.AddRRect(geom.RRect{Rect: r, RadiusX: r.Width() / 2, RadiusY: r.Height() / 2})
	// A full ellipse is not a rounded rect for fast-path purposes.
	p.data.rrect = nil
}

// AddCircle appends a circle centered at (cx, cy).
func (p *Path) AddCircle(cx, cy, radius float32) {
	if radius <= 0 {
		return
	}
	p.AddOval(geom.MakeRect(cx-radius, cy-radius, cx+radius, cy+radius))
}

// AsRect returns the rectangle the path exactly describes, if any.
func (p *Path) AsRect() (geom.Rect, bool) {
	if p.data.rect != nil {
		return *p.data.rect, true
	}
	return geom.Rect{}, false
}

// AsRRect returns the rounded rectangle the path exactly describes, if any.
func (p *Path) AsRRect() (geom.RRect, bool) {
	if p.data.rrect != nil {
		return *p.data.rrect, true
	}
	return geom.RRect{}, false
}

// Bounds returns the path's control-point bounding box. Curves are
// bounded by their control polygons, so the box is conservative.
func (p *Path) Bounds() geom.Rect {
	d := p.data
	if d.boundsDirty {
		var b geom.Rect
		for i, pt := range d.points {
			if i == 0 {
				b = geom.Rect{Left: pt.X, Top: pt.Y, Right: pt.X, Bottom: pt.Y}
				continue
			}
			if pt.X < b.Left {
				b.Left = pt.X
			}
			if pt.X > b.Right {
				b.Right = pt.X
			}
			if pt.Y < b.Top {
				b.Top = pt.Y
			}
			if pt.Y > b.Bottom {
				b.Bottom = pt.Y
			}
		}
		d.bounds = b
		d.boundsDirty = false
	}
	return d.bounds
}

// identityKey returns the path's cache identity, allocating the backing
// domain on first use. The domain's strong reference is released when
// the path is collected, letting cached masks degrade to scratch reuse.
// The finalizer is installed once per pathData; mutation only resets
// the lazy key, so the next identityKey call hands out a fresh domain
// still covered by the same finalizer.
func (p *Path) identityKey() gpu.UniqueKey {
	d := p.data
	if !d.finalizerSet {
		d.finalizerSet = true
		runtime.SetFinalizer(d, func(d *pathData) {
			d.identity.Reset()
		})
	}
	return d.identity.Get()
}

// snapshot copies the path's geometry for use by a rasterizer source.
// The copy is immune to later mutation of the path, which may happen
// between recording and flush.
func (p *Path) snapshot() pathGeometry {
	d := p.data
	return pathGeometry{
		verbs:  append([]pathVerb(nil), d.verbs...),
		points: append([]geom.Point(nil), d.points...),
		bounds: p.Bounds(),
	}
}

// pathGeometry is an immutable copy of a path's verbs and points.
type pathGeometry struct {
	verbs  []pathVerb
	points []geom.Point
	bounds geom.Rect
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

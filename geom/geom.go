// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package geom provides the small geometry vocabulary shared by the
// vega canvas layer and the gpu resource/task core: points, rectangles,
// rounded rectangles, affine matrices, and premultiplied colors.
package geom

import "math"

// Point is a position in 2D space.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Offset returns the point translated by (dx, dy).
func (p Point) Offset(dx, dy float32) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height int
}

// IsEmpty reports whether either dimension is not positive.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle with float32 edges.
// A rect with Right <= Left or Bottom <= Top is empty.
type Rect struct {
	Left, Top, Right, Bottom float32
}

// MakeRect returns the rectangle spanning (left, top) to (right, bottom).
func MakeRect(left, top, right, bottom float32) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// MakeXYWH returns the rectangle at (x, y) with the given extent.
func MakeXYWH(x, y, w, h float32) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// MakeWH returns the rectangle spanning the origin to (w, h).
func MakeWH(w, h float32) Rect {
	return Rect{Right: w, Bottom: h}
}

// Width returns the horizontal extent.
func (r Rect) Width() float32 { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() float32 { return r.Bottom - r.Top }

// IsEmpty reports whether the rectangle encloses no area.
func (r Rect) IsEmpty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Intersect returns the overlap of r and other, and whether it is non-empty.
func (r Rect) Intersect(other Rect) (Rect, bool) {
	out := Rect{
		Left:   maxf(r.Left, other.Left),
		Top:    maxf(r.Top, other.Top),
		Right:  minf(r.Right, other.Right),
		Bottom: minf(r.Bottom, other.Bottom),
	}
	if out.IsEmpty() {
		return Rect{}, false
	}
	return out, true
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rect{
		Left:   minf(r.Left, other.Left),
		Top:    minf(r.Top, other.Top),
		Right:  maxf(r.Right, other.Right),
		Bottom: maxf(r.Bottom, other.Bottom),
	}
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return !other.IsEmpty() && !r.IsEmpty() &&
		r.Left <= other.Left && r.Top <= other.Top &&
		r.Right >= other.Right && r.Bottom >= other.Bottom
}

// Outset grows the rectangle by dx horizontally and dy vertically.
func (r Rect) Outset(dx, dy float32) Rect {
	return Rect{Left: r.Left - dx, Top: r.Top - dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Round returns the rectangle with each edge rounded to the nearest integer.
func (r Rect) Round() Rect {
	return Rect{
		Left:   roundf(r.Left),
		Top:    roundf(r.Top),
		Right:  roundf(r.Right),
		Bottom: roundf(r.Bottom),
	}
}

// RoundOut returns the smallest integer-aligned rectangle containing r.
func (r Rect) RoundOut() Rect {
	return Rect{
		Left:   floorf(r.Left),
		Top:    floorf(r.Top),
		Right:  ceilf(r.Right),
		Bottom: ceilf(r.Bottom),
	}
}

// Scale scales all edges by (sx, sy).
func (r Rect) Scale(sx, sy float32) Rect {
	return Rect{Left: r.Left * sx, Top: r.Top * sy, Right: r.Right * sx, Bottom: r.Bottom * sy}
}

// RRect is a rectangle with elliptical corner radii. All four corners
// share the same radii pair.
type RRect struct {
	Rect    Rect
	RadiusX float32
	RadiusY float32
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func roundf(v float32) float32 {
	return float32(math.Round(float64(v)))
}

func floorf(v float32) float32 {
	return float32(math.Floor(float64(v)))
}

func ceilf(v float32) float32 {
	return float32(math.Ceil(float64(v)))
}

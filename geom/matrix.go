// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import "math"

// Matrix is a 2D affine transform:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix struct {
	A, B, C, D, E, F float32
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate returns a translation matrix.
func Translate(dx, dy float32) Matrix {
	return Matrix{A: 1, D: 1, E: dx, F: dy}
}

// Scale returns a scaling matrix.
func Scale(sx, sy float32) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotate returns a rotation matrix for the given angle in radians.
func Rotate(radians float32) Matrix {
	sin := float32(math.Sin(float64(radians)))
	cos := float32(math.Cos(float64(radians)))
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Skew returns a skew matrix.
func Skew(kx, ky float32) Matrix {
	return Matrix{A: 1, B: ky, C: kx, D: 1}
}

// Mul returns m * other, applying other before m.
func (m Matrix) Mul(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

// Apply transforms the point p.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// MapRect returns the bounding box of the transformed corners of r.
func (m Matrix) MapRect(r Rect) Rect {
	p0 := m.Apply(Point{r.Left, r.Top})
	p1 := m.Apply(Point{r.Right, r.Top})
	p2 := m.Apply(Point{r.Right, r.Bottom})
	p3 := m.Apply(Point{r.Left, r.Bottom})
	return Rect{
		Left:   minf(minf(p0.X, p1.X), minf(p2.X, p3.X)),
		Top:    minf(minf(p0.Y, p1.Y), minf(p2.Y, p3.Y)),
		Right:  maxf(maxf(p0.X, p1.X), maxf(p2.X, p3.X)),
		Bottom: maxf(maxf(p0.Y, p1.Y), maxf(p2.Y, p3.Y)),
	}
}

// Invert returns the inverse matrix and whether one exists.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 || float32(math.Abs(float64(det))) < 1e-12 {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, true
}

// RectStaysRect reports whether the transform maps axis-aligned
// rectangles to axis-aligned rectangles, which holds for any
// combination of scaling, translation, and 90-degree rotation.
func (m Matrix) RectStaysRect() bool {
	if m.B == 0 && m.C == 0 {
		return m.A != 0 && m.D != 0
	}
	if m.A == 0 && m.D == 0 {
		return m.B != 0 && m.C != 0
	}
	return false
}

// IsIdentity reports whether m is the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// AxisScales returns the lengths of the transformed unit axis vectors.
// Used to size device-space caches for content drawn under m.
func (m Matrix) AxisScales() (sx, sy float32) {
	sx = float32(math.Hypot(float64(m.A), float64(m.B)))
	sy = float32(math.Hypot(float64(m.C), float64(m.D)))
	return sx, sy
}

// MaxScale returns the larger of the two axis scales.
func (m Matrix) MaxScale() float32 {
	sx, sy := m.AxisScales()
	return maxf(sx, sy)
}

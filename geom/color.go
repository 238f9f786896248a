// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

// Color is an unpremultiplied RGBA color with float32 components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGBA returns an opaque color unless alpha is given explicitly.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Transparent is fully transparent black.
var Transparent = Color{}

// White is opaque white.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Black is opaque black.
var Black = Color{A: 1}

// IsOpaque reports whether alpha is at or above full coverage.
func (c Color) IsOpaque() bool {
	return c.A >= 1
}

// Premultiply returns the color with RGB scaled by alpha.
func (c Color) Premultiply() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// WithAlpha returns the color with its alpha scaled by a.
func (c Color) WithAlpha(a float32) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: c.A * a}
}

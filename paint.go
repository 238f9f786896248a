// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import (
	"github.com/gogpu/vega/geom"
	"github.com/gogpu/vega/gpu"
)

// PaintStyle selects whether geometry is filled or stroked.
type PaintStyle uint8

const (
	// PaintFill fills the shape's interior.
	PaintFill PaintStyle = iota

	// PaintStroke strokes the shape's outline using the paint's Stroke
	// settings.
	PaintStroke
)

// Paint describes how a draw call is shaded: color, blend mode,
// anti-aliasing, fill/stroke, and an optional color filter stage.
// The zero value is an opaque black anti-aliased fill.
type Paint struct {
	Color       geom.Color
	Blend       gpu.BlendMode
	Style       PaintStyle
	Stroke      Stroke
	ColorFilter gpu.Processor
	AntiAlias   bool
}

// NewPaint returns an anti-aliased opaque black fill.
func NewPaint() Paint {
	return Paint{Color: geom.Black, AntiAlias: true}
}

// nothingToDraw reports whether the paint cannot produce visible output.
func (p Paint) nothingToDraw() bool {
	if p.Blend == gpu.BlendClear {
		return false
	}
	return p.Color.A <= 0
}

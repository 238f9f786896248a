// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import "github.com/gogpu/vega/gpu"

// LineCap styles the endpoints of an open stroked contour.
type LineCap uint8

const (
	// CapButt squares the stroke off at the endpoint.
	CapButt LineCap = iota

	// CapRound extends the stroke with a semicircle.
	CapRound

	// CapSquare extends the stroke with a half-width square.
	CapSquare
)

// LineJoin styles the corners of a stroked contour.
type LineJoin uint8

const (
	// JoinMiter extends the outer edges until they meet.
	JoinMiter LineJoin = iota

	// JoinRound rounds the corner.
	JoinRound

	// JoinBevel cuts the corner with a straight edge.
	JoinBevel
)

// Stroke holds the outline parameters of a stroked draw. A zero Width
// means hairline.
type Stroke struct {
	Width      float32
	Cap        LineCap
	Join       LineJoin
	MiterLimit float32
}

// DefaultStroke returns a one-pixel miter stroke with the conventional
// miter limit of 4.
func DefaultStroke() Stroke {
	return Stroke{Width: 1, MiterLimit: 4}
}

// writeKey folds the stroke parameters into a cache key. Two path masks
// rasterized with different stroke settings must never collide.
func (s Stroke) writeKey(bk *gpu.BytesKey) {
	bk.WriteFloat(s.Width)
	bk.WriteUint32(uint32(s.Cap)<<8 | uint32(s.Join))
	bk.WriteFloat(s.MiterLimit)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/vega/geom"
)

// Processor is one stage of a draw's shading pipeline: a color stage
// transforms the fragment color, a coverage stage multiplies coverage.
// The op core treats stages as opaque attachments; the only thing it
// reads is the pipeline key, which decides whether two draws can batch
// into one submission.
type Processor interface {
	// PipelineKey identifies the stage's configuration. Draws merge
	// only when their full stage chains produce identical keys.
	PipelineKey() string
}

// AARectEffect is a coverage stage that anti-aliases the edges of an
// axis-aligned rectangle. The clip resolver emits one for a rect clip
// that is not pixel-aligned and therefore cannot ride the scissor.
type AARectEffect struct {
	Rect geom.Rect
}

// PipelineKey implements Processor.
func (e *AARectEffect) PipelineKey() string {
	return fmt.Sprintf("aarect:%v", e.Rect)
}

// TextureEffect samples a texture proxy, mapping draw-local coordinates
// through LocalMatrix. Used both as a color stage (path mask textures,
// images) and as a coverage stage (clip masks).
type TextureEffect struct {
	Proxy       *TextureProxy
	LocalMatrix geom.Matrix
}

// PipelineKey implements Processor. Proxy identity is part of the key:
// draws sampling different textures never merge.
func (e *TextureEffect) PipelineKey() string {
	return fmt.Sprintf("texture:%p:%v", e.Proxy, e.LocalMatrix)
}

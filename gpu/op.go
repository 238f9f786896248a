// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/vega/geom"
)

// Op is one deferred drawing command recorded into an OpsRenderTask.
// Ops are created during recording and resolved into DrawRecords at
// flush, once every texture they sample has a concrete backing.
type Op interface {
	// Bounds returns the op's device-space pixel bounds.
	Bounds() geom.Rect

	// record resolves the op against the cache into one submission.
	record(cache *ResourceCache) (*DrawRecord, error)
}

// ClearOp clears a region of the target to a color. A full-target
// clear additionally lets the ops task discard everything recorded
// before it.
type ClearOp struct {
	color      geom.Color
	rect       geom.Rect
	fullTarget bool
}

// NewClearOp creates a clear of rect. fullTarget marks a clear known to
// cover the entire render target.
func NewClearOp(color geom.Color, rect geom.Rect, fullTarget bool) *ClearOp {
	return &ClearOp{color: color, rect: rect, fullTarget: fullTarget}
}

// Color returns the clear color.
func (o *ClearOp) Color() geom.Color { return o.color }

// FullTarget reports whether the clear covers the whole target.
func (o *ClearOp) FullTarget() bool { return o.fullTarget }

// Bounds implements Op.
func (o *ClearOp) Bounds() geom.Rect { return o.rect }

func (o *ClearOp) record(cache *ResourceCache) (*DrawRecord, error) {
	rec := &DrawRecord{
		Kind:  DrawClear,
		Color: o.color,
		Blend: BlendSrc,
	}
	if !o.fullTarget {
		rec.ClearRect = o.rect
	}
	return rec, nil
}

// DrawOp carries the state shared by every geometric op: blend mode,
// anti-aliasing choice, scissor, and the color and coverage stage
// chains. Two ops can merge only when all of it matches.
type DrawOp struct {
	bounds    geom.Rect
	blend     BlendMode
	aa        AAType
	scissor   geom.Rect
	colors    []Processor
	coverages []Processor
}

// Bounds implements Op.
func (o *DrawOp) Bounds() geom.Rect { return o.bounds }

// SetBlendMode sets the op's blend mode.
func (o *DrawOp) SetBlendMode(mode BlendMode) { o.blend = mode }

// BlendMode returns the op's blend mode.
func (o *DrawOp) BlendMode() BlendMode { return o.blend }

// SetAA sets the op's anti-aliasing type.
func (o *DrawOp) SetAA(aa AAType) { o.aa = aa }

// AA returns the op's anti-aliasing type.
func (o *DrawOp) AA() AAType { return o.aa }

// SetScissor restricts the op to a pixel-aligned device rect.
func (o *DrawOp) SetScissor(rect geom.Rect) { o.scissor = rect }

// AddColorStage appends a color processor to the pipeline.
func (o *DrawOp) AddColorStage(p Processor) { o.colors = append(o.colors, p) }

// AddCoverageStage appends a coverage processor to the pipeline.
func (o *DrawOp) AddCoverageStage(p Processor) { o.coverages = append(o.coverages, p) }

// pipelineKey flattens everything that must match for two ops to share
// one GPU submission.
func (o *DrawOp) pipelineKey() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "b%d:a%d:s%v", o.blend, o.aa, o.scissor)
	for _, p := range o.colors {
		sb.WriteByte('|')
		sb.WriteString(p.PipelineKey())
	}
	sb.WriteString("//")
	for _, p := range o.coverages {
		sb.WriteByte('|')
		sb.WriteString(p.PipelineKey())
	}
	return sb.String()
}

// fillRecord populates the shared fields of a resolved record,
// instantiating any texture stages.
func (o *DrawOp) fillRecord(rec *DrawRecord, cache *ResourceCache) error {
	rec.Blend = o.blend
	rec.AA = o.aa
	rec.Scissor = o.scissor
	for _, p := range append(append([]Processor(nil), o.colors...), o.coverages...) {
		te, ok := p.(*TextureEffect)
		if !ok {
			continue
		}
		tex, err := te.Proxy.instantiate(cache)
		if err != nil {
			return fmt.Errorf("instantiate mask texture: %w", err)
		}
		rec.Masks = append(rec.Masks, MaskSample{
			Texture:     tex.ID(),
			LocalMatrix: te.LocalMatrix,
			AlphaOnly:   tex.AlphaOnly(),
		})
	}
	return nil
}

// FillRectOp fills one or more transformed rectangles. Subsequent rect
// fills with an identical pipeline fold into the same op.
type FillRectOp struct {
	DrawOp
	rects []RectPaint
}

// NewFillRectOp creates a rect fill. bounds is the device-space
// footprint after viewMatrix.
func NewFillRectOp(color geom.Color, rect geom.Rect, viewMatrix geom.Matrix) *FillRectOp {
	op := &FillRectOp{rects: []RectPaint{{Rect: rect, Color: color, ViewMatrix: viewMatrix}}}
	op.bounds = viewMatrix.MapRect(rect)
	return op
}

// RectCount returns the number of rects batched into the op.
func (o *FillRectOp) RectCount() int { return len(o.rects) }

// Rects returns the batched rect paints.
func (o *FillRectOp) Rects() []RectPaint { return o.rects }

// tryMerge folds other into o when both draw through the same pipeline.
func (o *FillRectOp) tryMerge(other Op) bool {
	fo, ok := other.(*FillRectOp)
	if !ok || o.pipelineKey() != fo.pipelineKey() {
		return false
	}
	o.rects = append(o.rects, fo.rects...)
	o.bounds = o.bounds.Union(fo.bounds)
	return true
}

func (o *FillRectOp) record(cache *ResourceCache) (*DrawRecord, error) {
	rec := &DrawRecord{Kind: DrawRects, Rects: o.rects}
	if err := o.fillRecord(rec, cache); err != nil {
		return nil, err
	}
	return rec, nil
}

// RRectOp fills one or more rounded rectangles, batching like
// FillRectOp.
type RRectOp struct {
	DrawOp
	rrects []RRectPaint
}

// NewRRectOp creates a rounded-rect fill.
func NewRRectOp(color geom.Color, rrect geom.RRect, viewMatrix geom.Matrix) *RRectOp {
	op := &RRectOp{rrects: []RRectPaint{{RRect: rrect, Color: color, ViewMatrix: viewMatrix}}}
	op.bounds = viewMatrix.MapRect(rrect.Rect)
	return op
}

// RRectCount returns the number of rounded rects batched into the op.
func (o *RRectOp) RRectCount() int { return len(o.rrects) }

func (o *RRectOp) tryMerge(other Op) bool {
	ro, ok := other.(*RRectOp)
	if !ok || o.pipelineKey() != ro.pipelineKey() {
		return false
	}
	o.rrects = append(o.rrects, ro.rrects...)
	o.bounds = o.bounds.Union(ro.bounds)
	return true
}

func (o *RRectOp) record(cache *ResourceCache) (*DrawRecord, error) {
	rec := &DrawRecord{Kind: DrawRRects, RRects: o.rrects}
	if err := o.fillRecord(rec, cache); err != nil {
		return nil, err
	}
	return rec, nil
}

// TriangulatingPathOp fills a path pre-tessellated into a triangle
// list. Tessellation happens during recording; only the vertex upload
// and draw are deferred.
type TriangulatingPathOp struct {
	DrawOp
	vertices   []float32
	color      geom.Color
	viewMatrix geom.Matrix
}

// NewTriangulatingPathOp creates a triangle-list fill. vertices are
// path-local x,y pairs; bounds is the device-space footprint.
func NewTriangulatingPathOp(color geom.Color, vertices []float32, viewMatrix geom.Matrix, bounds geom.Rect) *TriangulatingPathOp {
	op := &TriangulatingPathOp{vertices: vertices, color: color, viewMatrix: viewMatrix}
	op.bounds = bounds
	return op
}

// VertexCount returns the number of vertices in the triangle list.
func (o *TriangulatingPathOp) VertexCount() int { return len(o.vertices) / 2 }

func (o *TriangulatingPathOp) record(cache *ResourceCache) (*DrawRecord, error) {
	rec := &DrawRecord{
		Kind:       DrawTriangles,
		Vertices:   o.vertices,
		Color:      o.color,
		ViewMatrix: o.viewMatrix,
	}
	if err := o.fillRecord(rec, cache); err != nil {
		return nil, err
	}
	return rec, nil
}

// mergeable lets the ops task batch without knowing concrete op types.
type mergeable interface {
	tryMerge(other Op) bool
}

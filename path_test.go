// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import (
	"testing"

	"github.com/gogpu/vega/geom"
)

func TestPathRectHint(t *testing.T) {
	p := NewPath()
	p.AddRect(geom.MakeRect(1, 2, 9, 8))

	rect, ok := p.AsRect()
	if !ok {
		t.Fatal("AsRect should succeed for a pristine rect path")
	}
	if rect != geom.MakeRect(1, 2, 9, 8) {
		t.Errorf("AsRect = %+v", rect)
	}

	// A second contour voids the exact-shape hint.
	p.AddRect(geom.MakeRect(20, 20, 30, 30))
	if _, ok := p.AsRect(); ok {
		t.Error("AsRect should fail after a second contour")
	}
}

func TestPathRRectHint(t *testing.T) {
	p := NewPath()
	p.AddRRect(geom.RRect{Rect: geom.MakeWH(20, 10), RadiusX: 3, RadiusY: 2})

	rr, ok := p.AsRRect()
	if !ok {
		t.Fatal("AsRRect should succeed for a pristine rrect path")
	}
	if rr.RadiusX != 3 || rr.RadiusY != 2 {
		t.Errorf("AsRRect radii = (%g, %g), want (3, 2)", rr.RadiusX, rr.RadiusY)
	}

	// Radii clamp to half the extent.
	p = NewPath()
	p.AddRRect(geom.RRect{Rect: geom.MakeWH(10, 10), RadiusX: 50, RadiusY: 50})
	rr, ok = p.AsRRect()
	if !ok {
		t.Fatal("AsRRect should succeed")
	}
	if rr.RadiusX != 5 || rr.RadiusY != 5 {
		t.Errorf("clamped radii = (%g, %g), want (5, 5)", rr.RadiusX, rr.RadiusY)
	}

	// Zero radii degrade to a plain rect.
	p = NewPath()
	p.AddRRect(geom.RRect{Rect: geom.MakeWH(10, 10)})
	if _, ok := p.AsRRect(); ok {
		t.Error("AsRRect should fail for zero radii")
	}
	if _, ok := p.AsRect(); !ok {
		t.Error("AsRect should succeed for zero radii")
	}
}

func TestPathOvalIsNotRRect(t *testing.T) {
	p := NewPath()
	p.AddOval(geom.MakeWH(10, 10))
	if _, ok := p.AsRRect(); ok {
		t.Error("an oval should not report itself as a rounded rect")
	}
}

func TestPathBounds(t *testing.T) {
	p := NewPath()
	p.MoveTo(3, 4)
	p.LineTo(10, -2)
	p.QuadTo(20, 30, 5, 5)

	b := p.Bounds()
	want := geom.MakeRect(3, -2, 20, 30)
	if b != want {
		t.Errorf("Bounds = %+v, want %+v (control-point box)", b, want)
	}
}

func TestPathMutationRetiresIdentity(t *testing.T) {
	p := NewPath()
	p.AddRect(geom.MakeWH(10, 10))

	first := p.identityKey()
	if p.identityKey().DomainID() != first.DomainID() {
		t.Error("identity should be stable without mutation")
	}

	p.LineTo(50, 50)
	second := p.identityKey()
	if second.DomainID() == first.DomainID() {
		t.Error("mutation should retire the path's cache identity")
	}

	// Repeated mutate/get cycles keep working on one path.
	p.LineTo(60, 10)
	third := p.identityKey()
	if third.DomainID() == second.DomainID() {
		t.Error("second mutation should retire the identity again")
	}
	if p.identityKey().DomainID() != third.DomainID() {
		t.Error("identity should be stable after the last mutation")
	}
}

func TestPathReset(t *testing.T) {
	p := NewPath()
	p.AddRect(geom.MakeWH(10, 10))
	p.Reset()

	if !p.IsEmpty() {
		t.Error("Reset should empty the path")
	}
	if b := p.Bounds(); !b.IsEmpty() {
		t.Errorf("Bounds after reset = %+v, want empty", b)
	}
}

func TestTessellationHeuristic(t *testing.T) {
	small := NewPath()
	small.MoveTo(0, 0)
	small.LineTo(10, 0)
	small.LineTo(0, 10)
	small.Close()
	if !shouldTessellate(small, geom.MakeWH(10, 10)) {
		t.Error("small paths always tessellate")
	}

	big := zigzagPath()
	if shouldTessellate(big, geom.MakeWH(50, 50)) {
		t.Error("a dense path over a small area should take the mask route")
	}
	// The same path over a huge area amortizes its buffer cost.
	if !shouldTessellate(big, geom.MakeWH(4096, 4096)) {
		t.Error("a dense path over a large area should tessellate")
	}
}

func TestTessellateTriangle(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(0, 10)
	p.Close()

	verts := tessellateGeometry(p.snapshot())
	if len(verts) != 6 {
		t.Fatalf("vertices = %d floats, want 6 (one triangle)", len(verts))
	}
}

func TestTessellateEmpty(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	if verts := tessellateGeometry(p.snapshot()); verts != nil {
		t.Errorf("a two-point contour should flatten to nothing, got %d floats", len(verts))
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import "github.com/gogpu/vega/geom"

// Thresholds steering the tessellate-vs-texture-mask decision for path
// draws. Small paths tessellate straight to triangles; beyond that a
// path tessellates only while its estimated buffer cost stays below the
// device-space area it covers, otherwise it is rasterized once into a
// cached mask texture.
const (
	// tessellationVerbLimit is the verb count below which a path always
	// tessellates.
	tessellationVerbLimit = 100

	// tessellationBufferFactor estimates tessellation buffer bytes per
	// path point, weighed against the device-space bounding box area.
	tessellationBufferFactor = 170
)

// curveSteps is the fixed subdivision used when flattening quadratic
// and cubic segments.
const curveSteps = 16

// shouldTessellate applies the size heuristic for a path about to be
// drawn into deviceBounds.
func shouldTessellate(path *Path, deviceBounds geom.Rect) bool {
	if path.VerbCount() <= tessellationVerbLimit {
		return true
	}
	area := deviceBounds.Width() * deviceBounds.Height()
	return float32(path.PointCount())*tessellationBufferFactor <= area
}

// flattenGeometry reduces curves to line segments, returning one point
// ring per closed contour.
func flattenGeometry(geo pathGeometry) [][]geom.Point {
	var contours [][]geom.Point
	var current []geom.Point
	var start geom.Point
	var last geom.Point

	flush := func() {
		if len(current) >= 3 {
			contours = append(contours, current)
		}
		current = nil
	}

	i := 0
	for _, verb := range geo.verbs {
		switch verb {
		case verbMoveTo:
			flush()
			start = geo.points[i]
			last = start
			current = append(current, start)
		case verbLineTo:
			last = geo.points[i]
			current = append(current, last)
		case verbQuadTo:
			c, end := geo.points[i], geo.points[i+1]
			for s := 1; s <= curveSteps; s++ {
				t := float32(s) / curveSteps
				u := 1 - t
				current = append(current, geom.Point{
					X: u*u*last.X + 2*u*t*c.X + t*t*end.X,
					Y: u*u*last.Y + 2*u*t*c.Y + t*t*end.Y,
				})
			}
			last = end
		case verbCubicTo:
			c1, c2, end := geo.points[i], geo.points[i+1], geo.points[i+2]
			for s := 1; s <= curveSteps; s++ {
				t := float32(s) / curveSteps
				u := 1 - t
				current = append(current, geom.Point{
					X: u*u*u*last.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
					Y: u*u*u*last.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
				})
			}
			last = end
		case verbClose:
			last = start
		}
		i += pointsPerVerb[verb]
	}
	flush()
	return contours
}

// tessellateGeometry converts a path into a triangle list, fanning each
// contour from its first vertex. Returns nil when the path flattens to
// nothing.
func tessellateGeometry(geo pathGeometry) []float32 {
	contours := flattenGeometry(geo)
	if len(contours) == 0 {
		return nil
	}
	var vertices []float32
	for _, ring := range contours {
		anchor := ring[0]
		for i := 1; i+1 < len(ring); i++ {
			vertices = append(vertices,
				anchor.X, anchor.Y,
				ring[i].X, ring[i].Y,
				ring[i+1].X, ring[i+1].Y,
			)
		}
	}
	return vertices
}

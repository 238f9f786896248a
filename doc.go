// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vega provides a deferred 2D rendering engine for Go.
//
// # Overview
//
// vega compiles canvas drawing commands into batched device draw calls
// instead of rasterizing them immediately. Draws accumulate as operations
// on render tasks; nothing reaches the device until the surface is
// flushed. This lets the engine merge compatible draws, rewrite
// full-target fills into clears, and cache expensive intermediates
// (path masks, image uploads) across frames.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/vega"
//		"github.com/gogpu/vega/backend"
//	)
//
//	b, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	ctx := vega.NewContext(b.Device())
//	s := vega.NewSurface(ctx, 512, 512)
//
//	canvas := s.Canvas()
//	canvas.Clear(geom.White)
//	canvas.DrawCircle(256, 256, 100, vega.Paint{Color: geom.Color{R: 1, A: 1}})
//	s.Flush()
//
// # Architecture
//
// The library is organized into:
//   - Public API: Canvas, Surface, Image, Path, Paint
//   - gpu: resource keys, proxies, the cache, render tasks
//   - backend: pluggable devices (software, wgpu) plus a gogpu presenter
//   - geom: rects, matrices, colors
//
// # Coordinate System
//
// Canvas coordinates put the origin at the top-left with Y increasing
// down. Surfaces backed by bottom-left-origin render targets flip
// scissor rects at flush time; canvas code never sees the difference.
package vega

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend provides a pluggable device backend abstraction.
//
// A backend supplies the gpu.Device that executes flushed render
// tasks. The software backend runs everything on the CPU and is
// registered automatically; the wgpu backend runs against a real GPU
// and registers itself when imported.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime:
//
//	import (
//		"github.com/gogpu/vega/backend"
//		_ "github.com/gogpu/vega/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	b, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	ctx := vega.NewContext(b.Device())
//
// # Available Backends
//
//   - "software": CPU executor (always available)
//   - "wgpu": GPU via gogpu/wgpu
package backend

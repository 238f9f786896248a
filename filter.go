// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vega

import (
	"fmt"

	"github.com/gogpu/vega/gpu"
)

// LumaColorFilter converts the source color's luminance into alpha.
// The shading math itself lives in the backend; the filter's role in
// this layer is its pipeline identity, which keeps draws with and
// without the filter in separate batches.
type LumaColorFilter struct{}

// PipelineKey implements gpu.Processor.
func (LumaColorFilter) PipelineKey() string { return "luma" }

// AlphaThresholdColorFilter discards pixels whose alpha falls below
// Threshold.
type AlphaThresholdColorFilter struct {
	Threshold float32
}

// PipelineKey implements gpu.Processor.
func (f AlphaThresholdColorFilter) PipelineKey() string {
	return fmt.Sprintf("alphathreshold:%g", f.Threshold)
}

var (
	_ gpu.Processor = LumaColorFilter{}
	_ gpu.Processor = AlphaThresholdColorFilter{}
)

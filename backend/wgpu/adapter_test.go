// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func TestSelectAdapterPrefersDiscrete(t *testing.T) {
	adapters := make([]hal.ExposedAdapter, 3)
	adapters[0].Info.Name = "llvmpipe"
	adapters[0].Info.DeviceType = gputypes.DeviceType(0)
	adapters[1].Info.Name = "integrated"
	adapters[1].Info.DeviceType = gputypes.DeviceTypeIntegratedGPU
	adapters[2].Info.Name = "discrete"
	adapters[2].Info.DeviceType = gputypes.DeviceTypeDiscreteGPU

	got := selectAdapter(adapters)
	if got == nil || got.Info.Name != "discrete" {
		t.Fatalf("selectAdapter picked %+v, want the discrete GPU", got)
	}
}

func TestSelectAdapterFallsBackToIntegrated(t *testing.T) {
	adapters := make([]hal.ExposedAdapter, 2)
	adapters[0].Info.Name = "llvmpipe"
	adapters[0].Info.DeviceType = gputypes.DeviceType(0)
	adapters[1].Info.Name = "integrated"
	adapters[1].Info.DeviceType = gputypes.DeviceTypeIntegratedGPU

	got := selectAdapter(adapters)
	if got == nil || got.Info.Name != "integrated" {
		t.Fatalf("selectAdapter picked %+v, want the integrated GPU", got)
	}
}

func TestSelectAdapterLastResort(t *testing.T) {
	adapters := make([]hal.ExposedAdapter, 1)
	adapters[0].Info.Name = "llvmpipe"
	adapters[0].Info.DeviceType = gputypes.DeviceType(0)

	if got := selectAdapter(adapters); got == nil || got.Info.Name != "llvmpipe" {
		t.Fatalf("selectAdapter picked %+v, want the only adapter", got)
	}

	if got := selectAdapter(nil); got != nil {
		t.Fatalf("selectAdapter(nil) = %+v, want nil", got)
	}
}

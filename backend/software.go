// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"github.com/gogpu/vega/backend/software"
	"github.com/gogpu/vega/gpu"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU-based software backend.
	BackendSoftware = "software"
	// BackendWgpu is the name of the GPU backend (gogpu/wgpu).
	BackendWgpu = "wgpu"
)

// SoftwareBackend executes render tasks on the CPU. It is always
// available and serves as the fallback when no GPU backend is
// registered.
type SoftwareBackend struct {
	initialized bool
	dev         *software.Device
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() RenderBackend {
		return &SoftwareBackend{}
	})
}

// NewSoftwareBackend creates a new software rendering backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init initializes the backend.
func (b *SoftwareBackend) Init() error {
	if b.initialized {
		return nil
	}
	b.dev = software.New()
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *SoftwareBackend) Close() {
	b.dev = nil
	b.initialized = false
}

// Device returns the CPU executor, or nil before Init.
func (b *SoftwareBackend) Device() gpu.Device {
	if !b.initialized {
		return nil
	}
	return b.dev
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu provides the GPU rendering backend built on gogpu/wgpu.
//
// The backend owns the GPU bootstrap through the wgpu hardware
// abstraction layer: instance, adapter, logical device and queue. Draw
// execution currently delegates to the CPU executor while command
// translation is built out; the acquired handles are exposed for
// integrations that upload and present the executor's output
// themselves.
package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend.
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/vega/backend"
	"github.com/gogpu/vega/backend/software"
	"github.com/gogpu/vega/gpu"
)

// ErrNoGPU is returned when no suitable GPU adapter is found.
var ErrNoGPU = errors.New("wgpu: no suitable GPU adapter")

// Backend is a GPU rendering backend using gogpu/wgpu.
type Backend struct {
	mu sync.RWMutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  AdapterInfo

	exec        *software.Device
	initialized bool
}

// init registers the wgpu backend on package import.
//
// To enable it, import this package for its side effect:
//
//	import _ "github.com/gogpu/vega/backend/wgpu"
func init() {
	backend.Register(backend.BackendWgpu, func() backend.RenderBackend {
		return &Backend{}
	})
}

// New creates a new wgpu backend.
// The backend must be initialized with Init() before use.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendWgpu
}

// Init initializes the backend: it creates a HAL instance, picks the
// strongest available adapter and opens a logical device with its
// command queue.
//
// Returns an error if GPU initialization fails.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	hb, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan not available", ErrNoGPU)
	}
	instance, err := hb.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}

	selected := selectAdapter(instance.EnumerateAdapters(nil))
	if selected == nil {
		instance.Destroy()
		return fmt.Errorf("%w: no adapters enumerated", ErrNoGPU)
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}

	b.instance = instance
	b.device = openDev.Device
	b.queue = openDev.Queue
	b.adapter = AdapterInfo{
		Name:       selected.Info.Name,
		DeviceType: selected.Info.DeviceType,
	}
	b.exec = software.New()
	b.initialized = true
	gpu.Logger().Info("wgpu: backend initialized", "adapter", b.adapter.String())

	return nil
}

// Close releases all backend resources.
// The backend should not be used after Close is called.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}

	// The queue belongs to the device and goes with it.
	if b.device != nil {
		b.device.Destroy()
		b.device = nil
	}
	b.queue = nil
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.adapter = AdapterInfo{}
	b.exec = nil
	b.initialized = false
}

// Device returns the render task executor, or nil before Init.
func (b *Backend) Device() gpu.Device {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.initialized {
		return nil
	}
	return b.exec
}

// IsInitialized returns true if the backend has been initialized.
func (b *Backend) IsInitialized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized
}

// Adapter describes the selected GPU adapter. The zero value is
// returned before Init.
func (b *Backend) Adapter() AdapterInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.adapter
}

// HALDevice returns the opened logical device, or nil before Init.
// Integrations that upload the executor's output themselves submit
// through it.
func (b *Backend) HALDevice() hal.Device {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.device
}

// HALQueue returns the device's command queue, or nil before Init.
func (b *Backend) HALQueue() hal.Queue {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.queue
}

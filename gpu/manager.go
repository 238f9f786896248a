// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/vega/geom"
)

// DrawingManager owns the deferred task queue built up between flushes.
// Recording is single-threaded by contract (one goroutine per context);
// only task preparation inside Flush fans out to workers.
//
// Texture create tasks are queued separately from render tasks and all
// run before them at flush. A mask or image proxy can be recorded while
// an ops task that samples it is already open; the upload still has to
// land before that ops task draws.
type DrawingManager struct {
	cache   *ResourceCache
	creates []*TextureCreateTask
	tasks   []RenderTask

	activeOps *OpsRenderTask
}

// NewDrawingManager creates a manager resolving proxies against cache.
func NewDrawingManager(cache *ResourceCache) *DrawingManager {
	return &DrawingManager{cache: cache}
}

// Tasks returns the pending task queue in execution order: texture
// create tasks first, then render tasks.
func (m *DrawingManager) Tasks() []RenderTask {
	if len(m.creates) == 0 {
		return m.tasks
	}
	all := make([]RenderTask, 0, len(m.creates)+len(m.tasks))
	for _, ct := range m.creates {
		all = append(all, ct)
	}
	return append(all, m.tasks...)
}

// AddOpsTask returns an ops task collecting draws for target,
// continuing the current one when it already renders into the same
// target. Any open ops task for a different target is closed first.
func (m *DrawingManager) AddOpsTask(target *RenderTargetProxy) *OpsRenderTask {
	if m.activeOps != nil && !m.activeOps.closed && m.activeOps.target == target {
		return m.activeOps
	}
	m.CloseActiveOpsTask()
	t := &OpsRenderTask{target: target}
	m.tasks = append(m.tasks, t)
	m.activeOps = t
	return t
}

// CloseActiveOpsTask seals the open ops task, if any. The next draw
// starts a fresh task; call this before scheduling a task that reads
// the target.
func (m *DrawingManager) CloseActiveOpsTask() {
	if m.activeOps != nil {
		m.activeOps.Close()
		m.activeOps = nil
	}
}

// AddTextureResolveTask schedules a resolve/mipmap pass for target.
func (m *DrawingManager) AddTextureResolveTask(target *RenderTargetProxy) {
	m.CloseActiveOpsTask()
	m.tasks = append(m.tasks, &TextureResolveRenderTask{target: target})
}

// AddRenderTargetCopyTask schedules a copy of srcRect from source into
// dest at (dstX, dstY).
func (m *DrawingManager) AddRenderTargetCopyTask(source *RenderTargetProxy, dest *TextureProxy, srcRect geom.Rect, dstX, dstY int) {
	m.CloseActiveOpsTask()
	m.tasks = append(m.tasks, &RenderTargetCopyTask{
		source:  source,
		dest:    dest,
		srcRect: srcRect,
		dstX:    dstX,
		dstY:    dstY,
	})
}

// addTextureCreateTask schedules materialization of proxy from source.
// Create tasks do not interrupt the open ops task; they go on the
// upload queue, which runs ahead of every render task at flush so the
// ops task samples a populated texture even when the proxy was recorded
// after the task opened.
func (m *DrawingManager) addTextureCreateTask(proxy *TextureProxy, source PixelSource) {
	m.creates = append(m.creates, &TextureCreateTask{proxy: proxy, source: source})
}

// Flush executes every pending task exactly once, then empties the
// queue. Texture create tasks produce their pixels on worker goroutines
// and upload before any render task runs; render tasks then execute
// serially in creation order. A failing task is logged at warn level
// and skipped, and the flush continues.
func (m *DrawingManager) Flush(dev Device) {
	m.CloseActiveOpsTask()
	creates := m.creates
	tasks := m.tasks
	m.creates = nil
	m.tasks = nil
	if len(creates) == 0 && len(tasks) == 0 {
		return
	}

	var g errgroup.Group
	for _, ct := range creates {
		g.Go(ct.prepare)
	}
	// Production failures surface again per task during execution.
	_ = g.Wait()

	for i, ct := range creates {
		if err := m.executeTask(ct, dev); err != nil {
			Logger().Warn("texture create task failed",
				"index", i,
				"error", err)
		}
	}
	for i, task := range tasks {
		if err := m.executeTask(task, dev); err != nil {
			Logger().Warn("render task failed",
				"task", fmt.Sprintf("%T", task),
				"index", i,
				"error", err)
		}
	}
}

func (m *DrawingManager) executeTask(task RenderTask, dev Device) error {
	switch t := task.(type) {
	case *OpsRenderTask:
		return t.execute(dev, m.cache)
	case *TextureResolveRenderTask:
		return t.execute(dev, m.cache)
	case *RenderTargetCopyTask:
		return t.execute(dev, m.cache)
	case *TextureCreateTask:
		return t.execute(dev, m.cache)
	default:
		return fmt.Errorf("unknown render task %T", task)
	}
}

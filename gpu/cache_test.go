// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

func newTexHandle(t *testing.T, cache *ResourceCache, size int) *Handle {
	t.Helper()
	tex, err := NewTexture(cache.dev, size, size, gputypes.TextureFormatRGBA8Unorm, false, 1)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	return cache.Insert(tex, tex.ScratchKey())
}

func TestFindScratchExcludesReferenced(t *testing.T) {
	cache := NewResourceCache(newTestDevice())
	h := newTexHandle(t, cache, 16)
	key := h.Texture().ScratchKey()

	if got := cache.FindScratch(key); got != nil {
		t.Error("FindScratch should skip a referenced resource")
	}
	h.Release()
	got := cache.FindScratch(key)
	if got == nil {
		t.Fatal("FindScratch should return the idle resource")
	}
	if got.Texture() != h.Texture() {
		t.Error("FindScratch returned a different resource")
	}
	// Now referenced again.
	if cache.FindScratch(key) != nil {
		t.Error("FindScratch should not hand out the same resource twice")
	}
}

func TestFindScratchSkipsStrongPinnedUnique(t *testing.T) {
	cache := NewResourceCache(newTestDevice())
	h := newTexHandle(t, cache, 16)
	scratch := h.Texture().ScratchKey()

	key := NewUniqueKey()
	cache.AssignUniqueKey(h, key)
	h.Release()

	if cache.FindScratch(scratch) != nil {
		t.Error("a strong-pinned unique resource must not be scratch-matched")
	}

	key.ReleaseReference(true)
	got := cache.FindScratch(scratch)
	if got == nil {
		t.Fatal("once exclusivity lapses the resource returns to the scratch pool")
	}
	// The lapsed binding is gone: unique lookup misses.
	if cache.FindUnique(key) != nil {
		t.Error("lapsed unique binding should be dissolved")
	}
	got.Release()
}

func TestFindUniqueWhileReferenced(t *testing.T) {
	cache := NewResourceCache(newTestDevice())
	h := newTexHandle(t, cache, 16)
	key := NewUniqueKey()
	cache.AssignUniqueKey(h, key)

	// Still referenced by h; unique lookup returns it anyway.
	got := cache.FindUnique(key)
	if got == nil {
		t.Fatal("FindUnique should return a referenced resource")
	}
	if got.Texture() != h.Texture() {
		t.Error("FindUnique returned a different resource")
	}
	got.Release()
	h.Release()
	key.ReleaseReference(true)
}

func TestAssignUniqueKeyReplaces(t *testing.T) {
	cache := NewResourceCache(newTestDevice())
	h1 := newTexHandle(t, cache, 16)
	h2 := newTexHandle(t, cache, 32)
	key := NewUniqueKey()

	cache.AssignUniqueKey(h1, key)
	cache.AssignUniqueKey(h2, key)

	got := cache.FindUnique(key)
	if got == nil {
		t.Fatal("FindUnique missed after reassignment")
	}
	if got.Texture() != h2.Texture() {
		t.Error("the identity must move to the newly assigned resource")
	}
	if got.Texture() == h1.Texture() {
		t.Error("the displaced resource kept the identity")
	}
	got.Release()
}

func TestPurgeUntilMemoryTo(t *testing.T) {
	dev := newTestDevice()
	cache := NewResourceCache(dev)

	var handles []*Handle
	for i := 0; i < 4; i++ {
		handles = append(handles, newTexHandle(t, cache, 16))
	}
	before := cache.TotalBytes()
	if before == 0 {
		t.Fatal("expected tracked memory")
	}

	// Everything referenced: purge evicts nothing.
	cache.PurgeUntilMemoryTo(0)
	if cache.TotalBytes() != before {
		t.Error("purge must not evict referenced resources")
	}

	for _, h := range handles {
		h.Release()
	}
	cache.PurgeUntilMemoryTo(0)
	if got := cache.TotalBytes(); got != 0 {
		t.Errorf("TotalBytes after purge = %d, want 0", got)
	}
	if got := cache.Count(); got != 0 {
		t.Errorf("Count after purge = %d, want 0", got)
	}
	if dev.destroyed != 4 {
		t.Errorf("destroyed = %d, want 4", dev.destroyed)
	}
}

func TestPurgeKeepsStrongPinned(t *testing.T) {
	cache := NewResourceCache(newTestDevice())
	h := newTexHandle(t, cache, 16)
	key := NewUniqueKey()
	cache.AssignUniqueKey(h, key)
	h.Release()

	cache.PurgeUntilMemoryTo(0)
	if cache.Count() != 1 {
		t.Error("a strong-pinned resource must survive the purge, even over budget")
	}

	key.ReleaseReference(true)
	cache.PurgeUntilMemoryTo(0)
	if cache.Count() != 0 {
		t.Error("once unpinned the resource should be evicted")
	}
}

func TestPurgeEvictsLeastRecentlyUsedFirst(t *testing.T) {
	cache := NewResourceCache(newTestDevice())

	old := newTexHandle(t, cache, 16)
	recent := newTexHandle(t, cache, 32)
	old.Release()
	recent.Release()

	// Touch the larger resource so the smaller becomes LRU.
	h := cache.FindScratch(recent.Texture().ScratchKey())
	if h == nil {
		t.Fatal("FindScratch missed")
	}
	h.Release()

	cache.PurgeUntilMemoryTo(recent.Texture().MemoryUsage())
	if cache.Count() != 1 {
		t.Fatalf("Count = %d, want 1", cache.Count())
	}
	if cache.FindScratch(old.Texture().ScratchKey()) != nil {
		t.Error("the least recently used resource should have been evicted")
	}
	if cache.FindScratch(recent.Texture().ScratchKey()) == nil {
		t.Error("the recently used resource should have survived")
	}
}

func TestConcurrentRecycling(t *testing.T) {
	dev := newTestDevice()
	cache := NewResourceCache(dev)

	const workers = 4
	const iterations = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				size := 8 + (i%4)*8
				h := cache.FindScratch(TextureScratchKey(size, size, gputypes.TextureFormatRGBA8Unorm, false, 1))
				if h == nil {
					tex, err := NewTexture(cache.dev, size, size, gputypes.TextureFormatRGBA8Unorm, false, 1)
					if err != nil {
						t.Errorf("NewTexture: %v", err)
						return
					}
					h = cache.Insert(tex, tex.ScratchKey())
				}
				if i%3 == 0 {
					key := NewUniqueKey()
					cache.AssignUniqueKey(h, key)
					key.ReleaseReference(true)
				}
				h.Release()
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()
	for {
		select {
		case <-done:
			cache.PurgeUntilMemoryTo(0)
			if got := cache.TotalBytes(); got != 0 {
				t.Errorf("TotalBytes after final purge = %d, want 0", got)
			}
			return
		default:
			cache.PurgeUntilMemoryTo(0)
		}
	}
}

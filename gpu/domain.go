// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"sync"
	"sync/atomic"
)

// A unique domain is a reference-counted identity token backing a
// UniqueKey. Domains live in a process-wide arena indexed by small
// integer slot, so identity comparison and hashing never touch
// pointers. Each slot carries two counters:
//
//   - use count: any reference to the domain, including passive lookups
//   - strong count: references asserting exclusive ownership intent
//
// A resource bound to a unique key stays exclusively cached only while
// the domain's strong count is positive. Once the strong count reaches
// zero the domain's exclusivity is over for good; the slot is recycled
// for a future domain (with a fresh unique ID) when the use count also
// drops to zero.
type domainRecord struct {
	// id is the domain's identity, regenerated every time the slot is
	// reallocated. Key words embed this value, never the slot index,
	// so a recycled slot can never alias an old key.
	id          atomic.Uint32
	useCount    atomic.Int64
	strongCount atomic.Int64
}

// The arena grows by copy-on-append under the mutex; readers load the
// current slice atomically, keeping counter access lock-free.
var domainArena struct {
	mu      sync.Mutex
	records atomic.Pointer[[]*domainRecord]
	free    []int32
	nextID  atomic.Uint32
}

// domainToken is the narrow ownership token for one domain slot. Key
// types hold a token and go through it for all counter access; nothing
// else can reach the counters. The token captures the domain's identity
// at allocation: every access revalidates it against the slot record,
// so a token outliving its domain goes inert instead of aliasing
// whatever domain the recycled slot hosts next.
type domainToken struct {
	slot int32 // 1-based; 0 means no domain
	id   uint32
}

// allocDomain reserves a slot with use count 1 and strong count 1 and
// returns its token.
func allocDomain() domainToken {
	domainArena.mu.Lock()
	var slot int32
	if n := len(domainArena.free); n > 0 {
		slot = domainArena.free[n-1]
		domainArena.free = domainArena.free[:n-1]
	} else {
		var old []*domainRecord
		if p := domainArena.records.Load(); p != nil {
			old = *p
		}
		grown := make([]*domainRecord, len(old)+1)
		copy(grown, old)
		grown[len(old)] = &domainRecord{}
		domainArena.records.Store(&grown)
		slot = int32(len(grown))
	}
	rec := (*domainArena.records.Load())[slot-1]
	id := domainArena.nextID.Add(1)
	rec.id.Store(id)
	rec.useCount.Store(1)
	rec.strongCount.Store(1)
	domainArena.mu.Unlock()
	return domainToken{slot: slot, id: id}
}

func (t domainToken) valid() bool {
	return t.slot > 0
}

// record returns the live slot record, or nil when the slot has been
// recycled for another domain since the token was made.
func (t domainToken) record() *domainRecord {
	if !t.valid() {
		return nil
	}
	rec := (*domainArena.records.Load())[t.slot-1]
	if rec.id.Load() != t.id {
		return nil
	}
	return rec
}

// uniqueID returns the domain's identity value. The identity is part of
// the token, so it stays stable after the domain dies.
func (t domainToken) uniqueID() uint32 {
	if !t.valid() {
		return 0
	}
	return t.id
}

// useCount returns the total number of references to the domain.
func (t domainToken) useCount() int64 {
	rec := t.record()
	if rec == nil {
		return 0
	}
	return rec.useCount.Load()
}

// strongCount returns the number of strong references to the domain.
func (t domainToken) strongCount() int64 {
	rec := t.record()
	if rec == nil {
		return 0
	}
	return rec.strongCount.Load()
}

// addRef increments the use count, and the strong count when strong is
// set. Dead tokens are ignored.
func (t domainToken) addRef(strong bool) {
	rec := t.record()
	if rec == nil {
		return
	}
	rec.useCount.Add(1)
	if strong {
		rec.strongCount.Add(1)
	}
}

// releaseRef decrements the counters incremented by addRef. Neither
// counter goes negative. When the use count reaches zero the slot is
// returned to the arena free list.
func (t domainToken) releaseRef(strong bool) {
	rec := t.record()
	if rec == nil {
		return
	}
	if strong {
		for {
			n := rec.strongCount.Load()
			if n <= 0 {
				break
			}
			if rec.strongCount.CompareAndSwap(n, n-1) {
				break
			}
		}
	}
	for {
		n := rec.useCount.Load()
		if n <= 0 {
			return
		}
		if rec.useCount.CompareAndSwap(n, n-1) {
			if n == 1 {
				recycleDomain(t.slot)
			}
			return
		}
	}
}

func recycleDomain(slot int32) {
	domainArena.mu.Lock()
	domainArena.free = append(domainArena.free, slot)
	domainArena.mu.Unlock()
}

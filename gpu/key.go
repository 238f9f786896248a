// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"sync/atomic"
	"unsafe"
)

// ResourceKey is the base identity of a cached GPU resource: an opaque
// word sequence with a precomputed hash in word zero. The zero value is
// the empty key, which is valid and matches nothing.
type ResourceKey struct {
	words []uint32
}

func makeResourceKey(payload []uint32) ResourceKey {
	words := make([]uint32, 1+len(payload))
	copy(words[1:], payload)
	words[0] = hashWords(payload)
	return ResourceKey{words: words}
}

// Empty reports whether the key has no identity.
func (k ResourceKey) Empty() bool {
	return len(k.words) == 0
}

// Hash returns the precomputed hash, or 0 for an empty key.
func (k ResourceKey) Hash() uint32 {
	if len(k.words) == 0 {
		return 0
	}
	return k.words[0]
}

// Equal reports whether both keys hold identical word sequences.
func (k ResourceKey) Equal(other ResourceKey) bool {
	if len(k.words) != len(other.words) {
		return false
	}
	for i, w := range k.words {
		if other.words[i] != w {
			return false
		}
	}
	return true
}

// index returns the key's words as a string, suitable for map lookup.
// Hash collisions are resolved here by full content comparison: two
// keys index the same map slot only if every word matches.
func (k ResourceKey) index() string {
	if len(k.words) == 0 {
		return ""
	}
	return unsafe.String((*byte)(unsafe.Pointer(&k.words[0])), len(k.words)*4)
}

// ScratchKey is a value key for interchangeable resources. Multiple
// idle resources may share one scratch key; an in-use resource is never
// returned by scratch lookup until all references are released.
type ScratchKey struct {
	ResourceKey
}

// MakeScratchKey folds the accumulated bytes into a scratch key.
func MakeScratchKey(bytes *BytesKey) ScratchKey {
	return ScratchKey{ResourceKey: makeResourceKey(bytes.words)}
}

// UniqueKey is an identity key bound to exactly one unique domain. At
// most one live resource holds a given unique key at any instant, and
// lookups by unique key return that resource even while it is
// referenced. The zero value is the empty key.
type UniqueKey struct {
	ResourceKey
	token domainToken
}

// NewUniqueKey allocates a fresh domain (use count 1, strong count 1)
// and returns a key bound to it.
func NewUniqueKey() UniqueKey {
	token := allocDomain()
	return UniqueKey{
		ResourceKey: makeResourceKey([]uint32{token.uniqueID()}),
		token:       token,
	}
}

// Combine derives a new UniqueKey that shares base's domain identity
// but differs by the appended bytes. Equal (domain, bytes) pairs
// compare equal; any byte difference produces a distinct key. The
// domain's use count is incremented for the returned key; release it
// with ReleaseReference(false).
func Combine(base UniqueKey, bytes *BytesKey) UniqueKey {
	if base.Empty() {
		return UniqueKey{}
	}
	payload := make([]uint32, 0, 1+len(bytes.words))
	payload = append(payload, base.token.uniqueID())
	payload = append(payload, bytes.words...)
	base.token.addRef(false)
	return UniqueKey{
		ResourceKey: makeResourceKey(payload),
		token:       base.token,
	}
}

// DomainID returns the identity of the key's domain, or 0 for an empty key.
func (k UniqueKey) DomainID() uint32 {
	return k.token.uniqueID()
}

// UseCount returns the total number of references to the key's domain.
func (k UniqueKey) UseCount() int64 {
	return k.token.useCount()
}

// StrongCount returns the number of strong references to the key's domain.
func (k UniqueKey) StrongCount() int64 {
	return k.token.strongCount()
}

// AddReference increments the domain's use count, and its strong count
// when strong is set.
func (k UniqueKey) AddReference(strong bool) {
	k.token.addRef(strong)
}

// ReleaseReference undoes a matching AddReference (or the reference
// granted by NewUniqueKey/Combine). Counters never go negative.
func (k UniqueKey) ReleaseReference(strong bool) {
	k.token.releaseRef(strong)
}

// ResourceHandle is a strong reference to a unique key's domain. While
// any handle is live the keyed resource stays exclusively cached; when
// the last strong reference is released the resource becomes eligible
// for scratch reuse. That transition is one-way.
type ResourceHandle struct {
	key      UniqueKey
	released atomic.Bool
}

// NewResourceHandle takes a strong reference on the key's domain.
func NewResourceHandle(key UniqueKey) *ResourceHandle {
	key.AddReference(true)
	return &ResourceHandle{key: key}
}

// Key returns the handle's unique key.
func (h *ResourceHandle) Key() UniqueKey {
	return h.key
}

// Release drops the strong reference. Safe to call more than once.
func (h *ResourceHandle) Release() {
	if h.released.CompareAndSwap(false, true) {
		h.key.ReleaseReference(true)
	}
}

// LazyUniqueKey defers domain allocation until first use. Get may be
// called concurrently from multiple goroutines and allocates at most
// one domain; Reset must not race with Get.
type LazyUniqueKey struct {
	// state packs the domain token: slot in the high 32 bits, domain
	// identity in the low 32. Zero means no domain.
	state atomic.Uint64
}

func packToken(t domainToken) uint64 {
	return uint64(uint32(t.slot))<<32 | uint64(t.id)
}

func unpackToken(s uint64) domainToken {
	return domainToken{slot: int32(s >> 32), id: uint32(s)}
}

// Get returns the associated UniqueKey, allocating a domain on first
// call. Concurrent callers observe the same key.
func (l *LazyUniqueKey) Get() UniqueKey {
	for {
		if s := l.state.Load(); s != 0 {
			token := unpackToken(s)
			return UniqueKey{
				ResourceKey: makeResourceKey([]uint32{token.uniqueID()}),
				token:       token,
			}
		}
		token := allocDomain()
		if l.state.CompareAndSwap(0, packToken(token)) {
			return UniqueKey{
				ResourceKey: makeResourceKey([]uint32{token.uniqueID()}),
				token:       token,
			}
		}
		// Lost the race; discard the spare domain.
		token.releaseRef(true)
	}
}

// Reset releases the held domain and returns to the empty state. Not
// safe to call concurrently with Get.
func (l *LazyUniqueKey) Reset() {
	if s := l.state.Swap(0); s != 0 {
		unpackToken(s).releaseRef(true)
	}
}

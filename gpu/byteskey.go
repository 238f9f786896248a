// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"math"
)

// BytesKey accumulates a sequence of 32-bit words that parameterize a
// cache key: format flags, scale factors, stroke settings, and the like.
// Append-only; the finished word sequence is folded into a ResourceKey.
type BytesKey struct {
	words []uint32
}

// NewBytesKey returns a BytesKey with capacity for n words.
func NewBytesKey(n int) *BytesKey {
	return &BytesKey{words: make([]uint32, 0, n)}
}

// WriteUint32 appends one word.
func (k *BytesKey) WriteUint32(v uint32) {
	k.words = append(k.words, v)
}

// WriteInt appends an int truncated to 32 bits.
func (k *BytesKey) WriteInt(v int) {
	k.words = append(k.words, uint32(int32(v)))
}

// WriteFloat appends the bit pattern of a float32.
func (k *BytesKey) WriteFloat(v float32) {
	k.words = append(k.words, math.Float32bits(v))
}

// WriteBool appends 0 or 1.
func (k *BytesKey) WriteBool(v bool) {
	if v {
		k.words = append(k.words, 1)
	} else {
		k.words = append(k.words, 0)
	}
}

// WriteBytes appends arbitrary bytes, zero-padded to a word boundary.
func (k *BytesKey) WriteBytes(data []byte) {
	for len(data) >= 4 {
		k.words = append(k.words, binary.LittleEndian.Uint32(data))
		data = data[4:]
	}
	if len(data) > 0 {
		var tail [4]byte
		copy(tail[:], data)
		k.words = append(k.words, binary.LittleEndian.Uint32(tail[:]))
	}
}

// hashWords mixes a word sequence into a 32-bit hash (FNV-1a over the
// little-endian byte view of each word).
func hashWords(words []uint32) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for _, w := range words {
		for i := 0; i < 4; i++ {
			h ^= (w >> (8 * i)) & 0xff
			h *= prime32
		}
	}
	return h
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package bits implements the bit-level wire protocol shared by the
// network layer and the block files. Values append themselves to a
// BitVec and are read back with a Reader.
package bits

import (
	"github.com/bits-and-blooms/bitset"
	"lukechampine.com/uint128"
)

// Serializable is implemented by types with a bit-level wire form.
type Serializable interface {
	ProtoSerialize(bv *BitVec)
}

// ProtoSerialized returns a fresh BitVec holding the wire form of s.
func ProtoSerialized(s Serializable) *BitVec {
	bv := New()
	s.ProtoSerialize(bv)
	return bv
}

// BitVec is an append-only sequence of bits.
type BitVec struct {
	set *bitset.BitSet
	n   uint
}

// New returns an empty BitVec.
func New() *BitVec {
	return &BitVec{set: bitset.New(0)}
}

// FromBytes unpacks b into a BitVec of 8*len(b) bits. The first bit is
// the most significant bit of b[0].
func FromBytes(b []byte) *BitVec {
	bv := &BitVec{set: bitset.New(uint(len(b)) * 8), n: uint(len(b)) * 8}
	for i, c := range b {
		for j := uint(0); j < 8; j++ {
			if c&(0x80>>j) != 0 {
				bv.set.Set(uint(i)*8 + j)
			}
		}
	}
	return bv
}

// Len returns the number of bits pushed.
func (bv *BitVec) Len() uint {
	return bv.n
}

// Bit returns the bit at position i. Positions past the end read as false.
func (bv *BitVec) Bit(i uint) bool {
	return i < bv.n && bv.set.Test(i)
}

// Push appends a single bit.
func (bv *BitVec) Push(b bool) {
	if b {
		bv.set.Set(bv.n)
	}
	bv.n++
}

// PushFixed appends the low size bits of v, least significant first.
func (bv *BitVec) PushFixed(size uint, v uint64) {
	for i := uint(0); i < size; i++ {
		bv.Push((v>>i)&1 == 1)
	}
}

// PushU128 appends a full 128-bit value, low word first.
func (bv *BitVec) PushU128(v uint128.Uint128) {
	bv.PushFixed(64, v.Lo)
	bv.PushFixed(64, v.Hi)
}

// PushVarlen appends v in 7-bit groups, each preceded by a continuation
// bit, terminated by a cleared bit.
func (bv *BitVec) PushVarlen(v uint64) {
	for v != 0 {
		bv.Push(true)
		bv.PushFixed(7, v&0x7f)
		v >>= 7
	}
	bv.Push(false)
}

// PushBytes appends a varlen length followed by each byte.
func (bv *BitVec) PushBytes(b []byte) {
	bv.PushVarlen(uint64(len(b)))
	for _, c := range b {
		bv.PushFixed(8, uint64(c))
	}
}

// PushList appends each element behind a set bit and closes the list
// with a cleared bit.
func PushList[T Serializable](bv *BitVec, xs []T) {
	for _, x := range xs {
		bv.Push(true)
		x.ProtoSerialize(bv)
	}
	bv.Push(false)
}

// Bytes packs the bits, most significant bit first, padding the final
// byte with zeros.
func (bv *BitVec) Bytes() []byte {
	out := make([]byte, (bv.n+7)/8)
	for i, ok := bv.set.NextSet(0); ok && i < bv.n; i, ok = bv.set.NextSet(i + 1) {
		out[i/8] |= 0x80 >> (i % 8)
	}
	return out
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package bits

import (
	"errors"

	"lukechampine.com/uint128"
)

var (
	// ErrOutOfBits is returned when a read runs past the end of the BitVec.
	ErrOutOfBits = errors.New("bits: unexpected end of bit vector")
	// ErrVarlenOverflow is returned when a varlen number does not fit 64 bits.
	ErrVarlenOverflow = errors.New("bits: varlen number overflows 64 bits")
	// ErrTooLong is returned when a length prefix exceeds the caller's limit.
	ErrTooLong = errors.New("bits: length exceeds limit")
)

// Reader consumes a BitVec from the front.
type Reader struct {
	bv  *BitVec
	pos uint
}

func NewReader(bv *BitVec) *Reader {
	return &Reader{bv: bv}
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() uint {
	return r.bv.n - r.pos
}

func (r *Reader) Bit() (bool, error) {
	if r.pos >= r.bv.n {
		return false, ErrOutOfBits
	}
	b := r.bv.Bit(r.pos)
	r.pos++
	return b, nil
}

// Fixed reads size bits (at most 64), least significant first.
func (r *Reader) Fixed(size uint) (uint64, error) {
	if r.Remaining() < size {
		return 0, ErrOutOfBits
	}
	var v uint64
	for i := uint(0); i < size; i++ {
		if r.bv.Bit(r.pos) {
			v |= 1 << i
		}
		r.pos++
	}
	return v, nil
}

func (r *Reader) U128() (uint128.Uint128, error) {
	lo, err := r.Fixed(64)
	if err != nil {
		return uint128.Zero, err
	}
	hi, err := r.Fixed(64)
	if err != nil {
		return uint128.Zero, err
	}
	return uint128.New(lo, hi), nil
}

func (r *Reader) Varlen() (uint64, error) {
	var (
		v     uint64
		shift uint
	)
	for {
		more, err := r.Bit()
		if err != nil {
			return 0, err
		}
		if !more {
			return v, nil
		}
		if shift >= 64 {
			return 0, ErrVarlenOverflow
		}
		group, err := r.Fixed(7)
		if err != nil {
			return 0, err
		}
		if shift == 63 && group > 1 {
			return 0, ErrVarlenOverflow
		}
		v |= group << shift
		shift += 7
	}
}

// ReadBytes reads a byte string written by PushBytes. Lengths above max
// are rejected before anything is allocated.
func (r *Reader) ReadBytes(max uint64) ([]byte, error) {
	n, err := r.Varlen()
	if err != nil {
		return nil, err
	}
	if n > max {
		return nil, ErrTooLong
	}
	if uint64(r.Remaining()) < n*8 {
		return nil, ErrOutOfBits
	}
	out := make([]byte, n)
	for i := range out {
		c, _ := r.Fixed(8)
		out[i] = byte(c)
	}
	return out, nil
}

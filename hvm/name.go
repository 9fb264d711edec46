// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package hvm

import (
	"errors"
	"strings"

	"github.com/kindelia/kindelia/bits"
)

const (
	// NameBits is the width of a packed Name.
	NameBits = 60
	// MaxNameLen is the number of 6-bit characters a Name can hold.
	MaxNameLen = NameBits / 6

	nameAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_"
)

var ErrInvalidName = errors.New("hvm: invalid name")

// Name is an identifier packed as up to ten 6-bit characters. Character
// code 0 is padding, so a Name never has more than NameBits significant
// bits.
type Name uint64

// NewName validates a packed Name.
func NewName(v uint64) (Name, error) {
	if v>>NameBits != 0 {
		return 0, ErrInvalidName
	}
	return Name(v), nil
}

func NameFromString(s string) (Name, error) {
	if len(s) == 0 || len(s) > MaxNameLen {
		return 0, ErrInvalidName
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(nameAlphabet, s[i])
		if idx < 0 {
			return 0, ErrInvalidName
		}
		v = v<<6 | uint64(idx+1)
	}
	return Name(v), nil
}

// MustName is NameFromString for names known to be valid.
func MustName(s string) Name {
	n, err := NameFromString(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Name) String() string {
	var out []byte
	for v := uint64(n); v != 0; v >>= 6 {
		if c := v & 0x3f; c != 0 {
			out = append(out, nameAlphabet[c-1])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func (n Name) ProtoSerialize(bv *bits.BitVec) {
	bv.PushFixed(NameBits, uint64(n))
}

func DeserializeName(r *bits.Reader) (Name, error) {
	v, err := r.Fixed(NameBits)
	if err != nil {
		return 0, err
	}
	return Name(v), nil
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package hvm

import (
	"errors"
	"fmt"

	"lukechampine.com/uint128"
)

// Tag identifies the kind of node a RawCell points to.
type Tag uint8

const (
	DP0 Tag = iota
	DP1
	VAR
	ARG
	ERA
	LAM
	APP
	SUP
	CTR
	FUN
	OP2
	NUM

	tagCount
)

var tagStrings = map[Tag]string{
	DP0: "DP0",
	DP1: "DP1",
	VAR: "VAR",
	ARG: "ARG",
	ERA: "ERA",
	LAM: "LAM",
	APP: "APP",
	SUP: "SUP",
	CTR: "CTR",
	FUN: "FUN",
	OP2: "OP2",
	NUM: "NUM",
}

func (t Tag) String() string {
	if s, ok := tagStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Tag (%d)", uint8(t))
}

const (
	// ExtBits is the width of the ext field of a cell.
	ExtBits = 60
	// LocBits is the width of a heap location.
	LocBits = 48

	extMask = 1<<ExtBits - 1
)

var (
	ErrInvalidCell = errors.New("hvm: invalid cell")
	ErrInvalidLoc  = errors.New("hvm: invalid location")
)

// RawCell is a heap word: a 4-bit tag, a 60-bit ext field and a
// 64-bit val field, from most to least significant.
type RawCell uint128.Uint128

// NewRawCell validates a heap word. Words carrying a tag outside the
// known set are rejected.
func NewRawCell(v uint128.Uint128) (RawCell, error) {
	if Tag(v.Hi>>ExtBits) >= tagCount {
		return RawCell{}, ErrInvalidCell
	}
	return RawCell(v), nil
}

// NewCell packs a heap word from its fields.
func NewCell(tag Tag, ext, val uint64) (RawCell, error) {
	if tag >= tagCount || ext > extMask {
		return RawCell{}, ErrInvalidCell
	}
	return RawCell(uint128.New(val, uint64(tag)<<ExtBits|ext)), nil
}

func (c RawCell) Tag() Tag {
	return Tag(c.Hi >> ExtBits)
}

func (c RawCell) Ext() uint64 {
	return c.Hi & extMask
}

func (c RawCell) Val() uint64 {
	return c.Lo
}

func (c RawCell) Uint128() uint128.Uint128 {
	return uint128.Uint128(c)
}

// Loc is an index into the VM heap.
type Loc uint64

func NewLoc(v uint64) (Loc, error) {
	if v>>LocBits != 0 {
		return 0, ErrInvalidLoc
	}
	return Loc(v), nil
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package diskser

import (
	"encoding/binary"
	"io"

	"lukechampine.com/uint128"
)

// Int128 is a signed 128-bit integer in two's complement.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Int128From64 sign extends v.
func Int128From64(v int64) Int128 {
	var hi int64
	if v < 0 {
		hi = -1
	}
	return Int128{Hi: hi, Lo: uint64(v)}
}

// fixed is a little endian codec of a constant width. All integer codecs
// are built from it so that the 0 / 1..W-1 / W bytes rule is shared.
type fixed[T any] struct {
	width int
	put   func(b []byte, v T)
	get   func(b []byte) T
}

func (c fixed[T]) Encode(w io.Writer, v T) (int, error) {
	buf := make([]byte, c.width)
	c.put(buf, v)
	return w.Write(buf)
}

func (c fixed[T]) Decode(r io.Reader) (T, bool, error) {
	var zero T
	buf := make([]byte, c.width)
	ok, err := readFull(r, buf)
	if !ok {
		return zero, false, err
	}
	return c.get(buf), true, nil
}

var (
	U8 Codec[uint8] = fixed[uint8]{
		width: 1,
		put:   func(b []byte, v uint8) { b[0] = v },
		get:   func(b []byte) uint8 { return b[0] },
	}

	I8 Codec[int8] = fixed[int8]{
		width: 1,
		put:   func(b []byte, v int8) { b[0] = byte(v) },
		get:   func(b []byte) int8 { return int8(b[0]) },
	}

	U64 Codec[uint64] = fixed[uint64]{
		width: 8,
		put:   binary.LittleEndian.PutUint64,
		get:   binary.LittleEndian.Uint64,
	}

	I64 Codec[int64] = fixed[int64]{
		width: 8,
		put:   func(b []byte, v int64) { binary.LittleEndian.PutUint64(b, uint64(v)) },
		get:   func(b []byte) int64 { return int64(binary.LittleEndian.Uint64(b)) },
	}

	U128 Codec[uint128.Uint128] = fixed[uint128.Uint128]{
		width: 16,
		put:   func(b []byte, v uint128.Uint128) { v.PutBytes(b) },
		get:   uint128.FromBytes,
	}

	I128 Codec[Int128] = fixed[Int128]{
		width: 16,
		put: func(b []byte, v Int128) {
			binary.LittleEndian.PutUint64(b[:8], v.Lo)
			binary.LittleEndian.PutUint64(b[8:], uint64(v.Hi))
		},
		get: func(b []byte) Int128 {
			return Int128{
				Lo: binary.LittleEndian.Uint64(b[:8]),
				Hi: int64(binary.LittleEndian.Uint64(b[8:])),
			}
		},
	}
)

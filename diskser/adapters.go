// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package diskser

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/kindelia/kindelia/bits"
	"github.com/kindelia/kindelia/hvm"
	"github.com/kindelia/kindelia/params/hash"
	"github.com/kindelia/kindelia/types"
	"lukechampine.com/uint128"
)

var (
	// HashCodec encodes a hash as its raw bytes.
	HashCodec Codec[types.Hash] = hashCodec{}

	// CellCodec encodes a heap word as a U128. Decoding rejects words
	// with an unknown tag.
	CellCodec Codec[hvm.RawCell] = validated[hvm.RawCell, uint128.Uint128]{
		base: U128,
		to:   hvm.RawCell.Uint128,
		from: hvm.NewRawCell,
		what: "cell",
	}

	// LocCodec encodes a heap location as a U64. Decoding rejects
	// locations outside the heap address space.
	LocCodec Codec[hvm.Loc] = validated[hvm.Loc, uint64]{
		base: U64,
		to:   func(l hvm.Loc) uint64 { return uint64(l) },
		from: hvm.NewLoc,
		what: "location",
	}

	// NameCodec encodes a name as a U64.
	NameCodec Codec[hvm.Name] = validated[hvm.Name, uint64]{
		base: U64,
		to:   func(n hvm.Name) uint64 { return uint64(n) },
		from: hvm.NewName,
		what: "name",
	}

	// CompFuncCodec encodes a compiled function as a U128 length followed
	// by the bit-level wire form of its source definition. Decoding
	// recompiles the definition.
	CompFuncCodec Codec[hvm.CompFunc] = compFuncCodec{}
)

var hashBytes = Array(hash.HashSize, U8)

type hashCodec struct{}

func (hashCodec) Encode(w io.Writer, h types.Hash) (int, error) {
	return hashBytes.Encode(w, h[:])
}

func (hashCodec) Decode(r io.Reader) (types.Hash, bool, error) {
	b, ok, err := hashBytes.Decode(r)
	if !ok || err != nil {
		return types.Hash{}, false, err
	}
	return types.NewHash(b), true, nil
}

// validated adapts a codec for a plain integer to a newtype whose
// constructor enforces a validity predicate. Constructor failures are
// invalid data, never truncation.
type validated[T, U any] struct {
	base Codec[U]
	to   func(T) U
	from func(U) (T, error)
	what string
}

func (c validated[T, U]) Encode(w io.Writer, v T) (int, error) {
	return c.base.Encode(w, c.to(v))
}

func (c validated[T, U]) Decode(r io.Reader) (T, bool, error) {
	var zero T
	u, ok, err := c.base.Decode(r)
	if !ok || err != nil {
		return zero, false, err
	}
	v, err := c.from(u)
	if err != nil {
		return zero, false, invalidData("invalid "+c.what, err)
	}
	return v, true, nil
}

type compFuncCodec struct{}

func (compFuncCodec) Encode(w io.Writer, f hvm.CompFunc) (int, error) {
	if f.Func == nil {
		return 0, invalidData("compiled function has no source definition", nil)
	}
	buf := bits.ProtoSerialized(f.Func).Bytes()
	n, err := U128.Encode(w, uint128.From64(uint64(len(buf))))
	if err != nil {
		return n, err
	}
	m, err := w.Write(buf)
	return n + m, err
}

func (compFuncCodec) Decode(r io.Reader) (hvm.CompFunc, bool, error) {
	size, ok, err := U128.Decode(r)
	if !ok || err != nil {
		return hvm.CompFunc{}, false, err
	}
	if size.Hi != 0 || size.Lo > math.MaxInt64 {
		return hvm.CompFunc{}, false, invalidData(fmt.Sprintf("function length %s out of range", size), nil)
	}

	// Copy instead of allocating size bytes up front; a corrupt length
	// must not turn into a huge allocation.
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(size.Lo))
	if err == io.EOF {
		return hvm.CompFunc{}, false, truncated(fmt.Sprintf("function ended after %d of %d bytes", n, size.Lo))
	} else if err != nil {
		return hvm.CompFunc{}, false, err
	}

	fn, err := hvm.DeserializeFunc(bits.NewReader(bits.FromBytes(buf.Bytes())))
	if err != nil {
		return hvm.CompFunc{}, false, invalidData("malformed function", err)
	}
	comp, err := hvm.Compile(fn)
	if err != nil {
		return hvm.CompFunc{}, false, invalidData("function does not compile", err)
	}
	return *comp, true, nil
}

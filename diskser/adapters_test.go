// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package diskser

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kindelia/kindelia/bits"
	"github.com/kindelia/kindelia/hvm"
	"github.com/kindelia/kindelia/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func testCompFunc(t *testing.T) hvm.CompFunc {
	x := hvm.MustName("x")
	f := &hvm.Func{Rules: []hvm.Rule{
		{
			Lhs: hvm.Fun{Name: hvm.MustName("Id"), Args: []hvm.Term{hvm.Var{Name: x}}},
			Rhs: hvm.Var{Name: x},
		},
	}}
	comp, err := hvm.Compile(f)
	require.NoError(t, err)
	return *comp
}

func TestHashCodec(t *testing.T) {
	h := types.NewHashFromData([]byte("block"))
	assert.Equal(t, h, roundTrip(t, HashCodec, h))

	b, err := Marshal(HashCodec, h)
	require.NoError(t, err)
	assert.Equal(t, h[:], b, "no header")

	checkEmpty(t, HashCodec)
	_, _, err = HashCodec.Decode(bytes.NewReader(b[:31]))
	assert.True(t, ErrorIs(err, ErrTruncated))
}

func TestCellCodec(t *testing.T) {
	c, err := hvm.NewCell(hvm.CTR, 3, 1<<40)
	require.NoError(t, err)
	assert.Equal(t, c, roundTrip(t, CellCodec, c))
	checkEmpty(t, CellCodec)

	// A word whose tag is past the last known tag.
	b, err := Marshal(U128, uint128.New(0, 0xf<<hvm.ExtBits))
	require.NoError(t, err)
	_, ok, err := CellCodec.Decode(bytes.NewReader(b))
	assert.False(t, ok)
	assert.True(t, ErrorIs(err, ErrInvalidData))
	assert.True(t, errors.Is(err, hvm.ErrInvalidCell))
	assert.False(t, ErrorIs(err, ErrTruncated))
}

func TestLocCodec(t *testing.T) {
	l, err := hvm.NewLoc(12345)
	require.NoError(t, err)
	assert.Equal(t, l, roundTrip(t, LocCodec, l))
	checkEmpty(t, LocCodec)

	b, err := Marshal(U64, 1<<hvm.LocBits)
	require.NoError(t, err)
	_, ok, err := LocCodec.Decode(bytes.NewReader(b))
	assert.False(t, ok)
	assert.True(t, ErrorIs(err, ErrInvalidData))
	assert.True(t, errors.Is(err, hvm.ErrInvalidLoc))

	_, _, err = LocCodec.Decode(bytes.NewReader(b[:5]))
	assert.True(t, ErrorIs(err, ErrTruncated))
}

func TestNameCodec(t *testing.T) {
	n := hvm.MustName("Counter")
	assert.Equal(t, n, roundTrip(t, NameCodec, n))

	b, err := Marshal(U64, 1<<hvm.NameBits)
	require.NoError(t, err)
	_, _, err = NameCodec.Decode(bytes.NewReader(b))
	assert.True(t, ErrorIs(err, ErrInvalidData))
}

func TestCompFuncCodec(t *testing.T) {
	comp := testCompFunc(t)
	got := roundTrip(t, CompFuncCodec, comp)
	assert.Equal(t, comp, got)

	b, err := Marshal(CompFuncCodec, comp)
	require.NoError(t, err)
	payload := bits.ProtoSerialized(comp.Func).Bytes()
	length, _, err := Unmarshal(U128, b[:16])
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(uint64(len(payload))), length)
	assert.Equal(t, payload, b[16:])

	checkEmpty(t, CompFuncCodec)
}

func TestCompFuncCodecTruncated(t *testing.T) {
	b, err := Marshal(CompFuncCodec, testCompFunc(t))
	require.NoError(t, err)

	for _, n := range []int{3, 16, len(b) - 1} {
		_, ok, err := CompFuncCodec.Decode(bytes.NewReader(b[:n]))
		assert.False(t, ok)
		assert.True(t, ErrorIs(err, ErrTruncated), "%d bytes: %v", n, err)
	}
}

func TestCompFuncCodecInvalid(t *testing.T) {
	encode := func(payload []byte) []byte {
		var buf bytes.Buffer
		_, err := U128.Encode(&buf, uint128.From64(uint64(len(payload))))
		require.NoError(t, err)
		buf.Write(payload)
		return buf.Bytes()
	}

	// Malformed: the bit stream ends inside the first rule.
	_, _, err := CompFuncCodec.Decode(bytes.NewReader(encode([]byte{0x80})))
	assert.True(t, ErrorIs(err, ErrInvalidData))
	assert.True(t, errors.Is(err, bits.ErrOutOfBits))

	// Well formed but does not compile: a rule with an unbound variable.
	f := &hvm.Func{Rules: []hvm.Rule{{
		Lhs: hvm.Fun{Name: hvm.MustName("F")},
		Rhs: hvm.Var{Name: hvm.MustName("y")},
	}}}
	_, _, err = CompFuncCodec.Decode(bytes.NewReader(encode(bits.ProtoSerialized(f).Bytes())))
	assert.True(t, ErrorIs(err, ErrInvalidData))
	assert.True(t, errors.Is(err, hvm.ErrUnboundVar))

	// A length that cannot be addressed.
	b, err := Marshal(U128, uint128.New(0, 1))
	require.NoError(t, err)
	_, _, err = CompFuncCodec.Decode(bytes.NewReader(b))
	assert.True(t, ErrorIs(err, ErrInvalidData))

	_, err = CompFuncCodec.Encode(&bytes.Buffer{}, hvm.CompFunc{})
	assert.True(t, ErrorIs(err, ErrInvalidData))
}

func TestFunctionTable(t *testing.T) {
	comp := testCompFunc(t)
	c := Map(NameCodec, Shared(CompFuncCodec))
	table := map[hvm.Name]*hvm.CompFunc{comp.Name: &comp}

	got := roundTrip(t, c, table)
	require.Len(t, got, 1)
	assert.Equal(t, comp, *got[comp.Name])
}

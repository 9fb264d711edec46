// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package diskser

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

// roundTrip encodes v, checks the reported size and decodes it back,
// requiring the stream to be fully consumed.
func roundTrip[T any](t *testing.T, c Codec[T], v T) T {
	t.Helper()
	var buf bytes.Buffer
	n, err := c.Encode(&buf, v)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)

	got, ok, err := c.Decode(&buf)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, buf.Len(), "bytes left after decode")
	return got
}

func TestPrimitiveRoundTrip(t *testing.T) {
	for _, v := range []uint8{0, 1, 0x7f, math.MaxUint8} {
		assert.Equal(t, v, roundTrip(t, U8, v))
	}
	for _, v := range []int8{0, -1, math.MinInt8, math.MaxInt8} {
		assert.Equal(t, v, roundTrip(t, I8, v))
	}
	for _, v := range []uint64{0, 1, 1 << 40, math.MaxUint64} {
		assert.Equal(t, v, roundTrip(t, U64, v))
	}
	for _, v := range []int64{0, -1, math.MinInt64, math.MaxInt64} {
		assert.Equal(t, v, roundTrip(t, I64, v))
	}
	for _, v := range []uint128.Uint128{uint128.Zero, uint128.From64(42), uint128.New(1, 2), uint128.Max} {
		assert.Equal(t, v, roundTrip(t, U128, v))
	}
	for _, v := range []Int128{Int128From64(0), Int128From64(-1), Int128From64(math.MinInt64), {Hi: math.MaxInt64, Lo: math.MaxUint64}} {
		assert.Equal(t, v, roundTrip(t, I128, v))
	}
}

func TestLittleEndian(t *testing.T) {
	b, err := Marshal(U64, 0x0102030405060708)
	require.NoError(t, err)
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, b)

	b, err = Marshal(U128, uint128.New(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0}, b)

	b, err = Marshal(I128, Int128From64(-2))
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0xfe}, bytes.Repeat([]byte{0xff}, 15)...), b)
}

func TestPrimitiveCleanEOF(t *testing.T) {
	checkEmpty(t, U8)
	checkEmpty(t, I8)
	checkEmpty(t, U64)
	checkEmpty(t, I64)
	checkEmpty(t, U128)
	checkEmpty(t, I128)
}

func checkEmpty[T any](t *testing.T, c Codec[T]) {
	t.Helper()
	_, ok, err := c.Decode(bytes.NewReader(nil))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPrimitiveTruncation(t *testing.T) {
	checkTruncation(t, U64, 8)
	checkTruncation(t, I64, 8)
	checkTruncation(t, U128, 16)
	checkTruncation(t, I128, 16)
}

func checkTruncation[T any](t *testing.T, c Codec[T], width int) {
	t.Helper()
	for n := 1; n < width; n++ {
		_, ok, err := c.Decode(bytes.NewReader(make([]byte, n)))
		assert.False(t, ok)
		assert.True(t, ErrorIs(err, ErrTruncated), "width %d, %d bytes: %v", width, n, err)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	}
}

func TestShortReads(t *testing.T) {
	b, err := Marshal(U128, uint128.Max)
	require.NoError(t, err)

	v, ok, err := U128.Decode(iotest.OneByteReader(bytes.NewReader(b)))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint128.Max, v)
}

func TestSourceFailure(t *testing.T) {
	boom := errors.New("boom")
	_, ok, err := U64.Decode(iotest.ErrReader(boom))
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ErrorIs(err, ErrTruncated))
	assert.False(t, ErrorIs(err, ErrInvalidData))
}

func TestUnmarshalTrailingBytes(t *testing.T) {
	_, _, err := Unmarshal(U64, make([]byte, 9))
	assert.True(t, ErrorIs(err, ErrInvalidData))

	v, ok, err := Unmarshal(U64, []byte{1, 0, 0, 0, 0, 0, 0, 0})
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), v)

	_, ok, err = Unmarshal(U64, nil)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "ErrTruncated", ErrTruncated.String())
	assert.Equal(t, "ErrInvalidData", ErrInvalidData.String())
	assert.Equal(t, "Unknown ErrorCode (9)", ErrorCode(9).String())
}

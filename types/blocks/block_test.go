// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blocks_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/go-test/deep"
	"github.com/holiman/uint256"
	"github.com/kindelia/kindelia/bits"
	"github.com/kindelia/kindelia/types/blocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func testBlock() blocks.Block {
	return blocks.Block{
		Time: uint128.From64(1672531200000),
		Meta: uint128.New(7, 1),
		Prev: *uint256.NewInt(0xdeadbeef),
		Body: blocks.Body{Data: bytes.Repeat([]byte{0xab}, 100)},
	}
}

func TestBlockSerializeDeserialize(t *testing.T) {
	hb := blocks.NewHashedBlock(testBlock())

	packed := bits.ProtoSerialized(hb).Bytes()
	hb2, err := blocks.DeserializeHashedBlock(bits.NewReader(bits.FromBytes(packed)))
	require.NoError(t, err)

	if diff := deep.Equal(hb, hb2); diff != nil {
		t.Error(diff)
	}
	assert.Equal(t, hb.Hash, hb2.Hash)
}

func TestHashDependsOnContents(t *testing.T) {
	a := testBlock()
	b := testBlock()
	b.Body.Data = append([]byte(nil), b.Body.Data...)
	b.Body.Data[0] = 0

	assert.NotEqual(t, blocks.NewHashedBlock(a).Hash, blocks.NewHashedBlock(b).Hash)
	assert.Equal(t, blocks.NewHashedBlock(a).Hash, blocks.NewHashedBlock(testBlock()).Hash)
}

func TestDeserializeBlockErrors(t *testing.T) {
	b := testBlock()
	b.Body.Data = make([]byte, blocks.MaxBodySize+1)
	packed := bits.ProtoSerialized(&b).Bytes()
	_, err := blocks.DeserializeBlock(bits.NewReader(bits.FromBytes(packed)))
	assert.ErrorIs(t, err, blocks.ErrBodyTooLarge)

	packed = bits.ProtoSerialized(blocks.NewHashedBlock(testBlock())).Bytes()
	_, err = blocks.DeserializeBlock(bits.NewReader(bits.FromBytes(packed[:40])))
	assert.ErrorIs(t, err, bits.ErrOutOfBits)
}

func TestJSONMarshal(t *testing.T) {
	hb := blocks.NewHashedBlock(testBlock())
	out, err := json.Marshal(hb)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, hb.Hash.String(), m["hash"])
	assert.Equal(t, "1672531200000", m["time"])
	assert.Equal(t, "0xdeadbeef", m["prev"])
}

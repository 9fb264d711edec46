// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blocks

import (
	"encoding/json"
	"errors"

	"github.com/holiman/uint256"
	"github.com/kindelia/kindelia/bits"
	"github.com/kindelia/kindelia/types"
	"lukechampine.com/uint128"
)

// MaxBodySize is the largest block body accepted when decoding.
const MaxBodySize = 1280

var ErrBodyTooLarge = errors.New("block body exceeds maximum size")

type blockJSON struct {
	Hash string             `json:"hash"`
	Time string             `json:"time"`
	Meta string             `json:"meta"`
	Prev string             `json:"prev"`
	Body types.HexEncodable `json:"body"`
}

// Body is the opaque payload of a block, usually serialized statements.
type Body struct {
	Data []byte
}

// Block is a consensus block as produced by the miner.
type Block struct {
	Time uint128.Uint128
	Meta uint128.Uint128
	Prev uint256.Int
	Body Body
}

// HashedBlock pairs a Block with the hash of its wire form.
type HashedBlock struct {
	Block
	Hash types.Hash
}

// NewHashedBlock computes the hash of b.
func NewHashedBlock(b Block) *HashedBlock {
	return &HashedBlock{
		Block: b,
		Hash:  types.NewHashFromData(bits.ProtoSerialized(&b).Bytes()),
	}
}

// ProtoSerialize writes time(128) meta(128) prev(256) and the body bytes.
func (b *Block) ProtoSerialize(bv *bits.BitVec) {
	bv.PushU128(b.Time)
	bv.PushU128(b.Meta)
	for _, word := range b.Prev {
		bv.PushFixed(64, word)
	}
	bv.PushBytes(b.Body.Data)
}

// DeserializeBlock reads a Block written by ProtoSerialize.
func DeserializeBlock(r *bits.Reader) (*Block, error) {
	var (
		b   Block
		err error
	)
	if b.Time, err = r.U128(); err != nil {
		return nil, err
	}
	if b.Meta, err = r.U128(); err != nil {
		return nil, err
	}
	for i := range b.Prev {
		if b.Prev[i], err = r.Fixed(64); err != nil {
			return nil, err
		}
	}
	b.Body.Data, err = r.ReadBytes(MaxBodySize)
	if errors.Is(err, bits.ErrTooLong) {
		return nil, ErrBodyTooLarge
	} else if err != nil {
		return nil, err
	}
	return &b, nil
}

// ProtoSerialize writes only the block. The hash is derived data and is
// recomputed by DeserializeHashedBlock.
func (hb *HashedBlock) ProtoSerialize(bv *bits.BitVec) {
	hb.Block.ProtoSerialize(bv)
}

func DeserializeHashedBlock(r *bits.Reader) (*HashedBlock, error) {
	b, err := DeserializeBlock(r)
	if err != nil {
		return nil, err
	}
	return NewHashedBlock(*b), nil
}

func (hb *HashedBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(&blockJSON{
		Hash: hb.Hash.String(),
		Time: hb.Time.String(),
		Meta: hb.Meta.String(),
		Prev: hb.Prev.Hex(),
		Body: hb.Body.Data,
	})
}

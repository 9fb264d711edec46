// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package types

import (
	"encoding/hex"
	"fmt"

	"github.com/kindelia/kindelia/params/hash"
)

var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", hash.HashSize*2)

// Hash is a fixed size digest. Blocks are identified by the Hash of
// their bit-level serialization.
type Hash [hash.HashSize]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h *Hash) SetBytes(data []byte) {
	copy(h[:], data)
}

func NewHash(digest []byte) Hash {
	var h Hash
	h.SetBytes(digest)
	return h
}

func NewHashFromString(s string) (Hash, error) {
	// Return error if hash string is too long.
	if len(s) > hash.HashSize*2 {
		return Hash{}, ErrHashStrSize
	}
	ret, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, err
	}
	return NewHash(ret), nil
}

// NewHashFromData hashes the data with the node hash function.
func NewHashFromData(data []byte) Hash {
	return NewHash(hash.HashFunc(data))
}

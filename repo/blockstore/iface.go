// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockstore

import (
	"github.com/kindelia/kindelia/types/blocks"
)

// BlockWriter records blocks as the node accepts them. Implementations
// decide where the block ends up (files on disk, memory in tests).
//
// WriteBlock never reports failure to the caller and must not block it
// on I/O. Ownership of blk passes to the writer; the caller must not
// modify it afterwards.
type BlockWriter interface {
	WriteBlock(height uint64, blk *blocks.HashedBlock)
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockstore

import (
	"sync"

	"github.com/kindelia/kindelia/types/blocks"
)

var _ BlockWriter = (*MockWriter)(nil)

// WriteCall is a WriteBlock invocation recorded by MockWriter.
type WriteCall struct {
	Height uint64
	Block  *blocks.HashedBlock
}

// MockWriter records the blocks it is given without doing any I/O.
type MockWriter struct {
	mtx   sync.Mutex
	calls []WriteCall
}

func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

func (m *MockWriter) WriteBlock(height uint64, blk *blocks.HashedBlock) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.calls = append(m.calls, WriteCall{Height: height, Block: blk})
}

// Writes returns the recorded calls in the order they were made.
func (m *MockWriter) Writes() []WriteCall {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	calls := make([]WriteCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

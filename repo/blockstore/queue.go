// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockstore

import (
	"sync"

	"github.com/kindelia/kindelia/types/blocks"
)

type writeRequest struct {
	height uint64
	block  *blocks.HashedBlock
}

// blockQueue is an unbounded FIFO with a single consumer. Pushing never
// blocks. Once closed, pushes fail and pop drains what is left.
type blockQueue struct {
	mtx    sync.Mutex
	cond   *sync.Cond
	items  []writeRequest
	closed bool
}

func newBlockQueue() *blockQueue {
	q := &blockQueue{}
	q.cond = sync.NewCond(&q.mtx)
	return q
}

func (q *blockQueue) push(req writeRequest) bool {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, req)
	q.cond.Signal()
	return true
}

// pop waits for the next request. It returns false once the queue is
// closed and empty.
func (q *blockQueue) pop() (writeRequest, bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return writeRequest{}, false
	}
	req := q.items[0]
	q.items[0] = writeRequest{}
	q.items = q.items[1:]
	return req, true
}

func (q *blockQueue) close() {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// abort closes the queue and returns the requests that will never be
// popped.
func (q *blockQueue) abort() []writeRequest {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	q.closed = true
	pending := q.items
	q.items = nil
	q.cond.Broadcast()
	return pending
}

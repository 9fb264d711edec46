// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockQueueFIFO(t *testing.T) {
	q := newBlockQueue()
	for i := uint64(0); i < 5; i++ {
		require.True(t, q.push(writeRequest{height: i}))
	}
	q.close()
	assert.False(t, q.push(writeRequest{height: 99}))

	for i := uint64(0); i < 5; i++ {
		req, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, i, req.height)
	}
	_, ok := q.pop()
	assert.False(t, ok)
}

func TestBlockQueuePopWaits(t *testing.T) {
	q := newBlockQueue()
	got := make(chan uint64)
	go func() {
		req, _ := q.pop()
		got <- req.height
	}()

	select {
	case <-got:
		t.Fatal("pop returned on an empty queue")
	case <-time.After(20 * time.Millisecond):
	}

	q.push(writeRequest{height: 4})
	select {
	case h := <-got:
		assert.Equal(t, uint64(4), h)
	case <-time.After(5 * time.Second):
		t.Fatal("pop did not wake up")
	}
}

func TestBlockQueueAbort(t *testing.T) {
	q := newBlockQueue()
	q.push(writeRequest{height: 1})
	q.push(writeRequest{height: 2})

	pending := q.abort()
	assert.Len(t, pending, 2)
	_, ok := q.pop()
	assert.False(t, ok)
	assert.False(t, q.push(writeRequest{height: 3}))
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockWriter(t *testing.T) {
	m := NewMockWriter()
	var w BlockWriter = m

	b1, b2 := testBlock(1), testBlock(2)
	w.WriteBlock(9, b1)
	w.WriteBlock(3, b2)

	calls := m.Writes()
	assert.Equal(t, []WriteCall{{Height: 9, Block: b1}, {Height: 3, Block: b2}}, calls)

	calls[0].Height = 100
	assert.Equal(t, uint64(9), m.Writes()[0].Height)
}

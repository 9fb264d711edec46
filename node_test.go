// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/kindelia/kindelia/hvm"
	"github.com/kindelia/kindelia/repo"
	"github.com/kindelia/kindelia/repo/blockstore"
	"github.com/kindelia/kindelia/types/blocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func testConfig(t *testing.T) *repo.Config {
	dataDir := t.TempDir()
	return &repo.Config{
		DataDir:  dataDir,
		LogDir:   filepath.Join(dataDir, "logs"),
		LogLevel: "error",
		Persistence: repo.PersistenceOptions{
			BlockWriteRetryMaxInterval: time.Millisecond,
		},
	}
}

func testBlock(n uint64) *blocks.HashedBlock {
	return blocks.NewHashedBlock(blocks.Block{
		Time: uint128.From64(n),
		Prev: *uint256.NewInt(n + 1),
		Body: blocks.Body{Data: []byte("block")},
	})
}

func TestNodeLifecycle(t *testing.T) {
	cfg := testConfig(t)

	node, err := BuildNode(cfg)
	require.NoError(t, err)

	x := hvm.MustName("x")
	f, err := hvm.Compile(&hvm.Func{Rules: []hvm.Rule{{
		Lhs: hvm.Fun{Name: hvm.MustName("Id"), Args: []hvm.Term{hvm.Var{Name: x}}},
		Rhs: hvm.Var{Name: x},
	}}})
	require.NoError(t, err)
	node.DefineFunction(f)

	cell, err := hvm.NewCell(hvm.NUM, 0, 5)
	require.NoError(t, err)
	node.SetCell(10, cell)

	for h := uint64(0); h < 10; h++ {
		node.WriteBlock(h, testBlock(h))
	}
	require.NoError(t, node.Close())
	assert.False(t, node.PersistenceHalted())
	assert.NoError(t, node.Close())

	for h := uint64(0); h < 10; h++ {
		_, err := os.Stat(blockstore.BlockPath(filepath.Join(cfg.DataDir, blockstore.BlocksDir), h))
		assert.NoError(t, err)
	}

	// State survives a restart.
	node, err = BuildNode(cfg)
	require.NoError(t, err)
	defer node.Close()

	got, ok := node.Function(hvm.MustName("Id"))
	require.True(t, ok)
	assert.Equal(t, uint64(1), got.Arity)
	c, ok := node.Cell(10)
	require.True(t, ok)
	assert.Equal(t, cell, c)
}

func TestNodePersistenceHalted(t *testing.T) {
	cfg := testConfig(t)

	node, err := BuildNode(cfg)
	require.NoError(t, err)

	blocksDir := filepath.Join(cfg.DataDir, blockstore.BlocksDir)
	require.NoError(t, os.Mkdir(blockstore.BlockPath(blocksDir, 3), 0700))

	node.WriteBlock(3, testBlock(3))
	assert.Eventually(t, node.PersistenceHalted, 10*time.Second, 10*time.Millisecond)

	// The node keeps accepting blocks and still shuts down cleanly apart
	// from reporting the writer failure.
	node.WriteBlock(4, testBlock(4))
	assert.Error(t, node.Close())

	_, err = os.Stat(blockstore.BlockPath(blocksDir, 4))
	assert.True(t, os.IsNotExist(err))
}

func TestNodeInvalidLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogLevel = "loud"
	_, err := BuildNode(cfg)
	assert.Error(t, err)
}

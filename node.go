// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kindelia/kindelia/hvm"
	"github.com/kindelia/kindelia/repo"
	"github.com/kindelia/kindelia/repo/blockstore"
	"github.com/kindelia/kindelia/types/blocks"
	"go.opencensus.io/stats/view"
)

// Node owns the persistence side of a running node: the state database,
// the block writer and the in-memory function table and heap loaded from
// the database at startup.
type Node struct {
	ds     repo.Datastore
	writer *blockstore.FileWriter

	stateLock sync.RWMutex
	funcs     map[hvm.Name]*hvm.CompFunc
	heap      map[hvm.Loc]hvm.RawCell

	halted     atomic.Bool
	cancelFunc context.CancelFunc
	watcher    chan struct{}
	closeOnce  sync.Once
	closeErr   error
}

// BuildNode is the constructor for the node. It sets up logging, loads the
// saved state and starts the block writer.
func BuildNode(config *repo.Config) (*Node, error) {
	if err := setupLogging(config.LogDir, config.LogLevel); err != nil {
		return nil, err
	}

	if err := view.Register(blockstore.DefaultViews...); err != nil {
		return nil, err
	}

	ds, err := repo.NewDatastore(config.DataDir)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Node{
		ds:         ds,
		cancelFunc: cancel,
		watcher:    make(chan struct{}),
	}

	// A state entry that does not decode stops startup. Running with an
	// empty table in its place would fork the node off the network.
	n.funcs, err = repo.FetchFunctions(ctx, ds)
	if err != nil {
		cancel()
		ds.Close()
		return nil, fmt.Errorf("load functions: %w", err)
	}
	n.heap, err = repo.FetchHeap(ctx, ds)
	if err != nil {
		cancel()
		ds.Close()
		return nil, fmt.Errorf("load heap: %w", err)
	}

	var opts []blockstore.Option
	if config.Persistence.BlockWriteRetries > 0 {
		opts = append(opts, blockstore.WithMaxRetries(
			config.Persistence.BlockWriteRetries,
			config.Persistence.BlockWriteRetryMaxInterval,
		))
	}
	n.writer, err = blockstore.NewFileWriter(config.DataDir, opts...)
	if err != nil {
		cancel()
		ds.Close()
		return nil, err
	}

	go n.watchWriter(ctx)

	log.Infow("Node started",
		"version", repo.VersionString(),
		"datadir", config.DataDir,
		"functions", len(n.funcs),
		"heapcells", len(n.heap),
	)
	return n, nil
}

// watchWriter reports a block writer that stopped on its own.
func (n *Node) watchWriter(ctx context.Context) {
	defer close(n.watcher)
	select {
	case <-n.writer.Done():
		if err := n.writer.Err(); err != nil {
			n.halted.Store(true)
			log.Errorw("Block persistence halted. New blocks will not be saved to disk until restart",
				"error", err)
		}
	case <-ctx.Done():
	}
}

// WriteBlock hands blk to the block writer. It never blocks on the disk.
func (n *Node) WriteBlock(height uint64, blk *blocks.HashedBlock) {
	n.writer.WriteBlock(height, blk)
}

// PersistenceHalted reports whether the block writer stopped after a
// write error.
func (n *Node) PersistenceHalted() bool {
	return n.halted.Load()
}

// DefineFunction adds a compiled function to the function table.
func (n *Node) DefineFunction(f *hvm.CompFunc) {
	n.stateLock.Lock()
	defer n.stateLock.Unlock()
	n.funcs[f.Name] = f
}

// Function returns the compiled function with the given name.
func (n *Node) Function(name hvm.Name) (*hvm.CompFunc, bool) {
	n.stateLock.RLock()
	defer n.stateLock.RUnlock()
	f, ok := n.funcs[name]
	return f, ok
}

// SetCell stores cell at loc in the heap.
func (n *Node) SetCell(loc hvm.Loc, cell hvm.RawCell) {
	n.stateLock.Lock()
	defer n.stateLock.Unlock()
	n.heap[loc] = cell
}

// Cell returns the heap cell at loc.
func (n *Node) Cell(loc hvm.Loc) (hvm.RawCell, bool) {
	n.stateLock.RLock()
	defer n.stateLock.RUnlock()
	c, ok := n.heap[loc]
	return c, ok
}

// Close waits for queued blocks to be written, saves the function table
// and heap, and closes the database. A block writer failure is returned
// after the state has been saved.
func (n *Node) Close() error {
	n.closeOnce.Do(func() {
		n.closeErr = n.close()
	})
	return n.closeErr
}

func (n *Node) close() error {
	n.cancelFunc()
	<-n.watcher

	var errs []error
	if err := n.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("block writer: %w", err))
	}

	n.stateLock.RLock()
	ctx := context.Background()
	if err := repo.PutFunctions(ctx, n.ds, n.funcs); err != nil {
		errs = append(errs, fmt.Errorf("save functions: %w", err))
	}
	if err := repo.PutHeap(ctx, n.ds, n.heap); err != nil {
		errs = append(errs, fmt.Errorf("save heap: %w", err))
	}
	n.stateLock.RUnlock()

	if err := n.ds.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

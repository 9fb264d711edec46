// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"
	"github.com/kindelia/kindelia/bits"
	"github.com/kindelia/kindelia/types/blocks"
	"go.opencensus.io/stats"
)

const (
	// BlocksDir is the subdirectory of the data directory holding block files.
	BlocksDir = "blocks"

	blockFileExt = ".kindelia_block.bin"
)

// ErrWriterStopped is logged for blocks submitted after the writer exited.
var ErrWriterStopped = errors.New("block writer stopped")

var _ BlockWriter = (*FileWriter)(nil)

// BlockFilename returns the name of the file holding the block at height.
func BlockFilename(height uint64) string {
	return fmt.Sprintf("%016x%s", height, blockFileExt)
}

// BlockPath returns the path of the block file for height inside dir.
func BlockPath(dir string, height uint64) string {
	return filepath.Join(dir, BlockFilename(height))
}

// FileWriter saves each block to its own file, named after its height,
// under the blocks directory. All writes happen on a single background
// goroutine in the order the blocks were submitted, so callers never
// wait on the disk.
//
// A write error that survives the retry policy stops the goroutine.
// Blocks submitted after that are logged and dropped. The rest of the
// node keeps running; the owner observes the failure through Done and Err.
type FileWriter struct {
	dir   string
	cfg   *config
	queue *blockQueue
	done  chan struct{}
	err   error
}

// NewFileWriter creates the blocks directory under dataDir and starts the
// writer goroutine.
func NewFileWriter(dataDir string, opts ...Option) (*FileWriter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	dir := filepath.Join(dataDir, BlocksDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}

	w := &FileWriter{
		dir:   dir,
		cfg:   cfg,
		queue: newBlockQueue(),
		done:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Dir returns the directory block files are written to.
func (w *FileWriter) Dir() string {
	return w.dir
}

// WriteBlock queues blk to be saved at height. It does not wait for the
// write and never fails; if the writer has stopped the block is dropped.
func (w *FileWriter) WriteBlock(height uint64, blk *blocks.HashedBlock) {
	if !w.queue.push(writeRequest{height: height, block: blk}) {
		stats.Record(context.Background(), BlocksDropped.M(1))
		log.Errorf("Could not save block of height %d: %s", height, ErrWriterStopped)
		return
	}
	stats.Record(context.Background(), BlocksQueued.M(1))
}

// Done is closed when the writer goroutine exits, either after Close or
// after a fatal write error.
func (w *FileWriter) Done() <-chan struct{} {
	return w.done
}

// Err returns the error that stopped the writer. It is nil while the
// writer runs and after a clean shutdown.
func (w *FileWriter) Err() error {
	select {
	case <-w.done:
		return w.err
	default:
		return nil
	}
}

// Close stops accepting blocks, waits for the queued ones to be written
// and returns the error that stopped the writer, if any.
func (w *FileWriter) Close() error {
	w.queue.close()
	<-w.done
	return w.err
}

func (w *FileWriter) run() {
	defer close(w.done)
	for {
		req, ok := w.queue.pop()
		if !ok {
			log.Info("Block writer shut down")
			return
		}
		if err := w.write(req); err != nil {
			w.err = err
			pending := w.queue.abort()
			stats.Record(context.Background(),
				WriteFailures.M(1),
				BlocksDropped.M(int64(len(pending))),
			)
			log.Errorw("Block writer stopped, blocks will no longer be saved",
				"height", req.height, "error", err, "discarded", len(pending))
			return
		}
	}
}

func (w *FileWriter) write(req writeRequest) error {
	path := BlockPath(w.dir, req.height)
	data := bits.ProtoSerialized(req.block).Bytes()

	op := func() error {
		err := w.cfg.writeFile(path, data, w.cfg.fileMode)
		if err != nil {
			log.Warnw("Failed to write block file", "path", path, "error", err)
		}
		return err
	}
	if err := backoff.Retry(op, w.cfg.newBackOff()); err != nil {
		return fmt.Errorf("save block %d: %w", req.height, err)
	}

	stats.Record(context.Background(),
		BlocksWritten.M(1),
		BytesWritten.M(int64(len(data))),
	)
	log.Debugw("Saved block", "height", req.height, "hash", req.block.Hash, "path", path)
	return nil
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo

import (
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/options"
	"github.com/ipfs/go-datastore"
	badger "github.com/ipfs/go-ds-badger"
)

// DatastoreDir is the subdirectory of the data directory holding the
// node state database.
const DatastoreDir = "datastore"

type Datastore interface {
	datastore.Datastore
	datastore.Batching
	datastore.PersistentDatastore
	datastore.TxnDatastore
}

var _ Datastore = (*badger.Datastore)(nil)

// NewDatastore opens the badger database under dataDir, creating it if
// needed.
func NewDatastore(dataDir string) (Datastore, error) {
	dir := filepath.Join(dataDir, DatastoreDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}

	badgerOpts := badger.DefaultOptions
	badgerOpts.MaxTableSize = 64 << 20
	badgerOpts.ValueLogLoadingMode = options.FileIO
	return badger.NewDatastore(dir, &badgerOpts)
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo

const (
	// FunctionsDatastoreKey is the datastore key for the compiled function table.
	FunctionsDatastoreKey = "/kindelia/functions/"
	// HeapDatastoreKey is the datastore key for the persisted heap cells.
	HeapDatastoreKey = "/kindelia/heap/"
)

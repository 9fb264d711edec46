// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-datastore"
	"github.com/kindelia/kindelia/diskser"
	"github.com/kindelia/kindelia/hvm"
)

var (
	functionsCodec = diskser.Map(diskser.NameCodec, diskser.Shared(diskser.CompFuncCodec))
	heapCodec      = diskser.Map(diskser.LocCodec, diskser.CellCodec)
)

// PutValue encodes v with c and stores it under key.
func PutValue[T any](ctx context.Context, ds datastore.Write, key string, c diskser.Codec[T], v T) error {
	data, err := diskser.Marshal(c, v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return ds.Put(ctx, datastore.NewKey(key), data)
}

// FetchValue loads the value stored under key. It returns false with a nil
// error if the key is missing or holds an empty encoding. Stored bytes that
// fail to decode are returned as an error.
func FetchValue[T any](ctx context.Context, ds datastore.Read, key string, c diskser.Codec[T]) (T, bool, error) {
	var zero T
	data, err := ds.Get(ctx, datastore.NewKey(key))
	if errors.Is(err, datastore.ErrNotFound) {
		return zero, false, nil
	} else if err != nil {
		return zero, false, err
	}
	v, ok, err := diskser.Unmarshal(c, data)
	if err != nil {
		return zero, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, ok, nil
}

// PutFunctions saves the compiled function table.
func PutFunctions(ctx context.Context, ds datastore.Write, funcs map[hvm.Name]*hvm.CompFunc) error {
	return PutValue(ctx, ds, FunctionsDatastoreKey, functionsCodec, funcs)
}

// FetchFunctions loads the compiled function table. A node with no saved
// table gets an empty one.
func FetchFunctions(ctx context.Context, ds datastore.Read) (map[hvm.Name]*hvm.CompFunc, error) {
	funcs, ok, err := FetchValue(ctx, ds, FunctionsDatastoreKey, functionsCodec)
	if err != nil {
		return nil, err
	}
	if !ok {
		funcs = make(map[hvm.Name]*hvm.CompFunc)
	}
	return funcs, nil
}

// PutHeap saves the heap cells.
func PutHeap(ctx context.Context, ds datastore.Write, heap map[hvm.Loc]hvm.RawCell) error {
	return PutValue(ctx, ds, HeapDatastoreKey, heapCodec, heap)
}

// FetchHeap loads the heap cells, or an empty heap if none were saved.
func FetchHeap(ctx context.Context, ds datastore.Read) (map[hvm.Loc]hvm.RawCell, error) {
	heap, ok, err := FetchValue(ctx, ds, HeapDatastoreKey, heapCodec)
	if err != nil {
		return nil, err
	}
	if !ok {
		heap = make(map[hvm.Loc]hvm.RawCell)
	}
	return heap, nil
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockstore

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	BlocksQueued  = stats.Int64("kindelia/blockstore/blocks_queued", "Blocks handed to the block writer", stats.UnitDimensionless)
	BlocksWritten = stats.Int64("kindelia/blockstore/blocks_written", "Blocks saved to disk", stats.UnitDimensionless)
	BlocksDropped = stats.Int64("kindelia/blockstore/blocks_dropped", "Blocks discarded because the writer stopped", stats.UnitDimensionless)
	WriteFailures = stats.Int64("kindelia/blockstore/write_failures", "Block writes that stopped the writer", stats.UnitDimensionless)
	BytesWritten  = stats.Int64("kindelia/blockstore/bytes_written", "Bytes of block files written", stats.UnitBytes)
)

// DefaultViews are the block writer views an exporter can register.
var DefaultViews = []*view.View{
	{Measure: BlocksQueued, Aggregation: view.Sum()},
	{Measure: BlocksWritten, Aggregation: view.Sum()},
	{Measure: BlocksDropped, Aggregation: view.Sum()},
	{Measure: WriteFailures, Aggregation: view.Sum()},
	{Measure: BytesWritten, Aggregation: view.Sum()},
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockstore

import "go.uber.org/zap"

var log = zap.S()

// UpdateLogger picks up the global logger once logging is configured.
func UpdateLogger() {
	log = zap.S()
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package blockstore

import (
	"errors"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Option is configuration option function for the FileWriter
type Option func(cfg *config) error

// WithRetryPolicy sets the policy used to retry a failed block write.
// A new BackOff is requested for every block. Once the policy gives up
// the writer stops.
func WithRetryPolicy(newBackOff func() backoff.BackOff) Option {
	return func(cfg *config) error {
		if newBackOff == nil {
			return errors.New("retry policy is nil")
		}
		cfg.newBackOff = newBackOff
		return nil
	}
}

// WithMaxRetries retries a failed block write up to n times with an
// exponential delay capped at maxInterval.
func WithMaxRetries(n uint64, maxInterval time.Duration) Option {
	return WithRetryPolicy(func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxInterval = maxInterval
		b.MaxElapsedTime = 0
		return backoff.WithMaxRetries(b, n)
	})
}

// WithFileMode sets the permissions of new block files.
func WithFileMode(mode os.FileMode) Option {
	return func(cfg *config) error {
		if mode&0200 == 0 {
			return errors.New("block files must be writable by the owner")
		}
		cfg.fileMode = mode
		return nil
	}
}

type config struct {
	newBackOff func() backoff.BackOff
	fileMode   os.FileMode
	writeFile  func(name string, data []byte, perm os.FileMode) error
}

func defaultConfig() *config {
	return &config{
		newBackOff: func() backoff.BackOff { return &backoff.StopBackOff{} },
		fileMode:   0644,
		writeFile:  os.WriteFile,
	}
}

// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package diskser

import (
	"bytes"
	"fmt"
	"io"
)

// Codec encodes and decodes values of type T. Codecs hold no state and
// are safe for concurrent use over independent streams.
type Codec[T any] interface {
	// Encode writes v to w and returns the number of bytes written.
	Encode(w io.Writer, v T) (int, error)
	// Decode reads one value from r. It returns ok == false with a nil
	// error if r was already exhausted.
	Decode(r io.Reader) (v T, ok bool, err error)
}

// Marshal encodes v into a new byte slice.
func Marshal[T any](c Codec[T], v T) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a single value that must span all of data.
func Unmarshal[T any](c Codec[T], data []byte) (T, bool, error) {
	var zero T
	r := bytes.NewReader(data)
	v, ok, err := c.Decode(r)
	if err != nil {
		return zero, false, err
	}
	if r.Len() != 0 {
		return zero, false, invalidData(fmt.Sprintf("%d trailing bytes after value", r.Len()), nil)
	}
	return v, ok, nil
}

// readFull fills buf from r. It returns false with a nil error if r had
// no bytes left, and a truncation error if it ran out part way.
func readFull(r io.Reader, buf []byte) (bool, error) {
	n, err := io.ReadFull(r, buf)
	switch err {
	case nil:
		return true, nil
	case io.EOF:
		return false, nil
	case io.ErrUnexpectedEOF:
		return false, truncated(fmt.Sprintf("stream ended after %d of %d bytes", n, len(buf)))
	}
	return false, err
}

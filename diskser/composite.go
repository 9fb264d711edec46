// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package diskser

import (
	"fmt"
	"io"
)

type sliceCodec[T any] struct {
	elem Codec[T]
}

// Slice returns a codec for a sequence of elements encoded back to back
// with no count. Decoding reads elements until the stream ends at an
// element boundary, so the sequence must be the last thing in the stream.
func Slice[T any](elem Codec[T]) Codec[[]T] {
	return sliceCodec[T]{elem: elem}
}

func (c sliceCodec[T]) Encode(w io.Writer, v []T) (int, error) {
	total := 0
	for _, e := range v {
		n, err := c.elem.Encode(w, e)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (c sliceCodec[T]) Decode(r io.Reader) ([]T, bool, error) {
	var out []T
	for {
		e, ok, err := c.elem.Decode(r)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return out, len(out) > 0, nil
		}
		out = append(out, e)
	}
}

type mapCodec[K comparable, V any] struct {
	key Codec[K]
	val Codec[V]
}

// Map returns a codec for key/value pairs encoded back to back with no
// count. Like Slice it consumes the rest of the stream. A key without
// its value is a truncation. Duplicate keys are not rejected; the last
// pair wins.
func Map[K comparable, V any](key Codec[K], val Codec[V]) Codec[map[K]V] {
	return mapCodec[K, V]{key: key, val: val}
}

func (c mapCodec[K, V]) Encode(w io.Writer, m map[K]V) (int, error) {
	total := 0
	for k, v := range m {
		n, err := c.key.Encode(w, k)
		total += n
		if err != nil {
			return total, err
		}
		n, err = c.val.Encode(w, v)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (c mapCodec[K, V]) Decode(r io.Reader) (map[K]V, bool, error) {
	m := make(map[K]V)
	pairs := 0
	for {
		k, ok, err := c.key.Decode(r)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		v, ok, err := c.val.Decode(r)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, truncated(fmt.Sprintf("stream ended after key of pair %d", pairs))
		}
		m[k] = v
		pairs++
	}
	if pairs == 0 {
		return nil, false, nil
	}
	return m, true, nil
}

type arrayCodec[T any] struct {
	n    int
	elem Codec[T]
}

// Array returns a codec for exactly n elements. Only the first element
// may be missing, in which case the whole array is reported as absent.
func Array[T any](n int, elem Codec[T]) Codec[[]T] {
	return arrayCodec[T]{n: n, elem: elem}
}

func (c arrayCodec[T]) Encode(w io.Writer, v []T) (int, error) {
	if len(v) != c.n {
		return 0, invalidData(fmt.Sprintf("array has %d elements, expected %d", len(v), c.n), nil)
	}
	return sliceCodec[T]{elem: c.elem}.Encode(w, v)
}

func (c arrayCodec[T]) Decode(r io.Reader) ([]T, bool, error) {
	out := make([]T, c.n)
	for i := range out {
		e, ok, err := c.elem.Decode(r)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			if i == 0 {
				return nil, false, nil
			}
			return nil, false, truncated(fmt.Sprintf("stream ended after %d of %d array elements", i, c.n))
		}
		out[i] = e
	}
	return out, true, nil
}

type sharedCodec[T any] struct {
	elem Codec[T]
}

// Shared returns a codec for a pointer to a value encoded with elem. The
// pointer adds nothing to the bytes; it lets several owners reference one
// decoded value.
func Shared[T any](elem Codec[T]) Codec[*T] {
	return sharedCodec[T]{elem: elem}
}

func (c sharedCodec[T]) Encode(w io.Writer, v *T) (int, error) {
	if v == nil {
		return 0, invalidData("nil shared value", nil)
	}
	return c.elem.Encode(w, *v)
}

func (c sharedCodec[T]) Decode(r io.Reader) (*T, bool, error) {
	v, ok, err := c.elem.Decode(r)
	if !ok || err != nil {
		return nil, false, err
	}
	return &v, true, nil
}

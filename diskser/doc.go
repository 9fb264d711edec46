// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

/*
Package diskser implements the disk format used to persist node state.

Every persisted type has a Codec. Encoding writes a self contained byte
representation and reports the number of bytes written. Decoding reads the
bytes of exactly one value and has three outcomes:

  - ok == false, err == nil: the stream ended cleanly before the value.
    No bytes were consumed. Loops over homogeneous streams stop here.
  - ok == true, err == nil: a value was decoded.
  - err != nil: the stream was truncated inside the value (ErrTruncated),
    the bytes were complete but illegal (ErrInvalidData), or the source
    failed.

Composite codecs only report a clean end of stream at the boundary
between independent values. An end of stream inside a mandatory read is
always reported as ErrTruncated so corrupt files are detected instead of
being read partially.

Integers are little endian and fixed width. There are no magic numbers,
version headers or length prefixes on collections: the caller must know
which type is expected at each position.

Slice and Map read until the stream ends and therefore must be the last
structure in a stream (usually a whole file or datastore value). They
cannot be followed by another value unless the caller delimits them
externally. An empty Slice or Map encodes to zero bytes and decodes as
no value; callers treat that as an empty collection.
*/
package diskser

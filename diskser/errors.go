// Copyright (c) 2024 The kindelia developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package diskser

import (
	"errors"
	"fmt"
	"io"
)

type ErrorCode int

const (
	// ErrTruncated indicates the stream ended inside a mandatory read.
	ErrTruncated ErrorCode = iota
	// ErrInvalidData indicates complete bytes that do not form a legal value.
	ErrInvalidData
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrTruncated:   "ErrTruncated",
	ErrInvalidData: "ErrInvalidData",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error is returned by codecs when a stream cannot be decoded. The
// caller can use ErrorIs to determine the kind of failure. Truncation
// errors also match io.ErrUnexpectedEOF with errors.Is, and invalid data
// errors wrap the validation failure when there is one.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human-readable description of the issue
	Err         error     // Underlying cause, if any
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil && e.ErrorCode != ErrTruncated {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

func (e Error) Unwrap() error {
	return e.Err
}

func truncated(desc string) Error {
	return Error{ErrorCode: ErrTruncated, Description: desc, Err: io.ErrUnexpectedEOF}
}

func invalidData(desc string, err error) Error {
	return Error{ErrorCode: ErrInvalidData, Description: desc, Err: err}
}

// ErrorIs reports whether err is a codec Error with the given code.
func ErrorIs(err error, code ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == code
}

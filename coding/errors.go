// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"
	"strconv"
)

// An ErrorKind categorises encoding and rendering failures.
type ErrorKind uint8

// Error kinds.
const (
	_                       ErrorKind = iota
	InvalidCharacterForMode           // byte not representable in a forced mode
	CapacityExceeded                  // data does not fit version 40 at the level
	InvalidVersionRequest             // data does not fit the requested version
	InvalidOption                     // level, version, mask or quiet zone out of range
	InvalidDimension                  // non-positive render size
)

var kindNames = [...]string{
	InvalidCharacterForMode: "invalid character for mode",
	CapacityExceeded:        "capacity exceeded",
	InvalidVersionRequest:   "invalid version request",
	InvalidOption:           "invalid option",
	InvalidDimension:        "invalid dimension",
}

func (k ErrorKind) String() string {
	if 0 < k && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "error kind " + strconv.Itoa(int(k))
}

// An Error is an encoding or rendering failure.
//
// errors.Is reports a match for a target *Error of the same Kind
// whose Detail is empty or equal to the Detail of the error, so the
// Err* values of each kind match every error of that kind.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "qr: " + e.Kind.String()
	}
	return "qr: " + e.Detail
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Detail == "" || t.Detail == e.Detail)
}

// Errorf returns an *Error of the given kind with a formatted Detail.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Errors matching every error of their kind.
var (
	ErrInvalidCharacter = &Error{Kind: InvalidCharacterForMode}
	ErrCapacityExceeded = &Error{Kind: CapacityExceeded}
	ErrVersionTooSmall  = &Error{Kind: InvalidVersionRequest}
	ErrInvalidOption    = &Error{Kind: InvalidOption}
	ErrInvalidDimension = &Error{Kind: InvalidDimension}
)

// Invalid option errors.
var (
	ErrLevel   = &Error{InvalidOption, "invalid level"}
	ErrVersion = &Error{InvalidOption, "invalid version"}
	ErrMask    = &Error{InvalidOption, "invalid mask"}
	ErrMode    = &Error{InvalidOption, "invalid mode"}
)

// SegmentError represents a Segment whose text is not encodable in
// its mode.  It matches ErrInvalidCharacter.
type SegmentError Segment

func (e SegmentError) Error() string {
	if m := getMode(e.Mode); m != nil {
		return fmt.Sprintf("qr: non-%s string %#q", m.Name, e.Text)
	}
	return fmt.Sprintf("qr: invalid mode %d", e.Mode)
}

func (e SegmentError) Is(target error) bool {
	return target == ErrInvalidCharacter
}

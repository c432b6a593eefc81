// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrsvg

import "github.com/unixdj/qrsvg/coding"

// An Error is an encoding or rendering failure.  Test for a kind of
// failure with errors.Is and one of the Err* values.
type Error = coding.Error

// An ErrorKind categorises Errors.
type ErrorKind = coding.ErrorKind

// Error kinds.
const (
	InvalidCharacterForMode = coding.InvalidCharacterForMode
	CapacityExceeded        = coding.CapacityExceeded
	InvalidVersionRequest   = coding.InvalidVersionRequest
	InvalidOption           = coding.InvalidOption
	InvalidDimension        = coding.InvalidDimension
)

var (
	// ErrInvalidCharacter matches input not encodable in a forced mode.
	ErrInvalidCharacter = coding.ErrInvalidCharacter

	// ErrCapacityExceeded matches input too long for a version 40
	// symbol at the requested level.
	ErrCapacityExceeded = coding.ErrCapacityExceeded

	// ErrVersionTooSmall matches input too long for the forced version.
	ErrVersionTooSmall = coding.ErrVersionTooSmall

	// ErrInvalidOption matches out of range options and render
	// parameters.
	ErrInvalidOption = coding.ErrInvalidOption

	// ErrInvalidDimension matches non-positive image dimensions.
	ErrInvalidDimension = coding.ErrInvalidDimension
)

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairwise

import "errors"

var (
	ErrUnknownSystem     = errors.New("unknown rating system")
	ErrInvalidComparison = errors.New("invalid comparison")
	ErrCorruptStats      = errors.New("corrupt pairwise stats")
)

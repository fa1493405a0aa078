// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"errors"
	"fmt"
)

// ErrMessageTooLarge defines that encoded runestone does not fit into the OP_RETURN output.
var ErrMessageTooLarge = errors.New("runestone greater than maximum OP_RETURN size")

// MessageTooLargeError describes oversized runestone script.
type MessageTooLargeError struct {
	Size  int
	Limit int
}

// Error implements error interface.
func (e *MessageTooLargeError) Error() string {
	return fmt.Sprintf("%s: %d > %d", ErrMessageTooLarge.Error(), e.Size, e.Limit)
}

// Is checks if target error is MessageTooLargeError.
func (e *MessageTooLargeError) Is(target error) bool {
	if target == ErrMessageTooLarge {
		return true
	}

	_, ok := target.(*MessageTooLargeError)
	return ok
}

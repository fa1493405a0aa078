// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package sequencereader

import (
	"errors"
)

// ErrEnded indicates that the sequence has fewer items left than requested.
var ErrEnded = errors.New("the sequence is ended")

// SequenceReader reads items of the sequence one by one or in chunks.
type SequenceReader[T any] struct {
	seq []T
}

// New is a constructor for SequenceReader.
func New[T any](seq []T) *SequenceReader[T] {
	return &SequenceReader[T]{seq: seq}
}

// HasNext returns true is sequence is not ended.
func (sr *SequenceReader[T]) HasNext() bool {
	return len(sr.seq) > 0
}

// Next returns next item of the sequence.
func (sr *SequenceReader[T]) Next() (T, error) {
	items, err := sr.NextN(1)
	if err != nil {
		var zero T
		return zero, err
	}

	return items[0], nil
}

// NextN returns next n items of the sequence, nothing is consumed on ErrEnded.
func (sr *SequenceReader[T]) NextN(n int) ([]T, error) {
	if n > len(sr.seq) {
		return nil, ErrEnded
	}

	items := sr.seq[:n:n]
	sr.seq = sr.seq[n:]

	return items, nil
}

// Len returns how many items are left.
func (sr *SequenceReader[T]) Len() int {
	return len(sr.seq)
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etching

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

type validationErrorKind string

const (
	// DuplicatePending defines that the rune already has pending etching.
	DuplicatePending validationErrorKind = "duplicate pending"
	// ReservedName defines that the rune falls in the reserved range.
	ReservedName validationErrorKind = "reserved name"
	// AlreadyEtched defines that the rune already resolves on-chain.
	AlreadyEtched validationErrorKind = "already etched"
	// NameTooShort defines that the rune is less than minimum at the reveal height.
	NameTooShort validationErrorKind = "name too short"
	// IndexUnavailable defines that the name index does not index runes.
	IndexUnavailable validationErrorKind = "index unavailable"
	// DivisibilityOutOfRange defines that divisibility is greater than runes.MaxDivisibility.
	DivisibilityOutOfRange validationErrorKind = "divisibility out of range"
)

var (
	// ErrDuplicatePending matches ValidationError of DuplicatePending kind.
	ErrDuplicatePending = &ValidationError{Kind: DuplicatePending}
	// ErrReservedName matches ValidationError of ReservedName kind.
	ErrReservedName = &ValidationError{Kind: ReservedName}
	// ErrAlreadyEtched matches ValidationError of AlreadyEtched kind.
	ErrAlreadyEtched = &ValidationError{Kind: AlreadyEtched}
	// ErrNameTooShort matches ValidationError of NameTooShort kind.
	ErrNameTooShort = &ValidationError{Kind: NameTooShort}
	// ErrIndexUnavailable matches ValidationError of IndexUnavailable kind.
	ErrIndexUnavailable = &ValidationError{Kind: IndexUnavailable}
	// ErrDivisibilityOutOfRange matches ValidationError of DivisibilityOutOfRange kind.
	ErrDivisibilityOutOfRange = &ValidationError{Kind: DivisibilityOutOfRange}
)

var (
	// ErrNoPendingEtching defines that there is no pending etching for the rune.
	ErrNoPendingEtching = errors.New("no pending etching")
	// ErrClaimed defines that pending etching is processed by another call.
	ErrClaimed = errors.New("pending etching is claimed by another call")
	// ErrStateConflict defines that pending etching state differs from expected one.
	ErrStateConflict = errors.New("pending etching state conflict")
	// ErrCommitNotBroadcast defines that the node does not know the commit transaction.
	ErrCommitNotBroadcast = errors.New("commit transaction is unknown to the node, abandon the etching")
	// ErrCommitBroadcast defines that the commit transaction is live and the etching can still be revealed.
	ErrCommitBroadcast = errors.New("commit transaction is broadcast, resume the etching or force abandon")
	// ErrInvalidDestination defines that destination address does not belong to the network.
	ErrInvalidDestination = errors.New("invalid destination address")
)

// ValidationError describes rejected etching request with the offending values.
type ValidationError struct {
	Kind         validationErrorKind
	Rune         string
	Height       uint64
	Minimum      string
	Divisibility byte
}

// Error returns error description.
func (e *ValidationError) Error() string {
	switch e.Kind {
	case DuplicatePending:
		return fmt.Sprintf("rune `%s` has pending etching, resume with `etcher resume`", e.Rune)
	case ReservedName:
		return fmt.Sprintf("rune `%s` is reserved", e.Rune)
	case AlreadyEtched:
		return fmt.Sprintf("rune `%s` has already been etched", e.Rune)
	case NameTooShort:
		return fmt.Sprintf("rune is less than minimum for reveal height %d: %s < %s", e.Height, e.Rune, e.Minimum)
	case IndexUnavailable:
		return "etching runes requires index with runes indexing enabled"
	case DivisibilityOutOfRange:
		return fmt.Sprintf("divisibility must be equal to or less than 38: %d", e.Divisibility)
	default:
		return string(e.Kind)
	}
}

// Is implements comparator method for [errors] package.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// RPCError wraps error of the ledger or the name index unchanged.
type RPCError struct {
	Op  string
	Err error
}

// Error returns error description.
func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns wrapped error.
func (e *RPCError) Unwrap() error {
	return e.Err
}

type stateErrorKind string

// CorruptPendingRecord defines that stored pending etching can not be decoded.
const CorruptPendingRecord stateErrorKind = "corrupt pending record"

// ErrCorruptPendingRecord matches StateError of CorruptPendingRecord kind.
var ErrCorruptPendingRecord = &StateError{Kind: CorruptPendingRecord}

// StateError describes broken pending etching state.
type StateError struct {
	Kind stateErrorKind
	Rune string
	Err  error
}

// Error returns error description.
func (e *StateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s for rune `%s`", e.Kind, e.Rune)
	}

	return fmt.Sprintf("%s for rune `%s`: %v", e.Kind, e.Rune, e.Err)
}

// Is implements comparator method for [errors] package.
func (e *StateError) Is(target error) bool {
	t, ok := target.(*StateError)
	return ok && t.Kind == e.Kind
}

// Unwrap returns wrapped error.
func (e *StateError) Unwrap() error {
	return e.Err
}

// InsufficientConfirmationsError defines that the commit transaction is not deep enough for reveal.
type InsufficientConfirmationsError struct {
	TxID chainhash.Hash
	Have uint64
	Need uint64
}

// Error returns error description.
func (e *InsufficientConfirmationsError) Error() string {
	return fmt.Sprintf("commit transaction %s has %d confirmations, %d required", e.TxID, e.Have, e.Need)
}

// rpcError wraps non nil error into RPCError.
func rpcError(op string, err error) error {
	if err == nil {
		return nil
	}

	return &RPCError{Op: op, Err: err}
}

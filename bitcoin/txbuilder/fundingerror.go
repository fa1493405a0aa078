// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"fmt"
	"math/big"
)

type fundingErrorKind string

const (
	// LockFailure defines that competing reservations could not be locked before funding.
	LockFailure fundingErrorKind = "lock failure"
	// InsufficientFunds defines that the wallet can not cover transaction amount and fee.
	InsufficientFunds fundingErrorKind = "insufficient funds"
)

var (
	// ErrLockFailure matches any FundingError of LockFailure kind.
	ErrLockFailure = &FundingError{Kind: LockFailure}
	// ErrInsufficientFunds matches any FundingError of InsufficientFunds kind.
	ErrInsufficientFunds = &FundingError{Kind: InsufficientFunds}
)

// FundingError is the error type to describe transaction funding errors with details.
type FundingError struct {
	Kind fundingErrorKind
	Need *big.Int // in satoshi, optional.
	Have *big.Int // in satoshi, optional.
	Err  error    // error of the funding collaborator, optional.
}

// NewInsufficientFundsError is a constructor for FundingError of InsufficientFunds kind.
func NewInsufficientFundsError(need, have *big.Int, err error) *FundingError {
	return &FundingError{Kind: InsufficientFunds, Need: need, Have: have, Err: err}
}

// NewLockFailureError is a constructor for FundingError of LockFailure kind.
func NewLockFailureError(err error) *FundingError {
	return &FundingError{Kind: LockFailure, Err: err}
}

// Error returns error description.
func (e *FundingError) Error() string {
	var errMsg = string(e.Kind)

	if e.Need != nil && e.Have != nil {
		errMsg += fmt.Sprintf(": Need - %s, Have - %s", e.Need, e.Have)
	}

	if e.Err != nil {
		errMsg += ": " + e.Err.Error()
	}

	return errMsg
}

// Is implements comparator method for [errors] package.
func (e *FundingError) Is(target error) bool {
	t, ok := target.(*FundingError)
	return ok && t.Kind == e.Kind
}

// Unwrap returns error of the funding collaborator.
func (e *FundingError) Unwrap() error {
	return e.Err
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etching

import (
	"context"
	"errors"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

// MinimumFunc returns minimum rune name that may be etched at the height.
// Must be non-increasing in height.
type MinimumFunc func(height uint64) *runes.Rune

// NetworkMinimum returns MinimumFunc of the network.
func NetworkMinimum(params *chaincfg.Params) MinimumFunc {
	return func(height uint64) *runes.Rune {
		return runes.MinimumAtHeight(params, height)
	}
}

// Validator checks whether a rune name may be etched.
type Validator struct {
	store   Store
	index   NameIndex
	minimum MinimumFunc
}

// NewValidator is a constructor for Validator.
func NewValidator(store Store, index NameIndex, minimum MinimumFunc) *Validator {
	return &Validator{
		store:   store,
		index:   index,
		minimum: minimum,
	}
}

// Validate checks the rune against pending etchings, the name index, the reserved range
// and the minimum at the reveal height. Returns the reveal height.
func (v *Validator) Validate(ctx context.Context, rune_ *runes.Rune, currentHeight uint64) (uint64, error) {
	name := rune_.String()

	_, err := v.store.Get(name)
	switch {
	case err == nil:
		return 0, &ValidationError{Kind: DuplicatePending, Rune: name}
	case !errors.Is(err, ErrNoPendingEtching):
		return 0, err
	}

	hasIndex, err := v.index.HasRuneIndex(ctx)
	if err != nil {
		return 0, rpcError("rune index status", err)
	}
	if !hasIndex {
		return 0, &ValidationError{Kind: IndexUnavailable, Rune: name}
	}

	_, found, err := v.index.Rune(ctx, rune_)
	if err != nil {
		return 0, rpcError("rune lookup", err)
	}
	if found {
		return 0, &ValidationError{Kind: AlreadyEtched, Rune: name}
	}

	if rune_.IsReserved() {
		return 0, &ValidationError{Kind: ReservedName, Rune: name}
	}

	revealHeight := currentHeight + runes.ConfirmationsRequired()

	minimum := v.minimum(revealHeight)
	if rune_.Cmp(minimum) < 0 {
		return 0, &ValidationError{Kind: NameTooShort, Rune: name, Height: revealHeight, Minimum: minimum.String()}
	}

	return revealHeight, nil
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etching_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/etcher/bitcoin/etching"
	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

func TestValidator(t *testing.T) {
	var (
		ctx           = context.Background()
		currentHeight = uint64(300)
		revealHeight  = currentHeight + runes.CommitConfirmations
		minimum       = runes.MinimumAtHeight(network, revealHeight)
	)

	t.Run("name of exactly minimum length", func(t *testing.T) {
		store := newStore(t)
		validator := etching.NewValidator(store, newIndexMock(), etching.NetworkMinimum(network))

		height, err := validator.Validate(ctx, minimum, currentHeight)
		require.NoError(t, err)
		require.Equal(t, revealHeight, height)

		records, err := store.List()
		require.NoError(t, err)
		require.Empty(t, records)
	})

	t.Run("name below minimum", func(t *testing.T) {
		validator := etching.NewValidator(newStore(t), newIndexMock(), etching.NetworkMinimum(network))

		below, err := runes.NewRuneFromNumber(new(big.Int).Sub(minimum.Value(), big.NewInt(1)))
		require.NoError(t, err)

		_, err = validator.Validate(ctx, below, currentHeight)
		require.ErrorIs(t, err, etching.ErrNameTooShort)

		var validationErr *etching.ValidationError
		require.True(t, errors.As(err, &validationErr))
		require.Equal(t, below.String(), validationErr.Rune)
		require.Equal(t, minimum.String(), validationErr.Minimum)
		require.Equal(t, revealHeight, validationErr.Height)
	})

	t.Run("minimum is taken at reveal height", func(t *testing.T) {
		var requested uint64
		validator := etching.NewValidator(newStore(t), newIndexMock(), func(height uint64) *runes.Rune {
			requested = height
			return minimum
		})

		_, err := validator.Validate(ctx, minimum, currentHeight)
		require.NoError(t, err)
		require.Equal(t, currentHeight+6, requested)
	})

	t.Run("reserved name", func(t *testing.T) {
		store := newStore(t)
		validator := etching.NewValidator(store, newIndexMock(), etching.NetworkMinimum(network))

		_, err := validator.Validate(ctx, runes.RuneReserve(runes.RuneID{Block: 1, TxID: 2}), currentHeight)
		require.ErrorIs(t, err, etching.ErrReservedName)

		records, err := store.List()
		require.NoError(t, err)
		require.Empty(t, records)
	})

	t.Run("already etched", func(t *testing.T) {
		index := newIndexMock()
		index.etched["UNCOMMONGOODS"] = true
		validator := etching.NewValidator(newStore(t), index, etching.NetworkMinimum(network))

		_, err := validator.Validate(ctx, mustSpacedRune(t, "UNCOMMONGOODS").Rune, currentHeight)
		require.ErrorIs(t, err, etching.ErrAlreadyEtched)
	})

	t.Run("index unavailable before lookup", func(t *testing.T) {
		index := newIndexMock()
		index.hasIndex = false
		index.etched["UNCOMMONGOODS"] = true
		validator := etching.NewValidator(newStore(t), index, etching.NetworkMinimum(network))

		_, err := validator.Validate(ctx, mustSpacedRune(t, "UNCOMMONGOODS").Rune, currentHeight)
		require.ErrorIs(t, err, etching.ErrIndexUnavailable)
		require.Equal(t, 1, index.calls)
	})

	t.Run("duplicate pending regardless of other checks", func(t *testing.T) {
		names := []string{"UNCOMMONGOODS", "A", runes.FirstReservedRuneName.String()}
		for _, name := range names {
			store := newStore(t)
			index := newIndexMock()
			index.hasIndex = false

			spaced := mustSpacedRune(t, name)
			require.NoError(t, store.Put(&etching.PendingEtching{
				RequestID:  uuid.New(),
				Rune:       spaced,
				Directive:  &runes.Directive{Rune: spaced.Rune},
				Commitment: spaced.Rune.Commitment(),
				State:      etching.StateCommitBroadcast,
			}))

			validator := etching.NewValidator(store, index, etching.NetworkMinimum(network))
			_, err := validator.Validate(ctx, spaced.Rune, currentHeight)
			require.ErrorIs(t, err, etching.ErrDuplicatePending, name)
			require.Zero(t, index.calls)

			_, err = validator.Validate(ctx, spaced.Rune, 0)
			require.ErrorIs(t, err, etching.ErrDuplicatePending, name)
		}
	})
}

func TestValidationErrorMessages(t *testing.T) {
	tests := []struct {
		err      *etching.ValidationError
		expected string
	}{
		{&etching.ValidationError{Kind: etching.DuplicatePending, Rune: "ABC"}, "rune `ABC` has pending etching, resume with `etcher resume`"},
		{&etching.ValidationError{Kind: etching.ReservedName, Rune: "ABC"}, "rune `ABC` is reserved"},
		{&etching.ValidationError{Kind: etching.AlreadyEtched, Rune: "ABC"}, "rune `ABC` has already been etched"},
		{&etching.ValidationError{Kind: etching.NameTooShort, Rune: "ABC", Height: 10, Minimum: "ABCD"}, "rune is less than minimum for reveal height 10: ABC < ABCD"},
		{&etching.ValidationError{Kind: etching.DivisibilityOutOfRange, Divisibility: 39}, "divisibility must be equal to or less than 38: 39"},
	}
	for _, test := range tests {
		require.Equal(t, test.expected, test.err.Error())
		require.ErrorIs(t, test.err, &etching.ValidationError{Kind: test.err.Kind})
	}

	require.False(t, errors.Is(etching.ErrReservedName, etching.ErrAlreadyEtched))
}

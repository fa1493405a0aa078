// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
	"github.com/BoostyLabs/etcher/internal/numbers"
)

func TestDirective(t *testing.T) {
	spaced, err := runes.ParseSpacedRune("UNCOMMON•GOODS")
	require.NoError(t, err)

	heightStart, heightEnd := uint64(840000), uint64(850000)
	directive := &runes.Directive{
		Rune:         spaced.Rune,
		Spacers:      spaced.Spacers,
		Divisibility: 2,
		Premine:      big.NewInt(1000000),
		Symbol:       'G',
		Terms: &runes.Terms{
			Amount:      big.NewInt(100),
			Cap:         big.NewInt(1000),
			HeightStart: &heightStart,
			HeightEnd:   &heightEnd,
		},
		Supply: big.NewInt(5000000),
		Output: 1,
	}
	script := "6a5d2c0102020303800104de8a85e1ebd881c41c054706c0843d08e8070a640cc0a2330ed0f033000000c096b10201"

	t.Run("EncodeDirective", func(t *testing.T) {
		data, err := runes.EncodeDirective(directive)
		require.NoError(t, err)
		require.Equal(t, script, hex.EncodeToString(data))
		require.LessOrEqual(t, len(data), runes.MaxScriptSize)
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := runes.EncodeDirective(directive)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			next, err := runes.EncodeDirective(directive)
			require.NoError(t, err)
			require.Equal(t, first, next)
		}
	})

	t.Run("DecodeDirective", func(t *testing.T) {
		data, err := hex.DecodeString(script)
		require.NoError(t, err)

		decoded, err := runes.DecodeDirective(data)
		require.NoError(t, err)
		require.Equal(t, directive, decoded)
		require.Equal(t, "UNCOMMON•GOODS", decoded.SpacedRune().String())
	})

	t.Run("existing etching", func(t *testing.T) {
		data, err := hex.DecodeString("6a5d15010a0201030004dedfd1e58fd617054d0680b19164")
		require.NoError(t, err)

		decoded, err := runes.DecodeDirective(data)
		require.NoError(t, err)
		require.EqualValues(t, 10, decoded.Divisibility)
		require.EqualValues(t, 'M', decoded.Symbol)
		require.Equal(t, big.NewInt(210000000), decoded.Premine)
		require.Equal(t, big.NewInt(104114246938590), decoded.Rune.Value())
		require.Nil(t, decoded.Terms)
		require.Nil(t, decoded.Supply)

		encoded, err := runes.EncodeDirective(decoded)
		require.NoError(t, err)
		require.Equal(t, data, encoded)
	})

	t.Run("round trip", func(t *testing.T) {
		offsetStart, offsetEnd := uint64(0), uint64(^uint32(0))
		tests := []struct {
			name      string
			directive *runes.Directive
		}{
			{
				name: "bare",
				directive: &runes.Directive{
					Rune:    mustRune(t, "ZZZZZZZZZZZZZ"),
					Premine: big.NewInt(0),
				},
			},
			{
				name: "turbo with offsets",
				directive: &runes.Directive{
					Rune:         mustRune(t, "TURBOTURBOTURBO"),
					Spacers:      0b10000_10000,
					Divisibility: runes.MaxDivisibility,
					Premine:      big.NewInt(7),
					Symbol:       '⚡',
					Turbo:        true,
					Terms: &runes.Terms{
						OffsetStart: &offsetStart,
						OffsetEnd:   &offsetEnd,
					},
				},
			},
			{
				name: "empty terms and supply to the first output",
				directive: &runes.Directive{
					Rune:    mustRune(t, "EMPTYTERMSRUNE"),
					Premine: big.NewInt(0),
					Terms:   &runes.Terms{},
					Supply:  big.NewInt(0),
				},
			},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				data, err := runes.EncodeDirective(test.directive)
				require.NoError(t, err)

				decoded, err := runes.DecodeDirective(data)
				require.NoError(t, err)
				require.Equal(t, test.directive, decoded)
			})
		}
	})

	t.Run("message too large", func(t *testing.T) {
		large := &runes.Directive{
			Rune:         mustRune(t, "BCGDENLQRQWDSLRUGSNLBTMFIJAV"),
			Spacers:      runes.MaxSpacers >> 4,
			Divisibility: 18,
			Premine:      numbers.MaxUInt128Value,
			Symbol:       '🪙',
			Terms: &runes.Terms{
				Amount: numbers.MaxUInt128Value,
				Cap:    numbers.MaxUInt128Value,
			},
			Supply: numbers.MaxUInt128Value,
		}

		_, err := runes.EncodeDirective(large)
		require.ErrorIs(t, err, runes.ErrMessageTooLarge)

		var tooLarge *runes.MessageTooLargeError
		require.ErrorAs(t, err, &tooLarge)
		require.Greater(t, tooLarge.Size, runes.MaxScriptSize)
		require.Equal(t, runes.MaxScriptSize, tooLarge.Limit)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := runes.EncodeDirective(&runes.Directive{Rune: mustRune(t, "AAAAAAAAAAAAA"), Divisibility: 39})
		require.ErrorIs(t, err, runes.ErrInvalidDivisibility)

		_, err = runes.EncodeDirective(&runes.Directive{})
		require.Error(t, err)

		overflow := new(big.Int).Add(numbers.MaxUInt128Value, numbers.OneBigInt)
		_, err = runes.EncodeDirective(&runes.Directive{Rune: mustRune(t, "AAAAAAAAAAAAA"), Premine: overflow})
		require.ErrorIs(t, err, runes.ErrOverflow)

		for _, symbol := range []rune{0xD800, 0xDFFF, 0x110000, -1} {
			_, err = runes.EncodeDirective(&runes.Directive{Rune: mustRune(t, "AAAAAAAAAAAAB"), Symbol: symbol})
			require.ErrorIs(t, err, runes.ErrInvalidSymbolCodePoint, symbol)
		}

		_, err = runes.EncodeDirective(&runes.Directive{Rune: mustRune(t, "ABC"), Spacers: 0b100})
		require.ErrorIs(t, err, runes.ErrInvalidSpacers)
	})

	t.Run("surrogate symbol", func(t *testing.T) {
		symbol := rune(0xD800)
		runestone := &runes.Runestone{Etching: &runes.Etching{Rune: mustRune(t, "AAAAAAAAAAAAB"), Symbol: &symbol}}
		data, err := runestone.IntoScript()
		require.NoError(t, err)

		_, err = runes.ParseRunestone(data)
		require.ErrorIs(t, err, runes.ErrInvalidSymbolCodePoint)

		_, err = runes.DecodeDirective(data)
		require.ErrorIs(t, err, runes.ErrInvalidSymbolCodePoint)
	})

	t.Run("nil premine is zero", func(t *testing.T) {
		zero, err := runes.EncodeDirective(&runes.Directive{Rune: mustRune(t, "AAAAAAAAAAAAB"), Premine: big.NewInt(0)})
		require.NoError(t, err)

		omitted, err := runes.EncodeDirective(&runes.Directive{Rune: mustRune(t, "AAAAAAAAAAAAB")})
		require.NoError(t, err)
		require.Equal(t, zero, omitted)

		decoded, err := runes.DecodeDirective(omitted)
		require.NoError(t, err)
		require.Zero(t, decoded.Premine.Sign())
	})

	t.Run("not a directive", func(t *testing.T) {
		for _, script := range []string{
			"6a5d0814e5e49d0114cc01",
			"6a5d09008fe69d0154d70e01",
			"6a5d1a020104fae2a3e9ac8cb9d814010403800205240680c2d72f1601",
		} {
			data, err := hex.DecodeString(script)
			require.NoError(t, err)

			_, err = runes.DecodeDirective(data)
			require.ErrorIs(t, err, runes.ErrNotDirective, script)
		}
	})
}

func mustRune(t *testing.T, name string) *runes.Rune {
	t.Helper()

	rune_, err := runes.NewRuneFromString(name)
	require.NoError(t, err)

	return rune_
}

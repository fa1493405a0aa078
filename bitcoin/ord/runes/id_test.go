// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

func TestRuneID(t *testing.T) {
	runeID := runes.RuneID{Block: 22556689, TxID: 15}

	t.Run("Next and Delta", func(t *testing.T) {
		tests := []struct {
			name     string
			previous runes.RuneID
			delta    runes.RuneID
			next     runes.RuneID
		}{
			{"from zero", runes.RuneID{}, runeID, runeID},
			{"same block", runeID, runes.RuneID{TxID: 2}, runes.RuneID{Block: 22556689, TxID: 17}},
			{"same rune", runeID, runes.RuneID{}, runeID},
			{"next block", runeID, runes.RuneID{Block: 1, TxID: 2}, runes.RuneID{Block: 22556690, TxID: 2}},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				require.Equal(t, test.next, test.previous.Next(test.delta))
				require.Equal(t, test.delta, test.next.Delta(test.previous))
			})
		}
	})

	t.Run("Compare", func(t *testing.T) {
		require.Zero(t, runeID.Compare(runeID))
		require.Negative(t, runeID.Compare(runes.RuneID{Block: 22556689, TxID: 16}))
		require.Positive(t, runeID.Compare(runes.RuneID{Block: 22556688, TxID: 100}))
		require.Negative(t, runeID.Compare(runes.RuneID{Block: 1 << 63}))
	})

	t.Run("ToIntSeq", func(t *testing.T) {
		seq := []*big.Int{big.NewInt(22556689), big.NewInt(15)}
		require.Equal(t, seq, runeID.ToIntSeq())
	})

	t.Run("String", func(t *testing.T) {
		require.Equal(t, "22556689:15", runeID.String())
	})

	t.Run("NewRuneIDFromString", func(t *testing.T) {
		tests := []struct {
			input   string
			result  runes.RuneID
			invalid bool
		}{
			{input: "22556689:15", result: runeID},
			{input: "0:0", result: runes.RuneID{}},
			{input: "2255668915", invalid: true},
			{input: "22556689:15F", invalid: true},
			{input: "2255pp89:15", invalid: true},
			{input: "1:4294967296", invalid: true},
			{input: "", invalid: true},
		}
		for _, test := range tests {
			t.Run(test.input, func(t *testing.T) {
				parsed, err := runes.NewRuneIDFromString(test.input)
				if test.invalid {
					require.Error(t, err)
					return
				}

				require.NoError(t, err)
				require.Equal(t, test.result, parsed)
			})
		}
	})
}

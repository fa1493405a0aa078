// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
	"github.com/BoostyLabs/etcher/internal/sequencereader"
)

func TestMessage(t *testing.T) {
	t.Run("ParseMessage", func(t *testing.T) {
		tests := []struct {
			name     string
			seq      []*big.Int
			expected *runes.Message
		}{
			{
				name: "mint",
				seq:  intSeq(20, 2585189, 20, 204),
				expected: &runes.Message{Fields: map[runes.Tag][]*big.Int{
					runes.TagMint: intSeq(2585189, 204),
				}},
			},
			{
				name:     "edict",
				seq:      intSeq(0, 2585359, 84, 1879, 1),
				expected: &runes.Message{Edicts: []runes.Edict{newEdict(2585359, 84, 1879, 1)}},
			},
			{
				name: "unknown odd tag is skipped",
				seq:  intSeq(129, 7, 22, 1),
				expected: &runes.Message{Fields: map[runes.Tag][]*big.Int{
					runes.TagPointer: intSeq(1),
				}},
			},
			{
				name:     "empty",
				seq:      nil,
				expected: &runes.Message{},
			},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				parsed, err := runes.ParseMessage(sequencereader.New(test.seq))
				require.NoError(t, err)
				require.Equal(t, test.expected, parsed)
			})
		}
	})

	t.Run("ParseMessage (invalid)", func(t *testing.T) {
		tests := []struct {
			name     string
			seq      []*big.Int
			expected error
		}{
			{"invalid edicts group size", intSeq(0, 1, 2, 3), runes.ErrCenotaph},
			{"truncated", intSeq(20, 21156847, 20), runes.ErrTruncated},
			{"unknown even tag", intSeq(128, 1), runes.ErrCenotaph},
			{"truncated unknown odd tag", intSeq(131), runes.ErrTruncated},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				_, err := runes.ParseMessage(sequencereader.New(test.seq))
				require.ErrorIs(t, err, test.expected)
			})
		}
	})

	t.Run("ToIntSeq", func(t *testing.T) {
		message := &runes.Message{
			Fields: map[runes.Tag][]*big.Int{
				runes.TagPointer: intSeq(1),
				runes.TagMint:    intSeq(2585189, 204),
			},
			Edicts: []runes.Edict{newEdict(2585359, 84, 1879, 1)},
		}

		seq := message.ToIntSeq()
		require.Equal(t, intSeq(20, 2585189, 20, 204, 22, 1, 0, 2585359, 84, 1879, 1), seq)

		parsed, err := runes.ParseMessage(sequencereader.New(seq))
		require.NoError(t, err)
		require.Equal(t, message, parsed)
	})
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package runes

import (
	"math/big"
	"slices"

	"github.com/BoostyLabs/etcher/internal/numbers"
	"github.com/BoostyLabs/etcher/internal/sequencereader"
)

// edictSize defines number of integers encoding single edict.
const edictSize = 4

// Edict allocates Amount of the rune to the transaction output.
// Zero RuneID refers to the rune etched by the same runestone.
type Edict struct {
	RuneID RuneID
	Amount *big.Int
	Output uint32
}

// ParseEdicts parses delta encoded edicts from the rest of the message body.
func ParseEdicts(sr *sequencereader.SequenceReader[*big.Int]) ([]Edict, error) {
	if sr.Len()%edictSize != 0 {
		return nil, ErrCenotaph
	}

	var (
		edicts   = make([]Edict, 0, sr.Len()/edictSize)
		previous RuneID
	)
	for sr.HasNext() {
		items, err := sr.NextN(edictSize)
		if err != nil {
			return nil, ErrCenotaph
		}

		block, tx, amount, output := items[0], items[1], items[2], items[3]
		if !block.IsUint64() || !numbers.IsUint32(tx) || !numbers.IsUint32(output) {
			return nil, ErrOverflow
		}

		previous = previous.Next(RuneID{Block: block.Uint64(), TxID: uint32(tx.Uint64())})
		edicts = append(edicts, Edict{
			RuneID: previous,
			Amount: amount,
			Output: uint32(output.Uint64()),
		})
	}

	return edicts, nil
}

// ToIntSeq returns Edict as sequence on integers.
func (edict *Edict) ToIntSeq() []*big.Int {
	return append(edict.RuneID.ToIntSeq(), new(big.Int).Set(edict.Amount), big.NewInt(int64(edict.Output)))
}

// SortEdicts sorts edicts by RuneID, keeping order of the edicts of the same rune.
func SortEdicts(edicts []Edict) {
	slices.SortStableFunc(edicts, func(a, b Edict) int {
		return a.RuneID.Compare(b.RuneID)
	})
}

// DeltaEncode returns copy of sorted edicts with RuneIDs relative to the previous edict.
func DeltaEncode(sorted []Edict) []Edict {
	var (
		encoded  = make([]Edict, 0, len(sorted))
		previous RuneID
	)
	for _, edict := range sorted {
		encoded = append(encoded, Edict{
			RuneID: edict.RuneID.Delta(previous),
			Amount: edict.Amount,
			Output: edict.Output,
		})
		previous = edict.RuneID
	}

	return encoded
}

// EncodeEdicts sorts edicts and returns them as delta encoded integer sequence.
func EncodeEdicts(edicts []Edict) []*big.Int {
	SortEdicts(edicts)

	sequence := make([]*big.Int, 0, len(edicts)*edictSize)
	for _, edict := range DeltaEncode(edicts) {
		sequence = append(sequence, edict.ToIntSeq()...)
	}

	return sequence
}

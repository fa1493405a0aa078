// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"math/big"

	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

// RuneEntry describes on-chain issuance record of the etched rune.
type RuneEntry struct {
	ID           runes.RuneID
	SpacedRune   runes.SpacedRune
	Number       uint64
	Divisibility byte
	Premine      *big.Int // in rune units.
	Symbol       rune
	Turbo        bool
	Terms        *runes.Terms
	EtchingTxID  string
}

// FundedTx describes transaction completed by the wallet funding step.
type FundedTx struct {
	Tx             *wire.MsgTx
	Fee            *big.Int // in Satoshi.
	ChangePosition int      // -1 if no change output added.
}

// UsedOutpoints returns outpoints spent by the transaction.
func (f *FundedTx) UsedOutpoints() []wire.OutPoint {
	outpoints := make([]wire.OutPoint, 0, len(f.Tx.TxIn))
	for _, in := range f.Tx.TxIn {
		outpoints = append(outpoints, in.PreviousOutPoint)
	}

	return outpoints
}

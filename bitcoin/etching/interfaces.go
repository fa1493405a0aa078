// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etching

import (
	"context"
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/etcher/bitcoin"
	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

// Ledger exposes wallet and chain operations of the node.
type Ledger interface {
	// BlockCount returns height of the best block.
	BlockCount(ctx context.Context) (uint64, error)
	// LockUnspent excludes outpoints from wallet coin selection.
	LockUnspent(ctx context.Context, outpoints []wire.OutPoint) error
	// UnlockUnspent returns outpoints to wallet coin selection.
	UnlockUnspent(ctx context.Context, outpoints []wire.OutPoint) error
	// FundRawTransaction adds wallet inputs and change to the transaction.
	FundRawTransaction(ctx context.Context, tx *wire.MsgTx, satoshiPerKVByte *big.Int) (*bitcoin.FundedTx, error)
	// SignRawTransaction signs wallet inputs of the transaction.
	SignRawTransaction(ctx context.Context, tx *wire.MsgTx) (*wire.MsgTx, error)
	// SendRawTransaction broadcasts signed transaction.
	SendRawTransaction(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error)
	// Confirmations returns number of transaction confirmations, found is false
	// if the node knows neither mempool nor wallet transaction with the id.
	Confirmations(ctx context.Context, txID chainhash.Hash) (confirmations uint64, found bool, err error)
	// ChangeAddress returns new wallet address.
	ChangeAddress(ctx context.Context) (btcutil.Address, error)
}

// NameIndex resolves runes etched on-chain.
type NameIndex interface {
	// HasRuneIndex returns true if the index tracks runes.
	HasRuneIndex(ctx context.Context) (bool, error)
	// Rune returns issuance record of the rune, found is false if the rune is not etched.
	Rune(ctx context.Context, rune_ *runes.Rune) (entry *bitcoin.RuneEntry, found bool, err error)
}

// Store persists pending etchings keyed by rune name.
type Store interface {
	// Put creates the record or updates the one with the same RequestID,
	// returns ErrDuplicatePending for the record of another request.
	Put(rec *PendingEtching) error
	// CompareAndSwap replaces the record of the same request if its state equals expected,
	// returns ErrStateConflict otherwise.
	CompareAndSwap(name string, expected State, rec *PendingEtching) error
	// Get returns record by name or ErrNoPendingEtching.
	Get(name string) (*PendingEtching, error)
	// Clear removes record by name or returns ErrNoPendingEtching.
	Clear(name string) error
	// List returns all records.
	List() ([]*PendingEtching, error)
	// Claim marks the name as processed by the caller until release is called,
	// returns ErrClaimed if it is already claimed.
	Claim(name string) (release func(), err error)
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etching_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/etcher/bitcoin"
	"github.com/BoostyLabs/etcher/bitcoin/etching"
	"github.com/BoostyLabs/etcher/bitcoin/etching/pendingdb"
	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

var network = &chaincfg.RegressionNetParams

// ledgerMock is an in-memory wallet and chain.
type ledgerMock struct {
	mu sync.Mutex

	height        uint64
	calls         []string
	locked        [][]wire.OutPoint
	unlocked      [][]wire.OutPoint
	sent          []*wire.MsgTx
	known         map[chainhash.Hash]uint64 // confirmations of known transactions.
	sentConfirms  uint64                    // confirmations of broadcast transactions.
	lockErr       error
	fundErr       error
	sendErr       error
	confirmations func(txID chainhash.Hash) (uint64, bool)
}

func newLedgerMock() *ledgerMock {
	return &ledgerMock{
		height:       200,
		known:        make(map[chainhash.Hash]uint64),
		sentConfirms: runes.CommitConfirmations,
	}
}

func (m *ledgerMock) call(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, name)
}

func (m *ledgerMock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.calls...)
}

func (m *ledgerMock) BlockCount(context.Context) (uint64, error) {
	m.call("BlockCount")
	return m.height, nil
}

func (m *ledgerMock) LockUnspent(_ context.Context, outpoints []wire.OutPoint) error {
	m.call("LockUnspent")
	if m.lockErr != nil {
		return m.lockErr
	}

	m.locked = append(m.locked, outpoints)

	return nil
}

func (m *ledgerMock) UnlockUnspent(_ context.Context, outpoints []wire.OutPoint) error {
	m.call("UnlockUnspent")
	m.unlocked = append(m.unlocked, outpoints)

	return nil
}

func (m *ledgerMock) FundRawTransaction(_ context.Context, tx *wire.MsgTx, satoshiPerKVByte *big.Int) (*bitcoin.FundedTx, error) {
	m.call("FundRawTransaction")
	if m.fundErr != nil {
		return nil, m.fundErr
	}
	if satoshiPerKVByte == nil || satoshiPerKVByte.Sign() <= 0 {
		return nil, errors.New("invalid fee rate")
	}

	funded := tx.Copy()
	funded.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{0xaa, byte(len(m.Calls()))}, 0), nil, nil))
	// change goes first, so that the commit output is not at index 0.
	change := wire.NewTxOut(90000, []byte{0x00, 0x14, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a,
		0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14})
	funded.TxOut = append([]*wire.TxOut{change}, funded.TxOut...)

	return &bitcoin.FundedTx{Tx: funded, Fee: big.NewInt(500), ChangePosition: 0}, nil
}

func (m *ledgerMock) SignRawTransaction(_ context.Context, tx *wire.MsgTx) (*wire.MsgTx, error) {
	m.call("SignRawTransaction")

	signed := tx.Copy()
	for _, in := range signed.TxIn {
		in.Witness = wire.TxWitness{bytes.Repeat([]byte{0x30}, 71), bytes.Repeat([]byte{0x02}, 33)}
	}

	return signed, nil
}

func (m *ledgerMock) SendRawTransaction(_ context.Context, tx *wire.MsgTx) (*chainhash.Hash, error) {
	m.call("SendRawTransaction")
	if m.sendErr != nil {
		return nil, m.sendErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, tx)
	hash := tx.TxHash()
	m.known[hash] = m.sentConfirms

	return &hash, nil
}

func (m *ledgerMock) Confirmations(_ context.Context, txID chainhash.Hash) (uint64, bool, error) {
	m.call("Confirmations")
	if m.confirmations != nil {
		confirmations, found := m.confirmations(txID)
		return confirmations, found, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	confirmations, found := m.known[txID]

	return confirmations, found, nil
}

func (m *ledgerMock) ChangeAddress(context.Context) (btcutil.Address, error) {
	m.call("ChangeAddress")
	return destinationAddress(), nil
}

// Sent returns broadcast transactions.
func (m *ledgerMock) Sent() []*wire.MsgTx {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*wire.MsgTx(nil), m.sent...)
}

// indexMock is an in-memory rune index.
type indexMock struct {
	hasIndex bool
	etched   map[string]bool
	calls    int
}

func newIndexMock() *indexMock {
	return &indexMock{hasIndex: true, etched: make(map[string]bool)}
}

func (m *indexMock) HasRuneIndex(context.Context) (bool, error) {
	m.calls++
	return m.hasIndex, nil
}

func (m *indexMock) Rune(_ context.Context, rune_ *runes.Rune) (*bitcoin.RuneEntry, bool, error) {
	m.calls++
	if !m.etched[rune_.String()] {
		return nil, false, nil
	}

	return &bitcoin.RuneEntry{ID: runes.RuneID{Block: 100, TxID: 1}}, true, nil
}

func destinationAddress() btcutil.Address {
	_, pubKey := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x22}, 32))
	address, _ := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pubKey.SerializeCompressed()), network)

	return address
}

func newStore(t *testing.T) *pendingdb.DB {
	t.Helper()

	store, err := pendingdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	return store
}

func newWorkflow(ledger etching.Ledger, index etching.NameIndex, store etching.Store) *etching.Workflow {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return etching.NewWorkflow(logrus.NewEntry(log), etching.Config{
		Network:      network,
		PollInterval: time.Millisecond,
	}, ledger, index, store)
}

func mustSpacedRune(t *testing.T, name string) runes.SpacedRune {
	t.Helper()

	spaced, err := runes.ParseSpacedRune(name)
	require.NoError(t, err)

	return spaced
}

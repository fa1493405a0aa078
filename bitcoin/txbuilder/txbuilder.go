// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
	"github.com/BoostyLabs/etcher/bitcoin/utils"
	"github.com/BoostyLabs/etcher/internal/numbers"
)

const (
	// txVersion defines transaction version for this builder, BIP-68 requires 2.
	txVersion int32 = 2
	// signHashType define signature hash type for reveal input signing.
	signHashType = txscript.SigHashDefault

	// revealOutputs defines number of the reveal transaction outputs.
	revealOutputs = 2
	// IssuanceOutput defines reveal output receiving etched rune supply.
	IssuanceOutput uint32 = 1
)

var (
	// DefaultPostage defines amount in satoshi attached to the etched rune output.
	DefaultPostage = big.NewInt(10000)

	// revealSequence defines relative lock of the reveal input, reveal is
	// not valid until commit transaction reaches required confirmations.
	revealSequence = blockchain.LockTimeToSequence(false, runes.CommitConfirmations-1)

	// placeholderSignature stands for schnorr signature in fee estimation.
	placeholderSignature = make([]byte, schnorr.SignatureSize)
)

var (
	// ErrCommitmentMismatch defines that reveal script commits to another rune.
	ErrCommitmentMismatch = errors.New("commitment does not match the rune")
	// ErrCommitOutputNotFound defines that funded commit transaction has no output to the reveal script.
	ErrCommitOutputNotFound = errors.New("commit output not found")
)

// RevealScript describes taproot script path the reveal transaction spends.
//
//	leaf script:
//	┌─────────────────────────────────────────────────────────────┐
//	│ <x-only key> OP_CHECKSIG                                    │
//	│ OP_FALSE OP_IF <trimmed LE rune> <commitment> OP_ENDIF      │
//	└─────────────────────────────────────────────────────────────┘
type RevealScript struct {
	Commitment   runes.Commitment
	Leaf         []byte
	ControlBlock []byte
	InternalKey  *btcec.PublicKey
	Address      *btcutil.AddressTaproot
	PkScript     []byte

	tree *txscript.IndexedTapScriptTree
}

// CommitParams describes data needed to build commit transaction.
type CommitParams struct {
	Script    *RevealScript
	RevealFee *big.Int // in satoshi, paid by the commit output.
}

// RevealParams describes data needed to build reveal transaction.
type RevealParams struct {
	Directive        *runes.Directive
	Commitment       runes.Commitment
	Script           *RevealScript
	FundingOutpoint  wire.OutPoint
	FundingValue     int64    // commit output value in satoshi.
	SatoshiPerKVByte *big.Int // fee rate in satoshi per kilo virtual byte.
	Destination      string   // etched rune recipient address.
}

// RevealTx describes unsigned reveal transaction.
type RevealTx struct {
	Tx     *wire.MsgTx
	Packet *psbt.Packet // carries reveal script path data for signing.
	Fee    *big.Int     // in satoshi.
}

// TxBuilder provides transaction building related logic.
type TxBuilder struct {
	networkParams *chaincfg.Params
	postage       *big.Int
}

// NewTxBuilder is a constructor for TxBuilder.
func NewTxBuilder(networkParams *chaincfg.Params, postage *big.Int) *TxBuilder {
	if postage == nil || !numbers.IsPositive(postage) {
		postage = DefaultPostage
	}

	return &TxBuilder{
		networkParams: networkParams,
		postage:       new(big.Int).Set(postage),
	}
}

// Postage returns amount in satoshi attached to the etched rune output.
func (b *TxBuilder) Postage() *big.Int {
	return new(big.Int).Set(b.postage)
}

// NewRevealScript builds reveal script committing to the rune, spendable by the internal key.
func (b *TxBuilder) NewRevealScript(rune_ *runes.Rune, internalKey *btcec.PublicKey) (*RevealScript, error) {
	commitment := rune_.Commitment()

	leaf, err := utils.NewCommitmentLeafTapScript(schnorr.SerializePubKey(internalKey), rune_.ProtocolCommitment(), commitment[:])
	if err != nil {
		return nil, err
	}

	tree, err := utils.NewTapScriptTreeFromRawScripts(leaf)
	if err != nil {
		return nil, err
	}

	address, err := utils.NewTaprootAddressFromScripts(b.networkParams, internalKey, leaf)
	if err != nil {
		return nil, err
	}

	pkScript, err := txscript.PayToAddrScript(address)
	if err != nil {
		return nil, err
	}

	ctrlBlock := tree.LeafMerkleProofs[0].ToControlBlock(internalKey)
	ctrlBytes, err := ctrlBlock.ToBytes()
	if err != nil {
		return nil, err
	}

	return &RevealScript{
		Commitment:   commitment,
		Leaf:         leaf,
		ControlBlock: ctrlBytes,
		InternalKey:  internalKey,
		Address:      address,
		PkScript:     pkScript,
		tree:         tree,
	}, nil
}

// BuildCommit constructs commit transaction paying postage and reveal fee to the reveal script.
// Inputs and change are left to the wallet funding step.
func (b *TxBuilder) BuildCommit(params CommitParams) (*wire.MsgTx, error) {
	if params.Script == nil {
		return nil, errors.New("reveal script is empty")
	}
	if params.RevealFee == nil || numbers.IsNegative(params.RevealFee) {
		return nil, errors.New("invalid reveal fee")
	}

	amount := new(big.Int).Add(b.postage, params.RevealFee)

	tx := wire.NewMsgTx(txVersion)
	tx.AddTxOut(wire.NewTxOut(amount.Int64(), params.Script.PkScript))

	return tx, nil
}

// FindCommitOutput returns outpoint and value of the commit transaction output paying to the reveal script.
// The wallet may place the output at any position when it adds change.
func FindCommitOutput(tx *wire.MsgTx, script *RevealScript) (wire.OutPoint, int64, error) {
	for idx, out := range tx.TxOut {
		if bytes.Equal(out.PkScript, script.PkScript) {
			return *wire.NewOutPoint(ptr(tx.TxHash()), uint32(idx)), out.Value, nil
		}
	}

	return wire.OutPoint{}, 0, ErrCommitOutputNotFound
}

// BuildReveal constructs reveal transaction spending commit output through the reveal script.
//
//	Tx struct
//	inputs:
//	┌─────────┬──────────────┬────────────────────────────────────────┐
//	│  index  │     type     │             description                │
//	├=========┼==============┼========================================┤
//	│       0 │ commit input │ commit output, script path spend,      │
//	│         │              │ witness carries the commitment.        │
//	└─────────┴──────────────┴────────────────────────────────────────┘
//
//	outputs:
//	┌─────────┬──────────────┬────────────────────────────────────────┐
//	│  index  │     type     │             description                │
//	├=========┼==============┼========================================┤
//	│       0 │ runestone    │ zero value etching runestone.          │
//	├─────────┼──────────────┼────────────────────────────────────────┤
//	│       1 │ rune output  │ postage to destination, receives       │
//	│         │              │ premine and issuance edict supply.     │
//	└─────────┴──────────────┴────────────────────────────────────────┘
func (b *TxBuilder) BuildReveal(params RevealParams) (*RevealTx, error) {
	if params.Directive == nil || params.Directive.Rune == nil || params.Script == nil {
		return nil, errors.New("reveal directive or script is empty")
	}
	if params.Commitment != params.Script.Commitment || params.Commitment != params.Directive.Rune.Commitment() {
		return nil, ErrCommitmentMismatch
	}
	if params.SatoshiPerKVByte == nil || !numbers.IsPositive(params.SatoshiPerKVByte) {
		return nil, errors.New("invalid fee rate")
	}

	tx, err := b.revealSkeleton(params.Directive, params.FundingOutpoint, params.Destination)
	if err != nil {
		return nil, err
	}

	fee, err := b.estimate(tx, params.Script, params.SatoshiPerKVByte)
	if err != nil {
		return nil, err
	}

	available := new(big.Int).Sub(big.NewInt(params.FundingValue), b.postage)
	if numbers.IsLess(available, fee) {
		return nil, NewInsufficientFundsError(fee, available, nil)
	}

	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, err
	}

	input := &packet.Inputs[0]
	input.WitnessUtxo = wire.NewTxOut(params.FundingValue, params.Script.PkScript)
	input.SighashType = signHashType
	input.TaprootInternalKey = schnorr.SerializePubKey(params.Script.InternalKey)
	input.WitnessScript = params.Script.Leaf
	if err = utils.UpdatePSBTInputWithTapScriptLeafData(input, params.Script.tree); err != nil {
		return nil, err
	}

	return &RevealTx{
		Tx:     packet.UnsignedTx,
		Packet: packet,
		Fee:    available,
	}, nil
}

// EstimateRevealFee returns reveal transaction fee in satoshi computed from its exact weight.
func (b *TxBuilder) EstimateRevealFee(d *runes.Directive, script *RevealScript, destination string, satoshiPerKVByte *big.Int) (*big.Int, error) {
	if satoshiPerKVByte == nil || !numbers.IsPositive(satoshiPerKVByte) {
		return nil, errors.New("invalid fee rate")
	}

	tx, err := b.revealSkeleton(d, wire.OutPoint{}, destination)
	if err != nil {
		return nil, err
	}

	return b.estimate(tx, script, satoshiPerKVByte)
}

// estimate returns fee of the reveal transaction with placeholder script path witness.
func (b *TxBuilder) estimate(tx *wire.MsgTx, script *RevealScript, satoshiPerKVByte *big.Int) (*big.Int, error) {
	draft := tx.Copy()
	draft.TxIn[0].Witness = wire.TxWitness{placeholderSignature, script.Leaf, script.ControlBlock}

	weight := blockchain.GetTransactionWeight(btcutil.NewTx(draft))
	vSize := (weight + blockchain.WitnessScaleFactor - 1) / blockchain.WitnessScaleFactor

	// vB * ( sat / kvB ) = 1000 sat, rounded up.
	fee := new(big.Int).Mul(big.NewInt(vSize), satoshiPerKVByte)
	fee.Add(fee, big.NewInt(999))
	fee.Div(fee, big.NewInt(1000))

	return fee, nil
}

// revealSkeleton returns reveal transaction without witness.
func (b *TxBuilder) revealSkeleton(d *runes.Directive, outpoint wire.OutPoint, destination string) (*wire.MsgTx, error) {
	if err := d.Runestone().Verify(revealOutputs); err != nil {
		return nil, err
	}

	runestoneScript, err := runes.EncodeDirective(d)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(txVersion)

	in := wire.NewTxIn(&outpoint, nil, nil)
	in.Sequence = revealSequence
	tx.AddTxIn(in)

	// runestone output (#0).
	tx.AddTxOut(wire.NewTxOut(0, runestoneScript))

	// etched rune output (#1).
	if err = b.addOutput(tx, b.postage, destination); err != nil {
		return nil, err
	}

	return tx, nil
}

// addOutput adds output paying amount to the address of builder network.
func (b *TxBuilder) addOutput(tx *wire.MsgTx, amount *big.Int, address string) error {
	pkScript, err := utils.PayToAddressScript(address, b.networkParams)
	if err != nil {
		return err
	}

	tx.AddTxOut(wire.NewTxOut(amount.Int64(), pkScript))

	return nil
}

func ptr[T any](v T) *T {
	return &v
}

// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etching

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
	"github.com/BoostyLabs/etcher/bitcoin/signer"
	"github.com/BoostyLabs/etcher/bitcoin/txbuilder"
	"github.com/BoostyLabs/etcher/bitcoin/utils"
)

// DefaultPollInterval defines how often commit confirmations are queried.
const DefaultPollInterval = 30 * time.Second

// Config defines configuration of the etching workflow.
type Config struct {
	Network      *chaincfg.Params
	PollInterval time.Duration
	Postage      *big.Int // in satoshi, txbuilder.DefaultPostage if nil.
}

// EtchParams describes etching request.
type EtchParams struct {
	Rune         runes.SpacedRune
	Divisibility byte
	Premine      *big.Int
	Symbol       rune
	Terms        *runes.Terms
	Turbo        bool
	Supply       *big.Int // issuance edict amount in rune units, nil for no edict.
	FeeRate      *big.Int // in satoshi per kilo virtual byte.
	Destination  string   // wallet change address if empty.
}

// Result describes completed etching.
type Result struct {
	Rune       runes.SpacedRune
	CommitTxID chainhash.Hash
	RevealTxID chainhash.Hash
}

// Workflow sequences the commit and the reveal transactions of the etching,
// persisting progress so that the etching can be resumed.
type Workflow struct {
	log       *logrus.Entry
	config    Config
	ledger    Ledger
	store     Store
	validator *Validator
	builder   *txbuilder.TxBuilder
	signer    *signer.Signer
	now       func() time.Time
}

// NewWorkflow is a constructor for Workflow.
func NewWorkflow(log *logrus.Entry, config Config, ledger Ledger, index NameIndex, store Store) *Workflow {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}

	return &Workflow{
		log:       log,
		config:    config,
		ledger:    ledger,
		store:     store,
		validator: NewValidator(store, index, NetworkMinimum(config.Network)),
		builder:   txbuilder.NewTxBuilder(config.Network, config.Postage),
		signer:    signer.NewSigner(),
		now:       time.Now,
	}
}

// CheckName validates the rune name and the destination without touching the network state.
// Returns the reveal height.
func (w *Workflow) CheckName(ctx context.Context, rune_ runes.SpacedRune, destination string) (uint64, error) {
	if _, err := utils.DecodeAddressForNet(destination, w.config.Network); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDestination, err)
	}

	height, err := w.ledger.BlockCount(ctx)
	if err != nil {
		return 0, rpcError("block count", err)
	}

	return w.validator.Validate(ctx, rune_.Rune, height)
}

// Etch validates and encodes the etching, broadcasts the commit transaction,
// waits for its confirmations and broadcasts the reveal transaction.
func (w *Workflow) Etch(ctx context.Context, params EtchParams) (*Result, error) {
	directive, err := w.directive(params)
	if err != nil {
		return nil, err
	}

	name := params.Rune.Rune.String()
	release, err := w.store.Claim(name)
	if err != nil {
		return nil, err
	}
	defer release()

	height, err := w.ledger.BlockCount(ctx)
	if err != nil {
		return nil, rpcError("block count", err)
	}

	revealHeight, err := w.validator.Validate(ctx, params.Rune.Rune, height)
	if err != nil {
		return nil, err
	}

	destination := params.Destination
	if destination == "" {
		address, err := w.ledger.ChangeAddress(ctx)
		if err != nil {
			return nil, rpcError("change address", err)
		}

		destination = address.EncodeAddress()
	}

	log := w.log.WithFields(logrus.Fields{"rune": params.Rune.String(), "reveal_height": revealHeight})

	rec, commitTx, err := w.prepare(ctx, directive, params, destination)
	if err != nil {
		return nil, err
	}

	// record is written before the broadcast, state validated means the commit may be unknown to the node.
	if err = w.store.Put(rec); err != nil {
		return nil, err
	}

	log = log.WithField("commit", rec.CommitTxID.String())
	if _, err = w.ledger.SendRawTransaction(ctx, commitTx); err != nil {
		err = rpcError("send commit transaction", err)
		w.markFailed(log, rec, err)

		return nil, err
	}

	rec, err = w.advance(rec, StateCommitBroadcast, func(next *PendingEtching) { next.CommitHeight = height })
	if err != nil {
		return nil, err
	}

	log.Info("commit transaction broadcast")

	return w.reveal(ctx, log, rec)
}

// Resume continues pending etching of the rune from the persisted state.
func (w *Workflow) Resume(ctx context.Context, rune_ *runes.Rune) (*Result, error) {
	name := rune_.String()
	release, err := w.store.Claim(name)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := w.store.Get(name)
	if err != nil {
		return nil, err
	}

	log := w.log.WithFields(logrus.Fields{
		"rune":   rec.Rune.String(),
		"commit": rec.CommitTxID.String(),
		"state":  rec.State,
	})
	log.Info("resuming etching")

	switch rec.State {
	case StateRevealBroadcast:
		return w.finish(log, rec)
	case StateFailed:
		_, found, err := w.ledger.Confirmations(ctx, rec.RevealTxID)
		if err != nil {
			return nil, rpcError("reveal confirmations", err)
		}
		if found {
			rec, err = w.advance(rec, StateRevealBroadcast, nil)
			if err != nil {
				return nil, err
			}

			return w.finish(log, rec)
		}

		fallthrough
	case StateValidated:
		// commit is never rebroadcast, it is either known to the node or the etching is abandoned.
		confirmations, found, err := w.ledger.Confirmations(ctx, rec.CommitTxID)
		if err != nil {
			return nil, rpcError("commit confirmations", err)
		}
		if !found {
			return nil, ErrCommitNotBroadcast
		}

		rec, err = w.advance(rec, StateCommitBroadcast, func(next *PendingEtching) {
			if next.CommitHeight == 0 {
				next.CommitHeight = w.commitHeight(ctx, confirmations)
			}
		})
		if err != nil {
			return nil, err
		}
	}

	return w.reveal(ctx, log, rec)
}

// Abandon removes pending etching of the rune. Etching with the broadcast commit
// transaction is removed only if forced, its signed reveal is logged.
func (w *Workflow) Abandon(ctx context.Context, rune_ *runes.Rune, force bool) error {
	name := rune_.String()
	release, err := w.store.Claim(name)
	if err != nil {
		return err
	}
	defer release()

	rec, err := w.store.Get(name)
	if err != nil {
		return err
	}

	log := w.log.WithFields(logrus.Fields{"rune": rec.Rune.String(), "state": rec.State})
	var commitFound bool
	if rec.CommitBroadcast() {
		_, commitFound, err = w.ledger.Confirmations(ctx, rec.CommitTxID)
		if err != nil {
			return rpcError("commit confirmations", err)
		}
		if commitFound && !force {
			return ErrCommitBroadcast
		}

		if commitFound {
			raw, err := serializeTx(rec.RevealTx)
			if err != nil {
				return err
			}

			log.WithField("reveal", raw).Warn("abandoning etching with broadcast commit transaction")
		}
	}

	// inputs of the commit unknown to the node may be locked by other etchings.
	if !commitFound && len(rec.Reserved) > 0 {
		if err = w.ledger.UnlockUnspent(ctx, rec.Reserved); err != nil {
			return rpcError("unlock reserved outpoints", err)
		}

		log.WithField("outpoints", len(rec.Reserved)).Debug("reserved outpoints unlocked")
	}

	if err = w.store.Clear(name); err != nil {
		return err
	}

	log.Info("etching abandoned")

	return nil
}

// Pending returns all pending etchings.
func (w *Workflow) Pending(ctx context.Context) ([]*PendingEtching, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return w.store.List()
}

// directive validates etching parameters and encodes them, before any network call.
func (w *Workflow) directive(params EtchParams) (*runes.Directive, error) {
	name := params.Rune.Rune.String()
	if params.Divisibility > runes.MaxDivisibility {
		return nil, &ValidationError{Kind: DivisibilityOutOfRange, Rune: name, Divisibility: params.Divisibility}
	}
	if params.FeeRate == nil || params.FeeRate.Sign() <= 0 {
		return nil, errors.New("fee rate must be positive")
	}
	if params.Destination != "" {
		if _, err := utils.DecodeAddressForNet(params.Destination, w.config.Network); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDestination, err)
		}
	}

	premine := params.Premine
	if premine == nil {
		premine = big.NewInt(0)
	}

	directive := &runes.Directive{
		Rune:         params.Rune.Rune,
		Spacers:      params.Rune.Spacers,
		Divisibility: params.Divisibility,
		Premine:      premine,
		Symbol:       params.Symbol,
		Terms:        params.Terms,
		Turbo:        params.Turbo,
		Supply:       params.Supply,
		Output:       txbuilder.IssuanceOutput,
	}

	if _, err := runes.EncodeDirective(directive); err != nil {
		return nil, err
	}

	return directive, nil
}

// prepare builds, funds and signs the commit transaction and signs the reveal transaction
// with the one-time key. Returns the record to persist and the commit transaction to broadcast.
func (w *Workflow) prepare(ctx context.Context, directive *runes.Directive, params EtchParams, destination string) (*PendingEtching, *wire.MsgTx, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, err
	}
	defer key.Zero()

	script, err := w.builder.NewRevealScript(directive.Rune, key.PubKey())
	if err != nil {
		return nil, nil, err
	}

	revealFee, err := w.builder.EstimateRevealFee(directive, script, destination, params.FeeRate)
	if err != nil {
		return nil, nil, err
	}

	reserved, err := w.reservations()
	if err != nil {
		return nil, nil, err
	}

	if err = w.builder.ExcludeReservations(ctx, w.ledger, reserved); err != nil {
		return nil, nil, err
	}

	commitTx, err := w.builder.BuildCommit(txbuilder.CommitParams{Script: script, RevealFee: revealFee})
	if err != nil {
		return nil, nil, err
	}

	funded, err := w.ledger.FundRawTransaction(ctx, commitTx, params.FeeRate)
	if err != nil {
		return nil, nil, ledgerError("fund commit transaction", err)
	}

	signedCommit, err := w.ledger.SignRawTransaction(ctx, funded.Tx)
	if err != nil {
		return nil, nil, rpcError("sign commit transaction", err)
	}

	commitOutpoint, commitValue, err := txbuilder.FindCommitOutput(signedCommit, script)
	if err != nil {
		return nil, nil, err
	}

	reveal, err := w.builder.BuildReveal(txbuilder.RevealParams{
		Directive:        directive,
		Commitment:       directive.Rune.Commitment(),
		Script:           script,
		FundingOutpoint:  commitOutpoint,
		FundingValue:     commitValue,
		SatoshiPerKVByte: params.FeeRate,
		Destination:      destination,
	})
	if err != nil {
		return nil, nil, err
	}

	signedReveal, err := w.signer.SignTaproot(signer.SignTaprootParams{
		Packet:     reveal.Packet,
		Inputs:     []int{0},
		PrivateKey: key,
	})
	if err != nil {
		return nil, nil, err
	}

	now := w.now()
	rec := &PendingEtching{
		RequestID:      uuid.New(),
		Rune:           params.Rune,
		Directive:      directive,
		Commitment:     script.Commitment,
		State:          StateValidated,
		CommitTxID:     signedCommit.TxHash(),
		CommitOutpoint: commitOutpoint,
		Reserved:       funded.UsedOutpoints(),
		RevealTx:       signedReveal,
		RevealTxID:     signedReveal.TxHash(),
		Destination:    destination,
		FeeRate:        new(big.Int).Set(params.FeeRate),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return rec, signedCommit, nil
}

// reservations returns wallet outpoints spent by the signed but not broadcast commits of other etchings.
func (w *Workflow) reservations() ([]wire.OutPoint, error) {
	pending, err := w.store.List()
	if err != nil {
		return nil, err
	}

	var reserved []wire.OutPoint
	for _, rec := range pending {
		if !rec.CommitBroadcast() {
			reserved = append(reserved, rec.Reserved...)
		}
	}

	return reserved, nil
}

// reveal waits for the commit confirmations and broadcasts the stored reveal transaction.
func (w *Workflow) reveal(ctx context.Context, log *logrus.Entry, rec *PendingEtching) (_ *Result, err error) {
	if rec.State == StateCommitBroadcast {
		if err = w.waitForConfirmations(ctx, log, rec); err != nil {
			return nil, err
		}

		if rec, err = w.advance(rec, StateRevealEligible, nil); err != nil {
			return nil, err
		}
	}

	if rec.State != StateRevealEligible {
		return nil, fmt.Errorf("%w: unexpected state %s", ErrStateConflict, rec.State)
	}

	// hard gate, the count is queried again right before the reveal.
	confirmations, found, err := w.ledger.Confirmations(ctx, rec.CommitTxID)
	if err != nil {
		return nil, rpcError("commit confirmations", err)
	}
	if !found || confirmations < runes.ConfirmationsRequired() {
		return nil, &InsufficientConfirmationsError{TxID: rec.CommitTxID, Have: confirmations, Need: runes.ConfirmationsRequired()}
	}

	if _, err = w.ledger.SendRawTransaction(ctx, rec.RevealTx); err != nil {
		err = rpcError("send reveal transaction", err)
		w.markFailed(log, rec, err)

		return nil, err
	}

	if rec, err = w.advance(rec, StateRevealBroadcast, nil); err != nil {
		return nil, err
	}

	return w.finish(log, rec)
}

// waitForConfirmations polls commit confirmations until required number is reached.
// Returns context error if cancelled, the record stays in commit_broadcast state.
func (w *Workflow) waitForConfirmations(ctx context.Context, log *logrus.Entry, rec *PendingEtching) error {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	var last uint64
	for {
		confirmations, found, err := w.ledger.Confirmations(ctx, rec.CommitTxID)
		if err != nil {
			return rpcError("commit confirmations", err)
		}
		if !found {
			w.markFailed(log, rec, ErrCommitNotBroadcast)
			return ErrCommitNotBroadcast
		}
		if confirmations >= runes.ConfirmationsRequired() {
			return nil
		}

		if confirmations != last || confirmations == 0 {
			log.WithField("confirmations", confirmations).Infof("waiting for %d commit confirmations", runes.ConfirmationsRequired())
			last = confirmations
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// advance moves the record to the next state through compare-and-swap.
func (w *Workflow) advance(rec *PendingEtching, next State, update func(*PendingEtching)) (*PendingEtching, error) {
	if !rec.State.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrStateConflict, rec.State, next)
	}

	updated := rec.transition(next, w.now())
	if update != nil {
		update(updated)
	}

	if err := w.store.CompareAndSwap(rec.Name(), rec.State, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// markFailed moves the record to failed state, keeping it for resume.
func (w *Workflow) markFailed(log *logrus.Entry, rec *PendingEtching, cause error) {
	log.WithError(cause).WithField("state", rec.State).Error("etching failed")

	if err := w.store.CompareAndSwap(rec.Name(), rec.State, rec.fail(cause, w.now())); err != nil {
		log.WithError(err).Error("could not mark etching failed")
	}
}

// finish clears the record of the broadcast reveal.
func (w *Workflow) finish(log *logrus.Entry, rec *PendingEtching) (*Result, error) {
	if err := w.store.Clear(rec.Name()); err != nil {
		return nil, err
	}

	log.WithField("reveal", rec.RevealTxID.String()).Info("reveal transaction broadcast")

	return &Result{
		Rune:       rec.Rune,
		CommitTxID: rec.CommitTxID,
		RevealTxID: rec.RevealTxID,
	}, nil
}

// commitHeight returns block count when the transaction with confirmations was mined.
func (w *Workflow) commitHeight(ctx context.Context, confirmations uint64) uint64 {
	height, err := w.ledger.BlockCount(ctx)
	if err != nil || confirmations == 0 || confirmations > height+1 {
		return height
	}

	return height - confirmations + 1
}

// ledgerError passes funding errors unchanged and wraps the rest into RPCError.
func ledgerError(op string, err error) error {
	var fundingErr *txbuilder.FundingError
	if errors.As(err, &fundingErr) {
		return err
	}

	return rpcError(op, err)
}

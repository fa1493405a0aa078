// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package rpc

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/etcher/bitcoin"
	"github.com/BoostyLabs/etcher/bitcoin/etching"
	"github.com/BoostyLabs/etcher/bitcoin/txbuilder"
)

// ErrIncompleteSignature defines that the wallet could not sign all inputs of the transaction.
var ErrIncompleteSignature = errors.New("wallet could not sign all inputs")

// insufficientFundsMessage defines message of the wallet funding error.
const insufficientFundsMessage = "Insufficient funds"

// ensures that Client implements etching.Ledger.
var _ etching.Ledger = (*Client)(nil)

// Config defines configuration of the bitcoind connection.
type Config struct {
	Host       string
	User       string
	Password   string
	DisableTLS bool
}

// Client is a bitcoind wallet and chain adapter over JSON-RPC.
type Client struct {
	client *rpcclient.Client
}

// NewClient is a constructor for Client.
func NewClient(params *chaincfg.Params, config Config) (*Client, error) {
	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         config.Host,
		User:         config.User,
		Pass:         config.Password,
		Params:       params.Name,
		DisableTLS:   config.DisableTLS,
		HTTPPostMode: true,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &Client{client: client}, nil
}

// Close shuts the connection down.
func (c *Client) Close() {
	c.client.Shutdown()
	c.client.WaitForShutdown()
}

// BlockCount returns height of the best block.
func (c *Client) BlockCount(ctx context.Context) (uint64, error) {
	count, err := await(ctx, c.client.GetBlockCountAsync().Receive)
	if err != nil {
		return 0, err
	}

	return uint64(count), nil
}

// LockUnspent locks outpoints in the wallet, skipping the ones locked already.
func (c *Client) LockUnspent(ctx context.Context, outpoints []wire.OutPoint) error {
	locked, err := await(ctx, c.client.ListLockUnspentAsync().Receive)
	if err != nil {
		return err
	}

	skip := make(map[wire.OutPoint]struct{}, len(locked))
	for _, outpoint := range locked {
		skip[*outpoint] = struct{}{}
	}

	var lock []*wire.OutPoint
	for i := range outpoints {
		if _, ok := skip[outpoints[i]]; ok {
			continue
		}

		skip[outpoints[i]] = struct{}{}
		lock = append(lock, &outpoints[i])
	}
	if len(lock) == 0 {
		return nil
	}

	future := c.client.LockUnspentAsync(false, lock)
	_, err = await(ctx, func() (struct{}, error) { return struct{}{}, future.Receive() })

	return err
}

// UnlockUnspent unlocks outpoints in the wallet, skipping the ones not locked.
func (c *Client) UnlockUnspent(ctx context.Context, outpoints []wire.OutPoint) error {
	locked, err := await(ctx, c.client.ListLockUnspentAsync().Receive)
	if err != nil {
		return err
	}

	keep := make(map[wire.OutPoint]struct{}, len(locked))
	for _, outpoint := range locked {
		keep[*outpoint] = struct{}{}
	}

	var unlock []*wire.OutPoint
	for i := range outpoints {
		if _, ok := keep[outpoints[i]]; !ok {
			continue
		}

		delete(keep, outpoints[i])
		unlock = append(unlock, &outpoints[i])
	}
	if len(unlock) == 0 {
		return nil
	}

	future := c.client.LockUnspentAsync(true, unlock)
	_, err = await(ctx, func() (struct{}, error) { return struct{}{}, future.Receive() })

	return err
}

// FundRawTransaction adds wallet inputs and change to the transaction.
// Returns txbuilder.FundingError if the wallet balance is too low.
func (c *Client) FundRawTransaction(ctx context.Context, tx *wire.MsgTx, satoshiPerKVByte *big.Int) (*bitcoin.FundedTx, error) {
	// bitcoind expects fee rate in BTC per kilo virtual byte.
	feeRate := btcutil.Amount(satoshiPerKVByte.Int64()).ToBTC()
	// transaction without inputs is serialized without witness marker.
	isWitness := false

	future := c.client.FundRawTransactionAsync(tx, btcjson.FundRawTransactionOpts{FeeRate: &feeRate}, &isWitness)
	result, err := await(ctx, future.Receive)
	if err != nil {
		if isInsufficientFunds(err) {
			return nil, txbuilder.NewInsufficientFundsError(nil, nil, err)
		}

		return nil, err
	}

	return &bitcoin.FundedTx{
		Tx:             result.Transaction,
		Fee:            big.NewInt(int64(result.Fee)),
		ChangePosition: result.ChangePosition,
	}, nil
}

// SignRawTransaction signs wallet inputs of the transaction.
func (c *Client) SignRawTransaction(ctx context.Context, tx *wire.MsgTx) (*wire.MsgTx, error) {
	type signed struct {
		tx       *wire.MsgTx
		complete bool
	}

	future := c.client.SignRawTransactionWithWalletAsync(tx)
	result, err := await(ctx, func() (signed, error) {
		tx, complete, err := future.Receive()
		return signed{tx: tx, complete: complete}, err
	})
	if err != nil {
		return nil, err
	}
	if !result.complete {
		return nil, ErrIncompleteSignature
	}

	return result.tx, nil
}

// SendRawTransaction broadcasts signed transaction.
func (c *Client) SendRawTransaction(ctx context.Context, tx *wire.MsgTx) (*chainhash.Hash, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return await(ctx, c.client.SendRawTransactionAsync(tx, false).Receive)
}

// Confirmations returns number of transaction confirmations. Wallet transactions
// are looked up first, then mempool and blockchain ones.
func (c *Client) Confirmations(ctx context.Context, txID chainhash.Hash) (uint64, bool, error) {
	walletTx, err := await(ctx, c.client.GetTransactionAsync(&txID).Receive)
	switch {
	case err == nil:
		// negative confirmations define conflicted transaction.
		if walletTx.Confirmations < 0 {
			return 0, false, nil
		}

		return uint64(walletTx.Confirmations), true, nil
	case !isNotFound(err):
		return 0, false, err
	}

	rawTx, err := await(ctx, c.client.GetRawTransactionVerboseAsync(&txID).Receive)
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return rawTx.Confirmations, true, nil
}

// ChangeAddress returns new wallet address.
func (c *Client) ChangeAddress(ctx context.Context) (btcutil.Address, error) {
	return await(ctx, c.client.GetNewAddressAsync("").Receive)
}

// await waits for the response of the sent request or for the context cancellation.
func await[T any](ctx context.Context, receive func() (T, error)) (T, error) {
	type response struct {
		value T
		err   error
	}

	done := make(chan response, 1)
	go func() {
		value, err := receive()
		done <- response{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case resp := <-done:
		return resp.value, resp.err
	}
}

// isNotFound returns true if the node does not know the transaction.
func isNotFound(err error) bool {
	var rpcErr *btcjson.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}

	return rpcErr.Code == btcjson.ErrRPCNoTxInfo || rpcErr.Code == btcjson.ErrRPCInvalidAddressOrKey
}

// isInsufficientFunds returns true if the wallet balance does not cover the transaction.
func isInsufficientFunds(err error) bool {
	var rpcErr *btcjson.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}

	return rpcErr.Code == btcjson.ErrRPCWalletInsufficientFunds || strings.Contains(rpcErr.Message, insufficientFundsMessage)
}

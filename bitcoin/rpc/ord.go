// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/BoostyLabs/etcher/bitcoin"
	"github.com/BoostyLabs/etcher/bitcoin/etching"
	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
)

// ErrUnexpectedStatus defines that ord server responded with unexpected status code.
var ErrUnexpectedStatus = errors.New("unexpected ord server response status")

// ensures that OrdClient implements etching.NameIndex.
var _ etching.NameIndex = (*OrdClient)(nil)

// OrdClient is a client of the ord server JSON API.
type OrdClient struct {
	baseURL string
	http    *http.Client
}

// NewOrdClient is a constructor for OrdClient, http.DefaultClient is used if client is nil.
func NewOrdClient(baseURL string, client *http.Client) *OrdClient {
	if client == nil {
		client = http.DefaultClient
	}

	return &OrdClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    client,
	}
}

// status describes response of the status endpoint.
type status struct {
	RuneIndex bool `json:"rune_index"`
}

// runeResponse describes response of the rune endpoint.
type runeResponse struct {
	Entry struct {
		Divisibility byte           `json:"divisibility"`
		Etching      string         `json:"etching"`
		Number       uint64         `json:"number"`
		Premine      *big.Int       `json:"premine"`
		SpacedRune   string         `json:"spaced_rune"`
		Symbol       *string        `json:"symbol"`
		Terms        *termsResponse `json:"terms"`
		Turbo        bool           `json:"turbo"`
	} `json:"entry"`
	ID string `json:"id"`
}

// termsResponse describes open mint terms of the rune entry.
type termsResponse struct {
	Amount *big.Int   `json:"amount"`
	Cap    *big.Int   `json:"cap"`
	Height [2]*uint64 `json:"height"`
	Offset [2]*uint64 `json:"offset"`
}

// HasRuneIndex returns true if the ord server indexes runes.
func (c *OrdClient) HasRuneIndex(ctx context.Context) (bool, error) {
	var resp status
	if _, err := c.get(ctx, "/status", &resp); err != nil {
		return false, err
	}

	return resp.RuneIndex, nil
}

// Rune returns issuance record of the etched rune.
func (c *OrdClient) Rune(ctx context.Context, rune_ *runes.Rune) (*bitcoin.RuneEntry, bool, error) {
	var resp runeResponse
	found, err := c.get(ctx, "/rune/"+url.PathEscape(rune_.String()), &resp)
	if err != nil || !found {
		return nil, false, err
	}

	id, err := runes.NewRuneIDFromString(resp.ID)
	if err != nil {
		return nil, false, fmt.Errorf("rune id %q: %w", resp.ID, err)
	}

	spaced, err := runes.ParseSpacedRune(resp.Entry.SpacedRune)
	if err != nil {
		return nil, false, fmt.Errorf("spaced rune %q: %w", resp.Entry.SpacedRune, err)
	}

	entry := &bitcoin.RuneEntry{
		ID:           id,
		SpacedRune:   spaced,
		Number:       resp.Entry.Number,
		Divisibility: resp.Entry.Divisibility,
		Premine:      resp.Entry.Premine,
		Turbo:        resp.Entry.Turbo,
		EtchingTxID:  resp.Entry.Etching,
	}
	if resp.Entry.Symbol != nil {
		entry.Symbol, _ = utf8.DecodeRuneInString(*resp.Entry.Symbol)
	}
	if terms := resp.Entry.Terms; terms != nil {
		entry.Terms = &runes.Terms{
			Amount:      terms.Amount,
			Cap:         terms.Cap,
			HeightStart: terms.Height[0],
			HeightEnd:   terms.Height[1],
			OffsetStart: terms.Offset[0],
			OffsetEnd:   terms.Offset[1],
		}
	}

	return entry, true, nil
}

// get decodes JSON response of the endpoint into v, found is false on 404 status.
func (c *OrdClient) get(ctx context.Context, path string, v interface{}) (found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() {
		err = errors.Join(err, resp.Body.Close())
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: GET %s: %s", ErrUnexpectedStatus, path, resp.Status)
	}

	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, err
	}

	return true, nil
}

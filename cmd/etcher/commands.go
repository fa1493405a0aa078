// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/BoostyLabs/etcher/bitcoin/etching"
	"github.com/BoostyLabs/etcher/bitcoin/ord/runes"
	"github.com/BoostyLabs/etcher/internal/config"
)

// feeRateDivisibility converts fee rate in sat/vB to sat/kvB.
const feeRateDivisibility = 3

// checkNameCommand checks that the rune name can be etched.
type checkNameCommand struct {
	app *app

	Rune        string `long:"rune" description:"Name <RUNE>. May contain '.' or '•' as spacers." required:"yes"`
	Destination string `long:"destination" description:"Address receiving the etched rune." required:"yes"`
}

// Execute implements flags.Commander.
func (c *checkNameCommand) Execute([]string) error {
	spaced, err := runes.ParseSpacedRune(c.Rune)
	if err != nil {
		return err
	}

	return c.app.run(func(ctx context.Context, workflow *etching.Workflow, _ *config.Config) error {
		revealHeight, err := workflow.CheckName(ctx, spaced, c.Destination)
		if err != nil {
			return err
		}

		return printJSON(struct {
			Rune         string `json:"rune"`
			RevealHeight uint64 `json:"reveal_height"`
			Status       string `json:"status"`
		}{spaced.String(), revealHeight, "Success"})
	})
}

// etchCommand etches the rune.
type etchCommand struct {
	app *app

	Divisibility uint8  `long:"divisibility" description:"Set divisibility to <DIVISIBILITY>." required:"yes"`
	FeeRate      string `long:"fee-rate" description:"Etch with fee rate of <FEE_RATE> sats/vB." required:"yes"`
	Rune         string `long:"rune" description:"Etch rune <RUNE>. May contain '.' or '•' as spacers." required:"yes"`
	Supply       string `long:"supply" description:"Issue <SUPPLY> to the destination, decimal scaled by divisibility." required:"yes"`
	Symbol       string `long:"symbol" description:"Set currency symbol to <SYMBOL>." default:"¤"`
	Premine      string `long:"premine" description:"Premine <PREMINE> base units." default:"0"`
	Amount       string `long:"amount" description:"Mint <AMOUNT> base units per mint."`
	Cap          string `long:"cap" description:"Allow at most <CAP> mints."`
	HeightStart  string `long:"height-start" description:"Open mints at block <HEIGHT_START>."`
	HeightEnd    string `long:"height-end" description:"Close mints at block <HEIGHT_END>."`
	OffsetStart  string `long:"offset-start" description:"Open mints <OFFSET_START> blocks after the etching."`
	OffsetEnd    string `long:"offset-end" description:"Close mints <OFFSET_END> blocks after the etching."`
	Turbo        bool   `long:"turbo" description:"Opt in to future protocol changes."`
	Destination  string `long:"destination" description:"Address receiving the etched rune, new wallet address if empty."`
}

// Execute implements flags.Commander.
func (c *etchCommand) Execute([]string) error {
	params, err := c.params()
	if err != nil {
		return err
	}

	return c.app.run(func(ctx context.Context, workflow *etching.Workflow, _ *config.Config) error {
		result, err := workflow.Etch(ctx, params)
		if err != nil {
			return err
		}

		return printResult(result)
	})
}

// params converts command line options to etching parameters.
func (c *etchCommand) params() (etching.EtchParams, error) {
	spaced, err := runes.ParseSpacedRune(c.Rune)
	if err != nil {
		return etching.EtchParams{}, err
	}

	if !utf8.ValidString(c.Symbol) || utf8.RuneCountInString(c.Symbol) != 1 {
		return etching.EtchParams{}, fmt.Errorf("symbol must be a single character: %q", c.Symbol)
	}
	symbol, _ := utf8.DecodeRuneInString(c.Symbol)

	feeRate, err := runes.ParseDecimal(c.FeeRate, feeRateDivisibility)
	if err != nil {
		return etching.EtchParams{}, fmt.Errorf("fee rate: %w", err)
	}

	supply, err := runes.ParseDecimal(c.Supply, c.Divisibility)
	if err != nil {
		return etching.EtchParams{}, fmt.Errorf("supply: %w", err)
	}

	premine, err := parseAmount("premine", c.Premine)
	if err != nil {
		return etching.EtchParams{}, err
	}

	terms, err := c.terms()
	if err != nil {
		return etching.EtchParams{}, err
	}

	return etching.EtchParams{
		Rune:         spaced,
		Divisibility: c.Divisibility,
		Premine:      premine,
		Symbol:       symbol,
		Terms:        terms,
		Turbo:        c.Turbo,
		Supply:       supply,
		FeeRate:      feeRate,
		Destination:  c.Destination,
	}, nil
}

// terms returns open mint terms, nil if no term is set.
func (c *etchCommand) terms() (*runes.Terms, error) {
	if c.Amount == "" && c.Cap == "" && c.HeightStart == "" && c.HeightEnd == "" && c.OffsetStart == "" && c.OffsetEnd == "" {
		return nil, nil
	}

	var (
		terms runes.Terms
		err   error
	)
	if terms.Amount, err = parseAmount("amount", c.Amount); err != nil {
		return nil, err
	}
	if terms.Cap, err = parseAmount("cap", c.Cap); err != nil {
		return nil, err
	}

	heights := []struct {
		name  string
		value string
		dst   **uint64
	}{
		{"height start", c.HeightStart, &terms.HeightStart},
		{"height end", c.HeightEnd, &terms.HeightEnd},
		{"offset start", c.OffsetStart, &terms.OffsetStart},
		{"offset end", c.OffsetEnd, &terms.OffsetEnd},
	}
	for _, height := range heights {
		if height.value == "" {
			continue
		}

		value, err := strconv.ParseUint(height.value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", height.name, err)
		}

		*height.dst = &value
	}

	return &terms, nil
}

// resumeCommand resumes pending etching.
type resumeCommand struct {
	app *app

	Rune string `long:"rune" description:"Resume etching of rune <RUNE>." required:"yes"`
}

// Execute implements flags.Commander.
func (c *resumeCommand) Execute([]string) error {
	spaced, err := runes.ParseSpacedRune(c.Rune)
	if err != nil {
		return err
	}

	return c.app.run(func(ctx context.Context, workflow *etching.Workflow, _ *config.Config) error {
		result, err := workflow.Resume(ctx, spaced.Rune)
		if err != nil {
			return err
		}

		return printResult(result)
	})
}

// abandonCommand removes pending etching.
type abandonCommand struct {
	app *app

	Rune  string `long:"rune" description:"Abandon etching of rune <RUNE>." required:"yes"`
	Force bool   `long:"force" description:"Abandon even if the commit transaction is broadcast."`
}

// Execute implements flags.Commander.
func (c *abandonCommand) Execute([]string) error {
	spaced, err := runes.ParseSpacedRune(c.Rune)
	if err != nil {
		return err
	}

	return c.app.run(func(ctx context.Context, workflow *etching.Workflow, _ *config.Config) error {
		err := workflow.Abandon(ctx, spaced.Rune, c.Force)
		if errors.Is(err, etching.ErrCommitBroadcast) {
			return fmt.Errorf("%w, use --force to abandon it", err)
		}

		return err
	})
}

// pendingCommand lists pending etchings.
type pendingCommand struct {
	app *app
}

// pendingOutput describes pending etching.
type pendingOutput struct {
	Rune      string    `json:"rune"`
	State     string    `json:"state"`
	Commit    string    `json:"commit"`
	Reveal    string    `json:"reveal"`
	Failure   string    `json:"failure,omitempty"`
	FailedAt  string    `json:"failed_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Execute implements flags.Commander.
func (c *pendingCommand) Execute([]string) error {
	return c.app.run(func(ctx context.Context, workflow *etching.Workflow, _ *config.Config) error {
		records, err := workflow.Pending(ctx)
		if err != nil {
			return err
		}

		outputs := make([]pendingOutput, 0, len(records))
		for _, rec := range records {
			outputs = append(outputs, newPendingOutput(rec))
		}

		return printJSON(outputs)
	})
}

// newPendingOutput converts pending etching to its output.
func newPendingOutput(rec *etching.PendingEtching) pendingOutput {
	return pendingOutput{
		Rune:      rec.Rune.String(),
		State:     rec.State.String(),
		Commit:    rec.CommitTxID.String(),
		Reveal:    rec.RevealTxID.String(),
		Failure:   rec.Failure,
		FailedAt:  string(rec.FailedAt),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// printResult prints completed etching.
func printResult(result *etching.Result) error {
	return printJSON(struct {
		Rune        string `json:"rune"`
		Transaction string `json:"transaction"`
		Commit      string `json:"commit"`
	}{result.Rune.String(), result.RevealTxID.String(), result.CommitTxID.String()})
}

// parseAmount parses integer amount in base units, nil if empty.
func parseAmount(name, s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}

	amount, ok := new(big.Int).SetString(s, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("%s must be non-negative integer: %q", name, s)
	}

	return amount, nil
}

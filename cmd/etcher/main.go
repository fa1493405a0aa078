// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/BoostyLabs/etcher/bitcoin/etching"
	"github.com/BoostyLabs/etcher/bitcoin/etching/pendingdb"
	"github.com/BoostyLabs/etcher/bitcoin/rpc"
	"github.com/BoostyLabs/etcher/internal/config"
	"github.com/BoostyLabs/etcher/internal/logger"
)

// ordTimeout defines timeout of the ord server requests.
const ordTimeout = 30 * time.Second

// options defines global command line options.
type options struct {
	Config string `short:"c" long:"config" description:"Path to the YAML configuration file." default:"etcher.yaml"`
}

// app wires configuration, adapters and the workflow for a command run.
type app struct {
	opts *options
}

func main() {
	opts := &options{}
	app := &app{opts: opts}

	parser := flags.NewParser(opts, flags.Default)
	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{"check-name", "Check rune name", "Checks that the rune name can be etched and the destination belongs to the network.", &checkNameCommand{app: app}},
		{"etch", "Etch rune", "Broadcasts the commit transaction, waits for its confirmations and broadcasts the reveal transaction.", &etchCommand{app: app}},
		{"resume", "Resume etching", "Continues pending etching of the rune from its persisted state.", &resumeCommand{app: app}},
		{"abandon", "Abandon etching", "Removes pending etching of the rune.", &abandonCommand{app: app}},
		{"pending", "List pending etchings", "Prints all pending etchings.", &pendingCommand{app: app}},
	}
	for _, command := range commands {
		if _, err := parser.AddCommand(command.name, command.short, command.long, command.data); err != nil {
			panic(err)
		}
	}

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}

		os.Exit(1)
	}
}

// run loads configuration, opens the adapters and calls fn with the workflow.
func (a *app) run(fn func(ctx context.Context, workflow *etching.Workflow, cfg *config.Config) error) (err error) {
	cfg, err := config.Load(a.opts.Config)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Path: cfg.Log.Path, Name: "etcher"}, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, log.Close()) }()

	client, err := rpc.NewClient(cfg.Params(), rpc.Config{
		Host:       cfg.RPC.Host,
		User:       cfg.RPC.User,
		Password:   cfg.RPC.Password,
		DisableTLS: cfg.RPC.DisableTLS,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	store, err := pendingdb.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, store.Close()) }()

	workflow := etching.NewWorkflow(
		log.Module("etching"),
		etching.Config{
			Network:      cfg.Params(),
			PollInterval: cfg.Etching.PollInterval,
			Postage:      cfg.PostageAmount(),
		},
		client,
		rpc.NewOrdClient(cfg.Ord.URL, &http.Client{Timeout: ordTimeout}),
		store,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = fn(ctx, workflow, cfg); err != nil {
		log.Module("etcher").WithError(err).Error("command failed")
	}

	return err
}

// printJSON writes v to the standard output as indented JSON.
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

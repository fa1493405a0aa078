// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package config

import (
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/BoostyLabs/etcher/bitcoin/etching"
	"github.com/BoostyLabs/etcher/bitcoin/txbuilder"
)

// ErrUnknownChain defines that chain name is not supported.
var ErrUnknownChain = errors.New("unknown chain")

// Config defines configuration of the etcher.
type Config struct {
	Chain   string  `yaml:"chain"`
	RPC     RPC     `yaml:"rpc"`
	Ord     Ord     `yaml:"ord"`
	DB      DB      `yaml:"db"`
	Log     Log     `yaml:"log"`
	Etching Etching `yaml:"etching"`
}

// RPC defines bitcoind connection.
type RPC struct {
	Host       string `yaml:"host"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	DisableTLS bool   `yaml:"disable_tls"`
}

// Ord defines ord server connection.
type Ord struct {
	URL string `yaml:"url"`
}

// DB defines pending etchings database.
type DB struct {
	Path string `yaml:"path"`
}

// Log defines logger settings.
type Log struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Etching defines etching workflow settings.
type Etching struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	Postage      int64         `yaml:"postage"` // in satoshi.
}

// Default returns configuration with defaults for the chain.
func Default(chain string) (*Config, error) {
	params, err := ChainParams(chain)
	if err != nil {
		return nil, err
	}

	return &Config{
		Chain: chain,
		RPC: RPC{
			Host:       "127.0.0.1:" + rpcPort(params),
			DisableTLS: true,
		},
		Ord: Ord{URL: "http://127.0.0.1:80"},
		DB:  DB{Path: filepath.Join("db", chain)},
		Log: Log{Level: logrus.InfoLevel.String(), Path: "log"},
		Etching: Etching{
			PollInterval: etching.DefaultPollInterval,
			Postage:      txbuilder.DefaultPostage.Int64(),
		},
	}, nil
}

// Load reads YAML configuration file, missing fields are set to defaults of the chain.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var header struct {
		Chain string `yaml:"chain"`
	}
	if err = yaml.Unmarshal(data, &header); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	if header.Chain == "" {
		header.Chain = chaincfg.MainNetParams.Name
	}

	config, err := Default(header.Chain)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	// fields present in the file override the defaults.
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	config.Chain = header.Chain
	config.DB.Path = filepath.FromSlash(config.DB.Path)
	config.Log.Path = filepath.FromSlash(config.Log.Path)

	if _, err = logrus.ParseLevel(config.Log.Level); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	if config.Etching.PollInterval <= 0 {
		return nil, errors.Errorf("config %s: poll interval must be positive", path)
	}
	if config.Etching.Postage <= 0 {
		return nil, errors.Errorf("config %s: postage must be positive", path)
	}

	return config, nil
}

// Params returns network parameters of the configured chain.
func (c *Config) Params() *chaincfg.Params {
	params, err := ChainParams(c.Chain)
	if err != nil {
		return &chaincfg.MainNetParams
	}

	return params
}

// PostageAmount returns postage of the reveal output.
func (c *Config) PostageAmount() *big.Int {
	return big.NewInt(c.Etching.Postage)
}

// ChainParams returns network parameters by chain name.
func ChainParams(chain string) (*chaincfg.Params, error) {
	switch chain {
	case chaincfg.MainNetParams.Name:
		return &chaincfg.MainNetParams, nil
	case chaincfg.TestNet3Params.Name:
		return &chaincfg.TestNet3Params, nil
	case chaincfg.RegressionNetParams.Name:
		return &chaincfg.RegressionNetParams, nil
	case chaincfg.SigNetParams.Name:
		return &chaincfg.SigNetParams, nil
	default:
		return nil, errors.Wrap(ErrUnknownChain, chain)
	}
}

// rpcPort returns default bitcoind RPC port of the network.
func rpcPort(params *chaincfg.Params) string {
	switch params.Name {
	case chaincfg.TestNet3Params.Name:
		return "18332"
	case chaincfg.RegressionNetParams.Name:
		return "18443"
	case chaincfg.SigNetParams.Name:
		return "38332"
	default:
		return "8332"
	}
}

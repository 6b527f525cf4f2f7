// Command headerchain validates block headers against the difficulty rules of
// a network and keeps the resulting chain in a block store.
//
// Configuration is read from settings.conf through gocore. A .env file in the
// working directory, or the files given with --env, is loaded first.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/settings"
	blockchain_store "github.com/bsv-blockchain/headerchain/stores/blockchain"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "headerchain",
		Usage: "validate block headers and inspect a header chain",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env",
				Usage: "dotenv files to load before reading settings",
			},
			&cli.StringFlag{
				Name:  "network",
				Usage: "mainnet, testnet, regtest or stn (overrides the network setting)",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "block store url (overrides the blockchain_store setting)",
			},
		},
		Before: func(c *cli.Context) error {
			return loadEnv(c.StringSlice("env"))
		},
		Commands: []*cli.Command{
			verifyCommand(),
			inspectCommand(),
			mtpCommand(),
		},
	}
}

func loadEnv(files []string) error {
	if len(files) == 0 {
		// optional
		_ = godotenv.Load()
		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return errors.NewConfigurationError("failed to load env files %v", files, err)
	}

	return nil
}

// loadSettings reads the gocore settings and applies the command line overrides.
func loadSettings(c *cli.Context) (*settings.Settings, error) {
	tSettings := settings.NewSettings()

	if network := c.String("network"); network != "" {
		params, err := chaincfg.GetChainParams(network)
		if err != nil {
			return nil, err
		}

		tSettings.ChainCfgParams = params
	}

	if store := c.String("store"); store != "" {
		storeURL, err := url.Parse(store)
		if err != nil {
			return nil, errors.NewConfigurationError("invalid store url %q", store, err)
		}

		tSettings.BlockChain.StoreURL = storeURL
	}

	return tSettings, nil
}

func newLogger(tSettings *settings.Settings) ulogger.Logger {
	return ulogger.New("headerchain", ulogger.WithLevel(tSettings.LogLevel))
}

func closeStore(logger ulogger.Logger, store blockchain_store.Store) {
	if err := store.Close(context.Background()); err != nil {
		logger.Errorf("[headerchain] failed to close block store: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/services/blockchain"
	blockchain_store "github.com/bsv-blockchain/headerchain/stores/blockchain"
	"github.com/urfave/cli/v2"
)

func mtpCommand() *cli.Command {
	return &cli.Command{
		Name:      "mtp",
		Usage:     "print the median time past of a stored block, or of the chain head",
		ArgsUsage: "[block hash]",
		Action: func(c *cli.Context) error {
			tSettings, err := loadSettings(c)
			if err != nil {
				return err
			}

			logger := newLogger(tSettings)

			store, err := blockchain_store.NewStore(logger, tSettings.BlockChain.StoreURL, tSettings)
			if err != nil {
				return err
			}

			defer closeStore(logger, store)

			mtp, err := medianTimePast(c.Context, store, c.Args().First())
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%d (%s)\n", mtp, time.Unix(mtp, 0).UTC().Format(time.RFC3339))

			return nil
		},
	}
}

func medianTimePast(ctx context.Context, store blockchain_store.Store, hashStr string) (int64, error) {
	if hashStr == "" {
		head, err := store.GetChainHead(ctx)
		if err != nil {
			return 0, err
		}

		if head == nil {
			return 0, errors.NewBlockNotFoundError("store has no chain head")
		}

		return blockchain.MedianTimePast(ctx, head, store)
	}

	hash, err := chainhash.NewHashFromStr(hashStr)
	if err != nil {
		return 0, errors.NewInvalidArgumentError("invalid block hash %q", hashStr, err)
	}

	block, err := store.Get(ctx, hash)
	if err != nil {
		return 0, err
	}

	if block == nil {
		return 0, errors.NewBlockNotFoundError("block %s is not stored", hash)
	}

	return blockchain.MedianTimePast(ctx, block, store)
}

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/urfave/cli/v2"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "decode an 80 byte hex header",
		ArgsUsage: "<header hex>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.NewInvalidArgumentError("expected a single header argument")
			}

			tSettings, err := loadSettings(c)
			if err != nil {
				return err
			}

			header, err := model.NewHeaderFromString(c.Args().First())
			if err != nil {
				return err
			}

			printHeader(c.App.Writer, header, header.HasValidProofOfWork(tSettings.ChainCfgParams))

			return nil
		},
	}
}

func printHeader(w io.Writer, header *model.Header, validPoW bool) {
	fmt.Fprintf(w, "hash:        %s\n", header.Hash())
	fmt.Fprintf(w, "version:     %d\n", header.Version())
	fmt.Fprintf(w, "previous:    %s\n", header.PrevHash())
	fmt.Fprintf(w, "merkle root: %s\n", header.MerkleRoot())
	fmt.Fprintf(w, "time:        %d (%s)\n", header.Timestamp(), time.Unix(int64(header.Timestamp()), 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "bits:        %s\n", header.Bits())
	fmt.Fprintf(w, "difficulty:  %s\n", header.Bits().CalculateDifficulty().Text('f', 8))
	fmt.Fprintf(w, "nonce:       %d\n", header.Nonce())
	fmt.Fprintf(w, "valid pow:   %t\n", validPoW)
}

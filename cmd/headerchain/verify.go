package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/bsv-blockchain/headerchain/services/blockchain"
	"github.com/bsv-blockchain/headerchain/services/blockvalidation/pow"
	blockchain_store "github.com/bsv-blockchain/headerchain/stores/blockchain"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"github.com/urfave/cli/v2"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:        "verify",
		Usage:       "validate hex encoded headers, one per line, and store them",
		ArgsUsage:   "<file|->",
		Description: "Each line holds a header and optionally, after whitespace, the raw coinbase transaction of the block.",
		Action:      verify,
	}
}

func verify(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.NewInvalidArgumentError("expected a single file argument")
	}

	tSettings, err := loadSettings(c)
	if err != nil {
		return err
	}

	logger := newLogger(tSettings)

	var r io.Reader = os.Stdin

	if name := c.Args().First(); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return errors.NewProcessingError("failed to open %s", name, err)
		}

		defer f.Close()

		r = f
	}

	store, err := blockchain_store.NewStore(logger, tSettings.BlockChain.StoreURL, tSettings)
	if err != nil {
		return err
	}

	defer closeStore(logger, store)

	v := &verifier{
		logger:  logger,
		store:   store,
		factory: pow.NewNetworkFactory(logger, tSettings),
	}

	head, err := v.run(c.Context, r)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "chain head %s at height %d, chain work %s\n", head.Hash(), head.Height(), head.ChainWork().Text(16))

	return nil
}

type verifier struct {
	logger  ulogger.Logger
	store   blockchain_store.Store
	factory pow.Factory
}

// init stores the genesis block of the network if the store is empty and
// returns the current chain head.
func (v *verifier) init(ctx context.Context) (*model.LiteBlock, error) {
	head, err := v.store.GetChainHead(ctx)
	if err != nil {
		return nil, err
	}

	if head != nil {
		return head, nil
	}

	genesis, err := blockchain.NewGenesisBlock(v.store.GetNetworkParams())
	if err != nil {
		return nil, err
	}

	if err = v.store.Put(ctx, genesis); err != nil && !errors.Is(err, errors.ErrBlockExists) {
		return nil, err
	}

	if err = v.store.SetChainHead(ctx, genesis); err != nil {
		return nil, err
	}

	v.logger.Infof("[verify] initialised store with %s genesis %s", v.store.GetNetworkParams().Name, genesis.Hash())

	return genesis, nil
}

// run validates every header read from r against its stored parent and
// returns the chain head afterwards.
func (v *verifier) run(ctx context.Context, r io.Reader) (*model.LiteBlock, error) {
	head, err := v.init(ctx)
	if err != nil {
		return nil, err
	}

	genesisHash := v.store.GetNetworkParams().GenesisHash

	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		header, coinbase, err := parseLine(text)
		if err != nil {
			return nil, errors.NewProcessingError("line %d", line, err)
		}

		if header.Hash() == *genesisHash {
			continue
		}

		block, err := v.connect(ctx, header, coinbase)
		if err != nil {
			var difficulty *errors.DifficultyErrData

			switch {
			case errors.AsData(err, &difficulty):
				v.logger.Warnf("[verify] line %d: header %s rejected, %s", line, header.Hash(), difficulty)
			case errors.IsConsensusError(err):
				v.logger.Warnf("[verify] line %d: header %s rejected", line, header.Hash())
			case errors.IsStorageError(err):
				v.logger.Errorf("[verify] line %d: block store failed", line)
			}

			return nil, errors.NewProcessingError("line %d", line, err)
		}

		if blockchain.IsMoreWorkThan(block, head) {
			if err = v.store.SetChainHead(ctx, block); err != nil {
				return nil, err
			}

			head = block
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, errors.NewProcessingError("failed to read headers", err)
	}

	return head, nil
}

// parseLine splits a line into its header and optional raw coinbase.
func parseLine(text string) (*model.Header, []byte, error) {
	fields := strings.Fields(text)
	if len(fields) > 2 {
		return nil, nil, errors.NewInvalidArgumentError("expected a header and an optional coinbase, got %d fields", len(fields))
	}

	header, err := model.NewHeaderFromString(fields[0])
	if err != nil {
		return nil, nil, err
	}

	if len(fields) == 1 {
		return header, nil, nil
	}

	coinbase, err := hex.DecodeString(fields[1])
	if err != nil {
		return nil, nil, errors.NewInvalidArgumentError("coinbase is not hex", err)
	}

	return header, coinbase, nil
}

// connect validates header, and its coinbase when given, on top of its stored
// parent and stores it. A header that is already stored is returned as is.
func (v *verifier) connect(ctx context.Context, header *model.Header, coinbase []byte) (*model.LiteBlock, error) {
	prevHash := header.PrevHash()

	prev, err := v.store.Get(ctx, &prevHash)
	if err != nil {
		return nil, err
	}

	if prev == nil {
		return nil, errors.NewBlockNotFoundError("parent %s of %s is not stored", prevHash, header.Hash())
	}

	candidate, err := model.NewLiteBlock(header, nil, nil)
	if err != nil {
		return nil, err
	}

	block, err := blockchain.BuildNextInChain(prev, candidate)
	if err != nil {
		return nil, err
	}

	if err = v.factory.RuleChecker(prev, block).CheckRules(ctx, prev, block, v.store); err != nil {
		return nil, err
	}

	if coinbase != nil {
		info, err := model.NewCoinbaseInfo(block.Hash(), coinbase, nil, nil)
		if err != nil {
			return nil, err
		}

		if err = blockchain.CheckCoinbaseHeight(v.store.GetNetworkParams(), block, info); err != nil {
			return nil, err
		}
	}

	if err = v.store.Put(ctx, block); err != nil {
		if errors.Is(err, errors.ErrBlockExists) {
			v.logger.Debugf("[verify] block %s at height %d already stored", block.Hash(), block.Height())
			return block, nil
		}

		return nil, err
	}

	v.logger.Debugf("[verify] block %s at height %d", block.Hash(), block.Height())

	return block, nil
}

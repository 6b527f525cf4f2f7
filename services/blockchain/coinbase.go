package blockchain

import (
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
)

// CheckCoinbaseHeight checks that coinbase belongs to block and, from the
// network's BIP34 activation height, that it pushes the block's height. The
// coinbase is not decoded below activation.
func CheckCoinbaseHeight(params *chaincfg.Params, block *model.LiteBlock, coinbase *model.CoinbaseInfo) error {
	if block == nil || coinbase == nil {
		return errors.NewInvalidArgumentError("block and coinbase are required")
	}

	hash := block.Hash()
	if coinbaseBlock := coinbase.BlockHash(); coinbaseBlock != hash {
		return errors.NewInvalidArgumentError("coinbase of block %s given for block %s", coinbaseBlock, hash)
	}

	if block.Height() < params.BIP0034Height {
		return nil
	}

	height, err := coinbase.Height()
	if err != nil {
		return errors.NewBlockInvalidError("block %s has no coinbase height", hash, err)
	}

	if int64(height) != int64(block.Height()) {
		return errors.NewBlockInvalidError("coinbase of block %s pushes height %d, block is at %d", hash, height, block.Height())
	}

	return nil
}

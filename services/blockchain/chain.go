// Package blockchain holds the arithmetic for extending a chain of lite blocks:
// cumulative work, heights, transaction totals and ancestor based timestamps.
package blockchain

import (
	"context"
	"math"

	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
	blockchain_store "github.com/bsv-blockchain/headerchain/stores/blockchain"
	"github.com/bsv-blockchain/headerchain/util"
	"github.com/bsv-blockchain/headerchain/util/work"
)

// genesisBlockSize is the serialized size of the genesis block shared by all networks.
const genesisBlockSize = 285

// IsMoreWorkThan reports whether a carries strictly more cumulative work than b.
// Ties are never more work.
func IsMoreWorkThan(a, b *model.LiteBlock) bool {
	return a.ChainWork().Cmp(b.ChainWork()) > 0
}

// BuildNextInChain returns candidate placed on top of parent: its chain work is
// the parent's plus the work of the candidate's bits, its height is one more
// and its transaction total adds the candidate's tx count. Any chain info on
// the candidate is ignored. Neither input is modified.
func BuildNextInChain(parent, candidate *model.LiteBlock) (*model.LiteBlock, error) {
	if parent == nil || candidate == nil {
		return nil, errors.NewInvalidArgumentError("parent and candidate are required")
	}

	parentHash := parent.Hash()
	if candidate.PrevHash() != parentHash {
		return nil, errors.NewVerificationError("block %s does not extend %s: previous hash is %s", candidate.Hash(), parentHash, candidate.PrevHash())
	}

	if parent.Height() == math.MaxInt32 {
		return nil, errors.NewVerificationError("height overflow on top of block %s", parentHash)
	}

	parentTxs := parent.ChainInfo().TotalChainTxs()
	txCount := int64(candidate.Meta().TxCount())

	if txCount < 0 || parentTxs > math.MaxInt64-txCount {
		return nil, errors.NewVerificationError("total chain tx overflow on top of block %s", parentHash)
	}

	chainWork := work.CalculateWork(parent.ChainWork(), candidate.Bits().Uint32())

	chainInfo, err := model.NewChainInfo(chainWork, parent.Height()+1, parentTxs+txCount)
	if err != nil {
		return nil, errors.NewVerificationError("invalid chain info for block %s", candidate.Hash(), err)
	}

	return model.NewLiteBlock(candidate.Header(), chainInfo, candidate.Meta())
}

// NewGenesisBlock returns the genesis block of the network with its own work as chain work.
func NewGenesisBlock(params *chaincfg.Params) (*model.LiteBlock, error) {
	header, err := model.NewHeaderFromBytes(params.GenesisHeader)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid genesis header for %s", params.Name, err)
	}

	if header.Hash() != *params.GenesisHash {
		return nil, errors.NewConfigurationError("genesis header of %s hashes to %s, expected %s", params.Name, header.Hash(), params.GenesisHash)
	}

	chainInfo, err := model.GenesisChainInfo(work.CalcBlockWork(header.Bits().Uint32()), 1)
	if err != nil {
		return nil, err
	}

	meta, err := model.NewBlockMeta(1, genesisBlockSize)
	if err != nil {
		return nil, err
	}

	return model.NewLiteBlock(header, chainInfo, meta)
}

// MedianTimePast returns the median timestamp of block and up to ten of its
// ancestors. Fewer are used near genesis. A missing ancestor of a non-genesis
// block is a BlockNotFound error, a cancelled ctx a ContextCanceled error.
func MedianTimePast(ctx context.Context, block *model.LiteBlock, lookup blockchain_store.AncestorLookup) (int64, error) {
	timestamps := make([]int64, 0, util.MedianTimeBlocks)

	current := block
	for current != nil && len(timestamps) < util.MedianTimeBlocks {
		timestamps = append(timestamps, int64(current.Timestamp()))

		if current.IsGenesis() || len(timestamps) == util.MedianTimeBlocks {
			break
		}

		prev, err := getPrev(ctx, current, lookup)
		if err != nil {
			return 0, err
		}

		current = prev
	}

	return util.CalcPastMedianTime(timestamps)
}

// RelativeAncestor walks distance blocks back from block. A distance of zero
// returns block itself.
func RelativeAncestor(ctx context.Context, block *model.LiteBlock, distance int, lookup blockchain_store.AncestorLookup) (*model.LiteBlock, error) {
	if distance < 0 {
		return nil, errors.NewInvalidArgumentError("negative ancestor distance %d", distance)
	}

	if int64(distance) > int64(block.Height()) {
		return nil, errors.NewBlockNotFoundError("block %s at height %d has no ancestor %d blocks back", block.Hash(), block.Height(), distance)
	}

	current := block

	for i := 0; i < distance; i++ {
		if current.IsGenesis() {
			return nil, errors.NewBlockNotFoundError("reached genesis %d blocks back from %s", i, block.Hash())
		}

		prev, err := getPrev(ctx, current, lookup)
		if err != nil {
			return nil, err
		}

		current = prev
	}

	return current, nil
}

// SuitableBlock returns the block with the median timestamp among block and
// its two parents. It smooths out a single skewed timestamp at a window edge.
func SuitableBlock(ctx context.Context, block *model.LiteBlock, lookup blockchain_store.AncestorLookup) (*model.LiteBlock, error) {
	parent, err := RelativeAncestor(ctx, block, 1, lookup)
	if err != nil {
		return nil, err
	}

	grandParent, err := RelativeAncestor(ctx, parent, 1, lookup)
	if err != nil {
		return nil, err
	}

	blocks := [3]*model.LiteBlock{grandParent, parent, block}

	if blocks[0].Timestamp() > blocks[2].Timestamp() {
		blocks[0], blocks[2] = blocks[2], blocks[0]
	}

	if blocks[0].Timestamp() > blocks[1].Timestamp() {
		blocks[0], blocks[1] = blocks[1], blocks[0]
	}

	if blocks[1].Timestamp() > blocks[2].Timestamp() {
		blocks[1], blocks[2] = blocks[2], blocks[1]
	}

	return blocks[1], nil
}

func getPrev(ctx context.Context, block *model.LiteBlock, lookup blockchain_store.AncestorLookup) (*model.LiteBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewContextCanceledError("stopped walking back at block %s", block.Hash(), err)
	}

	prev, err := lookup.GetPrev(ctx, block)
	if err != nil {
		return nil, err
	}

	if prev == nil {
		return nil, errors.NewBlockNotFoundError("parent %s of block %s not found", block.PrevHash(), block.Hash())
	}

	return prev, nil
}

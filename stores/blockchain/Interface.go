// Package blockchain defines the block store consumed by the chain builder and
// the proof-of-work rules, and selects an implementation by URL.
package blockchain

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/model"
)

// AncestorLookup is the read side of a store needed to walk a chain backwards.
// A block that is not known is returned as (nil, nil).
type AncestorLookup interface {
	Get(ctx context.Context, hash *chainhash.Hash) (*model.LiteBlock, error)

	// GetPrev returns the parent of block, or nil for a genesis block.
	GetPrev(ctx context.Context, block *model.LiteBlock) (*model.LiteBlock, error)
}

// Store persists lite blocks and the current chain head. Failures are returned
// as storage errors.
type Store interface {
	AncestorLookup

	Put(ctx context.Context, block *model.LiteBlock) error
	GetChainHead(ctx context.Context) (*model.LiteBlock, error)
	SetChainHead(ctx context.Context, block *model.LiteBlock) error
	Close(ctx context.Context) error
	GetNetworkParams() *chaincfg.Params
}

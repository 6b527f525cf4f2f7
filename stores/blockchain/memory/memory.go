// Package memory is a map backed block store for tests and short lived tools.
package memory

import (
	"context"
	"sync"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"go.uber.org/atomic"
)

type Memory struct {
	logger ulogger.Logger
	params *chaincfg.Params

	mu        sync.RWMutex
	blocks    map[chainhash.Hash]*model.LiteBlock
	chainHead *model.LiteBlock
	closed    bool

	gets atomic.Uint64
	puts atomic.Uint64
}

func New(logger ulogger.Logger, params *chaincfg.Params) *Memory {
	return &Memory{
		logger: logger,
		params: params,
		blocks: make(map[chainhash.Hash]*model.LiteBlock),
	}
}

func (m *Memory) Get(_ context.Context, hash *chainhash.Hash) (*model.LiteBlock, error) {
	m.gets.Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, errors.NewStorageError("memory store is closed")
	}

	return m.blocks[*hash], nil
}

func (m *Memory) GetPrev(ctx context.Context, block *model.LiteBlock) (*model.LiteBlock, error) {
	if block.IsGenesis() {
		return nil, nil
	}

	prevHash := block.PrevHash()

	return m.Get(ctx, &prevHash)
}

func (m *Memory) Put(_ context.Context, block *model.LiteBlock) error {
	m.puts.Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.NewStorageError("memory store is closed")
	}

	hash := block.Hash()
	if _, ok := m.blocks[hash]; ok {
		return errors.NewBlockExistsError("block %s is already stored", hash)
	}

	m.blocks[hash] = block

	return nil
}

func (m *Memory) GetChainHead(_ context.Context) (*model.LiteBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, errors.NewStorageError("memory store is closed")
	}

	return m.chainHead, nil
}

func (m *Memory) SetChainHead(_ context.Context, block *model.LiteBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.NewStorageError("memory store is closed")
	}

	if _, ok := m.blocks[block.Hash()]; !ok {
		return errors.NewStorageError("chain head %s has not been stored", block.Hash())
	}

	m.chainHead = block

	return nil
}

func (m *Memory) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Debugf("[memory] closing store after %d gets and %d puts", m.gets.Load(), m.puts.Load())
	m.closed = true

	return nil
}

func (m *Memory) GetNetworkParams() *chaincfg.Params {
	return m.params
}

// Len returns the number of stored blocks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blocks)
}

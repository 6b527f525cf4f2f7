package blockchain

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/stretchr/testify/mock"
)

// Mock implements Store for tests.
type Mock struct {
	mock.Mock
}

func (m *Mock) Get(ctx context.Context, hash *chainhash.Hash) (*model.LiteBlock, error) {
	args := m.Called(ctx, hash)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	block, _ := args.Get(0).(*model.LiteBlock)

	return block, nil
}

func (m *Mock) GetPrev(ctx context.Context, block *model.LiteBlock) (*model.LiteBlock, error) {
	args := m.Called(ctx, block)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	prev, _ := args.Get(0).(*model.LiteBlock)

	return prev, nil
}

func (m *Mock) Put(ctx context.Context, block *model.LiteBlock) error {
	args := m.Called(ctx, block)

	return args.Error(0)
}

func (m *Mock) GetChainHead(ctx context.Context) (*model.LiteBlock, error) {
	args := m.Called(ctx)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	head, _ := args.Get(0).(*model.LiteBlock)

	return head, nil
}

func (m *Mock) SetChainHead(ctx context.Context, block *model.LiteBlock) error {
	args := m.Called(ctx, block)

	return args.Error(0)
}

func (m *Mock) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *Mock) GetNetworkParams() *chaincfg.Params {
	args := m.Called()

	params, _ := args.Get(0).(*chaincfg.Params)

	return params
}

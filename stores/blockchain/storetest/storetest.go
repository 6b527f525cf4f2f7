// Package storetest holds fixtures and a behaviour suite shared by the block
// store implementations.
package storetest

import (
	"context"
	"math/big"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/bsv-blockchain/headerchain/util/work"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Chain returns the regtest genesis block followed by n linked blocks spaced
// ten minutes apart. Proof of work is not solved.
func Chain(t testing.TB, n int) []*model.LiteBlock {
	t.Helper()

	params := &chaincfg.RegressionNetParams

	genesisHeader, err := model.NewHeaderFromBytes(params.GenesisHeader)
	require.NoError(t, err)

	chainInfo, err := model.NewChainInfo(work.CalcBlockWork(params.PowLimitBits), 0, 1)
	require.NoError(t, err)

	meta, err := model.NewBlockMeta(1, 285)
	require.NoError(t, err)

	genesis, err := model.NewLiteBlock(genesisHeader, chainInfo, meta)
	require.NoError(t, err)

	blocks := []*model.LiteBlock{genesis}

	for i := 1; i <= n; i++ {
		prev := blocks[i-1]

		m := model.NewMutableLiteBlock()
		require.NoError(t, m.Header().SetVersion(0x20000000))
		require.NoError(t, m.Header().SetPrevHash(prev.Hash()))
		require.NoError(t, m.Header().SetTimestamp(prev.Timestamp()+600))
		require.NoError(t, m.Header().SetBits(prev.Bits()))
		require.NoError(t, m.Header().SetNonce(uint32(i))) //nolint:gosec // small test index

		require.NoError(t, m.ChainInfo().SetChainWork(work.CalculateWork(prev.ChainWork(), prev.Bits().Uint32())))
		require.NoError(t, m.ChainInfo().SetHeight(prev.Height()+1))
		require.NoError(t, m.ChainInfo().SetTotalChainTxs(prev.ChainInfo().TotalChainTxs()+1))
		require.NoError(t, m.Meta().SetTxCount(1))
		require.NoError(t, m.Meta().SetBlockSize(250))

		blocks = append(blocks, m.Freeze())
	}

	return blocks
}

// Store mirrors the block store interface so that implementations can run the
// suite without importing the package that selects them.
type Store interface {
	Get(ctx context.Context, hash *chainhash.Hash) (*model.LiteBlock, error)
	GetPrev(ctx context.Context, block *model.LiteBlock) (*model.LiteBlock, error)
	Put(ctx context.Context, block *model.LiteBlock) error
	GetChainHead(ctx context.Context) (*model.LiteBlock, error)
	SetChainHead(ctx context.Context, block *model.LiteBlock) error
	GetNetworkParams() *chaincfg.Params
}

// RunStoreTests exercises the Store contract. The store must be empty and
// configured for regtest.
func RunStoreTests(t *testing.T, s Store) {
	ctx := context.Background()
	blocks := Chain(t, 3)

	t.Run("missing block", func(t *testing.T) {
		hash := chainhash.DoubleHashH([]byte("missing"))

		block, err := s.Get(ctx, &hash)
		require.NoError(t, err)
		assert.Nil(t, block)

		head, err := s.GetChainHead(ctx)
		require.NoError(t, err)
		assert.Nil(t, head)
	})

	t.Run("put and get", func(t *testing.T) {
		for _, block := range blocks {
			require.NoError(t, s.Put(ctx, block))
		}

		for _, block := range blocks {
			hash := block.Hash()

			got, err := s.Get(ctx, &hash)
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, block.Bytes(), got.Bytes())
			assert.Equal(t, block.Height(), got.Height())
			assert.Equal(t, 0, block.ChainWork().Cmp(got.ChainWork()))
		}
	})

	t.Run("duplicate put", func(t *testing.T) {
		err := s.Put(ctx, blocks[1])
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBlockExists))

		hash := blocks[1].Hash()
		got, err := s.Get(ctx, &hash)
		require.NoError(t, err)
		assert.True(t, model.Equal(blocks[1], got))
	})

	t.Run("get prev", func(t *testing.T) {
		prev, err := s.GetPrev(ctx, blocks[3])
		require.NoError(t, err)
		require.NotNil(t, prev)
		assert.Equal(t, blocks[2].Hash(), prev.Hash())

		prev, err = s.GetPrev(ctx, blocks[0])
		require.NoError(t, err)
		assert.Nil(t, prev)
	})

	t.Run("chain head", func(t *testing.T) {
		require.NoError(t, s.SetChainHead(ctx, blocks[2]))

		head, err := s.GetChainHead(ctx)
		require.NoError(t, err)
		require.NotNil(t, head)
		assert.Equal(t, blocks[2].Hash(), head.Hash())

		require.NoError(t, s.SetChainHead(ctx, blocks[3]))

		head, err = s.GetChainHead(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(3), head.Height())
	})

	t.Run("network params", func(t *testing.T) {
		assert.Equal(t, chaincfg.RegressionNetParams.Name, s.GetNetworkParams().Name)
	})

	t.Run("large chain work", func(t *testing.T) {
		m := blocks[3].Mutable()
		require.NoError(t, m.Header().SetNonce(99))
		require.NoError(t, m.ChainInfo().SetChainWork(new(big.Int).Lsh(big.NewInt(1), 95)))

		block := m.Freeze()
		require.NoError(t, s.Put(ctx, block))

		hash := block.Hash()
		got, err := s.Get(ctx, &hash)
		require.NoError(t, err)
		assert.Equal(t, 0, block.ChainWork().Cmp(got.ChainWork()))
	})
}

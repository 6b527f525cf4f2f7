package pow

import (
	"context"
	"math/big"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/bsv-blockchain/headerchain/services/blockchain"
	"github.com/bsv-blockchain/headerchain/stores/blockchain/memory"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"github.com/stretchr/testify/require"
)

// testBits is a mainnet era compact target well below the proof of work limit.
const testBits = uint32(0x1b0404cb)

// testChain grows a stored chain from the genesis block of params.
type testChain struct {
	t      *testing.T
	params *chaincfg.Params
	store  *memory.Memory
	blocks []*model.LiteBlock
}

func newTestChain(t *testing.T, params *chaincfg.Params) *testChain {
	t.Helper()

	genesis, err := blockchain.NewGenesisBlock(params)
	require.NoError(t, err)

	store := memory.New(ulogger.TestLogger{}, params)
	require.NoError(t, store.Put(context.Background(), genesis))

	return &testChain{
		t:      t,
		params: params,
		store:  store,
		blocks: []*model.LiteBlock{genesis},
	}
}

func (c *testChain) tip() *model.LiteBlock {
	return c.blocks[len(c.blocks)-1]
}

// next builds, without storing, a block on the tip mined offset seconds later.
func (c *testChain) next(offset, bits uint32) *model.LiteBlock {
	c.t.Helper()

	tip := c.tip()

	m := model.NewMutableLiteBlock()
	require.NoError(c.t, m.Header().SetVersion(0x20000000))
	require.NoError(c.t, m.Header().SetPrevHash(tip.Hash()))
	require.NoError(c.t, m.Header().SetTimestamp(tip.Timestamp()+offset))
	require.NoError(c.t, m.Header().SetBits(model.NewNBitFromUint32(bits)))
	require.NoError(c.t, m.Header().SetNonce(uint32(len(c.blocks)))) //nolint:gosec // test chains are short
	require.NoError(c.t, m.Meta().SetTxCount(1))

	block, err := blockchain.BuildNextInChain(tip, m.Freeze())
	require.NoError(c.t, err)

	return block
}

// extend appends n stored blocks spaced by spacing seconds.
func (c *testChain) extend(n int, spacing, bits uint32) *testChain {
	c.t.Helper()

	for i := 0; i < n; i++ {
		block := c.next(spacing, bits)
		require.NoError(c.t, c.store.Put(context.Background(), block))
		c.blocks = append(c.blocks, block)
	}

	return c
}

// blockAt returns an unstored block with the given chain position, for
// checks that never walk ancestors.
func blockAt(t *testing.T, height int32, timestamp, bits uint32) *model.LiteBlock {
	t.Helper()

	m := model.NewMutableLiteBlock()
	require.NoError(t, m.Header().SetVersion(0x20000000))
	require.NoError(t, m.Header().SetPrevHash(chainhash.DoubleHashH([]byte{byte(height), byte(height >> 8), byte(height >> 16)})))
	require.NoError(t, m.Header().SetTimestamp(timestamp))
	require.NoError(t, m.Header().SetBits(model.NewNBitFromUint32(bits)))
	require.NoError(t, m.ChainInfo().SetHeight(height))

	return m.Freeze()
}

// suitableBlockAt returns an unstored block carrying a real chain work, given
// as big-endian hex.
func suitableBlockAt(t *testing.T, height int32, timestamp uint32, chainWorkHex string) *model.LiteBlock {
	t.Helper()

	chainWork, ok := new(big.Int).SetString(chainWorkHex, 16)
	require.True(t, ok)

	m := model.NewMutableLiteBlock()
	require.NoError(t, m.Header().SetTimestamp(timestamp))
	require.NoError(t, m.ChainInfo().SetHeight(height))
	require.NoError(t, m.ChainInfo().SetChainWork(chainWork))

	return m.Freeze()
}

func mainNetParams() *chaincfg.Params {
	params := chaincfg.MainNetParams
	return &params
}

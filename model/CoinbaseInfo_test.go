package model

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coinbase of regtest block 34424
const coinbase34424 = "02000000010000000000000000000000000000000000000000000000000000000000000000ffffffff06037886000101ffffffff01a82f000000000000232103a920b957d6d2268812e02dfd8799ed2a867e2df86c4f8d1eaecb4c35266692b5ac00000000"

var merkleProof34424, _ = hex.DecodeString("9f0a5462ca027f74b8c8e872331da1a55520197ff8734b604505c93cc7dfb96811a375f3e547d4babb672471a167443f96077c7c9950548ce6ec460f6da37a32")

type mapBlockGetter map[chainhash.Hash]*LiteBlock

func (m mapBlockGetter) Get(_ context.Context, hash *chainhash.Hash) (*LiteBlock, error) {
	return m[*hash], nil
}

func newTestCoinbaseInfo(t *testing.T) *CoinbaseInfo {
	t.Helper()

	blockHash, err := chainhash.NewHashFromStr(block34424Hash)
	require.NoError(t, err)

	coinbase, err := hex.DecodeString(coinbase34424)
	require.NoError(t, err)

	info, err := NewCoinbaseInfo(*blockHash, coinbase, merkleProof34424, []byte{4})
	require.NoError(t, err)

	return info
}

func TestCoinbaseInfoHeight(t *testing.T) {
	info := newTestCoinbaseInfo(t)

	assert.False(t, info.height.IsComputed())

	height, err := info.Height()
	require.NoError(t, err)
	assert.Equal(t, uint32(34424), height)
	assert.True(t, info.height.IsComputed())

	tx, err := info.Tx()
	require.NoError(t, err)
	assert.True(t, tx.IsCoinbase())
	assert.Equal(t, uint64(12200), tx.TotalOutputSatoshis())

	again, err := info.Tx()
	require.NoError(t, err)
	assert.Same(t, tx, again)

	c := info.Copy()
	assert.True(t, c.height.IsComputed())
	assert.False(t, c.tx.IsComputed())
}

func TestCoinbaseInfoRoundTrip(t *testing.T) {
	info := newTestCoinbaseInfo(t)

	b, err := info.Serialize()
	require.NoError(t, err)

	size, err := info.MessageSize()
	require.NoError(t, err)
	assert.Len(t, b, size)
	assert.Equal(t, 32+1+len(coinbase34424)/2+1+64+1+1, size)

	decoded, err := NewCoinbaseInfoFromBytes(b)
	require.NoError(t, err)

	assert.Equal(t, info.BlockHash(), decoded.BlockHash())
	assert.Equal(t, info.CoinbaseBytes(), decoded.CoinbaseBytes())
	assert.Equal(t, merkleProof34424, decoded.MerkleProof())
	assert.Equal(t, []byte{4}, decoded.TxCountProof())
	assert.True(t, Equal(info, decoded))
}

func TestCoinbaseInfoDecodeErrors(t *testing.T) {
	_, err := NewCoinbaseInfoFromBytes(make([]byte, 10))
	assert.True(t, errors.Is(err, errors.ErrSerialization))

	// empty coinbase field
	_, err = NewCoinbaseInfoFromBytes(make([]byte, 35))
	assert.True(t, errors.Is(err, errors.ErrSerialization))

	// truncated coinbase field
	truncated := append(make([]byte, 32), 0x05, 0x01)
	_, err = NewCoinbaseInfoFromBytes(truncated)
	assert.True(t, errors.Is(err, errors.ErrSerialization))

	info, err := NewCoinbaseInfo(chainhash.Hash{}, []byte{0x01, 0x02}, nil, nil)
	require.NoError(t, err)

	_, err = info.Height()
	require.Error(t, err)

	_, err = info.Height()
	require.Error(t, err, "failed decodes are retried and fail again")
	assert.False(t, info.height.IsComputed())
}

func TestCoinbaseInfoBlockBackReference(t *testing.T) {
	info := newTestCoinbaseInfo(t)
	block := newTestLiteBlock(t)

	getter := mapBlockGetter{block.Hash(): block}

	resolved, err := info.Block(context.Background(), getter)
	require.NoError(t, err)
	assert.Same(t, block, resolved)

	resolved, err = info.Block(context.Background(), mapBlockGetter{})
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestMutableCoinbaseInfo(t *testing.T) {
	m := NewMutableCoinbaseInfo()

	_, err := m.MessageSize()
	assert.True(t, errors.Is(err, errors.ErrState))

	_, err = m.Serialize()
	assert.True(t, errors.Is(err, errors.ErrState))

	_, err = m.Freeze()
	assert.True(t, errors.Is(err, errors.ErrState))

	info := newTestCoinbaseInfo(t)
	tx, err := info.Tx()
	require.NoError(t, err)

	require.NoError(t, m.SetBlockHash(info.BlockHash()))
	require.NoError(t, m.SetCoinbaseTx(tx))
	require.NoError(t, m.SetMerkleProof(merkleProof34424))
	require.NoError(t, m.SetTxCountProof([]byte{4}))

	size, err := m.MessageSize()
	require.NoError(t, err)

	expectedSize, _ := info.MessageSize()
	assert.Equal(t, expectedSize, size)

	frozen, err := m.Freeze()
	require.NoError(t, err)
	assert.True(t, Equal(info, frozen))

	again, err := m.Freeze()
	require.NoError(t, err)
	assert.Same(t, frozen, again)

	assert.True(t, errors.Is(m.SetMerkleProof(nil), errors.ErrState))
	assert.True(t, errors.Is(m.SetCoinbase([]byte{1}), errors.ErrState))

	back := frozen.Mutable()
	require.NoError(t, back.SetTxCountProof([]byte{5}))
	assert.Equal(t, []byte{4}, frozen.TxCountProof())
}

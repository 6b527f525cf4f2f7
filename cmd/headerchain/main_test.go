package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/bsv-blockchain/headerchain/services/blockchain"
	"github.com/bsv-blockchain/headerchain/services/blockvalidation/pow"
	"github.com/bsv-blockchain/headerchain/settings"
	blockchain_store "github.com/bsv-blockchain/headerchain/stores/blockchain"
	"github.com/bsv-blockchain/headerchain/stores/blockchain/memory"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// regtestBlock1 is the first block mined on top of the regtest genesis block.
const regtestBlock1 = "0000002006226e46111a0b59caaf126043eb5bbf28c34f3a5e332a1fc7b2b73cf188910f1633819a69afbd7ce1f1a01c3b786fcbb023274f3b15172b24feadd4c80e6c6a8b491267ffff7f2004000000"

// coinbase of a regtest block at height 34424
const coinbase34424 = "02000000010000000000000000000000000000000000000000000000000000000000000000ffffffff06037886000101ffffffff01a82f000000000000232103a920b957d6d2268812e02dfd8799ed2a867e2df86c4f8d1eaecb4c35266692b5ac00000000"

func newTestVerifier(t *testing.T) (*verifier, *memory.Memory) {
	t.Helper()

	return newTestVerifierFor(t, &chaincfg.RegressionNetParams)
}

func newTestVerifierFor(t *testing.T, params *chaincfg.Params) (*verifier, *memory.Memory) {
	t.Helper()

	store := memory.New(ulogger.TestLogger{}, params)

	tSettings := &settings.Settings{
		ChainCfgParams: params,
		Difficulty:     settings.DifficultySettings{CheckProofOfWork: true},
	}

	return &verifier{
		logger:  ulogger.TestLogger{},
		store:   store,
		factory: pow.NewNetworkFactory(ulogger.TestLogger{}, tSettings),
	}, store
}

func TestVerifyHeaders(t *testing.T) {
	ctx := context.Background()

	t.Run("connects block 1", func(t *testing.T) {
		v, store := newTestVerifier(t)

		input := "# regtest\n\n" + regtestBlock1 + "\n"

		head, err := v.run(ctx, strings.NewReader(input))
		require.NoError(t, err)

		assert.Equal(t, int32(1), head.Height())
		assert.Equal(t, "4", head.ChainWork().Text(16))

		stored, err := store.GetChainHead(ctx)
		require.NoError(t, err)
		assert.Equal(t, head.Hash(), stored.Hash())
	})

	t.Run("empty input stores genesis", func(t *testing.T) {
		v, store := newTestVerifier(t)

		head, err := v.run(ctx, strings.NewReader(""))
		require.NoError(t, err)

		assert.True(t, head.IsGenesis())
		assert.Equal(t, *chaincfg.RegressionNetParams.GenesisHash, head.Hash())

		genesis, err := store.Get(ctx, chaincfg.RegressionNetParams.GenesisHash)
		require.NoError(t, err)
		require.NotNil(t, genesis)
	})

	t.Run("second run keeps head", func(t *testing.T) {
		v, _ := newTestVerifier(t)

		_, err := v.run(ctx, strings.NewReader(regtestBlock1))
		require.NoError(t, err)

		head, err := v.run(ctx, strings.NewReader(regtestBlock1))
		require.NoError(t, err)
		assert.Equal(t, int32(1), head.Height())
	})

	t.Run("genesis stored without head", func(t *testing.T) {
		v, store := newTestVerifier(t)

		genesis, err := blockchain.NewGenesisBlock(&chaincfg.RegressionNetParams)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, genesis))

		head, err := v.run(ctx, strings.NewReader(regtestBlock1))
		require.NoError(t, err)
		assert.Equal(t, int32(1), head.Height())
	})

	t.Run("unknown parent", func(t *testing.T) {
		v, _ := newTestVerifier(t)

		header, err := model.NewHeaderFromString(regtestBlock1)
		require.NoError(t, err)

		orphan := header.Mutable()
		require.NoError(t, orphan.SetPrevHash(header.Hash()))

		_, err = v.run(ctx, strings.NewReader(orphan.Freeze().String()))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBlockNotFound))
		assert.Contains(t, err.Error(), "line 1")
	})

	t.Run("invalid hex", func(t *testing.T) {
		v, _ := newTestVerifier(t)

		_, err := v.run(ctx, strings.NewReader("zz"))
		require.Error(t, err)
	})

	t.Run("wrong difficulty", func(t *testing.T) {
		v, _ := newTestVerifier(t)

		header, err := model.NewHeaderFromString(regtestBlock1)
		require.NoError(t, err)

		bad := header.Mutable()
		require.NoError(t, bad.SetBits(model.NewNBitFromUint32(0x1d00ffff)))

		_, err = v.run(ctx, strings.NewReader(bad.Freeze().String()))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrVerification))
	})
}

func TestVerifyCoinbaseHeight(t *testing.T) {
	ctx := context.Background()

	t.Run("ignored before activation", func(t *testing.T) {
		v, _ := newTestVerifier(t)

		head, err := v.run(ctx, strings.NewReader(regtestBlock1+" 00\n"))
		require.NoError(t, err)
		assert.Equal(t, int32(1), head.Height())
	})

	t.Run("wrong height after activation", func(t *testing.T) {
		params := chaincfg.RegressionNetParams
		params.BIP0034Height = 1

		v, store := newTestVerifierFor(t, &params)

		_, err := v.run(ctx, strings.NewReader(regtestBlock1+"\t"+coinbase34424+"\n"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBlockInvalid))

		header, err := model.NewHeaderFromString(regtestBlock1)
		require.NoError(t, err)

		hash := header.Hash()
		stored, err := store.Get(ctx, &hash)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("malformed lines", func(t *testing.T) {
		v, _ := newTestVerifier(t)

		_, err := v.run(ctx, strings.NewReader(regtestBlock1+" zz"))
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

		_, err = v.run(ctx, strings.NewReader(regtestBlock1+" 00 00"))
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	})
}

func TestCloseStoreLogsFailure(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("headerchain", ulogger.WithWriter(&buf), ulogger.WithPretty(false))

	store := &blockchain_store.Mock{}
	store.On("Close", mock.Anything).Return(errors.NewStorageError("flush failed")).Once()
	store.On("Close", mock.Anything).Return(nil).Once()

	closeStore(logger, store)
	assert.Contains(t, buf.String(), "failed to close block store")
	assert.Contains(t, buf.String(), "flush failed")

	buf.Reset()
	closeStore(logger, store)
	assert.Empty(t, buf.String())

	store.AssertExpectations(t)
}

func TestMedianTimePast(t *testing.T) {
	ctx := context.Background()

	v, store := newTestVerifier(t)

	head, err := v.run(ctx, strings.NewReader(regtestBlock1))
	require.NoError(t, err)

	mtp, err := medianTimePast(ctx, store, "")
	require.NoError(t, err)
	assert.Equal(t, int64(head.Timestamp()), mtp)

	genesis, err := model.NewHeaderFromBytes(chaincfg.RegressionNetParams.GenesisHeader)
	require.NoError(t, err)

	mtp, err = medianTimePast(ctx, store, chaincfg.RegressionNetParams.GenesisHash.String())
	require.NoError(t, err)
	assert.Equal(t, int64(genesis.Timestamp()), mtp)

	_, err = medianTimePast(ctx, store, "not a hash")
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = medianTimePast(ctx, memory.New(ulogger.TestLogger{}, &chaincfg.RegressionNetParams), "")
	assert.True(t, errors.Is(err, errors.ErrBlockNotFound))
}

func TestInspectCommand(t *testing.T) {
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out

	require.NoError(t, app.Run([]string{"headerchain", "--network", "regtest", "inspect", regtestBlock1}))

	header, err := model.NewHeaderFromString(regtestBlock1)
	require.NoError(t, err)

	assert.Contains(t, out.String(), header.Hash().String())
	assert.Contains(t, out.String(), "valid pow:   true")
}

func TestInspectCommandRequiresHeader(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run([]string{"headerchain", "inspect"})
	require.Error(t, err)
}

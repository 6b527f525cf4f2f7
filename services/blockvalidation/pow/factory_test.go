package pow

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/settings"
	"github.com/bsv-blockchain/headerchain/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNetworkFactory(params *chaincfg.Params, checkProofOfWork bool) *NetworkFactory {
	return NewNetworkFactory(ulogger.TestLogger{}, &settings.Settings{
		ChainCfgParams: params,
		Difficulty:     settings.DifficultySettings{CheckProofOfWork: checkProofOfWork},
	})
}

func TestNetworkFactoryDAABoundary(t *testing.T) {
	params := mainNetParams()
	f := newNetworkFactory(params, false)

	h := params.DAAUpdateHeight

	prev := blockAt(t, h-2, 1600000000, testBits)
	candidate := blockAt(t, h-1, 1600000600, testBits)
	assert.Equal(t, []Kind{KindEmergencyDifficultyAdjustment}, f.RuleChecker(prev, candidate).Kinds())

	prev = blockAt(t, h-1, 1600000000, testBits)
	candidate = blockAt(t, h, 1600000600, testBits)
	assert.Equal(t, []Kind{KindDAA}, f.RuleChecker(prev, candidate).Kinds())
}

func TestNetworkFactoryProofOfWorkFirst(t *testing.T) {
	params := mainNetParams()
	f := newNetworkFactory(params, true)

	prev := blockAt(t, 600000, 1600000000, testBits)
	candidate := blockAt(t, 600001, 1600000600, testBits)

	assert.Equal(t, []Kind{KindProofOfWork, KindDAA}, f.RuleChecker(prev, candidate).Kinds())
}

func TestNetworkFactoryCheckpointHeight(t *testing.T) {
	params := mainNetParams()
	require.NotNil(t, params.Checkpoint(11111))

	prev := blockAt(t, 11110, 1600000000, testBits)
	candidate := blockAt(t, 11111, 1600000600, testBits)

	kinds := newNetworkFactory(params, true).RuleChecker(prev, candidate).Kinds()
	assert.Equal(t, []Kind{KindProofOfWork, KindCheckpoint, KindEmergencyDifficultyAdjustment}, kinds)

	kinds = newNetworkFactory(params, false).RuleChecker(prev, candidate).Kinds()
	assert.Equal(t, []Kind{KindCheckpoint, KindEmergencyDifficultyAdjustment}, kinds)

	// the header is not the mainnet block 11111
	err := newNetworkFactory(params, false).RuleChecker(prev, candidate).CheckRules(context.Background(), prev, candidate, nil)
	assert.True(t, errors.Is(err, errors.ErrVerification))
}

func TestEDAFactory(t *testing.T) {
	mainnet := NewEDAFactory(ulogger.TestLogger{}, mainNetParams())
	testnet := NewEDAFactory(ulogger.TestLogger{}, &chaincfg.TestNet3Params)

	tests := []struct {
		name     string
		factory  *EDAFactory
		height   int32
		gap      uint32
		prevBits uint32
		expected Kind
	}{
		{"retarget boundary", mainnet, 2016 * 100, 600, testBits, KindDifficultyTransitionPoint},
		{"boundary wins over testnet gap", testnet, 2016 * 100, 1201, testBits, KindDifficultyTransitionPoint},
		{"testnet gap", testnet, 1000, 1201, testBits, KindLastNonMinimalDifficulty},
		{"testnet exactly twenty minutes", testnet, 1000, 1200, testBits, KindEmergencyDifficultyAdjustment},
		{"mainnet gap", mainnet, 1000, 7200, testBits, KindEmergencyDifficultyAdjustment},
		{"minimal parent", mainnet, 1000, 600, 0x1d00ffff, KindMinimalDifficultyNoChanged},
		{"non minimal parent", mainnet, 1000, 600, testBits, KindEmergencyDifficultyAdjustment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := blockAt(t, tt.height-1, 1600000000, tt.prevBits)
			candidate := blockAt(t, tt.height, 1600000000+tt.gap, tt.prevBits)

			assert.Equal(t, []Kind{tt.expected}, tt.factory.RuleChecker(prev, candidate).Kinds())
		})
	}
}

func TestDAAFactory(t *testing.T) {
	mainnet := NewDAAFactory(ulogger.TestLogger{}, mainNetParams())
	testnet := NewDAAFactory(ulogger.TestLogger{}, &chaincfg.TestNet3Params)

	prev := blockAt(t, 1200000, 1600000000, testBits)

	assert.Equal(t, []Kind{KindMinimalDifficulty}, testnet.RuleChecker(prev, blockAt(t, 1200001, 1600001201, testBits)).Kinds())
	assert.Equal(t, []Kind{KindDAA}, testnet.RuleChecker(prev, blockAt(t, 1200001, 1600001200, testBits)).Kinds())
	assert.Equal(t, []Kind{KindDAA}, mainnet.RuleChecker(prev, blockAt(t, 1200001, 1600009999, testBits)).Kinds())
}

func TestIsTestNet(t *testing.T) {
	assert.False(t, newNetworkFactory(mainNetParams(), false).IsTestNet())
	assert.True(t, newNetworkFactory(&chaincfg.TestNet3Params, false).IsTestNet())
	assert.True(t, NewDAAFactory(ulogger.TestLogger{}, &chaincfg.RegressionNetParams).IsTestNet())
	assert.False(t, NewEDAFactory(ulogger.TestLogger{}, &chaincfg.StnParams).IsTestNet())
}

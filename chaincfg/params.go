// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/headerchain/errors"
)

// These variables are the chain proof-of-work limit parameters for each default
// network.
var (
	// bigOne is 1 represented as a big.Int.  It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowLimit is the highest proof of work value a Bitcoin block can
	// have for the main network.  It is the value 2^224 - 1.
	mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	// regressionPowLimit is the highest proof of work value a Bitcoin block
	// can have for the regression test network.  It is the value 2^255 - 1.
	regressionPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	// testNet3PowLimit is the highest proof of work value a Bitcoin block
	// can have for the test network (version 3).  It is the value
	// 2^224 - 1.
	testNet3PowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

	// stnPowLimit is the highest proof of work value a Bitcoin block can
	// have for the scaling test network. It is the value 2^224 - 1.
	stnPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)
)

// Checkpoint identifies a known good point in the block chain.
type Checkpoint struct {
	Height int32
	Hash   *chainhash.Hash
}

// Params defines a Bitcoin network by the parameters the proof-of-work rules
// and the chain builder depend on.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisHeader is the 80 byte serialized header of the first block.
	GenesisHeader []byte

	// GenesisHash is the starting block hash.
	GenesisHash *chainhash.Hash

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.
	PowLimit *big.Int

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// BIP0034Height is the height from which the coinbase must push the
	// block height.
	BIP0034Height int32

	// DAAUpdateHeight is the first height validated by the fixed window
	// difficulty adjustment algorithm. Candidates below it are validated by
	// the emergency difficulty adjustment rules.
	DAAUpdateHeight int32

	// TargetTimespan is the desired amount of time that should elapse
	// before the block difficulty requirement is examined to determine how
	// it should be changed in order to maintain the desired block
	// generation rate.
	TargetTimespan time.Duration

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// RetargetAdjustmentFactor is the adjustment factor used to limit
	// the minimum and maximum amount of adjustment that can occur between
	// difficulty retargets.
	RetargetAdjustmentFactor int64

	// ReduceMinDifficulty defines whether the network should reduce the
	// minimum required difficulty after a long enough period of time has
	// passed without finding a block.  This is really only useful for test
	// networks and should not be set on a main network.
	ReduceMinDifficulty bool

	// NoDifficultyAdjustment defines whether the network should skip the
	// normal difficulty adjustment and keep the current difficulty.
	NoDifficultyAdjustment bool

	// MinDiffReductionTime is the amount of time after which the minimum
	// required difficulty should be reduced when a block hasn't been found.
	//
	// NOTE: This only applies if ReduceMinDifficulty is true.
	MinDiffReductionTime time.Duration

	// Checkpoints ordered from oldest to newest.
	Checkpoints []Checkpoint
}

// Checkpoint returns the checkpoint at height, or nil if there is none.
func (p *Params) Checkpoint(height int32) *Checkpoint {
	i, found := slices.BinarySearchFunc(p.Checkpoints, height, func(c Checkpoint, h int32) int {
		return cmp.Compare(c.Height, h)
	})
	if !found {
		return nil
	}

	return &p.Checkpoints[i]
}

// BlocksPerRetarget is the number of blocks between legacy difficulty retargets.
func (p *Params) BlocksPerRetarget() int32 {
	return int32(p.TargetTimespan / p.TargetTimePerBlock)
}

// MainNetParams defines the network parameters for the main Bitcoin network.
var MainNetParams = Params{
	Name: "mainnet",

	// Chain parameters
	GenesisHeader:  genesisHeader,
	GenesisHash:    &genesisHash,
	PowLimit:       mainPowLimit,
	PowLimitBits:   0x1d00ffff,
	BIP0034Height:  227931, // 000000000000024b89b42a942fe0d9fea3bb44ab7bd1b19115dd6a759c0808b8

	DAAUpdateHeight: 504032,

	TargetTimespan:           time.Hour * 24 * 14, // 14 days
	TargetTimePerBlock:       time.Minute * 10,    // 10 minutes
	RetargetAdjustmentFactor: 4,                   // 25% less, 400% more
	ReduceMinDifficulty:      false,
	NoDifficultyAdjustment:   false,
	MinDiffReductionTime:     0,

	// Checkpoints ordered from oldest to newest.
	Checkpoints: []Checkpoint{
		{11111, newHashFromStr("0000000069e244f73d78e8fd29ba2fd2ed618bd6fa2ee92559f542fdb26e7c1d")},
		{33333, newHashFromStr("000000002dd5588a74784eaa7ab0507a18ad16a236e7b1ce69f00d7ddfb5d0a6")},
		{74000, newHashFromStr("0000000000573993a3c9e41ce34471c079dcf5f52a0e824a81e7f953b8661a20")},
		{105000, newHashFromStr("00000000000291ce28027faea320c8d2b054b2e0fe44a773f3eefb151d6bdc97")},
		{134444, newHashFromStr("00000000000005b12ffd4cd315cd34ffd4a594f430ac814c91184a0d42d2b0fe")},
		{168000, newHashFromStr("000000000000099e61ea72015e79632f216fe6cb33d7899acb35b75c8303b763")},
		{193000, newHashFromStr("000000000000059f452a5f7340de6682a977387c17010ff6e6c3bd83ca8b1317")},
		{210000, newHashFromStr("000000000000048b95347e83192f69cf0366076336c639f9b7228e9ba171342e")},
		{216116, newHashFromStr("00000000000001b4f4b433e81ee46494af945cf96014816a4e2370f11b23df4e")},
		{225430, newHashFromStr("00000000000001c108384350f74090433e7fcf79a606b8e797f065b130575932")},
		{250000, newHashFromStr("000000000000003887df1f29024b06fc2200b55f8af8f35453d7be294df2d214")},
		{267300, newHashFromStr("000000000000000a83fbd660e918f218bf37edd92b748ad940483c7c116179ac")},
		{279000, newHashFromStr("0000000000000001ae8c72a0b0c301f67e3afca10e819efa9041e458e9bd7e40")},
		{300255, newHashFromStr("0000000000000000162804527c6e9b9f0563a280525f9d08c12041def0a0f3b2")},
		{319400, newHashFromStr("000000000000000021c6052e9becade189495d1c539aa37c58917305fd15f13b")},
		{343185, newHashFromStr("0000000000000000072b8bf361d01a6ba7d445dd024203fafc78768ed4368554")},
		{352940, newHashFromStr("000000000000000010755df42dba556bb72be6a32f3ce0b6941ce4430152c9ff")},
		{382320, newHashFromStr("00000000000000000a8dc6ed5b133d0eb2fd6af56203e4159789b092defd8ab2")},
		{400000, newHashFromStr("000000000000000004ec466ce4732fe6f1ed1cddc2ed4b328fff5224276e3f6f")},
		{430000, newHashFromStr("000000000000000001868b2bb3a285f3cc6b33ea234eb70facf4dcdf22186b87")},
		{470000, newHashFromStr("0000000000000000006c539c722e280a0769abd510af0073430159d71e6d7589")},
		{510000, newHashFromStr("00000000000000000367922b6457e21d591ef86b360d78a598b14c2f1f6b0e04")},
		{552979, newHashFromStr("0000000000000000015648768ac1b788a83187d706f858919fcc5c096b76fbf2")},
		{556767, newHashFromStr("000000000000000001d956714215d96ffc00e0afda4cd0a96c96f8d802b1662b")},
	},
}

// StnParams defines the network parameters for the scaling test network. It
// shares its genesis block with testnet3 and has the DAA active from height 1.
var StnParams = Params{
	Name: "stn",

	// Chain parameters
	GenesisHeader:  testNet3GenesisHeader,
	GenesisHash:    &testNet3GenesisHash,
	PowLimit:       stnPowLimit,
	PowLimitBits:   0x1d00ffff,
	BIP0034Height:  100000000, // Not active - Permit ver 1 blocks

	DAAUpdateHeight: 1,

	TargetTimespan:           time.Hour * 24 * 14, // 14 days
	TargetTimePerBlock:       time.Minute * 10,    // 10 minutes
	RetargetAdjustmentFactor: 4,                   // 25% less, 400% more
	ReduceMinDifficulty:      false,
	NoDifficultyAdjustment:   false,
	MinDiffReductionTime:     time.Minute * 20, // TargetTimePerBlock * 2
}

// RegressionNetParams defines the network parameters for the regression test
// Bitcoin network.  Not to be confused with the test Bitcoin network (version
// 3), this network is sometimes simply called "testnet".
var RegressionNetParams = Params{
	Name: "regtest",

	// Chain parameters
	GenesisHeader:  regTestGenesisHeader,
	GenesisHash:    &regTestGenesisHash,
	PowLimit:       regressionPowLimit,
	PowLimitBits:   0x207fffff,
	BIP0034Height:  100000000, // Not active - Permit ver 1 blocks

	DAAUpdateHeight: 2201,

	TargetTimespan:           time.Hour * 24 * 14, // 14 days
	TargetTimePerBlock:       time.Minute * 10,    // 10 minutes
	RetargetAdjustmentFactor: 4,                   // 25% less, 400% more
	ReduceMinDifficulty:      true,
	NoDifficultyAdjustment:   true,
	MinDiffReductionTime:     time.Minute * 20, // TargetTimePerBlock * 2
}

// TestNet3Params defines the network parameters for the test Bitcoin network
// (version 3).
var TestNet3Params = Params{
	Name: "testnet3",

	// Chain parameters
	GenesisHeader:  testNet3GenesisHeader,
	GenesisHash:    &testNet3GenesisHash,
	PowLimit:       testNet3PowLimit,
	PowLimitBits:   0x1d00ffff,
	BIP0034Height:  21111, // 0000000023b3a96d3484e5abb3755c413e7d41500f8e2a5c3f0dd01299cd8ef8

	DAAUpdateHeight: 1188698,

	TargetTimespan:           time.Hour * 24 * 14, // 14 days
	TargetTimePerBlock:       time.Minute * 10,    // 10 minutes
	RetargetAdjustmentFactor: 4,                   // 25% less, 400% more
	ReduceMinDifficulty:      true,
	NoDifficultyAdjustment:   false,
	MinDiffReductionTime:     time.Minute * 20, // TargetTimePerBlock * 2

	// Checkpoints ordered from oldest to newest.
	Checkpoints: []Checkpoint{
		{546, newHashFromStr("000000002a936ca763904c3c35fce2f3556c559c0214345d31b1bcebf76acb70")},
		{100000, newHashFromStr("00000000009e2958c15ff9290d571bf9459e93b19765c6801ddeccadbb160a1e")},
		{200000, newHashFromStr("0000000000287bffd321963ef05feab753ebe274e1d78b2fd4e2bfe9ad3aa6f2")},
		{300001, newHashFromStr("0000000000004829474748f3d1bc8fcf893c88be255e6d7f571c548aff57abf4")},
		{400002, newHashFromStr("0000000005e2c73b8ecb82ae2dbc2e8274614ebad7172b53528aba7501f5a089")},
	},
}

// newHashFromStr converts the passed big-endian hex string into a
// chainhash.Hash.  It panics on an error since it will only (and must only)
// be called with hard-coded, and therefore known good, hashes.
func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}

	return hash
}

// GetChainParams returns the parameters of a network by name.
func GetChainParams(network string) (*Params, error) {
	switch network {
	case "mainnet":
		return &MainNetParams, nil
	case "testnet", "testnet3":
		return &TestNet3Params, nil
	case "regtest":
		return &RegressionNetParams, nil
	case "stn":
		return &StnParams, nil
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unknown network %s", network))
	}
}

package pow

import (
	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/bsv-blockchain/headerchain/settings"
	"github.com/bsv-blockchain/headerchain/ulogger"
)

// Factory picks the rules a candidate must pass on top of prev. Both blocks
// must carry chain info.
type Factory interface {
	RuleChecker(prev, candidate *model.LiteBlock) *Pool
	IsTestNet() bool
}

type baseFactory struct {
	logger ulogger.Logger
	params *chaincfg.Params
}

// IsTestNet reports whether the network allows minimal difficulty blocks
// after a long enough gap.
func (f *baseFactory) IsTestNet() bool {
	return f.params.ReduceMinDifficulty
}

// AllowMinDifficultyBlock reports whether candidate may be mined at minimal
// difficulty because it is more than MinDiffReductionTime younger than prev.
func (f *baseFactory) AllowMinDifficultyBlock(prev, candidate *model.LiteBlock) bool {
	if !f.IsTestNet() {
		return false
	}

	return int64(candidate.Timestamp()) > int64(prev.Timestamp())+seconds(f.params.MinDiffReductionTime)
}

// DAAFactory builds the rules for blocks validated by the fixed window difficulty algorithm.
type DAAFactory struct {
	baseFactory
}

func NewDAAFactory(logger ulogger.Logger, params *chaincfg.Params) *DAAFactory {
	return &DAAFactory{baseFactory{logger: logger, params: params}}
}

func (f *DAAFactory) RuleChecker(prev, candidate *model.LiteBlock) *Pool {
	if f.AllowMinDifficultyBlock(prev, candidate) {
		return NewPool(NewMinimalDifficultyRule(f.params))
	}

	return NewPool(NewDAARule(f.params))
}

// EDAFactory builds the rules for blocks before the DAA activation.
type EDAFactory struct {
	baseFactory
}

func NewEDAFactory(logger ulogger.Logger, params *chaincfg.Params) *EDAFactory {
	return &EDAFactory{baseFactory{logger: logger, params: params}}
}

func (f *EDAFactory) RuleChecker(prev, candidate *model.LiteBlock) *Pool {
	switch {
	case candidate.Height()%f.params.BlocksPerRetarget() == 0:
		return NewPool(NewDifficultyTransitionPointRule(f.params))

	case f.AllowMinDifficultyBlock(prev, candidate):
		return NewPool(NewLastNonMinimalDifficultyRule(f.params))

	case prev.Bits().Uint32() == f.params.PowLimitBits:
		return NewPool(NewMinimalDifficultyNoChangedRule(f.params))

	default:
		return NewPool(NewEmergencyDifficultyAdjustmentRule(f.params))
	}
}

// NetworkFactory selects the DAA or EDA rules by candidate height and
// optionally checks each header against its own target first.
type NetworkFactory struct {
	baseFactory
	daa              *DAAFactory
	eda              *EDAFactory
	checkProofOfWork bool
}

func NewNetworkFactory(logger ulogger.Logger, tSettings *settings.Settings) *NetworkFactory {
	initPrometheusMetrics()

	logger = logger.New("pow")
	params := tSettings.ChainCfgParams

	return &NetworkFactory{
		baseFactory:      baseFactory{logger: logger, params: params},
		daa:              NewDAAFactory(logger, params),
		eda:              NewEDAFactory(logger, params),
		checkProofOfWork: tSettings.Difficulty.CheckProofOfWork,
	}
}

func (f *NetworkFactory) RuleChecker(prev, candidate *model.LiteBlock) *Pool {
	var (
		pool   *Pool
		family string
	)

	if candidate.Height() >= f.params.DAAUpdateHeight {
		pool, family = f.daa.RuleChecker(prev, candidate), "daa"
	} else {
		pool, family = f.eda.RuleChecker(prev, candidate), "eda"
	}

	prometheusFamilySelections.WithLabelValues(family).Inc()

	var first []Rule

	if f.checkProofOfWork {
		first = append(first, NewProofOfWorkRule(f.params))
	}

	if f.params.Checkpoint(candidate.Height()) != nil {
		first = append(first, NewCheckpointRule(f.params))
	}

	if len(first) > 0 {
		pool = NewPool(append(first, pool.rules...)...)
	}

	f.logger.Debugf("[pow] %s rules %v for block %s at height %d", family, pool.Kinds(), candidate.Hash(), candidate.Height())

	return pool
}

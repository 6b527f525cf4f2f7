package pow

import (
	"context"
	"math/big"
	"time"

	"github.com/bsv-blockchain/headerchain/chaincfg"
	"github.com/bsv-blockchain/headerchain/errors"
	"github.com/bsv-blockchain/headerchain/model"
	"github.com/bsv-blockchain/headerchain/services/blockchain"
	blockchain_store "github.com/bsv-blockchain/headerchain/stores/blockchain"
	"github.com/bsv-blockchain/headerchain/util/work"
)

const (
	// DifficultyAdjustmentWindow is the number of blocks the DAA averages over.
	DifficultyAdjustmentWindow = 144

	// emergencyAdjustmentWindow is the number of blocks whose median time span
	// triggers an emergency adjustment.
	emergencyAdjustmentWindow = 6
	emergencyAdjustmentSpan   = 12 * 60 * 60
)

func checkBits(kind Kind, candidate *model.LiteBlock, expected uint32) error {
	received := candidate.Bits().Uint32()
	if received != expected {
		return errors.NewDifficultyError(candidate.Height(), expected, received, "%s rule rejected block %s", kind, candidate.Hash())
	}

	return nil
}

func capAtPowLimit(target *big.Int, params *chaincfg.Params) *big.Int {
	if target.Cmp(params.PowLimit) > 0 {
		return new(big.Int).Set(params.PowLimit)
	}

	return target
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

// ProofOfWorkRule checks that the candidate hash meets the target encoded in its own bits.
type ProofOfWorkRule struct {
	rule
	params *chaincfg.Params
}

func NewProofOfWorkRule(params *chaincfg.Params) *ProofOfWorkRule {
	return &ProofOfWorkRule{params: params}
}

func (r *ProofOfWorkRule) Kind() Kind { return KindProofOfWork }

func (r *ProofOfWorkRule) CheckRules(_ context.Context, _, candidate *model.LiteBlock, _ blockchain_store.AncestorLookup) error {
	if !candidate.Header().HasValidProofOfWork(r.params) {
		return errors.NewVerificationError("block %s at height %d does not meet its target %s", candidate.Hash(), candidate.Height(), candidate.Bits())
	}

	return nil
}

// CheckpointRule rejects a candidate at a checkpoint height whose hash is not
// the checkpointed one.
type CheckpointRule struct {
	rule
	params *chaincfg.Params
}

func NewCheckpointRule(params *chaincfg.Params) *CheckpointRule {
	return &CheckpointRule{params: params}
}

func (r *CheckpointRule) Kind() Kind { return KindCheckpoint }

func (r *CheckpointRule) CheckRules(_ context.Context, _, candidate *model.LiteBlock, _ blockchain_store.AncestorLookup) error {
	checkpoint := r.params.Checkpoint(candidate.Height())
	if checkpoint == nil {
		return nil
	}

	if hash := candidate.Hash(); !hash.IsEqual(checkpoint.Hash) {
		return errors.NewVerificationError("block %s at height %d does not match checkpoint %s", hash, candidate.Height(), checkpoint.Hash)
	}

	return nil
}

// DifficultyTransitionPointRule recomputes the target at a retarget boundary
// from the time the previous interval took.
type DifficultyTransitionPointRule struct {
	rule
	params *chaincfg.Params
}

func NewDifficultyTransitionPointRule(params *chaincfg.Params) *DifficultyTransitionPointRule {
	return &DifficultyTransitionPointRule{params: params}
}

func (r *DifficultyTransitionPointRule) Kind() Kind { return KindDifficultyTransitionPoint }

func (r *DifficultyTransitionPointRule) CheckRules(ctx context.Context, prev, candidate *model.LiteBlock, lookup blockchain_store.AncestorLookup) error {
	expected, err := r.nextWorkRequired(ctx, prev, lookup)
	if err != nil {
		return err
	}

	return checkBits(r.Kind(), candidate, expected)
}

func (r *DifficultyTransitionPointRule) nextWorkRequired(ctx context.Context, prev *model.LiteBlock, lookup blockchain_store.AncestorLookup) (uint32, error) {
	if r.params.NoDifficultyAdjustment {
		return prev.Bits().Uint32(), nil
	}

	first, err := blockchain.RelativeAncestor(ctx, prev, int(r.params.BlocksPerRetarget())-1, lookup)
	if err != nil {
		return 0, err
	}

	targetTimespan := seconds(r.params.TargetTimespan)
	minTimespan := targetTimespan / r.params.RetargetAdjustmentFactor
	maxTimespan := targetTimespan * r.params.RetargetAdjustmentFactor

	timespan := int64(prev.Timestamp()) - int64(first.Timestamp())
	if timespan < minTimespan {
		timespan = minTimespan
	} else if timespan > maxTimespan {
		timespan = maxTimespan
	}

	newTarget := work.CompactToBig(prev.Bits().Uint32())
	newTarget.Mul(newTarget, big.NewInt(timespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))

	return work.BigToCompact(capAtPowLimit(newTarget, r.params)), nil
}

// MinimalDifficultyRule requires the lowest difficulty the network allows.
type MinimalDifficultyRule struct {
	rule
	params *chaincfg.Params
}

func NewMinimalDifficultyRule(params *chaincfg.Params) *MinimalDifficultyRule {
	return &MinimalDifficultyRule{params: params}
}

func (r *MinimalDifficultyRule) Kind() Kind { return KindMinimalDifficulty }

func (r *MinimalDifficultyRule) CheckRules(_ context.Context, _, candidate *model.LiteBlock, _ blockchain_store.AncestorLookup) error {
	return checkBits(r.Kind(), candidate, r.params.PowLimitBits)
}

// LastNonMinimalDifficultyRule accepts the minimal difficulty or the bits of
// the nearest ancestor that was not mined at minimal difficulty. The search
// stops at a retarget boundary.
type LastNonMinimalDifficultyRule struct {
	rule
	params *chaincfg.Params
}

func NewLastNonMinimalDifficultyRule(params *chaincfg.Params) *LastNonMinimalDifficultyRule {
	return &LastNonMinimalDifficultyRule{params: params}
}

func (r *LastNonMinimalDifficultyRule) Kind() Kind { return KindLastNonMinimalDifficulty }

func (r *LastNonMinimalDifficultyRule) CheckRules(ctx context.Context, prev, candidate *model.LiteBlock, lookup blockchain_store.AncestorLookup) error {
	if candidate.Bits().Uint32() == r.params.PowLimitBits {
		return nil
	}

	blocksPerRetarget := r.params.BlocksPerRetarget()

	current := prev
	for current.Height()%blocksPerRetarget != 0 && current.Bits().Uint32() == r.params.PowLimitBits {
		parent, err := blockchain.RelativeAncestor(ctx, current, 1, lookup)
		if err != nil {
			return err
		}

		current = parent
	}

	return checkBits(r.Kind(), candidate, current.Bits().Uint32())
}

// EmergencyDifficultyAdjustmentRule lowers the difficulty by a quarter when
// the last six blocks took twelve hours or more by median time, and otherwise
// keeps it unchanged.
type EmergencyDifficultyAdjustmentRule struct {
	rule
	params *chaincfg.Params
}

func NewEmergencyDifficultyAdjustmentRule(params *chaincfg.Params) *EmergencyDifficultyAdjustmentRule {
	return &EmergencyDifficultyAdjustmentRule{params: params}
}

func (r *EmergencyDifficultyAdjustmentRule) Kind() Kind { return KindEmergencyDifficultyAdjustment }

func (r *EmergencyDifficultyAdjustmentRule) CheckRules(ctx context.Context, prev, candidate *model.LiteBlock, lookup blockchain_store.AncestorLookup) error {
	expected, err := r.nextWorkRequired(ctx, prev, lookup)
	if err != nil {
		return err
	}

	return checkBits(r.Kind(), candidate, expected)
}

func (r *EmergencyDifficultyAdjustmentRule) nextWorkRequired(ctx context.Context, prev *model.LiteBlock, lookup blockchain_store.AncestorLookup) (uint32, error) {
	prevBits := prev.Bits().Uint32()

	if prev.Height() < emergencyAdjustmentWindow {
		return prevBits, nil
	}

	ancestor, err := blockchain.RelativeAncestor(ctx, prev, emergencyAdjustmentWindow, lookup)
	if err != nil {
		return 0, err
	}

	mtpPrev, err := blockchain.MedianTimePast(ctx, prev, lookup)
	if err != nil {
		return 0, err
	}

	mtpAncestor, err := blockchain.MedianTimePast(ctx, ancestor, lookup)
	if err != nil {
		return 0, err
	}

	if mtpPrev-mtpAncestor < emergencyAdjustmentSpan {
		return prevBits, nil
	}

	target := work.CompactToBig(prevBits)
	target.Add(target, new(big.Int).Rsh(target, 2))

	return work.BigToCompact(capAtPowLimit(target, r.params)), nil
}

// MinimalDifficultyNoChangedRule requires the candidate to keep the bits of its
// parent. The factory uses it once the parent is already at minimal difficulty.
type MinimalDifficultyNoChangedRule struct {
	rule
	params *chaincfg.Params
}

func NewMinimalDifficultyNoChangedRule(params *chaincfg.Params) *MinimalDifficultyNoChangedRule {
	return &MinimalDifficultyNoChangedRule{params: params}
}

func (r *MinimalDifficultyNoChangedRule) Kind() Kind { return KindMinimalDifficultyNoChanged }

func (r *MinimalDifficultyNoChangedRule) CheckRules(_ context.Context, prev, candidate *model.LiteBlock, _ blockchain_store.AncestorLookup) error {
	return checkBits(r.Kind(), candidate, prev.Bits().Uint32())
}

// DAARule recomputes the target from the work done and the time taken over the
// last 144 blocks, measured between median-of-three suitable blocks.
type DAARule struct {
	rule
	params *chaincfg.Params
}

func NewDAARule(params *chaincfg.Params) *DAARule {
	return &DAARule{params: params}
}

func (r *DAARule) Kind() Kind { return KindDAA }

func (r *DAARule) CheckRules(ctx context.Context, prev, candidate *model.LiteBlock, lookup blockchain_store.AncestorLookup) error {
	expected, err := r.nextWorkRequired(ctx, prev, lookup)
	if err != nil {
		return err
	}

	return checkBits(r.Kind(), candidate, expected)
}

func (r *DAARule) nextWorkRequired(ctx context.Context, prev *model.LiteBlock, lookup blockchain_store.AncestorLookup) (uint32, error) {
	if r.params.NoDifficultyAdjustment {
		return prev.Bits().Uint32(), nil
	}

	// the first suitable block needs two parents below the window start
	if prev.Height() < DifficultyAdjustmentWindow+2 {
		return r.params.PowLimitBits, nil
	}

	last, err := blockchain.SuitableBlock(ctx, prev, lookup)
	if err != nil {
		return 0, err
	}

	windowStart, err := blockchain.RelativeAncestor(ctx, prev, DifficultyAdjustmentWindow, lookup)
	if err != nil {
		return 0, err
	}

	first, err := blockchain.SuitableBlock(ctx, windowStart, lookup)
	if err != nil {
		return 0, err
	}

	return work.BigToCompact(r.computeTarget(first, last)), nil
}

func (r *DAARule) computeTarget(first, last *model.LiteBlock) *big.Int {
	spacing := seconds(r.params.TargetTimePerBlock)

	projectedWork := new(big.Int).Sub(last.ChainWork(), first.ChainWork())
	projectedWork.Mul(projectedWork, big.NewInt(spacing))

	timespan := int64(last.Timestamp()) - int64(first.Timestamp())
	if timespan > 288*spacing {
		timespan = 288 * spacing
	} else if timespan < 72*spacing {
		timespan = 72 * spacing
	}

	projectedWork.Div(projectedWork, big.NewInt(timespan))

	if projectedWork.Sign() <= 0 {
		return new(big.Int).Set(r.params.PowLimit)
	}

	// (2^256 - work) / work
	target := work.MaxTarget()
	target.Sub(target, projectedWork)
	target.Div(target, projectedWork)

	return capAtPowLimit(target, r.params)
}

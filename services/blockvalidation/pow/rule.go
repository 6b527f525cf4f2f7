// Package pow checks the difficulty bits of a candidate block against the
// rules of its network. A Factory picks the rules for a candidate and returns
// them as an ordered Pool.
package pow

import (
	"context"
	"time"

	"github.com/bsv-blockchain/headerchain/model"
	blockchain_store "github.com/bsv-blockchain/headerchain/stores/blockchain"
)

// Kind identifies a rule. The set is closed.
type Kind int

const (
	KindProofOfWork Kind = iota + 1
	KindDifficultyTransitionPoint
	KindMinimalDifficulty
	KindLastNonMinimalDifficulty
	KindEmergencyDifficultyAdjustment
	KindMinimalDifficultyNoChanged
	KindDAA
	KindCheckpoint
)

func (k Kind) String() string {
	switch k {
	case KindProofOfWork:
		return "ProofOfWork"
	case KindDifficultyTransitionPoint:
		return "DifficultyTransitionPoint"
	case KindMinimalDifficulty:
		return "MinimalDifficulty"
	case KindLastNonMinimalDifficulty:
		return "LastNonMinimalDifficulty"
	case KindEmergencyDifficultyAdjustment:
		return "EmergencyDifficultyAdjustment"
	case KindMinimalDifficultyNoChanged:
		return "MinimalDifficultyNoChanged"
	case KindDAA:
		return "DAA"
	case KindCheckpoint:
		return "Checkpoint"
	default:
		return "Unknown"
	}
}

// Rule validates one property of candidate given its parent prev. Both blocks
// carry chain info, i.e. candidate was placed on prev with BuildNextInChain.
// Ancestors of prev are read through lookup. A violation is a verification
// error; store failures are returned unchanged.
type Rule interface {
	Kind() Kind
	CheckRules(ctx context.Context, prev, candidate *model.LiteBlock, lookup blockchain_store.AncestorLookup) error

	sealed()
}

// rule is embedded by every Rule implementation to close the set.
type rule struct{}

func (rule) sealed() {}

// Pool runs its rules in insertion order and stops at the first failure.
// Later rules may rely on earlier ones having passed.
type Pool struct {
	rules []Rule
}

func NewPool(rules ...Rule) *Pool {
	initPrometheusMetrics()

	return &Pool{rules: append([]Rule(nil), rules...)}
}

func (p *Pool) Add(r Rule) *Pool {
	p.rules = append(p.rules, r)
	return p
}

func (p *Pool) Len() int {
	return len(p.rules)
}

// Kinds lists the kinds of the rules in evaluation order.
func (p *Pool) Kinds() []Kind {
	kinds := make([]Kind, len(p.rules))
	for i, r := range p.rules {
		kinds[i] = r.Kind()
	}

	return kinds
}

func (p *Pool) CheckRules(ctx context.Context, prev, candidate *model.LiteBlock, lookup blockchain_store.AncestorLookup) error {
	initPrometheusMetrics()

	for _, r := range p.rules {
		start := time.Now()
		err := r.CheckRules(ctx, prev, candidate, lookup)

		prometheusRuleChecks.WithLabelValues(r.Kind().String()).Inc()
		prometheusRuleDuration.WithLabelValues(r.Kind().String()).Observe(time.Since(start).Seconds())

		if err != nil {
			prometheusRuleFailures.WithLabelValues(r.Kind().String()).Inc()
			return err
		}
	}

	return nil
}

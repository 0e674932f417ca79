// Package strategy implements the rebalancing policies shared by the forward
// simulator and the backtester. A strategy maps the current weight vector
// (and optionally a covariance estimate) to a new target weight vector.
package strategy

import (
	"fmt"

	"github.com/wonny/investsim/backend/internal/simconfig"
)

// Strategy is the shared rebalancing contract. Implementations are stateless
// beyond their construction-time parameters; the base weight vector is
// read-only context.
type Strategy interface {
	// Initialize returns the starting weight vector (a copy, safe to mutate).
	Initialize() []float64

	// Rebalance maps current weights to new target weights. covariance may be
	// nil when no estimate is available. The returned vector is non-negative
	// and sums to 1.
	Rebalance(current []float64, covariance [][]float64) ([]float64, error)
}

// Build constructs a strategy from its config tag. baseWeights must be
// normalized (sum 1) and assetVols must be in the same canonical asset order.
func Build(cfg simconfig.StrategyConfig, baseWeights, assetVols []float64) (Strategy, error) {
	if len(baseWeights) == 0 {
		return nil, fmt.Errorf("base weights must not be empty")
	}
	if len(baseWeights) != len(assetVols) {
		return nil, fmt.Errorf("base weights and asset volatilities length mismatch: %d vs %d", len(baseWeights), len(assetVols))
	}

	base := base{weights: cloneWeights(baseWeights)}

	switch cfg.Name {
	case simconfig.StrategyFixed:
		return &FixedAllocation{base}, nil
	case simconfig.StrategyTargetRisk:
		return newTargetRisk(base, assetVols, cfg.TargetVolatility), nil
	case simconfig.StrategyAdaptive:
		return &AdaptiveRebalance{base: base, threshold: cfg.RebalanceThreshold}, nil
	case simconfig.StrategyEqualWeight:
		return &EqualWeight{base}, nil
	case simconfig.StrategyRiskParity:
		return &RiskParity{base: base, assetVols: cloneWeights(assetVols)}, nil
	case simconfig.StrategyMinVariance:
		return &MinimumVariance{base}, nil
	case simconfig.StrategyMomentum:
		return newMomentum(base, cfg), nil
	case simconfig.StrategyMeanReversion:
		return newMeanReversion(base, cfg), nil
	default:
		return nil, simconfig.ValidationError{Field: "strategy.name", Message: fmt.Sprintf("unknown strategy %q", cfg.Name)}
	}
}

// base carries the precomputed target weight vector shared by all variants.
type base struct {
	weights []float64
}

func (b base) Initialize() []float64 {
	return cloneWeights(b.weights)
}

func cloneWeights(w []float64) []float64 {
	out := make([]float64, len(w))
	copy(out, w)
	return out
}

// normalize clips negative components to zero and rescales to sum 1.
// Fails when nothing positive remains.
func normalize(weights []float64) ([]float64, error) {
	out := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		out[i] = w
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("weight sum must be > 0")
	}
	for i := range out {
		out[i] /= total
	}
	return out, nil
}

func equalWeights(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0 / float64(n)
	}
	return out
}

package strategy

import (
	"math"

	"github.com/wonny/investsim/backend/internal/simconfig"
)

// =============================================================================
// FixedAllocation
// =============================================================================

// FixedAllocation always reverts fully to the base target weights.
type FixedAllocation struct {
	base
}

func (s *FixedAllocation) Rebalance(current []float64, covariance [][]float64) ([]float64, error) {
	return s.Initialize(), nil
}

// =============================================================================
// TargetRisk
// =============================================================================

// TargetRisk scales the allocation down when the implied volatility of the
// base weights exceeds the target, parking the residual in the
// lowest-volatility asset.
type TargetRisk struct {
	base
	assetVols []float64
	targetVol float64
	cashIndex int // argmin of per-asset volatility, found once at construction
}

func newTargetRisk(b base, assetVols []float64, target *float64) *TargetRisk {
	s := &TargetRisk{base: b, assetVols: cloneWeights(assetVols)}

	s.cashIndex = 0
	for i, v := range assetVols {
		if v < assetVols[s.cashIndex] {
			s.cashIndex = i
		}
	}

	if target != nil {
		s.targetVol = *target
	} else {
		// Default: the base allocation's implied volatility, assuming
		// uncorrelated assets.
		s.targetVol = s.impliedVol(b.weights)
	}
	return s
}

func (s *TargetRisk) impliedVol(weights []float64) float64 {
	sumSq := 0.0
	for i, w := range weights {
		wv := w * s.assetVols[i]
		sumSq += wv * wv
	}
	return math.Sqrt(sumSq)
}

func (s *TargetRisk) Rebalance(current []float64, covariance [][]float64) ([]float64, error) {
	weights := s.Initialize()
	currentVol := s.impliedVol(weights)
	if currentVol <= s.targetVol {
		return weights, nil
	}

	scale := s.targetVol / currentVol
	for i := range weights {
		weights[i] *= scale
	}
	residual := 1.0
	for _, w := range weights {
		residual -= w
	}
	if residual > 0 {
		weights[s.cashIndex] += residual
	}
	return normalize(weights)
}

// =============================================================================
// AdaptiveRebalance
// =============================================================================

// AdaptiveRebalance snaps fully back to base weights when any asset's
// absolute deviation exceeds the threshold; otherwise weights pass through.
type AdaptiveRebalance struct {
	base
	threshold float64
}

func (s *AdaptiveRebalance) Rebalance(current []float64, covariance [][]float64) ([]float64, error) {
	for i, w := range current {
		if math.Abs(w-s.weights[i]) > s.threshold {
			return s.Initialize(), nil
		}
	}
	return cloneWeights(current), nil
}

// =============================================================================
// EqualWeight
// =============================================================================

// EqualWeight ignores base weights entirely; always 1/N.
type EqualWeight struct {
	base
}

func (s *EqualWeight) Rebalance(current []float64, covariance [][]float64) ([]float64, error) {
	return equalWeights(len(current)), nil
}

// =============================================================================
// RiskParity
// =============================================================================

// RiskParity weights each asset proportionally to 1/volatility. Static:
// independent of current weights and covariance.
type RiskParity struct {
	base
	assetVols []float64
}

func (s *RiskParity) Rebalance(current []float64, covariance [][]float64) ([]float64, error) {
	weights := make([]float64, len(s.assetVols))
	for i, v := range s.assetVols {
		weights[i] = 1.0 / math.Max(v, 1e-6) // floor avoids division blowup
	}
	return normalize(weights)
}

// =============================================================================
// MinimumVariance
// =============================================================================

// MinimumVariance computes w = (Σ⁻¹·1)/(1ᵀ·Σ⁻¹·1). Falls back to equal
// weight when the covariance matrix is absent, empty, or singular.
type MinimumVariance struct {
	base
}

func (s *MinimumVariance) Rebalance(current []float64, covariance [][]float64) ([]float64, error) {
	if len(covariance) == 0 {
		return equalWeights(len(current)), nil
	}

	inv, ok := invertMatrix(covariance)
	if !ok {
		return equalWeights(len(current)), nil
	}

	// Row sums of Σ⁻¹ are Σ⁻¹·1.
	weights := make([]float64, len(inv))
	total := 0.0
	for i, row := range inv {
		for _, v := range row {
			weights[i] += v
		}
		total += weights[i]
	}
	if total == 0 {
		return equalWeights(len(current)), nil
	}
	for i := range weights {
		weights[i] /= total
	}
	return normalize(weights)
}

// invertMatrix inverts a square matrix via Gauss-Jordan elimination with
// partial pivoting. Reports ok=false for singular matrices.
func invertMatrix(m [][]float64) ([][]float64, bool) {
	n := len(m)
	aug := make([][]float64, n)
	for i := range aug {
		if len(m[i]) != n {
			return nil, false
		}
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, false
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pv := aug[col][col]
		for j := 0; j < 2*n; j++ {
			aug[col][j] /= pv
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := aug[row][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < 2*n; j++ {
				aug[row][j] -= factor * aug[col][j]
			}
		}
	}

	inv := make([][]float64, n)
	for i := range inv {
		inv[i] = aug[i][n:]
	}
	return inv, true
}

// =============================================================================
// Momentum
// =============================================================================

// Momentum accepts a lookback period count and blend factor. The reference
// behavior returns base weights; the trailing-return tilt needs return
// history the engines do not feed the strategy layer yet.
// TODO: tilt weights by a trailing-return ranking once the engines expose
// per-period return history to strategies.
type Momentum struct {
	base
	lookback int
	factor   float64
}

func newMomentum(b base, cfg simconfig.StrategyConfig) *Momentum {
	s := &Momentum{base: b, lookback: 20, factor: 0.5}
	if cfg.MomentumLookback != nil {
		s.lookback = *cfg.MomentumLookback
	}
	if cfg.MomentumFactor != nil {
		s.factor = *cfg.MomentumFactor
	}
	return s
}

func (s *Momentum) Rebalance(current []float64, covariance [][]float64) ([]float64, error) {
	return normalize(s.Initialize())
}

// =============================================================================
// MeanReversion
// =============================================================================

// MeanReversion pulls weights partway back toward the base allocation:
// new = current + (base - current) * speed. A first-order exponential
// reversion, not an instant snap.
type MeanReversion struct {
	base
	speed float64
}

func newMeanReversion(b base, cfg simconfig.StrategyConfig) *MeanReversion {
	s := &MeanReversion{base: b, speed: 0.3}
	if cfg.ReversionSpeed != nil {
		s.speed = *cfg.ReversionSpeed
	}
	return s
}

func (s *MeanReversion) Rebalance(current []float64, covariance [][]float64) ([]float64, error) {
	weights := make([]float64, len(current))
	for i, w := range current {
		weights[i] = w + (s.weights[i]-w)*s.speed
	}
	return normalize(weights)
}

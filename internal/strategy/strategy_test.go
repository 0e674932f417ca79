package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/investsim/backend/internal/simconfig"
)

func assertWeightsSumToOne(t *testing.T, weights []float64) {
	t.Helper()
	sum := 0.0
	for _, w := range weights {
		require.GreaterOrEqual(t, w, 0.0, "weights must be non-negative")
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "weights must sum to 1")
}

func TestAllStrategiesProduceValidWeights(t *testing.T) {
	names := []string{
		simconfig.StrategyFixed,
		simconfig.StrategyTargetRisk,
		simconfig.StrategyAdaptive,
		simconfig.StrategyEqualWeight,
		simconfig.StrategyRiskParity,
		simconfig.StrategyMinVariance,
		simconfig.StrategyMomentum,
		simconfig.StrategyMeanReversion,
	}
	cov := [][]float64{
		{0.04, 0.01},
		{0.01, 0.02},
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			cfg := simconfig.DefaultStrategyConfig()
			cfg.Name = name
			s, err := Build(cfg, []float64{0.6, 0.4}, []float64{0.15, 0.05})
			require.NoError(t, err)

			assertWeightsSumToOne(t, s.Initialize())

			weights, err := s.Rebalance([]float64{0.7, 0.3}, cov)
			require.NoError(t, err)
			assertWeightsSumToOne(t, weights)

			// 공분산이 없어도 동작해야 한다
			weights, err = s.Rebalance([]float64{0.5, 0.5}, nil)
			require.NoError(t, err)
			assertWeightsSumToOne(t, weights)
		})
	}
}

func TestBuildUnknownStrategy(t *testing.T) {
	_, err := Build(simconfig.StrategyConfig{Name: "martingale"}, []float64{1}, []float64{0.1})
	require.Error(t, err)

	var verr simconfig.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "strategy.name", verr.Field)
}

func TestBuildLengthMismatch(t *testing.T) {
	_, err := Build(simconfig.StrategyConfig{Name: simconfig.StrategyFixed}, []float64{0.5, 0.5}, []float64{0.1})
	require.Error(t, err)
}

func TestFixedAllocation(t *testing.T) {
	base := []float64{0.6, 0.4}
	s, err := Build(simconfig.StrategyConfig{Name: simconfig.StrategyFixed}, base, []float64{0.15, 0.05})
	require.NoError(t, err)

	// 현재 가중치와 무관하게 항상 base로 복귀
	weights, err := s.Rebalance([]float64{0.9, 0.1}, nil)
	require.NoError(t, err)
	assert.Equal(t, base, weights)

	// Initialize는 복사본: 수정해도 내부 상태가 바뀌지 않는다
	init := s.Initialize()
	init[0] = 0
	again, err := s.Rebalance([]float64{0.9, 0.1}, nil)
	require.NoError(t, err)
	assert.Equal(t, base, again)
}

func TestTargetRiskScalesDown(t *testing.T) {
	target := 0.05
	cfg := simconfig.StrategyConfig{Name: simconfig.StrategyTargetRisk, TargetVolatility: &target}
	s, err := Build(cfg, []float64{0.8, 0.2}, []float64{0.20, 0.01})
	require.NoError(t, err)

	weights, err := s.Rebalance([]float64{0.8, 0.2}, nil)
	require.NoError(t, err)
	assertWeightsSumToOne(t, weights)

	// 초과 리스크는 최저 변동성 자산(index 1)으로 이동
	assert.Less(t, weights[0], 0.8)
	assert.Greater(t, weights[1], 0.2)
}

func TestTargetRiskBelowTarget(t *testing.T) {
	target := 10.0 // 도달 불가능하게 높은 목표
	cfg := simconfig.StrategyConfig{Name: simconfig.StrategyTargetRisk, TargetVolatility: &target}
	s, err := Build(cfg, []float64{0.6, 0.4}, []float64{0.15, 0.05})
	require.NoError(t, err)

	weights, err := s.Rebalance([]float64{0.5, 0.5}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.6, 0.4}, weights)
}

func TestAdaptiveRebalance(t *testing.T) {
	cfg := simconfig.StrategyConfig{Name: simconfig.StrategyAdaptive, RebalanceThreshold: 0.05}
	s, err := Build(cfg, []float64{0.6, 0.4}, []float64{0.15, 0.05})
	require.NoError(t, err)

	// 편차가 임계값 이내면 현재 가중치 유지
	hold, err := s.Rebalance([]float64{0.62, 0.38}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.62, 0.38}, hold)

	// 임계값 초과 시 base로 복귀
	snap, err := s.Rebalance([]float64{0.70, 0.30}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.6, 0.4}, snap)
}

func TestEqualWeight(t *testing.T) {
	s, err := Build(simconfig.StrategyConfig{Name: simconfig.StrategyEqualWeight}, []float64{0.9, 0.05, 0.05}, []float64{0.1, 0.1, 0.1})
	require.NoError(t, err)

	weights, err := s.Rebalance([]float64{0.5, 0.3, 0.2}, nil)
	require.NoError(t, err)
	for _, w := range weights {
		assert.InDelta(t, 1.0/3.0, w, 1e-12)
	}
}

func TestRiskParity(t *testing.T) {
	s, err := Build(simconfig.StrategyConfig{Name: simconfig.StrategyRiskParity}, []float64{0.5, 0.5}, []float64{0.20, 0.05})
	require.NoError(t, err)

	weights, err := s.Rebalance([]float64{0.5, 0.5}, nil)
	require.NoError(t, err)
	assertWeightsSumToOne(t, weights)

	// 1/vol 비례: 0.05 자산이 0.20 자산의 4배
	assert.InDelta(t, 4.0, weights[1]/weights[0], 1e-9)
}

func TestMinimumVariance(t *testing.T) {
	s, err := Build(simconfig.StrategyConfig{Name: simconfig.StrategyMinVariance}, []float64{0.5, 0.5}, []float64{0.2, 0.1})
	require.NoError(t, err)

	// 대각 공분산: w_i ∝ 1/σ_i² → [0.2, 0.8]
	cov := [][]float64{
		{0.04, 0},
		{0, 0.01},
	}
	weights, err := s.Rebalance([]float64{0.5, 0.5}, cov)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, weights[0], 1e-9)
	assert.InDelta(t, 0.8, weights[1], 1e-9)
}

func TestMinimumVarianceSingularFallback(t *testing.T) {
	s, err := Build(simconfig.StrategyConfig{Name: simconfig.StrategyMinVariance}, []float64{0.5, 0.5}, []float64{0.2, 0.1})
	require.NoError(t, err)

	// 특이 행렬 → 균등 가중치 fallback
	singular := [][]float64{
		{0.04, 0.04},
		{0.04, 0.04},
	}
	weights, err := s.Rebalance([]float64{0.5, 0.5}, singular)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, weights)

	// 공분산 자체가 없어도 균등 가중치
	weights, err = s.Rebalance([]float64{0.9, 0.1}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, weights)
}

func TestInvertMatrix(t *testing.T) {
	m := [][]float64{
		{4, 7},
		{2, 6},
	}
	inv, ok := invertMatrix(m)
	require.True(t, ok)

	// A * A⁻¹ = I
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			got := 0.0
			for k := 0; k < 2; k++ {
				got += m[i][k] * inv[k][j]
			}
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, got, 1e-9)
		}
	}

	_, ok = invertMatrix([][]float64{{1, 2}, {2, 4}})
	assert.False(t, ok, "singular matrix must not invert")
}

func TestMomentumReturnsBase(t *testing.T) {
	lookback := 10
	factor := 0.7
	cfg := simconfig.StrategyConfig{
		Name:             simconfig.StrategyMomentum,
		MomentumLookback: &lookback,
		MomentumFactor:   &factor,
	}
	s, err := Build(cfg, []float64{0.6, 0.4}, []float64{0.15, 0.05})
	require.NoError(t, err)

	weights, err := s.Rebalance([]float64{0.8, 0.2}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, weights[0], 1e-12)
	assert.InDelta(t, 0.4, weights[1], 1e-12)
}

func TestMeanReversion(t *testing.T) {
	speed := 0.5
	cfg := simconfig.StrategyConfig{Name: simconfig.StrategyMeanReversion, ReversionSpeed: &speed}
	s, err := Build(cfg, []float64{0.6, 0.4}, []float64{0.15, 0.05})
	require.NoError(t, err)

	// new = current + (base-current)*0.5
	weights, err := s.Rebalance([]float64{0.8, 0.2}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, weights[0], 1e-12)
	assert.InDelta(t, 0.3, weights[1], 1e-12)
}

func TestNormalizeClipsNegatives(t *testing.T) {
	out, err := normalize([]float64{-0.5, 1.0, 1.0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0])
	assert.InDelta(t, 0.5, out[1], 1e-12)
	assert.InDelta(t, 0.5, out[2], 1e-12)

	_, err = normalize([]float64{-1, 0, math.Copysign(0, -1)})
	require.Error(t, err, "all-nonpositive weights must fail")
}

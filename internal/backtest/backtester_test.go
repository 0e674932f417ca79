package backtest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/investsim/backend/internal/marketdata"
	"github.com/wonny/investsim/backend/internal/simconfig"
)

func testConfig() simconfig.BacktestConfig {
	cfg := simconfig.DefaultBacktestConfig()
	cfg.InitialBalance = 100_000
	cfg.AssetWeights = map[string]float64{"stocks": 1}
	return cfg
}

func priceTable(t *testing.T, columns []string, prices [][]float64) *marketdata.Table {
	t.Helper()
	dates := make([]time.Time, len(prices))
	for i := range dates {
		dates[i] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	table, err := marketdata.NewTable(dates, columns, prices)
	require.NoError(t, err)
	return table
}

func TestRunSingleAsset(t *testing.T) {
	bt, err := New(testConfig(), nil)
	require.NoError(t, err)

	prices := priceTable(t, []string{"stocks"}, [][]float64{{100}, {110}, {99}})
	result, err := bt.Run(context.Background(), prices)
	require.NoError(t, err)

	// 100k × 1.10 × 0.90
	require.Len(t, result.PortfolioValues, 3)
	assert.Equal(t, 100_000.0, result.PortfolioValues[0])
	assert.InDelta(t, 110_000, result.PortfolioValues[1], 1e-9)
	assert.InDelta(t, 99_000, result.PortfolioValues[2], 1e-9)

	// 기간 수익률 시계열 (index 0은 항상 0)
	require.Len(t, result.Returns, 3)
	assert.Equal(t, 0.0, result.Returns[0])
	assert.InDelta(t, 0.10, result.Returns[1], 1e-12)
	assert.InDelta(t, -0.10, result.Returns[2], 1e-12)

	assert.InDelta(t, -0.01, result.TotalReturn(), 1e-12)
}

func TestRunMissingAssets(t *testing.T) {
	cfg := testConfig()
	cfg.AssetWeights = map[string]float64{"stocks": 0.5, "crypto": 0.5}
	bt, err := New(cfg, nil)
	require.NoError(t, err)

	prices := priceTable(t, []string{"stocks"}, [][]float64{{100}, {110}})
	_, err = bt.Run(context.Background(), prices)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crypto")
}

func TestRunInsufficientData(t *testing.T) {
	bt, err := New(testConfig(), nil)
	require.NoError(t, err)

	prices := priceTable(t, []string{"stocks"}, [][]float64{{100}})
	_, err = bt.Run(context.Background(), prices)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 price rows")
}

func TestRunRebalancesToTarget(t *testing.T) {
	cfg := testConfig()
	cfg.AssetWeights = map[string]float64{"bonds": 0.5, "stocks": 0.5}
	cfg.RebalanceFrequency = 1
	bt, err := New(cfg, nil)
	require.NoError(t, err)

	// stocks만 상승: 리밸런싱 없이는 가중치가 틀어진다
	prices := priceTable(t, []string{"bonds", "stocks"}, [][]float64{
		{100, 100},
		{100, 120},
		{100, 140},
	})
	result, err := bt.Run(context.Background(), prices)
	require.NoError(t, err)

	// fixed 전략 + 매 기간 리밸런싱 → 항상 목표 가중치로 복귀
	for _, weights := range result.WeightsHistory {
		assert.InDelta(t, 0.5, weights[0], 1e-9)
		assert.InDelta(t, 0.5, weights[1], 1e-9)
	}
}

func TestRunWithContributions(t *testing.T) {
	cfg := testConfig()
	cfg.ContributionPlan = simconfig.ContributionPlan{AnnualContribution: 365_250, Frequency: 12}
	bt, err := New(cfg, nil)
	require.NoError(t, err)

	// 가격 변동 없음: 최종 가치 = 초기 + 납입 총액
	prices := priceTable(t, []string{"stocks"}, [][]float64{{100}, {100}, {100}})
	result, err := bt.Run(context.Background(), prices)
	require.NoError(t, err)

	final := result.PortfolioValues[len(result.PortfolioValues)-1]
	assert.Greater(t, final, 100_000.0)
}

func TestResultMetrics(t *testing.T) {
	bt, err := New(testConfig(), nil)
	require.NoError(t, err)

	prices := priceTable(t, []string{"stocks"}, [][]float64{{100}, {102}, {101}, {104}})
	result, err := bt.Run(context.Background(), prices)
	require.NoError(t, err)

	metrics := result.RiskMetrics(0.02)

	assert.InDelta(t, 0.04, metrics.TotalReturn, 1e-12)
	assert.Greater(t, metrics.Volatility, 0.0)
	assert.LessOrEqual(t, metrics.MaxDrawdown, 0.0, "drawdown reported as a negative number")

	// 연환산: 3일 경과 → (1.04)^(365.25/3) - 1 근사
	years := 3.0 / 365.25
	want := math.Pow(1.04, 1/years) - 1
	assert.InDelta(t, want, metrics.AnnualizedReturn, 1e-6)
}

func TestResultValueAtRisk(t *testing.T) {
	bt, err := New(testConfig(), nil)
	require.NoError(t, err)

	prices := priceTable(t, []string{"stocks"}, [][]float64{{100}, {95}, {97}, {94}})
	result, err := bt.Run(context.Background(), prices)
	require.NoError(t, err)

	varResult, err := result.ValueAtRisk(0.95)
	require.NoError(t, err)
	assert.Greater(t, varResult.VaR, 0.0)
	assert.GreaterOrEqual(t, varResult.CVaR, varResult.VaR)

	_, err = result.ValueAtRisk(1.5)
	require.Error(t, err)
}

func TestEstimatePeriodsPerYear(t *testing.T) {
	// 일간 데이터 → ~365
	daily := make([]time.Time, 31)
	for i := range daily {
		daily[i] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	got := estimatePeriodsPerYear(daily)
	assert.InDelta(t, 365, got, 1)

	// 월간 데이터 → ~12
	monthly := make([]time.Time, 13)
	for i := range monthly {
		monthly[i] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
	}
	got = estimatePeriodsPerYear(monthly)
	assert.InDelta(t, 12, got, 1)

	// 퇴화 입력은 252 기본값
	assert.Equal(t, 252, estimatePeriodsPerYear(nil))
}

package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/investsim/backend/internal/risk"
	"github.com/wonny/investsim/backend/internal/simconfig"
)

// Result is the immutable outcome of a backtest. All series share the date
// index: length = input periods + 1, with index 0 the pre-trade state.
type Result struct {
	Dates           []time.Time              `json:"dates"`
	PortfolioValues []float64                `json:"portfolio_values"`
	WeightsHistory  [][]float64              `json:"weights_history"`
	Returns         []float64                `json:"returns"` // Returns[0] == 0
	AssetNames      []string                 `json:"asset_names"`
	Config          simconfig.BacktestConfig `json:"config"`
}

// TotalReturn is (final - initial) / initial.
func (r *Result) TotalReturn() float64 {
	initial := r.Config.InitialBalance
	final := r.PortfolioValues[len(r.PortfolioValues)-1]
	return (final - initial) / initial
}

// AnnualizedReturn compounds the total return over the elapsed calendar
// years (days / 365.25).
func (r *Result) AnnualizedReturn() float64 {
	years := r.elapsedYears()
	if years <= 0 {
		return 0
	}
	return math.Pow(1+r.TotalReturn(), 1/years) - 1
}

// Volatility annualizes the period-return standard deviation with sqrt(252).
// The 252 factor assumes daily-equivalent data regardless of the actual
// inferred frequency; AnnualizedReturn uses calendar time instead. Known
// inconsistency, preserved deliberately.
func (r *Result) Volatility() float64 {
	if len(r.Returns) < 3 {
		return 0
	}
	return risk.StdDev(r.Returns[1:]) * math.Sqrt(252)
}

// SharpeRatio is (annualized return - risk-free) / volatility, 0 when the
// volatility is 0.
func (r *Result) SharpeRatio(riskFreeRate float64) float64 {
	vol := r.Volatility()
	if vol == 0 {
		return 0
	}
	return (r.AnnualizedReturn() - riskFreeRate) / vol
}

// MaxDrawdown is the minimum of (value - peak) / peak over time: 0 when the
// path never dips, negative otherwise.
func (r *Result) MaxDrawdown() float64 {
	maxDD := 0.0
	peak := r.PortfolioValues[0]
	for _, value := range r.PortfolioValues {
		if value > peak {
			peak = value
		}
		if peak > 0 {
			if dd := (value - peak) / peak; dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// ValueAtRisk computes historical-simulation VaR/CVaR over the realized
// period-return series (losses positive).
func (r *Result) ValueAtRisk(confidence float64) (risk.VaRResult, error) {
	if confidence <= 0 || confidence >= 1 {
		return risk.VaRResult{}, fmt.Errorf("confidence must be in (0, 1), got %v", confidence)
	}
	return risk.ReturnVaR(r.Returns[1:], confidence), nil
}

// Metrics bundles the standard performance summary.
type Metrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
}

// RiskMetrics computes the full performance summary at once.
func (r *Result) RiskMetrics(riskFreeRate float64) Metrics {
	return Metrics{
		TotalReturn:      r.TotalReturn(),
		AnnualizedReturn: r.AnnualizedReturn(),
		Volatility:       r.Volatility(),
		SharpeRatio:      r.SharpeRatio(riskFreeRate),
		MaxDrawdown:      r.MaxDrawdown(),
	}
}

func (r *Result) elapsedYears() float64 {
	first := r.Dates[0]
	last := r.Dates[len(r.Dates)-1]
	return last.Sub(first).Hours() / 24 / 365.25
}

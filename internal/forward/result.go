package forward

import (
	"sort"
	"time"

	"github.com/wonny/investsim/backend/internal/risk"
	"github.com/wonny/investsim/backend/internal/simconfig"
)

// Result is the immutable outcome of a forward simulation.
// Trajectories is (num_trials × periods+1): the trial axis is independent,
// the time axis causally ordered. WeightsHistory is (periods+1 × num_assets).
type Result struct {
	RunID          string                     `json:"run_id"`
	RunDate        time.Time                  `json:"run_date"`
	TimelineYears  []float64                  `json:"timeline_years"`
	Trajectories   [][]float64                `json:"trajectories"`
	WeightsHistory [][]float64                `json:"weights_history"`
	Config         simconfig.SimulationConfig `json:"config"`
	InputModel     *simconfig.InputModel      `json:"input_model,omitempty"`
}

// QuantileTable holds per-timestep percentiles of the trajectory fan,
// indexed by year offset. Values[p][step] is the probs[p] quantile at step.
type QuantileTable struct {
	Years  []float64   `json:"years"`
	Probs  []float64   `json:"probs"`
	Values [][]float64 `json:"values"`
}

// Quantiles computes the requested probability levels at every timestep.
func (r *Result) Quantiles(probs []float64) QuantileTable {
	steps := len(r.TimelineYears)
	table := QuantileTable{
		Years:  r.TimelineYears,
		Probs:  append([]float64(nil), probs...),
		Values: make([][]float64, len(probs)),
	}
	for p := range table.Values {
		table.Values[p] = make([]float64, steps)
	}

	column := make([]float64, len(r.Trajectories))
	for step := 0; step < steps; step++ {
		for t, trajectory := range r.Trajectories {
			column[t] = trajectory[step]
		}
		sort.Float64s(column)
		for p, prob := range probs {
			pct := prob * 100
			if pct < 0 {
				pct = 0
			}
			if pct > 100 {
				pct = 100
			}
			table.Values[p][step] = risk.Percentile(column, pct)
		}
	}
	return table
}

// FinalDistribution returns the portfolio value of every trial at the last
// timestep.
func (r *Result) FinalDistribution() []float64 {
	final := make([]float64, len(r.Trajectories))
	for t, trajectory := range r.Trajectories {
		final[t] = trajectory[len(trajectory)-1]
	}
	return final
}

// MaxDrawdownSeries returns, per trial, the maximum fractional decline from
// that trial's own running peak (0 = never below peak, 1 = wiped out).
func (r *Result) MaxDrawdownSeries() []float64 {
	out := make([]float64, len(r.Trajectories))
	for t, trajectory := range r.Trajectories {
		peak := 0.0
		maxDD := 0.0
		for _, value := range trajectory {
			if value > peak {
				peak = value
			}
			ratio := 1.0
			if peak > 0 {
				ratio = value / peak
			}
			if dd := 1 - ratio; dd > maxDD {
				maxDD = dd
			}
		}
		out[t] = maxDD
	}
	return out
}

// RiskMetrics summarizes tail risk of the final-value distribution.
// level is the left-tail probability (0.05 = VaR95).
type RiskMetrics struct {
	ValueAtRisk            float64 `json:"value_at_risk"`
	ConditionalValueAtRisk float64 `json:"conditional_value_at_risk"`
	MaxDrawdown            float64 `json:"max_drawdown"` // median across trials
}

// RiskMetrics computes VaR/CVaR against the initial balance plus the median
// per-trial max drawdown.
func (r *Result) RiskMetrics(level float64) (RiskMetrics, error) {
	tail, err := risk.SummarizeTailRisk(r.FinalDistribution(), r.Config.InitialBalance, level)
	if err != nil {
		return RiskMetrics{}, err
	}
	return RiskMetrics{
		ValueAtRisk:            tail.ValueAtRisk,
		ConditionalValueAtRisk: tail.ConditionalValueAtRisk,
		MaxDrawdown:            risk.Quantile(r.MaxDrawdownSeries(), 0.5),
	}, nil
}

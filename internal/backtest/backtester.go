// Package backtest replays a rebalancing strategy against realized
// historical prices: a single deterministic path over the same strategy
// abstraction the forward simulator uses.
package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wonny/investsim/backend/internal/marketdata"
	"github.com/wonny/investsim/backend/internal/risk"
	"github.com/wonny/investsim/backend/internal/simconfig"
	"github.com/wonny/investsim/backend/internal/strategy"
	"github.com/wonny/investsim/backend/pkg/logger"
)

// covarianceWindow is the maximum trailing window (in periods) used to
// estimate the covariance handed to the strategy at rebalance time.
const covarianceWindow = 20

// Placeholder assumptions used only to satisfy strategy construction; the
// replay itself uses realized returns, never these.
const (
	adapterExpectedReturn = 0.08
	adapterVolatility     = 0.15
)

// Backtester replays one strategy over one historical price path.
type Backtester struct {
	config     simconfig.BacktestConfig
	strategy   strategy.Strategy
	assetNames []string
	log        *logger.Logger
}

// New validates the config and builds the strategy adapter. Asset order is
// the sorted-name order from the config.
func New(cfg simconfig.BacktestConfig, log *logger.Logger) (*Backtester, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	names := cfg.AssetNames()
	normalized := cfg.NormalizedWeights()
	baseWeights := make([]float64, len(names))
	vols := make([]float64, len(names))
	for i, name := range names {
		baseWeights[i] = normalized[name]
		vols[i] = adapterVolatility
	}

	strat, err := strategy.Build(cfg.Strategy, baseWeights, vols)
	if err != nil {
		return nil, err
	}

	return &Backtester{
		config:     cfg,
		strategy:   strat,
		assetNames: names,
		log:        log,
	}, nil
}

// Run replays the strategy over the price table. Deterministic given input
// prices; fails before running when assets are missing or fewer than 2 price
// rows are available.
func (b *Backtester) Run(ctx context.Context, prices *marketdata.Table) (*Result, error) {
	selected, err := prices.Select(b.assetNames)
	if err != nil {
		return nil, err
	}
	if selected.NumRows() < 2 {
		return nil, fmt.Errorf("historical data needs at least 2 price rows, got %d", selected.NumRows())
	}

	dates := selected.Dates()
	periodReturns := selected.SimpleReturns()
	numAssets := len(b.assetNames)
	numPeriods := len(periodReturns)

	b.log.WithFields(map[string]interface{}{
		"assets":    numAssets,
		"periods":   numPeriods,
		"strategy":  b.config.Strategy.Name,
		"rebalance": b.config.RebalanceFrequency,
	}).Info("Starting backtest")

	weights := b.strategy.Initialize()
	assetValues := make([]float64, numAssets)
	for i := range assetValues {
		assetValues[i] = b.config.InitialBalance * weights[i]
	}

	contribution := b.contributionPerPeriod(dates, numPeriods)

	portfolioValues := make([]float64, numPeriods+1)
	portfolioValues[0] = b.config.InitialBalance
	weightsHistory := make([][]float64, numPeriods+1)
	weightsHistory[0] = copyVec(weights)
	portfolioReturns := make([]float64, numPeriods+1) // index 0 stays 0

	for i := 0; i < numPeriods; i++ {
		if contribution > 0 {
			for j := range assetValues {
				assetValues[j] += contribution * weights[j]
			}
		}

		for j := range assetValues {
			assetValues[j] *= 1 + periodReturns[i][j]
		}

		portfolioValue := 0.0
		for _, v := range assetValues {
			portfolioValue += v
		}

		if (i+1)%b.config.RebalanceFrequency == 0 {
			current := copyVec(weights)
			if portfolioValue > 0 {
				for j := range current {
					current[j] = assetValues[j] / portfolioValue
				}
			}

			var covariance [][]float64
			window := covarianceWindow
			if i+1 < window {
				window = i + 1
			}
			if window > 1 {
				covariance = risk.Covariance(periodReturns[i-window+1 : i+1])
			}

			weights, err = b.strategy.Rebalance(current, covariance)
			if err != nil {
				return nil, fmt.Errorf("rebalance at period %d: %w", i+1, err)
			}
			for j := range assetValues {
				assetValues[j] = portfolioValue * weights[j]
			}
		}

		portfolioValues[i+1] = portfolioValue
		weightsHistory[i+1] = copyVec(weights)
		if prev := portfolioValues[i]; prev > 0 {
			portfolioReturns[i+1] = (portfolioValue - prev) / prev
		}
	}

	result := &Result{
		Dates:           dates,
		PortfolioValues: portfolioValues,
		WeightsHistory:  weightsHistory,
		Returns:         portfolioReturns,
		AssetNames:      b.assetNames,
		Config:          b.config,
	}

	b.log.WithFields(map[string]interface{}{
		"final_value":  fmt.Sprintf("%.2f", portfolioValues[numPeriods]),
		"total_return": fmt.Sprintf("%.2f%%", result.TotalReturn()*100),
	}).Info("Backtest completed")

	return result, nil
}

// contributionPerPeriod recomputes the contribution pro-rata when the plan's
// frequency does not match the data frequency inferred from the date index.
func (b *Backtester) contributionPerPeriod(dates []time.Time, numPeriods int) float64 {
	plan := b.config.ContributionPlan
	perPeriod := plan.PeriodicContribution()
	if perPeriod <= 0 {
		return 0
	}

	inferred := estimatePeriodsPerYear(dates)
	if plan.Frequency != inferred {
		perPeriod = plan.AnnualContribution / float64(inferred)
	}
	return perPeriod
}

// estimatePeriodsPerYear infers the data frequency from elapsed calendar
// time. Defaults to 252 trading days when the index is degenerate.
func estimatePeriodsPerYear(dates []time.Time) int {
	if len(dates) < 2 {
		return 252
	}
	totalDays := dates[len(dates)-1].Sub(dates[0]).Hours() / 24
	if totalDays <= 0 {
		return 252
	}
	years := totalDays / 365.25
	periods := float64(len(dates) - 1)
	return int(math.Round(periods / years))
}

func copyVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

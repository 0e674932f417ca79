// Package forward implements the Monte Carlo wealth projector: multi-trial,
// multi-period simulation of a contributing, periodically rebalanced
// portfolio under an assumed or externally fitted return distribution.
package forward

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/investsim/backend/internal/returns"
	"github.com/wonny/investsim/backend/internal/risk"
	"github.com/wonny/investsim/backend/internal/simconfig"
	"github.com/wonny/investsim/backend/internal/strategy"
	"github.com/wonny/investsim/backend/pkg/logger"
)

// PeriodsPerYear is the forward engine's fixed monthly granularity.
const PeriodsPerYear = 12

// Simulator runs one forward Monte Carlo simulation per instance.
type Simulator struct {
	config     simconfig.SimulationConfig
	strategy   strategy.Strategy
	rng        *rand.Rand
	inputModel *simconfig.InputModel
	log        *logger.Logger

	periodMean []float64
	periodVol  []float64

	// resolved caches the (dist name, params) pair per asset so the hot loop
	// never re-dispatches the scalar/list/map parameter forms.
	resolved []assetDistribution
}

type assetDistribution struct {
	distName string
	params   returns.Params
}

// New validates the config and resolves the strategy plus per-asset
// distribution specs. seed != 0 makes the run reproducible.
func New(cfg simconfig.SimulationConfig, seed int64, inputModel *simconfig.InputModel, log *logger.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if inputModel != nil {
		if err := inputModel.Validate(); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = logger.Nop()
	}

	strat, err := strategy.Build(cfg.Strategy, cfg.NormalizedWeights(), cfg.AssetVolatilities())
	if err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Simulator{
		config:     cfg,
		strategy:   strat,
		rng:        rng,
		inputModel: inputModel,
		log:        log,
		periodMean: make([]float64, len(cfg.Assets)),
		periodVol:  make([]float64, len(cfg.Assets)),
	}
	for i, asset := range cfg.Assets {
		s.periodMean[i] = annualToPeriodic(asset.ExpectedReturn)
		s.periodVol[i] = asset.Volatility / math.Sqrt(PeriodsPerYear)
	}

	if err := s.resolveDistributions(); err != nil {
		return nil, err
	}
	return s, nil
}

// annualToPeriodic converts an annual return to its monthly equivalent.
func annualToPeriodic(annual float64) float64 {
	return math.Pow(1+annual, 1.0/PeriodsPerYear) - 1
}

// resolveDistributions builds the cached per-asset spec, applying the input
// model override on top of the config-derived mean/vol baseline.
func (s *Simulator) resolveDistributions() error {
	numAssets := len(s.config.Assets)
	s.resolved = make([]assetDistribution, numAssets)

	for i, asset := range s.config.Assets {
		mean := s.periodMean[i]
		vol := s.periodVol[i]
		params := returns.Params{Mean: &mean, Vol: &vol}
		distName := returns.DistNormal

		if s.inputModel != nil {
			if s.inputModel.DistName != "" {
				distName = s.inputModel.DistName
			}
			for key, value := range s.inputModel.Params {
				resolved, err := value.Resolve(i, asset.Name, numAssets)
				if err != nil {
					return fmt.Errorf("resolve input model for asset %q: %w", asset.Name, err)
				}
				v := resolved
				switch key {
				case "mean":
					params.Mean = &v
				case "vol":
					params.Vol = &v
				case "df":
					params.DF = &v
				case "scale":
					params.Scale = &v
				default:
					return simconfig.ValidationError{
						Field:   "input_model.params." + key,
						Message: "unknown distribution parameter",
					}
				}
			}
			if len(s.inputModel.HistoricalReturns) > 0 {
				params.HistoricalReturns = s.inputModel.HistoricalReturns
			}
		}

		s.resolved[i] = assetDistribution{distName: distName, params: params}
	}
	return nil
}

// Run executes the simulation and returns the immutable result.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	numTrials := s.config.NumTrials
	numAssets := len(s.config.Assets)
	periods := s.config.Years * PeriodsPerYear

	s.log.WithFields(map[string]interface{}{
		"trials":   numTrials,
		"periods":  periods,
		"assets":   numAssets,
		"strategy": s.config.Strategy.Name,
	}).Info("Starting forward simulation")

	timeline := make([]float64, periods+1)
	for i := range timeline {
		timeline[i] = float64(s.config.Years) * float64(i) / float64(periods)
	}

	weights := s.strategy.Initialize()
	weightsHistory := make([][]float64, periods+1)
	weightsHistory[0] = copyVec(weights)

	trajectories := make([][]float64, numTrials)
	assetValues := make([][]float64, numTrials)
	for t := 0; t < numTrials; t++ {
		trajectories[t] = make([]float64, periods+1)
		trajectories[t][0] = s.config.InitialBalance
		assetValues[t] = make([]float64, numAssets)
		for i := 0; i < numAssets; i++ {
			assetValues[t][i] = s.config.InitialBalance * weights[i]
		}
	}

	contribution := s.config.ContributionPlan.PeriodicContribution()
	assetReturns := make([][]float64, numTrials)
	for t := range assetReturns {
		assetReturns[t] = make([]float64, numAssets)
	}
	portfolioValues := make([]float64, numTrials)

	for step := 1; step <= periods; step++ {
		// Contributions split by the current target weights, not the
		// realized per-trial allocation.
		if contribution > 0 {
			for t := 0; t < numTrials; t++ {
				for i := 0; i < numAssets; i++ {
					assetValues[t][i] += contribution * weights[i]
				}
			}
		}

		for i := 0; i < numAssets; i++ {
			spec := s.resolved[i]
			samples, err := returns.Generate(spec.distName, numTrials, spec.params, s.rng)
			if err != nil {
				return nil, fmt.Errorf("asset %q period %d: %w", s.config.Assets[i].Name, step, err)
			}
			for t := 0; t < numTrials; t++ {
				assetReturns[t][i] = samples[t]
				assetValues[t][i] *= 1 + samples[t]
			}
		}

		for t := 0; t < numTrials; t++ {
			total := 0.0
			for i := 0; i < numAssets; i++ {
				total += assetValues[t][i]
			}
			portfolioValues[t] = total
			trajectories[t][step] = total
		}

		if step%s.config.RebalanceFrequency == 0 {
			newWeights, err := s.rebalance(assetValues, portfolioValues, assetReturns)
			if err != nil {
				return nil, fmt.Errorf("rebalance at period %d: %w", step, err)
			}
			weights = newWeights
			for t := 0; t < numTrials; t++ {
				for i := 0; i < numAssets; i++ {
					assetValues[t][i] = portfolioValues[t] * weights[i]
				}
			}
		}

		weightsHistory[step] = copyVec(weights)
	}

	s.log.WithFields(map[string]interface{}{
		"trials":  numTrials,
		"periods": periods,
	}).Info("Forward simulation completed")

	return &Result{
		RunID:          uuid.New().String(),
		RunDate:        time.Now(),
		TimelineYears:  timeline,
		Trajectories:   trajectories,
		WeightsHistory: weightsHistory,
		Config:         s.config,
		InputModel:     s.inputModel,
	}, nil
}

// rebalance feeds the averaged realized weights and this period's return
// covariance into the strategy to get new targets.
func (s *Simulator) rebalance(assetValues [][]float64, portfolioValues []float64, assetReturns [][]float64) ([]float64, error) {
	numTrials := len(assetValues)
	numAssets := len(s.config.Assets)

	average := make([]float64, numAssets)
	for t := 0; t < numTrials; t++ {
		pv := portfolioValues[t]
		for i := 0; i < numAssets; i++ {
			// Trials at or below zero value hold zero weight from here on.
			if pv > 0 {
				average[i] += assetValues[t][i] / pv
			}
		}
	}
	for i := range average {
		average[i] /= float64(numTrials)
	}

	var covariance [][]float64
	if numTrials > 1 {
		covariance = risk.Covariance(assetReturns)
	}

	return s.strategy.Rebalance(average, covariance)
}

func copyVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

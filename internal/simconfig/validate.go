package simconfig

import "fmt"

// ValidationError 검증 실패 (시뮬레이션 실행 전에 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var strategyNames = map[string]bool{
	StrategyFixed:         true,
	StrategyTargetRisk:    true,
	StrategyAdaptive:      true,
	StrategyEqualWeight:   true,
	StrategyRiskParity:    true,
	StrategyMinVariance:   true,
	StrategyMomentum:      true,
	StrategyMeanReversion: true,
}

// Validate checks all SimulationConfig constraints. Runs before any
// simulation executes; a failing config never partially runs.
func (c SimulationConfig) Validate() error {
	if c.Years <= 0 {
		return ValidationError{"years", "must be > 0"}
	}
	if c.InitialBalance <= 0 {
		return ValidationError{"initial_balance", "must be > 0"}
	}
	if c.NumTrials <= 0 {
		return ValidationError{"num_trials", "must be > 0"}
	}
	if c.RebalanceFrequency <= 0 {
		return ValidationError{"rebalance_frequency", "must be > 0"}
	}
	if len(c.Assets) == 0 {
		return ValidationError{"assets", "at least one asset is required"}
	}

	totalWeight := 0.0
	for i, a := range c.Assets {
		if err := a.validate(fmt.Sprintf("assets[%d]", i)); err != nil {
			return err
		}
		totalWeight += a.Weight
	}
	if totalWeight <= 0 {
		return ValidationError{"assets", "weights must sum to > 0"}
	}

	if err := c.ContributionPlan.validate(); err != nil {
		return err
	}
	return c.Strategy.Validate()
}

func (a Asset) validate(field string) error {
	if a.Name == "" {
		return ValidationError{field + ".name", "must not be empty"}
	}
	if a.ExpectedReturn <= -1 {
		return ValidationError{field + ".expected_return", "must be > -1"}
	}
	if a.Volatility <= 0 {
		return ValidationError{field + ".volatility", "must be > 0"}
	}
	if a.Weight < 0 {
		return ValidationError{field + ".weight", "must be >= 0"}
	}
	return nil
}

func (p ContributionPlan) validate() error {
	if p.AnnualContribution < 0 {
		return ValidationError{"contribution_plan.annual_contribution", "must be >= 0"}
	}
	if p.Frequency <= 0 {
		return ValidationError{"contribution_plan.frequency", "must be > 0"}
	}
	return nil
}

// Validate checks the strategy selection and its optional parameters.
func (s StrategyConfig) Validate() error {
	if !strategyNames[s.Name] {
		return ValidationError{"strategy.name", fmt.Sprintf("unknown strategy %q", s.Name)}
	}
	if s.TargetVolatility != nil && *s.TargetVolatility <= 0 {
		return ValidationError{"strategy.target_volatility", "must be > 0"}
	}
	if s.RebalanceThreshold < 0 {
		return ValidationError{"strategy.rebalance_threshold", "must be >= 0"}
	}
	if s.MomentumLookback != nil && *s.MomentumLookback <= 0 {
		return ValidationError{"strategy.momentum_lookback", "must be > 0"}
	}
	if s.MomentumFactor != nil && (*s.MomentumFactor < 0 || *s.MomentumFactor > 1) {
		return ValidationError{"strategy.momentum_factor", "must be in [0, 1]"}
	}
	if s.ReversionSpeed != nil && (*s.ReversionSpeed < 0 || *s.ReversionSpeed > 1) {
		return ValidationError{"strategy.reversion_speed", "must be in [0, 1]"}
	}
	return nil
}

// Validate checks all BacktestConfig constraints.
func (c BacktestConfig) Validate() error {
	if c.InitialBalance <= 0 {
		return ValidationError{"initial_balance", "must be > 0"}
	}
	if c.RebalanceFrequency <= 0 {
		return ValidationError{"rebalance_frequency", "must be > 0"}
	}
	if len(c.AssetWeights) == 0 {
		return ValidationError{"asset_weights", "at least one asset is required"}
	}

	totalWeight := 0.0
	for name, w := range c.AssetWeights {
		if w < 0 {
			return ValidationError{"asset_weights." + name, "must be >= 0"}
		}
		totalWeight += w
	}
	if totalWeight <= 0 {
		return ValidationError{"asset_weights", "weights must sum to > 0"}
	}

	if err := c.ContributionPlan.validate(); err != nil {
		return err
	}
	return c.Strategy.Validate()
}

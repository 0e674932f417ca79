package simconfig

import "sort"

// =============================================================================
// Simulation & Backtest Configuration
// =============================================================================

// Asset is a single asset assumption. Immutable after validation.
type Asset struct {
	Name           string  `yaml:"name" json:"name"`
	ExpectedReturn float64 `yaml:"expected_return" json:"expected_return"` // annual, decimal (0.07 = 7%)
	Volatility     float64 `yaml:"volatility" json:"volatility"`           // annual stddev, decimal
	Weight         float64 `yaml:"weight" json:"weight"`                   // raw target weight, >= 0
}

// ContributionPlan describes a recurring cash contribution.
type ContributionPlan struct {
	AnnualContribution float64 `yaml:"annual_contribution" json:"annual_contribution"`
	Frequency          int     `yaml:"frequency" json:"frequency"` // contributions per year
}

// PeriodicContribution returns the per-period contribution amount.
func (p ContributionPlan) PeriodicContribution() float64 {
	if p.Frequency <= 0 {
		return 0
	}
	return p.AnnualContribution / float64(p.Frequency)
}

// Strategy names. StrategyConfig is a tagged union: only the fields relevant
// to the selected name are meaningful.
const (
	StrategyFixed         = "fixed"
	StrategyTargetRisk    = "target_risk"
	StrategyAdaptive      = "adaptive"
	StrategyEqualWeight   = "equal_weight"
	StrategyRiskParity    = "risk_parity"
	StrategyMinVariance   = "min_variance"
	StrategyMomentum      = "momentum"
	StrategyMeanReversion = "mean_reversion"
)

// StrategyConfig selects and parameterizes a rebalancing strategy.
type StrategyConfig struct {
	Name               string   `yaml:"name" json:"name"`
	TargetVolatility   *float64 `yaml:"target_volatility,omitempty" json:"target_volatility,omitempty"`
	RebalanceThreshold float64  `yaml:"rebalance_threshold" json:"rebalance_threshold"`
	MomentumLookback   *int     `yaml:"momentum_lookback,omitempty" json:"momentum_lookback,omitempty"`
	MomentumFactor     *float64 `yaml:"momentum_factor,omitempty" json:"momentum_factor,omitempty"`
	ReversionSpeed     *float64 `yaml:"reversion_speed,omitempty" json:"reversion_speed,omitempty"`
}

// SimulationConfig configures a forward Monte Carlo run.
type SimulationConfig struct {
	Years              int              `yaml:"years" json:"years"`
	InitialBalance     float64          `yaml:"initial_balance" json:"initial_balance"`
	NumTrials          int              `yaml:"num_trials" json:"num_trials"`
	RebalanceFrequency int              `yaml:"rebalance_frequency" json:"rebalance_frequency"` // in periods
	Assets             []Asset          `yaml:"assets" json:"assets"`
	ContributionPlan   ContributionPlan `yaml:"contribution_plan" json:"contribution_plan"`
	Strategy           StrategyConfig   `yaml:"strategy" json:"strategy"`
}

// DefaultSimulationConfig returns a SimulationConfig prefilled with defaults.
// Loader decodes user input on top of this, so omitted fields keep defaults.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		NumTrials:          500,
		RebalanceFrequency: 12,
		ContributionPlan:   ContributionPlan{Frequency: 12},
		Strategy:           DefaultStrategyConfig(),
	}
}

// DefaultStrategyConfig returns the default strategy selection.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Name:               StrategyFixed,
		RebalanceThreshold: 0.05,
	}
}

// NormalizedWeights returns per-asset weights scaled to sum to 1, in asset
// order. This ordering is the canonical column order for all result arrays.
func (c SimulationConfig) NormalizedWeights() []float64 {
	total := 0.0
	for _, a := range c.Assets {
		total += a.Weight
	}
	weights := make([]float64, len(c.Assets))
	for i, a := range c.Assets {
		weights[i] = a.Weight / total
	}
	return weights
}

// AssetNames returns asset names in canonical column order.
func (c SimulationConfig) AssetNames() []string {
	names := make([]string, len(c.Assets))
	for i, a := range c.Assets {
		names[i] = a.Name
	}
	return names
}

// AssetVolatilities returns annual volatilities in canonical column order.
func (c SimulationConfig) AssetVolatilities() []float64 {
	vols := make([]float64, len(c.Assets))
	for i, a := range c.Assets {
		vols[i] = a.Volatility
	}
	return vols
}

// BacktestConfig configures a historical replay.
type BacktestConfig struct {
	InitialBalance     float64            `yaml:"initial_balance" json:"initial_balance"`
	RebalanceFrequency int                `yaml:"rebalance_frequency" json:"rebalance_frequency"` // in trading periods
	AssetWeights       map[string]float64 `yaml:"asset_weights" json:"asset_weights"`
	ContributionPlan   ContributionPlan   `yaml:"contribution_plan" json:"contribution_plan"`
	Strategy           StrategyConfig     `yaml:"strategy" json:"strategy"`
}

// DefaultBacktestConfig returns a BacktestConfig prefilled with defaults.
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		RebalanceFrequency: 1,
		ContributionPlan:   ContributionPlan{Frequency: 12},
		Strategy:           DefaultStrategyConfig(),
	}
}

// AssetNames returns asset names sorted lexicographically. Go maps are
// unordered, so the sorted order is the canonical column order downstream.
func (c BacktestConfig) AssetNames() []string {
	names := make([]string, 0, len(c.AssetWeights))
	for name := range c.AssetWeights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizedWeights returns the name→weight map scaled to sum to 1.
func (c BacktestConfig) NormalizedWeights() map[string]float64 {
	total := 0.0
	for _, w := range c.AssetWeights {
		total += w
	}
	normalized := make(map[string]float64, len(c.AssetWeights))
	for name, w := range c.AssetWeights {
		normalized[name] = w / total
	}
	return normalized
}

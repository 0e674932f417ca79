// Package margin simulates a short/long option position under a simulated
// underlying path: mark-to-market equity against a SPAN-like margin
// schedule, with path-dependent liquidation detection.
package margin

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/investsim/backend/internal/simconfig"
	"github.com/wonny/investsim/backend/pkg/logger"
)

// marginDenomFloor guards the equity/margin ratio division.
const marginDenomFloor = 1e-8

// Config parameterizes one margin simulation.
type Config struct {
	OptionType            OptionType   `yaml:"option_type" json:"option_type"`
	PositionSide          PositionSide `yaml:"position_side" json:"position_side"`
	Strike                float64      `yaml:"strike" json:"strike"`
	ContractSize          float64      `yaml:"contract_size" json:"contract_size"`
	Spot0                 float64      `yaml:"spot0" json:"spot0"`
	ImpliedVol            float64      `yaml:"implied_vol" json:"implied_vol"`
	RiskFreeRate          float64      `yaml:"risk_free_rate" json:"risk_free_rate"`
	DaysToMaturity        int          `yaml:"days_to_maturity" json:"days_to_maturity"`
	ScanRiskFactor        float64      `yaml:"scan_risk_factor" json:"scan_risk_factor"`
	MinMarginFactor       float64      `yaml:"min_margin_factor" json:"min_margin_factor"`
	MaintenanceMarginRate float64      `yaml:"maintenance_margin_rate" json:"maintenance_margin_rate"`
	DailyReturnMean       float64      `yaml:"daily_return_mean" json:"daily_return_mean"`
	DailyReturnVol        float64      `yaml:"daily_return_vol" json:"daily_return_vol"`
	ReferenceEquity       float64      `yaml:"reference_equity" json:"reference_equity"`
	Seed                  int64        `yaml:"seed" json:"seed"` // 0 = time-based
}

// Validate checks all Config constraints before any path runs.
func (c Config) Validate() error {
	leg := OptionLeg{Type: c.OptionType, Side: c.PositionSide, Strike: c.Strike, ContractSize: c.ContractSize}
	if err := leg.Validate(); err != nil {
		return simconfig.ValidationError{Field: "margin", Message: err.Error()}
	}
	if c.Spot0 <= 0 {
		return simconfig.ValidationError{Field: "margin.spot0", Message: "must be > 0"}
	}
	if c.ImpliedVol <= 0 {
		return simconfig.ValidationError{Field: "margin.implied_vol", Message: "must be > 0"}
	}
	if c.DaysToMaturity < 0 {
		return simconfig.ValidationError{Field: "margin.days_to_maturity", Message: "must be >= 0"}
	}
	if c.ScanRiskFactor < 0 {
		return simconfig.ValidationError{Field: "margin.scan_risk_factor", Message: "must be >= 0"}
	}
	if c.MinMarginFactor < 0 {
		return simconfig.ValidationError{Field: "margin.min_margin_factor", Message: "must be >= 0"}
	}
	if c.MaintenanceMarginRate <= 0 {
		return simconfig.ValidationError{Field: "margin.maintenance_margin_rate", Message: "must be > 0"}
	}
	if c.DailyReturnVol < 0 {
		return simconfig.ValidationError{Field: "margin.daily_return_vol", Message: "must be >= 0"}
	}
	if c.ReferenceEquity <= 0 {
		return simconfig.ValidationError{Field: "margin.reference_equity", Message: "must be > 0"}
	}
	return nil
}

// Simulator owns one margin simulation's configuration. Each Run* call
// derives a fresh generator from the seed, so repeated calls with the same
// seed reproduce the same paths.
type Simulator struct {
	config Config
	log    *logger.Logger
}

// NewSimulator validates the config and returns a simulator.
func NewSimulator(cfg Config, log *logger.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	cfg.Spot0 = math.Max(cfg.Spot0, 1e-6)
	return &Simulator{config: cfg, log: log}, nil
}

func (s *Simulator) leg() OptionLeg {
	return OptionLeg{
		Type:         s.config.OptionType,
		Side:         s.config.PositionSide,
		Strike:       s.config.Strike,
		ContractSize: s.config.ContractSize,
	}
}

func (s *Simulator) rng() *rand.Rand {
	seed := s.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// optionPrice marks the option at a spot level with daysLeft calendar days
// remaining. At or past maturity it is intrinsic.
func (s *Simulator) optionPrice(spot float64, daysLeft int) float64 {
	years := math.Max(float64(daysLeft)/365.0, 0)
	return Price(spot, s.config.Strike, years, s.config.RiskFreeRate, math.Max(s.config.ImpliedVol, 1e-6), s.config.OptionType)
}

// marginRequirement computes the SPAN-like per-position requirement:
// max(premium + scan_risk*spot - OTM, premium + min_margin*spot, 0) * size.
func (s *Simulator) marginRequirement(premium, spot float64) float64 {
	var otm float64
	if s.config.OptionType == Call {
		otm = math.Max(s.config.Strike-spot, 0)
	} else {
		otm = math.Max(spot-s.config.Strike, 0)
	}
	scanPart := premium + s.config.ScanRiskFactor*spot - otm
	minPart := premium + s.config.MinMarginFactor*spot
	perUnit := math.Max(math.Max(scanPart, minPart), 0)
	return perUnit * s.config.ContractSize
}

// PathResult is the full time series of one path. All slices have length
// nDays+1. LiquidationDay is the triggering step index, or -1 when the path
// survives the horizon.
type PathResult struct {
	Spot           []float64 `json:"spot"`
	OptionPrice    []float64 `json:"option_price"`
	Equity         []float64 `json:"equity"`
	Margin         []float64 `json:"margin"`
	MarginRatio    []float64 `json:"margin_ratio"` // NaN for long positions
	LiquidationDay int       `json:"liquidation_day"`
}

// RunSinglePath simulates one path over nDays steps.
func (s *Simulator) RunSinglePath(nDays int) (*PathResult, error) {
	if nDays <= 0 {
		return nil, fmt.Errorf("number of days must be > 0, got %d", nDays)
	}
	rng := s.rng()
	cfg := s.config
	multiplier := s.leg().Multiplier()

	spot := make([]float64, nDays+1)
	spot[0] = cfg.Spot0
	for t := 1; t <= nDays; t++ {
		rtn := cfg.DailyReturnMean + cfg.DailyReturnVol*rng.NormFloat64()
		spot[t] = math.Max(spot[t-1]*(1+rtn), 1e-6)
	}

	price := make([]float64, nDays+1)
	marginReq := make([]float64, nDays+1)
	for t := 0; t <= nDays; t++ {
		price[t] = s.optionPrice(spot[t], cfg.DaysToMaturity-t)
		if cfg.PositionSide == Short {
			marginReq[t] = s.marginRequirement(price[t], spot[t])
		}
	}

	equity := make([]float64, nDays+1)
	equity[0] = cfg.ReferenceEquity
	ratio := make([]float64, nDays+1)
	for t := range ratio {
		ratio[t] = math.NaN()
	}
	if cfg.PositionSide == Short {
		if marginReq[0] > 0 {
			ratio[0] = equity[0] / math.Max(marginReq[0], marginDenomFloor)
		} else {
			ratio[0] = math.Inf(1)
		}
	}

	liquidationDay := -1
	for t := 1; t <= nDays; t++ {
		pnl := (price[t] - price[t-1]) * cfg.ContractSize * multiplier
		equity[t] = equity[t-1] + pnl

		if cfg.PositionSide != Short {
			continue
		}
		if marginReq[t] > 0 {
			ratio[t] = equity[t] / math.Max(marginReq[t], marginDenomFloor)
		} else {
			ratio[t] = math.Inf(1)
		}
		if marginReq[t] > 0 && ratio[t] < cfg.MaintenanceMarginRate {
			// Liquidation: the path truncates, values freeze.
			liquidationDay = t
			for u := t + 1; u <= nDays; u++ {
				equity[u] = equity[t]
				marginReq[u] = marginReq[t]
				ratio[u] = ratio[t]
			}
			break
		}
	}

	return &PathResult{
		Spot:           spot,
		OptionPrice:    price,
		Equity:         equity,
		Margin:         marginReq,
		MarginRatio:    ratio,
		LiquidationDay: liquidationDay,
	}, nil
}

// MonteCarloResult stacks N independent paths. LiquidationDays[j] == Horizon
// means path j was never liquidated.
type MonteCarloResult struct {
	RunID           string      `json:"run_id"`
	RunDate         time.Time   `json:"run_date"`
	Config          Config      `json:"config"`
	Horizon         int         `json:"horizon"`
	Spot            [][]float64 `json:"spot"`
	OptionPrice     [][]float64 `json:"option_price"`
	Equity          [][]float64 `json:"equity"`
	Margin          [][]float64 `json:"margin"`
	// MarginRatio is NaN for long positions, matching the single-path API.
	// Short positions with zero required margin report +Inf.
	MarginRatio     [][]float64 `json:"margin_ratio"`
	LiquidationDays []int       `json:"liquidation_days"`
}

// LiquidationProbability is the fraction of paths liquidated before the
// horizon.
func (r *MonteCarloResult) LiquidationProbability() float64 {
	if len(r.LiquidationDays) == 0 {
		return 0
	}
	count := 0
	for _, day := range r.LiquidationDays {
		if day < r.Horizon {
			count++
		}
	}
	return float64(count) / float64(len(r.LiquidationDays))
}

// RunMonteCarlo runs numPaths independent paths of nDays steps each. Paths
// are path-dependent: each path's post-liquidation slice is explicitly
// frozen, never recomputed.
func (s *Simulator) RunMonteCarlo(numPaths, nDays int) (*MonteCarloResult, error) {
	if numPaths <= 0 {
		return nil, fmt.Errorf("number of paths must be > 0, got %d", numPaths)
	}
	if nDays <= 0 {
		return nil, fmt.Errorf("number of days must be > 0, got %d", nDays)
	}

	rng := s.rng()
	cfg := s.config
	multiplier := s.leg().Multiplier()

	s.log.WithFields(map[string]interface{}{
		"paths":  numPaths,
		"days":   nDays,
		"side":   cfg.PositionSide,
		"type":   cfg.OptionType,
		"strike": cfg.Strike,
	}).Info("Starting margin Monte Carlo")

	result := &MonteCarloResult{
		RunID:           uuid.New().String(),
		RunDate:         time.Now(),
		Config:          cfg,
		Horizon:         nDays,
		Spot:            make([][]float64, numPaths),
		OptionPrice:     make([][]float64, numPaths),
		Equity:          make([][]float64, numPaths),
		Margin:          make([][]float64, numPaths),
		MarginRatio:     make([][]float64, numPaths),
		LiquidationDays: make([]int, numPaths),
	}

	for j := 0; j < numPaths; j++ {
		spot := make([]float64, nDays+1)
		spot[0] = cfg.Spot0
		for t := 1; t <= nDays; t++ {
			rtn := cfg.DailyReturnMean + cfg.DailyReturnVol*rng.NormFloat64()
			spot[t] = math.Max(spot[t-1]*(1+rtn), 1e-6)
		}

		price := make([]float64, nDays+1)
		for t := 0; t <= nDays; t++ {
			price[t] = s.optionPrice(spot[t], cfg.DaysToMaturity-t)
		}

		equity := make([]float64, nDays+1)
		equity[0] = cfg.ReferenceEquity
		marginReq := make([]float64, nDays+1)
		ratio := make([]float64, nDays+1)
		for t := range ratio {
			ratio[t] = math.NaN()
		}
		if cfg.PositionSide == Short {
			marginReq[0] = s.marginRequirement(price[0], spot[0])
			if marginReq[0] > 0 {
				ratio[0] = equity[0] / math.Max(marginReq[0], marginDenomFloor)
			} else {
				ratio[0] = math.Inf(1)
			}
		}

		liquidationDay := nDays
		for t := 1; t <= nDays; t++ {
			pnl := (price[t] - price[t-1]) * cfg.ContractSize * multiplier
			equity[t] = equity[t-1] + pnl

			if cfg.PositionSide != Short {
				continue
			}
			marginReq[t] = s.marginRequirement(price[t], spot[t])
			if marginReq[t] > 0 {
				ratio[t] = equity[t] / math.Max(marginReq[t], marginDenomFloor)
			} else {
				ratio[t] = math.Inf(1)
			}
			if marginReq[t] > 0 && ratio[t] < cfg.MaintenanceMarginRate {
				liquidationDay = t
				for u := t + 1; u <= nDays; u++ {
					equity[u] = equity[t]
					marginReq[u] = marginReq[t]
					ratio[u] = ratio[t]
				}
				break
			}
		}

		result.Spot[j] = spot
		result.OptionPrice[j] = price
		result.Equity[j] = equity
		result.Margin[j] = marginReq
		result.MarginRatio[j] = ratio
		result.LiquidationDays[j] = liquidationDay
	}

	s.log.WithFields(map[string]interface{}{
		"paths":            numPaths,
		"liquidation_prob": fmt.Sprintf("%.2f%%", result.LiquidationProbability()*100),
	}).Info("Margin Monte Carlo completed")

	return result, nil
}

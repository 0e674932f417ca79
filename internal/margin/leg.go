package margin

import (
	"fmt"
	"math"
)

// OptionType is "call" or "put".
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// PositionSide is "long" or "short".
type PositionSide string

const (
	Long  PositionSide = "long"
	Short PositionSide = "short"
)

// OptionLeg is one leg of an option position. Multi-leg books aggregate
// their legs' signed payoffs.
type OptionLeg struct {
	Type         OptionType   `yaml:"option_type" json:"option_type"`
	Side         PositionSide `yaml:"position_side" json:"position_side"`
	Strike       float64      `yaml:"strike" json:"strike"`
	ContractSize float64      `yaml:"contract_size" json:"contract_size"`
}

// Validate checks the leg's fields.
func (l OptionLeg) Validate() error {
	if l.Type != Call && l.Type != Put {
		return fmt.Errorf("option_type must be %q or %q, got %q", Call, Put, l.Type)
	}
	if l.Side != Long && l.Side != Short {
		return fmt.Errorf("position_side must be %q or %q, got %q", Long, Short, l.Side)
	}
	if l.Strike <= 0 {
		return fmt.Errorf("strike must be > 0, got %v", l.Strike)
	}
	if l.ContractSize <= 0 {
		return fmt.Errorf("contract_size must be > 0, got %v", l.ContractSize)
	}
	return nil
}

// Multiplier is +1 for long, -1 for short.
func (l OptionLeg) Multiplier() float64 {
	if l.Side == Short {
		return -1
	}
	return 1
}

// Intrinsic returns the leg's unsigned intrinsic value at a spot level.
func (l OptionLeg) Intrinsic(spot float64) float64 {
	if l.Type == Call {
		return math.Max(spot-l.Strike, 0)
	}
	return math.Max(l.Strike-spot, 0)
}

// PayoffAt returns the leg's signed expiry payoff at a spot level.
func (l OptionLeg) PayoffAt(spot float64) float64 {
	return l.Multiplier() * l.Intrinsic(spot) * l.ContractSize
}

// AggregatePayoff sums the signed expiry payoff of a multi-leg book over a
// grid of spot levels.
func AggregatePayoff(legs []OptionLeg, spots []float64) []float64 {
	payoff := make([]float64, len(spots))
	for _, leg := range legs {
		for i, spot := range spots {
			payoff[i] += leg.PayoffAt(spot)
		}
	}
	return payoff
}

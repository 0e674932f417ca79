package risk

import (
	"fmt"
	"math"
	"sort"
)

// =============================================================================
// VaR (Value at Risk) Calculation
// =============================================================================

// VaR/CVaR convention: losses are expressed as positive numbers
// (VaR=0.05 → a 5% loss is possible at the given confidence).

// VaRResult holds VaR/CVaR for a return series at one confidence level.
type VaRResult struct {
	Confidence float64 `json:"confidence"` // e.g. 0.95, 0.99
	VaR        float64 `json:"var"`        // loss, positive
	CVaR       float64 `json:"cvar"`       // Expected Shortfall, positive
}

// ReturnVaR computes historical-simulation VaR/CVaR from a series of
// periodic returns (positive = gain, negative = loss).
func ReturnVaR(returns []float64, confidence float64) VaRResult {
	if len(returns) == 0 {
		return VaRResult{Confidence: confidence}
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	// VaR: the (1-confidence) percentile; 95% VaR = bottom 5% cut
	percentile := 1.0 - confidence
	idx := int(math.Floor(percentile * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	var varValue float64
	if sorted[idx] < 0 {
		varValue = -sorted[idx]
	}

	return VaRResult{
		Confidence: confidence,
		VaR:        varValue,
		CVaR:       tailCVaR(sorted, idx),
	}
}

// tailCVaR averages the sorted returns up to and including varIdx.
func tailCVaR(sorted []float64, varIdx int) float64 {
	if len(sorted) == 0 || varIdx < 0 {
		return 0
	}

	var sum float64
	count := 0
	for i := 0; i <= varIdx && i < len(sorted); i++ {
		sum += sorted[i]
		count++
	}
	if count == 0 {
		return 0
	}

	avgTailReturn := sum / float64(count)
	if avgTailReturn < 0 {
		return -avgTailReturn
	}
	return 0
}

// =============================================================================
// Balance Tail Risk (final-value distribution vs. initial balance)
// =============================================================================

// TailRisk holds dollar-loss VaR/CVaR of a final-value distribution.
type TailRisk struct {
	ValueAtRisk            float64 `json:"value_at_risk"`
	ConditionalValueAtRisk float64 `json:"conditional_value_at_risk"`
}

// SummarizeTailRisk computes VaR and CVaR of final portfolio values against
// the initial balance. level is the left-tail probability (0.05 = VaR95).
func SummarizeTailRisk(finalValues []float64, initialBalance, level float64) (TailRisk, error) {
	if level <= 0 || level >= 1 {
		return TailRisk{}, fmt.Errorf("risk level must be in (0, 1), got %v", level)
	}
	if len(finalValues) == 0 {
		return TailRisk{}, fmt.Errorf("final values must not be empty")
	}

	threshold := Quantile(finalValues, level)

	var tailSum float64
	tailCount := 0
	for _, v := range finalValues {
		if v <= threshold {
			tailSum += v
			tailCount++
		}
	}
	expectedTail := threshold
	if tailCount > 0 {
		expectedTail = tailSum / float64(tailCount)
	}

	return TailRisk{
		ValueAtRisk:            math.Max(0, initialBalance-threshold),
		ConditionalValueAtRisk: math.Max(0, initialBalance-expectedTail),
	}, nil
}

package risk

import (
	"math"
	"testing"
)

func TestReturnVaR(t *testing.T) {
	// 20개 수익률, 최악 -10%
	returns := make([]float64, 20)
	for i := range returns {
		returns[i] = 0.01
	}
	returns[0] = -0.10
	returns[1] = -0.05

	result := ReturnVaR(returns, 0.95)

	// 하위 5% 지점 = 정렬 후 index 1 (-5%)
	if !almostEqual(result.VaR, 0.05, 1e-12) {
		t.Errorf("expected VaR 0.05, got %v", result.VaR)
	}
	// CVaR = 하위 구간 평균 손실 = (0.10+0.05)/2
	if !almostEqual(result.CVaR, 0.075, 1e-12) {
		t.Errorf("expected CVaR 0.075, got %v", result.CVaR)
	}
	// 손실은 양수 표기, CVaR >= VaR
	if result.CVaR < result.VaR {
		t.Errorf("CVaR (%v) must be >= VaR (%v)", result.CVaR, result.VaR)
	}
}

func TestReturnVaRAllPositive(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.03, 0.04}
	result := ReturnVaR(returns, 0.95)
	if result.VaR != 0 || result.CVaR != 0 {
		t.Errorf("no losses → VaR/CVaR 0, got %v / %v", result.VaR, result.CVaR)
	}
}

func TestReturnVaREmpty(t *testing.T) {
	result := ReturnVaR(nil, 0.95)
	if result.VaR != 0 || result.CVaR != 0 {
		t.Errorf("empty series → zero result, got %+v", result)
	}
}

func TestSummarizeTailRisk(t *testing.T) {
	// 100개 최종 가치: 절반은 90k, 절반은 120k, initial 100k
	finals := make([]float64, 100)
	for i := range finals {
		if i < 50 {
			finals[i] = 90_000
		} else {
			finals[i] = 120_000
		}
	}

	tail, err := SummarizeTailRisk(finals, 100_000, 0.05)
	if err != nil {
		t.Fatalf("SummarizeTailRisk failed: %v", err)
	}
	if !almostEqual(tail.ValueAtRisk, 10_000, 1e-6) {
		t.Errorf("expected VaR 10000, got %v", tail.ValueAtRisk)
	}
	if tail.ConditionalValueAtRisk < tail.ValueAtRisk {
		t.Errorf("CVaR (%v) must be >= VaR (%v)", tail.ConditionalValueAtRisk, tail.ValueAtRisk)
	}
}

func TestSummarizeTailRiskClampsAtZero(t *testing.T) {
	// 전부 initial보다 큰 경우 손실 없음
	finals := []float64{150_000, 160_000, 170_000}
	tail, err := SummarizeTailRisk(finals, 100_000, 0.05)
	if err != nil {
		t.Fatalf("SummarizeTailRisk failed: %v", err)
	}
	if tail.ValueAtRisk != 0 || tail.ConditionalValueAtRisk != 0 {
		t.Errorf("expected zero loss, got %+v", tail)
	}
}

func TestSummarizeTailRiskErrors(t *testing.T) {
	if _, err := SummarizeTailRisk([]float64{1}, 1, 0); err == nil {
		t.Error("expected error for level 0")
	}
	if _, err := SummarizeTailRisk([]float64{1}, 1, 1); err == nil {
		t.Error("expected error for level 1")
	}
	if _, err := SummarizeTailRisk(nil, 1, 0.05); err == nil {
		t.Error("expected error for empty finals")
	}
	if _, err := SummarizeTailRisk([]float64{math.NaN()}, 1, 0.05); err != nil {
		// NaN 입력은 검증하지 않는다 (호출자 책임)
		t.Errorf("unexpected error: %v", err)
	}
}

package margin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormCDF(t *testing.T) {
	assert.InDelta(t, 0.5, NormCDF(0), 1e-12)
	assert.InDelta(t, 0.8413, NormCDF(1), 1e-4)
	assert.InDelta(t, 0.0228, NormCDF(-2), 1e-4)
}

func TestPricePutCallParity(t *testing.T) {
	spot, strike, years, rate, sigma := 100.0, 105.0, 0.5, 0.03, 0.2

	call := Price(spot, strike, years, rate, sigma, Call)
	put := Price(spot, strike, years, rate, sigma, Put)

	// C - P = S - K·e^(-rT)
	parity := spot - strike*math.Exp(-rate*years)
	assert.InDelta(t, parity, call-put, 1e-9)
}

func TestPriceAtExpiry(t *testing.T) {
	// T=0에서는 내재가치로 퇴화
	assert.Equal(t, 10.0, Price(110, 100, 0, 0.03, 0.2, Call))
	assert.Equal(t, 0.0, Price(90, 100, 0, 0.03, 0.2, Call))
	assert.Equal(t, 10.0, Price(90, 100, 0, 0.03, 0.2, Put))
	assert.Equal(t, 0.0, Price(110, 100, 0, 0.03, 0.2, Put))

	// 음수 T도 만기 취급
	assert.Equal(t, 10.0, Price(110, 100, -0.1, 0.03, 0.2, Call))
}

func TestPriceBounds(t *testing.T) {
	spot, strike, years, rate, sigma := 100.0, 100.0, 1.0, 0.03, 0.25

	call := Price(spot, strike, years, rate, sigma, Call)
	require.Greater(t, call, 0.0)
	// 콜 가격은 기초자산 가격을 넘을 수 없다
	require.Less(t, call, spot)
	// 내재가치 이상
	require.GreaterOrEqual(t, call, spot-strike*math.Exp(-rate*years))
}

func TestDelta(t *testing.T) {
	// 콜 델타 ∈ (0, 1), 풋 델타 ∈ (-1, 0)
	callDelta := Delta(100, 100, 0.5, 0.03, 0.2, Call)
	assert.Greater(t, callDelta, 0.0)
	assert.Less(t, callDelta, 1.0)

	putDelta := Delta(100, 100, 0.5, 0.03, 0.2, Put)
	assert.Greater(t, putDelta, -1.0)
	assert.Less(t, putDelta, 0.0)

	// 만기 시 단위 계단 함수
	assert.Equal(t, 1.0, Delta(110, 100, 0, 0.03, 0.2, Call))
	assert.Equal(t, 0.0, Delta(90, 100, 0, 0.03, 0.2, Call))
	assert.Equal(t, -1.0, Delta(90, 100, 0, 0.03, 0.2, Put))
	assert.Equal(t, 0.0, Delta(110, 100, 0, 0.03, 0.2, Put))
}

func TestGammaVega(t *testing.T) {
	gamma := Gamma(100, 100, 0.5, 0.03, 0.2)
	assert.Greater(t, gamma, 0.0)

	vega := Vega(100, 100, 0.5, 0.03, 0.2)
	assert.Greater(t, vega, 0.0)

	// 만기에는 0
	assert.Equal(t, 0.0, Vega(100, 100, 0, 0.03, 0.2))
}

func TestPriceClampsDegenerateInputs(t *testing.T) {
	// 0 이하 spot/strike도 클램핑되어 유한한 값을 낸다
	for _, v := range []float64{
		Price(0, 100, 0.5, 0.03, 0.2, Call),
		Price(100, 0, 0.5, 0.03, 0.2, Put),
		Price(100, 100, 0.5, 0.03, 0, Call),
	} {
		assert.False(t, math.IsNaN(v), "price must not be NaN")
		assert.False(t, math.IsInf(v, 0), "price must be finite")
	}
}

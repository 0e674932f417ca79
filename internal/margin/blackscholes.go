package margin

import "math"

// =============================================================================
// Black-Scholes Pricing
// =============================================================================

// Numeric floors keep log() and divisions away from zero.
const (
	minSpot  = 1e-9
	minInput = 1e-9
)

// NormCDF standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// NormPDF standard normal probability density function.
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// bsTerms clamps inputs and computes d1/d2.
func bsTerms(spot, strike, years, rate, sigma float64) (sSafe, kSafe, tSafe, d1, d2 float64) {
	sSafe = math.Max(spot, minSpot)
	kSafe = math.Max(strike, minInput)
	sigmaSafe := math.Max(sigma, minInput)
	tSafe = math.Max(years, minInput)
	sqrtT := math.Sqrt(tSafe)
	d1 = (math.Log(sSafe/kSafe) + (rate+0.5*sigmaSafe*sigmaSafe)*tSafe) / (sigmaSafe * sqrtT)
	d2 = d1 - sigmaSafe*sqrtT
	return
}

// Price returns the Black-Scholes fair value. At or past expiry (years <= 0)
// it degenerates to intrinsic value.
func Price(spot, strike, years, rate, sigma float64, optionType OptionType) float64 {
	if years <= 0 {
		if optionType == Call {
			return math.Max(spot-strike, 0)
		}
		return math.Max(strike-spot, 0)
	}
	sSafe, kSafe, tSafe, d1, d2 := bsTerms(spot, strike, years, rate, sigma)
	discount := math.Exp(-rate * tSafe)
	if optionType == Call {
		return sSafe*NormCDF(d1) - kSafe*discount*NormCDF(d2)
	}
	return kSafe*discount*NormCDF(-d2) - sSafe*NormCDF(-d1)
}

// Delta returns dPrice/dSpot. At expiry it becomes a unit step function.
func Delta(spot, strike, years, rate, sigma float64, optionType OptionType) float64 {
	if years <= 0 {
		if optionType == Call {
			if spot > strike {
				return 1
			}
			return 0
		}
		if spot > strike {
			return 0
		}
		return -1
	}
	_, _, _, d1, _ := bsTerms(spot, strike, years, rate, sigma)
	if optionType == Call {
		return NormCDF(d1)
	}
	return NormCDF(d1) - 1
}

// Gamma returns d²Price/dSpot². Zero at expiry.
func Gamma(spot, strike, years, rate, sigma float64) float64 {
	if years <= 0 {
		return 0
	}
	sSafe, _, tSafe, d1, _ := bsTerms(spot, strike, years, rate, sigma)
	sigmaSafe := math.Max(sigma, minInput)
	return NormPDF(d1) / (sSafe * sigmaSafe * math.Sqrt(tSafe))
}

// Vega returns dPrice/dSigma. Zero at expiry.
func Vega(spot, strike, years, rate, sigma float64) float64 {
	if years <= 0 {
		return 0
	}
	sSafe, _, tSafe, d1, _ := bsTerms(spot, strike, years, rate, sigma)
	return sSafe * NormPDF(d1) * math.Sqrt(tSafe)
}

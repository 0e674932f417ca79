// Package returns draws periodic asset returns from a named distribution.
// All randomness flows through the caller's *rand.Rand: same seed, same
// parameters → bit-identical samples.
package returns

import (
	"fmt"
	"math"
	"math/rand"
)

// Distribution names supported by Generate.
const (
	DistNormal             = "normal"
	DistStudentT           = "student_t"
	DistEmpiricalBootstrap = "empirical_bootstrap"
)

// Params carries resolved scalar parameters for one distribution spec.
// Optional fields are pointers so "missing" and "zero" stay distinguishable.
type Params struct {
	Mean  *float64
	Vol   *float64
	DF    *float64
	Scale *float64

	// HistoricalReturns is the sample pool for empirical_bootstrap.
	HistoricalReturns []float64
}

// Generate draws size i.i.d. returns from the named distribution.
// Unsupported names or missing required parameters fail with an error naming
// the offending key; nothing is silently defaulted for required fields.
func Generate(distName string, size int, params Params, rng *rand.Rand) ([]float64, error) {
	if size < 0 {
		return nil, fmt.Errorf("sample size must be >= 0, got %d", size)
	}
	if rng == nil {
		return nil, fmt.Errorf("random generator is required")
	}

	switch distName {
	case DistNormal:
		return generateNormal(size, params, rng)
	case DistStudentT:
		return generateStudentT(size, params, rng)
	case DistEmpiricalBootstrap:
		return generateBootstrap(size, params, rng)
	default:
		return nil, fmt.Errorf("unsupported distribution %q", distName)
	}
}

func generateNormal(size int, params Params, rng *rand.Rand) ([]float64, error) {
	if params.Mean == nil || params.Vol == nil {
		return nil, fmt.Errorf(`normal distribution requires "mean" and "vol" parameters`)
	}
	mean, vol := *params.Mean, *params.Vol

	samples := make([]float64, size)
	for i := range samples {
		samples[i] = mean + vol*rng.NormFloat64()
	}
	return samples, nil
}

// generateStudentT draws mean + scale * Z/sqrt(chi2_df/df). The explicit
// Z/chi-squared construction keeps the draw order stable for a given seed.
func generateStudentT(size int, params Params, rng *rand.Rand) ([]float64, error) {
	df := 5.0
	if params.DF != nil {
		df = *params.DF
	}
	if df <= 0 {
		return nil, fmt.Errorf(`student_t "df" must be > 0, got %v`, df)
	}

	scale := 0.02
	switch {
	case params.Scale != nil:
		scale = *params.Scale
	case params.Vol != nil:
		scale = *params.Vol
	}

	mean := 0.0
	if params.Mean != nil {
		mean = *params.Mean
	}

	samples := make([]float64, size)
	for i := range samples {
		z := rng.NormFloat64()
		chi2 := sampleChiSquared(df, rng)
		samples[i] = mean + scale*z/math.Sqrt(chi2/df)
	}
	return samples, nil
}

func generateBootstrap(size int, params Params, rng *rand.Rand) ([]float64, error) {
	hist := params.HistoricalReturns
	if hist == nil {
		return nil, fmt.Errorf(`empirical_bootstrap requires a "historical_returns" parameter`)
	}
	if len(hist) == 0 {
		return nil, fmt.Errorf(`"historical_returns" must not be empty`)
	}

	samples := make([]float64, size)
	for i := range samples {
		samples[i] = hist[rng.Intn(len(hist))]
	}
	return samples, nil
}

// sampleChiSquared draws from chi-squared(df) = 2 * Gamma(df/2, 1).
func sampleChiSquared(df float64, rng *rand.Rand) float64 {
	return 2 * sampleGamma(df/2, rng)
}

// sampleGamma draws from Gamma(shape, 1) via Marsaglia-Tsang squeeze
// rejection. Handles shape < 1 through the boost identity
// Gamma(a) = Gamma(a+1) * U^(1/a).
func sampleGamma(shape float64, rng *rand.Rand) float64 {
	if shape < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return sampleGamma(shape+1, rng) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}

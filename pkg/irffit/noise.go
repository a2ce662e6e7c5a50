package irffit

import (
	"math"
	"math/rand"
)

// boxMuller draws one standard-normal sample from rng using the classic
// Box-Muller transform, following SPEC_FULL.md §4.2b literally rather than
// reaching for rand.Rand's built-in (ziggurat-based) NormFloat64 — the
// noise model is explicitly an approximation already, and the spec names
// Box-Muller specifically.
func boxMuller(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// addNoise applies the Gaussian approximation of Poisson shot noise plus
// optional additive Gaussian noise described in SPEC_FULL.md §4.2b. This is
// explicitly NOT a true Poisson draw (see Design Note, SPEC_FULL.md §9).
func addNoise(spectrum []float64, params SimulatorParams, rng *rand.Rand) []float64 {
	out := make([]float64, len(spectrum))
	for i, v := range spectrum {
		vv := v
		if params.PoissonNoise > 1e-5 {
			scale := 1000 / params.PoissonNoise
			lambda := vv * scale
			lambdaClamped := lambda
			if lambdaClamped < 0 {
				lambdaClamped = 0
			}
			z := boxMuller(rng)
			vv = (lambda + z*math.Sqrt(lambdaClamped)) / scale
		}
		if params.GaussianNoise > 0 {
			z := boxMuller(rng)
			vv += z * (params.GaussianNoise / 100)
		}
		if vv < 0 {
			vv = 0
		}
		out[i] = vv
	}
	return out
}

package irffit

import "math"

// ModelFunc predicts a full curve y_hat from a parameter vector p.
type ModelFunc func(p []float64) []float64

// CurveFitResult is the outcome of CurveFit.
type CurveFitResult struct {
	Params      []float64
	ParamErrors []float64 // NaN marks a sanitized ("not-a-number"/"N/A") entry
	Covariance  [][]float64
	Residuals   []float64
	RSquared    float64
	Converged   bool
}

// CurveFit composes a bounded Differential Evolution global search with an
// unconstrained Levenberg-Marquardt local refinement (SPEC_FULL.md §4.4),
// then projects the final parameters back into bounds componentwise.
func CurveFit(
	model ModelFunc,
	y []float64,
	bounds OptimizationBounds,
	initial []float64,
	useGlobalOpt bool,
	deOpts DEOptions,
	lmOpts LMOptions,
) (CurveFitResult, error) {
	if err := bounds.Validate(); err != nil {
		return CurveFitResult{}, err
	}

	residual := func(p []float64) []float64 {
		yHat := model(p)
		r := make([]float64, len(y))
		for i := range y {
			r[i] = y[i] - yHat[i]
		}
		return r
	}
	objective := func(p []float64) float64 {
		return sumSquares(residual(p))
	}

	start := append([]float64(nil), initial...)
	if useGlobalOpt {
		deResult, err := DifferentialEvolution(objective, bounds, deOpts)
		if err != nil {
			return CurveFitResult{}, err
		}
		start = deResult.X
	}

	lmResult := LevenbergMarquardt(residual, start, lmOpts)

	finalParams := append([]float64(nil), lmResult.X...)
	clampToBounds(finalParams, bounds)

	finalResiduals := residual(finalParams)
	yHat := model(finalParams)
	rSquared := computeRSquared(y, yHat)

	paramErrors := make([]float64, len(finalParams))
	for i, p := range finalParams {
		errVal := math.Sqrt(math.Abs(lmResult.Covariance[i][i]))
		if math.IsNaN(errVal) || math.IsInf(errVal, 0) || errVal > 1e6 || errVal > 100*math.Abs(p)+1e-10 {
			paramErrors[i] = math.NaN()
		} else {
			paramErrors[i] = errVal
		}
	}

	return CurveFitResult{
		Params:      finalParams,
		ParamErrors: paramErrors,
		Covariance:  lmResult.Covariance,
		Residuals:   finalResiduals,
		RSquared:    rSquared,
		Converged:   lmResult.Converged,
	}, nil
}

func computeRSquared(y, yHat []float64) float64 {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	ssTot, ssRes := 0.0, 0.0
	for i := range y {
		ssTot += (y[i] - mean) * (y[i] - mean)
		d := y[i] - yHat[i]
		ssRes += d * d
	}
	return 1 - ssRes/(ssTot+1e-12)
}

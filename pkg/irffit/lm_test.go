package irffit

import (
	"math"
	"testing"
)

// linearResidual builds a ResidualFunc for y = p[0]*x + p[1] against
// observed data (x, y).
func linearResidual(x, y []float64) ResidualFunc {
	return func(p []float64) []float64 {
		r := make([]float64, len(x))
		for i := range x {
			r[i] = y[i] - (p[0]*x[i] + p[1])
		}
		return r
	}
}

func TestLevenbergMarquardt_RecoversLinearFit(t *testing.T) {
	x := linspace(0, 10, 50)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 3*xi + 1
	}

	result := LevenbergMarquardt(linearResidual(x, y), []float64{0, 0}, DefaultLMOptions())
	if !result.Converged {
		t.Fatalf("LevenbergMarquardt did not converge, X=%v", result.X)
	}
	if math.Abs(result.X[0]-3) > 1e-4 || math.Abs(result.X[1]-1) > 1e-4 {
		t.Errorf("LM result = %v, want near [3, 1]", result.X)
	}
}

func TestLevenbergMarquardt_ResidualsNearZeroAtConvergence(t *testing.T) {
	x := linspace(-5, 5, 30)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = -2*xi + 0.5
	}

	result := LevenbergMarquardt(linearResidual(x, y), []float64{10, 10}, DefaultLMOptions())
	cost := sumSquares(result.Residuals)
	if cost > 1e-6 {
		t.Errorf("residual sum-of-squares = %g, want ~0", cost)
	}
}

func TestComputeCovariance_FallsBackWhenIllConditioned(t *testing.T) {
	// Diagonal entries of -1e-10 exactly cancel computeCovariance's own
	// +1e-10 regularization, leaving a near-zero pivot whose inverse blows
	// past the 1e10 sanity threshold and must trigger the diagonal-proxy
	// fallback.
	a := [][]float64{{-1e-10, 0}, {0, -1e-10}}
	cov := computeCovariance(a, 1.0, 10, 2)
	if cov[0][1] != 0 || cov[1][0] != 0 {
		t.Errorf("fallback covariance should be diagonal, got %v", cov)
	}
	wantDiag := 1.0 / 8.0 * 0.01
	if math.Abs(cov[0][0]-wantDiag) > 1e-9 {
		t.Errorf("fallback covariance diagonal = %g, want %g", cov[0][0], wantDiag)
	}
}

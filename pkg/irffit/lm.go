package irffit

import "math"

// ResidualFunc computes the residual vector r(p) for a trial parameter
// vector p.
type ResidualFunc func(p []float64) []float64

// LMOptions configures a Levenberg-Marquardt run (SPEC_FULL.md §4.4).
type LMOptions struct {
	MaxIter    int
	Tol        float64
	Lambda0    float64
	LambdaUp   float64
	LambdaDown float64
}

// DefaultLMOptions returns the contractual defaults from SPEC_FULL.md §4.4.
func DefaultLMOptions() LMOptions {
	return LMOptions{MaxIter: 100, Tol: 1e-8, Lambda0: 0.001, LambdaUp: 10, LambdaDown: 0.1}
}

// LMResult is the outcome of a Levenberg-Marquardt run.
type LMResult struct {
	X          []float64
	Residuals  []float64
	Jacobian   [][]float64
	Covariance [][]float64
	Iterations int
	Converged  bool
}

const jacobianStep = 1e-7

// jacobianForward computes the forward-difference Jacobian of r at p, given
// the residual r0 = r(p) already evaluated.
func jacobianForward(r ResidualFunc, p, r0 []float64) [][]float64 {
	n := len(r0)
	dim := len(p)
	j := newMatrix(n, dim)
	perturbed := append([]float64(nil), p...)
	for col := 0; col < dim; col++ {
		orig := perturbed[col]
		perturbed[col] = orig + jacobianStep
		rPlus := r(perturbed)
		perturbed[col] = orig
		for row := 0; row < n; row++ {
			j[row][col] = (rPlus[row] - r0[row]) / jacobianStep
		}
	}
	return j
}

func sumSquares(r []float64) float64 {
	sum := 0.0
	for _, v := range r {
		sum += v * v
	}
	return sum
}

// LevenbergMarquardt runs damped Gauss-Newton minimization of
// sum(r(p)^2), following SPEC_FULL.md §4.4 exactly, including its
// deliberately non-textbook damping rule (lambda * (diag(A) + 1e-10)); see
// SPEC_FULL.md §9 -- this is a pinned behavior, not a bug.
func LevenbergMarquardt(r ResidualFunc, p0 []float64, opts LMOptions) LMResult {
	p := append([]float64(nil), p0...)
	dim := len(p)
	lambda := opts.Lambda0

	res := r(p)
	cost := sumSquares(res)
	jac := jacobianForward(r, p, res)

	iterations := 0
	converged := false

	for iter := 0; iter < opts.MaxIter; iter++ {
		iterations = iter + 1

		a := matTransposeMul(jac, len(res), dim)
		g := matTransposeVec(jac, res, len(res), dim)

		damped := newMatrix(dim, dim)
		for i := 0; i < dim; i++ {
			copy(damped[i], a[i])
			damped[i][i] = a[i][i] + lambda*(a[i][i]+1e-10)
		}
		negG := make([]float64, dim)
		for i := range g {
			negG[i] = -g[i]
		}

		delta := solveLinear(damped, negG)

		trial := make([]float64, dim)
		for i := range trial {
			trial[i] = p[i] + delta[i]
		}
		trialRes := r(trial)
		trialCost := sumSquares(trialRes)

		if trialCost < cost {
			costDrop := cost - trialCost
			p = trial
			res = trialRes
			jac = jacobianForward(r, p, res)
			lambda *= opts.LambdaDown

			maxDelta := 0.0
			for _, d := range delta {
				if a := math.Abs(d); a > maxDelta {
					maxDelta = a
				}
			}
			accepted := costDrop < opts.Tol*cost || maxDelta < opts.Tol
			cost = trialCost
			if accepted {
				converged = true
				break
			}
		} else {
			lambda *= opts.LambdaUp
		}
	}

	a := matTransposeMul(jac, len(res), dim)
	covariance := computeCovariance(a, cost, len(res), dim)

	return LMResult{
		X:          p,
		Residuals:  res,
		Jacobian:   jac,
		Covariance: covariance,
		Iterations: iterations,
		Converged:  converged,
	}
}

// computeCovariance regularizes A's diagonal, inverts it, and scales by the
// residual variance, falling back to a diagonal proxy if the inverse is
// ill-conditioned (SPEC_FULL.md §4.4).
func computeCovariance(a [][]float64, cost float64, n, p int) [][]float64 {
	regularized := newMatrix(p, p)
	for i := 0; i < p; i++ {
		copy(regularized[i], a[i])
		regularized[i][i] += 1e-10
	}

	dof := n - p
	if dof < 1 {
		dof = 1
	}
	variance := cost / float64(dof)

	inv := invertLU(regularized)
	if !isFiniteMatrix(inv) || maxAbsMatrix(inv) > 1e10 {
		fallback := newMatrix(p, p)
		for i := 0; i < p; i++ {
			fallback[i][i] = variance * 0.01
		}
		return fallback
	}

	cov := newMatrix(p, p)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			cov[i][j] = inv[i][j] * variance
		}
	}
	return cov
}

package irffit

import "math"

// luDecompose computes an LU decomposition of A (n x n) with partial
// pivoting, in place on a copy. Per SPEC_FULL.md §4.4 step 4, a pivot whose
// magnitude falls below 1e-12 is regularized in place (by adding 1e-12)
// rather than failing -- Gaussian elimination never errors out on a
// singular system, it just proceeds with a slightly perturbed one.
//
// The returned lu packs L (unit lower triangular, diagonal implicit) and U
// (upper triangular) into one n x n matrix, and perm records the row
// permutation applied during pivoting. luSolve consumes both.
func luDecompose(a [][]float64) (lu [][]float64, perm []int) {
	n := len(a)
	lu = make([][]float64, n)
	for i := range a {
		lu[i] = append([]float64(nil), a[i]...)
	}
	perm = make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	for k := 0; k < n; k++ {
		// partial pivoting: find largest-magnitude entry in column k at or below row k
		maxRow := k
		maxVal := math.Abs(lu[k][k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(lu[i][k]); v > maxVal {
				maxVal = v
				maxRow = i
			}
		}
		if maxRow != k {
			lu[k], lu[maxRow] = lu[maxRow], lu[k]
			perm[k], perm[maxRow] = perm[maxRow], perm[k]
		}
		if math.Abs(lu[k][k]) < 1e-12 {
			lu[k][k] += 1e-12
		}

		for i := k + 1; i < n; i++ {
			factor := lu[i][k] / lu[k][k]
			lu[i][k] = factor
			for j := k + 1; j < n; j++ {
				lu[i][j] -= factor * lu[k][j]
			}
		}
	}
	return lu, perm
}

// luSolve solves Ax = b given the LU decomposition (lu, perm) of A.
func luSolve(lu [][]float64, perm []int, b []float64) []float64 {
	n := len(lu)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[perm[i]]
		for j := 0; j < i; j++ {
			sum -= lu[i][j] * y[j]
		}
		y[i] = sum
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < n; j++ {
			sum -= lu[i][j] * x[j]
		}
		x[i] = sum / lu[i][i]
	}
	return x
}

// solveLinear solves Ax = b via one fresh LU decomposition.
func solveLinear(a [][]float64, b []float64) []float64 {
	lu, perm := luDecompose(a)
	return luSolve(lu, perm, b)
}

// invertLU inverts A (n x n) by reusing a single LU decomposition across one
// solve per column of the identity, per Design Note §9 ("per-column solve
// via reused LU factorization is preferable to solving n separate systems
// from scratch").
func invertLU(a [][]float64) [][]float64 {
	n := len(a)
	lu, perm := luDecompose(a)

	inv := make([][]float64, n)
	for i := range inv {
		inv[i] = make([]float64, n)
	}
	e := make([]float64, n)
	for col := 0; col < n; col++ {
		for i := range e {
			e[i] = 0
		}
		e[col] = 1
		x := luSolve(lu, perm, e)
		for row := 0; row < n; row++ {
			inv[row][col] = x[row]
		}
	}
	return inv
}

func newMatrix(n, m int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, m)
	}
	return out
}

// matTransposeMul computes J^T J for an n x p Jacobian j.
func matTransposeMul(j [][]float64, n, p int) [][]float64 {
	out := newMatrix(p, p)
	for a := 0; a < p; a++ {
		for b := 0; b < p; b++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += j[i][a] * j[i][b]
			}
			out[a][b] = sum
		}
	}
	return out
}

// matTransposeVec computes J^T r for an n x p Jacobian j and residual r.
func matTransposeVec(j [][]float64, r []float64, n, p int) []float64 {
	out := make([]float64, p)
	for a := 0; a < p; a++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += j[i][a] * r[i]
		}
		out[a] = sum
	}
	return out
}

func isFiniteMatrix(m [][]float64) bool {
	for _, row := range m {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func maxAbsMatrix(m [][]float64) float64 {
	best := 0.0
	for _, row := range m {
		for _, v := range row {
			if a := math.Abs(v); a > best {
				best = a
			}
		}
	}
	return best
}

package irffit

import "math"

// KB is the Boltzmann constant in eV/K.
const KB = 8.617333262e-5

// erf coefficients, Abramowitz & Stegun 7.1.26. Maximum error ~1.5e-7.
const (
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
	erfP  = 0.3275911
)

// erf is the Gauss error function, approximated to ~1.5e-7 absolute error.
func erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}
	t := 1.0 / (1.0 + erfP*x)
	poly := ((((erfA5*t+erfA4)*t+erfA3)*t+erfA2)*t + erfA1) * t
	y := 1.0 - poly*math.Exp(-x*x)
	return sign * y
}

// normCDF is the standard normal CDF derived from erf.
func normCDF(z float64) float64 {
	return 0.5 * (1 + erf(z/math.Sqrt2))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// fermiDirac evaluates the Fermi-Dirac occupation at each energy in e
// (relative to ef) and temperature T (Kelvin). Below 0.1 K it is treated as
// a hard step to avoid dividing by a near-zero thermal energy.
func fermiDirac(e []float64, T, ef float64) []float64 {
	out := make([]float64, len(e))
	if T < 0.1 {
		for i, ei := range e {
			if ei <= ef {
				out[i] = 1
			} else {
				out[i] = 0
			}
		}
		return out
	}
	kt := KB * T
	for i, ei := range e {
		arg := clamp((ei-ef)/kt, -100, 100)
		out[i] = 1.0 / (1.0 + math.Exp(arg))
	}
	return out
}

// skewGaussian evaluates a unit-area skew-normal density at each x, width
// sigma, skewness gamma.
func skewGaussian(x []float64, sigma, gamma float64) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		phi := math.Exp(-0.5*(xi/sigma)*(xi/sigma)) / (sigma * math.Sqrt(2*math.Pi))
		out[i] = 2 * phi * normCDF(gamma*xi/sigma)
	}
	return out
}

// ellipticalGaussian2D evaluates a rotated, independently-skewed 2D Gaussian
// over row-major mesh coordinates E, Y (both length n), normalizing the
// result to unit sum when that sum exceeds 1e-12.
func ellipticalGaussian2D(E, Y []float64, sigmaX, sigmaY, gammaX, gammaY, rotationDeg float64) []float64 {
	theta := rotationDeg * math.Pi / 180
	cosT, sinT := math.Cos(theta), math.Sin(theta)

	out := make([]float64, len(E))
	sum := 0.0
	for i := range E {
		x := E[i]*cosT - Y[i]*sinT
		y := E[i]*sinT + Y[i]*cosT

		fx := 2 * math.Exp(-x*x/(2*sigmaX*sigmaX)) * normCDF(gammaX*x/(sigmaX*math.Sqrt2))
		fy := 2 * math.Exp(-y*y/(2*sigmaY*sigmaY)) * normCDF(gammaY*y/(sigmaY*math.Sqrt2))
		v := fx * fy
		out[i] = v
		sum += v
	}
	if sum > 1e-12 {
		for i := range out {
			out[i] /= sum
		}
	}
	return out
}

// interp performs piecewise-linear interpolation of (xOld, yOld) at xNew.
// xOld must be monotonically increasing. left/right fill values are used
// outside the domain of xOld; when not given they default to yOld's
// endpoints.
func interp(xNew, xOld, yOld []float64, left, right *float64) []float64 {
	n := len(xOld)
	leftVal, rightVal := yOld[0], yOld[n-1]
	if left != nil {
		leftVal = *left
	}
	if right != nil {
		rightVal = *right
	}

	out := make([]float64, len(xNew))
	for i, x := range xNew {
		switch {
		case x <= xOld[0]:
			out[i] = leftVal
		case x >= xOld[n-1]:
			out[i] = rightVal
		default:
			// binary search for the interval [xOld[lo], xOld[lo+1]) containing x
			lo, hi := 0, n-1
			for hi-lo > 1 {
				mid := (lo + hi) / 2
				if xOld[mid] <= x {
					lo = mid
				} else {
					hi = mid
				}
			}
			x0, x1 := xOld[lo], xOld[lo+1]
			y0, y1 := yOld[lo], yOld[lo+1]
			t := (x - x0) / (x1 - x0)
			out[i] = y0 + t*(y1-y0)
		}
	}
	return out
}

// convolve computes the same-length convolution of data with kernel, padding
// data at both ends by edge replication. kernel is expected pre-normalized.
func convolve(data, kernel []float64) []float64 {
	n := len(data)
	k := len(kernel)
	half := k / 2

	padded := make([]float64, n+2*half)
	for i := range padded {
		src := i - half
		switch {
		case src < 0:
			padded[i] = data[0]
		case src >= n:
			padded[i] = data[n-1]
		default:
			padded[i] = data[src]
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < k; j++ {
			sum += padded[i+j] * kernel[j]
		}
		out[i] = sum
	}
	return out
}

// gaussianKernel builds a normalized, symmetric Gaussian kernel with spacing
// de and width sigma. Half-width w = ceil(5*sigma/de); if that is <= 0 the
// identity kernel [1] is returned.
func gaussianKernel(sigma, de float64) []float64 {
	w := int(math.Ceil(5 * sigma / de))
	if w <= 0 {
		return []float64{1}
	}
	n := 2*w + 1
	out := make([]float64, n)
	sum := 0.0
	for i := -w; i <= w; i++ {
		v := math.Exp(-(float64(i) * de) * (float64(i) * de) / (2 * sigma * sigma))
		out[i+w] = v
		sum += v
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// linspace returns n evenly spaced samples from a to b inclusive.
func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + step*float64(i)
	}
	return out
}

// meshgrid builds row-major mesh matrices E, Y of length len(y)*len(x) such
// that E[i*len(x)+j] = x[j] and Y[i*len(x)+j] = y[i].
func meshgrid(x, y []float64) (E, Y []float64) {
	nx, ny := len(x), len(y)
	E = make([]float64, nx*ny)
	Y = make([]float64, nx*ny)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			E[i*nx+j] = x[j]
			Y[i*nx+j] = y[i]
		}
	}
	return E, Y
}

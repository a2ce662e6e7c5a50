package irffit

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/irffit/internal/util"
)

var (
	gridOnce            sync.Once
	defaultDisplayGrid  *Grid
	defaultExtendedGrid *Grid
)

// defaultGrids lazily materializes and caches the default display/extended
// grids. They depend only on package constants, so computing them once is
// an optimization, not a change in behavior: Simulate remains a pure
// function of its params for any given pair of grids.
func defaultGrids() (display, extended *Grid) {
	gridOnce.Do(func() {
		d, err := NewGrid(DefaultDisplaySpec())
		if err != nil {
			panic("irffit: invalid default display grid spec: " + err.Error())
		}
		e, err := NewGrid(DefaultExtendedSpec())
		if err != nil {
			panic("irffit: invalid default extended grid spec: " + err.Error())
		}
		defaultDisplayGrid, defaultExtendedGrid = d, e
	})
	return defaultDisplayGrid, defaultExtendedGrid
}

// simulateConfig carries the optional collaborators a Simulate call may be
// given: a metrics sink and the noise RNG. Neither is part of the physical
// model; both are orthogonal instrumentation/approximation concerns (see
// SPEC_FULL.md §3 expansion).
type simulateConfig struct {
	metrics *Metrics
	rng     *rand.Rand
}

// SimulateOption configures an optional collaborator of Simulate.
type SimulateOption func(*simulateConfig)

// WithMetrics instruments the simulator run with m. A nil m is equivalent
// to omitting the option.
func WithMetrics(m *Metrics) SimulateOption {
	return func(c *simulateConfig) { c.metrics = m }
}

// WithNoiseSource supplies the RNG used by the Gaussian noise approximation
// (§4.2b). It is independent of the Mulberry32 stream used by Differential
// Evolution: noise has no bit-exactness contract, DE does.
func WithNoiseSource(r *rand.Rand) SimulateOption {
	return func(c *simulateConfig) {
		if r != nil {
			c.rng = r
		}
	}
}

// Simulate runs the forward simulator described by SPEC_FULL.md §4.2: it
// produces the 2D detector image, the 1D spectrum, and the extracted IRF
// for the given physical parameters. Simulate is total: for any finite
// params it returns a finite result, and its error is always nil (a corrupt
// default grid spec, which would be a programming error rather than a data
// error, makes defaultGrids panic instead).
func Simulate(params SimulatorParams, opts ...SimulateOption) (*SimulationResult, error) {
	cfg := &simulateConfig{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	display, extended := defaultGrids()

	sigmaSource := params.SigmaX / 1000
	sigmaDetector := params.SigmaRes / 1000

	idealFDExt := fermiDirac(extended.EAxis, params.Temp, 0)
	emissionExt := buildEmission(extended, idealFDExt, params.Alpha, params.SigmaY, params.GammaY)
	projectedExt := projectThroughDetector(extended, emissionExt, params.Theta, params.Kappa, sigmaSource, sigmaDetector)
	rawDisplay := interp(display.EAxis, extended.EAxis, projectedExt, nil, nil)

	maxRaw := maxOf(rawDisplay)
	spectrumClean := make([]float64, len(rawDisplay))
	for i, v := range rawDisplay {
		spectrumClean[i] = v / (maxRaw + 1e-12)
	}

	spectrum := util.CloneFloat64(spectrumClean)
	if params.PoissonNoise > 0 || params.GaussianNoise > 0 {
		spectrum = addNoise(spectrum, params, cfg.rng)
	}

	idealFDDisplay := fermiDirac(display.EAxis, params.Temp, 0)

	// IRF extraction: near-zero-temperature step response, same geometry,
	// differentiated and sign-flipped per the binding-energy convention.
	idealFDExtStep := fermiDirac(extended.EAxis, 0.01, 0)
	emissionExtStep := buildEmission(extended, idealFDExtStep, params.Alpha, params.SigmaY, params.GammaY)
	projectedExtStep := projectThroughDetector(extended, emissionExtStep, params.Theta, params.Kappa, sigmaSource, sigmaDetector)
	stepDisplay := interp(display.EAxis, extended.EAxis, projectedExtStep, nil, nil)
	maxStep := maxOf(stepDisplay)
	stepClean := make([]float64, len(stepDisplay))
	for i, v := range stepDisplay {
		stepClean[i] = v / (maxStep + 1e-12)
	}
	irfRaw := centralDifference(stepClean, display.DE)
	maxAbsIRF := maxAbsOf(irfRaw)
	irf := make([]float64, len(irfRaw))
	for i, v := range irfRaw {
		irf[i] = -v / (maxAbsIRF + 1e-12)
	}

	image2D := buildEmission(display, idealFDDisplay, params.Alpha, params.SigmaY, params.GammaY)
	spotProfile := ellipticalGaussian2D(display.E, display.Y, sigmaSource, params.SigmaY, params.GammaX, params.GammaY, 0)

	energyMeV := make([]float64, len(display.EAxis))
	for i, e := range display.EAxis {
		energyMeV[i] = e * 1000
	}

	result := &SimulationResult{
		Energy:        energyMeV,
		Spectrum:      spectrum,
		SpectrumClean: spectrumClean,
		IdealFD:       idealFDDisplay,
		IRF:           irf,
		Image2D:       image2D,
		SpotProfile:   spotProfile,
		YAxis:         util.CloneFloat64(display.YAxis),
		SigmaSource:   params.SigmaX,
		SigmaDetector: params.SigmaRes,
		SigmaCombined: math.Sqrt(params.SigmaX*params.SigmaX + params.SigmaRes*params.SigmaRes),
	}

	cfg.metrics.observeSimulate(time.Since(start))
	return result, nil
}

// buildEmission computes the 2D emission image on grid g: the Fermi-Dirac
// occupation idealFD, shifted per-row by alpha*y and weighted by a
// skew-Gaussian spatial profile (SPEC_FULL.md §4.2 step 4/11).
func buildEmission(g *Grid, idealFD []float64, alpha, sigmaY, gammaY float64) []float64 {
	out := make([]float64, g.Spec.YSteps*g.Spec.ESteps)
	skewY := skewGaussian(g.YAxis, sigmaY, gammaY)

	left := idealFD[0]
	right := 0.0
	shiftedE := make([]float64, g.Spec.ESteps)

	for i := 0; i < g.Spec.YSteps; i++ {
		shift := alpha * g.YAxis[i]
		for j, e := range g.EAxis {
			shiftedE[j] = e - shift
		}
		shifted := interp(shiftedE, g.EAxis, idealFD, &left, &right)
		for j := 0; j < g.Spec.ESteps; j++ {
			out[g.At(i, j)] = shifted[j] * skewY[i]
		}
	}
	return out
}

// projectThroughDetector applies the rotation + smile distortion of
// SPEC_FULL.md §4.2a to emission (defined on grid g), samples it by
// bilinear interpolation, sums columns into a 1D spectrum, and convolves
// with the source/detector resolution kernels.
func projectThroughDetector(g *Grid, emission []float64, thetaDeg, kappa, sigmaSource, sigmaDetector float64) []float64 {
	thetaRad := thetaDeg * math.Pi / 180
	cosT, sinT := math.Cos(thetaRad), math.Sin(thetaRad)

	yMax := 0.0
	for _, y := range g.YAxis {
		if math.Abs(y) > yMax {
			yMax = math.Abs(y)
		}
	}

	spec1D := make([]float64, g.Spec.ESteps)
	for i := 0; i < g.Spec.YSteps; i++ {
		for j := 0; j < g.Spec.ESteps; j++ {
			idx := g.At(i, j)
			e, y := g.E[idx], g.Y[idx]
			yNorm := y / yMax

			eSrc := e*cosT + y*sinT
			ySrc := -e*sinT + y*cosT
			eSrcCurved := eSrc - kappa*yNorm*yNorm

			spec1D[j] += bilinearSample(g, emission, ySrc, eSrcCurved)
		}
	}

	if sigmaSource > 0 {
		spec1D = convolve(spec1D, gaussianKernel(sigmaSource, g.DE))
	}
	if sigmaDetector > 0 {
		spec1D = convolve(spec1D, gaussianKernel(sigmaDetector, g.DE))
	}
	return spec1D
}

// bilinearSample samples buffer (defined on grid g's uniform axes) at
// (yQuery, eQuery) by bilinear interpolation; queries outside the grid's
// extent return 0.
func bilinearSample(g *Grid, buffer []float64, yQuery, eQuery float64) float64 {
	ny, ne := g.Spec.YSteps, g.Spec.ESteps
	dy := g.YAxis[1] - g.YAxis[0]

	yIdx := (yQuery - g.YAxis[0]) / dy
	eIdx := (eQuery - g.EAxis[0]) / g.DE

	if yIdx < 0 || yIdx > float64(ny-1) || eIdx < 0 || eIdx > float64(ne-1) {
		return 0
	}

	y0 := int(math.Floor(yIdx))
	if y0 >= ny-1 {
		y0 = ny - 2
	}
	e0 := int(math.Floor(eIdx))
	if e0 >= ne-1 {
		e0 = ne - 2
	}
	ty := yIdx - float64(y0)
	te := eIdx - float64(e0)

	v00 := buffer[g.At(y0, e0)]
	v01 := buffer[g.At(y0, e0+1)]
	v10 := buffer[g.At(y0+1, e0)]
	v11 := buffer[g.At(y0+1, e0+1)]

	top := v00*(1-te) + v01*te
	bot := v10*(1-te) + v11*te
	return top*(1-ty) + bot*ty
}

// centralDifference differentiates y with spacing de, using central
// differences in the interior and one-sided differences at the endpoints.
func centralDifference(y []float64, de float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = (y[1] - y[0]) / de
	out[n-1] = (y[n-1] - y[n-2]) / de
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / (2 * de)
	}
	return out
}

func maxOf(x []float64) float64 {
	m := math.Inf(-1)
	for _, v := range x {
		if v > m {
			m = v
		}
	}
	return m
}

func maxAbsOf(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

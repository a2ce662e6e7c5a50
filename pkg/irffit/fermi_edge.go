package irffit

import (
	"fmt"
	"math"
	"time"
)

// FermiEdgeFitRequest is the input to FitFermiEdge, mirroring the
// FitFermiEdge worker request of SPEC_FULL.md §6.
type FermiEdgeFitRequest struct {
	Energy           []float64 // eV
	ObservedSpectrum []float64
	Temp             float64 // initial/fixed temperature, K
	FitTemp          bool
	UseGlobalOpt     bool
}

// NewFermiEdgeFitRequest builds a request with UseGlobalOpt defaulted to
// true, the contractual default of SPEC_FULL.md §4.5 ("Run curve_fit with
// use_global_opt=true by default").
func NewFermiEdgeFitRequest(energy, observed []float64, temp float64, fitTemp bool) FermiEdgeFitRequest {
	return FermiEdgeFitRequest{
		Energy:           energy,
		ObservedSpectrum: observed,
		Temp:             temp,
		FitTemp:          fitTemp,
		UseGlobalOpt:     true,
	}
}

// FermiEdgeFitResult is the outcome of FitFermiEdge.
type FermiEdgeFitResult struct {
	Success bool

	EfShift      float64
	EfShiftError float64

	SigmaTotal      float64 // eV
	SigmaTotalError float64

	TempFit  float64
	TempError float64

	Amplitude float64
	Offset    float64

	FittedSpectrum []float64
	RSquared       float64
	Residuals      []float64

	ErrorMessage string
}

// fermiEdgeModel bundles the fixed temperature (when not being fit) and the
// energy axis with an eval method, per Design Note §9 ("express as a
// struct bundling fixed_temp and the eval method" rather than a closure
// over the grid).
type fermiEdgeModel struct {
	energy    []float64
	fitTemp   bool
	fixedTemp float64
}

func (m *fermiEdgeModel) eval(p []float64) []float64 {
	var ef, sigma, temp, amplitude, offset float64
	if m.fitTemp {
		ef, sigma, temp, amplitude, offset = p[0], p[1], p[2], p[3], p[4]
	} else {
		ef, sigma, amplitude, offset = p[0], p[1], p[2], p[3]
		temp = m.fixedTemp
	}

	fd := fermiDiracConvolved(m.energy, ef, temp, sigma)
	out := make([]float64, len(fd))
	for i, v := range fd {
		out[i] = amplitude*v + offset
	}
	return out
}

// fermiDiracConvolved evaluates the Fermi-Dirac distribution at ef/T on a
// padded energy axis and convolves it with a Gaussian of width sigma,
// returning the central len(e) samples (SPEC_FULL.md §4.5).
func fermiDiracConvolved(e []float64, ef, T, sigma float64) []float64 {
	de := math.Abs(e[1] - e[0])
	nPad := int(math.Ceil(10 * sigma / de))
	nPad = int(clamp(float64(nPad), 10, 1000))

	n := len(e)
	padded := make([]float64, n+2*nPad)
	for i := range padded {
		padded[i] = e[0] + float64(i-nPad)*de
	}

	paddedFD := fermiDirac(padded, T, ef)
	convolved := convolve(paddedFD, gaussianKernel(sigma, de))
	return convolved[nPad : nPad+n]
}

// FitFermiEdge recovers Fermi-edge parameters (edge position, total
// resolution, optionally temperature) from an observed spectrum
// (SPEC_FULL.md §4.5). Invalid input is reported via
// Success=false/ErrorMessage rather than a Go error, matching §7.
func FitFermiEdge(req FermiEdgeFitRequest, opts ...FitOption) FermiEdgeFitResult {
	cfg := defaultFitConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(req.Energy) == 0 || len(req.ObservedSpectrum) == 0 {
		return FermiEdgeFitResult{Success: false, ErrorMessage: "energy and observed_spectrum must not be empty"}
	}
	if len(req.Energy) != len(req.ObservedSpectrum) {
		return FermiEdgeFitResult{Success: false, ErrorMessage: fmt.Sprintf(
			"energy and observed_spectrum length mismatch (%d vs %d)", len(req.Energy), len(req.ObservedSpectrum))}
	}
	if !isFiniteSlice(req.Energy) || !isFiniteSlice(req.ObservedSpectrum) {
		return FermiEdgeFitResult{Success: false, ErrorMessage: "energy and observed_spectrum must contain only finite values"}
	}

	start := time.Now()
	model := &fermiEdgeModel{energy: req.Energy, fitTemp: req.FitTemp, fixedTemp: req.Temp}

	var bounds OptimizationBounds
	var initial []float64
	if req.FitTemp {
		bounds = OptimizationBounds{
			Lower: []float64{-0.05, 1e-4, 0.1, 0.5, -0.5},
			Upper: []float64{0.05, 0.05, 300, 2.0, 0.5},
		}
		initial = []float64{0, 0.005, req.Temp, 1, 0}
	} else {
		bounds = OptimizationBounds{
			Lower: []float64{-0.05, 1e-4, 0.5, -0.5},
			Upper: []float64{0.05, 0.05, 2.0, 0.5},
		}
		initial = []float64{0, 0.005, 1, 0}
	}

	deOpts := cfg.deOptions
	deOpts.OnProgress = cfg.onProgress
	deOpts.Metrics = cfg.metrics

	cfResult, err := CurveFit(model.eval, req.ObservedSpectrum, bounds, initial, req.UseGlobalOpt, deOpts, cfg.lmOptions)
	if err != nil {
		return FermiEdgeFitResult{Success: false, ErrorMessage: err.Error()}
	}

	var efShift, sigmaTotal, tempFit, amplitude, offset float64
	var efErr, sigmaErr, tempErr float64
	if req.FitTemp {
		efShift, sigmaTotal, tempFit, amplitude, offset =
			cfResult.Params[0], cfResult.Params[1], cfResult.Params[2], cfResult.Params[3], cfResult.Params[4]
		efErr, sigmaErr, tempErr = cfResult.ParamErrors[0], cfResult.ParamErrors[1], cfResult.ParamErrors[2]
	} else {
		efShift, sigmaTotal, amplitude, offset =
			cfResult.Params[0], cfResult.Params[1], cfResult.Params[2], cfResult.Params[3]
		efErr, sigmaErr = cfResult.ParamErrors[0], cfResult.ParamErrors[1]
		tempFit = req.Temp
		tempErr = math.NaN()
	}

	cfg.metrics.observeFit("fermi_edge", time.Since(start))

	return FermiEdgeFitResult{
		Success:         true,
		EfShift:         efShift,
		EfShiftError:    efErr,
		SigmaTotal:      sigmaTotal,
		SigmaTotalError: sigmaErr,
		TempFit:         tempFit,
		TempError:       tempErr,
		Amplitude:       amplitude,
		Offset:          offset,
		FittedSpectrum:  model.eval(cfResult.Params),
		RSquared:        cfResult.RSquared,
		Residuals:       cfResult.Residuals,
	}
}

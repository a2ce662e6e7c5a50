package irffit

import "time"

// IRFEstimationRequest is the input to EstimateIRF.
type IRFEstimationRequest struct {
	ObservedSpectrum []float64
	Temp             float64
	Bounds           *OptimizationBounds // nil uses DefaultIRFBounds()
	MaxIterations    int                 // 0 uses the default of 50
}

// DefaultIRFBounds returns the contractual bounds for the 8-parameter
// estimation, in the fixed order (kappa, theta, sigma_res, alpha, sigma_x,
// sigma_y, gamma_x, gamma_y).
func DefaultIRFBounds() OptimizationBounds {
	return OptimizationBounds{
		Lower: []float64{0, -0.5, 0.1, -0.01, 0.01, 0.01, -5, -10},
		Upper: []float64{0.1, 0.5, 10, 0.01, 5, 5, 5, 10},
	}
}

// IRFEstimationResult is the outcome of EstimateIRF.
type IRFEstimationResult struct {
	Success bool

	Kappa    float64
	Theta    float64
	SigmaRes float64
	Alpha    float64
	SigmaX   float64
	SigmaY   float64
	GammaX   float64
	GammaY   float64

	FittedSpectrum []float64
	IRF            []float64
	Fitness        float64
	Iterations     int

	ErrorMessage string
}

func paramsFromIRFVector(p []float64, temp float64) SimulatorParams {
	return SimulatorParams{
		Kappa:    p[0],
		Theta:    p[1],
		SigmaRes: p[2],
		Alpha:    p[3],
		SigmaX:   p[4],
		SigmaY:   p[5],
		GammaX:   p[6],
		GammaY:   p[7],
		Temp:     temp,
	}
}

// EstimateIRF recovers the 8 physical parameters of the forward simulator
// that best reproduce an observed spectrum, by Differential Evolution alone
// over a normalized-spectrum mean-squared-error objective (SPEC_FULL.md
// §4.6). Invalid input is reported via Success=false/ErrorMessage rather
// than a Go error, matching §7.
func EstimateIRF(req IRFEstimationRequest, opts ...FitOption) IRFEstimationResult {
	cfg := defaultFitConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(req.ObservedSpectrum) == 0 {
		return IRFEstimationResult{Success: false, ErrorMessage: "observed_spectrum must not be empty"}
	}
	if !isFiniteSlice(req.ObservedSpectrum) {
		return IRFEstimationResult{Success: false, ErrorMessage: "observed_spectrum must contain only finite values"}
	}

	bounds := DefaultIRFBounds()
	if req.Bounds != nil {
		bounds = *req.Bounds
	}
	if err := bounds.Validate(); err != nil {
		return IRFEstimationResult{Success: false, ErrorMessage: err.Error()}
	}

	maxIter := req.MaxIterations
	if maxIter <= 0 {
		maxIter = 50
	}

	observedMax := maxOf(req.ObservedSpectrum)
	observedNorm := make([]float64, len(req.ObservedSpectrum))
	for i, v := range req.ObservedSpectrum {
		observedNorm[i] = v / (observedMax + 1e-12)
	}

	objective := func(p []float64) float64 {
		simParams := paramsFromIRFVector(p, req.Temp)
		result, err := Simulate(simParams, WithMetrics(cfg.metrics))
		if err != nil {
			return 1e18
		}

		simMax := maxOf(result.SpectrumClean)
		n := len(result.SpectrumClean)
		if len(observedNorm) < n {
			n = len(observedNorm)
		}

		sum := 0.0
		for i := 0; i < n; i++ {
			simVal := result.SpectrumClean[i] / (simMax + 1e-12)
			d := simVal - observedNorm[i]
			sum += d * d
		}
		return sum / float64(n)
	}

	// DE tuning is pinned per SPEC_FULL.md §4.6 ("seed 42, pop 15"), not
	// caller-configurable via WithDEOptions; only a supplied cancellation
	// context rides through cfg.deOptions.Ctx.
	deOpts := DEOptions{
		MaxIter: maxIter,
		Pop:     15,
		F:       DefaultDEOptions().F,
		CR:      DefaultDEOptions().CR,
		Tol:     DefaultDEOptions().Tol,
		Seed:    42,

		OnProgress: cfg.onProgress,
		Metrics:    cfg.metrics,
		Ctx:        cfg.deOptions.Ctx,
	}

	start := time.Now()
	deResult, err := DifferentialEvolution(objective, bounds, deOpts)
	if err != nil {
		return IRFEstimationResult{Success: false, ErrorMessage: err.Error()}
	}
	cfg.metrics.observeFit("irf_estimate", time.Since(start))

	simParams := paramsFromIRFVector(deResult.X, req.Temp)
	simResult, err := Simulate(simParams, WithMetrics(cfg.metrics))
	if err != nil {
		return IRFEstimationResult{Success: false, ErrorMessage: err.Error()}
	}

	return IRFEstimationResult{
		Success:        true,
		Kappa:          deResult.X[0],
		Theta:          deResult.X[1],
		SigmaRes:       deResult.X[2],
		Alpha:          deResult.X[3],
		SigmaX:         deResult.X[4],
		SigmaY:         deResult.X[5],
		GammaX:         deResult.X[6],
		GammaY:         deResult.X[7],
		FittedSpectrum: simResult.SpectrumClean,
		IRF:            simResult.IRF,
		Fitness:        deResult.Fitness,
		Iterations:     deResult.Iterations,
	}
}

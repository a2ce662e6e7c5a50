package irffit

import "math"

// fitConfig carries the optional collaborators shared by FitFermiEdge and
// EstimateIRF: metrics, progress forwarding, and optimizer option overrides.
type fitConfig struct {
	metrics    *Metrics
	onProgress ProgressFunc
	deOptions  DEOptions
	lmOptions  LMOptions
}

func defaultFitConfig() fitConfig {
	return fitConfig{deOptions: DefaultDEOptions(), lmOptions: DefaultLMOptions()}
}

// FitOption configures an optional collaborator of FitFermiEdge/EstimateIRF.
type FitOption func(*fitConfig)

// WithFitMetrics instruments the fit with m.
func WithFitMetrics(m *Metrics) FitOption {
	return func(c *fitConfig) { c.metrics = m }
}

// WithFitProgress forwards per-iteration DE progress to fn, the Go
// realization of the worker contract's Progress message stream
// (SPEC_FULL.md §4.7/§6).
func WithFitProgress(fn ProgressFunc) FitOption {
	return func(c *fitConfig) { c.onProgress = fn }
}

// WithDEOptions overrides the Differential Evolution options used by the
// global search phase of curve fitting.
func WithDEOptions(o DEOptions) FitOption {
	return func(c *fitConfig) { c.deOptions = o }
}

// WithLMOptions overrides the Levenberg-Marquardt options used by the local
// refinement phase of curve fitting.
func WithLMOptions(o LMOptions) FitOption {
	return func(c *fitConfig) { c.lmOptions = o }
}

func isFiniteSlice(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

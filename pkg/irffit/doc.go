// Package irffit simulates and fits the instrumental response function (IRF)
// of an X-ray photoelectron spectroscopy measurement near the Fermi edge.
//
// The package has three layers: pure physics kernels (kernels.go, grid.go),
// a forward simulator composing them into a 2D detector image and 1D
// spectrum (simulator.go), and an inverse-fitting engine (de.go, lm.go,
// curvefit.go, fermi_edge.go, irf_estimate.go) wrapping the simulator as the
// forward model for Differential Evolution + Levenberg-Marquardt fits. A
// small worker contract (worker.go, host.go) runs fits in the background
// with cancellation, for hosts that need to keep fitting off their main
// goroutine.
package irffit

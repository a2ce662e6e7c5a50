package irffit

import (
	"context"
	"fmt"
)

// Request is implemented by the two message types a Host accepts:
// FitFermiEdgeRequest and EstimateIRFRequest. ID is an opaque identifier
// assigned by the caller (a monotonic counter + timestamp, per
// SPEC_FULL.md §6) used to correlate Progress/Result/Error responses with
// the request that produced them.
type Request interface {
	requestID() string
}

// FitFermiEdgeRequest is the FitFermiEdge worker message of SPEC_FULL.md §6.
type FitFermiEdgeRequest struct {
	ID string
	FermiEdgeFitRequest
}

func (r FitFermiEdgeRequest) requestID() string { return r.ID }

// EstimateIRFRequest is the EstimateIRF worker message of SPEC_FULL.md §6.
type EstimateIRFRequest struct {
	ID string
	IRFEstimationRequest
}

func (r EstimateIRFRequest) requestID() string { return r.ID }

// nominalFermiEdgeMaxIterations is the max_iterations used to compute
// Fermi-edge Progress.Progress, per SPEC_FULL.md §6 ("The Fermi-edge
// progress uses a nominal max_iterations=100").
const nominalFermiEdgeMaxIterations = 100

// Progress reports one completed optimizer sweep for the request named by
// ID (SPEC_FULL.md §6).
type Progress struct {
	ID       string
	Iteration int
	Fitness   float64
	Percent   float64 // 0..100
}

// Result carries a request's terminal successful outcome: either a
// *FermiEdgeFitResult or an *IRFEstimationResult, depending on which
// request produced it.
type Result struct {
	ID     string
	Result any
}

// Error carries a request's terminal failure.
type Error struct {
	ID    string
	Err   error
}

func (e Error) Error() string { return fmt.Sprintf("%s: %v", e.ID, e.Err) }

// fitJob is the common shape a dispatched request is reduced to: run the
// fit to completion, forwarding progress, and return its result or error.
// Grounded on the bridge pattern the rest of this package's worker layer
// generalizes from — one function (dispatch) builds the right
// implementation of a common interface, instead of branching on the
// request's shape at every call site.
type fitJob interface {
	run(ctx context.Context, progress func(iteration int, fitness float64)) (any, error)
}

type fermiEdgeJob struct {
	req     FermiEdgeFitRequest
	metrics *Metrics
}

func (j fermiEdgeJob) run(ctx context.Context, progress func(iteration int, fitness float64)) (any, error) {
	deOpts := DefaultDEOptions()
	deOpts.Ctx = ctx
	result := FitFermiEdge(j.req,
		WithFitMetrics(j.metrics),
		WithFitProgress(progress),
		WithDEOptions(deOpts),
	)
	if !result.Success {
		return nil, fmt.Errorf("%s", result.ErrorMessage)
	}
	return &result, nil
}

type irfEstimateJob struct {
	req     IRFEstimationRequest
	metrics *Metrics
}

func (j irfEstimateJob) run(ctx context.Context, progress func(iteration int, fitness float64)) (any, error) {
	// EstimateIRF pins its own DE tuning (seed 42, pop 15) per SPEC_FULL.md
	// §4.6; max_iterations comes from j.req directly, so the only thing
	// threaded through WithDEOptions here is the cancellation context.
	deOpts := DefaultDEOptions()
	deOpts.Ctx = ctx
	result := EstimateIRF(j.req,
		WithFitMetrics(j.metrics),
		WithFitProgress(progress),
		WithDEOptions(deOpts),
	)
	if !result.Success {
		return nil, fmt.Errorf("%s", result.ErrorMessage)
	}
	return &result, nil
}

// dispatch resolves req to the fitJob that will run it. Go's static typing
// makes the probe-each-implementation approach of identifying a device
// driver unnecessary here: the request's concrete type already names which
// fitter applies, so dispatch is a direct type switch.
func dispatch(req Request, metrics *Metrics) (fitJob, maxIterFn, error) {
	switch r := req.(type) {
	case FitFermiEdgeRequest:
		return fermiEdgeJob{req: r.FermiEdgeFitRequest, metrics: metrics},
			func() int { return nominalFermiEdgeMaxIterations }, nil
	case EstimateIRFRequest:
		maxIter := r.MaxIterations
		if maxIter <= 0 {
			maxIter = 50
		}
		return irfEstimateJob{req: r.IRFEstimationRequest, metrics: metrics},
			func() int { return maxIter }, nil
	default:
		return nil, nil, ErrUnknownMessageType
	}
}

// maxIterFn reports the max_iterations a dispatched job's Progress.Percent
// is computed against (nominal 100 for Fermi-edge, caller-supplied for IRF
// estimation, per SPEC_FULL.md §6).
type maxIterFn func() int

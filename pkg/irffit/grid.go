package irffit

import "fmt"

// GridSpec describes a rectangular product grid over (energy, y) before its
// axes are materialized.
type GridSpec struct {
	EStart float64
	EEnd   float64
	ESteps int
	YStart float64
	YEnd   float64
	YSteps int
}

// DefaultDisplaySpec is the default display-grid specification: a narrow
// energy window at high resolution.
func DefaultDisplaySpec() GridSpec {
	return GridSpec{EStart: -0.1, EEnd: 0.1, ESteps: 500, YStart: -10, YEnd: 10, YSteps: 200}
}

// DefaultExtendedSpec is the default extended-grid specification: a wider
// energy window that absorbs convolution edge effects before the result is
// interpolated back onto the display grid.
func DefaultExtendedSpec() GridSpec {
	return GridSpec{EStart: -0.15, EEnd: 0.15, ESteps: 750, YStart: -10, YEnd: 10, YSteps: 200}
}

// Grid is a materialized rectangular product grid: uniform e/y axes plus
// their row-major mesh matrices (E[i*ESteps+j] = EAxis[j], Y[i*ESteps+j] =
// YAxis[i]).
type Grid struct {
	Spec  GridSpec
	EAxis []float64
	YAxis []float64
	E     []float64 // row-major mesh, length YSteps*ESteps
	Y     []float64 // row-major mesh, length YSteps*ESteps
	DE    float64
}

// NewGrid validates spec and materializes its axes and mesh.
func NewGrid(spec GridSpec) (*Grid, error) {
	if spec.ESteps < 2 {
		return nil, fmt.Errorf("irffit: grid e_steps must be >= 2, got %d", spec.ESteps)
	}
	if spec.YSteps < 2 {
		return nil, fmt.Errorf("irffit: grid y_steps must be >= 2, got %d", spec.YSteps)
	}
	if spec.EStart >= spec.EEnd {
		return nil, fmt.Errorf("irffit: grid e_start (%g) must be < e_end (%g)", spec.EStart, spec.EEnd)
	}
	if spec.YStart >= spec.YEnd {
		return nil, fmt.Errorf("irffit: grid y_start (%g) must be < y_end (%g)", spec.YStart, spec.YEnd)
	}

	eAxis := linspace(spec.EStart, spec.EEnd, spec.ESteps)
	yAxis := linspace(spec.YStart, spec.YEnd, spec.YSteps)
	E, Y := meshgrid(eAxis, yAxis)

	return &Grid{
		Spec:  spec,
		EAxis: eAxis,
		YAxis: yAxis,
		E:     E,
		Y:     Y,
		DE:    eAxis[1] - eAxis[0],
	}, nil
}

// At returns the flat mesh index for row i (y), column j (e).
func (g *Grid) At(i, j int) int {
	return i*g.Spec.ESteps + j
}

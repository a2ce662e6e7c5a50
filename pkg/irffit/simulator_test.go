package irffit

import (
	"math"
	"testing"
)

func TestSimulate_DefaultParamsSigmaCombined(t *testing.T) {
	result, err := Simulate(DefaultSimulatorParams())
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	want := math.Sqrt(0.5*0.5 + 1.5*1.5)
	if math.Abs(result.SigmaCombined-want) > 1e-9 {
		t.Errorf("SigmaCombined = %g, want %g", result.SigmaCombined, want)
	}
	if math.Abs(result.SigmaCombined-1.5811) > 1e-4 {
		t.Errorf("SigmaCombined = %g, want ~1.5811", result.SigmaCombined)
	}
}

func TestSimulate_OutputShapes(t *testing.T) {
	result, err := Simulate(DefaultSimulatorParams())
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	display, _ := defaultGrids()
	n := display.Spec.ESteps
	for name, got := range map[string][]float64{
		"Energy":        result.Energy,
		"Spectrum":      result.Spectrum,
		"SpectrumClean": result.SpectrumClean,
		"IdealFD":       result.IdealFD,
		"IRF":           result.IRF,
	} {
		if len(got) != n {
			t.Errorf("%s length = %d, want %d", name, len(got), n)
		}
	}
	if len(result.YAxis) != display.Spec.YSteps {
		t.Errorf("YAxis length = %d, want %d", len(result.YAxis), display.Spec.YSteps)
	}
	if len(result.Image2D) != display.Spec.YSteps*display.Spec.ESteps {
		t.Errorf("Image2D length = %d, want %d", len(result.Image2D), display.Spec.YSteps*display.Spec.ESteps)
	}
}

func TestSimulate_IRFNormalizedToUnitPeak(t *testing.T) {
	result, err := Simulate(DefaultSimulatorParams())
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	maxAbs := 0.0
	for _, v := range result.IRF {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	if math.Abs(maxAbs-1) > 1e-6 {
		t.Errorf("max|IRF| = %g, want 1", maxAbs)
	}
}

func TestSimulate_SpectrumCleanIsNonNegativeAndBounded(t *testing.T) {
	result, err := Simulate(DefaultSimulatorParams())
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	for i, v := range result.SpectrumClean {
		if v < -1e-9 || v > 1+1e-6 {
			t.Errorf("SpectrumClean[%d] = %g, want in [0,1]", i, v)
		}
	}
}

func TestSimulate_DeterministicWithoutNoise(t *testing.T) {
	p := DefaultSimulatorParams()
	r1, err := Simulate(p)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	r2, err := Simulate(p)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	for i := range r1.Spectrum {
		if r1.Spectrum[i] != r2.Spectrum[i] {
			t.Fatalf("Simulate not deterministic at %d: %g vs %g", i, r1.Spectrum[i], r2.Spectrum[i])
		}
	}
}

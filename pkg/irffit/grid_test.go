package irffit

import "testing"

func TestNewGrid_RejectsDegenerateSpecs(t *testing.T) {
	cases := []GridSpec{
		{EStart: 0, EEnd: 1, ESteps: 1, YStart: 0, YEnd: 1, YSteps: 10},
		{EStart: 0, EEnd: 1, ESteps: 10, YStart: 0, YEnd: 1, YSteps: 1},
		{EStart: 1, EEnd: 1, ESteps: 10, YStart: 0, YEnd: 1, YSteps: 10},
		{EStart: 0, EEnd: 1, ESteps: 10, YStart: 1, YEnd: 1, YSteps: 10},
	}
	for i, spec := range cases {
		if _, err := NewGrid(spec); err == nil {
			t.Errorf("case %d: NewGrid(%+v) succeeded, want error", i, spec)
		}
	}
}

func TestNewGrid_AxesAndStride(t *testing.T) {
	g, err := NewGrid(GridSpec{EStart: 0, EEnd: 4, ESteps: 5, YStart: 0, YEnd: 2, YSteps: 3})
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	if len(g.EAxis) != 5 || len(g.YAxis) != 3 {
		t.Fatalf("axis lengths = %d/%d, want 5/3", len(g.EAxis), len(g.YAxis))
	}
	if g.DE != 1 {
		t.Errorf("DE = %g, want 1", g.DE)
	}
	if g.At(2, 3) != 2*5+3 {
		t.Errorf("At(2,3) = %d, want %d", g.At(2, 3), 2*5+3)
	}
	if g.E[g.At(1, 4)] != 4 || g.Y[g.At(2, 0)] != 2 {
		t.Errorf("mesh values at stride index incorrect: E=%g Y=%g", g.E[g.At(1, 4)], g.Y[g.At(2, 0)])
	}
}

func TestDefaultGrids_Valid(t *testing.T) {
	if _, err := NewGrid(DefaultDisplaySpec()); err != nil {
		t.Errorf("DefaultDisplaySpec invalid: %v", err)
	}
	if _, err := NewGrid(DefaultExtendedSpec()); err != nil {
		t.Errorf("DefaultExtendedSpec invalid: %v", err)
	}
}

package irffit

import (
	"math"
	"testing"
)

func TestErf_OddSymmetry(t *testing.T) {
	for _, x := range []float64{0.1, 0.5, 1.2, 3.0} {
		got := erf(x) + erf(-x)
		if math.Abs(got) > 1e-7 {
			t.Errorf("erf(%g)+erf(-%g) = %g, want ~0", x, x, got)
		}
	}
}

func TestErf_KnownValues(t *testing.T) {
	// Reference values from standard tables, within the documented ~1.5e-7
	// approximation error.
	cases := map[float64]float64{
		0:   0,
		1:   0.8427007929497149,
		2:   0.9953222650189527,
		0.5: 0.5204998778130465,
	}
	for x, want := range cases {
		if got := erf(x); math.Abs(got-want) > 2e-7 {
			t.Errorf("erf(%g) = %g, want %g", x, got, want)
		}
	}
}

func TestFermiDirac_ZeroTemperatureIsStep(t *testing.T) {
	e := linspace(-1, 1, 201)
	out := fermiDirac(e, 0, 0)
	for i, ei := range e {
		want := 1.0
		if ei > 0 {
			want = 0.0
		}
		if out[i] != want {
			t.Fatalf("fermiDirac(%g, T=0) = %g, want %g", ei, out[i], want)
		}
	}
}

func TestFermiDirac_MidpointIsHalf(t *testing.T) {
	out := fermiDirac([]float64{0.03}, 300, 0.03)
	if math.Abs(out[0]-0.5) > 1e-9 {
		t.Errorf("fermiDirac at e=ef = %g, want 0.5", out[0])
	}
}

func TestGaussianKernel_NormalizedAndSymmetric(t *testing.T) {
	k := gaussianKernel(0.01, 0.001)
	sum := 0.0
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("gaussianKernel sum = %g, want 1", sum)
	}
	n := len(k)
	for i := 0; i < n/2; i++ {
		if math.Abs(k[i]-k[n-1-i]) > 1e-12 {
			t.Errorf("gaussianKernel not symmetric at %d/%d: %g vs %g", i, n-1-i, k[i], k[n-1-i])
		}
	}
}

func TestConvolve_IdentityKernel(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	out := convolve(data, []float64{1})
	for i := range data {
		if out[i] != data[i] {
			t.Errorf("convolve with identity kernel at %d: got %g, want %g", i, out[i], data[i])
		}
	}
}

func TestConvolve_ConstantSignalUnchangedByNormalizedKernel(t *testing.T) {
	data := make([]float64, 20)
	for i := range data {
		data[i] = 3.5
	}
	out := convolve(data, gaussianKernel(0.02, 0.001))
	for i, v := range out {
		if math.Abs(v-3.5) > 1e-9 {
			t.Errorf("convolve(constant) at %d = %g, want 3.5", i, v)
		}
	}
}

func TestInterp_LinearExact(t *testing.T) {
	xOld := linspace(0, 10, 11)
	yOld := make([]float64, len(xOld))
	for i, x := range xOld {
		yOld[i] = 2*x + 1
	}
	xNew := []float64{0.5, 3.25, 9.9}
	got := interp(xNew, xOld, yOld, nil, nil)
	for i, x := range xNew {
		want := 2*x + 1
		if math.Abs(got[i]-want) > 1e-9 {
			t.Errorf("interp(%g) = %g, want %g", x, got[i], want)
		}
	}
}

func TestInterp_OutOfDomainUsesFillValues(t *testing.T) {
	xOld := []float64{0, 1, 2}
	yOld := []float64{10, 20, 30}
	left, right := -1.0, 99.0
	got := interp([]float64{-5, 5}, xOld, yOld, &left, &right)
	if got[0] != -1 || got[1] != 99 {
		t.Errorf("interp out-of-domain = %v, want [-1 99]", got)
	}
}

func TestSkewGaussian_ZeroSkewIsSymmetric(t *testing.T) {
	x := linspace(-5, 5, 101)
	out := skewGaussian(x, 1.0, 0)
	n := len(out)
	for i := 0; i < n/2; i++ {
		if math.Abs(out[i]-out[n-1-i]) > 1e-9 {
			t.Errorf("skewGaussian(gamma=0) not symmetric at %d", i)
		}
	}
}

func TestMeshgrid_Layout(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{10, 20}
	E, Y := meshgrid(x, y)
	if len(E) != 6 || len(Y) != 6 {
		t.Fatalf("meshgrid length = %d/%d, want 6/6", len(E), len(Y))
	}
	// row-major: E[i*3+j] = x[j], Y[i*3+j] = y[i]
	if E[0*3+2] != 3 || Y[1*3+0] != 20 {
		t.Errorf("meshgrid layout mismatch: E=%v Y=%v", E, Y)
	}
}

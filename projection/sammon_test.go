package projection

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/gogpu/pointviz"
)

func TestSammonGradient(t *testing.T) {
	src := sampleSource()
	st := newStress(src.d, mat.DenseCopyOf(src.px))

	w := []float64{
		0.3, -0.2, 0.5, 0.1,
		-0.4, 0.6, 0.2, -0.1,
		0.2, 0.1, -0.3, 0.7,
	}
	grad := make([]float64, len(w))
	st.grad(grad, w)

	const h = 1e-6
	for k := range w {
		orig := w[k]
		w[k] = orig + h
		fp := st.value(w)
		w[k] = orig - h
		fm := st.value(w)
		w[k] = orig

		numeric := (fp - fm) / (2 * h)
		if math.Abs(numeric-grad[k]) > 1e-5 {
			t.Errorf("grad[%d] = %v, want %v", k, grad[k], numeric)
		}
	}
}

func TestSammonReducesStress(t *testing.T) {
	src := sampleSource()
	st := newStress(src.d, mat.DenseCopyOf(src.px))
	start := st.value(st.initial())

	w, err := NewSammon().Optimize(src.d, src.px)
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	flat := make([]float64, 0, 12)
	for _, v := range w {
		if len(v) != 4 {
			t.Fatalf("len(weights) = %d, want 4", len(v))
		}
		flat = append(flat, v...)
	}
	if got := st.value(flat); got > start+1e-12 {
		t.Errorf("stress after Optimize() = %v, want <= %v", got, start)
	}
}

func TestSammonDeterministic(t *testing.T) {
	src := sampleSource()
	s := Stress{Optimizer: NewSammon()}

	first, err := s.Project(src)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	second, err := s.Project(src)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Project()[%d] differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestSammonErrors(t *testing.T) {
	src := sampleSource()
	tests := []struct {
		name      string
		distances mat.Matrix
	}{
		{"wrong shape", mat.NewDense(2, 2, nil)},
		{"all zero", mat.NewDense(6, 6, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSammon().Optimize(tt.distances, src.px)
			if !errors.Is(err, pointviz.ErrOptimizer) {
				t.Errorf("Optimize() error = %v, want ErrOptimizer", err)
			}
		})
	}
}

func TestSammonOptions(t *testing.T) {
	s := NewSammon(WithMaxIterations(10), WithGradientThreshold(1e-3))
	if s.MaxIterations != 10 {
		t.Errorf("MaxIterations = %d, want 10", s.MaxIterations)
	}
	if s.GradientThreshold != 1e-3 {
		t.Errorf("GradientThreshold = %v, want 1e-3", s.GradientThreshold)
	}
}

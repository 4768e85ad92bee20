package projection

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/gogpu/pointviz"
)

// Sammon defaults.
const (
	DefaultMaxIterations     = 1000
	DefaultGradientThreshold = 1e-8
)

// minDistance floors projected distances in the gradient.
const minDistance = 1e-12

// errNoPairs is returned when no pair of points has a positive target
// distance, leaving nothing to fit.
var errNoPairs = errors.New("projection: no pair of points with positive target distance")

// Sammon fits a linear 3D projection W (3×P) minimizing Sammon's stress
//
//	E(W) = 1/c * sum_{i<j} (d*_ij - d_ij)^2 / d*_ij,  c = sum_{i<j} d*_ij
//
// where d*_ij is the target distance and d_ij = |W x_i - W x_j|. Pairs with
// d*_ij = 0 are skipped. The start point is the top three principal axes of
// the pixels, scaled to the target distances, so the result is a
// deterministic function of the input. L-BFGS performs the minimization.
type Sammon struct {
	MaxIterations     int
	GradientThreshold float64
}

// SammonOption configures a Sammon optimizer.
type SammonOption func(*Sammon)

// WithMaxIterations caps the number of L-BFGS major iterations. Reaching
// the cap is a convergence failure.
func WithMaxIterations(n int) SammonOption {
	return func(s *Sammon) {
		s.MaxIterations = n
	}
}

// WithGradientThreshold sets the gradient infinity norm treated as
// converged.
func WithGradientThreshold(g float64) SammonOption {
	return func(s *Sammon) {
		s.GradientThreshold = g
	}
}

// NewSammon returns a Sammon optimizer with default settings.
func NewSammon(opts ...SammonOption) *Sammon {
	s := &Sammon{
		MaxIterations:     DefaultMaxIterations,
		GradientThreshold: DefaultGradientThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Optimize implements Optimizer.
func (s *Sammon) Optimize(distances, pixels mat.Matrix) (Weights, error) {
	n, p := pixels.Dims()
	if r, c := distances.Dims(); r != n || c != n {
		return Weights{}, fmt.Errorf("%w: distances are %dx%d, want %dx%d", pointviz.ErrOptimizer, r, c, n, n)
	}

	st := newStress(distances, mat.DenseCopyOf(pixels))
	if len(st.pairs) == 0 {
		return Weights{}, fmt.Errorf("%w: %w", pointviz.ErrOptimizer, errNoPairs)
	}

	x0 := st.initial()
	settings := &optimize.Settings{
		GradientThreshold: s.GradientThreshold,
		MajorIterations:   s.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-10,
			Iterations: 50,
		},
	}
	res, err := optimize.Minimize(optimize.Problem{Func: st.value, Grad: st.grad}, x0, settings, &optimize.LBFGS{})
	switch {
	case err != nil && !errors.Is(err, optimize.ErrNoProgress):
		return Weights{}, fmt.Errorf("%w: %w", pointviz.ErrOptimizer, err)
	case res == nil:
		return Weights{}, fmt.Errorf("%w: no result", pointviz.ErrOptimizer)
	case err == nil && res.Status.Early():
		return Weights{}, fmt.Errorf("%w: %w", pointviz.ErrOptimizer, res.Status.Err())
	case math.IsNaN(res.F) || math.IsInf(res.F, 0):
		return Weights{}, fmt.Errorf("%w: stress is %v", pointviz.ErrOptimizer, res.F)
	}

	pointviz.Logger().Debug("projection: sammon converged",
		"stress", res.F, "status", res.Status.String(),
		"iterations", res.MajorIterations, "evaluations", res.FuncEvaluations)

	var w Weights
	for a := range w {
		w[a] = append([]float64(nil), res.X[a*p:(a+1)*p]...)
	}
	return w, nil
}

type pair struct {
	i, j   int
	target float64
}

// stress evaluates Sammon's stress and its gradient for flattened weights
// x = [w_x | w_y | w_z].
type stress struct {
	x     *mat.Dense // N×P pixels
	pairs []pair
	norm  float64 // 1 / sum of target distances
}

func newStress(distances mat.Matrix, x *mat.Dense) *stress {
	n, _ := x.Dims()
	st := &stress{x: x}
	var sum float64
	for i := range n {
		for j := i + 1; j < n; j++ {
			d := distances.At(i, j)
			if d > 0 && !math.IsInf(d, 0) {
				st.pairs = append(st.pairs, pair{i: i, j: j, target: d})
				sum += d
			}
		}
	}
	if sum > 0 {
		st.norm = 1 / sum
	}
	return st
}

// project returns Y = X Wᵀ (N×3) for flattened weights.
func (st *stress) project(w []float64) *mat.Dense {
	_, p := st.x.Dims()
	wm := mat.NewDense(3, p, w)
	var y mat.Dense
	y.Mul(st.x, wm.T())
	return &y
}

func dist3(y *mat.Dense, i, j int) float64 {
	a, b := y.RawRowView(i), y.RawRowView(j)
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (st *stress) value(w []float64) float64 {
	y := st.project(w)
	var e float64
	for _, pr := range st.pairs {
		diff := pr.target - dist3(y, pr.i, pr.j)
		e += diff * diff / pr.target
	}
	return e * st.norm
}

// grad writes dE/dW. With g_ij = -2c (d*_ij - d_ij) / (d*_ij d_ij) and the
// Laplacian L = diag(rowsum G) - G, the gradient is Yᵀ L X.
func (st *stress) grad(dst, w []float64) {
	n, p := st.x.Dims()
	y := st.project(w)

	lap := mat.NewDense(n, n, nil)
	for _, pr := range st.pairs {
		d := max(dist3(y, pr.i, pr.j), minDistance)
		g := -2 * st.norm * (pr.target - d) / (pr.target * d)
		lap.Set(pr.i, pr.j, lap.At(pr.i, pr.j)-g)
		lap.Set(pr.j, pr.i, lap.At(pr.j, pr.i)-g)
		lap.Set(pr.i, pr.i, lap.At(pr.i, pr.i)+g)
		lap.Set(pr.j, pr.j, lap.At(pr.j, pr.j)+g)
	}

	var lx mat.Dense
	lx.Mul(lap, st.x)
	g := mat.NewDense(3, p, dst)
	g.Mul(y.T(), &lx)
}

// initial returns the principal-axis start point scaled so projected
// distances match the targets in the least-squares sense.
func (st *stress) initial() []float64 {
	n, p := st.x.Dims()
	w := make([]float64, 3*p)

	centered := mat.DenseCopyOf(st.x)
	mean := make([]float64, p)
	for i := range n {
		floats.Add(mean, centered.RawRowView(i))
	}
	floats.Scale(1/float64(n), mean)
	for i := range n {
		floats.Sub(centered.RawRowView(i), mean)
	}

	var svd mat.SVD
	if svd.Factorize(centered, mat.SVDThin) {
		var v mat.Dense
		svd.VTo(&v)
		_, k := v.Dims()
		for a := range min(3, k) {
			mat.Col(w[a*p:(a+1)*p], a, &v)
		}
	}

	y := st.project(w)
	var num, den float64
	for _, pr := range st.pairs {
		d := dist3(y, pr.i, pr.j)
		num += pr.target * d
		den += d * d
	}
	if den > 0 {
		floats.Scale(num/den, w)
	}
	return w
}

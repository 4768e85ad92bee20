package projection

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/gogpu/pointviz"
	"github.com/gogpu/pointviz/geom"
)

// Weights holds one P-length weight vector per output axis.
type Weights [3][]float64

// Optimizer fits projection weights so that the projected pairwise
// distances approximate the target distances. It keeps no state between
// calls.
type Optimizer interface {
	Optimize(distances, pixels mat.Matrix) (Weights, error)
}

// OptimizerFunc adapts a function to the Optimizer interface.
type OptimizerFunc func(distances, pixels mat.Matrix) (Weights, error)

// Optimize calls f.
func (f OptimizerFunc) Optimize(distances, pixels mat.Matrix) (Weights, error) {
	return f(distances, pixels)
}

// Stress projects each point by a linear map fitted by Optimizer:
// pos[i].axis = sum_k weights[axis][k] * pixels[i][k].
//
// A nil Optimizer uses NewSammon().
type Stress struct {
	Optimizer Optimizer
}

// Name implements Projection.
func (Stress) Name() string { return "Stress" }

func (Stress) projection() {}

// Project implements Projection. Optimizer errors and malformed weights
// return an error wrapping pointviz.ErrOptimizer.
func (s Stress) Project(src Source) ([]geom.Vec3, error) {
	opt := s.Optimizer
	if opt == nil {
		opt = NewSammon()
	}

	w, err := opt.Optimize(src.Distances(), src.Pixels())
	if err != nil {
		if errors.Is(err, pointviz.ErrOptimizer) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", pointviz.ErrOptimizer, err)
	}
	if err := w.check(src.Dims()); err != nil {
		return nil, fmt.Errorf("%w: %w", pointviz.ErrOptimizer, err)
	}
	return applyWeights(w, src.Pixels(), src.Len())
}

func (w Weights) check(p int) error {
	for axis, v := range w {
		if len(v) != p {
			return fmt.Errorf("weights for axis %d have length %d, want %d", axis, len(v), p)
		}
		for k, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("weight [%d][%d] is %v", axis, k, x)
			}
		}
	}
	return nil
}

func applyWeights(w Weights, px mat.Matrix, n int) ([]geom.Vec3, error) {
	_, p := px.Dims()
	row := make([]float64, p)
	out := make([]geom.Vec3, n)
	for i := range out {
		mat.Row(row, i, px)
		pos := geom.Vec3{
			X: float32(floats.Dot(w[0], row)),
			Y: float32(floats.Dot(w[1], row)),
			Z: float32(floats.Dot(w[2], row)),
		}
		if !pos.IsFinite() {
			return nil, fmt.Errorf("%w: position of point %d is not finite", pointviz.ErrOptimizer, i)
		}
		out[i] = pos
	}
	return out, nil
}

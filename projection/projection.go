// Package projection maps the high-dimensional pixel vectors of a dataset
// to 3D marker positions.
//
// Three projections are available: [Axis] picks three raw pixel
// coordinates, [Stress] applies a linear map fitted by a stress optimizer
// (Sammon mapping by default) and [TSNE] embeds the points with t-SNE.
// Every projection recomputes all positions from scratch.
package projection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gogpu/pointviz"
	"github.com/gogpu/pointviz/geom"
)

// Source is the data a projection reads. *dataset.Store implements it.
type Source interface {
	// Len returns the number of points, N.
	Len() int

	// Dims returns the pixel vector length, P.
	Dims() int

	// Pixels returns the N×P matrix of normalized intensities.
	Pixels() mat.Matrix

	// Distances returns the N×N dissimilarity matrix.
	Distances() mat.Matrix
}

// Projection computes one 3D position per point of src, in point order.
//
// The set of projections is closed: Axis, Stress and TSNE.
type Projection interface {
	Project(src Source) ([]geom.Vec3, error)

	// Name returns a short human-readable name.
	Name() string

	projection()
}

// AxisScale multiplies raw intensities in axis projection so the cloud
// spans a few scene units.
const AxisScale = 40

// Axis places point i at AxisScale * (pixels[i][X], pixels[i][Y], pixels[i][Z]).
type Axis struct {
	X, Y, Z int
}

// Name implements Projection.
func (Axis) Name() string { return "Axis" }

func (Axis) projection() {}

// Project implements Projection. An index outside [0, P) returns an error
// wrapping pointviz.ErrIndexOutOfRange; use ClampAxis on user input first.
func (a Axis) Project(src Source) ([]geom.Vec3, error) {
	p := src.Dims()
	for _, idx := range [3]int{a.X, a.Y, a.Z} {
		if idx < 0 || idx >= p {
			return nil, fmt.Errorf("%w: axis %d not in [0, %d)", pointviz.ErrIndexOutOfRange, idx, p)
		}
	}

	px := src.Pixels()
	out := make([]geom.Vec3, src.Len())
	for i := range out {
		out[i] = geom.Vec3{
			X: float32(AxisScale * px.At(i, a.X)),
			Y: float32(AxisScale * px.At(i, a.Y)),
			Z: float32(AxisScale * px.At(i, a.Z)),
		}
	}
	return out, nil
}

// ClampAxis clamps a user-chosen axis index to [0, dims-1].
func ClampAxis(idx, dims int) int {
	return max(0, min(idx, dims-1))
}

package projection

import (
	"fmt"

	"github.com/danaugrs/go-tsne/tsne"
	"gonum.org/v1/gonum/mat"

	"github.com/gogpu/pointviz"
	"github.com/gogpu/pointviz/geom"
)

// t-SNE defaults.
const (
	DefaultPerplexity   = 5
	DefaultLearningRate = 25
	DefaultIterations   = 100
	DefaultTSNEScale    = 1
)

// TSNE embeds the pixel vectors in 3D with t-SNE. Zero fields take their
// defaults; Perplexity is further capped at N-1. The embedding starts from
// random positions, so repeated runs differ.
type TSNE struct {
	Perplexity   float64
	LearningRate float64
	Iterations   int
	Scale        float32
}

// Name implements Projection.
func (TSNE) Name() string { return "T-SNE" }

func (TSNE) projection() {}

// Project implements Projection. Failures return an error wrapping
// pointviz.ErrOptimizer.
func (t TSNE) Project(src Source) (out []geom.Vec3, err error) {
	n := src.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: t-SNE needs at least 2 points, have %d", pointviz.ErrOptimizer, n)
	}

	perplexity := t.Perplexity
	if perplexity <= 0 {
		perplexity = DefaultPerplexity
	}
	perplexity = min(perplexity, float64(n-1))
	lr := t.LearningRate
	if lr <= 0 {
		lr = DefaultLearningRate
	}
	iters := t.Iterations
	if iters <= 0 {
		iters = DefaultIterations
	}
	scale := t.Scale
	if scale == 0 {
		scale = DefaultTSNEScale
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: t-SNE: %v", pointviz.ErrOptimizer, r)
		}
	}()

	emb := tsne.NewTSNE(3, perplexity, lr, iters, false)
	emb.EmbedData(mat.DenseCopyOf(src.Pixels()), nil)
	rows, cols := emb.Y.Dims()
	if rows != n || cols != 3 {
		return nil, fmt.Errorf("%w: t-SNE returned %dx%d, want %dx3", pointviz.ErrOptimizer, rows, cols, n)
	}

	out = make([]geom.Vec3, n)
	for i := range out {
		pos := geom.Vec3{
			X: scale * float32(emb.Y.At(i, 0)),
			Y: scale * float32(emb.Y.At(i, 1)),
			Z: scale * float32(emb.Y.At(i, 2)),
		}
		if !pos.IsFinite() {
			return nil, fmt.Errorf("%w: t-SNE position of point %d is not finite", pointviz.ErrOptimizer, i)
		}
		out[i] = pos
	}
	pointviz.Logger().Debug("projection: t-SNE done", "points", n, "perplexity", perplexity, "iterations", iters)
	return out, nil
}
